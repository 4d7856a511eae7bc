// Package verification verifies that a disassembled program recreates the input image.
package verification

import (
	"fmt"
	"hash/crc32"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/program"
	"github.com/retroenv/retrogolib/log"
)

const maxReportedMismatches = 10

// VerifyOutput verifies that the bytes of all program offsets recreate the exact
// input image and that every code offset still decodes to a known instruction.
func VerifyOutput(logger *log.Logger, app *program.Program, image []byte) error {
	output := make([]byte, 0, len(image))
	for _, offset := range app.Offsets {
		if offset.IsType(program.CodeOffset) && len(offset.Data) > 0 {
			if err := verifyInstruction(offset); err != nil {
				return err
			}
		}
		output = append(output, offset.Data...)
	}

	if err := checkBufferEqual(logger, image, output); err != nil {
		return fmt.Errorf("program image mismatch: %w", err)
	}

	checksum := crc32.ChecksumIEEE(output)
	if checksum != app.Checksum {
		return fmt.Errorf("checksum mismatch, expected %08x but got %08x", app.Checksum, checksum)
	}
	return nil
}

func verifyInstruction(offset program.Offset) error {
	if len(offset.Data) != 2 {
		return fmt.Errorf("instruction at $%04X has %d bytes", offset.Address, len(offset.Data))
	}

	word := uint16(offset.Data[0])<<8 | uint16(offset.Data[1])
	if _, err := chip8.Decode(word); err != nil {
		return fmt.Errorf("instruction at $%04X: %w", offset.Address, err)
	}
	return nil
}

func checkBufferEqual(logger *log.Logger, input, output []byte) error {
	if len(input) != len(output) {
		return fmt.Errorf("mismatched lengths, %d != %d", len(input), len(output))
	}

	var diffs uint64
	for i := range input {
		if input[i] == output[i] {
			continue
		}

		diffs++
		if diffs < maxReportedMismatches {
			logger.Error("Offset mismatch",
				log.Hex("offset", i),
				log.Hex("expected", input[i]),
				log.Hex("got", output[i]))
		}
	}
	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%d offset mismatches", diffs)
}
