// Package program represents a disassembled CHIP-8 program.
package program

import (
	"fmt"
	"strings"
)

// Offset defines the content of an offset in a program that can represent data or code.
type Offset struct {
	Address uint16
	Data    []byte // data byte or both opcode bytes that are part of the instruction

	Type OffsetType

	Label   string // name of label or subroutine if identified as a jump destination
	Code    string // asm output of this instruction
	Comment string

	HasAddressComment bool
}

// Program defines a CHIP-8 program that contains code or data.
type Program struct {
	Offsets []Offset

	CodeBaseAddress uint16
	Checksum        uint32 // CRC32 of the program image
}

// New creates a new program with an offset entry for every byte of the image.
func New(codeBaseAddress uint16, size int) *Program {
	app := &Program{
		Offsets:         make([]Offset, size),
		CodeBaseAddress: codeBaseAddress,
	}
	for i := range app.Offsets {
		app.Offsets[i].Address = codeBaseAddress + uint16(i)
	}
	return app
}

// LastNonZeroIndex returns the index after the last offset that holds a non zero
// byte, code or a label.
func (p *Program) LastNonZeroIndex() int {
	for i := len(p.Offsets) - 1; i >= 0; i-- {
		offset := p.Offsets[i]
		if offset.Label != "" || offset.Code != "" {
			return i + 1
		}
		for _, b := range offset.Data {
			if b != 0 {
				return i + 1
			}
		}
	}
	return 0
}

// HexCodeComment returns the data bytes of the offset as hex string.
func (o *Offset) HexCodeComment() (string, error) {
	buf := &strings.Builder{}

	for i, b := range o.Data {
		if i > 0 {
			buf.WriteByte(' ')
		}
		if _, err := fmt.Fprintf(buf, "%02X", b); err != nil {
			return "", fmt.Errorf("writing hex comment: %w", err)
		}
	}

	return buf.String(), nil
}
