// Package disasm implements a recursive descent CHIP-8 disassembler.
package disasm

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"strings"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/program"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

var errEmptyProgram = errors.New("program is empty")

// Disasm implements a disassembler.
type Disasm struct {
	logger  *log.Logger
	options options.Disassembler

	image []byte
	app   *program.Program

	instructions map[uint16]chip8.Instruction // decoded instructions by address

	branchDestinations set.Set[uint16] // set of all addresses that are branched to
	dataReferences     set.Set[uint16] // set of all addresses loaded into the index register
	referencedFrom     map[uint16][]uint16

	offsetsToParse      []uint16
	offsetsToParseAdded set.Set[uint16]
}

// New creates a new disassembler for the given program image.
func New(logger *log.Logger, image []byte, options options.Disassembler) (*Disasm, error) {
	if len(image) == 0 {
		return nil, errEmptyProgram
	}
	if len(image) > chip8.MaxProgramSize {
		return nil, fmt.Errorf("%w: %d bytes exceed the maximum of %d bytes",
			chip8.ErrProgramTooLarge, len(image), chip8.MaxProgramSize)
	}

	dis := &Disasm{
		logger:              logger,
		options:             options,
		image:               image,
		app:                 program.New(chip8.ProgramStart, len(image)),
		instructions:        map[uint16]chip8.Instruction{},
		branchDestinations:  set.New[uint16](),
		dataReferences:      set.New[uint16](),
		referencedFrom:      map[uint16][]uint16{},
		offsetsToParseAdded: set.New[uint16](),
	}
	return dis, nil
}

// Process disassembles the program and returns the listing model.
func (dis *Disasm) Process(ctx context.Context) (*program.Program, error) {
	startInfo := dis.offsetInfo(chip8.ProgramStart)
	startInfo.Label = "Start"
	dis.addAddressToParse(chip8.ProgramStart)

	if err := dis.followExecutionFlow(ctx); err != nil {
		return nil, err
	}

	dis.processJumpDestinations()
	dis.processDataReferences()
	dis.processData()
	if err := dis.setComments(); err != nil {
		return nil, err
	}

	dis.app.Checksum = crc32.ChecksumIEEE(dis.image)
	return dis.app, nil
}

// followExecutionFlow parses all reachable instructions.
func (dis *Disasm) followExecutionFlow(ctx context.Context) error {
	for len(dis.offsetsToParse) > 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("disassembling: %w", err)
		}

		address := dis.offsetsToParse[0]
		dis.offsetsToParse = dis.offsetsToParse[1:]
		dis.processOffset(address)
	}
	return nil
}

func (dis *Disasm) processOffset(address uint16) {
	if !dis.isCodeAddress(address) {
		dis.logger.Debug("Skipping address outside of program", log.Hex("address", address))
		return
	}

	offsetInfo := dis.offsetInfo(address)
	if offsetInfo.IsType(program.CodeOffset) {
		return // already parsed or inside of an instruction
	}
	if dis.offsetInfo(address + 1).IsType(program.CodeOffset) {
		dis.logger.Debug("Instruction overlaps parsed code", log.Hex("address", address))
		return
	}

	index := int(address - chip8.ProgramStart)
	data := dis.image[index : index+2]
	word := uint16(data[0])<<8 | uint16(data[1])

	ins, err := chip8.Decode(word)
	if err != nil {
		// consider an unknown instruction as start of data
		dis.logger.Debug("Unknown opcode", log.Hex("address", address), log.Hex("opcode", word))
		return
	}

	offsetInfo.Data = data
	offsetInfo.Code = ins.String()
	offsetInfo.SetType(program.CodeOffset)
	dis.offsetInfo(address + 1).SetType(program.CodeOffset)
	dis.instructions[address] = ins

	dis.handleControlFlow(address, ins)
}

// handleControlFlow queues the addresses that execution can continue at.
func (dis *Disasm) handleControlFlow(address uint16, ins chip8.Instruction) {
	next := address + 2

	switch {
	case ins.IsJump():
		// indexed jumps have no static destination
		if target, ok := ins.Target(); ok {
			dis.addBranchDestination(address, target, false)
		}

	case ins.IsCall():
		if target, ok := ins.Target(); ok {
			dis.addBranchDestination(address, target, true)
		}
		dis.addAddressToParse(next)

	case ins.IsSkip():
		dis.addAddressToParse(next)
		dis.addAddressToParse(next + 2)

	case ins.IsDataReference():
		if target, ok := ins.Target(); ok && dis.isProgramAddress(target) {
			dis.dataReferences.Add(target)
			dis.referencedFrom[target] = append(dis.referencedFrom[target], address)
		}
		dis.addAddressToParse(next)

	case !ins.IsReturn():
		dis.addAddressToParse(next)
	}
}

func (dis *Disasm) addBranchDestination(from, target uint16, call bool) {
	if !dis.isProgramAddress(target) {
		dis.logger.Debug("Branch destination outside of program",
			log.Hex("address", from), log.Hex("target", target))
		return
	}

	if call {
		dis.offsetInfo(target).SetType(program.CallDestination)
	}
	dis.branchDestinations.Add(target)
	dis.referencedFrom[target] = append(dis.referencedFrom[target], from)
	dis.addAddressToParse(target)
}

func (dis *Disasm) addAddressToParse(address uint16) {
	if dis.offsetsToParseAdded.Contains(address) {
		return
	}
	dis.offsetsToParseAdded.Add(address)
	dis.offsetsToParse = append(dis.offsetsToParse, address)
}

// isProgramAddress returns whether the address is part of the loaded image.
func (dis *Disasm) isProgramAddress(address uint16) bool {
	return address >= chip8.ProgramStart && int(address-chip8.ProgramStart) < len(dis.image)
}

// isCodeAddress returns whether a full instruction can be read at the address.
func (dis *Disasm) isCodeAddress(address uint16) bool {
	return address >= chip8.ProgramStart && int(address-chip8.ProgramStart)+1 < len(dis.image)
}

func (dis *Disasm) offsetInfo(address uint16) *program.Offset {
	return &dis.app.Offsets[address-chip8.ProgramStart]
}

// processData marks all bytes that are not part of an instruction as data.
func (dis *Disasm) processData() {
	for i := range dis.app.Offsets {
		offsetInfo := &dis.app.Offsets[i]
		if offsetInfo.IsType(program.CodeOffset) {
			continue
		}
		if len(offsetInfo.Data) == 0 {
			offsetInfo.Data = dis.image[i : i+1]
		}
		offsetInfo.SetType(program.DataOffset)
	}
}

// setComments sets the address and hex code comments of all instructions.
func (dis *Disasm) setComments() error {
	for i := range dis.app.Offsets {
		offsetInfo := &dis.app.Offsets[i]
		if !offsetInfo.IsType(program.CodeOffset) || len(offsetInfo.Data) == 0 {
			continue
		}

		var comments []string
		if dis.options.OffsetComments {
			offsetInfo.HasAddressComment = true
			comments = append(comments, fmt.Sprintf("$%04X", offsetInfo.Address))
		}
		if dis.options.HexComments {
			hexComment, err := offsetInfo.HexCodeComment()
			if err != nil {
				return fmt.Errorf("generating hex comment: %w", err)
			}
			comments = append(comments, hexComment)
		}
		if offsetInfo.Comment != "" {
			comments = append(comments, offsetInfo.Comment)
		}
		offsetInfo.Comment = strings.Join(comments, "  ")
	}
	return nil
}
