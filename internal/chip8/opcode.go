package chip8

import (
	"fmt"

	chip8cpu "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Op identifies one of the operations of the CHIP-8 instruction set.
type Op uint8

// Operations of the instruction set. The comment of each constant shows
// the instruction word pattern that decodes to it.
const (
	OpInvalid              Op = iota
	OpClear                   // 00E0
	OpReturn                  // 00EE
	OpJump                    // 1nnn
	OpCall                    // 2nnn
	OpSkipEqualByte           // 3xnn
	OpSkipNotEqualByte        // 4xnn
	OpSkipEqualRegister       // 5xy0
	OpLoadByte                // 6xnn
	OpAddByte                 // 7xnn
	OpMove                    // 8xy0
	OpOr                      // 8xy1
	OpAnd                     // 8xy2
	OpXor                     // 8xy3
	OpAdd                     // 8xy4
	OpSub                     // 8xy5
	OpShiftRight              // 8xy6
	OpSubReverse              // 8xy7
	OpShiftLeft               // 8xyE
	OpSkipNotEqualRegister    // 9xy0
	OpLoadIndex               // Annn
	OpJumpOffset              // Bnnn
	OpRandom                  // Cxnn
	OpDraw                    // Dxyn
	OpSkipKeyPressed          // Ex9E
	OpSkipKeyReleased         // ExA1
	OpLoadDelay               // Fx07
	OpWaitKey                 // Fx0A
	OpSetDelay                // Fx15
	OpSetSound                // Fx18
	OpAddIndex                // Fx1E
	OpLoadFont                // Fx29
	OpStoreBCD                // Fx33
	OpStoreRegisters          // Fx55
	OpLoadRegisters           // Fx65
)

// instructions maps every operation to its assembler instruction.
var instructions = [...]*chip8cpu.Instruction{
	OpClear:                chip8cpu.Cls,
	OpReturn:               chip8cpu.Ret,
	OpJump:                 chip8cpu.Jp,
	OpCall:                 chip8cpu.Call,
	OpSkipEqualByte:        chip8cpu.Se,
	OpSkipNotEqualByte:     chip8cpu.Sne,
	OpSkipEqualRegister:    chip8cpu.Se,
	OpLoadByte:             chip8cpu.Ld,
	OpAddByte:              chip8cpu.Add,
	OpMove:                 chip8cpu.Ld,
	OpOr:                   chip8cpu.Or,
	OpAnd:                  chip8cpu.And,
	OpXor:                  chip8cpu.Xor,
	OpAdd:                  chip8cpu.Add,
	OpSub:                  chip8cpu.Sub,
	OpShiftRight:           chip8cpu.Shr,
	OpSubReverse:           chip8cpu.Subn,
	OpShiftLeft:            chip8cpu.Shl,
	OpSkipNotEqualRegister: chip8cpu.Sne,
	OpLoadIndex:            chip8cpu.Ld,
	OpJumpOffset:           chip8cpu.Jp,
	OpRandom:               chip8cpu.Rnd,
	OpDraw:                 chip8cpu.Drw,
	OpSkipKeyPressed:       chip8cpu.Skp,
	OpSkipKeyReleased:      chip8cpu.Sknp,
	OpLoadDelay:            chip8cpu.Ld,
	OpWaitKey:              chip8cpu.Ld,
	OpSetDelay:             chip8cpu.Ld,
	OpSetSound:             chip8cpu.Ld,
	OpAddIndex:             chip8cpu.Add,
	OpLoadFont:             chip8cpu.Ld,
	OpStoreBCD:             chip8cpu.Ld,
	OpStoreRegisters:       chip8cpu.Ld,
	OpLoadRegisters:        chip8cpu.Ld,
}

// Name returns the assembler mnemonic of the operation.
func (o Op) Name() string {
	if o == OpInvalid || int(o) >= len(instructions) {
		return ""
	}
	return instructions[o].Name
}

// Instruction is a decoded instruction word with all operand fields extracted.
// Which operand fields are meaningful depends on Op.
type Instruction struct {
	Op   Op
	Word uint16 // raw instruction word

	X   uint8  // register index, bits 11-8
	Y   uint8  // register index, bits 7-4
	N   uint8  // nibble, bits 3-0
	NN  uint8  // byte, bits 7-0
	NNN uint16 // address, bits 11-0
}

// Decode decodes an instruction word. Words that do not match any
// operation return an error wrapping ErrUnknownOpcode.
func Decode(word uint16) (Instruction, error) {
	ins := Instruction{
		Word: word,
		X:    uint8(word>>8) & 0xF,
		Y:    uint8(word>>4) & 0xF,
		N:    uint8(word) & 0xF,
		NN:   uint8(word),
		NNN:  word & 0x0FFF,
	}

	ins.Op = decodeOp(word)
	if ins.Op == OpInvalid {
		return ins, fmt.Errorf("%w: $%04X", ErrUnknownOpcode, word)
	}
	return ins, nil
}

// pattern is the strict word pattern of an operation. The opcode table of the
// assembler package defines the candidates, a candidate is only accepted if its
// value is one of these patterns and it maps to the same instruction.
type pattern struct {
	op   Op
	mask uint16
}

// patterns maps the opcode table values to operations. SYS (0nnn) and the
// Ex93 alias of Ex9E are not listed and decode as unknown.
var patterns = map[uint16]pattern{
	0x00E0: {OpClear, 0xFFFF},
	0x00EE: {OpReturn, 0xFFFF},
	0x1000: {OpJump, 0xF000},
	0x2000: {OpCall, 0xF000},
	0x3000: {OpSkipEqualByte, 0xF000},
	0x4000: {OpSkipNotEqualByte, 0xF000},
	0x5000: {OpSkipEqualRegister, 0xF00F},
	0x6000: {OpLoadByte, 0xF000},
	0x7000: {OpAddByte, 0xF000},
	0x8000: {OpMove, 0xF00F},
	0x8001: {OpOr, 0xF00F},
	0x8002: {OpAnd, 0xF00F},
	0x8003: {OpXor, 0xF00F},
	0x8004: {OpAdd, 0xF00F},
	0x8005: {OpSub, 0xF00F},
	0x8006: {OpShiftRight, 0xF00F},
	0x8007: {OpSubReverse, 0xF00F},
	0x800E: {OpShiftLeft, 0xF00F},
	0x9000: {OpSkipNotEqualRegister, 0xF00F},
	0xA000: {OpLoadIndex, 0xF000},
	0xB000: {OpJumpOffset, 0xF000},
	0xC000: {OpRandom, 0xF000},
	0xD000: {OpDraw, 0xF000},
	0xE09E: {OpSkipKeyPressed, 0xF0FF},
	0xE0A1: {OpSkipKeyReleased, 0xF0FF},
	0xF007: {OpLoadDelay, 0xF0FF},
	0xF00A: {OpWaitKey, 0xF0FF},
	0xF015: {OpSetDelay, 0xF0FF},
	0xF018: {OpSetSound, 0xF0FF},
	0xF01E: {OpAddIndex, 0xF0FF},
	0xF029: {OpLoadFont, 0xF0FF},
	0xF033: {OpStoreBCD, 0xF0FF},
	0xF055: {OpStoreRegisters, 0xF0FF},
	0xF065: {OpLoadRegisters, 0xF0FF},
}

// decodeOp looks up the word in the opcode table of its first nibble.
func decodeOp(word uint16) Op {
	opcodes := chip8cpu.Opcodes[int(word>>12)]
	for _, opcode := range opcodes {
		if opcode.Info.Mask&word != opcode.Info.Value {
			continue
		}

		p, ok := patterns[opcode.Info.Value]
		if !ok || word&p.mask != opcode.Info.Value || instructions[p.op] != opcode.Instruction {
			continue
		}
		return p.op
	}
	return OpInvalid
}

// IsJump returns true if the instruction is an unconditional jump.
func (i Instruction) IsJump() bool {
	return i.Op == OpJump || i.Op == OpJumpOffset
}

// IsCall returns true if the instruction is a subroutine call.
func (i Instruction) IsCall() bool {
	return i.Op == OpCall
}

// IsReturn returns true if the instruction returns from a subroutine.
func (i Instruction) IsReturn() bool {
	return i.Op == OpReturn
}

// IsSkip returns true if the instruction conditionally skips the next instruction.
func (i Instruction) IsSkip() bool {
	name := i.Op.Name()
	if name == "" {
		return false
	}
	return chip8cpu.SkipInstructions.Contains(name)
}

// IsDataReference returns true if the instruction points I at data (LD I, addr).
func (i Instruction) IsDataReference() bool {
	return i.Op == OpLoadIndex
}

// Target returns the absolute address operand of jumps, calls and
// data references. Indexed jumps have no static target.
func (i Instruction) Target() (uint16, bool) {
	switch i.Op {
	case OpJump, OpCall, OpLoadIndex:
		return i.NNN, true
	default:
		return 0, false
	}
}

// String returns the instruction in assembler syntax.
func (i Instruction) String() string {
	name := i.Op.Name()
	if name == "" {
		return fmt.Sprintf(".word $%04X", i.Word)
	}
	if params := i.params(); params != "" {
		return name + " " + params
	}
	return name
}

// params formats the operands of the instruction.
//
//nolint:cyclop // flat opcode table
func (i Instruction) params() string {
	switch i.Op {
	case OpJump, OpCall:
		return fmt.Sprintf("$%03X", i.NNN)
	case OpJumpOffset:
		return fmt.Sprintf("V0, $%03X", i.NNN)
	case OpLoadIndex:
		return fmt.Sprintf("I, $%03X", i.NNN)
	case OpSkipEqualByte, OpSkipNotEqualByte, OpLoadByte, OpAddByte, OpRandom:
		return fmt.Sprintf("V%X, $%02X", i.X, i.NN)
	case OpSkipEqualRegister, OpSkipNotEqualRegister, OpMove, OpOr, OpAnd, OpXor,
		OpAdd, OpSub, OpSubReverse:
		return fmt.Sprintf("V%X, V%X", i.X, i.Y)
	case OpShiftRight, OpShiftLeft, OpSkipKeyPressed, OpSkipKeyReleased:
		return fmt.Sprintf("V%X", i.X)
	case OpDraw:
		return fmt.Sprintf("V%X, V%X, $%X", i.X, i.Y, i.N)
	case OpLoadDelay:
		return fmt.Sprintf("V%X, DT", i.X)
	case OpWaitKey:
		return fmt.Sprintf("V%X, K", i.X)
	case OpSetDelay:
		return fmt.Sprintf("DT, V%X", i.X)
	case OpSetSound:
		return fmt.Sprintf("ST, V%X", i.X)
	case OpAddIndex:
		return fmt.Sprintf("I, V%X", i.X)
	case OpLoadFont:
		return fmt.Sprintf("F, V%X", i.X)
	case OpStoreBCD:
		return fmt.Sprintf("B, V%X", i.X)
	case OpStoreRegisters:
		return fmt.Sprintf("[I], V%X", i.X)
	case OpLoadRegisters:
		return fmt.Sprintf("V%X, [I]", i.X)
	default:
		return ""
	}
}
