package chip8

import (
	"fmt"
)

// CHIP-8 memory layout constants.
//
// CHIP-8 memory map (4KB total):
//
//	0x000-0x04F: Font glyphs for the hex digits 0-F
//	0x050-0x1FF: Unused interpreter area
//	0x200-0xFFF: User program space (3584 bytes)
const (
	// MemorySize is the size of the addressable memory in bytes.
	MemorySize = 0x1000

	// ProgramStart is the memory address where programs are loaded and execution begins.
	ProgramStart = 0x200

	// MaxProgramSize is the largest program image that fits behind ProgramStart.
	MaxProgramSize = MemorySize - ProgramStart

	// RegisterCount is the number of general purpose registers V0-VF.
	RegisterCount = 16

	// FlagRegister is the index of VF, which doubles as carry, borrow and collision flag.
	FlagRegister = 0xF

	// StackSize is the number of return addresses the call stack can hold.
	StackSize = 16

	// KeyCount is the number of keys on the hex keypad.
	KeyCount = 16

	// opcodeSize is the size of CHIP-8 instructions in bytes.
	opcodeSize = 2
)

// Interpreter contains the complete state of a CHIP-8 virtual machine.
// It is not safe for concurrent use, hosts that step the machine and
// receive input on different goroutines have to serialize access.
type Interpreter struct {
	registers [RegisterCount]uint8
	index     uint16
	pc        uint16

	memory [MemorySize]uint8

	stack [StackSize]uint16
	sp    int

	delayTimer uint8
	soundTimer uint8

	keys         [KeyCount]bool
	waiting      bool
	waitRegister uint8

	display display
	entropy Entropy
}

// New returns a new interpreter with the font set and the given program loaded.
// The entropy source is used for the random number instruction only.
func New(entropy Entropy, program []byte) (*Interpreter, error) {
	if entropy == nil {
		return nil, ErrNilEntropy
	}
	if len(program) > MaxProgramSize {
		return nil, fmt.Errorf("%w: %d bytes exceed the limit of %d bytes",
			ErrProgramTooLarge, len(program), MaxProgramSize)
	}

	c := &Interpreter{
		pc:      ProgramStart,
		entropy: entropy,
	}
	copy(c.memory[FontAddress:], fontSet[:])
	copy(c.memory[ProgramStart:], program)
	return c, nil
}

// PC returns the program counter.
func (c *Interpreter) PC() uint16 {
	return c.pc
}

// Index returns the index register I.
func (c *Interpreter) Index() uint16 {
	return c.index
}

// Register returns the value of register Vx. Only the low nibble of x is used.
func (c *Interpreter) Register(x uint8) uint8 {
	return c.registers[x&0xF]
}

// Registers returns a copy of the register file.
func (c *Interpreter) Registers() [RegisterCount]uint8 {
	return c.registers
}

// StackDepth returns the number of return addresses currently on the stack.
func (c *Interpreter) StackDepth() int {
	return c.sp
}

// DelayTimer returns the current delay timer value.
func (c *Interpreter) DelayTimer() uint8 {
	return c.delayTimer
}

// SoundTimer returns the current sound timer value.
func (c *Interpreter) SoundTimer() uint8 {
	return c.soundTimer
}
