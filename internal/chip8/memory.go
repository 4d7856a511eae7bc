package chip8

import "fmt"

// FontAddress is the memory address of the first font glyph.
const FontAddress = 0x000

// FontGlyphSize is the number of bytes of a single 4x5 font glyph.
const FontGlyphSize = 5

// fontSet contains the sprites of the hex digits 0-F.
var fontSet = [16 * FontGlyphSize]uint8{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// ReadMemory returns the byte at the given address.
func (c *Interpreter) ReadMemory(address uint16) (uint8, error) {
	if err := checkRange(address, 1); err != nil {
		return 0, err
	}
	return c.memory[address], nil
}

// checkRange verifies that length bytes starting at address are inside memory.
// The calculation is done in int to not wrap on 16 bit overflows of I.
func checkRange(address uint16, length int) error {
	if int(address)+length > MemorySize {
		return fmt.Errorf("%w: %d bytes at $%04X", ErrOutOfBounds, length, address)
	}
	return nil
}

// fetch reads the big-endian instruction word at the program counter.
func (c *Interpreter) fetch() (uint16, error) {
	if err := checkRange(c.pc, opcodeSize); err != nil {
		return 0, err
	}
	return uint16(c.memory[c.pc])<<8 | uint16(c.memory[c.pc+1]), nil
}

// push puts a return address on the call stack.
func (c *Interpreter) push(address uint16) error {
	if c.sp >= StackSize {
		return fmt.Errorf("%w: call to depth %d", ErrStackOverflow, c.sp+1)
	}
	c.stack[c.sp] = address
	c.sp++
	return nil
}

// pop removes the most recent return address from the call stack.
func (c *Interpreter) pop() (uint16, error) {
	if c.sp == 0 {
		return 0, ErrStackUnderflow
	}
	c.sp--
	return c.stack[c.sp], nil
}
