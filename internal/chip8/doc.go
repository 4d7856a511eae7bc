// Package chip8 implements the CHIP-8 virtual machine interpreter.
//
// # CHIP-8 Architecture Overview
//
// CHIP-8 is an interpreted programming language developed in the 1970s for simple games
// on early microcomputers. This package emulates the virtual machine that runs it.
//
// # Memory Layout
//
// CHIP-8 systems have 4KB of memory (0x000-0xFFF):
//   - FontAddress-0x04F: Sprites of the hex digits 0-F, 5 bytes each
//   - ProgramStart-0xFFF: User program and data area
//
// The framebuffer, registers, call stack, timers and keypad state are kept
// outside of the addressable memory.
//
// # Instruction Set
//
//   - All instructions are 2 bytes (16 bits), stored big-endian
//   - 16 general-purpose 8-bit registers (V0-VF), VF doubles as flag register
//   - Special-purpose registers: I (16-bit), PC, SP, delay and sound timer
//
// Decode turns an instruction word into an Instruction, Execute runs a decoded
// instruction and Step combines fetching, decoding and executing.
//
// # Display
//
// The display has 64x32 monochrome pixels, a pixel bit of 1 is lit. Sprites are
// drawn by XOR, VF is set if a lit pixel got cleared. Sprites are clipped at the
// display edges and do not wrap around.
//
// # Host Integration
//
// The interpreter is driven entirely by its host:
//
//	vm, err := chip8.New(chip8.CryptoEntropy{}, program)
//	if err != nil {
//		return fmt.Errorf("creating interpreter: %w", err)
//	}
//
//	// once per 60 Hz frame
//	for range frequency / 60 {
//		if err := vm.Step(); err != nil {
//			return err
//		}
//	}
//	vm.TickTimers()
//
// Key events are passed with KeyDown and KeyUp, the display is read with
// Framebuffer and the beeper state with SoundActive.
//
// # Errors
//
// Faults during a cycle are returned as *Fault wrapping one of ErrUnknownOpcode,
// ErrStackOverflow, ErrStackUnderflow, ErrOutOfBounds or ErrInvalidKey. A failed
// Step does not modify the interpreter state.
package chip8
