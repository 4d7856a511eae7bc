package chip8

import "fmt"

// Step executes a single instruction cycle. While the interpreter waits for
// a key press the call does nothing. A failing cycle returns a *Fault and
// leaves the interpreter state unchanged.
func (c *Interpreter) Step() error {
	if c.waiting {
		return nil
	}

	pc := c.pc
	word, err := c.fetch()
	if err != nil {
		return &Fault{PC: pc, Err: err}
	}

	ins, err := Decode(word)
	if err != nil {
		return &Fault{PC: pc, Word: word, Err: err}
	}

	// the program counter points to the next instruction before executing,
	// jumps and calls overwrite it and skips add to it.
	c.pc += opcodeSize
	if err := c.Execute(ins); err != nil {
		c.pc = pc
		return &Fault{PC: pc, Word: word, Err: err}
	}
	return nil
}

// Execute runs a decoded instruction against the current state without
// fetching it. The program counter is expected to already point to the
// instruction following ins. Every handler validates its operands before
// mutating state, a returned error means nothing was changed. Register and
// nibble operands are reduced to their low 4 bits like Decode extracts them.
//
//nolint:cyclop,funlen // flat dispatch table
func (c *Interpreter) Execute(ins Instruction) error {
	x, y := ins.X&0xF, ins.Y&0xF
	ins.N &= 0xF

	switch ins.Op {
	case OpClear:
		c.display.clear()
	case OpReturn:
		address, err := c.pop()
		if err != nil {
			return err
		}
		c.pc = address
	case OpJump:
		c.pc = ins.NNN
	case OpCall:
		if err := c.push(c.pc); err != nil {
			return err
		}
		c.pc = ins.NNN

	case OpSkipEqualByte:
		c.skipIf(c.registers[x] == ins.NN)
	case OpSkipNotEqualByte:
		c.skipIf(c.registers[x] != ins.NN)
	case OpSkipEqualRegister:
		c.skipIf(c.registers[x] == c.registers[y])
	case OpSkipNotEqualRegister:
		c.skipIf(c.registers[x] != c.registers[y])

	case OpLoadByte:
		c.registers[x] = ins.NN
	case OpAddByte:
		c.registers[x] += ins.NN
	case OpMove:
		c.registers[x] = c.registers[y]
	case OpOr:
		c.registers[x] |= c.registers[y]
	case OpAnd:
		c.registers[x] &= c.registers[y]
	case OpXor:
		c.registers[x] ^= c.registers[y]
	case OpAdd:
		sum := uint16(c.registers[x]) + uint16(c.registers[y])
		c.registers[x] = uint8(sum)
		c.setFlag(sum > 0xFF)
	case OpSub:
		vx, vy := c.registers[x], c.registers[y]
		c.registers[x] = vx - vy
		c.setFlag(vx < vy)
	case OpSubReverse:
		vx, vy := c.registers[x], c.registers[y]
		c.registers[x] = vy - vx
		c.setFlag(vy < vx)
	case OpShiftRight:
		c.registers[FlagRegister] = c.registers[x] & 0x1
		c.registers[x] >>= 1
	case OpShiftLeft:
		c.registers[FlagRegister] = c.registers[x] >> 7
		c.registers[x] <<= 1

	case OpLoadIndex:
		c.index = ins.NNN
	case OpJumpOffset:
		c.pc = ins.NNN + uint16(c.registers[0])
	case OpRandom:
		c.registers[x] = c.entropy.RandomByte() & ins.NN
	case OpDraw:
		return c.draw(x, y, ins.N)

	case OpSkipKeyPressed, OpSkipKeyReleased:
		key := c.registers[x]
		if key >= KeyCount {
			return fmt.Errorf("%w: V%X holds $%02X", ErrInvalidKey, x, key)
		}
		c.skipIf(c.keys[key] == (ins.Op == OpSkipKeyPressed))

	case OpLoadDelay:
		c.registers[x] = c.delayTimer
	case OpWaitKey:
		c.waiting = true
		c.waitRegister = x
	case OpSetDelay:
		c.delayTimer = c.registers[x]
	case OpSetSound:
		c.soundTimer = c.registers[x]

	case OpAddIndex:
		sum := uint32(c.index) + uint32(c.registers[x])
		c.index = uint16(sum)
		c.setFlag(sum > 0xFFFF)
	case OpLoadFont:
		c.index = FontAddress + uint16(c.registers[x])*FontGlyphSize
	case OpStoreBCD:
		return c.storeBCD(x)
	case OpStoreRegisters:
		if err := checkRange(c.index, int(x)+1); err != nil {
			return err
		}
		copy(c.memory[c.index:], c.registers[:x+1])
	case OpLoadRegisters:
		if err := checkRange(c.index, int(x)+1); err != nil {
			return err
		}
		copy(c.registers[:x+1], c.memory[c.index:])

	default:
		return fmt.Errorf("%w: $%04X", ErrUnknownOpcode, ins.Word)
	}
	return nil
}

func (c *Interpreter) skipIf(condition bool) {
	if condition {
		c.pc += opcodeSize
	}
}

func (c *Interpreter) setFlag(set bool) {
	if set {
		c.registers[FlagRegister] = 1
	} else {
		c.registers[FlagRegister] = 0
	}
}

// storeBCD writes the hundreds, tens and units digits of Vx to I, I+1 and I+2.
func (c *Interpreter) storeBCD(x uint8) error {
	if err := checkRange(c.index, 3); err != nil {
		return err
	}
	value := c.registers[x]
	c.memory[c.index] = value / 100
	c.memory[c.index+1] = (value / 10) % 10
	c.memory[c.index+2] = value % 10
	return nil
}
