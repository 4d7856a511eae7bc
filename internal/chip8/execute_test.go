package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestExecute_AddFlag(t *testing.T) {
	c := newTestInterpreter(t)

	for a := range 256 {
		for b := range 256 {
			c.registers[1] = uint8(a)
			c.registers[2] = uint8(b)
			assert.NoError(t, c.Execute(mustDecode(t, 0x8124)))

			assert.Equal(t, uint8(a+b), c.registers[1])
			assert.Equal(t, a+b > 255, c.registers[FlagRegister] == 1, "a=%d b=%d", a, b)
		}
	}
}

func TestExecute_SubFlags(t *testing.T) {
	c := newTestInterpreter(t)

	for a := range 256 {
		for b := range 256 {
			c.registers[1] = uint8(a)
			c.registers[2] = uint8(b)
			assert.NoError(t, c.Execute(mustDecode(t, 0x8125)))
			assert.Equal(t, uint8(a-b), c.registers[1])
			assert.Equal(t, a < b, c.registers[FlagRegister] == 1, "sub a=%d b=%d", a, b)

			c.registers[1] = uint8(a)
			c.registers[2] = uint8(b)
			assert.NoError(t, c.Execute(mustDecode(t, 0x8127)))
			assert.Equal(t, uint8(b-a), c.registers[1])
			assert.Equal(t, b < a, c.registers[FlagRegister] == 1, "subn a=%d b=%d", a, b)
		}
	}
}

func TestExecute_Arithmetic(t *testing.T) {
	tests := []struct {
		name  string
		word  uint16
		vx    uint8
		vy    uint8
		wantX uint8
		wantF uint8
	}{
		{"add byte wraps without flag", 0x71FF, 0x02, 0, 0x01, 0x77},
		{"move", 0x8120, 0x12, 0x34, 0x34, 0x77},
		{"or", 0x8121, 0b1100, 0b1010, 0b1110, 0x77},
		{"and", 0x8122, 0b1100, 0b1010, 0b1000, 0x77},
		{"xor", 0x8123, 0b1100, 0b1010, 0b0110, 0x77},
		{"shift right odd", 0x8126, 0x05, 0, 0x02, 1},
		{"shift right even", 0x8126, 0x04, 0, 0x02, 0},
		{"shift left high bit", 0x812E, 0x81, 0, 0x02, 1},
		{"shift left no high bit", 0x812E, 0x41, 0, 0x82, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestInterpreter(t)
			c.registers[1] = tt.vx
			c.registers[2] = tt.vy
			c.registers[FlagRegister] = 0x77

			assert.NoError(t, c.Execute(mustDecode(t, tt.word)))
			assert.Equal(t, tt.wantX, c.registers[1])
			assert.Equal(t, tt.wantF, c.registers[FlagRegister])
		})
	}
}

func TestExecute_FlagRegisterAsOperand(t *testing.T) {
	c := newTestInterpreter(t)
	c.registers[FlagRegister] = 0xFF
	c.registers[1] = 0x01

	// VF += V1, the carry flag overwrites the sum
	assert.NoError(t, c.Execute(mustDecode(t, 0x8F14)))
	assert.Equal(t, uint8(1), c.registers[FlagRegister])
}

func TestExecute_Skips(t *testing.T) {
	tests := []struct {
		name     string
		word     uint16
		vx       uint8
		vy       uint8
		wantSkip bool
	}{
		{"se byte equal", 0x3142, 0x42, 0, true},
		{"se byte not equal", 0x3142, 0x41, 0, false},
		{"sne byte equal", 0x4142, 0x42, 0, false},
		{"sne byte not equal", 0x4142, 0x41, 0, true},
		{"se register equal", 0x5120, 7, 7, true},
		{"se register not equal", 0x5120, 7, 8, false},
		{"sne register equal", 0x9120, 7, 7, false},
		{"sne register not equal", 0x9120, 7, 8, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestInterpreter(t, byte(tt.word>>8), byte(tt.word))
			c.registers[1] = tt.vx
			c.registers[2] = tt.vy
			runSteps(t, c, 1)

			want := uint16(ProgramStart + 2)
			if tt.wantSkip {
				want += 2
			}
			assert.Equal(t, want, c.PC())
		})
	}
}

func TestExecute_JumpCallReturn(t *testing.T) {
	c := newTestInterpreter(t,
		0x22, 0x06, // 200: call $206
		0x12, 0x0A, // 202: jp $20A
		0x00, 0x00, // 204
		0x00, 0xEE, // 206: ret
	)

	runSteps(t, c, 1)
	assert.Equal(t, uint16(0x206), c.PC())
	assert.Equal(t, 1, c.StackDepth())
	assert.Equal(t, uint16(0x202), c.stack[0])

	runSteps(t, c, 1)
	assert.Equal(t, uint16(0x202), c.PC())
	assert.Equal(t, 0, c.StackDepth())

	runSteps(t, c, 1)
	assert.Equal(t, uint16(0x20A), c.PC())
}

func TestExecute_JumpOffset(t *testing.T) {
	c := newTestInterpreter(t, 0xB3, 0x00)
	c.registers[0] = 0x10
	runSteps(t, c, 1)
	assert.Equal(t, uint16(0x310), c.PC())
}

func TestExecute_Random(t *testing.T) {
	entropy := &sequenceEntropy{values: []uint8{0xAB, 0xFF}}
	c, err := New(entropy, []byte{0xC1, 0x0F, 0xC2, 0xF0})
	assert.NoError(t, err)

	runSteps(t, c, 2)
	assert.Equal(t, uint8(0x0B), c.registers[1])
	assert.Equal(t, uint8(0xF0), c.registers[2])
	assert.Equal(t, 2, entropy.pos)
}

func TestExecute_Timers(t *testing.T) {
	c := newTestInterpreter(t,
		0x61, 0x20, // V1 = $20
		0xF1, 0x15, // DT = V1
		0xF1, 0x18, // ST = V1
		0xF2, 0x07, // V2 = DT
	)
	runSteps(t, c, 3)
	assert.Equal(t, uint8(0x20), c.DelayTimer())
	assert.Equal(t, uint8(0x20), c.SoundTimer())

	c.TickTimers()
	runSteps(t, c, 1)
	assert.Equal(t, uint8(0x1F), c.registers[2])
}

func TestExecute_Index(t *testing.T) {
	tests := []struct {
		name      string
		word      uint16
		index     uint16
		vx        uint8
		wantIndex uint16
		wantFlag  uint8
	}{
		{"load index", 0xA123, 0, 0, 0x123, 0x77},
		{"add index", 0xF11E, 0x100, 0x20, 0x120, 0},
		{"add index beyond 12 bits", 0xF11E, 0x0FFF, 0x01, 0x1000, 0},
		{"add index 16 bit overflow", 0xF11E, 0xFFFF, 0x02, 0x0001, 1},
		{"font glyph address", 0xF129, 0, 0x0A, 0x0A * FontGlyphSize, 0x77},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestInterpreter(t)
			c.index = tt.index
			c.registers[1] = tt.vx
			c.registers[FlagRegister] = 0x77

			assert.NoError(t, c.Execute(mustDecode(t, tt.word)))
			assert.Equal(t, tt.wantIndex, c.Index())
			assert.Equal(t, tt.wantFlag, c.registers[FlagRegister])
		})
	}
}

func TestExecute_StoreBCD(t *testing.T) {
	tests := []struct {
		value uint8
		want  []uint8
	}{
		{157, []uint8{1, 5, 7}},
		{0, []uint8{0, 0, 0}},
		{255, []uint8{2, 5, 5}},
		{9, []uint8{0, 0, 9}},
	}

	for _, tt := range tests {
		c := newTestInterpreter(t)
		c.index = 0x300
		c.registers[3] = tt.value

		assert.NoError(t, c.Execute(mustDecode(t, 0xF333)))
		assert.Equal(t, tt.want, c.memory[0x300:0x303])
	}
}

func TestExecute_RegisterRoundTrip(t *testing.T) {
	for x := range uint8(RegisterCount) {
		c := newTestInterpreter(t)
		c.index = 0x400

		var want [RegisterCount]uint8
		for i := range want {
			want[i] = uint8(i*17 + 3)
		}
		c.registers = want

		assert.NoError(t, c.Execute(mustDecode(t, 0xF055|uint16(x)<<8)))
		c.registers = [RegisterCount]uint8{}
		assert.NoError(t, c.Execute(mustDecode(t, 0xF065|uint16(x)<<8)))

		for i := range want {
			if i <= int(x) {
				assert.Equal(t, want[i], c.registers[i])
			} else {
				assert.Equal(t, uint8(0), c.registers[i])
			}
		}
		assert.Equal(t, uint16(0x400), c.Index())
	}
}

func TestStep_Faults(t *testing.T) {
	tests := []struct {
		name    string
		program []byte
		setup   func(c *Interpreter)
		wantErr error
	}{
		{
			name:    "unknown opcode",
			program: []byte{0xFF, 0xFF},
			wantErr: ErrUnknownOpcode,
		},
		{
			name:    "return with empty stack",
			program: []byte{0x00, 0xEE},
			wantErr: ErrStackUnderflow,
		},
		{
			name:    "call with full stack",
			program: []byte{0x23, 0x00},
			setup: func(c *Interpreter) {
				c.sp = StackSize
			},
			wantErr: ErrStackOverflow,
		},
		{
			name:    "store registers past memory end",
			program: []byte{0xFF, 0x55},
			setup: func(c *Interpreter) {
				c.index = MemorySize - 4
			},
			wantErr: ErrOutOfBounds,
		},
		{
			name:    "load registers past memory end",
			program: []byte{0xF3, 0x65},
			setup: func(c *Interpreter) {
				c.index = MemorySize - 3
			},
			wantErr: ErrOutOfBounds,
		},
		{
			name:    "bcd past memory end",
			program: []byte{0xF1, 0x33},
			setup: func(c *Interpreter) {
				c.index = MemorySize - 2
			},
			wantErr: ErrOutOfBounds,
		},
		{
			name:    "sprite past memory end",
			program: []byte{0xD0, 0x15},
			setup: func(c *Interpreter) {
				c.index = MemorySize - 4
			},
			wantErr: ErrOutOfBounds,
		},
		{
			name:    "key check with invalid key",
			program: []byte{0xE1, 0x9E},
			setup: func(c *Interpreter) {
				c.registers[1] = 0x10
			},
			wantErr: ErrInvalidKey,
		},
		{
			name:    "fetch past memory end",
			program: []byte{0xBF, 0xFF},
			setup: func(c *Interpreter) {
				c.registers[0] = 0x01
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestInterpreter(t, tt.program...)
			if tt.setup != nil {
				tt.setup(c)
			}

			if tt.wantErr == nil {
				// the faulting instruction is the one after the setup jump
				runSteps(t, c, 1)
				tt.wantErr = ErrOutOfBounds
			}

			before := *c
			err := c.Step()
			assert.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			var fault *Fault
			assert.True(t, errors.As(err, &fault))
			assert.Equal(t, before.pc, fault.PC)

			// a faulted cycle does not change any state
			assert.True(t, before == *c)

			// faults are not self healing
			assert.True(t, errors.Is(c.Step(), tt.wantErr))
		})
	}
}

func TestFault_Error(t *testing.T) {
	fault := &Fault{PC: 0x204, Word: 0xFFFF, Err: ErrUnknownOpcode}
	assert.Equal(t, "fault at $0204 (opcode $FFFF): unknown opcode", fault.Error())
	assert.True(t, errors.Is(fault, ErrUnknownOpcode))
}

func TestExecute_Invalid(t *testing.T) {
	c := newTestInterpreter(t)
	err := c.Execute(Instruction{Word: 0x0123})
	assert.True(t, errors.Is(err, ErrUnknownOpcode))
}

func TestExecute_OperandsOutOfRange(t *testing.T) {
	c := newTestInterpreter(t)

	// register operands above VF wrap to their low nibble
	assert.NoError(t, c.Execute(Instruction{Op: OpLoadByte, X: 0x12, NN: 0x42}))
	assert.Equal(t, uint8(0x42), c.Register(0x2))

	assert.NoError(t, c.Execute(Instruction{Op: OpMove, X: 0x13, Y: 0xF2}))
	assert.Equal(t, uint8(0x42), c.Register(0x3))

	c.index = 0x300
	assert.NoError(t, c.Execute(Instruction{Op: OpStoreRegisters, X: 0xFF}))
	assert.Equal(t, uint8(0x42), c.memory[0x302])
	assert.NoError(t, c.Execute(Instruction{Op: OpLoadRegisters, X: 0x20}))
	assert.Equal(t, uint8(0x42), c.Register(0x3))

	assert.NoError(t, c.Execute(Instruction{Op: OpDraw, X: 0x10, Y: 0x10, N: 0x21}))
}

func mustDecode(t *testing.T, word uint16) Instruction {
	t.Helper()

	ins, err := Decode(word)
	if err != nil {
		t.Fatalf("decoding $%04X: %v", word, err)
	}
	return ins
}
