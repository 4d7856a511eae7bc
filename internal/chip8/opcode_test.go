package chip8

import (
	"errors"
	"fmt"
	"testing"

	chip8cpu "github.com/retroenv/retrogolib/arch/cpu/chip8"
	"github.com/retroenv/retrogolib/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		word uint16
		op   Op
	}{
		{0x00E0, OpClear},
		{0x00EE, OpReturn},
		{0x1234, OpJump},
		{0x2345, OpCall},
		{0x3A12, OpSkipEqualByte},
		{0x4A12, OpSkipNotEqualByte},
		{0x5AB0, OpSkipEqualRegister},
		{0x6A12, OpLoadByte},
		{0x7A12, OpAddByte},
		{0x8AB0, OpMove},
		{0x8AB1, OpOr},
		{0x8AB2, OpAnd},
		{0x8AB3, OpXor},
		{0x8AB4, OpAdd},
		{0x8AB5, OpSub},
		{0x8AB6, OpShiftRight},
		{0x8AB7, OpSubReverse},
		{0x8ABE, OpShiftLeft},
		{0x9AB0, OpSkipNotEqualRegister},
		{0xA123, OpLoadIndex},
		{0xB123, OpJumpOffset},
		{0xCA12, OpRandom},
		{0xDAB5, OpDraw},
		{0xEA9E, OpSkipKeyPressed},
		{0xEAA1, OpSkipKeyReleased},
		{0xFA07, OpLoadDelay},
		{0xFA0A, OpWaitKey},
		{0xFA15, OpSetDelay},
		{0xFA18, OpSetSound},
		{0xFA1E, OpAddIndex},
		{0xFA29, OpLoadFont},
		{0xFA33, OpStoreBCD},
		{0xFA55, OpStoreRegisters},
		{0xFA65, OpLoadRegisters},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%04X", tt.word), func(t *testing.T) {
			ins, err := Decode(tt.word)
			assert.NoError(t, err)
			assert.Equal(t, tt.op, ins.Op)
			assert.Equal(t, tt.word, ins.Word)
		})
	}
}

func TestDecode_Operands(t *testing.T) {
	ins, err := Decode(0xDAB5)
	assert.NoError(t, err)
	assert.Equal(t, uint8(0xA), ins.X)
	assert.Equal(t, uint8(0xB), ins.Y)
	assert.Equal(t, uint8(0x5), ins.N)
	assert.Equal(t, uint8(0xB5), ins.NN)
	assert.Equal(t, uint16(0xAB5), ins.NNN)
}

func TestDecode_Unknown(t *testing.T) {
	tests := []struct {
		name string
		word uint16
	}{
		{"SYS call", 0x0123},
		{"zero word", 0x0000},
		{"5xy with non zero nibble", 0x5AB1},
		{"undefined ALU operation", 0x8AB8},
		{"undefined 8xyF", 0x8ABF},
		{"9xy with non zero nibble", 0x9AB1},
		{"non canonical key check", 0xEA93},
		{"undefined E operation", 0xEA00},
		{"undefined F operation", 0xFAFF},
		{"all bits set", 0xFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins, err := Decode(tt.word)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnknownOpcode))
			assert.Equal(t, OpInvalid, ins.Op)
			assert.Equal(t, tt.word, ins.Word)
		})
	}
}

func TestInstruction_String(t *testing.T) {
	tests := []struct {
		name     string
		word     uint16
		expected string
	}{
		{"CLS instruction", 0x00E0, "cls"},
		{"RET instruction", 0x00EE, "ret"},
		{"JP instruction", 0x1234, "jp $234"},
		{"JP V0 instruction", 0xB234, "jp V0, $234"},
		{"CALL instruction", 0x2234, "call $234"},
		{"SE Vx, byte", 0x3234, "se V2, $34"},
		{"SE Vx, Vy", 0x5230, "se V2, V3"},
		{"SNE Vx, byte", 0x4234, "sne V2, $34"},
		{"SNE Vx, Vy", 0x9230, "sne V2, V3"},
		{"LD Vx, byte", 0x6234, "ld V2, $34"},
		{"LD Vx, Vy", 0x8230, "ld V2, V3"},
		{"LD I, addr", 0xA234, "ld I, $234"},
		{"ADD Vx, byte", 0x7234, "add V2, $34"},
		{"ADD Vx, Vy", 0x8234, "add V2, V3"},
		{"OR Vx, Vy", 0x8231, "or V2, V3"},
		{"AND Vx, Vy", 0x8232, "and V2, V3"},
		{"XOR Vx, Vy", 0x8233, "xor V2, V3"},
		{"SUB Vx, Vy", 0x8235, "sub V2, V3"},
		{"SUBN Vx, Vy", 0x8237, "subn V2, V3"},
		{"SHR Vx", 0x8236, "shr V2"},
		{"SHL Vx", 0x823E, "shl V2"},
		{"RND Vx, byte", 0xC234, "rnd V2, $34"},
		{"DRW Vx, Vy, n", 0xD235, "drw V2, V3, $5"},
		{"SKP Vx", 0xE29E, "skp V2"},
		{"SKNP Vx", 0xE2A1, "sknp V2"},
		{"LD Vx, DT", 0xF207, "ld V2, DT"},
		{"LD Vx, K", 0xF20A, "ld V2, K"},
		{"LD DT, Vx", 0xF215, "ld DT, V2"},
		{"LD ST, Vx", 0xF218, "ld ST, V2"},
		{"ADD I, Vx", 0xF21E, "add I, V2"},
		{"LD F, Vx", 0xF229, "ld F, V2"},
		{"LD B, Vx", 0xF233, "ld B, V2"},
		{"LD [I], Vx", 0xF255, "ld [I], V2"},
		{"LD Vx, [I]", 0xF265, "ld V2, [I]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins, err := Decode(tt.word)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, ins.String())
		})
	}
}

func TestInstruction_StringUnknown(t *testing.T) {
	ins, err := Decode(0xFFFF)
	assert.Error(t, err)
	assert.Equal(t, ".word $FFFF", ins.String())
}

func TestOp_Name(t *testing.T) {
	assert.Equal(t, chip8cpu.Drw.Name, OpDraw.Name())
	assert.Equal(t, chip8cpu.Ld.Name, OpLoadRegisters.Name())
	assert.Equal(t, "", OpInvalid.Name())
	assert.Equal(t, "", Op(200).Name())
}

func TestInstruction_ControlFlow(t *testing.T) {
	tests := []struct {
		name      string
		word      uint16
		isJump    bool
		isCall    bool
		isReturn  bool
		isSkip    bool
		isDataRef bool
		target    uint16
		hasTarget bool
	}{
		{name: "jump", word: 0x1234, isJump: true, target: 0x234, hasTarget: true},
		{name: "indexed jump", word: 0xB234, isJump: true},
		{name: "call", word: 0x2300, isCall: true, target: 0x300, hasTarget: true},
		{name: "return", word: 0x00EE, isReturn: true},
		{name: "skip equal byte", word: 0x3234, isSkip: true},
		{name: "skip not equal byte", word: 0x4234, isSkip: true},
		{name: "skip equal register", word: 0x5230, isSkip: true},
		{name: "skip not equal register", word: 0x9230, isSkip: true},
		{name: "skip key pressed", word: 0xE29E, isSkip: true},
		{name: "skip key released", word: 0xE2A1, isSkip: true},
		{name: "load index", word: 0xA234, isDataRef: true, target: 0x234, hasTarget: true},
		{name: "load register", word: 0x6234},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins, err := Decode(tt.word)
			assert.NoError(t, err)
			assert.Equal(t, tt.isJump, ins.IsJump())
			assert.Equal(t, tt.isCall, ins.IsCall())
			assert.Equal(t, tt.isReturn, ins.IsReturn())
			assert.Equal(t, tt.isSkip, ins.IsSkip())
			assert.Equal(t, tt.isDataRef, ins.IsDataReference())

			target, ok := ins.Target()
			assert.Equal(t, tt.hasTarget, ok)
			assert.Equal(t, tt.target, target)
		})
	}
}

func TestDecode_OpcodeTable(t *testing.T) {
	decoded := 0
	for w := range 0x10000 {
		word := uint16(w)
		ins, err := Decode(word)
		if err != nil {
			assert.True(t, errors.Is(err, ErrUnknownOpcode))
			continue
		}
		decoded++

		// every decoded word matches a table entry with the same instruction
		found := false
		for _, opcode := range chip8cpu.Opcodes[int(word>>12)] {
			if opcode.Info.Mask&word == opcode.Info.Value && opcode.Instruction == instructions[ins.Op] {
				found = true
				break
			}
		}
		assert.True(t, found, "word %04X", word)
	}

	// 10 full nibbles, 5xy0/9xy0, 9 ALU ops, cls/ret, 2 key skips and 9 Fx ops
	assert.Equal(t, 10*4096+2*256+9*256+2+2*16+9*16, decoded)
}
