package disasm

import (
	"fmt"
	"slices"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/program"
	"github.com/retroenv/retrogolib/set"
)

const (
	funcNaming  = "_func_%04x"
	labelNaming = "_label_%04x"
	dataNaming  = "_data_%04x"
)

// processJumpDestinations processes all jump destinations and updates the callers with
// the generated jump destination label name.
func (dis *Disasm) processJumpDestinations() {
	for _, address := range sortedAddresses(dis.branchDestinations) {
		offsetInfo := dis.offsetInfo(address)

		name := offsetInfo.Label
		if name == "" {
			if offsetInfo.IsType(program.CallDestination) {
				name = fmt.Sprintf(funcNaming, address)
			} else {
				name = fmt.Sprintf(labelNaming, address)
			}
			offsetInfo.Label = name
		}

		// if the offset is marked as code but does not have opcode bytes, the jump destination
		// is inside the second byte of an instruction.
		if offsetInfo.IsType(program.CodeOffset) && len(offsetInfo.Data) == 0 {
			dis.handleJumpIntoInstruction(address)
		}

		dis.updateReferences(address, name)
	}
}

// processDataReferences names all index register load targets that are not
// already labeled as branch destinations.
func (dis *Disasm) processDataReferences() {
	for _, address := range sortedAddresses(dis.dataReferences) {
		offsetInfo := dis.offsetInfo(address)
		offsetInfo.SetType(program.DataReference)

		name := offsetInfo.Label
		if name == "" {
			name = fmt.Sprintf(dataNaming, address)
			offsetInfo.Label = name
		}

		if offsetInfo.IsType(program.CodeOffset) && len(offsetInfo.Data) == 0 {
			dis.handleJumpIntoInstruction(address)
		}

		dis.updateReferences(address, name)
	}
}

// updateReferences replaces the numeric operand of all instructions that
// reference the address with the label name.
func (dis *Disasm) updateReferences(address uint16, name string) {
	for _, from := range dis.referencedFrom[address] {
		ins, ok := dis.instructions[from]
		if !ok {
			continue
		}
		offsetInfo := dis.offsetInfo(from)
		if !offsetInfo.IsType(program.CodeOffset) {
			continue // converted to data
		}
		offsetInfo.Code = formatReference(ins, name)
	}
}

// handleJumpIntoInstruction converts an instruction that has a jump destination label inside
// its second opcode byte into data.
func (dis *Disasm) handleJumpIntoInstruction(address uint16) {
	start := address - 1
	offsetInfo := dis.offsetInfo(start)

	offsetInfo.Comment = "branch into instruction detected: " + offsetInfo.Code
	offsetInfo.Code = ""
	offsetInfo.ClearType(program.CodeOffset)
	offsetInfo.SetType(program.CodeAsData | program.DataOffset)

	second := dis.offsetInfo(address)
	second.ClearType(program.CodeOffset)
	second.SetType(program.CodeAsData | program.DataOffset)
	second.Data = offsetInfo.Data[1:]
	offsetInfo.Data = offsetInfo.Data[:1]

	delete(dis.instructions, start)
}

// formatReference formats an instruction with a label as address operand.
func formatReference(ins chip8.Instruction, name string) string {
	switch ins.Op {
	case chip8.OpJump, chip8.OpCall:
		return ins.Op.Name() + " " + name
	case chip8.OpLoadIndex:
		return ins.Op.Name() + " I, " + name
	default:
		return ins.String()
	}
}

func sortedAddresses(addresses set.Set[uint16]) []uint16 {
	sorted := make([]uint16, 0, len(addresses))
	for address := range addresses {
		sorted = append(sorted, address)
	}
	slices.Sort(sorted)
	return sorted
}
