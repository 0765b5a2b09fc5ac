package cpu

import "fmt"

// Disassemble formats the instruction at pc in assembler syntax and
// returns it with the instruction length. Bytes with no descriptor come
// back as a ".byte" directive of length 1.
func Disassemble(mem MemoryInterface, pc uint16) (string, int) {
	code := mem.Read(pc)
	op := opcodeTable[code]
	if op == nil {
		return fmt.Sprintf(".byte $%02X", code), 1
	}

	lo := mem.Read(pc + 1)
	word := read16(mem, pc+1)

	var operand string
	switch op.Mode {
	case Implied:
	case Accumulator:
		operand = "A"
	case Immediate:
		operand = fmt.Sprintf("#$%02X", lo)
	case ZeroPage:
		operand = fmt.Sprintf("$%02X", lo)
	case ZeroPageX:
		operand = fmt.Sprintf("$%02X,X", lo)
	case ZeroPageY:
		operand = fmt.Sprintf("$%02X,Y", lo)
	case Absolute:
		operand = fmt.Sprintf("$%04X", word)
	case AbsoluteX:
		operand = fmt.Sprintf("$%04X,X", word)
	case AbsoluteY:
		operand = fmt.Sprintf("$%04X,Y", word)
	case IndexedIndirect:
		operand = fmt.Sprintf("($%02X,X)", lo)
	case IndirectIndexed:
		operand = fmt.Sprintf("($%02X),Y", lo)
	}

	if operand == "" {
		return op.Mnemonic.String(), int(op.Bytes)
	}
	return op.Mnemonic.String() + " " + operand, int(op.Bytes)
}
