package cpu

import "fmt"

// AddressingMode describes how an instruction's operand address is computed
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Absolute
	AbsoluteX
	AbsoluteY
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

func (m AddressingMode) String() string {
	switch m {
	case Implied:
		return "Implied"
	case Accumulator:
		return "Accumulator"
	case Immediate:
		return "Immediate"
	case ZeroPage:
		return "ZeroPage"
	case ZeroPageX:
		return "ZeroPageX"
	case ZeroPageY:
		return "ZeroPageY"
	case Absolute:
		return "Absolute"
	case AbsoluteX:
		return "AbsoluteX"
	case AbsoluteY:
		return "AbsoluteY"
	case IndexedIndirect:
		return "IndexedIndirect"
	case IndirectIndexed:
		return "IndirectIndexed"
	}
	return "unknown addressing mode"
}

// OperandBytes returns the number of bytes following the opcode for the mode
func (m AddressingMode) OperandBytes() int {
	switch m {
	case Implied, Accumulator:
		return 0
	case Absolute, AbsoluteX, AbsoluteY:
		return 2
	default:
		return 1
	}
}

// HasOperand reports whether the mode resolves to a memory address
func (m AddressingMode) HasOperand() bool {
	return m != Implied && m != Accumulator
}

// Resolve returns the effective operand address for mode. pc must point at
// the first operand byte, i.e. just past the opcode. Resolve only reads
// memory; it never changes CPU state. All 8-bit index arithmetic wraps
// within the zero page and all 16-bit arithmetic wraps at 0xFFFF.
func Resolve(mode AddressingMode, pc uint16, x, y uint8, mem MemoryInterface) (uint16, error) {
	switch mode {
	case Immediate:
		return pc, nil

	case ZeroPage:
		return uint16(mem.Read(pc)), nil

	case ZeroPageX:
		return uint16(mem.Read(pc) + x), nil

	case ZeroPageY:
		return uint16(mem.Read(pc) + y), nil

	case Absolute:
		return read16(mem, pc), nil

	case AbsoluteX:
		return read16(mem, pc) + uint16(x), nil

	case AbsoluteY:
		return read16(mem, pc) + uint16(y), nil

	case IndexedIndirect:
		ptr := mem.Read(pc) + x
		return readZeroPage16(mem, ptr), nil

	case IndirectIndexed:
		base := readZeroPage16(mem, mem.Read(pc))
		return base + uint16(y), nil
	}

	return 0, fmt.Errorf("%w: %v", ErrUnsupportedAddressingMode, mode)
}

// read16 reads a little-endian word at addr
func read16(mem MemoryInterface, addr uint16) uint16 {
	low := uint16(mem.Read(addr))
	high := uint16(mem.Read(addr + 1))
	return (high << 8) | low
}

// write16 writes a little-endian word at addr
func write16(mem MemoryInterface, addr uint16, value uint16) {
	mem.Write(addr, uint8(value&0xFF))
	mem.Write(addr+1, uint8(value>>8))
}

// readZeroPage16 reads a pointer from the zero page; the high byte wraps to
// 0x00 when ptr is 0xFF
func readZeroPage16(mem MemoryInterface, ptr uint8) uint16 {
	low := uint16(mem.Read(uint16(ptr)))
	high := uint16(mem.Read(uint16(ptr + 1)))
	return (high << 8) | low
}
