package cpu

import "fmt"

// Mnemonic identifies an instruction independent of its addressing mode
type Mnemonic int

const (
	ADC Mnemonic = iota
	AND
	ASL
	BIT
	BRK
	CLC
	CLD
	CLI
	CLV
	CMP
	CPX
	CPY
	DEC
	DEX
	DEY
	EOR
	INC
	INX
	INY
	JMP
	JSR
	LDA
	LDX
	LDY
	LSR
	NOP
	ORA
	PHA
	PHP
	PLA
	PLP
	ROL
	ROR
	RTS
	SBC
	SEC
	SED
	SEI
	STA
	STX
	STY
	TAX
	TAY
	TSX
	TXA
	TXS
	TYA

	mnemonicCount
)

var mnemonicNames = [mnemonicCount]string{
	"ADC", "AND", "ASL", "BIT", "BRK", "CLC", "CLD", "CLI", "CLV", "CMP",
	"CPX", "CPY", "DEC", "DEX", "DEY", "EOR", "INC", "INX", "INY", "JMP",
	"JSR", "LDA", "LDX", "LDY", "LSR", "NOP", "ORA", "PHA", "PHP", "PLA",
	"PLP", "ROL", "ROR", "RTS", "SBC", "SEC", "SED", "SEI", "STA", "STX",
	"STY", "TAX", "TAY", "TSX", "TXA", "TXS", "TYA",
}

func (m Mnemonic) String() string {
	if m < 0 || m >= mnemonicCount {
		return "???"
	}
	return mnemonicNames[m]
}

// Opcode describes one opcode byte. Cycles is the base cost and is not
// consumed by the execution engine.
type Opcode struct {
	Code     uint8
	Mnemonic Mnemonic
	Mode     AddressingMode
	Bytes    uint8
	Cycles   uint8

	exec handler
}

// opcodeList is the single source of opcode metadata. Adding an instruction
// means adding rows here and a handler in handlers.go.
var opcodeList = []Opcode{
	// Load/Store
	{Code: 0xA9, Mnemonic: LDA, Mode: Immediate, Bytes: 2, Cycles: 2},
	{Code: 0xA5, Mnemonic: LDA, Mode: ZeroPage, Bytes: 2, Cycles: 3},
	{Code: 0xB5, Mnemonic: LDA, Mode: ZeroPageX, Bytes: 2, Cycles: 4},
	{Code: 0xAD, Mnemonic: LDA, Mode: Absolute, Bytes: 3, Cycles: 4},
	{Code: 0xBD, Mnemonic: LDA, Mode: AbsoluteX, Bytes: 3, Cycles: 4},
	{Code: 0xB9, Mnemonic: LDA, Mode: AbsoluteY, Bytes: 3, Cycles: 4},
	{Code: 0xA1, Mnemonic: LDA, Mode: IndexedIndirect, Bytes: 2, Cycles: 6},
	{Code: 0xB1, Mnemonic: LDA, Mode: IndirectIndexed, Bytes: 2, Cycles: 5},

	{Code: 0xA2, Mnemonic: LDX, Mode: Immediate, Bytes: 2, Cycles: 2},
	{Code: 0xA6, Mnemonic: LDX, Mode: ZeroPage, Bytes: 2, Cycles: 3},
	{Code: 0xB6, Mnemonic: LDX, Mode: ZeroPageY, Bytes: 2, Cycles: 4},
	{Code: 0xAE, Mnemonic: LDX, Mode: Absolute, Bytes: 3, Cycles: 4},
	{Code: 0xBE, Mnemonic: LDX, Mode: AbsoluteY, Bytes: 3, Cycles: 4},

	{Code: 0xA0, Mnemonic: LDY, Mode: Immediate, Bytes: 2, Cycles: 2},
	{Code: 0xA4, Mnemonic: LDY, Mode: ZeroPage, Bytes: 2, Cycles: 3},
	{Code: 0xB4, Mnemonic: LDY, Mode: ZeroPageX, Bytes: 2, Cycles: 4},
	{Code: 0xAC, Mnemonic: LDY, Mode: Absolute, Bytes: 3, Cycles: 4},
	{Code: 0xBC, Mnemonic: LDY, Mode: AbsoluteX, Bytes: 3, Cycles: 4},

	{Code: 0x85, Mnemonic: STA, Mode: ZeroPage, Bytes: 2, Cycles: 3},
	{Code: 0x95, Mnemonic: STA, Mode: ZeroPageX, Bytes: 2, Cycles: 4},
	{Code: 0x8D, Mnemonic: STA, Mode: Absolute, Bytes: 3, Cycles: 4},
	{Code: 0x9D, Mnemonic: STA, Mode: AbsoluteX, Bytes: 3, Cycles: 5},
	{Code: 0x99, Mnemonic: STA, Mode: AbsoluteY, Bytes: 3, Cycles: 5},
	{Code: 0x81, Mnemonic: STA, Mode: IndexedIndirect, Bytes: 2, Cycles: 6},
	{Code: 0x91, Mnemonic: STA, Mode: IndirectIndexed, Bytes: 2, Cycles: 6},

	{Code: 0x86, Mnemonic: STX, Mode: ZeroPage, Bytes: 2, Cycles: 3},
	{Code: 0x96, Mnemonic: STX, Mode: ZeroPageY, Bytes: 2, Cycles: 4},
	{Code: 0x8E, Mnemonic: STX, Mode: Absolute, Bytes: 3, Cycles: 4},

	{Code: 0x84, Mnemonic: STY, Mode: ZeroPage, Bytes: 2, Cycles: 3},
	{Code: 0x94, Mnemonic: STY, Mode: ZeroPageX, Bytes: 2, Cycles: 4},
	{Code: 0x8C, Mnemonic: STY, Mode: Absolute, Bytes: 3, Cycles: 4},

	// Register transfers
	{Code: 0xAA, Mnemonic: TAX, Mode: Implied, Bytes: 1, Cycles: 2},
	{Code: 0xA8, Mnemonic: TAY, Mode: Implied, Bytes: 1, Cycles: 2},
	{Code: 0x8A, Mnemonic: TXA, Mode: Implied, Bytes: 1, Cycles: 2},
	{Code: 0x98, Mnemonic: TYA, Mode: Implied, Bytes: 1, Cycles: 2},
	{Code: 0xBA, Mnemonic: TSX, Mode: Implied, Bytes: 1, Cycles: 2},
	{Code: 0x9A, Mnemonic: TXS, Mode: Implied, Bytes: 1, Cycles: 2},

	// Stack
	{Code: 0x48, Mnemonic: PHA, Mode: Implied, Bytes: 1, Cycles: 3},
	{Code: 0x08, Mnemonic: PHP, Mode: Implied, Bytes: 1, Cycles: 3},
	{Code: 0x68, Mnemonic: PLA, Mode: Implied, Bytes: 1, Cycles: 4},
	{Code: 0x28, Mnemonic: PLP, Mode: Implied, Bytes: 1, Cycles: 4},

	// Arithmetic
	{Code: 0x69, Mnemonic: ADC, Mode: Immediate, Bytes: 2, Cycles: 2},
	{Code: 0x65, Mnemonic: ADC, Mode: ZeroPage, Bytes: 2, Cycles: 3},
	{Code: 0x75, Mnemonic: ADC, Mode: ZeroPageX, Bytes: 2, Cycles: 4},
	{Code: 0x6D, Mnemonic: ADC, Mode: Absolute, Bytes: 3, Cycles: 4},
	{Code: 0x7D, Mnemonic: ADC, Mode: AbsoluteX, Bytes: 3, Cycles: 4},
	{Code: 0x79, Mnemonic: ADC, Mode: AbsoluteY, Bytes: 3, Cycles: 4},
	{Code: 0x61, Mnemonic: ADC, Mode: IndexedIndirect, Bytes: 2, Cycles: 6},
	{Code: 0x71, Mnemonic: ADC, Mode: IndirectIndexed, Bytes: 2, Cycles: 5},

	{Code: 0xE9, Mnemonic: SBC, Mode: Immediate, Bytes: 2, Cycles: 2},
	{Code: 0xE5, Mnemonic: SBC, Mode: ZeroPage, Bytes: 2, Cycles: 3},
	{Code: 0xF5, Mnemonic: SBC, Mode: ZeroPageX, Bytes: 2, Cycles: 4},
	{Code: 0xED, Mnemonic: SBC, Mode: Absolute, Bytes: 3, Cycles: 4},
	{Code: 0xFD, Mnemonic: SBC, Mode: AbsoluteX, Bytes: 3, Cycles: 4},
	{Code: 0xF9, Mnemonic: SBC, Mode: AbsoluteY, Bytes: 3, Cycles: 4},
	{Code: 0xE1, Mnemonic: SBC, Mode: IndexedIndirect, Bytes: 2, Cycles: 6},
	{Code: 0xF1, Mnemonic: SBC, Mode: IndirectIndexed, Bytes: 2, Cycles: 5},

	{Code: 0xC9, Mnemonic: CMP, Mode: Immediate, Bytes: 2, Cycles: 2},
	{Code: 0xC5, Mnemonic: CMP, Mode: ZeroPage, Bytes: 2, Cycles: 3},
	{Code: 0xD5, Mnemonic: CMP, Mode: ZeroPageX, Bytes: 2, Cycles: 4},
	{Code: 0xCD, Mnemonic: CMP, Mode: Absolute, Bytes: 3, Cycles: 4},
	{Code: 0xDD, Mnemonic: CMP, Mode: AbsoluteX, Bytes: 3, Cycles: 4},
	{Code: 0xD9, Mnemonic: CMP, Mode: AbsoluteY, Bytes: 3, Cycles: 4},
	{Code: 0xC1, Mnemonic: CMP, Mode: IndexedIndirect, Bytes: 2, Cycles: 6},
	{Code: 0xD1, Mnemonic: CMP, Mode: IndirectIndexed, Bytes: 2, Cycles: 5},

	{Code: 0xE0, Mnemonic: CPX, Mode: Immediate, Bytes: 2, Cycles: 2},
	{Code: 0xE4, Mnemonic: CPX, Mode: ZeroPage, Bytes: 2, Cycles: 3},
	{Code: 0xEC, Mnemonic: CPX, Mode: Absolute, Bytes: 3, Cycles: 4},

	{Code: 0xC0, Mnemonic: CPY, Mode: Immediate, Bytes: 2, Cycles: 2},
	{Code: 0xC4, Mnemonic: CPY, Mode: ZeroPage, Bytes: 2, Cycles: 3},
	{Code: 0xCC, Mnemonic: CPY, Mode: Absolute, Bytes: 3, Cycles: 4},

	// Increment/Decrement
	{Code: 0xE6, Mnemonic: INC, Mode: ZeroPage, Bytes: 2, Cycles: 5},
	{Code: 0xF6, Mnemonic: INC, Mode: ZeroPageX, Bytes: 2, Cycles: 6},
	{Code: 0xEE, Mnemonic: INC, Mode: Absolute, Bytes: 3, Cycles: 6},
	{Code: 0xFE, Mnemonic: INC, Mode: AbsoluteX, Bytes: 3, Cycles: 7},

	{Code: 0xC6, Mnemonic: DEC, Mode: ZeroPage, Bytes: 2, Cycles: 5},
	{Code: 0xD6, Mnemonic: DEC, Mode: ZeroPageX, Bytes: 2, Cycles: 6},
	{Code: 0xCE, Mnemonic: DEC, Mode: Absolute, Bytes: 3, Cycles: 6},
	{Code: 0xDE, Mnemonic: DEC, Mode: AbsoluteX, Bytes: 3, Cycles: 7},

	{Code: 0xE8, Mnemonic: INX, Mode: Implied, Bytes: 1, Cycles: 2},
	{Code: 0xC8, Mnemonic: INY, Mode: Implied, Bytes: 1, Cycles: 2},
	{Code: 0xCA, Mnemonic: DEX, Mode: Implied, Bytes: 1, Cycles: 2},
	{Code: 0x88, Mnemonic: DEY, Mode: Implied, Bytes: 1, Cycles: 2},

	// Logical
	{Code: 0x29, Mnemonic: AND, Mode: Immediate, Bytes: 2, Cycles: 2},
	{Code: 0x25, Mnemonic: AND, Mode: ZeroPage, Bytes: 2, Cycles: 3},
	{Code: 0x35, Mnemonic: AND, Mode: ZeroPageX, Bytes: 2, Cycles: 4},
	{Code: 0x2D, Mnemonic: AND, Mode: Absolute, Bytes: 3, Cycles: 4},
	{Code: 0x3D, Mnemonic: AND, Mode: AbsoluteX, Bytes: 3, Cycles: 4},
	{Code: 0x39, Mnemonic: AND, Mode: AbsoluteY, Bytes: 3, Cycles: 4},
	{Code: 0x21, Mnemonic: AND, Mode: IndexedIndirect, Bytes: 2, Cycles: 6},
	{Code: 0x31, Mnemonic: AND, Mode: IndirectIndexed, Bytes: 2, Cycles: 5},

	{Code: 0x09, Mnemonic: ORA, Mode: Immediate, Bytes: 2, Cycles: 2},
	{Code: 0x05, Mnemonic: ORA, Mode: ZeroPage, Bytes: 2, Cycles: 3},
	{Code: 0x15, Mnemonic: ORA, Mode: ZeroPageX, Bytes: 2, Cycles: 4},
	{Code: 0x0D, Mnemonic: ORA, Mode: Absolute, Bytes: 3, Cycles: 4},
	{Code: 0x1D, Mnemonic: ORA, Mode: AbsoluteX, Bytes: 3, Cycles: 4},
	{Code: 0x19, Mnemonic: ORA, Mode: AbsoluteY, Bytes: 3, Cycles: 4},
	{Code: 0x01, Mnemonic: ORA, Mode: IndexedIndirect, Bytes: 2, Cycles: 6},
	{Code: 0x11, Mnemonic: ORA, Mode: IndirectIndexed, Bytes: 2, Cycles: 5},

	{Code: 0x49, Mnemonic: EOR, Mode: Immediate, Bytes: 2, Cycles: 2},
	{Code: 0x45, Mnemonic: EOR, Mode: ZeroPage, Bytes: 2, Cycles: 3},
	{Code: 0x55, Mnemonic: EOR, Mode: ZeroPageX, Bytes: 2, Cycles: 4},
	{Code: 0x4D, Mnemonic: EOR, Mode: Absolute, Bytes: 3, Cycles: 4},
	{Code: 0x5D, Mnemonic: EOR, Mode: AbsoluteX, Bytes: 3, Cycles: 4},
	{Code: 0x59, Mnemonic: EOR, Mode: AbsoluteY, Bytes: 3, Cycles: 4},
	{Code: 0x41, Mnemonic: EOR, Mode: IndexedIndirect, Bytes: 2, Cycles: 6},
	{Code: 0x51, Mnemonic: EOR, Mode: IndirectIndexed, Bytes: 2, Cycles: 5},

	{Code: 0x24, Mnemonic: BIT, Mode: ZeroPage, Bytes: 2, Cycles: 3},
	{Code: 0x2C, Mnemonic: BIT, Mode: Absolute, Bytes: 3, Cycles: 4},

	// Shift and rotate
	{Code: 0x0A, Mnemonic: ASL, Mode: Accumulator, Bytes: 1, Cycles: 2},
	{Code: 0x06, Mnemonic: ASL, Mode: ZeroPage, Bytes: 2, Cycles: 5},
	{Code: 0x16, Mnemonic: ASL, Mode: ZeroPageX, Bytes: 2, Cycles: 6},
	{Code: 0x0E, Mnemonic: ASL, Mode: Absolute, Bytes: 3, Cycles: 6},
	{Code: 0x1E, Mnemonic: ASL, Mode: AbsoluteX, Bytes: 3, Cycles: 7},

	{Code: 0x4A, Mnemonic: LSR, Mode: Accumulator, Bytes: 1, Cycles: 2},
	{Code: 0x46, Mnemonic: LSR, Mode: ZeroPage, Bytes: 2, Cycles: 5},
	{Code: 0x56, Mnemonic: LSR, Mode: ZeroPageX, Bytes: 2, Cycles: 6},
	{Code: 0x4E, Mnemonic: LSR, Mode: Absolute, Bytes: 3, Cycles: 6},
	{Code: 0x5E, Mnemonic: LSR, Mode: AbsoluteX, Bytes: 3, Cycles: 7},

	{Code: 0x2A, Mnemonic: ROL, Mode: Accumulator, Bytes: 1, Cycles: 2},
	{Code: 0x26, Mnemonic: ROL, Mode: ZeroPage, Bytes: 2, Cycles: 5},
	{Code: 0x36, Mnemonic: ROL, Mode: ZeroPageX, Bytes: 2, Cycles: 6},
	{Code: 0x2E, Mnemonic: ROL, Mode: Absolute, Bytes: 3, Cycles: 6},
	{Code: 0x3E, Mnemonic: ROL, Mode: AbsoluteX, Bytes: 3, Cycles: 7},

	{Code: 0x6A, Mnemonic: ROR, Mode: Accumulator, Bytes: 1, Cycles: 2},
	{Code: 0x66, Mnemonic: ROR, Mode: ZeroPage, Bytes: 2, Cycles: 5},
	{Code: 0x76, Mnemonic: ROR, Mode: ZeroPageX, Bytes: 2, Cycles: 6},
	{Code: 0x6E, Mnemonic: ROR, Mode: Absolute, Bytes: 3, Cycles: 6},
	{Code: 0x7E, Mnemonic: ROR, Mode: AbsoluteX, Bytes: 3, Cycles: 7},

	// Jumps and subroutines
	{Code: 0x4C, Mnemonic: JMP, Mode: Absolute, Bytes: 3, Cycles: 3},
	{Code: 0x20, Mnemonic: JSR, Mode: Absolute, Bytes: 3, Cycles: 6},
	{Code: 0x60, Mnemonic: RTS, Mode: Implied, Bytes: 1, Cycles: 6},

	// Status flag changes
	{Code: 0x18, Mnemonic: CLC, Mode: Implied, Bytes: 1, Cycles: 2},
	{Code: 0x38, Mnemonic: SEC, Mode: Implied, Bytes: 1, Cycles: 2},
	{Code: 0x58, Mnemonic: CLI, Mode: Implied, Bytes: 1, Cycles: 2},
	{Code: 0x78, Mnemonic: SEI, Mode: Implied, Bytes: 1, Cycles: 2},
	{Code: 0xB8, Mnemonic: CLV, Mode: Implied, Bytes: 1, Cycles: 2},
	{Code: 0xD8, Mnemonic: CLD, Mode: Implied, Bytes: 1, Cycles: 2},
	{Code: 0xF8, Mnemonic: SED, Mode: Implied, Bytes: 1, Cycles: 2},

	// System
	{Code: 0xEA, Mnemonic: NOP, Mode: Implied, Bytes: 1, Cycles: 2},
	{Code: 0x00, Mnemonic: BRK, Mode: Implied, Bytes: 1, Cycles: 7},
}

// opcodeTable is indexed by opcode byte; nil entries are undecodable
var opcodeTable [256]*Opcode

func init() {
	for i := range opcodeList {
		op := &opcodeList[i]
		if err := op.validate(); err != nil {
			panic(err)
		}
		if opcodeTable[op.Code] != nil {
			panic(fmt.Sprintf("cpu: duplicate opcode 0x%02X", op.Code))
		}
		op.exec = handlers[op.Mnemonic]
		opcodeTable[op.Code] = op
	}
}

// validate checks that a row is consistent with its mode and has a handler
func (op *Opcode) validate() error {
	if int(op.Bytes)-1 != op.Mode.OperandBytes() {
		return fmt.Errorf("cpu: opcode 0x%02X (%v %v) has length %d, mode needs %d operand bytes",
			op.Code, op.Mnemonic, op.Mode, op.Bytes, op.Mode.OperandBytes())
	}
	if op.Mnemonic < 0 || op.Mnemonic >= mnemonicCount || handlers[op.Mnemonic] == nil {
		return fmt.Errorf("cpu: opcode 0x%02X has no handler for %v", op.Code, op.Mnemonic)
	}
	return nil
}

// Lookup returns the descriptor for an opcode byte
func Lookup(code uint8) (Opcode, bool) {
	op := opcodeTable[code]
	if op == nil {
		return Opcode{}, false
	}
	return *op, true
}

// Opcodes returns a copy of every descriptor in table order
func Opcodes() []Opcode {
	ops := make([]Opcode, len(opcodeList))
	copy(ops, opcodeList)
	return ops
}

func (op Opcode) String() string {
	return fmt.Sprintf("%v %v", op.Mnemonic, op.Mode)
}
