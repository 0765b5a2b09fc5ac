package cpu

import "fmt"

// handler executes one mnemonic. address is the resolved operand address
// and is only meaningful when mode.HasOperand().
type handler func(cpu *CPU, mode AddressingMode, address uint16) error

var handlers = [mnemonicCount]handler{
	LDA: (*CPU).lda,
	LDX: (*CPU).ldx,
	LDY: (*CPU).ldy,
	STA: (*CPU).sta,
	STX: (*CPU).stx,
	STY: (*CPU).sty,
	TAX: (*CPU).tax,
	TAY: (*CPU).tay,
	TXA: (*CPU).txa,
	TYA: (*CPU).tya,
	TSX: (*CPU).tsx,
	TXS: (*CPU).txs,
	PHA: (*CPU).pha,
	PHP: (*CPU).php,
	PLA: (*CPU).pla,
	PLP: (*CPU).plp,
	ADC: (*CPU).adc,
	SBC: (*CPU).sbc,
	CMP: (*CPU).cmp,
	CPX: (*CPU).cpx,
	CPY: (*CPU).cpy,
	INC: (*CPU).inc,
	DEC: (*CPU).dec,
	INX: (*CPU).inx,
	INY: (*CPU).iny,
	DEX: (*CPU).dex,
	DEY: (*CPU).dey,
	AND: (*CPU).and,
	ORA: (*CPU).ora,
	EOR: (*CPU).eor,
	BIT: (*CPU).bit,
	ASL: (*CPU).asl,
	LSR: (*CPU).lsr,
	ROL: (*CPU).rol,
	ROR: (*CPU).ror,
	JMP: (*CPU).jmp,
	JSR: (*CPU).jsr,
	RTS: (*CPU).rts,
	CLC: (*CPU).clc,
	SEC: (*CPU).sec,
	CLI: (*CPU).cli,
	SEI: (*CPU).sei,
	CLV: (*CPU).clv,
	CLD: (*CPU).cld,
	SED: (*CPU).sed,
	NOP: (*CPU).nop,
	BRK: (*CPU).brk,
}

// operand reads the byte at the resolved address
func (cpu *CPU) operand(mode AddressingMode, address uint16) (uint8, error) {
	if !mode.HasOperand() {
		return 0, fmt.Errorf("%w: %v has no operand", ErrUnsupportedAddressingMode, mode)
	}
	return cpu.memory.Read(address), nil
}

// store writes value to the resolved address
func (cpu *CPU) store(mode AddressingMode, address uint16, value uint8) error {
	if !mode.HasOperand() {
		return fmt.Errorf("%w: %v has no operand", ErrUnsupportedAddressingMode, mode)
	}
	cpu.memory.Write(address, value)
	return nil
}

// modify applies fn to A in Accumulator mode or to memory otherwise and
// updates Zero/Negative from the result
func (cpu *CPU) modify(mode AddressingMode, address uint16, fn func(uint8) uint8) error {
	if mode == Accumulator {
		cpu.A = fn(cpu.A)
		cpu.P.updateZN(cpu.A)
		return nil
	}
	value, err := cpu.operand(mode, address)
	if err != nil {
		return err
	}
	value = fn(value)
	cpu.memory.Write(address, value)
	cpu.P.updateZN(value)
	return nil
}

// Load operations
func (cpu *CPU) lda(mode AddressingMode, address uint16) error {
	return cpu.load(&cpu.A, mode, address)
}

func (cpu *CPU) ldx(mode AddressingMode, address uint16) error {
	return cpu.load(&cpu.X, mode, address)
}

func (cpu *CPU) ldy(mode AddressingMode, address uint16) error {
	return cpu.load(&cpu.Y, mode, address)
}

func (cpu *CPU) load(reg *uint8, mode AddressingMode, address uint16) error {
	value, err := cpu.operand(mode, address)
	if err != nil {
		return err
	}
	*reg = value
	cpu.P.updateZN(value)
	return nil
}

// Store operations
func (cpu *CPU) sta(mode AddressingMode, address uint16) error {
	return cpu.store(mode, address, cpu.A)
}

func (cpu *CPU) stx(mode AddressingMode, address uint16) error {
	return cpu.store(mode, address, cpu.X)
}

func (cpu *CPU) sty(mode AddressingMode, address uint16) error {
	return cpu.store(mode, address, cpu.Y)
}

// Transfer operations
func (cpu *CPU) tax(AddressingMode, uint16) error {
	cpu.X = cpu.A
	cpu.P.updateZN(cpu.X)
	return nil
}

func (cpu *CPU) tay(AddressingMode, uint16) error {
	cpu.Y = cpu.A
	cpu.P.updateZN(cpu.Y)
	return nil
}

func (cpu *CPU) txa(AddressingMode, uint16) error {
	cpu.A = cpu.X
	cpu.P.updateZN(cpu.A)
	return nil
}

func (cpu *CPU) tya(AddressingMode, uint16) error {
	cpu.A = cpu.Y
	cpu.P.updateZN(cpu.A)
	return nil
}

func (cpu *CPU) tsx(AddressingMode, uint16) error {
	cpu.X = cpu.SP
	cpu.P.updateZN(cpu.X)
	return nil
}

// txs does not touch flags
func (cpu *CPU) txs(AddressingMode, uint16) error {
	cpu.SP = cpu.X
	return nil
}

// Stack operations
func (cpu *CPU) pha(AddressingMode, uint16) error {
	cpu.push(cpu.A)
	return nil
}

// php pushes the status with B and bit 5 set
func (cpu *CPU) php(AddressingMode, uint16) error {
	cpu.push(cpu.P.Byte() | uint8(Break) | uint8(Break2))
	return nil
}

func (cpu *CPU) pla(AddressingMode, uint16) error {
	cpu.A = cpu.pop()
	cpu.P.updateZN(cpu.A)
	return nil
}

// plp restores every flag except B and bit 5, which keep their current value
func (cpu *CPU) plp(AddressingMode, uint16) error {
	const kept = uint8(Break) | uint8(Break2)
	cpu.P.SetByte(cpu.pop()&^kept | cpu.P.Byte()&kept)
	return nil
}

// Arithmetic operations. Decimal mode is ignored.
func (cpu *CPU) adc(mode AddressingMode, address uint16) error {
	value, err := cpu.operand(mode, address)
	if err != nil {
		return err
	}
	cpu.addWithCarry(value)
	return nil
}

func (cpu *CPU) sbc(mode AddressingMode, address uint16) error {
	value, err := cpu.operand(mode, address)
	if err != nil {
		return err
	}
	cpu.addWithCarry(^value)
	return nil
}

// addWithCarry adds value and the carry to A, wrapping at 8 bits
func (cpu *CPU) addWithCarry(value uint8) {
	var carry uint16
	if cpu.P.Has(Carry) {
		carry = 1
	}
	sum := uint16(cpu.A) + uint16(value) + carry
	result := uint8(sum)

	cpu.P.Assign(Carry, sum > 0xFF)
	cpu.P.Assign(Overflow, (cpu.A^result)&(value^result)&negativeMask != 0)
	cpu.A = result
	cpu.P.updateZN(result)
}

// Comparison operations
func (cpu *CPU) cmp(mode AddressingMode, address uint16) error {
	return cpu.compare(cpu.A, mode, address)
}

func (cpu *CPU) cpx(mode AddressingMode, address uint16) error {
	return cpu.compare(cpu.X, mode, address)
}

func (cpu *CPU) cpy(mode AddressingMode, address uint16) error {
	return cpu.compare(cpu.Y, mode, address)
}

func (cpu *CPU) compare(reg uint8, mode AddressingMode, address uint16) error {
	value, err := cpu.operand(mode, address)
	if err != nil {
		return err
	}
	cpu.P.Assign(Carry, reg >= value)
	cpu.P.updateZN(reg - value)
	return nil
}

// Increment/Decrement operations
func (cpu *CPU) inc(mode AddressingMode, address uint16) error {
	if !mode.HasOperand() {
		return fmt.Errorf("%w: %v has no operand", ErrUnsupportedAddressingMode, mode)
	}
	return cpu.modify(mode, address, func(v uint8) uint8 { return v + 1 })
}

func (cpu *CPU) dec(mode AddressingMode, address uint16) error {
	if !mode.HasOperand() {
		return fmt.Errorf("%w: %v has no operand", ErrUnsupportedAddressingMode, mode)
	}
	return cpu.modify(mode, address, func(v uint8) uint8 { return v - 1 })
}

func (cpu *CPU) inx(AddressingMode, uint16) error {
	cpu.X++
	cpu.P.updateZN(cpu.X)
	return nil
}

func (cpu *CPU) iny(AddressingMode, uint16) error {
	cpu.Y++
	cpu.P.updateZN(cpu.Y)
	return nil
}

func (cpu *CPU) dex(AddressingMode, uint16) error {
	cpu.X--
	cpu.P.updateZN(cpu.X)
	return nil
}

func (cpu *CPU) dey(AddressingMode, uint16) error {
	cpu.Y--
	cpu.P.updateZN(cpu.Y)
	return nil
}

// Logical operations
func (cpu *CPU) and(mode AddressingMode, address uint16) error {
	value, err := cpu.operand(mode, address)
	if err != nil {
		return err
	}
	cpu.A &= value
	cpu.P.updateZN(cpu.A)
	return nil
}

func (cpu *CPU) ora(mode AddressingMode, address uint16) error {
	value, err := cpu.operand(mode, address)
	if err != nil {
		return err
	}
	cpu.A |= value
	cpu.P.updateZN(cpu.A)
	return nil
}

func (cpu *CPU) eor(mode AddressingMode, address uint16) error {
	value, err := cpu.operand(mode, address)
	if err != nil {
		return err
	}
	cpu.A ^= value
	cpu.P.updateZN(cpu.A)
	return nil
}

// bit sets Z from A AND memory, and copies bits 7 and 6 of memory into N and V
func (cpu *CPU) bit(mode AddressingMode, address uint16) error {
	value, err := cpu.operand(mode, address)
	if err != nil {
		return err
	}
	cpu.P.Assign(Zero, cpu.A&value == 0)
	cpu.P.Assign(Negative, value&negativeMask != 0)
	cpu.P.Assign(Overflow, value&overflowMask != 0)
	return nil
}

// Shift and rotate operations
func (cpu *CPU) asl(mode AddressingMode, address uint16) error {
	return cpu.modify(mode, address, func(v uint8) uint8 {
		cpu.P.Assign(Carry, v&0x80 != 0)
		return v << 1
	})
}

func (cpu *CPU) lsr(mode AddressingMode, address uint16) error {
	return cpu.modify(mode, address, func(v uint8) uint8 {
		cpu.P.Assign(Carry, v&0x01 != 0)
		return v >> 1
	})
}

func (cpu *CPU) rol(mode AddressingMode, address uint16) error {
	return cpu.modify(mode, address, func(v uint8) uint8 {
		var in uint8
		if cpu.P.Has(Carry) {
			in = 0x01
		}
		cpu.P.Assign(Carry, v&0x80 != 0)
		return v<<1 | in
	})
}

func (cpu *CPU) ror(mode AddressingMode, address uint16) error {
	return cpu.modify(mode, address, func(v uint8) uint8 {
		var in uint8
		if cpu.P.Has(Carry) {
			in = 0x80
		}
		cpu.P.Assign(Carry, v&0x01 != 0)
		return v>>1 | in
	})
}

// Control flow operations
func (cpu *CPU) jmp(mode AddressingMode, address uint16) error {
	if !mode.HasOperand() {
		return fmt.Errorf("%w: %v has no operand", ErrUnsupportedAddressingMode, mode)
	}
	cpu.jump(address)
	return nil
}

// jsr pushes the address of its own last byte; rts adds the missing one
func (cpu *CPU) jsr(mode AddressingMode, address uint16) error {
	if !mode.HasOperand() {
		return fmt.Errorf("%w: %v has no operand", ErrUnsupportedAddressingMode, mode)
	}
	cpu.pushWord(cpu.PC + 1)
	cpu.jump(address)
	return nil
}

func (cpu *CPU) rts(AddressingMode, uint16) error {
	cpu.jump(cpu.popWord() + 1)
	return nil
}

// Flag operations
func (cpu *CPU) clc(AddressingMode, uint16) error {
	cpu.P.Clear(Carry)
	return nil
}

func (cpu *CPU) sec(AddressingMode, uint16) error {
	cpu.P.Set(Carry)
	return nil
}

func (cpu *CPU) cli(AddressingMode, uint16) error {
	cpu.P.Clear(InterruptDisable)
	return nil
}

func (cpu *CPU) sei(AddressingMode, uint16) error {
	cpu.P.Set(InterruptDisable)
	return nil
}

func (cpu *CPU) clv(AddressingMode, uint16) error {
	cpu.P.Clear(Overflow)
	return nil
}

func (cpu *CPU) cld(AddressingMode, uint16) error {
	cpu.P.Clear(Decimal)
	return nil
}

func (cpu *CPU) sed(AddressingMode, uint16) error {
	cpu.P.Set(Decimal)
	return nil
}

// Miscellaneous operations
func (cpu *CPU) nop(AddressingMode, uint16) error {
	return nil
}

// brk stops Run. Interrupt-and-resume semantics are not modelled.
func (cpu *CPU) brk(AddressingMode, uint16) error {
	cpu.halted = true
	return nil
}
