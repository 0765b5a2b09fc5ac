// Package cpu implements the instruction-execution core of a 6502-family CPU.
package cpu

import (
	"fmt"
	"log"
)

const (
	// ProgramBase is where Load places a program image
	ProgramBase = 0x8000
	// ResetVector holds the little-endian start address read by Reset
	ResetVector = 0xFFFC
	// MaxProgramSize keeps a loaded program clear of the vectors at 0xFFFA-0xFFFF
	MaxProgramSize = 0xFFFA - ProgramBase

	stackBase    = 0x0100
	resetSP      = 0xFD
	negativeMask = 0x80
	overflowMask = 0x40
)

// MemoryInterface is the flat 64K address space the CPU executes against.
// Read and Write must accept every 16-bit address, including 0xFFFF.
type MemoryInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// CPU holds the 6502 register file and drives the fetch/decode/execute loop.
// It is not safe for concurrent use.
type CPU struct {
	// Registers
	A  uint8  // Accumulator
	X  uint8  // X register
	Y  uint8  // Y register
	SP uint8  // Stack pointer, offset into page 0x0100
	PC uint16 // Program counter

	// Status register
	P Status

	memory MemoryInterface

	// steps counts completed instructions since New
	steps uint64

	// halted is set by BRK for the step that executed it
	halted bool

	// redirected is set by handlers that load PC themselves
	redirected bool

	logger *log.Logger

	// Debug and loop detection fields
	enableDebugLogging  bool
	enableLoopDetection bool
	lastPC              uint16
	pcStayCount         int
}

// Registers is a read-only copy of the register file
type Registers struct {
	A  uint8
	X  uint8
	Y  uint8
	SP uint8
	PC uint16
	P  Status
}

func (r Registers) String() string {
	return fmt.Sprintf("A=$%02X X=$%02X Y=$%02X SP=$%02X PC=$%04X %v", r.A, r.X, r.Y, r.SP, r.PC, r.P)
}

// New creates a CPU bound to the given address space. Call Reset before
// stepping.
func New(memory MemoryInterface) *CPU {
	cpu := &CPU{
		memory: memory,
		SP:     resetSP,
		logger: log.Default(),
	}
	cpu.P.Reset()
	return cpu
}

// SetLogger replaces the logger used for tracing. A nil logger restores
// the standard logger.
func (cpu *CPU) SetLogger(logger *log.Logger) {
	if logger == nil {
		logger = log.Default()
	}
	cpu.logger = logger
}

// Load copies program into the address space at ProgramBase and points the
// reset vector at it.
func (cpu *CPU) Load(program []uint8) error {
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrProgramTooLarge, len(program), MaxProgramSize)
	}
	for i, b := range program {
		cpu.memory.Write(ProgramBase+uint16(i), b)
	}
	write16(cpu.memory, ResetVector, ProgramBase)
	return nil
}

// Reset clears A and X, restores the power-on status and stack pointer and
// loads PC from the reset vector. Y is left as it was.
func (cpu *CPU) Reset() {
	cpu.A = 0x00
	cpu.X = 0x00
	cpu.SP = resetSP
	cpu.P.Reset()
	cpu.PC = read16(cpu.memory, ResetVector)

	cpu.halted = false
	cpu.redirected = false
	cpu.lastPC = cpu.PC
	cpu.pcStayCount = 0
}

// LoadAndRun loads program, resets and runs until BRK.
func (cpu *CPU) LoadAndRun(program []uint8) (uint64, error) {
	if err := cpu.Load(program); err != nil {
		return 0, err
	}
	cpu.Reset()
	return cpu.Run()
}

// Step executes a single instruction. On error the PC is left pointing at
// the failing opcode and no register or memory has changed.
func (cpu *CPU) Step() error {
	opcodePC := cpu.PC
	cpu.halted = false

	// Fetch
	opcode := cpu.memory.Read(cpu.PC)
	cpu.PC++

	// Decode
	op := opcodeTable[opcode]
	if cpu.enableLoopDetection {
		cpu.detectInfiniteLoop(opcodePC, opcode)
	}
	if cpu.enableDebugLogging {
		cpu.logInstruction(opcodePC, opcode, op)
	}
	if op == nil {
		cpu.PC = opcodePC
		return &ExecutionError{Err: ErrUnknownOpcode, Opcode: opcode, PC: opcodePC}
	}

	// Execute
	operandPC := cpu.PC
	var address uint16
	if op.Mode.HasOperand() {
		var err error
		address, err = Resolve(op.Mode, operandPC, cpu.X, cpu.Y, cpu.memory)
		if err != nil {
			cpu.PC = opcodePC
			return &ExecutionError{Err: err, Opcode: opcode, PC: opcodePC}
		}
	}

	cpu.redirected = false
	if err := op.exec(cpu, op.Mode, address); err != nil {
		cpu.PC = opcodePC
		return &ExecutionError{Err: err, Opcode: opcode, PC: opcodePC}
	}
	cpu.advancePC(operandPC, op)

	cpu.steps++
	return nil
}

// advancePC skips the operand bytes unless the instruction redirected
// control flow. operandPC is the PC value just after the opcode byte.
func (cpu *CPU) advancePC(operandPC uint16, op *Opcode) {
	if cpu.redirected || cpu.PC != operandPC {
		return
	}
	cpu.PC += uint16(op.Bytes - 1)
}

// jump loads PC and marks the current step as redirected
func (cpu *CPU) jump(address uint16) {
	cpu.PC = address
	cpu.redirected = true
}

// Run steps until BRK and returns the number of instructions executed,
// BRK included.
func (cpu *CPU) Run() (uint64, error) {
	return cpu.RunWithHook(nil)
}

// RunWithHook is Run with a callback invoked before every instruction.
// Returning false from the hook stops the run without error.
func (cpu *CPU) RunWithHook(hook func(*CPU) bool) (uint64, error) {
	var steps uint64
	for {
		if hook != nil && !hook(cpu) {
			return steps, nil
		}
		if err := cpu.Step(); err != nil {
			return steps, err
		}
		steps++
		if cpu.halted {
			return steps, nil
		}
	}
}

// Halted reports whether the last executed instruction was BRK
func (cpu *CPU) Halted() bool {
	return cpu.halted
}

// Steps returns the number of instructions completed since New
func (cpu *CPU) Steps() uint64 {
	return cpu.steps
}

// Snapshot returns a copy of the register file
func (cpu *CPU) Snapshot() Registers {
	return Registers{
		A:  cpu.A,
		X:  cpu.X,
		Y:  cpu.Y,
		SP: cpu.SP,
		PC: cpu.PC,
		P:  cpu.P,
	}
}

// Restore loads the register file from a snapshot and clears the halt
// state. Memory is untouched.
func (cpu *CPU) Restore(r Registers) {
	cpu.A = r.A
	cpu.X = r.X
	cpu.Y = r.Y
	cpu.SP = r.SP
	cpu.PC = r.PC
	cpu.P = r.P

	cpu.halted = false
	cpu.redirected = false
	cpu.lastPC = cpu.PC
	cpu.pcStayCount = 0
}

// Stack operations
func (cpu *CPU) push(value uint8) {
	cpu.memory.Write(stackBase+uint16(cpu.SP), value)
	cpu.SP--
}

func (cpu *CPU) pop() uint8 {
	cpu.SP++
	return cpu.memory.Read(stackBase + uint16(cpu.SP))
}

func (cpu *CPU) pushWord(value uint16) {
	cpu.push(uint8(value >> 8))   // High byte first
	cpu.push(uint8(value & 0xFF)) // Low byte second
}

func (cpu *CPU) popWord() uint16 {
	low := uint16(cpu.pop())
	high := uint16(cpu.pop())
	return (high << 8) | low
}
