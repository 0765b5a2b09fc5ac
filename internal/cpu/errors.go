package cpu

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownOpcode is returned when the fetched byte has no table entry.
	ErrUnknownOpcode = errors.New("unknown opcode")

	// ErrUnsupportedAddressingMode is returned when an operand address is
	// required from a mode that has none.
	ErrUnsupportedAddressingMode = errors.New("unsupported addressing mode")

	// ErrProgramTooLarge is returned by Load when the image would reach the
	// vector area.
	ErrProgramTooLarge = errors.New("program too large")
)

// ExecutionError is a fatal step failure. PC is the address the opcode was
// fetched from.
type ExecutionError struct {
	Err    error
	Opcode uint8
	PC     uint16
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("cpu: opcode 0x%02X at $%04X: %v", e.Opcode, e.PC, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
