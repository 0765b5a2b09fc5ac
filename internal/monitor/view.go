// Package monitor shows the register file, flags and the zero-page and
// stack memory of a running CPU in an ebiten window.
package monitor

import (
	"fmt"
	"strings"

	"nes6502/internal/cpu"
)

// Machine is the steppable system a monitor displays
type Machine interface {
	// RunFrame executes one frame's worth of instructions
	RunFrame() error
	// StepInstruction executes a single instruction
	StepInstruction() error
	// Reset restarts the loaded program from the reset vector
	Reset() error
	Halted() bool
	Steps() uint64
	Registers() cpu.Registers
	// Peek returns a copy of n bytes starting at address
	Peek(address uint16, n int) []uint8
	// Disassemble formats the instruction at address
	Disassemble(address uint16) string
	// StepsPerFrame is how many instructions RunFrame executes
	StepsPerFrame() int
	SetStepsPerFrame(steps int)
}

const (
	zeroPageBase = 0x0000
	stackBase    = 0x0100
	rowBytes     = 16
)

// Lines renders the machine state as text, one entry per screen line
func Lines(m Machine, paused bool, lastErr error) []string {
	regs := m.Registers()

	status := "RUNNING"
	switch {
	case m.Halted():
		status = "HALTED"
	case paused:
		status = "PAUSED"
	}

	lines := []string{
		fmt.Sprintf("%-8s steps=%d  per frame=%d", status, m.Steps(), m.StepsPerFrame()),
		fmt.Sprintf("PC=$%04X  A=$%02X  X=$%02X  Y=$%02X  SP=$%02X", regs.PC, regs.A, regs.X, regs.Y, regs.SP),
		fmt.Sprintf("P=$%02X  %v", regs.P.Byte(), regs.P),
		fmt.Sprintf("next: %s", m.Disassemble(regs.PC)),
	}
	if lastErr != nil {
		lines = append(lines, fmt.Sprintf("error: %v", lastErr))
	}

	lines = append(lines, "", "zero page")
	lines = append(lines, HexDump(zeroPageBase, m.Peek(zeroPageBase, 0x100))...)

	// Stack rows from the one holding SP+1 to the top of the page
	top := stackBase + uint16(regs.SP) + 1
	start := top &^ (rowBytes - 1)
	if top > stackBase+0xFF {
		start = stackBase + 0xF0
	}
	lines = append(lines, "", "stack")
	lines = append(lines, HexDump(start, m.Peek(start, int(stackBase+0x100-start)))...)

	lines = append(lines, "", "SPACE run/pause  S step  R reset  UP/DOWN speed  ESC quit")
	return lines
}

// HexDump formats data as rows of 16 bytes labelled with their address
func HexDump(base uint16, data []uint8) []string {
	var rows []string
	for offset := 0; offset < len(data); offset += rowBytes {
		end := offset + rowBytes
		if end > len(data) {
			end = len(data)
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "%04X:", int(base)+offset)
		for _, b := range data[offset:end] {
			fmt.Fprintf(&sb, " %02X", b)
		}
		rows = append(rows, sb.String())
	}
	return rows
}
