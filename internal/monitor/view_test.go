package monitor

import (
	"errors"
	"strings"
	"testing"

	"nes6502/internal/cpu"
)

// fakeMachine is a Machine with fixed registers over a flat byte array
type fakeMachine struct {
	regs     cpu.Registers
	ram      [0x10000]uint8
	halted   bool
	steps    uint64
	perFrame int
}

func (f *fakeMachine) RunFrame() error        { f.steps++; return nil }
func (f *fakeMachine) StepInstruction() error { f.steps++; return nil }
func (f *fakeMachine) Reset() error           { f.steps = 0; return nil }
func (f *fakeMachine) Halted() bool           { return f.halted }
func (f *fakeMachine) Steps() uint64          { return f.steps }
func (f *fakeMachine) StepsPerFrame() int     { return f.perFrame }
func (f *fakeMachine) SetStepsPerFrame(n int) { f.perFrame = n }

func (f *fakeMachine) Registers() cpu.Registers { return f.regs }

func (f *fakeMachine) Peek(address uint16, n int) []uint8 {
	out := make([]uint8, n)
	copy(out, f.ram[address:])
	return out
}

func (f *fakeMachine) Read(address uint16) uint8         { return f.ram[address] }
func (f *fakeMachine) Write(address uint16, value uint8) { f.ram[address] = value }

func (f *fakeMachine) Disassemble(address uint16) string {
	text, _ := cpu.Disassemble(f, address)
	return text
}

func newFakeMachine() *fakeMachine {
	f := &fakeMachine{perFrame: 1}
	f.regs = cpu.Registers{A: 0x05, X: 0x01, Y: 0x02, SP: 0xFD, PC: 0x8000}
	f.regs.P.Reset()
	f.ram[0x8000] = 0xA9
	f.ram[0x8001] = 0x05
	f.ram[0x0010] = 0x42
	f.ram[0x01FF] = 0x99
	return f
}

func TestHexDump(t *testing.T) {
	data := make([]uint8, 20)
	for i := range data {
		data[i] = uint8(i)
	}
	rows := HexDump(0x0100, data)
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0] != "0100: 00 01 02 03 04 05 06 07 08 09 0A 0B 0C 0D 0E 0F" {
		t.Errorf("Unexpected first row %q", rows[0])
	}
	if rows[1] != "0110: 10 11 12 13" {
		t.Errorf("Unexpected second row %q", rows[1])
	}
}

func TestLinesShowRegistersAndMemory(t *testing.T) {
	m := newFakeMachine()
	text := strings.Join(Lines(m, true, nil), "\n")

	for _, want := range []string{
		"PAUSED",
		"PC=$8000  A=$05  X=$01  Y=$02  SP=$FD",
		"P=$24  nv-bdIzc",
		"next: LDA #$05",
		"0010: 42 00",
		"01F0: 00 00 00 00 00 00 00 00 00 00 00 00 00 00 00 99",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Missing %q in\n%s", want, text)
		}
	}
}

func TestLinesStatus(t *testing.T) {
	m := newFakeMachine()
	m.perFrame = 64
	if got := Lines(m, false, nil)[0]; got != "RUNNING  steps=0  per frame=64" {
		t.Errorf("Unexpected status line %q", got)
	}
	m.halted = true
	if got := Lines(m, false, nil)[0]; !strings.HasPrefix(got, "HALTED") {
		t.Errorf("Expected HALTED, got %q", got)
	}

	text := strings.Join(Lines(m, false, errors.New("boom")), "\n")
	if !strings.Contains(text, "error: boom") {
		t.Errorf("Missing error line in\n%s", text)
	}
}

func TestLinesStackWindowFollowsSP(t *testing.T) {
	m := newFakeMachine()
	m.regs.SP = 0xCF
	text := strings.Join(Lines(m, true, nil), "\n")
	if !strings.Contains(text, "01D0:") || strings.Contains(text, "01C0:") {
		t.Errorf("Stack window should start at $01D0:\n%s", text)
	}

	m.regs.SP = 0xFF
	text = strings.Join(Lines(m, true, nil), "\n")
	if !strings.Contains(text, "01F0:") {
		t.Errorf("Empty stack should still show the top row:\n%s", text)
	}
}
