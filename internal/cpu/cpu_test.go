package cpu

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"
)

// MockMemory implements MemoryInterface for testing
type MockMemory struct {
	data       [0x10000]uint8 // 64KB address space
	readCount  map[uint16]int
	writeCount map[uint16]int
}

// NewMockMemory creates a new mock memory instance
func NewMockMemory() *MockMemory {
	return &MockMemory{
		readCount:  make(map[uint16]int),
		writeCount: make(map[uint16]int),
	}
}

// Read implements the MemoryInterface Read method
func (m *MockMemory) Read(address uint16) uint8 {
	m.readCount[address]++
	return m.data[address]
}

// Write implements the MemoryInterface Write method
func (m *MockMemory) Write(address uint16, value uint8) {
	m.writeCount[address]++
	m.data[address] = value
}

// SetByte sets a byte at the given address
func (m *MockMemory) SetByte(address uint16, value uint8) {
	m.data[address] = value
}

// SetBytes sets multiple bytes starting at the given address
func (m *MockMemory) SetBytes(address uint16, values ...uint8) {
	for i, value := range values {
		m.data[address+uint16(i)] = value
	}
}

// GetWriteCount returns the number of times an address was written
func (m *MockMemory) GetWriteCount(address uint16) int {
	return m.writeCount[address]
}

// ClearCounts resets all read/write counts
func (m *MockMemory) ClearCounts() {
	m.readCount = make(map[uint16]int)
	m.writeCount = make(map[uint16]int)
}

// CPUTestHelper provides common test utilities
type CPUTestHelper struct {
	CPU    *CPU
	Memory *MockMemory
}

// NewCPUTestHelper creates a new test helper
func NewCPUTestHelper() *CPUTestHelper {
	memory := NewMockMemory()
	cpu := New(memory)
	return &CPUTestHelper{
		CPU:    cpu,
		Memory: memory,
	}
}

// SetupResetVector sets the reset vector and performs reset
func (h *CPUTestHelper) SetupResetVector(address uint16) {
	h.Memory.SetBytes(ResetVector, uint8(address&0xFF), uint8(address>>8))
	h.CPU.Reset()
}

// LoadProgram loads a program starting at the given address
func (h *CPUTestHelper) LoadProgram(address uint16, program ...uint8) {
	h.Memory.SetBytes(address, program...)
}

// StepN executes n instructions and fails the test on error
func (h *CPUTestHelper) StepN(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := h.CPU.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

// AssertRegisters checks if CPU registers match expected values
func (h *CPUTestHelper) AssertRegisters(t *testing.T, testName string, expectedA, expectedX, expectedY, expectedSP uint8, expectedPC uint16) {
	t.Helper()

	if h.CPU.A != expectedA {
		t.Errorf("%s: Expected A=0x%02X, got 0x%02X", testName, expectedA, h.CPU.A)
	}
	if h.CPU.X != expectedX {
		t.Errorf("%s: Expected X=0x%02X, got 0x%02X", testName, expectedX, h.CPU.X)
	}
	if h.CPU.Y != expectedY {
		t.Errorf("%s: Expected Y=0x%02X, got 0x%02X", testName, expectedY, h.CPU.Y)
	}
	if h.CPU.SP != expectedSP {
		t.Errorf("%s: Expected SP=0x%02X, got 0x%02X", testName, expectedSP, h.CPU.SP)
	}
	if h.CPU.PC != expectedPC {
		t.Errorf("%s: Expected PC=0x%04X, got 0x%04X", testName, expectedPC, h.CPU.PC)
	}
}

// AssertFlags checks if CPU flags match expected values
func (h *CPUTestHelper) AssertFlags(t *testing.T, testName string, expectedN, expectedV, expectedD, expectedI, expectedZ, expectedC bool) {
	t.Helper()

	flags := []struct {
		name     string
		flag     Flag
		expected bool
	}{
		{"N", Negative, expectedN},
		{"V", Overflow, expectedV},
		{"D", Decimal, expectedD},
		{"I", InterruptDisable, expectedI},
		{"Z", Zero, expectedZ},
		{"C", Carry, expectedC},
	}

	for _, flag := range flags {
		if actual := h.CPU.P.Has(flag.flag); actual != flag.expected {
			t.Errorf("%s: Expected %s=%v, got %v", testName, flag.name, flag.expected, actual)
		}
	}
}

// AssertMemory checks if memory at address matches expected value
func (h *CPUTestHelper) AssertMemory(t *testing.T, testName string, address uint16, expected uint8) {
	t.Helper()
	actual := h.Memory.data[address]
	if actual != expected {
		t.Errorf("%s: Expected memory[0x%04X]=0x%02X, got 0x%02X", testName, address, expected, actual)
	}
}

// Test basic CPU initialization
func TestCPUInitialization(t *testing.T) {
	helper := NewCPUTestHelper()

	if helper.CPU.A != 0 || helper.CPU.X != 0 || helper.CPU.Y != 0 {
		t.Errorf("Expected zeroed A/X/Y, got %v", helper.CPU.Snapshot())
	}
	if helper.CPU.SP != 0xFD {
		t.Errorf("Expected SP=0xFD, got 0x%02X", helper.CPU.SP)
	}
	if helper.CPU.P.Byte() != 0x24 {
		t.Errorf("Expected status=0x24, got 0x%02X", helper.CPU.P.Byte())
	}
}

// Test CPU reset functionality
func TestCPUReset(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.Memory.SetBytes(ResetVector, 0x34, 0x12)

	helper.CPU.A = 0x55
	helper.CPU.X = 0xAA
	helper.CPU.Y = 0x77
	helper.CPU.SP = 0x00
	helper.CPU.PC = 0x4321
	helper.CPU.P.SetByte(0xFF)

	helper.CPU.Reset()

	// Y is deliberately left alone
	helper.AssertRegisters(t, "Reset", 0x00, 0x00, 0x77, 0xFD, 0x1234)
	if helper.CPU.P.Byte() != 0x24 {
		t.Errorf("Expected status=0x24 after reset, got 0x%02X", helper.CPU.P.Byte())
	}
}

func TestLoadWritesProgramAndResetVector(t *testing.T) {
	helper := NewCPUTestHelper()

	if err := helper.CPU.Load([]uint8{0xA9, 0x05, 0x00}); err != nil {
		t.Fatalf("Load: %v", err)
	}

	helper.AssertMemory(t, "Load", 0x8000, 0xA9)
	helper.AssertMemory(t, "Load", 0x8001, 0x05)
	helper.AssertMemory(t, "Load", 0x8002, 0x00)
	helper.AssertMemory(t, "Load", 0xFFFC, 0x00)
	helper.AssertMemory(t, "Load", 0xFFFD, 0x80)
}

func TestLoadRejectsOversizedProgram(t *testing.T) {
	helper := NewCPUTestHelper()

	err := helper.CPU.Load(make([]uint8, MaxProgramSize+1))
	if !errors.Is(err, ErrProgramTooLarge) {
		t.Fatalf("Expected ErrProgramTooLarge, got %v", err)
	}
	if helper.Memory.GetWriteCount(0x8000) != 0 {
		t.Error("Oversized program should not be partially written")
	}

	if err := helper.CPU.Load(make([]uint8, MaxProgramSize)); err != nil {
		t.Fatalf("Expected maximum size program to load, got %v", err)
	}
}

func TestLoadAndRunScenarios(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*MockMemory)
		program []uint8
		check   func(*testing.T, *CPU)
	}{
		{
			name:    "immediate load",
			program: []uint8{0xA9, 0x05, 0x00},
			check: func(t *testing.T, c *CPU) {
				if c.A != 0x05 {
					t.Errorf("Expected A=0x05, got 0x%02X", c.A)
				}
				if c.P.Has(Zero) || c.P.Has(Negative) {
					t.Errorf("Expected Z and N clear, got %v", c.P)
				}
			},
		},
		{
			name:    "zero flag",
			program: []uint8{0xA9, 0x00, 0x00},
			check: func(t *testing.T, c *CPU) {
				if !c.P.Has(Zero) {
					t.Errorf("Expected Z set, got %v", c.P)
				}
			},
		},
		{
			name:    "negative flag",
			program: []uint8{0xA9, 0xC0, 0x00},
			check: func(t *testing.T, c *CPU) {
				if !c.P.Has(Negative) {
					t.Errorf("Expected N set, got %v", c.P)
				}
			},
		},
		{
			name:    "tax moves a to x",
			program: []uint8{0xA9, 0x0A, 0xAA, 0x00},
			check: func(t *testing.T, c *CPU) {
				if c.X != 10 {
					t.Errorf("Expected X=10, got %d", c.X)
				}
			},
		},
		{
			name:    "inx overflow",
			program: []uint8{0xA9, 0xFF, 0xAA, 0xE8, 0xE8, 0x00},
			check: func(t *testing.T, c *CPU) {
				if c.X != 1 {
					t.Errorf("Expected X=1, got %d", c.X)
				}
			},
		},
		{
			name:    "ops working together",
			program: []uint8{0xA9, 0xC0, 0xAA, 0xE8, 0x00},
			check: func(t *testing.T, c *CPU) {
				if c.X != 0xC1 {
					t.Errorf("Expected X=0xC1, got 0x%02X", c.X)
				}
			},
		},
		{
			name: "lda from memory",
			setup: func(m *MockMemory) {
				m.SetByte(0x10, 0x55)
			},
			program: []uint8{0xA5, 0x10, 0x00},
			check: func(t *testing.T, c *CPU) {
				if c.A != 0x55 {
					t.Errorf("Expected A=0x55, got 0x%02X", c.A)
				}
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			helper := NewCPUTestHelper()
			if test.setup != nil {
				test.setup(helper.Memory)
			}

			if _, err := helper.CPU.LoadAndRun(test.program); err != nil {
				t.Fatalf("LoadAndRun: %v", err)
			}
			if !helper.CPU.Halted() {
				t.Error("Expected CPU to be halted")
			}
			test.check(t, helper.CPU)
		})
	}
}

func TestRunCountsStepsIncludingBreak(t *testing.T) {
	helper := NewCPUTestHelper()

	steps, err := helper.CPU.LoadAndRun([]uint8{0xA9, 0x05, 0x00})
	if err != nil {
		t.Fatalf("LoadAndRun: %v", err)
	}
	if steps != 2 {
		t.Errorf("Expected 2 steps, got %d", steps)
	}
	// BRK is one byte long, so PC rests just after it
	if helper.CPU.PC != 0x8003 {
		t.Errorf("Expected PC=0x8003, got 0x%04X", helper.CPU.PC)
	}
}

func TestUnknownOpcodeAbortsRun(t *testing.T) {
	helper := NewCPUTestHelper()

	// 0x02 is a JAM opcode on real hardware and has no table entry
	steps, err := helper.CPU.LoadAndRun([]uint8{0xA9, 0x01, 0x02, 0xA9, 0x09, 0x00})

	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("Expected ExecutionError, got %v", err)
	}
	if !errors.Is(err, ErrUnknownOpcode) {
		t.Errorf("Expected ErrUnknownOpcode, got %v", err)
	}
	if execErr.Opcode != 0x02 || execErr.PC != 0x8002 {
		t.Errorf("Expected opcode 0x02 at $8002, got 0x%02X at $%04X", execErr.Opcode, execErr.PC)
	}
	if steps != 1 {
		t.Errorf("Expected 1 completed step, got %d", steps)
	}
	if helper.CPU.A != 0x01 {
		t.Errorf("Expected run to stop before second LDA, A=0x%02X", helper.CPU.A)
	}
	if helper.CPU.PC != 0x8002 {
		t.Errorf("Expected PC to stay on failing opcode, got 0x%04X", helper.CPU.PC)
	}
}

func TestRunWithHookStops(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.SetupResetVector(0x8000)
	// INX; JMP $8000
	helper.LoadProgram(0x8000, 0xE8, 0x4C, 0x00, 0x80)

	calls := 0
	steps, err := helper.CPU.RunWithHook(func(c *CPU) bool {
		calls++
		return c.X < 5
	})
	if err != nil {
		t.Fatalf("RunWithHook: %v", err)
	}
	if helper.CPU.X != 5 {
		t.Errorf("Expected X=5, got %d", helper.CPU.X)
	}
	if steps != uint64(calls-1) {
		t.Errorf("Expected %d steps, got %d", calls-1, steps)
	}
	if helper.CPU.Halted() {
		t.Error("Hook stop should not count as halt")
	}
}

func TestSnapshot(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.SetupResetVector(0x8000)
	helper.CPU.A, helper.CPU.X, helper.CPU.Y = 1, 2, 3

	regs := helper.CPU.Snapshot()
	helper.CPU.A = 0xFF

	if regs.A != 1 || regs.X != 2 || regs.Y != 3 || regs.SP != 0xFD || regs.PC != 0x8000 {
		t.Errorf("Unexpected snapshot %v", regs)
	}
	if got := regs.String(); got != "A=$01 X=$02 Y=$03 SP=$FD PC=$8000 nv-bdIzc" {
		t.Errorf("Unexpected snapshot string %q", got)
	}
}

func TestRestoreClearsHalt(t *testing.T) {
	helper := NewCPUTestHelper()
	if _, err := helper.CPU.LoadAndRun([]uint8{0xA9, 0x05, 0x00}); err != nil {
		t.Fatal(err)
	}
	if !helper.CPU.Halted() {
		t.Fatal("Expected halt after BRK")
	}

	var p Status
	p.SetByte(0xA5)
	helper.CPU.Restore(Registers{A: 0x11, X: 0x22, Y: 0x33, SP: 0xF0, PC: 0x8000, P: p})

	if helper.CPU.Halted() {
		t.Error("Restore should clear the halt state")
	}
	helper.AssertRegisters(t, "after restore", 0x11, 0x22, 0x33, 0xF0, 0x8000)
	if helper.CPU.P.Byte() != 0xA5 {
		t.Errorf("Expected P=0xA5, got 0x%02X", helper.CPU.P.Byte())
	}
}

func TestDebugLogging(t *testing.T) {
	helper := NewCPUTestHelper()
	var buf bytes.Buffer
	helper.CPU.SetLogger(log.New(&buf, "", 0))
	helper.CPU.EnableDebugLogging(true)

	if _, err := helper.CPU.LoadAndRun([]uint8{0xA9, 0x05, 0x00}); err != nil {
		t.Fatalf("LoadAndRun: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "[CPU_DEBUG] PC=$8000: LDA (0xA9)") {
		t.Errorf("Missing LDA trace in %q", out)
	}
	if !strings.Contains(out, "[CPU_DEBUG] PC=$8002: BRK (0x00) | A=$05") {
		t.Errorf("Missing BRK trace in %q", out)
	}
}

func TestLoopDetection(t *testing.T) {
	helper := NewCPUTestHelper()
	var buf bytes.Buffer
	helper.CPU.SetLogger(log.New(&buf, "", 0))
	helper.CPU.EnableLoopDetection(true)
	helper.SetupResetVector(0x8000)
	// JMP $8000
	helper.LoadProgram(0x8000, 0x4C, 0x00, 0x80)

	helper.StepN(t, loopThreshold)
	if buf.Len() != 0 {
		t.Fatalf("Expected no report after %d steps, got %q", loopThreshold, buf.String())
	}

	helper.StepN(t, 1)
	if !strings.Contains(buf.String(), "[CPU_LOOP] CPU stuck at PC=$8000 executing opcode=0x4C for 101 steps") {
		t.Errorf("Expected loop report, got %q", buf.String())
	}
}
