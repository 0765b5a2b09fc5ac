// Package bus wires the CPU to its address space and adds execution tracing
// and memory watchpoints on top.
package bus

import (
	"fmt"
	"log"
	"sort"

	"nes6502/internal/cpu"
	"nes6502/internal/memory"
)

// Bus owns the memory and the CPU executing against it. All CPU accesses
// go through Read and Write so that watchpoints see every store.
type Bus struct {
	// Core components
	CPU    *cpu.CPU
	Memory *memory.Memory

	// System state
	cpuCycles uint64
	stepCount uint64
	currentPC uint16 // address of the instruction being executed

	// Execution logging for testing
	executionLog   []BusExecutionEvent
	loggingEnabled bool

	// Memory monitoring for debugging
	memoryWatchpoints map[uint16]uint8 // Address -> last seen value
	watchpointLogging bool
	watchpointHits    []WatchpointHit

	logger *log.Logger
}

// New creates a bus with zeroed memory and a CPU bound to it
func New() *Bus {
	bus := &Bus{
		Memory:            memory.New(),
		memoryWatchpoints: make(map[uint16]uint8),
		logger:            log.Default(),
	}

	// CPU sees the bus, not the raw memory
	bus.CPU = cpu.New(bus)

	return bus
}

// SetLogger routes bus and CPU output to logger
func (b *Bus) SetLogger(logger *log.Logger) {
	if logger == nil {
		logger = log.Default()
	}
	b.logger = logger
	b.CPU.SetLogger(logger)
}

// Read implements cpu.MemoryInterface
func (b *Bus) Read(address uint16) uint8 {
	return b.Memory.Read(address)
}

// Write implements cpu.MemoryInterface and checks watchpoints
func (b *Bus) Write(address uint16, value uint8) {
	b.Memory.Write(address, value)

	previous, watched := b.memoryWatchpoints[address]
	if !watched || previous == value {
		return
	}
	b.memoryWatchpoints[address] = value
	hit := WatchpointHit{
		Step:     b.stepCount,
		PC:       b.currentPC,
		Address:  address,
		OldValue: previous,
		NewValue: value,
	}
	b.watchpointHits = append(b.watchpointHits, hit)
	if b.watchpointLogging {
		b.logger.Printf("[MEMORY_WATCH] Step %d: $%04X changed from $%02X to $%02X", hit.Step, address, previous, value)
	}
}

// Load places program at cpu.ProgramBase and sets the reset vector
func (b *Bus) Load(program []uint8) error {
	return b.CPU.Load(program)
}

// Reset resets the CPU and the bus counters. Memory is preserved.
func (b *Bus) Reset() {
	b.CPU.Reset()

	b.cpuCycles = 0
	b.stepCount = 0
	b.executionLog = make([]BusExecutionEvent, 0)
	b.watchpointHits = nil

	// Re-arm watchpoints against current contents
	for address := range b.memoryWatchpoints {
		b.memoryWatchpoints[address] = b.Memory.Read(address)
	}
}

// Restore replaces memory and the register file with a saved snapshot
// and sets the counters to the saved values
func (b *Bus) Restore(regs cpu.Registers, ram []uint8, steps, cycles uint64) error {
	if len(ram) != memory.Size {
		return fmt.Errorf("bus: snapshot holds %d bytes of memory, want %d", len(ram), memory.Size)
	}
	if err := b.Memory.Load(0, ram); err != nil {
		return err
	}
	b.CPU.Restore(regs)

	b.stepCount = steps
	b.cpuCycles = cycles
	b.executionLog = make([]BusExecutionEvent, 0)
	b.watchpointHits = nil

	for address := range b.memoryWatchpoints {
		b.memoryWatchpoints[address] = b.Memory.Read(address)
	}
	return nil
}

// Step executes one CPU instruction
func (b *Bus) Step() error {
	// Capture pre-step state for logging
	prePC := b.CPU.PC
	preOpcode := b.Memory.Read(prePC)
	b.currentPC = prePC

	if err := b.CPU.Step(); err != nil {
		return err
	}

	b.stepCount++
	op, _ := cpu.Lookup(preOpcode)
	b.cpuCycles += uint64(op.Cycles)

	if b.loggingEnabled {
		event := BusExecutionEvent{
			StepNumber:    len(b.executionLog) + 1,
			CPUCycles:     b.cpuCycles,
			PCValue:       prePC,
			InstructionOp: preOpcode,
			Mnemonic:      op.Mnemonic.String(),
			Registers:     b.CPU.Snapshot(),
		}
		b.executionLog = append(b.executionLog, event)
	}
	return nil
}

// Run steps until BRK, an error, or maxSteps instructions have executed.
// A maxSteps of zero means no limit. It returns the number of instructions
// executed by this call, BRK included.
func (b *Bus) Run(maxSteps uint64) (uint64, error) {
	var steps uint64
	for maxSteps == 0 || steps < maxSteps {
		if err := b.Step(); err != nil {
			return steps, err
		}
		steps++
		if b.CPU.Halted() {
			return steps, nil
		}
	}
	return steps, ErrStepLimit
}

// LoadAndRun loads program, resets and runs it under the given step limit
func (b *Bus) LoadAndRun(program []uint8, maxSteps uint64) (uint64, error) {
	if err := b.Load(program); err != nil {
		return 0, err
	}
	b.Reset()
	return b.Run(maxSteps)
}

// GetCycleCount returns the nominal CPU cycles consumed since Reset
func (b *Bus) GetCycleCount() uint64 {
	return b.cpuCycles
}

// GetStepCount returns the instructions executed since Reset
func (b *Bus) GetStepCount() uint64 {
	return b.stepCount
}

// EnableCPUDebug enables/disables CPU debug logging and loop detection
func (b *Bus) EnableCPUDebug(enable bool) {
	b.CPU.EnableDebugLogging(enable)
	b.CPU.EnableLoopDetection(enable)
}

// GetExecutionLog returns execution log for integration testing
func (b *Bus) GetExecutionLog() []BusExecutionEvent {
	return b.executionLog
}

// EnableExecutionLogging enables execution logging for testing
func (b *Bus) EnableExecutionLogging() {
	b.loggingEnabled = true
}

// DisableExecutionLogging disables execution logging
func (b *Bus) DisableExecutionLogging() {
	b.loggingEnabled = false
}

// ClearExecutionLog clears the execution log
func (b *Bus) ClearExecutionLog() {
	b.executionLog = make([]BusExecutionEvent, 0)
}

// BusExecutionEvent represents a single execution step
type BusExecutionEvent struct {
	StepNumber    int
	CPUCycles     uint64
	PCValue       uint16
	InstructionOp uint8
	Mnemonic      string
	Registers     cpu.Registers // after the instruction
}

// GetCPUState returns the current CPU state for testing
func (b *Bus) GetCPUState() CPUState {
	p := b.CPU.P
	return CPUState{
		PC:     b.CPU.PC,
		A:      b.CPU.A,
		X:      b.CPU.X,
		Y:      b.CPU.Y,
		SP:     b.CPU.SP,
		Cycles: b.cpuCycles,
		Flags: CPUFlags{
			N: p.Has(cpu.Negative),
			V: p.Has(cpu.Overflow),
			B: p.Has(cpu.Break),
			D: p.Has(cpu.Decimal),
			I: p.Has(cpu.InterruptDisable),
			Z: p.Has(cpu.Zero),
			C: p.Has(cpu.Carry),
		},
	}
}

// CPUState represents CPU state snapshot for testing
type CPUState struct {
	PC      uint16
	A, X, Y uint8
	SP      uint8
	Cycles  uint64
	Flags   CPUFlags
}

// CPUFlags represents CPU status flags for testing
type CPUFlags struct {
	N, V, B, D, I, Z, C bool
}

// WatchpointHit records one observed change at a watched address
type WatchpointHit struct {
	Step     uint64 // instructions completed before the write
	PC       uint16 // instruction that performed the write
	Address  uint16
	OldValue uint8
	NewValue uint8
}

// AddMemoryWatchpoint adds a memory address to monitor for changes
func (b *Bus) AddMemoryWatchpoint(address uint16) {
	b.memoryWatchpoints[address] = b.Memory.Read(address)
}

// RemoveMemoryWatchpoint stops monitoring address
func (b *Bus) RemoveMemoryWatchpoint(address uint16) {
	delete(b.memoryWatchpoints, address)
}

// Watchpoints returns the watched addresses in ascending order
func (b *Bus) Watchpoints() []uint16 {
	addresses := make([]uint16, 0, len(b.memoryWatchpoints))
	for address := range b.memoryWatchpoints {
		addresses = append(addresses, address)
	}
	sort.Slice(addresses, func(i, j int) bool { return addresses[i] < addresses[j] })
	return addresses
}

// WatchpointHits returns the changes recorded since Reset
func (b *Bus) WatchpointHits() []WatchpointHit {
	return b.watchpointHits
}

// EnableWatchpointLogging enables/disables memory watchpoint logging
func (b *Bus) EnableWatchpointLogging(enabled bool) {
	b.watchpointLogging = enabled
}
