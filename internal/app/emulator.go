// Package app provides emulator integration for the main application.
package app

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"nes6502/internal/bus"
	"nes6502/internal/cpu"
)

// ErrInterrupted is returned when a run is cut short by Interrupt
var ErrInterrupted = errors.New("run interrupted")

// Emulator drives the bus in frame-sized batches of instructions and keeps
// timing statistics. It implements monitor.Machine.
type Emulator struct {
	bus    *bus.Bus
	config *Config

	stepsPerFrame int
	maxSteps      uint64

	// Performance monitoring
	frameCount       uint64
	emulationTime    time.Duration
	averageFrameTime time.Duration

	// State tracking
	isRunning     bool
	lastResetTime time.Time

	// Set from the signal handler goroutine
	interrupted atomic.Bool
}

// EmulatorStats is a snapshot of the emulator counters
type EmulatorStats struct {
	FrameCount       uint64
	StepCount        uint64
	CycleCount       uint64
	EmulationTime    time.Duration
	AverageFrameTime time.Duration
	Uptime           time.Duration
	IsRunning        bool
	Halted           bool
}

// MaxStepsPerFrame bounds RunFrame so a frame stays well under 16ms
const MaxStepsPerFrame = 1 << 16

// NewEmulator creates a new emulator around bus
func NewEmulator(bus *bus.Bus, config *Config) *Emulator {
	emulator := &Emulator{
		bus:           bus,
		config:        config,
		stepsPerFrame: config.Monitor.StepsPerFrame,
		maxSteps:      config.CPU.MaxSteps,
		lastResetTime: time.Now(),
	}
	emulator.SetStepsPerFrame(emulator.stepsPerFrame)
	return emulator
}

// Reset restarts the loaded program and clears the counters
func (e *Emulator) Reset() error {
	if e.bus == nil {
		return fmt.Errorf("bus not initialized")
	}
	e.bus.Reset()

	e.frameCount = 0
	e.emulationTime = 0
	e.averageFrameTime = 0
	e.lastResetTime = time.Now()
	return nil
}

// Start starts the emulator
func (e *Emulator) Start() {
	e.isRunning = true
}

// Stop stops the emulator
func (e *Emulator) Stop() {
	e.isRunning = false
}

// RunFrame executes up to stepsPerFrame instructions, stopping early at BRK
func (e *Emulator) RunFrame() error {
	if e.bus == nil {
		return fmt.Errorf("bus not initialized")
	}

	emulationStart := time.Now()
	for i := 0; i < e.stepsPerFrame && !e.bus.CPU.Halted(); i++ {
		if err := e.step(); err != nil {
			e.Stop()
			return err
		}
	}
	e.frameCount++

	e.emulationTime = time.Since(emulationStart)
	if e.averageFrameTime == 0 {
		e.averageFrameTime = e.emulationTime
	} else {
		// Exponential moving average
		e.averageFrameTime = (e.averageFrameTime*7 + e.emulationTime) / 8
	}
	return nil
}

// StepInstruction executes one CPU instruction. It does nothing once the
// program has halted.
func (e *Emulator) StepInstruction() error {
	if e.bus == nil {
		return fmt.Errorf("bus not initialized")
	}
	if e.bus.CPU.Halted() {
		return nil
	}
	return e.step()
}

// RunToHalt steps until BRK or the configured step limit
func (e *Emulator) RunToHalt() (uint64, error) {
	if e.bus == nil {
		return 0, fmt.Errorf("bus not initialized")
	}
	var steps uint64
	for !e.bus.CPU.Halted() {
		if err := e.step(); err != nil {
			return steps, err
		}
		steps++
	}
	return steps, nil
}

func (e *Emulator) step() error {
	if e.interrupted.Load() {
		return ErrInterrupted
	}
	if e.maxSteps > 0 && e.bus.GetStepCount() >= e.maxSteps {
		return fmt.Errorf("after %d steps: %w", e.bus.GetStepCount(), bus.ErrStepLimit)
	}
	return e.bus.Step()
}

// Halted reports whether the program has executed BRK
func (e *Emulator) Halted() bool {
	return e.bus.CPU.Halted()
}

// Steps returns the instructions executed since the last reset
func (e *Emulator) Steps() uint64 {
	return e.bus.GetStepCount()
}

// Registers returns a copy of the register file
func (e *Emulator) Registers() cpu.Registers {
	return e.bus.CPU.Snapshot()
}

// Peek returns a copy of n bytes of memory starting at address
func (e *Emulator) Peek(address uint16, n int) []uint8 {
	return e.bus.Memory.Slice(address, n)
}

// Disassemble formats the instruction at address
func (e *Emulator) Disassemble(address uint16) string {
	text, _ := cpu.Disassemble(e.bus.Memory, address)
	return text
}

// GetCPUState returns the current CPU state for debugging
func (e *Emulator) GetCPUState() bus.CPUState {
	if e.bus == nil {
		return bus.CPUState{}
	}
	return e.bus.GetCPUState()
}

// IsRunning returns whether the emulator is running
func (e *Emulator) IsRunning() bool {
	return e.isRunning
}

// Interrupt makes the current and every later run stop before its next
// instruction with ErrInterrupted. It is safe to call from any goroutine.
func (e *Emulator) Interrupt() {
	e.interrupted.Store(true)
}

// StepsPerFrame returns how many instructions RunFrame executes
func (e *Emulator) StepsPerFrame() int {
	return e.stepsPerFrame
}

// SetStepsPerFrame sets how many instructions RunFrame executes, between
// 1 and MaxStepsPerFrame
func (e *Emulator) SetStepsPerFrame(steps int) {
	if steps < 1 {
		steps = 1
	}
	if steps > MaxStepsPerFrame {
		steps = MaxStepsPerFrame
	}
	e.stepsPerFrame = steps
}

// GetPerformanceStats returns the emulator counters
func (e *Emulator) GetPerformanceStats() EmulatorStats {
	return EmulatorStats{
		FrameCount:       e.frameCount,
		StepCount:        e.bus.GetStepCount(),
		CycleCount:       e.bus.GetCycleCount(),
		EmulationTime:    e.emulationTime,
		AverageFrameTime: e.averageFrameTime,
		Uptime:           time.Since(e.lastResetTime),
		IsRunning:        e.isRunning,
		Halted:           e.bus.CPU.Halted(),
	}
}

// IsStepLimit reports whether err came from hitting the step limit
func IsStepLimit(err error) bool {
	return errors.Is(err, bus.ErrStepLimit)
}
