// Package app implements the 6502 runner application: batch execution,
// an interactive terminal stepper and the register monitor window.
package app

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"nes6502/internal/bus"
	"nes6502/internal/monitor"
	"nes6502/internal/statsview"
)

// Application represents the main runner application
type Application struct {
	// Core components
	bus      *bus.Bus
	config   *Config
	emulator *Emulator
	states   *StateManager

	logger *log.Logger
	output io.Writer

	// Control flags
	running     bool
	initialized bool

	// done closes on Stop
	done     chan struct{}
	stopOnce sync.Once

	programPath string
}

// ApplicationError represents application-specific errors
type ApplicationError struct {
	Component string
	Operation string
	Err       error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("Application %s error during %s: %v", e.Component, e.Operation, e.Err)
}

func (e *ApplicationError) Unwrap() error {
	return e.Err
}

// NewApplication creates a new application, loading configuration from
// configPath when it is not empty
func NewApplication(configPath string) (*Application, error) {
	config := NewConfig()

	if configPath != "" {
		if err := config.LoadFromFile(configPath); err != nil {
			// Log warning but continue with defaults
			log.Printf("[APP_WARNING] Could not load config from %s, using defaults: %v", configPath, err)
			config = NewConfig()
		}
	}

	return NewApplicationWithConfig(config)
}

// NewApplicationWithConfig creates a new application from an existing
// configuration
func NewApplicationWithConfig(config *Config) (*Application, error) {
	if config == nil {
		config = NewConfig()
	}
	if err := config.validate(); err != nil {
		return nil, &ApplicationError{
			Component: "config",
			Operation: "validate",
			Err:       err,
		}
	}

	app := &Application{
		config: config,
		logger: log.Default(),
		output: os.Stdout,
		done:   make(chan struct{}),
	}

	if err := app.initializeComponents(); err != nil {
		return nil, &ApplicationError{
			Component: "initialization",
			Operation: "component setup",
			Err:       err,
		}
	}

	return app, nil
}

// initializeComponents builds the bus, emulator and state manager
func (app *Application) initializeComponents() error {
	app.bus = bus.New()
	app.bus.SetLogger(app.logger)
	app.emulator = NewEmulator(app.bus, app.config)
	app.states = NewStateManager(app.config.Paths.SaveStates)

	app.initialized = true
	return nil
}

// SetLogger routes all diagnostic output to logger
func (app *Application) SetLogger(logger *log.Logger) {
	if logger == nil {
		logger = log.Default()
	}
	app.logger = logger
	app.bus.SetLogger(logger)
}

// SetOutput sets where run results are written
func (app *Application) SetOutput(w io.Writer) {
	app.output = w
}

// logf logs at level when the configured log level lets it through
func (app *Application) logf(level, format string, args ...interface{}) {
	if logLevelRank(level) < logLevelRank(app.config.Debug.LogLevel) {
		return
	}
	app.logger.Printf("[APP_"+level+"] "+format, args...)
}

func logLevelRank(level string) int {
	switch level {
	case "DEBUG":
		return 0
	case "INFO":
		return 1
	case "WARN":
		return 2
	default:
		return 3
	}
}

// LoadProgram loads a raw program image file
func (app *Application) LoadProgram(programPath string) error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	program, err := os.ReadFile(programPath)
	if err != nil {
		return &ApplicationError{
			Component: "program",
			Operation: "read",
			Err:       err,
		}
	}

	if err := app.LoadProgramBytes(program); err != nil {
		return err
	}
	app.programPath = programPath
	app.logf("INFO", "Loaded %s (%d bytes)", filepath.Base(programPath), len(program))
	return nil
}

// LoadProgramBytes loads program at the program base and resets the CPU
func (app *Application) LoadProgramBytes(program []uint8) error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	if err := app.bus.Load(program); err != nil {
		return &ApplicationError{
			Component: "bus",
			Operation: "load program",
			Err:       err,
		}
	}

	if err := app.ApplyDebugSettings(); err != nil {
		return err
	}
	if err := app.emulator.Reset(); err != nil {
		return err
	}
	app.emulator.Start()
	return nil
}

// ApplyDebugSettings applies trace, loop detection, watchpoint and
// execution log settings to the bus and CPU
func (app *Application) ApplyDebugSettings() error {
	app.bus.CPU.EnableDebugLogging(app.config.CPU.Trace)
	app.bus.CPU.EnableLoopDetection(app.config.CPU.LoopDetection)

	addresses, err := app.config.WatchpointAddresses()
	if err != nil {
		return err
	}
	for _, address := range app.bus.Watchpoints() {
		app.bus.RemoveMemoryWatchpoint(address)
	}
	for _, address := range addresses {
		app.bus.AddMemoryWatchpoint(address)
	}
	app.bus.EnableWatchpointLogging(len(addresses) > 0 && app.config.Debug.EnableLogging)

	if app.config.Debug.ExecutionLog {
		app.bus.EnableExecutionLogging()
	} else {
		app.bus.DisableExecutionLogging()
	}

	app.logf("DEBUG", "trace=%v loop_detection=%v watchpoints=%d execution_log=%v",
		app.config.CPU.Trace, app.config.CPU.LoopDetection, len(addresses), app.config.Debug.ExecutionLog)
	return nil
}

// Run runs the loaded program in the configured mode: monitor window,
// interactive terminal stepper, or batch to completion
func (app *Application) Run() error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	app.running = true
	defer func() { app.running = false }()

	if app.config.Stats.Enabled {
		if statsview.Available() {
			interval := time.Duration(app.config.Stats.IntervalMS) * time.Millisecond
			server := statsview.Start(app.config.Stats.Addr, interval, app.logger)
			defer server.Stop()
		} else {
			app.logf("WARN", "statsview not compiled in; rebuild with -tags statsview")
		}
	}

	switch {
	case app.config.Monitor.Enabled:
		return app.RunMonitor()
	case app.config.Terminal.Interactive:
		return app.RunTerminal(os.Stdin)
	default:
		return app.RunBatch()
	}
}

// RunBatch runs the program until BRK, the step limit or Stop and reports
// the final state. An interrupted run is not an error.
func (app *Application) RunBatch() error {
	start := time.Now()
	steps, err := app.emulator.RunToHalt()
	elapsed := time.Since(start)

	app.report(steps, elapsed, err)

	if err != nil && !errors.Is(err, ErrInterrupted) {
		return &ApplicationError{
			Component: "cpu",
			Operation: "run",
			Err:       err,
		}
	}
	return nil
}

// report writes the execution log, watchpoint hits and run summary
func (app *Application) report(steps uint64, elapsed time.Duration, runErr error) {
	out := app.output

	if app.config.Debug.ExecutionLog {
		for _, event := range app.bus.GetExecutionLog() {
			fmt.Fprintf(out, "%6d  $%04X  %02X  %-3s  %v\n",
				event.StepNumber, event.PCValue, event.InstructionOp, event.Mnemonic, event.Registers)
		}
	}

	for _, hit := range app.bus.WatchpointHits() {
		fmt.Fprintf(out, "watch $%04X: $%02X -> $%02X at $%04X (step %d)\n",
			hit.Address, hit.OldValue, hit.NewValue, hit.PC, hit.Step)
	}

	stats := app.emulator.GetPerformanceStats()
	state := "halted"
	switch {
	case errors.Is(runErr, ErrInterrupted):
		state = "interrupted"
	case !stats.Halted:
		state = "stopped"
	}
	fmt.Fprintf(out, "%s after %d steps (%d cycles) in %v\n", state, steps, stats.CycleCount, elapsed)
	fmt.Fprintf(out, "%v\n", app.bus.CPU.Snapshot())
}

// RunMonitor opens the register monitor window
func (app *Application) RunMonitor() error {
	if !monitor.Available() {
		return &ApplicationError{
			Component: "monitor",
			Operation: "open window",
			Err:       errors.New("this build has no monitor window; rebuild without -tags headless"),
		}
	}

	title := "nes6502"
	if app.programPath != "" {
		title = fmt.Sprintf("nes6502 - %s", filepath.Base(app.programPath))
	}

	return monitor.Run(app.emulator, monitor.Options{
		Title:  title,
		Scale:  app.config.Monitor.Scale,
		Paused: app.config.Monitor.Paused,
		Done:   app.done,
	})
}

// SaveState saves the current machine state
func (app *Application) SaveState(slot int) error {
	if app.programPath == "" {
		return errors.New("no program file loaded")
	}
	return app.states.SaveState(app.bus, slot, app.programPath)
}

// LoadState loads a saved machine state
func (app *Application) LoadState(slot int) error {
	if app.programPath == "" {
		return errors.New("no program file loaded")
	}
	return app.states.LoadState(app.bus, slot, app.programPath)
}

// SaveSlots lists the save slots of the loaded program
func (app *Application) SaveSlots() ([]StateSlotInfo, error) {
	if app.programPath == "" {
		return nil, errors.New("no program file loaded")
	}
	return app.states.GetSlotInfo(app.programPath), nil
}

// DeleteState empties a save slot
func (app *Application) DeleteState(slot int) error {
	if app.programPath == "" {
		return errors.New("no program file loaded")
	}
	return app.states.DeleteState(slot, app.programPath)
}

// Reset restarts the loaded program
func (app *Application) Reset() error {
	return app.emulator.Reset()
}

// Stop ends the current run: a batch run stops before its next
// instruction, the stepper returns and the monitor window closes. It is
// safe to call from a signal handler goroutine.
func (app *Application) Stop() {
	app.stopOnce.Do(func() {
		close(app.done)
		app.emulator.Interrupt()
	})
}

// IsRunning returns whether the application is running
func (app *Application) IsRunning() bool {
	return app.running
}

// GetBus returns the system bus
func (app *Application) GetBus() *bus.Bus {
	return app.bus
}

// GetEmulator returns the frame runner
func (app *Application) GetEmulator() *Emulator {
	return app.emulator
}

// GetConfig returns the application configuration
func (app *Application) GetConfig() *Config {
	return app.config
}

// Cleanup releases all resources and shuts down the application
func (app *Application) Cleanup() error {
	app.logf("DEBUG", "Cleaning up application resources...")

	if app.emulator != nil {
		app.emulator.Stop()
	}

	app.initialized = false
	return nil
}
