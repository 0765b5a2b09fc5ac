// Package app provides configuration management for the 6502 runner.
package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	CPU      CPUConfig      `json:"cpu"`
	Monitor  MonitorConfig  `json:"monitor"`
	Terminal TerminalConfig `json:"terminal"`
	Debug    DebugConfig    `json:"debug"`
	Paths    PathsConfig    `json:"paths"`
	Stats    StatsConfig    `json:"stats"`

	// Internal state
	configPath string
	loaded     bool
}

// CPUConfig contains execution settings
type CPUConfig struct {
	Trace         bool   `json:"trace"`          // Per-instruction trace logging
	LoopDetection bool   `json:"loop_detection"` // Report a PC stuck on one address
	MaxSteps      uint64 `json:"max_steps"`      // 0 runs until BRK
}

// MonitorConfig contains the register monitor window settings
type MonitorConfig struct {
	Enabled       bool `json:"enabled"`
	Scale         int  `json:"scale"`           // Window size multiplier
	StepsPerFrame int  `json:"steps_per_frame"` // Instructions executed per 60Hz tick
	Paused        bool `json:"paused"`          // Start paused
}

// TerminalConfig contains the interactive stepper settings
type TerminalConfig struct {
	Interactive bool `json:"interactive"`
}

// DebugConfig contains debugging and development options
type DebugConfig struct {
	Watchpoints   []string `json:"watchpoints"` // Hex addresses, "$0010" or "0x10"
	ExecutionLog  bool     `json:"execution_log"`
	LogLevel      string   `json:"log_level"` // "DEBUG", "INFO", "WARN", "ERROR"
	EnableLogging bool     `json:"enable_logging"`
}

// StatsConfig contains the live runtime statistics server settings
type StatsConfig struct {
	Enabled    bool   `json:"enabled"`
	Addr       string `json:"addr"`
	IntervalMS int    `json:"interval_ms"` // Chart refresh period
}

// PathsConfig contains file and directory paths
type PathsConfig struct {
	Program    string `json:"program"`
	SaveStates string `json:"save_states"`
	Config     string `json:"config"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	config := &Config{
		CPU: CPUConfig{
			Trace:         false,
			LoopDetection: false,
			MaxSteps:      1000000,
		},
		Monitor: MonitorConfig{
			Enabled:       false,
			Scale:         2,
			StepsPerFrame: 1,
			Paused:        true,
		},
		Terminal: TerminalConfig{
			Interactive: false,
		},
		Debug: DebugConfig{
			Watchpoints:   []string{},
			ExecutionLog:  false,
			LogLevel:      "INFO",
			EnableLogging: false,
		},
		Paths: PathsConfig{
			Program:    "",
			SaveStates: "./states",
			Config:     "./config",
		},
		Stats: StatsConfig{
			Enabled:    false,
			Addr:       "localhost:12600",
			IntervalMS: 2000,
		},
		loaded: false,
	}

	return config
}

// LoadFromFile loads configuration from a JSON file
func (c *Config) LoadFromFile(path string) error {
	c.configPath = path

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// File doesn't exist - save default config and return
		return c.SaveToFile(path)
	}

	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	// Validate configuration
	if err := c.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	c.loaded = true
	return nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Marshal to JSON with indentation
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	c.configPath = path
	return nil
}

// Save saves the configuration to the current config file
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("no config file path set")
	}

	return c.SaveToFile(c.configPath)
}

// validate validates the configuration values. Out-of-range numbers are
// clamped back to defaults; malformed watchpoints are an error.
func (c *Config) validate() error {
	if c.Monitor.Scale <= 0 {
		c.Monitor.Scale = 1
	}
	if c.Monitor.Scale > 8 {
		c.Monitor.Scale = 8
	}

	if c.Monitor.StepsPerFrame <= 0 {
		c.Monitor.StepsPerFrame = 1
	}

	if c.Stats.Addr == "" {
		c.Stats.Addr = "localhost:12600"
	}
	if c.Stats.IntervalMS < 100 {
		c.Stats.IntervalMS = 100
	}

	switch strings.ToUpper(c.Debug.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
		c.Debug.LogLevel = strings.ToUpper(c.Debug.LogLevel)
	default:
		c.Debug.LogLevel = "INFO"
	}

	if _, err := c.WatchpointAddresses(); err != nil {
		return err
	}

	return nil
}

// WatchpointAddresses parses Debug.Watchpoints
func (c *Config) WatchpointAddresses() ([]uint16, error) {
	addresses := make([]uint16, 0, len(c.Debug.Watchpoints))
	for _, text := range c.Debug.Watchpoints {
		address, err := ParseAddress(text)
		if err != nil {
			return nil, &ConfigError{Field: "debug.watchpoints", Value: text, Err: err}
		}
		addresses = append(addresses, address)
	}
	return addresses, nil
}

// ParseAddress parses a 16-bit hex address written as "$1234", "0x1234"
// or "1234"
func ParseAddress(text string) (uint16, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return 0, fmt.Errorf("empty address")
	}
	value, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("bad address %q: %w", text, err)
	}
	return uint16(value), nil
}

// IsLoaded returns whether the configuration was loaded from file
func (c *Config) IsLoaded() bool {
	return c.loaded
}

// GetConfigPath returns the path to the config file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	// Marshal to JSON and back to create deep copy
	data, err := json.Marshal(c)
	if err != nil {
		return NewConfig() // Return default config on error
	}

	clone := &Config{}
	if err := json.Unmarshal(data, clone); err != nil {
		return NewConfig() // Return default config on error
	}

	// Copy non-serialized fields
	clone.configPath = c.configPath
	clone.loaded = c.loaded

	return clone
}

// UpdateCPU updates execution configuration
func (c *Config) UpdateCPU(trace, loopDetection bool, maxSteps uint64) {
	c.CPU.Trace = trace
	c.CPU.LoopDetection = loopDetection
	c.CPU.MaxSteps = maxSteps
}

// UpdateMonitor updates monitor configuration
func (c *Config) UpdateMonitor(enabled bool, scale, stepsPerFrame int) {
	c.Monitor.Enabled = enabled
	c.Monitor.Scale = scale
	c.Monitor.StepsPerFrame = stepsPerFrame
}

// UpdateDebug updates debug configuration
func (c *Config) UpdateDebug(executionLog, enableLogging bool, watchpoints []string) {
	c.Debug.ExecutionLog = executionLog
	c.Debug.EnableLogging = enableLogging
	c.Debug.Watchpoints = append([]string(nil), watchpoints...)
}

// Overrides are command line settings layered over the file
// configuration. Zero values leave the file setting alone.
type Overrides struct {
	Trace         bool
	LoopDetection bool
	MaxSteps      uint64
	Watchpoints   []string
	ExecutionLog  bool
	Interactive   bool
	Monitor       bool
	Scale         int
	StepsPerFrame int
	Stats         bool
}

// WithOverrides returns a copy of c with o applied. c itself is left as
// loaded so that Save on it never persists command line settings.
func (c *Config) WithOverrides(o Overrides) *Config {
	effective := c.Clone()

	maxSteps := effective.CPU.MaxSteps
	if o.MaxSteps > 0 {
		maxSteps = o.MaxSteps
	}
	effective.UpdateCPU(effective.CPU.Trace || o.Trace, effective.CPU.LoopDetection || o.LoopDetection, maxSteps)

	scale, perFrame := effective.Monitor.Scale, effective.Monitor.StepsPerFrame
	if o.Scale > 0 {
		scale = o.Scale
	}
	if o.StepsPerFrame > 0 {
		perFrame = o.StepsPerFrame
	}
	effective.UpdateMonitor(effective.Monitor.Enabled || o.Monitor, scale, perFrame)

	watchpoints, enableLogging := effective.Debug.Watchpoints, effective.Debug.EnableLogging
	if len(o.Watchpoints) > 0 {
		watchpoints, enableLogging = o.Watchpoints, true
	}
	effective.UpdateDebug(effective.Debug.ExecutionLog || o.ExecutionLog, enableLogging, watchpoints)

	if o.Interactive {
		effective.Terminal.Interactive = true
	}
	if o.Stats {
		effective.Stats.Enabled = true
	}
	return effective
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	return "./config/nes6502.json"
}

// ConfigError represents configuration-related errors
type ConfigError struct {
	Field string
	Value interface{}
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field '%s' with value '%v': %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
