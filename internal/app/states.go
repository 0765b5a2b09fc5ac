// Save state support for the 6502 runner.
package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"nes6502/internal/bus"
	"nes6502/internal/cpu"
	"nes6502/internal/memory"
)

const saveStateVersion = "1.0"

// StateManager manages save states
type StateManager struct {
	saveDirectory string
	maxSlots      int
	initialized   bool
}

// SaveState represents a saved machine state
type SaveState struct {
	// Metadata
	Version         string    `json:"version"`
	Timestamp       time.Time `json:"timestamp"`
	ProgramPath     string    `json:"program_path"`
	ProgramChecksum string    `json:"program_checksum"`
	SlotNumber      int       `json:"slot_number"`
	Description     string    `json:"description"`

	// Machine state
	CPUState    CPUStateData `json:"cpu_state"`
	MemoryState MemoryData   `json:"memory_state"`

	StepCount  uint64 `json:"step_count"`
	CycleCount uint64 `json:"cycle_count"`
}

// CPUStateData represents CPU state for save files
type CPUStateData struct {
	PC     uint16 `json:"pc"`
	A      uint8  `json:"a"`
	X      uint8  `json:"x"`
	Y      uint8  `json:"y"`
	SP     uint8  `json:"sp"`
	Status uint8  `json:"status"`
}

// MemoryData represents memory state for save files
type MemoryData struct {
	RAMData []uint8 `json:"ram_data"` // full 64KB image
}

// StateSlotInfo contains information about a save state slot
type StateSlotInfo struct {
	SlotNumber  int       `json:"slot_number"`
	Used        bool      `json:"used"`
	Timestamp   time.Time `json:"timestamp"`
	ProgramPath string    `json:"program_path"`
	Description string    `json:"description"`
	FilePath    string    `json:"file_path"`
	FileSize    int64     `json:"file_size"`
}

// NewStateManager creates a new state manager
func NewStateManager(saveDirectory string) *StateManager {
	return &StateManager{
		saveDirectory: saveDirectory,
		maxSlots:      10, // Default to 10 save slots
	}
}

// initialize creates the save directory on first use
func (sm *StateManager) initialize() error {
	if sm.initialized {
		return nil
	}
	if err := os.MkdirAll(sm.saveDirectory, 0755); err != nil {
		return fmt.Errorf("failed to create save directory: %w", err)
	}

	sm.initialized = true
	return nil
}

// SaveState saves the current machine state to a slot
func (sm *StateManager) SaveState(b *bus.Bus, slot int, programPath string) error {
	if err := sm.checkSlot(slot); err != nil {
		return err
	}
	if b == nil {
		return fmt.Errorf("bus cannot be nil")
	}
	if err := sm.initialize(); err != nil {
		return err
	}

	checksum, err := sm.calculateProgramChecksum(programPath)
	if err != nil {
		return err
	}

	regs := b.CPU.Snapshot()
	saveState := &SaveState{
		Version:         saveStateVersion,
		Timestamp:       time.Now(),
		ProgramPath:     programPath,
		ProgramChecksum: checksum,
		SlotNumber:      slot,
		Description:     fmt.Sprintf("Slot %d at step %d", slot, b.GetStepCount()),
		CPUState: CPUStateData{
			PC:     regs.PC,
			A:      regs.A,
			X:      regs.X,
			Y:      regs.Y,
			SP:     regs.SP,
			Status: regs.P.Byte(),
		},
		MemoryState: MemoryData{
			RAMData: b.Memory.Slice(0, memory.Size),
		},
		StepCount:  b.GetStepCount(),
		CycleCount: b.GetCycleCount(),
	}

	filePath := sm.getSlotFilePath(slot, programPath)
	if err := sm.saveToFile(saveState, filePath); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	return nil
}

// LoadState loads a saved state from a slot
func (sm *StateManager) LoadState(b *bus.Bus, slot int, programPath string) error {
	if err := sm.checkSlot(slot); err != nil {
		return err
	}
	if b == nil {
		return fmt.Errorf("bus cannot be nil")
	}

	filePath := sm.getSlotFilePath(slot, programPath)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return fmt.Errorf("save state not found in slot %d", slot)
	}

	saveState, err := sm.loadFromFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	if err := sm.validateSaveState(saveState, programPath); err != nil {
		return fmt.Errorf("invalid save state: %w", err)
	}

	if err := sm.restoreState(b, saveState); err != nil {
		return fmt.Errorf("failed to restore state: %w", err)
	}

	return nil
}

func (sm *StateManager) checkSlot(slot int) error {
	if slot < 0 || slot >= sm.maxSlots {
		return fmt.Errorf("invalid save slot: %d (must be 0-%d)", slot, sm.maxSlots-1)
	}
	return nil
}

// saveToFile saves a state to a file
func (sm *StateManager) saveToFile(state *SaveState, filePath string) error {
	// Ensure directory exists
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// loadFromFile loads a state from a file
func (sm *StateManager) loadFromFile(filePath string) (*SaveState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var state SaveState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}

	return &state, nil
}

// validateSaveState validates a loaded save state
func (sm *StateManager) validateSaveState(state *SaveState, currentProgramPath string) error {
	if state.Version != saveStateVersion {
		return fmt.Errorf("unsupported version %q", state.Version)
	}

	if len(state.MemoryState.RAMData) != memory.Size {
		return fmt.Errorf("memory image holds %d bytes, want %d", len(state.MemoryState.RAMData), memory.Size)
	}

	// A state belongs to the program image it was taken from, wherever
	// that file now lives
	checksum, err := sm.calculateProgramChecksum(currentProgramPath)
	if err != nil {
		return err
	}
	if state.ProgramChecksum == "" || state.ProgramChecksum != checksum {
		return fmt.Errorf("save state is for a different program")
	}

	return nil
}

// restoreState restores machine state from a save state
func (sm *StateManager) restoreState(b *bus.Bus, state *SaveState) error {
	var status cpu.Status
	status.SetByte(state.CPUState.Status)

	regs := cpu.Registers{
		A:  state.CPUState.A,
		X:  state.CPUState.X,
		Y:  state.CPUState.Y,
		SP: state.CPUState.SP,
		PC: state.CPUState.PC,
		P:  status,
	}
	return b.Restore(regs, state.MemoryState.RAMData, state.StepCount, state.CycleCount)
}

// getSlotFilePath generates the file path for a save slot
func (sm *StateManager) getSlotFilePath(slot int, programPath string) string {
	name := filepath.Base(programPath)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "" || name == "." {
		name = "program"
	}
	fileName := fmt.Sprintf("%s_slot_%d.save", name, slot)
	return filepath.Join(sm.saveDirectory, fileName)
}

// calculateProgramChecksum hashes the program file
func (sm *StateManager) calculateProgramChecksum(programPath string) (string, error) {
	data, err := os.ReadFile(programPath)
	if err != nil {
		return "", fmt.Errorf("cannot checksum program: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// GetSlotInfo returns information about all save slots
func (sm *StateManager) GetSlotInfo(programPath string) []StateSlotInfo {
	slots := make([]StateSlotInfo, sm.maxSlots)

	for i := 0; i < sm.maxSlots; i++ {
		filePath := sm.getSlotFilePath(i, programPath)
		slots[i] = StateSlotInfo{
			SlotNumber: i,
			FilePath:   filePath,
		}

		info, err := os.Stat(filePath)
		if err != nil {
			continue
		}
		slots[i].Used = true
		slots[i].FileSize = info.Size()

		if state, err := sm.loadFromFile(filePath); err == nil {
			slots[i].Timestamp = state.Timestamp
			slots[i].ProgramPath = state.ProgramPath
			slots[i].Description = state.Description
		}
	}

	return slots
}

// DeleteState deletes a save state from a slot
func (sm *StateManager) DeleteState(slot int, programPath string) error {
	if err := sm.checkSlot(slot); err != nil {
		return err
	}

	filePath := sm.getSlotFilePath(slot, programPath)
	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no save state in slot %d", slot)
		}
		return fmt.Errorf("failed to delete save state: %w", err)
	}

	return nil
}

// GetSaveDirectory returns the save directory path
func (sm *StateManager) GetSaveDirectory() string {
	return sm.saveDirectory
}
