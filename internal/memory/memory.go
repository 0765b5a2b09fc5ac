// Package memory implements the flat 64KB address space the CPU runs against.
package memory

import (
	"errors"
	"fmt"
)

// Size is the number of addressable bytes, 0x0000-0xFFFF inclusive
const Size = 0x10000

// ErrOutOfRange is returned when a block would extend past 0xFFFF
var ErrOutOfRange = errors.New("memory: block extends past 0xFFFF")

// Memory is a plain RAM covering the whole 16-bit address space. Every
// address, including 0xFFFF, is readable and writable.
type Memory struct {
	ram [Size]uint8
}

// New creates a zeroed Memory instance
func New() *Memory {
	return &Memory{}
}

// Read returns the byte at address
func (m *Memory) Read(address uint16) uint8 {
	return m.ram[address]
}

// Write stores value at address
func (m *Memory) Write(address uint16, value uint8) {
	m.ram[address] = value
}

// Read16 reads a little-endian word: low byte at pos, high byte at pos+1.
// At pos 0xFFFF the high byte comes from 0x0000.
func (m *Memory) Read16(pos uint16) uint16 {
	low := uint16(m.Read(pos))
	high := uint16(m.Read(pos + 1))
	return (high << 8) | low
}

// Write16 writes a little-endian word
func (m *Memory) Write16(pos uint16, value uint16) {
	m.Write(pos, uint8(value&0xFF))
	m.Write(pos+1, uint8(value>>8))
}

// Load copies data into memory starting at address
func (m *Memory) Load(address uint16, data []uint8) error {
	if int(address)+len(data) > Size {
		return fmt.Errorf("%w: %d bytes at $%04X", ErrOutOfRange, len(data), address)
	}
	copy(m.ram[address:], data)
	return nil
}

// Slice returns a copy of n bytes starting at address, clipped at 0xFFFF
func (m *Memory) Slice(address uint16, n int) []uint8 {
	end := int(address) + n
	if end > Size {
		end = Size
	}
	if n <= 0 {
		return nil
	}
	out := make([]uint8, end-int(address))
	copy(out, m.ram[address:end])
	return out
}

// Reset clears every byte to zero
func (m *Memory) Reset() {
	m.ram = [Size]uint8{}
}
