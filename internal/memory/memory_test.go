package memory

import (
	"errors"
	"testing"
)

func TestFullAddressRange(t *testing.T) {
	mem := New()

	for _, address := range []uint16{0x0000, 0x00FF, 0x0100, 0x7FFF, 0x8000, 0xFFFC, 0xFFFF} {
		value := uint8(address>>8) ^ uint8(address)
		mem.Write(address, value)
		if got := mem.Read(address); got != value {
			t.Errorf("address 0x%04X: expected 0x%02X, got 0x%02X", address, value, got)
		}
	}
}

func TestRead16Write16RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		pos   uint16
		value uint16
	}{
		{"zero page", 0x0010, 0x1234},
		{"reset vector", 0xFFFC, 0x8000},
		{"page boundary", 0x01FF, 0xBEEF},
		{"all ones", 0x4000, 0xFFFF},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			mem := New()
			mem.Write16(test.pos, test.value)

			if got := mem.Read16(test.pos); got != test.value {
				t.Errorf("Expected 0x%04X, got 0x%04X", test.value, got)
			}
			if low := mem.Read(test.pos); low != uint8(test.value) {
				t.Errorf("Expected low byte 0x%02X at 0x%04X, got 0x%02X", uint8(test.value), test.pos, low)
			}
			if high := mem.Read(test.pos + 1); high != uint8(test.value>>8) {
				t.Errorf("Expected high byte 0x%02X at 0x%04X, got 0x%02X", uint8(test.value>>8), test.pos+1, high)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	mem := New()

	if err := mem.Load(0x8000, []uint8{0xA9, 0x05, 0x00}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := mem.Slice(0x8000, 3); len(got) != 3 || got[0] != 0xA9 || got[1] != 0x05 || got[2] != 0x00 {
		t.Errorf("Unexpected contents %v", got)
	}

	if err := mem.Load(0xFFFE, []uint8{1, 2}); err != nil {
		t.Errorf("Load ending at 0xFFFF should succeed: %v", err)
	}
	if err := mem.Load(0xFFFF, []uint8{1, 2}); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Expected ErrOutOfRange, got %v", err)
	}
}

func TestSliceClipsAtTop(t *testing.T) {
	mem := New()
	mem.Write(0xFFFF, 0x42)

	got := mem.Slice(0xFFFE, 16)
	if len(got) != 2 || got[1] != 0x42 {
		t.Errorf("Expected 2 bytes ending in 0x42, got %v", got)
	}

	// Slice returns a copy
	got[1] = 0x00
	if mem.Read(0xFFFF) != 0x42 {
		t.Error("Slice must not alias memory")
	}

	if mem.Slice(0x1000, 0) != nil {
		t.Error("Expected nil for empty slice")
	}
}

func TestReset(t *testing.T) {
	mem := New()
	mem.Write(0x1234, 0x56)
	mem.Write(0xFFFF, 0x78)

	mem.Reset()

	if mem.Read(0x1234) != 0 || mem.Read(0xFFFF) != 0 {
		t.Error("Reset should clear memory")
	}
}
