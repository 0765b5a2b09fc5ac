package cpu

import "strings"

// Flag is a single bit of the processor status register.
type Flag uint8

// Status register bits
const (
	Carry            Flag = 1 << iota // C
	Zero                              // Z
	InterruptDisable                  // I
	Decimal                           // D
	Break                             // B
	Break2                            // unused bit 5, always preserved
	Overflow                          // V
	Negative                          // N
)

// powerOnStatus is the status value after power-on or reset (I and bit 5 set)
const powerOnStatus = Status(InterruptDisable | Break2)

// Status is the 8-bit condition code register. Each flag is addressed by
// name; the raw byte is only exposed through Byte and SetByte.
type Status uint8

// Has reports whether flag f is set.
func (s Status) Has(f Flag) bool {
	return uint8(s)&uint8(f) != 0
}

// Set turns flag f on.
func (s *Status) Set(f Flag) {
	*s |= Status(f)
}

// Clear turns flag f off.
func (s *Status) Clear(f Flag) {
	*s &^= Status(f)
}

// Assign sets or clears flag f depending on on.
func (s *Status) Assign(f Flag, on bool) {
	if on {
		s.Set(f)
	} else {
		s.Clear(f)
	}
}

// Byte returns the raw register value, e.g. for pushing onto the stack.
func (s Status) Byte() uint8 {
	return uint8(s)
}

// SetByte replaces the whole register from a raw value.
func (s *Status) SetByte(v uint8) {
	*s = Status(v)
}

// Reset puts the register into its power-on state.
func (s *Status) Reset() {
	*s = powerOnStatus
}

// updateZN applies the shared Zero/Negative rule for a computed result.
// No other flag is touched.
func (s *Status) updateZN(v uint8) {
	s.Assign(Zero, v == 0)
	s.Assign(Negative, v&0x80 != 0)
}

// String returns the flags as NV-BDIZC, upper case for set bits.
func (s Status) String() string {
	b := strings.Builder{}
	for _, f := range []struct {
		flag Flag
		on   rune
		off  rune
	}{
		{Negative, 'N', 'n'},
		{Overflow, 'V', 'v'},
		{Break2, '-', '-'},
		{Break, 'B', 'b'},
		{Decimal, 'D', 'd'},
		{InterruptDisable, 'I', 'i'},
		{Zero, 'Z', 'z'},
		{Carry, 'C', 'c'},
	} {
		if s.Has(f.flag) {
			b.WriteRune(f.on)
		} else {
			b.WriteRune(f.off)
		}
	}
	return b.String()
}
