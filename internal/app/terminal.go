package app

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

const stepperHelp = "keys: space/s step  r run to BRK  x reset  v save  l load  d delete  i slots  p stats  q quit"

// stepperSlot is the save state slot used by the terminal stepper
const stepperSlot = 0

// RunTerminal drives an interactive key-per-step session. When in is a
// terminal it is switched to raw mode so that single key presses arrive
// without Enter.
func (app *Application) RunTerminal(in io.Reader) error {
	newline := "\n"
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("failed to set raw mode: %w", err)
		}
		defer func() { _ = term.Restore(fd, oldState) }()
		// Raw mode disables output post-processing
		newline = "\r\n"
	}

	s := &stepper{app: app, out: app.output, newline: newline}
	return s.run(bufio.NewReader(in))
}

type stepper struct {
	app     *Application
	out     io.Writer
	newline string
}

func (s *stepper) linef(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format+s.newline, args...)
}

// keyEvent is one byte read from the input, or the read error
type keyEvent struct {
	key byte
	err error
}

// readKeys feeds bytes from reader into the returned channel until a read
// fails or quit closes
func readKeys(reader *bufio.Reader, quit <-chan struct{}) <-chan keyEvent {
	keys := make(chan keyEvent)
	go func() {
		defer close(keys)
		for {
			key, err := reader.ReadByte()
			select {
			case keys <- keyEvent{key: key, err: err}:
			case <-quit:
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return keys
}

func (s *stepper) run(reader *bufio.Reader) error {
	s.linef("%s", stepperHelp)
	s.status()

	quit := make(chan struct{})
	defer close(quit)
	keys := readKeys(reader, quit)

	for {
		var ev keyEvent
		select {
		case <-s.app.done:
			s.linef("stopped")
			return nil
		case ev = <-keys:
		}

		if ev.err == io.EOF {
			return nil
		}
		if ev.err != nil {
			return fmt.Errorf("failed to read key: %w", ev.err)
		}

		switch ev.key {
		case ' ', 's':
			s.step()
		case 'r':
			s.runToHalt()
		case 'x':
			if err := s.app.Reset(); err != nil {
				s.linef("reset: %v", err)
			}
			s.status()
		case 'v':
			if err := s.app.SaveState(stepperSlot); err != nil {
				s.linef("save: %v", err)
			} else {
				s.linef("saved slot %d", stepperSlot)
			}
		case 'l':
			if err := s.app.LoadState(stepperSlot); err != nil {
				s.linef("load: %v", err)
			} else {
				s.linef("loaded slot %d", stepperSlot)
				s.status()
			}
		case 'd':
			if err := s.app.DeleteState(stepperSlot); err != nil {
				s.linef("delete: %v", err)
			} else {
				s.linef("deleted slot %d", stepperSlot)
			}
		case 'i':
			s.slots()
		case 'p':
			s.stats()
		case 'q', 0x03, 0x04: // q, Ctrl-C, Ctrl-D
			return nil
		case '\r', '\n':
		default:
			s.linef("%s", stepperHelp)
		}
	}
}

func (s *stepper) step() {
	emu := s.app.emulator
	if emu.Halted() {
		s.linef("halted after %d steps; x resets", emu.Steps())
		return
	}
	if err := emu.StepInstruction(); err != nil {
		s.linef("error: %v", err)
		return
	}
	s.status()
}

func (s *stepper) runToHalt() {
	emu := s.app.emulator
	steps, err := emu.RunToHalt()
	if err != nil {
		s.linef("error after %d steps: %v", steps, err)
	}
	s.status()
}

// slots lists the used save slots
func (s *stepper) slots() {
	slots, err := s.app.SaveSlots()
	if err != nil {
		s.linef("slots: %v", err)
		return
	}
	s.linef("save states in %s", s.app.states.GetSaveDirectory())
	used := 0
	for _, slot := range slots {
		if !slot.Used {
			continue
		}
		used++
		s.linef("  slot %d  %s  %s", slot.SlotNumber, slot.Timestamp.Format("2006-01-02 15:04:05"), slot.Description)
	}
	if used == 0 {
		s.linef("  no saved slots")
	}
}

// stats prints the emulator counters
func (s *stepper) stats() {
	stats := s.app.emulator.GetPerformanceStats()
	s.linef("steps=%d cycles=%d halted=%v uptime=%v",
		stats.StepCount, stats.CycleCount, stats.Halted, stats.Uptime.Round(time.Millisecond))
}

// status prints the registers and the next instruction
func (s *stepper) status() {
	emu := s.app.emulator
	regs := emu.Registers()
	if emu.Halted() {
		s.linef("%6d  halted  %v", emu.Steps(), regs)
		return
	}
	s.linef("%6d  $%04X  %-12s  %v", emu.Steps(), regs.PC, emu.Disassemble(regs.PC), regs)
}
