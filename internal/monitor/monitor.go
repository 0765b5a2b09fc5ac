//go:build !headless
// +build !headless

package monitor

import (
	"errors"
	"image/color"
	"log"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	screenWidth  = 400
	screenHeight = 480
)

// Options configure the monitor window
type Options struct {
	Title string
	Scale int
	// Paused starts the window with execution stopped
	Paused bool
	// Done closes when the window should shut down
	Done <-chan struct{}
}

// Game implements ebiten.Game for the register monitor
type Game struct {
	machine Machine
	done    <-chan struct{}
	paused  bool
	lastErr error
	lines   []string
	logger  *log.Logger
}

// NewGame creates a monitor around machine
func NewGame(machine Machine, opts Options) *Game {
	g := &Game{
		machine: machine,
		done:    opts.Done,
		paused:  opts.Paused,
		logger:  log.Default(),
	}
	g.refresh()
	return g
}

// Available reports whether this build can open a window
func Available() bool {
	return true
}

// Run opens the monitor window and blocks until it is closed
func Run(machine Machine, opts Options) error {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.Title == "" {
		opts.Title = "nes6502 monitor"
	}

	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowSize(screenWidth*opts.Scale, screenHeight*opts.Scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	err := ebiten.RunGame(NewGame(machine, opts))
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Update implements ebiten.Game.Update
func (g *Game) Update() error {
	select {
	case <-g.done:
		return ebiten.Termination
	default:
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyUp) {
		g.machine.SetStepsPerFrame(g.machine.StepsPerFrame() * 2)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDown) {
		g.machine.SetStepsPerFrame(g.machine.StepsPerFrame() / 2)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.record(g.machine.Reset())
		g.paused = true
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyS) && !g.machine.Halted() {
		g.paused = true
		g.record(g.machine.StepInstruction())
	}

	if !g.paused && !g.machine.Halted() {
		if err := g.machine.RunFrame(); err != nil {
			g.record(err)
			g.paused = true
		}
	}

	g.refresh()
	return nil
}

// record keeps the last execution error for display
func (g *Game) record(err error) {
	g.lastErr = err
	if err != nil {
		g.logger.Printf("[MONITOR] %v", err)
	}
}

func (g *Game) refresh() {
	g.lines = Lines(g.machine, g.paused, g.lastErr)
}

// Draw implements ebiten.Game.Draw
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 0, G: 0, B: 0x40, A: 255})
	ebitenutil.DebugPrint(screen, strings.Join(g.lines, "\n"))
}

// Layout implements ebiten.Game.Layout
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}
