//go:build headless
// +build headless

package monitor

import "errors"

// ErrUnavailable is returned by Run in headless builds
var ErrUnavailable = errors.New("monitor: not available in headless build")

// Options configure the monitor window
type Options struct {
	Title  string
	Scale  int
	Paused bool
	Done   <-chan struct{}
}

// Available reports whether this build can open a window
func Available() bool {
	return false
}

// Run always fails in headless builds
func Run(machine Machine, opts Options) error {
	return ErrUnavailable
}
