//go:build !statsview
// +build !statsview

package statsview

import (
	"log"
	"time"
)

// Server stands in for the statistics server in builds without it
type Server struct{}

// Available reports whether this build can serve statistics
func Available() bool {
	return false
}

// Start returns a Server that serves nothing
func Start(addr string, interval time.Duration, logger *log.Logger) *Server {
	return &Server{}
}

// Stop does nothing
func (s *Server) Stop() {}
