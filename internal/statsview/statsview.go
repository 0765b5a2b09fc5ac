//go:build statsview
// +build statsview

package statsview

import (
	"log"
	"time"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// Server is a running statistics server
type Server struct {
	addr   string
	mgr    *statsview.ViewManager
	logger *log.Logger
}

// Available reports whether this build can serve statistics
func Available() bool {
	return true
}

// Start configures the chart viewers and starts serving on addr in the
// background. Charts refresh every interval.
func Start(addr string, interval time.Duration, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	viewer.SetConfiguration(
		viewer.WithAddr(addr),
		viewer.WithInterval(int(interval/time.Millisecond)),
	)

	s := &Server{
		addr:   addr,
		mgr:    statsview.New(),
		logger: logger,
	}
	go s.mgr.Start()

	logger.Printf("[APP_INFO] Runtime statistics at http://%s/debug/statsview", addr)
	return s
}

// Stop shuts the server down
func (s *Server) Stop() {
	if s == nil || s.mgr == nil {
		return
	}
	s.mgr.Stop()
	s.logger.Printf("[APP_DEBUG] Statistics server on %s stopped", s.addr)
}
