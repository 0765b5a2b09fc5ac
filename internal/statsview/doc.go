// Package statsview serves live Go runtime charts (heap, goroutines, GC
// pauses) while a long program run is in progress. The server is only
// compiled in with the statsview build tag:
//
//	go build -tags statsview ./cmd/nes6502
//
// and is switched on with -statsview or stats.enabled in the config file.
// Charts are then served at
//
//	<addr>/debug/statsview
//
// Builds without the tag get a Server whose methods do nothing.
package statsview
