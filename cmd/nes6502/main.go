// Package main implements the nes6502 executable.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"nes6502/internal/app"
	"nes6502/internal/version"
)

func main() {
	// Parse command line flags
	var (
		programFile = flag.String("program", "", "Path to raw program image loaded at $8000")
		configFile  = flag.String("config", "", "Path to configuration file")
		trace       = flag.Bool("trace", false, "Log every instruction")
		loop        = flag.Bool("loop", false, "Report a PC stuck on one address")
		maxSteps    = flag.Uint64("max-steps", 0, "Stop after this many instructions (0 keeps the config value)")
		watch       = flag.String("watch", "", "Comma separated addresses to watch for writes, e.g. $0010,$0200")
		execLog     = flag.Bool("exec-log", false, "Print every executed instruction after the run")
		step        = flag.Bool("step", false, "Interactive terminal stepper")
		monitorMode = flag.Bool("monitor", false, "Open the register monitor window")
		scale       = flag.Int("scale", 0, "Monitor window scale (0 keeps the config value)")
		perFrame    = flag.Int("steps-per-frame", 0, "Instructions per monitor frame (0 keeps the config value)")
		stats       = flag.Bool("statsview", false, "Serve runtime statistics (statsview builds only)")
		writeConfig = flag.Bool("write-config", false, "Save the effective settings to the config file")
		help        = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *help {
		printUsage()
		os.Exit(0)
	}

	if *showVersion {
		version.Read().Write(os.Stdout)
		os.Exit(0)
	}

	// Determine config file path
	configPath := *configFile
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}

	fileConfig := app.NewConfig()
	if err := fileConfig.LoadFromFile(configPath); err != nil {
		log.Printf("[APP_WARNING] Could not load config from %s, using defaults: %v", configPath, err)
		fileConfig = app.NewConfig()
	} else if !fileConfig.IsLoaded() {
		log.Printf("[APP_INFO] Wrote default config to %s", fileConfig.GetConfigPath())
	}

	overrides := app.Overrides{
		Trace:         *trace,
		LoopDetection: *loop,
		MaxSteps:      *maxSteps,
		ExecutionLog:  *execLog,
		Interactive:   *step,
		Monitor:       *monitorMode,
		Scale:         *scale,
		StepsPerFrame: *perFrame,
		Stats:         *stats,
	}
	if *watch != "" {
		overrides.Watchpoints = strings.Split(*watch, ",")
	}
	config := fileConfig.WithOverrides(overrides)

	if *writeConfig {
		if err := config.Save(); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		log.Printf("[APP_INFO] Saved settings to %s", config.GetConfigPath())
	}

	path := *programFile
	if path == "" && flag.NArg() > 0 {
		path = flag.Arg(0)
	}
	if path == "" {
		path = config.Paths.Program
	}
	if path == "" {
		if *writeConfig {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "no program given; use -program <file>")
		printUsage()
		os.Exit(2)
	}

	application, err := app.NewApplicationWithConfig(config)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	defer func() {
		if err := application.Cleanup(); err != nil {
			log.Printf("Application cleanup error: %v", err)
		}
	}()

	setupGracefulShutdown(application)

	if err := application.LoadProgram(path); err != nil {
		log.Fatalf("Failed to load program: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Printf("Run failed: %v", err)
		// os.Exit skips deferred calls
		_ = application.Cleanup()
		os.Exit(1)
	}
}

// setupGracefulShutdown stops the application on SIGINT or SIGTERM so the
// running mode can restore the terminal and return. A second signal exits
// at once.
func setupGracefulShutdown(application *app.Application) {
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintln(os.Stderr, "\nInterrupt received, shutting down...")
		application.Stop()
		<-c
		os.Exit(1)
	}()
}

func printUsage() {
	fmt.Println(version.Read().Short())
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Loads a raw program image at $8000, points the reset vector at it")
	fmt.Println("  and executes until BRK.")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  nes6502 -program <file> [options]   # Run to BRK and print registers")
	fmt.Println("  nes6502 -step -program <file>       # Step one instruction per key")
	fmt.Println("  nes6502 -monitor -program <file>    # Open the register monitor")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("STEPPER KEYS:")
	fmt.Println("  space/s  step    r  run to BRK    x  reset")
	fmt.Println("  v  save slot 0   l  load slot 0   d  delete slot 0")
	fmt.Println("  i  list slots    p  statistics    q  quit")
	fmt.Println()
	fmt.Println("MONITOR KEYS:")
	fmt.Println("  Space  run/pause   S  step   R  reset")
	fmt.Println("  Up/Down  double/halve steps per frame   Escape  quit")
	fmt.Println()
	fmt.Println("CONFIGURATION:")
	fmt.Printf("  Config file: %s\n", app.GetDefaultConfigPath())
	fmt.Println("  Save States: ./states/")
}
