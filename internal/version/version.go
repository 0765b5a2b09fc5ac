// Package version reports how the nes6502 binary was built
package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
)

// Set at build time with
//
//	-ldflags "-X nes6502/internal/version.Version=1.0.0 -X nes6502/internal/version.GitCommit=$(git rev-parse HEAD)"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// Info describes the running binary
type Info struct {
	Version   string
	Commit    string
	BuildTime string
	GoVersion string
	Platform  string
	Modified  bool
}

// Read collects the build information. VCS stamps recorded by the Go
// toolchain fill in whatever -ldflags left unset.
func Read() Info {
	info := Info{
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range bi.Settings {
			switch setting.Key {
			case "vcs.revision":
				if info.Commit == "unknown" {
					info.Commit = setting.Value
				}
			case "vcs.time":
				if info.BuildTime == "unknown" {
					info.BuildTime = setting.Value
				}
			case "vcs.modified":
				info.Modified = setting.Value == "true"
			}
		}
	}
	return info
}

// Short returns a one-line version, e.g. "nes6502 dev-1a2b3c4 (go1.23.4 linux/amd64)"
func (i Info) Short() string {
	v := i.Version
	if v == "dev" && len(i.Commit) >= 7 && i.Commit != "unknown" {
		v += "-" + i.Commit[:7]
	}
	if i.Modified {
		v += "+dirty"
	}
	return fmt.Sprintf("nes6502 %s (%s %s)", v, i.GoVersion, i.Platform)
}

// Write prints every field on its own line
func (i Info) Write(w io.Writer) {
	fmt.Fprintln(w, i.Short())
	fmt.Fprintf(w, "  commit:   %s\n", i.Commit)
	fmt.Fprintf(w, "  built:    %s\n", i.BuildTime)
	fmt.Fprintf(w, "  modified: %t\n", i.Modified)
}
