package version

import (
	"bytes"
	"runtime"
	"strings"
	"testing"
)

func TestReadRuntimeFields(t *testing.T) {
	info := Read()
	if info.GoVersion != runtime.Version() {
		t.Errorf("Expected %s, got %s", runtime.Version(), info.GoVersion)
	}
	if info.Platform != runtime.GOOS+"/"+runtime.GOARCH {
		t.Errorf("Unexpected platform %s", info.Platform)
	}
}

func TestShort(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"release", Info{Version: "1.2.3", Commit: "1a2b3c4d5e", GoVersion: "go1.23.4", Platform: "linux/amd64"},
			"nes6502 1.2.3 (go1.23.4 linux/amd64)"},
		{"dev with commit", Info{Version: "dev", Commit: "1a2b3c4d5e", GoVersion: "go1.23.4", Platform: "linux/amd64"},
			"nes6502 dev-1a2b3c4 (go1.23.4 linux/amd64)"},
		{"dev without commit", Info{Version: "dev", Commit: "unknown", GoVersion: "go1.23.4", Platform: "linux/amd64"},
			"nes6502 dev (go1.23.4 linux/amd64)"},
		{"modified", Info{Version: "1.2.3", Modified: true, GoVersion: "go1.23.4", Platform: "darwin/arm64"},
			"nes6502 1.2.3+dirty (go1.23.4 darwin/arm64)"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.info.Short(); got != test.want {
				t.Errorf("Short() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	saved := Version
	defer func() { Version = saved }()
	Version = "1.2.3"

	var buf bytes.Buffer
	Read().Write(&buf)
	out := buf.String()
	for _, want := range []string{"nes6502 1.2.3", "commit:", "built:", runtime.Version()} {
		if !strings.Contains(out, want) {
			t.Errorf("Missing %q in %q", want, out)
		}
	}
}
