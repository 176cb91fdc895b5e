package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	installed := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}
	tests := []struct {
		name string
		bi   *debug.BuildInfo
		ok   bool
		want Info
	}{
		{"no build info", nil, false, Info{"dev", "none", "unknown", "DLG V3.2"}},
		{"go install", installed, true, Info{"v0.3.1", "abc123", "2026-01-02T03:04:05Z", "DLG V3.2"}},
		{"local build", &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true, Info{"dev", "none", "unknown", "DLG V3.2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolve(tt.bi, tt.ok); got != tt.want {
				t.Errorf("resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStampedVersionWins(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })
	Version = "v9.9.9"
	got := resolve(&debug.BuildInfo{Main: debug.Module{Version: "v0.3.1"}}, true)
	if got.Version != "v9.9.9" {
		t.Errorf("Version = %q, want the ldflags value", got.Version)
	}
	if !strings.Contains(Template(), "format: DLG V3.2") {
		t.Errorf("Template() = %q, want the dialog format", Template())
	}
}
