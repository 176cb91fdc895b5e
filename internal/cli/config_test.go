package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/LordOfMyatar/Radoub-sub018/pkg/dlg"
	cerrors "github.com/LordOfMyatar/Radoub-sub018/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigDirXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/custom-config")
	dir, err := configDir()
	if err != nil {
		t.Fatalf("configDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/custom-config", appName); dir != want {
		t.Errorf("configDir() = %q, want %q", dir, want)
	}
}

func TestConfigDirDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	dir, err := configDir()
	if err != nil {
		t.Fatalf("configDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".config", appName); dir != want {
		t.Errorf("configDir() = %q, want %q", dir, want)
	}
}

func TestReadConfig(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"
encoding = "UTF-8"
delete_policy = "strict"
compact_pointers = false
output_format = "yaml"
`)
	cfg, err := readConfig(path, true)
	if err != nil {
		t.Fatalf("readConfig() error = %v", err)
	}
	off := false
	want := Config{LogLevel: "debug", Encoding: "UTF-8", DeletePolicy: "strict", CompactPointers: &off, OutputFormat: "yaml"}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	enc, policy, err := cfg.codec()
	if err != nil {
		t.Fatal(err)
	}
	if enc.Name() != "utf-8" || policy != dlg.DeleteStrict || cfg.compactPointers() {
		t.Errorf("codec settings = %s/%s/%v", enc.Name(), policy, cfg.compactPointers())
	}
}

func TestReadConfigMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.toml")
	cfg, err := readConfig(path, false)
	if err != nil {
		t.Fatalf("optional missing config: %v", err)
	}
	if !cfg.compactPointers() {
		t.Error("compact pointers should default to on")
	}
	if _, err := readConfig(path, true); err == nil {
		t.Error("required missing config should fail")
	}
}

func TestReadConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", `colour = "red"`},
		{"bad policy", `delete_policy = "eager"`},
		{"bad encoding", `encoding = "latin-9"`},
		{"not toml", `log_level = `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readConfig(writeConfig(t, tt.body), true)
			if !cerrors.Is(err, cerrors.ErrCodeInvalidConfig) {
				t.Errorf("readConfig() error = %v, want %s", err, cerrors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestConfigEncodeResolvesDefaults(t *testing.T) {
	out, err := defaultConfig().encode()
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`log_level = "info"`,
		`encoding = "windows-1252"`,
		`delete_policy = "conservative"`,
		`compact_pointers = true`,
		`output_format = "json"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("encoded config missing %s:\n%s", want, out)
		}
	}
}
