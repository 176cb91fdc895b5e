package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/LordOfMyatar/Radoub-sub018/pkg/dlg"
	cerrors "github.com/LordOfMyatar/Radoub-sub018/pkg/errors"
	"github.com/LordOfMyatar/Radoub-sub018/pkg/gff"
)

// Config is the contents of config.toml. Empty fields keep the defaults.
//
//	log_level = "debug"
//	encoding = "windows-1252"
//	delete_policy = "strict"
//	compact_pointers = true
//	output_format = "yaml"
type Config struct {
	LogLevel        string `toml:"log_level"`
	Encoding        string `toml:"encoding"`
	DeletePolicy    string `toml:"delete_policy"`
	CompactPointers *bool  `toml:"compact_pointers"`
	OutputFormat    string `toml:"output_format"`
}

func defaultConfig() Config {
	return Config{}
}

// configDir returns the config directory using XDG standard (~/.config/dlgtool/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

func configFile() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// readConfig decodes the TOML file at path. A missing file yields the
// defaults unless required is set. Unknown keys are rejected.
func readConfig(path string, required bool) (Config, error) {
	cfg := defaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return defaultConfig(), nil
	}
	if err != nil {
		return cfg, cerrors.Wrap(cerrors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, cerrors.New(cerrors.ErrCodeInvalidConfig, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if _, _, err := cfg.codec(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// codec validates and converts the codec settings.
func (cfg Config) codec() (gff.Encoding, dlg.DeletePolicy, error) {
	enc, err := gff.EncodingByName(strings.ToLower(cfg.Encoding))
	if err != nil {
		return gff.Encoding{}, 0, cerrors.Wrap(cerrors.ErrCodeInvalidConfig, err, "encoding")
	}
	policy, err := dlg.ParseDeletePolicy(cfg.DeletePolicy)
	if err != nil {
		return gff.Encoding{}, 0, err
	}
	return enc, policy, nil
}

func (cfg Config) compactPointers() bool {
	return cfg.CompactPointers == nil || *cfg.CompactPointers
}

// encode writes cfg as TOML, including the resolved defaults.
func (cfg Config) encode() (string, error) {
	enc, policy, err := cfg.codec()
	if err != nil {
		return "", err
	}
	compact := cfg.compactPointers()
	resolved := Config{
		LogLevel:        cfg.LogLevel,
		Encoding:        enc.Name(),
		DeletePolicy:    policy.String(),
		CompactPointers: &compact,
		OutputFormat:    cfg.OutputFormat,
	}
	if resolved.LogLevel == "" {
		resolved.LogLevel = "info"
	}
	if resolved.OutputFormat == "" {
		resolved.OutputFormat = "json"
	}
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(resolved); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return b.String(), nil
}
