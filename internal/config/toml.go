// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Codec  CodecConfig  `toml:"codec"`
	Store  StoreConfig  `toml:"store"`
	Output OutputConfig `toml:"output"`
	Log    LogConfig    `toml:"log"`
}

// CodecConfig maps parse and encode settings.
type CodecConfig struct {
	Precision   *int    `toml:"precision"`
	Overflow    *string `toml:"overflow"`
	StrictEmpty *bool   `toml:"strict_empty"`
}

// StoreConfig maps the named interval database.
type StoreConfig struct {
	Path *string `toml:"path"`
}

// OutputConfig maps rendering settings.
type OutputConfig struct {
	Format *string `toml:"format"`
	Color  *bool   `toml:"color"`
}

// LogConfig maps logger settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	Format *string `toml:"format"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Template is written by `interval config` when no file exists yet.
const Template = `# interval configuration

[codec]
# fractional second digits written by encode; -1 prints the shortest form
# precision = -1
# calendar overflow: "clamp" (Jan 31 + 1 month = Feb 28) or "normalize" (= Mar 3)
# overflow = "clamp"
# reject blank legacy matches instead of treating them as an empty interval
# strict_empty = false

[store]
# path = "~/.local/share/interval/interval.db"

[output]
# "text", "json" or "yaml"
# format = "text"
# color = true

[log]
# "debug", "info", "warn" or "error"
# level = "warn"
# "text" or "json"
# format = "text"
`

// WriteTemplate creates path with Template unless it already exists.
func WriteTemplate(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(Template), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config: %w", err)
	}
	return true, nil
}
