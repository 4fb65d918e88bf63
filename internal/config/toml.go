// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Server   ServerConfig   `toml:"server"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Duration   *int     `toml:"duration"`
	Ghost      *bool    `toml:"ghost"`
	Profile    *string  `toml:"profile"`
	Lang       *string  `toml:"lang"`
	Words      *int     `toml:"words"`
	CapsPct    *float64 `toml:"caps"`
	PunctPct   *float64 `toml:"punct"`
	PunctSet   *string  `toml:"punct-set"`
	FocusWeak  *bool    `toml:"focus-weak"`
	WeakTop    *int     `toml:"weak-top"`
	WeakFactor *float64 `toml:"weak-factor"`
	WeakWindow *int     `toml:"weak-window"`
}

// ServerConfig maps `typerush serve` settings.
type ServerConfig struct {
	Addr      *string  `toml:"addr"`
	RateRPS   *float64 `toml:"rate-rps"`
	RateBurst *int     `toml:"rate-burst"`
}

// Template is written by `typerush config` when no file exists yet.
const Template = `# typerush configuration

[practice]
# duration = 60         # seconds: 30, 60, 120 or 300
# ghost = false         # race against your previous attempt
# profile = ""          # defaults to a generated id stored next to the database
# lang = "en"
# words = 25
# caps = 0.0            # probability of a capitalized word
# punct = 0.0           # probability of trailing punctuation
# punct-set = ".,?!;:"
# focus-weak = false    # favour words with your most missed characters
# weak-top = 5
# weak-factor = 1.5
# weak-window = 20

[server]
# addr = ":8080"
# rate-rps = 5
# rate-burst = 10
`

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
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
