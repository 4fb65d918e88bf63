package config

import (
	"os"
	"path/filepath"
)

const appName = "typerush"

// XDGConfigHome returns $XDG_CONFIG_HOME, falling back to ~/.config.
func XDGConfigHome() string {
	return xdgHome("XDG_CONFIG_HOME", ".config")
}

// XDGDataHome returns $XDG_DATA_HOME, falling back to ~/.local/share.
func XDGDataHome() string {
	return xdgHome("XDG_DATA_HOME", ".local", "share")
}

func xdgHome(env string, fallback ...string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(append([]string{home}, fallback...)...)
}

func configDir() string { return filepath.Join(XDGConfigHome(), appName) }

func dataDir() string { return filepath.Join(XDGDataHome(), appName) }

// DefaultConfigPath returns the TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.toml")
}

// DefaultWordListDir holds user word lists, one <lang>.txt per language.
func DefaultWordListDir() string {
	return filepath.Join(configDir(), "wordlists")
}

// DefaultWordListPath returns the user word list for lang.
func DefaultWordListPath(lang string) string {
	return filepath.Join(DefaultWordListDir(), lang+".txt")
}

// DefaultDBPath returns the SQLite database path.
func DefaultDBPath() string {
	return filepath.Join(dataDir(), appName+".db")
}

// DefaultLogPath is where the practice TUI writes its log.
func DefaultLogPath() string {
	return filepath.Join(dataDir(), appName+".log")
}

// DefaultProfilePath stores the generated profile id.
func DefaultProfilePath() string {
	return filepath.Join(dataDir(), "profile")
}
