package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables read by `typerush serve`.
const (
	EnvAddr      = "TYPERUSH_ADDR"
	EnvRateRPS   = "TYPERUSH_RATE_RPS"
	EnvRateBurst = "TYPERUSH_RATE_BURST"
)

// ServerSettings are the resolved server options.
type ServerSettings struct {
	Addr      string
	RateRPS   float64
	RateBurst int
}

// DefaultServerSettings returns the values used when nothing is configured.
func DefaultServerSettings() ServerSettings {
	return ServerSettings{Addr: ":8080", RateRPS: 5, RateBurst: 10}
}

// ResolveServer layers the file config and then the environment over the defaults.
// envFile is loaded with godotenv when present; variables already set in the process win.
func ResolveServer(file ServerConfig, envFile string) (ServerSettings, error) {
	out := DefaultServerSettings()
	if file.Addr != nil {
		out.Addr = *file.Addr
	}
	if file.RateRPS != nil {
		out.RateRPS = *file.RateRPS
	}
	if file.RateBurst != nil {
		out.RateBurst = *file.RateBurst
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return ServerSettings{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	if v := os.Getenv(EnvAddr); v != "" {
		out.Addr = v
	}
	if v := os.Getenv(EnvRateRPS); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return ServerSettings{}, fmt.Errorf("invalid %s: %w", EnvRateRPS, err)
		}
		out.RateRPS = rps
	}
	if v := os.Getenv(EnvRateBurst); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return ServerSettings{}, fmt.Errorf("invalid %s: %w", EnvRateBurst, err)
		}
		out.RateBurst = burst
	}
	if out.RateRPS <= 0 || out.RateBurst <= 0 {
		return ServerSettings{}, fmt.Errorf("rate limit must be positive")
	}
	return out, nil
}
