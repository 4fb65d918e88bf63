package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[practice]
duration = 120
ghost = true
words = 40
punct-set = ".!"

[server]
addr = "127.0.0.1:9000"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Practice.Duration == nil || *cfg.Practice.Duration != 120 {
		t.Fatalf("expected duration 120, got %v", cfg.Practice.Duration)
	}
	if cfg.Practice.Ghost == nil || !*cfg.Practice.Ghost {
		t.Fatalf("expected ghost enabled")
	}
	if cfg.Practice.Lang != nil {
		t.Fatalf("expected unset lang to stay nil")
	}
	if cfg.Server.Addr == nil || *cfg.Server.Addr != "127.0.0.1:9000" {
		t.Fatalf("unexpected server addr: %v", cfg.Server.Addr)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
	if cfg.Practice.Duration != nil {
		t.Fatalf("expected empty config")
	}
}

func TestTemplateDecodes(t *testing.T) {
	var cfg FileConfig
	if _, err := toml.Decode(Template, &cfg); err != nil {
		t.Fatalf("template must be valid toml: %v", err)
	}
}

func TestPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_CONFIG_HOME", "/conf")
	if got := DefaultDBPath(); got != filepath.Join("/data", "typerush", "typerush.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultWordListPath("en"); got != filepath.Join("/conf", "typerush", "wordlists", "en.txt") {
		t.Fatalf("unexpected word list path %q", got)
	}
	if !strings.HasSuffix(DefaultLogPath(), "typerush.log") {
		t.Fatalf("unexpected log path %q", DefaultLogPath())
	}
}

func TestResolveServer(t *testing.T) {
	t.Setenv(EnvAddr, "")
	t.Setenv(EnvRateBurst, "")
	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("TYPERUSH_RATE_RPS=2.5\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	// Registered so the value loaded from envFile is cleared after the test.
	t.Setenv(EnvRateRPS, "")
	_ = os.Unsetenv(EnvRateRPS)

	addr := ":7000"
	burst := 3
	got, err := ResolveServer(ServerConfig{Addr: &addr, RateBurst: &burst}, envFile)
	if err != nil {
		t.Fatalf("resolve server: %v", err)
	}
	if got.Addr != ":7000" || got.RateBurst != 3 || got.RateRPS != 2.5 {
		t.Fatalf("unexpected settings: %+v", got)
	}

	t.Setenv(EnvAddr, ":9999")
	got, err = ResolveServer(ServerConfig{Addr: &addr}, "")
	if err != nil {
		t.Fatalf("resolve server: %v", err)
	}
	if got.Addr != ":9999" {
		t.Fatalf("expected environment to win, got %q", got.Addr)
	}
}

func TestResolveServerInvalidEnv(t *testing.T) {
	t.Setenv(EnvRateBurst, "lots")
	if _, err := ResolveServer(ServerConfig{}, ""); err == nil {
		t.Fatalf("expected invalid burst to fail")
	}
}

func TestLoadOrCreateProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "profile")
	first, err := LoadOrCreateProfile(path)
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if first == "" {
		t.Fatalf("expected generated id")
	}
	second, err := LoadOrCreateProfile(path)
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if first != second {
		t.Fatalf("expected stable id, got %q then %q", first, second)
	}
}
