package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/railplan/pkg/schematic"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Error("explicit missing config file should error")
	}

	// No explicit path and no file: silent defaults.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err = LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.ScaleFactor != schematic.DefaultScaleFactor {
		t.Errorf("ScaleFactor = %v, want %v", cfg.ScaleFactor, schematic.DefaultScaleFactor)
	}
	if cfg.Cache.Backend != CacheBackendFile {
		t.Errorf("Cache.Backend = %q, want file", cfg.Cache.Backend)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
scale_factor = 2.5
remove_non_ks_signals = true

[cache]
backend = "redis"
redis_addr = "redis.internal:6379"

[serve]
addr = ":9090"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.ScaleFactor != 2.5 {
		t.Errorf("ScaleFactor = %v, want 2.5", cfg.ScaleFactor)
	}
	if !cfg.RemoveNonKsSignals {
		t.Error("RemoveNonKsSignals not loaded")
	}
	if cfg.Cache.Backend != CacheBackendRedis || cfg.Cache.RedisAddr != "redis.internal:6379" {
		t.Errorf("cache config = %+v", cfg.Cache)
	}
	if cfg.Serve.Addr != ":9090" {
		t.Errorf("Serve.Addr = %q, want :9090", cfg.Serve.Addr)
	}
}

func TestLoadConfig_UnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[cache]\nbackend = \"memcached\"\n"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("unknown cache backend should be rejected")
	}
}

func TestDefaultOutputPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"topology.json", "topology.schematic.json"},
		{"plans/site", "plans/site.schematic.json"},
	}
	for _, tt := range tests {
		if got := defaultOutputPath(tt.in); got != tt.want {
			t.Errorf("defaultOutputPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
