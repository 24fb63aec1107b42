package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/railplan/pkg/schematic"
)

// Cache backends selectable via config.
const (
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
	CacheBackendNone  = "none"
)

const defaultConfigPathHint = "~/.config/railplan/config.toml"

// Config carries the CLI defaults loaded from the TOML config file.
// Command flags always override config values.
type Config struct {
	// ScaleFactor is the default scale factor for conversions.
	ScaleFactor float64 `toml:"scale_factor"`

	// RemoveNonKsSignals strips foreign-system signals by default.
	RemoveNonKsSignals bool `toml:"remove_non_ks_signals"`

	Cache CacheConfig `toml:"cache"`
	Serve ServeConfig `toml:"serve"`
}

// CacheConfig selects and parameterizes the conversion cache.
type CacheConfig struct {
	// Backend is one of "file", "redis", or "none".
	Backend string `toml:"backend"`

	// Dir overrides the file backend's directory.
	Dir string `toml:"dir"`

	// RedisAddr is the host:port of the redis backend.
	RedisAddr string `toml:"redis_addr"`
}

// ServeConfig parameterizes the HTTP server.
type ServeConfig struct {
	// Addr is the listen address of the serve command.
	Addr string `toml:"addr"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		ScaleFactor: schematic.DefaultScaleFactor,
		Cache: CacheConfig{
			Backend:   CacheBackendFile,
			RedisAddr: "localhost:6379",
		},
		Serve: ServeConfig{
			Addr: ":8080",
		},
	}
}

// LoadConfig reads the config file at path, or the default location when
// path is empty. A missing file at the default location yields the
// defaults; a missing explicit path, a malformed file, or an unknown cache
// backend is an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		var err error
		if path, err = defaultConfigPath(); err != nil {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	switch cfg.Cache.Backend {
	case CacheBackendFile, CacheBackendRedis, CacheBackendNone:
	default:
		return cfg, fmt.Errorf("config %s: unknown cache backend %q", path, cfg.Cache.Backend)
	}
	return cfg, nil
}

// defaultConfigPath returns ~/.config/railplan/config.toml, honoring
// XDG_CONFIG_HOME.
func defaultConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
