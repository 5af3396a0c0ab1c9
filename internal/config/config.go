// Package config loads exprinput settings from a YAML file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvCacheDir       = "EXPRINPUT_CACHE_DIR"
	EnvComponent      = "EXPRINPUT_COMPONENT"
	EnvCommandTimeout = "EXPRINPUT_COMMAND_TIMEOUT"
	EnvLogFile        = "EXPRINPUT_LOG_FILE"
)

type Config struct {
	// CacheDir is the root under which history files are kept.
	CacheDir  string `yaml:"cache_dir"`
	Component string `yaml:"component"`

	Prompt      string `yaml:"prompt"`
	InitialText string `yaml:"initial_text"`

	// CommandTimeout bounds cmd(); zero waits forever.
	CommandTimeout time.Duration `yaml:"command_timeout"`

	// LogFile receives log output while the console owns the terminal.
	// Empty means <CacheDir>/<Component>/exprinput.log.
	LogFile string `yaml:"log_file"`

	// RequiredVersion is a version constraint the binary should satisfy.
	RequiredVersion string `yaml:"required_version"`
}

func Default() *Config {
	cache, err := os.UserCacheDir()
	if err != nil {
		cache = filepath.Join(os.TempDir(), "cache")
	}
	return &Config{
		CacheDir:    cache,
		Component:   "exprinput",
		Prompt:      "> ",
		InitialText: "\"",
	}
}

// DefaultConfigPath is <UserConfigDir>/exprinput/config.yaml, or "" if the
// user config dir is unknown.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "exprinput", "config.yaml")
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads path if it exists, then applies environment overrides.
func LoadOrDefault(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		loaded, err := Load(path)
		switch {
		case err == nil:
			cfg = loaded
		case !errors.Is(err, fs.ErrNotExist):
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogPath resolves where console logs go.
func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.CacheDir, c.Component, "exprinput.log")
}

func (c *Config) applyEnv() error {
	c.CacheDir = envOr(c.CacheDir, EnvCacheDir)
	c.Component = envOr(c.Component, EnvComponent)
	c.LogFile = envOr(c.LogFile, EnvLogFile)
	if val := os.Getenv(EnvCommandTimeout); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCommandTimeout, err)
		}
		c.CommandTimeout = d
	}
	return nil
}

func envOr(current, key string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return current
}
