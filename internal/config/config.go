package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Version string        `yaml:"version" json:"version"`
	Server  ServerConfig  `yaml:"server" json:"server"`
	Focus   FocusConfig   `yaml:"focus" json:"focus"`
	Grinds  GrindsConfig  `yaml:"grinds" json:"grinds"`
	Refresh RefreshConfig `yaml:"refresh" json:"refresh"`
}

type ServerConfig struct {
	Addr    string `yaml:"addr" json:"addr"`
	DataDir string `yaml:"data_dir" json:"data_dir"`
}

type FocusConfig struct {
	// BatchSize is the total focus slot count; enabled grinds consume
	// slots before tasks do.
	BatchSize int `yaml:"batch_size" json:"batch_size"`
}

type GrindsConfig struct {
	MaxTotal  int `yaml:"max_total" json:"max_total"`
	MaxActive int `yaml:"max_active" json:"max_active"`
}

type RefreshConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Schedule is a cron expression for the background refresh tick.
	Schedule string `yaml:"schedule" json:"schedule"`
}

func Default() *Config {
	return &Config{
		Version: "1",
		Server: ServerConfig{
			Addr:    ":8347",
			DataDir: "data",
		},
		Focus: FocusConfig{
			BatchSize: 3,
		},
		Grinds: GrindsConfig{
			MaxTotal:  10,
			MaxActive: 2,
		},
		Refresh: RefreshConfig{
			Enabled: true,
			// A few minutes past local midnight, when the missed-day
			// scan has a new "yesterday" to cover.
			Schedule: "5 0 * * *",
		},
	}
}

// Load reads the yaml config at path, filling gaps with defaults. A
// missing file is not an error: the defaults run fine.
func Load(path string) (*Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ApplyEnv(cfg), nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	normalize(cfg)
	return ApplyEnv(cfg), nil
}

func normalize(cfg *Config) {
	def := Default()
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Server.DataDir == "" {
		cfg.Server.DataDir = def.Server.DataDir
	}
	if cfg.Focus.BatchSize <= 0 {
		cfg.Focus.BatchSize = def.Focus.BatchSize
	}
	if cfg.Grinds.MaxTotal <= 0 {
		cfg.Grinds.MaxTotal = def.Grinds.MaxTotal
	}
	if cfg.Grinds.MaxActive <= 0 {
		cfg.Grinds.MaxActive = def.Grinds.MaxActive
	}
	if cfg.Refresh.Schedule == "" {
		cfg.Refresh.Schedule = def.Refresh.Schedule
	}
}
