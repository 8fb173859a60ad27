// Package config loads go-mirror runtime settings from an optional YAML file
// and MIRROR_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/teslashibe/go-mirror/pkg/geom"
	"github.com/teslashibe/go-mirror/pkg/mirror"
)

// Defaults.
const (
	DefaultPort     = "8090"
	DefaultTickRate = 60
	EnvPrefix       = "MIRROR"
)

// MirrorConfig places the glass in the scene.
type MirrorConfig struct {
	Center geom.Vec3 `mapstructure:"center"`
	Normal geom.Vec3 `mapstructure:"normal"`
}

// Config holds settings for the mirror commands.
type Config struct {
	LogLevel   string       `mapstructure:"log_level"`
	LogFormat  string       `mapstructure:"log_format"`
	Port       string       `mapstructure:"port"`
	TickRate   int          `mapstructure:"tick_rate"` // Hz
	Seed       int64        `mapstructure:"seed"`      // 0 = time based
	Preset     string       `mapstructure:"preset"`
	Scenario   string       `mapstructure:"scenario"`
	Escalation int          `mapstructure:"escalation"`
	Mirror     MirrorConfig `mapstructure:"mirror"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "")
	v.SetDefault("port", DefaultPort)
	v.SetDefault("tick_rate", DefaultTickRate)
	v.SetDefault("seed", 0)
	v.SetDefault("preset", "default")
	v.SetDefault("scenario", "")
	v.SetDefault("escalation", 0)
	v.SetDefault("mirror.center.x", 0.0)
	v.SetDefault("mirror.center.y", 1.8)
	v.SetDefault("mirror.center.z", -9.0)
	v.SetDefault("mirror.normal.x", 0.0)
	v.SetDefault("mirror.normal.y", 0.0)
	v.SetDefault("mirror.normal.z", 1.0)
}

// Load reads path (if non-empty) and overlays MIRROR_* environment variables,
// e.g. MIRROR_PORT or MIRROR_MIRROR_CENTER_Z.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the runner cannot use.
func (c *Config) Validate() error {
	if c.TickRate <= 0 || c.TickRate > 1000 {
		return fmt.Errorf("tick_rate must be in 1..1000, got %d", c.TickRate)
	}
	if c.Escalation < 0 {
		return fmt.Errorf("escalation must be non-negative, got %d", c.Escalation)
	}
	if _, ok := c.Mirror.Normal.Normalize(); !ok {
		return fmt.Errorf("mirror normal must be non-zero")
	}
	if _, err := mirror.PresetConfig(c.Preset); err != nil {
		return err
	}
	return nil
}

// Plane returns the configured mirror plane.
func (c *Config) Plane() mirror.Plane {
	return mirror.NewPlane(c.Mirror.Center, c.Mirror.Normal)
}

// Tuning returns the actor tuning for the configured preset.
func (c *Config) Tuning() (mirror.Config, error) {
	return mirror.PresetConfig(c.Preset)
}

// TickInterval is the host frame period.
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}
