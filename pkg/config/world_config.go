// Copyright 2025 Certen Protocol
//
// World Defaults Configuration
//
// Loads the per-deployment defaults used when a caller issues create_world
// without specifying every field explicitly, plus the server's operational
// settings, from a YAML file with ${VAR_NAME} environment-variable
// substitution.

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/certen/independant-validator/pkg/statistic"
)

// WorldFileConfig is the top-level shape of a world-defaults YAML file.
type WorldFileConfig struct {
	Environment string             `yaml:"environment"`
	World       WorldDefaults      `yaml:"world"`
	Server      ServerSettings     `yaml:"server"`
	Batch       BatchSettings      `yaml:"batch"`
	Monitoring  MonitoringSettings `yaml:"monitoring"`
}

// WorldDefaults holds the defaults applied when create_world omits a field.
type WorldDefaults struct {
	CanonicalResolution uint8  `yaml:"canonical_resolution"`
	PermissionedUpdates bool   `yaml:"permissioned_updates"`
	StatisticType       string `yaml:"statistic_type"` // count|aggregate_overwrite|aggregate_accumulate|mean_overwrite|mean_accumulate
}

// Tag resolves StatisticType to the statistic.Type enum.
func (w WorldDefaults) Tag() (statistic.Type, error) {
	switch w.StatisticType {
	case "", "count":
		return statistic.Count, nil
	case "aggregate_overwrite":
		return statistic.AggregateOverwrite, nil
	case "aggregate_accumulate":
		return statistic.AggregateAccumulate, nil
	case "mean_overwrite":
		return statistic.MeanOverwrite, nil
	case "mean_accumulate":
		return statistic.MeanAccumulate, nil
	default:
		return 0, fmt.Errorf("unknown statistic_type %q", w.StatisticType)
	}
}

// ServerSettings holds HTTP server tuning knobs.
type ServerSettings struct {
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
	IdleTimeout  Duration `yaml:"idle_timeout"`
	MaxBodyBytes int64    `yaml:"max_body_bytes"`
}

// BatchSettings holds update-batch collector tuning knobs.
type BatchSettings struct {
	MaxBatchSize int      `yaml:"max_batch_size"`
	MaxBatchAge  Duration `yaml:"max_batch_age"`
}

// MonitoringSettings holds metrics/logging knobs.
type MonitoringSettings struct {
	MetricsEnabled bool   `yaml:"metrics_enabled"`
	LogLevel       string `yaml:"log_level"`
}

// Duration wraps time.Duration for YAML unmarshaling as a Go duration
// string ("15m", "30s").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR_NAME} or ${VAR_NAME:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultValue := ""
		if len(groups) >= 4 {
			defaultValue = groups[3]
		}
		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}

// LoadWorldConfig loads world-defaults configuration from a YAML file,
// substituting ${VAR_NAME} references against the environment first.
func LoadWorldConfig(path string) (*WorldFileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read world config %s: %w", path, err)
	}
	expanded := substituteEnvVars(string(data))

	var cfg WorldFileConfig
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse world config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults fills in zero-valued fields with sane defaults.
func (c *WorldFileConfig) applyDefaults() {
	if c.World.CanonicalResolution == 0 {
		c.World.CanonicalResolution = 6
	}
	if c.World.StatisticType == "" {
		c.World.StatisticType = "count"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(10 * time.Second)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(10 * time.Second)
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = Duration(60 * time.Second)
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = 1 << 20 // 1 MiB
	}
	if c.Batch.MaxBatchSize == 0 {
		c.Batch.MaxBatchSize = 1000
	}
	if c.Batch.MaxBatchAge == 0 {
		c.Batch.MaxBatchAge = Duration(15 * time.Minute)
	}
	if c.Monitoring.LogLevel == "" {
		c.Monitoring.LogLevel = "info"
	}
}
