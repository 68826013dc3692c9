package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Daemon holds the configuration of the scheduled service.
type Daemon struct {
	Listen       string    `mapstructure:"listen"`
	Profile      string    `mapstructure:"profile"`
	ProfilesFile string    `mapstructure:"profiles_file"`
	Threshold    float64   `mapstructure:"threshold"`
	Table        string    `mapstructure:"table"`
	Schedule     string    `mapstructure:"schedule"`
	Window       *Window   `mapstructure:"maintenance_window"`
	Export       *S3Export `mapstructure:"s3_export"`
}

// Window gates scheduled runs: a tick fires only between a window start and
// start+duration. An empty schedule leaves the daemon API-only.
type Window struct {
	Start    string        `mapstructure:"start"`
	Duration time.Duration `mapstructure:"duration"`
}

// S3Export uploads finished run reports to an object store bucket.
type S3Export struct {
	Bucket     string `mapstructure:"bucket"`
	Prefix     string `mapstructure:"prefix"`
	Region     string `mapstructure:"region"`
	Endpoint   string `mapstructure:"endpoint"`
	PathStyle  bool   `mapstructure:"path_style"`
	AWSProfile string `mapstructure:"aws_profile"`
}

// LoadDaemon loads daemon configuration from the specified file.
func LoadDaemon(path string) (*Daemon, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("listen", "localhost:8081")
	v.SetDefault("threshold", 0.8)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Daemon
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse daemon config: %w", err)
	}

	if cfg.Profile == "" {
		return nil, fmt.Errorf("profile is required")
	}
	if cfg.Threshold <= 0 || cfg.Threshold > 1 {
		return nil, fmt.Errorf("threshold must be in (0, 1], got %v", cfg.Threshold)
	}
	if cfg.Window != nil && cfg.Window.Duration <= 0 {
		return nil, fmt.Errorf("maintenance_window.duration must be positive")
	}
	if cfg.Export != nil && cfg.Export.Bucket == "" {
		return nil, fmt.Errorf("s3_export.bucket is required when export is configured")
	}
	return &cfg, nil
}
