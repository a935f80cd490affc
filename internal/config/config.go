// Package config loads peppy runtime settings from the environment.
package config

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/user/peppy/internal/constants"
)

type Config struct {
	Logger        LoggerConfig
	Compute       string
	ComputeConfig string
	Config        string
	Index         string
}

type LoggerConfig struct {
	Level  string
	Format string
}

// Load reads PEPPY_* environment variables over built-in defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PEPPY")

	// Defaults
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("COMPUTE", constants.DefaultComputeResourcesName)
	v.SetDefault("COMPUTE_CONFIG", "")
	v.SetDefault("CONFIG", "")
	v.SetDefault("INDEX_PATH", "")

	// Env
	v.AutomaticEnv()

	cfg := &Config{
		Logger: LoggerConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Compute:       v.GetString("COMPUTE"),
		ComputeConfig: v.GetString("COMPUTE_CONFIG"),
		Config:        v.GetString("CONFIG"),
		Index:         v.GetString("INDEX_PATH"),
	}

	return cfg, nil
}

// InitLogger applies the logger settings to the standard logrus logger.
func InitLogger(cfg *Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
