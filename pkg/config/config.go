// Package config loads flowsuite settings from an optional flowsuite.yaml and FLOWSUITE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to every environment override, e.g. FLOWSUITE_API_URL.
	EnvPrefix = "FLOWSUITE"

	fileName = "flowsuite"
)

// Config holds the configuration shared by the CLI and the sandbox.
type Config struct {
	API struct {
		URL     string            `mapstructure:"url"`
		Headers map[string]string `mapstructure:"headers"`
	} `mapstructure:"api"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
	Otel struct {
		Enabled     bool   `mapstructure:"enabled"`
		ServiceName string `mapstructure:"service_name"`
	} `mapstructure:"otel"`
	Sandbox struct {
		Port           int           `mapstructure:"port"`
		DatabaseURL    string        `mapstructure:"database_url"`
		EventBus       string        `mapstructure:"event_bus"`
		KafkaBrokers   []string      `mapstructure:"kafka_brokers"`
		ExecutionDelay time.Duration `mapstructure:"execution_delay"`
	} `mapstructure:"sandbox"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.url", "http://localhost:8080/api")
	v.SetDefault("api.headers", map[string]string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.service_name", "flowsuite")
	v.SetDefault("sandbox.port", 8080)
	v.SetDefault("sandbox.database_url", "file://./data")
	v.SetDefault("sandbox.event_bus", "gochannel")
	v.SetDefault("sandbox.kafka_brokers", []string{})
	v.SetDefault("sandbox.execution_delay", "0s")
}

// Load reads configuration. When path is empty, flowsuite.yaml is looked up in the
// working directory and in the user config directory, and a missing file is not an error.
// Environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName(fileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, fileName))
		}

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	config.API.URL = strings.TrimRight(strings.TrimSpace(config.API.URL), "/")

	return &config, nil
}
