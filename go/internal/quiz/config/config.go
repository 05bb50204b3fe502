package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"api"`
	Stream struct {
		BaseDelayMillis int `yaml:"base_delay_millis"`
		MaxDelayMillis  int `yaml:"max_delay_millis"`
	} `yaml:"stream"`
	Round struct {
		DurationSeconds int `yaml:"duration_seconds"`
	} `yaml:"round"`
	Identity struct {
		Path string `yaml:"path"`
	} `yaml:"identity"`
}

func Default() Config {
	var cfg Config
	cfg.API.BaseURL = "http://localhost:8080"
	cfg.API.TimeoutSeconds = 30
	cfg.Stream.BaseDelayMillis = 500
	cfg.Stream.MaxDelayMillis = 10000
	cfg.Round.DurationSeconds = 10
	return cfg
}

// Load reads a yaml config file over the defaults and then applies
// environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.API.BaseURL = getEnv("QUIZ_API_URL", cfg.API.BaseURL)
	cfg.API.TimeoutSeconds = getEnvAsInt("QUIZ_API_TIMEOUT_SECONDS", cfg.API.TimeoutSeconds)
	cfg.Stream.BaseDelayMillis = getEnvAsInt("QUIZ_STREAM_BASE_DELAY_MS", cfg.Stream.BaseDelayMillis)
	cfg.Stream.MaxDelayMillis = getEnvAsInt("QUIZ_STREAM_MAX_DELAY_MS", cfg.Stream.MaxDelayMillis)
	cfg.Round.DurationSeconds = getEnvAsInt("QUIZ_ROUND_SECONDS", cfg.Round.DurationSeconds)
	cfg.Identity.Path = getEnv("QUIZ_IDENTITY_PATH", cfg.Identity.Path)

	return cfg, nil
}

func (c Config) StreamBaseDelay() time.Duration {
	return time.Duration(c.Stream.BaseDelayMillis) * time.Millisecond
}

func (c Config) StreamMaxDelay() time.Duration {
	return time.Duration(c.Stream.MaxDelayMillis) * time.Millisecond
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
