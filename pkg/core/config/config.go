// Package config loads pipeline settings with the usual precedence:
// built-in defaults, then an optional YAML file, then environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// Config carries every tunable the pipeline reads.
type Config struct {
	APIKey            string   `yaml:"api_key"`
	CredentialsFile   string   `yaml:"credentials_file"`
	Model             string   `yaml:"model"`
	PriorityModels    []string `yaml:"priority_models"`
	ChunkMaxChars     int      `yaml:"chunk_max_chars"`
	TimeoutSeconds    int      `yaml:"llm_timeout_seconds"`
	Retries           int      `yaml:"llm_retries"`
	MaxWorkers        int      `yaml:"max_workers"`
	RequestsPerSecond float64  `yaml:"llm_requests_per_second"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		PriorityModels:    []string{"gemini-2.5-flash", "gemini-2.5-pro", "gemini-2.0-flash"},
		ChunkMaxChars:     3000,
		TimeoutSeconds:    60,
		Retries:           3,
		MaxWorkers:        2,
		RequestsPerSecond: 2,
	}
}

// Load builds a Config from defaults, then the YAML file at path (skipped
// when path is empty), then the environment. Later sources win per field.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); v != "" {
		c.CredentialsFile = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("PRIORITY_MODELS"); v != "" {
		var models []string
		for _, m := range strings.Split(v, ",") {
			if m = strings.TrimSpace(m); m != "" {
				models = append(models, m)
			}
		}
		if len(models) > 0 {
			c.PriorityModels = models
		}
	}
	if n, ok := envInt("CHUNK_MAX_CHARS"); ok {
		c.ChunkMaxChars = n
	}
	if n, ok := envInt("LLM_TIMEOUT_SECONDS"); ok {
		c.TimeoutSeconds = n
	}
	if n, ok := envInt("LLM_RETRIES"); ok {
		c.Retries = n
	}
	if n, ok := envInt("MAX_WORKERS"); ok {
		c.MaxWorkers = n
	}
	if v := os.Getenv("LLM_REQUESTS_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.RequestsPerSecond = f
		}
	}
}

func envInt(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Timeout returns the LLM request timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
