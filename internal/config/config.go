// Package config holds all flowforge configuration: the Gemini connection,
// retry policy, audio parameters, and blueprint library location. Values come
// from an optional YAML file with environment overrides on top; a .env file
// is honored when present.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"flowforge/internal/fault"
	"flowforge/internal/gateway"
)

// Config is the root configuration.
type Config struct {
	Gemini  GeminiConfig  `yaml:"gemini"`
	Retry   RetryConfig   `yaml:"retry"`
	Audio   AudioConfig   `yaml:"audio"`
	Library LibraryConfig `yaml:"library"`
	Logging LoggingConfig `yaml:"logging"`
}

// GeminiConfig configures the provider boundary.
type GeminiConfig struct {
	// APIKey is normally left empty in the file and supplied via the
	// GEMINI_API_KEY environment variable.
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	TTSModel  string `yaml:"tts_model"`
	TTSVoice  string `yaml:"tts_voice"`
	Timeout   string `yaml:"timeout"`
	MaxTokens int    `yaml:"max_tokens"`
}

// RetryConfig configures the invocation gateway per call site.
type RetryConfig struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
}

// AudioConfig describes the PCM stream the TTS model emits.
type AudioConfig struct {
	SampleRate int `yaml:"sample_rate"`
	Channels   int `yaml:"channels"`
}

// LibraryConfig locates the SQLite blueprint library.
type LibraryConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Verbose bool `yaml:"verbose"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Gemini: GeminiConfig{
			BaseURL:   "https://generativelanguage.googleapis.com/v1beta",
			Model:     "gemini-2.5-flash",
			TTSModel:  "gemini-2.5-flash-preview-tts",
			TTSVoice:  "Kore",
			Timeout:   "2m",
			MaxTokens: 8192,
		},
		Retry: RetryConfig{
			MaxAttempts:       3,
			InitialDelayMs:    1000,
			BackoffMultiplier: 2,
		},
		Audio: AudioConfig{
			SampleRate: 24000, // Gemini TTS emits 24kHz mono PCM16
			Channels:   1,
		},
		Library: LibraryConfig{
			Path: filepath.Join(".flowforge", "library.db"),
		},
	}
}

// Load reads the config file at path (missing file is fine), then applies
// environment overrides. A .env file in the working directory is loaded
// first, best effort.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: reading %s: %v", fault.ErrConfiguration, path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parsing %s: %v", fault.ErrConfiguration, path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("FLOWFORGE_MODEL"); v != "" {
		cfg.Gemini.Model = v
	}
	if v := os.Getenv("FLOWFORGE_LIBRARY"); v != "" {
		cfg.Library.Path = v
	}
}

// ResolveAPIKey returns the credential or a ConfigurationError, raised before
// any network attempt.
func (g GeminiConfig) ResolveAPIKey() (string, error) {
	if g.APIKey != "" {
		return g.APIKey, nil
	}
	return "", fmt.Errorf("%w: GEMINI_API_KEY is not set", fault.ErrConfiguration)
}

// RequestTimeout parses the configured per-request timeout, falling back to
// two minutes on a bad value.
func (g GeminiConfig) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(g.Timeout)
	if err != nil || d <= 0 {
		return 2 * time.Minute
	}
	return d
}

// Policy converts the retry configuration into a gateway policy. The
// per-attempt deadline matches the request timeout so a hung call is
// reclassified as transient instead of blocking the caller.
func (c *Config) Policy() gateway.Policy {
	r := c.Retry
	if r.MaxAttempts < 1 {
		r.MaxAttempts = 1
	}
	if r.BackoffMultiplier < 1 {
		r.BackoffMultiplier = 1
	}
	return gateway.Policy{
		MaxAttempts:       r.MaxAttempts,
		InitialDelay:      time.Duration(r.InitialDelayMs) * time.Millisecond,
		BackoffMultiplier: r.BackoffMultiplier,
		AttemptTimeout:    c.Gemini.RequestTimeout(),
	}
}
