// Package config handles application configuration using Viper.
// Viper merges defaults, an optional YAML file and environment variables,
// in that order of priority, into the Config struct.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration struct.
// `mapstructure` tags tell Viper how to map YAML/env keys to struct fields.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Wikipedia WikipediaConfig `mapstructure:"wikipedia"`
	Spotify   SpotifyConfig   `mapstructure:"spotify"`
	Resolve   ResolveConfig   `mapstructure:"resolve"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type AuthConfig struct {
	APIKeys   []string `mapstructure:"api_keys"`
	AdminKeys []string `mapstructure:"admin_keys"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig limits inbound requests per API key.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type WikipediaConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	UserAgent         string        `mapstructure:"user_agent"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// SpotifyConfig holds the catalog endpoint and credential. Either Token
// (a pre-issued bearer token) or ClientID+ClientSecret may be set; with
// neither, enrichment is skipped.
type SpotifyConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Token             string        `mapstructure:"token"`
	ClientID          string        `mapstructure:"client_id"`
	ClientSecret      string        `mapstructure:"client_secret"`
	TokenURL          string        `mapstructure:"token_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

type ResolveConfig struct {
	// EnrichmentWait bounds how long a query waits for the catalog.
	EnrichmentWait      time.Duration `mapstructure:"enrichment_wait"`
	PlaceholderImageURL string        `mapstructure:"placeholder_image_url"`
	BatchConcurrency    int           `mapstructure:"batch_concurrency"`
	BatchMax            int           `mapstructure:"batch_max"`
}

type LogConfig struct {
	Level          string `mapstructure:"level"`
	FilePath       string `mapstructure:"file_path"`
	FileMaxSizeMB  int    `mapstructure:"file_max_size_mb"`
	FileMaxFiles   int    `mapstructure:"file_max_files"`
	FileMaxAgeDays int    `mapstructure:"file_max_age_days"`
}

// Load reads configuration from a YAML file and environment variables.
// An empty configPath looks for config.yaml in . and ./config.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:4200"})
	v.SetDefault("rate_limit.requests_per_second", 5)
	v.SetDefault("rate_limit.burst", 10)
	v.SetDefault("wikipedia.base_url", "https://en.wikipedia.org")
	v.SetDefault("wikipedia.user_agent", "vinyl-service/1.0")
	v.SetDefault("wikipedia.timeout", 10*time.Second)
	v.SetDefault("wikipedia.requests_per_second", 10)
	v.SetDefault("spotify.base_url", "https://api.spotify.com")
	// Empty defaults register the keys so env-only values reach Unmarshal.
	v.SetDefault("spotify.token", "")
	v.SetDefault("spotify.client_id", "")
	v.SetDefault("spotify.client_secret", "")
	v.SetDefault("spotify.token_url", "https://accounts.spotify.com/api/token")
	v.SetDefault("spotify.timeout", 5*time.Second)
	v.SetDefault("spotify.requests_per_second", 5)
	v.SetDefault("resolve.enrichment_wait", 3*time.Second)
	v.SetDefault("resolve.placeholder_image_url", "https://via.placeholder.com/400x300")
	v.SetDefault("resolve.batch_concurrency", 4)
	v.SetDefault("resolve.batch_max", 25)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file_path", "")
	v.SetDefault("log.file_max_size_mb", 100)
	v.SetDefault("log.file_max_files", 3)
	v.SetDefault("log.file_max_age_days", 30)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// A missing file is fine unless the caller named one explicitly.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// VINYL_ prefix + nested keys: VINYL_SPOTIFY_TOKEN=... → spotify.token
	v.SetEnvPrefix("VINYL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if c.Wikipedia.BaseURL == "" {
		return fmt.Errorf("wikipedia.base_url must be set")
	}
	if c.Resolve.EnrichmentWait <= 0 {
		return fmt.Errorf("resolve.enrichment_wait must be positive, got %s", c.Resolve.EnrichmentWait)
	}
	if c.Resolve.BatchMax <= 0 {
		return fmt.Errorf("resolve.batch_max must be positive, got %d", c.Resolve.BatchMax)
	}
	return nil
}

// Address returns the listen address string like "0.0.0.0:8080".
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
