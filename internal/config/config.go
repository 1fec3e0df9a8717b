package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"condo-extractor/internal/listing"
	"condo-extractor/internal/photo"
)

// Config holds the settings shared by the server and the CLI.
type Config struct {
	CacheDir   string `yaml:"cache_dir"`
	ListenAddr string `yaml:"listen_addr"`

	// UserAgent overrides the crawler's browser User-Agent when set.
	UserAgent    string  `yaml:"user_agent"`
	FetchTimeout string  `yaml:"fetch_timeout"`
	DialTimeout  string  `yaml:"dial_timeout"`
	MaxBodyBytes int64   `yaml:"max_body_bytes"`
	RateLimitRPS float64 `yaml:"rate_limit_rps"`

	ListingURLPattern string `yaml:"listing_url_pattern"`
	MediaURLPattern   string `yaml:"media_url_pattern"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	fetchTimeout time.Duration
	dialTimeout  time.Duration
	listingRe    *regexp.Regexp
	mediaRe      *regexp.Regexp
}

func defaults() *Config {
	return &Config{
		CacheDir:          "data",
		ListenAddr:        ":8080",
		FetchTimeout:      "15s",
		DialTimeout:       "5s",
		MaxBodyBytes:      5 << 20,
		RateLimitRPS:      1,
		ListingURLPattern: listing.DefaultListingPattern,
		MediaURLPattern:   photo.DefaultMediaPattern,
		LogLevel:          "info",
		LogFormat:         "json",
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, a .env file in the working directory and the environment, each
// layer overriding the previous one.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg.CacheDir = getEnv("CACHE_DIR", cfg.CacheDir)
	cfg.ListenAddr = getEnv("LISTEN_ADDR", cfg.ListenAddr)
	cfg.UserAgent = getEnv("USER_AGENT", cfg.UserAgent)
	cfg.FetchTimeout = getEnv("FETCH_TIMEOUT", cfg.FetchTimeout)
	cfg.DialTimeout = getEnv("DIAL_TIMEOUT", cfg.DialTimeout)
	cfg.MaxBodyBytes = getEnvInt64("MAX_BODY_BYTES", cfg.MaxBodyBytes)
	cfg.RateLimitRPS = getEnvFloat("RATE_LIMIT_RPS", cfg.RateLimitRPS)
	cfg.ListingURLPattern = getEnv("LISTING_URL_PATTERN", cfg.ListingURLPattern)
	cfg.MediaURLPattern = getEnv("MEDIA_URL_PATTERN", cfg.MediaURLPattern)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	if err := cfg.compile(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) compile() error {
	var err error
	if c.CacheDir == "" {
		return errors.New("config: cache_dir must not be empty")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("config: max_body_bytes must be positive, got %d", c.MaxBodyBytes)
	}
	if c.fetchTimeout, err = time.ParseDuration(c.FetchTimeout); err != nil {
		return fmt.Errorf("config: fetch_timeout: %w", err)
	}
	if c.dialTimeout, err = time.ParseDuration(c.DialTimeout); err != nil {
		return fmt.Errorf("config: dial_timeout: %w", err)
	}
	if c.listingRe, err = regexp.Compile(c.ListingURLPattern); err != nil {
		return fmt.Errorf("config: listing_url_pattern: %w", err)
	}
	if c.mediaRe, err = regexp.Compile(c.MediaURLPattern); err != nil {
		return fmt.Errorf("config: media_url_pattern: %w", err)
	}
	return nil
}

func (c *Config) FetchTimeoutDuration() time.Duration { return c.fetchTimeout }

func (c *Config) DialTimeoutDuration() time.Duration { return c.dialTimeout }

// ListingPattern gates extraction requests.
func (c *Config) ListingPattern() *regexp.Regexp { return c.listingRe }

// MediaPattern selects the primary photo among the page images.
func (c *Config) MediaPattern() *regexp.Regexp { return c.mediaRe }

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}
