// Package config provides configuration loading and validation for the service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the service configuration. Values come from defaults, then an
// optional YAML file, then environment variables.
type Config struct {
	Port        int    `yaml:"port" validate:"min=1,max=65535"`
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`

	// Empty selects the embedded catalog
	RulesFile string `yaml:"rules_file"`

	// Worker pool
	Workers      int           `yaml:"workers" validate:"min=1"`
	QueueSize    int           `yaml:"queue_size" validate:"min=0"`
	QueueTimeout time.Duration `yaml:"queue_timeout" validate:"min=0"`

	// Input limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes" validate:"min=1"`
	MaxPartBytes   int64 `yaml:"max_part_bytes" validate:"min=1"`

	// Optional backends
	DatabaseURL    string        `yaml:"database_url" validate:"omitempty,url"`
	RedisURL       string        `yaml:"redis_url" validate:"omitempty,url"`
	ReportCacheTTL time.Duration `yaml:"report_cache_ttl" validate:"min=0"`

	// Bounds the in-process report cache used when Redis is not configured
	ReportCacheMaxEntries int `yaml:"report_cache_max_entries" validate:"min=1"`

	// Empty disables service-token auth on document routes
	ServiceJWTSecret string `yaml:"service_jwt_secret" validate:"omitempty,min=16"`

	CORSOrigin string `yaml:"cors_origin"`

	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig configures per-client request limiting.
type RateLimitConfig struct {
	Enabled         bool          `yaml:"enabled"`
	DefaultLimit    int           `yaml:"default_limit" validate:"min=1"`
	DefaultWindow   time.Duration `yaml:"default_window" validate:"gt=0"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" validate:"gt=0"`
	Whitelist       []string      `yaml:"whitelist" validate:"dive,required"`
	Blacklist       []string      `yaml:"blacklist" validate:"dive,required"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:                  8000,
		Environment:           "development",
		LogLevel:              "info",
		Workers:               runtime.NumCPU(),
		QueueSize:             64,
		QueueTimeout:          30 * time.Second,
		MaxUploadBytes:        50 << 20,
		MaxPartBytes:          64 << 20,
		ReportCacheTTL:        24 * time.Hour,
		ReportCacheMaxEntries: 10000,
		CORSOrigin:            "*",
		RateLimit: RateLimitConfig{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// any) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads only the YAML file at path over the defaults.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}
	cfg := Defaults()
	if err := cfg.mergeFile(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) mergeFile(path string) error {
	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return nil
}

// applyEnv overrides fields from environment variables read through getenv.
func (c *Config) applyEnv(getenv func(string) string) error {
	strs := map[string]*string{
		"ENVIRONMENT":        &c.Environment,
		"LOG_LEVEL":          &c.LogLevel,
		"RULES_FILE":         &c.RulesFile,
		"DATABASE_URL":       &c.DatabaseURL,
		"REDIS_URL":          &c.RedisURL,
		"SERVICE_JWT_SECRET": &c.ServiceJWTSecret,
		"CORS_ORIGIN":        &c.CORSOrigin,
	}
	for key, dst := range strs {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"PORT":                     &c.Port,
		"WORKERS":                  &c.Workers,
		"QUEUE_SIZE":               &c.QueueSize,
		"REPORT_CACHE_MAX_ENTRIES": &c.ReportCacheMaxEntries,
		"RATE_LIMIT_DEFAULT_LIMIT": &c.RateLimit.DefaultLimit,
	}
	for key, dst := range ints {
		if v := getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("config error: invalid %s: %w", key, err)
			}
			*dst = n
		}
	}

	int64s := map[string]*int64{
		"MAX_UPLOAD_BYTES": &c.MaxUploadBytes,
		"MAX_PART_BYTES":   &c.MaxPartBytes,
	}
	for key, dst := range int64s {
		if v := getenv(key); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("config error: invalid %s: %w", key, err)
			}
			*dst = n
		}
	}

	durations := map[string]*time.Duration{
		"QUEUE_TIMEOUT":               &c.QueueTimeout,
		"REPORT_CACHE_TTL":            &c.ReportCacheTTL,
		"RATE_LIMIT_DEFAULT_WINDOW":   &c.RateLimit.DefaultWindow,
		"RATE_LIMIT_CLEANUP_INTERVAL": &c.RateLimit.CleanupInterval,
	}
	for key, dst := range durations {
		if v := getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("config error: invalid %s: %w", key, err)
			}
			*dst = d
		}
	}

	if v := getenv("RATE_LIMIT_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config error: invalid RATE_LIMIT_ENABLED: %w", err)
		}
		c.RateLimit.Enabled = enabled
	}

	lists := map[string]*[]string{
		"RATE_LIMIT_WHITELIST": &c.RateLimit.Whitelist,
		"RATE_LIMIT_BLACKLIST": &c.RateLimit.Blacklist,
	}
	for key, dst := range lists {
		if v := getenv(key); v != "" {
			*dst = splitList(v)
		}
	}
	return nil
}

// splitList parses a comma-separated list, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

var validate = validator.New()

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
