// Package config loads runtime configuration from the environment and an
// optional .env file, applying typed defaults per setting.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile      = ".env"
	defaultPort         = "8080"
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 120 * time.Second
	defaultDataDir      = "data"
	defaultRegion       = "NP"
	defaultCouponDelay  = 1200 * time.Millisecond
	defaultSupportDelay = time.Second
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server     ServerConfig
	Storefront StorefrontConfig
	Coupons    CouponConfig
	Support    SupportConfig
	Features   FeatureFlags
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// StorefrontConfig points at the ledger files and the catalog source.
type StorefrontConfig struct {
	DataDir       string
	CatalogFile   string
	DefaultRegion string
	InMemory      bool
}

// CouponConfig tunes coupon resolution.
type CouponConfig struct {
	ResolveDelay time.Duration
}

// SupportConfig tunes the chat assistant.
type SupportConfig struct {
	ReplyDelay time.Duration
}

// FeatureFlags toggle optional behaviour without redeploying.
type FeatureFlags struct {
	EnableGame    bool
	EnableSupport bool
}

// ValidationError reports configuration fields that failed validation.
type ValidationError struct {
	fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: invalid fields: %s", strings.Join(e.fields, ", "))
}

// Fields returns the invalid field names.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises configuration loading behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envOverrides map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file consulted during loading.
func WithEnvFile(path string) Option {
	return func(opts *loaderOptions) {
		opts.envFile = path
	}
}

// WithEnvMap layers explicit values over the environment, mainly for tests.
func WithEnvMap(values map[string]string) Option {
	return func(opts *loaderOptions) {
		opts.envOverrides = values
	}
}

// WithoutSystemEnv ignores the process environment entirely.
func WithoutSystemEnv() Option {
	return func(opts *loaderOptions) {
		opts.useSystemEnv = false
	}
}

// Load assembles the configuration. Precedence, lowest to highest: .env
// file, process environment, explicit overrides.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{envFile: defaultEnvFile, useSystemEnv: true}
	for _, opt := range opts {
		opt(&options)
	}

	values, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}
	if values == nil {
		values = make(map[string]string)
	}
	if options.useSystemEnv {
		for _, entry := range os.Environ() {
			parts := strings.SplitN(entry, "=", 2)
			if len(parts) != 2 || parts[0] == "" {
				continue
			}
			values[parts[0]] = parts[1]
		}
	}
	for key, value := range options.envOverrides {
		values[key] = value
	}

	lookup := func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Storefront: StorefrontConfig{
			DataDir:       stringWithDefault(lookup, "STORE_DATA_DIR", defaultDataDir),
			CatalogFile:   stringWithDefault(lookup, "STORE_CATALOG_FILE", ""),
			DefaultRegion: stringWithDefault(lookup, "STORE_DEFAULT_REGION", defaultRegion),
			InMemory:      boolWithDefault(lookup, "STORE_IN_MEMORY", false),
		},
		Coupons: CouponConfig{
			ResolveDelay: durationWithDefault(lookup, "COUPON_RESOLVE_DELAY", defaultCouponDelay),
		},
		Support: SupportConfig{
			ReplyDelay: durationWithDefault(lookup, "SUPPORT_REPLY_DELAY", defaultSupportDelay),
		},
		Features: FeatureFlags{
			EnableGame:    boolWithDefault(lookup, "FEATURE_GAME", true),
			EnableSupport: boolWithDefault(lookup, "FEATURE_SUPPORT", true),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var invalid []string
	if port, err := strconv.Atoi(cfg.Server.Port); err != nil || port <= 0 || port > 65535 {
		invalid = append(invalid, "PORT")
	}
	if cfg.Server.ReadTimeout <= 0 {
		invalid = append(invalid, "SERVER_READ_TIMEOUT")
	}
	if cfg.Server.WriteTimeout <= 0 {
		invalid = append(invalid, "SERVER_WRITE_TIMEOUT")
	}
	if cfg.Server.IdleTimeout <= 0 {
		invalid = append(invalid, "SERVER_IDLE_TIMEOUT")
	}
	if !cfg.Storefront.InMemory && strings.TrimSpace(cfg.Storefront.DataDir) == "" {
		invalid = append(invalid, "STORE_DATA_DIR")
	}
	switch strings.ToUpper(strings.TrimSpace(cfg.Storefront.DefaultRegion)) {
	case "NP", "IN":
	default:
		invalid = append(invalid, "STORE_DEFAULT_REGION")
	}
	if len(invalid) == 0 {
		return nil
	}
	sort.Strings(invalid)
	return &ValidationError{fields: invalid}
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		value = strings.Trim(value, "\"'")
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
