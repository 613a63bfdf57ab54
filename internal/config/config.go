// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers a YAML file and environment variables on top of New().
// - External errors are wrapped with ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Environment names accepted by Config.Env.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Cache backend names accepted by Config.CacheBackend.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// Env is "development" or "production". Production exits when MongoDB is unreachable at boot.
	Env string `koanf:"env"`
	// Addr configures the HTTP listen address, e.g. ":5000".
	Addr string `koanf:"addr"`

	MongoURI              string `koanf:"mongodb_uri"`
	MongoDatabase         string `koanf:"mongodb_database"`
	MongoConnectTimeoutMS int    `koanf:"mongodb_connect_timeout_ms"`

	// FrontendURL restricts CORS to the SPA origin. Empty allows any origin.
	FrontendURL string `koanf:"frontend_url"`

	// Base URLs of the four inference servers.
	LLMServerPort4 string `koanf:"llm_server_port4"`
	LLMServerPort5 string `koanf:"llm_server_port5"`
	LLMServerPort6 string `koanf:"llm_server_port6"`
	LLMServerPort7 string `koanf:"llm_server_port7"`

	// LLMTimeoutMS bounds ordinary analysis calls, LLMLongTimeoutMS the multimodal
	// chat and K-beauty trend calls.
	LLMTimeoutMS     int `koanf:"llm_timeout_ms"`
	LLMLongTimeoutMS int `koanf:"llm_long_timeout_ms"`
	// LLMMaxConcurrent caps in-flight requests per upstream.
	LLMMaxConcurrent int `koanf:"llm_max_concurrent"`

	// MaxBodyBytes caps request bodies accepted by the API.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	CacheBackend    string `koanf:"cache_backend"`
	CacheTTLSeconds int    `koanf:"cache_ttl_seconds"`
	CacheSize       int    `koanf:"cache_size"`
	RedisAddr       string `koanf:"redis_addr"`
	RedisPassword   string `koanf:"redis_password"`
	RedisDB         int    `koanf:"redis_db"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Env:                   EnvDevelopment,
		Addr:                  ":5000",
		MongoURI:              "mongodb://localhost:27017",
		MongoDatabase:         "amore",
		MongoConnectTimeoutMS: 10_000,
		LLMServerPort4:        "http://localhost:5004",
		LLMServerPort5:        "http://localhost:5005",
		LLMServerPort6:        "http://localhost:5006",
		LLMServerPort7:        "http://localhost:5007",
		LLMTimeoutMS:          120_000,
		LLMLongTimeoutMS:      180_000,
		LLMMaxConcurrent:      4,
		MaxBodyBytes:          10 << 20,
		CacheBackend:          CacheMemory,
		CacheTTLSeconds:       300,
		CacheSize:             1024,
		RedisAddr:             "localhost:6379",
	}
}

// IsProduction reports whether the process runs with production semantics.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), EnvProduction)
}

// Upstreams returns the inference base URLs keyed by upstream name.
func (c *Config) Upstreams() map[string]string {
	return map[string]string{
		"port4": c.LLMServerPort4,
		"port5": c.LLMServerPort5,
		"port6": c.LLMServerPort6,
		"port7": c.LLMServerPort7,
	}
}

// LLMTimeout returns the ordinary upstream timeout.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutMS) * time.Millisecond
}

// LLMLongTimeout returns the timeout for long-running upstream calls.
func (c *Config) LLMLongTimeout() time.Duration {
	return time.Duration(c.LLMLongTimeoutMS) * time.Millisecond
}

// MongoConnectTimeout returns the MongoDB connect and ping budget.
func (c *Config) MongoConnectTimeout() time.Duration {
	return time.Duration(c.MongoConnectTimeoutMS) * time.Millisecond
}

// CacheTTL returns the response cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Validate checks the values Load cannot repair.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.MongoDatabase) == "" {
		return fmt.Errorf("%w: mongodb_database must not be empty", ErrInvalidConfig)
	}
	for name, raw := range c.Upstreams() {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: llm server %s has invalid url %q", ErrInvalidConfig, name, raw)
		}
	}
	if c.LLMTimeoutMS <= 0 || c.LLMLongTimeoutMS <= 0 {
		return fmt.Errorf("%w: llm timeouts must be positive", ErrInvalidConfig)
	}
	switch c.CacheBackend {
	case CacheMemory, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("%w: unknown cache_backend %q", ErrInvalidConfig, c.CacheBackend)
	}
	return nil
}
