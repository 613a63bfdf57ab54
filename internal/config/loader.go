package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// legacyEnv maps the environment names used by the existing deployment to config keys.
var legacyEnv = map[string]string{
	"NODE_ENV":         "env",
	"MONGODB_URI":      "mongodb_uri",
	"MONGODB_DATABASE": "mongodb_database",
	"FRONTEND_URL":     "frontend_url",
	"LLM_SERVER_PORT4": "llm_server_port4",
	"LLM_SERVER_PORT5": "llm_server_port5",
	"LLM_SERVER_PORT6": "llm_server_port6",
	"LLM_SERVER_PORT7": "llm_server_port7",
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if CLUE_CONFIG is set
//  3. legacy env (MONGODB_URI, PORT, LLM_SERVER_PORT4, ...)
//  4. env (prefix CLUE_)
func Load(_ context.Context) (*Config, error) {
	base := New()
	k := koanf.New(".")

	if path := os.Getenv("CLUE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	legacy := env.Provider("", ".", func(s string) string {
		return legacyEnv[s]
	})
	if err := k.Load(legacy, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	// PORT only sets the listen address when nothing more specific did.
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" && !k.Exists("addr") {
		if _, err := strconv.Atoi(port); err != nil {
			return nil, fmt.Errorf("%w: PORT %q is not a number", ErrInvalidConfig, port)
		}
		if err := k.Set("addr", ":"+port); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// CLUE_MONGODB_URI -> mongodb_uri (flat keys, underscores preserved).
	envProvider := env.Provider("CLUE_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "clue_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	cfg.CacheBackend = strings.ToLower(strings.TrimSpace(cfg.CacheBackend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
