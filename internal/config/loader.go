package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables read by Load.
const (
	EnvPrefix  = "IDEABOARD_"
	EnvConfig  = "IDEABOARD_CONFIG"
	EnvEnvFile = "IDEABOARD_ENV_FILE"

	defaultEnvFile = ".env"
)

// LoadOption adjusts where Load reads from.
type LoadOption func(*loadSettings)

type loadSettings struct {
	file string
}

// WithFile reads the YAML file at path instead of $IDEABOARD_CONFIG.
func WithFile(path string) LoadOption {
	return func(s *loadSettings) {
		if path != "" {
			s.file = path
		}
	}
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) from WithFile or IDEABOARD_CONFIG
//  3. env (prefix IDEABOARD_), after loading a dotenv file from
//     IDEABOARD_ENV_FILE or ./.env
func Load(_ context.Context, opts ...LoadOption) (*Config, error) {
	s := loadSettings{file: os.Getenv(EnvConfig)}
	for _, opt := range opts {
		opt(&s)
	}

	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if s.file != "" {
		if err := k.Load(file.Provider(s.file), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, s.file, err)
		}
	}

	if err := loadDotenv(); err != nil {
		return nil, err
	}

	// Environment variables: IDEABOARD_STORAGE_BACKEND, IDEABOARD_KEY_PREFIX, ...
	// Map env keys like IDEABOARD_KEY_PREFIX -> key_prefix (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotenv populates unset variables from a dotenv file. An explicitly
// named file must exist; the default ./.env is optional.
func loadDotenv() error {
	if path := os.Getenv(EnvEnvFile); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("%w: env file %s: %w", ErrLoadConfig, path, err)
		}
		return nil
	}
	if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: env file %s: %w", ErrLoadConfig, defaultEnvFile, err)
	}
	return nil
}
