// Package config defines ideaboard configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Validation failures wrap ErrInvalidConfig; source failures wrap ErrLoadConfig.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/okian/ideaboard/internal/adapters/kv"
	service "github.com/okian/ideaboard/internal/app"
	"github.com/okian/ideaboard/internal/domain/ident"
	"github.com/okian/ideaboard/internal/domain/ranking"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is "console" or "json".
	LogFormat string `koanf:"log_format"`

	// StorageBackend selects memory, file, redis or sql.
	StorageBackend string `koanf:"storage_backend"`

	// StoragePath is the directory of the file backend.
	StoragePath string `koanf:"storage_path"`

	// RedisURL is used by the redis backend, e.g. redis://localhost:6379/0.
	RedisURL string `koanf:"redis_url"`

	// SQLDriver and SQLDSN configure the sql backend.
	SQLDriver string `koanf:"sql_driver"`
	SQLDSN    string `koanf:"sql_dsn"`

	// KeyPrefix namespaces the stored record keys.
	KeyPrefix string `koanf:"key_prefix"`

	// IDScheme is "clock" or "uuid7".
	IDScheme string `koanf:"id_scheme"`

	// VoteWriteMode is "sequential" or "atomic".
	VoteWriteMode string `koanf:"vote_write_mode"`

	// StrictDecode turns malformed stored records into errors.
	StrictDecode bool `koanf:"strict_decode"`

	LeaderboardSize int    `koanf:"leaderboard_size"`
	DefaultSort     string `koanf:"default_sort"`

	// MetricsFile, when set, receives a Prometheus text exposition after
	// every command.
	MetricsFile string `koanf:"metrics_file"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "console",
		StorageBackend:  kv.BackendFile,
		StoragePath:     defaultStoragePath(),
		SQLDriver:       kv.DriverSQLite,
		IDScheme:        ident.SchemeClock,
		VoteWriteMode:   service.VoteWriteSequential,
		LeaderboardSize: ranking.DefaultLeaderboardSize,
		DefaultSort:     string(ranking.ByRating),
	}
}

func defaultStoragePath() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "ideaboard")
	}
	return ".ideaboard"
}

// KV returns the storage settings for kv.Open.
func (c *Config) KV() kv.Config {
	return kv.Config{
		Backend:   c.StorageBackend,
		Path:      c.StoragePath,
		RedisURL:  c.RedisURL,
		SQLDriver: c.SQLDriver,
		SQLDSN:    c.SQLDSN,
	}
}

// Validate checks every field and reports the first problem.
func (c *Config) Validate() error {
	oneOf := func(key, val string, allowed ...string) error {
		if !slices.Contains(allowed, strings.ToLower(strings.TrimSpace(val))) {
			return fmt.Errorf("%w: %s must be one of %s, got %q", ErrInvalidConfig, key, strings.Join(allowed, "|"), val)
		}
		return nil
	}

	checks := []error{
		oneOf("log_level", c.LogLevel, "debug", "info", "warn", "warning", "error"),
		oneOf("log_format", c.LogFormat, "console", "json"),
		oneOf("storage_backend", c.StorageBackend, kv.BackendMemory, kv.BackendFile, kv.BackendRedis, kv.BackendSQL),
		oneOf("id_scheme", c.IDScheme, ident.SchemeClock, ident.SchemeUUID7),
		oneOf("vote_write_mode", c.VoteWriteMode, service.VoteWriteSequential, service.VoteWriteAtomic),
		oneOf("default_sort", c.DefaultSort, string(ranking.ByRating), string(ranking.ByVotes)),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}

	if c.LeaderboardSize <= 0 {
		return fmt.Errorf("%w: leaderboard_size must be positive, got %d", ErrInvalidConfig, c.LeaderboardSize)
	}

	switch strings.ToLower(strings.TrimSpace(c.StorageBackend)) {
	case kv.BackendFile:
		if strings.TrimSpace(c.StoragePath) == "" {
			return fmt.Errorf("%w: storage_path must not be empty for the file backend", ErrInvalidConfig)
		}
	case kv.BackendRedis:
		if strings.TrimSpace(c.RedisURL) == "" {
			return fmt.Errorf("%w: redis_url must not be empty for the redis backend", ErrInvalidConfig)
		}
	case kv.BackendSQL:
		if err := oneOf("sql_driver", c.SQLDriver, kv.DriverSQLite, kv.DriverPostgres, kv.DriverLibSQL); err != nil {
			return err
		}
		if strings.TrimSpace(c.SQLDSN) == "" {
			return fmt.Errorf("%w: sql_dsn must not be empty for the sql backend", ErrInvalidConfig)
		}
	}
	return nil
}
