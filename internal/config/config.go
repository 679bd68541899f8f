package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// APIKeyEnv holds the Artificial Analysis API key
	APIKeyEnv = "ARTIFICIALANALYSIS_API_KEY"
	// DatabaseURLEnv holds the pipeline database connection string
	DatabaseURLEnv = "PIPELINE_SUPABASE_URL"

	// apiKeyPlaceholder is the value shipped in example env files
	apiKeyPlaceholder = "your-api-key-here"
)

var (
	// ErrMissingAPIKey is returned when the API key is unset or still the placeholder
	ErrMissingAPIKey = errors.New(APIKeyEnv + " not configured")

	// ErrMissingDatabaseURL is returned when the database connection string is unset
	ErrMissingDatabaseURL = errors.New(DatabaseURLEnv + " not configured")
)

// ReplaceStrategy selects how the metrics table contents are swapped
type ReplaceStrategy string

const (
	// ReplaceStrategyBackup copies the table aside and restores it on failure
	ReplaceStrategyBackup ReplaceStrategy = "backup"
	// ReplaceStrategyTransactional relies on a single transaction only
	ReplaceStrategyTransactional ReplaceStrategy = "transactional"
)

// Config holds configuration for both refresh jobs.
// It is built once in main and passed down; nothing else reads the environment.
type Config struct {
	API      APIConfig
	Database DatabaseConfig
	Tables   TablesConfig
	LogLevel string
	Reports  ReportsConfig
	Snapshot SnapshotConfig
}

// APIConfig holds Artificial Analysis API settings
type APIConfig struct {
	Key     string
	BaseURL string
	Timeout time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL             string
	InsertBatchSize int
	ReplaceStrategy ReplaceStrategy
}

// TablesConfig names the tables the jobs read and write.
// Names may be schema qualified, e.g. "ims.20_aa_performance_metrics".
type TablesConfig struct {
	Metrics        string
	Mapping        string
	WorkingVersion string
}

// ReportsConfig holds settings for the optional Redis run-report store
type ReportsConfig struct {
	RedisAddress  string
	RedisPassword string
	RedisDB       int
	HistorySize   int
	KeyPrefix     string
}

// SnapshotConfig holds settings for the optional S3 raw snapshot archive
type SnapshotConfig struct {
	S3Bucket string
	S3Region string
	S3Prefix string
}

// Enabled reports whether run reports go to Redis
func (c ReportsConfig) Enabled() bool {
	return c.RedisAddress != ""
}

// Enabled reports whether raw snapshots are archived
func (c SnapshotConfig) Enabled() bool {
	return c.S3Bucket != ""
}

// Getenv is the lookup used by Load. os.Getenv in production, a map in tests.
type Getenv func(key string) string

func getEnvInt(getenv Getenv, key string, defaultValue int) int {
	val := getenv(key)
	if val == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getEnvDuration(getenv Getenv, key string, defaultValue time.Duration) time.Duration {
	val := getenv(key)
	if val == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(val)
	if err != nil {
		return defaultValue
	}

	return duration
}

func getEnvString(getenv Getenv, key string, defaultValue string) string {
	val := strings.TrimSpace(getenv(key))
	if val == "" {
		return defaultValue
	}
	return val
}

// Load reads configuration from the process environment.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads configuration through the given lookup. Only the database URL is
// required here; jobs that call the API must also call RequireAPIKey.
func LoadFrom(getenv Getenv) (*Config, error) {
	dbURL := getEnvString(getenv, DatabaseURLEnv, "")
	if dbURL == "" {
		return nil, ErrMissingDatabaseURL
	}

	strategy := ReplaceStrategy(strings.ToLower(getEnvString(getenv, "REPLACE_STRATEGY", string(ReplaceStrategyBackup))))
	switch strategy {
	case ReplaceStrategyBackup, ReplaceStrategyTransactional:
	default:
		return nil, fmt.Errorf("invalid REPLACE_STRATEGY %q", strategy)
	}

	cfg := &Config{
		API: APIConfig{
			Key:     getEnvString(getenv, APIKeyEnv, ""),
			BaseURL: strings.TrimRight(getEnvString(getenv, "AA_API_BASE_URL", "https://artificialanalysis.ai/api/v2"), "/"),
			Timeout: getEnvDuration(getenv, "AA_API_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:             dbURL,
			InsertBatchSize: getEnvInt(getenv, "DB_INSERT_BATCH_SIZE", 500),
			ReplaceStrategy: strategy,
		},
		Tables: TablesConfig{
			Metrics:        getEnvString(getenv, "METRICS_TABLE", "ims.20_aa_performance_metrics"),
			Mapping:        getEnvString(getenv, "MAPPING_TABLE", "ims.10_model_aa_mapping"),
			WorkingVersion: getEnvString(getenv, "WORKING_VERSION_TABLE", "public.working_version"),
		},
		LogLevel: getEnvString(getenv, "LOG_LEVEL", "info"),
		Reports: ReportsConfig{
			RedisAddress:  getEnvString(getenv, "REDIS_ADDRESS", ""),
			RedisPassword: getEnvString(getenv, "REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt(getenv, "REDIS_DB", 0),
			HistorySize:   getEnvInt(getenv, "REPORT_HISTORY_SIZE", 50),
			KeyPrefix:     getEnvString(getenv, "REPORT_KEY_PREFIX", "refresh"),
		},
		Snapshot: SnapshotConfig{
			S3Bucket: getEnvString(getenv, "SNAPSHOT_S3_BUCKET", ""),
			S3Region: getEnvString(getenv, "SNAPSHOT_S3_REGION", "us-east-1"),
			S3Prefix: getEnvString(getenv, "SNAPSHOT_S3_PREFIX", "aa-snapshots/"),
		},
	}

	if cfg.Database.InsertBatchSize <= 0 {
		cfg.Database.InsertBatchSize = 500
	}

	return cfg, nil
}

// RequireAPIKey fails when the API key is missing or left at the placeholder value
func (c *Config) RequireAPIKey() error {
	if c.API.Key == "" || c.API.Key == apiKeyPlaceholder {
		return ErrMissingAPIKey
	}
	return nil
}
