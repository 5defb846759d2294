// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Source and output kinds
const (
	KindCSV       = "csv"
	KindXLSX      = "xlsx"
	KindPostgres  = "postgres"
	KindSnowflake = "snowflake"
)

// Config represents the application configuration
type Config struct {
	// Input source
	Source SourceConfig

	// Cleaned-output sink (Kind "" disables output writing)
	Output OutputConfig

	// Database connections, loaded only when a component needs them
	Snowflake *SnowflakeConfig
	Postgres  *PostgresConfig

	// Audit trail persistence
	AuditEnabled bool
	AuditTable   string

	// Batch settings
	ChunkSize int

	// Logging
	LogLevel  string
	LogFormat string
}

// SourceConfig selects and parameterizes the tabular input
type SourceConfig struct {
	Kind   string // csv, xlsx, postgres, snowflake
	Path   string // file path for csv/xlsx
	Sheet  string // sheet name for xlsx ("" means first sheet)
	Schema string // database schema for postgres/snowflake
	Table  string // database table for postgres/snowflake
}

// OutputConfig selects and parameterizes the cleaned-output sink
type OutputConfig struct {
	Kind   string // "", csv, postgres
	Path   string
	Schema string
	Table  string
}

// LoadConfig loads configuration from environment variables. Callers
// overlay job-file settings and flags afterwards, then finish with
// LoadDatabases and Validate once the final source and output are known.
func LoadConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Kind:   getEnv("SOURCE_KIND", KindCSV),
			Path:   getEnv("SOURCE_PATH", ""),
			Sheet:  getEnv("SOURCE_SHEET", ""),
			Schema: getEnv("SOURCE_SCHEMA", "public"),
			Table:  getEnv("SOURCE_TABLE", "housing_sales"),
		},
		Output: OutputConfig{
			Kind:   getEnv("OUTPUT_KIND", ""),
			Path:   getEnv("OUTPUT_PATH", ""),
			Schema: getEnv("OUTPUT_SCHEMA", "public"),
			Table:  getEnv("OUTPUT_TABLE", "housing_sales_cleaned"),
		},
		AuditEnabled: getEnvAsBool("AUDIT_ENABLED", false),
		AuditTable:   getEnv("AUDIT_TABLE", "cleansing_audit"),
		ChunkSize:    getEnvAsInt("CHUNK_SIZE", 5000),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),
	}
}

// LoadDatabases loads the database configurations the current source,
// output and audit settings require. File-only runs need no credentials.
func (c *Config) LoadDatabases() error {
	if c.needsPostgres() && c.Postgres == nil {
		pgConfig, err := LoadPostgresConfig()
		if err != nil {
			return errors.New("failed to load PostgreSQL configuration: " + err.Error())
		}
		c.Postgres = pgConfig
	}

	if c.Source.Kind == KindSnowflake && c.Snowflake == nil {
		snowConfig, err := LoadSnowflakeConfig()
		if err != nil {
			return errors.New("failed to load Snowflake configuration: " + err.Error())
		}
		c.Snowflake = snowConfig
	}

	return nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case KindCSV, KindXLSX:
		if c.Source.Path == "" {
			return fmt.Errorf("%s source requires SOURCE_PATH", c.Source.Kind)
		}
	case KindPostgres:
		if c.Postgres == nil {
			return errors.New("postgres source requires PostgreSQL configuration")
		}
	case KindSnowflake:
		if c.Snowflake == nil {
			return errors.New("snowflake source requires Snowflake configuration")
		}
	default:
		return fmt.Errorf("unknown source kind: %s", c.Source.Kind)
	}

	switch c.Output.Kind {
	case "":
		// Output writing disabled
	case KindCSV:
		if c.Output.Path == "" {
			return errors.New("csv output requires OUTPUT_PATH")
		}
	case KindPostgres:
		if c.Postgres == nil {
			return errors.New("postgres output requires PostgreSQL configuration")
		}
	default:
		return fmt.Errorf("unknown output kind: %s", c.Output.Kind)
	}

	if c.AuditEnabled && c.Postgres == nil {
		return errors.New("audit persistence requires PostgreSQL configuration")
	}

	if c.ChunkSize <= 0 {
		return errors.New("chunk size must be positive")
	}

	return nil
}

func (c *Config) needsPostgres() bool {
	return c.Source.Kind == KindPostgres || c.Output.Kind == KindPostgres || c.AuditEnabled
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
