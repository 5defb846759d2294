// pkg/config/config_test.go
package config

import (
	"testing"

	"github.com/snowflakedb/gosnowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearRunEnv blanks every variable LoadConfig reads so tests see the
// documented defaults regardless of the host environment. getEnv treats
// an empty value as unset.
func clearRunEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"SOURCE_KIND", "SOURCE_PATH", "SOURCE_SHEET", "SOURCE_SCHEMA", "SOURCE_TABLE",
		"OUTPUT_KIND", "OUTPUT_PATH", "OUTPUT_SCHEMA", "OUTPUT_TABLE",
		"AUDIT_ENABLED", "AUDIT_TABLE", "CHUNK_SIZE", "LOG_LEVEL", "LOG_FORMAT",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func validConfig() *Config {
	return &Config{
		Source:    SourceConfig{Kind: KindCSV, Path: "/data/sales.csv"},
		ChunkSize: 5000,
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearRunEnv(t)

	cfg := LoadConfig()

	assert.Equal(t, KindCSV, cfg.Source.Kind)
	assert.Equal(t, "", cfg.Source.Path)
	assert.Equal(t, "public", cfg.Source.Schema)
	assert.Equal(t, "housing_sales", cfg.Source.Table)
	assert.Equal(t, "", cfg.Output.Kind)
	assert.Equal(t, "housing_sales_cleaned", cfg.Output.Table)
	assert.False(t, cfg.AuditEnabled)
	assert.Equal(t, "cleansing_audit", cfg.AuditTable)
	assert.Equal(t, 5000, cfg.ChunkSize)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearRunEnv(t)
	t.Setenv("SOURCE_KIND", "xlsx")
	t.Setenv("SOURCE_PATH", "/data/sales.xlsx")
	t.Setenv("SOURCE_SHEET", "Sales")
	t.Setenv("OUTPUT_KIND", "csv")
	t.Setenv("OUTPUT_PATH", "/data/cleaned.csv")
	t.Setenv("AUDIT_ENABLED", "true")
	t.Setenv("CHUNK_SIZE", "250")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "console")

	cfg := LoadConfig()

	assert.Equal(t, KindXLSX, cfg.Source.Kind)
	assert.Equal(t, "/data/sales.xlsx", cfg.Source.Path)
	assert.Equal(t, "Sales", cfg.Source.Sheet)
	assert.Equal(t, KindCSV, cfg.Output.Kind)
	assert.Equal(t, "/data/cleaned.csv", cfg.Output.Path)
	assert.True(t, cfg.AuditEnabled)
	assert.Equal(t, 250, cfg.ChunkSize)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestEnvHelpers_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "lots")
	t.Setenv("AUDIT_ENABLED", "maybe")

	assert.Equal(t, 5000, getEnvAsInt("CHUNK_SIZE", 5000))
	assert.False(t, getEnvAsBool("AUDIT_ENABLED", false))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "csv source with path",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "csv source without path",
			mutate:  func(cfg *Config) { cfg.Source.Path = "" },
			wantErr: "csv source requires SOURCE_PATH",
		},
		{
			name: "xlsx source without path",
			mutate: func(cfg *Config) {
				cfg.Source.Kind = KindXLSX
				cfg.Source.Path = ""
			},
			wantErr: "xlsx source requires SOURCE_PATH",
		},
		{
			name:    "unknown source kind",
			mutate:  func(cfg *Config) { cfg.Source.Kind = "ftp" },
			wantErr: "unknown source kind: ftp",
		},
		{
			name:    "postgres source without credentials",
			mutate:  func(cfg *Config) { cfg.Source.Kind = KindPostgres },
			wantErr: "postgres source requires PostgreSQL configuration",
		},
		{
			name:    "snowflake source without credentials",
			mutate:  func(cfg *Config) { cfg.Source.Kind = KindSnowflake },
			wantErr: "snowflake source requires Snowflake configuration",
		},
		{
			name:    "unknown output kind",
			mutate:  func(cfg *Config) { cfg.Output.Kind = "sqlite" },
			wantErr: "unknown output kind: sqlite",
		},
		{
			name:    "csv output without path",
			mutate:  func(cfg *Config) { cfg.Output.Kind = KindCSV },
			wantErr: "csv output requires OUTPUT_PATH",
		},
		{
			name:    "postgres output without credentials",
			mutate:  func(cfg *Config) { cfg.Output.Kind = KindPostgres },
			wantErr: "postgres output requires PostgreSQL configuration",
		},
		{
			name:    "audit without postgres",
			mutate:  func(cfg *Config) { cfg.AuditEnabled = true },
			wantErr: "audit persistence requires PostgreSQL configuration",
		},
		{
			name:    "non-positive chunk size",
			mutate:  func(cfg *Config) { cfg.ChunkSize = 0 },
			wantErr: "chunk size must be positive",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)

			err := cfg.Validate()

			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestConfig_Validate_PostgresConfigured(t *testing.T) {
	cfg := validConfig()
	cfg.Output.Kind = KindPostgres
	cfg.AuditEnabled = true
	cfg.Postgres = &PostgresConfig{User: "analyst", Password: "secret", Database: "housing"}

	assert.NoError(t, cfg.Validate())
}

func TestConfig_LoadDatabases_FileOnlyRunNeedsNoCredentials(t *testing.T) {
	cfg := validConfig()

	require.NoError(t, cfg.LoadDatabases())

	assert.Nil(t, cfg.Postgres)
	assert.Nil(t, cfg.Snowflake)
}

func TestConfig_LoadDatabases_PostgresFromEnv(t *testing.T) {
	t.Setenv("POSTGRES_USER", "analyst")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "housing")
	t.Setenv("POSTGRES_HOST", "")
	t.Setenv("POSTGRES_PORT", "")
	t.Setenv("POSTGRES_SSLMODE", "")

	cfg := validConfig()
	cfg.AuditEnabled = true
	require.NoError(t, cfg.LoadDatabases())

	require.NotNil(t, cfg.Postgres)
	assert.Equal(t, "analyst", cfg.Postgres.User)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, "disable", cfg.Postgres.SSLMode)
	assert.Nil(t, cfg.Snowflake)
}

func TestConfig_LoadDatabases_MissingPostgresCredentials(t *testing.T) {
	t.Setenv("POSTGRES_USER", "")
	t.Setenv("POSTGRES_PASSWORD", "")
	t.Setenv("POSTGRES_DB", "")

	cfg := validConfig()
	cfg.AuditEnabled = true
	err := cfg.LoadDatabases()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load PostgreSQL configuration")
	assert.Contains(t, err.Error(), "POSTGRES_USER")
}

func TestLoadSnowflakeConfig(t *testing.T) {
	t.Setenv("SNOWFLAKE_USER", "loader")
	t.Setenv("SNOWFLAKE_PASSWORD", "secret")
	t.Setenv("SNOWFLAKE_ACCOUNT", "xy12345")
	t.Setenv("SNOWFLAKE_WAREHOUSE", "COMPUTE_WH")
	t.Setenv("SNOWFLAKE_DATABASE", "")
	t.Setenv("SNOWFLAKE_ROLE", "")
	t.Setenv("SNOWFLAKE_AUTHENTICATOR", "")

	cfg, err := LoadSnowflakeConfig()

	require.NoError(t, err)
	assert.Equal(t, "loader", cfg.User)
	assert.Equal(t, "HOUSING", cfg.Database)
	assert.Equal(t, gosnowflake.AuthTypeSnowflake, cfg.Authenticator)
	assert.Equal(t, 10, cfg.MaxOpenConns)
}

func TestLoadSnowflakeConfig_MissingAccount(t *testing.T) {
	t.Setenv("SNOWFLAKE_USER", "loader")
	t.Setenv("SNOWFLAKE_PASSWORD", "secret")
	t.Setenv("SNOWFLAKE_ACCOUNT", "")

	_, err := LoadSnowflakeConfig()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SNOWFLAKE_ACCOUNT")
}

func TestLoadSnowflakeConfig_AuthenticatorMapping(t *testing.T) {
	t.Setenv("SNOWFLAKE_USER", "loader")
	t.Setenv("SNOWFLAKE_PASSWORD", "secret")
	t.Setenv("SNOWFLAKE_ACCOUNT", "xy12345")
	t.Setenv("SNOWFLAKE_WAREHOUSE", "COMPUTE_WH")

	tests := []struct {
		value string
		want  gosnowflake.AuthType
	}{
		{"externalbrowser", gosnowflake.AuthTypeExternalBrowser},
		{"oauth", gosnowflake.AuthTypeOAuth},
		{"jwt", gosnowflake.AuthTypeJwt},
		{"something_else", gosnowflake.AuthTypeSnowflake},
	}
	for _, tc := range tests {
		t.Run(tc.value, func(t *testing.T) {
			t.Setenv("SNOWFLAKE_AUTHENTICATOR", tc.value)

			cfg, err := LoadSnowflakeConfig()

			require.NoError(t, err)
			assert.Equal(t, tc.want, cfg.Authenticator)
		})
	}
}

func TestPostgresConfig_ConnectionString(t *testing.T) {
	cfg := &PostgresConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "analyst",
		Password: "secret",
		Database: "housing",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=analyst password=secret dbname=housing sslmode=require",
		cfg.ConnectionString())
}

func TestSnowflakeConfig_ConnectionString(t *testing.T) {
	cfg := &SnowflakeConfig{
		User:      "loader",
		Password:  "secret",
		Account:   "xy12345",
		Database:  "HOUSING",
		Warehouse: "COMPUTE_WH",
	}

	dsn := cfg.ConnectionString()
	assert.Contains(t, dsn, "loader:secret@xy12345/HOUSING")
	assert.Contains(t, dsn, "warehouse=COMPUTE_WH")
	assert.NotContains(t, dsn, "&role=")

	cfg.Role = "LOADER_ROLE"
	assert.Contains(t, cfg.ConnectionString(), "&role=LOADER_ROLE")
}
