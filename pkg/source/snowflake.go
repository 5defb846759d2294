// pkg/source/snowflake.go
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	sf "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/parcelworks/housing-cleanse/pkg/config"
)

// SnowflakeSource reads a Snowflake table
type SnowflakeSource struct {
	db     *sqlx.DB
	logger *zap.Logger
	cfg    *config.SnowflakeConfig
	schema string
	table  string
}

// NewSnowflakeSource creates a new Snowflake source
func NewSnowflakeSource(ctx context.Context, cfg *config.SnowflakeConfig, schema, table string) (*SnowflakeSource, error) {
	logger := zap.L().Named("snowflake-source")

	// Create DSN using Snowflake's DSN builder
	sfConfig := &sf.Config{
		Account:       cfg.Account,
		User:          cfg.User,
		Password:      cfg.Password,
		Database:      cfg.Database,
		Warehouse:     cfg.Warehouse,
		Role:          cfg.Role,
		Authenticator: cfg.Authenticator,
	}

	// Log connection attempt (without credentials)
	logger.Info("Connecting to Snowflake",
		zap.String("account", cfg.Account),
		zap.String("user", cfg.User),
		zap.String("database", cfg.Database),
		zap.String("warehouse", cfg.Warehouse),
		zap.String("table", schema+"."+table))

	dsn, err := sf.DSN(sfConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build Snowflake DSN: %w", err)
	}

	db, err := sqlx.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Snowflake connection: %w", err)
	}

	// Configure connection pool
	ApplyConnectionSettings(
		db.DB,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	// Set query timeout if configured
	if cfg.QueryTimeout > 0 {
		_, err = db.ExecContext(
			ctx,
			fmt.Sprintf("ALTER SESSION SET STATEMENT_TIMEOUT_IN_SECONDS = %d",
				int(cfg.QueryTimeout.Seconds())),
		)
		if err != nil {
			logger.Warn("Failed to set statement timeout", zap.Error(err))
		}
	}

	// Verify connection
	if err := PingWithTimeout(ctx, db.DB, 10*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to Snowflake: %w", err)
	}

	src := &SnowflakeSource{
		db:     db,
		logger: logger,
		cfg:    cfg,
		schema: schema,
		table:  table,
	}

	LogConnectionStats(logger, cfg.Database, db.DB)
	return src, nil
}

// Name identifies the source table
func (s *SnowflakeSource) Name() string {
	return fmt.Sprintf("%s.%s", s.schema, s.table)
}

// Read loads the full table, scanning each row into a column-keyed map.
// Snowflake reports upper-cased column names; the loader's name matching
// absorbs that.
func (s *SnowflakeSource) Read(ctx context.Context) (*RawTable, error) {
	queryCtx := ctx
	if s.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, s.cfg.QueryTimeout)
		defer cancel()
	}

	query := fmt.Sprintf("SELECT * FROM %s.%s", s.schema, s.table)
	rows, err := s.db.QueryxContext(queryCtx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.Name(), err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve columns of %s: %w", s.Name(), err)
	}

	table := &RawTable{Name: s.Name(), Columns: columns}
	for rows.Next() {
		row := make(map[string]interface{}, len(columns))
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("failed to scan row %d of %s: %w", len(table.Rows)+1, s.Name(), err)
		}
		normalizeRow(row)
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", s.Name(), err)
	}

	s.logger.Info("Read Snowflake source",
		zap.String("table", s.Name()),
		zap.Int("rows", table.RowCount()))

	return table, nil
}

// Close closes the database connection
func (s *SnowflakeSource) Close() error {
	s.logger.Info("Closing Snowflake connection")
	LogConnectionStats(s.logger, s.cfg.Database, s.db.DB)
	return s.db.Close()
}
