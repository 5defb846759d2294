// pkg/source/postgres.go
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/parcelworks/housing-cleanse/pkg/config"
)

// PostgresSource reads a PostgreSQL table
type PostgresSource struct {
	db     *sqlx.DB
	logger *zap.Logger
	cfg    *config.PostgresConfig
	schema string
	table  string
}

// OpenPostgres opens a pooled PostgreSQL connection and verifies it.
// Sinks and the audit trail share connections opened here.
func OpenPostgres(ctx context.Context, cfg *config.PostgresConfig) (*sqlx.DB, error) {
	logger := zap.L().Named("postgres")

	// Log connection attempt
	logger.Info("Connecting to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	db, err := sqlx.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL connection: %w", err)
	}

	// Configure connection pool
	ApplyConnectionSettings(
		db.DB,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	// Set statement timeout if configured
	if cfg.StatementTimeout > 0 {
		_, err = db.ExecContext(
			ctx,
			fmt.Sprintf("SET statement_timeout = %d", cfg.StatementTimeout.Milliseconds()),
		)
		if err != nil {
			logger.Warn("Failed to set statement timeout", zap.Error(err))
		}
	}

	// Verify connection
	if err := PingWithTimeout(ctx, db.DB, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	LogConnectionStats(logger, cfg.Database, db.DB)
	return db, nil
}

// NewPostgresSource creates and initializes a new PostgreSQL source
func NewPostgresSource(ctx context.Context, cfg *config.PostgresConfig, schema, table string) (*PostgresSource, error) {
	db, err := OpenPostgres(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &PostgresSource{
		db:     db,
		logger: zap.L().Named("postgres-source"),
		cfg:    cfg,
		schema: schema,
		table:  table,
	}, nil
}

// Name identifies the source table
func (s *PostgresSource) Name() string {
	return fmt.Sprintf("%s.%s", s.schema, s.table)
}

// Read loads the full table, scanning each row into a column-keyed map
func (s *PostgresSource) Read(ctx context.Context) (*RawTable, error) {
	queryCtx := ctx
	if s.cfg.StatementTimeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, s.cfg.StatementTimeout)
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
		// lib/pq hands text columns back as byte slices
		normalizeRow(row)
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", s.Name(), err)
	}

	s.logger.Info("Read PostgreSQL source",
		zap.String("table", s.Name()),
		zap.Int("rows", table.RowCount()))

	return table, nil
}

// Close closes the database connection
func (s *PostgresSource) Close() error {
	s.logger.Info("Closing PostgreSQL connection")
	LogConnectionStats(s.logger, s.cfg.Database, s.db.DB)
	return s.db.Close()
}
