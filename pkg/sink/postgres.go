// pkg/sink/postgres.go
package sink

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/parcelworks/housing-cleanse/pkg/model"
)

// PostgresSink writes cleaned records to a PostgreSQL table, creating
// the table on first write. The connection is owned by the caller.
type PostgresSink struct {
	db        *sqlx.DB
	schema    string
	table     string
	chunkSize int
	logger    *zap.Logger
}

// NewPostgresSink creates a sink writing to schema.table in chunks
func NewPostgresSink(db *sqlx.DB, schema, table string, chunkSize int) *PostgresSink {
	if schema == "" {
		schema = "public"
	}
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	return &PostgresSink{
		db:        db,
		schema:    schema,
		table:     table,
		chunkSize: chunkSize,
		logger:    zap.L().Named("postgres-sink"),
	}
}

// Name identifies the output table
func (s *PostgresSink) Name() string {
	return fmt.Sprintf("%s.%s", s.schema, s.table)
}

// Write ensures the table exists and batch inserts every record
func (s *PostgresSink) Write(ctx context.Context, records []model.CleanedSaleRecord) (int64, error) {
	if err := s.createTableIfNotExists(ctx); err != nil {
		return 0, err
	}

	if len(records) == 0 {
		return 0, nil
	}

	columns := cleanedColumns()
	columnStr := strings.Join(columns, ", ")

	var totalInserted int64

	for i := 0; i < len(records); i += s.chunkSize {
		end := i + s.chunkSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[i:end]

		// Build placeholders for this batch
		placeholders := make([]string, len(batch))
		args := make([]interface{}, 0, len(batch)*len(columns))

		for j := range batch {
			rowPlaceholders := make([]string, len(columns))
			for k, val := range recordValues(&batch[j]) {
				paramIndex := j*len(columns) + k + 1
				rowPlaceholders[k] = fmt.Sprintf("$%d", paramIndex)
				args = append(args, val)
			}
			placeholders[j] = fmt.Sprintf("(%s)", strings.Join(rowPlaceholders, ", "))
		}

		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
			s.Name(), columnStr, strings.Join(placeholders, ", "))

		batchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		result, err := s.db.ExecContext(batchCtx, query, args...)
		cancel()
		if err != nil {
			return totalInserted, fmt.Errorf("batch insert into %s failed: %w", s.Name(), err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			s.logger.Warn("Couldn't get rows affected", zap.Error(err))
		} else {
			totalInserted += rowsAffected
		}
	}

	s.logger.Info("Wrote cleaned records",
		zap.String("table", s.Name()),
		zap.Int64("records", totalInserted))

	return totalInserted, nil
}

// Close is a no-op; the caller owns the connection
func (s *PostgresSink) Close() error {
	return nil
}

// createTableIfNotExists creates the output table when missing
func (s *PostgresSink) createTableIfNotExists(ctx context.Context) error {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = $1 AND table_name = $2
		)
	`

	if err := s.db.QueryRowContext(ctx, query, s.schema, s.table).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check if table exists: %w", err)
	}

	if exists {
		s.logger.Debug("Table already exists", zap.String("table", s.Name()))
		return nil
	}

	columnDefs := []string{
		"unique_id BIGINT NOT NULL",
		"parcel_id TEXT NOT NULL",
		"land_use TEXT",
		"sale_date DATE",
		"sale_price DOUBLE PRECISION",
		"legal_reference TEXT",
		"sold_as_vacant TEXT",
		"property_street TEXT",
		"property_city TEXT",
		"owner_street TEXT",
		"owner_city TEXT",
		"owner_state TEXT",
	}

	createSQL := fmt.Sprintf(
		"CREATE TABLE %s (\n\t%s,\n\tPRIMARY KEY (unique_id)\n)",
		s.Name(),
		strings.Join(columnDefs, ",\n\t"),
	)

	createCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := s.db.ExecContext(createCtx, createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.Name(), err)
	}

	s.logger.Info("Created table", zap.String("table", s.Name()))
	return nil
}
