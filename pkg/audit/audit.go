// pkg/audit/audit.go
package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/parcelworks/housing-cleanse/pkg/model"
)

// Trail persists cleaning operations to a Postgres audit table so every
// mutation a run performed can be reviewed later
type Trail struct {
	db     *sqlx.DB
	table  string
	logger *zap.Logger
}

// NewTrail creates an audit trail writer and ensures its table exists
func NewTrail(db *sqlx.DB, table string) (*Trail, error) {
	if db == nil {
		return nil, errors.New("database connection cannot be nil")
	}
	if table == "" {
		table = "cleansing_audit"
	}

	trail := &Trail{
		db:     db,
		table:  table,
		logger: zap.L().Named("audit"),
	}

	if err := trail.setupAuditTable(); err != nil {
		return nil, fmt.Errorf("failed to setup audit table: %w", err)
	}

	return trail, nil
}

// setupAuditTable ensures the audit table exists
func (t *Trail) setupAuditTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	createTableSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS public.%s (
			id SERIAL PRIMARY KEY,
			run_id UUID NOT NULL,
			pass TEXT NOT NULL,
			column_name TEXT NOT NULL,
			record_id BIGINT NOT NULL,
			original_value TEXT,
			new_value TEXT NOT NULL,
			operation TEXT NOT NULL,
			reason TEXT NOT NULL,
			cleaned_at TIMESTAMP WITH TIME ZONE NOT NULL
		)
	`, quoteIdentifier(t.table))

	_, err := t.db.ExecContext(ctx, createTableSQL)
	if err != nil {
		return fmt.Errorf("failed to create audit table: %w", err)
	}

	t.logger.Info("Ensured audit table exists", zap.String("table", t.table))
	return nil
}

// RecordRun batch inserts the operations of one run into the audit table
func (t *Trail) RecordRun(ctx context.Context, runID string, operations []model.CleaningOperation) error {
	if len(operations) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				t.logger.Error("Failed to rollback transaction",
					zap.Error(rbErr),
					zap.Error(err))
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO public.%s
		(run_id, pass, column_name, record_id, original_value, new_value,
		 operation, reason, cleaned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, quoteIdentifier(t.table)))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, op := range operations {
		_, err = stmt.ExecContext(ctx,
			runID,
			op.Pass,
			op.ColumnName,
			op.RecordID,
			nullableText(op.OriginalValue),
			op.NewValue,
			op.Operation,
			op.Reason,
			op.CleanedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert cleaning operation: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	t.logger.Info("Recorded cleaning operations",
		zap.String("runID", runID),
		zap.Int("count", len(operations)))
	return nil
}

// Helper functions

// nullableText renders an original value for storage, keeping nulls null
func nullableText(v interface{}) *string {
	if v == nil {
		return nil
	}
	s := fmt.Sprintf("%v", v)
	return &s
}

// quoteIdentifier quotes a Postgres identifier
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
