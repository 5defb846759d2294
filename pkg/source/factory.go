// pkg/source/factory.go
package source

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/parcelworks/housing-cleanse/pkg/config"
)

// SourceFactory creates tabular sources from configuration
type SourceFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSourceFactory creates a new source factory
func NewSourceFactory(cfg *config.Config, logger *zap.Logger) *SourceFactory {
	return &SourceFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// Create builds the source selected by the configuration
func (f *SourceFactory) Create(ctx context.Context) (TabularSource, error) {
	src := f.cfg.Source

	switch src.Kind {
	case config.KindCSV:
		f.logger.Info("Creating CSV source", zap.String("path", src.Path))
		return NewCSVSource(src.Path), nil

	case config.KindXLSX:
		f.logger.Info("Creating XLSX source",
			zap.String("path", src.Path),
			zap.String("sheet", src.Sheet))
		return NewXLSXSource(src.Path, src.Sheet), nil

	case config.KindPostgres:
		f.logger.Info("Creating PostgreSQL source")
		pg, err := NewPostgresSource(ctx, f.cfg.Postgres, src.Schema, src.Table)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL source: %w", err)
		}
		return pg, nil

	case config.KindSnowflake:
		f.logger.Info("Creating Snowflake source")
		snow, err := NewSnowflakeSource(ctx, f.cfg.Snowflake, src.Schema, src.Table)
		if err != nil {
			return nil, fmt.Errorf("failed to create Snowflake source: %w", err)
		}
		return snow, nil

	default:
		return nil, fmt.Errorf("unknown source kind: %s", src.Kind)
	}
}
