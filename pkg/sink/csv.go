// pkg/sink/csv.go
package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/parcelworks/housing-cleanse/pkg/model"
)

// CSVSink writes cleaned records to a CSV file with a header row
type CSVSink struct {
	path   string
	logger *zap.Logger
}

// NewCSVSink creates a sink writing to the given path
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{
		path:   path,
		logger: zap.L().Named("csv-sink"),
	}
}

// Name identifies the output file
func (s *CSVSink) Name() string {
	return s.path
}

// Write creates the file and writes every record, header first
func (s *CSVSink) Write(ctx context.Context, records []model.CleanedSaleRecord) (int64, error) {
	file, err := os.Create(s.path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", s.path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(cleanedColumns()); err != nil {
		return 0, fmt.Errorf("failed to write header to %s: %w", s.path, err)
	}

	var written int64
	for i := range records {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if err := writer.Write(recordStrings(&records[i])); err != nil {
			return written, fmt.Errorf("failed to write record %d to %s: %w",
				records[i].UniqueID, s.path, err)
		}
		written++
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return written, fmt.Errorf("failed to flush %s: %w", s.path, err)
	}

	s.logger.Info("Wrote cleaned records",
		zap.String("path", s.path),
		zap.Int64("records", written))

	return written, nil
}

// Close is a no-op; the file handle only lives for the duration of Write
func (s *CSVSink) Close() error {
	return nil
}
