package cleanse

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/parcelworks/housing-cleanse/pkg/model"
)

// DateNormalizationPass strips the time component from sale dates,
// leaving a pure calendar date. Null dates pass through unchanged and
// applying the pass twice yields the same values as once.
type DateNormalizationPass struct {
	logger *zap.Logger
}

// NewDateNormalizationPass creates the sale date normalizer
func NewDateNormalizationPass() *DateNormalizationPass {
	return &DateNormalizationPass{logger: zap.L().Named(PassNormalizeDates)}
}

// Name returns the canonical pass name
func (p *DateNormalizationPass) Name() string { return PassNormalizeDates }

// Apply truncates every non-null sale date to its calendar day
func (p *DateNormalizationPass) Apply(ctx context.Context, ds *Dataset) (*PassResult, error) {
	result := NewPassResult(p.Name())
	result.RecordsExamined = len(ds.Records)

	for i := range ds.Records {
		record := &ds.Records[i]
		if record.SaleDate == nil {
			continue
		}

		normalized := truncateToDay(*record.SaleDate)
		if normalized.Equal(*record.SaleDate) {
			continue
		}

		original := record.SaleDate.Format(time.RFC3339)
		record.SaleDate = &normalized
		result.RecordsModified++
		result.OpsRecorded++

		ds.RecordOp(model.NewCleaningOperation(
			p.Name(), model.ColSaleDate, record.UniqueID,
			original, normalized.Format("2006-01-02"),
			"date_normalization", "stripped_time_component"))
	}

	p.logger.Info("Normalized sale dates",
		zap.Int("records", result.RecordsExamined),
		zap.Int("modified", result.RecordsModified))

	result.Complete(true)
	ds.MarkApplied(p.Name())
	return result, nil
}

// truncateToDay keeps the calendar day and drops the clock
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// hasClock reports whether a time carries a non-midnight time component
func hasClock(t time.Time) bool {
	return t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0
}
