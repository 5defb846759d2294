// pkg/sink/sink.go
package sink

import (
	"context"
	"strconv"
	"time"

	"github.com/parcelworks/housing-cleanse/pkg/model"
)

// RecordSink persists cleaned sale records
type RecordSink interface {
	// Name identifies the sink for logging
	Name() string
	// Write persists the records, returning how many were written
	Write(ctx context.Context, records []model.CleanedSaleRecord) (int64, error)
	// Close releases any resources held by the sink
	Close() error
}

// cleanedColumns is the output column order shared by every sink
func cleanedColumns() []string {
	return []string{
		model.ColUniqueID,
		model.ColParcelID,
		model.ColLandUse,
		model.ColSaleDate,
		model.ColSalePrice,
		model.ColLegalReference,
		model.ColSoldAsVacant,
		model.ColPropertyStreet,
		model.ColPropertyCity,
		model.ColOwnerStreet,
		model.ColOwnerCity,
		model.ColOwnerState,
	}
}

// recordValues renders a record's fields in cleanedColumns order for
// parameterized inserts, keeping nulls null
func recordValues(r *model.CleanedSaleRecord) []interface{} {
	return []interface{}{
		r.UniqueID,
		r.ParcelID,
		r.LandUse,
		r.SaleDate,
		r.SalePrice,
		r.LegalReference,
		r.SoldAsVacant,
		r.PropertyStreet,
		r.PropertyCity,
		r.OwnerStreet,
		r.OwnerCity,
		r.OwnerState,
	}
}

// recordStrings renders a record's fields in cleanedColumns order for
// text output, with nulls as empty strings and dates as calendar days
func recordStrings(r *model.CleanedSaleRecord) []string {
	return []string{
		strconv.Itoa(r.UniqueID),
		r.ParcelID,
		r.LandUse,
		dateString(r.SaleDate),
		priceString(r.SalePrice),
		r.LegalReference,
		r.SoldAsVacant,
		stringOrEmpty(r.PropertyStreet),
		stringOrEmpty(r.PropertyCity),
		stringOrEmpty(r.OwnerStreet),
		stringOrEmpty(r.OwnerCity),
		stringOrEmpty(r.OwnerState),
	}
}

// Helper functions

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func dateString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func priceString(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
