package cleanse

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/parcelworks/housing-cleanse/pkg/model"
)

// ColumnPrunePass projects the records onto the cleaned schema, dropping
// the composite address columns, the tax district and the raw sale date
// in favor of the parsed and normalized fields. It refuses to run while
// the data still shows unparsed addresses or time-bearing dates.
type ColumnPrunePass struct {
	logger *zap.Logger
}

// NewColumnPrunePass creates the column pruner
func NewColumnPrunePass() *ColumnPrunePass {
	return &ColumnPrunePass{logger: zap.L().Named(PassPruneColumns)}
}

// Name returns the canonical pass name
func (p *ColumnPrunePass) Name() string { return PassPruneColumns }

// Apply validates that the prerequisite passes have done their work and
// writes the projected records onto the dataset
func (p *ColumnPrunePass) Apply(ctx context.Context, ds *Dataset) (*PassResult, error) {
	result := NewPassResult(p.Name())
	result.RecordsExamined = len(ds.Records)

	if err := p.checkPreconditions(ds); err != nil {
		result.Complete(false)
		return result, err
	}

	cleaned := make([]model.CleanedSaleRecord, 0, len(ds.Records))
	for i := range ds.Records {
		r := &ds.Records[i]
		cleaned = append(cleaned, model.CleanedSaleRecord{
			UniqueID:       r.UniqueID,
			ParcelID:       r.ParcelID,
			LandUse:        r.LandUse,
			SaleDate:       r.SaleDate,
			SalePrice:      r.SalePrice,
			LegalReference: r.LegalReference,
			SoldAsVacant:   r.SoldAsVacant,
			PropertyStreet: r.PropertyStreet,
			PropertyCity:   r.PropertyCity,
			OwnerStreet:    r.OwnerStreet,
			OwnerCity:      r.OwnerCity,
			OwnerState:     r.OwnerState,
		})
	}

	ds.Cleaned = cleaned
	result.RecordsModified = len(cleaned)

	p.logger.Info("Pruned raw columns",
		zap.Int("records", len(cleaned)),
		zap.Strings("droppedColumns", []string{
			model.ColPropertyAddress,
			model.ColOwnerAddress,
			model.ColTaxDistrict,
		}))

	result.Complete(true)
	ds.MarkApplied(p.Name())
	return result, nil
}

// checkPreconditions inspects the data for evidence that a prerequisite
// pass has not run. A pass already marked applied on this dataset is
// trusted, so records whose addresses legitimately failed to parse do
// not count against it.
func (p *ColumnPrunePass) checkPreconditions(ds *Dataset) error {
	if !ds.Applied(PassNormalizeDates) {
		if n := countTimeBearingDates(ds.Records); n > 0 {
			return &OrderingViolationError{
				Pass:   p.Name(),
				Missed: PassNormalizeDates,
				Detail: fmt.Sprintf("%d records carry time-bearing sale dates", n),
			}
		}
	}

	if !ds.Applied(PassParsePropertyAddress) {
		if n := countUnparsedProperty(ds.Records); n > 0 {
			return &OrderingViolationError{
				Pass:   p.Name(),
				Missed: PassParsePropertyAddress,
				Detail: fmt.Sprintf("%d property addresses are unparsed", n),
			}
		}
	}

	if !ds.Applied(PassParseOwnerAddress) {
		if n := countUnparsedOwner(ds.Records); n > 0 {
			return &OrderingViolationError{
				Pass:   p.Name(),
				Missed: PassParseOwnerAddress,
				Detail: fmt.Sprintf("%d owner addresses are unparsed", n),
			}
		}
	}

	return nil
}

func countTimeBearingDates(records []model.SaleRecord) int {
	n := 0
	for i := range records {
		if records[i].SaleDate != nil && hasClock(*records[i].SaleDate) {
			n++
		}
	}
	return n
}

func countUnparsedProperty(records []model.SaleRecord) int {
	n := 0
	for i := range records {
		r := &records[i]
		if r.HasPropertyAddress() && r.PropertyStreet == nil && r.PropertyCity == nil {
			n++
		}
	}
	return n
}

func countUnparsedOwner(records []model.SaleRecord) int {
	n := 0
	for i := range records {
		r := &records[i]
		if r.HasOwnerAddress() && r.OwnerStreet == nil && r.OwnerCity == nil && r.OwnerState == nil {
			n++
		}
	}
	return n
}
