package cleanse

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/parcelworks/housing-cleanse/pkg/model"
)

// AddressImputationPass fills a null property address from another sale
// of the same parcel. When several candidate donors exist the one with
// the lowest unique_id wins, so the result does not depend on input
// order. Records with no same-parcel donor keep their null address.
type AddressImputationPass struct {
	logger *zap.Logger
}

// NewAddressImputationPass creates the property address imputer
func NewAddressImputationPass() *AddressImputationPass {
	return &AddressImputationPass{logger: zap.L().Named(PassImputeAddresses)}
}

// Name returns the canonical pass name
func (p *AddressImputationPass) Name() string { return PassImputeAddresses }

// Apply builds a parcel lookup from the records that carry an address,
// scanning in ascending unique_id order, then fills the gaps from it
func (p *AddressImputationPass) Apply(ctx context.Context, ds *Dataset) (*PassResult, error) {
	result := NewPassResult(p.Name())
	result.RecordsExamined = len(ds.Records)

	type donor struct {
		address  string
		uniqueID int
	}

	order := make([]int, len(ds.Records))
	for i := range ds.Records {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return ds.Records[order[a]].UniqueID < ds.Records[order[b]].UniqueID
	})

	donors := make(map[string]donor)
	for _, i := range order {
		record := &ds.Records[i]
		if !record.HasPropertyAddress() {
			continue
		}
		if _, ok := donors[record.ParcelID]; !ok {
			donors[record.ParcelID] = donor{
				address:  *record.PropertyAddress,
				uniqueID: record.UniqueID,
			}
		}
	}

	unimputable := 0
	for i := range ds.Records {
		record := &ds.Records[i]
		if record.HasPropertyAddress() {
			continue
		}

		d, ok := donors[record.ParcelID]
		if !ok {
			unimputable++
			continue
		}

		address := d.address
		record.PropertyAddress = &address
		result.RecordsModified++
		result.OpsRecorded++

		ds.RecordOp(model.NewCleaningOperation(
			p.Name(), model.ColPropertyAddress, record.UniqueID,
			nil, address,
			"address_imputation",
			fmt.Sprintf("imputed from unique_id %d with same parcel", d.uniqueID)))
	}

	p.logger.Info("Imputed property addresses",
		zap.Int("records", result.RecordsExamined),
		zap.Int("parcelsWithAddress", len(donors)),
		zap.Int("imputed", result.RecordsModified),
		zap.Int("unimputable", unimputable))

	result.Complete(true)
	ds.MarkApplied(p.Name())
	return result, nil
}
