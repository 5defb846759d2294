package cleanse

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/parcelworks/housing-cleanse/pkg/model"
)

// PropertyAddressParsePass splits the composite property address into
// street and city components. Addresses without a comma separator are
// recorded as parse failures and their components stay null; the pass
// itself never fails on malformed data.
type PropertyAddressParsePass struct {
	logger *zap.Logger
}

// NewPropertyAddressParsePass creates the property address parser
func NewPropertyAddressParsePass() *PropertyAddressParsePass {
	return &PropertyAddressParsePass{logger: zap.L().Named(PassParsePropertyAddress)}
}

// Name returns the canonical pass name
func (p *PropertyAddressParsePass) Name() string { return PassParsePropertyAddress }

// Apply parses every non-null property address in place
func (p *PropertyAddressParsePass) Apply(ctx context.Context, ds *Dataset) (*PassResult, error) {
	result := NewPassResult(p.Name())
	result.RecordsExamined = len(ds.Records)

	for i := range ds.Records {
		record := &ds.Records[i]
		if !record.HasPropertyAddress() {
			continue
		}

		street, city, ok := splitPropertyAddress(*record.PropertyAddress)
		if !ok {
			result.ParseFailures++
			ds.Failures.HandleError(NewErrorRecord(
				errors.New("no comma separator in property address"),
				ErrorCategoryParse).
				WithPass(p.Name()).
				WithRecord(record.UniqueID).
				WithColumn(model.ColPropertyAddress, *record.PropertyAddress))
			continue
		}

		record.PropertyStreet = &street
		record.PropertyCity = &city
		result.RecordsModified++
		result.OpsRecorded += 2

		ds.RecordOp(model.NewCleaningOperation(
			p.Name(), model.ColPropertyStreet, record.UniqueID,
			*record.PropertyAddress, street,
			"address_parse", "street component of property_address"))
		ds.RecordOp(model.NewCleaningOperation(
			p.Name(), model.ColPropertyCity, record.UniqueID,
			*record.PropertyAddress, city,
			"address_parse", "city component of property_address"))
	}

	p.logger.Info("Parsed property addresses",
		zap.Int("records", result.RecordsExamined),
		zap.Int("parsed", result.RecordsModified),
		zap.Int("parseFailures", result.ParseFailures))

	result.Complete(true)
	ds.MarkApplied(p.Name())
	return result, nil
}

// OwnerAddressParsePass splits the composite owner address into street,
// city and state. The address is split from the right so streets that
// themselves contain commas survive intact.
type OwnerAddressParsePass struct {
	logger *zap.Logger
}

// NewOwnerAddressParsePass creates the owner address parser
func NewOwnerAddressParsePass() *OwnerAddressParsePass {
	return &OwnerAddressParsePass{logger: zap.L().Named(PassParseOwnerAddress)}
}

// Name returns the canonical pass name
func (p *OwnerAddressParsePass) Name() string { return PassParseOwnerAddress }

// Apply parses every non-null owner address in place
func (p *OwnerAddressParsePass) Apply(ctx context.Context, ds *Dataset) (*PassResult, error) {
	result := NewPassResult(p.Name())
	result.RecordsExamined = len(ds.Records)

	for i := range ds.Records {
		record := &ds.Records[i]
		if !record.HasOwnerAddress() {
			continue
		}

		street, city, state, ok := splitOwnerAddress(*record.OwnerAddress)
		if !ok {
			result.ParseFailures++
			ds.Failures.HandleError(NewErrorRecord(
				errors.New("owner address has fewer than three comma-separated parts"),
				ErrorCategoryParse).
				WithPass(p.Name()).
				WithRecord(record.UniqueID).
				WithColumn(model.ColOwnerAddress, *record.OwnerAddress))
			continue
		}

		record.OwnerStreet = &street
		record.OwnerCity = &city
		record.OwnerState = &state
		result.RecordsModified++
		result.OpsRecorded += 3

		ds.RecordOp(model.NewCleaningOperation(
			p.Name(), model.ColOwnerStreet, record.UniqueID,
			*record.OwnerAddress, street,
			"address_parse", "street component of owner_address"))
		ds.RecordOp(model.NewCleaningOperation(
			p.Name(), model.ColOwnerCity, record.UniqueID,
			*record.OwnerAddress, city,
			"address_parse", "city component of owner_address"))
		ds.RecordOp(model.NewCleaningOperation(
			p.Name(), model.ColOwnerState, record.UniqueID,
			*record.OwnerAddress, state,
			"address_parse", "state component of owner_address"))
	}

	p.logger.Info("Parsed owner addresses",
		zap.Int("records", result.RecordsExamined),
		zap.Int("parsed", result.RecordsModified),
		zap.Int("parseFailures", result.ParseFailures))

	result.Complete(true)
	ds.MarkApplied(p.Name())
	return result, nil
}

// splitPropertyAddress splits "<street>, <city>" at the first comma
func splitPropertyAddress(address string) (street, city string, ok bool) {
	idx := strings.Index(address, ",")
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(address[:idx]), strings.TrimSpace(address[idx+1:]), true
}

// splitOwnerAddress splits "<street>, <city>, <state>" at the last two
// commas, keeping any interior commas as part of the street
func splitOwnerAddress(address string) (street, city, state string, ok bool) {
	last := strings.LastIndex(address, ",")
	if last < 0 {
		return "", "", "", false
	}
	secondLast := strings.LastIndex(address[:last], ",")
	if secondLast < 0 {
		return "", "", "", false
	}

	street = strings.TrimSpace(address[:secondLast])
	city = strings.TrimSpace(address[secondLast+1 : last])
	state = strings.TrimSpace(address[last+1:])
	return street, city, state, true
}
