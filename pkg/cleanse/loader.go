package cleanse

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/parcelworks/housing-cleanse/pkg/model"
	"github.com/parcelworks/housing-cleanse/pkg/source"
)

// Loader validates a raw table against the expected sale schema and
// materializes typed records from it. It performs no semantic cleaning;
// that is the job of the passes.
type Loader struct {
	logger   *zap.Logger
	failures *ErrorCollector
}

// NewLoader creates a loader that reports row failures to the collector
func NewLoader(failures *ErrorCollector) *Loader {
	return &Loader{
		logger:   zap.L().Named("loader"),
		failures: failures,
	}
}

// Load checks the table header and converts each row into a SaleRecord.
// A header missing any expected column is fatal and aborts before any
// row is examined. Rows whose identifying fields cannot be converted are
// skipped and counted; unparseable values in nullable columns load as
// null and are counted as conversion failures.
func (l *Loader) Load(table *source.RawTable) ([]model.SaleRecord, error) {
	if missing := model.MissingColumns(table.Columns); len(missing) > 0 {
		return nil, &SchemaMismatchError{Source: table.Name, Missing: missing}
	}

	index := buildColumnIndex(table.Columns)
	records := make([]model.SaleRecord, 0, len(table.Rows))
	skipped := 0

	for i, row := range table.Rows {
		record, err := l.buildRecord(row, index)
		if err != nil {
			action := l.failures.HandleError(
				NewErrorRecord(err, ErrorCategoryRecordLevel).
					WithPass("loader").
					WithColumn(model.ColUniqueID, cell(row, index, model.ColUniqueID)))
			if action == ActionAbort {
				return nil, WrapError(err, fmt.Sprintf("loading row %d", i+1))
			}
			skipped++
			continue
		}
		records = append(records, record)
	}

	l.logger.Info("Loaded sale records",
		zap.String("source", table.Name),
		zap.Int("rows", table.RowCount()),
		zap.Int("loaded", len(records)),
		zap.Int("skipped", skipped))

	return records, nil
}

// buildRecord converts one raw row into a typed SaleRecord
func (l *Loader) buildRecord(row map[string]interface{}, index map[string]string) (model.SaleRecord, error) {
	var record model.SaleRecord

	uniqueID, err := toInt(cell(row, index, model.ColUniqueID))
	if err != nil {
		return record, WrapError(err, "invalid unique_id")
	}
	record.UniqueID = uniqueID

	parcel := toNullableString(cell(row, index, model.ColParcelID))
	if parcel == nil {
		return record, errors.New("missing parcel_id")
	}
	record.ParcelID = *parcel

	if v := toNullableString(cell(row, index, model.ColLandUse)); v != nil {
		record.LandUse = *v
	}
	if v := toNullableString(cell(row, index, model.ColLegalReference)); v != nil {
		record.LegalReference = *v
	}
	if v := toNullableString(cell(row, index, model.ColSoldAsVacant)); v != nil {
		record.SoldAsVacant = *v
	}
	if v := toNullableString(cell(row, index, model.ColTaxDistrict)); v != nil {
		record.TaxDistrict = *v
	}

	record.PropertyAddress = toNullableString(cell(row, index, model.ColPropertyAddress))
	record.OwnerAddress = toNullableString(cell(row, index, model.ColOwnerAddress))

	if raw := cell(row, index, model.ColSaleDate); !isNull(raw) {
		t, convErr := toTime(raw)
		if convErr != nil {
			l.failures.HandleError(
				NewErrorRecord(convErr, ErrorCategoryConversion).
					WithPass("loader").
					WithRecord(record.UniqueID).
					WithColumn(model.ColSaleDate, raw))
		} else {
			record.SaleDate = &t
		}
	}

	if raw := cell(row, index, model.ColSalePrice); !isNull(raw) {
		price, convErr := toFloat(raw)
		if convErr != nil {
			l.failures.HandleError(
				NewErrorRecord(convErr, ErrorCategoryConversion).
					WithPass("loader").
					WithRecord(record.UniqueID).
					WithColumn(model.ColSalePrice, raw))
		} else {
			record.SalePrice = &price
		}
	}

	return record, nil
}

// buildColumnIndex maps normalized column names to the header keys the
// source actually used, so "UniqueID" and "unique_id" resolve alike
func buildColumnIndex(columns []string) map[string]string {
	index := make(map[string]string, len(columns))
	for _, col := range columns {
		index[model.NormalizeColumnName(col)] = col
	}
	return index
}

// cell fetches a row value by canonical column name
func cell(row map[string]interface{}, index map[string]string, name string) interface{} {
	key, ok := index[model.NormalizeColumnName(name)]
	if !ok {
		return nil
	}
	return row[key]
}
