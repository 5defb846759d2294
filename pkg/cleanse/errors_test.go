package cleanse

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parcelworks/housing-cleanse/pkg/model"
)

func TestErrorCollector_HandleError(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		want     Action
	}{
		{ErrorCategoryWarning, ActionContinue},
		{ErrorCategoryParse, ActionContinue},
		{ErrorCategoryConversion, ActionContinue},
		{ErrorCategoryRecordLevel, ActionSkipRecord},
		{ErrorCategorySchema, ActionAbort},
		{ErrorCategoryOrdering, ActionAbort},
		{ErrorCategorySystemLevel, ActionAbort},
		{ErrorCategoryCritical, ActionAbort},
	}
	for _, tc := range tests {
		t.Run(tc.category.String(), func(t *testing.T) {
			collector := NewErrorCollector(zap.NewNop())

			action := collector.HandleError(NewErrorRecord(errors.New("boom"), tc.category))

			assert.Equal(t, tc.want, action)
			assert.Equal(t, 1, collector.CountByCategory(tc.category))
		})
	}
}

func TestErrorCollector_SampleCapPerCategory(t *testing.T) {
	collector := NewErrorCollector(zap.NewNop())
	for i := 0; i < 8; i++ {
		collector.Record(NewErrorRecord(fmt.Errorf("bad value %d", i), ErrorCategoryConversion))
	}
	collector.Record(NewErrorRecord(errors.New("skipped row"), ErrorCategoryRecordLevel))

	samples := collector.GetErrorSamples()

	assert.Len(t, samples[ErrorCategoryConversion], 5, "samples are capped, counts are not")
	assert.Len(t, samples[ErrorCategoryRecordLevel], 1)
	assert.Equal(t, 8, collector.CountByCategory(ErrorCategoryConversion))
}

func TestErrorCollector_GetErrorSummary(t *testing.T) {
	collector := NewErrorCollector(zap.NewNop())
	collector.Record(NewErrorRecord(errors.New("a"), ErrorCategoryParse))
	collector.Record(NewErrorRecord(errors.New("b"), ErrorCategoryParse))
	collector.Record(NewErrorRecord(errors.New("c"), ErrorCategoryRecordLevel))

	summary := collector.GetErrorSummary()

	assert.Equal(t, map[ErrorCategory]int{
		ErrorCategoryParse:       2,
		ErrorCategoryRecordLevel: 1,
	}, summary)
}

func TestErrorCollector_GetPassErrorCounts(t *testing.T) {
	collector := NewErrorCollector(zap.NewNop())
	collector.Record(NewErrorRecord(errors.New("a"), ErrorCategoryParse).WithPass(PassParsePropertyAddress))
	collector.Record(NewErrorRecord(errors.New("b"), ErrorCategoryParse).WithPass(PassParsePropertyAddress))
	collector.Record(NewErrorRecord(errors.New("c"), ErrorCategoryConversion))

	counts := collector.GetPassErrorCounts()

	assert.Equal(t, map[string]int{PassParsePropertyAddress: 2}, counts,
		"errors without a pass are only counted by category")
}

func TestNewErrorRecord_Recoverability(t *testing.T) {
	assert.True(t, NewErrorRecord(errors.New("x"), ErrorCategoryConversion).Recoverable)
	assert.True(t, NewErrorRecord(errors.New("x"), ErrorCategoryRecordLevel).Recoverable)
	assert.False(t, NewErrorRecord(errors.New("x"), ErrorCategorySchema).Recoverable)
	assert.False(t, NewErrorRecord(errors.New("x"), ErrorCategoryOrdering).Recoverable)
}

func TestErrorRecord_Builders(t *testing.T) {
	record := NewErrorRecord(errors.New("cannot parse time"), ErrorCategoryConversion).
		WithPass(PassNormalizeDates).
		WithRecord(2045).
		WithColumn(model.ColSaleDate, "April 9th")

	assert.Equal(t, PassNormalizeDates, record.Pass)
	assert.Equal(t, 2045, record.RecordID)
	assert.Equal(t, model.ColSaleDate, record.ColumnName)
	assert.Equal(t, "April 9th", record.SourceValue)
	assert.Equal(t, "cannot parse time", record.Message)

	text := record.String()
	assert.Contains(t, text, "[Conversion]")
	assert.Contains(t, text, "Record: 2045")
	assert.Contains(t, text, "Column: sale_date")
	assert.Contains(t, text, "cannot parse time")
}

func TestSchemaMismatchError_Message(t *testing.T) {
	err := &SchemaMismatchError{Source: "sales.csv", Missing: []string{model.ColSalePrice, model.ColOwnerAddress}}

	assert.Equal(t, "source sales.csv is missing expected columns: sale_price, owner_address", err.Error())
}

func TestOrderingViolationError_Message(t *testing.T) {
	err := &OrderingViolationError{Pass: PassPruneColumns, Missed: PassNormalizeDates}
	assert.Equal(t, "pass prune_columns invoked before normalize_dates", err.Error())

	err.Detail = "3 records still carry a time component"
	assert.Contains(t, err.Error(), ": 3 records still carry a time component")
}

func TestWrapError(t *testing.T) {
	base := errors.New("connection refused")

	wrapped := WrapError(base, "failed to read housing_sales")

	require.Error(t, wrapped)
	assert.Equal(t, "failed to read housing_sales: connection refused", wrapped.Error())
	assert.ErrorIs(t, wrapped, base)

	assert.NoError(t, WrapError(nil, "ignored"))
}
