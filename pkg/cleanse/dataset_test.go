package cleanse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/parcelworks/housing-cleanse/pkg/model"
)

// Shared fixtures for the pass tests

func strp(s string) *string { return &s }

func floatp(f float64) *float64 { return &f }

func timep(t time.Time) *time.Time { return &t }

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func testDataset(records ...model.SaleRecord) *Dataset {
	return NewDataset("test-source", records, NewErrorCollector(zap.NewNop()))
}

func TestDataset_RecordOpAccumulates(t *testing.T) {
	ds := testDataset()

	ds.RecordOp(model.NewCleaningOperation(
		PassNormalizeDates, model.ColSaleDate, 1,
		"2013-04-09T14:30:00Z", "2013-04-09",
		"date_normalization", "stripped_time_component"))
	ds.RecordOp(model.NewCleaningOperation(
		PassNormalizeVacantFlag, model.ColSoldAsVacant, 2,
		"Y", "Yes",
		"value_standardization", "expanded_abbreviation"))

	assert.Len(t, ds.Ops, 2)
	assert.Equal(t, PassNormalizeDates, ds.Ops[0].Pass)
	assert.Equal(t, "Yes", ds.Ops[1].NewValue)
}

func TestDataset_OpsForPass(t *testing.T) {
	ds := testDataset()
	ds.RecordOp(model.NewCleaningOperation(
		PassNormalizeDates, model.ColSaleDate, 1,
		"a", "b", "date_normalization", "stripped_time_component"))
	ds.RecordOp(model.NewCleaningOperation(
		PassNormalizeVacantFlag, model.ColSoldAsVacant, 1,
		"Y", "Yes", "value_standardization", "expanded_abbreviation"))
	ds.RecordOp(model.NewCleaningOperation(
		PassNormalizeDates, model.ColSaleDate, 2,
		"c", "d", "date_normalization", "stripped_time_component"))

	dateOps := ds.OpsForPass(PassNormalizeDates)
	assert.Len(t, dateOps, 2)
	for _, op := range dateOps {
		assert.Equal(t, PassNormalizeDates, op.Pass)
	}

	assert.Empty(t, ds.OpsForPass(PassImputeAddresses))
}

func TestDataset_AppliedTracking(t *testing.T) {
	ds := testDataset()

	assert.False(t, ds.Applied(PassNormalizeDates))

	ds.MarkApplied(PassNormalizeDates)
	assert.True(t, ds.Applied(PassNormalizeDates))
	assert.False(t, ds.Applied(PassPruneColumns))
}

func TestDuplicateGroup_FlaggedCount(t *testing.T) {
	assert.Equal(t, 0, DuplicateGroup{RecordIDs: nil}.FlaggedCount())
	assert.Equal(t, 0, DuplicateGroup{RecordIDs: []int{1}}.FlaggedCount())
	assert.Equal(t, 1, DuplicateGroup{RecordIDs: []int{1, 2}}.FlaggedCount())
	assert.Equal(t, 3, DuplicateGroup{RecordIDs: []int{5, 6, 7, 8}}.FlaggedCount())
}

func TestDataset_DuplicateRecordCount(t *testing.T) {
	ds := testDataset()
	ds.Duplicates = []DuplicateGroup{
		{Key: "a", RecordIDs: []int{1, 2}},
		{Key: "b", RecordIDs: []int{3, 4, 5}},
	}

	assert.Equal(t, 3, ds.DuplicateRecordCount())
}
