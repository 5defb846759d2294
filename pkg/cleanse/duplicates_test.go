package cleanse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelworks/housing-cleanse/pkg/model"
)

// duplicateFixture builds a record matching the duplicate grouping key of
// its siblings unless a field is overridden afterwards.
func duplicateFixture(uniqueID int) model.SaleRecord {
	return model.SaleRecord{
		UniqueID:        uniqueID,
		ParcelID:        "081 02 0 144.00",
		PropertyAddress: strp("2117 PAULA DR, MADISON"),
		SalePrice:       floatp(189900),
		SaleDate:        timep(day(2014, time.January, 24)),
		LegalReference:  "20140129-0008725",
	}
}

func TestDuplicateDetectionPass_FlagsAllButLowestUniqueID(t *testing.T) {
	ds := testDataset(
		duplicateFixture(1),
		duplicateFixture(2),
	)

	result, err := NewDuplicateDetectionPass().Apply(context.Background(), ds)
	require.NoError(t, err)

	require.Len(t, ds.Duplicates, 1)
	group := ds.Duplicates[0]
	assert.Equal(t, []int{1, 2}, group.RecordIDs)
	assert.Equal(t, 1, group.FlaggedCount(), "record 2 is flagged, record 1 is retained")
	assert.Equal(t, 1, ds.DuplicateRecordCount())
	assert.True(t, result.Success)
}

func TestDuplicateDetectionPass_RanksByUniqueIDNotInputOrder(t *testing.T) {
	ds := testDataset(
		duplicateFixture(9),
		duplicateFixture(3),
		duplicateFixture(7),
	)

	_, err := NewDuplicateDetectionPass().Apply(context.Background(), ds)
	require.NoError(t, err)

	require.Len(t, ds.Duplicates, 1)
	assert.Equal(t, []int{3, 7, 9}, ds.Duplicates[0].RecordIDs)
	assert.Equal(t, 2, ds.Duplicates[0].FlaggedCount())
}

func TestDuplicateDetectionPass_ReportOnly(t *testing.T) {
	ds := testDataset(
		duplicateFixture(1),
		duplicateFixture(2),
	)

	_, err := NewDuplicateDetectionPass().Apply(context.Background(), ds)
	require.NoError(t, err)

	assert.Len(t, ds.Records, 2, "detection never deletes records")
	assert.Empty(t, ds.Ops, "detection records no cleaning operations")
}

func TestDuplicateDetectionPass_AnyDifferingKeyFieldSeparates(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.SaleRecord)
	}{
		{"different parcel", func(r *model.SaleRecord) { r.ParcelID = "other" }},
		{"different address", func(r *model.SaleRecord) { r.PropertyAddress = strp("999 ELSEWHERE LN, NASHVILLE") }},
		{"different price", func(r *model.SaleRecord) { r.SalePrice = floatp(265000) }},
		{"different date", func(r *model.SaleRecord) { r.SaleDate = timep(day(2015, time.March, 2)) }},
		{"different legal reference", func(r *model.SaleRecord) { r.LegalReference = "20150302-0000001" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := duplicateFixture(1)
			b := duplicateFixture(2)
			tt.mutate(&b)
			ds := testDataset(a, b)

			_, err := NewDuplicateDetectionPass().Apply(context.Background(), ds)
			require.NoError(t, err)

			assert.Empty(t, ds.Duplicates)
		})
	}
}

func TestDuplicateDetectionPass_NullFieldsCompareEqual(t *testing.T) {
	a := duplicateFixture(1)
	b := duplicateFixture(2)
	a.PropertyAddress = nil
	b.PropertyAddress = nil
	a.SalePrice = nil
	b.SalePrice = nil
	ds := testDataset(a, b)

	_, err := NewDuplicateDetectionPass().Apply(context.Background(), ds)
	require.NoError(t, err)

	require.Len(t, ds.Duplicates, 1)
	assert.Equal(t, []int{1, 2}, ds.Duplicates[0].RecordIDs)
}

func TestDuplicateDetectionPass_NullDoesNotMatchPresent(t *testing.T) {
	a := duplicateFixture(1)
	b := duplicateFixture(2)
	b.SalePrice = nil
	ds := testDataset(a, b)

	_, err := NewDuplicateDetectionPass().Apply(context.Background(), ds)
	require.NoError(t, err)

	assert.Empty(t, ds.Duplicates)
}

func TestDuplicateDetectionPass_GroupsOrderedByFirstMember(t *testing.T) {
	groupA1 := duplicateFixture(5)
	groupA2 := duplicateFixture(6)

	groupB1 := duplicateFixture(1)
	groupB2 := duplicateFixture(2)
	groupB1.ParcelID = "033 06 0 041.00"
	groupB2.ParcelID = "033 06 0 041.00"

	ds := testDataset(groupA1, groupA2, groupB1, groupB2)

	_, err := NewDuplicateDetectionPass().Apply(context.Background(), ds)
	require.NoError(t, err)

	require.Len(t, ds.Duplicates, 2)
	assert.Equal(t, []int{1, 2}, ds.Duplicates[0].RecordIDs)
	assert.Equal(t, []int{5, 6}, ds.Duplicates[1].RecordIDs)
}

func TestDuplicateKey_TimeBearingDatesDoNotCollide(t *testing.T) {
	a := duplicateFixture(1)
	b := duplicateFixture(2)
	a.SaleDate = timep(time.Date(2014, 1, 24, 0, 0, 0, 0, time.UTC))
	b.SaleDate = timep(time.Date(2014, 1, 24, 15, 30, 0, 0, time.UTC))

	assert.NotEqual(t, duplicateKey(&a), duplicateKey(&b))
}

func TestDuplicateKey_PriceFormatting(t *testing.T) {
	a := duplicateFixture(1)
	a.SalePrice = floatp(189900)
	assert.Contains(t, duplicateKey(&a), "|189900|")

	a.SalePrice = floatp(189900.5)
	assert.Contains(t, duplicateKey(&a), "|189900.5|")

	a.SalePrice = nil
	assert.Contains(t, duplicateKey(&a), "|"+nullKeyComponent+"|")
}
