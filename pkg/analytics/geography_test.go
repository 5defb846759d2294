package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelworks/housing-cleanse/pkg/model"
)

func cityRecord(id int, city string, price float64) model.CleanedSaleRecord {
	return model.CleanedSaleRecord{
		UniqueID:     id,
		ParcelID:     "007 00 0 125.00",
		PropertyCity: &city,
		SalePrice:    &price,
	}
}

func TestAggregateByCity_OrdersByDescendingMean(t *testing.T) {
	records := []model.CleanedSaleRecord{
		cityRecord(1, "NASHVILLE", 300000),
		cityRecord(2, "GOODLETTSVILLE", 150000),
		cityRecord(3, "NASHVILLE", 100000),
		cityRecord(4, "MADISON", 250000),
	}

	cities := NewAnalyzer().AggregateByCity(records)

	require.Len(t, cities, 3)
	assert.Equal(t, "MADISON", cities[0].City)
	assert.Equal(t, "NASHVILLE", cities[1].City)
	assert.Equal(t, "GOODLETTSVILLE", cities[2].City)

	nashville := cities[1]
	assert.Equal(t, 2, nashville.Count)
	assert.Equal(t, 200000.0, nashville.Mean)
	assert.Equal(t, 100000.0, nashville.Min)
	assert.Equal(t, 300000.0, nashville.Max)
}

func TestAggregateByCity_TieBreaksByCityName(t *testing.T) {
	records := []model.CleanedSaleRecord{
		cityRecord(1, "BELLEVUE", 200000),
		cityRecord(2, "ANTIOCH", 200000),
	}

	cities := NewAnalyzer().AggregateByCity(records)

	require.Len(t, cities, 2)
	assert.Equal(t, "ANTIOCH", cities[0].City)
	assert.Equal(t, "BELLEVUE", cities[1].City)
}

func TestAggregateByCity_ExcludesUnparsedAndUnpriced(t *testing.T) {
	records := []model.CleanedSaleRecord{
		{UniqueID: 1, ParcelID: "p", SalePrice: floatp(400000)},
		{UniqueID: 2, ParcelID: "q", PropertyCity: strp("NASHVILLE")},
		cityRecord(3, "NASHVILLE", 0),
		cityRecord(4, "NASHVILLE", 175000),
	}

	cities := NewAnalyzer().AggregateByCity(records)

	require.Len(t, cities, 1)
	assert.Equal(t, "NASHVILLE", cities[0].City)
	assert.Equal(t, 1, cities[0].Count)
	assert.Equal(t, 175000.0, cities[0].Mean)
}

func TestAggregateByCity_EmptyInput(t *testing.T) {
	assert.Empty(t, NewAnalyzer().AggregateByCity(nil))
}
