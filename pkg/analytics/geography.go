package analytics

import (
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/parcelworks/housing-cleanse/pkg/model"
)

// CityStats aggregates positive sale prices for one parsed city
type CityStats struct {
	City  string
	Count int
	Mean  float64
	Min   float64
	Max   float64
}

// AggregateByCity groups records by parsed property city and summarizes
// positive sale prices per group, ordered by descending average price.
// Records without a parsed city or a positive price are excluded.
func (a *Analyzer) AggregateByCity(records []model.CleanedSaleRecord) []CityStats {
	byCity := make(map[string][]float64)
	for i := range records {
		r := &records[i]
		if r.PropertyCity == nil || !r.HasValidPrice() {
			continue
		}
		byCity[*r.PropertyCity] = append(byCity[*r.PropertyCity], *r.SalePrice)
	}

	results := make([]CityStats, 0, len(byCity))
	for city, prices := range byCity {
		results = append(results, CityStats{
			City:  city,
			Count: len(prices),
			Mean:  stat.Mean(prices, nil),
			Min:   floats.Min(prices),
			Max:   floats.Max(prices),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Mean != results[j].Mean {
			return results[i].Mean > results[j].Mean
		}
		return results[i].City < results[j].City
	})

	a.logger.Info("Aggregated sale prices by city",
		zap.Int("records", len(records)),
		zap.Int("cities", len(results)))

	return results
}
