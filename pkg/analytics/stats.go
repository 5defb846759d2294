package analytics

import (
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/parcelworks/housing-cleanse/pkg/model"
)

// PriceStats summarizes sale prices over records with a positive price
type PriceStats struct {
	Count int
	Min   float64
	Max   float64
	Mean  float64
	Total float64
}

// Analyzer computes summary statistics over cleaned sale records.
// Records with a null or non-positive price are excluded from every
// price aggregate rather than treated as errors.
type Analyzer struct {
	logger *zap.Logger
}

// NewAnalyzer creates an analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{logger: zap.L().Named("analytics")}
}

// PriceStats computes min, max, mean and total over positive sale prices
func (a *Analyzer) PriceStats(records []model.CleanedSaleRecord) *PriceStats {
	prices := positivePrices(records)
	if len(prices) == 0 {
		a.logger.Info("No positive sale prices to summarize",
			zap.Int("records", len(records)))
		return &PriceStats{}
	}

	stats := &PriceStats{
		Count: len(prices),
		Min:   floats.Min(prices),
		Max:   floats.Max(prices),
		Mean:  stat.Mean(prices, nil),
		Total: floats.Sum(prices),
	}

	a.logger.Info("Computed price statistics",
		zap.Int("records", len(records)),
		zap.Int("pricedRecords", stats.Count),
		zap.Float64("min", stats.Min),
		zap.Float64("max", stats.Max),
		zap.Float64("mean", stats.Mean))

	return stats
}

// positivePrices extracts the sale prices that qualify for aggregation
func positivePrices(records []model.CleanedSaleRecord) []float64 {
	prices := make([]float64, 0, len(records))
	for i := range records {
		if records[i].HasValidPrice() {
			prices = append(prices, *records[i].SalePrice)
		}
	}
	return prices
}
