package analytics

import (
	"math"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/parcelworks/housing-cleanse/pkg/model"
)

// OutlierReport describes the IQR analysis over positive sale prices.
// A record is an outlier when its price falls strictly outside
// [Q1 - 1.5*IQR, Q3 + 1.5*IQR].
type OutlierReport struct {
	Count      int // records with a positive price
	Q1         float64
	Q3         float64
	IQR        float64
	LowerBound float64
	UpperBound float64
	Outliers   []int // unique_ids of flagged records
	OutlierMin float64
	OutlierMax float64
}

// OutlierCount returns how many records were flagged
func (r *OutlierReport) OutlierCount() int {
	return len(r.Outliers)
}

// DetectOutliers computes the interquartile range over positive sale
// prices and flags every record priced strictly outside the fences
func (a *Analyzer) DetectOutliers(records []model.CleanedSaleRecord) *OutlierReport {
	prices := positivePrices(records)
	report := &OutlierReport{Count: len(prices), Outliers: make([]int, 0)}
	if len(prices) == 0 {
		a.logger.Info("No positive sale prices for outlier detection",
			zap.Int("records", len(records)))
		return report
	}

	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)

	report.Q1 = quantile(sorted, 0.25)
	report.Q3 = quantile(sorted, 0.75)
	report.IQR = report.Q3 - report.Q1
	report.LowerBound = report.Q1 - 1.5*report.IQR
	report.UpperBound = report.Q3 + 1.5*report.IQR

	outlierPrices := make([]float64, 0)
	for i := range records {
		r := &records[i]
		if !r.HasValidPrice() {
			continue
		}
		price := *r.SalePrice
		if price < report.LowerBound || price > report.UpperBound {
			report.Outliers = append(report.Outliers, r.UniqueID)
			outlierPrices = append(outlierPrices, price)
		}
	}

	if len(outlierPrices) > 0 {
		report.OutlierMin = floats.Min(outlierPrices)
		report.OutlierMax = floats.Max(outlierPrices)
	}

	a.logger.Info("Detected price outliers",
		zap.Int("pricedRecords", report.Count),
		zap.Float64("q1", report.Q1),
		zap.Float64("q3", report.Q3),
		zap.Float64("lowerBound", report.LowerBound),
		zap.Float64("upperBound", report.UpperBound),
		zap.Int("outliers", len(report.Outliers)))

	return report
}

// quantile computes a continuous quantile by linear interpolation
// between order statistics, matching SQL PERCENTILE_CONT. The input
// must already be sorted ascending.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}

	h := p * float64(n-1)
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}
