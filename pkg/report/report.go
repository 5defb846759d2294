package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/parcelworks/housing-cleanse/pkg/analytics"
	"github.com/parcelworks/housing-cleanse/pkg/cleanse"
	"github.com/parcelworks/housing-cleanse/pkg/model"
)

// ColumnCompleteness measures how populated one column is
type ColumnCompleteness struct {
	Column  string
	Present int
	Missing int
}

// Percent returns the share of records with the column populated
func (c ColumnCompleteness) Percent() float64 {
	total := c.Present + c.Missing
	if total == 0 {
		return 0
	}
	return float64(c.Present) / float64(total) * 100
}

// CleansingReport ties together everything a run produced for review:
// data-quality profiles, the duplicate report, failure counts and the
// price analytics.
type CleansingReport struct {
	RunID       string
	Source      string
	GeneratedAt time.Time
	Duration    time.Duration

	RecordsLoaded  int
	RecordsCleaned int

	Completeness       []ColumnCompleteness
	VacantDistribution map[string]int
	DistinctParcels    int
	DistinctLandUses   int

	DuplicateGroups  int
	DuplicateRecords int

	ParseFailuresByPass map[string]int
	ErrorSummary        map[cleanse.ErrorCategory]int

	PriceStats *analytics.PriceStats
	Outliers   *analytics.OutlierReport
	Cities     []analytics.CityStats

	PassResults []cleanse.PassResult
	Invariants  *cleanse.InvariantReport
}

// Builder assembles cleansing reports from run artifacts
type Builder struct {
	logger *zap.Logger
}

// NewBuilder creates a report builder
func NewBuilder() *Builder {
	return &Builder{logger: zap.L().Named("report")}
}

// Build profiles the dataset and folds in the pipeline outcome, the
// invariant report and the analytics
func (b *Builder) Build(
	ds *cleanse.Dataset,
	result *cleanse.PipelineResult,
	invariants *cleanse.InvariantReport,
	prices *analytics.PriceStats,
	outliers *analytics.OutlierReport,
	cities []analytics.CityStats,
) *CleansingReport {
	report := &CleansingReport{
		RunID:               result.RunID,
		Source:              ds.Source,
		GeneratedAt:         time.Now(),
		Duration:            result.Duration,
		RecordsLoaded:       result.RecordsLoaded,
		RecordsCleaned:      result.RecordsCleaned,
		Completeness:        profileCompleteness(ds),
		VacantDistribution:  profileVacantFlags(ds),
		DuplicateGroups:     len(ds.Duplicates),
		DuplicateRecords:    ds.DuplicateRecordCount(),
		ParseFailuresByPass: make(map[string]int),
		PriceStats:          prices,
		Outliers:            outliers,
		Cities:              cities,
		PassResults:         result.PassResults,
		Invariants:          invariants,
	}

	report.DistinctParcels, report.DistinctLandUses = profileDistincts(ds)

	for _, pr := range result.PassResults {
		if pr.ParseFailures > 0 {
			report.ParseFailuresByPass[pr.Pass] = pr.ParseFailures
		}
	}

	if ds.Failures != nil {
		report.ErrorSummary = ds.Failures.GetErrorSummary()
	}

	b.logger.Info("Assembled cleansing report",
		zap.String("runID", report.RunID),
		zap.Int("recordsLoaded", report.RecordsLoaded),
		zap.Int("recordsCleaned", report.RecordsCleaned),
		zap.Int("duplicateGroups", report.DuplicateGroups),
		zap.Int("cities", len(report.Cities)))

	return report
}

// profileCompleteness counts populated values per nullable column,
// including the components the parsing passes derive
func profileCompleteness(ds *cleanse.Dataset) []ColumnCompleteness {
	counts := []struct {
		column  string
		present func(r *model.SaleRecord) bool
	}{
		{model.ColPropertyAddress, func(r *model.SaleRecord) bool { return r.HasPropertyAddress() }},
		{model.ColOwnerAddress, func(r *model.SaleRecord) bool { return r.HasOwnerAddress() }},
		{model.ColSaleDate, func(r *model.SaleRecord) bool { return r.SaleDate != nil }},
		{model.ColSalePrice, func(r *model.SaleRecord) bool { return r.SalePrice != nil }},
		{model.ColPropertyStreet, func(r *model.SaleRecord) bool { return r.PropertyStreet != nil }},
		{model.ColPropertyCity, func(r *model.SaleRecord) bool { return r.PropertyCity != nil }},
		{model.ColOwnerStreet, func(r *model.SaleRecord) bool { return r.OwnerStreet != nil }},
		{model.ColOwnerCity, func(r *model.SaleRecord) bool { return r.OwnerCity != nil }},
		{model.ColOwnerState, func(r *model.SaleRecord) bool { return r.OwnerState != nil }},
	}

	completeness := make([]ColumnCompleteness, 0, len(counts))
	for _, c := range counts {
		cc := ColumnCompleteness{Column: c.column}
		for i := range ds.Records {
			if c.present(&ds.Records[i]) {
				cc.Present++
			} else {
				cc.Missing++
			}
		}
		completeness = append(completeness, cc)
	}
	return completeness
}

// profileVacantFlags counts records per sold_as_vacant value
func profileVacantFlags(ds *cleanse.Dataset) map[string]int {
	distribution := make(map[string]int)
	for i := range ds.Records {
		distribution[ds.Records[i].SoldAsVacant]++
	}
	return distribution
}

// profileDistincts counts distinct parcels and land uses
func profileDistincts(ds *cleanse.Dataset) (parcels, landUses int) {
	parcelSet := make(map[string]bool)
	landUseSet := make(map[string]bool)
	for i := range ds.Records {
		parcelSet[ds.Records[i].ParcelID] = true
		landUseSet[ds.Records[i].LandUse] = true
	}
	return len(parcelSet), len(landUseSet)
}

// Render produces the human-readable text report
func (r *CleansingReport) Render() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`Housing Sales Cleansing Report
==============================
Run ID:     %s
Source:     %s
Generated:  %s
Duration:   %s

Records
-------
Loaded:           %d
Cleaned:          %d
Distinct parcels: %d
Land use types:   %d
`,
		r.RunID,
		r.Source,
		r.GeneratedAt.Format(time.RFC3339),
		formatDuration(r.Duration),
		r.RecordsLoaded,
		r.RecordsCleaned,
		r.DistinctParcels,
		r.DistinctLandUses,
	))

	sb.WriteString("\nColumn Completeness\n-------------------\n")
	for _, cc := range r.Completeness {
		sb.WriteString(fmt.Sprintf("- %-18s %6.1f%% (%d of %d present)\n",
			cc.Column+":", cc.Percent(), cc.Present, cc.Present+cc.Missing))
	}

	sb.WriteString("\nSold As Vacant\n--------------\n")
	for _, value := range sortedKeys(r.VacantDistribution) {
		label := value
		if label == "" {
			label = "(empty)"
		}
		sb.WriteString(fmt.Sprintf("- %s: %d\n", label, r.VacantDistribution[value]))
	}

	sb.WriteString(fmt.Sprintf("\nDuplicates\n----------\nGroups:          %d\nFlagged records: %d\n",
		r.DuplicateGroups, r.DuplicateRecords))

	if len(r.ParseFailuresByPass) > 0 {
		sb.WriteString("\nParse Failures\n--------------\n")
		for _, pass := range sortedKeys(r.ParseFailuresByPass) {
			sb.WriteString(fmt.Sprintf("- %s: %d\n", pass, r.ParseFailuresByPass[pass]))
		}
	}

	if r.PriceStats != nil && r.PriceStats.Count > 0 {
		sb.WriteString(fmt.Sprintf(`
Price Statistics
----------------
Priced records: %d
Min:            %.2f
Max:            %.2f
Mean:           %.2f
`,
			r.PriceStats.Count, r.PriceStats.Min, r.PriceStats.Max, r.PriceStats.Mean))
	}

	if r.Outliers != nil && r.Outliers.Count > 0 {
		sb.WriteString(fmt.Sprintf(`
Price Outliers (1.5 x IQR)
--------------------------
Q1:          %.2f
Q3:          %.2f
IQR:         %.2f
Bounds:      [%.2f, %.2f]
Outliers:    %d
`,
			r.Outliers.Q1, r.Outliers.Q3, r.Outliers.IQR,
			r.Outliers.LowerBound, r.Outliers.UpperBound,
			r.Outliers.OutlierCount()))
		if r.Outliers.OutlierCount() > 0 {
			sb.WriteString(fmt.Sprintf("Outlier min: %.2f\nOutlier max: %.2f\n",
				r.Outliers.OutlierMin, r.Outliers.OutlierMax))
		}
	}

	if len(r.Cities) > 0 {
		sb.WriteString("\nCities by Average Price\n-----------------------\n")
		for _, c := range r.Cities {
			sb.WriteString(fmt.Sprintf("- %s: avg %.2f over %d sales (min %.2f, max %.2f)\n",
				c.City, c.Mean, c.Count, c.Min, c.Max))
		}
	}

	if r.Invariants != nil {
		sb.WriteString("\nInvariant Checks\n----------------\n")
		for _, check := range r.Invariants.Results {
			status := "pass"
			if !check.Passed {
				status = fmt.Sprintf("FAIL (%d violations)", check.Violated)
			}
			sb.WriteString(fmt.Sprintf("- %s: %s\n", check.Check, status))
		}
	}

	return sb.String()
}

// Log emits the report's headline numbers through the logger
func (r *CleansingReport) Log(logger *zap.Logger) {
	fields := []zap.Field{
		zap.String("runID", r.RunID),
		zap.String("source", r.Source),
		zap.Int("recordsLoaded", r.RecordsLoaded),
		zap.Int("recordsCleaned", r.RecordsCleaned),
		zap.Int("distinctParcels", r.DistinctParcels),
		zap.Int("duplicateGroups", r.DuplicateGroups),
		zap.Int("duplicateRecords", r.DuplicateRecords),
	}

	if r.PriceStats != nil {
		fields = append(fields,
			zap.Int("pricedRecords", r.PriceStats.Count),
			zap.Float64("meanPrice", r.PriceStats.Mean))
	}
	if r.Outliers != nil {
		fields = append(fields, zap.Int("priceOutliers", r.Outliers.OutlierCount()))
	}
	if r.Invariants != nil {
		fields = append(fields, zap.Bool("invariantsPassed", r.Invariants.Passed()))
	}

	logger.Info("Cleansing report", fields...)
}

// Helper functions

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatDuration formats a duration to a human-readable string
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
