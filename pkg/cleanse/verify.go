package cleanse

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/parcelworks/housing-cleanse/pkg/model"
)

// maxViolationSamples bounds how many violations a check retains
const maxViolationSamples = 100

// InvariantViolation describes one record breaking a post-run invariant
type InvariantViolation struct {
	Check       string
	RecordID    int
	ColumnName  string
	Value       interface{}
	Description string
}

// CheckResult is the outcome of a single invariant check
type CheckResult struct {
	Check      string
	Passed     bool
	Examined   int
	Violated   int
	Violations []InvariantViolation
}

// InvariantReport aggregates every invariant check over a cleaned dataset
type InvariantReport struct {
	CheckedAt time.Time
	Duration  time.Duration
	Results   []CheckResult
}

// Passed reports whether every check succeeded
func (r *InvariantReport) Passed() bool {
	for _, res := range r.Results {
		if !res.Passed {
			return false
		}
	}
	return true
}

// ViolationCount returns the total violations across all checks
func (r *InvariantReport) ViolationCount() int {
	total := 0
	for _, res := range r.Results {
		total += res.Violated
	}
	return total
}

// InvariantChecker validates a dataset after the pipeline has run. The
// checks are informational; callers decide whether violations matter.
type InvariantChecker struct {
	logger *zap.Logger
}

// NewInvariantChecker creates an invariant checker
func NewInvariantChecker() *InvariantChecker {
	return &InvariantChecker{logger: zap.L().Named("invariants")}
}

// Check runs every invariant check and assembles a report
func (c *InvariantChecker) Check(ds *Dataset) *InvariantReport {
	start := time.Now()
	report := &InvariantReport{CheckedAt: start}

	report.Results = append(report.Results,
		c.checkDatesNormalized(ds),
		c.checkVacantFlagDomain(ds),
		c.checkImputationComplete(ds),
		c.checkDuplicateGroups(ds),
		c.checkCleanedProjection(ds),
	)

	report.Duration = time.Since(start)

	if report.Passed() {
		c.logger.Info("Invariant checks passed",
			zap.Int("checks", len(report.Results)),
			zap.Duration("duration", report.Duration))
	} else {
		c.logger.Warn("Invariant violations found",
			zap.Int("checks", len(report.Results)),
			zap.Int("violations", report.ViolationCount()),
			zap.Duration("duration", report.Duration))
	}

	return report
}

// checkDatesNormalized verifies no sale date carries a time component
func (c *InvariantChecker) checkDatesNormalized(ds *Dataset) CheckResult {
	result := CheckResult{Check: "dates_normalized", Examined: len(ds.Records)}

	for i := range ds.Records {
		r := &ds.Records[i]
		if r.SaleDate == nil || !hasClock(*r.SaleDate) {
			continue
		}
		result.Violated++
		if len(result.Violations) < maxViolationSamples {
			result.Violations = append(result.Violations, InvariantViolation{
				Check:       result.Check,
				RecordID:    r.UniqueID,
				ColumnName:  model.ColSaleDate,
				Value:       r.SaleDate.Format(time.RFC3339),
				Description: "sale date carries a time component",
			})
		}
	}

	result.Passed = result.Violated == 0
	return result
}

// checkVacantFlagDomain verifies sold_as_vacant values are fully spelled
// out. Values the normalizer passed through untouched surface here.
func (c *InvariantChecker) checkVacantFlagDomain(ds *Dataset) CheckResult {
	result := CheckResult{Check: "vacant_flag_domain", Examined: len(ds.Records)}

	for i := range ds.Records {
		r := &ds.Records[i]
		switch r.SoldAsVacant {
		case "Yes", "No", "":
			continue
		}
		result.Violated++
		if len(result.Violations) < maxViolationSamples {
			result.Violations = append(result.Violations, InvariantViolation{
				Check:       result.Check,
				RecordID:    r.UniqueID,
				ColumnName:  model.ColSoldAsVacant,
				Value:       r.SoldAsVacant,
				Description: "value outside the Yes/No domain",
			})
		}
	}

	result.Passed = result.Violated == 0
	return result
}

// checkImputationComplete verifies that every parcel group containing at
// least one address has no members left with a null address
func (c *InvariantChecker) checkImputationComplete(ds *Dataset) CheckResult {
	result := CheckResult{Check: "imputation_complete", Examined: len(ds.Records)}

	parcelsWithAddress := make(map[string]bool)
	for i := range ds.Records {
		if ds.Records[i].HasPropertyAddress() {
			parcelsWithAddress[ds.Records[i].ParcelID] = true
		}
	}

	for i := range ds.Records {
		r := &ds.Records[i]
		if r.HasPropertyAddress() || !parcelsWithAddress[r.ParcelID] {
			continue
		}
		result.Violated++
		if len(result.Violations) < maxViolationSamples {
			result.Violations = append(result.Violations, InvariantViolation{
				Check:       result.Check,
				RecordID:    r.UniqueID,
				ColumnName:  model.ColPropertyAddress,
				Description: fmt.Sprintf("parcel %s has an address on another record", r.ParcelID),
			})
		}
	}

	result.Passed = result.Violated == 0
	return result
}

// checkDuplicateGroups verifies the duplicate report is well formed:
// every group has at least two members ranked by ascending unique_id
func (c *InvariantChecker) checkDuplicateGroups(ds *Dataset) CheckResult {
	result := CheckResult{Check: "duplicate_groups_ranked", Examined: len(ds.Duplicates)}

	for _, g := range ds.Duplicates {
		wellFormed := len(g.RecordIDs) >= 2
		for i := 1; i < len(g.RecordIDs) && wellFormed; i++ {
			if g.RecordIDs[i-1] >= g.RecordIDs[i] {
				wellFormed = false
			}
		}
		if wellFormed {
			continue
		}
		result.Violated++
		if len(result.Violations) < maxViolationSamples {
			violation := InvariantViolation{
				Check:       result.Check,
				Description: fmt.Sprintf("group %s is not ranked by ascending unique_id", g.Key),
			}
			if len(g.RecordIDs) > 0 {
				violation.RecordID = g.RecordIDs[0]
			}
			result.Violations = append(result.Violations, violation)
		}
	}

	result.Passed = result.Violated == 0
	return result
}

// checkCleanedProjection verifies the pruner, when it ran, projected
// every record
func (c *InvariantChecker) checkCleanedProjection(ds *Dataset) CheckResult {
	result := CheckResult{Check: "cleaned_projection", Examined: len(ds.Cleaned)}

	if !ds.Applied(PassPruneColumns) {
		result.Passed = true
		return result
	}

	if len(ds.Cleaned) != len(ds.Records) {
		result.Violated = 1
		result.Violations = append(result.Violations, InvariantViolation{
			Check: result.Check,
			Description: fmt.Sprintf("projected %d of %d records",
				len(ds.Cleaned), len(ds.Records)),
		})
	}

	result.Passed = result.Violated == 0
	return result
}
