package cleanse

import (
	"github.com/parcelworks/housing-cleanse/pkg/model"
)

// DuplicateGroup is a set of records sharing the duplicate detection key.
// RecordIDs holds the unique_ids in ascending order; the first is the
// record retained, the rest are flagged.
type DuplicateGroup struct {
	Key       string
	RecordIDs []int
}

// FlaggedCount returns how many records in the group are duplicates
func (g DuplicateGroup) FlaggedCount() int {
	if len(g.RecordIDs) <= 1 {
		return 0
	}
	return len(g.RecordIDs) - 1
}

// Dataset is the mutable state threaded through the cleaning passes.
// Passes mutate Records in place and append to Ops; the column pruner
// writes the final projection into Cleaned.
type Dataset struct {
	Source     string
	Records    []model.SaleRecord
	Cleaned    []model.CleanedSaleRecord
	Ops        []model.CleaningOperation
	Duplicates []DuplicateGroup
	Failures   *ErrorCollector

	applied map[string]bool
}

// NewDataset wraps loaded records for a pipeline run
func NewDataset(sourceName string, records []model.SaleRecord, failures *ErrorCollector) *Dataset {
	return &Dataset{
		Source:   sourceName,
		Records:  records,
		Ops:      make([]model.CleaningOperation, 0),
		Failures: failures,
		applied:  make(map[string]bool),
	}
}

// RecordOp appends a cleaning operation to the audit trail
func (ds *Dataset) RecordOp(op model.CleaningOperation) {
	ds.Ops = append(ds.Ops, op)
}

// MarkApplied notes that a pass has completed over this dataset
func (ds *Dataset) MarkApplied(pass string) {
	ds.applied[pass] = true
}

// Applied reports whether the named pass has already run
func (ds *Dataset) Applied(pass string) bool {
	return ds.applied[pass]
}

// OpsForPass returns the operations recorded by one pass
func (ds *Dataset) OpsForPass(pass string) []model.CleaningOperation {
	var ops []model.CleaningOperation
	for _, op := range ds.Ops {
		if op.Pass == pass {
			ops = append(ops, op)
		}
	}
	return ops
}

// DuplicateRecordCount returns the total number of flagged duplicates
func (ds *Dataset) DuplicateRecordCount() int {
	count := 0
	for _, g := range ds.Duplicates {
		count += g.FlaggedCount()
	}
	return count
}
