package cleanse

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/parcelworks/housing-cleanse/pkg/model"
)

// VacantFlagPass expands the abbreviated sold-as-vacant values, mapping
// "Y" to "Yes" and "N" to "No". Values already spelled out, and anything
// outside the known domain, pass through unchanged.
type VacantFlagPass struct {
	logger *zap.Logger
}

// NewVacantFlagPass creates the sold-as-vacant normalizer
func NewVacantFlagPass() *VacantFlagPass {
	return &VacantFlagPass{logger: zap.L().Named(PassNormalizeVacantFlag)}
}

// Name returns the canonical pass name
func (p *VacantFlagPass) Name() string { return PassNormalizeVacantFlag }

// Apply rewrites abbreviated flags in place
func (p *VacantFlagPass) Apply(ctx context.Context, ds *Dataset) (*PassResult, error) {
	result := NewPassResult(p.Name())
	result.RecordsExamined = len(ds.Records)

	for i := range ds.Records {
		record := &ds.Records[i]

		expanded, changed := expandVacantFlag(record.SoldAsVacant)
		if !changed {
			continue
		}

		original := record.SoldAsVacant
		record.SoldAsVacant = expanded
		result.RecordsModified++
		result.OpsRecorded++

		ds.RecordOp(model.NewCleaningOperation(
			p.Name(), model.ColSoldAsVacant, record.UniqueID,
			original, expanded,
			"value_standardization", "expanded_abbreviation"))
	}

	p.logger.Info("Normalized sold-as-vacant flags",
		zap.Int("records", result.RecordsExamined),
		zap.Int("modified", result.RecordsModified))

	result.Complete(true)
	ds.MarkApplied(p.Name())
	return result, nil
}

// expandVacantFlag maps the abbreviated flag values to their full forms.
// The second return reports whether the value changed.
func expandVacantFlag(value string) (string, bool) {
	switch strings.TrimSpace(value) {
	case "Y":
		return "Yes", true
	case "N":
		return "No", true
	default:
		return value, false
	}
}
