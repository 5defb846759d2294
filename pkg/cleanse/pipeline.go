package cleanse

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Canonical pass names. Job files reference passes by these names and
// audit rows carry them.
const (
	PassNormalizeDates       = "normalize_dates"
	PassImputeAddresses      = "impute_addresses"
	PassParsePropertyAddress = "parse_property_address"
	PassParseOwnerAddress    = "parse_owner_address"
	PassNormalizeVacantFlag  = "normalize_vacant_flag"
	PassDetectDuplicates     = "detect_duplicates"
	PassPruneColumns         = "prune_columns"
)

// Pass is a single cleaning stage applied to the dataset in place
type Pass interface {
	// Name returns the canonical pass name
	Name() string
	// Apply runs the pass over the dataset and reports its outcome.
	// A non-nil error aborts the pipeline.
	Apply(ctx context.Context, ds *Dataset) (*PassResult, error)
}

// DefaultPassNames returns the full pass list in canonical order
func DefaultPassNames() []string {
	return []string{
		PassNormalizeDates,
		PassImputeAddresses,
		PassParsePropertyAddress,
		PassParseOwnerAddress,
		PassNormalizeVacantFlag,
		PassDetectDuplicates,
		PassPruneColumns,
	}
}

// BuildPasses resolves configured pass names into pass instances,
// preserving the given order
func BuildPasses(names []string) ([]Pass, error) {
	passes := make([]Pass, 0, len(names))
	for _, name := range names {
		pass, err := buildPass(name)
		if err != nil {
			return nil, err
		}
		passes = append(passes, pass)
	}
	return passes, nil
}

func buildPass(name string) (Pass, error) {
	switch name {
	case PassNormalizeDates:
		return NewDateNormalizationPass(), nil
	case PassImputeAddresses:
		return NewAddressImputationPass(), nil
	case PassParsePropertyAddress:
		return NewPropertyAddressParsePass(), nil
	case PassParseOwnerAddress:
		return NewOwnerAddressParsePass(), nil
	case PassNormalizeVacantFlag:
		return NewVacantFlagPass(), nil
	case PassDetectDuplicates:
		return NewDuplicateDetectionPass(), nil
	case PassPruneColumns:
		return NewColumnPrunePass(), nil
	default:
		return nil, fmt.Errorf("unknown pass: %s", name)
	}
}

// Pipeline applies passes in order over one dataset
type Pipeline struct {
	passes []Pass
	logger *zap.Logger
}

// NewPipeline creates an empty pipeline
func NewPipeline() *Pipeline {
	return &Pipeline{
		passes: make([]Pass, 0),
		logger: zap.L().Named("pipeline"),
	}
}

// Add appends passes to the pipeline, returning it for chaining
func (p *Pipeline) Add(passes ...Pass) *Pipeline {
	p.passes = append(p.passes, passes...)
	return p
}

// PassCount returns the number of configured passes
func (p *Pipeline) PassCount() int {
	return len(p.passes)
}

// Run executes every pass in order. The first pass error aborts the run;
// the returned PipelineResult covers everything that ran up to that point.
func (p *Pipeline) Run(ctx context.Context, ds *Dataset) (*PipelineResult, error) {
	result := NewPipelineResult(ds.Source)
	result.RecordsLoaded = len(ds.Records)

	p.logger.Info("Starting cleaning run",
		zap.String("runID", result.RunID),
		zap.String("source", ds.Source),
		zap.Int("records", len(ds.Records)),
		zap.Int("passes", len(p.passes)))

	for _, pass := range p.passes {
		if err := ctx.Err(); err != nil {
			result.Complete()
			return result, WrapError(err, "cleaning run cancelled")
		}

		p.logger.Info("Applying pass",
			zap.String("runID", result.RunID),
			zap.String("pass", pass.Name()),
			zap.Int("records", len(ds.Records)))

		passResult, err := pass.Apply(ctx, ds)
		if passResult == nil {
			passResult = NewPassResult(pass.Name())
			passResult.Complete(err == nil)
		}

		if err != nil {
			passResult.AddError(NewErrorRecord(err, categorize(err)).WithPass(pass.Name()))
			result.AddPassResult(*passResult)
			result.Complete()

			p.logger.Error("Pass failed",
				zap.String("runID", result.RunID),
				zap.String("pass", pass.Name()),
				zap.Error(err))

			return result, err
		}

		ds.MarkApplied(pass.Name())
		result.AddPassResult(*passResult)
	}

	result.RecordsCleaned = len(ds.Cleaned)
	result.DuplicateGroups = len(ds.Duplicates)
	result.DuplicateRecords = ds.DuplicateRecordCount()
	result.Complete()

	return result, nil
}

// categorize maps a pass-fatal error to its error category
func categorize(err error) ErrorCategory {
	switch err.(type) {
	case *SchemaMismatchError:
		return ErrorCategorySchema
	case *OrderingViolationError:
		return ErrorCategoryOrdering
	default:
		return ErrorCategorySystemLevel
	}
}
