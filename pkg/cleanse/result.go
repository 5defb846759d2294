package cleanse

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PassResult captures the outcome of a single cleaning pass
type PassResult struct {
	Pass            string
	Success         bool
	RecordsExamined int
	RecordsModified int
	OpsRecorded     int
	ParseFailures   int
	Errors          []ErrorRecord
	Warnings        []string
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}

// NewPassResult initializes a result for a pass about to run
func NewPassResult(pass string) *PassResult {
	return &PassResult{
		Pass:      pass,
		StartTime: time.Now(),
		Errors:    make([]ErrorRecord, 0),
		Warnings:  make([]string, 0),
	}
}

// Complete marks the pass as finished and calculates duration
func (r *PassResult) Complete(success bool) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Success = success
}

// AddError adds an error to the result
func (r *PassResult) AddError(err ErrorRecord) {
	r.Errors = append(r.Errors, err)
	r.Success = false
}

// AddWarning adds a warning to the result
func (r *PassResult) AddWarning(warning string) {
	r.Warnings = append(r.Warnings, warning)
}

// ErrorCount returns the number of errors
func (r *PassResult) ErrorCount() int {
	return len(r.Errors)
}

// HasErrors checks if any errors occurred
func (r *PassResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// PipelineResult aggregates the outcomes of a full cleaning run
type PipelineResult struct {
	RunID            string
	Source           string
	RecordsLoaded    int
	RecordsCleaned   int
	PassResults      []PassResult
	TotalOps         int
	TotalModified    int
	TotalFailures    int
	ErrorCategories  map[ErrorCategory]int
	DuplicateGroups  int
	DuplicateRecords int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}

// NewPipelineResult initializes a run result with a fresh run id
func NewPipelineResult(sourceName string) *PipelineResult {
	return &PipelineResult{
		RunID:           uuid.New().String(),
		Source:          sourceName,
		PassResults:     make([]PassResult, 0),
		ErrorCategories: make(map[ErrorCategory]int),
		StartTime:       time.Now(),
	}
}

// AddPassResult incorporates a completed pass into the run totals
func (r *PipelineResult) AddPassResult(result PassResult) {
	r.PassResults = append(r.PassResults, result)
	r.TotalOps += result.OpsRecorded
	r.TotalModified += result.RecordsModified
	r.TotalFailures += result.ParseFailures

	for _, err := range result.Errors {
		r.ErrorCategories[err.Category]++
	}
}

// Complete marks the run as finished and calculates duration
func (r *PipelineResult) Complete() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// SuccessfulPasses returns how many passes completed without error
func (r *PipelineResult) SuccessfulPasses() int {
	count := 0
	for _, pr := range r.PassResults {
		if pr.Success {
			count++
		}
	}
	return count
}

// Succeeded reports whether every pass in the run completed
func (r *PipelineResult) Succeeded() bool {
	return r.SuccessfulPasses() == len(r.PassResults)
}

// LogSummary emits the run totals through the logger
func (r *PipelineResult) LogSummary(logger *zap.Logger) {
	logger.Info("Cleaning run completed",
		zap.String("runID", r.RunID),
		zap.String("source", r.Source),
		zap.Duration("duration", r.Duration),
		zap.Int("recordsLoaded", r.RecordsLoaded),
		zap.Int("recordsCleaned", r.RecordsCleaned),
		zap.Int("passes", len(r.PassResults)),
		zap.Int("successfulPasses", r.SuccessfulPasses()),
		zap.Int("operations", r.TotalOps),
		zap.Int("recordsModified", r.TotalModified),
		zap.Int("parseFailures", r.TotalFailures),
		zap.Int("duplicateGroups", r.DuplicateGroups),
		zap.Int("duplicateRecords", r.DuplicateRecords))

	for _, pr := range r.PassResults {
		logger.Info("Pass completed",
			zap.String("runID", r.RunID),
			zap.String("pass", pr.Pass),
			zap.Bool("success", pr.Success),
			zap.Duration("duration", pr.Duration),
			zap.Int("recordsExamined", pr.RecordsExamined),
			zap.Int("recordsModified", pr.RecordsModified),
			zap.Int("operations", pr.OpsRecorded),
			zap.Int("parseFailures", pr.ParseFailures))
	}
}
