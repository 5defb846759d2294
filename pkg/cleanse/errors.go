package cleanse

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Action defines the recommended action after an error
type Action int

const (
	// ActionContinue indicates processing should continue despite the error
	ActionContinue Action = iota
	// ActionSkipRecord indicates the current record should be skipped
	ActionSkipRecord
	// ActionAbort indicates the entire run should be aborted
	ActionAbort
)

// ErrorCategory defines categories of errors during a cleansing run
type ErrorCategory int

const (
	// Error categories with increasing severity
	ErrorCategoryNone ErrorCategory = iota
	ErrorCategoryWarning
	ErrorCategoryParse
	ErrorCategoryConversion
	ErrorCategoryRecordLevel
	ErrorCategorySchema
	ErrorCategoryOrdering
	ErrorCategorySystemLevel
	ErrorCategoryCritical
)

// String returns a string representation of the error category
func (ec ErrorCategory) String() string {
	switch ec {
	case ErrorCategoryNone:
		return "None"
	case ErrorCategoryWarning:
		return "Warning"
	case ErrorCategoryParse:
		return "Parse"
	case ErrorCategoryConversion:
		return "Conversion"
	case ErrorCategoryRecordLevel:
		return "RecordLevel"
	case ErrorCategorySchema:
		return "Schema"
	case ErrorCategoryOrdering:
		return "Ordering"
	case ErrorCategorySystemLevel:
		return "SystemLevel"
	case ErrorCategoryCritical:
		return "Critical"
	default:
		return fmt.Sprintf("Unknown(%d)", ec)
	}
}

// SchemaMismatchError reports that the input source lacks expected columns.
// It is fatal and raised before any pass runs.
type SchemaMismatchError struct {
	Source  string
	Missing []string
}

// Error implements the error interface
func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("source %s is missing expected columns: %s",
		e.Source, strings.Join(e.Missing, ", "))
}

// OrderingViolationError reports that a pass was invoked before a pass it
// depends on had run. It is fatal for the invocation.
type OrderingViolationError struct {
	Pass   string
	Missed string
	Detail string
}

// Error implements the error interface
func (e *OrderingViolationError) Error() string {
	msg := fmt.Sprintf("pass %s invoked before %s", e.Pass, e.Missed)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// ErrorRecord represents a single data-quality failure during a run
type ErrorRecord struct {
	Category    ErrorCategory
	Pass        string
	RecordID    int
	ColumnName  string
	SourceValue interface{}
	Error       error
	Message     string // Derived from Error but stored for serialization
	Timestamp   time.Time
	Recoverable bool
}

// NewErrorRecord creates a new error record with current timestamp
func NewErrorRecord(err error, category ErrorCategory) ErrorRecord {
	record := ErrorRecord{
		Category:    category,
		Error:       err,
		RecordID:    -1,
		Timestamp:   time.Now(),
		Recoverable: category < ErrorCategorySchema,
	}

	if err != nil {
		record.Message = err.Error()
	}

	return record
}

// WithPass adds the originating pass to the error record
func (r ErrorRecord) WithPass(pass string) ErrorRecord {
	r.Pass = pass
	return r
}

// WithRecord adds the affected record's unique_id to the error record
func (r ErrorRecord) WithRecord(recordID int) ErrorRecord {
	r.RecordID = recordID
	return r
}

// WithColumn adds column information to the error record
func (r ErrorRecord) WithColumn(columnName string, sourceValue interface{}) ErrorRecord {
	r.ColumnName = columnName
	r.SourceValue = sourceValue
	return r
}

// String returns a formatted error message
func (r ErrorRecord) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] ", r.Category))

	if r.Pass != "" {
		sb.WriteString(fmt.Sprintf("Pass: %s ", r.Pass))
	}

	if r.RecordID >= 0 {
		sb.WriteString(fmt.Sprintf("Record: %d ", r.RecordID))
	}

	if r.ColumnName != "" {
		sb.WriteString(fmt.Sprintf("Column: %s ", r.ColumnName))
		if r.SourceValue != nil {
			sb.WriteString(fmt.Sprintf("Value: %v ", r.SourceValue))
		}
	}

	if r.Error != nil {
		sb.WriteString(fmt.Sprintf("Error: %s", r.Error.Error()))
	} else if r.Message != "" {
		sb.WriteString(fmt.Sprintf("Error: %s", r.Message))
	}

	return sb.String()
}

// ErrorCollector accumulates data-quality failures during a run so the
// report can surface them. Structural failures abort instead of collecting.
type ErrorCollector struct {
	logger       *zap.Logger
	errorCounts  map[ErrorCategory]int
	sampleErrors map[ErrorCategory][]ErrorRecord
	passErrors   map[string]int
	mu           sync.Mutex
	maxSamples   int
}

// NewErrorCollector creates a new error collector
func NewErrorCollector(logger *zap.Logger) *ErrorCollector {
	return &ErrorCollector{
		logger:       logger,
		errorCounts:  make(map[ErrorCategory]int),
		sampleErrors: make(map[ErrorCategory][]ErrorRecord),
		passErrors:   make(map[string]int),
		maxSamples:   5, // Store up to 5 sample errors per category
	}
}

// HandleError records an error and determines the follow-up action
func (ec *ErrorCollector) HandleError(record ErrorRecord) Action {
	ec.Record(record)

	switch record.Category {
	case ErrorCategoryNone, ErrorCategoryWarning:
		return ActionContinue

	case ErrorCategoryParse, ErrorCategoryConversion:
		// The record survives with the affected field left null
		return ActionContinue

	case ErrorCategoryRecordLevel:
		return ActionSkipRecord

	case ErrorCategorySchema, ErrorCategoryOrdering, ErrorCategorySystemLevel, ErrorCategoryCritical:
		if ec.logger != nil {
			ec.logger.Error("Fatal error during cleansing run",
				zap.String("category", record.Category.String()),
				zap.String("error", record.Message))
		}
		return ActionAbort

	default:
		return ActionContinue
	}
}

// Record saves an error occurrence
func (ec *ErrorCollector) Record(record ErrorRecord) {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	ec.errorCounts[record.Category]++

	// Save sample errors (up to max samples per category)
	samples := ec.sampleErrors[record.Category]
	if len(samples) < ec.maxSamples {
		ec.sampleErrors[record.Category] = append(samples, record)
	}

	if record.Pass != "" {
		ec.passErrors[record.Pass]++
	}

	if ec.logger != nil {
		logLevel := zap.DebugLevel
		switch record.Category {
		case ErrorCategoryWarning, ErrorCategoryParse, ErrorCategoryConversion:
			logLevel = zap.DebugLevel
		case ErrorCategoryRecordLevel:
			logLevel = zap.WarnLevel
		case ErrorCategorySchema, ErrorCategoryOrdering, ErrorCategorySystemLevel, ErrorCategoryCritical:
			logLevel = zap.ErrorLevel
		}

		ec.logger.Log(logLevel, "Cleansing error",
			zap.String("category", record.Category.String()),
			zap.String("pass", record.Pass),
			zap.Int("recordID", record.RecordID),
			zap.String("column", record.ColumnName),
			zap.String("error", record.Message))
	}
}

// GetErrorSummary returns error counts per category
func (ec *ErrorCollector) GetErrorSummary() map[ErrorCategory]int {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	summary := make(map[ErrorCategory]int)
	for category, count := range ec.errorCounts {
		summary[category] = count
	}

	return summary
}

// GetErrorSamples returns sample errors for each category
func (ec *ErrorCollector) GetErrorSamples() map[ErrorCategory][]ErrorRecord {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	samples := make(map[ErrorCategory][]ErrorRecord)
	for category, records := range ec.sampleErrors {
		categorySamples := make([]ErrorRecord, len(records))
		copy(categorySamples, records)
		samples[category] = categorySamples
	}

	return samples
}

// GetPassErrorCounts returns error counts by pass
func (ec *ErrorCollector) GetPassErrorCounts() map[string]int {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	passCounts := make(map[string]int)
	for pass, count := range ec.passErrors {
		passCounts[pass] = count
	}

	return passCounts
}

// CountByCategory returns the accumulated count for one category
func (ec *ErrorCollector) CountByCategory(category ErrorCategory) int {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return ec.errorCounts[category]
}

// WrapError creates a new error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
