// pkg/model/cleaning.go
package model

import (
	"time"
)

// CleaningOperation represents a single mutation a pass applied to a record.
// Operations are accumulated and reported, never applied silently.
type CleaningOperation struct {
	Pass          string      // Pass that performed the mutation
	ColumnName    string      // Column that was cleaned
	RecordID      int         // unique_id of the affected record
	OriginalValue interface{} // Original value (may be nil)
	NewValue      string      // New value after cleaning
	Operation     string      // Type of cleaning performed (e.g., "date_normalization")
	Reason        string      // Reason for cleaning (e.g., "stripped_time_component")
	CleanedAt     time.Time   // When the cleaning occurred
}

// NewCleaningOperation builds an operation stamped with the current time
func NewCleaningOperation(pass, column string, recordID int, original interface{}, newValue, operation, reason string) CleaningOperation {
	return CleaningOperation{
		Pass:          pass,
		ColumnName:    column,
		RecordID:      recordID,
		OriginalValue: original,
		NewValue:      newValue,
		Operation:     operation,
		Reason:        reason,
		CleanedAt:     time.Now(),
	}
}
