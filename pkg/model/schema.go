// pkg/model/schema.go
package model

import "strings"

// TableSchema describes the shape of a tabular source
type TableSchema struct {
	Name    string   // Source table or file name
	Columns []Column // Column definitions
}

// Column represents metadata about a source column
type Column struct {
	Name     string // Canonical column name
	DataType string // Semantic type: int, float, string, date
	Nullable bool   // Whether the column allows missing values
}

// ExpectedSaleColumns returns the raw schema the pipeline requires.
// The loader refuses sources missing any of these columns.
func ExpectedSaleColumns() []Column {
	return []Column{
		{Name: ColUniqueID, DataType: "int", Nullable: false},
		{Name: ColParcelID, DataType: "string", Nullable: false},
		{Name: ColLandUse, DataType: "string", Nullable: true},
		{Name: ColPropertyAddress, DataType: "string", Nullable: true},
		{Name: ColSaleDate, DataType: "date", Nullable: true},
		{Name: ColSalePrice, DataType: "float", Nullable: true},
		{Name: ColLegalReference, DataType: "string", Nullable: true},
		{Name: ColSoldAsVacant, DataType: "string", Nullable: true},
		{Name: ColOwnerAddress, DataType: "string", Nullable: true},
		{Name: ColTaxDistrict, DataType: "string", Nullable: true},
	}
}

// GetColumnByName returns a column by name (case-insensitive)
// Returns nil if column not found
func (ts *TableSchema) GetColumnByName(name string) *Column {
	normalizedName := NormalizeColumnName(name)
	for i, col := range ts.Columns {
		if NormalizeColumnName(col.Name) == normalizedName {
			return &ts.Columns[i]
		}
	}
	return nil
}

// MissingColumns returns the expected column names absent from a header.
// Header names match case-insensitively with spaces and underscores
// ignored, so "UniqueID", "unique_id" and "Unique ID" are the same column.
func MissingColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[NormalizeColumnName(h)] = true
	}

	var missing []string
	for _, col := range ExpectedSaleColumns() {
		if !present[NormalizeColumnName(col.Name)] {
			missing = append(missing, col.Name)
		}
	}
	return missing
}

// NormalizeColumnName canonicalizes a column name for comparison
func NormalizeColumnName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "")
	name = strings.ReplaceAll(name, "_", "")
	return name
}
