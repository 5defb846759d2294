// pkg/source/csv_test.go
package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVSource_ReadsHeaderAndRows(t *testing.T) {
	path := writeTempFile(t, "sales.csv",
		"unique_id,parcel_id,property_address,sale_price\n"+
			"1001,007 00 0 125.00,\"123 MAIN ST, NASHVILLE\",132000\n"+
			"1002, 033 06 0 041.00,1808 FOX CHASE DR,240000\n")

	table, err := NewCSVSource(path).Read(context.Background())

	require.NoError(t, err)
	assert.Equal(t, path, table.Name)
	assert.Equal(t, []string{"unique_id", "parcel_id", "property_address", "sale_price"}, table.Columns)
	require.Equal(t, 2, table.RowCount())

	assert.Equal(t, "1001", table.Rows[0]["unique_id"])
	assert.Equal(t, "123 MAIN ST, NASHVILLE", table.Rows[0]["property_address"],
		"quoted fields keep their commas")
	assert.Equal(t, "033 06 0 041.00", table.Rows[1]["parcel_id"],
		"leading space after the delimiter is trimmed")
}

func TestCSVSource_ShortRowOmitsTrailingColumns(t *testing.T) {
	path := writeTempFile(t, "short.csv",
		"unique_id,parcel_id,sale_price\n"+
			"1001,007 00 0 125.00\n")

	table, err := NewCSVSource(path).Read(context.Background())

	require.NoError(t, err)
	require.Equal(t, 1, table.RowCount())
	assert.Equal(t, "007 00 0 125.00", table.Rows[0]["parcel_id"])
	_, present := table.Rows[0]["sale_price"]
	assert.False(t, present, "missing trailing cells produce no key at all")
}

func TestCSVSource_WithDelimiter(t *testing.T) {
	path := writeTempFile(t, "semi.csv",
		"unique_id;property_address\n"+
			"1001;123 MAIN ST, NASHVILLE\n")

	table, err := NewCSVSource(path).WithDelimiter(';').Read(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"unique_id", "property_address"}, table.Columns)
	assert.Equal(t, "123 MAIN ST, NASHVILLE", table.Rows[0]["property_address"])
}

func TestCSVSource_MissingFile(t *testing.T) {
	_, err := NewCSVSource(filepath.Join(t.TempDir(), "nope.csv")).Read(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open")
}

func TestCSVSource_EmptyFile(t *testing.T) {
	path := writeTempFile(t, "empty.csv", "")

	_, err := NewCSVSource(path).Read(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read header")
}

func TestCSVSource_HeaderOnly(t *testing.T) {
	path := writeTempFile(t, "header.csv", "unique_id,parcel_id\n")

	table, err := NewCSVSource(path).Read(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, table.RowCount())
}

func TestCSVSource_Name(t *testing.T) {
	src := NewCSVSource("/data/sales.csv")
	assert.Equal(t, "/data/sales.csv", src.Name())
	assert.NoError(t, src.Close())
}
