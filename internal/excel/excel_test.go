package excel

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ahmadjajja/montana-specimens-mapper/internal/domain"
)

func sampleTable() *domain.Table {
	return &domain.Table{
		Columns: domain.RequiredColumns,
		Rows: [][]string{
			{"46.5927", "N", "112.0391", "W", "Asteraceae", "Solidago", "missouriensis", "1987"},
			{`46°35'30"`, "N", "112°2'21\"", "W", "Rosaceae", "Rosa", "woodsii", "2001"},
		},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTableTo(&buf, sampleTable()))

	table, err := ReadTable(&buf)
	require.NoError(t, err)

	assert.Equal(t, domain.RequiredColumns, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Asteraceae", table.Rows[0][4])
	assert.Equal(t, `46°35'30"`, table.Rows[1][0])
}

func TestReadTable_NotAWorkbook(t *testing.T) {
	_, err := ReadTable(strings.NewReader("lat,long\n46.5,-112.0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open workbook")
}

func TestReadTableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "specimens.xlsx")
	require.NoError(t, WriteTable(path, sampleTable()))

	table, err := ReadTableFile(path)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)
}

func TestReadTableFile_Missing(t *testing.T) {
	_, err := ReadTableFile(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}
