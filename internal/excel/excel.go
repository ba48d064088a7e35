// Package excel reads and writes specimen workbooks. Only the first sheet is
// consulted; the domain validator owns everything past raw cell text.
package excel

import (
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/Ahmadjajja/montana-specimens-mapper/internal/domain"
)

// ReadTable reads the first sheet of an xlsx workbook into a raw table.
// Header cells keep their exact text; column matching is the validator's job.
func ReadTable(r io.Reader) (*domain.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	return &domain.Table{Columns: rows[0], Rows: rows[1:]}, nil
}

// ReadTableFile opens a workbook from disk. Used by the offline CLIs.
func ReadTableFile(path string) (*domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTable(f)
}

// WriteTable writes a table to an xlsx workbook on disk.
func WriteTable(path string, t *domain.Table) error {
	f := newWorkbook(t)
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// WriteTableTo streams a table as xlsx. Tests use this to build in-memory
// upload bodies.
func WriteTableTo(w io.Writer, t *domain.Table) error {
	f := newWorkbook(t)
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func newWorkbook(t *domain.Table) *excelize.File {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	setRow := func(rowNum int, cells []string) {
		for ci, v := range cells {
			cell, _ := excelize.CoordinatesToCellName(ci+1, rowNum)
			f.SetCellValue(sheet, cell, v) //nolint:errcheck // coordinates are always valid here
		}
	}

	setRow(1, t.Columns)
	for i, row := range t.Rows {
		setRow(i+2, row)
	}
	return f
}
