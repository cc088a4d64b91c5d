// Package workbook reads and mutates .xlsx workbooks: sheet rotation, table
// and report writes, backups, and plain sheet dumps.
package workbook

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet represents a single worksheet's data as text.
type Sheet struct {
	Name string     `json:"name"`
	Rows [][]string `json:"rows"`
}

// Workbook is a text snapshot of every sheet in a file.
type Workbook struct {
	Sheets []Sheet `json:"sheets"`
}

// Open opens an existing .xlsx file for mutation.
func Open(path string) (*excelize.File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s — check that the path is correct", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s — is this a valid .xlsx file? %w", path, err)
	}
	return f, nil
}

// ReadFile reads an .xlsx file and returns a snapshot of all sheets.
func ReadFile(path string) (*Workbook, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return snapshot(f)
}

// ReadBytes reads an .xlsx file from a byte slice.
func ReadBytes(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not read Excel data: %w", err)
	}
	defer f.Close()

	return snapshot(f)
}

func snapshot(f *excelize.File) (*Workbook, error) {
	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := Rows(f, name)
		if err != nil {
			return nil, err
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: name, Rows: rows})
	}
	return wb, nil
}

// Rows returns the text content of a sheet.
func Rows(f *excelize.File, sheet string) ([][]string, error) {
	if !HasSheet(f, sheet) {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("could not read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// HasSheet reports whether the workbook contains a sheet with the given name.
func HasSheet(f *excelize.File, name string) bool {
	for _, s := range f.GetSheetList() {
		if s == name {
			return true
		}
	}
	return false
}

// GetSheet returns a specific sheet by name.
func (wb *Workbook) GetSheet(name string) (*Sheet, error) {
	for i := range wb.Sheets {
		if wb.Sheets[i].Name == name {
			return &wb.Sheets[i], nil
		}
	}

	available := make([]string, len(wb.Sheets))
	for i, s := range wb.Sheets {
		available[i] = s.Name
	}
	return nil, fmt.Errorf("%w: %q — available sheets: %v", ErrSheetNotFound, name, available)
}

// ToCSV converts a sheet's data to CSV.
func (s *Sheet) ToCSV() string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.WriteAll(s.Rows)
	return b.String()
}

// RowCount returns the number of rows with at least one non-empty cell.
func (s *Sheet) RowCount() int {
	count := 0
	for _, row := range s.Rows {
		for _, cell := range row {
			if cell != "" {
				count++
				break
			}
		}
	}
	return count
}
