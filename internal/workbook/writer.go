package workbook

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

// WriteFile creates a new .xlsx file from a text snapshot.
func WriteFile(wb *Workbook, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range wb.Sheets {
		name := sheet.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}

		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("could not rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("could not create sheet %q: %w", name, err)
		}

		rows := make([][]any, len(sheet.Rows))
		for r, row := range sheet.Rows {
			rows[r] = make([]any, len(row))
			for c, cell := range row {
				rows[r][c] = cell
			}
		}
		if err := writeRows(f, name, rows); err != nil {
			return err
		}
	}

	return Save(f, path)
}

// Save writes the workbook to path and checks that a non-empty file landed on disk.
func Save(f *excelize.File, path string) error {
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("could not save %s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("saved workbook is missing: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("saved workbook %s is empty", path)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("invalid cell coordinates: %w", err)
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("could not write row %d of %q: %w", i+1, sheet, err)
		}
	}
	return nil
}
