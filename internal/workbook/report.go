package workbook

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// Block is a titled text section written into column A: the title at Row and
// the content directly below it.
type Block struct {
	Row     int    `json:"row"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Report describes the cells written into the report sheet.
type Report struct {
	StampRow int     `json:"stamp_row,omitempty"`
	Stamp    string  `json:"stamp,omitempty"`
	Blocks   []Block `json:"blocks"`
	// Width of column A; zero keeps the current width.
	Width float64 `json:"width,omitempty"`
}

// StampLine formats the "as of" line shown above the report blocks.
func StampLine(t time.Time) string {
	return t.Format("2006-01-02 15:04:05") + " 기준"
}

// WriteReport writes the stamp line and every block into sheet. Content cells
// get a wrap-text style. Cells outside the report are left untouched.
func WriteReport(f *excelize.File, sheet string, r Report) error {
	if !HasSheet(f, sheet) {
		return fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	if r.Stamp != "" && r.StampRow > 0 {
		if err := f.SetCellStr(sheet, fmt.Sprintf("A%d", r.StampRow), r.Stamp); err != nil {
			return fmt.Errorf("could not write stamp: %w", err)
		}
	}

	wrap, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return fmt.Errorf("could not create wrap style: %w", err)
	}

	for _, b := range r.Blocks {
		if b.Row < 1 {
			return fmt.Errorf("invalid report row %d for %q", b.Row, b.Title)
		}
		titleCell := fmt.Sprintf("A%d", b.Row)
		contentCell := fmt.Sprintf("A%d", b.Row+1)

		if err := f.SetCellStr(sheet, titleCell, b.Title); err != nil {
			return fmt.Errorf("could not write %s: %w", titleCell, err)
		}
		if err := f.SetCellStr(sheet, contentCell, b.Content); err != nil {
			return fmt.Errorf("could not write %s: %w", contentCell, err)
		}
		if err := f.SetCellStyle(sheet, contentCell, contentCell, wrap); err != nil {
			return fmt.Errorf("could not style %s: %w", contentCell, err)
		}
	}

	if r.Width > 0 {
		if err := f.SetColWidth(sheet, "A", "A", r.Width); err != nil {
			return fmt.Errorf("could not set column width: %w", err)
		}
	}
	return nil
}
