// Package calc performs simple cell arithmetic on a workbook.
package calc

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/klytics/rpakit/internal/workbook"
)

// ErrNotNumeric is returned when an operand cell does not hold a number.
var ErrNotNumeric = errors.New("cell value is not numeric")

// Options selects the operand and output cells. Empty fields take the
// defaults B1, B2 and B3 on the active sheet.
type Options struct {
	Sheet string
	A     string
	B     string
	Out   string
}

// Result reports what was written.
type Result struct {
	Sheet string  `json:"sheet"`
	A     float64 `json:"a"`
	B     float64 `json:"b"`
	Out   string  `json:"out"`
	Value float64 `json:"value"`
}

func (o *Options) applyDefaults(f *excelize.File) {
	if o.Sheet == "" {
		o.Sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	if o.A == "" {
		o.A = "B1"
	}
	if o.B == "" {
		o.B = "B2"
	}
	if o.Out == "" {
		o.Out = "B3"
	}
}

// Subtract writes A - B into Out and saves the workbook in place.
func Subtract(path string, opts Options) (*Result, error) {
	f, err := workbook.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	res, err := SubtractFile(f, opts)
	if err != nil {
		return nil, err
	}
	if err := workbook.Save(f, path); err != nil {
		return nil, err
	}

	log.Info().Str("sheet", res.Sheet).Str("cell", res.Out).Float64("value", res.Value).Msg("difference written")
	return res, nil
}

// SubtractFile is Subtract on an already open workbook; it does not save.
func SubtractFile(f *excelize.File, opts Options) (*Result, error) {
	opts.applyDefaults(f)
	if !workbook.HasSheet(f, opts.Sheet) {
		return nil, fmt.Errorf("%w: %q", workbook.ErrSheetNotFound, opts.Sheet)
	}

	a, err := Number(f, opts.Sheet, opts.A)
	if err != nil {
		return nil, err
	}
	b, err := Number(f, opts.Sheet, opts.B)
	if err != nil {
		return nil, err
	}

	v := a - b
	if err := f.SetCellValue(opts.Sheet, opts.Out, v); err != nil {
		return nil, fmt.Errorf("could not write %s: %w", opts.Out, err)
	}
	return &Result{Sheet: opts.Sheet, A: a, B: b, Out: opts.Out, Value: v}, nil
}

// Number reads a numeric cell. Text cells are rejected even when they look
// like numbers.
func Number(f *excelize.File, sheet, cell string) (float64, error) {
	typ, err := f.GetCellType(sheet, cell)
	if err != nil {
		return 0, fmt.Errorf("could not read %s: %w", cell, err)
	}
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeFormula:
	default:
		return 0, fmt.Errorf("%w: %s!%s", ErrNotNumeric, sheet, cell)
	}

	raw, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return 0, fmt.Errorf("could not read %s: %w", cell, err)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s!%s = %q", ErrNotNumeric, sheet, cell, raw)
	}
	return v, nil
}
