package workbook

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// ErrSheetNotFound is returned when a required sheet is missing.
var ErrSheetNotFound = errors.New("sheet not found")

// Names are the sheet names used by the rotation workflow.
type Names struct {
	Current  string
	Previous string
	Report   string
}

// DefaultNames returns now_list / prev_list / now_report.
func DefaultNames() Names {
	return Names{Current: "now_list", Previous: "prev_list", Report: "now_report"}
}

// WithDefaults fills empty names from DefaultNames.
func (n Names) WithDefaults() Names {
	d := DefaultNames()
	if n.Current == "" {
		n.Current = d.Current
	}
	if n.Previous == "" {
		n.Previous = d.Previous
	}
	if n.Report == "" {
		n.Report = d.Report
	}
	return n
}

// Ensure creates the workbook with the current-list sheet first and the report
// sheet second when path does not exist. It reports whether a file was created.
func Ensure(path string, names Names) (bool, error) {
	names = names.WithDefaults()

	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("could not stat %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return false, fmt.Errorf("could not create %s: %w", dir, err)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), names.Current); err != nil {
		return false, fmt.Errorf("could not rename default sheet: %w", err)
	}
	if _, err := f.NewSheet(names.Report); err != nil {
		return false, fmt.Errorf("could not create sheet %q: %w", names.Report, err)
	}

	if err := Save(f, path); err != nil {
		return false, err
	}
	log.Info().Str("path", path).Msg("workbook created")
	return true, nil
}

// BackupName returns <stem>_YYYYMMDDHHMMSS<ext> for the given time.
func BackupName(path string, now time.Time) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s_%s%s", stem, now.Format("20060102150405"), ext)
}

// Backup copies path into dir (or next to path when dir is empty) under a
// timestamped name and returns the backup path.
func Backup(path, dir string, now time.Time) (string, error) {
	if dir == "" {
		dir = filepath.Dir(path)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("could not create backup directory: %w", err)
	}

	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("could not open %s for backup: %w", path, err)
	}
	defer src.Close()

	dst := filepath.Join(dir, BackupName(path, now))
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("could not create backup %s: %w", dst, err)
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return "", fmt.Errorf("could not copy backup: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("could not finish backup: %w", err)
	}

	log.Info().Str("backup", dst).Msg("backup created")
	return dst, nil
}

// Rotate drops the previous-list sheet, renames the current list to the
// previous list, and creates an empty current list right after it.
// If the current list is missing nothing is changed and ErrSheetNotFound is returned.
func Rotate(f *excelize.File, names Names) error {
	names = names.WithDefaults()

	if !HasSheet(f, names.Current) {
		return fmt.Errorf("%w: %q — the workbook has no current list to rotate", ErrSheetNotFound, names.Current)
	}

	if HasSheet(f, names.Previous) {
		if err := f.DeleteSheet(names.Previous); err != nil {
			return fmt.Errorf("could not delete %q: %w", names.Previous, err)
		}
		log.Debug().Str("sheet", names.Previous).Msg("sheet deleted")
	}

	if err := f.SetSheetName(names.Current, names.Previous); err != nil {
		return fmt.Errorf("could not rename %q: %w", names.Current, err)
	}
	log.Debug().Str("from", names.Current).Str("to", names.Previous).Msg("sheet renamed")

	if _, err := f.NewSheet(names.Current); err != nil {
		return fmt.Errorf("could not create %q: %w", names.Current, err)
	}

	// NewSheet appends; move the fresh list in front of whatever followed prev_list.
	sheets := f.GetSheetList()
	for i, s := range sheets {
		if s != names.Previous {
			continue
		}
		if next := sheets[i+1]; next != names.Current {
			if err := f.MoveSheet(names.Current, next); err != nil {
				return fmt.Errorf("could not position %q: %w", names.Current, err)
			}
		}
		break
	}

	log.Debug().Str("sheet", names.Current).Msg("sheet created")
	return nil
}

// Clear removes every row of a sheet.
func Clear(f *excelize.File, sheet string) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("could not read sheet %q: %w", sheet, err)
	}
	for r := len(rows); r >= 1; r-- {
		if err := f.RemoveRow(sheet, r); err != nil {
			return fmt.Errorf("could not clear row %d of %q: %w", r, sheet, err)
		}
	}
	return nil
}

// WriteTable clears sheet and writes rows starting at A1.
func WriteTable(f *excelize.File, sheet string, rows [][]any) error {
	if !HasSheet(f, sheet) {
		return fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}
	if err := Clear(f, sheet); err != nil {
		return err
	}
	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}
	log.Debug().Str("sheet", sheet).Int("rows", len(rows)).Msg("sheet updated")
	return nil
}
