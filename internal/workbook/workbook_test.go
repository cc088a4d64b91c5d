package workbook

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newWorkbook(t *testing.T) (string, *excelize.File) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "genai_rpa.xlsx")
	created, err := Ensure(path, DefaultNames())
	require.NoError(t, err)
	require.True(t, created)

	f, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return path, f
}

func TestEnsureCreatesSheets(t *testing.T) {
	path, f := newWorkbook(t)

	assert.Equal(t, []string{"now_list", "now_report"}, f.GetSheetList())

	created, err := Ensure(path, DefaultNames())
	require.NoError(t, err)
	assert.False(t, created, "existing workbook must not be recreated")
}

func TestBackupName(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	assert.Equal(t, "genai_rpa_20240309140507.xlsx", BackupName("/data/genai_rpa.xlsx", now))
}

func TestBackupCopiesFile(t *testing.T) {
	path, _ := newWorkbook(t)
	dir := filepath.Join(t.TempDir(), "backups")
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

	dst, err := Backup(path, dir, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "genai_rpa_20240309140507.xlsx"), dst)

	orig, err := os.ReadFile(path)
	require.NoError(t, err)
	copied, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, orig, copied)
}

func TestBackupDefaultsToSourceDir(t *testing.T) {
	path, _ := newWorkbook(t)

	dst, err := Backup(path, "", time.Now())
	require.NoError(t, err)
	assert.Equal(t, filepath.Dir(path), filepath.Dir(dst))
}

func countSheet(f *excelize.File, name string) int {
	n := 0
	for _, s := range f.GetSheetList() {
		if s == name {
			n++
		}
	}
	return n
}

func TestRotate(t *testing.T) {
	_, f := newWorkbook(t)
	names := DefaultNames()

	require.NoError(t, WriteTable(f, names.Current, [][]any{
		{"순위", "title"},
		{1, "first"},
		{2, "second"},
	}))

	require.NoError(t, Rotate(f, names))
	assert.Equal(t, []string{"prev_list", "now_list", "now_report"}, f.GetSheetList())

	prev, err := Rows(f, names.Previous)
	require.NoError(t, err)
	assert.Len(t, prev, 3)
	assert.Equal(t, "first", prev[1][1])

	cur, err := Rows(f, names.Current)
	require.NoError(t, err)
	assert.Empty(t, cur)

	// Rotating again replaces prev_list rather than adding a second one.
	require.NoError(t, WriteTable(f, names.Current, [][]any{{"순위"}, {1}}))
	require.NoError(t, Rotate(f, names))
	assert.Equal(t, 1, countSheet(f, names.Previous))
	assert.Equal(t, 1, countSheet(f, names.Current))

	prev, err = Rows(f, names.Previous)
	require.NoError(t, err)
	assert.Len(t, prev, 2)
}

func TestRotateMissingCurrent(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet("prev_list")
	require.NoError(t, err)
	before := f.GetSheetList()

	err = Rotate(f, DefaultNames())
	require.ErrorIs(t, err, ErrSheetNotFound)
	assert.Equal(t, before, f.GetSheetList(), "workbook must not change when now_list is missing")
}

func TestWriteTableClearsOldRows(t *testing.T) {
	_, f := newWorkbook(t)

	require.NoError(t, WriteTable(f, "now_list", [][]any{{"a"}, {"b"}, {"c"}}))
	require.NoError(t, WriteTable(f, "now_list", [][]any{{"x", 1.5, true}}))

	rows, err := Rows(f, "now_list")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"x", "1.5", "TRUE"}, rows[0])
}

func TestWriteTableUnknownSheet(t *testing.T) {
	_, f := newWorkbook(t)
	err := WriteTable(f, "missing", nil)
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestWriteReport(t *testing.T) {
	path, f := newWorkbook(t)
	stamp := StampLine(time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local))

	err := WriteReport(f, "now_report", Report{
		StampRow: 3,
		Stamp:    stamp,
		Width:    100,
		Blocks: []Block{
			{Row: 4, Title: "오픈 마켓 리포트", Content: "analysis"},
			{Row: 7, Title: "네이버 뉴스 분석", Content: "summary"},
		},
	})
	require.NoError(t, err)
	require.NoError(t, Save(f, path))

	g, err := Open(path)
	require.NoError(t, err)
	defer g.Close()

	want := map[string]string{
		"A3": "2024-03-09 14:05:07 기준",
		"A4": "오픈 마켓 리포트",
		"A5": "analysis",
		"A7": "네이버 뉴스 분석",
		"A8": "summary",
	}
	for cell, v := range want {
		got, err := g.GetCellValue("now_report", cell)
		require.NoError(t, err)
		assert.Equal(t, v, got, cell)
	}

	styleID, err := g.GetCellStyle("now_report", "A5")
	require.NoError(t, err)
	style, err := g.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Alignment)
	assert.True(t, style.Alignment.WrapText)
}

func TestWriteReportInvalidRow(t *testing.T) {
	_, f := newWorkbook(t)
	err := WriteReport(f, "now_report", Report{Blocks: []Block{{Row: 0, Title: "x"}}})
	assert.Error(t, err)
}

func TestSaveProducesNonEmptyFile(t *testing.T) {
	path, f := newWorkbook(t)
	require.NoError(t, Save(f, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.ErrorContains(t, err, "file not found")
}

func TestWriteAndRead(t *testing.T) {
	original := &Workbook{
		Sheets: []Sheet{
			{
				Name: "prices",
				Rows: [][]string{
					{"title", "lprice", "mallName"},
					{"사료 A", "12000", "스토어1"},
					{"사료 B", "9800", "스토어2"},
				},
			},
			{Name: "notes", Rows: [][]string{{"memo"}}},
		},
	}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteFile(original, path))

	wb, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 2)

	sheet, err := wb.GetSheet("prices")
	require.NoError(t, err)
	assert.Len(t, sheet.Rows, 3)
	assert.Equal(t, "사료 A", sheet.Rows[1][0])
	assert.Equal(t, 3, sheet.RowCount())
}

func TestReadBytes(t *testing.T) {
	path, _ := newWorkbook(t)
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	wb, err := ReadBytes(data)
	require.NoError(t, err)
	assert.Len(t, wb.Sheets, 2)
}

func TestSheetToCSV(t *testing.T) {
	sheet := Sheet{Rows: [][]string{{"순위", "title"}, {"1", "a,b"}}}
	assert.Equal(t, "순위,title\n1,\"a,b\"\n", sheet.ToCSV())
}

func TestGetSheetNotFound(t *testing.T) {
	wb := &Workbook{Sheets: []Sheet{{Name: "One"}, {Name: "Two"}}}
	_, err := wb.GetSheet("Three")
	require.ErrorIs(t, err, ErrSheetNotFound)
	assert.Contains(t, err.Error(), "One")
}

func TestRowCountSkipsBlankRows(t *testing.T) {
	sheet := Sheet{Rows: [][]string{{"a"}, {"", ""}, {"", "b"}}}
	assert.Equal(t, 2, sheet.RowCount())
}
