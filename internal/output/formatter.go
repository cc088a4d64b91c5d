package output

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// MaxColumnWidth caps a column in PrintTable.
const MaxColumnWidth = 40

// PrintTable renders rows as an aligned text table. The first row is the
// header. Long cells are cut with "~".
func PrintTable(w io.Writer, rows [][]string) {
	dim := color.New(color.FgHiBlack)
	if len(rows) == 0 {
		dim.Fprintln(w, "  (empty)")
		return
	}

	widths := columnWidths(rows)

	printRow(w, rows[0], widths, color.New(color.Bold))
	dim.Fprint(w, "  ")
	for j, width := range widths {
		if j > 0 {
			dim.Fprint(w, "+-")
		}
		dim.Fprint(w, strings.Repeat("-", width+1))
	}
	fmt.Fprintln(w)

	for _, row := range rows[1:] {
		printRow(w, row, widths, nil)
	}
	dim.Fprintf(w, "  (%d rows)\n", len(rows)-1)
}

func columnWidths(rows [][]string) []int {
	var widths []int
	for _, row := range rows {
		for j, cell := range row {
			for len(widths) <= j {
				widths = append(widths, 3)
			}
			if n := utf8.RuneCountInString(cell); n > widths[j] {
				widths[j] = min(n, MaxColumnWidth)
			}
		}
	}
	return widths
}

func printRow(w io.Writer, row []string, widths []int, style *color.Color) {
	fmt.Fprint(w, "  ")
	for j, width := range widths {
		if j > 0 {
			fmt.Fprint(w, "| ")
		}
		cell := ""
		if j < len(row) {
			cell = strings.ReplaceAll(row[j], "\n", " ")
		}
		runes := []rune(cell)
		if len(runes) > width {
			cell = string(runes[:width-1]) + "~"
			runes = []rune(cell)
		}
		padded := cell + strings.Repeat(" ", width-len(runes)+1)
		if style != nil {
			style.Fprint(w, padded)
		} else {
			fmt.Fprint(w, padded)
		}
	}
	fmt.Fprintln(w)
}
