// Package pricestats summarizes the numeric columns of a listing, such as
// the lowest price of each shop item.
package pricestats

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
)

// DefaultColumn is the shop search field holding the lowest price.
const DefaultColumn = "lprice"

// ErrNoData is returned when a column has no numeric values.
var ErrNoData = errors.New("no numeric values")

// Summary holds descriptive statistics for one column.
type Summary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

// Summarize computes statistics over the values that parse as numbers.
// Strings such as "12,900" are accepted; everything else is skipped.
func Summarize(column string, values []any) (Summary, error) {
	s := Summary{Column: column}

	data := make(stats.Float64Data, 0, len(values))
	for _, v := range values {
		if f, ok := toFloat(v); ok {
			data = append(data, f)
		}
	}
	if len(data) == 0 {
		return s, fmt.Errorf("%w in column %q", ErrNoData, column)
	}
	s.Count = len(data)

	var err error
	if s.Min, err = stats.Min(data); err != nil {
		return s, err
	}
	if s.Max, err = stats.Max(data); err != nil {
		return s, err
	}
	if s.Mean, err = stats.Mean(data); err != nil {
		return s, err
	}
	if s.Median, err = stats.Median(data); err != nil {
		return s, err
	}
	if s.StdDev, err = stats.StandardDeviation(data); err != nil {
		return s, err
	}
	return s, nil
}

// FromRows summarizes a column of sheet rows whose first row is the header.
func FromRows(rows [][]string, column string) (Summary, error) {
	if len(rows) == 0 {
		return Summary{Column: column}, fmt.Errorf("%w in column %q", ErrNoData, column)
	}

	idx := -1
	for i, h := range rows[0] {
		if h == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Summary{Column: column}, fmt.Errorf("column %q not found", column)
	}

	values := make([]any, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if idx < len(row) {
			values = append(values, row[idx])
		}
	}
	return Summarize(column, values)
}

// String renders the summary on one line.
func (s Summary) String() string {
	return fmt.Sprintf("%s: n=%d min=%s max=%s mean=%s median=%s",
		s.Column, s.Count, num(s.Min), num(s.Max), num(s.Mean), num(s.Median))
}

// Diff describes how the mean moved between two summaries.
func Diff(prev, now Summary) string {
	if prev.Count == 0 || now.Count == 0 {
		return fmt.Sprintf("%s: not enough data to compare", now.Column)
	}
	change := now.Mean - prev.Mean
	pct := 0.0
	if prev.Mean != 0 {
		pct = change / prev.Mean * 100
	}
	return fmt.Sprintf("%s mean %s -> %s (%+.1f%%), items %d -> %d",
		now.Column, num(prev.Mean), num(now.Mean), pct, prev.Count, now.Count)
}

func num(f float64) string {
	r, _ := stats.Round(f, 0)
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
