// Package table turns search result items into a ranked, column-ordered table.
package table

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"

	"github.com/klytics/rpakit/internal/search"
)

// RankColumn is the default header of the rank column.
const RankColumn = "순위"

// Table is a header plus rows of cell values. Column 0 is the rank.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Options controls table construction.
type Options struct {
	RankHeader string
	StripTags  bool
}

// FromItems builds a table from search items. Columns are the union of item
// keys in first-seen order; ranks run from 1 to len(items).
func FromItems(items []search.Item, opts Options) *Table {
	header := opts.RankHeader
	if header == "" {
		header = RankColumn
	}

	t := &Table{Columns: []string{header}}
	index := make(map[string]int)
	for _, it := range items {
		for _, f := range it {
			if _, ok := index[f.Key]; !ok {
				index[f.Key] = len(t.Columns)
				t.Columns = append(t.Columns, f.Key)
			}
		}
	}

	for i, it := range items {
		row := make([]any, len(t.Columns))
		row[0] = i + 1
		for _, f := range it {
			v := f.Value
			if s, ok := v.(string); ok && opts.StripTags {
				v = StripTags(s)
			}
			row[index[f.Key]] = v
		}
		t.Rows = append(t.Rows, row)
	}

	return t
}

// FromJSON parses a raw search response body and builds a table from its items.
func FromJSON(raw []byte, opts Options) (*Table, error) {
	resp, err := search.ParseResponse(raw)
	if err != nil {
		return nil, err
	}
	return FromItems(resp.Items, opts), nil
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Column returns all values of the named column, or nil if it does not exist.
func (t *Table) Column(name string) []any {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	values := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values
}

// Matrix returns the header followed by the rows, ready to be written to a sheet.
func (t *Table) Matrix() [][]any {
	out := make([][]any, 0, len(t.Rows)+1)
	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	out = append(out, header)
	return append(out, t.Rows...)
}

// MarshalRows renders the matrix as compact JSON, one array per row.
func (t *Table) MarshalRows() (string, error) {
	data, err := json.Marshal(t.Matrix())
	if err != nil {
		return "", fmt.Errorf("could not encode table: %w", err)
	}
	return string(data), nil
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripTags removes markup such as the <b> highlight tags the API wraps around
// matched keywords, and unescapes HTML entities.
func StripTags(s string) string {
	return html.UnescapeString(tagPattern.ReplaceAllString(s, ""))
}
