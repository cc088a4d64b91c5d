package search

import (
	"testing"

	"github.com/klytics/rpakit/internal/search"
	"github.com/klytics/rpakit/internal/table"
)

func TestProject(t *testing.T) {
	items := []search.Item{
		{{Key: "title", Value: "<b>포켄스</b> 사료"}, {Key: "lprice", Value: "12900"}},
		{{Key: "title", Value: "간식"}},
	}
	tbl := table.FromItems(items, table.Options{StripTags: true})

	got := Project(tbl, []string{table.RankColumn, "title", "lprice", "missing"})
	if len(got) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(got))
	}
	if got[0][3] != "missing" {
		t.Errorf("header = %v", got[0])
	}
	if got[1][0] != "1" || got[1][1] != "포켄스 사료" || got[1][2] != "12900" {
		t.Errorf("row 1 = %v", got[1])
	}
	if got[2][0] != "2" || got[2][2] != "" || got[2][3] != "" {
		t.Errorf("row 2 = %v", got[2])
	}
}

func TestProjectAllColumns(t *testing.T) {
	items := []search.Item{{{Key: "title", Value: "a"}, {Key: "link", Value: "https://example.com"}}}
	got := Project(table.FromItems(items, table.Options{}), nil)
	if len(got[0]) != 3 {
		t.Errorf("header = %v, want rank, title, link", got[0])
	}
}
