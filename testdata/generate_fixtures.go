//go:build ignore

// This program generates the sample workbook used by benchmarks and manual
// runs: go run testdata/generate_fixtures.go
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klytics/rpakit/internal/search"
	"github.com/klytics/rpakit/internal/table"
	"github.com/klytics/rpakit/internal/workbook"
)

func main() {
	path := filepath.Join("testdata", "sample.xlsx")
	if err := generate(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating %s: %v\n", path, err)
		os.Exit(1)
	}
	fmt.Println("Test fixtures generated successfully.")
}

func generate(path string) error {
	os.Remove(path)
	names := workbook.DefaultNames()
	if _, err := workbook.Ensure(path, names); err != nil {
		return err
	}

	f, err := workbook.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := workbook.WriteTable(f, names.Current, listing(20, 12000).Matrix()); err != nil {
		return err
	}
	if err := workbook.Rotate(f, names); err != nil {
		return err
	}
	if err := workbook.WriteTable(f, names.Current, listing(20, 11500).Matrix()); err != nil {
		return err
	}

	err = workbook.WriteReport(f, names.Report, workbook.Report{
		StampRow: 3,
		Stamp:    workbook.StampLine(time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local)),
		Width:    100,
		Blocks: []workbook.Block{
			{Row: 4, Title: "오픈 마켓 리포트", Content: "- 평균 가격이 소폭 하락했습니다."},
			{Row: 7, Title: "네이버 뉴스 분석", Content: "- 신제품 출시 소식이 이어졌습니다."},
		},
	})
	if err != nil {
		return err
	}
	return workbook.Save(f, path)
}

func listing(n int, base int) *table.Table {
	items := make([]search.Item, n)
	for i := range items {
		items[i] = search.Item{
			{Key: "title", Value: fmt.Sprintf("<b>포켄스</b> 사료 %d", i+1)},
			{Key: "link", Value: fmt.Sprintf("https://shopping.example.com/%d", i+1)},
			{Key: "lprice", Value: fmt.Sprint(base + i*100)},
			{Key: "mallName", Value: "펫마트"},
			{Key: "brand", Value: "포켄스"},
		}
	}
	return table.FromItems(items, table.Options{StripTags: true})
}
