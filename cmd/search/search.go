// Package search provides the "rpa search" command.
package search

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/klytics/rpakit/internal/clients"
	"github.com/klytics/rpakit/internal/config"
	"github.com/klytics/rpakit/internal/output"
	"github.com/klytics/rpakit/internal/search"
	"github.com/klytics/rpakit/internal/table"
)

var defaultColumns = map[search.Kind][]string{
	search.KindShop: {table.RankColumn, "title", "lprice", "mallName", "brand"},
	search.KindNews: {table.RankColumn, "title", "pubDate"},
	search.KindBlog: {table.RankColumn, "title", "bloggername", "postdate"},
	search.KindBook: {table.RankColumn, "title", "author", "discount"},
}

// NewCommand returns the search command.
func NewCommand() *cobra.Command {
	var (
		display   int
		start     int
		sortOrder string
		columns   []string
		raw       bool
	)

	cmd := &cobra.Command{
		Use:   "search <kind> [query]",
		Short: "Run a keyword search and print the results",
		Long: `Call the search API for one vertical and print the items as a ranked table.

Kinds: shop, news, blog, book, encyc, cafearticle, kin, webkr, image, doc, local.
The query defaults to search.query from the config.`,
		Example: `  rpa search shop 포켄스
  rpa search news --display 5 --columns title,link
  rpa search shop --raw > shop.json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			client, err := clients.Search(cfg)
			if err != nil {
				return err
			}

			req := search.Request{
				Kind:    search.Kind(strings.ToLower(args[0])),
				Query:   cfg.Search.Query,
				Display: cfg.Search.Display,
				Start:   start,
				Sort:    cfg.Search.Sort,
			}
			if len(args) > 1 {
				req.Query = args[1]
			}
			if cmd.Flags().Changed("display") {
				req.Display = display
			}
			if cmd.Flags().Changed("sort") {
				req.Sort = sortOrder
			}

			resp, err := client.Search(cmd.Context(), req)
			if err != nil {
				return err
			}

			if raw {
				_, err := os.Stdout.Write(resp.Raw)
				return err
			}

			t := table.FromItems(resp.Items, table.Options{StripTags: cfg.Search.StripTags})
			if jsonFlag {
				return output.PrintJSON("search", map[string]any{
					"kind":  req.Kind,
					"query": req.Query,
					"total": resp.Total,
					"table": t,
				})
			}

			if len(columns) == 0 {
				columns = defaultColumns[req.Kind]
			}
			fmt.Printf("%s %q: %d of %d\n\n", req.Kind, req.Query, t.Len(), resp.Total)
			output.PrintTable(os.Stdout, Project(t, columns))
			return nil
		},
	}

	cmd.Flags().IntVar(&display, "display", 0, "Results to return, 1-100 (default: search.display)")
	cmd.Flags().IntVar(&start, "start", 0, "1-based offset of the first result")
	cmd.Flags().StringVar(&sortOrder, "sort", "", "Order: sim | date | asc | dsc (default: search.sort)")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Columns to print (default depends on the kind)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the raw API response")

	return cmd
}

// Project returns the header and rows of t restricted to columns, as text.
// Unknown columns print empty. With no columns every column is kept.
func Project(t *table.Table, columns []string) [][]string {
	if len(columns) == 0 {
		columns = t.Columns
	}

	cols := make([][]any, len(columns))
	for i, c := range columns {
		cols[i] = t.Column(c)
	}

	out := [][]string{columns}
	for r := range t.Rows {
		row := make([]string, len(columns))
		for i, values := range cols {
			if values != nil && values[r] != nil {
				row[i] = fmt.Sprint(values[r])
			}
		}
		out = append(out, row)
	}
	return out
}
