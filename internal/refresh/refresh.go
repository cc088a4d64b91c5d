// Package refresh runs the sheet-rotation-and-report workflow: back up the
// workbook, rotate the listing sheets, fill the fresh listing from the shop
// search, and write model analyses into the report sheet.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/klytics/rpakit/internal/ai"
	"github.com/klytics/rpakit/internal/pricestats"
	"github.com/klytics/rpakit/internal/prompt"
	"github.com/klytics/rpakit/internal/search"
	"github.com/klytics/rpakit/internal/table"
	"github.com/klytics/rpakit/internal/workbook"
)

// Section names reported in Result.
const (
	SectionMarket = "market"
	SectionNews   = "news"
)

// DryRunText is written instead of a model reply when DryRun is set.
const DryRunText = "(dry run: analysis skipped)"

// Searcher fetches one page of search results.
type Searcher interface {
	Search(ctx context.Context, req search.Request) (*search.Response, error)
}

// Layout fixes where the report blocks go in the report sheet.
type Layout struct {
	StampRow    int
	MarketRow   int
	MarketTitle string
	NewsRow     int
	NewsTitle   string
	Width       float64
}

// DefaultLayout puts the stamp in A3, the market report in A4:A5 and the
// news analysis in A7:A8.
func DefaultLayout() Layout {
	return Layout{
		StampRow:    3,
		MarketRow:   4,
		MarketTitle: "오픈 마켓 리포트",
		NewsRow:     7,
		NewsTitle:   "네이버 뉴스 분석",
		Width:       100,
	}
}

// Options configures one run.
type Options struct {
	Path        string
	BackupDir   string
	Names       workbook.Names
	Query       string
	Display     int
	Sort        string
	StripTags   bool
	PriceColumn string
	Layout      Layout
	Model       string
	SkipNews    bool
	// DryRun skips the model calls and writes DryRunText instead.
	DryRun bool
}

// Result summarizes a finished run.
type Result struct {
	Workbook  string              `json:"workbook"`
	Created   bool                `json:"created"`
	Backup    string              `json:"backup"`
	ShopItems int                 `json:"shop_items"`
	NewsItems int                 `json:"news_items"`
	Written   []string            `json:"written"`
	Skipped   []string            `json:"skipped,omitempty"`
	Prices    *pricestats.Summary `json:"prices,omitempty"`
	Elapsed   time.Duration       `json:"elapsed"`
}

// Runner executes the workflow. AI may be nil when DryRun is set.
type Runner struct {
	Search Searcher
	AI     ai.Provider
	// Now defaults to time.Now.
	Now func() time.Time
	// OnStep, when set, is called as each step starts.
	OnStep func(step string)
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) step(name string) {
	log.Debug().Str("step", name).Msg("refresh")
	if r.OnStep != nil {
		r.OnStep(name)
	}
}

func (o *Options) applyDefaults() {
	o.Names = o.Names.WithDefaults()
	if o.Display == 0 {
		o.Display = 20
	}
	if o.Sort == "" {
		o.Sort = "date"
	}
	if o.PriceColumn == "" {
		o.PriceColumn = pricestats.DefaultColumn
	}
	if o.Layout == (Layout{}) {
		o.Layout = DefaultLayout()
	}
}

// Run performs the workflow. The workbook is only saved when every step that
// ran succeeded; a search that answers with a non-200 status skips its section.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	opts.applyDefaults()
	if opts.Path == "" {
		return nil, fmt.Errorf("workbook path is empty")
	}
	if r.Search == nil {
		return nil, fmt.Errorf("no search client configured")
	}
	if r.AI == nil && !opts.DryRun {
		return nil, fmt.Errorf("no AI provider configured")
	}

	start := time.Now()
	res := &Result{Workbook: opts.Path}

	r.step("ensure workbook")
	created, err := workbook.Ensure(opts.Path, opts.Names)
	if err != nil {
		return nil, err
	}
	res.Created = created

	r.step("backup")
	res.Backup, err = workbook.Backup(opts.Path, opts.BackupDir, r.now())
	if err != nil {
		return nil, err
	}

	f, err := workbook.Open(opts.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r.step("rotate sheets")
	if err := workbook.Rotate(f, opts.Names); err != nil {
		return res, err
	}

	r.step("shop search")
	shop, err := r.fetch(ctx, search.KindShop, opts)
	if err != nil {
		return res, err
	}
	if shop == nil {
		res.Skipped = append(res.Skipped, SectionMarket)
	} else {
		res.ShopItems = len(shop.Items)
		if err := r.market(ctx, f, shop, opts, res); err != nil {
			return res, err
		}
		res.Written = append(res.Written, SectionMarket)
	}

	if opts.SkipNews {
		res.Skipped = append(res.Skipped, SectionNews)
	} else {
		r.step("news search")
		news, err := r.fetch(ctx, search.KindNews, opts)
		if err != nil {
			return res, err
		}
		if news == nil {
			res.Skipped = append(res.Skipped, SectionNews)
		} else {
			res.NewsItems = len(news.Items)
			if err := r.news(ctx, f, news, opts); err != nil {
				return res, err
			}
			res.Written = append(res.Written, SectionNews)
		}
	}

	r.step("save")
	if err := workbook.Save(f, opts.Path); err != nil {
		return res, err
	}

	res.Elapsed = time.Since(start)
	log.Info().
		Str("workbook", opts.Path).
		Str("backup", res.Backup).
		Int("shop_items", res.ShopItems).
		Int("news_items", res.NewsItems).
		Strs("skipped", res.Skipped).
		Dur("elapsed", res.Elapsed).
		Msg("refresh finished")
	return res, nil
}

// fetch returns nil, nil when the API answered with a non-200 status.
func (r *Runner) fetch(ctx context.Context, kind search.Kind, opts Options) (*search.Response, error) {
	resp, err := r.Search.Search(ctx, search.Request{
		Kind:    kind,
		Query:   opts.Query,
		Display: opts.Display,
		Sort:    opts.Sort,
	})
	var statusErr *search.StatusError
	if errors.As(err, &statusErr) {
		log.Warn().Str("kind", string(kind)).Int("status", statusErr.Code).Msg("search returned no result, skipping section")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s search failed: %w", kind, err)
	}
	return resp, nil
}

func (r *Runner) market(ctx context.Context, f *excelize.File, shop *search.Response, opts Options, res *Result) error {
	r.step("write listing")
	t := table.FromItems(shop.Items, table.Options{StripTags: opts.StripTags})
	if err := workbook.WriteTable(f, opts.Names.Current, t.Matrix()); err != nil {
		return err
	}

	prev, err := workbook.Rows(f, opts.Names.Previous)
	if err != nil {
		return err
	}
	now, err := workbook.Rows(f, opts.Names.Current)
	if err != nil {
		return err
	}

	statsText := ""
	if cur, err := pricestats.FromRows(now, opts.PriceColumn); err == nil {
		res.Prices = &cur
		statsText = cur.String()
		if old, err := pricestats.FromRows(prev, opts.PriceColumn); err == nil {
			statsText += "\n" + pricestats.Diff(old, cur)
		}
	}

	p, err := prompt.Compare(prev, now, statsText)
	if err != nil {
		return err
	}

	r.step("analyze listing")
	analysis, err := r.ask(ctx, p, opts)
	if err != nil {
		return fmt.Errorf("listing analysis failed: %w", err)
	}

	return workbook.WriteReport(f, opts.Names.Report, workbook.Report{
		StampRow: opts.Layout.StampRow,
		Stamp:    workbook.StampLine(r.now()),
		Width:    opts.Layout.Width,
		Blocks:   []workbook.Block{{Row: opts.Layout.MarketRow, Title: opts.Layout.MarketTitle, Content: analysis}},
	})
}

func (r *Runner) news(ctx context.Context, f *excelize.File, news *search.Response, opts Options) error {
	p, err := prompt.NewsSummary(string(news.Raw))
	if err != nil {
		return err
	}

	r.step("summarize news")
	summary, err := r.ask(ctx, p, opts)
	if err != nil {
		return fmt.Errorf("news summary failed: %w", err)
	}

	return workbook.WriteReport(f, opts.Names.Report, workbook.Report{
		Width:  opts.Layout.Width,
		Blocks: []workbook.Block{{Row: opts.Layout.NewsRow, Title: opts.Layout.NewsTitle, Content: summary}},
	})
}

func (r *Runner) ask(ctx context.Context, p string, opts Options) (string, error) {
	if opts.DryRun {
		return DryRunText, nil
	}
	res, err := ai.Ask(ctx, r.AI, "", p, ai.InferOptions{Model: opts.Model})
	if err != nil {
		return "", err
	}
	return ai.PlainText(res.Content), nil
}
