package actions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/klytics/rpakit/internal/pipeline"
	"github.com/klytics/rpakit/internal/refresh"
	"github.com/klytics/rpakit/internal/search"
	"github.com/klytics/rpakit/internal/table"
	"github.com/klytics/rpakit/internal/workbook"
)

// SearchFetch runs one search and returns the raw JSON body. The input is the
// query; options.kind defaults to shop.
func (env *Env) SearchFetch(ctx context.Context, step pipeline.Step, input string) (string, error) {
	if env.Search == nil {
		return "", fmt.Errorf("search.fetch: no search client configured")
	}
	query := input
	if query == "" {
		query = env.Query
	}
	display, err := intOption(step, "display", env.Display)
	if err != nil {
		return "", err
	}
	start, err := intOption(step, "start", 0)
	if err != nil {
		return "", err
	}

	req := search.Request{
		Kind:    search.Kind(step.Option("kind", string(search.KindShop))),
		Query:   query,
		Display: display,
		Start:   start,
		Sort:    step.Option("sort", env.Sort),
	}
	resp, err := env.Search.Search(ctx, req)
	if err != nil {
		return "", err
	}
	return string(resp.Raw), nil
}

// SheetWrite turns a raw search body into a ranked table and writes it to a
// sheet (the current list by default), replacing what was there.
func (env *Env) SheetWrite(ctx context.Context, step pipeline.Step, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("sheet.write requires a search result as input")
	}
	path, err := env.workbookPath(step, "", false)
	if err != nil {
		return "", err
	}

	t, err := table.FromJSON([]byte(input), table.Options{StripTags: boolOption(step, "strip_tags", env.StripTags)})
	if err != nil {
		return "", err
	}

	f, err := workbook.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := workbook.WriteTable(f, step.Option("sheet", env.Names.Current), t.Matrix()); err != nil {
		return "", err
	}
	if err := workbook.Save(f, path); err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", t.Len()), nil
}

// Refresh runs the whole rotation-and-report workflow and returns its result as JSON.
func (env *Env) Refresh(ctx context.Context, step pipeline.Step, input string) (string, error) {
	path, err := env.workbookPath(step, input, true)
	if err != nil {
		return "", err
	}
	display, err := intOption(step, "display", env.Display)
	if err != nil {
		return "", err
	}

	r := &refresh.Runner{Search: env.Search, AI: env.AI, Now: env.Now}
	res, err := r.Run(ctx, refresh.Options{
		Path:      path,
		BackupDir: step.Option("backup_dir", env.BackupDir),
		Names:     env.Names,
		Query:     step.Option("query", env.Query),
		Display:   display,
		Sort:      step.Option("sort", env.Sort),
		StripTags: boolOption(step, "strip_tags", env.StripTags),
		Model:     env.Model,
		SkipNews:  boolOption(step, "skip_news", false),
		DryRun:    env.DryRun,
	})
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(res)
	if err != nil {
		return "", fmt.Errorf("could not serialize refresh result: %w", err)
	}
	return string(data), nil
}
