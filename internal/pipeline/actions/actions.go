// Package actions provides the built-in pipeline actions.
package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/klytics/rpakit/internal/ai"
	"github.com/klytics/rpakit/internal/calc"
	"github.com/klytics/rpakit/internal/pipeline"
	"github.com/klytics/rpakit/internal/refresh"
	"github.com/klytics/rpakit/internal/workbook"
)

// Env carries the clients and defaults shared by every action.
type Env struct {
	Search refresh.Searcher
	AI     ai.Provider
	// Workbook is used when a step names no workbook.
	Workbook  string
	BackupDir string
	Names     workbook.Names
	Query     string
	Display   int
	Sort      string
	StripTags bool
	Model     string
	DryRun    bool
	Now       func() time.Time
}

func (env *Env) now() time.Time {
	if env.Now != nil {
		return env.Now()
	}
	return time.Now()
}

// RegisterAll registers all built-in actions with the given executor.
func RegisterAll(exec *pipeline.Executor, env *Env) {
	env.Names = env.Names.WithDefaults()

	exec.RegisterAction("workbook.ensure", env.WorkbookEnsure)
	exec.RegisterAction("workbook.backup", env.WorkbookBackup)
	exec.RegisterAction("sheet.rotate", env.SheetRotate)
	exec.RegisterAction("sheet.write", env.SheetWrite)
	exec.RegisterAction("sheet.read", env.SheetRead)
	exec.RegisterAction("report.write", env.ReportWrite)
	exec.RegisterAction("cell.subtract", env.CellSubtract)
	exec.RegisterAction("search.fetch", env.SearchFetch)
	exec.RegisterAction("ai.compare", env.AICompare)
	exec.RegisterAction("ai.summarize", env.AISummarize)
	exec.RegisterAction("ai.ask", env.AIAsk)
	exec.RegisterAction("refresh", env.Refresh)
}

// workbookPath resolves the workbook a step works on: options.workbook, then
// the input when useInput is set, then the default.
func (env *Env) workbookPath(step pipeline.Step, input string, useInput bool) (string, error) {
	if p := step.Option("workbook", ""); p != "" {
		return p, nil
	}
	if useInput && input != "" {
		return input, nil
	}
	if env.Workbook != "" {
		return env.Workbook, nil
	}
	return "", fmt.Errorf("%s requires a workbook path (input or options.workbook)", step.Action)
}

func intOption(step pipeline.Step, key string, def int) (int, error) {
	v := step.Option(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: options.%s must be a number, got %q", step.Action, key, v)
	}
	return n, nil
}

func boolOption(step pipeline.Step, key string, def bool) bool {
	v, err := strconv.ParseBool(step.Option(key, ""))
	if err != nil {
		return def
	}
	return v
}

// WorkbookEnsure creates the workbook with its list and report sheets when missing.
func (env *Env) WorkbookEnsure(ctx context.Context, step pipeline.Step, input string) (string, error) {
	path, err := env.workbookPath(step, input, true)
	if err != nil {
		return "", err
	}
	if _, err := workbook.Ensure(path, env.Names); err != nil {
		return "", err
	}
	return path, nil
}

// WorkbookBackup copies the workbook to a timestamped file and returns its path.
func (env *Env) WorkbookBackup(ctx context.Context, step pipeline.Step, input string) (string, error) {
	path, err := env.workbookPath(step, input, true)
	if err != nil {
		return "", err
	}
	return workbook.Backup(path, step.Option("dir", env.BackupDir), env.now())
}

// SheetRotate moves the current list to the previous list and saves.
func (env *Env) SheetRotate(ctx context.Context, step pipeline.Step, input string) (string, error) {
	path, err := env.workbookPath(step, input, true)
	if err != nil {
		return "", err
	}
	f, err := workbook.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := workbook.Rotate(f, env.Names); err != nil {
		return "", err
	}
	if err := workbook.Save(f, path); err != nil {
		return "", err
	}
	return path, nil
}

// SheetRead returns a sheet as JSON rows (default) or CSV.
func (env *Env) SheetRead(ctx context.Context, step pipeline.Step, input string) (string, error) {
	path, err := env.workbookPath(step, input, true)
	if err != nil {
		return "", err
	}
	wb, err := workbook.ReadFile(path)
	if err != nil {
		return "", err
	}
	sheet, err := wb.GetSheet(step.Option("sheet", env.Names.Current))
	if err != nil {
		return "", err
	}

	if step.Option("format", "json") == "csv" {
		return sheet.ToCSV(), nil
	}
	data, err := json.Marshal(sheet.Rows)
	if err != nil {
		return "", fmt.Errorf("could not serialize sheet: %w", err)
	}
	return string(data), nil
}

// ReportWrite writes the input as a titled block into the report sheet.
func (env *Env) ReportWrite(ctx context.Context, step pipeline.Step, input string) (string, error) {
	path, err := env.workbookPath(step, input, false)
	if err != nil {
		return "", err
	}
	row, err := intOption(step, "row", 4)
	if err != nil {
		return "", err
	}
	stampRow, err := intOption(step, "stamp_row", 0)
	if err != nil {
		return "", err
	}

	f, err := workbook.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	report := workbook.Report{
		Width:  100,
		Blocks: []workbook.Block{{Row: row, Title: step.Option("title", ""), Content: input}},
	}
	if stampRow > 0 {
		report.StampRow = stampRow
		report.Stamp = workbook.StampLine(env.now())
	}
	if err := workbook.WriteReport(f, step.Option("sheet", env.Names.Report), report); err != nil {
		return "", err
	}
	if err := workbook.Save(f, path); err != nil {
		return "", err
	}
	return path, nil
}

// CellSubtract writes A - B into the output cell and returns the value.
func (env *Env) CellSubtract(ctx context.Context, step pipeline.Step, input string) (string, error) {
	path, err := env.workbookPath(step, input, true)
	if err != nil {
		return "", err
	}
	res, err := calc.Subtract(path, calc.Options{
		Sheet: step.Option("sheet", ""),
		A:     step.Option("a", ""),
		B:     step.Option("b", ""),
		Out:   step.Option("out", ""),
	})
	if err != nil {
		return "", err
	}
	return strconv.FormatFloat(res.Value, 'f', -1, 64), nil
}
