package actions

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/klytics/rpakit/internal/ai"
	"github.com/klytics/rpakit/internal/pipeline"
	"github.com/klytics/rpakit/internal/search"
)

const shopBody = `{"total":2,"items":[{"title":"<b>사료</b> A","lprice":"12000"},{"title":"사료 B","lprice":"9000"}]}`
const newsBody = `{"total":1,"items":[{"title":"신제품 출시"}]}`

type fakeSearch struct{}

func (fakeSearch) Search(ctx context.Context, req search.Request) (*search.Response, error) {
	if req.Kind == search.KindNews {
		return search.ParseResponse([]byte(newsBody))
	}
	return search.ParseResponse([]byte(shopBody))
}

type echoAI struct{ prompts []string }

func (e *echoAI) Infer(ctx context.Context, system string, messages []ai.Message, opts ai.InferOptions) (*ai.InferResult, error) {
	e.prompts = append(e.prompts, messages[0].Content)
	return &ai.InferResult{Content: "**요약** 완료"}, nil
}

func (e *echoAI) Stream(ctx context.Context, system string, messages []ai.Message, opts ai.InferOptions) (<-chan string, <-chan error, error) {
	return nil, nil, errors.New("not implemented")
}

func (e *echoAI) Name() string { return "echo" }

func newEnv(t *testing.T) (*pipeline.Executor, *Env, *echoAI) {
	t.Helper()
	model := &echoAI{}
	env := &Env{
		Search:    fakeSearch{},
		AI:        model,
		Workbook:  filepath.Join(t.TempDir(), "genai_rpa.xlsx"),
		Query:     "포켄스",
		Display:   20,
		Sort:      "date",
		StripTags: true,
		Now:       func() time.Time { return time.Date(2024, 3, 4, 9, 0, 0, 0, time.Local) },
	}
	exec := pipeline.NewExecutor(false)
	RegisterAll(exec, env)
	return exec, env, model
}

func cellValue(t *testing.T, path, sheet, axis string) string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	v, err := f.GetCellValue(sheet, axis)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestRegisterAll(t *testing.T) {
	exec, _, _ := newEnv(t)
	want := []string{
		"ai.ask", "ai.compare", "ai.summarize", "cell.subtract", "refresh", "report.write",
		"search.fetch", "sheet.read", "sheet.rotate", "sheet.write", "workbook.backup", "workbook.ensure",
	}
	if got := strings.Join(exec.Actions(), ","); got != strings.Join(want, ",") {
		t.Errorf("actions = %s", got)
	}
}

func TestRefreshJobStepByStep(t *testing.T) {
	exec, env, model := newEnv(t)

	job, err := pipeline.ParsePipeline([]byte(`
name: daily-refresh
steps:
  - id: ensure
    action: workbook.ensure
  - id: backup
    action: workbook.backup
  - id: rotate
    action: sheet.rotate
  - id: shop
    action: search.fetch
    options:
      kind: shop
  - id: write
    action: sheet.write
    input: ${{ steps.shop.output }}
  - id: compare
    action: ai.compare
  - id: market
    action: report.write
    input: ${{ steps.compare.output }}
    options:
      row: "4"
      stamp_row: "3"
      title: 오픈 마켓 리포트
  - id: news
    action: search.fetch
    options:
      kind: news
  - id: summary
    action: ai.summarize
    input: ${{ steps.news.output }}
  - id: news_report
    action: report.write
    input: ${{ steps.summary.output }}
    options:
      row: "7"
      title: 네이버 뉴스 분석
  - id: listing
    action: sheet.read
    options:
      format: csv
`))
	if err != nil {
		t.Fatal(err)
	}

	results, err := exec.Run(context.Background(), job)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != len(job.Steps) {
		t.Fatalf("expected %d results, got %d", len(job.Steps), len(results))
	}

	byID := make(map[string]string)
	for _, r := range results {
		byID[r.StepID] = r.Output
	}

	if !strings.HasSuffix(byID["backup"], "genai_rpa_20240304090000.xlsx") {
		t.Errorf("backup = %q", byID["backup"])
	}
	if byID["write"] != "2" {
		t.Errorf("sheet.write output = %q, want row count 2", byID["write"])
	}
	if byID["listing"] != "순위,title,lprice\n1,사료 A,12000\n2,사료 B,9000\n" {
		t.Errorf("listing csv = %q", byID["listing"])
	}
	if len(model.prompts) != 2 || !strings.Contains(model.prompts[0], "lprice: n=2") {
		t.Errorf("unexpected prompts: %v", model.prompts)
	}

	checks := map[string]string{
		"A3": "2024-03-04 09:00:00 기준",
		"A4": "오픈 마켓 리포트",
		"A5": "요약 완료",
		"A7": "네이버 뉴스 분석",
		"A8": "요약 완료",
	}
	for axis, want := range checks {
		if got := cellValue(t, env.Workbook, "now_report", axis); got != want {
			t.Errorf("%s = %q, want %q", axis, got, want)
		}
	}
}

func TestRefreshAction(t *testing.T) {
	exec, env, _ := newEnv(t)
	job := &pipeline.Pipeline{Name: "x", Steps: []pipeline.Step{{ID: "r", Action: "refresh", Options: map[string]string{"skip_news": "true"}}}}

	results, err := exec.Run(context.Background(), job)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(results[0].Output, `"shop_items":2`) {
		t.Errorf("refresh output = %s", results[0].Output)
	}
	if got := cellValue(t, env.Workbook, "now_list", "B2"); got != "사료 A" {
		t.Errorf("now_list B2 = %q", got)
	}
}

func TestCellSubtractAction(t *testing.T) {
	_, env, _ := newEnv(t)
	path := filepath.Join(t.TempDir(), "calc.xlsx")
	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "B1", 50)
	f.SetCellValue("Sheet1", "B2", 8)
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	out, err := env.CellSubtract(context.Background(), pipeline.Step{Action: "cell.subtract"}, path)
	if err != nil {
		t.Fatal(err)
	}
	if out != "42" {
		t.Errorf("output = %q", out)
	}
}

func TestAIAskRequiresProvider(t *testing.T) {
	env := &Env{}
	_, err := env.AIAsk(context.Background(), pipeline.Step{Action: "ai.ask"}, "hello")
	if err == nil || !strings.Contains(err.Error(), "no AI provider") {
		t.Errorf("expected provider error, got %v", err)
	}
}

func TestWorkbookPathRequired(t *testing.T) {
	env := &Env{}
	_, err := env.SheetRotate(context.Background(), pipeline.Step{Action: "sheet.rotate"}, "")
	if err == nil || !strings.Contains(err.Error(), "requires a workbook path") {
		t.Errorf("expected workbook path error, got %v", err)
	}
}

func TestReportWriteBadRow(t *testing.T) {
	_, env, _ := newEnv(t)
	step := pipeline.Step{Action: "report.write", Options: map[string]string{"row": "four"}}
	_, err := env.ReportWrite(context.Background(), step, "text")
	if err == nil || !strings.Contains(err.Error(), "must be a number") {
		t.Errorf("expected number error, got %v", err)
	}
}
