package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func fixedExecutor() *Executor {
	e := NewExecutor(false)
	e.now = func() time.Time { return time.Date(2024, 3, 4, 9, 5, 0, 0, time.UTC) }
	return e
}

func TestInterpolateDates(t *testing.T) {
	e := fixedExecutor()

	tests := map[string]string{
		"${{ date.today }}":        "2024-03-04",
		"${{ date.stamp }} 기준":     "2024-03-04 09:05:00 기준",
		"backup_${{date.compact}}": "backup_20240304090500",
		"${{ date.timestamp }}":    "2024-03-04T09:05:00Z",
	}
	for in, want := range tests {
		if got := e.interpolate(in); got != want {
			t.Errorf("interpolate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInterpolateEnvVar(t *testing.T) {
	t.Setenv("RPA_TEST_VAR", "포켄스")

	e := NewExecutor(false)
	if got := e.interpolate("query=${{ env.RPA_TEST_VAR }}"); got != "query=포켄스" {
		t.Errorf("got %q", got)
	}
}

func TestInterpolateEnvVarEmpty(t *testing.T) {
	os.Unsetenv("RPA_MISSING_VAR")

	e := NewExecutor(false)
	if got := e.interpolate("Value: ${{ env.RPA_MISSING_VAR }}"); got != "Value: " {
		t.Errorf("got %q", got)
	}
}

func TestInterpolateUnknownLeftAlone(t *testing.T) {
	e := NewExecutor(false)
	in := "${{ steps.missing.output }} ${{ nope }}"
	if got := e.interpolate(in); got != in {
		t.Errorf("unknown references should be kept, got %q", got)
	}
}

func TestStepOutputFlowsToNextStep(t *testing.T) {
	e := NewExecutor(false)

	e.RegisterAction("produce", func(ctx context.Context, step Step, input string) (string, error) {
		return "produced_data", nil
	})
	var sheet string
	e.RegisterAction("consume", func(ctx context.Context, step Step, input string) (string, error) {
		sheet = step.Option("sheet", "")
		return "received:" + input, nil
	})

	p := &Pipeline{
		Name:    "test",
		Version: "1.0",
		Steps: []Step{
			{ID: "step1", Action: "produce", Input: "initial"},
			{ID: "step2", Action: "consume", Input: "${{ steps.step1.output }}", Options: map[string]string{"sheet": "${{ steps.step1.output }}_x"}},
		},
	}

	results, err := e.Run(context.Background(), p)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[1].Output != "received:produced_data" {
		t.Errorf("step2: expected 'received:produced_data', got %q", results[1].Output)
	}
	if sheet != "produced_data_x" {
		t.Errorf("options were not interpolated: %q", sheet)
	}
}

func TestUnknownActionReturnsError(t *testing.T) {
	e := NewExecutor(false)

	p := &Pipeline{
		Name:  "test",
		Steps: []Step{{ID: "bad_step", Action: "nonexistent.action"}},
	}

	_, err := e.Run(context.Background(), p)
	if err == nil {
		t.Fatal("expected error for unknown action")
	}
	if !strings.Contains(err.Error(), "unknown action") || !strings.Contains(err.Error(), "nonexistent.action") {
		t.Errorf("unexpected error: %s", err)
	}
}

func TestUnknownActionSkipOnFailure(t *testing.T) {
	e := NewExecutor(false)
	e.RegisterAction("ok_action", func(ctx context.Context, step Step, input string) (string, error) {
		return "ok", nil
	})

	p := &Pipeline{
		Name: "test",
		Steps: []Step{
			{ID: "skip_me", Action: "nonexistent", OnFailure: "skip"},
			{ID: "after_skip", Action: "ok_action"},
		},
	}

	results, err := e.Run(context.Background(), p)
	if err != nil {
		t.Fatalf("Run should not fail with on_failure=skip: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Error == nil || !results[0].Skipped {
		t.Error("first step should be recorded as skipped with an error")
	}
	if results[1].Output != "ok" {
		t.Errorf("second step should have run, got output %q", results[1].Output)
	}
}

func TestFailingStepAborts(t *testing.T) {
	e := NewExecutor(false)
	boom := errors.New("boom")
	ran := false
	e.RegisterAction("fail", func(ctx context.Context, step Step, input string) (string, error) {
		return "", boom
	})
	e.RegisterAction("after", func(ctx context.Context, step Step, input string) (string, error) {
		ran = true
		return "", nil
	})

	p := &Pipeline{Name: "test", Steps: []Step{{ID: "a", Action: "fail"}, {ID: "b", Action: "after"}}}
	results, err := e.Run(context.Background(), p)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if ran {
		t.Error("steps after a failure must not run")
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
}

func TestDryRunSkipsAISteps(t *testing.T) {
	e := NewExecutor(false)
	e.SetDryRun(true)

	called := false
	e.RegisterAction("ai.summarize", func(ctx context.Context, step Step, input string) (string, error) {
		called = true
		return "summary", nil
	})
	e.RegisterAction("search.fetch", func(ctx context.Context, step Step, input string) (string, error) {
		return `{"items":[]}`, nil
	})

	p := &Pipeline{
		Name: "test",
		Steps: []Step{
			{ID: "news", Action: "search.fetch", Input: "포켄스"},
			{ID: "summarize", Action: "ai.summarize", Input: "${{ steps.news.output }}"},
		},
	}

	results, err := e.Run(context.Background(), p)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if called {
		t.Error("ai.summarize should not be called in dry-run mode")
	}
	if !strings.Contains(results[1].Output, "DRY-RUN") {
		t.Errorf("expected DRY-RUN in output, got %q", results[1].Output)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	e := NewExecutor(false)
	e.RegisterAction("noop", func(ctx context.Context, step Step, input string) (string, error) { return "", nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Run(ctx, &Pipeline{Name: "x", Steps: []Step{{ID: "a", Action: "noop"}}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestActionsSorted(t *testing.T) {
	e := NewExecutor(false)
	noop := func(ctx context.Context, step Step, input string) (string, error) { return "", nil }
	e.RegisterAction("sheet.write", noop)
	e.RegisterAction("ai.ask", noop)

	got := strings.Join(e.Actions(), ",")
	if got != "ai.ask,sheet.write" {
		t.Errorf("Actions() = %s", got)
	}
}

func TestParsePipeline(t *testing.T) {
	data := []byte(`
name: daily-refresh
version: "1"
steps:
  - id: shop
    action: search.fetch
    input: 포켄스
    options:
      kind: shop
  - id: write
    action: sheet.write
    input: ${{ steps.shop.output }}
    on_failure: skip
`)
	p, err := ParsePipeline(data)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "daily-refresh" || len(p.Steps) != 2 {
		t.Fatalf("unexpected pipeline: %+v", p)
	}
	if p.Steps[0].Option("kind", "") != "shop" {
		t.Errorf("kind option = %q", p.Steps[0].Option("kind", ""))
	}
	if p.Steps[0].Option("sort", "date") != "date" {
		t.Error("Option should fall back to the default")
	}
	if p.Steps[1].OnFailure != "skip" {
		t.Errorf("on_failure = %q", p.Steps[1].OnFailure)
	}
}

func TestParsePipelineValidation(t *testing.T) {
	tests := map[string]string{
		"missing name":   "steps:\n  - id: a\n    action: x\n",
		"no steps":       "name: x\n",
		"missing id":     "name: x\nsteps:\n  - action: x\n",
		"duplicate id":   "name: x\nsteps:\n  - id: a\n    action: x\n  - id: a\n    action: y\n",
		"missing action": "name: x\nsteps:\n  - id: a\n",
		"bad on_failure": "name: x\nsteps:\n  - id: a\n    action: x\n    on_failure: retry\n",
		"invalid yaml":   "name: [x\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParsePipeline([]byte(data)); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestLoadPipelineMissingFile(t *testing.T) {
	_, err := LoadPipeline(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}
