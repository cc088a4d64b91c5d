package doctor

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/klytics/rpakit/internal/config"
)

func TestWorkbookCheckMissing(t *testing.T) {
	c := workbookCheck(filepath.Join(t.TempDir(), "none.xlsx"))
	if c.Status != "warning" {
		t.Errorf("status = %q, want warning", c.Status)
	}
}

func TestWorkbookCheckSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", "now_list")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	c := workbookCheck(path)
	if c.Status != "warning" || !strings.Contains(c.Message, "now_report") {
		t.Errorf("got %+v, want warning about the report sheet", c)
	}

	f.NewSheet("now_report")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	if c := workbookCheck(path); c.Status != "ok" {
		t.Errorf("got %+v, want ok", c)
	}
}

func TestRunChecksCredentials(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NAVER_CLIENT_ID", "")
	t.Setenv("NAVER_CLIENT_SECRET", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg := &config.Config{Provider: "openai", Model: "gpt-4o-mini"}
	cfg.Workbook.Path = filepath.Join(t.TempDir(), "genai_rpa.xlsx")

	status := map[string]string{}
	for _, c := range RunChecks(cfg) {
		status[c.Name] = c.Status
	}
	if status["Search API"] != "error" {
		t.Errorf("Search API = %q, want error", status["Search API"])
	}
	if status["AI Provider (OpenAI)"] != "ok" {
		t.Errorf("AI Provider = %q, want ok", status["AI Provider (OpenAI)"])
	}
}
