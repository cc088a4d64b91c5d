// Package doctor provides the "rpa doctor" command for checking the setup.
package doctor

import (
	"fmt"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/rpakit/internal/config"
	"github.com/klytics/rpakit/internal/output"
	"github.com/klytics/rpakit/internal/workbook"
)

// Check represents a single health check result.
type Check struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Message string `json:"message"`
}

// NewCommand creates the "doctor" command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check credentials, config and the workbook",
		Long:  "Run diagnostic checks to verify rpa can search, call the model and open the workbook.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			checks := RunChecks(cfg)

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return output.PrintJSON("doctor", checks)
			}

			green := color.New(color.FgGreen).SprintFunc()
			yellow := color.New(color.FgYellow).SprintFunc()
			red := color.New(color.FgRed).SprintFunc()

			fmt.Println("rpa doctor")
			fmt.Println("==========")
			fmt.Println()

			okCount, warnCount, errCount := 0, 0, 0
			for _, c := range checks {
				var icon string
				switch c.Status {
				case "ok":
					icon = green("✓")
					okCount++
				case "warning":
					icon = yellow("!")
					warnCount++
				case "error":
					icon = red("✗")
					errCount++
				}
				fmt.Printf("  %s %s: %s\n", icon, c.Name, c.Message)
			}

			fmt.Println()
			fmt.Printf("  %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

			if errCount > 0 {
				return fmt.Errorf("%d check(s) failed", errCount)
			}
			return nil
		},
	}
}

// RunChecks inspects the environment without calling any API.
func RunChecks(cfg *config.Config) []Check {
	checks := []Check{{
		Name:    "Go Runtime",
		Status:  "ok",
		Message: fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH),
	}}

	if _, err := os.Stat(config.ConfigPath()); err == nil {
		checks = append(checks, Check{Name: "Config File", Status: "ok", Message: config.ConfigPath()})
	} else {
		checks = append(checks, Check{Name: "Config File", Status: "warning", Message: "not found — run 'rpa config init' or use .env"})
	}

	if _, _, err := config.NaverCredentials(); err == nil {
		checks = append(checks, Check{Name: "Search API", Status: "ok", Message: "NAVER_CLIENT_ID / NAVER_CLIENT_SECRET set"})
	} else {
		checks = append(checks, Check{Name: "Search API", Status: "error", Message: "NAVER_CLIENT_ID / NAVER_CLIENT_SECRET not set"})
	}

	switch cfg.Provider {
	case "ollama":
		host := os.Getenv("OLLAMA_HOST")
		if host == "" {
			host = "http://localhost:11434"
		}
		checks = append(checks, Check{Name: "AI Provider (Ollama)", Status: "ok", Message: fmt.Sprintf("%s, model %s", host, cfg.Model)})
	default:
		if _, err := config.GetAPIKey("openai"); err == nil {
			checks = append(checks, Check{Name: "AI Provider (OpenAI)", Status: "ok", Message: fmt.Sprintf("OPENAI_API_KEY set, model %s", cfg.Model)})
		} else {
			checks = append(checks, Check{Name: "AI Provider (OpenAI)", Status: "error", Message: "OPENAI_API_KEY not set"})
		}
	}

	checks = append(checks, workbookCheck(cfg.Workbook.Path))
	return checks
}

func workbookCheck(path string) Check {
	c := Check{Name: "Workbook"}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		c.Status = "warning"
		c.Message = fmt.Sprintf("%s does not exist yet — the first refresh creates it", path)
		return c
	}

	f, err := workbook.Open(path)
	if err != nil {
		c.Status = "error"
		c.Message = err.Error()
		return c
	}
	defer f.Close()

	names := workbook.DefaultNames()
	var missing []string
	for _, s := range []string{names.Current, names.Report} {
		if !workbook.HasSheet(f, s) {
			missing = append(missing, s)
		}
	}
	if len(missing) > 0 {
		c.Status = "warning"
		c.Message = fmt.Sprintf("%s has no %v sheet — refresh will fail until it exists", path, missing)
		return c
	}

	c.Status = "ok"
	c.Message = fmt.Sprintf("%s (%d sheets)", path, f.SheetCount)
	return c
}
