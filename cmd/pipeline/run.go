package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/klytics/rpakit/internal/ai"
	"github.com/klytics/rpakit/internal/clients"
	"github.com/klytics/rpakit/internal/config"
	"github.com/klytics/rpakit/internal/history"
	"github.com/klytics/rpakit/internal/output"
	pipelinepkg "github.com/klytics/rpakit/internal/pipeline"
	"github.com/klytics/rpakit/internal/pipeline/actions"
	"github.com/klytics/rpakit/internal/refresh"
)

func newRunCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run <job.yaml>",
		Short: "Execute a job file",
		Long: `Runs the steps of a YAML job file in order.

Steps reference earlier outputs with ${{ steps.<id>.output }}; ${{ date.today }},
${{ date.stamp }} and ${{ env.NAME }} are also available.
Use --dry-run to run workbook and search steps but skip the model calls.`,
		Example: `  rpa pipeline run jobs/daily.yaml
  rpa pipeline run jobs/daily.yaml --dry-run --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")
			verbose, _ := cmd.Flags().GetBool("verbose")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			p, err := pipelinepkg.LoadPipeline(args[0])
			if err != nil {
				return err
			}

			executor, err := NewExecutor(cmd, dryRun)
			if err != nil {
				return err
			}

			rec := history.NewRecord("pipeline run", os.Args[1:])
			results, execErr := executor.Run(cmd.Context(), p)
			rec.Finish(execErr)
			clients.History(cfg).Append(cmd.Context(), rec)

			if jsonFlag {
				if err := output.PrintJSON("pipeline run", jsonResults(results)); err != nil {
					return err
				}
				return execErr
			}

			printResults(results, verbose)
			return execErr
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Skip ai.* steps and model calls inside refresh")

	return cmd
}

// NewExecutor builds an executor with every action registered, using the
// clients the config allows. A missing credential leaves that client unset so
// only the steps that need it fail.
func NewExecutor(cmd *cobra.Command, dryRun bool) (*pipelinepkg.Executor, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	providerName, _ := cmd.Flags().GetString("provider")
	modelName, _ := cmd.Flags().GetString("model")

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	var searcher refresh.Searcher
	if c, err := clients.Search(cfg); err == nil {
		searcher = c
	} else {
		log.Debug().Err(err).Msg("search client unavailable")
	}

	var provider ai.Provider
	if !dryRun {
		if p, err := clients.AI(cfg, providerName, modelName); err == nil {
			provider = p
		} else {
			log.Debug().Err(err).Msg("AI provider unavailable")
		}
	}

	env := clients.ActionsEnv(cfg, searcher, provider, dryRun)
	if modelName != "" {
		env.Model = modelName
	}

	executor := pipelinepkg.NewExecutor(verbose)
	executor.SetDryRun(dryRun)
	actions.RegisterAll(executor, env)
	return executor, nil
}

// RunFile loads and runs one job file with a fresh executor.
func RunFile(ctx context.Context, cmd *cobra.Command, path string, dryRun bool) ([]pipelinepkg.StepResult, error) {
	p, err := pipelinepkg.LoadPipeline(path)
	if err != nil {
		return nil, err
	}
	executor, err := NewExecutor(cmd, dryRun)
	if err != nil {
		return nil, err
	}
	return executor.Run(ctx, p)
}

type jsonResult struct {
	StepID  string `json:"stepId"`
	Action  string `json:"action"`
	Output  string `json:"output,omitempty"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

func jsonResults(results []pipelinepkg.StepResult) []jsonResult {
	out := make([]jsonResult, len(results))
	for i, r := range results {
		out[i] = jsonResult{StepID: r.StepID, Action: r.Action, Output: r.Output, Skipped: r.Skipped}
		if r.Error != nil {
			out[i].Error = r.Error.Error()
		}
	}
	return out
}

func printResults(results []pipelinepkg.StepResult, verbose bool) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	for _, r := range results {
		switch {
		case r.Error != nil:
			fmt.Fprintf(os.Stderr, "  %s %s (%s): FAILED — %s\n", red("✗"), r.StepID, r.Action, r.Error)
		case r.Skipped:
			fmt.Printf("  %s %s (%s): skipped\n", yellow("-"), r.StepID, r.Action)
		default:
			fmt.Printf("  %s %s (%s)\n", green("✓"), r.StepID, r.Action)
			if verbose && r.Output != "" {
				fmt.Printf("      %s\n", truncate(r.Output, 200))
			}
		}
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
