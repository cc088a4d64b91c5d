// Package refresh provides the "rpa refresh" command.
package refresh

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/rpakit/internal/ai"
	"github.com/klytics/rpakit/internal/clients"
	"github.com/klytics/rpakit/internal/config"
	"github.com/klytics/rpakit/internal/history"
	"github.com/klytics/rpakit/internal/output"
	"github.com/klytics/rpakit/internal/progress"
	"github.com/klytics/rpakit/internal/refresh"
)

// NewCommand returns the refresh command.
func NewCommand() *cobra.Command {
	var (
		workbookPath string
		backupDir    string
		query        string
		display      int
		sortOrder    string
		stripTags    bool
		skipNews     bool
		dryRun       bool
	)

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Rotate the listing sheets and rewrite the AI report",
		Long: `Back up the workbook, move now_list to prev_list, fill a fresh now_list
from the shop search and write two model analyses into the report sheet:
a comparison of the two listings (A4:A5) and a summary of the latest news (A7:A8).

A search that answers with a non-200 status skips its section. The workbook
is only saved when every other step succeeded; the backup is always kept.`,
		Example: `  rpa refresh
  rpa refresh --query 노트북 --display 50
  rpa refresh --dry-run --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")
			providerName, _ := cmd.Flags().GetString("provider")
			modelName, _ := cmd.Flags().GetString("model")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			opts := clients.RefreshOptions(cfg)
			if cmd.Flags().Changed("workbook") {
				opts.Path = workbookPath
			}
			if cmd.Flags().Changed("backup-dir") {
				opts.BackupDir = backupDir
			}
			if cmd.Flags().Changed("query") {
				opts.Query = query
			}
			if cmd.Flags().Changed("display") {
				opts.Display = display
			}
			if cmd.Flags().Changed("sort") {
				opts.Sort = sortOrder
			}
			if cmd.Flags().Changed("strip-tags") {
				opts.StripTags = stripTags
			}
			if modelName != "" {
				opts.Model = modelName
			}
			opts.SkipNews = skipNews
			opts.DryRun = dryRun

			rec := history.NewRecord("refresh", os.Args[1:])
			rec.Workbook = opts.Path
			rec.Query = opts.Query
			hist := clients.History(cfg)

			res, err := run(cmd, cfg, opts, providerName, modelName)
			if res != nil {
				rec.Backup = res.Backup
				rec.ShopItems = res.ShopItems
				rec.NewsItems = res.NewsItems
			}
			rec.Finish(err)
			hist.Append(cmd.Context(), rec)
			if err != nil {
				return err
			}

			if jsonFlag {
				return output.PrintJSON("refresh", res)
			}
			printResult(res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&workbookPath, "workbook", "w", "", "Workbook path (default: workbook.path)")
	cmd.Flags().StringVar(&backupDir, "backup-dir", "", "Directory for backups (default: next to the workbook)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Search keyword (default: search.query)")
	cmd.Flags().IntVar(&display, "display", 0, "Results per search, 1-100 (default: search.display)")
	cmd.Flags().StringVar(&sortOrder, "sort", "", "Search order: date | sim (default: search.sort)")
	cmd.Flags().BoolVar(&stripTags, "strip-tags", true, "Remove <b> markup from search results")
	cmd.Flags().BoolVar(&skipNews, "skip-news", false, "Skip the news search and summary")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Rotate and fill the listing but skip the model calls")

	return cmd
}

func run(cmd *cobra.Command, cfg *config.Config, opts refresh.Options, providerName, modelName string) (*refresh.Result, error) {
	searcher, err := clients.Search(cfg)
	if err != nil {
		return nil, err
	}

	runner := &refresh.Runner{Search: searcher}
	if !opts.DryRun {
		var provider ai.Provider
		provider, err = clients.AI(cfg, providerName, modelName)
		if err != nil {
			return nil, err
		}
		runner.AI = provider
	}

	spinner := progress.NewSpinner("refresh")
	runner.OnStep = spinner.Step
	spinner.Start()

	res, err := runner.Run(cmd.Context(), opts)
	if err != nil {
		spinner.Fail(err.Error())
		return res, fmt.Errorf("refresh failed: %w", err)
	}
	spinner.Stop(fmt.Sprintf("saved %s", res.Workbook))
	return res, nil
}

func printResult(res *refresh.Result) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	dim := color.New(color.FgHiBlack).SprintFunc()

	if res.Created {
		fmt.Printf("  %s created %s\n", green("+"), res.Workbook)
	}
	fmt.Printf("  %s backup   %s\n", green("✓"), res.Backup)
	fmt.Printf("  %s listing  %d shop items\n", green("✓"), res.ShopItems)
	if res.Prices != nil {
		fmt.Printf("    %s\n", dim(res.Prices.String()))
	}
	for _, section := range res.Written {
		fmt.Printf("  %s report   %s\n", green("✓"), section)
	}
	for _, section := range res.Skipped {
		fmt.Printf("  %s skipped  %s\n", yellow("!"), section)
	}
	fmt.Printf("  %s\n", dim(fmt.Sprintf("%s in %s", res.Workbook, res.Elapsed.Round(time.Millisecond))))
}
