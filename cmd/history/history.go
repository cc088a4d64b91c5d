// Package history provides the "rpa history" commands for past runs.
package history

import (
	"fmt"
	"os"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/rpakit/internal/config"
	historypkg "github.com/klytics/rpakit/internal/history"
	"github.com/klytics/rpakit/internal/output"
)

// NewCommand creates the "history" command; with no subcommand it lists runs.
func NewCommand() *cobra.Command {
	var (
		last    int
		command string
		since   string
		summary bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past refresh, pipeline and watch runs",
		Long:  "Lists the runs recorded in ~/.rpa/history.jsonl (history.path).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			path := cfg.History.Path

			records, err := historypkg.Read(path)
			if err != nil {
				return fmt.Errorf("could not read history: %w", err)
			}

			var sinceTime time.Time
			if since != "" {
				sinceTime, err = time.ParseInLocation("2006-01-02", since, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --since date: %w (use YYYY-MM-DD)", err)
				}
			}

			filtered := historypkg.Filter(records, sinceTime, command)
			if last > 0 && len(filtered) > last {
				filtered = filtered[len(filtered)-last:]
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if summary {
				s := historypkg.Summarize(filtered)
				if jsonOut {
					return output.PrintJSON("history", s)
				}
				printSummary(s)
				return nil
			}

			if jsonOut {
				return output.PrintJSON("history", filtered)
			}

			if len(filtered) == 0 {
				fmt.Println("No runs recorded.")
				return nil
			}

			fmt.Printf("History — %d runs (%s)\n\n", len(filtered), path)
			red := color.New(color.FgRed).SprintFunc()

			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "TIME\tCOMMAND\tQUERY\tSHOP\tNEWS\tDURATION\tSTATUS\n")
			for _, r := range filtered {
				status := r.Status
				if r.Status == historypkg.StatusError {
					status = red(r.Status)
				}
				query := r.Query
				if query == "" {
					query = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
					r.Time.Format("2006-01-02 15:04:05"), r.Command, query,
					r.ShopItems, r.NewsItems, duration(r.DurationMs), status)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&last, "last", 20, "Show the last N runs")
	cmd.Flags().StringVar(&command, "command", "", "Only runs whose command contains this")
	cmd.Flags().StringVar(&since, "since", "", "Only runs on or after this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&summary, "stats", false, "Print run counts and durations instead of the list")

	cmd.AddCommand(newClearCmd())

	return cmd
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the run history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			path := cfg.History.Path
			size := historypkg.Size(path)
			if err := historypkg.Clear(path); err != nil {
				return err
			}

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return output.PrintJSON("history clear", map[string]any{"cleared": path, "bytes": size})
			}
			fmt.Printf("History cleared: %s (%d bytes)\n", path, size)
			return nil
		},
	}
}

func printSummary(s historypkg.Stats) {
	fmt.Printf("Runs:      %d (%d failed)\n", s.Runs, s.Errors)
	fmt.Printf("Duration:  mean %s, p90 %s\n", duration(int64(s.MeanDurationMs)), duration(int64(s.P90DurationMs)))
	fmt.Printf("Items:     %d shop, %d news\n", s.ShopItems, s.NewsItems)

	names := make([]string, 0, len(s.Commands))
	for name := range s.Commands {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Printf("  %-14s %d\n", name, s.Commands[name])
	}
}

func duration(ms int64) string {
	if ms >= 1000 {
		return fmt.Sprintf("%.1fs", float64(ms)/1000)
	}
	return fmt.Sprintf("%dms", ms)
}
