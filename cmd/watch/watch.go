// Package watch provides the "rpa watch" command.
package watch

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/klytics/rpakit/cmd/pipeline"
	"github.com/klytics/rpakit/internal/clients"
	"github.com/klytics/rpakit/internal/config"
	"github.com/klytics/rpakit/internal/history"
	"github.com/klytics/rpakit/internal/output"
	w "github.com/klytics/rpakit/internal/watch"
)

// NewCommand creates the "watch" command.
func NewCommand() *cobra.Command {
	var (
		extensions []string
		recursive  bool
		debounce   int
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "watch <directory> [directory...]",
		Short: "Run job files as they appear in a directory",
		Long: `Watch directories for new or changed YAML job files and run each one
through the pipeline executor. Jobs run one at a time; rapid saves of the
same file are collapsed by the debounce interval.

Press Ctrl+C to stop; a summary of the handled events is printed on exit.`,
		Example: `  rpa watch ./jobs
  rpa watch ./jobs --recursive --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")

			for _, dir := range args {
				info, err := os.Stat(dir)
				if err != nil {
					return fmt.Errorf("cannot watch %s: %w", dir, err)
				}
				if !info.IsDir() {
					return fmt.Errorf("cannot watch %s: not a directory", dir)
				}
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			hist := clients.History(cfg)

			watcher, err := w.New(w.Config{
				Directories: args,
				Extensions:  extensions,
				Recursive:   recursive,
				Debounce:    debounce,
			})
			if err != nil {
				return err
			}

			watcher.Handler = func(ctx context.Context, path string) error {
				rec := history.NewRecord("watch", []string{path})
				results, err := pipeline.RunFile(ctx, cmd, path, dryRun)
				rec.Finish(err)
				hist.Append(ctx, rec)
				if !jsonFlag {
					fmt.Printf("%s: %d step(s)", path, len(results))
					if err != nil {
						fmt.Printf(", failed: %s", err)
					}
					fmt.Println()
				}
				return err
			}

			if !jsonFlag {
				fmt.Printf("Watching %s for %s files\n", strings.Join(args, ", "), strings.Join(watcher.Config.Extensions, ", "))
				fmt.Println("Press Ctrl+C to stop")
			}

			if err := watcher.Start(cmd.Context()); err != nil {
				return err
			}

			events := watcher.GetEvents()
			if jsonFlag {
				return output.PrintJSON("watch", map[string]any{
					"status": watcher.GetStatus(),
					"events": events,
				})
			}
			fmt.Printf("\nStopped after %d job run(s)\n", len(events))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&extensions, "ext", nil, "Job file extensions (default: .yaml,.yml)")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Watch subdirectories too")
	cmd.Flags().IntVar(&debounce, "debounce", 500, "Debounce interval in milliseconds")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run jobs without model calls")

	return cmd
}
