// Package cmd contains all CLI commands for the rpa binary.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/klytics/rpakit/cmd/ai"
	"github.com/klytics/rpakit/cmd/calc"
	"github.com/klytics/rpakit/cmd/completion"
	cmdconfig "github.com/klytics/rpakit/cmd/config"
	"github.com/klytics/rpakit/cmd/curriculum"
	"github.com/klytics/rpakit/cmd/doctor"
	cmdhistory "github.com/klytics/rpakit/cmd/history"
	"github.com/klytics/rpakit/cmd/pipeline"
	cmdrefresh "github.com/klytics/rpakit/cmd/refresh"
	cmdsearch "github.com/klytics/rpakit/cmd/search"
	"github.com/klytics/rpakit/cmd/sheet"
	"github.com/klytics/rpakit/cmd/version"
	cmdwatch "github.com/klytics/rpakit/cmd/watch"
	"github.com/klytics/rpakit/internal/config"
	"github.com/klytics/rpakit/internal/logging"
	"github.com/klytics/rpakit/internal/output"
)

var (
	jsonOutput bool
	verbose    bool
	modelName  string
	provider   string
	noColor    bool
	envFiles   []string
)

// NewRootCommand creates and returns the root cobra command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rpa",
		Short: "Spreadsheet automation with search and AI reports",
		Long: `rpa keeps a workbook of market listings up to date.

Each refresh backs up the workbook, moves the current listing to prev_list,
fills now_list from the shop search, and asks a language model to compare the
two and summarize the latest news into the report sheet.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				color.NoColor = true
			}
			if jsonOutput {
				os.Setenv("RPA_JSON", "true")
			}

			loaded, err := config.LoadDotEnv(envFiles...)
			if err != nil {
				return fmt.Errorf("could not load env file: %w", err)
			}

			// Commands that need the config load it themselves, so a broken
			// file still leaves "config reset" and "config path" usable.
			level := "info"
			cfg, cfgErr := config.Load()
			if cfgErr == nil {
				level = cfg.Log.Level
			}
			if verbose {
				level = "debug"
			}
			logging.Setup(level, jsonOutput)
			if cfgErr != nil {
				log.Warn().Err(cfgErr).Msg("config not loaded")
			}
			if len(loaded) > 0 {
				log.Debug().Strs("files", loaded).Msg("loaded env files")
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as machine-readable JSON")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&modelName, "model", "", "AI model name override (default: config model, RPA_MODEL)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "AI provider: openai | ollama (default: config provider, RPA_PROVIDER)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable ANSI color output")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Load variables from these .env files (default ./.env)")
	// Registered before command lookup so "--help" is known as a bool flag
	// and does not swallow the next argument.
	rootCmd.InitDefaultHelpFlag()

	rootCmd.AddCommand(cmdrefresh.NewCommand())
	rootCmd.AddCommand(cmdsearch.NewCommand())
	rootCmd.AddCommand(ai.NewCommand())
	rootCmd.AddCommand(calc.NewCommand())
	rootCmd.AddCommand(curriculum.NewCommand())
	rootCmd.AddCommand(sheet.NewCommand())
	rootCmd.AddCommand(pipeline.NewCommand())
	rootCmd.AddCommand(cmdwatch.NewCommand())
	rootCmd.AddCommand(cmdhistory.NewCommand())
	rootCmd.AddCommand(cmdconfig.NewCommand())
	rootCmd.AddCommand(doctor.NewCommand())
	rootCmd.AddCommand(completion.NewCommand(rootCmd))
	rootCmd.AddCommand(version.NewCommand())

	return rootCmd
}

// Execute runs the root command and handles any returned errors.
// SIGINT and SIGTERM cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand()
	executed, err := rootCmd.ExecuteContextC(ctx)
	if err == nil {
		return
	}

	if jsonOutput {
		output.PrintJSONError(executed.CommandPath(), err, output.ExitUserError)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	stop()
	os.Exit(output.ExitUserError)
}
