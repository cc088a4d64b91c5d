// Package pipeline provides CLI commands for running YAML job files.
package pipeline

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCommand returns the pipeline subcommand group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Run multi-step workbook jobs defined in YAML",
		Long: `Execute jobs that chain workbook, search and AI steps.

Actions: workbook.ensure, workbook.backup, sheet.rotate, sheet.write,
sheet.read, report.write, cell.subtract, search.fetch, ai.compare,
ai.summarize, ai.ask, refresh.`,
	}

	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newActionsCommand())

	return cmd
}

func newActionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List the available step actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			exec, err := NewExecutor(cmd, true)
			if err != nil {
				return err
			}
			for _, name := range exec.Actions() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
