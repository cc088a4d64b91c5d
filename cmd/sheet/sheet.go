// Package sheet provides the "rpa sheet" command group.
package sheet

import "github.com/spf13/cobra"

// NewCommand returns the sheet subcommand group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheet",
		Short: "Inspect workbook sheets",
	}

	cmd.AddCommand(newReadCommand())

	return cmd
}
