// Package calc provides the "rpa calc" command.
package calc

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/rpakit/internal/calc"
	"github.com/klytics/rpakit/internal/output"
)

// NewCommand returns the calc command.
func NewCommand() *cobra.Command {
	var opts calc.Options

	cmd := &cobra.Command{
		Use:   "calc <file.xlsx>",
		Short: "Write the difference of two cells into a third",
		Long: `Read two numeric cells, write a - b into the output cell and save the
workbook in place. Defaults: B1 - B2 into B3 on the active sheet.

Text cells are rejected even when they look like numbers.`,
		Example: `  rpa calc budget.xlsx
  rpa calc budget.xlsx --sheet 2024 --a C5 --b C6 --out C7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")

			res, err := calc.Subtract(args[0], opts)
			if err != nil {
				return err
			}

			if jsonFlag {
				return output.PrintJSON("calc", res)
			}

			green := color.New(color.FgGreen).SprintFunc()
			fmt.Printf("  %s %s!%s = %g - %g = %s\n", green("✓"), res.Sheet, res.Out, res.A, res.B, green(fmt.Sprintf("%g", res.Value)))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Sheet, "sheet", "", "Sheet name (default: active sheet)")
	cmd.Flags().StringVar(&opts.A, "a", "B1", "Minuend cell")
	cmd.Flags().StringVar(&opts.B, "b", "B2", "Subtrahend cell")
	cmd.Flags().StringVar(&opts.Out, "out", "B3", "Result cell")

	return cmd
}
