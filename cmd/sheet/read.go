package sheet

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/rpakit/internal/output"
	"github.com/klytics/rpakit/internal/pricestats"
	"github.com/klytics/rpakit/internal/workbook"
)

// pageHeight is the line count above which pretty output goes through $PAGER.
const pageHeight = 40

func newReadCommand() *cobra.Command {
	var (
		sheetName string
		csvOutput bool
		statsCol  string
		noPager   bool
	)

	cmd := &cobra.Command{
		Use:   "read <file.xlsx>",
		Short: "Print the contents of a workbook",
		Long:  "Reads an .xlsx file and prints every sheet as a table, CSV or JSON. Pass '-' to read from stdin.",
		Example: `  rpa sheet read genai_rpa.xlsx
  rpa sheet read genai_rpa.xlsx --sheet now_list --stats lprice
  cat genai_rpa.xlsx | rpa sheet read - --csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")

			wb, err := load(args)
			if err != nil {
				return err
			}

			if sheetName != "" {
				sheet, err := wb.GetSheet(sheetName)
				if err != nil {
					return err
				}
				wb = &workbook.Workbook{Sheets: []workbook.Sheet{*sheet}}
			}

			var summaries []pricestats.Summary
			if statsCol != "" {
				for _, s := range wb.Sheets {
					sum, err := pricestats.FromRows(s.Rows, statsCol)
					if err != nil {
						continue
					}
					summaries = append(summaries, sum)
				}
			}

			if jsonFlag {
				return output.PrintJSON("sheet read", map[string]any{
					"sheets": wb.Sheets,
					"stats":  summaries,
				})
			}

			if csvOutput {
				for _, s := range wb.Sheets {
					if len(wb.Sheets) > 1 {
						fmt.Fprintf(os.Stderr, "--- %s ---\n", s.Name)
					}
					fmt.Print(s.ToCSV())
				}
				return nil
			}

			var buf bytes.Buffer
			renderPretty(&buf, wb, summaries)
			if !noPager && output.ShouldPage(buf.String(), pageHeight) {
				return output.Page(buf.String())
			}
			_, err = buf.WriteTo(os.Stdout)
			return err
		},
	}

	cmd.Flags().StringVar(&sheetName, "sheet", "", "Read only the named sheet")
	cmd.Flags().BoolVar(&csvOutput, "csv", false, "Output as CSV")
	cmd.Flags().StringVar(&statsCol, "stats", "", "Print price statistics for this column")
	cmd.Flags().BoolVar(&noPager, "no-pager", false, "Never pipe output through $PAGER")

	return cmd
}

func load(args []string) (*workbook.Workbook, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("could not read from stdin: %w", err)
		}
		if len(data) == 0 {
			return nil, fmt.Errorf("no input provided — pass an .xlsx file path or pipe data to stdin")
		}
		return workbook.ReadBytes(data)
	}

	path := args[0]
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return nil, fmt.Errorf("expected an .xlsx file, got %q — use 'rpa sheet read <file.xlsx>'", path)
	}
	return workbook.ReadFile(path)
}

func renderPretty(w io.Writer, wb *workbook.Workbook, summaries []pricestats.Summary) {
	headerStyle := color.New(color.Bold, color.FgCyan)

	for i, s := range wb.Sheets {
		if i > 0 {
			fmt.Fprintln(w)
		}
		headerStyle.Fprintf(w, "Sheet: %s\n", s.Name)
		output.PrintTable(w, s.Rows)
	}

	if len(summaries) > 0 {
		fmt.Fprintln(w)
		headerStyle.Fprintln(w, "Stats")
		for _, sum := range summaries {
			fmt.Fprintf(w, "  %s\n", sum.String())
		}
	}
}
