// Package curriculum provides the "rpa curriculum" command.
package curriculum

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/rpakit/internal/clients"
	"github.com/klytics/rpakit/internal/config"
	"github.com/klytics/rpakit/internal/curriculum"
	"github.com/klytics/rpakit/internal/output"
	"github.com/klytics/rpakit/internal/progress"
)

// NewCommand returns the curriculum command.
func NewCommand() *cobra.Command {
	var (
		description string
		hours       int
		out         string
	)

	cmd := &cobra.Command{
		Use:   "curriculum <topic>",
		Short: "Generate a lecture plan and save it as a workbook",
		Long: `Ask the model for a curriculum on a topic and save it as a styled
workbook (curriculum_<topic>.xlsx) plus a JSON file next to it.`,
		Example: `  rpa curriculum "파이썬 기초" --hours 8
  rpa curriculum "데이터 분석" --description "엑셀 사용자 대상" --out plan.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")
			providerName, _ := cmd.Flags().GetString("provider")
			modelName, _ := cmd.Flags().GetString("model")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			provider, err := clients.AI(cfg, providerName, modelName)
			if err != nil {
				return err
			}

			req := curriculum.Request{
				Topic:       args[0],
				Description: description,
				Hours:       hours,
				Model:       modelName,
			}

			spinner := progress.NewSpinner("generating curriculum")
			spinner.Start()
			c, err := curriculum.Generate(cmd.Context(), provider, req)
			if err != nil {
				spinner.Fail("generation failed")
				return err
			}
			spinner.Stop(fmt.Sprintf("%d lectures", len(c.Lectures)))

			path := out
			if path == "" {
				path = curriculum.FileName(req.Topic)
			}
			jsonPath, err := curriculum.Save(c, path)
			if err != nil {
				return err
			}

			if jsonFlag {
				return output.PrintJSON("curriculum", map[string]any{
					"workbook":   path,
					"json":       jsonPath,
					"curriculum": c,
				})
			}

			green := color.New(color.FgGreen).SprintFunc()
			fmt.Printf("  %s %s (%s hours)\n", green("✓"), c.Topic, c.TotalHours)
			for i, l := range c.Lectures {
				fmt.Printf("    %2d. %s (%s min)\n", i+1, l.Title, l.Duration)
			}
			fmt.Printf("  Saved %s and %s\n", path, jsonPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Audience or focus of the course")
	cmd.Flags().IntVar(&hours, "hours", 10, "Total course length in hours")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output workbook (default: curriculum_<topic>.xlsx)")

	return cmd
}
