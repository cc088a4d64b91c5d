// Package ai provides the "rpa ai" command group.
package ai

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/klytics/rpakit/internal/workbook"
)

// NewCommand returns the ai subcommand group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ai",
		Short: "Talk to the configured language model",
		Long:  "Send prompts to the configured provider (openai, or ollama through its OpenAI-compatible endpoint).",
	}

	cmd.AddCommand(newAskCommand())

	return cmd
}

// readContext returns the context document for a prompt: an .xlsx file is
// flattened to CSV per sheet, other files are read as text, "-" or a pipe
// reads stdin. No args and an interactive stdin means no context.
func readContext(args []string, stdin io.Reader, interactive bool) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		path := args[0]
		if strings.EqualFold(filepath.Ext(path), ".xlsx") {
			wb, err := workbook.ReadFile(path)
			if err != nil {
				return "", err
			}
			var sb strings.Builder
			for _, s := range wb.Sheets {
				fmt.Fprintf(&sb, "## %s\n%s\n", s.Name, s.ToCSV())
			}
			return sb.String(), nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("could not read file %s: %w", path, err)
		}
		return string(data), nil
	}

	if len(args) == 0 && interactive {
		return "", nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("could not read from stdin: %w", err)
	}
	return string(data), nil
}
