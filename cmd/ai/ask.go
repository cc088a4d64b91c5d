package ai

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/klytics/rpakit/internal/ai"
	"github.com/klytics/rpakit/internal/clients"
	"github.com/klytics/rpakit/internal/config"
	"github.com/klytics/rpakit/internal/output"
)

func newAskCommand() *cobra.Command {
	var (
		system    string
		plain     bool
		maxTokens int
	)

	cmd := &cobra.Command{
		Use:   "ask <prompt> [file]",
		Short: "Ask the model a question, optionally about a file",
		Long: `Send a prompt to the model and stream the reply.

With a file argument the file is sent along with the prompt; a workbook is
sent as CSV, one block per sheet. "-" or a pipe reads the context from stdin.`,
		Example: `  rpa ai ask "포켄스 브랜드를 한 문장으로 소개해줘"
  rpa ai ask "가격이 가장 낮은 상품은?" genai_rpa.xlsx
  cat notes.txt | rpa ai ask "요약해줘" --plain`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")
			providerName, _ := cmd.Flags().GetString("provider")
			modelName, _ := cmd.Flags().GetString("model")

			question := args[0]
			doc, err := readContext(args[1:], os.Stdin, isatty.IsTerminal(os.Stdin.Fd()))
			if err != nil {
				return err
			}

			userMessage := question
			if strings.TrimSpace(doc) != "" {
				userMessage = fmt.Sprintf("Document:\n%s\n\nQuestion: %s", doc, question)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			provider, err := clients.AI(cfg, providerName, modelName)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			messages := []ai.Message{{Role: "user", Content: userMessage}}
			opts := ai.InferOptions{MaxTokens: maxTokens}

			if jsonFlag || plain {
				result, err := provider.Infer(ctx, system, messages, opts)
				if err != nil {
					return fmt.Errorf("AI inference failed: %w", err)
				}
				answer := result.Content
				if plain {
					answer = ai.PlainText(answer)
				}
				if jsonFlag {
					return output.PrintJSON("ai ask", map[string]any{
						"question": question,
						"answer":   answer,
						"model":    result.Model,
						"tokens":   result.InputTokens + result.OutputTokens,
					})
				}
				fmt.Println(answer)
				return nil
			}

			textCh, errCh, err := provider.Stream(ctx, system, messages, opts)
			if err != nil {
				return fmt.Errorf("AI inference failed: %w", err)
			}

			for text := range textCh {
				fmt.Print(text)
			}
			fmt.Println()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("streaming error: %w", err)
				}
			default:
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&system, "system", "", "System prompt")
	cmd.Flags().BoolVar(&plain, "plain", false, "Wait for the full reply and strip markdown")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "Reply token limit (0: provider default)")

	return cmd
}
