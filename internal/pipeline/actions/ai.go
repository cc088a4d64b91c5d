package actions

import (
	"context"
	"fmt"

	"github.com/klytics/rpakit/internal/ai"
	"github.com/klytics/rpakit/internal/pipeline"
	"github.com/klytics/rpakit/internal/pricestats"
	"github.com/klytics/rpakit/internal/prompt"
	"github.com/klytics/rpakit/internal/workbook"
)

func (env *Env) ask(ctx context.Context, action, system, userPrompt string) (string, error) {
	if env.AI == nil {
		return "", fmt.Errorf("%s: no AI provider configured", action)
	}
	res, err := ai.Ask(ctx, env.AI, system, userPrompt, ai.InferOptions{Model: env.Model})
	if err != nil {
		return "", fmt.Errorf("%s failed: %w", action, err)
	}
	return ai.PlainText(res.Content), nil
}

// AICompare asks the model to compare the previous and current lists of a workbook.
func (env *Env) AICompare(ctx context.Context, step pipeline.Step, input string) (string, error) {
	path, err := env.workbookPath(step, input, true)
	if err != nil {
		return "", err
	}
	f, err := workbook.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	prev, err := workbook.Rows(f, step.Option("previous", env.Names.Previous))
	if err != nil {
		return "", err
	}
	now, err := workbook.Rows(f, step.Option("current", env.Names.Current))
	if err != nil {
		return "", err
	}

	statsText := ""
	column := step.Option("price_column", pricestats.DefaultColumn)
	if cur, err := pricestats.FromRows(now, column); err == nil {
		statsText = cur.String()
		if old, err := pricestats.FromRows(prev, column); err == nil {
			statsText += "\n" + pricestats.Diff(old, cur)
		}
	}

	p, err := prompt.Compare(prev, now, statsText)
	if err != nil {
		return "", err
	}
	return env.ask(ctx, step.Action, "", p)
}

// AISummarize asks the model for a news summary of the input.
func (env *Env) AISummarize(ctx context.Context, step pipeline.Step, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("ai.summarize requires input text")
	}
	p, err := prompt.NewsSummary(input)
	if err != nil {
		return "", err
	}
	return env.ask(ctx, step.Action, "", p)
}

// AIAsk sends the input as a free-form prompt; options.system sets a system prompt.
func (env *Env) AIAsk(ctx context.Context, step pipeline.Step, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("ai.ask requires a prompt")
	}
	return env.ask(ctx, step.Action, step.Option("system", ""), input)
}
