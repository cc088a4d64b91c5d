package pipeline

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ActionFunc is the signature for pipeline action handlers.
type ActionFunc func(ctx context.Context, step Step, input string) (string, error)

// Executor runs steps sequentially, resolving ${{ }} references between them.
type Executor struct {
	actions map[string]ActionFunc
	results map[string]*StepResult
	level   zerolog.Level
	dryRun  bool
	now     func() time.Time
}

// NewExecutor creates an executor. verbose raises step logs from debug to info.
func NewExecutor(verbose bool) *Executor {
	level := zerolog.DebugLevel
	if verbose {
		level = zerolog.InfoLevel
	}
	return &Executor{
		actions: make(map[string]ActionFunc),
		results: make(map[string]*StepResult),
		level:   level,
		now:     time.Now,
	}
}

// SetDryRun enables dry-run mode. Non-AI steps execute normally; ai.* steps
// are skipped and report what they would have sent.
func (e *Executor) SetDryRun(dryRun bool) {
	e.dryRun = dryRun
}

// DryRun reports whether dry-run mode is on.
func (e *Executor) DryRun() bool {
	return e.dryRun
}

// RegisterAction adds an action handler to the registry.
func (e *Executor) RegisterAction(name string, fn ActionFunc) {
	e.actions[name] = fn
}

// Actions returns the registered action names, sorted.
func (e *Executor) Actions() []string {
	names := make([]string, 0, len(e.actions))
	for name := range e.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes all steps in order. A failing step aborts the run unless it
// is marked on_failure: skip.
func (e *Executor) Run(ctx context.Context, p *Pipeline) ([]StepResult, error) {
	var results []StepResult
	e.results = make(map[string]*StepResult)

	log.WithLevel(e.level).Str("pipeline", p.Name).Str("version", p.Version).Bool("dry_run", e.dryRun).Msg("running pipeline")

	for i, step := range p.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		resolved := e.resolveStepVariables(step)
		logger := log.With().Str("step", resolved.ID).Str("action", resolved.Action).Logger()
		logger.WithLevel(e.level).Msgf("[%d/%d] running step", i+1, len(p.Steps))

		if e.dryRun && isAIAction(resolved.Action) {
			msg := fmt.Sprintf("[DRY-RUN] Would call %s with %d chars of input", resolved.Action, len(resolved.Input))
			logger.WithLevel(e.level).Str("input", truncateStr(resolved.Input, 100)).Msg("dry run, step skipped")
			e.record(&results, StepResult{StepID: resolved.ID, Action: resolved.Action, Output: msg, Skipped: true})
			continue
		}

		action, ok := e.actions[resolved.Action]
		if !ok {
			err := fmt.Errorf("unknown action %q in step %q — registered actions: %v",
				resolved.Action, resolved.ID, e.Actions())

			if resolved.OnFailure == "skip" {
				logger.Warn().Err(err).Msg("skipping step")
				e.record(&results, StepResult{StepID: resolved.ID, Action: resolved.Action, Error: err, Skipped: true})
				continue
			}
			return results, err
		}

		start := time.Now()
		output, err := action(ctx, resolved, resolved.Input)
		elapsed := time.Since(start)

		e.record(&results, StepResult{StepID: resolved.ID, Action: resolved.Action, Output: output, Error: err, Skipped: err != nil})
		logger.WithLevel(e.level).Dur("elapsed", elapsed.Round(time.Millisecond)).Msg("step completed")

		if err != nil {
			if resolved.OnFailure == "skip" {
				logger.Warn().Err(err).Msg("step failed, skipping")
				continue
			}
			return results, fmt.Errorf("step %q failed: %w", resolved.ID, err)
		}
	}

	return results, nil
}

func (e *Executor) record(results *[]StepResult, r StepResult) {
	*results = append(*results, r)
	e.results[r.StepID] = &r
}

func isAIAction(action string) bool {
	return strings.HasPrefix(action, "ai.")
}

var interpolationPattern = regexp.MustCompile(`\$\{\{\s*([^}]+)\s*\}\}`)

func (e *Executor) resolveStepVariables(step Step) Step {
	resolved := step
	resolved.Input = e.interpolate(step.Input)

	if resolved.Options != nil {
		newOpts := make(map[string]string, len(resolved.Options))
		for k, v := range resolved.Options {
			newOpts[k] = e.interpolate(v)
		}
		resolved.Options = newOpts
	}

	return resolved
}

func (e *Executor) interpolate(s string) string {
	return interpolationPattern.ReplaceAllStringFunc(s, func(match string) string {
		inner := interpolationPattern.FindStringSubmatch(match)
		if len(inner) < 2 {
			return match
		}
		expr := strings.TrimSpace(inner[1])

		// steps.<id>.output
		if strings.HasPrefix(expr, "steps.") {
			parts := strings.Split(expr, ".")
			if len(parts) >= 3 && parts[2] == "output" {
				if result, ok := e.results[parts[1]]; ok {
					return result.Output
				}
			}
		}

		switch expr {
		case "date.today":
			return e.now().Format("2006-01-02")
		case "date.now", "date.timestamp":
			return e.now().Format(time.RFC3339)
		case "date.stamp":
			return e.now().Format("2006-01-02 15:04:05")
		case "date.compact":
			return e.now().Format("20060102150405")
		}

		if strings.HasPrefix(expr, "env.") {
			return os.Getenv(strings.TrimPrefix(expr, "env."))
		}

		return match
	})
}

func truncateStr(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
