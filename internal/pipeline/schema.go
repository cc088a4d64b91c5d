// Package pipeline runs YAML job files: a named list of steps executed in
// order, each step feeding its output to later ones through ${{ }} references.
package pipeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Pipeline is a complete job definition.
type Pipeline struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`
	Steps   []Step `yaml:"steps" json:"steps"`
}

// Step is a single action in a job.
type Step struct {
	ID        string            `yaml:"id" json:"id"`
	Action    string            `yaml:"action" json:"action"`
	Input     string            `yaml:"input,omitempty" json:"input,omitempty"`
	Options   map[string]string `yaml:"options,omitempty" json:"options,omitempty"`
	OnFailure string            `yaml:"on_failure,omitempty" json:"onFailure,omitempty"`
}

// Option returns options[key] or def when unset.
func (s Step) Option(key, def string) string {
	if v, ok := s.Options[key]; ok && v != "" {
		return v
	}
	return def
}

// StepResult holds the output of a completed step.
type StepResult struct {
	StepID  string `json:"stepId"`
	Action  string `json:"action"`
	Output  string `json:"output"`
	Error   error  `json:"-"`
	Skipped bool   `json:"skipped,omitempty"`
}

// LoadPipeline reads and parses a job file.
func LoadPipeline(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("pipeline file not found: %s — check that the path is correct", path)
		}
		return nil, fmt.Errorf("could not read pipeline file %s: %w", path, err)
	}

	return ParsePipeline(data)
}

// ParsePipeline parses a job from YAML bytes.
func ParsePipeline(data []byte) (*Pipeline, error) {
	var p Pipeline
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("invalid pipeline YAML: %w", err)
	}

	if err := validatePipeline(&p); err != nil {
		return nil, err
	}

	return &p, nil
}

func validatePipeline(p *Pipeline) error {
	if p.Name == "" {
		return fmt.Errorf("pipeline is missing a 'name' field")
	}

	if len(p.Steps) == 0 {
		return fmt.Errorf("pipeline %q has no steps defined", p.Name)
	}

	seen := make(map[string]bool)
	for i, step := range p.Steps {
		if step.ID == "" {
			return fmt.Errorf("step %d is missing an 'id' field", i+1)
		}
		if seen[step.ID] {
			return fmt.Errorf("duplicate step ID %q — each step must have a unique ID", step.ID)
		}
		seen[step.ID] = true

		if step.Action == "" {
			return fmt.Errorf("step %q is missing an 'action' field", step.ID)
		}
		switch step.OnFailure {
		case "", "skip", "abort":
		default:
			return fmt.Errorf("step %q has on_failure %q — use 'skip' or 'abort'", step.ID, step.OnFailure)
		}
	}

	return nil
}
