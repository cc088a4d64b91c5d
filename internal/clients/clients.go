// Package clients builds the search client, model provider and run defaults
// from the loaded configuration so every command wires them the same way.
package clients

import (
	"github.com/klytics/rpakit/internal/ai"
	"github.com/klytics/rpakit/internal/config"
	"github.com/klytics/rpakit/internal/history"
	"github.com/klytics/rpakit/internal/pipeline/actions"
	"github.com/klytics/rpakit/internal/refresh"
	"github.com/klytics/rpakit/internal/search"
)

// Search returns a search client using NAVER_CLIENT_ID / NAVER_CLIENT_SECRET
// or the config file.
func Search(cfg *config.Config) (*search.Client, error) {
	id, secret, err := config.NaverCredentials()
	if err != nil {
		return nil, err
	}
	return search.NewClient(id, secret, search.WithBaseURL(cfg.Naver.BaseURL)), nil
}

// AI returns the model provider. Empty provider or model fall back to the
// config values.
func AI(cfg *config.Config, provider, model string) (ai.Provider, error) {
	if provider == "" {
		provider = cfg.Provider
	}
	if model == "" {
		model = cfg.Model
	}

	var key string
	if provider != "ollama" {
		k, err := config.GetAPIKey("openai")
		if err != nil {
			return nil, err
		}
		key = k
	}
	return ai.NewProvider(provider, model, key, cfg.AI.BaseURL)
}

// History returns the run log configured under history.*.
func History(cfg *config.Config) *history.Log {
	return history.New(cfg.History.Path, cfg.History.Enabled)
}

// RefreshOptions returns the refresh defaults from config.
func RefreshOptions(cfg *config.Config) refresh.Options {
	return refresh.Options{
		Path:      cfg.Workbook.Path,
		BackupDir: cfg.Workbook.BackupDir,
		Query:     cfg.Search.Query,
		Display:   cfg.Search.Display,
		Sort:      cfg.Search.Sort,
		StripTags: cfg.Search.StripTags,
		Model:     cfg.Model,
	}
}

// ActionsEnv returns the pipeline action environment. Either client may be
// nil; actions that need a missing client fail when they run.
func ActionsEnv(cfg *config.Config, s refresh.Searcher, p ai.Provider, dryRun bool) *actions.Env {
	return &actions.Env{
		Search:    s,
		AI:        p,
		Workbook:  cfg.Workbook.Path,
		BackupDir: cfg.Workbook.BackupDir,
		Query:     cfg.Search.Query,
		Display:   cfg.Search.Display,
		Sort:      cfg.Search.Sort,
		StripTags: cfg.Search.StripTags,
		Model:     cfg.Model,
		DryRun:    dryRun,
	}
}
