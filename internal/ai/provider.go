// Package ai talks to chat-completion language models.
package ai

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// InferOptions configures a single inference call.
type InferOptions struct {
	Model       string  `json:"model,omitempty"`
	MaxTokens   int     `json:"maxTokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	// JSON asks the model for a single JSON object reply.
	JSON bool `json:"json,omitempty"`
}

// InferResult holds the response from an inference call.
type InferResult struct {
	Content      string        `json:"content"`
	Model        string        `json:"model"`
	InputTokens  int           `json:"inputTokens,omitempty"`
	OutputTokens int           `json:"outputTokens,omitempty"`
	Elapsed      time.Duration `json:"elapsed,omitempty"`
}

// Provider is a chat-completion backend.
type Provider interface {
	// Infer sends a prompt and returns the complete response.
	Infer(ctx context.Context, system string, messages []Message, opts InferOptions) (*InferResult, error)

	// Stream sends a prompt and returns a channel of response chunks.
	Stream(ctx context.Context, system string, messages []Message, opts InferOptions) (<-chan string, <-chan error, error)

	// Name returns the provider identifier.
	Name() string
}

// Ask is a convenience wrapper for a single user prompt.
func Ask(ctx context.Context, p Provider, system, prompt string, opts InferOptions) (*InferResult, error) {
	return p.Infer(ctx, system, []Message{{Role: "user", Content: prompt}}, opts)
}

// NewProvider creates a provider by name. apiKey is required for openai;
// baseURL overrides the endpoint (empty keeps the provider default).
func NewProvider(name, model, apiKey, baseURL string) (Provider, error) {
	switch strings.ToLower(name) {
	case "openai", "":
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is not set — add it to .env or run 'rpa config set api_keys.openai sk-...'")
		}
		p := NewOpenAIProvider(apiKey, model)
		if baseURL != "" {
			p.baseURL = strings.TrimRight(baseURL, "/")
		}
		return p, nil
	case "ollama":
		if baseURL == "" {
			host := os.Getenv("OLLAMA_HOST")
			if host == "" {
				host = "http://localhost:11434"
			}
			baseURL = strings.TrimRight(host, "/") + "/v1"
		}
		if model == "" {
			model = defaultOllamaModel
		}
		p := NewOpenAIProvider("", model)
		p.name = "ollama"
		p.baseURL = strings.TrimRight(baseURL, "/")
		p.client.Timeout = 300 * time.Second
		return p, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q — supported providers: openai, ollama", name)
	}
}
