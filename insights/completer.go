// Package insights asks a language model for thematic analysis and article summaries.
package insights

import (
	"context"
	"errors"
)

// ErrEmptyCompletion is returned when the model produced no text
var ErrEmptyCompletion = errors.New("empty response from model")

// Default models per provider
const (
	DefaultGroqModel      = "llama-3.3-70b-versatile"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-haiku-4-5-20251001"

	GroqBaseURL = "https://api.groq.com/openai/v1"
)

// CompletionRequest is a single system + user prompt exchange
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
}

// Completer produces a text completion for a prompt
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	ModelName() string
}
