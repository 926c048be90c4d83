package insights

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// OpenAICompleter talks to any OpenAI-compatible chat completions API (OpenAI, Groq)
type OpenAICompleter struct {
	client openai.Client
	model  string
}

// NewOpenAICompleter creates a chat completer. An empty baseURL targets api.openai.com.
func NewOpenAICompleter(apiKey, model, baseURL string) *OpenAICompleter {
	if model == "" {
		model = DefaultOpenAIModel
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(1),
	}
	if base := strings.TrimRight(strings.TrimSpace(baseURL), "/"); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	return &OpenAICompleter{client: openai.NewClient(opts...), model: model}
}

// NewGroqCompleter creates a completer for Groq's OpenAI-compatible endpoint
func NewGroqCompleter(apiKey, model, baseURL string) *OpenAICompleter {
	if model == "" {
		model = DefaultGroqModel
	}
	if baseURL == "" {
		baseURL = GroqBaseURL
	}
	return NewOpenAICompleter(apiKey, model, baseURL)
}

func (o *OpenAICompleter) ModelName() string { return o.model }

func (o *OpenAICompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if strings.TrimSpace(req.SystemPrompt) != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.UserPrompt))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}
