package insights

import (
	"context"
	"fmt"
	"strings"

	anthropicclient "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	jetai "go.jetify.com/ai"
	jetapi "go.jetify.com/ai/api"
	jetanthropic "go.jetify.com/ai/provider/anthropic"
)

// AnthropicCompleter generates text with Claude models through the jetify ai layer
type AnthropicCompleter struct {
	model   jetapi.LanguageModel
	modelID string
}

// NewAnthropicCompleter creates a completer. baseURL is optional.
func NewAnthropicCompleter(apiKey, modelID, baseURL string) *AnthropicCompleter {
	if modelID == "" {
		modelID = DefaultAnthropicModel
	}

	opts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(apiKey),
		anthropicoption.WithMaxRetries(1),
	}
	if endpoint := strings.TrimSpace(baseURL); endpoint != "" {
		opts = append(opts, anthropicoption.WithBaseURL(strings.TrimRight(endpoint, "/")))
	}

	client := anthropicclient.NewClient(opts...)
	return &AnthropicCompleter{
		model:   jetanthropic.NewLanguageModel(modelID, jetanthropic.WithClient(client)),
		modelID: modelID,
	}
}

func (a *AnthropicCompleter) ModelName() string { return a.modelID }

func (a *AnthropicCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]jetapi.Message, 0, 2)
	if strings.TrimSpace(req.SystemPrompt) != "" {
		messages = append(messages, &jetapi.SystemMessage{Content: req.SystemPrompt})
	}
	messages = append(messages, &jetapi.UserMessage{Content: jetapi.ContentFromText(req.UserPrompt)})

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = analysisMaxTokens
	}

	resp, err := jetai.GenerateText(ctx, messages,
		jetai.WithModel(a.model),
		jetai.WithTemperature(req.Temperature),
		jetai.WithMaxOutputTokens(maxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("anthropic completion failed: %w", err)
	}

	var full strings.Builder
	for _, block := range resp.Content {
		textBlock, ok := block.(*jetapi.TextBlock)
		if !ok || textBlock.Text == "" {
			continue
		}
		full.WriteString(textBlock.Text)
	}
	if strings.TrimSpace(full.String()) == "" {
		return "", ErrEmptyCompletion
	}
	return full.String(), nil
}
