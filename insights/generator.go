package insights

import (
	"context"
	"fmt"
	"strings"

	"newsradar/logging"
	"newsradar/types"

	"go.uber.org/zap"
)

// Generator produces analyses and summaries with a Completer
type Generator struct {
	completer      Completer
	includeContent bool
	logger         *zap.Logger
}

// Option configures a Generator
type Option func(*Generator)

// WithTitlesOnly leaves article content out of the analysis prompt
func WithTitlesOnly() Option {
	return func(g *Generator) { g.includeContent = false }
}

// NewGenerator creates a generator that includes article content in analysis prompts
func NewGenerator(completer Completer, logger *zap.Logger, opts ...Option) *Generator {
	g := &Generator{
		completer:      completer,
		includeContent: true,
		logger:         logging.OrNop(logger).Named("insights"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Analyze asks the model for themes, insights, implications and related areas.
// A reply that cannot be parsed is returned as raw text, not as an error.
func (g *Generator) Analyze(ctx context.Context, matches []types.Match) (types.Insights, error) {
	if len(matches) == 0 {
		return types.Insights{Analysis: types.EmptyAnalysis()}, nil
	}

	reply, err := g.completer.Complete(ctx, CompletionRequest{
		SystemPrompt: analystSystemPrompt,
		UserPrompt:   buildAnalysisPrompt(matches, g.includeContent),
		Temperature:  analysisTemperature,
		MaxTokens:    analysisMaxTokens,
	})
	if err != nil {
		return types.Insights{}, fmt.Errorf("analyze %d articles: %w", len(matches), err)
	}

	result := ParseAnalysis(reply)
	if !result.IsStructured() {
		g.logger.Warn("analysis reply was not valid JSON, returning raw text",
			zap.String("model", g.completer.ModelName()),
			zap.Int("length", len(reply)))
	}
	return result, nil
}

// Summarize produces a concise summary of one article
func (g *Generator) Summarize(ctx context.Context, title, content string) (string, error) {
	reply, err := g.completer.Complete(ctx, CompletionRequest{
		SystemPrompt: summarizerSystemPrompt,
		UserPrompt:   buildSummaryPrompt(title, content),
		Temperature:  summaryTemperature,
		MaxTokens:    summaryMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("summarize %q: %w", title, err)
	}
	summary := strings.TrimSpace(reply)
	if summary == "" {
		return "", ErrEmptyCompletion
	}
	return summary, nil
}
