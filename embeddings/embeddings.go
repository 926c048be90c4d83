// Package embeddings turns article and query text into fixed-dimension vectors.
package embeddings

import (
	"context"
	"errors"
	"fmt"

	"newsradar/logging"
	"newsradar/types"

	"go.uber.org/zap"
)

var (
	// ErrCountMismatch is returned when a provider returns a different number of vectors than inputs
	ErrCountMismatch = errors.New("embedding count mismatch")
	// ErrDimensionMismatch is returned when a vector does not have the configured dimension
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Mode selects how the embedding model should treat the input
type Mode int

const (
	// ModeDocument embeds text that will be stored and searched over
	ModeDocument Mode = iota
	// ModeQuery embeds text used to search
	ModeQuery
)

func (m Mode) String() string {
	if m == ModeQuery {
		return "query"
	}
	return "document"
}

// Provider abstracts a text->embedding generator.
// Implementations should return one embedding vector per input text.
type Provider interface {
	Embed(ctx context.Context, texts []string, mode Mode) ([][]float32, error)
	ModelName() string
}

// Client validates provider output against the configured dimension
type Client struct {
	provider  Provider
	dimension int
	logger    *zap.Logger
}

// NewClient wraps provider, enforcing vectors of length dimension
func NewClient(provider Provider, dimension int, logger *zap.Logger) *Client {
	return &Client{
		provider:  provider,
		dimension: dimension,
		logger:    logging.OrNop(logger).Named("embeddings"),
	}
}

// Dimension returns the configured vector length
func (c *Client) Dimension() int {
	return c.dimension
}

// ModelName returns the underlying provider's model
func (c *Client) ModelName() string {
	return c.provider.ModelName()
}

// EmbedTexts returns one vector per text or an error; partial results are never returned
func (c *Client) EmbedTexts(ctx context.Context, texts []string, mode Mode) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	vectors, err := c.provider.Embed(ctx, texts, mode)
	if err != nil {
		return nil, fmt.Errorf("embed %d texts with %s: %w", len(texts), c.provider.ModelName(), err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrCountMismatch, len(vectors), len(texts))
	}
	for i, v := range vectors {
		if len(v) != c.dimension {
			return nil, fmt.Errorf("%w: vector %d has length %d, want %d", ErrDimensionMismatch, i, len(v), c.dimension)
		}
	}
	return vectors, nil
}

// EmbedArticles embeds title + content of each article in document mode and attaches
// the vectors positionally. On error no article is modified.
func (c *Client) EmbedArticles(ctx context.Context, articles []*types.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}

	texts := make([]string, len(articles))
	for i, a := range articles {
		texts[i] = a.EmbeddingText()
	}

	vectors, err := c.EmbedTexts(ctx, texts, ModeDocument)
	if err != nil {
		return 0, err
	}

	for i, a := range articles {
		a.Embedding = vectors[i]
	}
	c.logger.Debug("embedded articles", zap.Int("count", len(articles)), zap.String("model", c.provider.ModelName()))
	return len(articles), nil
}

// EmbedQuery embeds a single search query
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedTexts(ctx, []string{text}, ModeQuery)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}
