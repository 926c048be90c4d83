package embeddings

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	cohereoption "github.com/cohere-ai/cohere-go/v2/option"
)

// DefaultCohereModel produces 1024-dimension vectors
const DefaultCohereModel = "embed-english-v3.0"

// CohereProvider implements Provider using the Cohere Embed API (v2)
// Docs: https://docs.cohere.com/reference/embed
type CohereProvider struct {
	client *cohereclient.Client
	model  string
}

// NewCohereProvider creates a Cohere-backed provider. baseURL is optional.
func NewCohereProvider(apiKey, model, baseURL string) *CohereProvider {
	if model == "" || !strings.HasPrefix(model, "embed-") {
		model = DefaultCohereModel
	}

	// Force HTTP/1.1 to avoid HTTP/2 protocol errors from the Cohere edge
	httpClient := &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
			ForceAttemptHTTP2: false,
		},
	}

	opts := []cohereoption.RequestOption{
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(httpClient),
	}
	if baseURL != "" {
		opts = append(opts, cohereclient.WithBaseURL(baseURL))
	}

	return &CohereProvider{client: cohereclient.NewClient(opts...), model: model}
}

func (c *CohereProvider) ModelName() string { return c.model }

func (c *CohereProvider) Embed(ctx context.Context, texts []string, mode Mode) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	inputType := cohere.EmbedInputTypeSearchDocument
	if mode == ModeQuery {
		inputType = cohere.EmbedInputTypeSearchQuery
	}

	resp, err := c.client.V2.Embed(ctx, &cohere.V2EmbedRequest{
		Texts:          texts,
		Model:          c.model,
		InputType:      inputType,
		EmbeddingTypes: []cohere.EmbeddingType{cohere.EmbeddingTypeFloat},
	})
	if err != nil {
		return nil, fmt.Errorf("cohere embed error: %w", err)
	}
	if resp == nil || resp.Embeddings == nil || resp.Embeddings.Float == nil {
		return nil, errors.New("cohere embed returned no float embeddings")
	}

	return toFloat32(resp.Embeddings.Float), nil
}

func toFloat32(in [][]float64) [][]float32 {
	out := make([][]float32, len(in))
	for i, vec := range in {
		fv := make([]float32, len(vec))
		for j, v := range vec {
			fv[j] = float32(v)
		}
		out[i] = fv
	}
	return out
}
