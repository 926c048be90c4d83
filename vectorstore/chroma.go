package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"newsradar/logging"
	"newsradar/types"

	"go.uber.org/zap"
)

// ChromaConfig holds configuration for the Chroma connection
type ChromaConfig struct {
	URL            string
	Tenant         string
	Database       string
	CollectionName string
	Token          string
	Dimension      int
	HTTPClient     *http.Client
}

// ChromaIndex wraps the Chroma vector database v2 REST API
type ChromaIndex struct {
	cfg        ChromaConfig
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger

	mu           sync.Mutex
	collectionID string
}

// chromaQueryResults is the response of /query
type chromaQueryResults struct {
	IDs       [][]string                 `json:"ids"`
	Distances [][]float64                `json:"distances"`
	Metadatas [][]map[string]interface{} `json:"metadatas"`
	Documents [][]*string                `json:"documents"`
}

// chromaGetResults is the response of /get
type chromaGetResults struct {
	IDs       []string                 `json:"ids"`
	Metadatas []map[string]interface{} `json:"metadatas"`
	Documents []*string                `json:"documents"`
}

type chromaCollection struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Metadata map[string]interface{} `json:"metadata"`
}

// NewChromaIndex creates a Chroma-backed index. The collection is resolved on EnsureReady.
func NewChromaIndex(cfg ChromaConfig, logger *zap.Logger) *ChromaIndex {
	if cfg.Tenant == "" {
		cfg.Tenant = "default_tenant"
	}
	if cfg.Database == "" {
		cfg.Database = "default_database"
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &ChromaIndex{
		cfg:        cfg,
		baseURL:    strings.TrimRight(cfg.URL, "/") + "/api/v2",
		httpClient: client,
		logger:     logging.OrNop(logger).Named("chroma"),
	}
}

func (c *ChromaIndex) collectionsURL() string {
	return fmt.Sprintf("%s/tenants/%s/databases/%s/collections",
		c.baseURL, url.PathEscape(c.cfg.Tenant), url.PathEscape(c.cfg.Database))
}

// EnsureReady gets or creates the collection with cosine space and checks its dimension
func (c *ChromaIndex) EnsureReady(ctx context.Context) error {
	_, err := c.collection(ctx)
	return err
}

func (c *ChromaIndex) collection(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.collectionID != "" {
		return c.collectionID, nil
	}

	var existing chromaCollection
	status, err := c.do(ctx, http.MethodGet, c.collectionsURL()+"/"+url.PathEscape(c.cfg.CollectionName), nil, &existing)
	if err == nil && existing.ID != "" {
		if err := c.checkDimension(existing.Metadata); err != nil {
			return "", err
		}
		c.logger.Info("using existing collection", zap.String("collection", c.cfg.CollectionName))
		c.collectionID = existing.ID
		return c.collectionID, nil
	}
	if status == 0 && err != nil {
		// transport failure; creating would fail the same way
		return "", fmt.Errorf("failed to get collection: %w", err)
	}

	c.logger.Info("creating collection", zap.String("collection", c.cfg.CollectionName), zap.Int("dimension", c.cfg.Dimension))
	payload := map[string]interface{}{
		"name": c.cfg.CollectionName,
		"metadata": map[string]interface{}{
			"description": "newsradar article embeddings",
			"hnsw:space":  MetricCosine,
			"dimension":   c.cfg.Dimension,
		},
		"get_or_create": true,
	}
	var created chromaCollection
	if _, err := c.do(ctx, http.MethodPost, c.collectionsURL(), payload, &created); err != nil {
		return "", fmt.Errorf("failed to create collection: %w", err)
	}
	if created.ID == "" {
		return "", errors.New("failed to create collection: response had no id")
	}
	if err := c.checkDimension(created.Metadata); err != nil {
		return "", err
	}

	c.collectionID = created.ID
	return c.collectionID, nil
}

func (c *ChromaIndex) checkDimension(metadata map[string]interface{}) error {
	raw, ok := metadata["dimension"]
	if !ok {
		return nil
	}
	dim, ok := raw.(float64)
	if !ok {
		return nil
	}
	if int(dim) != c.cfg.Dimension {
		return fmt.Errorf("%w: collection %s has %d, configured %d", ErrDimensionMismatch, c.cfg.CollectionName, int(dim), c.cfg.Dimension)
	}
	return nil
}

func (c *ChromaIndex) collectionURL(ctx context.Context) (string, error) {
	id, err := c.collection(ctx)
	if err != nil {
		return "", err
	}
	return c.collectionsURL() + "/" + url.PathEscape(id), nil
}

// Upsert writes embedded articles, replacing existing entries with the same id
func (c *ChromaIndex) Upsert(ctx context.Context, articles []*types.Article) (int, error) {
	batch, err := embedded(articles, c.cfg.Dimension)
	if err != nil {
		return 0, err
	}
	if len(batch) == 0 {
		return 0, nil
	}

	base, err := c.collectionURL(ctx)
	if err != nil {
		return 0, err
	}

	ids := make([]string, len(batch))
	embeddings := make([][]float32, len(batch))
	documents := make([]string, len(batch))
	metadatas := make([]map[string]interface{}, len(batch))
	for i, a := range batch {
		ids[i] = a.ID
		embeddings[i] = a.Embedding
		documents[i] = a.Content
		metadatas[i], err = articleMetadata(a)
		if err != nil {
			return 0, err
		}
	}

	payload := map[string]interface{}{
		"ids":        ids,
		"embeddings": embeddings,
		"documents":  documents,
		"metadatas":  metadatas,
	}
	if _, err := c.do(ctx, http.MethodPost, base+"/upsert", payload, nil); err != nil {
		return 0, fmt.Errorf("failed to upsert documents: %w", err)
	}

	c.logger.Info("upserted documents", zap.Int("count", len(batch)))
	return len(batch), nil
}

// Query searches for the k nearest entries to vector
func (c *ChromaIndex) Query(ctx context.Context, vector []float32, k int) ([]types.Match, error) {
	if err := checkQueryVector(vector, c.cfg.Dimension); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []types.Match{}, nil
	}

	base, err := c.collectionURL(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"query_embeddings": [][]float32{vector},
		"n_results":        k,
		"include":          []string{"metadatas", "documents", "distances"},
	}
	var result chromaQueryResults
	if _, err := c.do(ctx, http.MethodPost, base+"/query", payload, &result); err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	if len(result.IDs) == 0 {
		return []types.Match{}, nil
	}

	matches := make([]types.Match, 0, len(result.IDs[0]))
	for i, id := range result.IDs[0] {
		m := matchFromMetadata(id, at2(result.Metadatas, i), at2Doc(result.Documents, i))
		if len(result.Distances) > 0 && i < len(result.Distances[0]) {
			m.Score = 1 - result.Distances[0][i]
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// Fetch retrieves an entry by id
func (c *ChromaIndex) Fetch(ctx context.Context, id string) (*types.Match, error) {
	base, err := c.collectionURL(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"ids":     []string{id},
		"include": []string{"metadatas", "documents"},
	}
	var result chromaGetResults
	if _, err := c.do(ctx, http.MethodPost, base+"/get", payload, &result); err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	for i, got := range result.IDs {
		if got != id {
			continue
		}
		var meta map[string]interface{}
		if i < len(result.Metadatas) {
			meta = result.Metadatas[i]
		}
		var doc *string
		if i < len(result.Documents) {
			doc = result.Documents[i]
		}
		m := matchFromMetadata(id, meta, doc)
		m.Score = 1
		return &m, nil
	}
	return nil, ErrNotFound
}

// Delete removes an entry by id
func (c *ChromaIndex) Delete(ctx context.Context, id string) error {
	base, err := c.collectionURL(ctx)
	if err != nil {
		return err
	}
	payload := map[string]interface{}{"ids": []string{id}}
	if _, err := c.do(ctx, http.MethodPost, base+"/delete", payload, nil); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	c.logger.Info("deleted document", zap.String("id", id))
	return nil
}

// Count returns the number of entries in the collection
func (c *ChromaIndex) Count(ctx context.Context) (int, error) {
	base, err := c.collectionURL(ctx)
	if err != nil {
		return 0, err
	}
	var count int
	if _, err := c.do(ctx, http.MethodGet, base+"/count", nil, &count); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

// Close releases idle connections
func (c *ChromaIndex) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// do sends a JSON request and decodes a JSON response into out (when non-nil).
// The returned status is 0 when no response was received.
func (c *ChromaIndex) do(ctx context.Context, method, endpoint string, payload interface{}, out interface{}) (int, error) {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Token != "" {
		req.Header.Set("x-chroma-token", c.cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return resp.StatusCode, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// articleMetadata flattens an article for Chroma, which only accepts scalar metadata values
func articleMetadata(a *types.Article) (map[string]interface{}, error) {
	categories, err := json.Marshal(nonNil(a.Categories))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"title":      a.Title,
		"link":       a.Link,
		"published":  a.Published,
		"source":     a.Source,
		"categories": string(categories),
	}, nil
}

func matchFromMetadata(id string, meta map[string]interface{}, doc *string) types.Match {
	m := types.Match{
		ID:         id,
		Title:      metaString(meta, "title"),
		Link:       metaString(meta, "link"),
		Published:  metaString(meta, "published"),
		Source:     metaString(meta, "source"),
		Categories: []string{},
	}
	if doc != nil {
		m.Content = *doc
	}
	if raw := metaString(meta, "categories"); raw != "" {
		var cats []string
		if err := json.Unmarshal([]byte(raw), &cats); err == nil && cats != nil {
			m.Categories = cats
		}
	}
	return m
}

func metaString(meta map[string]interface{}, key string) string {
	if meta == nil {
		return ""
	}
	if s, ok := meta[key].(string); ok {
		return s
	}
	return ""
}

func at2(rows [][]map[string]interface{}, i int) map[string]interface{} {
	if len(rows) == 0 || i >= len(rows[0]) {
		return nil
	}
	return rows[0][i]
}

func at2Doc(rows [][]*string, i int) *string {
	if len(rows) == 0 || i >= len(rows[0]) {
		return nil
	}
	return rows[0][i]
}
