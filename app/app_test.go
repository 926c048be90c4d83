package app

import (
	"context"
	"path/filepath"
	"testing"

	"newsradar/config"
	"newsradar/insights"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		EmbeddingProvider: config.EmbeddingProviderCohere,
		VectorDimension:   8,
		TopK:              3,
		IndexBackend:      config.IndexBackendSQLite,
		IndexName:         "test",
		SQLitePath:        filepath.Join(dir, "index.db"),
		LLMProvider:       config.LLMProviderGroq,
		Feeds:             config.ResolveFeeds(config.DefaultFeeds),
		FeedMaxRetries:    1,
		FetchConcurrency:  1,
		RawNewsDir:        filepath.Join(dir, "raw"),
		ProcessedNewsDir:  filepath.Join(dir, "processed"),
		Port:              8000,
	}
}

func TestNewWithSQLiteBackend(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if err := a.Pipeline.Ready(context.Background()); err != nil {
		t.Fatalf("Ready: %v", err)
	}
	n, err := a.Pipeline.IndexCount(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("IndexCount = %d, %v", n, err)
	}
}

func TestUnknownBackendsAreRejected(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"embedding", func(c *config.Config) { c.EmbeddingProvider = "word2vec" }},
		{"llm", func(c *config.Config) { c.LLMProvider = "local" }},
		{"index", func(c *config.Config) { c.IndexBackend = "pinecone" }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := testConfig(t)
			c.mutate(cfg)
			if _, err := New(context.Background(), cfg, nil); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestBuildCompleterModels(t *testing.T) {
	cases := []struct {
		provider string
		want     string
	}{
		{config.LLMProviderGroq, insights.DefaultGroqModel},
		{config.LLMProviderOpenAI, insights.DefaultOpenAIModel},
		{config.LLMProviderAnthropic, insights.DefaultAnthropicModel},
	}
	for _, c := range cases {
		completer, err := buildCompleter(&config.Config{LLMProvider: c.provider})
		if err != nil {
			t.Fatalf("%s: %v", c.provider, err)
		}
		if completer.ModelName() != c.want {
			t.Fatalf("%s model = %q; want %q", c.provider, completer.ModelName(), c.want)
		}
	}
}
