package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"RSS_FEEDS", "FEEDS_FILE", "VECTOR_DIMENSION", "TOP_K_RESULTS", "INDEX_BACKEND", "FEED_RETRY_DELAY"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.VectorDimension != 1024 || cfg.TopK != 5 {
		t.Fatalf("dimension/topK = %d/%d; want 1024/5", cfg.VectorDimension, cfg.TopK)
	}
	if cfg.IndexBackend != IndexBackendChroma || cfg.IndexName != "news-articles" {
		t.Fatalf("unexpected index defaults: %s %s", cfg.IndexBackend, cfg.IndexName)
	}
	if cfg.FeedRetryDelay != 5*time.Second || cfg.FeedMaxRetries != 3 {
		t.Fatalf("unexpected retry defaults: %v %d", cfg.FeedRetryDelay, cfg.FeedMaxRetries)
	}
	if len(cfg.Feeds) != 2 || cfg.Feeds[0].Name != "Wired" || cfg.Feeds[1].Name != "MIT Technology Review" {
		t.Fatalf("unexpected default feeds: %+v", cfg.Feeds)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("RSS_FEEDS", "hn, https://example.com/rss ,hn")
	t.Setenv("FEEDS_FILE", "")
	t.Setenv("TOP_K_RESULTS", "8")
	t.Setenv("FEED_RETRY_DELAY", "2")
	t.Setenv("FEED_TIMEOUT", "1500ms")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")
	t.Setenv("INDEX_BACKEND", "SQLite")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if len(cfg.Feeds) != 2 {
		t.Fatalf("expected duplicate preset to collapse, got %+v", cfg.Feeds)
	}
	if cfg.Feeds[0].URL != "https://hnrss.org/newest" || cfg.Feeds[1].URL != "https://example.com/rss" {
		t.Fatalf("unexpected feeds: %+v", cfg.Feeds)
	}
	if cfg.TopK != 8 || cfg.FeedRetryDelay != 2*time.Second || cfg.FeedTimeout != 1500*time.Millisecond {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "b:9092" {
		t.Fatalf("unexpected brokers: %v", cfg.KafkaBrokers)
	}
	if cfg.IndexBackend != IndexBackendSQLite {
		t.Fatalf("backend = %q", cfg.IndexBackend)
	}
}

func TestFromEnvRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("VECTOR_DIMENSION", "wide")
	t.Setenv("FEED_TIMEOUT", "soon")

	_, err := FromEnv()
	if err == nil {
		t.Fatal("expected error for malformed values")
	}
	for _, key := range []string{"VECTOR_DIMENSION", "FEED_TIMEOUT"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("error %q does not mention %s", err, key)
		}
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			EmbeddingProvider: EmbeddingProviderCohere,
			VectorDimension:   1024,
			TopK:              5,
			IndexBackend:      IndexBackendChroma,
			LLMProvider:       LLMProviderGroq,
			Feeds:             []FeedSource{{Name: "x", URL: "http://x"}},
			FeedMaxRetries:    3,
			FetchConcurrency:  1,
			Port:              8000,
		}
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero dimension", func(c *Config) { c.VectorDimension = 0 }},
		{"zero topk", func(c *Config) { c.TopK = 0 }},
		{"no retries", func(c *Config) { c.FeedMaxRetries = 0 }},
		{"no feeds", func(c *Config) { c.Feeds = nil }},
		{"bad backend", func(c *Config) { c.IndexBackend = "pinecone" }},
		{"bad llm", func(c *Config) { c.LLMProvider = "mystery" }},
		{"bad embedder", func(c *Config) { c.EmbeddingProvider = "mystery" }},
		{"bad port", func(c *Config) { c.Port = 70000 }},
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("base config should validate: %v", err)
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestFeedsFileMergesWithPresets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feeds.yaml")
	doc := `feeds:
  - name: Example
    url: https://example.com/feed.xml
  - name: verge
  - name: Wired
    url: https://www.wired.com/feed/rss
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write feeds file: %v", err)
	}

	t.Setenv("RSS_FEEDS", "wired")
	t.Setenv("FEEDS_FILE", path)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}

	var urls []string
	for _, f := range cfg.Feeds {
		urls = append(urls, f.URL)
	}
	want := []string{
		"https://www.wired.com/feed/rss",
		"https://example.com/feed.xml",
		"https://www.theverge.com/rss/index.xml",
	}
	if strings.Join(urls, ",") != strings.Join(want, ",") {
		t.Fatalf("feeds = %v; want %v", urls, want)
	}
}

func TestLoadFeedsFileUnknownPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.yaml")
	if err := os.WriteFile(path, []byte("feeds:\n  - name: nope\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFeedsFile(path); err == nil {
		t.Fatal("expected error for unknown preset without url")
	}
}

func TestResolveFeed(t *testing.T) {
	if got := ResolveFeed("HN"); got.URL != "https://hnrss.org/newest" {
		t.Fatalf("preset lookup should be case-insensitive, got %+v", got)
	}
	if got := ResolveFeed("https://example.com/rss"); got.URL != "https://example.com/rss" || got.Name != got.URL {
		t.Fatalf("direct URL should pass through, got %+v", got)
	}
}
