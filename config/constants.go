package config

import "time"

// Embedding and index defaults
const (
	// DefaultVectorDimension matches Cohere embed-english-v3.0
	DefaultVectorDimension = 1024

	// DefaultTopK is the number of neighbours returned by a recommendation query
	DefaultTopK = 5

	// DefaultIndexName names the Chroma collection / SQLite index
	DefaultIndexName = "news-articles"
)

// Feed fetching defaults
const (
	// DefaultFeedMaxRetries is the number of attempts per feed, including the first
	DefaultFeedMaxRetries = 3

	// DefaultFeedRetryDelay is the wait between attempts on the same feed
	DefaultFeedRetryDelay = 5 * time.Second

	// DefaultFeedTimeout bounds a single fetch attempt
	DefaultFeedTimeout = 30 * time.Second

	// DefaultUserAgent is sent with feed and page requests
	DefaultUserAgent = "newsradar/1.0"
)

// Storage defaults
const (
	DefaultRawNewsDir       = "data/raw_news"
	DefaultProcessedNewsDir = "data/processed_news"
	DefaultSQLitePath       = "data/index.db"
)

// Backend names
const (
	EmbeddingProviderCohere = "cohere"
	EmbeddingProviderOpenAI = "openai"

	IndexBackendChroma = "chroma"
	IndexBackendSQLite = "sqlite"

	LLMProviderGroq      = "groq"
	LLMProviderOpenAI    = "openai"
	LLMProviderAnthropic = "anthropic"
)

// Messaging defaults
const (
	DefaultKafkaIngestTopic = "news-ingest-requests"
	DefaultKafkaResultTopic = "news-ingest-results"
	DefaultKafkaGroupID     = "newsradar"
)

// DefaultSummaryCacheTTL bounds how long generated summaries stay in Redis
const DefaultSummaryCacheTTL = 24 * time.Hour
