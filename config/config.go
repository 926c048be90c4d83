// Package config loads runtime configuration from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full runtime configuration for newsradar
type Config struct {
	// Embeddings
	EmbeddingProvider string
	EmbeddingModel    string
	CohereAPIKey      string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	VectorDimension   int
	TopK              int

	// Vector index
	IndexBackend   string
	IndexName      string
	ChromaURL      string
	ChromaTenant   string
	ChromaDatabase string
	ChromaToken    string
	SQLitePath     string

	// Language model
	LLMProvider     string
	LLMModel        string
	LLMBaseURL      string
	GroqAPIKey      string
	AnthropicAPIKey string

	// Feeds
	Feeds            []FeedSource
	FeedsFile        string
	FeedMaxRetries   int
	FeedRetryDelay   time.Duration
	FeedTimeout      time.Duration
	FetchConcurrency int
	SummaryFullText  bool

	// Storage
	RawNewsDir       string
	ProcessedNewsDir string
	S3Bucket         string
	S3Prefix         string
	S3Region         string
	S3Profile        string
	S3UsePathStyle   bool

	// HTTP
	APIToken      string
	Port          int
	PublicBaseURL string

	// Cache
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	SummaryCacheTTL time.Duration

	// Messaging and scheduling
	KafkaBrokers     []string
	KafkaIngestTopic string
	KafkaResultTopic string
	KafkaGroupID     string
	IngestSchedule   string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads .env (if present) and the process environment into a Config.
// Malformed numeric or duration values are reported as errors rather than silently
// replaced by defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only
func FromEnv() (*Config, error) {
	p := &envParser{}

	cfg := &Config{
		EmbeddingProvider: strings.ToLower(getEnvOrDefault("EMBEDDING_PROVIDER", EmbeddingProviderCohere)),
		EmbeddingModel:    os.Getenv("EMBEDDING_MODEL"),
		CohereAPIKey:      os.Getenv("COHERE_API_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		VectorDimension:   p.int("VECTOR_DIMENSION", DefaultVectorDimension),
		TopK:              p.int("TOP_K_RESULTS", DefaultTopK),

		IndexBackend:   strings.ToLower(getEnvOrDefault("INDEX_BACKEND", IndexBackendChroma)),
		IndexName:      getEnvOrDefault("INDEX_NAME", DefaultIndexName),
		ChromaURL:      strings.TrimRight(getEnvOrDefault("CHROMA_URL", "http://localhost:8000"), "/"),
		ChromaTenant:   getEnvOrDefault("CHROMA_TENANT", "default_tenant"),
		ChromaDatabase: getEnvOrDefault("CHROMA_DATABASE", "default_database"),
		ChromaToken:    os.Getenv("CHROMA_TOKEN"),
		SQLitePath:     getEnvOrDefault("SQLITE_PATH", DefaultSQLitePath),

		LLMProvider:     strings.ToLower(getEnvOrDefault("LLM_PROVIDER", LLMProviderGroq)),
		LLMModel:        os.Getenv("LLM_MODEL"),
		LLMBaseURL:      os.Getenv("LLM_BASE_URL"),
		GroqAPIKey:      os.Getenv("GROQ_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),

		FeedsFile:        os.Getenv("FEEDS_FILE"),
		FeedMaxRetries:   p.int("FEED_MAX_RETRIES", DefaultFeedMaxRetries),
		FeedRetryDelay:   p.duration("FEED_RETRY_DELAY", DefaultFeedRetryDelay),
		FeedTimeout:      p.duration("FEED_TIMEOUT", DefaultFeedTimeout),
		FetchConcurrency: p.int("FETCH_CONCURRENCY", 1),
		SummaryFullText:  p.bool("SUMMARY_FULL_TEXT", false),

		RawNewsDir:       getEnvOrDefault("RAW_NEWS_DIR", DefaultRawNewsDir),
		ProcessedNewsDir: getEnvOrDefault("PROCESSED_NEWS_DIR", DefaultProcessedNewsDir),
		S3Bucket:         os.Getenv("S3_BUCKET"),
		S3Prefix:         os.Getenv("S3_PREFIX"),
		S3Region:         os.Getenv("S3_REGION"),
		S3Profile:        os.Getenv("S3_PROFILE"),
		S3UsePathStyle:   p.bool("S3_USE_PATH_STYLE", false),

		APIToken:      os.Getenv("API_TOKEN"),
		Port:          p.int("PORT", 8000),
		PublicBaseURL: strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),

		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         p.int("REDIS_DB", 0),
		SummaryCacheTTL: p.duration("SUMMARY_CACHE_TTL", DefaultSummaryCacheTTL),

		KafkaBrokers:     splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaIngestTopic: getEnvOrDefault("KAFKA_INGEST_TOPIC", DefaultKafkaIngestTopic),
		KafkaResultTopic: getEnvOrDefault("KAFKA_RESULT_TOPIC", DefaultKafkaResultTopic),
		KafkaGroupID:     getEnvOrDefault("KAFKA_GROUP_ID", DefaultKafkaGroupID),
		IngestSchedule:   strings.TrimSpace(os.Getenv("INGEST_SCHEDULE")),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "console"),
	}

	if err := p.err(); err != nil {
		return nil, err
	}

	feedInputs := DefaultFeeds
	if raw, ok := os.LookupEnv("RSS_FEEDS"); ok && strings.TrimSpace(raw) != "" {
		feedInputs = splitList(raw)
	}
	cfg.Feeds = ResolveFeeds(feedInputs)

	if cfg.FeedsFile != "" {
		fromFile, err := LoadFeedsFile(cfg.FeedsFile)
		if err != nil {
			return nil, err
		}
		cfg.Feeds = mergeFeeds(cfg.Feeds, fromFile)
	}

	return cfg, nil
}

// Validate checks structural values only. Credentials are trusted as given.
func (c *Config) Validate() error {
	var errs []error

	if c.VectorDimension <= 0 {
		errs = append(errs, fmt.Errorf("VECTOR_DIMENSION must be positive, got %d", c.VectorDimension))
	}
	if c.TopK <= 0 {
		errs = append(errs, fmt.Errorf("TOP_K_RESULTS must be positive, got %d", c.TopK))
	}
	if c.FeedMaxRetries < 1 {
		errs = append(errs, fmt.Errorf("FEED_MAX_RETRIES must be at least 1, got %d", c.FeedMaxRetries))
	}
	if c.FeedRetryDelay < 0 {
		errs = append(errs, fmt.Errorf("FEED_RETRY_DELAY must not be negative"))
	}
	if c.FetchConcurrency < 1 {
		errs = append(errs, fmt.Errorf("FETCH_CONCURRENCY must be at least 1, got %d", c.FetchConcurrency))
	}
	if len(c.Feeds) == 0 {
		errs = append(errs, errors.New("at least one feed must be configured"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}

	switch c.EmbeddingProvider {
	case EmbeddingProviderCohere, EmbeddingProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("unknown EMBEDDING_PROVIDER %q", c.EmbeddingProvider))
	}
	switch c.IndexBackend {
	case IndexBackendChroma, IndexBackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown INDEX_BACKEND %q", c.IndexBackend))
	}
	switch c.LLMProvider {
	case LLMProviderGroq, LLMProviderOpenAI, LLMProviderAnthropic:
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider))
	}

	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

// envParser collects parse failures so Load can report all of them at once
type envParser struct {
	errs []error
}

func (p *envParser) int(key string, defaultVal int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid integer %q", key, val))
		return defaultVal
	}
	return n
}

func (p *envParser) bool(key string, defaultVal bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid boolean %q", key, val))
		return defaultVal
	}
	return b
}

// duration accepts Go duration strings ("5s") or a bare number of seconds
func (p *envParser) duration(key string, defaultVal time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	if secs, err := strconv.ParseFloat(val, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid duration %q", key, val))
		return defaultVal
	}
	return d
}

func (p *envParser) err() error {
	return errors.Join(p.errs...)
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
