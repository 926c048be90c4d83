// Package app assembles the pipeline and its front ends from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"newsradar/api"
	"newsradar/cache"
	"newsradar/config"
	"newsradar/embeddings"
	"newsradar/insights"
	"newsradar/kafka"
	"newsradar/logging"
	"newsradar/pipeline"
	"newsradar/rssfeeds"
	"newsradar/scheduler"
	"newsradar/state"
	"newsradar/storage"
	"newsradar/vectorstore"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// App owns the pipeline and every resource it opened
type App struct {
	Config   *config.Config
	Pipeline *pipeline.Pipeline

	logger  *zap.Logger
	closers []func() error
}

// New builds the pipeline. Redis, S3 and Kafka are only connected when configured.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	logger = logging.OrNop(logger)
	a := &App{Config: cfg, logger: logger}

	embedder, err := buildEmbedder(cfg, logger)
	if err != nil {
		return nil, err
	}
	completer, err := buildCompleter(cfg)
	if err != nil {
		return nil, err
	}

	index, err := buildIndex(cfg, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, index.Close)

	deps := pipeline.Deps{
		Fetcher: rssfeeds.NewFetcher(rssfeeds.FetcherConfig{
			Feeds:         cfg.Feeds,
			MaxRetries:    cfg.FeedMaxRetries,
			RetryDelay:    cfg.FeedRetryDelay,
			Timeout:       cfg.FeedTimeout,
			Concurrency:   cfg.FetchConcurrency,
			PublicBaseURL: cfg.PublicBaseURL,
		}, logger),
		Embedder: embedder,
		Index:    index,
		Analyzer: insights.NewGenerator(completer, logger),
		Store:    storage.NewFileStore(cfg.RawNewsDir, cfg.ProcessedNewsDir),
		Tracker:  state.NewTracker(),
		Logger:   logger,
	}

	if cfg.SummaryFullText {
		deps.FullText = rssfeeds.NewReadabilityExtractor(&http.Client{Timeout: cfg.FeedTimeout})
	}

	if cfg.S3Bucket != "" {
		mirror, err := storage.NewS3(ctx, storage.S3Config{
			Bucket:       cfg.S3Bucket,
			Prefix:       cfg.S3Prefix,
			Region:       cfg.S3Region,
			Profile:      cfg.S3Profile,
			UsePathStyle: cfg.S3UsePathStyle,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("s3 mirror: %w", err)
		}
		deps.Store = storage.NewMirroredStore(deps.Store, mirror, logger)
	}

	if cfg.RedisAddr != "" {
		summaries, err := cache.NewRedisSummaries(ctx, cache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.SummaryCacheTTL,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("summary cache: %w", err)
		}
		deps.Cache = summaries
		a.closers = append(a.closers, summaries.Close)
	}

	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaResultTopic, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		deps.Notifier = publisher
		a.closers = append(a.closers, publisher.Close)
	}

	a.Pipeline = pipeline.New(deps, pipeline.Options{TopK: cfg.TopK})
	return a, nil
}

func buildEmbedder(cfg *config.Config, logger *zap.Logger) (*embeddings.Client, error) {
	var provider embeddings.Provider
	switch cfg.EmbeddingProvider {
	case config.EmbeddingProviderCohere:
		provider = embeddings.NewCohereProvider(cfg.CohereAPIKey, cfg.EmbeddingModel, "")
	case config.EmbeddingProviderOpenAI:
		provider = embeddings.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.EmbeddingModel, cfg.OpenAIBaseURL, cfg.VectorDimension)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}
	return embeddings.NewClient(provider, cfg.VectorDimension, logger), nil
}

func buildCompleter(cfg *config.Config) (insights.Completer, error) {
	switch cfg.LLMProvider {
	case config.LLMProviderGroq:
		return insights.NewGroqCompleter(cfg.GroqAPIKey, cfg.LLMModel, cfg.LLMBaseURL), nil
	case config.LLMProviderOpenAI:
		return insights.NewOpenAICompleter(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.LLMBaseURL), nil
	case config.LLMProviderAnthropic:
		return insights.NewAnthropicCompleter(cfg.AnthropicAPIKey, cfg.LLMModel, cfg.LLMBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}

func buildIndex(cfg *config.Config, logger *zap.Logger) (vectorstore.Index, error) {
	switch cfg.IndexBackend {
	case config.IndexBackendChroma:
		return vectorstore.NewChromaIndex(vectorstore.ChromaConfig{
			URL:            cfg.ChromaURL,
			Tenant:         cfg.ChromaTenant,
			Database:       cfg.ChromaDatabase,
			CollectionName: cfg.IndexName,
			Token:          cfg.ChromaToken,
			Dimension:      cfg.VectorDimension,
		}, logger), nil
	case config.IndexBackendSQLite:
		return vectorstore.OpenSQLiteIndex(cfg.SQLitePath, cfg.IndexName, cfg.VectorDimension, logger)
	default:
		return nil, fmt.Errorf("unknown index backend %q", cfg.IndexBackend)
	}
}

// Serve runs the HTTP API, plus the scheduler and Kafka consumer when configured,
// until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	if err := a.Pipeline.Ready(ctx); err != nil {
		return fmt.Errorf("prepare index: %w", err)
	}

	if a.Config.IngestSchedule != "" {
		sched, err := scheduler.New(a.Config.IngestSchedule, a.Pipeline, a.logger)
		if err != nil {
			return err
		}
		sched.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			sched.Stop(stopCtx)
		}()
	}

	if len(a.Config.KafkaBrokers) > 0 {
		consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers: a.Config.KafkaBrokers,
			Topic:   a.Config.KafkaIngestTopic,
			GroupID: a.Config.KafkaGroupID,
			Handler: kafka.NewIngestHandler(a.Pipeline, a.logger),
			Logger:  a.logger,
		})
		if err != nil {
			a.logger.Error("kafka consumer unavailable", zap.Error(err))
		} else {
			defer consumer.Close()
			go func() {
				if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
					a.logger.Error("kafka consumer failed to start", zap.Error(err))
				}
			}()
		}
	}

	router := api.NewRouter(a.Pipeline, api.Options{APIToken: a.Config.APIToken, Logger: a.logger})
	srv := api.NewServer(a.Config.Addr(), router)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Close releases every opened resource in reverse order
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
