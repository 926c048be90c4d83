// Package pipeline runs ingestion (fetch, clean, embed, persist, index) and answers
// recommendation and article lookups against the index.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"newsradar/cache"
	"newsradar/logging"
	"newsradar/state"
	"newsradar/storage"
	"newsradar/types"
	"newsradar/vectorstore"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Fetcher returns cleaned articles from all configured feeds
type Fetcher interface {
	FetchAll(ctx context.Context) []*types.Article
}

// Embedder attaches document vectors and embeds search queries
type Embedder interface {
	EmbedArticles(ctx context.Context, articles []*types.Article) (int, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Analyzer produces insights and summaries with a language model
type Analyzer interface {
	Analyze(ctx context.Context, matches []types.Match) (types.Insights, error)
	Summarize(ctx context.Context, title, content string) (string, error)
}

// FullTextExtractor downloads the readable text behind an article link
type FullTextExtractor interface {
	FullText(ctx context.Context, link string) (string, error)
}

// Notifier receives the result of every ingestion run
type Notifier interface {
	Notify(ctx context.Context, result *types.RunResult) error
}

// Deps are the collaborators of a Pipeline. Cache, FullText, Tracker and Notifier are optional.
type Deps struct {
	Fetcher  Fetcher
	Embedder Embedder
	Index    vectorstore.Index
	Analyzer Analyzer
	Store    storage.ArtifactWriter
	Cache    cache.SummaryCache
	FullText FullTextExtractor
	Tracker  *state.Tracker
	Notifier Notifier
	Logger   *zap.Logger
}

// Options tune pipeline behaviour
type Options struct {
	// TopK is the number of neighbours returned by Recommend
	TopK int
}

// Pipeline is the orchestrator shared by the HTTP, CLI, scheduler and Kafka front ends
type Pipeline struct {
	deps    Deps
	opts    Options
	logger  *zap.Logger
	tracker *state.Tracker

	now   func() time.Time
	newID func() string
}

// New creates a pipeline from explicit dependencies
func New(deps Deps, opts Options) *Pipeline {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	tracker := deps.Tracker
	if tracker == nil {
		tracker = state.NewTracker()
	}
	return &Pipeline{
		deps:    deps,
		opts:    opts,
		logger:  logging.OrNop(deps.Logger).Named("pipeline"),
		tracker: tracker,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Tracker exposes the run tracker for status reporting
func (p *Pipeline) Tracker() *state.Tracker {
	return p.tracker
}

// Ready ensures the vector index exists
func (p *Pipeline) Ready(ctx context.Context) error {
	return p.deps.Index.EnsureReady(ctx)
}

// IndexCount returns the number of stored entries
func (p *Pipeline) IndexCount(ctx context.Context) (int, error) {
	return p.deps.Index.Count(ctx)
}

// Process runs one ingestion pass. The returned RunResult is non-nil whenever the
// run got past fetching; ErrNoArticles and ErrIndexFailed accompany a result.
func (p *Pipeline) Process(ctx context.Context) (*types.RunResult, error) {
	started := p.now().UTC()
	result := &types.RunResult{
		RunID:     p.newID(),
		StartedAt: started,
	}
	log := p.logger.With(zap.String("run_id", result.RunID))
	p.tracker.Start(result.RunID)

	// FETCHING
	articles := p.deps.Fetcher.FetchAll(ctx)
	result.ArticleCount = len(articles)
	if len(articles) == 0 {
		result.Status = types.StatusError
		result.Message = MessageNoArticles
		p.finish(ctx, result)
		log.Warn("no articles fetched")
		return result, ErrNoArticles
	}
	log.Info("fetched articles", zap.Int("count", len(articles)))

	// RAW_PERSIST
	p.tracker.SetState(state.StateRawPersist)
	stamp := storage.Stamp(started)
	rawPath, err := p.deps.Store.WriteRaw(ctx, stamp, articles)
	if err != nil {
		return nil, p.fail(fmt.Errorf("save raw articles: %w", err))
	}
	result.RawFilepath = rawPath

	// EMBEDDING
	p.tracker.SetState(state.StateEmbedding)
	embedded, err := p.deps.Embedder.EmbedArticles(ctx, articles)
	if err != nil {
		log.Error("embedding failed, continuing without vectors", zap.Error(err))
		p.tracker.AddLog(fmt.Sprintf("Embedding failed: %v", err))
		embedded = 0
	}
	result.EmbeddedCount = embedded

	// PROCESSED_PERSIST
	p.tracker.SetState(state.StateProcessedPersist)
	processedPath, err := p.deps.Store.WriteProcessed(ctx, stamp, types.ProcessedArticles(articles))
	if err != nil {
		return nil, p.fail(fmt.Errorf("save processed articles: %w", err))
	}
	result.ProcessedFilepath = processedPath

	// INDEXING
	p.tracker.SetState(state.StateIndexing)
	indexed, err := p.deps.Index.Upsert(ctx, articles)
	if err != nil {
		log.Error("index upsert failed", zap.Error(err))
		result.Status = types.StatusError
		result.Message = MessageIndexFail
		p.finish(ctx, result)
		return result, fmt.Errorf("%w: %v", ErrIndexFailed, err)
	}
	result.IndexedCount = indexed
	if indexed == 0 {
		log.Warn("no articles carried embeddings; nothing was indexed")
	}

	result.Status = types.StatusSuccess
	result.Message = MessageSuccess
	p.finish(ctx, result)
	log.Info("run complete",
		zap.Int("articles", result.ArticleCount),
		zap.Int("embedded", result.EmbeddedCount),
		zap.Int("indexed", result.IndexedCount))
	return result, nil
}

func (p *Pipeline) finish(ctx context.Context, result *types.RunResult) {
	result.FinishedAt = p.now().UTC()
	p.tracker.Finish(result)

	if p.deps.Notifier == nil {
		return
	}
	if err := p.deps.Notifier.Notify(ctx, result); err != nil {
		p.logger.Warn("failed to publish run result", zap.String("run_id", result.RunID), zap.Error(err))
	}
}

func (p *Pipeline) fail(err error) error {
	p.logger.Error("run failed", zap.Error(err))
	p.tracker.Fail(err)
	return err
}
