package rssfeeds

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"newsradar/config"
	"newsradar/logging"
	"newsradar/types"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
)

// ErrFeedExhausted is returned when every fetch attempt for a feed failed
var ErrFeedExhausted = errors.New("feed retries exhausted")

var errNoEntries = errors.New("feed returned no entries")

// FetcherConfig controls feed fetching and retry behaviour
type FetcherConfig struct {
	Feeds         []config.FeedSource
	MaxRetries    int
	RetryDelay    time.Duration
	Timeout       time.Duration
	Concurrency   int
	PublicBaseURL string
	UserAgent     string
	HTTPClient    *http.Client
}

// Fetcher pulls and normalizes articles from RSS/Atom feeds
type Fetcher struct {
	cfg    FetcherConfig
	logger *zap.Logger
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewFetcher creates a fetcher, filling unset values with defaults
func NewFetcher(cfg FetcherConfig, logger *zap.Logger) *Fetcher {
	applyFetcherDefaults(&cfg)
	return &Fetcher{
		cfg:    cfg,
		logger: logging.OrNop(logger).Named("rss"),
		now:    time.Now,
		sleep:  sleepContext,
	}
}

func applyFetcherDefaults(cfg *FetcherConfig) {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = config.DefaultFeedMaxRetries
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = config.DefaultFeedRetryDelay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultFeedTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = config.DefaultUserAgent
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
}

// Feeds returns the configured feed sources
func (f *Fetcher) Feeds() []config.FeedSource {
	return f.cfg.Feeds
}

// FetchFeed retrieves one feed, retrying on parse errors and empty results.
// Returns an error wrapping ErrFeedExhausted when every attempt failed.
func (f *Fetcher) FetchFeed(ctx context.Context, src config.FeedSource) ([]*types.Article, error) {
	var lastErr error

	for attempt := 1; attempt <= f.cfg.MaxRetries; attempt++ {
		articles, err := f.fetchOnce(ctx, src)
		if err == nil {
			return articles, nil
		}
		lastErr = err

		f.logger.Warn("feed fetch attempt failed",
			zap.String("feed", src.URL),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", f.cfg.MaxRetries),
			zap.Error(err))

		if ctx.Err() != nil {
			break
		}
		if attempt < f.cfg.MaxRetries {
			if err := f.sleep(ctx, f.cfg.RetryDelay); err != nil {
				break
			}
		}
	}

	return nil, fmt.Errorf("%w: %s: %v", ErrFeedExhausted, src.URL, lastErr)
}

func (f *Fetcher) fetchOnce(ctx context.Context, src config.FeedSource) ([]*types.Article, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	parser := gofeed.NewParser()
	parser.UserAgent = f.cfg.UserAgent
	if f.cfg.HTTPClient != nil {
		parser.Client = f.cfg.HTTPClient
	}

	feed, err := parser.ParseURLWithContext(src.URL, attemptCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	if len(feed.Items) == 0 {
		return nil, errNoEntries
	}

	source := strings.TrimSpace(feed.Title)
	if source == "" {
		source = types.UnknownSource
	}

	articles := make([]*types.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		if strings.TrimSpace(item.Title) == "" {
			f.logger.Debug("skipping entry without title", zap.String("feed", src.URL), zap.String("guid", item.GUID))
			continue
		}
		articles = append(articles, f.toArticle(item, source))
	}
	return articles, nil
}

// toArticle normalizes a feed entry, applying id, link and published fallbacks
func (f *Fetcher) toArticle(item *gofeed.Item, source string) *types.Article {
	published := strings.TrimSpace(item.Published)
	if published == "" {
		published = f.now().UTC().Format(time.RFC3339)
	}

	// Use GUID if available, otherwise the link, otherwise a content hash
	id := strings.TrimSpace(item.GUID)
	if id == "" {
		id = strings.TrimSpace(item.Link)
	}
	if id == "" {
		id = types.GenerateID(source + "|" + item.Title + "|" + published)
	}

	link := strings.TrimSpace(item.Link)
	if link == "" {
		link = f.cfg.PublicBaseURL + "/article/" + url.PathEscape(id)
	}

	categories := make([]string, len(item.Categories))
	copy(categories, item.Categories)

	return &types.Article{
		ID:         id,
		Title:      strings.TrimSpace(item.Title),
		RawContent: item.Description,
		Content:    CleanHTML(item.Description),
		Link:       link,
		Published:  published,
		Source:     source,
		Categories: categories,
	}
}

// FetchAll fetches every configured feed. Exhausted feeds are logged and skipped.
// Results keep configured feed order and the first occurrence of a duplicated id.
func (f *Fetcher) FetchAll(ctx context.Context) []*types.Article {
	perFeed := make([][]*types.Article, len(f.cfg.Feeds))

	if f.cfg.Concurrency <= 1 || len(f.cfg.Feeds) <= 1 {
		for i, src := range f.cfg.Feeds {
			perFeed[i] = f.fetchLogged(ctx, src)
		}
	} else {
		var wg sync.WaitGroup
		jobs := make(chan int, len(f.cfg.Feeds))

		workers := min(f.cfg.Concurrency, len(f.cfg.Feeds))
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					perFeed[i] = f.fetchLogged(ctx, f.cfg.Feeds[i])
				}
			}()
		}

		for i := range f.cfg.Feeds {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	seen := make(map[string]struct{})
	var out []*types.Article
	for _, batch := range perFeed {
		for _, a := range batch {
			if _, dup := seen[a.ID]; dup {
				continue
			}
			seen[a.ID] = struct{}{}
			out = append(out, a)
		}
	}

	f.logger.Info("fetched feeds", zap.Int("feeds", len(f.cfg.Feeds)), zap.Int("articles", len(out)))
	return out
}

func (f *Fetcher) fetchLogged(ctx context.Context, src config.FeedSource) []*types.Article {
	articles, err := f.FetchFeed(ctx, src)
	if err != nil {
		f.logger.Error("skipping feed", zap.String("feed", src.URL), zap.String("name", src.Name), zap.Error(err))
		return nil
	}
	f.logger.Info("fetched feed", zap.String("feed", src.URL), zap.Int("articles", len(articles)))
	return articles
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
