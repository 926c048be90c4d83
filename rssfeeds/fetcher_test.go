package rssfeeds

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"newsradar/config"
	"newsradar/types"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Sample Tech</title>
  <link>https://sample.test</link>
  <description>test feed</description>
  <item>
    <title>First story</title>
    <link>https://sample.test/first</link>
    <guid>guid-1</guid>
    <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
    <description><![CDATA[<p>Hello <b>world</b></p><script>alert(1)</script>]]></description>
    <category>AI</category>
    <category>Chips</category>
  </item>
  <item>
    <title>Link only</title>
    <link>https://sample.test/second</link>
    <description>plain</description>
  </item>
  <item>
    <title>Nothing but a title</title>
  </item>
  <item>
    <description>untitled entry</description>
  </item>
</channel>
</rss>`

const emptyFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Empty</title></channel></rss>`

const untitledChannelFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
  <item><title>Dup</title><guid>guid-1</guid><description>again</description></item>
  <item><title>Other</title><guid>guid-9</guid></item>
</channel></rss>`

func newTestFetcher(feeds []config.FeedSource, concurrency int) *Fetcher {
	f := NewFetcher(FetcherConfig{
		Feeds:         feeds,
		MaxRetries:    3,
		RetryDelay:    time.Millisecond,
		Timeout:       2 * time.Second,
		Concurrency:   concurrency,
		PublicBaseURL: "https://radar.test/",
	}, nil)
	f.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("X", 3600)) }
	return f
}

func serveFeed(body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(body))
	}))
}

func TestFetchFeedNormalizesEntries(t *testing.T) {
	srv := serveFeed(sampleFeed)
	defer srv.Close()

	f := newTestFetcher(nil, 1)
	articles, err := f.FetchFeed(context.Background(), config.FeedSource{Name: "sample", URL: srv.URL})
	if err != nil {
		t.Fatalf("FetchFeed: %v", err)
	}
	if len(articles) != 3 {
		t.Fatalf("expected 3 titled articles, got %d", len(articles))
	}

	first := articles[0]
	if first.ID != "guid-1" || first.Source != "Sample Tech" {
		t.Fatalf("unexpected first article: %+v", first)
	}
	if first.Content != "Hello world" {
		t.Fatalf("content = %q; want cleaned text", first.Content)
	}
	if !strings.Contains(first.RawContent, "<b>world</b>") {
		t.Fatalf("raw content should keep markup, got %q", first.RawContent)
	}
	if first.Published != "Mon, 02 Jan 2006 15:04:05 GMT" {
		t.Fatalf("published should keep the feed string, got %q", first.Published)
	}
	if len(first.Categories) != 2 || first.Categories[0] != "AI" {
		t.Fatalf("categories = %v", first.Categories)
	}

	second := articles[1]
	if second.ID != "https://sample.test/second" {
		t.Fatalf("id should fall back to link, got %q", second.ID)
	}
	if second.Categories == nil {
		t.Fatal("categories must never be nil")
	}

	third := articles[2]
	wantPublished := "2024-05-01T11:00:00Z"
	if third.Published != wantPublished {
		t.Fatalf("published fallback = %q; want %q", third.Published, wantPublished)
	}
	wantID := types.GenerateID("Sample Tech|Nothing but a title|" + wantPublished)
	if third.ID != wantID {
		t.Fatalf("id fallback = %q; want %q", third.ID, wantID)
	}
	if third.Link != "https://radar.test/article/"+wantID {
		t.Fatalf("link fallback = %q", third.Link)
	}
	if third.RawContent != "" || third.Content != "" {
		t.Fatalf("missing description should give empty content, got %q / %q", third.RawContent, third.Content)
	}
}

func TestFetchFeedRetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			_, _ = w.Write([]byte(emptyFeed))
			return
		}
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	f := newTestFetcher(nil, 1)
	var sleeps int
	f.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps++
		return nil
	}

	articles, err := f.FetchFeed(context.Background(), config.FeedSource{URL: srv.URL})
	if err != nil {
		t.Fatalf("FetchFeed: %v", err)
	}
	if len(articles) == 0 {
		t.Fatal("expected articles on the third attempt")
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
	if sleeps != 2 {
		t.Fatalf("expected 2 waits between attempts, got %d", sleeps)
	}
}

func TestFetchFeedExhausted(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte("this is not xml"))
	}))
	defer srv.Close()

	f := newTestFetcher(nil, 1)
	var sleeps int
	f.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps++
		return nil
	}

	_, err := f.FetchFeed(context.Background(), config.FeedSource{URL: srv.URL})
	if !errors.Is(err, ErrFeedExhausted) {
		t.Fatalf("expected ErrFeedExhausted, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
	if sleeps != 2 {
		t.Fatalf("no wait expected after the last attempt, got %d waits", sleeps)
	}
}

func TestFetchFeedStopsOnCancel(t *testing.T) {
	srv := serveFeed(emptyFeed)
	defer srv.Close()

	f := newTestFetcher(nil, 1)
	ctx, cancel := context.WithCancel(context.Background())
	f.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := f.FetchFeed(ctx, config.FeedSource{URL: srv.URL})
	if !errors.Is(err, ErrFeedExhausted) {
		t.Fatalf("expected ErrFeedExhausted after cancel, got %v", err)
	}
}

func TestFetchAllSkipsFailedFeedsAndDedupes(t *testing.T) {
	good := serveFeed(sampleFeed)
	defer good.Close()
	bad := serveFeed(emptyFeed)
	defer bad.Close()
	dup := serveFeed(untitledChannelFeed)
	defer dup.Close()

	feeds := []config.FeedSource{
		{Name: "good", URL: good.URL},
		{Name: "bad", URL: bad.URL},
		{Name: "dup", URL: dup.URL},
	}

	for _, concurrency := range []int{1, 3} {
		f := newTestFetcher(feeds, concurrency)
		f.sleep = func(context.Context, time.Duration) error { return nil }

		articles := f.FetchAll(context.Background())
		if len(articles) != 4 {
			t.Fatalf("concurrency %d: expected 4 unique articles, got %d", concurrency, len(articles))
		}
		if articles[0].ID != "guid-1" || articles[0].Title != "First story" {
			t.Fatalf("concurrency %d: first occurrence should win, got %+v", concurrency, articles[0])
		}
		last := articles[len(articles)-1]
		if last.ID != "guid-9" || last.Source != types.UnknownSource {
			t.Fatalf("concurrency %d: unexpected last article %+v", concurrency, last)
		}
	}
}
