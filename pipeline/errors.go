package pipeline

import "errors"

var (
	// ErrMissingInput is returned when a recommendation names neither an article nor a query
	ErrMissingInput = errors.New("either article_id or query parameter is required")
	// ErrArticleNotFound is returned when an article id is not in the index
	ErrArticleNotFound = errors.New("article not found")
	// ErrNoResults is returned when a recommendation search yields nothing
	ErrNoResults = errors.New("no similar articles found")
	// ErrNoArticles is returned when an ingestion run fetched nothing
	ErrNoArticles = errors.New("no articles found")
	// ErrIndexFailed is returned alongside a RunResult when the index write failed
	ErrIndexFailed = errors.New("failed to store articles")
)

// Messages reported in RunResult.Message and summary fallbacks
const (
	MessageSuccess    = "Articles processed and stored successfully"
	MessageNoArticles = "No articles found"
	MessageIndexFail  = "Failed to store articles"

	SummaryFallback = "Unable to generate summary."
)
