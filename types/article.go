package types

import (
	"crypto/sha256"
	"encoding/hex"
)

// UnknownSource is used when a feed does not advertise a title
const UnknownSource = "Unknown"

// Article represents a single feed entry moving through the ingestion pipeline
type Article struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	RawContent string    `json:"raw_content"`
	Content    string    `json:"content"`
	Link       string    `json:"link"`
	Published  string    `json:"published"`
	Source     string    `json:"source"`
	Categories []string  `json:"categories"`
	Embedding  []float32 `json:"embedding,omitempty"`
}

// ProcessedArticle is the processed-artifact view of an Article: identical except
// that the feed markup is never carried.
type ProcessedArticle struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Link       string    `json:"link"`
	Published  string    `json:"published"`
	Source     string    `json:"source"`
	Categories []string  `json:"categories"`
	Embedding  []float32 `json:"embedding,omitempty"`
}

// HasEmbedding reports whether the article carries a vector
func (a *Article) HasEmbedding() bool {
	return a != nil && len(a.Embedding) > 0
}

// EmbeddingText is the text sent to the embedding service for this article
func (a *Article) EmbeddingText() string {
	return a.Title + " " + a.Content
}

// Processed strips the raw markup from the article
func (a *Article) Processed() ProcessedArticle {
	return ProcessedArticle{
		ID:         a.ID,
		Title:      a.Title,
		Content:    a.Content,
		Link:       a.Link,
		Published:  a.Published,
		Source:     a.Source,
		Categories: a.Categories,
		Embedding:  a.Embedding,
	}
}

// ProcessedArticles converts a batch for processed storage
func ProcessedArticles(articles []*Article) []ProcessedArticle {
	out := make([]ProcessedArticle, 0, len(articles))
	for _, a := range articles {
		if a == nil {
			continue
		}
		out = append(out, a.Processed())
	}
	return out
}

// GenerateID creates a short, stable ID by hashing the provided input
func GenerateID(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}
