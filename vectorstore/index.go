// Package vectorstore persists article embeddings and answers nearest-neighbour queries.
package vectorstore

import (
	"context"
	"errors"
	"fmt"

	"newsradar/types"
)

var (
	// ErrNotFound is returned by Fetch when no entry has the requested id
	ErrNotFound = errors.New("entry not found")
	// ErrDimensionMismatch is returned when a vector does not match the index dimension
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// MetricCosine is the only supported distance metric
const MetricCosine = "cosine"

// Index is a persistent vector index keyed by article id
type Index interface {
	// EnsureReady creates the backing collection or table if it does not exist
	EnsureReady(ctx context.Context) error
	// Upsert inserts or replaces articles that carry an embedding and returns how many were written
	Upsert(ctx context.Context, articles []*types.Article) (int, error)
	// Query returns up to k entries ordered by descending cosine similarity
	Query(ctx context.Context, vector []float32, k int) ([]types.Match, error)
	// Fetch returns a single entry by id with score 1
	Fetch(ctx context.Context, id string) (*types.Match, error)
	// Delete removes an entry; deleting a missing id is not an error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	Close() error
}

// embedded filters out articles without a vector and checks dimensions of the rest
func embedded(articles []*types.Article, dimension int) ([]*types.Article, error) {
	out := make([]*types.Article, 0, len(articles))
	for _, a := range articles {
		if !a.HasEmbedding() {
			continue
		}
		if len(a.Embedding) != dimension {
			return nil, fmt.Errorf("%w: article %s has %d, index has %d", ErrDimensionMismatch, a.ID, len(a.Embedding), dimension)
		}
		out = append(out, a)
	}
	return out, nil
}

func checkQueryVector(vector []float32, dimension int) error {
	if len(vector) != dimension {
		return fmt.Errorf("%w: query has %d, index has %d", ErrDimensionMismatch, len(vector), dimension)
	}
	return nil
}

func nonNil(categories []string) []string {
	if categories == nil {
		return []string{}
	}
	return categories
}
