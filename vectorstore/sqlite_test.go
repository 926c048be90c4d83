package vectorstore

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"newsradar/types"
)

func article(id string, vec ...float32) *types.Article {
	return &types.Article{
		ID:         id,
		Title:      "title " + id,
		Content:    "content " + id,
		Link:       "https://example.test/" + id,
		Published:  "2024-01-01T00:00:00Z",
		Source:     "Example",
		Categories: []string{"tech"},
		Embedding:  vec,
	}
}

func openTestIndex(t *testing.T, path string, dim int) *SQLiteIndex {
	t.Helper()
	idx, err := OpenSQLiteIndex(path, "news-articles", dim, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := idx.EnsureReady(context.Background()); err != nil {
		t.Fatalf("EnsureReady: %v", err)
	}
	return idx
}

func TestSQLiteIndexUpsertQueryFetch(t *testing.T) {
	ctx := context.Background()
	idx := openTestIndex(t, filepath.Join(t.TempDir(), "index.db"), 3)
	defer idx.Close()

	n, err := idx.Upsert(ctx, []*types.Article{
		article("a", 1, 0, 0),
		article("b", 0, 1, 0),
		article("c", 1, 1, 0),
		{ID: "unembedded", Title: "skip me"},
	})
	if err != nil || n != 3 {
		t.Fatalf("Upsert = %d, %v", n, err)
	}

	matches, err := idx.Query(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 2 || matches[0].ID != "a" || matches[1].ID != "c" {
		t.Fatalf("unexpected ranking: %+v", matches)
	}
	if math.Abs(matches[0].Score-1) > 1e-6 || math.Abs(matches[1].Score-1/math.Sqrt2) > 1e-6 {
		t.Fatalf("unexpected scores: %v %v", matches[0].Score, matches[1].Score)
	}
	if matches[0].Categories[0] != "tech" || matches[0].Link != "https://example.test/a" {
		t.Fatalf("metadata lost: %+v", matches[0])
	}

	got, err := idx.Fetch(ctx, "b")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got.Title != "title b" || got.Score != 1 {
		t.Fatalf("unexpected fetch: %+v", got)
	}

	if _, err := idx.Fetch(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteIndexReplacesOnReupsert(t *testing.T) {
	ctx := context.Background()
	idx := openTestIndex(t, filepath.Join(t.TempDir(), "index.db"), 2)
	defer idx.Close()

	if _, err := idx.Upsert(ctx, []*types.Article{article("a", 1, 0)}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	updated := article("a", 0, 1)
	updated.Title = "new title"
	if _, err := idx.Upsert(ctx, []*types.Article{updated}); err != nil {
		t.Fatalf("re-Upsert: %v", err)
	}

	count, err := idx.Count(ctx)
	if err != nil || count != 1 {
		t.Fatalf("Count = %d, %v", count, err)
	}
	matches, err := idx.Query(ctx, []float32{0, 1}, 1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if matches[0].Title != "new title" || math.Abs(matches[0].Score-1) > 1e-6 {
		t.Fatalf("entry not replaced: %+v", matches[0])
	}
}

func TestSQLiteIndexDimensionChecks(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.db")
	idx := openTestIndex(t, path, 2)

	if _, err := idx.Upsert(ctx, []*types.Article{article("a", 1, 2, 3)}); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected dimension error on upsert, got %v", err)
	}
	if _, err := idx.Query(ctx, []float32{1}, 3); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected dimension error on query, got %v", err)
	}
	if n, err := idx.Upsert(ctx, nil); n != 0 || err != nil {
		t.Fatalf("empty upsert = %d, %v", n, err)
	}
	idx.Close()

	reopened, err := OpenSQLiteIndex(path, "news-articles", 4, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if err := reopened.EnsureReady(ctx); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected stored dimension mismatch, got %v", err)
	}
}

func TestSQLiteIndexDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	idx := openTestIndex(t, filepath.Join(t.TempDir(), "index.db"), 2)
	defer idx.Close()

	if _, err := idx.Upsert(ctx, []*types.Article{article("a", 1, 0), article("b", 0, 1)}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := idx.Delete(ctx, "a"); err != nil {
			t.Fatalf("Delete #%d: %v", i+1, err)
		}
	}
	if _, err := idx.Fetch(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	matches, err := idx.Query(ctx, []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	for _, m := range matches {
		if m.ID == "a" {
			t.Fatalf("deleted entry still returned by query: %+v", matches)
		}
	}
	if len(matches) != 1 || matches[0].ID != "b" {
		t.Fatalf("expected only b to remain, got %+v", matches)
	}
}

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2}, []float32{1, 2}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
	}
	for _, c := range cases {
		if got := CosineSimilarity(c.a, c.b); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("%s: got %v want %v", c.name, got, c.want)
		}
	}
}
