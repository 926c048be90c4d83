package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"newsradar/logging"
	"newsradar/types"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS index_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS entries (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	content    TEXT NOT NULL,
	link       TEXT NOT NULL,
	published  TEXT NOT NULL,
	source     TEXT NOT NULL,
	categories TEXT NOT NULL,
	embedding  BLOB NOT NULL
);`

// SQLiteIndex is a local persistent index that ranks by brute-force cosine similarity
type SQLiteIndex struct {
	db        *sql.DB
	name      string
	dimension int
	logger    *zap.Logger
}

// OpenSQLiteIndex opens (creating if needed) the database at path
func OpenSQLiteIndex(path, name string, dimension int, logger *zap.Logger) (*SQLiteIndex, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create index directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite index: %w", err)
	}
	// a single connection keeps :memory: databases coherent and serializes writers
	db.SetMaxOpenConns(1)

	return &SQLiteIndex{
		db:        db,
		name:      name,
		dimension: dimension,
		logger:    logging.OrNop(logger).Named("sqlite-index"),
	}, nil
}

// EnsureReady creates the schema and records or verifies dimension and metric
func (s *SQLiteIndex) EnsureReady(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	stored, err := s.meta(ctx, "dimension")
	switch {
	case errors.Is(err, sql.ErrNoRows):
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()
		for k, v := range map[string]string{
			"name":      s.name,
			"dimension": strconv.Itoa(s.dimension),
			"metric":    MetricCosine,
		} {
			if _, err := tx.ExecContext(ctx, `INSERT INTO index_meta (key, value) VALUES (?, ?)`, k, v); err != nil {
				return fmt.Errorf("failed to record index metadata: %w", err)
			}
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		s.logger.Info("created index", zap.String("name", s.name), zap.Int("dimension", s.dimension))
		return nil
	case err != nil:
		return fmt.Errorf("failed to read index metadata: %w", err)
	}

	dim, err := strconv.Atoi(stored)
	if err != nil {
		return fmt.Errorf("corrupt index dimension %q", stored)
	}
	if dim != s.dimension {
		return fmt.Errorf("%w: index has %d, configured %d", ErrDimensionMismatch, dim, s.dimension)
	}
	return nil
}

func (s *SQLiteIndex) meta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM index_meta WHERE key = ?`, key).Scan(&value)
	return value, err
}

// Upsert inserts or replaces embedded articles in one transaction
func (s *SQLiteIndex) Upsert(ctx context.Context, articles []*types.Article) (int, error) {
	batch, err := embedded(articles, s.dimension)
	if err != nil {
		return 0, err
	}
	if len(batch) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO entries (id, title, content, link, published, source, categories, embedding)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	title = excluded.title,
	content = excluded.content,
	link = excluded.link,
	published = excluded.published,
	source = excluded.source,
	categories = excluded.categories,
	embedding = excluded.embedding`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, a := range batch {
		cats, err := json.Marshal(nonNil(a.Categories))
		if err != nil {
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx, a.ID, a.Title, a.Content, a.Link, a.Published, a.Source, string(cats), encodeVector(a.Embedding)); err != nil {
			return 0, fmt.Errorf("failed to upsert %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit upsert: %w", err)
	}
	return len(batch), nil
}

// Query scans every entry and returns the k most similar
func (s *SQLiteIndex) Query(ctx context.Context, vector []float32, k int) ([]types.Match, error) {
	if err := checkQueryVector(vector, s.dimension); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []types.Match{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, title, content, link, published, source, categories, embedding FROM entries`)
	if err != nil {
		return nil, fmt.Errorf("failed to scan index: %w", err)
	}
	defer rows.Close()

	var matches []types.Match
	for rows.Next() {
		m, vec, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		m.Score = CosineSimilarity(vector, vec)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	if matches == nil {
		matches = []types.Match{}
	}
	return matches, nil
}

// Fetch returns the entry with id, or ErrNotFound
func (s *SQLiteIndex) Fetch(ctx context.Context, id string) (*types.Match, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, content, link, published, source, categories, embedding FROM entries WHERE id = ?`, id)
	m, _, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	m.Score = 1
	return &m, nil
}

// Delete removes the entry with id
func (s *SQLiteIndex) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete %s: %w", id, err)
	}
	return nil
}

// Count returns the number of stored entries
func (s *SQLiteIndex) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (types.Match, []float32, error) {
	var (
		m    types.Match
		cats string
		blob []byte
	)
	if err := row.Scan(&m.ID, &m.Title, &m.Content, &m.Link, &m.Published, &m.Source, &cats, &blob); err != nil {
		return m, nil, err
	}
	m.Categories = []string{}
	if cats != "" {
		if err := json.Unmarshal([]byte(cats), &m.Categories); err != nil {
			return m, nil, fmt.Errorf("corrupt categories for %s: %w", m.ID, err)
		}
	}
	vec, err := decodeVector(blob)
	if err != nil {
		return m, nil, fmt.Errorf("entry %s: %w", m.ID, err)
	}
	return m, vec, nil
}
