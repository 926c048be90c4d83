// Package storage persists raw and processed article batches as JSON artifacts.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"newsradar/types"
)

// StampLayout formats artifact timestamps (UTC)
const StampLayout = "20060102_150405"

// Artifact kinds, also used as file name prefixes and mirror key folders
const (
	KindRaw       = "raw_news"
	KindProcessed = "processed_news"
)

// Stamp returns the artifact timestamp for t
func Stamp(t time.Time) string {
	return t.UTC().Format(StampLayout)
}

// ArtifactWriter persists the two artifacts of an ingestion run and returns their paths
type ArtifactWriter interface {
	WriteRaw(ctx context.Context, stamp string, articles []*types.Article) (string, error)
	WriteProcessed(ctx context.Context, stamp string, articles []types.ProcessedArticle) (string, error)
}

// FileStore writes indented JSON arrays under two local directories
type FileStore struct {
	rawDir       string
	processedDir string
}

// NewFileStore creates a store; directories are created on first write
func NewFileStore(rawDir, processedDir string) *FileStore {
	return &FileStore{rawDir: rawDir, processedDir: processedDir}
}

// WriteRaw writes <rawDir>/raw_news_<stamp>.json including raw_content
func (s *FileStore) WriteRaw(_ context.Context, stamp string, articles []*types.Article) (string, error) {
	if articles == nil {
		articles = []*types.Article{}
	}
	return writeJSON(s.rawDir, KindRaw, stamp, articles)
}

// WriteProcessed writes <processedDir>/processed_news_<stamp>.json without raw_content
func (s *FileStore) WriteProcessed(_ context.Context, stamp string, articles []types.ProcessedArticle) (string, error) {
	if articles == nil {
		articles = []types.ProcessedArticle{}
	}
	return writeJSON(s.processedDir, KindProcessed, stamp, articles)
}

// Path returns the file path for an artifact kind and stamp
func Path(dir, kind, stamp string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.json", kind, stamp))
}

func writeJSON(dir, kind, stamp string, v interface{}) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s directory: %w", kind, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", kind, err)
	}

	path := Path(dir, kind, stamp)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
