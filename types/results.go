package types

import (
	"encoding/json"
	"time"
)

// Run statuses reported in RunResult.Status
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Match is an index entry returned by a similarity query or a direct fetch
type Match struct {
	ID         string   `json:"id"`
	Score      float64  `json:"score"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Link       string   `json:"link"`
	Published  string   `json:"published"`
	Source     string   `json:"source"`
	Categories []string `json:"categories"`
}

// EmbeddingText mirrors Article.EmbeddingText for stored entries
func (m *Match) EmbeddingText() string {
	return m.Title + " " + m.Content
}

// AnalysisResult is the structured thematic analysis over a set of articles
type AnalysisResult struct {
	Themes       StringList `json:"themes"`
	Insights     StringList `json:"insights"`
	Implications StringList `json:"implications"`
	RelatedAreas StringList `json:"related_areas"`
}

// EmptyAnalysis is returned when no analysis could be produced
func EmptyAnalysis() *AnalysisResult {
	return &AnalysisResult{
		Themes:       StringList{},
		Insights:     StringList{},
		Implications: StringList{},
		RelatedAreas: StringList{},
	}
}

// Insights is either a structured analysis or, when the model reply could not be
// parsed, the raw reply text.
type Insights struct {
	Analysis *AnalysisResult
	Raw      string
}

// IsStructured reports whether the insights were parsed into an AnalysisResult
func (i Insights) IsStructured() bool {
	return i.Analysis != nil
}

func (i Insights) MarshalJSON() ([]byte, error) {
	if i.Analysis != nil {
		return json.Marshal(i.Analysis)
	}
	return json.Marshal(i.Raw)
}

func (i *Insights) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		i.Analysis = nil
		i.Raw = raw
		return nil
	}
	var analysis AnalysisResult
	if err := json.Unmarshal(data, &analysis); err != nil {
		return err
	}
	i.Analysis = &analysis
	i.Raw = ""
	return nil
}

// RunResult is the outcome of one ingestion run
type RunResult struct {
	RunID             string    `json:"run_id"`
	Status            string    `json:"status"`
	Message           string    `json:"message"`
	RawFilepath       string    `json:"raw_filepath,omitempty"`
	ProcessedFilepath string    `json:"processed_filepath,omitempty"`
	ArticleCount      int       `json:"article_count"`
	EmbeddedCount     int       `json:"embedded_count"`
	IndexedCount      int       `json:"indexed_count"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
}

// Recommendation is the response of a recommendation query
type Recommendation struct {
	Articles []Match  `json:"articles"`
	Insights Insights `json:"insights"`
}

// ArticleDetail is a single stored article with its generated summary
type ArticleDetail struct {
	Article Match  `json:"article"`
	Summary string `json:"summary"`
}
