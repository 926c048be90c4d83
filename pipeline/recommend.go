package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"newsradar/types"
	"newsradar/vectorstore"

	"go.uber.org/zap"
)

// RecommendRequest selects the seed of a recommendation: an indexed article or free text.
// ArticleID wins when both are set.
type RecommendRequest struct {
	ArticleID string
	Query     string
}

// Recommend finds articles similar to the seed and analyzes them
func (p *Pipeline) Recommend(ctx context.Context, req RecommendRequest) (*types.Recommendation, error) {
	articleID := strings.TrimSpace(req.ArticleID)
	query := strings.TrimSpace(req.Query)
	if articleID == "" && query == "" {
		return nil, ErrMissingInput
	}

	seedText := query
	if articleID != "" {
		seed, err := p.fetch(ctx, articleID)
		if err != nil {
			return nil, err
		}
		seedText = seed.EmbeddingText()
	}

	vector, err := p.deps.Embedder.EmbedQuery(ctx, seedText)
	if err != nil {
		p.logger.Error("query embedding failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrNoResults, err)
	}

	matches, err := p.deps.Index.Query(ctx, vector, p.opts.TopK)
	if err != nil {
		p.logger.Error("index query failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrNoResults, err)
	}
	if len(matches) == 0 {
		return nil, ErrNoResults
	}

	insights, err := p.deps.Analyzer.Analyze(ctx, matches)
	if err != nil {
		p.logger.Warn("analysis failed, returning empty insights", zap.Error(err))
		insights = types.Insights{Analysis: types.EmptyAnalysis()}
	}

	return &types.Recommendation{Articles: matches, Insights: insights}, nil
}

// GetArticle returns a stored article with a generated summary. The summary falls
// back to a fixed message when generation fails; the fallback is never cached.
func (p *Pipeline) GetArticle(ctx context.Context, id string) (*types.ArticleDetail, error) {
	article, err := p.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.deps.Cache != nil {
		summary, ok, err := p.deps.Cache.Get(ctx, id)
		if err != nil {
			p.logger.Warn("summary cache read failed", zap.String("id", id), zap.Error(err))
		} else if ok {
			return &types.ArticleDetail{Article: *article, Summary: summary}, nil
		}
	}

	content := article.Content
	if p.deps.FullText != nil && article.Link != "" {
		if text, err := p.deps.FullText.FullText(ctx, article.Link); err != nil {
			p.logger.Debug("full text unavailable, using stored content", zap.String("link", article.Link), zap.Error(err))
		} else {
			content = text
		}
	}

	summary, err := p.deps.Analyzer.Summarize(ctx, article.Title, content)
	if err != nil {
		p.logger.Warn("summary generation failed", zap.String("id", id), zap.Error(err))
		return &types.ArticleDetail{Article: *article, Summary: SummaryFallback}, nil
	}

	if p.deps.Cache != nil {
		if err := p.deps.Cache.Set(ctx, id, summary); err != nil {
			p.logger.Warn("summary cache write failed", zap.String("id", id), zap.Error(err))
		}
	}
	return &types.ArticleDetail{Article: *article, Summary: summary}, nil
}

// DeleteArticle removes an article from the index and evicts its cached summary
func (p *Pipeline) DeleteArticle(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrMissingInput
	}
	if err := p.deps.Index.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if p.deps.Cache != nil {
		if err := p.deps.Cache.Delete(ctx, id); err != nil {
			p.logger.Warn("summary cache eviction failed", zap.String("id", id), zap.Error(err))
		}
	}
	return nil
}

func (p *Pipeline) fetch(ctx context.Context, id string) (*types.Match, error) {
	article, err := p.deps.Index.Fetch(ctx, id)
	if errors.Is(err, vectorstore.ErrNotFound) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", id, err)
	}
	return article, nil
}
