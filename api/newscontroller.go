package api

import (
	"errors"
	"net/http"

	"newsradar/pipeline"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type newsHandler struct {
	svc    Service
	logger *zap.Logger
}

// RegisterNewsRoutes registers ingestion, recommendation and article endpoints.
func RegisterNewsRoutes(r gin.IRoutes, h *newsHandler) {
	r.POST("/fetch-news", h.fetchNews)
	r.GET("/fetch-news", h.fetchNews)
	r.GET("/recommend-news", h.recommendNews)
	r.GET("/article/:id", h.getArticle)
	r.DELETE("/article/:id", h.deleteArticle)
}

// fetchNews runs one ingestion pass synchronously
func (h *newsHandler) fetchNews(c *gin.Context) {
	result, err := h.svc.Process(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, pipeline.ErrNoArticles) && result != nil:
		c.JSON(http.StatusNotFound, result)
	case errors.Is(err, pipeline.ErrIndexFailed) && result != nil:
		c.JSON(http.StatusBadGateway, result)
	default:
		h.logger.Error("ingestion failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *newsHandler) recommendNews(c *gin.Context) {
	req := pipeline.RecommendRequest{
		ArticleID: c.Query("article_id"),
		Query:     c.Query("query"),
	}
	rec, err := h.svc.Recommend(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *newsHandler) getArticle(c *gin.Context) {
	detail, err := h.svc.GetArticle(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *newsHandler) deleteArticle(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.DeleteArticle(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "article_id": id})
}

func (h *newsHandler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrMissingInput):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrArticleNotFound),
		errors.Is(err, pipeline.ErrNoResults),
		errors.Is(err, pipeline.ErrNoArticles):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
