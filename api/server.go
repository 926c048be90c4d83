package api

import (
	"context"
	"net/http"

	"newsradar/logging"
	"newsradar/pipeline"
	"newsradar/state"
	"newsradar/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Service is the pipeline surface the HTTP handlers depend on
type Service interface {
	Process(ctx context.Context) (*types.RunResult, error)
	Recommend(ctx context.Context, req pipeline.RecommendRequest) (*types.Recommendation, error)
	GetArticle(ctx context.Context, id string) (*types.ArticleDetail, error)
	DeleteArticle(ctx context.Context, id string) error
	IndexCount(ctx context.Context) (int, error)
	Tracker() *state.Tracker
}

// Options configures the router
type Options struct {
	// APIToken guards every route except health; empty disables the check
	APIToken string
	Logger   *zap.Logger
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(svc Service, opts Options) *gin.Engine {
	logger := logging.OrNop(opts.Logger).Named("api")

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	RegisterHealthRoutes(r)

	if opts.APIToken == "" {
		logger.Warn("API_TOKEN is empty; endpoints are unauthenticated")
	}
	protected := r.Group("/", tokenAuth(opts.APIToken))

	h := &newsHandler{svc: svc, logger: logger}
	RegisterNewsRoutes(protected, h)
	RegisterStatusRoutes(protected, h)
	return r
}

// NewServer wraps the router in an http.Server bound to addr
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: handler,
	}
}
