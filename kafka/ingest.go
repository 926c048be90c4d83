package kafka

import (
	"context"
	"errors"

	"newsradar/logging"
	"newsradar/pipeline"
	"newsradar/state"
	"newsradar/types"

	"go.uber.org/zap"
)

// IngestRequest is the payload of the ingest trigger topic
type IngestRequest struct {
	RequestedBy string `json:"requested_by"`
	Reason      string `json:"reason"`
}

// Runner starts ingestion runs and reports whether one is in progress
type Runner interface {
	Process(ctx context.Context) (*types.RunResult, error)
	Tracker() *state.Tracker
}

// NewIngestHandler triggers a run per request. Requests arriving during a run are
// acknowledged and dropped; only fatal run errors leave the message unmarked.
func NewIngestHandler(runner Runner, logger *zap.Logger) *TypedMessageHandler[IngestRequest] {
	logger = logging.OrNop(logger).Named("kafka")
	return &TypedMessageHandler[IngestRequest]{
		Process: func(ctx context.Context, req *IngestRequest) error {
			log := logger.With(zap.String("requested_by", req.RequestedBy), zap.String("reason", req.Reason))
			if runner.Tracker().Busy() {
				log.Info("ingest request skipped: run in progress")
				return nil
			}

			result, err := runner.Process(ctx)
			switch {
			case err == nil:
				log.Info("ingest request completed", zap.String("run_id", result.RunID))
				return nil
			case errors.Is(err, pipeline.ErrNoArticles), errors.Is(err, pipeline.ErrIndexFailed):
				log.Warn("ingest request finished with errors", zap.Error(err))
				return nil
			default:
				return err
			}
		},
		AlwaysMark: true,
		Logger:     logger,
	}
}
