package predictor

import (
	"context"
	"log/slog"
	"time"

	"croppredict/internal/types"
)

// OutcomeRecorder receives one observation per dispatched submission.
type OutcomeRecorder interface {
	RecordOutcome(kind types.OutcomeKind, duration time.Duration)
}

// Service binds the loaded pipeline and its readiness flag so callers only
// hand over a reading.
type Service struct {
	services Services
	ready    bool
	logger   *slog.Logger
	recorder OutcomeRecorder
}

// NewService creates a Service. ready is false when the artifacts failed to
// load; every complete and plausible submission then resolves to
// model_unavailable. recorder may be nil.
func NewService(svc Services, ready bool, logger *slog.Logger, recorder OutcomeRecorder) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		services: svc,
		ready:    ready,
		logger:   logger,
		recorder: recorder,
	}
}

// Ready reports whether the pipeline artifacts are loaded.
func (s *Service) Ready() bool {
	return s.ready
}

// Predict dispatches the reading and logs the resulting outcome kind.
func (s *Service) Predict(ctx context.Context, r types.SoilReading) (types.Outcome, error) {
	start := time.Now()
	log := types.LoggerFromContext(ctx, s.logger)

	out, err := Dispatch(ctx, r, s.ready, s.services)
	if err != nil {
		log.Error("prediction pipeline failed", "error", err)
		s.record(types.OutcomePipelineFailure, start)
		return out, err
	}

	switch out.Kind {
	case types.OutcomePrediction:
		log.Info("prediction completed",
			"label", out.Prediction.Label,
			"category", out.Prediction.Category,
			"ranked", len(out.Prediction.Ranked),
		)
	case types.OutcomeValidationWarnings:
		log.Info("submission rejected by plausibility checks", "warnings", len(out.Warnings))
	default:
		log.Info("submission not dispatched", "outcome", string(out.Kind))
	}

	s.record(out.Kind, start)
	return out, nil
}

func (s *Service) record(kind types.OutcomeKind, start time.Time) {
	if s.recorder != nil {
		s.recorder.RecordOutcome(kind, time.Since(start))
	}
}
