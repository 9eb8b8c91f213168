package external

import (
	"context"
	"log/slog"

	"croppredict/internal/predictor"
)

// StubClassifier always predicts class 0. It stands in for the remote
// backend in test mode.
type StubClassifier struct {
	logger *slog.Logger
}

// ProbabilisticStubClassifier also reports probabilities, all mass on
// class 0 over a single class.
type ProbabilisticStubClassifier struct {
	*StubClassifier
}

func NewStubClassifier(logger *slog.Logger, probabilities bool) predictor.Classifier {
	s := &StubClassifier{logger: logger}
	if probabilities {
		return &ProbabilisticStubClassifier{StubClassifier: s}
	}
	return s
}

func (s *StubClassifier) Predict(ctx context.Context, features []float64) (int, error) {
	s.logger.DebugContext(ctx, "stub: Predict called", "features", len(features))
	return 0, nil
}

func (s *ProbabilisticStubClassifier) PredictProba(ctx context.Context, features []float64) ([]float64, error) {
	s.logger.DebugContext(ctx, "stub: PredictProba called", "features", len(features))
	return []float64{1}, nil
}
