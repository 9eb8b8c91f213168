package handlers

import (
	"context"
	"io"
	"log/slog"

	"croppredict/internal/core"
	"croppredict/internal/types"
)

// mockPredictionService records the readings it receives.
type mockPredictionService struct {
	outcome types.Outcome
	err     error
	ready   bool
	calls   []types.SoilReading
}

func (m *mockPredictionService) Predict(_ context.Context, r types.SoilReading) (types.Outcome, error) {
	m.calls = append(m.calls, r)
	return m.outcome, m.err
}

func (m *mockPredictionService) Ready() bool { return m.ready }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testValidator() *core.Validator {
	return core.NewValidator(testLogger())
}

func riceOutcome() types.Outcome {
	return types.Predicted(types.PredictionOutcome{
		Label:    "rice",
		Category: "cereal",
		Ranked: []types.RankedLabel{
			{Label: "rice", Probability: 0.9},
			{Label: "jute", Probability: 0.07},
			{Label: "maize", Probability: 0.03},
		},
	})
}
