package predictor

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"croppredict/internal/types"
)

// Scaler applies the fitted feature transform.
type Scaler interface {
	Transform(features []float64) ([]float64, error)
}

// Classifier maps a scaled feature vector to a class index.
type Classifier interface {
	Predict(ctx context.Context, features []float64) (int, error)
}

// ProbabilityClassifier is the optional capability of a classifier that can
// report a probability for every class. The dispatcher checks for it at
// runtime and attaches a ranking only when present.
type ProbabilityClassifier interface {
	Classifier
	PredictProba(ctx context.Context, features []float64) ([]float64, error)
}

// LabelDecoder maps a class index to a crop label.
type LabelDecoder interface {
	Decode(index int) (string, error)
}

// CategoryMap maps a crop label to its category.
type CategoryMap interface {
	Lookup(label string) (string, bool)
}

// Services bundles the four pipeline collaborators.
type Services struct {
	Scaler     Scaler
	Classifier Classifier
	Decoder    LabelDecoder
	Categories CategoryMap
}

// Dispatch applies the gates in order (incomplete input, plausibility
// warnings, model readiness) and runs the pipeline only when all pass.
// Gate outcomes are values; a non-nil error means the pipeline itself failed.
func Dispatch(ctx context.Context, r types.SoilReading, modelReady bool, svc Services) (types.Outcome, error) {
	if IsIncomplete(r) {
		return types.MissingFields(), nil
	}
	if warnings := Validate(r); len(warnings) > 0 {
		return types.ValidationWarnings(warnings), nil
	}
	if !modelReady {
		return types.ModelUnavailable(), nil
	}

	pred, err := runPipeline(ctx, r, svc)
	if err != nil {
		return types.Outcome{}, err
	}
	return types.Predicted(pred), nil
}

func runPipeline(ctx context.Context, r types.SoilReading, svc Services) (types.PredictionOutcome, error) {
	scaled, err := svc.Scaler.Transform(r.Features())
	if err != nil {
		return types.PredictionOutcome{}, pipelineError("scaling features", err)
	}

	idx, err := svc.Classifier.Predict(ctx, scaled)
	if err != nil {
		return types.PredictionOutcome{}, pipelineError("classifying", err)
	}

	label, err := svc.Decoder.Decode(idx)
	if err != nil {
		return types.PredictionOutcome{}, pipelineError("decoding label", err)
	}

	category, ok := svc.Categories.Lookup(label)
	if !ok {
		category = types.UnknownCategory
	}

	out := types.PredictionOutcome{Label: label, Category: category}

	if pc, ok := svc.Classifier.(ProbabilityClassifier); ok {
		probs, err := pc.PredictProba(ctx, scaled)
		if err != nil {
			return types.PredictionOutcome{}, pipelineError("computing probabilities", err)
		}
		ranked, err := rankTop(probs, types.MaxRanked, svc.Decoder)
		if err != nil {
			return types.PredictionOutcome{}, pipelineError("decoding ranking", err)
		}
		out.Ranked = ranked
	}

	return out, nil
}

// rankTop returns the n most probable classes in descending order. Equal
// probabilities keep the lower class index first.
func rankTop(probs []float64, n int, dec LabelDecoder) ([]types.RankedLabel, error) {
	order := make([]int, len(probs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return probs[order[a]] > probs[order[b]]
	})
	if len(order) > n {
		order = order[:n]
	}

	ranked := make([]types.RankedLabel, 0, len(order))
	for _, i := range order {
		label, err := dec.Decode(i)
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, types.RankedLabel{Label: label, Probability: probs[i]})
	}
	return ranked, nil
}

// pipelineError keeps an upstream AppError code intact and wraps everything
// else as an internal pipeline failure.
func pipelineError(stage string, err error) error {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return fmt.Errorf("%s: %w", stage, appErr)
	}
	return types.NewAppError(types.ErrCodeInternalPipeline, "prediction pipeline failed", fmt.Errorf("%s: %w", stage, err))
}
