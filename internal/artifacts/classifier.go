package artifacts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
)

// Model is a locally evaluated classifier with probability output.
type Model interface {
	Predict(ctx context.Context, features []float64) (int, error)
	PredictProba(ctx context.Context, features []float64) ([]float64, error)
	NumClasses() int
	NumFeatures() int
}

// ParseClassifier detects the model format and decodes it. A non-JSON file
// is a LightGBM text model; a JSON document with a "tree_info" member is a
// LightGBM dump; anything else must be a linear model with "coef" and
// "intercept".
func ParseClassifier(data []byte) (Model, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ParseBoostedTrees(data)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("decoding classifier: %w", err)
	}
	if _, ok := doc["tree_info"]; ok {
		return ParseBoostedTrees(data)
	}
	return ParseLinearModel(data)
}

// LinearModel is a multinomial logistic regression.
type LinearModel struct {
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
}

// ParseLinearModel decodes and checks a linear model document.
func ParseLinearModel(data []byte) (*LinearModel, error) {
	var m LinearModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding linear model: %w", err)
	}
	if len(m.Coef) < 2 {
		return nil, fmt.Errorf("linear model needs at least 2 classes, got %d", len(m.Coef))
	}
	if len(m.Intercept) != len(m.Coef) {
		return nil, fmt.Errorf("linear model has %d coefficient rows but %d intercepts", len(m.Coef), len(m.Intercept))
	}
	width := len(m.Coef[0])
	for i, row := range m.Coef {
		if len(row) != width {
			return nil, fmt.Errorf("coefficient row %d has %d values, want %d", i, len(row), width)
		}
	}
	return &m, nil
}

func (m *LinearModel) NumClasses() int  { return len(m.Coef) }
func (m *LinearModel) NumFeatures() int { return len(m.Coef[0]) }

// Predict returns the class with the highest score.
func (m *LinearModel) Predict(ctx context.Context, features []float64) (int, error) {
	scores, err := m.scores(features)
	if err != nil {
		return 0, err
	}
	return argmax(scores), nil
}

// PredictProba returns softmax probabilities for every class.
func (m *LinearModel) PredictProba(ctx context.Context, features []float64) ([]float64, error) {
	scores, err := m.scores(features)
	if err != nil {
		return nil, err
	}
	return softmax(scores), nil
}

func (m *LinearModel) scores(features []float64) ([]float64, error) {
	if len(features) != m.NumFeatures() {
		return nil, fmt.Errorf("linear model expects %d features, got %d", m.NumFeatures(), len(features))
	}
	out := make([]float64, len(m.Coef))
	for c, row := range m.Coef {
		s := m.Intercept[c]
		for i, w := range row {
			s += w * features[i]
		}
		out[c] = s
	}
	return out, nil
}

// argmax returns the index of the largest value; the first one wins ties.
func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

func softmax(scores []float64) []float64 {
	maxScore := math.Inf(-1)
	for _, s := range scores {
		maxScore = math.Max(maxScore, s)
	}
	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		out[i] = math.Exp(s - maxScore)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
