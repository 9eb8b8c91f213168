package artifacts

import (
	"encoding/json"
	"fmt"
)

// ScalerKind identifies the fitted transform.
type ScalerKind string

const (
	// ScalerStandard computes (x - mean) / scale.
	ScalerStandard ScalerKind = "standard"
	// ScalerMinMax computes x*scale + min, matching the fitted min_/scale_
	// attributes of a min-max scaler.
	ScalerMinMax ScalerKind = "minmax"
)

// Scaler is a fitted per-feature affine transform.
type Scaler struct {
	Kind  ScalerKind `json:"kind"`
	Mean  []float64  `json:"mean,omitempty"`
	Min   []float64  `json:"min,omitempty"`
	Scale []float64  `json:"scale"`
}

// ParseScaler decodes and checks a scaler document.
func ParseScaler(data []byte) (*Scaler, error) {
	var s Scaler
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding scaler: %w", err)
	}
	if s.Kind == "" {
		s.Kind = ScalerStandard
	}

	var offsets []float64
	switch s.Kind {
	case ScalerStandard:
		offsets = s.Mean
	case ScalerMinMax:
		offsets = s.Min
	default:
		return nil, fmt.Errorf("unsupported scaler kind %q", s.Kind)
	}

	if len(s.Scale) == 0 {
		return nil, fmt.Errorf("scaler has no scale values")
	}
	if len(offsets) != len(s.Scale) {
		return nil, fmt.Errorf("scaler %s has %d offsets but %d scale values", s.Kind, len(offsets), len(s.Scale))
	}
	if s.Kind == ScalerStandard {
		for i, v := range s.Scale {
			if v == 0 {
				return nil, fmt.Errorf("scaler scale[%d] is zero", i)
			}
		}
	}
	return &s, nil
}

// Width is the number of features the scaler was fitted on.
func (s *Scaler) Width() int {
	return len(s.Scale)
}

// Transform scales features into a new slice.
func (s *Scaler) Transform(features []float64) ([]float64, error) {
	if len(features) != s.Width() {
		return nil, fmt.Errorf("scaler expects %d features, got %d", s.Width(), len(features))
	}

	out := make([]float64, len(features))
	for i, x := range features {
		switch s.Kind {
		case ScalerMinMax:
			out[i] = x*s.Scale[i] + s.Min[i]
		default:
			out[i] = (x - s.Mean[i]) / s.Scale[i]
		}
	}
	return out, nil
}
