package artifacts

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitryikh/leaves"
)

// BoostedTrees is a multiclass LightGBM ensemble. Both the native text model
// written by save_model and the JSON document written by dump_model are
// accepted. Probabilities come from the model's own softmax transform.
type BoostedTrees struct {
	ensemble *leaves.Ensemble
}

// treeHeader holds the model fields checked before the trees are built.
type treeHeader struct {
	Objective     string `json:"objective"`
	NumClass      int    `json:"num_class"`
	AverageOutput bool   `json:"average_output"`
}

// ParseBoostedTrees decodes a LightGBM model. Only the softmax multiclass
// objective is accepted: one-vs-all models produce independent sigmoids and
// averaged (random forest) models need a different score reduction.
func ParseBoostedTrees(data []byte) (*BoostedTrees, error) {
	trimmed := bytes.TrimSpace(data)
	isJSON := len(trimmed) > 0 && trimmed[0] == '{'

	var (
		h   treeHeader
		err error
	)
	if isJSON {
		err = json.Unmarshal(trimmed, &h)
	} else {
		h, err = readTextHeader(trimmed)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding tree model header: %w", err)
	}
	if err := h.check(); err != nil {
		return nil, err
	}

	var e *leaves.Ensemble
	if isJSON {
		e, err = leaves.LGEnsembleFromJSON(bytes.NewReader(trimmed), true)
	} else {
		e, err = leaves.LGEnsembleFromReader(bufio.NewReader(bytes.NewReader(trimmed)), true)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding tree model: %w", err)
	}
	if e.NOutputGroups() != h.NumClass {
		return nil, fmt.Errorf("tree model reports %d outputs for %d classes", e.NOutputGroups(), h.NumClass)
	}
	return &BoostedTrees{ensemble: e}, nil
}

func (h treeHeader) check() error {
	name, _, _ := strings.Cut(strings.TrimSpace(h.Objective), " ")
	if name != "multiclass" {
		return fmt.Errorf("unsupported objective %q (want multiclass)", h.Objective)
	}
	if h.AverageOutput {
		return fmt.Errorf("averaged (random forest) tree models are not supported")
	}
	if h.NumClass < 2 {
		return fmt.Errorf("tree model needs at least 2 classes, got %d", h.NumClass)
	}
	return nil
}

// readTextHeader reads the key=value block that precedes the first tree of a
// text model. average_output appears as a bare key.
func readTextHeader(data []byte) (treeHeader, error) {
	var h treeHeader
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64<<10), 16<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "Tree=") {
			break
		}
		key, value, _ := strings.Cut(line, "=")
		switch key {
		case "objective":
			h.Objective = value
		case "num_class":
			if _, err := fmt.Sscanf(value, "%d", &h.NumClass); err != nil {
				return h, fmt.Errorf("num_class %q: %w", value, err)
			}
		case "average_output":
			h.AverageOutput = true
		}
	}
	return h, sc.Err()
}

func (m *BoostedTrees) NumClasses() int  { return m.ensemble.NOutputGroups() }
func (m *BoostedTrees) NumFeatures() int { return m.ensemble.NFeatures() }

// Predict returns the most probable class.
func (m *BoostedTrees) Predict(ctx context.Context, features []float64) (int, error) {
	p, err := m.PredictProba(ctx, features)
	if err != nil {
		return 0, err
	}
	return argmax(p), nil
}

// PredictProba returns the per-class probabilities of the full ensemble.
func (m *BoostedTrees) PredictProba(ctx context.Context, features []float64) ([]float64, error) {
	if len(features) != m.NumFeatures() {
		return nil, fmt.Errorf("tree model expects %d features, got %d", m.NumFeatures(), len(features))
	}
	out := make([]float64, m.NumClasses())
	if err := m.ensemble.Predict(features, 0, out); err != nil {
		return nil, fmt.Errorf("evaluating tree model: %w", err)
	}
	return out, nil
}
