package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sony/gobreaker/v2"

	"croppredict/internal/predictor"
	"croppredict/internal/types"
)

// maxErrorBody caps how much of an error response is kept for logs.
const maxErrorBody = 4 << 10

// RemoteClassifierConfig configures a RemoteClassifier.
type RemoteClassifierConfig struct {
	Endpoint string
	APIKey   types.SecretString
	// Probabilities enables /predict_proba. Without it the classifier does
	// not satisfy predictor.ProbabilityClassifier.
	Probabilities bool
	Logger        *slog.Logger
}

type featuresRequest struct {
	Features []float64 `json:"features"`
}

type predictResponse struct {
	ClassIndex *int `json:"class_index"`
}

type probaResponse struct {
	Probabilities []float64 `json:"probabilities"`
}

// RemoteClassifier calls an HTTP inference backend with already scaled
// features:
//
//	POST {endpoint}/predict        {"features":[...]} -> {"class_index": 3}
//	POST {endpoint}/predict_proba  {"features":[...]} -> {"probabilities":[...]}
type RemoteClassifier struct {
	base     *BaseClient
	endpoint string
	apiKey   types.SecretString
	logger   *slog.Logger
}

// ProbabilisticRemoteClassifier adds PredictProba to RemoteClassifier.
type ProbabilisticRemoteClassifier struct {
	*RemoteClassifier
}

var (
	_ predictor.Classifier            = (*RemoteClassifier)(nil)
	_ predictor.ProbabilityClassifier = (*ProbabilisticRemoteClassifier)(nil)
)

// NewRemoteClassifier builds the classifier on base. The concrete type
// depends on cfg.Probabilities.
func NewRemoteClassifier(base *BaseClient, cfg RemoteClassifierConfig) predictor.Classifier {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rc := &RemoteClassifier{
		base:     base,
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		logger:   logger,
	}
	if cfg.Probabilities {
		return &ProbabilisticRemoteClassifier{RemoteClassifier: rc}
	}
	return rc
}

// Check reports an error while the circuit breaker is open, so the health
// endpoint shows a failing backend without calling it.
func (c *RemoteClassifier) Check(context.Context) error {
	if c.base.BreakerState() == gobreaker.StateOpen {
		return errors.New("inference circuit breaker is open")
	}
	return nil
}

// Predict returns the backend's class index.
func (c *RemoteClassifier) Predict(ctx context.Context, features []float64) (int, error) {
	var out predictResponse
	if err := c.post(ctx, "/predict", features, &out); err != nil {
		return 0, err
	}
	if out.ClassIndex == nil {
		return 0, types.NewAppError(types.ErrCodeUpstreamInference, "inference backend returned no class_index", nil)
	}
	return *out.ClassIndex, nil
}

// PredictProba returns the backend's per-class probabilities.
func (c *ProbabilisticRemoteClassifier) PredictProba(ctx context.Context, features []float64) ([]float64, error) {
	var out probaResponse
	if err := c.post(ctx, "/predict_proba", features, &out); err != nil {
		return nil, err
	}
	if len(out.Probabilities) == 0 {
		return nil, types.NewAppError(types.ErrCodeUpstreamInference, "inference backend returned no probabilities", nil)
	}
	return out.Probabilities, nil
}

func (c *RemoteClassifier) post(ctx context.Context, path string, features []float64, dst any) error {
	body, err := json.Marshal(featuresRequest{Features: features})
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to encode inference request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build inference request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey.IsSet() {
		req.Header.Set("Authorization", "Bearer "+c.apiKey.Unmask())
	}

	resp, err := c.base.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "inference call failed", "path", path, "error", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.WarnContext(ctx, "inference backend rejected request",
			"path", path,
			"status", resp.StatusCode,
			"body", string(snippet),
		)
		return types.NewAppError(types.ErrCodeUpstreamInference,
			fmt.Sprintf("inference backend returned %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return types.NewAppError(types.ErrCodeUpstreamInference, "failed to decode inference response", err)
	}
	return nil
}
