package external

import (
	"log/slog"
	"net/http"

	"croppredict/internal/config"
	"croppredict/internal/predictor"
)

// NewClassifier returns the classifier selected by configuration, or nil
// when inference runs locally from the on-disk model. In test mode a remote
// configuration is served by StubClassifier so the process boots without a
// backend.
func NewClassifier(cfg *config.Config, logger *slog.Logger) predictor.Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Inference.Mode != config.InferenceRemote {
		return nil
	}

	if cfg.IsTestMode {
		logger.Info("initializing inference client in STUB mode", "environment", cfg.Environment)
		return NewStubClassifier(logger.With("mode", "stub"), cfg.Inference.Probabilities)
	}

	logger.Info("initializing remote inference client",
		"endpoint", cfg.Inference.Endpoint,
		"probabilities", cfg.Inference.Probabilities,
		"timeout", cfg.Inference.Timeout,
	)

	userAgent := "croppredict/" + cfg.Build.Version
	base := NewBaseClient(
		&http.Client{Timeout: cfg.Inference.Timeout},
		"inference",
		DefaultRetryPolicy(),
		userAgent,
	)
	return NewRemoteClassifier(base, RemoteClassifierConfig{
		Endpoint:      cfg.Inference.Endpoint,
		APIKey:        cfg.Inference.APIKey,
		Probabilities: cfg.Inference.Probabilities,
		Logger:        logger.With("client", "inference"),
	})
}
