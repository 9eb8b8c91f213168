// Package config defines the process configuration for croppredict. It is
// loaded once at startup and is immutable afterwards.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> AWS SSM Parameter Store (Lowest)
//
// Missing required values or invalid formats abort startup.
package config

import (
	"path/filepath"
	"time"

	"croppredict/internal/types"
)

// SecretString is an alias for types.SecretString so config structs can
// declare redacted fields without importing types.
type SecretString = types.SecretString

// Inference modes.
const (
	InferenceLocal  = "local"
	InferenceRemote = "remote"
)

// Metrics backends.
const (
	MetricsNone       = "none"
	MetricsPrometheus = "prometheus"
	MetricsCloudWatch = "cloudwatch"
)

// Config is the top-level configuration.
type Config struct {
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"OTEL_SERVICE_NAME" default:"croppredict"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	IsTestMode  bool   `envconfig:"IS_TEST_MODE" default:"false"`

	Server    ServerConfig
	Artifacts ArtifactConfig
	Inference InferenceConfig
	AWS       AWSConfig
	Metrics   MetricsConfig

	// Injected via ldflags, not env.
	Build BuildInfo
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port               string        `envconfig:"PORT" default:"8080" validate:"required,numeric"`
	RequestTimeout     time.Duration `envconfig:"SERVER_REQUEST_TIMEOUT" default:"10s" validate:"gt=0"`
	CorsAllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// ArtifactConfig locates the fitted model files. Relative paths are resolved
// against Dir.
type ArtifactConfig struct {
	Dir              string `envconfig:"ARTIFACT_DIR" default:"models"`
	ModelPath        string `envconfig:"MODEL_PATH" default:"best_model_lgbm.json" validate:"required"`
	ScalerPath       string `envconfig:"SCALER_PATH" default:"scaler.json" validate:"required"`
	LabelEncoderPath string `envconfig:"LABEL_ENCODER_PATH" default:"label_encoder.json" validate:"required"`
	CategoryMapPath  string `envconfig:"CATEGORY_MAP_PATH" default:"crop_categories.json" validate:"required"`
}

// Resolve returns p joined onto Dir unless p is already absolute.
func (a ArtifactConfig) Resolve(p string) string {
	if filepath.IsAbs(p) || a.Dir == "" {
		return p
	}
	return filepath.Join(a.Dir, p)
}

// InferenceConfig selects where classification runs.
type InferenceConfig struct {
	Mode          string        `envconfig:"INFERENCE_MODE" default:"local" validate:"oneof=local remote"`
	Endpoint      string        `envconfig:"INFERENCE_ENDPOINT" validate:"required_if=Mode remote,omitempty,url"`
	APIKey        SecretString  `envconfig:"INFERENCE_API_KEY"`
	Timeout       time.Duration `envconfig:"INFERENCE_TIMEOUT" default:"5s" validate:"gt=0"`
	Probabilities bool          `envconfig:"INFERENCE_PROBABILITIES" default:"false"`
}

// AWSConfig holds the region and an optional endpoint override for local
// emulators.
type AWSConfig struct {
	Region      string `envconfig:"AWS_REGION" default:"us-east-1"`
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// MetricsConfig selects the metrics backend.
type MetricsConfig struct {
	Backend   string `envconfig:"METRICS_BACKEND" default:"none" validate:"oneof=none prometheus cloudwatch"`
	Namespace string `envconfig:"METRIC_NAMESPACE" default:"CropPredict"`
}

// BuildInfo holds build-time metadata injected via ldflags.
type BuildInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"build_time" yaml:"build_time"`
}

// ConfigErrorType categorizes configuration loading failures.
type ConfigErrorType string

const (
	ErrMissingEnv    ConfigErrorType = "MISSING_ENV"
	ErrSSMResolution ConfigErrorType = "SSM_FAILURE"
	ErrValidation    ConfigErrorType = "VALIDATION_FAILED"
	ErrParsing       ConfigErrorType = "PARSING_FAILED"
)
