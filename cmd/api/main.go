// Package main is the entry point for the croppredict HTTP service.
//
// It loads configuration, loads the model artifacts (or wires the remote
// inference client), builds the chassis with the form pages and the JSON API,
// and serves them.
//
// Locally it runs a standard HTTP server on the configured port. Inside AWS
// Lambda it serves API Gateway HTTP API events through the chi Lambda adapter.
//
// A failed artifact load is not fatal: the pages stay up, a banner explains
// the failure, and every complete submission resolves to model_unavailable.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"croppredict/internal/api/handlers"
	"croppredict/internal/artifacts"
	"croppredict/internal/config"
	"croppredict/internal/core"
	"croppredict/internal/external"
	"croppredict/internal/predictor"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig(secretProvider())
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("croppredict API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
		"inference_mode", cfg.Inference.Mode,
	)

	ctx := context.Background()

	metrics, metricsHandler, err := newMetrics(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing metrics: %w", err)
	}

	srv, err := buildServer(ctx, cfg, logger, metrics, metricsHandler)
	if err != nil {
		return err
	}

	if isLambdaEnvironment() {
		return runLambda(srv, logger)
	}
	return runHTTPServer(srv, cfg, logger)
}

// secretProvider returns the SSM provider outside local development. It only
// connects when a *_SSM_PARAM variable actually needs resolving.
func secretProvider() config.SecretProvider {
	if os.Getenv("APP_ENV") == "local" {
		return nil
	}
	return config.NewSSMProvider(os.Getenv("AWS_REGION"), os.Getenv("AWS_ENDPOINT_URL"))
}

// buildServer loads the artifacts and mounts every route.
func buildServer(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics core.MetricsCollector, metricsHandler http.Handler) (*core.Server, error) {
	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating server: %w", err)
	}
	srv.Metrics = metrics
	srv.MetricsHandler = metricsHandler

	classifier := external.NewClassifier(cfg, logger)
	bundle, loadErr := artifacts.Load(ctx, artifacts.PathsFrom(cfg.Artifacts), artifacts.Options{
		Classifier: classifier,
	}, logger)

	var (
		services   predictor.Services
		categories *artifacts.CategoryMap
	)
	if loadErr != nil {
		logger.Error("model artifacts unavailable, predictions disabled", "error", loadErr)
	} else {
		services = bundle.Services()
		categories = bundle.Categories
	}

	svc := predictor.NewService(services, loadErr == nil, logger, metrics)

	srv.HealthProbes = append(srv.HealthProbes, core.NewProbe("artifacts", func(context.Context) error {
		return loadErr
	}))
	if c, ok := classifier.(interface{ Check(context.Context) error }); ok {
		srv.HealthProbes = append(srv.HealthProbes, core.NewProbe("inference", c.Check))
	}

	web, err := handlers.NewWebHandler(svc, loadErr, srv.Validator, logger, cfg.Build.Version)
	if err != nil {
		return nil, fmt.Errorf("creating web handler: %w", err)
	}
	api := handlers.NewPredictionHandler(svc, categories, srv.Validator, logger)

	srv.RootRouteRegistrars = append(srv.RootRouteRegistrars, web.RegisterRoutes)
	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars, api.RegisterRoutes)

	srv.MountRoutes()
	return srv, nil
}

// newMetrics builds the configured collector. The handler is non-nil only
// for Prometheus, which is scraped at /metrics.
func newMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (core.MetricsCollector, http.Handler, error) {
	switch cfg.Metrics.Backend {
	case config.MetricsPrometheus:
		m := core.NewPrometheusMetrics()
		return m, m.Handler(), nil
	case config.MetricsCloudWatch:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
		if err != nil {
			return nil, nil, fmt.Errorf("loading AWS config: %w", err)
		}
		client := cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
			if cfg.AWS.EndpointURL != "" {
				o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
			}
		})
		return core.NewCloudWatchMetrics(client, cfg.Metrics.Namespace, logger), nil, nil
	default:
		return core.NoopMetrics{}, nil, nil
	}
}

// isLambdaEnvironment returns true if the process is running inside AWS Lambda.
func isLambdaEnvironment() bool {
	_, hasRuntimeAPI := os.LookupEnv("AWS_LAMBDA_RUNTIME_API")
	_, hasServerPort := os.LookupEnv("_LAMBDA_SERVER_PORT")
	return hasRuntimeAPI || hasServerPort
}

// flusher is implemented by collectors that buffer data points.
type flusher interface {
	Flush(ctx context.Context) error
}

// runLambda serves API Gateway events. Buffered metrics are flushed after
// every invocation because the environment may be frozen between them.
func runLambda(srv *core.Server, logger *slog.Logger) error {
	handler := srv.LambdaHandler()
	logger.Info("starting Lambda handler")

	lambda.Start(func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		resp, err := handler(ctx, req)
		if f, ok := srv.Metrics.(flusher); ok {
			if ferr := f.Flush(ctx); ferr != nil {
				logger.Warn("failed to flush metrics", "error", ferr)
			}
		}
		return resp, err
	})
	return nil
}

// runHTTPServer starts the server in standard HTTP mode with graceful shutdown.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)

	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	// Flushes buffered metrics.
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server resource shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured slog.Logger configured for the given log level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: false,
	})
	return slog.New(handler)
}
