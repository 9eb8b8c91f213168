// Command croppredict runs the crop recommendation pipeline from the shell.
//
// It reads the same configuration as the HTTP service (APP_ENV defaults to
// "local" here) and loads the same artifacts, so a prediction made on the
// command line matches the web form.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"croppredict/internal/config"
)

// exitError carries a process exit code without an extra message.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// Exit codes.
const (
	exitRejected = 2 // submission rejected: missing fields or plausibility warnings
	exitNoModel  = 3 // artifacts unavailable
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	artifactDir string
	logLevel    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "croppredict",
		Short: "Recommend a crop from soil and climate readings",
		Long: `Recommend a crop from soil and climate readings.

Examples:
  # Predict with the artifacts under ./models
  croppredict predict --nitrogen 90 --phosphorus 42 --potassium 43 \
    --temperature 20.9 --humidity 82 --ph 6.5

  # Only run the plausibility checks
  croppredict validate --nitrogen 5 --temperature 50

  # Machine-readable output
  croppredict predict -n 90 -p 42 -k 43 -o json`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.artifactDir, "artifact-dir", "", "Directory holding the model artifacts (overrides ARTIFACT_DIR)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "error", "Log level for diagnostics on stderr (debug, info, warn, error)")

	cmd.AddCommand(
		newPredictCmd(opts),
		newValidateCmd(),
		newVersionCmd(),
	)
	return cmd
}

// loadConfig loads the shared configuration, defaulting APP_ENV to local.
// *_SSM_PARAM pointers resolve from environment variables named after the
// parameter path (see config.ParamEnvName).
func (o *rootOptions) loadConfig() (*config.Config, error) {
	if os.Getenv("APP_ENV") == "" {
		if err := os.Setenv("APP_ENV", "local"); err != nil {
			return nil, err
		}
	}
	cfg, err := config.LoadConfig(config.NewEnvVarProvider())
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if o.artifactDir != "" {
		cfg.Artifacts.Dir = o.artifactDir
	}
	return cfg, nil
}

func (o *rootOptions) logger(w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch o.logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	default:
		lvl = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}
