package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"croppredict/internal/artifacts"
	"croppredict/internal/core"
	"croppredict/internal/external"
	"croppredict/internal/predictor"
	"croppredict/internal/render"
	"croppredict/internal/types"
)

type predictOptions struct {
	root   *rootOptions
	flags  readingFlags
	output string
}

func newPredictCmd(root *rootOptions) *cobra.Command {
	o := &predictOptions{root: root}

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the most suitable crop for a reading",
		Long: `Predict the most suitable crop for a reading.

Missing nutrients (0) and implausible values are reported instead of a
prediction and exit with status 2. Unavailable artifacts exit with status 3.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.run(cmd)
		},
	}

	o.flags.register(cmd.Flags())
	cmd.Flags().StringVarP(&o.output, "output", "o", outputHuman, "Output format (human, json, yaml)")
	return cmd
}

func (o *predictOptions) run(cmd *cobra.Command) error {
	if err := checkOutputFormat(o.output); err != nil {
		return err
	}

	logger := o.root.logger(cmd.ErrOrStderr())
	if err := checkBounds(core.NewValidator(logger), o.flags.reading); err != nil {
		return err
	}

	cfg, err := o.root.loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	bundle, loadErr := artifacts.Load(ctx, artifacts.PathsFrom(cfg.Artifacts), artifacts.Options{
		Classifier: external.NewClassifier(cfg, logger),
	}, logger)

	var services predictor.Services
	if loadErr == nil {
		services = bundle.Services()
	}
	svc := predictor.NewService(services, loadErr == nil, logger, nil)

	outcome, err := svc.Predict(ctx, o.flags.reading)
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if o.output == outputHuman {
		if loadErr != nil {
			writeView(cmd.ErrOrStderr(), render.LoadFailure(loadErr))
		}
		writeView(out, render.Outcome(outcome))
	} else if err := writeStructured(out, o.output, outcome); err != nil {
		return err
	}

	return outcomeExit(outcome.Kind)
}

func outcomeExit(kind types.OutcomeKind) error {
	switch kind {
	case types.OutcomePrediction:
		return nil
	case types.OutcomeModelUnavailable:
		return &exitError{code: exitNoModel}
	default:
		return &exitError{code: exitRejected}
	}
}
