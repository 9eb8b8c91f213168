package main

import (
	"github.com/spf13/cobra"

	"croppredict/internal/core"
	"croppredict/internal/predictor"
	"croppredict/internal/render"
	"croppredict/internal/types"
)

// validationReport is the structured output of the validate command.
type validationReport struct {
	Reading    types.SoilReading `json:"reading" yaml:"reading"`
	Incomplete bool              `json:"incomplete" yaml:"incomplete"`
	Warnings   []string          `json:"warnings" yaml:"warnings"`
}

func newValidateCmd() *cobra.Command {
	var (
		flags  readingFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run the plausibility checks without loading a model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutputFormat(output); err != nil {
				return err
			}
			if err := checkBounds(core.NewValidator(nil), flags.reading); err != nil {
				return err
			}

			report := validationReport{
				Reading:    flags.reading,
				Incomplete: predictor.IsIncomplete(flags.reading),
				Warnings:   predictor.Validate(flags.reading),
			}
			if report.Warnings == nil {
				report.Warnings = []string{}
			}

			out := cmd.OutOrStdout()
			if output != outputHuman {
				if err := writeStructured(out, output, report); err != nil {
					return err
				}
			} else {
				writeReport(cmd, report)
			}

			if report.Incomplete || len(report.Warnings) > 0 {
				return &exitError{code: exitRejected}
			}
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", outputHuman, "Output format (human, json, yaml)")
	return cmd
}

func writeReport(cmd *cobra.Command, r validationReport) {
	out := cmd.OutOrStdout()
	switch {
	case r.Incomplete:
		writeView(out, render.Outcome(types.MissingFields()))
		if len(r.Warnings) > 0 {
			writeView(out, render.Outcome(types.ValidationWarnings(r.Warnings)))
		}
	case len(r.Warnings) > 0:
		writeView(out, render.Outcome(types.ValidationWarnings(r.Warnings)))
	default:
		writeView(out, render.View{Level: render.LevelSuccess, Lines: []string{"All values are within plausible ranges."}})
	}
}
