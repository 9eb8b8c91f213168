package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"croppredict/internal/config"
)

func newVersionCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutputFormat(output); err != nil {
				return err
			}
			info := config.NewBuildInfo()
			if output != outputHuman {
				return writeStructured(cmd.OutOrStdout(), output, info)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "croppredict %s (commit %s, built %s)\n", info.Version, info.Commit, info.BuildTime)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputHuman, "Output format (human, json, yaml)")
	return cmd
}
