package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/output"
	"github.com/MyCarrier-DevOps/go-gitversion/pkg/gitversion"
)

func calculateRunE(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(flagOutput)
	if err != nil {
		return err
	}

	result, err := gitversion.Calculate(cmd.Context(), options(pathArg(args), newLogger(cmd)))
	if err != nil {
		return err
	}
	return writeResult(cmd, result, format)
}

// writeResult prints the explanation, if any, to stderr and the variables
// to stdout.
func writeResult(cmd *cobra.Command, result *gitversion.Result, format output.Format) error {
	if result.Explanation != "" {
		if _, err := io.WriteString(cmd.ErrOrStderr(), result.Explanation); err != nil {
			return fmt.Errorf("writing explanation: %w", err)
		}
	}
	if flagShowVariable != "" {
		return output.WriteVariable(cmd.OutOrStdout(), result.Variables, flagShowVariable)
	}
	return output.WriteVariables(cmd.OutOrStdout(), result.Variables, format)
}
