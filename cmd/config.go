package cmd

import (
	"github.com/spf13/cobra"

	"github.com/MyCarrier-DevOps/go-gitversion/pkg/gitversion"
)

var configCmd = &cobra.Command{
	Use:   "config [path]",
	Short: "Print the resolved configuration",
	Long: `Print the configuration a calculation would run with: the built-in
defaults, overlaid with the configuration file and any --override-config
or --next-version flags.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := gitversion.ResolvedConfig(options(pathArg(args), newLogger(cmd)))
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
