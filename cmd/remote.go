package cmd

import (
	"github.com/spf13/cobra"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/output"
	"github.com/MyCarrier-DevOps/go-gitversion/pkg/gitversion"
)

var (
	flagToken            string
	flagAppID            int64
	flagInstallationID   int64
	flagPrivateKey       string
	flagRef              string
	flagBaseURL          string
	flagMaxCommits       int
	flagRemoteConfigPath string
)

var remoteCmd = &cobra.Command{
	Use:   "remote owner/repo",
	Short: "Calculate the version of a GitHub repository through its API",
	Long: `Calculate the version of a GitHub repository by reading its history
through the GitHub API. No clone is needed.

Authentication, in order:
  1. --token or GITHUB_TOKEN
  2. --app-id and --private-key (or GH_APP_ID and GH_APP_PRIVATE_KEY), with
     --installation-id (or GH_APP_INSTALLATION_ID) when the installation
     should not be looked up by owner

Examples:
  GITHUB_TOKEN=ghp_xxx gitversion remote acme/widget
  gitversion remote acme/widget --ref release/2.0 --show-variable SemVer
  gitversion remote acme/widget --app-id 12345 --private-key key.pem`,
	Args: cobra.ExactArgs(1),
	RunE: remoteRunE,
}

func init() {
	flags := remoteCmd.Flags()
	flags.StringVar(&flagToken, "token", "", "GitHub token (or GITHUB_TOKEN)")
	flags.Int64Var(&flagAppID, "app-id", 0, "GitHub App ID (or GH_APP_ID)")
	flags.Int64Var(&flagInstallationID, "installation-id", 0, "GitHub App installation ID (or GH_APP_INSTALLATION_ID)")
	flags.StringVar(&flagPrivateKey, "private-key", "", "path to the GitHub App private key PEM file (or GH_APP_PRIVATE_KEY)")
	flags.StringVar(&flagRef, "ref", "", "branch, tag or commit SHA to version (default: the default branch)")
	flags.StringVar(&flagBaseURL, "base-url", "", "GitHub Enterprise API URL (or GITHUB_API_URL)")
	flags.IntVar(&flagMaxCommits, "max-commits", 1000, "maximum number of commits to fetch")
	flags.StringVar(&flagRemoteConfigPath, "remote-config-path", "", "configuration file inside the repository (default: search the default names)")

	rootCmd.AddCommand(remoteCmd)
}

func remoteRunE(cmd *cobra.Command, args []string) error {
	owner, repo, err := gitversion.ParseRepository(args[0])
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(flagOutput)
	if err != nil {
		return err
	}

	opts := options("", newLogger(cmd))
	opts.NoCache = true
	result, err := gitversion.CalculateRemote(cmd.Context(), gitversion.RemoteOptions{
		Options:          opts,
		Owner:            owner,
		Repo:             repo,
		Token:            flagToken,
		AppID:            flagAppID,
		InstallationID:   flagInstallationID,
		PrivateKeyPath:   flagPrivateKey,
		BaseURL:          flagBaseURL,
		Ref:              flagRef,
		MaxCommits:       flagMaxCommits,
		RemoteConfigPath: flagRemoteConfigPath,
	})
	if err != nil {
		return err
	}
	return writeResult(cmd, result, format)
}
