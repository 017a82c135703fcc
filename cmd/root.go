// Package cmd is the gitversion command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/logging"
	"github.com/MyCarrier-DevOps/go-gitversion/pkg/gitversion"
)

// Flags shared by the calculating commands.
var (
	flagBranch       string
	flagCommit       string
	flagConfig       string
	flagOverrides    []string
	flagNextVersion  string
	flagOutput       string
	flagShowVariable string
	flagExplain      bool
	flagNoCache      bool
	flagVerbose      int
	flagQuiet        bool
)

var rootCmd = &cobra.Command{
	Use:   "gitversion [path]",
	Short: "Semantic versioning from git history",
	Long: `gitversion calculates the semantic version of a commit from the tags,
branches and merges in its history and prints it as a set of variables.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          calculateRunE,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&flagBranch, "branch", "b", "", "branch to version (default: HEAD)")
	flags.StringVarP(&flagCommit, "commit", "c", "", "commit to version (default: branch tip)")
	flags.StringVar(&flagConfig, "config", "", "configuration file (default: search the working directory)")
	flags.StringArrayVar(&flagOverrides, "override-config", nil, "override a configuration key, e.g. mode=Mainline (repeatable)")
	flags.StringVar(&flagNextVersion, "next-version", "", "override next-version")
	flags.StringVarP(&flagOutput, "output", "o", "json", "output format: json, yaml or env")
	flags.StringVar(&flagShowVariable, "show-variable", "", "print a single variable, e.g. SemVer")
	flags.BoolVar(&flagExplain, "explain", false, "print how the version was reached to stderr")
	flags.BoolVar(&flagNoCache, "no-cache", false, "do not read or write the version cache")
	flags.CountVarP(&flagVerbose, "verbose", "v", "log more (-v info, -vv debug)")
	flags.BoolVarP(&flagQuiet, "quiet", "q", false, "log nothing")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

func verbosity() logging.Verbosity {
	if flagQuiet {
		return logging.Quiet
	}
	return logging.Verbosity(flagVerbose)
}

func newLogger(cmd *cobra.Command) *zap.Logger {
	return logging.New(verbosity(), cmd.ErrOrStderr())
}

// options collects the shared flags.
func options(path string, log *zap.Logger) gitversion.Options {
	return gitversion.Options{
		Path:        path,
		Branch:      flagBranch,
		Commit:      flagCommit,
		ConfigPath:  flagConfig,
		Overrides:   flagOverrides,
		NextVersion: flagNextVersion,
		NoCache:     flagNoCache,
		Explain:     flagExplain,
		Logger:      log,
	}
}

func pathArg(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return "."
}

// Execute runs the command line and exits with its status.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes args and returns the exit status. Errors are printed to
// stderr as "Error: <message>".
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
