package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/testutil"
)

// resetFlags restores every flag to its default and clears Changed, which
// cobra reads when checking mutually exclusive flags.
func resetFlags(t *testing.T) {
	t.Helper()
	for _, flags := range []*pflag.FlagSet{rootCmd.PersistentFlags(), rootCmd.Flags(), remoteCmd.Flags()} {
		flags.VisitAll(func(f *pflag.Flag) {
			if sv, ok := f.Value.(pflag.SliceValue); ok {
				require.NoError(t, sv.Replace(nil), f.Name)
			} else {
				require.NoError(t, f.Value.Set(f.DefValue), f.Name)
			}
			f.Changed = false
		})
	}
}

type execution struct {
	code   int
	stdout string
	stderr string
}

func execute(t *testing.T, args ...string) execution {
	t.Helper()
	resetFlags(t)
	t.Cleanup(func() { resetFlags(t) })

	var stdout, stderr bytes.Buffer
	code := run(t.Context(), args, &stdout, &stderr)
	return execution{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func taggedRepo(t *testing.T) *testutil.TestRepo {
	t.Helper()
	repo := testutil.NewOnDisk(t)
	repo.Tag("1.0.3", repo.Commit("release"))
	repo.Commits(5)
	return repo
}

func TestRootCmd_Flags(t *testing.T) {
	flags := rootCmd.PersistentFlags()
	for _, name := range []string{
		"branch", "commit", "config", "override-config", "next-version", "output",
		"show-variable", "explain", "no-cache", "verbose", "quiet",
	} {
		require.NotNil(t, flags.Lookup(name), name)
	}
	require.Equal(t, "v", flags.Lookup("verbose").Shorthand)
	require.Equal(t, "q", flags.Lookup("quiet").Shorthand)
}

func TestRootCmd_Subcommands(t *testing.T) {
	var names []string
	for _, sub := range rootCmd.Commands() {
		names = append(names, sub.Name())
	}
	require.Subset(t, names, []string{"config", "remote", "version"})
}

func TestCalculate_Formats(t *testing.T) {
	repo := taggedRepo(t)

	t.Run("json", func(t *testing.T) {
		res := execute(t, repo.Path())
		require.Equal(t, 0, res.code, res.stderr)
		var vars map[string]string
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &vars))
		require.Equal(t, "1.0.4+5", vars["FullSemVer"])
	})

	t.Run("yaml", func(t *testing.T) {
		res := execute(t, repo.Path(), "--output", "yaml")
		require.Equal(t, 0, res.code, res.stderr)
		var vars map[string]string
		require.NoError(t, yaml.Unmarshal([]byte(res.stdout), &vars))
		require.Equal(t, "1.0.4", vars["SemVer"])
	})

	t.Run("env", func(t *testing.T) {
		res := execute(t, repo.Path(), "-o", "env")
		require.Equal(t, 0, res.code, res.stderr)
		require.Contains(t, strings.Split(res.stdout, "\n"), "FullSemVer=1.0.4+5")
	})

	t.Run("single variable", func(t *testing.T) {
		res := execute(t, repo.Path(), "--show-variable", "MajorMinorPatch")
		require.Equal(t, 0, res.code, res.stderr)
		require.Equal(t, "1.0.4\n", res.stdout)
	})
}

func TestCalculate_Flags(t *testing.T) {
	repo := taggedRepo(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "override", args: []string{"--override-config", "mode=ContinuousDeployment"}, want: "1.0.4-ci.5+5"},
		{name: "next version", args: []string{"--next-version", "3.0.0"}, want: "3.0.0+5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{repo.Path(), "--no-cache", "--show-variable", "SemVer"}, tt.args...)
			res := execute(t, args...)
			require.Equal(t, 0, res.code, res.stderr)
			want, _, _ := strings.Cut(tt.want, "+")
			require.Equal(t, want+"\n", res.stdout)
		})
	}
}

func TestCalculate_BranchFlag(t *testing.T) {
	repo := testutil.NewOnDisk(t)
	repo.Tag("1.0.0", repo.Commit("release"))
	repo.Branch("feature/JIRA-123")
	repo.Commits(5)
	repo.Checkout("main")

	res := execute(t, repo.Path(), "--branch", "feature/JIRA-123", "--show-variable", "FullSemVer")
	require.Equal(t, 0, res.code, res.stderr)
	require.Equal(t, "1.0.1-JIRA-123.1+5\n", res.stdout)
}

func TestCalculate_Explain(t *testing.T) {
	repo := taggedRepo(t)

	res := execute(t, repo.Path(), "--explain", "--show-variable", "SemVer")
	require.Equal(t, 0, res.code, res.stderr)
	require.Equal(t, "1.0.4\n", res.stdout)
	require.Contains(t, res.stderr, "Result: 1.0.4+5")
}

func TestCalculate_Verbosity(t *testing.T) {
	repo := taggedRepo(t)

	res := execute(t, repo.Path(), "-vv", "--no-cache", "--show-variable", "SemVer")
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stderr, "DEBUG")

	res = execute(t, repo.Path(), "-q", "--no-cache", "--show-variable", "SemVer")
	require.Equal(t, 0, res.code, res.stderr)
	require.Empty(t, res.stderr)

	res = execute(t, repo.Path(), "-q", "-v")
	require.Equal(t, 1, res.code)
}

func TestExecute_FlagsResetBetweenRuns(t *testing.T) {
	repo := taggedRepo(t)

	res := execute(t, repo.Path(), "-q", "--no-cache", "--override-config", "mode=Mainline", "--show-variable", "SemVer")
	require.Equal(t, 0, res.code, res.stderr)
	require.Equal(t, "1.0.4\n", res.stdout)

	res = execute(t, repo.Path(), "-v", "--no-cache", "--show-variable", "FullSemVer")
	require.Equal(t, 0, res.code, res.stderr)
	require.Equal(t, "1.0.4+5\n", res.stdout)
	require.False(t, rootCmd.PersistentFlags().Lookup("quiet").Changed)
	require.Empty(t, flagOverrides)
	require.Equal(t, "json", flagOutput)
}

func TestCalculate_Errors(t *testing.T) {
	repo := taggedRepo(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "not a repository", args: []string{t.TempDir()}, wantErr: "opening repository"},
		{name: "bad output", args: []string{repo.Path(), "-o", "xml"}, wantErr: `unknown output format "xml"`},
		{name: "unknown variable", args: []string{repo.Path(), "--show-variable", "Nope"}, wantErr: `unknown variable "Nope"`},
		{name: "bad override", args: []string{repo.Path(), "--override-config", "colour=blue"}, wantErr: "configuration"},
		{name: "too many args", args: []string{repo.Path(), "extra"}, wantErr: "accepts at most 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, tt.args...)
			require.Equal(t, 1, res.code)
			require.True(t, strings.HasPrefix(res.stderr, "Error: "), res.stderr)
			require.Contains(t, res.stderr, tt.wantErr)
		})
	}
}

func TestConfigCmd(t *testing.T) {
	repo := taggedRepo(t)
	repo.WriteFile("GitVersion.yml", "tag-prefix: release-\n")

	res := execute(t, "config", repo.Path(), "--override-config", "mode=Mainline")
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "tag-prefix: release-")
	require.Contains(t, res.stdout, "mode: Mainline")
}

func TestVersionCmd(t *testing.T) {
	Version = "1.0.0-test"
	defer func() { Version = "dev" }()

	res := execute(t, "version")
	require.Equal(t, 0, res.code)
	require.True(t, strings.HasPrefix(res.stdout, "gitversion 1.0.0-test ("), res.stdout)
}

func TestRemoteCmd_Flags(t *testing.T) {
	flags := remoteCmd.Flags()
	for _, name := range []string{"token", "app-id", "installation-id", "private-key", "ref", "base-url", "max-commits", "remote-config-path"} {
		require.NotNil(t, flags.Lookup(name), name)
	}
}

func TestRemoteCmd_Errors(t *testing.T) {
	for _, key := range []string{"GITHUB_TOKEN", "GH_APP_ID", "GH_APP_PRIVATE_KEY", "GH_APP_INSTALLATION_ID", "GITHUB_API_URL"} {
		t.Setenv(key, "")
	}

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "bad repository", args: []string{"remote", "widget"}, wantErr: "expected owner/repo"},
		{name: "no credentials", args: []string{"remote", "acme/widget"}, wantErr: "no GitHub authentication provided"},
		{name: "no argument", args: []string{"remote"}, wantErr: "accepts 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, tt.args...)
			require.Equal(t, 1, res.code)
			require.Contains(t, res.stderr, tt.wantErr)
		})
	}
}
