package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/semver"
)

func TestLoadFromBytes(t *testing.T) {
	data := []byte(`
mode: TrunkBased
tag-prefix: 'release-'
next-version: 3.0.0
tag-selection: Last
commit-message-convention: bump-directive
branches:
  release-latest:
    regex: ^release/latest$
    label: latest
  main:
    increment: Minor
    prevent-increment:
      when-current-commit-tagged: false
merge-message-formats:
  custom: '^PR (?P<PullRequestNumber>\d+) from (?P<SourceBranch>.+) into (?P<TargetBranch>.+)$'
ignore:
  commits-before: 2024-01-15
  sha:
    - deadbeef
`)
	cfg, err := LoadFromBytes(data)
	require.NoError(t, err)

	require.Equal(t, semver.VersioningModeTrunkBased, *cfg.Mode)
	require.Equal(t, "release-", *cfg.TagPrefix)
	require.Equal(t, "3.0.0", *cfg.NextVersion)
	require.Equal(t, TagSelectionLast, *cfg.TagSelection)
	require.Equal(t, semver.CommitMessageConventionBumpDirective, *cfg.CommitMessageConvention)
	require.Equal(t, []string{"release-latest", "main"}, cfg.Branches.Names())

	main, _ := cfg.Branches.Get("main")
	require.Equal(t, semver.IncrementStrategyMinor, *main.Increment)
	require.False(t, *main.PreventIncrement.WhenCurrentCommitTagged)
	require.Nil(t, main.PreventIncrement.OfMergedBranch)

	require.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), *cfg.Ignore.CommitsBefore)
	require.Equal(t, []string{"deadbeef"}, cfg.Ignore.Sha)
	require.Contains(t, cfg.MergeMessageFormats, "custom")
}

func TestLoadFromBytes_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown increment", "increment: Huge\n"},
		{"unknown key", "tag-prefx: v\n"},
		{"duplicate branch", "branches:\n  main: {}\n  main: {}\n"},
		{"branches not a map", "branches: [main]\n"},
		{"bad date", "ignore:\n  commits-before: yesterday\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tt.data))
			require.Error(t, err)
			require.True(t, IsConfigurationError(err))
		})
	}
}

func TestLoadFromBytes_Empty(t *testing.T) {
	cfg, err := LoadFromBytes([]byte("  \n"))
	require.NoError(t, err)
	require.Nil(t, cfg.Mode)
}

func TestMarshalPreservesBranchOrder(t *testing.T) {
	cfg, err := NewBuilder().Build()
	require.NoError(t, err)
	out, err := cfg.Marshal()
	require.NoError(t, err)

	back, err := LoadFromBytes(out)
	require.NoError(t, err)
	require.Equal(t, cfg.Branches.Names(), back.Branches.Names())
	require.Equal(t, *cfg.BaseVersion, *back.BaseVersion)
}

func TestFindConfigFileAndLegacyNextVersion(t *testing.T) {
	dir := t.TempDir()
	require.Empty(t, FindConfigFile(dir))

	v, err := LoadLegacyNextVersion(dir)
	require.NoError(t, err)
	require.Empty(t, v)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".github"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".github", "GitVersion.yml"), []byte("mode: Mainline\n"), 0o644))
	require.Equal(t, filepath.Join(dir, ".github", "GitVersion.yml"), FindConfigFile(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "GitVersion.yml"), []byte("{}\n"), 0o644))
	require.Equal(t, filepath.Join(dir, "GitVersion.yml"), FindConfigFile(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, LegacyNextVersionFile), []byte(" 2.0.0\n"), 0o644))
	v, err = LoadLegacyNextVersion(dir)
	require.NoError(t, err)
	require.Equal(t, "2.0.0", v)

	cfg, err := LoadFromFile(filepath.Join(dir, ".github", "GitVersion.yml"))
	require.NoError(t, err)
	require.Equal(t, semver.VersioningModeMainline, *cfg.Mode)

	_, err = LoadFromFile(filepath.Join(dir, "missing.yml"))
	require.Error(t, err)
}
