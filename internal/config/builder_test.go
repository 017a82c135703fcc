package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/semver"
)

func TestBuilder_Defaults(t *testing.T) {
	cfg, err := NewBuilder().Build()
	require.NoError(t, err)
	require.Equal(t,
		[]string{"main", "develop", "release", "feature", "pull-request", "hotfix", "support", "unknown"},
		cfg.Branches.Names())
	require.Equal(t, "0.1.0", *cfg.BaseVersion)

	develop, ok := cfg.Branches.Get("develop")
	require.True(t, ok)
	require.Equal(t, semver.VersioningModeContinuousDeployment, *develop.Mode)
	require.Equal(t, "unstable", *develop.Label)

	main, _ := cfg.Branches.Get("main")
	require.Equal(t, semver.VersioningModeContinuousDelivery, *main.Mode)
}

func TestBuilder_TrunkModeReachesDevelop(t *testing.T) {
	cfg, err := NewBuilder().Add(&Config{Mode: ptr(semver.VersioningModeTrunkBased)}).Build()
	require.NoError(t, err)
	develop, _ := cfg.Branches.Get("develop")
	require.Equal(t, semver.VersioningModeTrunkBased, *develop.Mode)
}

func TestBuilder_BranchOverlayKeepsDefaults(t *testing.T) {
	override := &Config{Branches: Branches{
		{Name: "main", Config: &BranchConfig{Regex: ptr(`^(main|prod)$`)}},
	}}
	cfg, err := NewBuilder().Add(override).Build()
	require.NoError(t, err)

	main, _ := cfg.Branches.Get("main")
	require.Equal(t, `^(main|prod)$`, *main.Regex)
	require.Equal(t, semver.IncrementStrategyPatch, *main.Increment)
	require.True(t, *main.IsMainBranch)

	defaults := CreateDefaultConfiguration()
	defaultMain, _ := defaults.Branches.Get("main")
	require.Equal(t, `^master$|^main$`, *defaultMain.Regex, "defaults must not be mutated")
}

func TestBuilder_UserBranchesComeFirst(t *testing.T) {
	override := &Config{Branches: Branches{
		{Name: "unknown", Config: &BranchConfig{Label: ptr("wip")}},
		{Name: "release-latest", Config: &BranchConfig{Regex: ptr(`^release/latest$`), Label: ptr("latest")}},
		{Name: "release", Config: &BranchConfig{Label: ptr("rc")}},
	}}
	cfg, err := NewBuilder().Add(override).Build()
	require.NoError(t, err)

	names := cfg.Branches.Names()
	require.Equal(t, "release-latest", names[0])
	require.Equal(t, "release", names[1])
	require.Equal(t, "unknown", names[len(names)-1])

	nb, err := cfg.GetBranchConfiguration("release/latest")
	require.NoError(t, err)
	require.Equal(t, "release-latest", nb.Name)
}

func TestBuilder_IsSourceBranchFor(t *testing.T) {
	override := &Config{Branches: Branches{
		{Name: "staging", Config: &BranchConfig{
			Regex:             ptr(`^staging$`),
			IsSourceBranchFor: ptr([]string{"feature"}),
		}},
	}}
	cfg, err := NewBuilder().Add(override).Build()
	require.NoError(t, err)
	feature, _ := cfg.Branches.Get("feature")
	require.Contains(t, *feature.SourceBranches, "staging")
}

func TestBuilder_Validation(t *testing.T) {
	tests := []struct {
		name     string
		override *Config
		key      string
	}{
		{"bad tag prefix", &Config{TagPrefix: ptr("([")}, "tag-prefix"},
		{"bad base version", &Config{BaseVersion: ptr("one")}, "base-version"},
		{"bad branch regex", &Config{Branches: Branches{{Name: "x", Config: &BranchConfig{Regex: ptr("([")}}}}, "branches.x.regex"},
		{"missing regex", &Config{Branches: Branches{{Name: "x", Config: &BranchConfig{}}}}, "branches.x.regex"},
		{"unknown source", &Config{Branches: Branches{{Name: "x", Config: &BranchConfig{Regex: ptr("^x$"), SourceBranches: ptr([]string{"nope"})}}}}, "branches.x.source-branches"},
		{"number group missing", &Config{Branches: Branches{{Name: "pull-request", Config: &BranchConfig{LabelNumberPattern: ptr(`\d+`)}}}}, "branches.pull-request.label-number-pattern"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuilder().Add(tt.override).Build()
			require.Error(t, err)
			var ce *Error
			require.ErrorAs(t, err, &ce)
			require.Equal(t, tt.key, ce.Key)
			require.True(t, IsConfigurationError(err))
		})
	}
}

func TestBranchConfig_Inherit(t *testing.T) {
	parent := &BranchConfig{
		Increment:    ptr(semver.IncrementStrategyMinor),
		Label:        ptr("unstable"),
		IsMainBranch: ptr(false),
	}
	child := &BranchConfig{
		Increment: ptr(semver.IncrementStrategyInherit),
		Label:     ptr("{BranchName}"),
	}
	got := child.Inherit(parent)
	require.Equal(t, semver.IncrementStrategyMinor, *got.Increment)
	require.Equal(t, "{BranchName}", *got.Label)
	require.False(t, *got.IsMainBranch)
	require.True(t, child.IncrementIsInherit())
	require.False(t, got.IncrementIsInherit())

	concrete := &BranchConfig{Increment: ptr(semver.IncrementStrategyMajor)}
	require.Equal(t, semver.IncrementStrategyMajor, *concrete.Inherit(parent).Increment)
}
