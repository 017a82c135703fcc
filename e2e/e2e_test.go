// Package e2e runs whole calculations against real repositories built on
// disk: go-git reads them, the public library calculates, and the output
// variables are checked.
package e2e

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/testutil"
	"github.com/MyCarrier-DevOps/go-gitversion/pkg/gitversion"
)

type scenario struct {
	name      string
	build     func(repo *testutil.TestRepo)
	overrides []string
	want      string
}

// scenarios are shared with the GitHub parity tests.
var scenarios = []scenario{
	{
		name:  "fallback without tags",
		build: func(repo *testutil.TestRepo) { repo.Commits(3) },
		want:  "0.1.0+2",
	},
	{
		name: "patch after tag",
		build: func(repo *testutil.TestRepo) {
			repo.Tag("1.0.3", repo.Commit("release"))
			repo.Commits(5)
		},
		want: "1.0.4+5",
	},
	{
		name: "annotated tag",
		build: func(repo *testutil.TestRepo) {
			sha := repo.Commit("release")
			repo.AnnotatedTag("v1.0.3", sha, "release 1.0.3")
			repo.Commits(5)
		},
		want: "1.0.4+5",
	},
	{
		name: "release branch",
		build: func(repo *testutil.TestRepo) {
			repo.Tag("1.0.3", repo.Commit("release"))
			repo.Commits(5)
			repo.Branch("release-2.0.0")
		},
		want: "2.0.0-beta.1+5",
	},
	{
		name: "release merged into main",
		build: func(repo *testutil.TestRepo) {
			repo.Tag("1.0.3", repo.Commit("release"))
			repo.Commits(5)
			repo.Branch("release-2.0.0")
			repo.Commit("stabilize")
			repo.Checkout("main")
			repo.Merge("release-2.0.0")
		},
		want: "2.0.0+0",
	},
	{
		name: "develop",
		build: func(repo *testutil.TestRepo) {
			repo.Tag("1.0.0", repo.Commit("release"))
			repo.Branch("develop")
		},
		want: "1.1.0-unstable.0+0",
	},
	{
		name: "feature branch label",
		build: func(repo *testutil.TestRepo) {
			repo.Tag("1.0.0", repo.Commit("release"))
			repo.Branch("feature/JIRA-123")
			repo.Commits(5)
		},
		want: "1.0.1-JIRA-123.1+5",
	},
	{
		name: "tagged head",
		build: func(repo *testutil.TestRepo) {
			repo.Commits(2)
			repo.Tag("v1.2.0", repo.HeadSha())
		},
		want: "1.2.0",
	},
	{
		name: "conventional commits",
		build: func(repo *testutil.TestRepo) {
			repo.Tag("1.0.0", repo.Commit("release"))
			repo.Commit("feat: search")
			repo.Commit("fix: typo")
		},
		want: "1.1.0+2",
	},
	{
		name: "breaking change",
		build: func(repo *testutil.TestRepo) {
			repo.Tag("1.0.0", repo.Commit("release"))
			repo.Commit("feat!: new api")
		},
		want: "2.0.0+1",
	},
	{
		name: "bump directive",
		build: func(repo *testutil.TestRepo) {
			repo.Tag("1.0.0", repo.Commit("release"))
			repo.Commit("rework +semver: major")
		},
		want: "2.0.0+1",
	},
	{
		name: "bump directive before 1.0",
		build: func(repo *testutil.TestRepo) {
			repo.Tag("0.5.0", repo.Commit("release"))
			repo.Commit("rework +semver: major")
		},
		want: "1.0.0+1",
	},
	{
		name: "continuous deployment",
		build: func(repo *testutil.TestRepo) {
			repo.Tag("1.0.0", repo.Commit("release"))
			repo.Commits(3)
		},
		overrides: []string{"mode=ContinuousDeployment"},
		want:      "1.0.1-ci.3+3",
	},
	{
		name: "trunk based",
		build: func(repo *testutil.TestRepo) {
			repo.Tag("1.0.0", repo.Commit("release"))
			repo.Commits(3)
		},
		overrides: []string{"mode=TrunkBased"},
		want:      "1.0.3+3",
	},
	{
		name: "mainline",
		build: func(repo *testutil.TestRepo) {
			repo.Tag("1.0.0", repo.Commit("release"))
			repo.Commit("a")
			repo.Commit("feat: b")
			repo.Commit("c")
		},
		overrides: []string{"mode=Mainline"},
		want:      "1.1.0+3",
	},
}

func TestScenarios(t *testing.T) {
	for _, sc := range scenarios {
		t.Run(sc.name, func(t *testing.T) {
			repo := testutil.NewOnDisk(t)
			sc.build(repo)

			result, err := gitversion.Calculate(t.Context(), gitversion.Options{
				Path:      repo.Path(),
				Overrides: sc.overrides,
			})
			require.NoError(t, err)
			require.Equal(t, sc.want, result.Variables["FullSemVer"])
			require.Equal(t, repo.HeadSha(), result.Variables["Sha"])
		})
	}
}

func TestOutputVariables(t *testing.T) {
	repo := testutil.NewOnDisk(t)
	repo.Tag("1.0.0", repo.Commit("release"))
	repo.Branch("feature/login")
	repo.Commits(2)

	result, err := gitversion.Calculate(t.Context(), gitversion.Options{Path: repo.Path()})
	require.NoError(t, err)

	vars := result.Variables
	for _, name := range []string{
		"Major", "Minor", "Patch", "PreReleaseTag", "PreReleaseTagWithDash",
		"PreReleaseLabel", "PreReleaseNumber", "WeightedPreReleaseNumber",
		"BuildMetaData", "FullBuildMetaData", "MajorMinorPatch", "SemVer",
		"FullSemVer", "AssemblySemVer", "AssemblySemFileVer", "InformationalVersion",
		"BranchName", "EscapedBranchName", "Sha", "ShortSha", "VersionSourceSha",
		"CommitsSinceVersionSource", "UncommittedChanges", "CommitDate",
	} {
		require.Contains(t, vars, name)
	}
	require.Equal(t, "1.0.1-login.1", vars["SemVer"])
	require.Equal(t, "login", vars["PreReleaseLabel"])
	require.Equal(t, "feature/login", vars["BranchName"])
	require.Equal(t, "feature-login", vars["EscapedBranchName"])
	require.Equal(t, "2", vars["CommitsSinceVersionSource"])
	require.Equal(t, "0", vars["UncommittedChanges"])
}

func TestCachedResultMatches(t *testing.T) {
	repo := testutil.NewOnDisk(t)
	repo.Tag("1.0.3", repo.Commit("release"))
	repo.Commits(5)
	opts := gitversion.Options{Path: repo.Path()}

	fresh, err := gitversion.Calculate(t.Context(), opts)
	require.NoError(t, err)
	cached, err := gitversion.Calculate(t.Context(), opts)
	require.NoError(t, err)

	require.True(t, cached.FromCache)
	require.Equal(t, fresh.Variables, cached.Variables)
}

func TestReleaseBranchCountsFromTag(t *testing.T) {
	repo := testutil.NewOnDisk(t)
	tagged := repo.Commit("release")
	repo.Tag("1.0.3", tagged)
	repo.Commits(2)
	repo.Branch("release-2.0.0")
	repo.Commits(3)

	result, err := gitversion.Calculate(t.Context(), gitversion.Options{Path: repo.Path(), NoCache: true})
	require.NoError(t, err)
	require.Equal(t, "2.0.0-beta.1+5", result.Variables["FullSemVer"])
	require.Equal(t, tagged, result.Variables["VersionSourceSha"])
	require.Equal(t, "5", result.Variables["CommitsSinceVersionSource"])
}
