package trunk

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/semver"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/testutil"
)

func TestBuild_MergedIteration(t *testing.T) {
	repo := testutil.New(t)
	c1 := repo.Commit("initial")
	c2 := repo.Commit("second")
	repo.Branch("feature/login")
	f1 := repo.Commit("login form")
	f2 := repo.Commit("login api")
	repo.Checkout("main")
	c3 := repo.Commit("third")
	merge := repo.Merge("feature/login")

	f := newFixture(t, repo, semver.VersioningModeMainline)
	arena, err := f.engine.Build(f.ctx, f.ec)
	require.NoError(t, err)

	require.Len(t, arena.Iterations, 2)
	require.Equal(t, []int{0}, arena.Line())
	require.Equal(t, []int{1}, arena.Merged())

	main := arena.Iterations[0]
	require.Equal(t, "main", main.BranchName)
	require.False(t, main.IsMerged())
	shas := make([]string, 0, len(main.Nodes))
	for _, i := range main.Nodes {
		shas = append(shas, arena.Nodes[i].Commit.Sha)
	}
	require.Equal(t, []string{merge, c3, c2, c1}, shas)

	feature := arena.Iterations[1]
	require.Equal(t, "feature/login", feature.BranchName)
	require.True(t, feature.IsMerged())
	require.Equal(t, 0, feature.Parent)
	require.Equal(t, "login", feature.Label())

	node, ok := arena.Lookup(merge)
	require.True(t, ok)
	require.True(t, node.IsMerge())
	require.Equal(t, 1, node.Child)
	require.Equal(t, main.Nodes[0], feature.MergedBy)

	newest, ok := arena.Lookup(f2)
	require.True(t, ok)
	oldest, ok := arena.Lookup(f1)
	require.True(t, ok)
	require.Equal(t, arena.Nodes[newest.Older], oldest)
	require.Equal(t, -1, oldest.Older)
}

func TestBuild_BranchedLine(t *testing.T) {
	repo := testutil.New(t)
	repo.Tag("1.0.0", repo.Commit("release"))
	repo.Commit("second")
	repo.Branch("feature/x")
	repo.Commits(2)

	f := newFixture(t, repo, semver.VersioningModeTrunkBased)
	arena, err := f.engine.Build(f.ctx, f.ec)
	require.NoError(t, err)

	require.Equal(t, []int{1, 0}, arena.Line())
	require.Equal(t, "feature/x", arena.Iterations[0].BranchName)
	require.Equal(t, "main", arena.Iterations[1].BranchName)
	require.Len(t, arena.Iterations[0].Nodes, 2)
	require.Len(t, arena.Iterations[1].Nodes, 2)
	require.True(t, arena.Iterations[1].Configuration.IsMainBranch)
}

func TestBuild_UnknownMergedBranch(t *testing.T) {
	repo := testutil.New(t)
	repo.Commit("initial")
	repo.Branch("topic")
	side := repo.Commit("side")
	repo.Checkout("main")
	repo.Commit("main work")
	repo.MergeWithMessage("combine histories", side)

	f := newFixture(t, repo, semver.VersioningModeMainline)
	arena, err := f.engine.Build(f.ctx, f.ec)
	require.NoError(t, err)
	require.Len(t, arena.Iterations, 2)
	require.Equal(t, unknownBranch, arena.Iterations[1].BranchName)
}

func TestNode_Tags(t *testing.T) {
	n := &Node{Tags: []semver.SemanticVersion{
		mustParse(t, "2.0.0-rc.1"),
		mustParse(t, "1.5.0"),
	}}
	stable, ok := n.StableTag()
	require.True(t, ok)
	require.Equal(t, "1.5.0", stable.SemVer())
	pre, ok := n.PreReleaseTag()
	require.True(t, ok)
	require.Equal(t, "2.0.0-rc.1", pre.SemVer())

	_, ok = (&Node{}).StableTag()
	require.False(t, ok)
}
