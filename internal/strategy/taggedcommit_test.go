package strategy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/testutil"
)

func TestTaggedCommit_ReachableTags(t *testing.T) {
	repo := testutil.New(t)
	first := repo.Commit("first")
	repo.Tag("v1.0.0", first)
	tagged := repo.Commit("second")
	repo.Tag("1.0.3", tagged)
	repo.Tag("not-a-version", tagged)
	repo.Commits(5)
	f := setup(t, repo)

	bvs, err := NewTaggedCommitStrategy(f.store).GetBaseVersions(f.ctx, f.ec, true)
	require.NoError(t, err)
	require.Equal(t, []string{"1.0.3", "1.0.0"}, versions(bvs))
	require.True(t, bvs[0].ShouldIncrement)
	require.Equal(t, tagged, bvs[0].BaseVersionSource.Sha)
	require.Equal(t, "Git tag '1.0.3'", bvs[0].Source)
	require.NotNil(t, bvs[0].Explanation)
}

func TestTaggedCommit_TagOnCurrentCommit(t *testing.T) {
	repo := testutil.New(t)
	repo.Tag("1.0.0", repo.Commit("first"))
	head := repo.Commit("second")
	repo.Tag("1.1.0", head)

	f := setup(t, repo)
	bvs, err := NewTaggedCommitStrategy(f.store).GetBaseVersions(f.ctx, f.ec, false)
	require.NoError(t, err)
	require.Equal(t, []string{"1.1.0"}, versions(bvs), "only tags on HEAD are proposed")
	require.False(t, bvs[0].ShouldIncrement)

	repo.Branch("develop")
	f = setup(t, repo)
	bvs, err = NewTaggedCommitStrategy(f.store).GetBaseVersions(f.ctx, f.ec, false)
	require.NoError(t, err)
	require.Equal(t, []string{"1.1.0"}, versions(bvs))
	require.True(t, bvs[0].ShouldIncrement, "develop increments past a tag on HEAD")
}

func TestTaggedCommit_TagSelection(t *testing.T) {
	repo := testutil.New(t)
	repo.Tag("1.0.0", repo.Commit("first"))
	repo.Tag("0.9.0", repo.Commit("second"))
	repo.Commit("third")

	f := setup(t, repo)
	bvs, err := NewTaggedCommitStrategy(f.store).GetBaseVersions(f.ctx, f.ec, false)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"1.0.0", "0.9.0"}, versions(bvs))

	f = setup(t, repo, &config.Config{TagSelection: ptr(config.TagSelectionLast)})
	bvs, err = NewTaggedCommitStrategy(f.store).GetBaseVersions(f.ctx, f.ec, false)
	require.NoError(t, err)
	require.Equal(t, []string{"0.9.0"}, versions(bvs))
}

func TestTaggedCommit_IgnoresTagsOffBranch(t *testing.T) {
	repo := testutil.New(t)
	repo.Commit("first")
	repo.Branch("feature/x")
	repo.Tag("5.0.0", repo.Commit("feature work"))
	repo.Checkout("main")
	repo.Commit("main work")

	f := setup(t, repo)
	bvs, err := NewTaggedCommitStrategy(f.store).GetBaseVersions(f.ctx, f.ec, false)
	require.NoError(t, err)
	require.Empty(t, bvs)
}

func TestTaggedCommit_TrackMergeTarget(t *testing.T) {
	repo := testutil.New(t)
	repo.Commit("first")
	repo.Branch("develop")
	merged := repo.Commit("develop work")
	repo.Checkout("main")
	repo.Tag("1.1.0", repo.Merge("develop"))
	repo.Checkout("develop")
	repo.Commit("more develop work")

	f := setup(t, repo)
	require.True(t, f.ec.TrackMergeTarget)
	bvs, err := NewTaggedCommitStrategy(f.store).GetBaseVersions(f.ctx, f.ec, false)
	require.NoError(t, err)
	require.Equal(t, []string{"1.1.0"}, versions(bvs))
	require.True(t, bvs[0].ShouldIncrement)
	require.Equal(t, merged, bvs[0].BaseVersionSource.Sha)

	f.ec.TrackMergeTarget = false
	bvs, err = NewTaggedCommitStrategy(f.store).GetBaseVersions(f.ctx, f.ec, false)
	require.NoError(t, err)
	require.Empty(t, bvs)
}
