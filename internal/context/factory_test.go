package context

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/testutil"
)

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.NewBuilder().Build()
	require.NoError(t, err)
	return cfg
}

func newContext(t *testing.T, repo *testutil.TestRepo, opts Options) *GitVersionContext {
	t.Helper()
	store := git.NewRepositoryStore(repo.Repository())
	ctx, err := NewContext(store, defaultConfig(t), opts)
	require.NoError(t, err)
	return ctx
}

func TestNewContext_Head(t *testing.T) {
	repo := testutil.New(t)
	tip := repo.Commits(3)

	ctx := newContext(t, repo, Options{})
	require.Equal(t, "main", ctx.CurrentBranch.FriendlyName())
	require.Equal(t, tip, ctx.CurrentCommit.Sha)
	require.False(t, ctx.IsCurrentCommitTagged)
	require.False(t, ctx.IsShallow)
	require.NotNil(t, ctx.Log)
	require.Equal(t, config.DefaultTagPrefix, ctx.TagPrefix())
}

func TestNewContext_TargetBranchAndCommit(t *testing.T) {
	repo := testutil.New(t)
	first := repo.Commit("first")
	repo.Commit("second")
	repo.Branch("develop")
	repo.Commit("third")
	repo.Checkout("main")

	ctx := newContext(t, repo, Options{TargetBranch: "develop"})
	require.Equal(t, "develop", ctx.CurrentBranch.FriendlyName())
	require.Equal(t, repo.BranchTip("develop"), ctx.CurrentCommit.Sha)

	ctx = newContext(t, repo, Options{TargetBranch: "main", CommitID: first})
	require.Equal(t, first, ctx.CurrentCommit.Sha)

	store := git.NewRepositoryStore(repo.Repository())
	_, err := NewContext(store, defaultConfig(t), Options{TargetBranch: "nope"})
	require.Error(t, err)
}

func TestNewContext_TaggedCommit(t *testing.T) {
	repo := testutil.New(t)
	sha := repo.Commits(2)
	repo.Tag("v1.2.0", sha)
	repo.Tag("1.1.0", sha)

	ctx := newContext(t, repo, Options{})
	require.True(t, ctx.IsCurrentCommitTagged)
	require.Equal(t, "1.2.0", ctx.CurrentCommitTaggedVersion.SemVer())
}

func TestNewContext_DetachedHeadUsesDeclarationOrder(t *testing.T) {
	repo := testutil.New(t)
	repo.Commits(2)
	sha := repo.HeadSha()
	repo.CreateBranch("feature/login", sha)
	repo.CreateBranch("develop", sha)
	repo.Commit("main moves on")
	repo.CheckoutDetached(sha)

	ctx := newContext(t, repo, Options{})
	require.Equal(t, "develop", ctx.CurrentBranch.FriendlyName(), "develop is declared before feature")
	require.Equal(t, sha, ctx.CurrentCommit.Sha)
}

func TestNewContext_DetachedHeadFallsBackToContainingBranch(t *testing.T) {
	repo := testutil.New(t)
	first := repo.Commit("first")
	repo.Commit("second")
	repo.CheckoutDetached(first)

	ctx := newContext(t, repo, Options{})
	require.Equal(t, "main", ctx.CurrentBranch.FriendlyName())
	require.Equal(t, first, ctx.CurrentCommit.Sha)
}

func TestPickBestBranch(t *testing.T) {
	cfg := defaultConfig(t)
	tip := git.Commit{Sha: "abc"}
	local := func(name string) git.Branch {
		return git.Branch{Name: git.NewBranchReferenceName(name), Tip: &tip}
	}
	remote := func(name string) git.Branch {
		return git.Branch{Name: git.NewReferenceName("refs/remotes/origin/" + name), Tip: &tip, IsRemote: true}
	}

	tests := []struct {
		name     string
		branches []git.Branch
		want     string
	}{
		{"declaration order", []git.Branch{local("feature/x"), local("release/1.0.0"), local("main")}, "main"},
		{"local before remote", []git.Branch{remote("main"), local("main")}, "main"},
		{"name breaks ties", []git.Branch{local("feature/b"), local("feature/a")}, "feature/a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pickBestBranch(tt.branches, cfg)
			require.True(t, ok)
			require.Equal(t, tt.want, got.FriendlyName())
			require.False(t, got.IsRemote)
		})
	}

	_, ok := pickBestBranch(nil, cfg)
	require.False(t, ok)
}
