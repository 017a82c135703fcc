package strategy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/branching"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/context"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

type fixture struct {
	ctx   *context.GitVersionContext
	ec    config.EffectiveConfiguration
	store *git.RepositoryStore
}

// setup resolves the context and effective configuration of the checked
// out branch.
func setup(t *testing.T, repo *testutil.TestRepo, overrides ...*config.Config) fixture {
	t.Helper()
	b := config.NewBuilder()
	for _, o := range overrides {
		b.Add(o)
	}
	cfg, err := b.Build()
	require.NoError(t, err)

	store := git.NewRepositoryStore(repo.Repository())
	ctx, err := context.NewContext(store, cfg, context.Options{})
	require.NoError(t, err)

	effective, err := branching.NewResolver(store, cfg, nil).GetEffectiveConfigurations(ctx.CurrentBranch)
	require.NoError(t, err)
	require.NotEmpty(t, effective)
	return fixture{ctx: ctx, ec: effective[0].Configuration, store: store}
}

func versions(bvs []BaseVersion) []string {
	out := make([]string, len(bvs))
	for i, bv := range bvs {
		out[i] = bv.SemanticVersion.SemVer()
	}
	return out
}
