package calculator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/branching"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/context"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/semver"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/strategy"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

type env struct {
	cfg      *config.Config
	store    *git.RepositoryStore
	ctx      *context.GitVersionContext
	resolver *branching.Resolver
}

// newEnv builds the calculation inputs for the checked out branch.
func newEnv(t *testing.T, repo *testutil.TestRepo, overrides ...*config.Config) env {
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
	return env{cfg: cfg, store: store, ctx: ctx, resolver: branching.NewResolver(store, cfg, nil)}
}

func (e env) effective(t *testing.T) config.EffectiveConfiguration {
	t.Helper()
	effective, err := e.resolver.GetEffectiveConfigurations(e.ctx.CurrentBranch)
	require.NoError(t, err)
	require.NotEmpty(t, effective)
	return effective[0].Configuration
}

func (e env) calculator() *NextVersionCalculator {
	return NewNextVersionCalculator(e.store, e.cfg, e.resolver, strategy.AllStrategies(e.store, ""))
}

func (e env) calculate(t *testing.T) VersionResult {
	t.Helper()
	r, err := e.calculator().Calculate(e.ctx, true)
	require.NoError(t, err)
	return r
}

func v(major, minor, patch int64) semver.SemanticVersion {
	return semver.SemanticVersion{Major: major, Minor: minor, Patch: patch}
}
