package trunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/branching"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/context"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/semver"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

// analyzeFeat treats "feat" commits as minor and "break" commits as major.
func analyzeFeat(c git.Commit, _ config.EffectiveConfiguration) semver.VersionField {
	switch {
	case strings.HasPrefix(c.Message, "break"):
		return semver.VersionFieldMajor
	case strings.HasPrefix(c.Message, "feat"):
		return semver.VersionFieldMinor
	}
	return semver.VersionFieldNone
}

type fixture struct {
	ctx    *context.GitVersionContext
	ec     config.EffectiveConfiguration
	engine *Engine
}

func newFixture(t *testing.T, repo *testutil.TestRepo, mode semver.VersioningMode) fixture {
	t.Helper()
	cfg, err := config.NewBuilder().Add(&config.Config{Mode: ptr(mode)}).Build()
	require.NoError(t, err)

	store := git.NewRepositoryStore(repo.Repository())
	ctx, err := context.NewContext(store, cfg, context.Options{})
	require.NoError(t, err)
	resolver := branching.NewResolver(store, cfg, nil)
	effective, err := resolver.GetEffectiveConfigurations(ctx.CurrentBranch)
	require.NoError(t, err)
	require.NotEmpty(t, effective)

	return fixture{
		ctx:    ctx,
		ec:     effective[0].Configuration,
		engine: NewEngine(store, cfg, resolver, analyzeFeat),
	}
}

func (f fixture) calculate(t *testing.T) Result {
	t.Helper()
	r, err := f.engine.Calculate(f.ctx, f.ec, true)
	require.NoError(t, err)
	return r
}

func mustParse(t *testing.T, s string) semver.SemanticVersion {
	t.Helper()
	v, err := semver.Parse(s, "")
	require.NoError(t, err)
	return v
}
