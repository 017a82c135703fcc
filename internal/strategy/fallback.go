package strategy

import (
	"errors"
	"fmt"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/context"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/semver"
)

var defaultBaseVersion = semver.SemanticVersion{Minor: 1}

// FallbackStrategy proposes the configured base-version, anchored at the
// oldest commit of the current history, so every branch has a candidate.
type FallbackStrategy struct {
	store *git.RepositoryStore
}

func NewFallbackStrategy(store *git.RepositoryStore) *FallbackStrategy {
	return &FallbackStrategy{store: store}
}

func (s *FallbackStrategy) Name() string { return "Fallback" }

func (s *FallbackStrategy) GetBaseVersions(
	ctx *context.GitVersionContext,
	ec config.EffectiveConfiguration,
	explain bool,
) ([]BaseVersion, error) {
	if ctx.CurrentCommit.IsEmpty() {
		return nil, errors.New("no commits found on the current branch")
	}
	anchor, err := s.store.GetBaseVersionSource(ctx.CurrentCommit)
	if err != nil {
		return nil, fmt.Errorf("finding root commit: %w", err)
	}

	ver, parsed := semver.TryParse(ec.BaseVersion, "")
	if !parsed {
		ver = defaultBaseVersion
	}

	var exp *Explanation
	if explain {
		exp = NewExplanation(s.Name())
		if !parsed && ec.BaseVersion != "" {
			exp.Addf("base-version %q is not a version", ec.BaseVersion)
		}
		where := "root commit"
		if ctx.IsShallow {
			where = "oldest fetched commit"
		}
		exp.Addf("%s anchored at %s %s", ver.SemVer(), where, anchor.ShortSha())
	}

	return []BaseVersion{{
		Source:            "Fallback base version",
		SemanticVersion:   ver,
		BaseVersionSource: &anchor,
		Explanation:       exp,
	}}, nil
}
