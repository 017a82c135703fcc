package strategy

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/context"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
)

// TrackReleaseBranchesStrategy serves branches with tracks-release-branches
// set, such as develop: every open release branch proposes the version in
// its name, anchored where it forked from us, and the tags of the main
// branches are proposed as the tagged commit strategy would.
type TrackReleaseBranchesStrategy struct {
	store    *git.RepositoryStore
	tags     *TaggedCommitStrategy
	branches *VersionInBranchNameStrategy
}

func NewTrackReleaseBranchesStrategy(store *git.RepositoryStore) *TrackReleaseBranchesStrategy {
	return &TrackReleaseBranchesStrategy{
		store:    store,
		tags:     NewTaggedCommitStrategy(store),
		branches: NewVersionInBranchNameStrategy(),
	}
}

func (s *TrackReleaseBranchesStrategy) Name() string { return "TrackReleaseBranches" }

func (s *TrackReleaseBranchesStrategy) GetBaseVersions(
	ctx *context.GitVersionContext,
	ec config.EffectiveConfiguration,
	explain bool,
) ([]BaseVersion, error) {
	if !ec.TracksReleaseBranches {
		return nil, nil
	}

	out, err := s.fromReleaseBranches(ctx, ec, explain)
	if err != nil {
		return nil, fmt.Errorf("release branch versions: %w", err)
	}
	released := len(out)

	if out, err = s.fromMainTags(ctx, ec, explain, out); err != nil {
		return nil, fmt.Errorf("main tag versions: %w", err)
	}
	ctx.Logger().Debug("tracked release versions",
		zap.Int("releaseBranches", released),
		zap.Int("mainTags", len(out)-released))
	return out, nil
}

func (s *TrackReleaseBranchesStrategy) fromReleaseBranches(
	ctx *context.GitVersionContext,
	ec config.EffectiveConfiguration,
	explain bool,
) ([]BaseVersion, error) {
	releases, err := s.store.GetReleaseBranches(ctx.FullConfiguration)
	if err != nil {
		return nil, err
	}

	var out []BaseVersion
	for _, release := range releases {
		if release.ConfigName() == ctx.CurrentBranch.ConfigName() {
			continue
		}
		fork, found, err := s.store.FindMergeBase(*release.Tip, ctx.CurrentCommit)
		if err != nil {
			return nil, err
		}
		// Cut from the current commit: nothing of ours to count yet.
		if !found || fork.Sha == ctx.CurrentCommit.Sha {
			continue
		}
		named, ok := s.branches.getBaseVersionForBranch(ctx, ec, release, explain)
		if !ok {
			continue
		}
		named.Explanation.Addf("anchored at fork point %s with %s", fork.ShortSha(), ctx.CurrentBranch.FriendlyName())
		out = append(out, BaseVersion{
			Source:            "Release branch exists -> " + named.Source,
			ShouldIncrement:   true,
			SemanticVersion:   named.SemanticVersion,
			BaseVersionSource: &fork,
			Explanation:       named.Explanation,
		})
	}
	return out, nil
}

// fromMainTags appends the tagged versions of every main branch to out,
// once per tag and commit.
func (s *TrackReleaseBranchesStrategy) fromMainTags(
	ctx *context.GitVersionContext,
	ec config.EffectiveConfiguration,
	explain bool,
	out []BaseVersion,
) ([]BaseVersion, error) {
	mains, err := s.store.GetMainBranches(ctx.FullConfiguration)
	if err != nil {
		return nil, err
	}

	type seenKey struct{ source, sha string }
	seen := make(map[seenKey]bool)
	for _, main := range mains {
		tagged, err := s.tags.getTaggedVersions(ctx, ec, *main.Tip, nil, explain)
		if err != nil {
			return nil, err
		}
		for _, bv := range tagged {
			k := seenKey{bv.Source, bv.BaseVersionSource.Sha}
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, bv)
		}
	}
	return out, nil
}
