package strategy

import (
	"fmt"
	"time"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/context"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
)

// TaggedCommitStrategy returns versions from git tags on the current branch.
type TaggedCommitStrategy struct {
	store *git.RepositoryStore
}

// NewTaggedCommitStrategy creates a new TaggedCommitStrategy.
func NewTaggedCommitStrategy(store *git.RepositoryStore) *TaggedCommitStrategy {
	return &TaggedCommitStrategy{store: store}
}

func (s *TaggedCommitStrategy) Name() string { return "TaggedCommit" }

func (s *TaggedCommitStrategy) GetBaseVersions(
	ctx *context.GitVersionContext,
	ec config.EffectiveConfiguration,
	explain bool,
) ([]BaseVersion, error) {
	if ctx.CurrentCommit.IsEmpty() {
		return nil, nil
	}
	results, err := s.getTaggedVersions(ctx, ec, ctx.CurrentCommit, &ctx.CurrentCommit.When, explain)
	if err != nil {
		return nil, err
	}
	if !ec.TrackMergeTarget {
		return results, nil
	}
	merged, err := s.mergeTargetVersions(ctx, ec, explain)
	if err != nil {
		return nil, err
	}
	return append(results, merged...), nil
}

// getTaggedVersions proposes the version tags reachable from tip. Tags on
// commits newer than olderThan are ignored. Also called by
// TrackReleaseBranchesStrategy for main branch tags.
func (s *TaggedCommitStrategy) getTaggedVersions(
	ctx *context.GitVersionContext,
	ec config.EffectiveConfiguration,
	tip git.Commit,
	olderThan *time.Time,
	explain bool,
) ([]BaseVersion, error) {
	versionTags, err := s.store.GetValidVersionTags(ec.TagPrefix, olderThan)
	if err != nil {
		return nil, fmt.Errorf("getting version tags: %w", err)
	}
	if len(versionTags) == 0 {
		return nil, nil
	}

	tagsByCommit := make(map[string][]git.VersionTag)
	for _, vt := range versionTags {
		tagsByCommit[vt.Commit.Sha] = append(tagsByCommit[vt.Commit.Sha], vt)
	}

	commits, err := s.store.GetCommitLog(git.Commit{}, tip)
	if err != nil {
		return nil, fmt.Errorf("getting branch commits: %w", err)
	}

	var all []BaseVersion
	var onCurrent []BaseVersion

	for _, commit := range commits {
		tags, ok := tagsByCommit[commit.Sha]
		if !ok {
			continue
		}
		for _, vt := range tags {
			isCurrent := vt.Commit.Sha == ctx.CurrentCommit.Sha
			shouldIncrement := !isCurrent || !ec.PreventIncrementWhenCurrentCommitTagged

			var bvExp *Explanation
			if explain {
				bvExp = NewExplanation(s.Name())
				bvExp.Addf("tag %s on commit %s -> %s, ShouldIncrement=%t",
					vt.Tag.Name.Friendly, vt.Commit.ShortSha(),
					vt.Version.SemVer(), shouldIncrement)
			}

			c := vt.Commit
			bv := BaseVersion{
				Source:            fmt.Sprintf("Git tag '%s'", vt.Tag.Name.Friendly),
				ShouldIncrement:   shouldIncrement,
				SemanticVersion:   vt.Version,
				BaseVersionSource: &c,
				Explanation:       bvExp,
			}

			all = append(all, bv)
			if isCurrent {
				onCurrent = append(onCurrent, bv)
			}
		}
		// Commits are newest first, so the first tagged commit is the last
		// one tagged.
		if ec.TagSelection == config.TagSelectionLast && len(all) > 0 {
			break
		}
	}

	if len(onCurrent) > 0 {
		return onCurrent, nil
	}
	return all, nil
}

// mergeTargetVersions proposes tags placed on merge commits that brought
// this branch into another one: the merge commit itself is not on this
// branch, but its merged parent is.
func (s *TaggedCommitStrategy) mergeTargetVersions(
	ctx *context.GitVersionContext,
	ec config.EffectiveConfiguration,
	explain bool,
) ([]BaseVersion, error) {
	versionTags, err := s.store.GetValidVersionTags(ec.TagPrefix, &ctx.CurrentCommit.When)
	if err != nil {
		return nil, fmt.Errorf("getting version tags: %w", err)
	}
	history, err := s.store.GetCommitLog(git.Commit{}, ctx.CurrentCommit)
	if err != nil {
		return nil, fmt.Errorf("getting branch commits: %w", err)
	}
	onBranch := make(map[string]git.Commit, len(history))
	for _, c := range history {
		onBranch[c.Sha] = c
	}

	var results []BaseVersion
	for _, vt := range versionTags {
		if _, ok := onBranch[vt.Commit.Sha]; ok || !vt.Commit.IsMerge() {
			continue
		}
		parent, ok := onBranch[vt.Commit.Parents[1]]
		if !ok {
			continue
		}

		var bvExp *Explanation
		if explain {
			bvExp = NewExplanation(s.Name())
			bvExp.Addf("tag %s on merge target %s of commit %s -> %s",
				vt.Tag.Name.Friendly, vt.Commit.ShortSha(), parent.ShortSha(), vt.Version.SemVer())
		}
		p := parent
		results = append(results, BaseVersion{
			Source:            fmt.Sprintf("Git tag '%s' on merge target", vt.Tag.Name.Friendly),
			ShouldIncrement:   true,
			SemanticVersion:   vt.Version,
			BaseVersionSource: &p,
			Explanation:       bvExp,
		})
	}
	return results, nil
}
