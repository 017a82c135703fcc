package strategy

import (
	"strings"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/context"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
)

// VersionInBranchNameStrategy returns a version from the branch name for release branches.
type VersionInBranchNameStrategy struct{}

// NewVersionInBranchNameStrategy creates a new VersionInBranchNameStrategy.
func NewVersionInBranchNameStrategy() *VersionInBranchNameStrategy {
	return &VersionInBranchNameStrategy{}
}

func (s *VersionInBranchNameStrategy) Name() string { return "VersionInBranchName" }

func (s *VersionInBranchNameStrategy) GetBaseVersions(
	ctx *context.GitVersionContext,
	ec config.EffectiveConfiguration,
	explain bool,
) ([]BaseVersion, error) {
	bv, ok := s.getBaseVersionForBranch(ctx, ec, ctx.CurrentBranch, explain)
	if !ok {
		return nil, nil
	}
	return []BaseVersion{bv}, nil
}

// getBaseVersionForBranch extracts the version from a release branch name.
// Also called by TrackReleaseBranchesStrategy for each release branch.
func (s *VersionInBranchNameStrategy) getBaseVersionForBranch(
	ctx *context.GitVersionContext,
	ec config.EffectiveConfiguration,
	branch git.Branch,
	explain bool,
) (BaseVersion, bool) {
	var exp *Explanation
	if explain {
		exp = NewExplanation(s.Name())
	}

	branchName := branch.ConfigName()
	if !ctx.FullConfiguration.IsReleaseBranch(branchName) {
		exp.Addf("branch %q is not a release branch, skipping", branchName)
		return BaseVersion{}, false
	}

	ver, ok := git.ExtractVersionFromBranch(branchName, ec.TagPrefix)
	if !ok {
		exp.Addf("no version found in branch name %q", branchName)
		return BaseVersion{}, false
	}

	branchNameOverride := computeBranchNameOverride(branchName, ec.TagPrefix)
	exp.Addf("branch %q -> version %s, override=%q", branchName, ver.SemVer(), branchNameOverride)

	return BaseVersion{
		Source:             "Version in branch name",
		ShouldIncrement:    false,
		SemanticVersion:    ver,
		BranchNameOverride: branchNameOverride,
		Explanation:        exp,
	}, true
}

// computeBranchNameOverride strips the version segment from the branch
// name: "release/2.0.0" and "release-2.0.0" both become "release".
func computeBranchNameOverride(branchName, tagPrefix string) string {
	var kept []string
	for _, part := range strings.Split(branchName, "/") {
		if _, ok := git.ExtractVersionFromBranch(part, tagPrefix); !ok {
			kept = append(kept, part)
			continue
		}
		if head, _, found := strings.Cut(part, "-"); found {
			if _, isVersion := git.ExtractVersionFromBranch(head, tagPrefix); !isVersion {
				kept = append(kept, head)
			}
		}
	}
	return strings.Join(kept, "/")
}
