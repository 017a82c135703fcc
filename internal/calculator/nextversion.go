package calculator

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/branching"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/context"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/semver"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/strategy"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/trunk"
)

// Path names how a VersionResult was reached.
type Path string

const (
	// PathTagged means the current commit carries the version as a tag.
	PathTagged Path = "tagged"
	// PathStrategies means the base version strategies chose the version.
	PathStrategies Path = "strategies"
	// PathTrunk means the trunk engine folded the version.
	PathTrunk Path = "trunk"
)

// VersionResult holds the calculated version and how it was reached.
type VersionResult struct {
	Version semver.SemanticVersion
	Path    Path
	// Branch is the branch whose configuration ended the inheritance chain.
	Branch                 git.Branch
	EffectiveConfiguration config.EffectiveConfiguration
	BaseVersion            strategy.BaseVersion
	BranchName             string
	CommitsSince           int64
	Candidates             []Candidate
	IncrementExplanation   *IncrementExplanation // nil when explain is false
	PreReleaseSteps        []string              // nil when explain is false
	TrunkSteps             []string              // nil when explain is false
}

// NextVersionCalculator orchestrates the version calculation of one branch.
type NextVersionCalculator struct {
	store    *git.RepositoryStore
	resolver *branching.Resolver
	base     *BaseVersionCalculator
	incr     *IncrementFinder
	meta     *MetadataCalculator
	trunk    *trunk.Engine
}

// NewNextVersionCalculator wires the calculators for one calculation.
func NewNextVersionCalculator(
	store *git.RepositoryStore,
	cfg *config.Config,
	resolver *branching.Resolver,
	strategies []strategy.VersionStrategy,
) *NextVersionCalculator {
	incr := NewIncrementFinder(store)
	return &NextVersionCalculator{
		store:    store,
		resolver: resolver,
		base:     NewBaseVersionCalculator(strategies, incr),
		incr:     incr,
		meta:     NewMetadataCalculator(store),
		trunk:    trunk.NewEngine(store, cfg, resolver, incr.AnalyzeCommit),
	}
}

// Calculate computes the next version of the current branch. Each effective
// configuration is calculated on its own and the highest version wins; the
// first one on ties.
func (c *NextVersionCalculator) Calculate(ctx *context.GitVersionContext, explain bool) (VersionResult, error) {
	effective, err := c.resolver.GetEffectiveConfigurations(ctx.CurrentBranch)
	if err != nil {
		return VersionResult{}, err
	}
	if len(effective) == 0 {
		return VersionResult{}, c.resolver.Unresolvable(ctx.CurrentBranch)
	}

	var best *VersionResult
	for _, e := range effective {
		r, err := c.calculateFor(ctx, e, explain)
		if err != nil {
			return VersionResult{}, err
		}
		if best == nil || r.Version.CompareTo(best.Version) > 0 {
			best = &r
		}
	}
	return *best, nil
}

func (c *NextVersionCalculator) calculateFor(ctx *context.GitVersionContext, e branching.Effective, explain bool) (VersionResult, error) {
	ec := e.Configuration
	ctx.Logger().Debug("calculating with branch configuration",
		zap.String("configuration", ec.BranchName),
		zap.String("from", e.Branch.FriendlyName()),
		zap.String("mode", ec.Mode.String()))

	if r, ok := c.taggedVersion(ctx, e); ok {
		return r, nil
	}
	if ec.Mode.IsTrunk() {
		return c.trunkVersion(ctx, e, explain)
	}

	base, err := c.base.Calculate(ctx, ec, explain)
	if err != nil {
		return VersionResult{}, err
	}
	bv := base.BaseVersion

	ver, steps := c.applyLabel(base.Incremented, ctx, ec, bv.BranchNameOverride, explain)

	meta, err := c.meta.Create(bv.BaseVersionSource, ctx)
	if err != nil {
		return VersionResult{}, err
	}
	ver = ver.WithBuildMetaData(meta)

	if ec.Mode == semver.VersioningModeContinuousDeployment && ver.IsPreRelease() {
		ver = ver.WithPreReleaseTag(semver.NewPreReleaseTag(ver.PreReleaseTag.Name, meta.CommitsSinceVersionSource))
		if explain {
			steps = append(steps, fmt.Sprintf("ContinuousDeployment: pre-release number = %d commits since version source",
				meta.CommitsSinceVersionSource))
		}
	}

	return VersionResult{
		Version:                ver,
		Path:                   PathStrategies,
		Branch:                 e.Branch,
		EffectiveConfiguration: ec,
		BaseVersion:            bv,
		BranchName:             effectiveBranchName(ctx, bv),
		CommitsSince:           meta.CommitsSinceVersionSource,
		Candidates:             base.Candidates,
		IncrementExplanation:   base.Increment.Explanation,
		PreReleaseSteps:        steps,
	}, nil
}

// taggedVersion returns the tag on the current commit when the branch does
// not increment tagged commits. A pre-release tag only counts when its label
// is the branch's.
func (c *NextVersionCalculator) taggedVersion(ctx *context.GitVersionContext, e branching.Effective) (VersionResult, bool) {
	ec := e.Configuration
	if !ctx.IsCurrentCommitTagged || !ec.PreventIncrementWhenCurrentCommitTagged {
		return VersionResult{}, false
	}
	tagged := ctx.CurrentCommitTaggedVersion
	if tagged.IsPreRelease() {
		label := ec.ResolveLabel(ctx.CurrentBranch.ConfigName(), "")
		if !strings.EqualFold(tagged.PreReleaseTag.Name, label) {
			return VersionResult{}, false
		}
	}

	current := ctx.CurrentCommit
	return VersionResult{
		Version:                tagged.WithBuildMetaData(c.meta.Tagged(ctx)),
		Path:                   PathTagged,
		Branch:                 e.Branch,
		EffectiveConfiguration: ec,
		BaseVersion: strategy.BaseVersion{
			Source:            "Tag on current commit",
			SemanticVersion:   tagged,
			BaseVersionSource: &current,
		},
		BranchName: ctx.CurrentBranch.FriendlyName(),
	}, true
}

func (c *NextVersionCalculator) trunkVersion(ctx *context.GitVersionContext, e branching.Effective, explain bool) (VersionResult, error) {
	r, err := c.trunk.Calculate(ctx, e.Configuration, explain)
	if err != nil {
		return VersionResult{}, err
	}
	meta, err := c.meta.Create(r.BaseVersionSource, ctx)
	if err != nil {
		return VersionResult{}, err
	}
	return VersionResult{
		Version:                r.Version.WithBuildMetaData(meta),
		Path:                   PathTrunk,
		Branch:                 e.Branch,
		EffectiveConfiguration: e.Configuration,
		BaseVersion: strategy.BaseVersion{
			Source:            e.Configuration.Mode.String() + " history",
			SemanticVersion:   r.Version,
			BaseVersionSource: r.BaseVersionSource,
		},
		BranchName:   ctx.CurrentBranch.FriendlyName(),
		CommitsSince: meta.CommitsSinceVersionSource,
		TrunkSteps:   r.Steps,
	}, nil
}

// applyLabel moves ver to the branch label. A version already carrying the
// label keeps its number; otherwise the number continues after the highest
// tag of the same version and label, starting at 1.
func (c *NextVersionCalculator) applyLabel(
	ver semver.SemanticVersion,
	ctx *context.GitVersionContext,
	ec config.EffectiveConfiguration,
	override string,
	explain bool,
) (semver.SemanticVersion, []string) {
	var steps []string
	label := ec.ResolveLabel(ctx.CurrentBranch.ConfigName(), override)
	if label == "" && ec.Mode == semver.VersioningModeContinuousDeployment {
		label = ec.ContinuousDeploymentFallbackTag
	}
	if explain {
		steps = append(steps, fmt.Sprintf("branch config label=%q -> %q", ec.Label, label))
	}
	if label == "" {
		return ver, steps
	}
	if ver.IsPreRelease() && strings.EqualFold(ver.PreReleaseTag.Name, label) {
		if explain {
			steps = append(steps, fmt.Sprintf("base version already labelled %s", ver.PreReleaseTag))
		}
		return ver, steps
	}

	number := c.nextPreReleaseNumber(ver, label, ec.TagPrefix)
	if explain {
		steps = append(steps, fmt.Sprintf("%s-%s: number = %d", ver.MajorMinorPatch(), label, number))
	}
	return ver.Core().WithPreReleaseTag(semver.NewPreReleaseTag(label, number)), steps
}

func (c *NextVersionCalculator) nextPreReleaseNumber(ver semver.SemanticVersion, label, tagPrefix string) int64 {
	number := int64(1)
	tags, err := c.store.GetValidVersionTags(tagPrefix, nil)
	if err != nil {
		return number
	}
	for _, vt := range tags {
		v := vt.Version
		if v.CompareCore(ver) != 0 || !strings.EqualFold(v.PreReleaseTag.Name, label) || v.PreReleaseTag.Number == nil {
			continue
		}
		if n := *v.PreReleaseTag.Number + 1; n > number {
			number = n
		}
	}
	return number
}

// effectiveBranchName is the name pre-release labels were derived from.
func effectiveBranchName(ctx *context.GitVersionContext, bv strategy.BaseVersion) string {
	if bv.BranchNameOverride != "" {
		return bv.BranchNameOverride
	}
	return ctx.CurrentBranch.FriendlyName()
}
