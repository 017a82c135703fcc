package config

import "github.com/MyCarrier-DevOps/go-gitversion/internal/semver"

// BranchConfig is the per-branch-family configuration. nil means unset, so
// the value comes from a lower layer or from the source branch.
type BranchConfig struct {
	Regex                     *string                            `yaml:"regex,omitempty"`
	Increment                 *semver.IncrementStrategy          `yaml:"increment,omitempty"`
	Mode                      *semver.VersioningMode             `yaml:"mode,omitempty"`
	Label                     *string                            `yaml:"label,omitempty"`
	LabelNumberPattern        *string                            `yaml:"label-number-pattern,omitempty"`
	SourceBranches            *[]string                          `yaml:"source-branches,omitempty"`
	IsSourceBranchFor         *[]string                          `yaml:"is-source-branch-for,omitempty"`
	IsMainBranch              *bool                              `yaml:"is-main-branch,omitempty"`
	IsReleaseBranch           *bool                              `yaml:"is-release-branch,omitempty"`
	TracksReleaseBranches     *bool                              `yaml:"tracks-release-branches,omitempty"`
	TrackMergeTarget          *bool                              `yaml:"track-merge-target,omitempty"`
	TrackMergeMessage         *bool                              `yaml:"track-merge-message,omitempty"`
	PreventIncrement          PreventIncrement                   `yaml:"prevent-increment,omitempty"`
	CommitMessageIncrementing *semver.CommitMessageIncrementMode `yaml:"commit-message-incrementing,omitempty"`
	PreReleaseWeight          *int64                             `yaml:"pre-release-weight,omitempty"`
}

// PreventIncrement groups the switches that suppress a bump.
type PreventIncrement struct {
	// OfMergedBranch keeps a version taken from a merged branch as-is.
	OfMergedBranch *bool `yaml:"of-merged-branch,omitempty"`
	// WhenBranchMerged ignores the increment a merged branch carries.
	WhenBranchMerged *bool `yaml:"when-branch-merged,omitempty"`
	// WhenCurrentCommitTagged reports a tag on HEAD verbatim.
	WhenCurrentCommitTagged *bool `yaml:"when-current-commit-tagged,omitempty"`
}

// IsZero lets yaml omit an unset block.
func (p PreventIncrement) IsZero() bool {
	return p.OfMergedBranch == nil && p.WhenBranchMerged == nil && p.WhenCurrentCommitTagged == nil
}

func overlay[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

// MergeTo copies every field set on bc into target.
func (bc *BranchConfig) MergeTo(target *BranchConfig) {
	if bc == nil || target == nil {
		return
	}
	overlay(&target.Regex, bc.Regex)
	overlay(&target.Increment, bc.Increment)
	overlay(&target.Mode, bc.Mode)
	overlay(&target.Label, bc.Label)
	overlay(&target.LabelNumberPattern, bc.LabelNumberPattern)
	overlay(&target.SourceBranches, bc.SourceBranches)
	overlay(&target.IsSourceBranchFor, bc.IsSourceBranchFor)
	overlay(&target.IsMainBranch, bc.IsMainBranch)
	overlay(&target.IsReleaseBranch, bc.IsReleaseBranch)
	overlay(&target.TracksReleaseBranches, bc.TracksReleaseBranches)
	overlay(&target.TrackMergeTarget, bc.TrackMergeTarget)
	overlay(&target.TrackMergeMessage, bc.TrackMergeMessage)
	overlay(&target.PreventIncrement.OfMergedBranch, bc.PreventIncrement.OfMergedBranch)
	overlay(&target.PreventIncrement.WhenBranchMerged, bc.PreventIncrement.WhenBranchMerged)
	overlay(&target.PreventIncrement.WhenCurrentCommitTagged, bc.PreventIncrement.WhenCurrentCommitTagged)
	overlay(&target.CommitMessageIncrementing, bc.CommitMessageIncrementing)
	overlay(&target.PreReleaseWeight, bc.PreReleaseWeight)
}

// Clone returns a deep copy.
func (bc *BranchConfig) Clone() *BranchConfig {
	if bc == nil {
		return nil
	}
	out := &BranchConfig{}
	bc.MergeTo(out)
	if bc.SourceBranches != nil {
		s := append([]string(nil), *bc.SourceBranches...)
		out.SourceBranches = &s
	}
	if bc.IsSourceBranchFor != nil {
		s := append([]string(nil), *bc.IsSourceBranchFor...)
		out.IsSourceBranchFor = &s
	}
	return out
}

// Inherit returns bc completed from parent: unset fields come from parent,
// and an Inherit (or unset) increment takes the parent's increment.
func (bc *BranchConfig) Inherit(parent *BranchConfig) *BranchConfig {
	out := parent.Clone()
	if out == nil {
		out = &BranchConfig{}
	}
	inc := out.Increment
	bc.MergeTo(out)
	if bc.Increment == nil || *bc.Increment == semver.IncrementStrategyInherit {
		out.Increment = inc
	}
	return out
}

// IncrementIsInherit reports whether the increment must be resolved from a
// source branch.
func (bc *BranchConfig) IncrementIsInherit() bool {
	return bc.Increment == nil || *bc.Increment == semver.IncrementStrategyInherit
}
