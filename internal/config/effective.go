package config

import (
	"time"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/semver"
)

// EffectiveConfiguration is the flat configuration one branch is versioned
// with. Every field holds a concrete value; Increment is never Inherit.
type EffectiveConfiguration struct {
	// Repository-wide settings.
	TagPrefix                        string
	BaseVersion                      string
	NextVersion                      string
	TagSelection                     TagSelection
	ContinuousDeploymentFallbackTag  string
	CommitMessageConvention          semver.CommitMessageConvention
	MajorVersionBumpMessage          string
	MinorVersionBumpMessage          string
	PatchVersionBumpMessage          string
	NoBumpMessage                    string
	CommitDateFormat                 string
	TagPreReleaseWeight              int64
	LegacySemVerPadding              int
	BuildMetaDataPadding             int
	CommitsSinceVersionSourcePadding int
	IgnoreCommitsBefore              *time.Time
	IgnoreSha                        []string
	MergeMessageFormats              map[string]string

	// Branch settings.
	BranchName                              string
	BranchRegex                             string
	Increment                               semver.IncrementStrategy
	Mode                                    semver.VersioningMode
	Label                                   string
	LabelNumberPattern                      string
	SourceBranches                          []string
	IsMainBranch                            bool
	IsReleaseBranch                         bool
	TracksReleaseBranches                   bool
	TrackMergeTarget                        bool
	TrackMergeMessage                       bool
	PreventIncrementOfMergedBranch          bool
	PreventIncrementWhenBranchMerged        bool
	PreventIncrementWhenCurrentCommitTagged bool
	CommitMessageIncrementing               semver.CommitMessageIncrementMode
	PreReleaseWeight                        int64
}

// NewEffectiveConfiguration flattens cfg and a resolved branch
// configuration. name is the branch configuration key.
func NewEffectiveConfiguration(cfg *Config, name string, bc *BranchConfig) EffectiveConfiguration {
	if bc == nil {
		bc = &BranchConfig{}
	}
	globalMode := deref(cfg.Mode, semver.VersioningModeContinuousDelivery)
	globalMessages := deref(cfg.CommitMessageIncrementing, semver.CommitMessageIncrementEnabled)

	ec := EffectiveConfiguration{
		TagPrefix:                        deref(cfg.TagPrefix, DefaultTagPrefix),
		BaseVersion:                      deref(cfg.BaseVersion, "0.1.0"),
		NextVersion:                      deref(cfg.NextVersion, ""),
		TagSelection:                     deref(cfg.TagSelection, TagSelectionHighest),
		ContinuousDeploymentFallbackTag:  deref(cfg.ContinuousDeploymentFallbackTag, "ci"),
		CommitMessageConvention:          deref(cfg.CommitMessageConvention, semver.CommitMessageConventionBoth),
		MajorVersionBumpMessage:          deref(cfg.MajorVersionBumpMessage, ""),
		MinorVersionBumpMessage:          deref(cfg.MinorVersionBumpMessage, ""),
		PatchVersionBumpMessage:          deref(cfg.PatchVersionBumpMessage, ""),
		NoBumpMessage:                    deref(cfg.NoBumpMessage, ""),
		CommitDateFormat:                 deref(cfg.CommitDateFormat, "yyyy-MM-dd"),
		TagPreReleaseWeight:              deref(cfg.TagPreReleaseWeight, 60000),
		LegacySemVerPadding:              deref(cfg.LegacySemVerPadding, 4),
		BuildMetaDataPadding:             deref(cfg.BuildMetaDataPadding, 4),
		CommitsSinceVersionSourcePadding: deref(cfg.CommitsSinceVersionSourcePadding, 4),
		IgnoreCommitsBefore:              cfg.Ignore.CommitsBefore,
		IgnoreSha:                        cfg.Ignore.Sha,
		MergeMessageFormats:              cfg.MergeMessageFormats,

		BranchName:                              name,
		BranchRegex:                             deref(bc.Regex, ""),
		Increment:                               deref(bc.Increment, semver.IncrementStrategyNone),
		Mode:                                    deref(bc.Mode, globalMode),
		Label:                                   deref(bc.Label, "{BranchName}"),
		LabelNumberPattern:                      deref(bc.LabelNumberPattern, ""),
		IsMainBranch:                            deref(bc.IsMainBranch, false),
		IsReleaseBranch:                         deref(bc.IsReleaseBranch, false),
		TracksReleaseBranches:                   deref(bc.TracksReleaseBranches, false),
		TrackMergeTarget:                        deref(bc.TrackMergeTarget, false),
		TrackMergeMessage:                       deref(bc.TrackMergeMessage, true),
		PreventIncrementOfMergedBranch:          deref(bc.PreventIncrement.OfMergedBranch, false),
		PreventIncrementWhenBranchMerged:        deref(bc.PreventIncrement.WhenBranchMerged, false),
		PreventIncrementWhenCurrentCommitTagged: deref(bc.PreventIncrement.WhenCurrentCommitTagged, true),
		CommitMessageIncrementing:               deref(bc.CommitMessageIncrementing, globalMessages),
		PreReleaseWeight:                        deref(bc.PreReleaseWeight, 0),
	}
	if ec.Increment == semver.IncrementStrategyInherit {
		ec.Increment = semver.IncrementStrategyNone
	}
	if bc.SourceBranches != nil {
		ec.SourceBranches = append([]string(nil), *bc.SourceBranches...)
	}
	return ec
}

// Ignore returns the ignore rules as an IgnoreConfig.
func (ec EffectiveConfiguration) Ignore() IgnoreConfig {
	return IgnoreConfig{CommitsBefore: ec.IgnoreCommitsBefore, Sha: ec.IgnoreSha}
}

// FormatConfig returns the presentation settings for output variables.
func (ec EffectiveConfiguration) FormatConfig() semver.FormatConfig {
	return semver.FormatConfig{
		Padding:             ec.LegacySemVerPadding,
		CommitDateFormat:    ec.CommitDateFormat,
		PreReleaseWeight:    ec.PreReleaseWeight,
		TagPreReleaseWeight: ec.TagPreReleaseWeight,
	}
}
