package config

import "github.com/MyCarrier-DevOps/go-gitversion/internal/semver"

// DefaultTagPrefix accepts "1.2.3", "v1.2.3" and "V1.2.3".
const DefaultTagPrefix = "[vV]?"

// CreateDefaultConfiguration returns the built-in configuration. Branch
// families are listed most specific first; "unknown" catches the rest.
func CreateDefaultConfiguration() *Config {
	return &Config{
		Mode:                             ptr(semver.VersioningModeContinuousDelivery),
		TagPrefix:                        ptr(DefaultTagPrefix),
		BaseVersion:                      ptr("0.1.0"),
		Increment:                        ptr(semver.IncrementStrategyInherit),
		TagSelection:                     ptr(TagSelectionHighest),
		ContinuousDeploymentFallbackTag:  ptr("ci"),
		CommitMessageIncrementing:        ptr(semver.CommitMessageIncrementEnabled),
		CommitMessageConvention:          ptr(semver.CommitMessageConventionBoth),
		MajorVersionBumpMessage:          ptr(`\+semver:\s?(breaking|major)`),
		MinorVersionBumpMessage:          ptr(`\+semver:\s?(feature|minor)`),
		PatchVersionBumpMessage:          ptr(`\+semver:\s?(fix|patch)`),
		NoBumpMessage:                    ptr(`\+semver:\s?(none|skip)`),
		CommitDateFormat:                 ptr("yyyy-MM-dd"),
		TagPreReleaseWeight:              ptr(int64(60000)),
		LegacySemVerPadding:              ptr(4),
		BuildMetaDataPadding:             ptr(4),
		CommitsSinceVersionSourcePadding: ptr(4),
		Branches:                         defaultBranches(),
	}
}

var allSources = []string{"main", "develop", "release", "feature", "hotfix", "support"}

func defaultBranches() Branches {
	return Branches{
		{Name: "main", Config: &BranchConfig{
			Regex:                 ptr(`^master$|^main$`),
			Increment:             ptr(semver.IncrementStrategyPatch),
			Label:                 ptr(""),
			SourceBranches:        ptr([]string{}),
			IsMainBranch:          ptr(true),
			IsReleaseBranch:       ptr(false),
			TracksReleaseBranches: ptr(false),
			TrackMergeTarget:      ptr(false),
			TrackMergeMessage:     ptr(true),
			PreventIncrement: PreventIncrement{
				OfMergedBranch:          ptr(true),
				WhenBranchMerged:        ptr(false),
				WhenCurrentCommitTagged: ptr(true),
			},
			PreReleaseWeight: ptr(int64(55000)),
		}},
		{Name: "develop", Config: &BranchConfig{
			Regex:                 ptr(`^dev(elop)?(ment)?$`),
			Increment:             ptr(semver.IncrementStrategyMinor),
			Label:                 ptr("unstable"),
			SourceBranches:        ptr([]string{"main"}),
			IsMainBranch:          ptr(false),
			IsReleaseBranch:       ptr(false),
			TracksReleaseBranches: ptr(true),
			TrackMergeTarget:      ptr(true),
			TrackMergeMessage:     ptr(true),
			PreventIncrement: PreventIncrement{
				OfMergedBranch:          ptr(false),
				WhenBranchMerged:        ptr(false),
				WhenCurrentCommitTagged: ptr(false),
			},
			PreReleaseWeight: ptr(int64(0)),
		}},
		{Name: "release", Config: &BranchConfig{
			Regex:                 ptr(`^releases?[/-](?P<BranchName>.+)`),
			Increment:             ptr(semver.IncrementStrategyNone),
			Label:                 ptr("beta"),
			SourceBranches:        ptr([]string{"main", "develop", "support", "release"}),
			IsMainBranch:          ptr(false),
			IsReleaseBranch:       ptr(true),
			TracksReleaseBranches: ptr(false),
			TrackMergeTarget:      ptr(false),
			TrackMergeMessage:     ptr(true),
			PreventIncrement: PreventIncrement{
				OfMergedBranch:          ptr(true),
				WhenBranchMerged:        ptr(false),
				WhenCurrentCommitTagged: ptr(true),
			},
			PreReleaseWeight: ptr(int64(30000)),
		}},
		{Name: "feature", Config: &BranchConfig{
			Regex:                 ptr(`^features?[/-](?P<BranchName>.+)`),
			Increment:             ptr(semver.IncrementStrategyInherit),
			Label:                 ptr("{BranchName}"),
			SourceBranches:        ptr(append([]string(nil), allSources...)),
			IsMainBranch:          ptr(false),
			IsReleaseBranch:       ptr(false),
			TracksReleaseBranches: ptr(false),
			TrackMergeTarget:      ptr(false),
			TrackMergeMessage:     ptr(true),
			PreventIncrement: PreventIncrement{
				OfMergedBranch:          ptr(false),
				WhenBranchMerged:        ptr(false),
				WhenCurrentCommitTagged: ptr(true),
			},
			PreReleaseWeight: ptr(int64(30000)),
		}},
		{Name: "pull-request", Config: &BranchConfig{
			Regex:                 ptr(`^(pull|pull-requests|pr)[/-]`),
			Increment:             ptr(semver.IncrementStrategyInherit),
			Label:                 ptr("PullRequest"),
			LabelNumberPattern:    ptr(`[/-](?P<number>\d+)`),
			SourceBranches:        ptr(append([]string(nil), allSources...)),
			IsMainBranch:          ptr(false),
			IsReleaseBranch:       ptr(false),
			TracksReleaseBranches: ptr(false),
			TrackMergeTarget:      ptr(false),
			TrackMergeMessage:     ptr(true),
			PreventIncrement: PreventIncrement{
				OfMergedBranch:          ptr(false),
				WhenBranchMerged:        ptr(false),
				WhenCurrentCommitTagged: ptr(true),
			},
			PreReleaseWeight: ptr(int64(30000)),
		}},
		{Name: "hotfix", Config: &BranchConfig{
			Regex:                 ptr(`^hotfix(es)?[/-](?P<BranchName>.+)`),
			Increment:             ptr(semver.IncrementStrategyPatch),
			Label:                 ptr("beta"),
			SourceBranches:        ptr([]string{"main", "release", "support", "hotfix"}),
			IsMainBranch:          ptr(false),
			IsReleaseBranch:       ptr(true),
			TracksReleaseBranches: ptr(false),
			TrackMergeTarget:      ptr(false),
			TrackMergeMessage:     ptr(true),
			PreventIncrement: PreventIncrement{
				OfMergedBranch:          ptr(false),
				WhenBranchMerged:        ptr(false),
				WhenCurrentCommitTagged: ptr(true),
			},
			PreReleaseWeight: ptr(int64(30000)),
		}},
		{Name: "support", Config: &BranchConfig{
			Regex:                 ptr(`^support[/-](?P<BranchName>.+)`),
			Increment:             ptr(semver.IncrementStrategyPatch),
			Label:                 ptr(""),
			SourceBranches:        ptr([]string{"main"}),
			IsMainBranch:          ptr(true),
			IsReleaseBranch:       ptr(false),
			TracksReleaseBranches: ptr(false),
			TrackMergeTarget:      ptr(false),
			TrackMergeMessage:     ptr(true),
			PreventIncrement: PreventIncrement{
				OfMergedBranch:          ptr(true),
				WhenBranchMerged:        ptr(false),
				WhenCurrentCommitTagged: ptr(true),
			},
			PreReleaseWeight: ptr(int64(55000)),
		}},
		{Name: fallbackBranch, Config: &BranchConfig{
			Regex:                 ptr(`(?P<BranchName>.+)`),
			Increment:             ptr(semver.IncrementStrategyInherit),
			Label:                 ptr("{BranchName}"),
			SourceBranches:        ptr(append([]string(nil), allSources...)),
			IsMainBranch:          ptr(false),
			IsReleaseBranch:       ptr(false),
			TracksReleaseBranches: ptr(false),
			TrackMergeTarget:      ptr(false),
			TrackMergeMessage:     ptr(true),
			PreventIncrement: PreventIncrement{
				OfMergedBranch:          ptr(false),
				WhenBranchMerged:        ptr(false),
				WhenCurrentCommitTagged: ptr(true),
			},
			PreReleaseWeight: ptr(int64(30000)),
		}},
	}
}
