package config

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/semver"
)

// Builder layers configuration overrides on top of the defaults.
type Builder struct {
	overrides []*Config
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add queues an override. Later overrides win.
func (b *Builder) Add(override *Config) *Builder {
	if override != nil {
		b.overrides = append(b.overrides, override)
	}
	return b
}

// Build merges defaults and overrides, applies global inheritance and
// validates the result.
func (b *Builder) Build() (*Config, error) {
	cfg := CreateDefaultConfiguration()
	for _, o := range b.overrides {
		mergeConfig(cfg, o)
	}
	finalizeBranches(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeConfig(dst, src *Config) {
	overlay(&dst.Mode, src.Mode)
	overlay(&dst.TagPrefix, src.TagPrefix)
	overlay(&dst.BaseVersion, src.BaseVersion)
	overlay(&dst.NextVersion, src.NextVersion)
	overlay(&dst.Increment, src.Increment)
	overlay(&dst.TagSelection, src.TagSelection)
	overlay(&dst.ContinuousDeploymentFallbackTag, src.ContinuousDeploymentFallbackTag)
	overlay(&dst.CommitMessageIncrementing, src.CommitMessageIncrementing)
	overlay(&dst.CommitMessageConvention, src.CommitMessageConvention)
	overlay(&dst.MajorVersionBumpMessage, src.MajorVersionBumpMessage)
	overlay(&dst.MinorVersionBumpMessage, src.MinorVersionBumpMessage)
	overlay(&dst.PatchVersionBumpMessage, src.PatchVersionBumpMessage)
	overlay(&dst.NoBumpMessage, src.NoBumpMessage)
	overlay(&dst.CommitDateFormat, src.CommitDateFormat)
	overlay(&dst.TagPreReleaseWeight, src.TagPreReleaseWeight)
	overlay(&dst.LegacySemVerPadding, src.LegacySemVerPadding)
	overlay(&dst.BuildMetaDataPadding, src.BuildMetaDataPadding)
	overlay(&dst.CommitsSinceVersionSourcePadding, src.CommitsSinceVersionSourcePadding)

	dst.Branches = overlayBranches(dst.Branches, src.Branches)

	if len(src.MergeMessageFormats) > 0 {
		if dst.MergeMessageFormats == nil {
			dst.MergeMessageFormats = make(map[string]string, len(src.MergeMessageFormats))
		}
		for k, v := range src.MergeMessageFormats {
			dst.MergeMessageFormats[k] = v
		}
	}

	overlay(&dst.Ignore.CommitsBefore, src.Ignore.CommitsBefore)
	if src.Ignore.Sha != nil {
		dst.Ignore.Sha = append([]string(nil), src.Ignore.Sha...)
	}
}

// finalizeBranches pushes global mode and commit-message settings into
// branches that leave them unset, and expands is-source-branch-for.
// develop defaults to ContinuousDeployment unless the repository runs a
// trunk mode. The increment is not copied; an unset branch increment is
// resolved against the source branch.
func finalizeBranches(cfg *Config) {
	for _, nb := range cfg.Branches {
		bc := nb.Config
		if bc.Mode == nil && cfg.Mode != nil {
			mode := *cfg.Mode
			if nb.Name == "develop" && !mode.IsTrunk() {
				mode = semver.VersioningModeContinuousDeployment
			}
			bc.Mode = &mode
		}
		if bc.CommitMessageIncrementing == nil && cfg.CommitMessageIncrementing != nil {
			overlay(&bc.CommitMessageIncrementing, cfg.CommitMessageIncrementing)
		}
	}

	for _, nb := range cfg.Branches {
		if nb.Config.IsSourceBranchFor == nil {
			continue
		}
		for _, target := range *nb.Config.IsSourceBranchFor {
			tc, ok := cfg.Branches.Get(target)
			if !ok {
				continue
			}
			var sources []string
			if tc.SourceBranches != nil {
				sources = *tc.SourceBranches
			}
			if !slices.Contains(sources, nb.Name) {
				sources = append(sources, nb.Name)
			}
			tc.SourceBranches = &sources
		}
	}
}

func validate(cfg *Config) error {
	if cfg.TagPrefix != nil {
		if _, err := regexp.Compile(*cfg.TagPrefix); err != nil {
			return &Error{Key: "tag-prefix", Err: err}
		}
	}
	if cfg.BaseVersion != nil {
		if _, err := semver.Parse(*cfg.BaseVersion, ""); err != nil {
			return &Error{Key: "base-version", Err: err}
		}
	}
	if cfg.NextVersion != nil && *cfg.NextVersion != "" {
		if _, err := semver.Parse(*cfg.NextVersion, ""); err != nil {
			return &Error{Key: "next-version", Err: err}
		}
	}
	for _, key := range []struct {
		name string
		val  *string
	}{
		{"major-version-bump-message", cfg.MajorVersionBumpMessage},
		{"minor-version-bump-message", cfg.MinorVersionBumpMessage},
		{"patch-version-bump-message", cfg.PatchVersionBumpMessage},
		{"no-bump-message", cfg.NoBumpMessage},
	} {
		if key.val == nil {
			continue
		}
		if _, err := regexp.Compile(*key.val); err != nil {
			return &Error{Key: key.name, Err: err}
		}
	}
	for name, format := range cfg.MergeMessageFormats {
		if _, err := regexp.Compile(format); err != nil {
			return &Error{Key: "merge-message-formats." + name, Err: err}
		}
	}

	for _, nb := range cfg.Branches {
		key := "branches." + nb.Name
		bc := nb.Config
		if bc.Regex == nil {
			return &Error{Key: key + ".regex", Err: fmt.Errorf("missing")}
		}
		if _, err := regexp.Compile(*bc.Regex); err != nil {
			return &Error{Key: key + ".regex", Err: err}
		}
		if bc.LabelNumberPattern != nil {
			re, err := regexp.Compile(*bc.LabelNumberPattern)
			if err != nil {
				return &Error{Key: key + ".label-number-pattern", Err: err}
			}
			if re.SubexpIndex("number") < 0 {
				return &Error{Key: key + ".label-number-pattern", Err: fmt.Errorf("needs a named group \"number\"")}
			}
		}
		if bc.SourceBranches != nil {
			for _, s := range *bc.SourceBranches {
				if _, ok := cfg.Branches.Get(s); !ok {
					return &Error{Key: key + ".source-branches", Err: fmt.Errorf("unknown branch %q", s)}
				}
			}
		}
	}
	return nil
}
