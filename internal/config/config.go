// Package config loads gitversion configuration files, layers them over the
// built-in defaults and resolves the flat view a single branch runs with.
package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/semver"
)

// Config is the repository-wide configuration. Pointer fields distinguish
// "unset" from the zero value so layers can be merged.
type Config struct {
	Mode                             *semver.VersioningMode             `yaml:"mode,omitempty"`
	TagPrefix                        *string                            `yaml:"tag-prefix,omitempty"`
	BaseVersion                      *string                            `yaml:"base-version,omitempty"`
	NextVersion                      *string                            `yaml:"next-version,omitempty"`
	Increment                        *semver.IncrementStrategy          `yaml:"increment,omitempty"`
	TagSelection                     *TagSelection                      `yaml:"tag-selection,omitempty"`
	ContinuousDeploymentFallbackTag  *string                            `yaml:"continuous-delivery-fallback-tag,omitempty"`
	CommitMessageIncrementing        *semver.CommitMessageIncrementMode `yaml:"commit-message-incrementing,omitempty"`
	CommitMessageConvention          *semver.CommitMessageConvention    `yaml:"commit-message-convention,omitempty"`
	MajorVersionBumpMessage          *string                            `yaml:"major-version-bump-message,omitempty"`
	MinorVersionBumpMessage          *string                            `yaml:"minor-version-bump-message,omitempty"`
	PatchVersionBumpMessage          *string                            `yaml:"patch-version-bump-message,omitempty"`
	NoBumpMessage                    *string                            `yaml:"no-bump-message,omitempty"`
	CommitDateFormat                 *string                            `yaml:"commit-date-format,omitempty"`
	TagPreReleaseWeight              *int64                             `yaml:"tag-pre-release-weight,omitempty"`
	LegacySemVerPadding              *int                               `yaml:"legacy-semver-padding,omitempty"`
	BuildMetaDataPadding             *int                               `yaml:"build-metadata-padding,omitempty"`
	CommitsSinceVersionSourcePadding *int                               `yaml:"commits-since-version-source-padding,omitempty"`
	Branches                         Branches                           `yaml:"branches,omitempty"`
	Ignore                           IgnoreConfig                       `yaml:"ignore,omitempty"`
	MergeMessageFormats              map[string]string                  `yaml:"merge-message-formats,omitempty"`
}

// TagSelection decides which reachable tag the tagged-commit strategy proposes.
type TagSelection int

const (
	// TagSelectionHighest proposes every reachable tag; the highest wins.
	TagSelectionHighest TagSelection = iota
	// TagSelectionLast proposes only the most recent tagged commit.
	TagSelectionLast
)

func (t TagSelection) String() string {
	if t == TagSelectionLast {
		return "Last"
	}
	return "Highest"
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *TagSelection) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	switch strings.ToLower(s) {
	case "highest":
		*t = TagSelectionHighest
	case "last", "latest":
		*t = TagSelectionLast
	default:
		return fmt.Errorf("unknown tag selection %q (want Highest or Last)", s)
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (t TagSelection) MarshalYAML() (any, error) { return t.String(), nil }

// ReleaseBranches returns the configurations flagged is-release-branch, in
// declaration order.
func (c *Config) ReleaseBranches() Branches {
	var out Branches
	for _, b := range c.Branches {
		if b.Config.IsReleaseBranch != nil && *b.Config.IsReleaseBranch {
			out = append(out, b)
		}
	}
	return out
}

// MainBranches returns the configurations flagged is-main-branch, in
// declaration order.
func (c *Config) MainBranches() Branches {
	var out Branches
	for _, b := range c.Branches {
		if b.Config.IsMainBranch != nil && *b.Config.IsMainBranch {
			out = append(out, b)
		}
	}
	return out
}

// Marshal renders the configuration as YAML, preserving branch order.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
