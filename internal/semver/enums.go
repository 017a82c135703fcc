package semver

import (
	"fmt"
	"strings"
)

// VersionField names the core component an increment touches. The values
// are ordered so max() picks the most significant bump.
type VersionField int

const (
	VersionFieldNone VersionField = iota
	VersionFieldPatch
	VersionFieldMinor
	VersionFieldMajor
)

var versionFieldNames = []string{"None", "Patch", "Minor", "Major"}

func (f VersionField) String() string { return nameOf(versionFieldNames, int(f)) }

// MaxField returns the more significant of a and b.
func MaxField(a, b VersionField) VersionField {
	if a > b {
		return a
	}
	return b
}

// ParseVersionField accepts the names case-insensitively.
func ParseVersionField(s string) (VersionField, error) {
	i, err := parseName(versionFieldNames, "version field", s)
	return VersionField(i), err
}

// IncrementStrategy is the configured bump for a branch. Inherit defers to
// the branch this one was created from.
type IncrementStrategy int

const (
	IncrementStrategyNone IncrementStrategy = iota
	IncrementStrategyMajor
	IncrementStrategyMinor
	IncrementStrategyPatch
	IncrementStrategyInherit
)

var incrementStrategyNames = []string{"None", "Major", "Minor", "Patch", "Inherit"}

func (s IncrementStrategy) String() string { return nameOf(incrementStrategyNames, int(s)) }

// ParseIncrementStrategy accepts the names case-insensitively.
func ParseIncrementStrategy(s string) (IncrementStrategy, error) {
	i, err := parseName(incrementStrategyNames, "increment strategy", s)
	return IncrementStrategy(i), err
}

// ToVersionField maps a concrete strategy to its field. None and Inherit
// both map to VersionFieldNone.
func (s IncrementStrategy) ToVersionField() VersionField {
	switch s {
	case IncrementStrategyMajor:
		return VersionFieldMajor
	case IncrementStrategyMinor:
		return VersionFieldMinor
	case IncrementStrategyPatch:
		return VersionFieldPatch
	default:
		return VersionFieldNone
	}
}

// VersioningMode picks how pre-release numbers and trunk commits are treated.
type VersioningMode int

const (
	// VersioningModeContinuousDelivery keeps the pre-release number stable
	// until a matching tag is pushed.
	VersioningModeContinuousDelivery VersioningMode = iota
	// VersioningModeContinuousDeployment promotes the commit count into the
	// pre-release number.
	VersioningModeContinuousDeployment
	// VersioningModeMainline folds trunk history and applies the highest
	// pending increment once per trunk segment.
	VersioningModeMainline
	// VersioningModeTrunkBased folds trunk history and bumps on every trunk commit.
	VersioningModeTrunkBased
)

var versioningModeNames = []string{"ContinuousDelivery", "ContinuousDeployment", "Mainline", "TrunkBased"}

func (m VersioningMode) String() string { return nameOf(versioningModeNames, int(m)) }

// IsTrunk reports whether the mode is served by the iteration engine.
func (m VersioningMode) IsTrunk() bool {
	return m == VersioningModeMainline || m == VersioningModeTrunkBased
}

// ParseVersioningMode accepts the names case-insensitively.
func ParseVersioningMode(s string) (VersioningMode, error) {
	i, err := parseName(versioningModeNames, "versioning mode", s)
	return VersioningMode(i), err
}

// CommitMessageIncrementMode says which commits may carry bump directives.
type CommitMessageIncrementMode int

const (
	CommitMessageIncrementEnabled CommitMessageIncrementMode = iota
	CommitMessageIncrementDisabled
	CommitMessageIncrementMergeMessageOnly
)

var commitMessageIncrementNames = []string{"Enabled", "Disabled", "MergeMessageOnly"}

func (m CommitMessageIncrementMode) String() string {
	return nameOf(commitMessageIncrementNames, int(m))
}

// ParseCommitMessageIncrementMode accepts the names case-insensitively.
func ParseCommitMessageIncrementMode(s string) (CommitMessageIncrementMode, error) {
	i, err := parseName(commitMessageIncrementNames, "commit message incrementing", s)
	return CommitMessageIncrementMode(i), err
}

// CommitMessageConvention selects which message grammars are recognised.
type CommitMessageConvention int

const (
	CommitMessageConventionConventionalCommits CommitMessageConvention = iota
	CommitMessageConventionBumpDirective
	CommitMessageConventionBoth
)

var commitMessageConventionNames = []string{"ConventionalCommits", "BumpDirective", "Both"}

func (c CommitMessageConvention) String() string {
	return nameOf(commitMessageConventionNames, int(c))
}

// ParseCommitMessageConvention accepts the names case-insensitively.
func ParseCommitMessageConvention(s string) (CommitMessageConvention, error) {
	i, err := parseName(commitMessageConventionNames, "commit message convention", s)
	return CommitMessageConvention(i), err
}

func nameOf(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return "Unknown"
	}
	return names[i]
}

var nameSeparators = strings.NewReplacer("-", "", "_", "", " ", "")

// parseName matches case-insensitively and ignores separators, so
// "bump-directive" and "BumpDirective" are the same name.
func parseName(names []string, kind, s string) (int, error) {
	want := nameSeparators.Replace(s)
	for i, n := range names {
		if strings.EqualFold(n, want) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q (want one of %s)", kind, s, strings.Join(names, ", "))
}
