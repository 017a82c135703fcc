// Package semver holds the immutable version value types used by every
// calculation stage: the version itself, its pre-release label, its build
// metadata and the enumerations that drive incrementing.
package semver

import (
	"strconv"
	"strings"
)

// SemanticVersion is a Major.Minor.Patch triple with an optional
// pre-release label and build metadata. Values are never mutated in place.
type SemanticVersion struct {
	Major         int64
	Minor         int64
	Patch         int64
	PreReleaseTag PreReleaseTag
	BuildMetaData BuildMetaData
}

// Empty is 0.0.0 with no label and no metadata.
var Empty = SemanticVersion{}

// CompareTo orders versions by core triple, then pre-release tag.
// Build metadata never takes part in ordering.
func (v SemanticVersion) CompareTo(other SemanticVersion) int {
	if c := v.CompareCore(other); c != 0 {
		return c
	}
	return v.PreReleaseTag.CompareTo(other.PreReleaseTag)
}

// CompareCore orders versions by Major.Minor.Patch only.
func (v SemanticVersion) CompareCore(other SemanticVersion) int {
	switch {
	case v.Major != other.Major:
		return cmpInt(v.Major, other.Major)
	case v.Minor != other.Minor:
		return cmpInt(v.Minor, other.Minor)
	default:
		return cmpInt(v.Patch, other.Patch)
	}
}

// IsGreaterThan reports whether v sorts strictly after other.
func (v SemanticVersion) IsGreaterThan(other SemanticVersion) bool {
	return v.CompareTo(other) > 0
}

// Equal compares core, label and number. Metadata is ignored.
func (v SemanticVersion) Equal(other SemanticVersion) bool {
	return v.CompareTo(other) == 0 && v.PreReleaseTag.Name == other.PreReleaseTag.Name
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// IsPreRelease reports whether the version carries a pre-release tag.
func (v SemanticVersion) IsPreRelease() bool {
	return v.PreReleaseTag.HasTag()
}

// Core returns the version stripped of label and metadata.
func (v SemanticVersion) Core() SemanticVersion {
	return SemanticVersion{Major: v.Major, Minor: v.Minor, Patch: v.Patch}
}

// IncrementField bumps one core field, zeroes the lower ones and drops any
// pre-release tag and metadata. VersionFieldNone returns v untouched.
func (v SemanticVersion) IncrementField(field VersionField) SemanticVersion {
	switch field {
	case VersionFieldMajor:
		return SemanticVersion{Major: v.Major + 1}
	case VersionFieldMinor:
		return SemanticVersion{Major: v.Major, Minor: v.Minor + 1}
	case VersionFieldPatch:
		return SemanticVersion{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	default:
		return v
	}
}

// Increment applies a base-version increment. A version already carrying a
// pre-release tag is heading towards that release, so only its pre-release
// number moves. A stable version has the requested field bumped.
func (v SemanticVersion) Increment(field VersionField) SemanticVersion {
	if field == VersionFieldNone {
		return v
	}
	if v.PreReleaseTag.HasTag() {
		return v.WithPreReleaseTag(v.PreReleaseTag.Next())
	}
	return v.IncrementField(field)
}

// IncrementLabelled is the trunk fold step. When the version is a pre-release
// and force is false, the counter is bumped, or restarted at 1 under a new
// label. Otherwise the core field is bumped and the label (if any) starts at 1.
// A stable version asked for a label without any field bump moves to the next
// patch so the labelled result still sorts below the next release.
func (v SemanticVersion) IncrementLabelled(field VersionField, label *string, force bool) SemanticVersion {
	if v.PreReleaseTag.HasTag() && !force {
		if label != nil && !strings.EqualFold(*label, v.PreReleaseTag.Name) {
			if *label == "" {
				return v.Core()
			}
			return v.Core().WithPreReleaseTag(NewPreReleaseTag(*label, 1))
		}
		return v.WithPreReleaseTag(v.PreReleaseTag.Next())
	}

	labelled := label != nil && *label != ""
	next := v
	switch {
	case field != VersionFieldNone:
		next = v.Core().IncrementField(field)
	case labelled && !v.PreReleaseTag.HasTag():
		next = v.Core().IncrementField(VersionFieldPatch)
	default:
		next = v.Core()
	}
	if labelled {
		return next.WithPreReleaseTag(NewPreReleaseTag(*label, 1))
	}
	return next
}

// WithPreReleaseTag returns a copy carrying tag.
func (v SemanticVersion) WithPreReleaseTag(tag PreReleaseTag) SemanticVersion {
	v.PreReleaseTag = tag
	return v
}

// WithBuildMetaData returns a copy carrying meta.
func (v SemanticVersion) WithBuildMetaData(meta BuildMetaData) SemanticVersion {
	v.BuildMetaData = meta
	return v
}

// MajorMinorPatch renders "1.2.3".
func (v SemanticVersion) MajorMinorPatch() string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(v.Major, 10))
	b.WriteByte('.')
	b.WriteString(strconv.FormatInt(v.Minor, 10))
	b.WriteByte('.')
	b.WriteString(strconv.FormatInt(v.Patch, 10))
	return b.String()
}

// SemVer renders "1.2.3" or "1.2.3-beta.4".
func (v SemanticVersion) SemVer() string {
	return joinNonEmpty(v.MajorMinorPatch(), "-", v.PreReleaseTag.String())
}

// FullSemVer renders SemVer plus the commit count, e.g. "1.2.3-beta.4+5".
func (v SemanticVersion) FullSemVer() string {
	return joinNonEmpty(v.SemVer(), "+", v.BuildMetaData.String())
}

// LegacySemVer renders the dotless pre-release form, e.g. "1.2.3-beta4".
func (v SemanticVersion) LegacySemVer() string {
	return joinNonEmpty(v.MajorMinorPatch(), "-", v.PreReleaseTag.Legacy())
}

// LegacySemVerPadded renders e.g. "1.2.3-beta0004".
func (v SemanticVersion) LegacySemVerPadded(pad int) string {
	return joinNonEmpty(v.MajorMinorPatch(), "-", v.PreReleaseTag.LegacyPadded(pad))
}

// InformationalVersion renders SemVer plus full metadata,
// e.g. "1.2.3-beta.4+5.Branch.main.Sha.abc".
func (v SemanticVersion) InformationalVersion() string {
	return joinNonEmpty(v.SemVer(), "+", v.BuildMetaData.FullString())
}

func (v SemanticVersion) String() string {
	return v.SemVer()
}

func joinNonEmpty(head, sep, tail string) string {
	if tail == "" {
		return head
	}
	return head + sep + tail
}

// Max returns the highest of vs, or nil when vs is empty.
// The first of several equal versions wins.
func Max(vs []SemanticVersion) *SemanticVersion {
	var best *SemanticVersion
	for i := range vs {
		if best == nil || vs[i].CompareTo(*best) > 0 {
			best = &vs[i]
		}
	}
	return best
}
