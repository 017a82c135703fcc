package trunk

import (
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/semver"
)

// ChildResult is a folded merged iteration as the merge commit that brings
// it in sees it.
type ChildResult struct {
	// Increment is the highest increment since the iteration's last tag.
	Increment    semver.VersionField
	Force        bool
	Alternatives []semver.SemanticVersion
}

// summarize folds the elements of a merged iteration. Tags on a release
// branch become alternatives, so merging a tagged release raises the
// target to at least that release.
func summarize(elements []Element, release bool) ChildResult {
	var r ChildResult
	for _, el := range elements {
		switch e := el.(type) {
		case Operand:
			r.Increment, r.Force = semver.VersionFieldNone, false
			if release {
				r.Alternatives = append(r.Alternatives, e.Version.Core())
			}
		case Operator:
			r.Increment = semver.MaxField(r.Increment, e.Increment)
			r.Force = r.Force || e.Force
			r.Alternatives = append(r.Alternatives, e.Alternatives...)
		}
	}
	return r
}

// accumulator is the running state of the fold over the versioned line.
// TrunkBased applies every operator at once; Mainline collects operators
// and applies the highest increment once per trunk segment. Alternatives
// raise the version when their operator is applied, so later commits
// increment from the raised version. floor is the version the current
// release branch is named after, applied once at the end.
type accumulator struct {
	mode         semver.VersioningMode
	version      semver.SemanticVersion
	source       *git.Commit
	pending      semver.VersionField
	pendingForce bool
	pendingLabel *string
	pendingAlts  []semver.SemanticVersion
	hasPending   bool
	floor        []semver.SemanticVersion
}

func (a *accumulator) apply(el Element) {
	switch e := el.(type) {
	case Operand:
		a.version = e.Version
		a.source = e.Source
		a.clearPending()
	case Operator:
		if a.mode != semver.VersioningModeMainline {
			a.version = raise(a.version.IncrementLabelled(e.Increment, e.Label, e.Force), e.Alternatives)
			return
		}
		if e.Segment {
			a.flush()
		}
		a.pending = semver.MaxField(a.pending, e.Increment)
		a.pendingForce = a.pendingForce || e.Force
		if e.Label != nil {
			a.pendingLabel = e.Label
		}
		a.pendingAlts = append(a.pendingAlts, e.Alternatives...)
		a.hasPending = true
		if e.Segment {
			a.flush()
		}
	}
}

func (a *accumulator) flush() {
	if !a.hasPending {
		return
	}
	a.version = raise(a.version.IncrementLabelled(a.pending, a.pendingLabel, a.pendingForce), a.pendingAlts)
	a.clearPending()
}

func (a *accumulator) clearPending() {
	a.pending = semver.VersionFieldNone
	a.pendingForce = false
	a.pendingLabel = nil
	a.pendingAlts = nil
	a.hasPending = false
}

// result applies what is pending and raises the version to the floor.
func (a *accumulator) result() semver.SemanticVersion {
	a.flush()
	return raise(a.version, a.floor)
}

// raise lifts v to the highest alternative above it, keeping v's
// pre-release tag. Alternatives never lower v.
func raise(v semver.SemanticVersion, alternatives []semver.SemanticVersion) semver.SemanticVersion {
	if alt := semver.Max(alternatives); alt != nil && alt.CompareCore(v) > 0 {
		return alt.Core().WithPreReleaseTag(v.PreReleaseTag)
	}
	return v
}
