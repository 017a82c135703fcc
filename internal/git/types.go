// Package git is the read-only view of a repository the version engine
// works against: commits, branches and tags, a Repository interface with a
// go-git implementation, and RepositoryStore, which answers the
// version-specific questions and memoizes them for one calculation.
package git

import (
	"errors"
	"strings"
	"time"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/semver"
)

const (
	localBranchPrefix          = "refs/heads/"
	remoteTrackingBranchPrefix = "refs/remotes/"
	tagRefPrefix               = "refs/tags/"
)

// ErrCommitNotFound is returned when a commit object is not available,
// typically because the clone is shallow.
var ErrCommitNotFound = errors.New("commit not found")

// Commit is a commit. Parents are referenced by sha only.
type Commit struct {
	Sha     string
	Parents []string
	When    time.Time
	Message string
}

// IsMerge returns true if the commit has more than one parent.
func (c Commit) IsMerge() bool {
	return len(c.Parents) > 1
}

// ShortSha returns the first 7 characters of the SHA.
func (c Commit) ShortSha() string {
	if len(c.Sha) >= 7 {
		return c.Sha[:7]
	}
	return c.Sha
}

// IsEmpty returns true if the commit has no SHA (zero value).
func (c Commit) IsEmpty() bool {
	return c.Sha == ""
}

// Subject is the first line of the message.
func (c Commit) Subject() string {
	subject, _, _ := strings.Cut(c.Message, "\n")
	return strings.TrimSpace(subject)
}

// ReferenceName represents a git reference with canonical and friendly forms.
type ReferenceName struct {
	Canonical     string // e.g., "refs/heads/main"
	Friendly      string // e.g., "main"
	WithoutRemote string // e.g., "main" (strips "origin/" from remote refs)
}

// NewReferenceName creates a ReferenceName from a canonical ref path.
func NewReferenceName(canonical string) ReferenceName {
	friendly := canonical
	withoutRemote := canonical

	switch {
	case strings.HasPrefix(canonical, localBranchPrefix):
		friendly = canonical[len(localBranchPrefix):]
		withoutRemote = friendly
	case strings.HasPrefix(canonical, remoteTrackingBranchPrefix):
		friendly = canonical[len(remoteTrackingBranchPrefix):]
		if idx := strings.Index(friendly, "/"); idx >= 0 {
			withoutRemote = friendly[idx+1:]
		} else {
			withoutRemote = friendly
		}
	case strings.HasPrefix(canonical, tagRefPrefix):
		friendly = canonical[len(tagRefPrefix):]
		withoutRemote = friendly
	}

	return ReferenceName{
		Canonical:     canonical,
		Friendly:      friendly,
		WithoutRemote: withoutRemote,
	}
}

// NewBranchReferenceName creates a ReferenceName for a local branch.
func NewBranchReferenceName(name string) ReferenceName {
	return NewReferenceName(localBranchPrefix + name)
}

// NewTagReferenceName creates a ReferenceName for a tag.
func NewTagReferenceName(name string) ReferenceName {
	return NewReferenceName(tagRefPrefix + name)
}

// IsBranch returns true if this reference is a local branch.
func (r ReferenceName) IsBranch() bool {
	return strings.HasPrefix(r.Canonical, localBranchPrefix)
}

// IsRemoteBranch returns true if this reference is a remote tracking branch.
func (r ReferenceName) IsRemoteBranch() bool {
	return strings.HasPrefix(r.Canonical, remoteTrackingBranchPrefix)
}

// IsTag returns true if this reference is a tag.
func (r ReferenceName) IsTag() bool {
	return strings.HasPrefix(r.Canonical, tagRefPrefix)
}

// Branch is a named pointer to a tip commit. A detached HEAD is reported as
// a Branch with IsDetachedHead set and the canonical name "HEAD".
type Branch struct {
	Name           ReferenceName
	Tip            *Commit
	IsRemote       bool
	IsDetachedHead bool
}

// FriendlyName returns the friendly name of the branch.
func (b Branch) FriendlyName() string {
	return b.Name.Friendly
}

// ConfigName is the name branch configuration regexes are matched against.
func (b Branch) ConfigName() string {
	return b.Name.WithoutRemote
}

// Equal compares canonical names.
func (b Branch) Equal(other Branch) bool {
	return b.Name.Canonical == other.Name.Canonical
}

// Tag is a tag reference. TargetSha may name an annotated tag object; use
// Repository.PeelTag to reach the commit.
type Tag struct {
	Name      ReferenceName
	TargetSha string
}

// BranchCommit is a branch together with the commit it forked at.
type BranchCommit struct {
	Branch Branch
	Commit Commit
}

// IsEmpty is true when no fork point was found.
func (bc BranchCommit) IsEmpty() bool {
	return bc.Commit.IsEmpty()
}

// VersionTag holds a tag, its parsed semantic version, and the target commit.
type VersionTag struct {
	Tag     Tag
	Version semver.SemanticVersion
	Commit  Commit
}

// CommitFilter selects commits for QueryCommits. Results are the commits
// reachable from IncludeReachableFrom and not from ExcludeReachableFrom,
// newest first with every child ahead of its parents.
type CommitFilter struct {
	IncludeReachableFrom string
	ExcludeReachableFrom string
	FirstParentOnly      bool
}
