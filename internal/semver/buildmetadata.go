package semver

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BuildMetaData is the "+..." part of a version together with the commit
// facts the output variables are computed from.
type BuildMetaData struct {
	// CommitsSinceTag is nil on a tagged commit, so FullSemVer has no "+N".
	CommitsSinceTag           *int64
	Branch                    string
	Sha                       string
	ShortSha                  string
	VersionSourceSha          string
	CommitDate                time.Time
	CommitsSinceVersionSource int64
	UncommittedChanges        int64
}

func (m BuildMetaData) count(pad int) string {
	if m.CommitsSinceTag == nil {
		return ""
	}
	return fmt.Sprintf("%0*d", pad, *m.CommitsSinceTag)
}

// String is the commit count, or "" on a tagged commit.
func (m BuildMetaData) String() string { return m.count(1) }

// Padded zero-pads the commit count to pad digits.
func (m BuildMetaData) Padded(pad int) string { return m.count(pad) }

// FullString renders "5.Branch.feature-x.Sha.abc". The branch is escaped so
// the result stays valid build metadata.
func (m BuildMetaData) FullString() string {
	var b strings.Builder
	add := func(s string) {
		if s == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s)
	}
	add(m.String())
	if m.Branch != "" {
		add("Branch." + EscapeBranchName(m.Branch))
	}
	if m.Sha != "" {
		add("Sha." + m.Sha)
	}
	return b.String()
}

// parseBuildMetaData reads the commit count a tag carries ("5" or
// "5.Branch..."). Everything else is recomputed from the repository.
func parseBuildMetaData(s string) BuildMetaData {
	head, _, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(head, 10, 64)
	if err != nil {
		return BuildMetaData{}
	}
	return BuildMetaData{CommitsSinceTag: &n}
}
