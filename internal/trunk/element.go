package trunk

import (
	"fmt"
	"strings"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/semver"
)

// Element is what a rule contributes for one commit: an Operand or an
// Operator.
type Element interface {
	fmt.Stringer
	element()
}

// Operand replaces the running version with one that is already known,
// typically from a tag.
type Operand struct {
	Rule    string
	Version semver.SemanticVersion
	Source  *git.Commit
}

func (Operand) element() {}

func (o Operand) String() string {
	return fmt.Sprintf("%s: version %s", o.Rule, o.Version.SemVer())
}

// Operator moves the running version.
type Operator struct {
	Rule      string
	Increment semver.VersionField
	// Force bumps the core field even when the running version is a
	// pre-release.
	Force bool
	// Label is the pre-release label to move to; nil keeps the current one.
	Label *string
	// Alternatives are versions the result is raised to, never lowered to.
	Alternatives []semver.SemanticVersion
	// Segment starts a new trunk segment: pending Mainline increments are
	// applied before this operator.
	Segment bool
}

func (Operator) element() {}

func (o Operator) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: increment %s", o.Rule, o.Increment)
	if o.Force {
		b.WriteString(" (forced)")
	}
	if o.Label != nil {
		fmt.Fprintf(&b, ", label %q", *o.Label)
	}
	for _, alt := range o.Alternatives {
		fmt.Fprintf(&b, ", at least %s", alt.SemVer())
	}
	return b.String()
}
