package trunk

import (
	"github.com/MyCarrier-DevOps/go-gitversion/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/semver"
)

// CommitIncrement returns the bump a commit message asks for.
type CommitIncrement func(git.Commit, config.EffectiveConfiguration) semver.VersionField

// RuleContext is what a rule sees while classifying a commit of one
// iteration.
type RuleContext struct {
	Arena     *Arena
	Iteration *Iteration
	// Current is the commit being versioned.
	Current   git.Commit
	TagPrefix string
	Analyze   CommitIncrement
	// Children holds the folded merged iterations by index.
	Children map[int]ChildResult
}

func (rc *RuleContext) onTrunk() bool {
	return rc.Iteration.Configuration.IsMainBranch
}

func (rc *RuleContext) isLast(n *Node) bool {
	return n.Commit.Sha == rc.Current.Sha
}

// increment is the branch increment raised by the commit's directive.
// Force is set when the directive asks for more than the branch does.
func (rc *RuleContext) increment(n *Node) (semver.VersionField, bool) {
	ec := rc.Iteration.Configuration
	field := ec.Increment.ToVersionField()
	if rc.Analyze == nil {
		return field, false
	}
	directive := rc.Analyze(n.Commit, ec)
	return semver.MaxField(field, directive), directive > field
}

func (rc *RuleContext) label() *string {
	l := rc.Iteration.Label()
	return &l
}

// Rule classifies a commit. Match is the precondition; Enrich produces the
// elements the fold applies.
type Rule struct {
	Name   string
	Match  func(rc *RuleContext, n *Node) bool
	Enrich func(rc *RuleContext, n *Node) []Element
}

// Rules is evaluated top to bottom; the first rule that matches a commit
// classifies it. The last two rows match every commit.
var Rules = []Rule{
	{Name: "RootCommit", Match: matchRoot, Enrich: enrichRoot},
	taggedRule("LastCommitOnTrunkWithStableTag", true, true, true),
	taggedRule("CommitOnTrunkWithStableTag", true, false, true),
	taggedRule("LastCommitOnTrunkWithPreReleaseTag", true, true, false),
	taggedRule("CommitOnTrunkWithPreReleaseTag", true, false, false),
	mergeRule("LastMergeCommitOnTrunk", true, true),
	mergeRule("MergeCommitOnTrunk", true, false),
	taggedRule("LastCommitOnNonTrunkWithStableTag", false, true, true),
	taggedRule("CommitOnNonTrunkWithStableTag", false, false, true),
	taggedRule("LastCommitOnNonTrunkWithPreReleaseTag", false, true, false),
	taggedRule("CommitOnNonTrunkWithPreReleaseTag", false, false, false),
	{Name: "FirstCommitOnRelease", Match: matchFirstOnRelease, Enrich: enrichFirstOnRelease},
	mergeRule("MergeCommitOnNonTrunk", false, false),
	commitRule("CommitOnTrunk", true),
	commitRule("CommitOnNonTrunk", false),
}

// Classify returns the first matching rule and its elements.
func Classify(rc *RuleContext, n *Node) (string, []Element) {
	for _, r := range Rules {
		if r.Match(rc, n) {
			return r.Name, r.Enrich(rc, n)
		}
	}
	return "", nil
}

// matchRoot matches the oldest untagged commit of the versioned line, or
// the oldest commit a shallow clone has. Only the oldest segment of the
// line has a root: a newer segment cut short by truncated history still
// continues the segments before it.
func matchRoot(rc *RuleContext, n *Node) bool {
	if rc.Iteration.IsMerged() || n.Older >= 0 || len(n.Tags) > 0 {
		return false
	}
	if line := rc.Arena.Line(); len(line) == 0 || line[0] != n.Iteration {
		return false
	}
	if len(n.Commit.Parents) == 0 {
		return true
	}
	_, known := rc.Arena.Lookup(n.Commit.Parents[0])
	return !known
}

func enrichRoot(rc *RuleContext, n *Node) []Element {
	ver, err := semver.Parse(rc.Iteration.Configuration.BaseVersion, "")
	if err != nil {
		ver = semver.SemanticVersion{Minor: 1}
	}
	c := n.Commit
	return []Element{Operand{Rule: "RootCommit", Version: ver, Source: &c}}
}

func tagOf(n *Node, stable bool) (semver.SemanticVersion, bool) {
	if stable {
		return n.StableTag()
	}
	return n.PreReleaseTag()
}

// taggedRule turns a tag into an operand. On the current commit the branch
// increment is applied on top unless prevent-increment
// when-current-commit-tagged is set.
func taggedRule(name string, trunk, last, stable bool) Rule {
	return Rule{
		Name: name,
		Match: func(rc *RuleContext, n *Node) bool {
			if rc.onTrunk() != trunk || (last && !rc.isLast(n)) {
				return false
			}
			_, ok := tagOf(n, stable)
			return ok
		},
		Enrich: func(rc *RuleContext, n *Node) []Element {
			v, _ := tagOf(n, stable)
			c := n.Commit
			out := []Element{Operand{Rule: name, Version: v, Source: &c}}
			if last && !rc.Iteration.Configuration.PreventIncrementWhenCurrentCommitTagged {
				field, force := rc.increment(n)
				out = append(out, Operator{Rule: name, Increment: field, Force: force, Label: rc.label()})
			}
			return out
		},
	}
}

// mergeRule folds the merged iteration into the merge commit. The merged
// branch's increment counts unless prevent-increment of-merged-branch is
// set and the merged branch carries a version of its own.
func mergeRule(name string, trunk, last bool) Rule {
	return Rule{
		Name: name,
		Match: func(rc *RuleContext, n *Node) bool {
			return rc.onTrunk() == trunk && n.IsMerge() && (!last || rc.isLast(n))
		},
		Enrich: func(rc *RuleContext, n *Node) []Element {
			ec := rc.Iteration.Configuration
			field, force := rc.increment(n)
			op := Operator{Rule: name, Label: rc.label(), Segment: trunk}
			if child, ok := rc.Children[n.Child]; ok {
				op.Alternatives = child.Alternatives
				if ec.PreventIncrementOfMergedBranch && len(child.Alternatives) > 0 {
					field, force = semver.VersionFieldNone, false
				} else {
					field = semver.MaxField(field, child.Increment)
					force = force || child.Force
				}
			}
			if last && ec.PreventIncrementWhenBranchMerged {
				field, force = semver.VersionFieldNone, false
			}
			op.Increment, op.Force = field, force
			return []Element{op}
		},
	}
}

func matchFirstOnRelease(rc *RuleContext, n *Node) bool {
	return !rc.onTrunk() && rc.Iteration.Configuration.IsReleaseBranch && n.Older < 0
}

// enrichFirstOnRelease records the version a release branch is named after.
// Names without a version contribute only the increment.
func enrichFirstOnRelease(rc *RuleContext, n *Node) []Element {
	field, force := rc.increment(n)
	op := Operator{Rule: "FirstCommitOnRelease", Increment: field, Force: force, Label: rc.label()}
	if v, ok := git.ExtractVersionFromBranch(rc.Iteration.BranchName, rc.TagPrefix); ok {
		op.Alternatives = []semver.SemanticVersion{v.Core()}
	}
	return []Element{op}
}

func commitRule(name string, trunk bool) Rule {
	return Rule{
		Name: name,
		Match: func(rc *RuleContext, n *Node) bool {
			return rc.onTrunk() == trunk
		},
		Enrich: func(rc *RuleContext, n *Node) []Element {
			field, force := rc.increment(n)
			return []Element{Operator{Rule: name, Increment: field, Force: force, Label: rc.label()}}
		},
	}
}
