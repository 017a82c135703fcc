// Package trunk versions Mainline and TrunkBased branches by folding their
// history. The history is split into iterations, one per branch segment,
// stored in an arena and linked by index. Every commit is classified by an
// ordered rule table into operands and operators that the fold applies from
// the oldest commit to the newest.
package trunk

import (
	"fmt"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/semver"
)

// unknownBranch names merged iterations whose merge message does not say
// which branch was merged.
const unknownBranch = "unknown"

// Node is one commit in the arena.
type Node struct {
	Commit git.Commit
	// Iteration is the index of the iteration the commit belongs to.
	Iteration int
	// Older is the next older node of the same iteration, or -1.
	Older int
	// Child is the iteration a merge commit brings in, or -1.
	Child int
	// Tags are the version tags on the commit, highest first.
	Tags []semver.SemanticVersion
}

// IsMerge reports whether the commit has more than one parent.
func (n *Node) IsMerge() bool {
	return n.Commit.IsMerge()
}

// StableTag returns the highest stable version tagged on the commit.
func (n *Node) StableTag() (semver.SemanticVersion, bool) {
	for _, v := range n.Tags {
		if !v.IsPreRelease() {
			return v, true
		}
	}
	return semver.SemanticVersion{}, false
}

// PreReleaseTag returns the highest pre-release version tagged on the commit.
func (n *Node) PreReleaseTag() (semver.SemanticVersion, bool) {
	for _, v := range n.Tags {
		if v.IsPreRelease() {
			return v, true
		}
	}
	return semver.SemanticVersion{}, false
}

// Iteration is a run of first-parent commits attributed to one branch.
type Iteration struct {
	BranchName    string
	Configuration config.EffectiveConfiguration
	// Parent is the iteration this one merges into or continues, -1 for
	// the iteration of the branch being versioned.
	Parent int
	// MergedBy is the node whose merge brought this iteration in, -1 when
	// the iteration continues its parent's line of history.
	MergedBy int
	// Nodes lists the iteration's commits, newest first.
	Nodes []int
}

// IsMerged reports whether the iteration was merged in rather than being
// part of the versioned line of history.
func (it *Iteration) IsMerged() bool {
	return it.MergedBy >= 0
}

// Label expands the configured label for the iteration's branch.
func (it *Iteration) Label() string {
	return it.Configuration.ResolveLabel(it.BranchName, "")
}

// Arena owns every iteration and node of one calculation. Index 0 is the
// iteration of the branch being versioned.
type Arena struct {
	Iterations []*Iteration
	Nodes      []*Node
	index      map[string]int
}

func newArena() *Arena {
	return &Arena{index: make(map[string]int)}
}

// Lookup returns the node of a commit.
func (a *Arena) Lookup(sha string) (*Node, bool) {
	i, ok := a.index[sha]
	if !ok {
		return nil, false
	}
	return a.Nodes[i], true
}

// Line returns the iterations of the versioned line of history, oldest
// segment first, ending with iteration 0.
func (a *Arena) Line() []int {
	var line []int
	for i := len(a.Iterations) - 1; i >= 0; i-- {
		if !a.Iterations[i].IsMerged() {
			line = append(line, i)
		}
	}
	return line
}

// Merged returns the merged iterations, children after their parents.
func (a *Arena) Merged() []int {
	var out []int
	for i, it := range a.Iterations {
		if it.IsMerged() {
			out = append(out, i)
		}
	}
	return out
}

func (a *Arena) addIteration(it *Iteration) int {
	a.Iterations = append(a.Iterations, it)
	return len(a.Iterations) - 1
}

// segment is a pending walk: the first-parent commits reachable from tip
// and not from stop, attributed to iteration.
type segment struct {
	iteration int
	tip       git.Commit
	stop      git.Commit
}

// builder fills an arena from a worklist of segments. Merge commits push
// their merged side as a new segment, so deep histories never recurse.
type builder struct {
	store     *git.RepositoryStore
	cfg       *config.Config
	tagPrefix string
	formats   []git.MergeMessageFormat
	arena     *Arena
	work      []segment
}

func (b *builder) run() error {
	for len(b.work) > 0 {
		seg := b.work[0]
		b.work = b.work[1:]
		if err := b.walk(seg); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) walk(seg segment) error {
	commits, err := b.store.GetMainlineCommitLog(seg.stop, seg.tip)
	if err != nil {
		return fmt.Errorf("walking %s: %w", b.arena.Iterations[seg.iteration].BranchName, err)
	}

	it := b.arena.Iterations[seg.iteration]
	prev := -1
	for _, c := range commits {
		if _, seen := b.arena.index[c.Sha]; seen {
			continue
		}
		tags, err := b.store.GetVersionTagsOnCommit(c.Sha, b.tagPrefix)
		if err != nil {
			return err
		}
		node := &Node{Commit: c, Iteration: seg.iteration, Older: -1, Child: -1}
		for _, vt := range tags {
			node.Tags = append(node.Tags, vt.Version)
		}
		idx := len(b.arena.Nodes)
		b.arena.Nodes = append(b.arena.Nodes, node)
		b.arena.index[c.Sha] = idx
		it.Nodes = append(it.Nodes, idx)
		if prev >= 0 {
			b.arena.Nodes[prev].Older = idx
		}
		prev = idx

		if c.IsMerge() {
			if err := b.pushMerged(idx, seg.iteration); err != nil {
				return err
			}
		}
	}
	return nil
}

// pushMerged queues the merged side of a merge commit: the first-parent
// history of its second parent back to the merge base.
func (b *builder) pushMerged(nodeIdx, parent int) error {
	node := b.arena.Nodes[nodeIdx]
	if _, seen := b.arena.index[node.Commit.Parents[1]]; seen {
		return nil
	}
	first, err := b.store.CommitFromSha(node.Commit.Parents[0])
	if err != nil {
		return nil
	}
	second, err := b.store.CommitFromSha(node.Commit.Parents[1])
	if err != nil {
		return nil
	}
	base, _, err := b.store.FindMergeBase(first, second)
	if err != nil {
		return err
	}

	name := git.ParseMergeMessage(node.Commit.Message, b.formats).MergedBranchWithoutRemote()
	if name == "" {
		name = unknownBranch
	}
	child := b.arena.addIteration(&Iteration{
		BranchName:    name,
		Configuration: b.configurationFor(name, b.arena.Iterations[parent].Configuration),
		Parent:        parent,
		MergedBy:      nodeIdx,
	})
	node.Child = child
	b.work = append(b.work, segment{iteration: child, tip: second, stop: base})
	return nil
}

// configurationFor resolves the configuration of a merged branch known only
// by name. An inherited increment comes from the branch it was merged into.
func (b *builder) configurationFor(name string, into config.EffectiveConfiguration) config.EffectiveConfiguration {
	nb, err := b.cfg.GetBranchConfiguration(name)
	if err != nil {
		return into
	}
	ec := config.NewEffectiveConfiguration(b.cfg, nb.Name, nb.Config)
	if nb.Config.IncrementIsInherit() {
		ec.Increment = into.Increment
	}
	return ec
}
