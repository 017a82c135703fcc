package git

import (
	"errors"
	"fmt"
	"sync"

	"github.com/emirpasic/gods/queues/priorityqueue"
)

// CommitLoader loads a single commit. Missing objects must be reported with
// an error wrapping ErrCommitNotFound.
type CommitLoader func(sha string) (Commit, error)

// graph answers history queries over any CommitLoader. Loaded commits are
// kept so repeated walks over shared ancestry do not reload objects.
type graph struct {
	load CommitLoader

	mu    sync.Mutex
	cache map[string]Commit
}

func newGraph(load CommitLoader) *graph {
	return &graph{load: load, cache: make(map[string]Commit)}
}

// commit returns false, without error, when the object is not available.
func (g *graph) commit(sha string) (Commit, bool, error) {
	g.mu.Lock()
	c, ok := g.cache[sha]
	g.mu.Unlock()
	if ok {
		return c, true, nil
	}

	c, err := g.load(sha)
	if errors.Is(err, ErrCommitNotFound) {
		return Commit{}, false, nil
	}
	if err != nil {
		return Commit{}, false, err
	}

	g.mu.Lock()
	g.cache[sha] = c
	g.mu.Unlock()
	return c, true, nil
}

// add seeds commits that arrived together with another one.
func (g *graph) add(commits ...Commit) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, c := range commits {
		if _, ok := g.cache[c.Sha]; !ok {
			g.cache[c.Sha] = c
		}
	}
}

// ancestors returns every commit reachable from sha, sha included.
func (g *graph) ancestors(sha string) (map[string]struct{}, error) {
	seen := make(map[string]struct{})
	stack := []string{sha}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[cur]; ok {
			continue
		}
		c, ok, err := g.commit(cur)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		seen[cur] = struct{}{}
		stack = append(stack, c.Parents...)
	}
	return seen, nil
}

func (g *graph) query(f CommitFilter) ([]Commit, error) {
	if f.IncludeReachableFrom == "" {
		return nil, nil
	}

	excluded := map[string]struct{}{}
	if f.ExcludeReachableFrom != "" {
		var err error
		if excluded, err = g.ancestors(f.ExcludeReachableFrom); err != nil {
			return nil, err
		}
	}

	if f.FirstParentOnly {
		return g.firstParent(f.IncludeReachableFrom, excluded)
	}

	index := make(map[string]int)
	var nodes []Commit
	queue := []string{f.IncludeReachableFrom}
	for i := 0; i < len(queue); i++ {
		sha := queue[i]
		if _, done := index[sha]; done {
			continue
		}
		if _, skip := excluded[sha]; skip {
			continue
		}
		c, ok, err := g.commit(sha)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		index[sha] = len(nodes)
		nodes = append(nodes, c)
		queue = append(queue, c.Parents...)
	}
	return topoSort(nodes, index), nil
}

func (g *graph) firstParent(from string, excluded map[string]struct{}) ([]Commit, error) {
	var out []Commit
	for sha := from; sha != ""; {
		if _, skip := excluded[sha]; skip {
			break
		}
		c, ok, err := g.commit(sha)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		out = append(out, c)
		sha = ""
		if len(c.Parents) > 0 {
			sha = c.Parents[0]
		}
	}
	return out, nil
}

// mergeBase walks b's history children-first; the first commit that is
// also an ancestor of a has no common descendant, so it is a best base.
func (g *graph) mergeBase(a, b string) (string, error) {
	if a == b {
		return a, nil
	}
	fromA, err := g.ancestors(a)
	if err != nil {
		return "", err
	}
	if _, ok := fromA[b]; ok {
		return b, nil
	}
	history, err := g.query(CommitFilter{IncludeReachableFrom: b})
	if err != nil {
		return "", err
	}
	for _, c := range history {
		if _, ok := fromA[c.Sha]; ok {
			return c.Sha, nil
		}
	}
	return "", nil
}

// topoSort orders nodes so that every commit precedes its parents. Among
// commits that are ready, the newest goes first and discovery order breaks
// timestamp ties.
func topoSort(nodes []Commit, index map[string]int) []Commit {
	pending := make([]int, len(nodes))
	for _, c := range nodes {
		for _, p := range c.Parents {
			if j, ok := index[p]; ok {
				pending[j]++
			}
		}
	}

	ready := priorityqueue.NewWith(func(a, b any) int {
		ca, cb := nodes[a.(int)], nodes[b.(int)]
		switch {
		case ca.When.After(cb.When):
			return -1
		case cb.When.After(ca.When):
			return 1
		}
		return a.(int) - b.(int)
	})
	for i := range nodes {
		if pending[i] == 0 {
			ready.Enqueue(i)
		}
	}

	out := make([]Commit, 0, len(nodes))
	for !ready.Empty() {
		v, _ := ready.Dequeue()
		c := nodes[v.(int)]
		out = append(out, c)
		for _, p := range c.Parents {
			if j, ok := index[p]; ok {
				pending[j]--
				if pending[j] == 0 {
					ready.Enqueue(j)
				}
			}
		}
	}
	return out
}

// CommitGraph answers history queries for backends that load commits one
// at a time, such as a hosting API. Commits are loaded on demand and kept.
type CommitGraph struct {
	g *graph
}

// NewCommitGraph creates a CommitGraph over load.
func NewCommitGraph(load CommitLoader) *CommitGraph {
	return &CommitGraph{g: newGraph(load)}
}

// Add records commits so they are never loaded.
func (c *CommitGraph) Add(commits ...Commit) {
	c.g.add(commits...)
}

// Commit returns one commit. A missing object wraps ErrCommitNotFound.
func (c *CommitGraph) Commit(sha string) (Commit, error) {
	commit, ok, err := c.g.commit(sha)
	if err != nil {
		return Commit{}, err
	}
	if !ok {
		return Commit{}, fmt.Errorf("loading commit %s: %w", sha, ErrCommitNotFound)
	}
	return commit, nil
}

// Query returns the commits selected by f, children before parents.
func (c *CommitGraph) Query(f CommitFilter) ([]Commit, error) {
	return c.g.query(f)
}

// MergeBase returns a best common ancestor of a and b, or "".
func (c *CommitGraph) MergeBase(a, b string) (string, error) {
	return c.g.mergeBase(a, b)
}
