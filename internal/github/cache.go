package github

import (
	"sync"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
)

// apiCache keeps ref listings and derived answers for the lifetime of one
// Repository. Commits are kept by the commit graph instead.
type apiCache struct {
	mu sync.RWMutex

	head       *git.Branch
	branches   []git.Branch
	tags       []git.Tag
	haveRefs   bool
	haveTags   bool
	tagPeels   map[string]string // tag object sha -> commit sha
	mergeBases map[[2]string]string
}

func newAPICache() *apiCache {
	return &apiCache{
		tagPeels:   make(map[string]string),
		mergeBases: make(map[[2]string]string),
	}
}

func (c *apiCache) getHead() (git.Branch, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.head == nil {
		return git.Branch{}, false
	}
	return *c.head, true
}

func (c *apiCache) putHead(b git.Branch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.head = &b
}

func (c *apiCache) getBranches() ([]git.Branch, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.branches, c.haveRefs
}

func (c *apiCache) putBranches(branches []git.Branch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.branches, c.haveRefs = branches, true
}

func (c *apiCache) getTags() ([]git.Tag, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tags, c.haveTags
}

func (c *apiCache) putTags(tags []git.Tag) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tags, c.haveTags = tags, true
}

func (c *apiCache) getTagPeel(tagSha string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sha, ok := c.tagPeels[tagSha]
	return sha, ok
}

func (c *apiCache) putTagPeel(tagSha, commitSha string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tagPeels[tagSha] = commitSha
}

func (c *apiCache) getMergeBase(a, b string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	base, ok := c.mergeBases[mergeBaseKey(a, b)]
	return base, ok
}

func (c *apiCache) putMergeBase(a, b, base string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mergeBases[mergeBaseKey(a, b)] = base
}

// mergeBaseKey orders the pair so (a, b) and (b, a) share an entry.
func mergeBaseKey(a, b string) [2]string {
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}
