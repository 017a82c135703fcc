// Package github implements git.Repository over the GitHub API, so a
// version can be calculated for a repository without cloning it.
package github

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	gh "github.com/google/go-github/v68/github"
	"go.uber.org/zap"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
)

// Compile-time check that Repository implements git.Repository.
var _ git.Repository = (*Repository)(nil)

const (
	defaultMaxCommits = 1000
	pageSize          = 100
)

// Repository reads one GitHub repository. Commits are fetched a page of
// history at a time and kept for the lifetime of the Repository; history
// beyond the commit limit is treated like a shallow clone.
type Repository struct {
	client     *gh.Client
	owner      string
	name       string
	ref        string // branch, tag or SHA; "" means the default branch
	baseURL    string // REST base URL for GitHub Enterprise
	maxCommits int
	ctx        context.Context
	log        *zap.Logger
	cache      *apiCache
	graph      *git.CommitGraph

	mu        sync.Mutex
	fetched   int
	truncated bool
}

// Option configures a Repository.
type Option func(*Repository)

// WithRef sets the ref HEAD resolves to.
func WithRef(ref string) Option {
	return func(r *Repository) { r.ref = ref }
}

// WithMaxCommits caps how many commits are fetched.
func WithMaxCommits(n int) Option {
	return func(r *Repository) { r.maxCommits = n }
}

// WithBaseURL sets the REST base URL of a GitHub Enterprise server. The
// GraphQL endpoint is derived from it.
func WithBaseURL(url string) Option {
	return func(r *Repository) { r.baseURL = url }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Repository) { r.log = log }
}

// NewRepository creates a Repository for owner/name. Requests use ctx.
func NewRepository(ctx context.Context, client *gh.Client, owner, name string, opts ...Option) *Repository {
	r := &Repository{
		client:     client,
		owner:      owner,
		name:       name,
		maxCommits: defaultMaxCommits,
		ctx:        ctx,
		log:        zap.NewNop(),
		cache:      newAPICache(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.graph = git.NewCommitGraph(r.loadCommit)
	return r
}

// Path is empty: the repository has no local storage.
func (r *Repository) Path() string { return "" }

func (r *Repository) WorkingDirectory() string { return "" }

// FullName returns owner/name.
func (r *Repository) FullName() string {
	return r.owner + "/" + r.name
}

var shaPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

func (r *Repository) Head() (git.Branch, error) {
	if b, ok := r.cache.getHead(); ok {
		return b, nil
	}

	ref := r.ref
	if ref == "" {
		info, _, err := r.client.Repositories.Get(r.ctx, r.owner, r.name)
		if err != nil {
			return git.Branch{}, fmt.Errorf("getting repository %s: %w", r.FullName(), err)
		}
		ref = info.GetDefaultBranch()
	}

	if shaPattern.MatchString(ref) {
		commit, err := r.CommitFromSha(ref)
		if err != nil {
			return git.Branch{}, fmt.Errorf("getting HEAD commit: %w", err)
		}
		b := git.Branch{Name: git.NewReferenceName("HEAD"), Tip: &commit, IsDetachedHead: true}
		r.cache.putHead(b)
		return b, nil
	}

	ghBranch, _, err := r.client.Repositories.GetBranch(r.ctx, r.owner, r.name, ref, 0)
	if err != nil {
		return git.Branch{}, fmt.Errorf("getting branch %s: %w", ref, err)
	}
	tip := convertCommit(ghBranch.GetCommit())
	r.graph.Add(tip)

	b := git.Branch{Name: git.NewBranchReferenceName(ref), Tip: &tip}
	r.cache.putHead(b)
	return b, nil
}

func (r *Repository) Branches() ([]git.Branch, error) {
	if branches, ok := r.cache.getBranches(); ok {
		return branches, nil
	}
	branches, err := r.fetchBranches()
	if err != nil {
		return nil, err
	}
	r.cache.putBranches(branches)
	return branches, nil
}

func (r *Repository) Tags() ([]git.Tag, error) {
	if tags, ok := r.cache.getTags(); ok {
		return tags, nil
	}
	tags, err := r.fetchTags()
	if err != nil {
		return nil, err
	}
	r.cache.putTags(tags)
	return tags, nil
}

func (r *Repository) CommitFromSha(sha string) (git.Commit, error) {
	return r.graph.Commit(sha)
}

func (r *Repository) Commits(branch git.Branch) ([]git.Commit, error) {
	if branch.Tip == nil {
		return nil, nil
	}
	return r.QueryCommits(git.CommitFilter{IncludeReachableFrom: branch.Tip.Sha})
}

func (r *Repository) QueryCommits(filter git.CommitFilter) ([]git.Commit, error) {
	commits, err := r.graph.Query(filter)
	if err != nil {
		return nil, fmt.Errorf("querying commits: %w", err)
	}
	return commits, nil
}

// FindMergeBase asks the compare API, falling back to walking fetched
// history when the comparison fails.
func (r *Repository) FindMergeBase(sha1, sha2 string) (string, error) {
	if base, ok := r.cache.getMergeBase(sha1, sha2); ok {
		return base, nil
	}

	var base string
	comparison, _, err := r.client.Repositories.CompareCommits(r.ctx, r.owner, r.name, sha1, sha2, nil)
	if err == nil {
		base = comparison.GetMergeBaseCommit().GetSHA()
	} else {
		r.log.Debug("compare failed, walking history for merge base", zap.Error(err))
		if base, err = r.graph.MergeBase(sha1, sha2); err != nil {
			return "", fmt.Errorf("finding merge base of %s and %s: %w", sha1, sha2, err)
		}
	}

	r.cache.putMergeBase(sha1, sha2, base)
	return base, nil
}

// PeelTag resolves a tag to its commit. Tags listed through GraphQL are
// already peeled; others are looked up as annotated tag objects and
// otherwise taken to be lightweight.
func (r *Repository) PeelTag(tag git.Tag) (string, error) {
	if sha, ok := r.cache.getTagPeel(tag.TargetSha); ok {
		return sha, nil
	}

	sha := tag.TargetSha
	if obj, _, err := r.client.Git.GetTag(r.ctx, r.owner, r.name, tag.TargetSha); err == nil && obj.GetObject() != nil {
		sha = obj.GetObject().GetSHA()
	}
	r.cache.putTagPeel(tag.TargetSha, sha)
	return sha, nil
}

func (r *Repository) UncommittedChanges() (int, error) { return 0, nil }

// IsShallow reports whether the commit limit cut history short.
func (r *Repository) IsShallow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.truncated
}

// loadCommit fetches a page of history starting at sha and keeps all of
// it, since the caller is about to walk those ancestors.
func (r *Repository) loadCommit(sha string) (git.Commit, error) {
	r.mu.Lock()
	if r.fetched >= r.maxCommits {
		r.truncated = true
		r.mu.Unlock()
		return git.Commit{}, fmt.Errorf("commit %s beyond the limit of %d: %w", sha, r.maxCommits, git.ErrCommitNotFound)
	}
	r.mu.Unlock()

	opts := &gh.CommitsListOptions{SHA: sha, ListOptions: gh.ListOptions{PerPage: pageSize}}
	page, _, err := r.client.Repositories.ListCommits(r.ctx, r.owner, r.name, opts)
	if IsNotFoundError(err) {
		return git.Commit{}, fmt.Errorf("commit %s: %w", sha, git.ErrCommitNotFound)
	}
	if err != nil {
		return git.Commit{}, fmt.Errorf("listing commits from %s: %w", sha, err)
	}
	if len(page) == 0 || page[0].GetSHA() != sha {
		return git.Commit{}, fmt.Errorf("commit %s: %w", sha, git.ErrCommitNotFound)
	}

	commits := make([]git.Commit, 0, len(page))
	for _, c := range page {
		commits = append(commits, convertCommit(c))
	}
	r.graph.Add(commits[1:]...)

	r.mu.Lock()
	r.fetched += len(commits)
	r.mu.Unlock()
	r.log.Debug("fetched commits", zap.String("from", sha), zap.Int("count", len(commits)))
	return commits[0], nil
}

// FetchFile returns the content of a file at the configured ref.
func (r *Repository) FetchFile(path string) ([]byte, error) {
	opts := &gh.RepositoryContentGetOptions{Ref: r.ref}
	content, _, _, err := r.client.Repositories.GetContents(r.ctx, r.owner, r.name, path, opts)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", path, err)
	}
	if content == nil {
		return nil, fmt.Errorf("%s is not a file", path)
	}
	decoded, err := content.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return []byte(decoded), nil
}

func convertCommit(c *gh.RepositoryCommit) git.Commit {
	if c == nil {
		return git.Commit{}
	}
	parents := make([]string, 0, len(c.Parents))
	for _, p := range c.Parents {
		parents = append(parents, p.GetSHA())
	}
	var when time.Time
	if d := c.GetCommit().GetCommitter().GetDate(); !d.IsZero() {
		when = d.Time
	}
	return git.Commit{
		Sha:     c.GetSHA(),
		Parents: parents,
		When:    when,
		Message: c.GetCommit().GetMessage(),
	}
}
