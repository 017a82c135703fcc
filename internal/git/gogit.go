package git

import (
	"errors"
	"fmt"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Compile-time check that GoGitRepository implements Repository.
var _ Repository = (*GoGitRepository)(nil)

// GoGitRepository implements Repository using go-git.
type GoGitRepository struct {
	repo    *gogit.Repository
	path    string
	workDir string
	graph   *graph
}

// Open opens a git repository at the given path, searching parent
// directories for the .git directory.
func Open(path string) (*GoGitRepository, error) {
	r, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening git repository at %s: %w", path, err)
	}

	wt, err := r.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}

	root := wt.Filesystem.Root()
	return NewGoGitRepository(r, filepath.Join(root, ".git"), root), nil
}

// NewGoGitRepository wraps an already opened go-git repository. gitDir may
// be empty for in-memory storage.
func NewGoGitRepository(r *gogit.Repository, gitDir, workDir string) *GoGitRepository {
	g := &GoGitRepository{repo: r, path: gitDir, workDir: workDir}
	g.graph = newGraph(g.loadCommit)
	return g
}

func (r *GoGitRepository) Path() string {
	return r.path
}

func (r *GoGitRepository) WorkingDirectory() string {
	return r.workDir
}

func (r *GoGitRepository) Head() (Branch, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return Branch{}, fmt.Errorf("getting HEAD: %w", err)
	}

	commit, err := r.CommitFromSha(ref.Hash().String())
	if err != nil {
		return Branch{}, fmt.Errorf("getting HEAD commit: %w", err)
	}

	return Branch{
		Name:           NewReferenceName(string(ref.Name())),
		Tip:            &commit,
		IsDetachedHead: !ref.Name().IsBranch(),
	}, nil
}

func (r *GoGitRepository) Branches() ([]Branch, error) {
	var local, remote []Branch

	refIter, err := r.repo.References()
	if err != nil {
		return nil, fmt.Errorf("listing references: %w", err)
	}
	err = refIter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name()
		if !name.IsBranch() && !name.IsRemote() {
			return nil
		}
		if ref.Type() == plumbing.SymbolicReference {
			return nil // refs/remotes/origin/HEAD
		}
		commit, err := r.CommitFromSha(ref.Hash().String())
		if err != nil {
			return nil // skip branches we can't resolve
		}
		b := Branch{
			Name:     NewReferenceName(string(name)),
			Tip:      &commit,
			IsRemote: name.IsRemote(),
		}
		if b.IsRemote {
			remote = append(remote, b)
		} else {
			local = append(local, b)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating branches: %w", err)
	}

	return append(local, remote...), nil
}

func (r *GoGitRepository) Tags() ([]Tag, error) {
	var tags []Tag

	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	err = iter.ForEach(func(ref *plumbing.Reference) error {
		tags = append(tags, Tag{
			Name:      NewReferenceName(string(ref.Name())),
			TargetSha: ref.Hash().String(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}

	return tags, nil
}

func (r *GoGitRepository) CommitFromSha(sha string) (Commit, error) {
	c, ok, err := r.graph.commit(sha)
	if err != nil {
		return Commit{}, err
	}
	if !ok {
		return Commit{}, fmt.Errorf("loading commit %s: %w", sha, ErrCommitNotFound)
	}
	return c, nil
}

func (r *GoGitRepository) Commits(branch Branch) ([]Commit, error) {
	if branch.Tip == nil {
		return nil, nil
	}
	return r.QueryCommits(CommitFilter{IncludeReachableFrom: branch.Tip.Sha})
}

func (r *GoGitRepository) QueryCommits(filter CommitFilter) ([]Commit, error) {
	commits, err := r.graph.query(filter)
	if err != nil {
		return nil, fmt.Errorf("querying commits: %w", err)
	}
	return commits, nil
}

func (r *GoGitRepository) FindMergeBase(sha1, sha2 string) (string, error) {
	c1, err := r.repo.CommitObject(plumbing.NewHash(sha1))
	if err != nil {
		return "", fmt.Errorf("loading commit %s: %w", sha1, err)
	}

	c2, err := r.repo.CommitObject(plumbing.NewHash(sha2))
	if err != nil {
		return "", fmt.Errorf("loading commit %s: %w", sha2, err)
	}

	bases, err := c1.MergeBase(c2)
	if errors.Is(err, plumbing.ErrObjectNotFound) {
		// Shallow history: walk only what is present.
		return r.graph.mergeBase(sha1, sha2)
	}
	if err != nil {
		return "", fmt.Errorf("computing merge base: %w", err)
	}

	if len(bases) == 0 {
		return "", nil
	}

	return bases[0].Hash.String(), nil
}

func (r *GoGitRepository) UncommittedChanges() (int, error) {
	wt, err := r.repo.Worktree()
	if errors.Is(err, gogit.ErrIsBareRepository) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("getting worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return 0, fmt.Errorf("getting worktree status: %w", err)
	}

	count := 0
	for _, s := range status {
		if s.Staging != gogit.Unmodified || s.Worktree != gogit.Unmodified {
			count++
		}
	}

	return count, nil
}

func (r *GoGitRepository) PeelTag(tag Tag) (string, error) {
	hash := plumbing.NewHash(tag.TargetSha)

	// Annotated tags may point at other tags before reaching a commit.
	if tagObj, err := r.repo.TagObject(hash); err == nil {
		commit, err := tagObj.Commit()
		if err != nil {
			return "", fmt.Errorf("peeling annotated tag %s: %w", tag.Name.Friendly, err)
		}
		return commit.Hash.String(), nil
	}

	if _, err := r.repo.CommitObject(hash); err != nil {
		return "", fmt.Errorf("tag %s does not point to a commit: %w", tag.Name.Friendly, err)
	}

	return tag.TargetSha, nil
}

func (r *GoGitRepository) IsShallow() bool {
	shallow, err := r.repo.Storer.Shallow()
	return err == nil && len(shallow) > 0
}

func (r *GoGitRepository) loadCommit(sha string) (Commit, error) {
	c, err := r.repo.CommitObject(plumbing.NewHash(sha))
	if errors.Is(err, plumbing.ErrObjectNotFound) {
		return Commit{}, fmt.Errorf("loading commit %s: %w", sha, ErrCommitNotFound)
	}
	if err != nil {
		return Commit{}, fmt.Errorf("loading commit %s: %w", sha, err)
	}
	return convertCommit(c), nil
}

// convertCommit converts a go-git commit to our Commit type.
func convertCommit(c *object.Commit) Commit {
	parents := make([]string, 0, c.NumParents())
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}

	return Commit{
		Sha:     c.Hash.String(),
		Parents: parents,
		When:    c.Committer.When,
		Message: c.Message,
	}
}
