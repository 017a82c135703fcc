// Package testutil builds git repositories with a scripted history for
// tests. Repositories live in memory unless a test needs files on disk.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
)

// TestRepo is a builder for repositories with controlled commit history,
// tags and branches. Every commit is one minute after the previous one.
type TestRepo struct {
	t    testing.TB
	path string
	fs   billy.Filesystem
	repo *gogit.Repository
	time time.Time
	seq  int
}

// New creates an empty repository in memory with "main" as the initial
// branch.
func New(t testing.TB) *TestRepo {
	t.Helper()
	fs := memfs.New()
	repo, err := gogit.Init(memory.NewStorage(), fs)
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}
	return newTestRepo(t, repo, fs, "")
}

// NewOnDisk creates an empty repository in a temporary directory, for tests
// that need configuration files or the on-disk cache.
func NewOnDisk(t testing.TB) *TestRepo {
	t.Helper()
	dir := t.TempDir()
	fs := osfs.New(dir)
	dot, err := fs.Chroot(".git")
	if err != nil {
		t.Fatalf("chroot .git: %v", err)
	}
	repo, err := gogit.Init(filesystem.NewStorage(dot, cache.NewObjectLRUDefault()), fs)
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}
	return newTestRepo(t, repo, fs, dir)
}

func newTestRepo(t testing.TB, repo *gogit.Repository, fs billy.Filesystem, path string) *TestRepo {
	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("main"))
	if err := repo.Storer.SetReference(head); err != nil {
		t.Fatalf("pointing HEAD at main: %v", err)
	}
	return &TestRepo{
		t:    t,
		path: path,
		fs:   fs,
		repo: repo,
		time: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Path returns the working directory, or "" for in-memory repositories.
func (r *TestRepo) Path() string {
	return r.path
}

// Repository wraps the repository for the version engine.
func (r *TestRepo) Repository() *git.GoGitRepository {
	gitDir := ""
	if r.path != "" {
		gitDir = filepath.Join(r.path, ".git")
	}
	return git.NewGoGitRepository(r.repo, gitDir, r.path)
}

// Commit creates a commit on HEAD that adds one new file and returns its
// SHA.
func (r *TestRepo) Commit(message string) string {
	r.t.Helper()
	return r.commit(message, nil)
}

// Commits creates n commits and returns the SHA of the last one.
func (r *TestRepo) Commits(n int) string {
	r.t.Helper()
	var sha string
	for i := 0; i < n; i++ {
		sha = r.Commit(fmt.Sprintf("commit %d", r.seq+1))
	}
	return sha
}

func (r *TestRepo) commit(message string, parents []plumbing.Hash) string {
	r.t.Helper()
	r.time = r.time.Add(time.Minute)
	r.seq++

	wt, err := r.repo.Worktree()
	if err != nil {
		r.t.Fatalf("getting worktree: %v", err)
	}

	filename := fmt.Sprintf("file-%04d.txt", r.seq)
	if err := util.WriteFile(r.fs, filename, []byte(message), 0o644); err != nil {
		r.t.Fatalf("writing file: %v", err)
	}
	if _, err := wt.Add(filename); err != nil {
		r.t.Fatalf("staging file: %v", err)
	}

	hash, err := wt.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@example.com",
			When:  r.time,
		},
		Parents: parents,
	})
	if err != nil {
		r.t.Fatalf("committing: %v", err)
	}
	return hash.String()
}

// Tag creates a lightweight tag pointing at sha.
func (r *TestRepo) Tag(name, sha string) {
	r.t.Helper()
	ref := plumbing.NewHashReference(plumbing.NewTagReferenceName(name), plumbing.NewHash(sha))
	if err := r.repo.Storer.SetReference(ref); err != nil {
		r.t.Fatalf("creating tag %s: %v", name, err)
	}
}

// AnnotatedTag creates an annotated tag pointing at sha.
func (r *TestRepo) AnnotatedTag(name, sha, message string) {
	r.t.Helper()
	_, err := r.repo.CreateTag(name, plumbing.NewHash(sha), &gogit.CreateTagOptions{
		Tagger: &object.Signature{
			Name:  "Test",
			Email: "test@example.com",
			When:  r.time,
		},
		Message: message,
	})
	if err != nil {
		r.t.Fatalf("creating annotated tag %s: %v", name, err)
	}
}

// CreateBranch points a new branch at sha without checking it out.
func (r *TestRepo) CreateBranch(name, sha string) {
	r.t.Helper()
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), plumbing.NewHash(sha))
	if err := r.repo.Storer.SetReference(ref); err != nil {
		r.t.Fatalf("creating branch %s: %v", name, err)
	}
}

// Branch creates a branch at HEAD and checks it out.
func (r *TestRepo) Branch(name string) {
	r.t.Helper()
	r.CreateBranch(name, r.HeadSha())
	r.Checkout(name)
}

// RemoteBranch creates refs/remotes/<remote>/<name> at sha.
func (r *TestRepo) RemoteBranch(remote, name, sha string) {
	r.t.Helper()
	ref := plumbing.NewHashReference(plumbing.NewRemoteReferenceName(remote, name), plumbing.NewHash(sha))
	if err := r.repo.Storer.SetReference(ref); err != nil {
		r.t.Fatalf("creating remote branch %s/%s: %v", remote, name, err)
	}
}

// Checkout switches HEAD to the given branch.
func (r *TestRepo) Checkout(branch string) {
	r.t.Helper()
	wt, err := r.repo.Worktree()
	if err != nil {
		r.t.Fatalf("getting worktree: %v", err)
	}
	err = wt.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Force:  true,
	})
	if err != nil {
		r.t.Fatalf("checking out %s: %v", branch, err)
	}
}

// CheckoutDetached points HEAD directly at sha.
func (r *TestRepo) CheckoutDetached(sha string) {
	r.t.Helper()
	wt, err := r.repo.Worktree()
	if err != nil {
		r.t.Fatalf("getting worktree: %v", err)
	}
	if err := wt.Checkout(&gogit.CheckoutOptions{Hash: plumbing.NewHash(sha), Force: true}); err != nil {
		r.t.Fatalf("checking out %s: %v", sha, err)
	}
}

// Merge creates a no-fast-forward merge of branch into the checked out
// branch with git's default message and returns the merge commit SHA.
func (r *TestRepo) Merge(branch string) string {
	r.t.Helper()
	head, err := r.repo.Head()
	if err != nil {
		r.t.Fatalf("getting HEAD: %v", err)
	}
	msg := fmt.Sprintf("Merge branch '%s'", branch)
	if target := head.Name().Short(); target != "main" && target != "master" {
		msg += " into " + target
	}
	return r.MergeWithMessage(msg, r.BranchTip(branch))
}

// MergeWithMessage creates a merge commit with HEAD and otherSha as
// parents.
func (r *TestRepo) MergeWithMessage(message, otherSha string) string {
	r.t.Helper()
	head, err := r.repo.Head()
	if err != nil {
		r.t.Fatalf("getting HEAD: %v", err)
	}
	return r.commit(message, []plumbing.Hash{head.Hash(), plumbing.NewHash(otherSha)})
}

// WriteFile writes a file into the working tree without committing it.
func (r *TestRepo) WriteFile(name, content string) {
	r.t.Helper()
	if err := util.WriteFile(r.fs, name, []byte(content), 0o644); err != nil {
		r.t.Fatalf("writing %s: %v", name, err)
	}
}

// HeadSha returns the current HEAD commit SHA.
func (r *TestRepo) HeadSha() string {
	r.t.Helper()
	head, err := r.repo.Head()
	if err != nil {
		r.t.Fatalf("getting HEAD: %v", err)
	}
	return head.Hash().String()
}

// BranchTip returns the SHA a local branch points at.
func (r *TestRepo) BranchTip(name string) string {
	r.t.Helper()
	ref, err := r.repo.Reference(plumbing.NewBranchReferenceName(name), true)
	if err != nil {
		r.t.Fatalf("resolving branch %s: %v", name, err)
	}
	return ref.Hash().String()
}
