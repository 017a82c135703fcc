package git

// Repository is the read-only repository surface the version engine
// consumes. Implementations must tolerate shallow history: a parent that
// cannot be loaded ends the walk along that path instead of failing it.
type Repository interface {
	// Path returns the path to the .git directory, or "" when the
	// repository has no local storage.
	Path() string

	// WorkingDirectory returns the path to the working directory.
	WorkingDirectory() string

	// Head returns the checked out branch, or a detached HEAD.
	Head() (Branch, error)

	// Branches returns local then remote branches.
	Branches() ([]Branch, error)

	// Tags returns all tags in the repository.
	Tags() ([]Tag, error)

	// CommitFromSha returns the commit with the given SHA.
	CommitFromSha(sha string) (Commit, error)

	// Commits returns every commit reachable from the branch tip, newest
	// first.
	Commits(branch Branch) ([]Commit, error)

	// QueryCommits returns the commits selected by filter.
	QueryCommits(filter CommitFilter) ([]Commit, error)

	// FindMergeBase returns the best common ancestor of two commits, or ""
	// if they share no history.
	FindMergeBase(sha1, sha2 string) (string, error)

	// PeelTag resolves a tag, annotated or lightweight, to a commit SHA.
	PeelTag(tag Tag) (string, error)

	// UncommittedChanges counts modified entries in the working tree.
	UncommittedChanges() (int, error)

	// IsShallow reports whether history is truncated.
	IsShallow() bool
}
