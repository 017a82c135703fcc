package git

import "fmt"

// Compile-time check that MockRepository implements Repository.
var _ Repository = (*MockRepository)(nil)

// MockRepository is a configurable Repository for tests. Each method is
// backed by a function field. History queries left nil are answered by
// walking CommitFromShaFunc, so a test only has to describe its commits.
type MockRepository struct {
	PathFunc               func() string
	WorkingDirectoryFunc   func() string
	HeadFunc               func() (Branch, error)
	BranchesFunc           func() ([]Branch, error)
	TagsFunc               func() ([]Tag, error)
	CommitFromShaFunc      func(string) (Commit, error)
	CommitsFunc            func(Branch) ([]Commit, error)
	QueryCommitsFunc       func(CommitFilter) ([]Commit, error)
	FindMergeBaseFunc      func(string, string) (string, error)
	PeelTagFunc            func(Tag) (string, error)
	UncommittedChangesFunc func() (int, error)
	IsShallowFunc          func() bool
}

// NewMockRepository returns a mock whose CommitFromShaFunc serves commits.
func NewMockRepository(commits ...Commit) *MockRepository {
	bySha := make(map[string]Commit, len(commits))
	for _, c := range commits {
		bySha[c.Sha] = c
	}
	return &MockRepository{
		CommitFromShaFunc: func(sha string) (Commit, error) {
			if c, ok := bySha[sha]; ok {
				return c, nil
			}
			return Commit{}, fmt.Errorf("commit %s: %w", sha, ErrCommitNotFound)
		},
	}
}

func (m *MockRepository) Path() string {
	if m.PathFunc != nil {
		return m.PathFunc()
	}
	return ""
}

func (m *MockRepository) WorkingDirectory() string {
	if m.WorkingDirectoryFunc != nil {
		return m.WorkingDirectoryFunc()
	}
	return ""
}

func (m *MockRepository) Head() (Branch, error) {
	if m.HeadFunc != nil {
		return m.HeadFunc()
	}
	return Branch{}, nil
}

func (m *MockRepository) Branches() ([]Branch, error) {
	if m.BranchesFunc != nil {
		return m.BranchesFunc()
	}
	return nil, nil
}

func (m *MockRepository) Tags() ([]Tag, error) {
	if m.TagsFunc != nil {
		return m.TagsFunc()
	}
	return nil, nil
}

func (m *MockRepository) CommitFromSha(sha string) (Commit, error) {
	if m.CommitFromShaFunc != nil {
		return m.CommitFromShaFunc(sha)
	}
	return Commit{}, fmt.Errorf("commit %s: %w", sha, ErrCommitNotFound)
}

func (m *MockRepository) Commits(branch Branch) ([]Commit, error) {
	if m.CommitsFunc != nil {
		return m.CommitsFunc(branch)
	}
	if branch.Tip == nil {
		return nil, nil
	}
	return m.QueryCommits(CommitFilter{IncludeReachableFrom: branch.Tip.Sha})
}

func (m *MockRepository) QueryCommits(filter CommitFilter) ([]Commit, error) {
	if m.QueryCommitsFunc != nil {
		return m.QueryCommitsFunc(filter)
	}
	return newGraph(m.CommitFromSha).query(filter)
}

func (m *MockRepository) FindMergeBase(sha1, sha2 string) (string, error) {
	if m.FindMergeBaseFunc != nil {
		return m.FindMergeBaseFunc(sha1, sha2)
	}
	return newGraph(m.CommitFromSha).mergeBase(sha1, sha2)
}

func (m *MockRepository) PeelTag(tag Tag) (string, error) {
	if m.PeelTagFunc != nil {
		return m.PeelTagFunc(tag)
	}
	return tag.TargetSha, nil
}

func (m *MockRepository) UncommittedChanges() (int, error) {
	if m.UncommittedChangesFunc != nil {
		return m.UncommittedChangesFunc()
	}
	return 0, nil
}

func (m *MockRepository) IsShallow() bool {
	if m.IsShallowFunc != nil {
		return m.IsShallowFunc()
	}
	return false
}
