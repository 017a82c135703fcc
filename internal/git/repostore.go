package git

import (
	"fmt"
	"slices"
	"time"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/semver"
)

// RepositoryStore answers the version-specific questions the engine asks of
// a Repository. Results are memoized for the lifetime of the store, which
// must therefore be created per calculation. It is not safe for concurrent
// use.
type RepositoryStore struct {
	repo Repository

	branches     []Branch
	tags         []Tag
	commitLists  map[CommitFilter][]Commit
	commitSets   map[string]map[string]struct{}
	mergeBases   map[[2]string]string
	versionTags  map[string][]VersionTag
	tagsByCommit map[string]map[string][]VersionTag
	commitCounts map[[2]string]int64
	baseSource   map[string]Commit
	branchesMemo bool
	tagsMemo     bool
}

// NewRepositoryStore creates a new RepositoryStore wrapping the given Repository.
func NewRepositoryStore(repo Repository) *RepositoryStore {
	return &RepositoryStore{
		repo:         repo,
		commitLists:  make(map[CommitFilter][]Commit),
		commitSets:   make(map[string]map[string]struct{}),
		mergeBases:   make(map[[2]string]string),
		versionTags:  make(map[string][]VersionTag),
		tagsByCommit: make(map[string]map[string][]VersionTag),
		commitCounts: make(map[[2]string]int64),
		baseSource:   make(map[string]Commit),
	}
}

// Repository returns the wrapped repository.
func (s *RepositoryStore) Repository() Repository {
	return s.repo
}

// --- Refs ---

// Head returns the checked out branch.
func (s *RepositoryStore) Head() (Branch, error) {
	return s.repo.Head()
}

// Branches returns every branch, local first.
func (s *RepositoryStore) Branches() ([]Branch, error) {
	if s.branchesMemo {
		return s.branches, nil
	}
	branches, err := s.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	s.branches, s.branchesMemo = branches, true
	return branches, nil
}

// LocalBranches returns local branches plus remote branches that have no
// local counterpart, so a CI checkout with only origin/* refs still sees
// its history.
func (s *RepositoryStore) LocalBranches() ([]Branch, error) {
	all, err := s.Branches()
	if err != nil {
		return nil, err
	}
	local := make(map[string]bool)
	var out []Branch
	for _, b := range all {
		if !b.IsRemote && b.Tip != nil {
			local[b.ConfigName()] = true
			out = append(out, b)
		}
	}
	for _, b := range all {
		if b.IsRemote && b.Tip != nil && !local[b.ConfigName()] {
			local[b.ConfigName()] = true
			out = append(out, b)
		}
	}
	return out, nil
}

// Tags returns every tag.
func (s *RepositoryStore) Tags() ([]Tag, error) {
	if s.tagsMemo {
		return s.tags, nil
	}
	tags, err := s.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	s.tags, s.tagsMemo = tags, true
	return tags, nil
}

// --- Tag queries ---

// GetValidVersionTags returns the tags that parse as versions under
// tagPrefix, optionally only those whose commit is not newer than olderThan.
func (s *RepositoryStore) GetValidVersionTags(tagPrefix string, olderThan *time.Time) ([]VersionTag, error) {
	all, ok := s.versionTags[tagPrefix]
	if !ok {
		tags, err := s.Tags()
		if err != nil {
			return nil, err
		}
		byCommit := make(map[string][]VersionTag)
		for _, tag := range tags {
			ver, ok := semver.TryParse(tag.Name.Friendly, tagPrefix)
			if !ok {
				continue
			}
			sha, err := s.repo.PeelTag(tag)
			if err != nil {
				continue
			}
			commit, err := s.repo.CommitFromSha(sha)
			if err != nil {
				continue
			}
			vt := VersionTag{Tag: tag, Version: ver, Commit: commit}
			all = append(all, vt)
			byCommit[commit.Sha] = append(byCommit[commit.Sha], vt)
		}
		s.versionTags[tagPrefix] = all
		s.tagsByCommit[tagPrefix] = byCommit
	}

	if olderThan == nil {
		return all, nil
	}
	var result []VersionTag
	for _, vt := range all {
		if !vt.Commit.When.After(*olderThan) {
			result = append(result, vt)
		}
	}
	return result, nil
}

// GetVersionTagsOnCommit returns the version tags pointing at sha, highest
// first.
func (s *RepositoryStore) GetVersionTagsOnCommit(sha, tagPrefix string) ([]VersionTag, error) {
	if _, err := s.GetValidVersionTags(tagPrefix, nil); err != nil {
		return nil, err
	}
	tags := slices.Clone(s.tagsByCommit[tagPrefix][sha])
	sortVersionTagsDescending(tags)
	return tags, nil
}

// GetCurrentCommitTaggedVersion returns the highest version tagged on
// commit.
func (s *RepositoryStore) GetCurrentCommitTaggedVersion(commit Commit, tagPrefix string) (semver.SemanticVersion, bool, error) {
	tags, err := s.GetVersionTagsOnCommit(commit.Sha, tagPrefix)
	if err != nil || len(tags) == 0 {
		return semver.SemanticVersion{}, false, err
	}
	return tags[0].Version, true, nil
}

// GetVersionTagsOnBranch returns the version tags on commits reachable from
// the branch tip, highest first.
func (s *RepositoryStore) GetVersionTagsOnBranch(branch Branch, tagPrefix string) ([]VersionTag, error) {
	all, err := s.GetValidVersionTags(tagPrefix, nil)
	if err != nil {
		return nil, err
	}
	set, err := s.commitSet(branch)
	if err != nil {
		return nil, err
	}

	var result []VersionTag
	for _, vt := range all {
		if _, ok := set[vt.Commit.Sha]; ok {
			result = append(result, vt)
		}
	}
	sortVersionTagsDescending(result)
	return result, nil
}

func sortVersionTagsDescending(tags []VersionTag) {
	slices.SortStableFunc(tags, func(a, b VersionTag) int {
		return b.Version.CompareTo(a.Version)
	})
}

// --- Branch queries ---

// GetBranchesMatching returns local branches (see LocalBranches) for which
// match reports true on the configuration name.
func (s *RepositoryStore) GetBranchesMatching(match func(name string) bool) ([]Branch, error) {
	branches, err := s.LocalBranches()
	if err != nil {
		return nil, err
	}
	var result []Branch
	for _, b := range branches {
		if match(b.ConfigName()) {
			result = append(result, b)
		}
	}
	return result, nil
}

// GetReleaseBranches returns branches resolving to a release configuration.
func (s *RepositoryStore) GetReleaseBranches(cfg *config.Config) ([]Branch, error) {
	return s.GetBranchesMatching(cfg.IsReleaseBranch)
}

// GetMainBranches returns branches resolving to a main configuration.
func (s *RepositoryStore) GetMainBranches(cfg *config.Config) ([]Branch, error) {
	return s.GetBranchesMatching(func(name string) bool {
		nb, err := cfg.GetBranchConfiguration(name)
		return err == nil && nb.Config.IsMainBranch != nil && *nb.Config.IsMainBranch
	})
}

// GetBranchesContainingCommit returns branches whose history includes commit.
func (s *RepositoryStore) GetBranchesContainingCommit(commit Commit) ([]Branch, error) {
	if commit.IsEmpty() {
		return nil, nil
	}
	branches, err := s.LocalBranches()
	if err != nil {
		return nil, err
	}
	var result []Branch
	for _, b := range branches {
		on, err := s.IsCommitOnBranch(commit, b)
		if err != nil {
			return nil, err
		}
		if on {
			result = append(result, b)
		}
	}
	return result, nil
}

// GetBranchesForCommit returns branches whose tip is commit.
func (s *RepositoryStore) GetBranchesForCommit(commit Commit) ([]Branch, error) {
	branches, err := s.LocalBranches()
	if err != nil {
		return nil, err
	}

	var result []Branch
	for _, b := range branches {
		if b.Tip.Sha == commit.Sha {
			result = append(result, b)
		}
	}
	return result, nil
}

// GetTargetBranch resolves the target branch from a name or HEAD.
func (s *RepositoryStore) GetTargetBranch(targetBranchName string) (Branch, error) {
	if targetBranchName == "" {
		return s.repo.Head()
	}

	branches, err := s.Branches()
	if err != nil {
		return Branch{}, err
	}

	for _, b := range branches {
		if b.FriendlyName() == targetBranchName || b.Name.Canonical == targetBranchName {
			return b, nil
		}
	}
	for _, b := range branches {
		if b.ConfigName() == targetBranchName {
			return b, nil
		}
	}

	return Branch{}, fmt.Errorf("branch %q not found", targetBranchName)
}

// --- Commit queries ---

// GetCurrentCommit returns the commit from a SHA or the branch tip.
func (s *RepositoryStore) GetCurrentCommit(branch Branch, commitID string) (Commit, error) {
	if commitID != "" {
		return s.repo.CommitFromSha(commitID)
	}
	if branch.Tip == nil {
		return Commit{}, fmt.Errorf("branch %q has no tip commit", branch.FriendlyName())
	}
	return *branch.Tip, nil
}

// CommitFromSha loads a commit.
func (s *RepositoryStore) CommitFromSha(sha string) (Commit, error) {
	return s.repo.CommitFromSha(sha)
}

// QueryCommits is a memoized Repository.QueryCommits.
func (s *RepositoryStore) QueryCommits(filter CommitFilter) ([]Commit, error) {
	if commits, ok := s.commitLists[filter]; ok {
		return commits, nil
	}
	commits, err := s.repo.QueryCommits(filter)
	if err != nil {
		return nil, err
	}
	s.commitLists[filter] = commits
	return commits, nil
}

// GetBranchCommits returns every commit reachable from the branch tip,
// newest first.
func (s *RepositoryStore) GetBranchCommits(branch Branch) ([]Commit, error) {
	if branch.Tip == nil {
		return nil, nil
	}
	return s.QueryCommits(CommitFilter{IncludeReachableFrom: branch.Tip.Sha})
}

// GetCommitLog returns commits reachable from to but not from from. A zero
// from means all of to's history.
func (s *RepositoryStore) GetCommitLog(from, to Commit) ([]Commit, error) {
	return s.QueryCommits(CommitFilter{IncludeReachableFrom: to.Sha, ExcludeReachableFrom: from.Sha})
}

// GetMainlineCommitLog is GetCommitLog restricted to first parents.
func (s *RepositoryStore) GetMainlineCommitLog(from, to Commit) ([]Commit, error) {
	return s.QueryCommits(CommitFilter{IncludeReachableFrom: to.Sha, ExcludeReachableFrom: from.Sha, FirstParentOnly: true})
}

// CountCommitsSince counts commits after from (exclusive) up to to
// (inclusive). A nil from counts from the root, root excluded, matching a
// root-anchored base version.
func (s *RepositoryStore) CountCommitsSince(from *Commit, to Commit) (int64, error) {
	if from == nil {
		root, err := s.GetBaseVersionSource(to)
		if err != nil {
			return 0, err
		}
		from = &root
	}
	key := [2]string{from.Sha, to.Sha}
	if n, ok := s.commitCounts[key]; ok {
		return n, nil
	}
	commits, err := s.GetCommitLog(*from, to)
	if err != nil {
		return 0, err
	}
	n := int64(len(commits))
	s.commitCounts[key] = n
	return n, nil
}

// GetBaseVersionSource returns the oldest commit reachable from tip. In a
// shallow clone this is the oldest commit present.
func (s *RepositoryStore) GetBaseVersionSource(tip Commit) (Commit, error) {
	if c, ok := s.baseSource[tip.Sha]; ok {
		return c, nil
	}
	commits, err := s.QueryCommits(CommitFilter{IncludeReachableFrom: tip.Sha})
	if err != nil {
		return Commit{}, fmt.Errorf("getting commit log: %w", err)
	}
	root := tip
	if len(commits) > 0 {
		root = commits[len(commits)-1]
	}
	s.baseSource[tip.Sha] = root
	return root, nil
}

// --- Merge base ---

// FindMergeBase returns the merge base of two commits.
func (s *RepositoryStore) FindMergeBase(commit1, commit2 Commit) (Commit, bool, error) {
	if commit1.IsEmpty() || commit2.IsEmpty() {
		return Commit{}, false, nil
	}
	a, b := commit1.Sha, commit2.Sha
	if b < a {
		a, b = b, a
	}
	key := [2]string{a, b}
	sha, ok := s.mergeBases[key]
	if !ok {
		var err error
		sha, err = s.repo.FindMergeBase(commit1.Sha, commit2.Sha)
		if err != nil {
			return Commit{}, false, fmt.Errorf("finding merge base: %w", err)
		}
		s.mergeBases[key] = sha
	}
	if sha == "" {
		return Commit{}, false, nil
	}

	commit, err := s.repo.CommitFromSha(sha)
	if err != nil {
		return Commit{}, false, fmt.Errorf("loading merge base commit: %w", err)
	}
	return commit, true, nil
}

// FindMergeBaseOfBranches returns the merge base of two branch tips.
func (s *RepositoryStore) FindMergeBaseOfBranches(branch1, branch2 Branch) (Commit, bool, error) {
	if branch1.Tip == nil || branch2.Tip == nil {
		return Commit{}, false, nil
	}
	return s.FindMergeBase(*branch1.Tip, *branch2.Tip)
}

// --- Utility ---

// IsCommitOnBranch checks if a commit is reachable from the branch tip.
func (s *RepositoryStore) IsCommitOnBranch(commit Commit, branch Branch) (bool, error) {
	if branch.Tip == nil || commit.IsEmpty() {
		return false, nil
	}
	set, err := s.commitSet(branch)
	if err != nil {
		return false, err
	}
	_, ok := set[commit.Sha]
	return ok, nil
}

func (s *RepositoryStore) commitSet(branch Branch) (map[string]struct{}, error) {
	if branch.Tip == nil {
		return nil, nil
	}
	if set, ok := s.commitSets[branch.Tip.Sha]; ok {
		return set, nil
	}
	commits, err := s.GetBranchCommits(branch)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(commits))
	for _, c := range commits {
		set[c.Sha] = struct{}{}
	}
	s.commitSets[branch.Tip.Sha] = set
	return set, nil
}

// UncommittedChanges returns the number of uncommitted changes.
func (s *RepositoryStore) UncommittedChanges() (int, error) {
	return s.repo.UncommittedChanges()
}

// IsShallow reports whether the repository history is truncated.
func (s *RepositoryStore) IsShallow() bool {
	return s.repo.IsShallow()
}
