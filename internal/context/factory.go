package context

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
)

// Options configures what the factory resolves.
type Options struct {
	// TargetBranch overrides HEAD. Empty string means use HEAD.
	TargetBranch string

	// CommitID overrides the branch tip. Empty string means use tip.
	CommitID string

	Log *zap.Logger
}

// NewContext creates a GitVersionContext by resolving the target branch,
// current commit, version tags, and uncommitted change count.
func NewContext(store *git.RepositoryStore, cfg *config.Config, opts Options) (*GitVersionContext, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	currentBranch, err := store.GetTargetBranch(opts.TargetBranch)
	if err != nil {
		return nil, fmt.Errorf("resolving target branch: %w", err)
	}

	currentCommit, err := store.GetCurrentCommit(currentBranch, opts.CommitID)
	if err != nil {
		return nil, fmt.Errorf("resolving current commit: %w", err)
	}

	if currentBranch.IsDetachedHead {
		currentBranch, err = resolveDetachedHead(store, cfg, currentCommit)
		if err != nil {
			return nil, err
		}
		log.Info("detached HEAD resolved",
			zap.String("branch", currentBranch.FriendlyName()),
			zap.String("commit", currentCommit.ShortSha()))
	}

	ctx := &GitVersionContext{
		CurrentBranch:     currentBranch,
		CurrentCommit:     currentCommit,
		FullConfiguration: cfg,
		IsShallow:         store.IsShallow(),
		Log:               log,
	}
	if ctx.IsShallow {
		log.Warn("repository is a shallow clone, history before the shallow boundary is ignored")
	}

	ctx.CurrentCommitTaggedVersion, ctx.IsCurrentCommitTagged, err =
		store.GetCurrentCommitTaggedVersion(currentCommit, ctx.TagPrefix())
	if err != nil {
		return nil, fmt.Errorf("checking version tag: %w", err)
	}

	ctx.NumberOfUncommittedChanges, err = store.UncommittedChanges()
	if err != nil {
		return nil, fmt.Errorf("counting uncommitted changes: %w", err)
	}

	return ctx, nil
}

// resolveDetachedHead picks a branch for a commit checked out without one:
// a branch whose tip is the commit, otherwise a branch containing it. Among
// several, the one whose configuration is declared first wins, then local
// before remote, then by name. With no candidate the branch is NoBranchName.
func resolveDetachedHead(store *git.RepositoryStore, cfg *config.Config, commit git.Commit) (git.Branch, error) {
	candidates, err := store.GetBranchesForCommit(commit)
	if err != nil {
		return git.Branch{}, fmt.Errorf("finding branches for detached HEAD: %w", err)
	}
	if len(candidates) == 0 {
		candidates, err = store.GetBranchesContainingCommit(commit)
		if err != nil {
			return git.Branch{}, fmt.Errorf("finding branches for detached HEAD: %w", err)
		}
	}
	if best, ok := pickBestBranch(candidates, cfg); ok {
		return best, nil
	}

	c := commit
	return git.Branch{
		Name:           git.NewBranchReferenceName(NoBranchName),
		Tip:            &c,
		IsDetachedHead: true,
	}, nil
}

func pickBestBranch(branches []git.Branch, cfg *config.Config) (git.Branch, bool) {
	if len(branches) == 0 {
		return git.Branch{}, false
	}

	order := make(map[string]int, len(cfg.Branches))
	for i, nb := range cfg.Branches {
		order[nb.Name] = i
	}
	rank := func(b git.Branch) int {
		nb, err := cfg.GetBranchConfiguration(b.ConfigName())
		if err != nil {
			return len(cfg.Branches)
		}
		return order[nb.Name]
	}

	less := func(a, b git.Branch) bool {
		ra, rb := rank(a), rank(b)
		if ra != rb {
			return ra < rb
		}
		if a.IsRemote != b.IsRemote {
			return !a.IsRemote
		}
		return a.FriendlyName() < b.FriendlyName()
	}

	best := branches[0]
	for _, b := range branches[1:] {
		if less(b, best) {
			best = b
		}
	}
	return best, true
}
