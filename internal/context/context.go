// Package context provides the GitVersionContext, the immutable snapshot of
// git state and configuration used for version calculation.
package context

import (
	"go.uber.org/zap"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/semver"
)

// NoBranchName names the branch of a detached HEAD that no branch points at.
const NoBranchName = "(no branch)"

// GitVersionContext holds the resolved state needed for version calculation.
// It is created once per invocation and passed to all strategies.
type GitVersionContext struct {
	// CurrentBranch is the branch being versioned.
	CurrentBranch git.Branch

	// CurrentCommit is the commit being versioned (branch tip or explicit SHA).
	CurrentCommit git.Commit

	// FullConfiguration is the merged configuration (defaults + user overrides).
	FullConfiguration *config.Config

	// CurrentCommitTaggedVersion is the highest version tagged on the current
	// commit. Only meaningful when IsCurrentCommitTagged is set.
	CurrentCommitTaggedVersion semver.SemanticVersion

	IsCurrentCommitTagged bool

	// NumberOfUncommittedChanges counts dirty working directory entries.
	NumberOfUncommittedChanges int

	// IsShallow is set when the repository history is truncated.
	IsShallow bool

	Log *zap.Logger
}

// TagPrefix returns the configured tag prefix pattern.
func (ctx *GitVersionContext) TagPrefix() string {
	if ctx.FullConfiguration.TagPrefix != nil {
		return *ctx.FullConfiguration.TagPrefix
	}
	return config.DefaultTagPrefix
}

// Logger returns Log, or a no-op logger when none was set.
func (ctx *GitVersionContext) Logger() *zap.Logger {
	if ctx.Log == nil {
		return zap.NewNop()
	}
	return ctx.Log
}
