package calculator

import (
	"fmt"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/context"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/semver"
)

// MetadataCalculator builds the build metadata of a calculated version.
type MetadataCalculator struct {
	store *git.RepositoryStore
}

// NewMetadataCalculator creates a MetadataCalculator.
func NewMetadataCalculator(store *git.RepositoryStore) *MetadataCalculator {
	return &MetadataCalculator{store: store}
}

// Create counts the commits after from up to and including the current
// commit. A nil from counts from the root commit.
func (m *MetadataCalculator) Create(from *git.Commit, ctx *context.GitVersionContext) (semver.BuildMetaData, error) {
	count, err := m.store.CountCommitsSince(from, ctx.CurrentCommit)
	if err != nil {
		return semver.BuildMetaData{}, fmt.Errorf("counting commits since version source: %w", err)
	}

	sourceSha := ""
	if from != nil {
		sourceSha = from.Sha
	}
	return semver.BuildMetaData{
		CommitsSinceTag:           &count,
		Branch:                    ctx.CurrentBranch.FriendlyName(),
		Sha:                       ctx.CurrentCommit.Sha,
		ShortSha:                  ctx.CurrentCommit.ShortSha(),
		VersionSourceSha:          sourceSha,
		CommitDate:                ctx.CurrentCommit.When,
		CommitsSinceVersionSource: count,
		UncommittedChanges:        int64(ctx.NumberOfUncommittedChanges),
	}, nil
}

// Tagged is the metadata of a commit that carries its version as a tag:
// the commit is its own version source and CommitsSinceTag is unset.
func (m *MetadataCalculator) Tagged(ctx *context.GitVersionContext) semver.BuildMetaData {
	return semver.BuildMetaData{
		Branch:             ctx.CurrentBranch.FriendlyName(),
		Sha:                ctx.CurrentCommit.Sha,
		ShortSha:           ctx.CurrentCommit.ShortSha(),
		VersionSourceSha:   ctx.CurrentCommit.Sha,
		CommitDate:         ctx.CurrentCommit.When,
		UncommittedChanges: int64(ctx.NumberOfUncommittedChanges),
	}
}
