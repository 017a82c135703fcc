package strategy

import "github.com/MyCarrier-DevOps/go-gitversion/internal/git"

// AllStrategies returns all version strategies in evaluation order. The
// order breaks ties between equal candidates, so it is fixed:
//  1. ConfigNextVersion
//  2. TaggedCommit
//  3. MergeMessage
//  4. VersionInBranchName
//  5. TrackReleaseBranches
//  6. Fallback
//
// legacyNextVersion is the content of NextVersion.txt, if any.
func AllStrategies(store *git.RepositoryStore, legacyNextVersion string) []VersionStrategy {
	return []VersionStrategy{
		NewConfigNextVersionStrategy(legacyNextVersion),
		NewTaggedCommitStrategy(store),
		NewMergeMessageStrategy(store),
		NewVersionInBranchNameStrategy(),
		NewTrackReleaseBranchesStrategy(store),
		NewFallbackStrategy(store),
	}
}
