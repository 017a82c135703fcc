package strategy

import (
	"fmt"
	"strings"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/context"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
)

const maxMergeMessageResults = 5

// MergeMessageStrategy proposes the version of a release branch merged into
// the current history, read from the merge commit message. True merges are
// considered before single-parent commits, which can only match the squash
// formats.
type MergeMessageStrategy struct {
	store *git.RepositoryStore
}

func NewMergeMessageStrategy(store *git.RepositoryStore) *MergeMessageStrategy {
	return &MergeMessageStrategy{store: store}
}

func (s *MergeMessageStrategy) Name() string { return "MergeMessage" }

func (s *MergeMessageStrategy) GetBaseVersions(
	ctx *context.GitVersionContext,
	ec config.EffectiveConfiguration,
	explain bool,
) ([]BaseVersion, error) {
	if ctx.CurrentCommit.IsEmpty() || !ec.TrackMergeMessage {
		return nil, nil
	}

	history, err := s.store.GetCommitLog(git.Commit{}, ctx.CurrentCommit)
	if err != nil {
		return nil, fmt.Errorf("getting commit log: %w", err)
	}

	var merges, singles []git.Commit
	for _, c := range history {
		if c.IsMerge() {
			merges = append(merges, c)
		} else {
			singles = append(singles, c)
		}
	}

	m := mergeScan{
		ctx:     ctx,
		ec:      ec,
		formats: git.CompileMergeMessageFormats(ec.MergeMessageFormats),
	}
	if explain {
		m.trace = NewExplanation(s.Name())
	}

	var out []BaseVersion
	for _, c := range append(merges, singles...) {
		if len(out) == maxMergeMessageResults {
			break
		}
		if bv, ok := m.version(c); ok {
			out = append(out, bv)
		}
	}
	return out, nil
}

// mergeScan holds what every commit of one scan is checked against. trace
// collects the reasons commits were passed over.
type mergeScan struct {
	ctx     *context.GitVersionContext
	ec      config.EffectiveConfiguration
	formats []git.MergeMessageFormat
	trace   *Explanation
}

func (m mergeScan) version(c git.Commit) (BaseVersion, bool) {
	msg := git.ParseMergeMessage(c.Message, m.formats)
	branch := msg.MergedBranchWithoutRemote()
	if msg.IsEmpty() || branch == "" {
		return BaseVersion{}, false
	}
	if !m.ctx.FullConfiguration.IsReleaseBranch(branch) {
		m.trace.Addf("%s merges %q, not a release branch", c.ShortSha(), branch)
		return BaseVersion{}, false
	}
	ver, ok := msg.Version(m.ec.TagPrefix)
	if !ok {
		m.trace.Addf("%s merges %q without a version", c.ShortSha(), branch)
		return BaseVersion{}, false
	}

	kind := "Merge message"
	if !c.IsMerge() {
		kind = "Squash merge"
	}
	bv := BaseVersion{
		Source:            fmt.Sprintf("%s '%s'", kind, strings.TrimSpace(msg.Subject())),
		ShouldIncrement:   !m.ec.PreventIncrementOfMergedBranch,
		SemanticVersion:   ver,
		BaseVersionSource: &c,
	}
	if m.trace != nil {
		bv.Explanation = NewExplanation(m.trace.Strategy)
		bv.Explanation.Steps = append(bv.Explanation.Steps, m.trace.Steps...)
		bv.Explanation.Addf("%s merges %q (%s format): %s, increment %t",
			c.ShortSha(), branch, msg.FormatName, ver.SemVer(), bv.ShouldIncrement)
	}
	return bv, true
}
