// Package calculator turns strategy candidates into the next version:
// base version selection, the increment engine, build metadata and the
// orchestration over every effective configuration of a branch.
package calculator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/context"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/semver"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/strategy"
)

// IncrementExplanation records the reasoning behind an increment decision.
type IncrementExplanation struct {
	Steps []string
}

// Add appends a reasoning step. Nil-safe.
func (e *IncrementExplanation) Add(step string) {
	if e != nil {
		e.Steps = append(e.Steps, step)
	}
}

// Addf appends a formatted reasoning step. Nil-safe.
func (e *IncrementExplanation) Addf(format string, args ...any) {
	if e != nil {
		e.Steps = append(e.Steps, fmt.Sprintf(format, args...))
	}
}

// IncrementResult holds the determined increment and optional reasoning.
type IncrementResult struct {
	Field       semver.VersionField
	Explanation *IncrementExplanation // nil when explain is false
}

// Conventional Commits patterns.
var (
	ccTypeRe         = regexp.MustCompile(`^(\w+)(?:\(.+?\))?(!)?:\s`)
	breakingFooterRe = regexp.MustCompile(`(?m)^BREAKING[ -]CHANGE:\s`)
)

// IncrementFinder decides which version field a base version is bumped by:
// the branch increment, raised by directives found in commit messages.
type IncrementFinder struct {
	store    *git.RepositoryStore
	patterns map[string]*regexp.Regexp
}

// NewIncrementFinder creates an IncrementFinder. Compiled bump patterns are
// kept for the lifetime of the finder.
func NewIncrementFinder(store *git.RepositoryStore) *IncrementFinder {
	return &IncrementFinder{store: store, patterns: make(map[string]*regexp.Regexp)}
}

// DetermineIncrementedField returns the field bv is incremented by. A base
// version that should not be incremented is left alone; otherwise the
// result is the maximum of the branch increment and every directive in the
// commits after the anchor, up to and including the current commit.
func (f *IncrementFinder) DetermineIncrementedField(
	ctx *context.GitVersionContext,
	bv strategy.BaseVersion,
	ec config.EffectiveConfiguration,
	explain bool,
) (IncrementResult, error) {
	var exp *IncrementExplanation
	if explain {
		exp = &IncrementExplanation{}
	}

	if !bv.ShouldIncrement {
		exp.Add("base version is not incremented")
		return IncrementResult{Field: semver.VersionFieldNone, Explanation: exp}, nil
	}

	field := ec.Increment.ToVersionField()
	exp.Addf("branch %q increment: %s", ec.BranchName, field)

	if ec.CommitMessageIncrementing == semver.CommitMessageIncrementDisabled {
		exp.Add("commit message incrementing disabled")
		return IncrementResult{Field: field, Explanation: exp}, nil
	}

	from := git.Commit{}
	if bv.BaseVersionSource != nil {
		from = *bv.BaseVersionSource
	}
	commits, err := f.store.GetCommitLog(from, ctx.CurrentCommit)
	if err != nil {
		return IncrementResult{}, fmt.Errorf("reading commits since %s: %w", from.ShortSha(), err)
	}

	ignore := ec.Ignore()
	highest := semver.VersionFieldNone
	scanned := 0
	for _, c := range commits {
		if ignore.Excludes(c.Sha, c.When) {
			continue
		}
		scanned++
		cf := f.AnalyzeCommit(c, ec)
		if cf != semver.VersionFieldNone {
			exp.Addf("commit %s %q -> %s (%s)", c.ShortSha(), c.Subject(), cf, f.conventionName(c.Message, ec))
		}
		highest = semver.MaxField(highest, cf)
	}
	exp.Addf("scanned %d commits, highest directive: %s", scanned, highest)

	if highest > field {
		exp.Addf("commit directive %s raises branch increment %s", highest, field)
		field = highest
	}
	return IncrementResult{Field: field, Explanation: exp}, nil
}

// AnalyzeCommit returns the version bump a single commit asks for under
// the configured convention. A no-bump directive silences the commit.
func (f *IncrementFinder) AnalyzeCommit(c git.Commit, ec config.EffectiveConfiguration) semver.VersionField {
	switch ec.CommitMessageIncrementing {
	case semver.CommitMessageIncrementDisabled:
		return semver.VersionFieldNone
	case semver.CommitMessageIncrementMergeMessageOnly:
		if !c.IsMerge() {
			return semver.VersionFieldNone
		}
	}

	if ec.CommitMessageConvention != semver.CommitMessageConventionConventionalCommits &&
		f.match(c.Message, ec.NoBumpMessage) {
		return semver.VersionFieldNone
	}

	switch ec.CommitMessageConvention {
	case semver.CommitMessageConventionConventionalCommits:
		return analyzeConventionalCommit(c.Message)
	case semver.CommitMessageConventionBumpDirective:
		return f.analyzeBumpDirective(c.Message, ec)
	default:
		return semver.MaxField(analyzeConventionalCommit(c.Message), f.analyzeBumpDirective(c.Message, ec))
	}
}

// analyzeConventionalCommit parses a Conventional Commits message.
// feat: -> Minor, fix: -> Patch, feat!: or a BREAKING CHANGE footer -> Major.
func analyzeConventionalCommit(msg string) semver.VersionField {
	firstLine, _, _ := strings.Cut(msg, "\n")

	matches := ccTypeRe.FindStringSubmatch(firstLine)
	if matches == nil {
		return semver.VersionFieldNone
	}
	if matches[2] == "!" || breakingFooterRe.MatchString(msg) {
		return semver.VersionFieldMajor
	}

	switch strings.ToLower(matches[1]) {
	case "feat":
		return semver.VersionFieldMinor
	case "fix":
		return semver.VersionFieldPatch
	default:
		return semver.VersionFieldNone
	}
}

// analyzeBumpDirective checks for +semver: directives in commit messages.
func (f *IncrementFinder) analyzeBumpDirective(msg string, ec config.EffectiveConfiguration) semver.VersionField {
	switch {
	case f.match(msg, ec.MajorVersionBumpMessage):
		return semver.VersionFieldMajor
	case f.match(msg, ec.MinorVersionBumpMessage):
		return semver.VersionFieldMinor
	case f.match(msg, ec.PatchVersionBumpMessage):
		return semver.VersionFieldPatch
	default:
		return semver.VersionFieldNone
	}
}

// conventionName is the label shown in explain output for the convention
// that produced a commit's bump.
func (f *IncrementFinder) conventionName(msg string, ec config.EffectiveConfiguration) string {
	switch ec.CommitMessageConvention {
	case semver.CommitMessageConventionConventionalCommits:
		return "Conventional Commits"
	case semver.CommitMessageConventionBumpDirective:
		return "Bump Directive"
	}
	if f.analyzeBumpDirective(msg, ec) > analyzeConventionalCommit(msg) {
		return "Bump Directive"
	}
	return "Conventional Commits"
}

// match reports whether msg matches pattern. Invalid patterns never match;
// configuration validation reports them.
func (f *IncrementFinder) match(msg, pattern string) bool {
	if pattern == "" {
		return false
	}
	re, ok := f.patterns[pattern]
	if !ok {
		var err error
		if re, err = regexp.Compile(pattern); err != nil {
			re = nil
		}
		f.patterns[pattern] = re
	}
	return re != nil && re.MatchString(msg)
}
