// Package strategy implements the strategies that discover candidate base
// versions from git history and configuration.
package strategy

import (
	"fmt"

	"go.uber.org/zap/zapcore"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/context"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/semver"
)

// BaseVersion is one candidate a strategy proposes.
type BaseVersion struct {
	Source          string
	ShouldIncrement bool
	SemanticVersion semver.SemanticVersion

	// BaseVersionSource is the commit commits are counted from. Nil for
	// versions that do not come from history (next-version, branch names);
	// the calculator then borrows the anchor of another candidate.
	BaseVersionSource *git.Commit

	// BranchNameOverride replaces the branch name pre-release labels are
	// derived from.
	BranchNameOverride string

	// Explanation is nil unless explain mode is on.
	Explanation *Explanation
}

func (bv BaseVersion) anchor() string {
	if bv.BaseVersionSource == nil {
		return "none"
	}
	return bv.BaseVersionSource.ShortSha()
}

func (bv BaseVersion) String() string {
	return fmt.Sprintf("%s: %s (source: %s, increment: %t)",
		bv.Source, bv.SemanticVersion.SemVer(), bv.anchor(), bv.ShouldIncrement)
}

// MarshalLogObject lets candidates be logged with zap.Object.
func (bv BaseVersion) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("source", bv.Source)
	enc.AddString("version", bv.SemanticVersion.SemVer())
	enc.AddString("anchor", bv.anchor())
	enc.AddBool("increment", bv.ShouldIncrement)
	if bv.BranchNameOverride != "" {
		enc.AddString("branch", bv.BranchNameOverride)
	}
	return nil
}

// Explanation is the trace of how a strategy reached a BaseVersion.
type Explanation struct {
	Strategy string
	Steps    []string
}

func NewExplanation(strategy string) *Explanation {
	return &Explanation{Strategy: strategy}
}

// Add and Addf are no-ops on a nil Explanation.
func (e *Explanation) Add(step string) {
	if e != nil {
		e.Steps = append(e.Steps, step)
	}
}

func (e *Explanation) Addf(format string, args ...any) {
	e.Add(fmt.Sprintf(format, args...))
}

// VersionStrategy discovers candidate base versions. Strategies fill in
// Explanation only when explain is set.
type VersionStrategy interface {
	Name() string
	GetBaseVersions(ctx *context.GitVersionContext, ec config.EffectiveConfiguration, explain bool) ([]BaseVersion, error)
}
