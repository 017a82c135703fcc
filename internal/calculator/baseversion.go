package calculator

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/context"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/semver"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/strategy"
)

// Candidate is one strategy proposal together with the version it ranks by.
type Candidate struct {
	BaseVersion strategy.BaseVersion
	Increment   IncrementResult
	Incremented semver.SemanticVersion
	// Ignored is set when the anchor falls under the ignore rules.
	Ignored bool
}

// BaseVersionResult is the winning candidate. When the winner had no
// anchor of its own, BaseVersion.BaseVersionSource is borrowed from the
// highest anchored candidate.
type BaseVersionResult struct {
	BaseVersion            strategy.BaseVersion
	Increment              IncrementResult
	Incremented            semver.SemanticVersion
	EffectiveConfiguration config.EffectiveConfiguration
	Candidates             []Candidate
}

// BaseVersionCalculator runs all strategies and selects the base version.
type BaseVersionCalculator struct {
	strategies []strategy.VersionStrategy
	increment  *IncrementFinder
}

// NewBaseVersionCalculator creates a new BaseVersionCalculator. Strategies
// are evaluated in the order given; on equal versions the earlier proposal
// wins.
func NewBaseVersionCalculator(strategies []strategy.VersionStrategy, increment *IncrementFinder) *BaseVersionCalculator {
	return &BaseVersionCalculator{strategies: strategies, increment: increment}
}

// Calculate collects every proposal, drops those anchored on ignored
// commits and picks the highest incremented version.
func (c *BaseVersionCalculator) Calculate(
	ctx *context.GitVersionContext,
	ec config.EffectiveConfiguration,
	explain bool,
) (BaseVersionResult, error) {
	log := ctx.Logger()
	ignore := ec.Ignore()

	var candidates []Candidate
	for _, s := range c.strategies {
		versions, err := s.GetBaseVersions(ctx, ec, explain)
		if err != nil {
			return BaseVersionResult{}, fmt.Errorf("strategy %s: %w", s.Name(), err)
		}
		for _, bv := range versions {
			cand := Candidate{BaseVersion: bv, Incremented: bv.SemanticVersion}
			if a := bv.BaseVersionSource; a != nil && ignore.Excludes(a.Sha, a.When) {
				cand.Ignored = true
				log.Debug("base version ignored", zap.Object("candidate", bv))
				candidates = append(candidates, cand)
				continue
			}
			inc, err := c.increment.DetermineIncrementedField(ctx, bv, ec, explain)
			if err != nil {
				return BaseVersionResult{}, err
			}
			cand.Increment = inc
			cand.Incremented = bv.SemanticVersion.Increment(inc.Field)
			log.Debug("base version proposed",
				zap.String("strategy", s.Name()),
				zap.Object("candidate", bv),
				zap.String("incremented", cand.Incremented.SemVer()))
			candidates = append(candidates, cand)
		}
	}

	winner := selectWinner(candidates)
	if winner < 0 {
		return BaseVersionResult{}, errors.New("no base version left after applying ignore rules")
	}

	w := candidates[winner]
	bv := w.BaseVersion
	if bv.BaseVersionSource == nil {
		if anchored := selectAnchored(candidates); anchored >= 0 {
			bv.BaseVersionSource = candidates[anchored].BaseVersion.BaseVersionSource
			if bv.Explanation != nil {
				bv.Explanation.Addf("counting commits from %s (%s)",
					bv.BaseVersionSource.ShortSha(), candidates[anchored].BaseVersion.Source)
			}
		}
	}

	log.Info("base version selected",
		zap.String("branch", ec.BranchName),
		zap.String("source", bv.Source),
		zap.String("version", w.Incremented.SemVer()))

	return BaseVersionResult{
		BaseVersion:            bv,
		Increment:              w.Increment,
		Incremented:            w.Incremented,
		EffectiveConfiguration: ec,
		Candidates:             candidates,
	}, nil
}

// selectWinner returns the index of the highest incremented candidate, the
// first one on ties, or -1.
func selectWinner(candidates []Candidate) int {
	best := -1
	for i, cand := range candidates {
		if cand.Ignored {
			continue
		}
		if best < 0 || cand.Incremented.CompareTo(candidates[best].Incremented) > 0 {
			best = i
		}
	}
	return best
}

// selectAnchored is selectWinner restricted to candidates with an anchor.
func selectAnchored(candidates []Candidate) int {
	best := -1
	for i, cand := range candidates {
		if cand.Ignored || cand.BaseVersion.BaseVersionSource == nil {
			continue
		}
		if best < 0 || cand.Incremented.CompareTo(candidates[best].Incremented) > 0 {
			best = i
		}
	}
	return best
}
