// Package branching resolves the effective configuration of a branch,
// following Inherit increments through the branches it was created from.
package branching

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/semver"
)

// Effective pairs a configuration with the branch whose configuration
// ended the inheritance chain.
type Effective struct {
	Branch        git.Branch
	Configuration config.EffectiveConfiguration
}

// Resolver computes effective configurations. Results are memoized per
// branch and tip, so a Resolver belongs to one calculation.
type Resolver struct {
	store *git.RepositoryStore
	cfg   *config.Config
	log   *zap.Logger
	memo  map[string][]Effective
}

// NewResolver creates a Resolver. A nil log discards output.
func NewResolver(store *git.RepositoryStore, cfg *config.Config, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		store: store,
		cfg:   cfg,
		log:   log,
		memo:  make(map[string][]Effective),
	}
}

func memoKey(branch git.Branch) string {
	if branch.Tip == nil {
		return branch.Name.Canonical
	}
	return branch.Name.Canonical + "@" + branch.Tip.Sha
}

// GetEffectiveConfigurations returns the configurations branch is
// versioned with. More than one is returned when several source branches
// share the most recent merge base. The result is empty when the increment
// is Inherit, no source branch shares history with branch, and the global
// increment is Inherit as well; see Unresolvable.
func (r *Resolver) GetEffectiveConfigurations(branch git.Branch) ([]Effective, error) {
	key := memoKey(branch)
	if out, ok := r.memo[key]; ok {
		return out, nil
	}

	traversed := map[string]bool{branch.ConfigName(): true}
	var out []Effective
	if err := r.resolve(branch, "", nil, traversed, &out); err != nil {
		return nil, err
	}
	r.memo[key] = out
	return out, nil
}

// Unresolvable is the error for a branch whose Inherit increment found
// no source.
func (r *Resolver) Unresolvable(branch git.Branch) error {
	nb, err := r.cfg.GetBranchConfiguration(branch.ConfigName())
	if err != nil {
		return err
	}
	var sources []string
	if nb.Config.SourceBranches != nil {
		sources = *nb.Config.SourceBranches
	}
	return &config.Error{
		Key: "branches." + nb.Name + ".increment",
		Err: &TopologyError{Branch: branch.FriendlyName(), Sources: sources},
	}
}

// resolve walks from branch towards its sources. child is the
// configuration accumulated so far, keyed by childKey; its fields win over
// those of the branches it inherits from.
func (r *Resolver) resolve(
	branch git.Branch,
	childKey string,
	child *config.BranchConfig,
	traversed map[string]bool,
	out *[]Effective,
) error {
	nb, err := r.cfg.GetBranchConfiguration(branch.ConfigName())
	if err != nil {
		return err
	}
	merged := nb.Config.Clone()
	key := nb.Name
	if child != nil {
		merged = child.Inherit(nb.Config)
		key = childKey
	}

	if !merged.IncrementIsInherit() {
		r.log.Debug("effective configuration resolved",
			zap.String("branch", branch.FriendlyName()),
			zap.String("configuration", key),
			zap.Stringer("increment", *merged.Increment))
		*out = append(*out, Effective{Branch: branch, Configuration: config.NewEffectiveConfiguration(r.cfg, key, merged)})
		return nil
	}

	var sourceNames []string
	if nb.Config.SourceBranches != nil {
		sourceNames = *nb.Config.SourceBranches
	}
	sources, err := r.sourceBranches(branch, sourceNames, traversed)
	if err != nil {
		return err
	}

	if len(sources) == 0 {
		global := r.cfg.Increment
		if global == nil || *global == semver.IncrementStrategyInherit {
			r.log.Debug("no source branch to inherit from",
				zap.String("branch", branch.FriendlyName()),
				zap.Strings("sources", sourceNames))
			return nil
		}
		inc := *global
		merged.Increment = &inc
		*out = append(*out, Effective{Branch: branch, Configuration: config.NewEffectiveConfiguration(r.cfg, key, merged)})
		return nil
	}

	for _, source := range sources {
		next := make(map[string]bool, len(traversed)+1)
		for k := range traversed {
			next[k] = true
		}
		next[source.ConfigName()] = true
		if err := r.resolve(source, key, merged, next, out); err != nil {
			return err
		}
	}
	return nil
}

// sourceBranches returns the candidates matching sourceNames that share the
// most recent merge base with branch.
func (r *Resolver) sourceBranches(branch git.Branch, sourceNames []string, traversed map[string]bool) ([]git.Branch, error) {
	if branch.Tip == nil || len(sourceNames) == 0 {
		return nil, nil
	}
	candidates, err := r.store.GetBranchesMatching(func(name string) bool {
		if traversed[name] || name == branch.ConfigName() {
			return false
		}
		nb, err := r.cfg.GetBranchConfiguration(name)
		return err == nil && slices.Contains(sourceNames, nb.Name)
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(candidates, func(a, b git.Branch) int {
		return strings.Compare(a.ConfigName(), b.ConfigName())
	})

	var best []git.Branch
	var bestBase git.Commit
	for _, c := range candidates {
		base, found, err := r.store.FindMergeBaseOfBranches(branch, c)
		if err != nil {
			return nil, fmt.Errorf("merge base of %s and %s: %w", branch.FriendlyName(), c.FriendlyName(), err)
		}
		if !found {
			continue
		}
		switch {
		case len(best) == 0 || base.When.After(bestBase.When):
			best, bestBase = []git.Branch{c}, base
		case base.Sha == bestBase.Sha || base.When.Equal(bestBase.When):
			best = append(best, c)
		}
	}
	return best, nil
}

// FindCommitBranchWasBranchedFrom returns the source branch sharing the most
// recent merge base with branch, and that merge base. Branches named in
// excluded are skipped. The result is empty when nothing qualifies.
func (r *Resolver) FindCommitBranchWasBranchedFrom(branch git.Branch, excluded ...string) (git.BranchCommit, error) {
	nb, err := r.cfg.GetBranchConfiguration(branch.ConfigName())
	if err != nil {
		return git.BranchCommit{}, err
	}
	var sourceNames []string
	if nb.Config.SourceBranches != nil {
		sourceNames = *nb.Config.SourceBranches
	}
	skip := map[string]bool{branch.ConfigName(): true}
	for _, e := range excluded {
		skip[e] = true
	}
	sources, err := r.sourceBranches(branch, sourceNames, skip)
	if err != nil || len(sources) == 0 {
		return git.BranchCommit{}, err
	}
	base, _, err := r.store.FindMergeBaseOfBranches(branch, sources[0])
	if err != nil {
		return git.BranchCommit{}, err
	}
	return git.BranchCommit{Branch: sources[0], Commit: base}, nil
}
