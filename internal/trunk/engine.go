package trunk

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/branching"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/context"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/semver"
)

// Result is the folded version of the current branch.
type Result struct {
	Version semver.SemanticVersion
	// BaseVersionSource is the commit of the last operand, the commit
	// commits are counted from.
	BaseVersionSource *git.Commit
	Arena             *Arena
	// Steps traces every classified commit; nil unless explain was set.
	Steps []string
}

// Engine builds and folds iterations. It belongs to one calculation.
type Engine struct {
	store    *git.RepositoryStore
	cfg      *config.Config
	resolver *branching.Resolver
	analyze  CommitIncrement
}

// NewEngine creates an Engine. analyze reports commit message directives;
// nil disables them.
func NewEngine(store *git.RepositoryStore, cfg *config.Config, resolver *branching.Resolver, analyze CommitIncrement) *Engine {
	return &Engine{store: store, cfg: cfg, resolver: resolver, analyze: analyze}
}

// Build lays out the history of the current commit. Iteration 0 is the
// current branch back to where it was created; each branch it was created
// from continues the line until a main branch, which runs to the root.
// Merged sides of merge commits become iterations of their own.
func (e *Engine) Build(ctx *context.GitVersionContext, ec config.EffectiveConfiguration) (*Arena, error) {
	arena := newArena()
	b := &builder{
		store:     e.store,
		cfg:       e.cfg,
		tagPrefix: ec.TagPrefix,
		formats:   git.CompileMergeMessageFormats(ec.MergeMessageFormats),
		arena:     arena,
	}

	iteration := arena.addIteration(&Iteration{
		BranchName:    ctx.CurrentBranch.ConfigName(),
		Configuration: ec,
		Parent:        -1,
		MergedBy:      -1,
	})
	branch, tip, conf := ctx.CurrentBranch, ctx.CurrentCommit, ec
	visited := []string{branch.ConfigName()}
	for !conf.IsMainBranch {
		from, err := e.resolver.FindCommitBranchWasBranchedFrom(branch, visited...)
		if err != nil {
			return nil, fmt.Errorf("finding where %s was branched from: %w", branch.FriendlyName(), err)
		}
		if from.IsEmpty() {
			break
		}
		b.work = append(b.work, segment{iteration: iteration, tip: tip, stop: from.Commit})
		conf = e.lineConfiguration(b, from.Branch, conf)
		iteration = arena.addIteration(&Iteration{
			BranchName:    from.Branch.ConfigName(),
			Configuration: conf,
			Parent:        iteration,
			MergedBy:      -1,
		})
		branch, tip = from.Branch, from.Commit
		visited = append(visited, branch.ConfigName())
	}
	b.work = append(b.work, segment{iteration: iteration, tip: tip})

	if err := b.run(); err != nil {
		return nil, err
	}
	return arena, nil
}

func (e *Engine) lineConfiguration(b *builder, branch git.Branch, child config.EffectiveConfiguration) config.EffectiveConfiguration {
	effective, err := e.resolver.GetEffectiveConfigurations(branch)
	if err != nil || len(effective) == 0 {
		return b.configurationFor(branch.ConfigName(), child)
	}
	return effective[0].Configuration
}

// Calculate folds the history of the current commit into a version.
func (e *Engine) Calculate(ctx *context.GitVersionContext, ec config.EffectiveConfiguration, explain bool) (Result, error) {
	log := ctx.Logger()
	arena, err := e.Build(ctx, ec)
	if err != nil {
		return Result{}, err
	}
	log.Debug("trunk history laid out",
		zap.Int("iterations", len(arena.Iterations)),
		zap.Int("commits", len(arena.Nodes)))

	var steps []string
	trace := func(it *Iteration, n *Node, rule string, els []Element) {
		if !explain {
			return
		}
		parts := make([]string, len(els))
		for i, el := range els {
			parts[i] = el.String()
		}
		steps = append(steps, fmt.Sprintf("%s [%s] %s: %s", n.Commit.ShortSha(), it.BranchName, rule, strings.Join(parts, "; ")))
	}

	ignore := ec.Ignore()
	children := make(map[int]ChildResult)
	merged := arena.Merged()
	for i := len(merged) - 1; i >= 0; i-- {
		it := arena.Iterations[merged[i]]
		rc := e.ruleContext(ctx, arena, it, children)
		var els []Element
		for _, n := range oldestFirst(arena, it) {
			if ignore.Excludes(n.Commit.Sha, n.Commit.When) {
				continue
			}
			rule, out := Classify(rc, n)
			trace(it, n, rule, out)
			els = append(els, out...)
		}
		children[merged[i]] = summarize(els, it.Configuration.IsReleaseBranch)
	}

	acc := &accumulator{mode: ec.Mode}
	for _, idx := range arena.Line() {
		it := arena.Iterations[idx]
		rc := e.ruleContext(ctx, arena, it, children)
		for _, n := range oldestFirst(arena, it) {
			if ignore.Excludes(n.Commit.Sha, n.Commit.When) {
				continue
			}
			rule, out := Classify(rc, n)
			trace(it, n, rule, out)
			for _, el := range out {
				acc.apply(el)
			}
		}
	}

	if ec.IsReleaseBranch {
		if v, ok := git.ExtractVersionFromBranch(ctx.CurrentBranch.ConfigName(), ec.TagPrefix); ok {
			acc.floor = append(acc.floor, v.Core())
		}
	}
	version := acc.result()

	label := ec.ResolveLabel(ctx.CurrentBranch.ConfigName(), "")
	if label != "" && !(version.IsPreRelease() && strings.EqualFold(version.PreReleaseTag.Name, label)) {
		version = version.IncrementLabelled(semver.VersionFieldNone, &label, false)
		if explain {
			steps = append(steps, fmt.Sprintf("labelled for %s: %s", ctx.CurrentBranch.FriendlyName(), version.SemVer()))
		}
	}

	log.Info("trunk version folded", zap.String("mode", ec.Mode.String()), zap.String("version", version.SemVer()))
	return Result{Version: version, BaseVersionSource: acc.source, Arena: arena, Steps: steps}, nil
}

func (e *Engine) ruleContext(ctx *context.GitVersionContext, arena *Arena, it *Iteration, children map[int]ChildResult) *RuleContext {
	return &RuleContext{
		Arena:     arena,
		Iteration: it,
		Current:   ctx.CurrentCommit,
		TagPrefix: it.Configuration.TagPrefix,
		Analyze:   e.analyze,
		Children:  children,
	}
}

func oldestFirst(arena *Arena, it *Iteration) []*Node {
	out := make([]*Node, 0, len(it.Nodes))
	for i := len(it.Nodes) - 1; i >= 0; i-- {
		out = append(out, arena.Nodes[it.Nodes[i]])
	}
	return out
}
