// Package gitversion calculates semantic versions from git history. It is
// the library form of the gitversion command: local repositories are read
// with go-git, GitHub repositories through the GitHub API.
//
//	result, err := gitversion.Calculate(ctx, gitversion.Options{Path: "."})
//	fmt.Println(result.Variables["FullSemVer"]) // "1.0.4+5"
package gitversion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/branching"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/cache"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/calculator"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/config"
	gvcontext "github.com/MyCarrier-DevOps/go-gitversion/internal/context"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/output"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/strategy"
)

// Options configures a calculation.
type Options struct {
	// Path is any directory inside the repository. Defaults to ".".
	Path string

	// Branch overrides the branch HEAD is on.
	Branch string

	// Commit versions a specific commit instead of the branch tip.
	Commit string

	// ConfigPath names the configuration file. When empty the default
	// file names are searched in the working directory.
	ConfigPath string

	// Overrides are "key=value" configuration settings applied over the
	// file, e.g. "mode=Mainline".
	Overrides []string

	// NextVersion overrides next-version.
	NextVersion string

	// NoCache skips the on-disk cache.
	NoCache bool

	// Explain records how the version was reached in Result.Explanation.
	Explain bool

	Logger *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Result is a calculated version.
type Result struct {
	// Variables holds every output variable by name: SemVer, FullSemVer,
	// Major, BranchName, Sha and so on.
	Variables map[string]string

	// Explanation is the decision trace. Empty unless Options.Explain.
	Explanation string

	// FromCache is set when Variables were read from the on-disk cache.
	FromCache bool
}

// layers are the configuration sources of one calculation.
type layers struct {
	file        *config.Config
	fileBytes   []byte
	overrides   *config.Config
	nextVersion string
	legacy      string
}

func (l layers) build() (*config.Config, error) {
	b := config.NewBuilder().Add(l.file).Add(l.overrides)
	if l.nextVersion != "" {
		nv := l.nextVersion
		b.Add(&config.Config{NextVersion: &nv})
	}
	return b.Build()
}

// cacheInput is everything besides refs and the configuration file that
// changes the result.
func (l layers) cacheInput(o Options) []byte {
	parts := []string{
		"branch=" + o.Branch,
		"commit=" + o.Commit,
		"next-version=" + o.NextVersion,
		"legacy=" + l.legacy,
	}
	parts = append(parts, o.Overrides...)
	return []byte(strings.Join(parts, "\n"))
}

// Calculate versions the local repository at opts.Path.
func Calculate(ctx context.Context, opts Options) (*Result, error) {
	path := opts.Path
	if path == "" {
		path = "."
	}
	repo, err := git.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}

	l, err := localLayers(repo.WorkingDirectory(), opts)
	if err != nil {
		return nil, err
	}

	useCache := !opts.NoCache && !opts.Explain && repo.Path() != ""
	if !useCache {
		return calculate(ctx, repo, l, opts)
	}

	log := opts.logger()
	refs, err := cache.Refs(repo)
	if err != nil {
		return nil, err
	}
	key := cache.Key(refs, l.fileBytes, l.cacheInput(opts))
	store := cache.Open(repo.Path(), log)

	vars, err := store.Load(key)
	if err != nil {
		return nil, err
	}
	if vars != nil {
		return &Result{Variables: vars, FromCache: true}, nil
	}

	result, err := calculate(ctx, repo, l, opts)
	if err != nil {
		return nil, err
	}
	if err := store.Store(key, result.Variables); err != nil {
		log.Warn("writing cache entry", zap.Error(err))
	}
	return result, nil
}

// CalculateRepository versions any repository backend. Configuration comes
// from opts.ConfigPath and the overrides only; the on-disk cache is not
// used.
func CalculateRepository(ctx context.Context, repo git.Repository, opts Options) (*Result, error) {
	l, err := localLayers("", opts)
	if err != nil {
		return nil, err
	}
	return calculate(ctx, repo, l, opts)
}

// ResolvedConfig returns the configuration a calculation at opts.Path would
// run with, as YAML.
func ResolvedConfig(opts Options) ([]byte, error) {
	path := opts.Path
	if path == "" {
		path = "."
	}
	workDir := path
	if repo, err := git.Open(path); err == nil {
		workDir = repo.WorkingDirectory()
	}

	l, err := localLayers(workDir, opts)
	if err != nil {
		return nil, err
	}
	cfg, err := l.build()
	if err != nil {
		return nil, err
	}
	return cfg.Marshal()
}

func localLayers(workDir string, opts Options) (layers, error) {
	l := layers{nextVersion: opts.NextVersion}

	path := opts.ConfigPath
	if path == "" && workDir != "" {
		path = config.FindConfigFile(workDir)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return layers{}, fmt.Errorf("reading config file: %w", err)
		}
		if l.file, err = config.LoadFromBytes(data); err != nil {
			return layers{}, fmt.Errorf("%s: %w", path, err)
		}
		l.fileBytes = data
	}

	if workDir != "" {
		legacy, err := config.LoadLegacyNextVersion(workDir)
		if err != nil {
			return layers{}, err
		}
		l.legacy = legacy
	}

	overrides, err := config.ParseOverrides(opts.Overrides)
	if err != nil {
		return layers{}, err
	}
	l.overrides = overrides
	return l, nil
}

func calculate(ctx context.Context, repo git.Repository, l layers, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := opts.logger()

	cfg, err := l.build()
	if err != nil {
		return nil, err
	}

	store := git.NewRepositoryStore(repo)
	gvctx, err := gvcontext.NewContext(store, cfg, gvcontext.Options{
		TargetBranch: opts.Branch,
		CommitID:     opts.Commit,
		Log:          log,
	})
	if err != nil {
		return nil, err
	}

	resolver := branching.NewResolver(store, cfg, log)
	calc := calculator.NewNextVersionCalculator(store, cfg, resolver, strategy.AllStrategies(store, l.legacy))
	vr, err := calc.Calculate(gvctx, opts.Explain)
	if err != nil {
		return nil, err
	}
	log.Info("calculated version",
		zap.String("branch", gvctx.CurrentBranch.FriendlyName()),
		zap.String("version", vr.Version.FullSemVer()))

	vars := output.FromResult(vr)
	if err := output.Validate(vars); err != nil {
		return nil, err
	}

	result := &Result{Variables: vars}
	if opts.Explain {
		result.Explanation = output.FormatExplanation(vr)
	}
	return result, nil
}

// IsConfigurationError reports whether err was caused by invalid
// configuration.
func IsConfigurationError(err error) bool {
	return config.IsConfigurationError(err)
}

// IsTopologyError reports whether err means a branch shares no history with
// the branches it is expected to come from.
func IsTopologyError(err error) bool {
	var te *branching.TopologyError
	return errors.As(err, &te)
}
