package gitversion

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	gh "github.com/google/go-github/v68/github"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/github"
)

// RemoteOptions configures a calculation over the GitHub API. No clone is
// needed.
type RemoteOptions struct {
	Options

	// Owner and Repo name the repository. Both are required.
	Owner string
	Repo  string

	// Token is a personal access token. Falls back to GITHUB_TOKEN.
	Token string

	// AppID, PrivateKeyPath and optionally InstallationID authenticate as
	// a GitHub App when no token is given.
	AppID          int64
	InstallationID int64
	PrivateKeyPath string

	// BaseURL is the REST base URL of a GitHub Enterprise server.
	BaseURL string

	// Ref is a branch, tag or commit SHA. Defaults to the default branch.
	Ref string

	// MaxCommits caps how much history is fetched. Defaults to 1000.
	MaxCommits int

	// RemoteConfigPath names the configuration file inside the repository.
	// Options.ConfigPath, a local file, wins over it.
	RemoteConfigPath string
}

// ParseRepository splits "owner/repo".
func ParseRepository(s string) (owner, repo string, err error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository %q, expected owner/repo", s)
	}
	return parts[0], parts[1], nil
}

// CalculateRemote versions a GitHub repository through its API.
func CalculateRemote(ctx context.Context, opts RemoteOptions) (*Result, error) {
	if opts.Owner == "" || opts.Repo == "" {
		return nil, errors.New("owner and repo are required")
	}

	baseURL := github.ResolveBaseURL(opts.BaseURL)
	client, err := github.NewClient(ctx, github.ClientConfig{
		Token:          opts.Token,
		AppID:          opts.AppID,
		InstallationID: opts.InstallationID,
		AppKeyPath:     opts.PrivateKeyPath,
		BaseURL:        baseURL,
		Owner:          opts.Owner,
	})
	if err != nil {
		return nil, fmt.Errorf("creating GitHub client: %w", err)
	}
	opts.BaseURL = baseURL
	return calculateRemote(ctx, client, opts)
}

func calculateRemote(ctx context.Context, client *gh.Client, opts RemoteOptions) (*Result, error) {
	repoOpts := []github.Option{github.WithLogger(opts.logger())}
	if opts.Ref != "" {
		repoOpts = append(repoOpts, github.WithRef(opts.Ref))
	}
	if opts.MaxCommits > 0 {
		repoOpts = append(repoOpts, github.WithMaxCommits(opts.MaxCommits))
	}
	if opts.BaseURL != "" {
		repoOpts = append(repoOpts, github.WithBaseURL(opts.BaseURL))
	}
	repo := github.NewRepository(ctx, client, opts.Owner, opts.Repo, repoOpts...)

	l, err := localLayers("", opts.Options)
	if err != nil {
		return nil, err
	}
	if opts.ConfigPath == "" {
		if l.file, err = remoteConfig(repo, opts.RemoteConfigPath); err != nil {
			return nil, err
		}
	}
	return calculate(ctx, repo, l, opts.Options)
}

// remoteConfig reads path from the repository, or the first default
// configuration file present.
func remoteConfig(repo *github.Repository, path string) (*config.Config, error) {
	if path != "" {
		data, err := repo.FetchFile(path)
		if err != nil {
			return nil, err
		}
		return parseRemote(path, data)
	}

	for _, name := range config.DefaultConfigFiles {
		name = filepath.ToSlash(name)
		data, err := repo.FetchFile(name)
		if github.IsNotFoundError(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return parseRemote(name, data)
	}
	return nil, nil
}

func parseRemote(name string, data []byte) (*config.Config, error) {
	cfg, err := config.LoadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return cfg, nil
}
