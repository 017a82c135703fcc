package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/bradleyfalzon/ghinstallation/v2"
	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

// ClientConfig selects how the API client authenticates. Empty fields fall
// back to the environment: GITHUB_TOKEN, GH_APP_ID, GH_APP_INSTALLATION_ID,
// GH_APP_PRIVATE_KEY and GITHUB_API_URL.
type ClientConfig struct {
	Token          string
	AppID          int64
	InstallationID int64
	AppKeyPath     string // PEM file

	// BaseURL is the REST endpoint of a GitHub Enterprise server.
	BaseURL string

	// Owner is where the app installation is looked up when
	// InstallationID is unset.
	Owner string
}

// ErrNoCredentials is returned by NewClient when neither a token nor app
// credentials are available.
var ErrNoCredentials = errors.New("no GitHub authentication provided: set GITHUB_TOKEN, use --token, or provide --app-id and --private-key")

// NewClient creates an authenticated client. A token wins over GitHub App
// credentials. ctx bounds the installation lookup.
func NewClient(ctx context.Context, cfg ClientConfig) (*gh.Client, error) {
	baseURL := resolveString(cfg.BaseURL, "GITHUB_API_URL")

	if token := resolveString(cfg.Token, "GITHUB_TOKEN"); token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		return withBaseURL(gh.NewClient(oauth2.NewClient(context.Background(), src)), baseURL)
	}

	app := appCredentials{
		id:             resolveInt(cfg.AppID, "GH_APP_ID"),
		installationID: resolveInt(cfg.InstallationID, "GH_APP_INSTALLATION_ID"),
		keyPath:        resolveString(cfg.AppKeyPath, "GH_APP_PRIVATE_KEY"),
		baseURL:        baseURL,
	}
	if app.id == 0 || app.keyPath == "" {
		return nil, ErrNoCredentials
	}
	if app.installationID == 0 {
		id, err := app.discover(ctx, cfg.Owner)
		if err != nil {
			return nil, err
		}
		app.installationID = id
	}
	return app.client()
}

func withBaseURL(client *gh.Client, baseURL string) (*gh.Client, error) {
	if baseURL == "" {
		return client, nil
	}
	return client.WithEnterpriseURLs(baseURL, baseURL)
}

type appCredentials struct {
	id             int64
	installationID int64
	keyPath        string
	baseURL        string
}

// client authenticates as the installation.
func (a appCredentials) client() (*gh.Client, error) {
	tr, err := ghinstallation.NewKeyFromFile(http.DefaultTransport, a.id, a.installationID, a.keyPath)
	if err != nil {
		return nil, fmt.Errorf("creating installation transport: %w", err)
	}
	if a.baseURL != "" {
		tr.BaseURL = a.baseURL
	}
	return withBaseURL(gh.NewClient(&http.Client{Transport: tr}), a.baseURL)
}

// discover authenticates as the app itself to find its installation on
// owner.
func (a appCredentials) discover(ctx context.Context, owner string) (int64, error) {
	tr, err := ghinstallation.NewAppsTransportKeyFromFile(http.DefaultTransport, a.id, a.keyPath)
	if err != nil {
		return 0, fmt.Errorf("creating GitHub App transport: %w", err)
	}
	if a.baseURL != "" {
		tr.BaseURL = a.baseURL
	}
	client, err := withBaseURL(gh.NewClient(&http.Client{Transport: tr}), a.baseURL)
	if err != nil {
		return 0, fmt.Errorf("setting enterprise URL: %w", err)
	}
	return findInstallation(ctx, client, owner)
}

// findInstallation finds the GitHub App installation for the given owner.
func findInstallation(ctx context.Context, client *gh.Client, owner string) (int64, error) {
	opts := &gh.ListOptions{PerPage: 100}

	for {
		installations, resp, err := client.Apps.ListInstallations(ctx, opts)
		if err != nil {
			return 0, fmt.Errorf("listing GitHub App installations: %w", err)
		}

		for _, inst := range installations {
			if inst.GetAccount().GetLogin() == owner {
				return inst.GetID(), nil
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return 0, fmt.Errorf("no GitHub App installation found for owner %q", owner)
}

// IsNotFoundError reports whether err is a 404 from the GitHub API, or a
// 422 for an unknown commit SHA.
func IsNotFoundError(err error) bool {
	var ghErr *gh.ErrorResponse
	if !errors.As(err, &ghErr) || ghErr.Response == nil {
		return false
	}
	switch ghErr.Response.StatusCode {
	case http.StatusNotFound, http.StatusUnprocessableEntity:
		return true
	}
	return false
}

// resolveString returns the flag value if non-empty, otherwise the env var value.
func resolveString(flag, envKey string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(envKey)
}

func resolveInt(flag int64, envKey string) int64 {
	if flag != 0 {
		return flag
	}
	v, err := strconv.ParseInt(os.Getenv(envKey), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// ResolveBaseURL resolves the GitHub API base URL from the flag value or
// the GITHUB_API_URL environment variable. Returns empty string for github.com.
func ResolveBaseURL(flagValue string) string {
	return resolveString(flagValue, "GITHUB_API_URL")
}
