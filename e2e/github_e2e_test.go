package e2e

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/testutil"
	"github.com/MyCarrier-DevOps/go-gitversion/pkg/gitversion"
)

// mirror serves a local repository through the REST and GraphQL endpoints
// the GitHub backend calls, so a remote calculation can be compared with a
// local one over the same history.
type mirror struct {
	t    *testing.T
	repo git.Repository
	dir  string
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func restCommit(c git.Commit) map[string]any {
	parents := make([]map[string]any, 0, len(c.Parents))
	for _, p := range c.Parents {
		parents = append(parents, map[string]any{"sha": p})
	}
	return map[string]any{
		"sha":     c.Sha,
		"parents": parents,
		"commit": map[string]any{
			"message":   c.Message,
			"committer": map[string]any{"date": c.When.UTC().Format(time.RFC3339)},
		},
	}
}

func graphQLCommit(c git.Commit) map[string]any {
	parents := make([]map[string]any, 0, len(c.Parents))
	for _, p := range c.Parents {
		parents = append(parents, map[string]any{"oid": p})
	}
	return map[string]any{
		"__typename":    "Commit",
		"oid":           c.Sha,
		"message":       c.Message,
		"committedDate": c.When.UTC().Format(time.RFC3339),
		"parents":       map[string]any{"nodes": parents},
	}
}

func (m *mirror) fail(w http.ResponseWriter, err error) {
	m.t.Errorf("mirror: %v", err)
	http.Error(w, `{"message":"mirror failure"}`, http.StatusInternalServerError)
}

func (m *mirror) branch(name string) (git.Branch, bool, error) {
	branches, err := m.repo.Branches()
	if err != nil {
		return git.Branch{}, false, err
	}
	for _, b := range branches {
		if !b.IsRemote && b.FriendlyName() == name {
			return b, true, nil
		}
	}
	return git.Branch{}, false, nil
}

func (m *mirror) handler() http.Handler {
	const prefix = "/api/v3/repos/acme/widget"
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+prefix, func(w http.ResponseWriter, _ *http.Request) {
		head, err := m.repo.Head()
		if err != nil {
			m.fail(w, err)
			return
		}
		writeJSON(w, map[string]any{"default_branch": head.FriendlyName()})
	})

	mux.HandleFunc("GET "+prefix+"/branches/{name...}", func(w http.ResponseWriter, r *http.Request) {
		b, ok, err := m.branch(r.PathValue("name"))
		if err != nil {
			m.fail(w, err)
			return
		}
		if !ok {
			http.Error(w, `{"message":"Branch not found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]any{"name": b.FriendlyName(), "commit": restCommit(*b.Tip)})
	})

	mux.HandleFunc("GET "+prefix+"/commits", func(w http.ResponseWriter, r *http.Request) {
		commits, err := m.repo.QueryCommits(git.CommitFilter{IncludeReachableFrom: r.URL.Query().Get("sha")})
		if err != nil || len(commits) == 0 {
			http.Error(w, `{"message":"No commit found for SHA"}`, http.StatusUnprocessableEntity)
			return
		}
		page := make([]map[string]any, 0, 100)
		for _, c := range commits {
			if len(page) == 100 {
				break
			}
			page = append(page, restCommit(c))
		}
		writeJSON(w, page)
	})

	mux.HandleFunc("GET "+prefix+"/compare/{basehead}", func(w http.ResponseWriter, r *http.Request) {
		base, head, _ := strings.Cut(r.PathValue("basehead"), "...")
		mergeBase, err := m.repo.FindMergeBase(base, head)
		if err != nil {
			m.fail(w, err)
			return
		}
		writeJSON(w, map[string]any{"merge_base_commit": map[string]any{"sha": mergeBase}})
	})

	mux.HandleFunc("GET "+prefix+"/contents/{path...}", func(w http.ResponseWriter, r *http.Request) {
		data, err := os.ReadFile(filepath.Join(m.dir, filepath.FromSlash(r.PathValue("path"))))
		if err != nil {
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]any{
			"type":     "file",
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString(data),
		})
	})

	mux.HandleFunc("POST /api/graphql", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			m.fail(w, err)
			return
		}

		nodes, err := m.refNodes(strings.Contains(req.Query, `"refs/heads/"`))
		if err != nil {
			m.fail(w, err)
			return
		}
		writeJSON(w, map[string]any{"data": map[string]any{"repository": map[string]any{"refs": map[string]any{
			"nodes":    nodes,
			"pageInfo": map[string]any{"hasNextPage": false},
		}}}})
	})

	return mux
}

func (m *mirror) refNodes(branches bool) ([]map[string]any, error) {
	var nodes []map[string]any
	if branches {
		list, err := m.repo.Branches()
		if err != nil {
			return nil, err
		}
		for _, b := range list {
			if b.IsRemote {
				continue
			}
			nodes = append(nodes, map[string]any{"name": b.FriendlyName(), "target": graphQLCommit(*b.Tip)})
		}
		return nodes, nil
	}

	tags, err := m.repo.Tags()
	if err != nil {
		return nil, err
	}
	for _, tag := range tags {
		sha, err := m.repo.PeelTag(tag)
		if err != nil {
			return nil, err
		}
		c, err := m.repo.CommitFromSha(sha)
		if err != nil {
			return nil, err
		}
		target := graphQLCommit(c)
		if tag.TargetSha != sha {
			target = map[string]any{"__typename": "Tag", "oid": tag.TargetSha, "target": target}
		}
		nodes = append(nodes, map[string]any{"name": tag.Name.Friendly, "target": target})
	}
	return nodes, nil
}

// calculateRemote serves repo over a fake GitHub and versions it through
// the API.
func calculateRemote(t *testing.T, repo *testutil.TestRepo, overrides []string) *gitversion.Result {
	t.Helper()
	return calculateRemoteLimited(t, repo, overrides, 0)
}

// calculateRemoteLimited is calculateRemote with a cap on fetched commits;
// zero keeps the default.
func calculateRemoteLimited(t *testing.T, repo *testutil.TestRepo, overrides []string, maxCommits int) *gitversion.Result {
	t.Helper()
	for _, key := range []string{"GITHUB_TOKEN", "GH_APP_ID", "GH_APP_PRIVATE_KEY", "GITHUB_API_URL"} {
		t.Setenv(key, "")
	}

	m := &mirror{t: t, repo: repo.Repository(), dir: repo.Path()}
	server := httptest.NewServer(m.handler())
	t.Cleanup(server.Close)

	result, err := gitversion.CalculateRemote(t.Context(), gitversion.RemoteOptions{
		Options:    gitversion.Options{Overrides: overrides},
		Owner:      "acme",
		Repo:       "widget",
		Token:      "ghp_test",
		BaseURL:    server.URL + "/api/v3/",
		MaxCommits: maxCommits,
	})
	require.NoError(t, err)
	return result
}

func TestGitHub_ParityWithLocal(t *testing.T) {
	for _, sc := range scenarios {
		t.Run(sc.name, func(t *testing.T) {
			repo := testutil.NewOnDisk(t)
			sc.build(repo)

			local, err := gitversion.Calculate(t.Context(), gitversion.Options{
				Path:      repo.Path(),
				Overrides: sc.overrides,
				NoCache:   true,
			})
			require.NoError(t, err)

			remote := calculateRemote(t, repo, sc.overrides)
			require.Equal(t, sc.want, remote.Variables["FullSemVer"])
			require.Equal(t, local.Variables, remote.Variables)
		})
	}
}

func TestGitHub_RemoteConfigFile(t *testing.T) {
	repo := testutil.NewOnDisk(t)
	repo.Tag("1.0.0", repo.Commit("release"))
	repo.Commits(3)
	repo.WriteFile("GitVersion.yml", "mode: ContinuousDeployment\n")

	remote := calculateRemote(t, repo, nil)
	require.Equal(t, "1.0.1-ci.3+3", remote.Variables["FullSemVer"])
}

func TestGitHub_TruncatedHistoryKeepsTaggedBase(t *testing.T) {
	for _, mode := range []string{"Mainline", "TrunkBased"} {
		t.Run(mode, func(t *testing.T) {
			repo := testutil.NewOnDisk(t)
			repo.Tag("1.0.0", repo.Commit("release"))
			repo.Commits(10)
			repo.Branch("feature/x")
			repo.Commits(2)

			remote := calculateRemoteLimited(t, repo, []string{"mode=" + mode}, 4)
			require.Equal(t, "1", remote.Variables["Major"], remote.Variables["FullSemVer"])
			require.NotEqual(t, remote.Variables["Sha"], remote.Variables["VersionSourceSha"])
		})
	}
}
