package github

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
)

const commitFields = `
            oid
            message
            committedDate
            parents(first: 10) {
              nodes { oid }
            }`

// Both queries page through one ref namespace. Tag targets are peeled
// through annotated tag objects to the commit.
var (
	branchesQuery = `
query($owner: String!, $name: String!, $cursor: String) {
  repository(owner: $owner, name: $name) {
    refs(refPrefix: "refs/heads/", first: 100, after: $cursor) {
      nodes {
        name
        target {
          __typename
          ... on Commit {` + commitFields + `
          }
        }
      }
      pageInfo { hasNextPage endCursor }
    }
  }
}
`

	tagsQuery = `
query($owner: String!, $name: String!, $cursor: String) {
  repository(owner: $owner, name: $name) {
    refs(refPrefix: "refs/tags/", first: 100, after: $cursor) {
      nodes {
        name
        target {
          __typename
          oid
          ... on Tag {
            target {
              __typename
              ... on Commit {` + commitFields + `
              }
            }
          }
          ... on Commit {` + commitFields + `
          }
        }
      }
      pageInfo { hasNextPage endCursor }
    }
  }
}
`
)

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type refsResponse struct {
	Repository *struct {
		Refs refConnection `json:"refs"`
	} `json:"repository"`
}

type refConnection struct {
	Nodes    []refNode `json:"nodes"`
	PageInfo pageInfo  `json:"pageInfo"`
}

type refNode struct {
	Name   string    `json:"name"`
	Target refTarget `json:"target"`
}

type refTarget struct {
	TypeName      string     `json:"__typename"`
	OID           string     `json:"oid"`
	Message       string     `json:"message"`
	CommittedDate string     `json:"committedDate"`
	Parents       parentList `json:"parents"`
	Target        *refTarget `json:"target"` // annotated tags only
}

type parentList struct {
	Nodes []struct {
		OID string `json:"oid"`
	} `json:"nodes"`
}

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// graphQLURL is the GraphQL endpoint matching the REST base URL.
func (r *Repository) graphQLURL() string {
	if r.baseURL != "" {
		return deriveGraphQLURL(r.baseURL)
	}
	return "https://api.github.com/graphql"
}

// executeGraphQL sends a query through the client's authenticated
// transport.
func (r *Repository) executeGraphQL(query string, variables map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("marshaling GraphQL request: %w", err)
	}

	req, err := http.NewRequestWithContext(r.ctx, http.MethodPost, r.graphQLURL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating GraphQL request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing GraphQL request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading GraphQL response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GraphQL request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed graphQLResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parsing GraphQL response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("GraphQL error: %s", parsed.Errors[0].Message)
	}
	return parsed.Data, nil
}

// eachRef pages through every ref returned by query.
func (r *Repository) eachRef(query string, fn func(refNode)) error {
	vars := map[string]any{"owner": r.owner, "name": r.name}
	for {
		data, err := r.executeGraphQL(query, vars)
		if err != nil {
			return err
		}

		var resp refsResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return fmt.Errorf("parsing refs response: %w", err)
		}
		if resp.Repository == nil {
			return fmt.Errorf("repository %s not found", r.FullName())
		}

		for _, node := range resp.Repository.Refs.Nodes {
			fn(node)
		}

		page := resp.Repository.Refs.PageInfo
		if !page.HasNextPage {
			return nil
		}
		vars["cursor"] = page.EndCursor
	}
}

// fetchBranches lists branches and seeds the commit graph with their tips.
func (r *Repository) fetchBranches() ([]git.Branch, error) {
	var branches []git.Branch
	err := r.eachRef(branchesQuery, func(node refNode) {
		// Unborn branches have no target commit.
		if node.Target.OID == "" {
			return
		}
		commit := commitFromRefTarget(node.Target)
		r.graph.Add(commit)
		branches = append(branches, git.Branch{
			Name: git.NewBranchReferenceName(node.Name),
			Tip:  &commit,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	r.log.Debug("listed branches", zap.Int("count", len(branches)))
	return branches, nil
}

// fetchTags lists tags and records each tag's peeled commit so PeelTag
// needs no further request.
func (r *Repository) fetchTags() ([]git.Tag, error) {
	var tags []git.Tag
	err := r.eachRef(tagsQuery, func(node refNode) {
		target := node.Target
		var commit *refTarget
		switch target.TypeName {
		case "Commit":
			commit = &target
		case "Tag":
			if target.Target != nil && target.Target.OID != "" {
				commit = target.Target
			}
		}
		if commit != nil {
			c := commitFromRefTarget(*commit)
			r.graph.Add(c)
			r.cache.putTagPeel(target.OID, c.Sha)
		}
		tags = append(tags, git.Tag{
			Name:      git.NewTagReferenceName(node.Name),
			TargetSha: target.OID,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	r.log.Debug("listed tags", zap.Int("count", len(tags)))
	return tags, nil
}

// deriveGraphQLURL maps a REST base URL to its GraphQL endpoint. GitHub
// Enterprise serves REST under /api/v3 and GraphQL under /api/graphql.
func deriveGraphQLURL(baseURL string) string {
	trimmed := strings.TrimRight(baseURL, "/")
	if rest, ok := strings.CutSuffix(trimmed, "/api/v3"); ok {
		return rest + "/api/graphql"
	}
	return trimmed + "/graphql"
}

func commitFromRefTarget(target refTarget) git.Commit {
	parents := make([]string, 0, len(target.Parents.Nodes))
	for _, p := range target.Parents.Nodes {
		parents = append(parents, p.OID)
	}

	var when time.Time
	if target.CommittedDate != "" {
		when, _ = time.Parse(time.RFC3339, target.CommittedDate)
	}

	return git.Commit{
		Sha:     target.OID,
		Parents: parents,
		When:    when,
		Message: target.Message,
	}
}
