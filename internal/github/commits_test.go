package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/commitquiz/commitquiz/internal/config"
)

func commitJSON(sha, message, login string) map[string]any {
	entry := map[string]any{
		"sha":      sha,
		"html_url": "https://example.com/" + sha,
		"commit": map[string]any{
			"message": message,
			"author": map[string]any{
				"name":  login,
				"email": login + "@example.com",
				"date":  "2024-03-01T10:00:00Z",
			},
		},
	}
	if login != "" {
		entry["author"] = map[string]any{"id": 1, "login": login}
	}
	return entry
}

// commitServer serves a branch list plus per-branch commit lists, keyed
// by the sha query parameter, and records which branches were asked for.
type commitServer struct {
	mu       sync.Mutex
	branches []string
	perSha   map[string][]map[string]any
	perPage  map[string]string
}

func (s *commitServer) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/branches"):
			var list []map[string]string
			for _, name := range s.branches {
				list = append(list, map[string]string{"name": name})
			}
			json.NewEncoder(w).Encode(list)
		case strings.HasSuffix(r.URL.Path, "/commits"):
			sha := r.URL.Query().Get("sha")
			s.mu.Lock()
			if s.perPage == nil {
				s.perPage = map[string]string{}
			}
			s.perPage[sha] = r.URL.Query().Get("per_page")
			s.mu.Unlock()
			commits, ok := s.perSha[sha]
			if !ok {
				w.WriteHeader(http.StatusConflict)
				fmt.Fprint(w, `{"message":"branch is broken"}`)
				return
			}
			json.NewEncoder(w).Encode(commits)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
}

func newCommitClient(t *testing.T, s *commitServer, sample int) *Client {
	t.Helper()
	server := httptest.NewServer(s.handler(t))
	t.Cleanup(server.Close)
	cfg := &config.Config{
		Settings: config.Settings{
			API: config.APIConfig{
				BaseURL:          server.URL,
				PageSize:         100,
				CommitSampleSize: sample,
				FallbackBranches: []string{"main", "master"},
			},
		},
	}
	return NewClient("s3cr3t", cfg, nil)
}

func TestRepositoryCommitsDedupesAcrossBranches(t *testing.T) {
	shared := commitJSON("aaa", "add parser", "ana")
	s := &commitServer{
		branches: []string{"main", "feature"},
		perSha: map[string][]map[string]any{
			"main":    {shared, commitJSON("bbb", "fix lexer", "bob")},
			"feature": {shared, commitJSON("ccc", "tune scanner", "ana")},
		},
	}
	client := newCommitClient(t, s, 30)
	got := client.RepositoryCommits(context.Background(), Repository{FullName: "acme/widgets"})
	if len(got) != 3 {
		t.Fatalf("len(commits) = %d, want 3 (shared sha collapsed)", len(got))
	}
	seen := map[string]int{}
	for _, commit := range got {
		seen[commit.SHA]++
	}
	for sha, count := range seen {
		if count != 1 {
			t.Fatalf("sha %s appears %d times", sha, count)
		}
	}
}

func TestRepositoryCommitsFiltersUnusableItems(t *testing.T) {
	noAuthor := commitJSON("ddd", "orphan work", "")
	s := &commitServer{
		branches: []string{"main"},
		perSha: map[string][]map[string]any{
			"main": {
				commitJSON("aaa", "add parser", "ana"),
				commitJSON("bbb", "Merge pull request #12", "bob"),
				commitJSON("ccc", "   \n\t ", "bob"),
				noAuthor,
			},
		},
	}
	client := newCommitClient(t, s, 30)
	got := client.RepositoryCommits(context.Background(), Repository{FullName: "acme/widgets"})
	if len(got) != 1 || got[0].SHA != "aaa" {
		t.Fatalf("commits = %+v, want only sha aaa", got)
	}
}

func TestAuthorCommitsGuardsAgainstFilterDrift(t *testing.T) {
	s := &commitServer{
		branches: []string{"main"},
		perSha: map[string][]map[string]any{
			"main": {
				commitJSON("aaa", "add parser", "ana"),
				commitJSON("bbb", "sneaky commit", "bob"),
			},
		},
	}
	client := newCommitClient(t, s, 30)
	got := client.AuthorCommits(context.Background(), Repository{FullName: "acme/widgets"}, "ana")
	if len(got) != 1 || got[0].AuthorLogin() != "ana" {
		t.Fatalf("commits = %+v, want only ana's", got)
	}
}

func TestCollectSurvivesBrokenBranch(t *testing.T) {
	s := &commitServer{
		branches: []string{"main", "haunted"},
		perSha: map[string][]map[string]any{
			// "haunted" is missing, so its request gets a 409.
			"main": {commitJSON("aaa", "add parser", "ana")},
		},
	}
	client := newCommitClient(t, s, 30)
	got := client.RepositoryCommits(context.Background(), Repository{FullName: "acme/widgets"})
	if len(got) != 1 || got[0].SHA != "aaa" {
		t.Fatalf("commits = %+v, want the healthy branch's commit", got)
	}
}

func TestCollectSplitsSampleAcrossBranches(t *testing.T) {
	s := &commitServer{
		branches: []string{"main", "dev", "release"},
		perSha: map[string][]map[string]any{
			"main": {}, "dev": {}, "release": {},
		},
	}
	client := newCommitClient(t, s, 10)
	client.RepositoryCommits(context.Background(), Repository{FullName: "acme/widgets"})
	// ceil(10 / 3) = 4 requested from each branch.
	for _, branch := range []string{"main", "dev", "release"} {
		if got := s.perPage[branch]; got != "4" {
			t.Fatalf("per_page for %s = %q, want 4", branch, got)
		}
	}
}
