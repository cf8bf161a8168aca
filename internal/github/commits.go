// internal/github/commits.go
//
// The commit collector. A repository's commits are scattered across
// branches, so we fan one request out per branch, join the results, and
// collapse duplicates (the same commit reachable from several branches
// shares its SHA). Everything here degrades instead of failing: the
// aggregation upstream wants partial results from many repositories, not
// all-or-nothing.

package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"
)

// RepositoryCommits samples commits from every branch of a repository.
// It never returns an error; trouble degrades to a shorter (possibly
// empty) list plus a logbook warning.
func (c *Client) RepositoryCommits(ctx context.Context, repo Repository) []Commit {
	return c.collect(ctx, repo, "")
}

// AuthorCommits samples commits attributable to one author login. The
// server-side author filter does the heavy lifting; results are checked
// against the requested login anyway, because the filter also matches on
// email and can drift.
func (c *Client) AuthorCommits(ctx context.Context, repo Repository, login string) []Commit {
	return c.collect(ctx, repo, login)
}

func (c *Client) collect(ctx context.Context, repo Repository, login string) []Commit {
	branches := c.Branches(ctx, repo)
	if len(branches) == 0 {
		return nil
	}
	perBranch := (c.commitSample + len(branches) - 1) / len(branches)
	if perBranch < 1 {
		perBranch = 1
	}

	results := make([][]Commit, len(branches))
	g, gctx := errgroup.WithContext(ctx)
	for i, branch := range branches {
		i, branch := i, branch
		g.Go(func() error {
			list, err := c.branchCommits(gctx, repo, branch, login, perBranch)
			if err != nil {
				// A single bad branch yields zero commits, nothing more.
				c.log.Warn("commits for %s@%s unavailable: %v", repo.FullName, branch, err)
				return nil
			}
			results[i] = list
			return nil
		})
	}
	_ = g.Wait()

	var merged []Commit
	for _, list := range results {
		merged = append(merged, list...)
	}
	return filterCommits(dedupeCommits(merged), login)
}

func (c *Client) branchCommits(ctx context.Context, repo Repository, branch, login string, limit int) ([]Commit, error) {
	path := fmt.Sprintf("/repos/%s/commits?sha=%s&per_page=%d",
		repo.FullName, url.QueryEscape(branch), limit)
	if login != "" {
		path += "&author=" + url.QueryEscape(login)
	}
	var commits []Commit
	if err := c.get(ctx, path, &commits); err != nil {
		return nil, err
	}
	return commits, nil
}

// dedupeCommits keeps the first occurrence of each SHA. Branch completion
// order decides which duplicate wins, which is immaterial: duplicates are
// the same commit.
func dedupeCommits(commits []Commit) []Commit {
	seen := make(map[string]struct{}, len(commits))
	out := commits[:0]
	for _, commit := range commits {
		if _, ok := seen[commit.SHA]; ok {
			continue
		}
		seen[commit.SHA] = struct{}{}
		out = append(out, commit)
	}
	return out
}

// filterCommits drops commits that make unusable quiz items: empty
// messages, merge commits, and commits the API could not attribute to an
// account. When login is non-empty, commits attributed to anyone else
// are dropped too.
func filterCommits(commits []Commit, login string) []Commit {
	out := commits[:0]
	for _, commit := range commits {
		msg := commit.Message()
		if msg == "" || strings.HasPrefix(msg, "Merge") {
			continue
		}
		author := commit.AuthorLogin()
		if author == "" {
			continue
		}
		if login != "" && author != login {
			continue
		}
		out = append(out, commit)
	}
	return out
}
