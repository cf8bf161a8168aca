// internal/quiz/deck.go
//
// Deck construction. Raw per-author commit volumes are wildly uneven, so
// a deck is capped per author, interleaved round-robin to even out the
// counts, then shuffled so position leaks nothing about authorship.

package quiz

import (
	"context"
	"errors"
	"math/rand"

	"github.com/commitquiz/commitquiz/internal/github"
)

// ErrNotEnoughAuthors means fewer than two members have any attributable
// commits in the selected repositories. The quiz needs at least two
// distinguishable answers with ground truth.
var ErrNotEnoughAuthors = errors.New("quiz: need at least two members with commits")

// Collector is the slice of the GitHub client the balancer needs. Tests
// substitute a canned implementation.
type Collector interface {
	AuthorCommits(ctx context.Context, repo github.Repository, login string) []github.Commit
}

// Policy tunes how large a deck gets. Each qualifying author contributes
// at most max(PerAuthorFloor, Budget/authors) commits.
type Policy struct {
	PerAuthorFloor int
	Budget         int
}

// TargetPerAuthor computes the per-author cap for the given number of
// qualifying authors.
func (p Policy) TargetPerAuthor(authors int) int {
	if authors < 1 {
		return p.PerAuthorFloor
	}
	target := p.Budget / authors
	if target < p.PerAuthorFloor {
		target = p.PerAuthorFloor
	}
	return target
}

// Deck is one round's worth of quiz material: the shuffled commits and
// the per-author counts actually present in them.
type Deck struct {
	Commits      []github.Commit
	Distribution map[string]int
}

// Build collects each member's commits across the selected repositories
// and assembles a balanced deck. Collection is sequential across members
// to stay gentle on the API; the collector fans out internally.
func Build(ctx context.Context, col Collector, members []github.Member, repos []github.Repository, policy Policy) (Deck, error) {
	pools := make([][]github.Commit, 0, len(members))
	for _, member := range members {
		var pool []github.Commit
		seen := map[string]struct{}{}
		for _, repo := range repos {
			for _, commit := range col.AuthorCommits(ctx, repo, member.Login) {
				if _, ok := seen[commit.SHA]; ok {
					continue
				}
				seen[commit.SHA] = struct{}{}
				pool = append(pool, commit)
			}
		}
		if len(pool) > 0 {
			pools = append(pools, pool)
		}
	}
	if len(pools) < 2 {
		return Deck{}, ErrNotEnoughAuthors
	}

	target := policy.TargetPerAuthor(len(pools))
	for i, pool := range pools {
		if len(pool) > target {
			pools[i] = pool[:target]
		}
	}

	deck := interleave(pools, target*len(pools))
	rand.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})

	return Deck{Commits: deck, Distribution: countByAuthor(deck)}, nil
}

// interleave appends one commit per author per round, skipping exhausted
// authors, until everything is consumed or the cap is hit.
func interleave(pools [][]github.Commit, limit int) []github.Commit {
	var out []github.Commit
	for round := 0; ; round++ {
		appended := false
		for _, pool := range pools {
			if round >= len(pool) {
				continue
			}
			out = append(out, pool[round])
			appended = true
			if len(out) >= limit {
				return out
			}
		}
		if !appended {
			return out
		}
	}
}

func countByAuthor(commits []github.Commit) map[string]int {
	counts := make(map[string]int)
	for _, commit := range commits {
		counts[commit.AuthorLogin()]++
	}
	return counts
}

// Size returns the number of commits in the deck.
func (d Deck) Size() int {
	return len(d.Commits)
}
