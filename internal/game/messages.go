package game

import (
	"errors"
	"fmt"

	"github.com/commitquiz/commitquiz/internal/github"
	"github.com/commitquiz/commitquiz/internal/quiz"
)

// Validation failures local to the session machine.
var (
	errNoOrganizations  = errors.New("game: token sees no organizations")
	errNotEnoughMembers = errors.New("game: organization has fewer than two members")
	errNoRepositories   = errors.New("game: organization has no repositories")
)

// Message renders an error as the single human-readable string the
// presentation layer shows. Nothing structured crosses that boundary.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, github.ErrBadToken):
		return "GitHub rejected that token. Check it and try again."
	case errors.Is(err, github.ErrRateLimited):
		return "GitHub is rate limiting us. Give it a minute, then retry."
	case errors.Is(err, quiz.ErrNotEnoughAuthors):
		return "Fewer than two members have commits in the selected repositories. Select more repositories or another organization."
	case errors.Is(err, errNoOrganizations):
		return "This token is not a member of any organization."
	case errors.Is(err, errNotEnoughMembers):
		return "That organization needs at least two public members to play."
	case errors.Is(err, errNoRepositories):
		return "That organization has no repositories."
	}
	var statusErr *github.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("GitHub returned an unexpected error (HTTP %d).", statusErr.Status)
	}
	var decodeErr *github.DecodeError
	if errors.As(err, &decodeErr) {
		return "GitHub sent a response that could not be read."
	}
	return err.Error()
}
