// internal/game/session.go
//
// The session state machine. A Session is an immutable snapshot; every
// transition returns a fresh one, so whoever renders it never observes a
// half-applied change. Network work happens elsewhere — the TUI runs it
// and feeds results back through the *Loaded transitions, each tagged
// with the epoch that requested it. Results from a superseded epoch are
// dropped, which is what makes reset safe while requests are in flight.

package game

import (
	"strings"

	"github.com/commitquiz/commitquiz/internal/github"
	"github.com/commitquiz/commitquiz/internal/quiz"
)

// Phase is where the session currently is.
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseLoading
	PhaseRepoSelect
	PhaseGame
	PhaseFeedback
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhaseLoading:
		return "loading"
	case PhaseRepoSelect:
		return "repo-select"
	case PhaseGame:
		return "game"
	case PhaseFeedback:
		return "feedback"
	}
	return "unknown"
}

// Guess records the outcome of one answered commit, kept around for the
// feedback screen.
type Guess struct {
	Commit  github.Commit
	Guessed github.Member
	Correct bool
}

// Session aggregates everything one run of the quiz knows. The zero
// value is not useful; start from New.
type Session struct {
	Phase Phase

	// Epoch increments whenever new async work is kicked off or the
	// session resets, invalidating anything still in flight.
	Epoch int

	Token string

	Orgs []github.Organization
	Org  *github.Organization

	Members  []github.Member
	Repos    []github.Repository
	Selected map[int64]bool

	Deck      quiz.Deck
	Index     int
	Score     quiz.Score
	LastGuess *Guess

	Err string
}

// New returns the initial session: setup phase, nothing known.
func New() Session {
	return Session{Phase: PhaseSetup}
}

// Connect accepts a credential and moves to loading. The boolean reports
// whether the caller should fetch organizations (false when the token
// was blank and the session stayed put).
func (s Session) Connect(token string) (Session, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		s.Err = "Enter a GitHub token first."
		return s, false
	}
	s.Token = token
	s.Phase = PhaseLoading
	s.Epoch++
	s.Err = ""
	return s, true
}

// OrganizationsLoaded applies the result of the organization fetch.
func (s Session) OrganizationsLoaded(epoch int, orgs []github.Organization, err error) Session {
	if epoch != s.Epoch {
		return s
	}
	if err != nil {
		return s.fail(err)
	}
	if len(orgs) == 0 {
		return s.fail(errNoOrganizations)
	}
	s.Phase = PhaseSetup
	s.Orgs = orgs
	s.Err = ""
	return s
}

// SelectOrganization picks an organization and moves to loading while
// its members and repositories are fetched.
func (s Session) SelectOrganization(org github.Organization) Session {
	s.Org = &org
	s.Phase = PhaseLoading
	s.Epoch++
	s.Err = ""
	return s
}

// OrganizationLoaded applies the member/repository listings for the
// selected organization. A playable organization needs at least two
// members and one repository.
func (s Session) OrganizationLoaded(epoch int, members []github.Member, repos []github.Repository, err error) Session {
	if epoch != s.Epoch {
		return s
	}
	if err != nil {
		return s.fail(err)
	}
	if len(members) < 2 {
		return s.fail(errNotEnoughMembers)
	}
	if len(repos) == 0 {
		return s.fail(errNoRepositories)
	}
	s.Phase = PhaseRepoSelect
	s.Members = members
	s.Repos = repos
	selected := make(map[int64]bool, len(repos))
	for _, repo := range repos {
		selected[repo.ID] = true
	}
	s.Selected = selected
	s.Err = ""
	return s
}

// ToggleRepository flips one repository in or out of the selection.
func (s Session) ToggleRepository(id int64) Session {
	selected := make(map[int64]bool, len(s.Selected))
	for k, v := range s.Selected {
		selected[k] = v
	}
	selected[id] = !selected[id]
	s.Selected = selected
	return s
}

// SelectAllRepositories marks every repository as selected.
func (s Session) SelectAllRepositories() Session {
	selected := make(map[int64]bool, len(s.Repos))
	for _, repo := range s.Repos {
		selected[repo.ID] = true
	}
	s.Selected = selected
	return s
}

// DeselectAllRepositories clears the selection.
func (s Session) DeselectAllRepositories() Session {
	s.Selected = map[int64]bool{}
	return s
}

// SelectedRepositories returns the selected repositories in listing order.
func (s Session) SelectedRepositories() []github.Repository {
	var out []github.Repository
	for _, repo := range s.Repos {
		if s.Selected[repo.ID] {
			out = append(out, repo)
		}
	}
	return out
}

// StartGame moves to loading for deck construction. The boolean reports
// whether the caller should build a deck (false when nothing was
// selected and the session stayed in repo selection).
func (s Session) StartGame() (Session, bool) {
	if len(s.SelectedRepositories()) == 0 {
		s.Err = "Select at least one repository first."
		return s, false
	}
	s.Phase = PhaseLoading
	s.Epoch++
	s.Score = quiz.Score{}
	s.Err = ""
	return s, true
}

// DeckBuilt applies a freshly built deck, for both the initial game
// start and the exhaustion rebuild.
func (s Session) DeckBuilt(epoch int, deck quiz.Deck, err error) Session {
	if epoch != s.Epoch {
		return s
	}
	if err != nil {
		return s.fail(err)
	}
	s.Phase = PhaseGame
	s.Deck = deck
	s.Index = 0
	s.LastGuess = nil
	s.Err = ""
	return s
}

// Current returns the commit awaiting a guess.
func (s Session) Current() (github.Commit, bool) {
	if s.Index < 0 || s.Index >= s.Deck.Size() {
		return github.Commit{}, false
	}
	return s.Deck.Commits[s.Index], true
}

// SubmitGuess grades a guess against the current commit and moves to
// feedback. Guessing outside the game phase is a no-op.
func (s Session) SubmitGuess(guessed github.Member) Session {
	if s.Phase != PhaseGame {
		return s
	}
	commit, ok := s.Current()
	if !ok {
		return s
	}
	correct := guessed.Login == commit.AuthorLogin()
	s.Score = s.Score.Grade(correct)
	s.LastGuess = &Guess{Commit: commit, Guessed: guessed, Correct: correct}
	s.Phase = PhaseFeedback
	return s
}

// Advance leaves feedback for the next commit. When the deck is
// exhausted it moves to loading instead and reports that the caller
// should rebuild the deck — the only place the pipeline re-runs on its
// own.
func (s Session) Advance() (Session, bool) {
	if s.Phase != PhaseFeedback {
		return s, false
	}
	if s.Index+1 < s.Deck.Size() {
		s.Index++
		s.Phase = PhaseGame
		s.LastGuess = nil
		return s, false
	}
	s.Phase = PhaseLoading
	s.Epoch++
	return s, true
}

// Reset returns to the initial state. The epoch keeps counting up so
// anything still in flight lands on deaf ears.
func (s Session) Reset() Session {
	return Session{Phase: PhaseSetup, Epoch: s.Epoch + 1}
}

// fail surfaces an error and falls back to setup, dropping everything
// scoped to the failed organization. The token and the organization list
// survive so the user can immediately try again.
func (s Session) fail(err error) Session {
	return Session{
		Phase: PhaseSetup,
		Epoch: s.Epoch,
		Token: s.Token,
		Orgs:  s.Orgs,
		Err:   Message(err),
	}
}
