package tui

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/commitquiz/commitquiz/internal/config"
	"github.com/commitquiz/commitquiz/internal/game"
	"github.com/commitquiz/commitquiz/internal/github"
)

// fakeAPI serves canned directory listings and commits.
type fakeAPI struct {
	orgs    []github.Organization
	members []github.Member
	repos   []github.Repository
	commits map[string][]github.Commit // keyed by "repo/login"
}

func (f *fakeAPI) Organizations(context.Context) ([]github.Organization, error) {
	return f.orgs, nil
}

func (f *fakeAPI) Members(context.Context, github.Organization) ([]github.Member, error) {
	return f.members, nil
}

func (f *fakeAPI) Repositories(context.Context, github.Organization) ([]github.Repository, error) {
	return f.repos, nil
}

func (f *fakeAPI) AuthorCommits(_ context.Context, repo github.Repository, login string) []github.Commit {
	return f.commits[repo.FullName+"/"+login]
}

func testCommit(sha, login string) github.Commit {
	return github.Commit{
		SHA:    sha,
		Detail: github.CommitDetail{Message: "work on " + sha},
		Author: &github.Member{Login: login},
	}
}

func testFake() *fakeAPI {
	return &fakeAPI{
		orgs: []github.Organization{{ID: 1, Login: "acme"}},
		members: []github.Member{
			{ID: 1, Login: "ana"},
			{ID: 2, Login: "bob"},
			{ID: 3, Login: "cid"},
		},
		repos: []github.Repository{{ID: 7, Name: "widgets", FullName: "acme/widgets"}},
		commits: map[string][]github.Commit{
			"acme/widgets/ana": {testCommit("a1", "ana"), testCommit("a2", "ana")},
			"acme/widgets/bob": {testCommit("b1", "bob")},
		},
	}
}

func newTestApp(t *testing.T, fake *fakeAPI) *App {
	t.Helper()
	cfg, err := config.New(filepath.Join(t.TempDir(), "cfg"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.Settings.Game.FeedbackDelayMS = 1
	return NewApp(cfg, nil, WithClientFactory(func(string) APIClient {
		return fake
	}))
}

// drain runs commands to completion, feeding back only fetch results.
// Widget housekeeping (blinks, spinner ticks) and the feedback tick are
// dropped; tests deliver advanceTickMsg themselves to control timing.
func drain(t *testing.T, app *App, cmd tea.Cmd) *App {
	t.Helper()
	if cmd == nil {
		return app
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			app = drain(t, app, c)
		}
		return app
	}
	switch msg.(type) {
	case orgsLoadedMsg, orgLoadedMsg, deckBuiltMsg:
		model, next := app.Update(msg)
		return drain(t, model.(*App), next)
	}
	return app
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, app *App, keys ...string) *App {
	t.Helper()
	for _, k := range keys {
		model, cmd := app.Update(key(k))
		app = drain(t, model.(*App), cmd)
	}
	return app
}

// startedApp walks the app to the game phase against the fake API.
func startedApp(t *testing.T, fake *fakeAPI) *App {
	t.Helper()
	app := newTestApp(t, fake)
	model, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	app = model.(*App)
	app.tokenInput.SetValue("tok")
	app = press(t, app, "enter") // connect -> orgs loaded
	if app.session.Phase != game.PhaseSetup || len(app.session.Orgs) != 1 {
		t.Fatalf("after connect: phase=%s orgs=%d err=%q",
			app.session.Phase, len(app.session.Orgs), app.session.Err)
	}
	app = press(t, app, "enter") // pick org -> repo select
	if app.session.Phase != game.PhaseRepoSelect {
		t.Fatalf("after org pick: phase=%s err=%q", app.session.Phase, app.session.Err)
	}
	app = press(t, app, "enter") // start game -> deck built
	if app.session.Phase != game.PhaseGame {
		t.Fatalf("after start: phase=%s err=%q", app.session.Phase, app.session.Err)
	}
	return app
}

func TestConnectThroughGameStart(t *testing.T) {
	app := startedApp(t, testFake())
	if app.session.Deck.Size() != 3 {
		t.Fatalf("deck size = %d, want 3", app.session.Deck.Size())
	}
	dist := app.session.Deck.Distribution
	if dist["ana"] != 2 || dist["bob"] != 1 {
		t.Fatalf("distribution = %v", dist)
	}
	if _, ok := dist["cid"]; ok {
		t.Fatalf("cid has no commits but entered the deck")
	}
}

func TestGuessMovesToFeedbackAndAdvances(t *testing.T) {
	app := startedApp(t, testFake())
	app = press(t, app, "enter") // guess the highlighted member
	if app.session.Phase != game.PhaseFeedback {
		t.Fatalf("phase after guess = %s, want feedback", app.session.Phase)
	}
	if app.session.Score.Total != 1 {
		t.Fatalf("score total = %d, want 1", app.session.Score.Total)
	}

	model, cmd := app.Update(advanceTickMsg{epoch: app.session.Epoch, index: app.session.Index})
	app = drain(t, model.(*App), cmd)
	if app.session.Phase != game.PhaseGame || app.session.Index != 1 {
		t.Fatalf("after advance: phase=%s index=%d", app.session.Phase, app.session.Index)
	}
}

func TestExhaustionRebuildsDeck(t *testing.T) {
	fake := testFake()
	app := startedApp(t, fake)
	// Answer every commit; the tick after the last one rebuilds the deck.
	for i := 0; i < 3; i++ {
		app = press(t, app, "enter")
		model, cmd := app.Update(advanceTickMsg{epoch: app.session.Epoch, index: app.session.Index})
		app = drain(t, model.(*App), cmd)
	}
	if app.session.Phase != game.PhaseGame {
		t.Fatalf("phase after exhaustion = %s, want game with a fresh deck (err=%q)",
			app.session.Phase, app.session.Err)
	}
	if app.session.Deck.Size() != 3 || app.session.Index != 0 {
		t.Fatalf("rebuilt deck: size=%d index=%d", app.session.Deck.Size(), app.session.Index)
	}
	if app.session.Score.Total != 3 {
		t.Fatalf("score total = %d, want 3 (score survives replenishment)", app.session.Score.Total)
	}
}

func TestStaleResultAfterResetIsIgnored(t *testing.T) {
	app := startedApp(t, testFake())
	staleEpoch := app.session.Epoch

	model, cmd := app.Update(key("esc"))
	app = drain(t, model.(*App), cmd)
	if app.session.Phase != game.PhaseSetup || app.session.Token != "" {
		t.Fatalf("reset: %+v", app.session)
	}

	model, cmd = app.Update(deckBuiltMsg{epoch: staleEpoch, deck: app.session.Deck, err: nil})
	app = drain(t, model.(*App), cmd)
	if app.session.Phase != game.PhaseSetup {
		t.Fatalf("stale deck result changed phase to %s", app.session.Phase)
	}
}

func TestRepoToggleBlocksEmptyStart(t *testing.T) {
	app := newTestApp(t, testFake())
	model, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	app = model.(*App)
	app.tokenInput.SetValue("tok")
	app = press(t, app, "enter", "enter") // connect, pick org
	app = press(t, app, "n", "enter")     // deselect all, try to start
	if app.session.Phase != game.PhaseRepoSelect || app.session.Err == "" {
		t.Fatalf("empty start: phase=%s err=%q", app.session.Phase, app.session.Err)
	}
	app = press(t, app, "a", "enter")
	if app.session.Phase != game.PhaseGame {
		t.Fatalf("after select-all start: phase=%s err=%q", app.session.Phase, app.session.Err)
	}
}
