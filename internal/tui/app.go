// internal/tui/app.go
//
// The terminal UI for commitquiz. It uses bubbletea, which follows The
// Elm Architecture: the model holds state, Update folds messages into a
// new model, View renders it. That maps one-to-one onto the game's
// session machine — every network result arrives as a message carrying
// the epoch that requested it, and the session decides whether it still
// applies.

package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/commitquiz/commitquiz/internal/config"
	"github.com/commitquiz/commitquiz/internal/game"
	"github.com/commitquiz/commitquiz/internal/github"
	"github.com/commitquiz/commitquiz/internal/logbook"
	"github.com/commitquiz/commitquiz/internal/quiz"
)

// APIClient is the slice of the GitHub client the TUI drives. Tests
// substitute a canned implementation.
type APIClient interface {
	Organizations(ctx context.Context) ([]github.Organization, error)
	Members(ctx context.Context, org github.Organization) ([]github.Member, error)
	Repositories(ctx context.Context, org github.Organization) ([]github.Repository, error)
	AuthorCommits(ctx context.Context, repo github.Repository, login string) []github.Commit
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithClientFactory overrides how the App turns a token into an API
// client.
func WithClientFactory(factory func(token string) APIClient) AppOption {
	return func(a *App) {
		if factory != nil {
			a.factory = factory
		}
	}
}

// Messages produced by async commands. Each carries the session epoch
// that requested the work so stale results can be dropped.
type orgsLoadedMsg struct {
	epoch int
	orgs  []github.Organization
	err   error
}

type orgLoadedMsg struct {
	epoch   int
	members []github.Member
	repos   []github.Repository
	err     error
}

type deckBuiltMsg struct {
	epoch int
	deck  quiz.Deck
	err   error
}

// advanceTickMsg fires after the feedback delay. Index pins it to the
// deck item it was scheduled for, so a manual skip makes it a no-op.
type advanceTickMsg struct {
	epoch int
	index int
}

// orgItem adapts an Organization to the bubbles list.
type orgItem struct {
	org github.Organization
}

func (i orgItem) Title() string { return i.org.Login }
func (i orgItem) Description() string {
	if i.org.Description == "" {
		return "no description"
	}
	return i.org.Description
}
func (i orgItem) FilterValue() string { return i.org.Login }

// App is the bubbletea model. It owns the session snapshot and the
// ephemeral widget state around it.
type App struct {
	cfg     *config.Config
	log     *logbook.Logbook
	session game.Session

	client  APIClient
	factory func(token string) APIClient

	tokenInput textinput.Model
	orgList    list.Model
	spin       spinner.Model

	repoCursor   int
	memberCursor int
	loadingNote  string

	width  int
	height int
}

// NewApp creates the application model.
func NewApp(cfg *config.Config, log *logbook.Logbook, opts ...AppOption) *App {
	ti := textinput.New()
	ti.Placeholder = "ghp_..."
	ti.EchoMode = textinput.EchoPassword
	ti.CharLimit = 200
	ti.Focus()

	orgList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	orgList.Title = "Select an organization"
	orgList.SetShowStatusBar(false)
	orgList.SetFilteringEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	app := &App{
		cfg:        cfg,
		log:        log,
		session:    game.New(),
		tokenInput: ti,
		orgList:    orgList,
		spin:       sp,
	}
	app.factory = func(token string) APIClient {
		return github.NewClient(token, cfg, log)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	return app
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.orgList.SetSize(max(0, msg.Width-6), max(0, msg.Height-12))
		return a, nil

	case spinner.TickMsg:
		if a.session.Phase != game.PhaseLoading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case orgsLoadedMsg:
		a.session = a.session.OrganizationsLoaded(msg.epoch, msg.orgs, msg.err)
		if a.session.Err != "" {
			a.log.Error("organization listing failed: %s", a.session.Err)
		}
		items := make([]list.Item, len(a.session.Orgs))
		for i, org := range a.session.Orgs {
			items[i] = orgItem{org: org}
		}
		a.orgList.SetItems(items)
		return a, nil

	case orgLoadedMsg:
		a.session = a.session.OrganizationLoaded(msg.epoch, msg.members, msg.repos, msg.err)
		a.repoCursor = 0
		if a.session.Err != "" {
			a.log.Error("organization load failed: %s", a.session.Err)
		}
		return a, nil

	case deckBuiltMsg:
		a.session = a.session.DeckBuilt(msg.epoch, msg.deck, msg.err)
		a.memberCursor = 0
		if a.session.Err != "" {
			a.log.Error("deck build failed: %s", a.session.Err)
		} else if a.session.Phase == game.PhaseGame {
			a.log.Info("deck ready: %d commits from %d authors",
				a.session.Deck.Size(), len(a.session.Deck.Distribution))
		}
		return a, nil

	case advanceTickMsg:
		if a.session.Phase != game.PhaseFeedback ||
			msg.epoch != a.session.Epoch || msg.index != a.session.Index {
			return a, nil
		}
		return a.advance()

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	if a.session.Phase == game.PhaseSetup && len(a.session.Orgs) == 0 {
		var cmd tea.Cmd
		a.tokenInput, cmd = a.tokenInput.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}
	if msg.String() == "esc" {
		return a.reset()
	}

	switch a.session.Phase {
	case game.PhaseSetup:
		return a.handleSetupKey(msg)
	case game.PhaseRepoSelect:
		return a.handleRepoSelectKey(msg)
	case game.PhaseGame:
		return a.handleGameKey(msg)
	case game.PhaseFeedback:
		if msg.String() == "enter" || msg.String() == " " {
			return a.advance()
		}
	}
	return a, nil
}

func (a *App) handleSetupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Before organizations are known the setup screen is a token prompt;
	// afterwards it is the organization picker.
	if len(a.session.Orgs) == 0 {
		if msg.String() == "enter" {
			return a.connect()
		}
		var cmd tea.Cmd
		a.tokenInput, cmd = a.tokenInput.Update(msg)
		return a, cmd
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "enter":
		item, ok := a.orgList.SelectedItem().(orgItem)
		if !ok {
			return a, nil
		}
		a.session = a.session.SelectOrganization(item.org)
		a.loadingNote = "Loading " + item.org.Login + "..."
		a.log.Info("organization selected: %s", item.org.Login)
		return a, tea.Batch(a.fetchOrgData(item.org), a.spin.Tick)
	}
	var cmd tea.Cmd
	a.orgList, cmd = a.orgList.Update(msg)
	return a, cmd
}

func (a *App) handleRepoSelectKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if a.repoCursor > 0 {
			a.repoCursor--
		}
	case "down", "j":
		if a.repoCursor < len(a.session.Repos)-1 {
			a.repoCursor++
		}
	case " ":
		if a.repoCursor < len(a.session.Repos) {
			a.session = a.session.ToggleRepository(a.session.Repos[a.repoCursor].ID)
		}
	case "a":
		a.session = a.session.SelectAllRepositories()
	case "n":
		a.session = a.session.DeselectAllRepositories()
	case "enter":
		session, start := a.session.StartGame()
		a.session = session
		if !start {
			return a, nil
		}
		a.loadingNote = "Building the deck..."
		return a, tea.Batch(a.buildDeck(), a.spin.Tick)
	}
	return a, nil
}

func (a *App) handleGameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if a.memberCursor > 0 {
			a.memberCursor--
		}
	case "down", "j":
		if a.memberCursor < len(a.session.Members)-1 {
			a.memberCursor++
		}
	case "enter":
		if a.memberCursor >= len(a.session.Members) {
			return a, nil
		}
		guessed := a.session.Members[a.memberCursor]
		a.session = a.session.SubmitGuess(guessed)
		if a.session.LastGuess != nil {
			epoch, index := a.session.Epoch, a.session.Index
			delay := a.cfg.FeedbackDelay()
			return a, tea.Tick(delay, func(time.Time) tea.Msg {
				return advanceTickMsg{epoch: epoch, index: index}
			})
		}
	}
	return a, nil
}

// advance moves past the feedback screen, rebuilding the deck when it
// ran dry.
func (a *App) advance() (tea.Model, tea.Cmd) {
	session, rebuild := a.session.Advance()
	a.session = session
	if !rebuild {
		return a, nil
	}
	a.loadingNote = "Deck exhausted, drawing fresh commits..."
	a.log.Info("deck exhausted, rebuilding")
	return a, tea.Batch(a.buildDeck(), a.spin.Tick)
}

// reset drops everything, including the credential, and returns to the
// token prompt. In-flight requests keep running but their results no
// longer match the session epoch.
func (a *App) reset() (tea.Model, tea.Cmd) {
	a.session = a.session.Reset()
	a.client = nil
	a.repoCursor = 0
	a.memberCursor = 0
	a.tokenInput.SetValue("")
	a.tokenInput.Focus()
	a.orgList.SetItems(nil)
	return a, textinput.Blink
}

func (a *App) connect() (tea.Model, tea.Cmd) {
	session, fetch := a.session.Connect(a.tokenInput.Value())
	a.session = session
	if !fetch {
		return a, nil
	}
	a.client = a.factory(a.session.Token)
	a.loadingNote = "Contacting the API..."
	a.log.Info("connecting")
	return a, tea.Batch(a.fetchOrgs(), a.spin.Tick)
}

func (a *App) fetchOrgs() tea.Cmd {
	epoch := a.session.Epoch
	client := a.client
	return func() tea.Msg {
		orgs, err := client.Organizations(context.Background())
		return orgsLoadedMsg{epoch: epoch, orgs: orgs, err: err}
	}
}

// fetchOrgData lists members and repositories in parallel; either
// failure is fatal to the transition.
func (a *App) fetchOrgData(org github.Organization) tea.Cmd {
	epoch := a.session.Epoch
	client := a.client
	return func() tea.Msg {
		var (
			members []github.Member
			repos   []github.Repository
		)
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			var err error
			members, err = client.Members(ctx, org)
			return err
		})
		g.Go(func() error {
			var err error
			repos, err = client.Repositories(ctx, org)
			return err
		})
		err := g.Wait()
		return orgLoadedMsg{epoch: epoch, members: members, repos: repos, err: err}
	}
}

func (a *App) buildDeck() tea.Cmd {
	epoch := a.session.Epoch
	client := a.client
	members := a.session.Members
	repos := a.session.SelectedRepositories()
	policy := quiz.Policy{
		PerAuthorFloor: a.cfg.Settings.Deck.PerAuthorFloor,
		Budget:         a.cfg.Settings.Deck.Budget,
	}
	return func() tea.Msg {
		deck, err := quiz.Build(context.Background(), client, members, repos, policy)
		return deckBuiltMsg{epoch: epoch, deck: deck, err: err}
	}
}
