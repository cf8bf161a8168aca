// internal/tui/views.go
//
// Rendering for each phase. Pure string building; all state lives in
// the App and its session snapshot.

package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/commitquiz/commitquiz/internal/game"
)

// View renders the current state to a string.
func (a *App) View() string {
	var content string
	switch a.session.Phase {
	case game.PhaseSetup:
		content = a.renderSetup()
	case game.PhaseLoading:
		content = a.renderLoading()
	case game.PhaseRepoSelect:
		content = a.renderRepoSelect()
	case game.PhaseGame:
		content = a.renderGame()
	case game.PhaseFeedback:
		content = a.renderFeedback()
	}

	sections := []string{titleStyle.Render("⎇ COMMITQUIZ"), content}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	return strings.Join(sections, "\n")
}

func (a *App) renderSetup() string {
	var b strings.Builder
	if a.session.Err != "" {
		b.WriteString(errorStyle.Render(a.session.Err))
		b.WriteString("\n\n")
	}
	if len(a.session.Orgs) == 0 {
		b.WriteString(subtitleStyle.Render("Paste a GitHub token to play. It stays in memory and is never written anywhere."))
		b.WriteString("\n\n")
		b.WriteString(a.tokenInput.View())
		b.WriteString(helpStyle.Render("\nenter connect · ctrl+c quit"))
		return b.String()
	}
	b.WriteString(a.orgList.View())
	b.WriteString(helpStyle.Render("\nenter select · esc start over · q quit"))
	return b.String()
}

func (a *App) renderLoading() string {
	note := a.loadingNote
	if note == "" {
		note = "Loading..."
	}
	return fmt.Sprintf("%s %s", a.spin.View(), subtitleStyle.Render(note))
}

func (a *App) renderRepoSelect() string {
	var b strings.Builder
	orgName := ""
	if a.session.Org != nil {
		orgName = a.session.Org.Login
	}
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Which of %s's repositories should the commits come from?", orgName)))
	b.WriteString("\n\n")
	for i, repo := range a.session.Repos {
		mark := "[ ]"
		if a.session.Selected[repo.ID] {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s", mark, repo.Name)
		if repo.Private {
			line += dimStyle.Render(" (private)")
		}
		if i == a.repoCursor {
			b.WriteString(selectedStyle.Render(line))
		} else {
			b.WriteString(normalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	if a.session.Err != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(a.session.Err))
	}
	b.WriteString(helpStyle.Render("\nspace toggle · a all · n none · enter start · esc start over"))
	return b.String()
}

func (a *App) renderGame() string {
	commit, ok := a.session.Current()
	if !ok {
		return subtitleStyle.Render("No commit to show.")
	}

	question := commitBoxStyle.Render(commit.Message())
	header := subtitleStyle.Render(fmt.Sprintf("Who wrote this? (%d of %d)",
		a.session.Index+1, a.session.Deck.Size()))

	var answers strings.Builder
	for i, member := range a.session.Members {
		line := member.Login
		if i == a.memberCursor {
			answers.WriteString(selectedStyle.Render("▸ " + line))
		} else {
			answers.WriteString(normalStyle.Render("  " + line))
		}
		answers.WriteString("\n")
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		header, "", question, "", answers.String(), a.renderScore())
	right := a.renderDistribution()
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
	return body + helpStyle.Render("\nup/down choose · enter guess · esc start over")
}

func (a *App) renderFeedback() string {
	guess := a.session.LastGuess
	if guess == nil {
		return a.renderGame()
	}
	var verdict string
	if guess.Correct {
		verdict = correctStyle.Render(fmt.Sprintf("Correct! %s wrote it.", guess.Commit.AuthorLogin()))
	} else {
		verdict = wrongStyle.Render(fmt.Sprintf("Nope — that was %s, not %s.",
			guess.Commit.AuthorLogin(), guess.Guessed.Login))
	}
	question := commitBoxStyle.Render(guess.Commit.Message())
	return lipgloss.JoinVertical(lipgloss.Left,
		question, "", verdict, "", a.renderScore(),
		helpStyle.Render("\nenter next"))
}

func (a *App) renderScore() string {
	s := a.session.Score
	return scoreStyle.Render(fmt.Sprintf("Score %d/%d · streak %d", s.Correct, s.Total, s.Streak))
}

// renderDistribution shows the per-author commit counts in the current
// deck, the fairness indicator promised to the player.
func (a *App) renderDistribution() string {
	dist := a.session.Deck.Distribution
	if len(dist) == 0 {
		return ""
	}
	logins := make([]string, 0, len(dist))
	for login := range dist {
		logins = append(logins, login)
	}
	sort.Strings(logins)
	var b strings.Builder
	b.WriteString(dimStyle.Render("deck"))
	b.WriteString("\n")
	for _, login := range logins {
		b.WriteString(fmt.Sprintf("%s %s\n", login, dimStyle.Render(fmt.Sprintf("×%d", dist[login]))))
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (a *App) renderLogPanel() string {
	lines := a.log.Tail(4)
	if len(lines) == 0 {
		return ""
	}
	return panelStyle.Render(dimStyle.Render(strings.Join(lines, "\n")))
}
