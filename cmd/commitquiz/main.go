// cmd/commitquiz/main.go
//
// Entry point for the commitquiz TUI. Configuration and the logbook live
// under ~/.commitquiz; game state is in-memory only and gone when the
// program exits.

package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/commitquiz/commitquiz/internal/config"
	"github.com/commitquiz/commitquiz/internal/logbook"
	"github.com/commitquiz/commitquiz/internal/tui"
)

func main() {
	dir, err := config.DefaultDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error locating config directory: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.New(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	book, err := logbook.New(cfg.LogPath())
	if err != nil {
		// Playable without a logbook; warnings just have nowhere to go.
		fmt.Fprintf(os.Stderr, "Warning: logbook unavailable: %v\n", err)
		book = nil
	}

	p := tea.NewProgram(
		tui.NewApp(cfg, book),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
