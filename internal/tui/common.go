// Package tui implements a read-only terminal browser over the session
// store using Bubble Tea.
package tui

import (
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/memoria-dev/memoria/internal/session"
)

// ErrNotTTY is returned by Run when stdout is not a terminal.
var ErrNotTTY = errors.New("terminal browser needs an interactive terminal")

// IsTTY returns true if stdout is connected to a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Run opens the browser over store in alternate screen mode.
func Run(store *session.Store) error {
	if !IsTTY() {
		return ErrNotTTY
	}
	p := tea.NewProgram(NewModel(store, nil), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
