package cli

import (
	"github.com/fatih/color"

	"github.com/memoria-dev/memoria/internal/session"
)

func check() string {
	return color.GreenString("✓")
}

func statusLabel(s session.Status) string {
	switch s {
	case session.StatusCompleted:
		return color.GreenString("%-11s", s)
	case session.StatusInProgress:
		return color.YellowString("%-11s", s)
	default:
		return string(s)
	}
}
