package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/memoria-dev/memoria/internal/session"
)

// Renderer turns markdown into terminal output wrapped at width.
type Renderer func(markdown string, width int) string

// GlamourRenderer renders with glamour, falling back to the raw markdown
// when rendering fails.
func GlamourRenderer(markdown string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(20, width-4)),
	)
	if err != nil {
		return markdown
	}
	out, err := r.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}

// PlainRenderer returns the markdown unchanged.
func PlainRenderer(markdown string, _ int) string {
	return markdown
}

func (m Model) detailRows() int {
	// title bar and footer
	return max(1, m.height-2)
}

func (m Model) openDetail(s *session.Session) Model {
	m.selected = s
	m.detail = viewport.New(m.width, m.detailRows())
	m.detail.SetContent(m.render(DetailMarkdown(s), m.width))
	m.mode = modeDetail
	return m
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.mode = modeList
		m.selected = nil
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.detail.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.detail.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m Model) viewDetail() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(truncate(m.selected.Title, max(10, m.width-20))))
	b.WriteString(DimStyle.Render("  "+m.selected.ID) + "\n")
	b.WriteString(m.detail.View() + "\n")
	b.WriteString(m.help.ShortHelpView(m.keys.DetailHelp()))
	b.WriteString(DimStyle.Render(fmt.Sprintf("  %3.f%%", m.detail.ScrollPercent()*100)))
	return b.String()
}

// DetailMarkdown lays out a session as a markdown document.
func DetailMarkdown(s *session.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", s.Title)
	fmt.Fprintf(&b, "**Status:** %s · **Project:** %s · **Updated:** %s\n\n",
		s.Status, s.Project, s.UpdatedAt.Local().Format("2006-01-02 15:04"))
	if s.GitBranch != "" {
		fmt.Fprintf(&b, "**Branch:** %s %s\n\n", s.GitBranch, s.GitCommit)
	}
	if s.Duration != "" {
		fmt.Fprintf(&b, "**Duration:** %s\n\n", s.Duration)
	}
	if cs := s.ContextState; cs != nil {
		b.WriteString("## Context\n\n")
		if cs.CurrentFocus != "" {
			fmt.Fprintf(&b, "- Focus: %s\n", cs.CurrentFocus)
		}
		if cs.WorkPhase != "" {
			fmt.Fprintf(&b, "- Phase: %s\n", cs.WorkPhase)
		}
		if cs.LastAction != "" {
			fmt.Fprintf(&b, "- Last action: %s\n", cs.LastAction)
		}
		if cs.ProgressPercentage != nil {
			fmt.Fprintf(&b, "- Progress: %.0f%%\n", *cs.ProgressPercentage)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Summary\n\n" + s.Summary + "\n\n")

	if len(s.FilesModified) > 0 {
		b.WriteString("## Files Modified\n\n")
		for _, f := range s.FilesModified {
			b.WriteString("- `" + f + "`\n")
		}
		b.WriteString("\n")
	}

	if len(s.Decisions) > 0 {
		b.WriteString("## Decisions\n\n")
		for _, d := range s.Decisions {
			line := "- " + d.Decision
			if d.Rationale != "" {
				line += " (" + d.Rationale + ")"
			}
			if d.Category != "" {
				line += " [" + d.Category + "]"
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	if len(s.IncompleteTasks) > 0 {
		b.WriteString("## Incomplete Tasks\n\n")
		for _, t := range s.IncompleteTasks {
			fmt.Fprintf(&b, "- [ ] %s (%s, priority %g)", t.Task, t.Status, t.Priority)
			if t.NextAction != "" {
				fmt.Fprintf(&b, ": next %s", t.NextAction)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(s.Blockers) > 0 {
		b.WriteString("## Blockers\n\n")
		for _, bl := range s.Blockers {
			b.WriteString("- " + bl.Blocker)
			if bl.Resolution != "" {
				b.WriteString(" → " + bl.Resolution)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(s.AttemptedSolutions) > 0 {
		b.WriteString("## Attempted Solutions\n\n")
		for _, a := range s.AttemptedSolutions {
			fmt.Fprintf(&b, "- **%s**: %s → %s\n", a.Problem, a.Solution, a.Outcome)
		}
		b.WriteString("\n")
	}

	if len(s.RejectedApproaches) > 0 {
		b.WriteString("## Rejected Approaches\n\n")
		for _, r := range s.RejectedApproaches {
			fmt.Fprintf(&b, "- %s: %s\n", r.Approach, r.Reason)
		}
		b.WriteString("\n")
	}

	if len(s.Checkpoints) > 0 {
		b.WriteString("## Checkpoints\n\n")
		for _, cp := range s.Checkpoints {
			fmt.Fprintf(&b, "%d. %s", cp.Number, cp.CreatedAt.Local().Format("2006-01-02 15:04"))
			if cp.IncrementalNote != "" {
				b.WriteString(": " + cp.IncrementalNote)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
