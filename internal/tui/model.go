package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/memoria-dev/memoria/internal/session"
)

type mode int

const (
	modeList mode = iota
	modeFilter
	modeDetail
)

// statusFilters cycle with the Status key. The empty value shows all.
var statusFilters = []session.Status{"", session.StatusInProgress, session.StatusCompleted}

// sessionsLoadedMsg carries the result of reading the store.
type sessionsLoadedMsg struct {
	sessions []*session.Session
	err      error
}

// Model is the browser state. It only reads from the store.
type Model struct {
	store  *session.Store
	render Renderer
	keys   KeyMap
	help   help.Model

	sessions []*session.Session
	filtered []*session.Session
	status   int // index into statusFilters
	cursor   int
	offset   int
	err      error
	loaded   bool

	mode     mode
	search   textinput.Model
	detail   viewport.Model
	selected *session.Session

	width  int
	height int
}

// NewModel builds a browser over store. A nil render uses glamour.
func NewModel(store *session.Store, render Renderer) Model {
	if render == nil {
		render = GlamourRenderer
	}
	si := textinput.New()
	si.Placeholder = "filter..."
	si.CharLimit = 100

	return Model{
		store:  store,
		render: render,
		keys:   DefaultKeyMap,
		help:   help.New(),
		search: si,
		detail: viewport.New(80, 20),
		width:  80,
		height: 24,
	}
}

func loadSessions(store *session.Store) tea.Cmd {
	return func() tea.Msg {
		if !store.IsInitialized() {
			return sessionsLoadedMsg{err: session.ErrNotInitialized}
		}
		sessions, err := store.LoadAll()
		return sessionsLoadedMsg{sessions: sessions, err: err}
	}
}

func (m Model) Init() tea.Cmd {
	return loadSessions(m.store)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.detail.Width = msg.Width
		m.detail.Height = m.detailRows()
		if m.selected != nil {
			m.detail.SetContent(m.render(DetailMarkdown(m.selected), m.width))
		}
		m.clampOffset()
		return m, nil

	case sessionsLoadedMsg:
		m.loaded = true
		m.err = msg.err
		m.sessions = msg.sessions
		m.applyFilter()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeFilter:
			return m.updateFilter(msg)
		case modeDetail:
			return m.updateDetail(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m *Model) applyFilter() {
	m.filtered = nil
	want := statusFilters[m.status]
	needle := strings.ToLower(strings.TrimSpace(m.search.Value()))

	for _, s := range m.sessions {
		if want != "" && s.Status != want {
			continue
		}
		if needle != "" {
			haystack := strings.ToLower(s.Title + " " + s.ID + " " + s.Summary)
			if !strings.Contains(haystack, needle) {
				continue
			}
		}
		m.filtered = append(m.filtered, s)
	}

	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
	m.clampOffset()
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = max(0, len(m.filtered)-1)
	case key.Matches(msg, m.keys.Status):
		m.status = (m.status + 1) % len(statusFilters)
		m.applyFilter()
	case key.Matches(msg, m.keys.Filter):
		m.search.Focus()
		m.mode = modeFilter
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Reload):
		return m, loadSessions(m.store)
	case key.Matches(msg, m.keys.Enter):
		if len(m.filtered) > 0 {
			return m.openDetail(m.filtered[m.cursor]), nil
		}
	}
	m.clampOffset()
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.search.Blur()
		m.mode = modeList
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m Model) listRows() int {
	// title, header, footer
	return max(1, m.height-3)
}

func (m *Model) clampOffset() {
	rows := m.listRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m Model) View() string {
	if m.mode == modeDetail {
		return m.viewDetail()
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Memoria") + "  " + m.renderTabs())
	b.WriteString(DimStyle.Render(fmt.Sprintf("  %d sessions", len(m.filtered))) + "\n")

	switch {
	case !m.loaded:
		b.WriteString("\n  Loading...\n")
	case m.err != nil:
		b.WriteString("\n  " + ErrorStyle.Render(errorText(m.err)) + "\n")
	case len(m.filtered) == 0:
		b.WriteString("\n  No sessions.\n")
	default:
		b.WriteString(DimStyle.Render(fmt.Sprintf("   %-50s %-12s %s", "TITLE", "CHECKPOINTS", "UPDATED")) + "\n")
		end := min(len(m.filtered), m.offset+m.listRows())
		for i := m.offset; i < end; i++ {
			b.WriteString(m.renderRow(m.filtered[i], i == m.cursor) + "\n")
		}
	}

	if m.mode == modeFilter {
		b.WriteString(StatusBarStyle.Render("Filter:") + " " + m.search.View())
	} else {
		b.WriteString(m.help.ShortHelpView(m.keys.ListHelp()))
	}
	return b.String()
}

func (m Model) renderTabs() string {
	labels := []string{"all", "in progress", "completed"}
	tabs := make([]string, len(labels))
	for i, l := range labels {
		if i == m.status {
			tabs[i] = ActiveTabStyle.Render(l)
		} else {
			tabs[i] = InactiveTabStyle.Render(l)
		}
	}
	return strings.Join(tabs, " ")
}

func (m Model) renderRow(s *session.Session, selected bool) string {
	title := truncate(s.Title, 50)
	row := fmt.Sprintf("%-50s %-12d %s", title, len(s.Checkpoints), s.UpdatedAt.Local().Format("2006-01-02 15:04"))
	if selected {
		return SelectedStyle.Render("> ") + statusIcon(s.Status) + " " + SelectedStyle.Render(row)
	}
	return "  " + statusIcon(s.Status) + " " + row
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func errorText(err error) string {
	if errors.Is(err, session.ErrNotInitialized) {
		return "Memoria not initialized. Run `memoria init` first."
	}
	return "Error: " + err.Error()
}
