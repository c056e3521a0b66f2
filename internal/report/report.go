// Package report aggregates the store into the status summary printed by
// `memoria status`.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/memoria-dev/memoria/internal/config"
	"github.com/memoria-dev/memoria/internal/detect"
	"github.com/memoria-dev/memoria/internal/git"
	"github.com/memoria-dev/memoria/internal/log"
	"github.com/memoria-dev/memoria/internal/session"
)

// MaxListed is how many in-progress sessions FormatReport lists by name.
const MaxListed = 5

// Report holds the aggregated statistics for one store.
type Report struct {
	Project      string
	Directory    string
	Branch       string
	Manifest     string
	Total        int
	InProgress   []*session.Session
	Completed    int
	LastActivity time.Time
	Events       int
	Journal      string
}

// GenerateReport gathers session counts, git state and journal activity
// for store. Non-critical failures (git missing, unreadable journal) are
// tolerated and leave the corresponding fields empty.
func GenerateReport(store *session.Store) (*Report, error) {
	if !store.IsInitialized() {
		return nil, session.ErrNotInitialized
	}
	cfg, err := store.Config()
	if err != nil || cfg == nil {
		return nil, session.ErrConfig
	}

	r := &Report{
		Project:   cfg.Project,
		Directory: store.Dir(),
		Manifest:  detect.Manifest(store.Root()),
	}

	sessions, err := store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("loading sessions: %w", err)
	}
	r.Total = len(sessions)
	for _, s := range sessions {
		switch s.Status {
		case session.StatusInProgress:
			r.InProgress = append(r.InProgress, s)
		case session.StatusCompleted:
			r.Completed++
		}
	}

	if info, err := git.Describe(store.Root()); err == nil {
		r.Branch = info.Branch
	}

	journal := log.NewLogger(config.StoreDir(store.Root()))
	events, err := journal.ReadAll()
	if err == nil && len(events) > 0 {
		r.Journal = journal.Path()
		r.Events = len(events)
		r.LastActivity = events[len(events)-1].Time
	}
	return r, nil
}

// FormatReport produces a terminal-friendly, human-readable summary string.
// Colors follow color.NoColor, so output to a pipe stays plain.
func FormatReport(r *Report) string {
	var b strings.Builder

	b.WriteString(color.New(color.Bold).Sprint("Memoria Status") + "\n\n")

	fmt.Fprintf(&b, "Project:     %s\n", color.CyanString(r.Project))
	fmt.Fprintf(&b, "Directory:   %s\n", r.Directory)
	if r.Branch != "" {
		fmt.Fprintf(&b, "Branch:      %s\n", r.Branch)
	}
	if r.Manifest != "" {
		fmt.Fprintf(&b, "Manifest:    %s\n", r.Manifest)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Sessions:    %d total\n", r.Total)
	fmt.Fprintf(&b, "  In Progress: %s\n", color.YellowString("%d", len(r.InProgress)))
	fmt.Fprintf(&b, "  Completed:   %s\n", color.GreenString("%d", r.Completed))

	if len(r.InProgress) > 0 {
		b.WriteString("\nIn-Progress Sessions:\n")
		for _, s := range r.InProgress[:min(len(r.InProgress), MaxListed)] {
			fmt.Fprintf(&b, "  - %s %s\n", s.Title, color.HiBlackString("(%s)", s.ID))
		}
		if extra := len(r.InProgress) - MaxListed; extra > 0 {
			fmt.Fprintf(&b, "  ... and %d more\n", extra)
		}
	}

	if !r.LastActivity.IsZero() {
		fmt.Fprintf(&b, "\nLast activity: %s (%d events in %s)\n",
			r.LastActivity.Local().Format("2006-01-02 15:04"), r.Events, r.Journal)
	}

	return b.String()
}
