// Package cleanup implements pruning of completed sessions.
package cleanup

import (
	"fmt"
	"time"

	"github.com/memoria-dev/memoria/internal/log"
	"github.com/memoria-dev/memoria/internal/session"
)

// completedAt is when sess finished, falling back to its last update for
// records written before completedAt existed.
func completedAt(sess *session.Session) time.Time {
	if sess.CompletedAt != nil {
		return *sess.CompletedAt
	}
	return sess.UpdatedAt
}

// completed returns the completed sessions, newest first.
func completed(store *session.Store) ([]*session.Session, error) {
	all, err := store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("loading sessions: %w", err)
	}
	var out []*session.Session
	for _, s := range all {
		if s.IsCompleted() {
			out = append(out, s)
		}
	}
	return out, nil
}

// PruneByAge removes completed sessions that finished more than maxAgeDays
// before now. In-progress sessions are never touched.
// If dryRun is true, nothing is deleted; the function only returns the
// ids that would be removed. Returns the list of pruned session ids.
func PruneByAge(store *session.Store, maxAgeDays int, now time.Time, dryRun bool) ([]string, error) {
	sessions, err := completed(store)
	if err != nil {
		return nil, err
	}

	cutoff := now.AddDate(0, 0, -maxAgeDays)
	var victims []string
	for _, s := range sessions {
		if completedAt(s).Before(cutoff) {
			victims = append(victims, s.ID)
		}
	}
	return remove(store, victims, dryRun)
}

// PruneKeepRecent removes all completed sessions except the keep most
// recently updated ones. If dryRun is true, nothing is deleted. Returns the
// list of pruned session ids.
func PruneKeepRecent(store *session.Store, keep int, dryRun bool) ([]string, error) {
	if keep < 0 {
		return nil, fmt.Errorf("keep must be non-negative, got %d", keep)
	}
	sessions, err := completed(store)
	if err != nil {
		return nil, err
	}
	if len(sessions) <= keep {
		return nil, nil
	}

	var victims []string
	for _, s := range sessions[keep:] {
		victims = append(victims, s.ID)
	}
	return remove(store, victims, dryRun)
}

func remove(store *session.Store, ids []string, dryRun bool) ([]string, error) {
	if dryRun || len(ids) == 0 {
		return ids, nil
	}

	var pruned []string
	for _, id := range ids {
		if _, err := store.Delete(id); err != nil {
			return pruned, fmt.Errorf("removing %s: %w", id, err)
		}
		pruned = append(pruned, id)
	}
	store.Record(log.LogEvent{Event: log.EventSessionsPruned, Total: len(pruned)})
	return pruned, nil
}
