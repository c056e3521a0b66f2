package cleanup

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memoria-dev/memoria/internal/config"
	"github.com/memoria-dev/memoria/internal/log"
	"github.com/memoria-dev/memoria/internal/session"
	"github.com/memoria-dev/memoria/internal/testutil"
)

var now = testutil.Epoch

func newStore(t *testing.T, opts ...session.Option) *session.Store {
	t.Helper()
	root := t.TempDir()
	_, err := config.Initialize(root, "proj", now)
	require.NoError(t, err)
	return session.NewStore(root, opts...)
}

// createMockSession saves a session last updated daysAgo days before now.
func createMockSession(t *testing.T, store *session.Store, id string, status session.Status, daysAgo int) {
	t.Helper()
	updated := now.AddDate(0, 0, -daysAgo)
	sess := &session.Session{
		ID:        id,
		Title:     id,
		Project:   "proj",
		Status:    status,
		CreatedAt: updated,
		UpdatedAt: updated,
	}
	if status == session.StatusCompleted {
		sess.CompletedAt = &updated
	}
	require.NoError(t, store.Save(sess))
}

func ids(t *testing.T, store *session.Store) []string {
	t.Helper()
	all, err := store.LoadAll()
	require.NoError(t, err)
	var out []string
	for _, s := range all {
		out = append(out, s.ID)
	}
	return out
}

func TestPruneByAge_RemovesOldCompleted(t *testing.T) {
	store := newStore(t)
	createMockSession(t, store, "sess_old", session.StatusCompleted, 60)
	createMockSession(t, store, "sess_recent", session.StatusCompleted, 5)

	pruned, err := PruneByAge(store, 30, now, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"sess_old"}, pruned)
	assert.Equal(t, []string{"sess_recent"}, ids(t, store))

	entries, err := store.Index()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "sess_recent", entries[0].ID)
}

func TestPruneByAge_KeepsInProgress(t *testing.T) {
	store := newStore(t)
	createMockSession(t, store, "sess_stale", session.StatusInProgress, 400)

	pruned, err := PruneByAge(store, 30, now, false)
	require.NoError(t, err)
	assert.Empty(t, pruned)
	assert.Equal(t, []string{"sess_stale"}, ids(t, store))
}

func TestPruneByAge_DryRun(t *testing.T) {
	store := newStore(t)
	createMockSession(t, store, "sess_old", session.StatusCompleted, 60)
	before := testutil.ReadTree(t, store.Dir())

	pruned, err := PruneByAge(store, 30, now, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"sess_old"}, pruned)
	assert.Equal(t, before, testutil.ReadTree(t, store.Dir()))
}

func TestPruneKeepRecent(t *testing.T) {
	store := newStore(t)
	for i, id := range []string{"sess_a", "sess_b", "sess_c", "sess_d"} {
		createMockSession(t, store, id, session.StatusCompleted, 10-i)
	}
	createMockSession(t, store, "sess_open", session.StatusInProgress, 50)

	pruned, err := PruneKeepRecent(store, 2, false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"sess_a", "sess_b"}, pruned)
	assert.Equal(t, []string{"sess_d", "sess_c", "sess_open"}, ids(t, store))
}

func TestPruneKeepRecent_NothingToDo(t *testing.T) {
	store := newStore(t)
	createMockSession(t, store, "sess_a", session.StatusCompleted, 1)

	pruned, err := PruneKeepRecent(store, 5, false)
	require.NoError(t, err)
	assert.Nil(t, pruned)
}

func TestPruneKeepRecent_Negative(t *testing.T) {
	store := newStore(t)
	_, err := PruneKeepRecent(store, -1, false)
	assert.Error(t, err)
}

func TestPrune_JournalsSummary(t *testing.T) {
	dir := t.TempDir()
	journal := log.NewLogger(dir)
	store := newStore(t, session.WithJournal(journal))
	createMockSession(t, store, "sess_old", session.StatusCompleted, 90)
	createMockSession(t, store, "sess_older", session.StatusCompleted, 120)

	pruned, err := PruneByAge(store, 30, now, false)
	require.NoError(t, err)
	require.Len(t, pruned, 2)

	events, err := journal.ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, log.EventSessionsPruned, last.Event)
	assert.Equal(t, 2, last.Total)
	assert.FileExists(t, filepath.Join(dir, "log.jsonl"))
}

func TestPrune_UninitializedStore(t *testing.T) {
	store := session.NewStore(t.TempDir())
	pruned, err := PruneByAge(store, 1, now.Add(time.Hour), false)
	require.NoError(t, err)
	assert.Empty(t, pruned)
}
