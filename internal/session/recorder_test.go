package session

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memoria-dev/memoria/internal/config"
	"github.com/memoria-dev/memoria/internal/log"
	"github.com/memoria-dev/memoria/internal/testutil"
)

func TestSaveCheckpoint_NewCreatesSession(t *testing.T) {
	rec, _ := newTestRecorder(t)

	sess, cp, err := rec.SaveCheckpoint(CheckpointInput{
		Summary:         "# Fix\nFix bug in parser",
		IncrementalNote: "first pass",
		Fields:          Fields{FilesModified: []string{"parser.go"}},
	})
	require.NoError(t, err)

	assert.Regexp(t, sessionIDPattern, sess.ID)
	assert.Regexp(t, checkpointIDPattern, cp.ID)
	assert.Equal(t, 1, cp.Number)
	assert.Equal(t, "first pass", cp.IncrementalNote)
	assert.Equal(t, "Fix bug in parser", sess.Title)
	assert.Equal(t, "proj", sess.Project)
	assert.Equal(t, StatusInProgress, sess.Status)
	assert.Equal(t, []string{"parser.go"}, sess.FilesModified)
	assert.Equal(t, []string{}, sess.FilesRead)
	assert.Equal(t, []Decision{}, sess.Decisions)
	assert.Nil(t, sess.CompletedAt)
	assert.Equal(t, sess.CreatedAt, sess.UpdatedAt)

	stored, err := rec.Store().Load(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess, stored)
}

func TestSaveCheckpoint_Numbering(t *testing.T) {
	rec, _ := newTestRecorder(t)

	sess, _, err := rec.SaveCheckpoint(CheckpointInput{Summary: "step 1"})
	require.NoError(t, err)
	for i := 2; i <= 6; i++ {
		_, cp, err := rec.SaveCheckpoint(CheckpointInput{SessionID: sess.ID, Summary: "step"})
		require.NoError(t, err)
		assert.Equal(t, i, cp.Number)
	}

	stored, err := rec.Store().Load(sess.ID)
	require.NoError(t, err)
	require.Len(t, stored.Checkpoints, 6)
	seen := make(map[string]bool)
	for i, cp := range stored.Checkpoints {
		assert.Equal(t, i+1, cp.Number)
		assert.False(t, seen[cp.ID], "checkpoint ids are unique")
		seen[cp.ID] = true
		if i > 0 {
			assert.True(t, cp.CreatedAt.After(stored.Checkpoints[i-1].CreatedAt))
		}
	}
}

func TestSaveCheckpoint_MergeKeepsAbsentFields(t *testing.T) {
	rec, _ := newTestRecorder(t)
	text := "transcript"

	sess, _, err := rec.SaveCheckpoint(CheckpointInput{
		Summary: "Initial work",
		Fields: Fields{
			FilesModified:    []string{"a.go", "b.go"},
			Decisions:        []Decision{PlainDecision("keep it simple")},
			ContextState:     &ContextState{WorkPhase: PhaseImplementation},
			ConversationText: &text,
		},
	})
	require.NoError(t, err)

	updated, _, err := rec.SaveCheckpoint(CheckpointInput{
		SessionID: sess.ID,
		Summary:   "# Update\nSecond pass",
		Fields:    Fields{FilesRead: []string{"c.go"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.go", "b.go"}, updated.FilesModified, "absent field keeps old value")
	assert.Equal(t, []string{"c.go"}, updated.FilesRead)
	assert.Equal(t, []Decision{PlainDecision("keep it simple")}, updated.Decisions)
	assert.Equal(t, PhaseImplementation, updated.ContextState.WorkPhase)
	assert.Equal(t, "transcript", updated.ConversationText)
	assert.Equal(t, "# Update\nSecond pass", updated.Summary, "summary always replaced")
	assert.Equal(t, "Initial work", updated.Title, "title untouched by checkpoints")
	assert.True(t, updated.UpdatedAt.After(sess.UpdatedAt))
	assert.Equal(t, sess.CreatedAt, updated.CreatedAt)
}

func TestSaveCheckpoint_MergeReplacesSuppliedFields(t *testing.T) {
	rec, _ := newTestRecorder(t)

	sess, _, err := rec.SaveCheckpoint(CheckpointInput{
		Summary: "start",
		Fields:  Fields{FilesModified: []string{"a.go", "b.go"}, CompletedTasks: []string{"x"}},
	})
	require.NoError(t, err)

	updated, _, err := rec.SaveCheckpoint(CheckpointInput{
		SessionID: sess.ID,
		Summary:   "next",
		Fields:    Fields{FilesModified: []string{"z.go"}, CompletedTasks: []string{}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"z.go"}, updated.FilesModified, "supplied list replaces wholesale")
	assert.Equal(t, []string{}, updated.CompletedTasks, "supplied empty list replaces too")
}

func TestSaveCheckpoint_UnknownSessionLeavesStoreUnchanged(t *testing.T) {
	rec, _ := newTestRecorder(t)
	_, _, err := rec.SaveCheckpoint(CheckpointInput{Summary: "existing"})
	require.NoError(t, err)

	before := testutil.ReadTree(t, rec.Store().Root())
	_, _, err = rec.SaveCheckpoint(CheckpointInput{SessionID: "sess_missing", Summary: "x"})

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "sess_missing", nf.ID)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, before, testutil.ReadTree(t, rec.Store().Root()))
}

func TestRecorder_RequiresInitializedStore(t *testing.T) {
	rec := NewRecorder(NewStore(t.TempDir()), nil, nil)

	_, _, err := rec.SaveCheckpoint(CheckpointInput{Summary: "x"})
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = rec.SaveSession(SessionInput{Summary: "x"})
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = rec.Complete(CompleteInput{SessionID: "sess_x"})
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestRecorder_ReportsCorruptConfig(t *testing.T) {
	root := testutil.TempProject(t, map[string]string{
		".memoria/config.json": "{broken",
	})
	rec := NewRecorder(NewStore(root), nil, nil)

	before := testutil.ReadTree(t, root)
	_, _, err := rec.SaveCheckpoint(CheckpointInput{Summary: "x"})
	assert.ErrorIs(t, err, ErrConfig)
	assert.Equal(t, before, testutil.ReadTree(t, root))
}

func TestSaveSession(t *testing.T) {
	rec, _ := newTestRecorder(t)

	sess, err := rec.SaveSession(SessionInput{
		Summary:  "Shipped the release",
		Duration: "2h",
		Fields:   Fields{Blockers: []Blocker{PlainBlocker("none")}},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, sess.Status)
	assert.Empty(t, sess.Checkpoints)
	assert.NotNil(t, sess.Checkpoints, "checkpoints serialize as []")
	require.NotNil(t, sess.CompletedAt)
	assert.Equal(t, sess.CreatedAt, *sess.CompletedAt)
	assert.Equal(t, sess.CreatedAt, sess.UpdatedAt)
	assert.Equal(t, "2h", sess.Duration)
	assert.Equal(t, "Shipped the release", sess.Title)
}

func TestRecorder_CompletionScenario(t *testing.T) {
	rec, _ := newTestRecorder(t)

	first, cp1, err := rec.SaveCheckpoint(CheckpointInput{Summary: "Fix bug"})
	require.NoError(t, err)
	assert.Equal(t, 1, cp1.Number)

	second, cp2, err := rec.SaveCheckpoint(CheckpointInput{SessionID: first.ID, Summary: "Fix bug, verified"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, cp2.Number)

	done, err := rec.Complete(CompleteInput{SessionID: first.ID})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, done.UpdatedAt, *done.CompletedAt)
	assert.Len(t, done.Checkpoints, 2)
	assert.Equal(t, "Fix bug, verified", done.Summary)
	assert.Equal(t, "Fix bug", done.Title)

	entries, err := rec.Store().Index()
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, StatusCompleted, entries[0].Status)
}

func TestComplete_WithFinalSummary(t *testing.T) {
	rec, _ := newTestRecorder(t)
	sess, _, err := rec.SaveCheckpoint(CheckpointInput{Summary: "Draft"})
	require.NoError(t, err)

	done, err := rec.Complete(CompleteInput{
		SessionID:    sess.ID,
		FinalSummary: "## Result\nParser rewritten",
		Duration:     "45m",
	})
	require.NoError(t, err)
	assert.Equal(t, "## Result\nParser rewritten", done.Summary)
	assert.Equal(t, "Parser rewritten", done.Title)
	assert.Equal(t, "45m", done.Duration)
}

func TestComplete_UnknownSessionLeavesStoreUnchanged(t *testing.T) {
	rec, _ := newTestRecorder(t)
	before := testutil.ReadTree(t, rec.Store().Root())

	_, err := rec.Complete(CompleteInput{SessionID: "nonexistent-id"})
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, before, testutil.ReadTree(t, rec.Store().Root()))
}

func TestComplete_WithoutIDSavesSession(t *testing.T) {
	rec, _ := newTestRecorder(t)

	sess, err := rec.Complete(CompleteInput{FinalSummary: "Wrapped up"})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, sess.Status)
	assert.Equal(t, "Wrapped up", sess.Title)
	assert.Empty(t, sess.Checkpoints)
}

func TestSaveCheckpoint_CompletedSessionStaysCompleted(t *testing.T) {
	rec, _ := newTestRecorder(t)
	sess, _, err := rec.SaveCheckpoint(CheckpointInput{Summary: "x"})
	require.NoError(t, err)
	_, err = rec.Complete(CompleteInput{SessionID: sess.ID})
	require.NoError(t, err)

	after, _, err := rec.SaveCheckpoint(CheckpointInput{SessionID: sess.ID, Summary: "late note"})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, after.Status)
}

func TestRecorder_JournalsSuccessfulWrites(t *testing.T) {
	root := t.TempDir()
	_, err := config.Initialize(root, "proj", testutil.Epoch)
	require.NoError(t, err)
	journal := log.NewLogger(config.StoreDir(root))
	clock := testutil.NewClock(testutil.Epoch)
	rec := NewRecorder(NewStore(root, WithJournal(journal)), nil, clock.Tick)

	sess, _, err := rec.SaveCheckpoint(CheckpointInput{Summary: "a"})
	require.NoError(t, err)
	_, _, err = rec.SaveCheckpoint(CheckpointInput{SessionID: sess.ID, Summary: "b"})
	require.NoError(t, err)
	_, err = rec.Complete(CompleteInput{SessionID: "sess_missing"})
	require.Error(t, err)
	_, err = rec.Complete(CompleteInput{SessionID: sess.ID})
	require.NoError(t, err)

	events, err := journal.ReadAll()
	require.NoError(t, err)
	var names []string
	for _, e := range events {
		names = append(names, e.Event)
	}
	assert.Equal(t, []string{log.EventSessionCreated, log.EventCheckpointSaved, log.EventSessionCompleted}, names)
	assert.Equal(t, 2, events[1].Checkpoint)
	assert.True(t, events[0].Time.Equal(testutil.Epoch.Add(time.Second)))
}

func TestRecorder_JournalFailureDoesNotFailWrite(t *testing.T) {
	root := t.TempDir()
	_, err := config.Initialize(root, "proj", testutil.Epoch)
	require.NoError(t, err)
	// Point the journal at a directory that does not exist.
	journal := log.NewLogger(root + "/missing")
	rec := NewRecorder(NewStore(root, WithJournal(journal)), nil, nil)

	_, _, err = rec.SaveCheckpoint(CheckpointInput{Summary: "still saved"})
	require.NoError(t, err)
	_, statErr := os.Stat(root + "/missing")
	assert.True(t, os.IsNotExist(statErr))
}

func TestSetGitProbe_StampsNewSessionsOnly(t *testing.T) {
	rec, _ := newTestRecorder(t)
	calls := 0
	rec.SetGitProbe(func(root string) (string, string) {
		calls++
		assert.Equal(t, rec.Store().Root(), root)
		return "feature/x", "abc1234"
	})

	sess, _, err := rec.SaveCheckpoint(CheckpointInput{Summary: "start"})
	require.NoError(t, err)
	assert.Equal(t, "feature/x", sess.GitBranch)
	assert.Equal(t, "abc1234", sess.GitCommit)

	_, _, err = rec.SaveCheckpoint(CheckpointInput{SessionID: sess.ID, Summary: "more"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	loaded, err := rec.Store().Load(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "feature/x", loaded.GitBranch)
}
