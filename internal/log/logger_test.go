package log

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndReadAll(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger(dir)

	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, l.Append(LogEvent{Time: at, Event: EventSessionCreated, SessionID: "sess_a", Title: "First"}))
	require.NoError(t, l.Append(LogEvent{Event: EventCheckpointSaved, SessionID: "sess_a", Checkpoint: 2}))

	events, err := l.ReadAll()
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, EventSessionCreated, events[0].Event)
	assert.True(t, events[0].Time.Equal(at))
	assert.Equal(t, "First", events[0].Title)
	assert.Equal(t, 2, events[1].Checkpoint)
	assert.False(t, events[1].Time.IsZero(), "zero time is filled in")

	for _, e := range events {
		assert.Equal(t, l.RunID(), e.RunID)
	}
}

func TestRunID_DiffersPerLogger(t *testing.T) {
	dir := t.TempDir()
	assert.NotEqual(t, NewLogger(dir).RunID(), NewLogger(dir).RunID())
}

func TestReadAll_MissingFile(t *testing.T) {
	events, err := NewLogger(t.TempDir()).ReadAll()
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestReadAll_CorruptLine(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "log.jsonl"), []byte("{\"event\":\"x\"}\nnot json\n"), 0644))

	_, err := NewLogger(dir).ReadAll()
	assert.ErrorContains(t, err, "line 2")
}

func TestAppend_DoesNotCreateStoreDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".memoria")
	err := NewLogger(dir).Append(LogEvent{Event: EventSessionDeleted})
	assert.Error(t, err)
	assert.NoDirExists(t, dir)
}
