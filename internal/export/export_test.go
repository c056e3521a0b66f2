package export

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/memoria-dev/memoria/internal/config"
	"github.com/memoria-dev/memoria/internal/session"
	"github.com/memoria-dev/memoria/internal/testutil"
)

func newStore(t *testing.T) *session.Store {
	t.Helper()
	root := t.TempDir()
	_, err := config.Initialize(root, "proj", testutil.Epoch)
	require.NoError(t, err)
	store := session.NewStore(root)

	done := testutil.Epoch.Add(2 * time.Hour)
	require.NoError(t, store.Save(&session.Session{
		ID: "sess_done", Title: "Ship exporter", Project: "proj",
		Status: session.StatusCompleted, Summary: "Ship exporter\n\nwith yaml: true",
		FilesModified: []string{"export.go"}, FilesRead: []string{"go.mod", "README.md"},
		Decisions: []session.Decision{
			session.PlainDecision("true"),
			{Form: session.Structured, Decision: "use sqlite", Rationale: "queryable"},
		},
		Checkpoints: []session.Checkpoint{
			{ID: "chk_1", Number: 1, Summary: "start", CreatedAt: testutil.Epoch},
			{ID: "chk_2", Number: 2, Summary: "finish", CreatedAt: done},
		},
		CreatedAt: testutil.Epoch, UpdatedAt: done, CompletedAt: &done,
	}))
	require.NoError(t, store.Save(&session.Session{
		ID: "sess_open", Title: "Open work", Project: "proj",
		Status:    session.StatusInProgress,
		CreatedAt: testutil.Epoch, UpdatedAt: testutil.Epoch.Add(time.Hour),
	}))
	return store
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"": JSON, "JSON": JSON, "yml": YAML, "yaml": YAML, "db": SQLite, "sqlite": SQLite,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("csv")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestRun_JSONToStdout(t *testing.T) {
	store := newStore(t)
	var out bytes.Buffer

	n, err := Run(store, Options{Format: JSON, Stdout: &out, Now: testutil.Epoch})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var doc Document
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, "proj", doc.Project)
	require.Len(t, doc.Sessions, 2)
	assert.Equal(t, "sess_done", doc.Sessions[0].ID)
	assert.Len(t, doc.Sessions[0].Checkpoints, 2)
}

func TestRun_YAMLKeepsJSONKeys(t *testing.T) {
	store := newStore(t)
	out := filepath.Join(t.TempDir(), "sessions.yaml")

	_, err := Run(store, Options{Format: YAML, Out: out, Now: testutil.Epoch})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "{")
	assert.Contains(t, string(data), "filesModified:")

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, "proj", doc["project"])
	sessions := doc["sessions"].([]any)
	first := sessions[0].(map[string]any)
	assert.Equal(t, "Ship exporter\n\nwith yaml: true", first["summary"])
	decisions := first["decisions"].([]any)
	assert.Equal(t, "true", decisions[0], "plain decisions stay strings")
	assert.Equal(t, "use sqlite", decisions[1].(map[string]any)["decision"])
}

func TestRun_SQLite(t *testing.T) {
	store := newStore(t)
	out := filepath.Join(t.TempDir(), "sessions.db")

	n, err := Run(store, Options{Format: SQLite, Out: out})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := ReadSessions(out)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "sess_done", rows[0].ID)
	assert.Equal(t, "completed", rows[0].Status)

	db, err := sql.Open("sqlite3", out)
	require.NoError(t, err)
	defer db.Close()
	var files, checkpoints, decisions int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM files WHERE session_id = 'sess_done'`).Scan(&files))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM checkpoints`).Scan(&checkpoints))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM decisions`).Scan(&decisions))
	assert.Equal(t, 3, files)
	assert.Equal(t, 2, checkpoints)
	assert.Equal(t, 2, decisions)
}

func TestWriteSQLite_ReexportReplacesRows(t *testing.T) {
	store := newStore(t)
	out := filepath.Join(t.TempDir(), "sessions.db")

	_, err := Run(store, Options{Format: SQLite, Out: out})
	require.NoError(t, err)
	_, err = Run(store, Options{Format: SQLite, Out: out})
	require.NoError(t, err)

	db, err := sql.Open("sqlite3", out)
	require.NoError(t, err)
	defer db.Close()
	var files int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM files`).Scan(&files))
	assert.Equal(t, 3, files)
}

func TestRun_SQLiteNeedsPath(t *testing.T) {
	_, err := Run(newStore(t), Options{Format: SQLite})
	assert.Error(t, err)
}

func TestRun_NotInitialized(t *testing.T) {
	_, err := Run(session.NewStore(t.TempDir()), Options{Format: JSON, Stdout: &bytes.Buffer{}})
	assert.ErrorIs(t, err, session.ErrNotInitialized)
}
