package export

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/memoria-dev/memoria/internal/session"
)

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		project TEXT NOT NULL,
		title TEXT NOT NULL,
		status TEXT NOT NULL,
		summary TEXT NOT NULL,
		duration TEXT,
		git_branch TEXT,
		git_commit TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		completed_at DATETIME,
		document TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS checkpoints (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		number INTEGER NOT NULL,
		summary TEXT NOT NULL,
		incremental_note TEXT,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	CREATE TABLE IF NOT EXISTS files (
		session_id TEXT NOT NULL,
		path TEXT NOT NULL,
		kind TEXT NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	CREATE TABLE IF NOT EXISTS decisions (
		session_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		decision TEXT NOT NULL,
		rationale TEXT,
		category TEXT,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	CREATE INDEX IF NOT EXISTS idx_files_path ON files(path);
	`
	_, err := db.Exec(schema)
	return err
}

// WriteSQLite exports sessions into the SQLite database at path, creating
// it if needed. Re-exporting a session replaces its earlier rows, so the
// same database can be refreshed in place.
func WriteSQLite(path string, sessions []*session.Session) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := createTables(db); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin export: %w", err)
	}
	for _, s := range sessions {
		if err := insertSession(tx, s); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("export session %s: %w", s.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit export: %w", err)
	}
	return nil
}

func insertSession(tx *sql.Tx, s *session.Session) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	for _, table := range []string{"checkpoints", "files", "decisions"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE session_id = ?`, s.ID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	var completedAt any
	if s.CompletedAt != nil {
		completedAt = s.CompletedAt.UTC()
	}
	_, err = tx.Exec(
		`INSERT OR REPLACE INTO sessions
		 (id, project, title, status, summary, duration, git_branch, git_commit,
		  created_at, updated_at, completed_at, document)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Project, s.Title, string(s.Status), s.Summary, s.Duration, s.GitBranch, s.GitCommit,
		s.CreatedAt.UTC(), s.UpdatedAt.UTC(), completedAt, string(doc),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	for _, cp := range s.Checkpoints {
		_, err := tx.Exec(
			`INSERT OR REPLACE INTO checkpoints (id, session_id, number, summary, incremental_note, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			cp.ID, s.ID, cp.Number, cp.Summary, cp.IncrementalNote, cp.CreatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("insert checkpoint %d: %w", cp.Number, err)
		}
	}

	if err := insertFiles(tx, s.ID, "modified", s.FilesModified); err != nil {
		return err
	}
	if err := insertFiles(tx, s.ID, "read", s.FilesRead); err != nil {
		return err
	}

	for i, d := range s.Decisions {
		_, err := tx.Exec(
			`INSERT INTO decisions (session_id, position, decision, rationale, category)
			 VALUES (?, ?, ?, ?, ?)`,
			s.ID, i, d.Decision, d.Rationale, d.Category,
		)
		if err != nil {
			return fmt.Errorf("insert decision: %w", err)
		}
	}
	return nil
}

func insertFiles(tx *sql.Tx, sessionID, kind string, paths []string) error {
	for _, p := range paths {
		if _, err := tx.Exec(
			`INSERT INTO files (session_id, path, kind) VALUES (?, ?, ?)`,
			sessionID, p, kind,
		); err != nil {
			return fmt.Errorf("insert file %s: %w", p, err)
		}
	}
	return nil
}

// SessionRow is the scalar projection stored in the sessions table.
type SessionRow struct {
	ID        string
	Title     string
	Status    string
	UpdatedAt time.Time
}

// ReadSessions lists the sessions in an exported database, newest first.
func ReadSessions(path string) ([]SessionRow, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(
		`SELECT id, title, status, updated_at FROM sessions ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var r SessionRow
		if err := rows.Scan(&r.ID, &r.Title, &r.Status, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
