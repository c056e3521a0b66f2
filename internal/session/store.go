package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	charmlog "github.com/charmbracelet/log"

	"github.com/memoria-dev/memoria/internal/config"
	"github.com/memoria-dev/memoria/internal/fsutil"
	"github.com/memoria-dev/memoria/internal/log"
)

// Store provides file-backed persistence for sessions under <root>/.memoria.
// Each session lives in sessions/<id>.json; index.json is a derived cache.
//
// Store performs no locking: concurrent writers race last-write-wins.
type Store struct {
	root    string
	logger  *charmlog.Logger
	journal *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the diagnostic sink for skipped files and index rebuilds.
func WithLogger(l *charmlog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithJournal records successful mutations to the event journal.
func WithJournal(j *log.Logger) Option {
	return func(s *Store) {
		s.journal = j
	}
}

// NewStore returns a Store rooted at the project directory root.
// It does not touch the filesystem.
func NewStore(root string, opts ...Option) *Store {
	s := &Store{
		root:   root,
		logger: charmlog.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the project root the store operates on.
func (s *Store) Root() string {
	return s.root
}

// Dir returns <root>/.memoria.
func (s *Store) Dir() string {
	return config.StoreDir(s.root)
}

// IsInitialized reports whether the .memoria directory exists.
func (s *Store) IsInitialized() bool {
	return config.IsInitialized(s.root)
}

// Config loads the project config. See config.Load for the absent contract.
func (s *Store) Config() (*config.Config, error) {
	cfg, err := config.Load(s.root)
	if err == nil && cfg == nil && s.IsInitialized() {
		s.logger.Warn("config missing or unreadable", "path", config.ConfigPath(s.root))
	}
	return cfg, err
}

func (s *Store) pathForID(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	dir, err := filepath.Abs(config.SessionsPath(s.root))
	if err != nil {
		return "", fmt.Errorf("resolving sessions dir: %w", err)
	}
	resolved := filepath.Join(dir, id+".json")
	if !strings.HasPrefix(resolved, dir+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return resolved, nil
}

// Save writes the full record for sess, then refreshes its index entry.
// A crash between the two steps leaves the record durable but unindexed
// until the next Reindex.
func (s *Store) Save(sess *Session) error {
	path, err := s.pathForID(sess.ID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating sessions dir: %w", err)
	}
	if err := fsutil.WriteJSON(path, sess); err != nil {
		return fmt.Errorf("writing session %s: %w", sess.ID, err)
	}
	return s.upsertIndex(sess.Entry())
}

// Load reads a session by id.
// Returns nil, nil when the file is missing or fails to parse; parse
// failures are reported to the diagnostic logger only.
func (s *Store) Load(id string) (*Session, error) {
	path, err := s.pathForID(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session %s: %w", id, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		s.logger.Debug("treating corrupt session file as absent", "path", path, "err", err)
		return nil, nil
	}
	return &sess, nil
}

// LoadAll scans every session file and returns the ones that parse, sorted
// by UpdatedAt descending. Corrupt or unreadable files are skipped.
// Ties keep directory order.
func (s *Store) LoadAll() ([]*Session, error) {
	dir := config.SessionsPath(s.root)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return []*Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	sessions := make([]*Session, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Debug("skipping unreadable session file", "path", path, "err", err)
			continue
		}
		var sess Session
		if err := json.Unmarshal(data, &sess); err != nil {
			s.logger.Debug("skipping corrupt session file", "path", path, "err", err)
			continue
		}
		sessions = append(sessions, &sess)
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

// LoadInProgress returns LoadAll filtered to in-progress sessions.
func (s *Store) LoadInProgress() ([]*Session, error) {
	all, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	var out []*Session
	for _, sess := range all {
		if sess.Status == StatusInProgress {
			out = append(out, sess)
		}
	}
	return out, nil
}

// Delete removes the session file and its index entry.
// Reports whether a file existed.
func (s *Store) Delete(id string) (bool, error) {
	path, err := s.pathForID(id)
	if err != nil {
		return false, err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("deleting session %s: %w", id, err)
	}
	if err := s.removeFromIndex(id); err != nil {
		return true, err
	}
	s.record(log.LogEvent{Event: log.EventSessionDeleted, SessionID: id})
	return true, nil
}

// record appends event to the journal, if any. Journal failures are
// diagnostics only and never fail the operation that triggered them.
func (s *Store) record(event log.LogEvent) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Append(event); err != nil {
		s.logger.Warn("journal append failed", "event", event.Event, "err", err)
	}
}

// Record appends an event on behalf of callers outside the package,
// such as pruning.
func (s *Store) Record(event log.LogEvent) {
	s.record(event)
}
