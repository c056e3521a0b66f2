package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/memoria-dev/memoria/internal/config"
	"github.com/memoria-dev/memoria/internal/fsutil"
	"github.com/memoria-dev/memoria/internal/log"
)

// IndexCapacity bounds the number of entries kept in index.json.
const IndexCapacity = 1000

// indexFile is the on-disk shape of index.json.
type indexFile struct {
	Sessions []IndexEntry `json:"sessions"`
}

// readIndex returns the stored entries. ok is false when index.json is
// missing or does not parse, in which case the caller rebuilds it.
func (s *Store) readIndex() (entries []IndexEntry, ok bool, err error) {
	path := config.IndexPath(s.root)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading index: %w", err)
	}
	var idx indexFile
	if err := json.Unmarshal(data, &idx); err != nil {
		s.logger.Warn("index unreadable, rebuilding from session files", "path", path, "err", err)
		return nil, false, nil
	}
	if idx.Sessions == nil {
		idx.Sessions = []IndexEntry{}
	}
	return idx.Sessions, true, nil
}

func (s *Store) writeIndex(entries []IndexEntry) error {
	if entries == nil {
		entries = []IndexEntry{}
	}
	if err := fsutil.WriteJSON(config.IndexPath(s.root), indexFile{Sessions: entries}); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}
	return nil
}

// loadIndex reads the index, rebuilding it from session files when it is
// missing or corrupt.
func (s *Store) loadIndex() ([]IndexEntry, error) {
	entries, ok, err := s.readIndex()
	if err != nil {
		return nil, err
	}
	if ok {
		return entries, nil
	}
	return s.Reindex()
}

// Index returns the index entries, newest-updated first.
func (s *Store) Index() ([]IndexEntry, error) {
	return s.loadIndex()
}

// Entries is Index without side effects: a missing or corrupt index is
// derived from the session files in memory and nothing is written.
func (s *Store) Entries() ([]IndexEntry, error) {
	entries, ok, err := s.readIndex()
	if err != nil {
		return nil, err
	}
	if ok {
		return entries, nil
	}
	return s.scanEntries()
}

func (s *Store) scanEntries() ([]IndexEntry, error) {
	sessions, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	entries := make([]IndexEntry, 0, min(len(sessions), IndexCapacity))
	for _, sess := range sessions {
		if len(entries) == IndexCapacity {
			break
		}
		entries = append(entries, sess.Entry())
	}
	return entries, nil
}

// Reindex rebuilds index.json from a full scan of the session files.
func (s *Store) Reindex() ([]IndexEntry, error) {
	entries, err := s.scanEntries()
	if err != nil {
		return nil, err
	}
	if err := s.writeIndex(entries); err != nil {
		return nil, err
	}
	s.logger.Debug("index rebuilt", "entries", len(entries))
	s.record(log.LogEvent{Event: log.EventIndexRebuilt, Total: len(entries)})
	return entries, nil
}

// upsertIndex removes any entry for e.ID, puts e at the front and
// truncates to IndexCapacity.
func (s *Store) upsertIndex(e IndexEntry) error {
	entries, err := s.loadIndex()
	if err != nil {
		return err
	}
	next := make([]IndexEntry, 0, min(len(entries)+1, IndexCapacity))
	next = append(next, e)
	for _, existing := range entries {
		if len(next) == IndexCapacity {
			break
		}
		if existing.ID != e.ID {
			next = append(next, existing)
		}
	}
	return s.writeIndex(next)
}

func (s *Store) removeFromIndex(id string) error {
	entries, err := s.loadIndex()
	if err != nil {
		return err
	}
	next := make([]IndexEntry, 0, len(entries))
	for _, existing := range entries {
		if existing.ID != id {
			next = append(next, existing)
		}
	}
	return s.writeIndex(next)
}
