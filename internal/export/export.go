// Package export writes sessions out of the store as JSON, YAML or a
// SQLite database.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/memoria-dev/memoria/internal/fsutil"
	"github.com/memoria-dev/memoria/internal/session"
)

// Format selects the export encoding.
type Format string

const (
	JSON   Format = "json"
	YAML   Format = "yaml"
	SQLite Format = "sqlite"
)

// ErrUnknownFormat is returned by ParseFormat.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts json, yaml/yml and sqlite/db, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "sqlite", "sqlite3", "db":
		return SQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Document is the top-level shape of a JSON or YAML export.
type Document struct {
	Project    string             `json:"project"`
	ExportedAt time.Time          `json:"exportedAt"`
	Sessions   []*session.Session `json:"sessions"`
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding json export: %w", err)
	}
	return nil
}

// WriteYAML writes doc as block-style YAML with the same keys and key
// order as the JSON export.
func WriteYAML(w io.Writer, doc Document) error {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, doc); err != nil {
		return err
	}
	// JSON is YAML; parsing it into a node keeps field order.
	var node yaml.Node
	if err := yaml.Unmarshal(buf.Bytes(), &node); err != nil {
		return fmt.Errorf("converting export to yaml: %w", err)
	}
	blockStyle(&node)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return fmt.Errorf("encoding yaml export: %w", err)
	}
	return enc.Close()
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// Options controls Run.
type Options struct {
	Format Format
	// Out is the destination path. Empty writes JSON/YAML to Stdout;
	// SQLite always needs a path.
	Out    string
	Stdout io.Writer
	Now    time.Time
}

// Run exports every session in store and returns how many were written.
func Run(store *session.Store, opts Options) (int, error) {
	if !store.IsInitialized() {
		return 0, session.ErrNotInitialized
	}
	cfg, err := store.Config()
	if err != nil || cfg == nil {
		return 0, session.ErrConfig
	}
	sessions, err := store.LoadAll()
	if err != nil {
		return 0, err
	}

	if opts.Format == SQLite {
		if opts.Out == "" {
			return 0, errors.New("sqlite export needs an output path")
		}
		if err := WriteSQLite(opts.Out, sessions); err != nil {
			return 0, err
		}
		return len(sessions), nil
	}

	doc := Document{Project: cfg.Project, ExportedAt: opts.Now.UTC(), Sessions: sessions}
	write := WriteJSON
	if opts.Format == YAML {
		write = WriteYAML
	}

	if opts.Out == "" {
		return len(sessions), write(opts.Stdout, doc)
	}
	var buf bytes.Buffer
	if err := write(&buf, doc); err != nil {
		return 0, err
	}
	if err := fsutil.WriteFile(opts.Out, buf.Bytes()); err != nil {
		return 0, err
	}
	return len(sessions), nil
}
