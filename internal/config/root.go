// Package config handles the .memoria/ store layout and .memoria/config.json.
package config

import (
	"os"
	"path/filepath"
)

// Store layout, relative to the project root.
const (
	DirName       = ".memoria"
	SessionsDir   = "sessions"
	ConfigFile    = "config.json"
	IndexFile     = "index.json"
	JournalFile   = "log.jsonl"
	GitignoreFile = ".gitignore"
)

// FindRoot walks up from start (inclusive) looking for a directory that
// contains .memoria/. Returns the first match, or start unchanged when no
// ancestor has one, so an uninitialized project resolves to "here".
func FindRoot(start string) string {
	dir := filepath.Clean(start)
	for {
		if isDir(filepath.Join(dir, DirName)) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

// FindRootFromCwd resolves the project root from the current working directory.
func FindRootFromCwd() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindRoot(cwd), nil
}

// StoreDir returns <root>/.memoria.
func StoreDir(root string) string {
	return filepath.Join(root, DirName)
}

// SessionsPath returns <root>/.memoria/sessions.
func SessionsPath(root string) string {
	return filepath.Join(root, DirName, SessionsDir)
}

// IndexPath returns <root>/.memoria/index.json.
func IndexPath(root string) string {
	return filepath.Join(root, DirName, IndexFile)
}

// ConfigPath returns <root>/.memoria/config.json.
func ConfigPath(root string) string {
	return filepath.Join(root, DirName, ConfigFile)
}

// IsInitialized reports whether <root>/.memoria exists. It does not
// validate the contents.
func IsInitialized(root string) bool {
	return isDir(StoreDir(root))
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
