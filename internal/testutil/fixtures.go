// Package testutil provides test helper utilities for memoria tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// TempProject creates a temporary directory with the given files and returns its path.
// Files is a map of relative path -> content. Directories are created as needed.
// The directory is automatically cleaned up when the test finishes.
func TempProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	for relPath, content := range files {
		absPath := filepath.Join(dir, relPath)
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			t.Fatalf("creating directory for %s: %v", relPath, err)
		}
		if err := os.WriteFile(absPath, []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", relPath, err)
		}
	}

	return dir
}

// NodeProject returns file contents for a minimal Node project named name.
func NodeProject(name string) map[string]string {
	pkg := map[string]interface{}{
		"name":    name,
		"version": "1.0.0",
		"scripts": map[string]string{
			"test": "jest",
		},
	}
	pkgJSON, _ := json.MarshalIndent(pkg, "", "  ")

	return map[string]string{
		"package.json": string(pkgJSON),
		"src/index.ts": `export const main = () => console.log("hello");`,
	}
}

// GoProject returns file contents for a minimal Go project.
func GoProject() map[string]string {
	return map[string]string{
		"go.mod":  "module example.com/test\n\ngo 1.23\n",
		"main.go": "package main\n\nfunc main() {}\n",
	}
}

// EmptyProject returns no files: a directory with no manifest.
func EmptyProject() map[string]string {
	return map[string]string{}
}

// ReadTree returns every regular file under dir keyed by relative path.
// Used to assert that an operation left the store byte-for-byte unchanged.
func ReadTree(t *testing.T, dir string) map[string]string {
	t.Helper()
	tree := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(dir, path)
		tree[rel] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("walking %s: %v", dir, err)
	}
	return tree
}

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a Clock starting at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start.UTC()}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Tick advances the clock by one second and returns the new time.
// Useful as a Clock func when every call should see a distinct instant.
func (c *Clock) Tick() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// Epoch is a fixed reference instant for tests.
var Epoch = time.Date(2025, time.March, 1, 9, 30, 0, 0, time.UTC)
