// Package detect discovers a project's declared name from its manifest files.
package detect

import (
	"os"
	"path/filepath"
	"strings"
)

// nameRuleFunc examines dir and returns the project name declared by one
// manifest format, or false if the manifest is absent or has no name.
type nameRuleFunc func(dir string) (string, bool)

// nameRules is evaluated in order; first match wins.
var nameRules = []nameRuleFunc{
	nameFromPackageJSON,
	nameFromGoMod,
	nameFromCargoToml,
	nameFromPyproject,
	nameFromPubspec,
}

// ProjectName derives a project name for dir: override if non-empty, else
// the first name declared by a recognized manifest, else the base name of dir.
func ProjectName(dir, override string) string {
	if name := strings.TrimSpace(override); name != "" {
		return name
	}
	for _, rule := range nameRules {
		if name, ok := rule(dir); ok {
			return name
		}
	}
	return filepath.Base(dir)
}

// Manifest returns the file name of the first recognized manifest in dir,
// or "" if none is present.
func Manifest(dir string) string {
	for _, name := range manifestFiles {
		if fileExists(filepath.Join(dir, name)) {
			return name
		}
	}
	return ""
}

var manifestFiles = []string{
	"package.json",
	"go.mod",
	"Cargo.toml",
	"pyproject.toml",
	"pubspec.yaml",
}

// fileExists returns true if path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// readFile reads the file at path and returns its contents.
// Returns an empty string if the file cannot be read.
func readFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}
