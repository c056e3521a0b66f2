// manifests.go contains the per-format name extraction rules.
package detect

import (
	"encoding/json"
	"path"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// packageJSON is the minimal structure we parse from package.json.
type packageJSON struct {
	Name string `json:"name"`
}

func nameFromPackageJSON(dir string) (string, bool) {
	data := readFile(filepath.Join(dir, "package.json"))
	if data == "" {
		return "", false
	}
	var pkg packageJSON
	if err := json.Unmarshal([]byte(data), &pkg); err != nil {
		return "", false
	}
	return pkg.Name, pkg.Name != ""
}

func nameFromGoMod(dir string) (string, bool) {
	data := readFile(filepath.Join(dir, "go.mod"))
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if mod, ok := strings.CutPrefix(line, "module "); ok {
			mod = strings.Trim(strings.TrimSpace(mod), `"`)
			if mod == "" {
				return "", false
			}
			return path.Base(mod), true
		}
	}
	return "", false
}

// tomlManifest covers the name tables of Cargo.toml and pyproject.toml.
type tomlManifest struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Project struct {
		Name string `toml:"name"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Name string `toml:"name"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

func readTOML(path string) (tomlManifest, bool) {
	var m tomlManifest
	data := readFile(path)
	if data == "" {
		return m, false
	}
	if err := toml.Unmarshal([]byte(data), &m); err != nil {
		return m, false
	}
	return m, true
}

func nameFromCargoToml(dir string) (string, bool) {
	m, ok := readTOML(filepath.Join(dir, "Cargo.toml"))
	if !ok {
		return "", false
	}
	name := strings.TrimSpace(m.Package.Name)
	return name, name != ""
}

func nameFromPyproject(dir string) (string, bool) {
	m, ok := readTOML(filepath.Join(dir, "pyproject.toml"))
	if !ok {
		return "", false
	}
	for _, name := range []string{m.Project.Name, m.Tool.Poetry.Name} {
		if name = strings.TrimSpace(name); name != "" {
			return name, true
		}
	}
	return "", false
}

// pubspec is the minimal structure we parse from a Dart pubspec.yaml.
type pubspec struct {
	Name string `yaml:"name"`
}

func nameFromPubspec(dir string) (string, bool) {
	data := readFile(filepath.Join(dir, "pubspec.yaml"))
	if data == "" {
		return "", false
	}
	var spec pubspec
	if err := yaml.Unmarshal([]byte(data), &spec); err != nil {
		return "", false
	}
	return spec.Name, spec.Name != ""
}
