package detect

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/memoria-dev/memoria/internal/testutil"
)

func TestProjectName(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		override string
		want     string
	}{
		{
			name:     "override wins",
			files:    testutil.NodeProject("from-package"),
			override: "explicit",
			want:     "explicit",
		},
		{
			name:  "package.json",
			files: testutil.NodeProject("web-app"),
			want:  "web-app",
		},
		{
			name:  "go.mod module base",
			files: testutil.GoProject(),
			want:  "test",
		},
		{
			name: "Cargo.toml package section",
			files: map[string]string{
				"Cargo.toml": "[workspace]\nname = \"ignored\"\n\n[package]\nname = \"crab\"\nversion = \"0.1.0\"\n",
			},
			want: "crab",
		},
		{
			name: "pyproject project table",
			files: map[string]string{
				"pyproject.toml": "[build-system]\nrequires = []\n\n[project]\nname = 'snake'\n",
			},
			want: "snake",
		},
		{
			name: "pyproject poetry table",
			files: map[string]string{
				"pyproject.toml": "[tool.poetry]\nname = \"poet\"\n",
			},
			want: "poet",
		},
		{
			name: "Cargo.toml inline comment",
			files: map[string]string{
				"Cargo.toml": "[package]\nname = \"mycrate\" # the crate\n",
			},
			want: "mycrate",
		},
		{
			name: "pyproject header followed by comment",
			files: map[string]string{
				"pyproject.toml": "[project] # metadata\nname = \"pyapp\"\n",
			},
			want: "pyapp",
		},
		{
			name: "invalid TOML falls through",
			files: map[string]string{
				"Cargo.toml": "[package\nname = \"broken\"\n",
			},
		},
		{
			name: "pubspec.yaml",
			files: map[string]string{
				"pubspec.yaml": "name: flutter_app\nversion: 1.0.0\n",
			},
			want: "flutter_app",
		},
		{
			name: "package.json without name falls through",
			files: map[string]string{
				"package.json": `{"version": "1.0.0"}`,
				"go.mod":       "module example.com/fallback\n",
			},
			want: "fallback",
		},
		{
			name: "corrupt package.json falls through",
			files: map[string]string{
				"package.json": `{not json`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := testutil.TempProject(t, tt.files)
			want := tt.want
			if want == "" {
				want = filepath.Base(dir)
			}
			assert.Equal(t, want, ProjectName(dir, tt.override))
		})
	}
}

func TestProjectName_EmptyDirUsesBaseName(t *testing.T) {
	dir := testutil.TempProject(t, testutil.EmptyProject())
	assert.Equal(t, filepath.Base(dir), ProjectName(dir, "  "))
}

func TestManifest(t *testing.T) {
	dir := testutil.TempProject(t, testutil.GoProject())
	assert.Equal(t, "go.mod", Manifest(dir))

	empty := testutil.TempProject(t, testutil.EmptyProject())
	assert.Equal(t, "", Manifest(empty))
}
