package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memoria-dev/memoria/internal/testutil"
)

func TestInitialize_CreatesLayout(t *testing.T) {
	dir := testutil.TempProject(t, testutil.NodeProject("web-app"))

	cfg, err := Initialize(dir, "", testutil.Epoch)
	require.NoError(t, err)

	assert.Equal(t, Version, cfg.Version)
	assert.Equal(t, "web-app", cfg.Project)
	assert.True(t, cfg.CreatedAt.Equal(testutil.Epoch))
	assert.True(t, IsInitialized(dir))
	assert.DirExists(t, SessionsPath(dir))

	index, err := os.ReadFile(IndexPath(dir))
	require.NoError(t, err)
	assert.JSONEq(t, `{"sessions": []}`, string(index))

	gitignore, err := os.ReadFile(filepath.Join(StoreDir(dir), GitignoreFile))
	require.NoError(t, err)
	assert.Contains(t, string(gitignore), "sessions/")
	assert.Contains(t, string(gitignore), "index.json")
}

func TestInitialize_NameOverride(t *testing.T) {
	dir := testutil.TempProject(t, testutil.NodeProject("web-app"))

	cfg, err := Initialize(dir, "my-project", testutil.Epoch)
	require.NoError(t, err)
	assert.Equal(t, "my-project", cfg.Project)
}

func TestConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	_, err := Initialize(dir, "proj", testutil.Epoch)
	require.NoError(t, err)

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.False(t, cfg.HasLicense())

	cfg.LicenseKey = "lic_123"
	require.NoError(t, Save(dir, cfg))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
	assert.True(t, loaded.HasLicense())
}

func TestLoad_MissingIsAbsent(t *testing.T) {
	cfg, err := Load(t.TempDir())
	assert.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_CorruptIsAbsent(t *testing.T) {
	dir := testutil.TempProject(t, map[string]string{
		".memoria/config.json": "{invalid json",
	})

	cfg, err := Load(dir)
	assert.NoError(t, err)
	assert.Nil(t, cfg)
	assert.True(t, IsInitialized(dir), "corrupt config still counts as initialized")
}

func TestFindRoot(t *testing.T) {
	root := testutil.TempProject(t, map[string]string{
		".memoria/config.json": "{}",
		"src/pkg/deep/file.go": "package deep\n",
	})

	assert.Equal(t, root, FindRoot(filepath.Join(root, "src", "pkg", "deep")))
	assert.Equal(t, root, FindRoot(root))
}

func TestFindRoot_UninitializedReturnsStart(t *testing.T) {
	dir := testutil.TempProject(t, map[string]string{"a/b/c.txt": "x"})
	start := filepath.Join(dir, "a", "b")

	assert.Equal(t, start, FindRoot(start))
}

func TestFindRootFromCwd(t *testing.T) {
	root := testutil.TempProject(t, map[string]string{
		".memoria/config.json": "{}",
		"nested/x.txt":         "x",
	})
	t.Chdir(filepath.Join(root, "nested"))

	got, err := FindRootFromCwd()
	require.NoError(t, err)

	// Compare resolved paths; TempDir may sit behind a symlink.
	want, _ := filepath.EvalSymlinks(root)
	gotResolved, _ := filepath.EvalSymlinks(got)
	assert.Equal(t, want, gotResolved)
}

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		version string
		wantErr bool
	}{
		{"1.0.0", false},
		{"1.4.2", false},
		{"0.9.0", false},
		{"2.0.0", true},
		{"not-a-version", true},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			err := CheckVersion(&Config{Version: tt.version})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
