package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/memoria-dev/memoria/internal/detect"
	"github.com/memoria-dev/memoria/internal/fsutil"
)

// Version is the config format version written by Initialize.
const Version = "1.0.0"

// Config is the structure of .memoria/config.json.
type Config struct {
	Version    string    `json:"version"`
	Project    string    `json:"project"`
	LicenseKey string    `json:"licenseKey,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// HasLicense reports whether a license key has been activated.
func (c *Config) HasLicense() bool {
	return c != nil && c.LicenseKey != ""
}

// defaultGitignore recommends keeping session data out of version control
// while leaving config.json tracked.
const defaultGitignore = `# Ignore session data (optional - remove if you want to version control sessions)
sessions/
index.json
log.jsonl
`

// Initialize creates the .memoria/ structure inside dir and writes a fresh
// config, an empty index and the default .gitignore.
// It does not guard against double initialization; callers check
// IsInitialized first.
func Initialize(dir, projectName string, now time.Time) (*Config, error) {
	if err := os.MkdirAll(SessionsPath(dir), 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", DirName, err)
	}

	cfg := &Config{
		Version:   Version,
		Project:   detect.ProjectName(dir, projectName),
		CreatedAt: now.UTC(),
	}
	if err := Save(dir, cfg); err != nil {
		return nil, err
	}

	emptyIndex := map[string][]any{"sessions": {}}
	if err := fsutil.WriteJSON(IndexPath(dir), emptyIndex); err != nil {
		return nil, fmt.Errorf("writing index: %w", err)
	}

	gitignore := filepath.Join(StoreDir(dir), GitignoreFile)
	if err := os.WriteFile(gitignore, []byte(defaultGitignore), 0644); err != nil {
		return nil, fmt.Errorf("writing .gitignore: %w", err)
	}

	return cfg, nil
}

// Load reads .memoria/config.json under root.
// Returns nil, nil when the store or file is missing, or when the file
// fails to parse: a corrupt config behaves like an uninitialized one.
// Other read failures (permissions, I/O) are returned.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, nil
	}
	return &cfg, nil
}

// Save overwrites .memoria/config.json under root. No merge.
func Save(root string, cfg *Config) error {
	if err := fsutil.WriteJSON(ConfigPath(root), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// supportedMajor is the newest config major version this binary understands.
const supportedMajor = 1

// CheckVersion returns an error if cfg declares a version this binary cannot
// read safely: unparseable, or a newer major version.
func CheckVersion(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	v, err := semver.NewVersion(cfg.Version)
	if err != nil {
		return fmt.Errorf("invalid config version %q: %w", cfg.Version, err)
	}
	if v.Major() > supportedMajor {
		return fmt.Errorf("config version %s is newer than supported %d.x", v, supportedMajor)
	}
	return nil
}
