// internal/config/config.go
//
// This package handles configuration and the ~/.commitquiz directory.
// A default config.yaml is written on first run so users can discover
// the tunables without reading source.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// AppDir is the name of the directory we create in the user's home.
	AppDir = ".commitquiz"

	configFileName = "config.yaml"
	logFileName    = "commitquiz.log"
)

const defaultConfigYAML = `# commitquiz configuration
version: 1

api:
  # Any GitHub-compatible REST API surface works here.
  base_url: https://api.github.com
  # Page size for repository and branch listings. Organizations with more
  # than one page of repositories are only partially visible.
  page_size: 100
  # Rough number of commits to sample per repository; split evenly across
  # branches before fetching.
  commit_sample_size: 30
  # Branches assumed when a repository refuses to list its branches.
  fallback_branches: [main, master]

deck:
  # Each qualifying author contributes at most max(per_author_floor,
  # budget / authors) commits to a deck.
  per_author_floor: 5
  budget: 50

game:
  # How long the answer reveal stays on screen before the next commit.
  feedback_delay_ms: 1500
`

// APIConfig controls how the GitHub client talks to the remote API.
type APIConfig struct {
	BaseURL          string   `yaml:"base_url"`
	PageSize         int      `yaml:"page_size"`
	CommitSampleSize int      `yaml:"commit_sample_size"`
	FallbackBranches []string `yaml:"fallback_branches"`
}

// DeckConfig is the balancing policy for deck construction.
type DeckConfig struct {
	PerAuthorFloor int `yaml:"per_author_floor"`
	Budget         int `yaml:"budget"`
}

// GameConfig captures gameplay pacing preferences.
type GameConfig struct {
	FeedbackDelayMS int `yaml:"feedback_delay_ms"`
}

// Settings models ~/.commitquiz/config.yaml.
type Settings struct {
	Version int        `yaml:"version"`
	API     APIConfig  `yaml:"api"`
	Deck    DeckConfig `yaml:"deck"`
	Game    GameConfig `yaml:"game"`
}

// Config holds the runtime configuration for commitquiz.
type Config struct {
	// Dir is the per-user application directory (usually ~/.commitquiz).
	Dir string

	Settings Settings
}

func defaultSettings() Settings {
	return Settings{
		Version: 1,
		API: APIConfig{
			BaseURL:          "https://api.github.com",
			PageSize:         100,
			CommitSampleSize: 30,
			FallbackBranches: []string{"main", "master"},
		},
		Deck: DeckConfig{
			PerAuthorFloor: 5,
			Budget:         50,
		},
		Game: GameConfig{
			FeedbackDelayMS: 1500,
		},
	}
}

// New loads (or initializes) the configuration rooted at dir. Pass the
// result of DefaultDir() outside of tests.
func New(dir string) (*Config, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("config: application directory is required")
	}
	if err := os.MkdirAll(filepath.Join(dir, "logs"), 0o755); err != nil {
		return nil, fmt.Errorf("config: ensure app dir: %w", err)
	}
	c := &Config{Dir: dir, Settings: defaultSettings()}
	if err := ensureConfigFile(c.path()); err != nil {
		return nil, err
	}
	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultDir returns ~/.commitquiz, creating nothing.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home dir: %w", err)
	}
	return filepath.Join(home, AppDir), nil
}

func (c *Config) path() string {
	return filepath.Join(c.Dir, configFileName)
}

// LogPath is where the logbook for this configuration lives.
func (c *Config) LogPath() string {
	return filepath.Join(c.Dir, "logs", logFileName)
}

// FeedbackDelay converts the configured milliseconds into a duration,
// falling back to the default when the value is non-positive.
func (c *Config) FeedbackDelay() time.Duration {
	ms := c.Settings.Game.FeedbackDelayMS
	if ms <= 0 {
		ms = defaultSettings().Game.FeedbackDelayMS
	}
	return time.Duration(ms) * time.Millisecond
}

// ensureConfigFile writes the default template if no config exists yet.
func ensureConfigFile(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0o644); err != nil {
		return fmt.Errorf("config: write default config: %w", err)
	}
	return nil
}

// load reads config.yaml over the defaults, then normalizes the result so
// the rest of the program never sees zero values for required tunables.
func (c *Config) load() error {
	raw, err := os.ReadFile(c.path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", c.path(), err)
	}
	if err := yaml.Unmarshal(raw, &c.Settings); err != nil {
		return fmt.Errorf("config: parse %s: %w", c.path(), err)
	}
	c.normalize()
	return nil
}

func (c *Config) normalize() {
	def := defaultSettings()
	if strings.TrimSpace(c.Settings.API.BaseURL) == "" {
		c.Settings.API.BaseURL = def.API.BaseURL
	}
	c.Settings.API.BaseURL = strings.TrimRight(c.Settings.API.BaseURL, "/")
	if c.Settings.API.PageSize <= 0 {
		c.Settings.API.PageSize = def.API.PageSize
	}
	if c.Settings.API.CommitSampleSize <= 0 {
		c.Settings.API.CommitSampleSize = def.API.CommitSampleSize
	}
	if len(c.Settings.API.FallbackBranches) == 0 {
		c.Settings.API.FallbackBranches = def.API.FallbackBranches
	}
	if c.Settings.Deck.PerAuthorFloor <= 0 {
		c.Settings.Deck.PerAuthorFloor = def.Deck.PerAuthorFloor
	}
	if c.Settings.Deck.Budget <= 0 {
		c.Settings.Deck.Budget = def.Deck.Budget
	}
}
