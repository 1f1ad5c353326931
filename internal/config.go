package internal

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Tree    TreeConfig        `yaml:"tree"`
	Journal JournalConfig     `yaml:"journal"`
	Watch   WatchConfig       `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Tree.Validate(); err != nil {
		return err
	}
	return c.Watch.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// TreeConfig describes the site tree the archiver manages.
type TreeConfig struct {
	Root        string `yaml:"root"`
	Artifact    string `yaml:"artifact"`
	IndexFile   string `yaml:"index_file"`
	RecentCount int    `yaml:"recent_count"`
}

// Validate validates the tree configuration.
func (c *TreeConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.Artifact, validation.Required, validation.By(plainName)),
		validation.Field(&c.IndexFile, validation.Required, validation.By(plainName), validation.NotIn(c.Artifact)),
		validation.Field(&c.RecentCount, validation.Required, validation.Min(1), validation.Max(100)),
	)
}

// JournalConfig holds the SQLite run journal settings. An empty Path
// disables journaling.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// Enabled reports whether runs are journaled.
func (c *JournalConfig) Enabled() bool {
	return c.Path != ""
}

// WatchConfig holds watch-mode settings.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Required, validation.Min(10*time.Millisecond)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Tree: TreeConfig{
			Root:        ".",
			Artifact:    "lesson.html",
			IndexFile:   "index.html",
			RecentCount: 7,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// plainName rejects file names that carry a path.
func plainName(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if strings.ContainsAny(s, `/\`) || s == "." || s == ".." {
		return errors.New("must be a plain file name")
	}
	return nil
}
