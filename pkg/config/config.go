package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/errors"
)

// Config is the effective configuration of one invocation.
type Config struct {
	Plugins PluginsConfig `koanf:"plugins" toml:"plugins"`
	Link    LinkConfig    `koanf:"link" toml:"link"`
	Archive ArchiveConfig `koanf:"archive" toml:"archive"`
	Compare CompareConfig `koanf:"compare" toml:"compare"`
}

// PluginsConfig identifies plugin directories.
type PluginsConfig struct {
	// Ignore holds directory names excluded from comparison and traversal.
	Ignore []string `koanf:"ignore" toml:"ignore"`
	// MarkerFile is the file whose presence makes a directory a plugin directory.
	MarkerFile string `koanf:"marker_file" toml:"marker_file"`
}

// LinkConfig lists the files linked besides marker files.
type LinkConfig struct {
	// Patterns are basename globs. Paths containing an ignored name anywhere
	// in the path string are skipped.
	Patterns []string `koanf:"patterns" toml:"patterns"`
	// ExtraFiles are exact basenames linked with no ignore filtering.
	ExtraFiles []string `koanf:"extra_files" toml:"extra_files"`
}

// ArchiveConfig names snapshot archives.
type ArchiveConfig struct {
	Prefix     string `koanf:"prefix" toml:"prefix"`
	DateFormat string `koanf:"date_format" toml:"date_format"`
}

// CompareConfig shapes the comparison table.
type CompareConfig struct {
	ColumnWidth      int    `koanf:"column_width" toml:"column_width"`
	SourceTitle      string `koanf:"source_title" toml:"source_title"`
	DestinationTitle string `koanf:"destination_title" toml:"destination_title"`
}

// MinColumnWidth is the narrowest comparison column accepted.
const MinColumnWidth = 8

// Validate checks the configuration for values the operations cannot use.
func (c *Config) Validate() error {
	if err := validateBasename("plugins.marker_file", c.Plugins.MarkerFile); err != nil {
		return err
	}
	for _, name := range c.Plugins.Ignore {
		if strings.TrimSpace(name) == "" {
			return invalid("plugins.ignore", name, "ignore entries must not be empty")
		}
	}
	for _, pattern := range c.Link.Patterns {
		if _, err := filepath.Match(pattern, ""); err != nil || pattern == "" {
			return invalid("link.patterns", pattern, "malformed glob pattern")
		}
	}
	for _, name := range c.Link.ExtraFiles {
		if err := validateBasename("link.extra_files", name); err != nil {
			return err
		}
	}
	if err := validateBasename("archive.prefix", c.Archive.Prefix); err != nil {
		return err
	}
	if c.Archive.DateFormat == "" {
		return invalid("archive.date_format", c.Archive.DateFormat, "date format is required")
	}
	if stamp := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local).Format(c.Archive.DateFormat); strings.ContainsAny(stamp, `/\`) {
		return invalid("archive.date_format", c.Archive.DateFormat, "date format must not produce path separators")
	}
	if c.Compare.ColumnWidth < MinColumnWidth {
		return invalid("compare.column_width", c.Compare.ColumnWidth, "column width is too small")
	}
	return nil
}

func validateBasename(key, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(key, value, "value is required")
	}
	if strings.ContainsAny(value, `/\`) || value == "." || value == ".." {
		return invalid(key, value, "must be a bare file name")
	}
	return nil
}

func invalid(key string, value interface{}, reason string) error {
	return errors.Newf(errors.ErrConfigValid, "%s: %s", key, reason).
		WithDetail("key", key).
		WithDetail("value", value)
}
