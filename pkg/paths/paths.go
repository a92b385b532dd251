package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/errors"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for obsidian-backup
	EnvConfigDir = "OBSIDIAN_BACKUP_CONFIG_DIR"

	// EnvStateDir overrides the XDG state directory for obsidian-backup
	EnvStateDir = "OBSIDIAN_BACKUP_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

const (
	// AppDirName is the directory name used under each XDG base directory
	AppDirName = "obsidian-backup"

	// ConfigFileName is the user configuration file inside ConfigDir
	ConfigFileName = "config.toml"

	// RootConfigFileName is the per-tree configuration file looked up in the source root
	RootConfigFileName = ".obsidian-backup.toml"

	// LogFileName is the name of the log file
	LogFileName = "obsidian-backup.log"
)

// ConfigDir returns the directory holding the user configuration file.
func ConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return ExpandHome(dir)
	}
	return filepath.Join(xdg.ConfigHome, AppDirName)
}

// ConfigFilePath returns the path of the user configuration file.
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), ConfigFileName)
}

// StateDir returns the directory holding the log file.
// XDG_STATE_HOME is re-read on every call so tests can point it elsewhere.
func StateDir() string {
	if dir := os.Getenv(EnvStateDir); dir != "" {
		return ExpandHome(dir)
	}
	if stateHome := os.Getenv("XDG_STATE_HOME"); stateHome != "" {
		return filepath.Join(stateHome, AppDirName)
	}
	return filepath.Join(xdg.StateHome, AppDirName)
}

// LogFilePath returns the path of the log file.
func LogFilePath() string {
	return filepath.Join(StateDir(), LogFileName)
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return filepath.Join(homeDir, path[2:])
	}

	// ~user forms are left alone
	return path
}

// ResolveRoot expands and absolutizes a root directory argument and checks
// that it exists and is a directory.
func ResolveRoot(name, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.Newf(errors.ErrInvalidInput, "%s directory is required", name)
	}

	abs, err := filepath.Abs(ExpandHome(path))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for %s directory", name)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Newf(errors.ErrNotFound, "%s directory does not exist: %s", name, abs).
				WithDetail("path", abs)
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot access %s directory", name)
	}
	if !info.IsDir() {
		return "", errors.Newf(errors.ErrInvalidInput, "%s is not a directory: %s", name, abs).
			WithDetail("path", abs)
	}

	return abs, nil
}
