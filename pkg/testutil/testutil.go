package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

// CreateFile creates a file with the given content in the specified directory.
// Parent directories are created as needed. It returns the file's path.
func CreateFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create parent directories for %s: %v", path, err)
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create file %s: %v", path, err)
	}

	return path
}

// CreateDir creates a directory in the specified parent directory.
func CreateDir(t *testing.T, parent, name string) string {
	t.Helper()

	path := filepath.Join(parent, name)

	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("Failed to create directory %s: %v", path, err)
	}

	return path
}

// CreateSymlink creates a symbolic link pointing to target.
func CreateSymlink(t *testing.T, target, link string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(link), 0755); err != nil {
		t.Fatalf("Failed to create parent directory for symlink %s: %v", link, err)
	}

	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("Failed to create symlink %s -> %s: %v", link, target, err)
	}
}

// ReadFile reads the content of a file and returns it as a string.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	return string(content)
}

// MemoryTree builds an in-memory filesystem from a list of entries. Entries
// ending in "/" are directories; anything else is a file whose content is
// its own path. Every file gets the same fixed modification time.
func MemoryTree(t *testing.T, entries ...string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	for _, entry := range entries {
		if strings.HasSuffix(entry, "/") {
			if err := fs.MkdirAll(entry, 0755); err != nil {
				t.Fatalf("Failed to create directory %s: %v", entry, err)
			}
			continue
		}
		if err := afero.WriteFile(fs, entry, []byte(entry), 0644); err != nil {
			t.Fatalf("Failed to create file %s: %v", entry, err)
		}
		if err := fs.Chtimes(entry, FixedTime, FixedTime); err != nil {
			t.Fatalf("Failed to set times on %s: %v", entry, err)
		}
	}
	return fs
}

// FixedTime is the modification time MemoryTree gives every file.
var FixedTime = time.Date(2024, 1, 1, 9, 30, 0, 0, time.Local)
