package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/errors"
	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/testutil"
)

func fixedOptions() Options {
	return Options{
		Prefix:     "_archive-",
		DateFormat: "2006-01-02",
		Now:        func() time.Time { return testutil.FixedTime },
	}
}

func readArchive(t *testing.T, fs afero.Fs, path string) map[string]*zip.File {
	t.Helper()
	f, err := fs.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	info, err := f.Stat()
	require.NoError(t, err)

	zr, err := zip.NewReader(f, info.Size())
	require.NoError(t, err)

	out := make(map[string]*zip.File, len(zr.File))
	for _, zf := range zr.File {
		out[zf.Name] = zf
	}
	return out
}

func content(t *testing.T, zf *zip.File) string {
	t.Helper()
	rc, err := zf.Open()
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

func TestName(t *testing.T) {
	assert.Equal(t, "_archive-2024-01-01.zip", Name("_archive-", "2006-01-02", testutil.FixedTime))
	assert.Equal(t, "backup-20240101.zip", Name("backup-", "20060102", testutil.FixedTime))
}

func TestCreate(t *testing.T) {
	fs := testutil.MemoryTree(t,
		"/vault/_archive-2023-12-31.zip",
		"/vault/empty/",
		"/vault/plugins/calendar/data.json",
		"/vault/plugins/calendar/main.js",
	)

	result, err := Create(fs, "/vault", fixedOptions())
	require.NoError(t, err)

	assert.Equal(t, "/vault/_archive-2024-01-01.zip", result.Path)
	assert.Equal(t, 3, result.Files)
	assert.Equal(t, 3, result.Dirs)
	assert.Equal(t, 0, result.Skipped)

	entries := readArchive(t, fs, result.Path)
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	assert.ElementsMatch(t, []string{
		"_archive-2023-12-31.zip",
		"empty/",
		"plugins/",
		"plugins/calendar/",
		"plugins/calendar/data.json",
		"plugins/calendar/main.js",
	}, names)

	data := entries["plugins/calendar/data.json"]
	assert.Equal(t, "/vault/plugins/calendar/data.json", content(t, data))
	assert.Equal(t, zip.Deflate, data.Method)
	assert.Equal(t, os.FileMode(0644), data.Mode().Perm())
	assert.True(t, data.Modified.Equal(testutil.FixedTime))
	assert.True(t, entries["empty/"].Mode().IsDir())
}

func TestCreateLeavesNoTemporaryFiles(t *testing.T) {
	fs := testutil.MemoryTree(t, "/vault/note.md")

	_, err := Create(fs, "/vault", fixedOptions())
	require.NoError(t, err)

	infos, err := afero.ReadDir(fs, "/vault")
	require.NoError(t, err)
	var names []string
	for _, info := range infos {
		names = append(names, info.Name())
	}
	assert.Equal(t, []string{"_archive-2024-01-01.zip", "note.md"}, names)
}

func TestCreateReplacesSameDayArchive(t *testing.T) {
	fs := testutil.MemoryTree(t, "/vault/note.md")

	first, err := Create(fs, "/vault", fixedOptions())
	require.NoError(t, err)
	second, err := Create(fs, "/vault", fixedOptions())
	require.NoError(t, err)
	assert.Equal(t, first.Path, second.Path)

	entries := readArchive(t, fs, second.Path)
	assert.Contains(t, entries, "note.md")
	// The first run's archive was present when the second run listed the tree.
	assert.Contains(t, entries, "_archive-2024-01-01.zip")

	infos, err := afero.ReadDir(fs, "/vault")
	require.NoError(t, err)
	assert.Len(t, infos, 2)
}

func TestCreateEmptyDirectory(t *testing.T) {
	fs := testutil.MemoryTree(t, "/vault/")

	result, err := Create(fs, "/vault", fixedOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Files)
	assert.Empty(t, readArchive(t, fs, result.Path))
}

func TestCreateMissingDirectory(t *testing.T) {
	_, err := Create(afero.NewMemMapFs(), "/absent", fixedOptions())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileAccess))
}

func TestCreateFollowsSymlinks(t *testing.T) {
	dir := t.TempDir()
	outside := testutil.CreateFile(t, t.TempDir(), "shared.json", `{"a":1}`)
	testutil.CreateFile(t, dir, "plugin/data.json", "{}")
	testutil.CreateSymlink(t, outside, filepath.Join(dir, "plugin", "shared.json"))
	testutil.CreateSymlink(t, filepath.Join(dir, "gone"), filepath.Join(dir, "dangling"))

	result, err := Create(afero.NewOsFs(), dir, fixedOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Skipped)
	assert.True(t, strings.HasSuffix(result.Path, "_archive-2024-01-01.zip"))

	entries := readArchive(t, afero.NewOsFs(), result.Path)
	require.Contains(t, entries, "plugin/shared.json")
	assert.Equal(t, `{"a":1}`, content(t, entries["plugin/shared.json"]))
	assert.NotContains(t, entries, "dangling")
}

func TestCreateArchiveIsWorldReadable(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFile(t, dir, "plugin/data.json", "{}")

	result, err := Create(afero.NewOsFs(), dir, fixedOptions())
	require.NoError(t, err)

	info, err := os.Stat(result.Path)
	require.NoError(t, err)
	assert.Equal(t, FileMode, info.Mode().Perm())
}
