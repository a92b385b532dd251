package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/config"
	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/errors"
	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/paths"
	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/testutil"
)

// execute runs the CLI in-process with an isolated environment.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv(paths.EnvConfigDir, t.TempDir())
	t.Setenv(paths.EnvStateDir, t.TempDir())
	t.Setenv("NO_COLOR", "")

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func trees(t *testing.T) (string, string) {
	t.Helper()
	base := t.TempDir()
	return testutil.CreateDir(t, base, "plugins"), testutil.CreateDir(t, base, "backup")
}

func TestRequiredFlags(t *testing.T) {
	stdout, _, err := execute(t, "--compare")
	require.Error(t, err)
	assert.True(t, IsUsageError(err))
	assert.Contains(t, err.Error(), `required flag(s) "destination", "source" not set`)
	assert.Empty(t, stdout)

	_, _, err = execute(t, "-s", t.TempDir(), "--link")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"destination"`)
	assert.NotContains(t, err.Error(), `"source"`)
}

func TestRequiredFlagsCheckedBeforeLogSetup(t *testing.T) {
	state := filepath.Join(t.TempDir(), "state")
	t.Setenv(paths.EnvConfigDir, t.TempDir())
	t.Setenv(paths.EnvStateDir, state)

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--link", "-s", t.TempDir()})

	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, IsUsageError(err))
	assert.NoDirExists(t, state)
}

func TestInvalidArguments(t *testing.T) {
	_, _, err := execute(t, "--bogus")
	assert.True(t, IsUsageError(err))

	source, destination := trees(t)
	_, _, err = execute(t, "-s", source, "-d", destination, "extra")
	assert.True(t, IsUsageError(err))
	assert.Contains(t, err.Error(), `unexpected argument "extra"`)
}

func TestNoOperationIsANoOp(t *testing.T) {
	source, destination := trees(t)
	testutil.CreateFile(t, source, "pluginA/data.json", "{}")

	stdout, stderr, err := execute(t, "-s", source, "-d", destination)
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, MsgNoOperation)
	assert.NoDirExists(t, filepath.Join(destination, "pluginA"))
}

func TestMissingRootFailsBeforeRunning(t *testing.T) {
	_, destination := trees(t)

	stdout, _, err := execute(t, "-s", filepath.Join(destination, "absent"), "-d", destination, "--archive")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	assert.Empty(t, stdout)
	assert.NoFileExists(t, filepath.Join(destination, "_archive-"+time.Now().Format("2006-01-02")+".zip"))
}

func TestCompare(t *testing.T) {
	source, destination := trees(t)
	testutil.CreateFile(t, source, "pluginA/data.json", "{}")
	testutil.CreateFile(t, source, "update-time-on-edit/data.json", "{}")
	testutil.CreateFile(t, destination, "pluginA/data.json", "{}")

	stdout, _, err := execute(t, "-s", source, "-d", destination, "-c")
	require.NoError(t, err)

	want := fmt.Sprintf("%-30s | %-30s\n", "Source", "Destination") +
		strings.Repeat("-", 62) + "\n" +
		fmt.Sprintf("%-30s | %-30s\n", "pluginA", "pluginA") +
		MsgCompareEqual + "\n"
	assert.Equal(t, want, stdout)
}

func TestCompareMarksAsymmetry(t *testing.T) {
	source, destination := trees(t)
	testutil.CreateFile(t, source, "calendar/data.json", "{}")
	testutil.CreateFile(t, destination, "dataview/data.json", "{}")

	stdout, _, err := execute(t, "-s", source, "-d", destination, "--compare", "--no-color")
	require.NoError(t, err)

	assert.Contains(t, stdout, fmt.Sprintf("%-30s | %-30s\n", "*calendar*", " "))
	assert.Contains(t, stdout, fmt.Sprintf("%-30s | %-30s\n", " ", "*dataview*"))
	assert.NotContains(t, stdout, MsgCompareEqual)
}

func TestCompareTakesPriority(t *testing.T) {
	source, destination := trees(t)
	testutil.CreateFile(t, source, "pluginA/data.json", "{}")

	stdout, _, err := execute(t, "-s", source, "-d", destination, "-l", "-a", "-c")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Source")
	assert.NoFileExists(t, filepath.Join(destination, "pluginA", "data.json"))
}

func TestLink(t *testing.T) {
	source, destination := trees(t)
	src := testutil.CreateFile(t, source, "pluginB/data.json", "{}")
	testutil.CreateFile(t, source, "pluginC/node_modules/dep/package.json", "{}")
	dst := filepath.Join(destination, "pluginB", "data.json")

	stdout, _, err := execute(t, "-s", source, "-d", destination, "--link")
	require.NoError(t, err)
	assert.Contains(t, stdout, fmt.Sprintf(MsgLinkCreated, dst))
	assert.Contains(t, stdout, fmt.Sprintf(MsgLinkSummary, 1, 0, 0))

	srcInfo, err := os.Stat(src)
	require.NoError(t, err)
	dstInfo, err := os.Stat(dst)
	require.NoError(t, err)
	assert.True(t, os.SameFile(srcInfo, dstInfo))
	assert.NoFileExists(t, filepath.Join(destination, "pluginC", "node_modules", "dep", "package.json"))

	stdout, _, err = execute(t, "-s", source, "-d", destination, "--link")
	require.NoError(t, err)
	assert.Contains(t, stdout, fmt.Sprintf(MsgLinkSkipped, dst))
	assert.Contains(t, stdout, fmt.Sprintf(MsgLinkSummary, 0, 1, 0))
}

func TestLinkDryRun(t *testing.T) {
	source, destination := trees(t)
	src := testutil.CreateFile(t, source, "pluginB/data.json", "{}")
	dst := filepath.Join(destination, "pluginB", "data.json")

	stdout, _, err := execute(t, "-s", source, "-d", destination, "--link", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, stdout, fmt.Sprintf(MsgLinkPlanned, src, dst))
	assert.Contains(t, stdout, fmt.Sprintf(MsgLinkDryRunSummary, 1, 0))
	assert.NoDirExists(t, filepath.Join(destination, "pluginB"))
}

func TestLinkReadsSourceRootConfig(t *testing.T) {
	source, destination := trees(t)
	testutil.CreateFile(t, source, paths.RootConfigFileName, "[link]\npatterns = [\"*.css\"]\nextra_files = []\n")
	testutil.CreateFile(t, source, "theme/snippet.css", "body {}")
	testutil.CreateFile(t, source, "theme/manifest.json", "{}")

	_, _, err := execute(t, "-s", source, "-d", destination, "-l")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(destination, "theme", "snippet.css"))
	assert.NoFileExists(t, filepath.Join(destination, "theme", "manifest.json"))
}

func TestLinkReportsInvalidConfig(t *testing.T) {
	source, destination := trees(t)
	t.Setenv("OBSIDIAN_BACKUP_PLUGINS__MARKER_FILE", "nested/data.json")

	_, _, err := execute(t, "-s", source, "-d", destination, "-l")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
	assert.False(t, IsUsageError(err))
}

func TestArchive(t *testing.T) {
	source, destination := trees(t)
	testutil.CreateFile(t, destination, "pluginA/data.json", "{}")

	restore := now
	now = func() time.Time { return testutil.FixedTime }
	t.Cleanup(func() { now = restore })

	stdout, _, err := execute(t, "-s", source, "-d", destination, "--archive")
	require.NoError(t, err)

	archivePath := filepath.Join(destination, "_archive-2024-01-01.zip")
	assert.FileExists(t, archivePath)
	assert.Contains(t, stdout, fmt.Sprintf(MsgArchiveCreated, archivePath))
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "obsidian-backup version dev")
	assert.Contains(t, stdout, "commit:")
}

func TestGenConfig(t *testing.T) {
	t.Run("defaults verbatim", func(t *testing.T) {
		stdout, _, err := execute(t, "gen-config", "--defaults")
		require.NoError(t, err)
		assert.Equal(t, string(config.DefaultContent()), stdout)
	})

	t.Run("effective configuration", func(t *testing.T) {
		t.Setenv("OBSIDIAN_BACKUP_ARCHIVE__PREFIX", "snapshot-")
		stdout, _, err := execute(t, "gen-config")
		require.NoError(t, err)
		assert.Contains(t, stdout, "snapshot-")
		assert.Contains(t, stdout, "[plugins]")
	})

	t.Run("writes a new file only", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "conf", "config.toml")
		stdout, _, err := execute(t, "gen-config", "-o", out)
		require.NoError(t, err)
		assert.Contains(t, stdout, out)
		assert.FileExists(t, out)

		_, _, err = execute(t, "gen-config", "-o", out)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})
}

func TestCompletion(t *testing.T) {
	stdout, _, err := execute(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, stdout, "obsidian-backup")

	_, _, err = execute(t, "completion", "tcsh")
	assert.Error(t, err)
}

func TestMan(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "man1")
	_, _, err := execute(t, "man", dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "obsidian-backup.1"))
}

func TestHelpTopics(t *testing.T) {
	stdout, _, err := execute(t, "topics")
	require.NoError(t, err)
	for _, topic := range []string{"hard-links", "ignore-rules", "configuration", "archives", "--dry-run"} {
		assert.Contains(t, stdout, topic)
	}

	stdout, _, err = execute(t, "help", "hard-links")
	require.NoError(t, err)
	assert.Contains(t, stdout, "inode")
}
