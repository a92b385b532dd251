// Package archive writes dated zip snapshots of a directory into that
// directory.
package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/errors"
	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/logging"
)

// Extension is appended to every archive name.
const Extension = ".zip"

// FileMode is the permission of a finished archive. Temporary files are
// created private and widened before the rename.
const FileMode os.FileMode = 0644

// Options names the archive.
type Options struct {
	Prefix     string
	DateFormat string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Result describes a written archive.
type Result struct {
	Path    string
	Files   int
	Dirs    int
	Skipped int
}

// Name returns the archive file name for the given moment, e.g.
// "_archive-2024-01-01.zip".
func Name(prefix, layout string, now time.Time) string {
	return prefix + now.Format(layout) + Extension
}

type entry struct {
	rel  string
	path string
	info os.FileInfo
}

// Create snapshots everything under dir into dir/<Name>. The entry list is
// taken before the archive is opened, so earlier archives are included and
// the new one is not. An archive with the same name is replaced.
func Create(fs afero.Fs, dir string, opts Options) (*Result, error) {
	logger := logging.GetLogger("archive")
	done := logging.LogOperationStart(logger, "archive")
	defer done()

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	target := filepath.Join(dir, Name(opts.Prefix, opts.DateFormat, now()))

	entries, err := collect(fs, dir)
	if err != nil {
		return nil, err
	}

	tmp, err := afero.TempFile(fs, dir, ".archive-*.tmp")
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrArchiveCreate, "cannot create archive in %s", dir)
	}
	tmpName := tmp.Name()

	result, err := write(fs, tmp, entries)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = errors.Wrap(closeErr, errors.ErrArchiveCreate, "failed to close archive")
	}
	if err != nil {
		_ = fs.Remove(tmpName)
		return nil, err
	}

	if err := fs.Chmod(tmpName, FileMode); err != nil {
		_ = fs.Remove(tmpName)
		return nil, errors.Wrapf(err, errors.ErrArchiveCreate, "cannot set permissions on %s", tmpName)
	}
	if err := fs.Rename(tmpName, target); err != nil {
		_ = fs.Remove(tmpName)
		return nil, errors.Wrapf(err, errors.ErrArchiveCreate, "cannot move archive to %s", target)
	}

	result.Path = target
	logger.Info().
		Str("path", target).
		Int("files", result.Files).
		Int("dirs", result.Dirs).
		Int("skipped", result.Skipped).
		Msg("Archive written")

	return result, nil
}

func collect(fs afero.Fs, dir string) ([]entry, error) {
	var entries []entry
	err := afero.Walk(fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		entries = append(entries, entry{rel: filepath.ToSlash(rel), path: path, info: info})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", dir)
	}
	return entries, nil
}

func write(fs afero.Fs, out io.Writer, entries []entry) (*Result, error) {
	logger := logging.GetLogger("archive")
	result := &Result{}
	zw := zip.NewWriter(out)

	for _, e := range entries {
		info := e.info
		if info.Mode()&os.ModeSymlink != 0 {
			// Symlinks are archived as the file they point to.
			resolved, err := fs.Stat(e.path)
			if err != nil {
				logger.Warn().Err(err).Str("path", e.path).Msg("Skipping unresolvable symlink")
				result.Skipped++
				continue
			}
			info = resolved
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrArchiveCreate, "cannot describe %s", e.path)
		}
		header.Name = e.rel

		if info.IsDir() {
			header.Name += "/"
			header.Method = zip.Store
			if _, err := zw.CreateHeader(header); err != nil {
				return nil, errors.Wrapf(err, errors.ErrArchiveCreate, "cannot add %s", e.rel)
			}
			result.Dirs++
			continue
		}

		header.Method = zip.Deflate
		if err := addFile(fs, zw, header, e.path); err != nil {
			if errors.IsErrorCode(err, errors.ErrFileAccess) {
				logger.Warn().Err(err).Str("path", e.path).Msg("Skipping unreadable file")
				result.Skipped++
				continue
			}
			return nil, err
		}
		result.Files++
	}

	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrArchiveCreate, "failed to finish archive")
	}
	return result, nil
}

func addFile(fs afero.Fs, zw *zip.Writer, header *zip.FileHeader, path string) error {
	f, err := fs.Open(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot open %s", path)
	}
	defer f.Close()

	w, err := zw.CreateHeader(header)
	if err != nil {
		return errors.Wrapf(err, errors.ErrArchiveCreate, "cannot add %s", header.Name)
	}
	if _, err := io.Copy(w, f); err != nil {
		return errors.Wrapf(err, errors.ErrArchiveCreate, "cannot write %s", header.Name)
	}
	return nil
}
