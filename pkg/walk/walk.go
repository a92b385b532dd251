// Package walk traverses a directory tree with pruning.
//
// Unlike filepath.Walk, the decision to descend into a directory is taken
// before the directory is read, so an excluded subtree costs one Lstat and
// nothing more.
package walk

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/logging"
)

// DirFilter reports whether the directory at path should be descended into.
// It is never called for the root.
type DirFilter func(path string, info os.FileInfo) bool

// VisitFunc is called for every non-directory entry that is reached.
// Returning an error stops the walk.
type VisitFunc func(path string, info os.FileInfo) error

// Options configures a walk.
type Options struct {
	// Include prunes subdirectories. Nil descends everywhere.
	Include DirFilter

	// OnError is called when a subdirectory cannot be read; the walk then
	// continues with its siblings. Nil logs a warning.
	OnError func(path string, err error)
}

// Files walks root in lexical order and calls visit for every file.
// An unreadable root is returned as an error.
func Files(fs afero.Fs, root string, opts Options, visit VisitFunc) error {
	info, err := fs.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return visit(root, info)
	}

	entries, err := afero.ReadDir(fs, root)
	if err != nil {
		return err
	}
	return walkEntries(fs, root, entries, opts, visit)
}

func walkEntries(fs afero.Fs, dir string, entries []os.FileInfo, opts Options, visit VisitFunc) error {
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if !entry.IsDir() {
			if err := visit(path, entry); err != nil {
				return err
			}
			continue
		}

		if opts.Include != nil && !opts.Include(path, entry) {
			continue
		}

		children, err := afero.ReadDir(fs, path)
		if err != nil {
			reportError(opts, path, err)
			continue
		}
		if err := walkEntries(fs, path, children, opts, visit); err != nil {
			return err
		}
	}
	return nil
}

func reportError(opts Options, path string, err error) {
	if opts.OnError != nil {
		opts.OnError(path, err)
		return
	}
	logger := logging.GetLogger("walk")
	logger.Warn().Err(err).Str("path", path).Msg("Skipping unreadable directory")
}

// ExcludeNames returns a DirFilter that prunes directories whose base name is
// in names.
func ExcludeNames(names []string) DirFilter {
	excluded := make(map[string]struct{}, len(names))
	for _, n := range names {
		excluded[n] = struct{}{}
	}
	return func(path string, info os.FileInfo) bool {
		_, skip := excluded[info.Name()]
		return !skip
	}
}

// FindMatches returns every regular file under root whose base name matches
// one of the filepath.Match patterns. A pattern without metacharacters is an
// exact name. Malformed patterns never match; symlinks and other special
// files are left out even when their name matches.
func FindMatches(fs afero.Fs, root string, patterns []string, opts Options) ([]string, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	logger := logging.GetLogger("walk")
	var out []string
	err := Files(fs, root, opts, func(path string, info os.FileInfo) error {
		if !MatchAny(patterns, info.Name()) {
			return nil
		}
		if !info.Mode().IsRegular() {
			logger.Debug().Str("path", path).Str("mode", info.Mode().String()).Msg("Not a regular file, ignoring")
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MatchAny reports whether name matches any of the patterns.
func MatchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
