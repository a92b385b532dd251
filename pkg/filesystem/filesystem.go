package filesystem

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// ErrLinkNotSupported is returned by filesystems that cannot hard-link.
var ErrLinkNotSupported = errors.New("hard links not supported by this filesystem")

// FS is the filesystem surface used by the comparator, the synchronizer and
// the archiver. It is an afero.Fs that can also create hard links and tell
// whether two paths name the same underlying file.
type FS interface {
	afero.Fs

	// Link creates newname as a hard link to oldname.
	Link(oldname, newname string) error

	// SameFile reports whether a and b resolve to the same device and inode.
	SameFile(a, b string) (bool, error)
}

// osFS implements FS on the operating system filesystem
type osFS struct {
	afero.Fs
}

// NewOS creates a new OS filesystem implementation
func NewOS() FS {
	return &osFS{Fs: afero.NewOsFs()}
}

func (o *osFS) Link(oldname, newname string) error {
	return os.Link(oldname, newname)
}

func (o *osFS) SameFile(a, b string) (bool, error) {
	return sameInode(a, b)
}

func (o *osFS) LstatIfPossible(name string) (os.FileInfo, bool, error) {
	fi, err := os.Lstat(name)
	return fi, true, err
}

// memFS implements FS on top of an in-memory afero filesystem. It has no
// notion of inodes, so links always fail and two paths are the same file
// only when they are the same path.
type memFS struct {
	afero.Fs
}

// NewMemory creates an empty in-memory filesystem.
func NewMemory() FS {
	return Wrap(afero.NewMemMapFs())
}

// Wrap adapts an arbitrary afero filesystem. Links are refused.
func Wrap(fs afero.Fs) FS {
	return &memFS{Fs: fs}
}

func (m *memFS) Link(oldname, newname string) error {
	return &os.LinkError{Op: "link", Old: oldname, New: newname, Err: ErrLinkNotSupported}
}

func (m *memFS) LstatIfPossible(name string) (os.FileInfo, bool, error) {
	if lstater, ok := m.Fs.(afero.Lstater); ok {
		return lstater.LstatIfPossible(name)
	}
	fi, err := m.Stat(name)
	return fi, false, err
}

func (m *memFS) SameFile(a, b string) (bool, error) {
	if _, err := m.Stat(a); err != nil {
		return false, err
	}
	if _, err := m.Stat(b); err != nil {
		return false, err
	}
	return filepath.Clean(a) == filepath.Clean(b), nil
}

// Exists reports whether anything, including a dangling symlink, is present at path.
func Exists(fs afero.Fs, path string) (bool, error) {
	var err error
	if lstater, ok := fs.(afero.Lstater); ok {
		_, _, err = lstater.LstatIfPossible(path)
	} else {
		_, err = fs.Stat(path)
	}
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
