//go:build unix

package filesystem

import (
	"os"

	"golang.org/x/sys/unix"
)

type fileID struct {
	dev uint64
	ino uint64
}

func statID(path string) (fileID, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return fileID{}, &os.PathError{Op: "stat", Path: path, Err: err}
	}
	return fileID{dev: uint64(st.Dev), ino: uint64(st.Ino)}, nil
}

func sameInode(a, b string) (bool, error) {
	idA, err := statID(a)
	if err != nil {
		return false, err
	}
	idB, err := statID(b)
	if err != nil {
		return false, err
	}
	return idA == idB, nil
}
