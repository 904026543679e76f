// Package store wraps every filesystem access behind a small repository
// interface so that the scan, sort and filter logic of the resolvers can be
// exercised against an in-memory tree as well as the real disk.
package store

import (
	"errors"
	"io/fs"
	"time"
)

// Entry is one directory listing item.
type Entry struct {
	Name    string
	IsDir   bool
	ModTime time.Time
}

// FS is the persistence surface used by the behavior tracking core.
// Missing paths are reported with errors matching fs.ErrNotExist and
// exclusive-create collisions with errors matching fs.ErrExist.
type FS interface {
	// ReadDir lists dir in no particular order.
	ReadDir(dir string) ([]Entry, error)
	ReadFile(path string) ([]byte, error)
	// WriteFile replaces the content of path. The parent must exist.
	WriteFile(path string, data []byte) error
	// CreateExclusive writes path only if nothing exists there yet.
	CreateExclusive(path string, data []byte) error
	Exists(path string) (bool, error)
	MkdirAll(dir string) error
	Remove(path string) error
	// RemoveAll deletes path and everything below it. A missing path is not an error.
	RemoveAll(path string) error
}

// IsNotExist reports whether err signals a missing path.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// IsExist reports whether err signals an exclusive-create collision.
func IsExist(err error) bool {
	return errors.Is(err, fs.ErrExist)
}

// Files returns the names of the non-directory entries of dir.
// A missing dir yields no names and no error.
func Files(fsys FS, dir string) ([]string, error) {
	return names(fsys, dir, false)
}

// Dirs returns the names of the directory entries of dir.
// A missing dir yields no names and no error.
func Dirs(fsys FS, dir string) ([]string, error) {
	return names(fsys, dir, true)
}

func names(fsys FS, dir string, wantDirs bool) ([]string, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		if IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []string
	for _, e := range entries {
		if e.IsDir == wantDirs {
			out = append(out, e.Name)
		}
	}
	return out, nil
}
