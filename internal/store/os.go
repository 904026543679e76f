package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// OS is the FS backed by the real filesystem.
type OS struct{}

// NewOS returns the disk-backed store.
func NewOS() *OS {
	return &OS{}
}

func (OS) ReadDir(dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		entry := Entry{Name: de.Name(), IsDir: de.IsDir()}
		if info, err := de.Info(); err == nil {
			entry.ModTime = info.ModTime()
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (OS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes through a uniquely named sibling and renames it into
// place, so readers never observe a half-written artifact.
func (o OS) WriteFile(path string, data []byte) error {
	tmp, err := o.writeTemp(path, data)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move %s into place: %w", filepath.Base(path), err)
	}
	return nil
}

// CreateExclusive hard-links a fully written temp file to path. The link
// fails when path already exists, which makes the check and the write a
// single filesystem operation.
func (o OS) CreateExclusive(path string, data []byte) error {
	tmp, err := o.writeTemp(path, data)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	if err := os.Link(tmp, path); err != nil {
		return err
	}
	return nil
}

func (OS) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (OS) MkdirAll(dir string) error {
	return os.MkdirAll(dir, 0755)
}

func (OS) Remove(path string) error {
	return os.Remove(path)
}

func (OS) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

func (OS) writeTemp(path string, data []byte) (string, error) {
	tmp := filepath.Join(filepath.Dir(path), fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return tmp, nil
}
