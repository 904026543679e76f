package store

import (
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process FS. Listings come back in map order, which is
// deliberately unstable so callers cannot lean on directory order.
type Memory struct {
	mu    sync.RWMutex
	files map[string]memFile
	dirs  map[string]time.Time
	now   func() time.Time
}

type memFile struct {
	data    []byte
	modTime time.Time
}

// NewMemory returns an empty tree containing only the root directory.
func NewMemory() *Memory {
	return &Memory{
		files: make(map[string]memFile),
		dirs:  map[string]time.Time{string(filepath.Separator): {}},
		now:   time.Now,
	}
}

// SetClock replaces the clock that stamps modification times.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *Memory) ReadDir(dir string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dir = filepath.Clean(dir)
	if _, ok := m.dirs[dir]; !ok {
		return nil, &fs.PathError{Op: "readdir", Path: dir, Err: fs.ErrNotExist}
	}

	var entries []Entry
	for p, f := range m.files {
		if filepath.Dir(p) == dir {
			entries = append(entries, Entry{Name: filepath.Base(p), ModTime: f.modTime})
		}
	}
	for p, mod := range m.dirs {
		if p != dir && filepath.Dir(p) == dir {
			entries = append(entries, Entry{Name: filepath.Base(p), IsDir: true, ModTime: mod})
		}
	}
	return entries, nil
}

func (m *Memory) ReadFile(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.files[filepath.Clean(path)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), f.data...), nil
}

func (m *Memory) WriteFile(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.write(filepath.Clean(path), data, false)
}

func (m *Memory) CreateExclusive(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.write(filepath.Clean(path), data, true)
}

func (m *Memory) write(path string, data []byte, exclusive bool) error {
	if _, ok := m.dirs[filepath.Dir(path)]; !ok {
		return &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	if _, ok := m.dirs[path]; ok {
		return &fs.PathError{Op: "open", Path: path, Err: fs.ErrExist}
	}
	if _, ok := m.files[path]; ok && exclusive {
		return &fs.PathError{Op: "link", Path: path, Err: fs.ErrExist}
	}
	m.files[path] = memFile{data: append([]byte(nil), data...), modTime: m.now()}
	return nil
}

func (m *Memory) Exists(path string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	path = filepath.Clean(path)
	_, isFile := m.files[path]
	_, isDir := m.dirs[path]
	return isFile || isDir, nil
}

func (m *Memory) MkdirAll(dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for d := filepath.Clean(dir); ; d = filepath.Dir(d) {
		if _, ok := m.files[d]; ok {
			return &fs.PathError{Op: "mkdir", Path: d, Err: fs.ErrExist}
		}
		if _, ok := m.dirs[d]; !ok {
			m.dirs[d] = m.now()
		}
		if d == filepath.Dir(d) {
			return nil
		}
	}
}

func (m *Memory) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path = filepath.Clean(path)
	if _, ok := m.files[path]; ok {
		delete(m.files, path)
		return nil
	}
	if _, ok := m.dirs[path]; ok {
		for p := range m.files {
			if filepath.Dir(p) == path {
				return &fs.PathError{Op: "remove", Path: path, Err: fs.ErrExist}
			}
		}
		delete(m.dirs, path)
		return nil
	}
	return &fs.PathError{Op: "remove", Path: path, Err: fs.ErrNotExist}
}

func (m *Memory) RemoveAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path = filepath.Clean(path)
	prefix := path + string(filepath.Separator)
	for p := range m.files {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(m.files, p)
		}
	}
	for d := range m.dirs {
		if d == path || strings.HasPrefix(d, prefix) {
			delete(m.dirs, d)
		}
	}
	return nil
}
