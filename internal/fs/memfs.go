package fs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// MemFS is an in-memory FS for tests. Unlike a real filesystem it lets the
// caller set the birth time of a file, and it can fail individual operations
// on chosen paths.
type MemFS struct {
	mu    sync.RWMutex
	files map[string]*memFile
	dirs  map[string]bool

	// Injected failures keyed by cleaned path.
	StatErr   map[string]error
	RemoveErr map[string]error
	CopyErr   map[string]error
}

type memFile struct {
	data  []byte
	mode  os.FileMode
	mtime time.Time
	btime time.Time
	inode uint64
}

// NewMemFS returns an empty in-memory filesystem.
func NewMemFS() *MemFS {
	return &MemFS{
		files:     map[string]*memFile{},
		dirs:      map[string]bool{},
		StatErr:   map[string]error{},
		RemoveErr: map[string]error{},
		CopyErr:   map[string]error{},
	}
}

// AddFile creates or replaces a file. A zero btime means the filesystem does
// not report a creation time for it.
func (m *MemFS) AddFile(path string, data []byte, btime, mtime time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	path = filepath.Clean(path)
	m.dirs[filepath.Dir(path)] = true
	m.files[path] = &memFile{
		data:  append([]byte(nil), data...),
		mode:  0o644,
		mtime: mtime,
		btime: btime,
		inode: uint64(len(m.files) + 1),
	}
}

// AddDir creates a directory entry.
func (m *MemFS) AddDir(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[filepath.Clean(path)] = true
}

// ReadFile returns a copy of the file content.
func (m *MemFS) ReadFile(path string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.files[filepath.Clean(path)]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), f.data...), true
}

// Exists reports whether a file exists at path.
func (m *MemFS) Exists(path string) bool {
	_, ok := m.ReadFile(path)
	return ok
}

func (m *MemFS) ListRegular(dir string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dir = filepath.Clean(dir)
	if !m.dirs[dir] {
		return nil, &fs.PathError{Op: "open", Path: dir, Err: fs.ErrNotExist}
	}

	var names []string
	for p := range m.files {
		if filepath.Dir(p) == dir {
			names = append(names, filepath.Base(p))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemFS) Stat(path string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	path = filepath.Clean(path)
	if err := m.StatErr[path]; err != nil {
		return FileInfo{}, &fs.PathError{Op: "stat", Path: path, Err: err}
	}
	f, ok := m.files[path]
	if !ok {
		return FileInfo{}, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
	}
	return FileInfo{
		Path:  path,
		Size:  int64(len(f.data)),
		Mode:  f.mode,
		MTime: f.mtime,
		BTime: f.btime,
		Inode: f.inode,
	}, nil
}

func (m *MemFS) CopyFile(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	src, dst = filepath.Clean(src), filepath.Clean(dst)
	if err := m.CopyErr[src]; err != nil {
		return &fs.PathError{Op: "copy", Path: src, Err: err}
	}
	f, ok := m.files[src]
	if !ok {
		return &fs.PathError{Op: "open", Path: src, Err: fs.ErrNotExist}
	}
	if !m.dirs[filepath.Dir(dst)] {
		return &fs.PathError{Op: "create", Path: dst, Err: fs.ErrNotExist}
	}

	cp := *f
	cp.data = append([]byte(nil), f.data...)
	cp.inode = uint64(len(m.files) + 1)
	// Birth time is carried over too, unlike on a real filesystem.
	m.files[dst] = &cp
	return nil
}

func (m *MemFS) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path = filepath.Clean(path)
	if err := m.RemoveErr[path]; err != nil {
		return &fs.PathError{Op: "remove", Path: path, Err: err}
	}
	if _, ok := m.files[path]; !ok {
		return &fs.PathError{Op: "remove", Path: path, Err: fs.ErrNotExist}
	}
	delete(m.files, path)
	return nil
}

func (m *MemFS) MkdirAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path = filepath.Clean(path)
	if _, ok := m.files[path]; ok {
		return fmt.Errorf("mkdir %s: %w", path, fs.ErrExist)
	}
	for p := path; ; p = filepath.Dir(p) {
		m.dirs[p] = true
		if p == filepath.Dir(p) {
			break
		}
	}
	return nil
}
