package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// OSFS is the concrete implementation of FS backed by the local OS filesystem.
// Platform-specific details (birth time, inode extraction, directory sync)
// are handled in build-tagged files.
type OSFS struct{}

func New() *OSFS {
	return &OSFS{}
}

func (o *OSFS) ListRegular(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		mode := e.Type()
		switch {
		case mode.IsRegular():
			names = append(names, e.Name())
		case mode&os.ModeSymlink != 0:
			st, err := os.Stat(filepath.Join(dir, e.Name()))
			if err == nil && st.Mode().IsRegular() {
				names = append(names, e.Name())
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

func (o *OSFS) Stat(path string) (FileInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}

	return FileInfo{
		Path:  path,
		Size:  st.Size(),
		Mode:  st.Mode(),
		MTime: st.ModTime(),
		BTime: birthTime(path, st),
		Inode: fileID(path, st),
	}, nil
}

func (o *OSFS) MkdirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}

func (o *OSFS) Remove(path string) error {
	return os.Remove(path)
}

func (o *OSFS) CopyFile(ctx context.Context, src, dst string) error {
	return copyFile(ctx, o, src, dst)
}
