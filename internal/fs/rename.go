package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

// Replace atomically renames oldPath over newPath and then syncs the parent
// directory, so the rename itself survives a crash. Both paths must live on
// the same filesystem; a cross-device rename is reported, never emulated
// with a copy, because a copy would expose partial content.
func Replace(oldPath, newPath string) error {
	if err := os.Rename(oldPath, newPath); err != nil {
		if isCrossDevice(err) {
			return fmt.Errorf("atomic rename not possible across filesystems: %w", err)
		}
		return err
	}

	if err := syncDir(filepath.Dir(newPath)); err != nil {
		return fmt.Errorf("syncing directory: %w", err)
	}
	return nil
}
