package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// implements file copying with source-change detection.
// The copy lands in a hidden temporary file next to dst and is renamed over dst,
// so readers of the destination never observe a half-written file. Mode and
// modification time of the source are carried over.

func copyFile(ctx context.Context, f FS, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	orig, err := f.Stat(src)
	if err != nil {
		return err
	}

	tmp := filepath.Join(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp")
	if err := copyOnce(src, tmp, orig); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	now, err := f.Stat(src)
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if sourceChanged(orig, now) {
		_ = os.Remove(tmp)
		return fmt.Errorf("source changed during copy")
	}

	if err := Replace(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func sourceChanged(orig, now FileInfo) bool {
	if now.Inode != 0 && orig.Inode != 0 && now.Inode != orig.Inode {
		return true
	}
	if !now.MTime.Equal(orig.MTime) {
		return true
	}
	if now.Size != orig.Size {
		return true
	}
	return false
}

func copyOnce(src, dst string, info FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode.Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	// OpenFile applies the umask; set the exact permission bits afterwards.
	if err := os.Chmod(dst, info.Mode.Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, info.MTime, info.MTime)
}
