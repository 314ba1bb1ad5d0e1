//go:build unix

package fs

import "os"

// syncDir flushes directory metadata so a completed rename is durable.

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
