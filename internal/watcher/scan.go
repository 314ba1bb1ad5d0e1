package watcher

import (
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/raoulx24/backup-retention/internal/fs"
)

// fingerprint hashes the listing of dir. Files that vanish between listing
// and stat still contribute their name.
func fingerprint(f fs.FS, dir string) (uint64, int, error) {
	names, err := f.ListRegular(dir)
	if err != nil {
		return 0, 0, err
	}

	h := xxhash.New()
	buf := make([]byte, 0, 128)
	for _, name := range names {
		buf = append(buf[:0], name...)
		buf = append(buf, 0)
		if info, err := f.Stat(filepath.Join(dir, name)); err == nil {
			buf = strconv.AppendInt(buf, info.Size, 10)
			buf = append(buf, 0)
			buf = strconv.AppendInt(buf, info.MTime.UnixNano(), 10)
		}
		buf = append(buf, '\n')
		_, _ = h.Write(buf)
	}
	return h.Sum64(), len(names), nil
}
