// Package report writes the CSV audit reports of a run. A report becomes
// visible only through an atomic rename, so readers see either the previous
// report or the complete new one.
package report

import (
	"bufio"
	"fmt"
	"os"

	appErrors "github.com/raoulx24/backup-retention/internal/errors"
	"github.com/raoulx24/backup-retention/internal/fs"
)

// TmpSuffix is appended to the target path for the file being written.
const TmpSuffix = ".tmp"

// Writer accumulates rows in a temporary file until Commit.
type Writer struct {
	target string
	tmp    string
	file   *os.File
	buf    *bufio.Writer
	err    error
	rows   int
	done   bool
}

// Create opens target+".tmp" in the target's directory, truncating any
// artifact left by an interrupted run, and writes the header row.
func Create(target string, header []string) (*Writer, error) {
	tmp := target + TmpSuffix
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, appErrors.Wrap(appErrors.ReportCommit, "create report", tmp, err)
	}

	w := &Writer{
		target: target,
		tmp:    tmp,
		file:   f,
		buf:    bufio.NewWriter(f),
	}
	w.writeLine(header)
	return w, nil
}

// Write appends one data row. Write errors are sticky and reported by Commit.
func (w *Writer) Write(row []string) {
	w.writeLine(row)
	w.rows++
}

// Rows is the number of data rows written so far.
func (w *Writer) Rows() int {
	return w.rows
}

func (w *Writer) writeLine(row []string) {
	if w.err != nil {
		return
	}
	if _, err := w.buf.WriteString(FormatRow(row) + "\n"); err != nil {
		w.err = err
	}
}

// Commit flushes and syncs the temporary file and renames it over the target.
// Any failure is a ReportCommitError and leaves the previous target untouched.
func (w *Writer) Commit() error {
	if w.done {
		return appErrors.Wrap(appErrors.ReportCommit, "commit report", w.target, fmt.Errorf("writer already closed"))
	}
	w.done = true

	err := w.err
	if err == nil {
		err = w.buf.Flush()
	}
	if err == nil {
		err = w.file.Sync()
	}
	if cerr := w.file.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = fs.Replace(w.tmp, w.target)
	}
	if err != nil {
		return appErrors.Wrap(appErrors.ReportCommit, "commit report", w.target, err)
	}
	return nil
}

// Abort discards the temporary file. It is a no-op after Commit.
func (w *Writer) Abort() {
	if w.done {
		return
	}
	w.done = true
	_ = w.file.Close()
	_ = os.Remove(w.tmp)
}
