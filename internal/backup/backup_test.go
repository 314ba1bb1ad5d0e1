package backup

import (
	"context"
	"encoding/csv"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	appErrors "github.com/raoulx24/backup-retention/internal/errors"
	rfs "github.com/raoulx24/backup-retention/internal/fs"
	"github.com/raoulx24/backup-retention/internal/logging"
	"github.com/raoulx24/backup-retention/internal/report"
)

const day = 24 * time.Hour

var now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func readRecords(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening report: %v", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("parsing report: %v", err)
	}
	return records
}

func newFixture() *rfs.MemFS {
	m := rfs.NewMemFS()
	m.AddFile("/src/a.txt", []byte("aaa"), now.Add(-10*day), now.Add(-10*day))
	m.AddFile("/src/b.txt", []byte("bb"), now.Add(-1*day), now.Add(-1*day))
	m.AddDir("/dst")
	return m
}

func TestRunCopiesRecentAndSkipsOld(t *testing.T) {
	g := NewWithT(t)
	m := newFixture()
	reportPath := filepath.Join(t.TempDir(), report.CopyFile)

	res, err := New(m, logging.Nop()).Run(context.Background(), "/src", "/dst", 3, now, reportPath, false)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(res.Outcomes).To(Equal(map[string]Outcome{"a.txt": Skipped, "b.txt": Copied}))
	g.Expect(res.Count(Copied)).To(Equal(1))

	g.Expect(m.Exists("/dst/a.txt")).To(BeFalse())
	data, ok := m.ReadFile("/dst/b.txt")
	g.Expect(ok).To(BeTrue())
	g.Expect(string(data)).To(Equal("bb"))

	g.Expect(readRecords(t, reportPath)).To(Equal([][]string{
		report.CopyHeader,
		{"a.txt", "3", "2024-04-30T12:00:00Z", "2024-04-30T12:00:00Z", "skip", "skipped"},
		{"b.txt", "2", "2024-05-09T12:00:00Z", "2024-05-09T12:00:00Z", "copy", "copied"},
	}))
}

func TestRunDryRunMatchesRealClassification(t *testing.T) {
	g := NewWithT(t)
	dir := t.TempDir()

	dryFS := newFixture()
	dryReport := filepath.Join(dir, "dry.log")
	dry, err := New(dryFS, logging.Nop()).Run(context.Background(), "/src", "/dst", 3, now, dryReport, true)
	g.Expect(err).NotTo(HaveOccurred())

	names, err := dryFS.ListRegular("/dst")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(names).To(BeEmpty())

	liveFS := newFixture()
	liveReport := filepath.Join(dir, "live.log")
	_, err = New(liveFS, logging.Nop()).Run(context.Background(), "/src", "/dst", 3, now, liveReport, false)
	g.Expect(err).NotTo(HaveOccurred())

	dryRows, liveRows := readRecords(t, dryReport), readRecords(t, liveReport)
	g.Expect(dryRows).To(HaveLen(len(liveRows)))
	for i := range liveRows {
		g.Expect(dryRows[i][:5]).To(Equal(liveRows[i][:5]))
	}
	g.Expect(dryRows[2][5]).To(Equal(report.StatusCopiedDryRun))
	g.Expect(dry.Count(CopiedDryRun)).To(Equal(1))
}

func TestRunOverwritesExistingDestination(t *testing.T) {
	g := NewWithT(t)
	m := newFixture()
	m.AddFile("/dst/b.txt", []byte("stale content"), now, now)

	res, err := New(m, logging.Nop()).Run(context.Background(), "/src", "/dst", 3, now, filepath.Join(t.TempDir(), report.CopyFile), false)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(res.Errors).To(BeEmpty())

	data, _ := m.ReadFile("/dst/b.txt")
	g.Expect(string(data)).To(Equal("bb"))
}

func TestRunRecordsPerFileFailures(t *testing.T) {
	g := NewWithT(t)
	m := rfs.NewMemFS()
	recent := now.Add(-time.Hour)
	m.AddFile("/src/a.txt", []byte("a"), recent, recent)
	m.AddFile("/src/b.txt", []byte("b"), recent, recent)
	m.AddFile("/src/c.txt", []byte("c"), recent, recent)
	m.AddDir("/dst")
	m.CopyErr["/src/a.txt"] = fs.ErrPermission
	m.StatErr["/src/b.txt"] = fs.ErrPermission
	reportPath := filepath.Join(t.TempDir(), report.CopyFile)

	res, err := New(m, logging.Nop()).Run(context.Background(), "/src", "/dst", 3, now, reportPath, false)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(res.Count(Failed)).To(Equal(2))
	g.Expect(res.Count(Copied)).To(Equal(1))
	g.Expect(appErrors.KindOf(res.Errors[0])).To(Equal(appErrors.Copy))
	g.Expect(appErrors.KindOf(res.Errors[1])).To(Equal(appErrors.AttributeRead))
	g.Expect(m.Exists("/dst/c.txt")).To(BeTrue())

	rows := readRecords(t, reportPath)
	g.Expect(rows).To(HaveLen(4))

	g.Expect(rows[1][0]).To(Equal("a.txt"))
	g.Expect(rows[1][1]).To(Equal("1"))
	g.Expect(rows[1][4:6]).To(Equal([]string{"copy", "error"}))
	g.Expect(rows[1][6]).To(ContainSubstring("permission denied"))

	g.Expect(rows[2][:6]).To(Equal([]string{"b.txt", "", "", "", "", "error"}))
	g.Expect(rows[2]).To(HaveLen(7))

	g.Expect(rows[3][4:]).To(Equal([]string{"copy", "copied"}))
}

func TestRunZeroDaysCopiesFileCreatedNow(t *testing.T) {
	g := NewWithT(t)
	m := rfs.NewMemFS()
	m.AddFile("/src/fresh.txt", []byte("f"), now, now)
	m.AddDir("/dst")

	res, err := New(m, logging.Nop()).Run(context.Background(), "/src", "/dst", 0, now, filepath.Join(t.TempDir(), report.CopyFile), false)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(res.Outcomes["fresh.txt"]).To(Equal(Copied))
}

func TestRunVeryLongRetentionCopiesEverything(t *testing.T) {
	g := NewWithT(t)
	m := newFixture()

	res, err := New(m, logging.Nop()).Run(context.Background(), "/src", "/dst", 110000, now, filepath.Join(t.TempDir(), report.CopyFile), false)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(res.Cutoff.After(now)).To(BeFalse())
	g.Expect(res.Outcomes).To(Equal(map[string]Outcome{"a.txt": Copied, "b.txt": Copied}))
}

func TestRunCopyFailureWhenDestinationMissing(t *testing.T) {
	g := NewWithT(t)
	m := rfs.NewMemFS()
	m.AddFile("/src/b.txt", []byte("b"), now, now)
	reportPath := filepath.Join(t.TempDir(), report.CopyFile)

	res, err := New(m, logging.Nop()).Run(context.Background(), "/src", "/missing", 3, now, reportPath, false)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(res.Outcomes["b.txt"]).To(Equal(Failed))
}

func TestRunCanceledLeavesPreviousReport(t *testing.T) {
	g := NewWithT(t)
	m := newFixture()
	reportPath := filepath.Join(t.TempDir(), report.CopyFile)
	g.Expect(os.WriteFile(reportPath, []byte("previous\n"), 0o644)).To(Succeed())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(m, logging.Nop()).Run(ctx, "/src", "/dst", 3, now, reportPath, false)
	g.Expect(err).To(MatchError(context.Canceled))

	data, err := os.ReadFile(reportPath)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(string(data)).To(Equal("previous\n"))
	_, err = os.Stat(reportPath + report.TmpSuffix)
	g.Expect(os.IsNotExist(err)).To(BeTrue())
}

func TestRunWithRealFilesystem(t *testing.T) {
	g := NewWithT(t)
	src, dst := t.TempDir(), t.TempDir()
	g.Expect(os.WriteFile(filepath.Join(src, "new.txt"), []byte("fresh"), 0o640)).To(Succeed())
	g.Expect(os.WriteFile(filepath.Join(dst, "new.txt"), []byte("old"), 0o644)).To(Succeed())
	reportPath := filepath.Join(t.TempDir(), report.CopyFile)

	// A file written a moment ago is recent under any creation-time source.
	res, err := New(nil, nil).Run(context.Background(), src, dst, 3, time.Now(), reportPath, false)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(res.Outcomes["new.txt"]).To(Equal(Copied))

	data, err := os.ReadFile(filepath.Join(dst, "new.txt"))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(string(data)).To(Equal("fresh"))

	rows := readRecords(t, reportPath)
	g.Expect(strings.Join(rows[1][4:], ",")).To(Equal("copy,copied"))
}
