package inventory

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	appErrors "github.com/raoulx24/backup-retention/internal/errors"
	"github.com/raoulx24/backup-retention/internal/fs"
	"github.com/raoulx24/backup-retention/internal/logging"
	"github.com/raoulx24/backup-retention/internal/report"
)

var now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func readReport(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	return string(data)
}

func TestRunWritesSortedInventory(t *testing.T) {
	g := NewWithT(t)
	m := fs.NewMemFS()
	m.AddFile("/src/b.txt", []byte("bb"), now.Add(-24*time.Hour), now.Add(-time.Hour))
	m.AddFile("/src/a.txt", []byte("a"), time.Time{}, now.Add(-2*time.Hour))
	m.AddDir("/src/sub")
	reportPath := filepath.Join(t.TempDir(), report.InventoryFile)

	res, err := New(m, logging.Nop()).Run(context.Background(), "/src", reportPath)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(res.Files).To(Equal(2))

	g.Expect(readReport(t, reportPath)).To(Equal(
		"name,size_bytes,created_at_utc,modified_at_utc\n" +
			"a.txt,1,2024-05-10T10:00:00Z,2024-05-10T10:00:00Z\n" +
			"b.txt,2,2024-05-09T12:00:00Z,2024-05-10T11:00:00Z\n"))

	g.Expect(m.Exists("/src/a.txt")).To(BeTrue())
	g.Expect(m.Exists("/src/b.txt")).To(BeTrue())
}

func TestRunIsIdempotent(t *testing.T) {
	g := NewWithT(t)
	m := fs.NewMemFS()
	m.AddFile("/src/a.txt", []byte("a"), now, now)
	m.AddFile("/src/q\"uote,d.txt", []byte("q"), now, now)
	reportPath := filepath.Join(t.TempDir(), report.InventoryFile)
	stage := New(m, logging.Nop())

	_, err := stage.Run(context.Background(), "/src", reportPath)
	g.Expect(err).NotTo(HaveOccurred())
	first := readReport(t, reportPath)

	_, err = stage.Run(context.Background(), "/src", reportPath)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(readReport(t, reportPath)).To(Equal(first))
}

func TestRunEscapesNames(t *testing.T) {
	g := NewWithT(t)
	m := fs.NewMemFS()
	name := "a, \"b\"\nc.txt"
	m.AddFile(filepath.Join("/src", name), []byte("x"), now, now)
	reportPath := filepath.Join(t.TempDir(), report.InventoryFile)

	_, err := New(m, logging.Nop()).Run(context.Background(), "/src", reportPath)
	g.Expect(err).NotTo(HaveOccurred())

	records, err := csv.NewReader(strings.NewReader(readReport(t, reportPath))).ReadAll()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(records).To(HaveLen(2))
	g.Expect(records[1][0]).To(Equal(name))
}

func TestRunKeepsUnreadableFiles(t *testing.T) {
	g := NewWithT(t)
	m := fs.NewMemFS()
	m.AddFile("/src/a.txt", []byte("a"), now, now)
	m.AddFile("/src/b.txt", []byte("b"), now, now)
	m.AddFile("/src/c.txt", []byte("c"), now, now)
	m.StatErr["/src/b.txt"] = errors.New("permission denied")
	reportPath := filepath.Join(t.TempDir(), report.InventoryFile)

	res, err := New(m, logging.Nop()).Run(context.Background(), "/src", reportPath)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(res.Files).To(Equal(3))
	g.Expect(res.Errors).To(HaveLen(1))

	lines := strings.Split(strings.TrimSuffix(readReport(t, reportPath), "\n"), "\n")
	g.Expect(lines).To(HaveLen(4))
	g.Expect(lines[1]).To(HavePrefix("a.txt,1,"))
	g.Expect(lines[2]).To(Equal("b.txt,,,,"))
	g.Expect(lines[3]).To(HavePrefix("c.txt,1,"))
}

func TestRunWithRealFilesystem(t *testing.T) {
	g := NewWithT(t)
	src := t.TempDir()
	g.Expect(os.WriteFile(filepath.Join(src, "a.txt"), []byte("hello"), 0o644)).To(Succeed())
	reportPath := filepath.Join(t.TempDir(), report.InventoryFile)

	_, err := New(nil, nil).Run(context.Background(), src, reportPath)
	g.Expect(err).NotTo(HaveOccurred())

	records, err := csv.NewReader(strings.NewReader(readReport(t, reportPath))).ReadAll()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(records).To(HaveLen(2))
	g.Expect(records[1][0]).To(Equal("a.txt"))
	g.Expect(records[1][1]).To(Equal("5"))

	created, err := time.Parse(time.RFC3339Nano, records[1][2])
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(created.Before(time.Unix(0, 0))).To(BeFalse())
}

func TestRunMissingReportDirectory(t *testing.T) {
	g := NewWithT(t)
	m := fs.NewMemFS()
	m.AddDir("/src")

	_, err := New(m, logging.Nop()).Run(context.Background(), "/src", filepath.Join(t.TempDir(), "missing", report.InventoryFile))
	g.Expect(appErrors.KindOf(err)).To(Equal(appErrors.ReportCommit))
}
