package report

import (
	"strconv"
	"time"

	"github.com/raoulx24/backup-retention/internal/snapshot"
)

// Default report file names inside the log directory.
const (
	InventoryFile = "backupsFrom.log"
	CopyFile      = "backupsTo.log"
)

var (
	InventoryHeader = []string{"name", "size_bytes", "created_at_utc", "modified_at_utc"}
	CopyHeader      = []string{"name", "size_bytes", "created_at_utc", "modified_at_utc", "action", "status"}
)

// Copy report actions and statuses.
const (
	ActionCopy = "copy"
	ActionSkip = "skip"

	StatusCopied       = "copied"
	StatusCopiedDryRun = "copied(dry-run)"
	StatusSkipped      = "skipped"
	StatusError        = "error"
)

// Timestamp renders t as an ISO-8601 instant in UTC. The fraction is
// omitted when zero and otherwise printed as 3, 6 or 9 digits.
func Timestamp(t time.Time) string {
	t = t.UTC()
	layout := "2006-01-02T15:04:05Z"
	switch ns := t.Nanosecond(); {
	case ns == 0:
	case ns%int(time.Millisecond) == 0:
		layout = "2006-01-02T15:04:05.000Z"
	case ns%int(time.Microsecond) == 0:
		layout = "2006-01-02T15:04:05.000000Z"
	default:
		layout = "2006-01-02T15:04:05.000000000Z"
	}
	return t.Format(layout)
}

// InventoryRow is the inventory line of a resolved file.
func InventoryRow(r snapshot.Record) []string {
	return []string{r.Name, strconv.FormatInt(r.Size, 10), Timestamp(r.CreatedAt), Timestamp(r.ModifiedAt)}
}

// InventoryFailedRow keeps the name of a file whose attributes were unreadable
// and leaves the other fields empty.
func InventoryFailedRow(name string) []string {
	return []string{name, "", "", "", ""}
}

// CopyRow is the copy report line of a file that reached a terminal state
// other than error.
func CopyRow(r snapshot.Record, action, status string) []string {
	return append(InventoryRow(r), action, status)
}

// CopyErrorRow records a failure with its detail as an extra field. A nil
// record means the attributes were never resolved; action may be empty then.
func CopyErrorRow(name string, r *snapshot.Record, action string, detail error) []string {
	row := []string{name, "", "", ""}
	if r != nil {
		row = InventoryRow(*r)
	}
	return append(row, action, StatusError, detail.Error())
}
