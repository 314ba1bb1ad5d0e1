package retention

import (
	"math"
	"time"
)

const day = 24 * time.Hour

// maxDays is the largest retention period a time.Duration can express.
const maxDays = int(math.MaxInt64 / int64(day))

// Class is the age classification of a file. The zero value is Unknown and
// is neither kept nor deleted by a caller comparing against Recent or Old.
type Class int

const (
	Unknown Class = iota
	Recent
	Old
)

func (c Class) String() string {
	switch c {
	case Recent:
		return "recent"
	case Old:
		return "old"
	}
	return "unknown"
}

// Cutoff returns now minus days whole days. Periods too long for a
// time.Duration yield the zero time, before which no file can be created.
func Cutoff(now time.Time, days int) time.Time {
	if days >= maxDays {
		return time.Time{}
	}
	return now.Add(-time.Duration(days) * day)
}

// Classify reports Recent for createdAt at or after cutoff, Old otherwise.
func Classify(createdAt, cutoff time.Time) Class {
	if createdAt.Before(cutoff) {
		return Old
	}
	return Recent
}
