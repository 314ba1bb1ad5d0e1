package worker

import (
	"time"

	"github.com/google/uuid"
)

// Job asks the worker for one complete housekeeping run.
type Job struct {
	ID          string
	Trigger     string // once, schedule or watch
	RequestedAt time.Time
}

// NewJob returns a job with a fresh run id.
func NewJob(trigger string, at time.Time) Job {
	return Job{
		ID:          uuid.NewString(),
		Trigger:     trigger,
		RequestedAt: at,
	}
}

// Clock supplies the reference time each stage classifies against.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
func SystemClock() Clock { return systemClock{} }
