// Package runinfo identifies one daemon run: a random instance ID,
// its start time, and its own PID. oomwatchd attaches the instance ID
// to every structured log line so operators can correlate a single run
// across logs; the metrics endpoint and the status file do not carry
// it.
package runinfo

import (
	"os"
	"time"

	"github.com/google/uuid"
)

// Info is immutable for the lifetime of one daemon process.
type Info struct {
	InstanceID string
	StartedAt  time.Time
	PID        int
}

// New stamps a fresh Info for the current process.
func New() Info {
	return Info{
		InstanceID: uuid.NewString(),
		StartedAt:  time.Now(),
		PID:        os.Getpid(),
	}
}
