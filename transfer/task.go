package transfer

import (
	"time"

	"github.com/viant/wfsync/layer"
)

// Mode is the transfer mode chosen for a layer.
type Mode string

const (
	ModeFull        Mode = "full"
	ModeIncremental Mode = "incremental"
	ModeAuto        Mode = "auto"
)

// Status is the outcome of a task.
type Status string

const (
	StatusOK     Status = "ok"
	StatusNoop   Status = "noop"
	StatusFailed Status = "failed"
	// StatusNotRun marks tasks abandoned after an earlier layer failed.
	StatusNotRun Status = "not-run"
)

// Task is the planned transfer of one layer.
type Task struct {
	Layer layer.ID
	// Mode is the requested mode; an auto task records the resolved bounds
	// in From and To.
	Mode Mode
	// Full is set when the layer is replaced rather than patched.
	Full bool
	// Noop is set when the window is empty and nothing is transferred.
	Noop     bool
	From, To time.Time
	CQL      string
	URI      string
	CountURI string
	Table    string
}

// Result is the outcome of one task.
type Result struct {
	Task
	Status    Status
	Features  int
	Bytes     int
	Watermark time.Time
	Started   time.Time
	Finished  time.Time
	Err       error
}

// Duration is the wall time the task took.
func (r Result) Duration() time.Duration { return r.Finished.Sub(r.Started) }

// Report is the outcome of a run.
type Report struct {
	Results  []Result
	Started  time.Time
	Finished time.Time
}

// Failed returns the failed results.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			out = append(out, res)
		}
	}
	return out
}

// Totals sums features and bytes transferred by successful tasks.
func (r *Report) Totals() (features, bytes int) {
	for _, res := range r.Results {
		if res.Status == StatusOK {
			features += res.Features
			bytes += res.Bytes
		}
	}
	return features, bytes
}
