package schedule

import (
	"context"
	"time"
)

// Job is a unit of scheduled work.
type Job interface {
	// Name identifies the job in logs and status output.
	Name() string

	// Run executes the job once.
	Run(ctx context.Context) error

	// Spec returns the cron expression (with seconds field), e.g.
	// "0 30 16 * * MON-FRI".
	Spec() string
}

// Result records one job execution.
type Result struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// maxResults bounds per-job history kept in memory.
const maxResults = 100

// history accumulates recent results for one job.
type history struct {
	results []Result
}

func (h *history) add(r Result) {
	h.results = append(h.results, r)
	if len(h.results) > maxResults {
		h.results = h.results[len(h.results)-maxResults:]
	}
}

func (h *history) successRate() float64 {
	if len(h.results) == 0 {
		return 0
	}
	ok := 0
	for _, r := range h.results {
		if r.Success {
			ok++
		}
	}
	return float64(ok) / float64(len(h.results))
}

func (h *history) last() *Result {
	if len(h.results) == 0 {
		return nil
	}
	r := h.results[len(h.results)-1]
	return &r
}
