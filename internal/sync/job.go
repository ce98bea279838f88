package sync

import (
	"context"
	"sync"
	"time"

	"github.com/doctorauto/patio-sync/pkg/metrics"
)

// JobName identifies the reconciliation job in logs and metrics.
const JobName = "board-sync"

// Status is a snapshot of the most recent reconciliation pass.
type Status struct {
	LastRunAt  *time.Time `json:"last_run_at"`
	LastError  *string    `json:"last_error"`
	Processed  int        `json:"processed"`
	Created    int        `json:"created"`
	Moved      int        `json:"moved"`
	Closed     int        `json:"closed"`
	Skipped    int        `json:"skipped"`
	TotalRuns  int64      `json:"total_runs"`
	TotalCards int64      `json:"total_cards"`
}

// Job adapts the sync service to the scheduler and keeps the status snapshot
// the API reports.
type Job struct {
	svc     *Service
	metrics *metrics.JobMetrics

	mu     sync.Mutex
	status Status
}

func NewJob(svc *Service, jobMetrics *metrics.JobMetrics) *Job {
	return &Job{svc: svc, metrics: jobMetrics}
}

func (j *Job) Name() string { return JobName }

// Run executes one reconciliation pass and records its outcome. Duration and
// success counters are the scheduler's concern; the job only accounts for
// the cards it touched.
func (j *Job) Run(ctx context.Context) error {
	start := time.Now()
	result, err := j.svc.SyncAll(ctx)
	j.metrics.AddCardsProcessed(JobName, result.Processed)
	j.record(start, result, err)
	return err
}

func (j *Job) record(ranAt time.Time, result Result, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	at := ranAt.UTC()
	j.status.LastRunAt = &at
	j.status.Processed = result.Processed
	j.status.Created = result.Created
	j.status.Moved = result.Moved
	j.status.Closed = result.Closed
	j.status.Skipped = result.Skipped
	j.status.TotalRuns++
	j.status.TotalCards += int64(result.Processed)
	if err != nil {
		msg := err.Error()
		j.status.LastError = &msg
	} else {
		j.status.LastError = nil
	}
}

// Status returns a copy of the latest snapshot.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}
