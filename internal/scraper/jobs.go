package scraper

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrJobNotFound = errors.New("job not found")

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// BatchJob tracks one asynchronous scrape of a URL list.
type BatchJob struct {
	ID          string     `json:"id"`
	Status      JobStatus  `json:"status"`
	TotalURLs   int        `json:"total_urls"`
	Succeeded   int        `json:"succeeded"`
	Failed      int        `json:"failed"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// JobTracker runs batch scrapes in the background and keeps their state
// in memory for status queries. Jobs run on the tracker's base context,
// not the submitting request's, so they survive the request ending.
type JobTracker struct {
	service *Service
	baseCtx context.Context
	mu      sync.RWMutex
	jobs    map[string]*BatchJob
}

func NewJobTracker(ctx context.Context, service *Service) *JobTracker {
	return &JobTracker{
		service: service,
		baseCtx: ctx,
		jobs:    make(map[string]*BatchJob),
	}
}

// Submit registers a batch job and starts scraping it in the background.
func (t *JobTracker) Submit(urls []string) *BatchJob {
	ctx := t.baseCtx
	job := &BatchJob{
		ID:        uuid.New().String(),
		Status:    JobPending,
		TotalURLs: len(urls),
		CreatedAt: time.Now().UTC(),
	}

	t.mu.Lock()
	t.jobs[job.ID] = job
	t.mu.Unlock()

	go t.run(ctx, job.ID, urls)

	return job
}

// Get returns a snapshot of a job's state.
func (t *JobTracker) Get(jobID string) (*BatchJob, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	job, ok := t.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	snapshot := *job
	return &snapshot, nil
}

func (t *JobTracker) run(ctx context.Context, jobID string, urls []string) {
	now := time.Now().UTC()
	t.update(jobID, func(j *BatchJob) {
		j.Status = JobRunning
		j.StartedAt = &now
	})

	results := t.service.ScrapeAll(ctx, urls)

	var succeeded, failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
		} else {
			succeeded++
		}
	}

	done := time.Now().UTC()
	t.update(jobID, func(j *BatchJob) {
		j.Succeeded = succeeded
		j.Failed = failed
		j.CompletedAt = &done
		if ctx.Err() != nil {
			j.Status = JobFailed
			j.Error = ctx.Err().Error()
			return
		}
		j.Status = JobCompleted
	})
}

func (t *JobTracker) update(jobID string, fn func(*BatchJob)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if job, ok := t.jobs[jobID]; ok {
		fn(job)
	}
}
