// Package queue feeds product page URLs to scrape workers. Two
// implementations exist: an in-process queue for single-binary batch runs
// and a Redis Streams queue for distributed workers.
package queue

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrQueueEmpty  = errors.New("queue is empty")
	ErrQueueClosed = errors.New("queue is closed")
)

// Job is one product page to scrape.
type Job struct {
	ID        string
	URL       string
	Retailer  string
	Priority  int
	Retries   int
	CreatedAt time.Time
}

type Queue interface {
	Push(ctx context.Context, job *Job) error
	Pop(ctx context.Context) (*Job, error)
	Size(ctx context.Context) (int, error)
	Close() error
}

type InMemoryQueue struct {
	jobs   []*Job
	mu     sync.Mutex
	cond   *sync.Cond
	closed bool
}

func NewInMemoryQueue() *InMemoryQueue {
	q := &InMemoryQueue{
		jobs: make([]*Job, 0),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *InMemoryQueue) Push(_ context.Context, job *Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	q.jobs = append(q.jobs, job)
	q.sortByPriority()
	q.cond.Signal()

	return nil
}

// Pop blocks until a job is available, the queue is closed, or ctx is
// cancelled. Cancellation wakes the waiter via Broadcast so the condition
// variable's lock handoff stays balanced.
func (q *InMemoryQueue) Pop(ctx context.Context) (*Job, error) {
	stop := context.AfterFunc(ctx, q.cond.Broadcast)
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.jobs) == 0 && !q.closed {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		q.cond.Wait()
	}

	if len(q.jobs) == 0 {
		return nil, ErrQueueClosed
	}

	job := q.jobs[0]
	q.jobs = q.jobs[1:]

	return job, nil
}

func (q *InMemoryQueue) Size(_ context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs), nil
}

func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()

	return nil
}

func (q *InMemoryQueue) sortByPriority() {
	for i := 0; i < len(q.jobs)-1; i++ {
		for j := 0; j < len(q.jobs)-i-1; j++ {
			if q.jobs[j].Priority < q.jobs[j+1].Priority {
				q.jobs[j], q.jobs[j+1] = q.jobs[j+1], q.jobs[j]
			}
		}
	}
}
