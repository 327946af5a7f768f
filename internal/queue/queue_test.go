package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryQueuePushPop(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()

	err := q.Push(ctx, &Job{ID: "1", URL: "https://example.com/p/1"})
	require.NoError(t, err)

	size, err := q.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, size)

	job, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", job.ID)

	size, err = q.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, size)
}

func TestInMemoryQueuePriority(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()

	require.NoError(t, q.Push(ctx, &Job{ID: "low", Priority: 1}))
	require.NoError(t, q.Push(ctx, &Job{ID: "high", Priority: 10}))
	require.NoError(t, q.Push(ctx, &Job{ID: "mid", Priority: 5}))

	first, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "high", first.ID)

	second, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "mid", second.ID)
}

func TestInMemoryQueueClosed(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()

	require.NoError(t, q.Close())

	err := q.Push(ctx, &Job{ID: "1"})
	assert.ErrorIs(t, err, ErrQueueClosed)

	_, err = q.Pop(ctx)
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestInMemoryQueuePopContextCancelled(t *testing.T) {
	q := NewInMemoryQueue()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := q.Pop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInMemoryQueueUsableAfterCancelledPop(t *testing.T) {
	q := NewInMemoryQueue()

	ctx, cancel := context.WithCancel(context.Background())

	popErr := make(chan error, 1)
	go func() {
		_, err := q.Pop(ctx)
		popErr <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-popErr, context.Canceled)

	require.NoError(t, q.Push(context.Background(), &Job{ID: "after"}))

	job, err := q.Pop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "after", job.ID)

	require.NoError(t, q.Close())
	_, err = q.Pop(context.Background())
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestInMemoryQueuePopBlocksUntilPush(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()

	go func() {
		time.Sleep(20 * time.Millisecond)
		q.Push(ctx, &Job{ID: "late"})
	}()

	job, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "late", job.ID)
}
