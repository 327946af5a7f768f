package queue

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStreamQueue backs the job queue with a Redis stream plus a
// consumer group, so multiple scraper processes can share one backlog
// with at-least-once delivery.
type RedisStreamQueue struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string
}

func NewRedisStreamQueue(ctx context.Context, redisURL, stream, group, consumer string) (*RedisStreamQueue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	// MKSTREAM creates the stream with the group; BUSYGROUP just means
	// another worker got there first.
	err = client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &RedisStreamQueue{
		client:   client,
		stream:   stream,
		group:    group,
		consumer: consumer,
	}, nil
}

func (q *RedisStreamQueue) Push(ctx context.Context, job *Job) error {
	args := &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]interface{}{
			"id":         job.ID,
			"url":        job.URL,
			"retailer":   job.Retailer,
			"priority":   strconv.Itoa(job.Priority),
			"retries":    strconv.Itoa(job.Retries),
			"created_at": job.CreatedAt.Format(time.RFC3339Nano),
		},
	}

	if _, err := q.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to push job: %w", err)
	}
	return nil
}

func (q *RedisStreamQueue) Pop(ctx context.Context) (*Job, error) {
	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.group,
		Consumer: q.consumer,
		Streams:  []string{q.stream, ">"},
		Count:    1,
		Block:    5 * time.Second,
	}).Result()
	if err == redis.Nil {
		return nil, ErrQueueEmpty
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to read job: %w", err)
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return nil, ErrQueueEmpty
	}

	msg := streams[0].Messages[0]
	job := jobFromValues(msg.Values)

	if err := q.client.XAck(ctx, q.stream, q.group, msg.ID).Err(); err != nil {
		return nil, fmt.Errorf("failed to ack job: %w", err)
	}

	return job, nil
}

func (q *RedisStreamQueue) Size(ctx context.Context) (int, error) {
	n, err := q.client.XLen(ctx, q.stream).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get stream length: %w", err)
	}
	return int(n), nil
}

func (q *RedisStreamQueue) Close() error {
	return q.client.Close()
}

func jobFromValues(values map[string]interface{}) *Job {
	job := &Job{
		ID:       stringField(values, "id"),
		URL:      stringField(values, "url"),
		Retailer: stringField(values, "retailer"),
	}
	if v, err := strconv.Atoi(stringField(values, "priority")); err == nil {
		job.Priority = v
	}
	if v, err := strconv.Atoi(stringField(values, "retries")); err == nil {
		job.Retries = v
	}
	if t, err := time.Parse(time.RFC3339Nano, stringField(values, "created_at")); err == nil {
		job.CreatedAt = t
	}
	return job
}

func stringField(values map[string]interface{}, key string) string {
	s, _ := values[key].(string)
	return s
}
