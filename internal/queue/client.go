package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/podcastgen/internal/config"
)

// Enqueuer is what the API and workers need from the queue.
type Enqueuer interface {
	EnqueuePodcast(ctx context.Context, payload PodcastGeneratePayload) error
	EnqueueBatch(ctx context.Context, payload PodcastBatchPayload) error
	EnqueueWebhook(ctx context.Context, payload WebhookDeliverPayload) error
}

type Client struct {
	client   *asynq.Client
	maxRetry int
	timeout  time.Duration
}

func NewClient(cfg config.RedisConfig, worker config.WorkerConfig) *Client {
	return &Client{
		client:   asynq.NewClient(RedisOpt(cfg)),
		maxRetry: worker.MaxRetry,
		timeout:  worker.TaskTimeout,
	}
}

func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Task IDs are the job IDs so a job cannot be enqueued twice.
func (c *Client) EnqueuePodcast(ctx context.Context, payload PodcastGeneratePayload) error {
	return c.enqueue(ctx, TypePodcastGenerate, payload,
		asynq.TaskID(payload.JobID), asynq.Queue(QueueDefault),
		asynq.MaxRetry(c.maxRetry), asynq.Timeout(c.timeout))
}

func (c *Client) EnqueueBatch(ctx context.Context, payload PodcastBatchPayload) error {
	return c.enqueue(ctx, TypePodcastBatch, payload,
		asynq.TaskID(payload.BatchID), asynq.Queue(QueueLow),
		asynq.MaxRetry(0), asynq.Timeout(4*c.timeout))
}

func (c *Client) EnqueueWebhook(ctx context.Context, payload WebhookDeliverPayload) error {
	return c.enqueue(ctx, TypeWebhookDeliver, payload,
		asynq.Queue(QueueCritical), asynq.MaxRetry(5), asynq.Timeout(30*time.Second))
}

func (c *Client) enqueue(ctx context.Context, taskType string, payload any, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(taskType, data)
	if _, err := c.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}
