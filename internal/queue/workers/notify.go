package workers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/podcastgen/internal/jobs"
	"github.com/nikhilbhutani/podcastgen/internal/podcast"
	"github.com/nikhilbhutani/podcastgen/internal/queue"
)

// Notification is the JSON body posted to a job's callback URL.
type Notification struct {
	Event    string               `json:"event"`
	JobID    string               `json:"job_id"`
	Status   jobs.Status          `json:"status"`
	URL      string               `json:"url,omitempty"`
	Error    string               `json:"error,omitempty"`
	Artifact *podcast.Artifact    `json:"artifact,omitempty"`
	Report   *podcast.BatchReport `json:"report,omitempty"`
}

func notify(ctx context.Context, q queue.Enqueuer, rec *jobs.Record, event string) {
	if rec.CallbackURL == "" || q == nil {
		return
	}
	body, err := json.Marshal(Notification{
		Event:    event,
		JobID:    rec.ID,
		Status:   rec.Status,
		URL:      rec.URL,
		Error:    rec.Error,
		Artifact: rec.Artifact,
		Report:   rec.Report,
	})
	if err != nil {
		podcast.Logger(ctx).Error("encode webhook payload", "job_id", rec.ID, "error", err)
		return
	}
	err = q.EnqueueWebhook(ctx, queue.WebhookDeliverPayload{
		DeliveryID: uuid.NewString(),
		JobID:      rec.ID,
		URL:        rec.CallbackURL,
		Event:      event,
		Payload:    string(body),
	})
	if err != nil {
		podcast.Logger(ctx).Error("failed to enqueue webhook", "job_id", rec.ID, "error", err)
	}
}

// retryable reports whether asynq will run the task again if it fails now.
func retryable(ctx context.Context, err error) bool {
	if errors.Is(err, podcast.ErrInvalidJob) {
		return false
	}
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return false
	}
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	return ok && retried < maxRetry
}
