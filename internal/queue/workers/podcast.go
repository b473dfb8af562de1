package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/podcastgen/internal/jobs"
	"github.com/nikhilbhutani/podcastgen/internal/podcast"
	"github.com/nikhilbhutani/podcastgen/internal/queue"
	"github.com/nikhilbhutani/podcastgen/internal/webhook"
)

type PodcastWorker struct {
	runner podcast.JobRunner
	jobs   *jobs.Store
	queue  queue.Enqueuer
}

func NewPodcastWorker(runner podcast.JobRunner, store *jobs.Store, q queue.Enqueuer) *PodcastWorker {
	return &PodcastWorker{runner: runner, jobs: store, queue: q}
}

func (w *PodcastWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.PodcastGeneratePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	rec, err := w.jobs.Get(ctx, payload.JobID)
	if errors.Is(err, jobs.ErrNotFound) {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	if err != nil {
		return err
	}
	if rec.Status.Terminal() {
		podcast.Logger(ctx).Info("job already finished", "job_id", rec.ID, "status", rec.Status)
		return nil
	}
	if rec.Job == nil {
		return fmt.Errorf("job %s has no podcast request: %w", rec.ID, asynq.SkipRetry)
	}

	log := podcast.Logger(ctx).With("job_id", rec.ID)
	ctx = podcast.WithLogger(ctx, log)
	if _, err := w.jobs.Update(ctx, rec.ID, func(r *jobs.Record) {
		r.Status = jobs.StatusRunning
		r.Error = ""
	}); err != nil {
		return fmt.Errorf("mark running: %w", err)
	}

	job := *rec.Job
	job.ID = rec.ID
	art, genErr := w.runner.Generate(ctx, job, podcast.WithProgress(func(p podcast.Progress) {
		if _, err := w.jobs.Update(ctx, rec.ID, func(r *jobs.Record) { r.Progress = &p }); err != nil {
			log.Warn("progress update failed", "error", err)
		}
	}))

	if genErr != nil && retryable(ctx, genErr) {
		log.Warn("podcast generation failed, will retry", "error", genErr)
		if _, err := w.jobs.Update(ctx, rec.ID, func(r *jobs.Record) {
			r.Status = jobs.StatusQueued
			r.Error = genErr.Error()
		}); err != nil {
			log.Warn("job update failed", "error", err)
		}
		return genErr
	}

	final, err := w.jobs.Update(ctx, rec.ID, func(r *jobs.Record) {
		r.Artifact = art
		r.Status = jobs.StatusFailed
		if art != nil {
			r.Status = jobs.FromArtifact(art.Status)
			r.URL = art.URL
			r.Error = art.Reason
		}
		if genErr != nil {
			r.Status = jobs.StatusFailed
			r.Error = genErr.Error()
		}
	})
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}

	event := webhook.EventPodcastCompleted
	if final.Status == jobs.StatusFailed {
		event = webhook.EventPodcastFailed
	}
	notify(ctx, w.queue, final, event)

	if genErr != nil {
		return fmt.Errorf("%w: %w", genErr, asynq.SkipRetry)
	}
	log.Info("podcast job finished", "status", final.Status, "url", final.URL)
	return nil
}
