package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/podcastgen/internal/jobs"
	"github.com/nikhilbhutani/podcastgen/internal/podcast"
	"github.com/nikhilbhutani/podcastgen/internal/queue"
	"github.com/nikhilbhutani/podcastgen/internal/webhook"
)

type BatchWorker struct {
	runner      podcast.JobRunner
	jobs        *jobs.Store
	queue       queue.Enqueuer
	outputDir   string
	concurrency int
}

func NewBatchWorker(runner podcast.JobRunner, store *jobs.Store, q queue.Enqueuer, outputDir string, concurrency int) *BatchWorker {
	return &BatchWorker{runner: runner, jobs: store, queue: q, outputDir: outputDir, concurrency: concurrency}
}

func (w *BatchWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.PodcastBatchPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	rec, err := w.jobs.Get(ctx, payload.BatchID)
	if errors.Is(err, jobs.ErrNotFound) {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	if err != nil {
		return err
	}
	if rec.Status.Terminal() {
		return nil
	}

	log := podcast.Logger(ctx).With("batch_id", rec.ID)
	ctx = podcast.WithLogger(ctx, log)
	if _, err := w.jobs.Update(ctx, rec.ID, func(r *jobs.Record) { r.Status = jobs.StatusRunning }); err != nil {
		return fmt.Errorf("mark running: %w", err)
	}

	concurrency := payload.Concurrency
	if concurrency <= 0 {
		concurrency = w.concurrency
	}
	dir := filepath.Join(w.outputDir, rec.ID)
	total := len(rec.Batch)
	finished := 0

	report := podcast.RunBatch(ctx, w.runner, rec.Batch, podcast.BatchOptions{
		Concurrency: concurrency,
		OutputDir:   dir,
		OnResult: func(res podcast.BatchResult) {
			finished++
			pct := 100
			if total > 0 {
				pct = finished * 100 / total
			}
			if _, err := w.jobs.Update(ctx, rec.ID, func(r *jobs.Record) {
				r.Progress = &podcast.Progress{Percent: pct, Done: finished == total}
			}); err != nil {
				log.Warn("progress update failed", "error", err)
			}
			log.Info("batch item finished", "topic", res.Topic, "status", res.Status)
		},
	})
	report.ID = rec.ID
	if err := report.WriteFile(filepath.Join(dir, "batch_report.json")); err != nil {
		log.Warn("write batch report failed", "error", err)
	}

	final, err := w.jobs.Update(ctx, rec.ID, func(r *jobs.Record) {
		r.Report = report
		r.Status = batchStatus(report.Summary)
	})
	if err != nil {
		return fmt.Errorf("record report: %w", err)
	}
	notify(ctx, w.queue, final, webhook.EventBatchCompleted)
	return nil
}

func batchStatus(s podcast.BatchSummary) jobs.Status {
	switch {
	case s.Failed == 0:
		return jobs.StatusSuccess
	case s.Successful > 0:
		return jobs.StatusPartial
	default:
		return jobs.StatusFailed
	}
}
