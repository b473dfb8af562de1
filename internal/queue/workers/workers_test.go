package workers

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/podcastgen/internal/cache"
	"github.com/nikhilbhutani/podcastgen/internal/jobs"
	"github.com/nikhilbhutani/podcastgen/internal/podcast"
	"github.com/nikhilbhutani/podcastgen/internal/queue"
	"github.com/nikhilbhutani/podcastgen/internal/webhook"
)

type fakeRunner struct {
	mu     sync.Mutex
	status podcast.Status
	err    error
	jobs   []podcast.Job
}

func (f *fakeRunner) Generate(_ context.Context, job podcast.Job, opts ...podcast.RunOption) (*podcast.Artifact, error) {
	f.mu.Lock()
	f.jobs = append(f.jobs, job)
	f.mu.Unlock()
	art := &podcast.Artifact{JobID: job.ID, Path: job.OutputPath, Status: f.status, SizeBytes: 10}
	if f.err != nil {
		art.Status = podcast.StatusFailed
		art.Reason = f.err.Error()
	}
	return art, f.err
}

type fakeQueue struct {
	webhooks []queue.WebhookDeliverPayload
}

func (f *fakeQueue) EnqueuePodcast(context.Context, queue.PodcastGeneratePayload) error { return nil }
func (f *fakeQueue) EnqueueBatch(context.Context, queue.PodcastBatchPayload) error     { return nil }
func (f *fakeQueue) EnqueueWebhook(_ context.Context, p queue.WebhookDeliverPayload) error {
	f.webhooks = append(f.webhooks, p)
	return nil
}

func task(t *testing.T, typ string, payload any) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	return asynq.NewTask(typ, data)
}

func TestPodcastWorkerSuccess(t *testing.T) {
	ctx := context.Background()
	store := jobs.NewStore(cache.NewMemory(nil), 0, nil)
	rec := &jobs.Record{
		Kind:        jobs.KindPodcast,
		Job:         &podcast.Job{Topic: "rivers", Scene: podcast.SceneSolo, Duration: 2},
		CallbackURL: "https://example.test/hook",
	}
	if err := store.Create(ctx, rec); err != nil {
		t.Fatal(err)
	}
	runner := &fakeRunner{status: podcast.StatusPartial}
	q := &fakeQueue{}

	w := NewPodcastWorker(runner, store, q)
	if err := w.ProcessTask(ctx, task(t, queue.TypePodcastGenerate, queue.PodcastGeneratePayload{JobID: rec.ID})); err != nil {
		t.Fatalf("ProcessTask: %v", err)
	}

	got, err := store.Get(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != jobs.StatusPartial || got.Artifact == nil {
		t.Errorf("record = %+v", got)
	}
	if len(runner.jobs) != 1 || runner.jobs[0].ID != rec.ID {
		t.Errorf("runner got %+v", runner.jobs)
	}
	if len(q.webhooks) != 1 || q.webhooks[0].Event != webhook.EventPodcastCompleted {
		t.Fatalf("webhooks = %+v", q.webhooks)
	}
	var n Notification
	if err := json.Unmarshal([]byte(q.webhooks[0].Payload), &n); err != nil {
		t.Fatal(err)
	}
	if n.JobID != rec.ID || n.Status != jobs.StatusPartial {
		t.Errorf("notification = %+v", n)
	}

	// A redelivered task for a finished job is a no-op.
	if err := w.ProcessTask(ctx, task(t, queue.TypePodcastGenerate, queue.PodcastGeneratePayload{JobID: rec.ID})); err != nil {
		t.Fatalf("second ProcessTask: %v", err)
	}
	if len(runner.jobs) != 1 {
		t.Errorf("finished job ran again")
	}
}

func TestPodcastWorkerFailure(t *testing.T) {
	ctx := context.Background()
	store := jobs.NewStore(cache.NewMemory(nil), 0, nil)
	rec := &jobs.Record{Kind: jobs.KindPodcast, Job: &podcast.Job{Topic: "x", Scene: podcast.SceneSolo, Duration: 1}}
	if err := store.Create(ctx, rec); err != nil {
		t.Fatal(err)
	}
	w := NewPodcastWorker(&fakeRunner{err: podcast.ErrNoAudio}, store, &fakeQueue{})

	err := w.ProcessTask(ctx, task(t, queue.TypePodcastGenerate, queue.PodcastGeneratePayload{JobID: rec.ID}))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("err = %v, want SkipRetry", err)
	}
	got, _ := store.Get(ctx, rec.ID)
	if got.Status != jobs.StatusFailed || got.Error == "" {
		t.Errorf("record = %+v", got)
	}
}

func TestPodcastWorkerUnknownJob(t *testing.T) {
	w := NewPodcastWorker(&fakeRunner{}, jobs.NewStore(cache.NewMemory(nil), 0, nil), nil)
	err := w.ProcessTask(context.Background(), task(t, queue.TypePodcastGenerate, queue.PodcastGeneratePayload{JobID: "nope"}))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("err = %v, want SkipRetry", err)
	}
}

func TestBatchWorker(t *testing.T) {
	ctx := context.Background()
	store := jobs.NewStore(cache.NewMemory(nil), 0, nil)
	rec := &jobs.Record{Kind: jobs.KindBatch, Batch: []podcast.Job{
		{Topic: "a", Scene: podcast.SceneSolo, Duration: 1},
		{Topic: "b", Scene: podcast.SceneNews, Duration: 2},
	}}
	if err := store.Create(ctx, rec); err != nil {
		t.Fatal(err)
	}
	out := t.TempDir()
	w := NewBatchWorker(&fakeRunner{status: podcast.StatusSuccess}, store, &fakeQueue{}, out, 2)

	if err := w.ProcessTask(ctx, task(t, queue.TypePodcastBatch, queue.PodcastBatchPayload{BatchID: rec.ID})); err != nil {
		t.Fatalf("ProcessTask: %v", err)
	}
	got, _ := store.Get(ctx, rec.ID)
	if got.Status != jobs.StatusSuccess || got.Report == nil || got.Report.Summary.Successful != 2 {
		t.Fatalf("record = %+v", got)
	}
	if got.Progress == nil || got.Progress.Percent != 100 {
		t.Errorf("progress = %+v", got.Progress)
	}
	if _, err := os.Stat(filepath.Join(out, rec.ID, "batch_report.json")); err != nil {
		t.Errorf("report not written: %v", err)
	}
}

func TestBatchStatus(t *testing.T) {
	tests := []struct {
		s    podcast.BatchSummary
		want jobs.Status
	}{
		{podcast.BatchSummary{Successful: 2}, jobs.StatusSuccess},
		{podcast.BatchSummary{Successful: 1, Failed: 1}, jobs.StatusPartial},
		{podcast.BatchSummary{Failed: 2}, jobs.StatusFailed},
	}
	for _, tt := range tests {
		if got := batchStatus(tt.s); got != tt.want {
			t.Errorf("batchStatus(%+v) = %s, want %s", tt.s, got, tt.want)
		}
	}
}

type fakeDeliverer struct{ got webhook.DeliveryRequest }

func (f *fakeDeliverer) Deliver(_ context.Context, req webhook.DeliveryRequest) error {
	f.got = req
	return nil
}

func TestWebhookWorker(t *testing.T) {
	d := &fakeDeliverer{}
	p := queue.WebhookDeliverPayload{DeliveryID: "d1", JobID: "j1", URL: "http://x", Event: webhook.EventBatchCompleted, Payload: `{"a":1}`}
	if err := NewWebhookWorker(d).ProcessTask(context.Background(), task(t, queue.TypeWebhookDeliver, p)); err != nil {
		t.Fatalf("ProcessTask: %v", err)
	}
	if d.got.ID != "d1" || string(d.got.Payload) != `{"a":1}` || d.got.Attempt != 1 {
		t.Errorf("delivery = %+v", d.got)
	}
}
