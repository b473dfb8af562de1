package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nikhilbhutani/podcastgen/internal/jobs"
	"github.com/nikhilbhutani/podcastgen/internal/podcast"
	"github.com/nikhilbhutani/podcastgen/internal/queue"
)

const maxBatchJobs = 50

type BatchHandler struct {
	jobs  *jobs.Store
	queue queue.Enqueuer
}

func NewBatchHandler(store *jobs.Store, q queue.Enqueuer) *BatchHandler {
	return &BatchHandler{jobs: store, queue: q}
}

// batchRequest mirrors podcast.BatchConfig so a batch config file can be
// posted as-is.
type batchRequest struct {
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Concurrency int           `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	Topics      []podcast.Job `json:"topics" yaml:"topics"`
	CallbackURL string        `json:"callback_url,omitempty" yaml:"callback_url,omitempty"`

	// accepted and ignored so saved configs decode cleanly
	CreatedAt string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
}

func (h *BatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Topics) == 0 {
		writeError(w, http.StatusBadRequest, "topics required")
		return
	}
	if len(req.Topics) > maxBatchJobs {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d topics per batch", maxBatchJobs))
		return
	}
	var problems []string
	for i := range req.Topics {
		req.Topics[i].ID = ""
		req.Topics[i].CallbackURL = ""
		if err := prepareJob(&req.Topics[i]); err != nil {
			problems = append(problems, fmt.Sprintf("topic %d: %v", i+1, err))
		}
	}
	if req.CallbackURL != "" {
		if err := validateCallback(req.CallbackURL); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) > 0 {
		writeError(w, http.StatusBadRequest, strings.Join(problems, "; "))
		return
	}

	rec := &jobs.Record{Kind: jobs.KindBatch, Batch: req.Topics, CallbackURL: req.CallbackURL}
	if err := h.jobs.Create(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store batch")
		return
	}
	if err := h.queue.EnqueueBatch(r.Context(), queue.PodcastBatchPayload{BatchID: rec.ID, Concurrency: req.Concurrency}); err != nil {
		slog.ErrorContext(r.Context(), "enqueue batch failed", "batch_id", rec.ID, "error", err)
		h.jobs.Update(r.Context(), rec.ID, func(r *jobs.Record) {
			r.Status = jobs.StatusFailed
			r.Error = "could not be queued"
		})
		writeError(w, http.StatusServiceUnavailable, "queue unavailable")
		return
	}

	var est time.Duration
	for _, j := range req.Topics {
		est += podcast.EstimateGenerationTime(j.Duration)
	}
	w.Header().Set("Location", "/api/v1/batches/"+rec.ID)
	writeJSON(w, http.StatusAccepted, acceptedResponse{
		ID:            rec.ID,
		Status:        rec.Status,
		EstimatedTime: podcast.FormatEstimate(est),
	})
}

func (h *BatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.jobs.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, jobs.ErrNotFound) || (err == nil && rec.Kind != jobs.KindBatch) {
		writeError(w, http.StatusNotFound, "batch not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load batch")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
