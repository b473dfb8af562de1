package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-yaml"

	"github.com/nikhilbhutani/podcastgen/internal/jobs"
	"github.com/nikhilbhutani/podcastgen/internal/podcast"
	"github.com/nikhilbhutani/podcastgen/internal/queue"
)

const maxBodyBytes = 1 << 20

type PodcastHandler struct {
	jobs  *jobs.Store
	queue queue.Enqueuer
}

func NewPodcastHandler(store *jobs.Store, q queue.Enqueuer) *PodcastHandler {
	return &PodcastHandler{jobs: store, queue: q}
}

type acceptedResponse struct {
	ID            string      `json:"id"`
	Status        jobs.Status `json:"status"`
	EstimatedTime string      `json:"estimated_time,omitempty"`
}

func (h *PodcastHandler) Create(w http.ResponseWriter, r *http.Request) {
	var job podcast.Job
	if err := decodeBody(r, &job); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := prepareJob(&job); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec := &jobs.Record{ID: job.ID, Kind: jobs.KindPodcast, Job: &job, CallbackURL: job.CallbackURL}
	if err := h.jobs.Create(r.Context(), rec); err != nil {
		if errors.Is(err, jobs.ErrDuplicate) {
			writeError(w, http.StatusConflict, "job id already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to store job")
		return
	}

	if err := h.queue.EnqueuePodcast(r.Context(), queue.PodcastGeneratePayload{JobID: rec.ID}); err != nil {
		slog.ErrorContext(r.Context(), "enqueue podcast failed", "job_id", rec.ID, "error", err)
		h.jobs.Update(r.Context(), rec.ID, func(r *jobs.Record) {
			r.Status = jobs.StatusFailed
			r.Error = "could not be queued"
		})
		writeError(w, http.StatusServiceUnavailable, "queue unavailable")
		return
	}

	w.Header().Set("Location", "/api/v1/podcasts/"+rec.ID)
	writeJSON(w, http.StatusAccepted, acceptedResponse{
		ID:            rec.ID,
		Status:        rec.Status,
		EstimatedTime: podcast.FormatEstimate(podcast.EstimateGenerationTime(job.Duration)),
	})
}

func (h *PodcastHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.jobs.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, jobs.ErrNotFound) || (err == nil && rec.Kind != jobs.KindPodcast) {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load job")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// prepareJob fills API defaults and validates. Output paths are chosen by
// the worker, never by the caller.
func prepareJob(job *podcast.Job) error {
	if job.Scene == "" {
		job.Scene = podcast.SceneSolo
	}
	if job.Duration == 0 {
		job.Duration = 5
	}
	job.OutputPath = ""
	if err := job.Validate(); err != nil {
		return err
	}
	if job.CallbackURL != "" {
		if err := validateCallback(job.CallbackURL); err != nil {
			return err
		}
	}
	return nil
}

func validateCallback(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("callback_url must be an absolute http(s) URL")
	}
	return nil
}

// decodeBody accepts JSON, or YAML when the content type says so.
func decodeBody(r *http.Request, dest any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer body.Close()
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		return yaml.NewDecoder(body).Decode(dest)
	}
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}
