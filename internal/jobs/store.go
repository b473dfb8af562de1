// Package jobs keeps the status records the API and worker share for
// queued podcast and batch runs.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/podcastgen/internal/cache"
	"github.com/nikhilbhutani/podcastgen/internal/podcast"
)

type Kind string

const (
	KindPodcast Kind = "podcast"
	KindBatch   Kind = "batch"
)

type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// Terminal reports whether no further updates are expected.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusPartial || s == StatusFailed
}

// FromArtifact maps a pipeline outcome onto a record status.
func FromArtifact(s podcast.Status) Status {
	switch s {
	case podcast.StatusSuccess:
		return StatusSuccess
	case podcast.StatusPartial:
		return StatusPartial
	default:
		return StatusFailed
	}
}

var (
	ErrNotFound  = errors.New("job not found")
	ErrDuplicate = errors.New("job already exists")
)

type Record struct {
	ID          string               `json:"id"`
	Kind        Kind                 `json:"kind"`
	Status      Status               `json:"status"`
	Job         *podcast.Job         `json:"job,omitempty"`
	Batch       []podcast.Job        `json:"batch,omitempty"`
	Progress    *podcast.Progress    `json:"progress,omitempty"`
	Artifact    *podcast.Artifact    `json:"artifact,omitempty"`
	Report      *podcast.BatchReport `json:"report,omitempty"`
	URL         string               `json:"url,omitempty"`
	Error       string               `json:"error,omitempty"`
	CallbackURL string               `json:"callback_url,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// Backend is the subset of cache.Cache the store needs. cache.Memory
// satisfies it too.
type Backend interface {
	cache.Store
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
}

type Store struct {
	backend Backend
	ttl     time.Duration
	now     func() time.Time
}

func NewStore(backend Backend, ttl time.Duration, now func() time.Time) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &Store{backend: backend, ttl: ttl, now: now}
}

func key(id string) string { return "job:" + id }

// Create stores rec as queued. An empty ID is filled with a new UUID.
func (s *Store) Create(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	now := s.now().UTC()
	rec.Status = StatusQueued
	rec.CreatedAt = now
	rec.UpdatedAt = now
	ok, err := s.backend.SetNX(ctx, key(rec.ID), rec, s.ttl)
	if err != nil {
		return fmt.Errorf("create job %s: %w", rec.ID, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, rec.ID)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	var rec Record
	if err := s.backend.Get(ctx, key(id), &rec); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return &rec, nil
}

// Update applies fn to the stored record and writes it back. Records are
// written by a single worker at a time, so read-modify-write is enough.
func (s *Store) Update(ctx context.Context, id string, fn func(*Record)) (*Record, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	fn(rec)
	rec.UpdatedAt = s.now().UTC()
	if err := s.backend.Set(ctx, key(id), rec, s.ttl); err != nil {
		return nil, fmt.Errorf("update job %s: %w", id, err)
	}
	return rec, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return s.backend.Delete(ctx, key(id))
}
