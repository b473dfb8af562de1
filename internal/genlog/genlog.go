// Package genlog records what each generation run produced, for
// diagnosing bad scripts after the fact. Nothing in the pipeline reads
// these records back.
package genlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Entry struct {
	JobID        string    `json:"job_id"`
	Topic        string    `json:"topic"`
	Scene        string    `json:"scene"`
	Duration     int       `json:"duration"`
	Provider     string    `json:"provider,omitempty"`
	Model        string    `json:"model,omitempty"`
	Source       string    `json:"source"`
	RawResponse  string    `json:"raw_response,omitempty"`
	SegmentCount int       `json:"segment_count"`
	Synthesized  int       `json:"synthesized"`
	CostUSD      float64   `json:"cost_usd"`
	Status       string    `json:"status"`
	Reason       string    `json:"reason,omitempty"`
	OutputPath   string    `json:"output_path,omitempty"`
	ElapsedMs    int64     `json:"elapsed_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

type Sink interface {
	Write(ctx context.Context, e Entry) error
}

// FileSink writes one indented JSON file per entry under Dir.
type FileSink struct {
	Dir string
	mu  sync.Mutex
}

func NewFileSink(dir string) *FileSink {
	if dir == "" {
		dir = "logs"
	}
	return &FileSink{Dir: dir}
}

func (s *FileSink) Write(_ context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("encode generation log: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	name := fmt.Sprintf("generation_%s_%s.json", e.CreatedAt.Format("20060102_150405"), safeID(e.JobID))
	if err := os.WriteFile(filepath.Join(s.Dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write generation log: %w", err)
	}
	return nil
}

func safeID(id string) string {
	if id == "" {
		return "local"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, id)
}

// PostgresSink inserts into generation_logs; see migrations/001_generation_logs.sql.
type PostgresSink struct {
	db *pgxpool.Pool
}

func NewPostgresSink(db *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) Write(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO generation_logs (job_id, topic, scene, duration_minutes, provider, model, source, raw_response,
		   segment_count, synthesized, cost_usd, status, reason, output_path, elapsed_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		e.JobID, e.Topic, e.Scene, e.Duration, e.Provider, e.Model, e.Source, e.RawResponse,
		e.SegmentCount, e.Synthesized, e.CostUSD, e.Status, e.Reason, e.OutputPath, e.ElapsedMs, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert generation log: %w", err)
	}
	return nil
}

// Recent returns the newest entries, newest first.
func (s *PostgresSink) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx,
		`SELECT job_id, topic, scene, duration_minutes, provider, model, source, segment_count, synthesized,
		        cost_usd, status, reason, output_path, elapsed_ms, created_at
		 FROM generation_logs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query generation logs: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.JobID, &e.Topic, &e.Scene, &e.Duration, &e.Provider, &e.Model, &e.Source,
			&e.SegmentCount, &e.Synthesized, &e.CostUSD, &e.Status, &e.Reason, &e.OutputPath, &e.ElapsedMs, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan generation log: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Multi writes to every sink and joins their errors.
type Multi []Sink

func (m Multi) Write(ctx context.Context, e Entry) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Write(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
