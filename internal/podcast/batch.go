package podcast

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-yaml"
	"golang.org/x/sync/errgroup"
)

// BatchConfig is the on-disk description of a batch run.
type BatchConfig struct {
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	OutputDir   string    `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	Concurrency int       `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	Topics      []Job     `json:"topics" yaml:"topics"`
}

func LoadBatchConfig(path string) (*BatchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch config: %w", err)
	}
	var cfg BatchConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse batch config %s: %w", path, err)
	}
	if len(cfg.Topics) == 0 {
		return nil, fmt.Errorf("batch config %s has no topics", path)
	}
	for i := range cfg.Topics {
		if cfg.Topics[i].Scene == "" {
			cfg.Topics[i].Scene = SceneSolo
		}
		if cfg.Topics[i].Duration == 0 {
			cfg.Topics[i].Duration = 5
		}
	}
	return &cfg, nil
}

func SaveBatchConfig(path string, cfg *BatchConfig) error {
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	default:
		data, err = marshalIndent(cfg)
	}
	if err != nil {
		return fmt.Errorf("encode batch config: %w", err)
	}
	return writeFile(path, data)
}

// SampleBatchConfig is a starting point for operators writing their own.
func SampleBatchConfig(now time.Time) *BatchConfig {
	return &BatchConfig{
		CreatedAt:   now,
		Description: "sample podcast batch",
		Concurrency: 3,
		Topics: []Job{
			{Topic: "How AI is changing everyday life", Scene: SceneSolo, Duration: 5, Voices: []string{"female-chengshu"}},
			{Topic: "The pros and cons of remote work", Scene: SceneDialogue, Duration: 8, Voices: []string{"male-qn-jingying", "female-yujie"}},
			{Topic: "Technology trends for the year ahead", Scene: ScenePanel, Duration: 12, Voices: []string{"male-qn-jingying", "female-chengshu", "presenter_male"}},
			{Topic: "New ideas about healthy eating", Scene: SceneInterview, Duration: 10, Voices: []string{"presenter_female", "female-chengshu"}},
		},
	}
}

// JobRunner is what a batch needs from the pipeline.
type JobRunner interface {
	Generate(ctx context.Context, job Job, opts ...RunOption) (*Artifact, error)
}

type BatchResult struct {
	JobID         string  `json:"job_id"`
	Topic         string  `json:"topic"`
	Scene         Scene   `json:"scene"`
	Duration      int     `json:"duration"`
	Status        Status  `json:"status"`
	OutputFile    string  `json:"output_file,omitempty"`
	URL           string  `json:"url,omitempty"`
	Error         string  `json:"error,omitempty"`
	EstimatedTime float64 `json:"estimated_time"`
	ActualTime    float64 `json:"actual_time"`
	FileSize      int64   `json:"file_size"`
}

// Succeeded counts partial artifacts as successes; they are playable.
func (r BatchResult) Succeeded() bool {
	return r.Status == StatusSuccess || r.Status == StatusPartial
}

type BatchSummary struct {
	TotalTopics         int     `json:"total_topics"`
	Successful          int     `json:"successful"`
	Failed              int     `json:"failed"`
	SuccessRate         float64 `json:"success_rate"`
	TotalGenerationTime float64 `json:"total_generation_time"`
	TotalFileSize       int64   `json:"total_file_size"`
	WallTime            float64 `json:"wall_time"`
}

type BatchReport struct {
	ID          string        `json:"id,omitempty"`
	GeneratedAt time.Time     `json:"generated_at"`
	Summary     BatchSummary  `json:"summary"`
	Details     []BatchResult `json:"details"`
}

func (r *BatchReport) WriteFile(path string) error {
	data, err := marshalIndent(r)
	if err != nil {
		return fmt.Errorf("encode batch report: %w", err)
	}
	return writeFile(path, data)
}

type BatchOptions struct {
	Concurrency int
	// OutputDir, when set, receives every artifact whose job has no
	// explicit output path.
	OutputDir string
	// OnResult is called as each job resolves, in completion order.
	OnResult func(BatchResult)
	Now      func() time.Time
}

// RunBatch runs jobs with bounded concurrency. One job's failure or panic
// never affects another; the report lists every job in submission order.
func RunBatch(ctx context.Context, runner JobRunner, jobs []Job, opts BatchOptions) *BatchReport {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 3
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := Logger(ctx)
	start := opts.Now()
	results := make([]BatchResult, len(jobs))

	var notifyMu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(opts.Concurrency)
	for i, job := range jobs {
		if opts.OutputDir != "" && job.OutputPath == "" {
			job.OutputPath = filepath.Join(opts.OutputDir, fmt.Sprintf("%02d_%s", i+1, OutputFilename(job, start)))
		}
		g.Go(func() error {
			res := runOne(ctx, runner, job, opts.Now)
			results[i] = res
			if opts.OnResult != nil {
				notifyMu.Lock()
				opts.OnResult(res)
				notifyMu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	report := &BatchReport{GeneratedAt: opts.Now(), Details: results}
	report.Summary = summarize(results, report.GeneratedAt.Sub(start))
	log.Info("batch finished",
		"total", report.Summary.TotalTopics,
		"successful", report.Summary.Successful,
		"failed", report.Summary.Failed,
		"wall_time", report.Summary.WallTime,
	)
	return report
}

func runOne(ctx context.Context, runner JobRunner, job Job, now func() time.Time) (res BatchResult) {
	res = BatchResult{
		JobID:         job.ID,
		Topic:         job.Topic,
		Scene:         job.Scene,
		Duration:      job.Duration,
		EstimatedTime: EstimateGenerationTime(job.Duration).Seconds(),
	}
	start := now()
	defer func() {
		res.ActualTime = now().Sub(start).Seconds()
		if p := recover(); p != nil {
			Logger(ctx).Error("batch job panicked", "topic", job.Topic, "panic", p, "stack", string(debug.Stack()))
			res.Status = StatusFailed
			res.Error = fmt.Sprintf("panic: %v", p)
		}
	}()

	if err := ctx.Err(); err != nil {
		res.Status = StatusFailed
		res.Error = err.Error()
		return res
	}

	art, err := runner.Generate(ctx, job)
	if art != nil {
		res.JobID = art.JobID
		res.OutputFile = art.Path
		res.URL = art.URL
		res.FileSize = art.SizeBytes
		res.Status = art.Status
	}
	if err != nil {
		res.Status = StatusFailed
		res.Error = err.Error()
	} else if art == nil {
		res.Status = StatusFailed
		res.Error = "pipeline returned no artifact"
	}
	return res
}

func summarize(results []BatchResult, wall time.Duration) BatchSummary {
	s := BatchSummary{TotalTopics: len(results), WallTime: wall.Seconds()}
	for _, r := range results {
		if r.Succeeded() {
			s.Successful++
			s.TotalFileSize += r.FileSize
		} else {
			s.Failed++
		}
		s.TotalGenerationTime += r.ActualTime
	}
	if s.TotalTopics > 0 {
		s.SuccessRate = float64(s.Successful) / float64(s.TotalTopics)
	}
	return s
}

func marshalIndent(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
