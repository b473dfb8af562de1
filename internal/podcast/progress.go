package podcast

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

type Stage string

const (
	StageContent Stage = "content_generation"
	StageSpeech  Stage = "speech_synthesis"
	StageMusic   Stage = "background_music"
	StageMixing  Stage = "audio_mixing"
	StageEnhance Stage = "quality_enhancement"
	StageDone    Stage = "done"
)

var stageOrder = []Stage{StageContent, StageSpeech, StageMusic, StageMixing, StageEnhance, StageDone}

func stageIndex(s Stage) int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

type StageStatus string

const (
	StagePending    StageStatus = "pending"
	StageInProgress StageStatus = "in_progress"
	StageComplete   StageStatus = "done"
	StageSkipped    StageStatus = "skipped"
	StageFailed     StageStatus = "failed"
)

type StageReport struct {
	Stage    Stage       `json:"stage"`
	Status   StageStatus `json:"status"`
	Detail   string      `json:"detail,omitempty"`
	Started  time.Time   `json:"started,omitempty"`
	Finished time.Time   `json:"finished,omitempty"`
}

// Progress is a point-in-time view of a job's tracker.
type Progress struct {
	Stage   Stage         `json:"stage"`
	Percent int           `json:"percent"`
	Stages  []StageReport `json:"stages"`
	Elapsed time.Duration `json:"elapsed"`
	Done    bool          `json:"done"`
}

var (
	ErrBackwardTransition = errors.New("progress: stage transition goes backwards")
	ErrSkipNotAllowed     = errors.New("progress: only background_music may be skipped")
	ErrStageUnresolved    = errors.New("progress: earlier stage was neither completed nor skipped")
)

// Tracker is a forward-only state machine over the pipeline stages. It is
// observational: errors it returns flag misuse, never job failure.
type Tracker struct {
	mu       sync.Mutex
	now      func() time.Time
	started  time.Time
	finished time.Time
	current  int
	stages   []StageReport
	watchers []func(Progress)
}

// NewTracker starts the clock. now may be nil for wall time.
func NewTracker(now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	t := &Tracker{now: now, current: -1}
	t.started = now()
	for _, s := range stageOrder[:len(stageOrder)-1] {
		t.stages = append(t.stages, StageReport{Stage: s, Status: StagePending})
	}
	return t
}

// Watch registers fn to receive a snapshot after every transition.
func (t *Tracker) Watch(fn func(Progress)) {
	t.mu.Lock()
	t.watchers = append(t.watchers, fn)
	t.mu.Unlock()
}

// Start moves to stage, completing the stage in progress. Every stage
// between must already be resolved.
func (t *Tracker) Start(stage Stage) error {
	return t.transition(stage, StageInProgress, "")
}

// Skip resolves stage as skipped, including when it is already in
// progress. Only background_music may be skipped.
func (t *Tracker) Skip(stage Stage, reason string) error {
	if stage != StageMusic {
		return fmt.Errorf("%w: %s", ErrSkipNotAllowed, stage)
	}
	return t.transition(stage, StageSkipped, reason)
}

// Fail marks the stage in progress as failed and stops the clock.
func (t *Tracker) Fail(reason string) {
	t.mu.Lock()
	now := t.now()
	if t.current >= 0 && t.current < len(t.stages) && t.stages[t.current].Status == StageInProgress {
		t.stages[t.current].Status = StageFailed
		t.stages[t.current].Detail = reason
		t.stages[t.current].Finished = now
	}
	t.finished = now
	snap := t.snapshotLocked()
	watchers := t.watchers
	t.mu.Unlock()
	notify(watchers, snap)
}

// Finish completes the last stage and returns the total elapsed time.
func (t *Tracker) Finish() (time.Duration, error) {
	if err := t.transition(StageDone, StageComplete, ""); err != nil {
		return t.Elapsed(), err
	}
	return t.Elapsed(), nil
}

func (t *Tracker) transition(stage Stage, status StageStatus, detail string) error {
	idx := stageIndex(stage)
	if idx < 0 {
		return fmt.Errorf("progress: unknown stage %q", stage)
	}

	t.mu.Lock()
	if !t.finished.IsZero() {
		t.mu.Unlock()
		return fmt.Errorf("%w: tracker already finished", ErrBackwardTransition)
	}
	if status == StageSkipped && idx == t.current && t.stages[idx].Status == StageInProgress {
		now := t.now()
		t.stages[idx].Status = StageSkipped
		t.stages[idx].Detail = detail
		t.stages[idx].Finished = now
		snap := t.snapshotLocked()
		watchers := t.watchers
		t.mu.Unlock()
		notify(watchers, snap)
		return nil
	}
	if idx <= t.current {
		cur := stageOrder[t.current]
		t.mu.Unlock()
		return fmt.Errorf("%w: %s after %s", ErrBackwardTransition, stage, cur)
	}

	for i := t.current + 1; i < idx; i++ {
		if t.stages[i].Status == StagePending {
			t.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrStageUnresolved, stageOrder[i])
		}
	}
	now := t.now()
	if t.current >= 0 && t.stages[t.current].Status == StageInProgress {
		t.stages[t.current].Status = StageComplete
		t.stages[t.current].Finished = now
	}

	t.current = idx
	if stage == StageDone {
		t.finished = now
	} else {
		t.stages[idx] = StageReport{Stage: stage, Status: status, Detail: detail, Started: now}
		if status == StageSkipped {
			t.stages[idx].Finished = now
		}
	}
	snap := t.snapshotLocked()
	watchers := t.watchers
	t.mu.Unlock()

	notify(watchers, snap)
	return nil
}

func notify(watchers []func(Progress), p Progress) {
	for _, fn := range watchers {
		fn(p)
	}
}

// Elapsed is wall time since NewTracker, frozen once finished or failed.
func (t *Tracker) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsedLocked()
}

func (t *Tracker) elapsedLocked() time.Duration {
	if !t.finished.IsZero() {
		return t.finished.Sub(t.started)
	}
	return t.now().Sub(t.started)
}

func (t *Tracker) Snapshot() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) Stages() []StageReport {
	return t.Snapshot().Stages
}

func (t *Tracker) snapshotLocked() Progress {
	p := Progress{
		Stages:  append([]StageReport(nil), t.stages...),
		Elapsed: t.elapsedLocked(),
	}
	resolved := 0
	for _, s := range t.stages {
		if s.Status == StageComplete || s.Status == StageSkipped {
			resolved++
		}
	}
	p.Percent = resolved * 100 / len(t.stages)
	switch {
	case t.current < 0:
		p.Stage = stageOrder[0]
	default:
		p.Stage = stageOrder[t.current]
	}
	p.Done = t.current == len(stageOrder)-1
	return p
}

// EstimateGenerationTime is the up-front guess shown before a job runs:
// fixed overheads for generation, music, mixing and enhancement plus
// per-minute costs for script and speech.
func EstimateGenerationTime(minutes int) time.Duration {
	secs := 30 + 2*minutes + 3*minutes + 60 + 30
	return time.Duration(secs) * time.Second
}

func FormatEstimate(d time.Duration) string {
	m := int(d / time.Minute)
	s := int((d % time.Minute) / time.Second)
	if m == 0 {
		return fmt.Sprintf("about %ds", s)
	}
	return fmt.Sprintf("about %dm%02ds", m, s)
}
