package podcast

import (
	"errors"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTrackerHappyPath(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	tr := NewTracker(clock.now)
	var seen []Stage
	tr.Watch(func(p Progress) { seen = append(seen, p.Stage) })

	for _, s := range []Stage{StageContent, StageSpeech, StageMusic, StageMixing, StageEnhance} {
		if err := tr.Start(s); err != nil {
			t.Fatalf("Start(%s): %v", s, err)
		}
		clock.advance(10 * time.Second)
	}
	elapsed, err := tr.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if elapsed != 50*time.Second {
		t.Errorf("elapsed = %v", elapsed)
	}
	p := tr.Snapshot()
	if !p.Done || p.Percent != 100 || p.Stage != StageDone {
		t.Errorf("snapshot = %+v", p)
	}
	for _, s := range p.Stages {
		if s.Status != StageComplete {
			t.Errorf("%s = %s", s.Stage, s.Status)
		}
	}
	if len(seen) != 6 {
		t.Errorf("watcher saw %v", seen)
	}

	clock.advance(time.Hour)
	if tr.Elapsed() != 50*time.Second {
		t.Errorf("elapsed moved after finish: %v", tr.Elapsed())
	}
}

func TestTrackerRejectsBackwards(t *testing.T) {
	tr := NewTracker(nil)
	tr.Start(StageContent)
	tr.Start(StageSpeech)
	if err := tr.Start(StageContent); !errors.Is(err, ErrBackwardTransition) {
		t.Errorf("err = %v, want ErrBackwardTransition", err)
	}
	if err := tr.Start(StageMixing); !errors.Is(err, ErrStageUnresolved) {
		t.Errorf("err = %v, want ErrStageUnresolved", err)
	}
	if got := tr.Snapshot().Stage; got != StageSpeech {
		t.Errorf("rejected transition moved tracker to %s", got)
	}
}

func TestTrackerSkipMusicOnly(t *testing.T) {
	tr := NewTracker(nil)
	tr.Start(StageContent)
	if err := tr.Skip(StageSpeech, "nope"); !errors.Is(err, ErrSkipNotAllowed) {
		t.Errorf("err = %v, want ErrSkipNotAllowed", err)
	}
	tr.Start(StageSpeech)
	tr.Start(StageMusic)
	if err := tr.Skip(StageMusic, "service failed"); err != nil {
		t.Fatalf("Skip in-progress music: %v", err)
	}
	if err := tr.Start(StageMixing); err != nil {
		t.Fatalf("Start mixing: %v", err)
	}
	music := tr.Stages()[2]
	if music.Status != StageSkipped || music.Detail != "service failed" {
		t.Errorf("music = %+v", music)
	}
}

func TestTrackerFail(t *testing.T) {
	tr := NewTracker(nil)
	tr.Start(StageContent)
	tr.Start(StageSpeech)
	tr.Fail("no audio")
	if s := tr.Stages()[1]; s.Status != StageFailed || s.Detail != "no audio" {
		t.Errorf("speech = %+v", s)
	}
	if err := tr.Start(StageMusic); err == nil {
		t.Error("expected error after failure")
	}
}

func TestEstimateGenerationTime(t *testing.T) {
	if got := EstimateGenerationTime(10); got != 170*time.Second {
		t.Errorf("EstimateGenerationTime(10) = %v", got)
	}
	if got := FormatEstimate(170 * time.Second); got != "about 2m50s" {
		t.Errorf("FormatEstimate = %q", got)
	}
	if got := FormatEstimate(45 * time.Second); got != "about 45s" {
		t.Errorf("FormatEstimate = %q", got)
	}
}
