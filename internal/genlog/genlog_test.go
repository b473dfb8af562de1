package genlog

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileSinkWritesIndentedJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	sink := NewFileSink(dir)
	at := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)

	err := sink.Write(context.Background(), Entry{JobID: "job/1", Topic: "AI", Scene: "dialogue", SegmentCount: 4, CreatedAt: at})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	path := filepath.Join(dir, "generation_20250301_103000_job_1.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var got Entry
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Topic != "AI" || got.SegmentCount != 4 {
		t.Errorf("unexpected entry %+v", got)
	}
}

type failingSink struct{ calls int }

func (f *failingSink) Write(context.Context, Entry) error {
	f.calls++
	return errors.New("down")
}

func TestMultiWritesAllAndJoinsErrors(t *testing.T) {
	bad := &failingSink{}
	file := NewFileSink(t.TempDir())
	err := Multi{bad, nil, file}.Write(context.Background(), Entry{JobID: "x"})
	if err == nil || bad.calls != 1 {
		t.Fatalf("err = %v, calls = %d", err, bad.calls)
	}
	entries, _ := os.ReadDir(file.Dir)
	if len(entries) != 1 {
		t.Errorf("file sink wrote %d files, want 1", len(entries))
	}
}
