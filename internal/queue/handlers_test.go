package queue

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/podcastgen/internal/podcast"
)

func TestRegistryLogsOutcome(t *testing.T) {
	var buf bytes.Buffer
	reg := NewHandlersRegistry(slog.New(slog.NewJSONHandler(&buf, nil)))

	var scoped bool
	reg.Register(TypePodcastGenerate, asynq.HandlerFunc(func(ctx context.Context, _ *asynq.Task) error {
		podcast.Logger(ctx).Info("inside")
		scoped = podcast.Logger(ctx) != slog.Default()
		return fmt.Errorf("bad payload: %w", asynq.SkipRetry)
	}))

	err := reg.Mux().ProcessTask(context.Background(), asynq.NewTask(TypePodcastGenerate, nil))
	if err == nil {
		t.Fatal("expected handler error")
	}
	if !scoped {
		t.Error("handler did not get a task-scoped logger")
	}
	out := buf.String()
	for _, want := range []string{`"msg":"inside"`, `"task_type":"podcast:generate"`, "task failed permanently"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %s:\n%s", want, out)
		}
	}
}
