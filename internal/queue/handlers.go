package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/podcastgen/internal/podcast"
)

// HandlersRegistry routes task types to workers. Each handler runs with a
// task-scoped logger in its context and its outcome is logged once.
type HandlersRegistry struct {
	mux *asynq.ServeMux
	log *slog.Logger
}

func NewHandlersRegistry(log *slog.Logger) *HandlersRegistry {
	if log == nil {
		log = slog.Default()
	}
	return &HandlersRegistry{mux: asynq.NewServeMux(), log: log}
}

func (r *HandlersRegistry) Register(taskType string, handler asynq.Handler) {
	r.mux.Handle(taskType, r.wrap(taskType, handler))
}

func (r *HandlersRegistry) Mux() *asynq.ServeMux {
	return r.mux
}

func (r *HandlersRegistry) wrap(taskType string, next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		taskID, _ := asynq.GetTaskID(ctx)
		retry, _ := asynq.GetRetryCount(ctx)
		log := r.log.With("task_type", taskType, "task_id", taskID)
		if retry > 0 {
			log = log.With("retry", retry)
		}
		ctx = podcast.WithLogger(ctx, log)

		start := time.Now()
		err := next.ProcessTask(ctx, t)
		elapsed := time.Since(start).Round(time.Millisecond)
		switch {
		case err == nil:
			log.Info("task done", "elapsed", elapsed)
		case errors.Is(err, asynq.SkipRetry):
			log.Warn("task failed permanently", "elapsed", elapsed, "error", err)
		default:
			log.Error("task failed, will retry", "elapsed", elapsed, "error", err)
		}
		return err
	})
}

// asynqLogger routes the server's own messages through slog.
type asynqLogger struct{ log *slog.Logger }

// NewLogger adapts l to asynq.Logger.
func NewLogger(l *slog.Logger) asynq.Logger {
	return asynqLogger{log: l.With("component", "asynq")}
}

func (a asynqLogger) Debug(args ...any) { a.log.Debug(fmt.Sprint(args...)) }
func (a asynqLogger) Info(args ...any)  { a.log.Info(fmt.Sprint(args...)) }
func (a asynqLogger) Warn(args ...any)  { a.log.Warn(fmt.Sprint(args...)) }
func (a asynqLogger) Error(args ...any) { a.log.Error(fmt.Sprint(args...)) }
func (a asynqLogger) Fatal(args ...any) {
	a.log.Error(fmt.Sprint(args...))
	os.Exit(1)
}
