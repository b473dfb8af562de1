package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/nikhilbhutani/podcastgen/internal/jobs"
)

// EventsHandler pushes job records over a websocket as they change. The
// job store is polled; the worker is the only writer.
type EventsHandler struct {
	jobs     *jobs.Store
	interval time.Duration
	upgrader websocket.Upgrader
}

func NewEventsHandler(store *jobs.Store, interval time.Duration) *EventsHandler {
	if interval <= 0 {
		interval = time.Second
	}
	return &EventsHandler{
		jobs:     store,
		interval: interval,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.jobs.Get(r.Context(), id)
	if errors.Is(err, jobs.ErrNotFound) {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load job")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()
	// Reads only to notice the client going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	if err := h.send(conn, rec); err != nil || rec.Status.Terminal() {
		h.close(conn, "job finished")
		return
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	last := rec.UpdatedAt
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		cur, err := h.jobs.Get(ctx, id)
		if err != nil {
			if errors.Is(err, jobs.ErrNotFound) {
				h.close(conn, "job expired")
				return
			}
			continue
		}
		if cur.UpdatedAt.Equal(last) {
			continue
		}
		last = cur.UpdatedAt
		if err := h.send(conn, cur); err != nil {
			return
		}
		if cur.Status.Terminal() {
			h.close(conn, "job finished")
			return
		}
	}
}

func (h *EventsHandler) send(conn *websocket.Conn, rec *jobs.Record) error {
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(rec)
}

func (h *EventsHandler) close(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}
