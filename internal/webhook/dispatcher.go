// Package webhook delivers signed job notifications to caller-supplied URLs.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	EventPodcastCompleted = "podcast.completed"
	EventPodcastFailed    = "podcast.failed"
	EventBatchCompleted   = "batch.completed"
)

const (
	HeaderEvent     = "X-Webhook-Event"
	HeaderSignature = "X-Webhook-Signature"
	HeaderID        = "X-Webhook-ID"
)

type Dispatcher struct {
	db         *pgxpool.Pool
	httpClient *http.Client
	secret     string
}

type DeliveryRequest struct {
	ID      string
	JobID   string
	URL     string
	Event   string
	Payload []byte
	Attempt int
}

// NewDispatcher builds a dispatcher. db may be nil, in which case
// deliveries are only logged.
func NewDispatcher(db *pgxpool.Pool, secret string, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		db:         db,
		httpClient: &http.Client{Timeout: timeout},
		secret:     secret,
	}
}

// Deliver posts one payload. Network errors and non-2xx responses are
// returned so the caller's queue can retry.
func (d *Dispatcher) Deliver(ctx context.Context, req DeliveryRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(req.Payload))
	if err != nil {
		d.recordDelivery(ctx, req, 0, err)
		return fmt.Errorf("build webhook request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(HeaderEvent, req.Event)
	httpReq.Header.Set(HeaderSignature, Sign(req.Payload, d.secret))
	httpReq.Header.Set(HeaderID, req.ID)

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		slog.ErrorContext(ctx, "webhook delivery failed", "error", err, "delivery_id", req.ID, "job_id", req.JobID)
		d.recordDelivery(ctx, req, 0, err)
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode >= 300 {
		err := fmt.Errorf("webhook endpoint returned %d", resp.StatusCode)
		slog.WarnContext(ctx, "webhook received non-success response", "status", resp.StatusCode, "delivery_id", req.ID)
		d.recordDelivery(ctx, req, resp.StatusCode, err)
		return err
	}
	d.recordDelivery(ctx, req, resp.StatusCode, nil)
	return nil
}

func (d *Dispatcher) recordDelivery(ctx context.Context, req DeliveryRequest, status int, deliveryErr error) {
	if d.db == nil {
		return
	}
	var deliveredAt *time.Time
	errText := ""
	if deliveryErr == nil {
		now := time.Now()
		deliveredAt = &now
	} else {
		errText = deliveryErr.Error()
	}
	attempt := req.Attempt
	if attempt < 1 {
		attempt = 1
	}

	_, err := d.db.Exec(context.WithoutCancel(ctx),
		`INSERT INTO webhook_deliveries (id, job_id, url, event, payload, response_status, error, attempt, delivered_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET response_status = EXCLUDED.response_status,
		   error = EXCLUDED.error, attempt = EXCLUDED.attempt, delivered_at = EXCLUDED.delivered_at`,
		req.ID, req.JobID, req.URL, req.Event, req.Payload, status, errText, attempt, deliveredAt,
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to record webhook delivery", "error", err)
	}
}

// Sign returns the signature header value for payload.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a signature header in constant time.
func Verify(payload []byte, secret, signature string) bool {
	got, ok := strings.CutPrefix(signature, "sha256=")
	if !ok {
		return false
	}
	sig, err := hex.DecodeString(got)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(sig, mac.Sum(nil))
}
