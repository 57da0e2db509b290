package worker

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Sjf12/AACL/internal/core/domain"
	"github.com/Sjf12/AACL/internal/core/notifications"
)

const (
	defaultQueueSize   = 256
	defaultMaxAttempts = 5
)

// WebhookWorker delivers executed-action events to one URL.
// Publish only enqueues; Run does the sending.
type WebhookWorker struct {
	url    string
	secret string
	queue  chan domain.ActionEvent

	Client      *http.Client
	MaxAttempts int
	// Backoff returns the wait before retry number attempt (1-based)
	Backoff func(attempt int) time.Duration
}

func NewWebhookWorker(url, secret string) *WebhookWorker {
	if secret == "" {
		slog.Warn("⚠️ WEBHOOK_SECRET is empty, webhook signatures are not secret")
	}
	return &WebhookWorker{
		url:         url,
		secret:      secret,
		queue:       make(chan domain.ActionEvent, defaultQueueSize),
		Client:      notifications.DefaultClient,
		MaxAttempts: defaultMaxAttempts,
		Backoff: func(attempt int) time.Duration {
			return time.Duration(attempt*10) * time.Second
		},
	}
}

// Publish queues the event. When the queue is full the event is dropped.
func (w *WebhookWorker) Publish(e domain.ActionEvent) {
	select {
	case w.queue <- e:
	default:
		slog.Warn("Webhook queue full, dropping event", "grammar_id", e.GrammarID)
	}
}

// Run sends queued events until ctx is cancelled
func (w *WebhookWorker) Run(ctx context.Context) {
	slog.Info("👷 Webhook Worker started", "url", w.url)
	for {
		select {
		case <-ctx.Done():
			slog.Info("Webhook Worker stopped", "pending", len(w.queue))
			return
		case e := <-w.queue:
			w.deliver(ctx, e)
		}
	}
}

func (w *WebhookWorker) deliver(ctx context.Context, e domain.ActionEvent) {
	envelope := notifications.Envelope{Event: domain.EventActionExecuted, Data: e}

	for attempt := 1; ; attempt++ {
		err := notifications.SendWebhook(ctx, w.Client, w.url, envelope, w.secret)
		if err == nil {
			slog.Info("✅ Worker: Webhook Sent Successfully!", "grammar_id", e.GrammarID)
			return
		}

		slog.Error("Worker: Webhook failed", "error", err, "attempts", attempt, "grammar_id", e.GrammarID)
		if attempt >= w.MaxAttempts {
			slog.Error("Worker: Event marked as FAILED (Max attempts reached)", "grammar_id", e.GrammarID)
			return
		}

		wait := w.Backoff(attempt)
		slog.Info("Worker: Scheduled retry", "in", wait)
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}
