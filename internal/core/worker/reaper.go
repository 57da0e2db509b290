package worker

import (
	"context"
	"log/slog"
	"time"
)

// Reaper evicts dead grammars
type Reaper interface {
	Reap(now time.Time) int
}

// RunReaper calls Reap every interval until ctx is cancelled.
// Issuance and validation never wait on it.
func RunReaper(ctx context.Context, r Reaper, interval time.Duration, now func() time.Time) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("🧹 Grammar reaper started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("Grammar reaper stopped")
			return
		case <-ticker.C:
			if removed := r.Reap(now()); removed > 0 {
				slog.Debug("Reaped grammars", "removed", removed)
			}
		}
	}
}
