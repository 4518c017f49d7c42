package app

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultPollInterval = 5 * time.Second
	maxBackoff          = 30 * time.Second
)

// StartPoller launches a background goroutine that calls poll every
// interval until ctx is done. Consecutive failures double the wait, up to
// maxBackoff; a success resets it. It returns immediately.
func StartPoller(ctx context.Context, interval time.Duration, log *slog.Logger, poll func(context.Context) error) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if log == nil {
		log = slog.Default()
	}
	go func() {
		failures := 0
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			if err := poll(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				failures++
				log.Warn("poll failed", "error", err, "failures", failures)
			} else {
				failures = 0
			}
			timer.Reset(calculateBackoff(failures, interval))
		}
	}()
}

// calculateBackoff returns base doubled once per failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
