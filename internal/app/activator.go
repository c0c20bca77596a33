package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/five82/roomperms/internal/editor"
	"github.com/five82/roomperms/internal/matrix"
)

const (
	defaultRetryInterval = 2 * time.Second
	maxBackoff           = 30 * time.Second
)

// activatable is the part of the presenter the activation loop drives.
type activatable interface {
	Activate() bool
	AwaitFetch(ctx context.Context) error
	State() editor.State
	Done() <-chan struct{}
	Close()
}

// StartActivator launches a background goroutine that activates p and,
// while no snapshot has loaded, activates it again with exponential
// backoff. It returns immediately and stops once loaded, when ctx ends or
// when p is closed.
//
// lastErr, when set, reports the error of the most recent fetch. If that
// error is permanent (see matrix.IsPermanent) the loop closes p and stops.
func StartActivator(ctx context.Context, p activatable, interval time.Duration, lastErr func() error) {
	if interval <= 0 {
		interval = defaultRetryInterval
	}
	go func() {
		failures := 0
		for {
			p.Activate()
			if err := p.AwaitFetch(ctx); err != nil {
				return
			}
			if p.State().Loaded() {
				return
			}
			if lastErr != nil {
				if err := lastErr(); matrix.IsPermanent(err) {
					log.Error().Err(err).Msg("homeserver refused access, giving up")
					p.Close()
					return
				}
			}

			delay := calculateBackoff(failures, interval)
			failures++
			log.Warn().
				Int("attempt", failures).
				Dur("retry_in", delay).
				Msg("permissions unavailable, retrying")

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-p.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}

// calculateBackoff doubles base for every consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	delay := base
	for i := 0; i < failures; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}
