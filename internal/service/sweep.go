package service

import (
	"context"
	"errors"
	"time"

	"wager_service/internal/domain"
	"wager_service/internal/game"
	"wager_service/internal/logger"
	"wager_service/internal/session"
)

// Sweep periodically refunds sessions idle past the timeout. Refund
// failures leave the session Active for the next pass; a session the
// player resolved between scan and refund is skipped.
type Sweep struct {
	svc      *GameService
	registry *session.Registry
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time
	quit     chan struct{}
	done     chan struct{}
}

func NewSweep(svc *GameService, reg *session.Registry, interval, timeout time.Duration) *Sweep {
	return &Sweep{
		svc:      svc,
		registry: reg,
		interval: interval,
		timeout:  timeout,
		now:      time.Now,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (w *Sweep) Start() {
	go w.run()
}

func (w *Sweep) Stop() {
	close(w.quit)
	<-w.done
}

func (w *Sweep) run() {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.SweepOnce(context.Background())
		case <-w.quit:
			return
		}
	}
}

// SweepOnce scans the registry and refunds every expired session.
// Safe to call twice in a row: already-resolved sessions are skipped
// and a refund is committed at most once per session.
func (w *Sweep) SweepOnce(ctx context.Context) int {
	refunded := 0
	for _, g := range w.registry.Snapshot() {
		if g.Status() != game.StatusActive {
			continue
		}
		if w.now().Sub(g.LastActionAt()) <= w.timeout {
			continue
		}

		if err := w.svc.cancelSession(ctx, g, "refund:timeout"); err != nil {
			if errors.Is(err, domain.ErrGameAlreadyResolved) {
				continue
			}
			// Session stays Active; the next pass retries the refund.
			logger.Error("sweep refund failed", "token", g.Token(), "error", err)
			continue
		}

		refunded++
		sweepRefunds.Inc()
		logger.Info("swept abandoned session",
			"player_id", g.PlayerID(), "token", g.Token(), "stake", g.Stake().String())
	}
	return refunded
}
