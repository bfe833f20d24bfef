package reconcile

import (
	"context"
	"time"

	"stitchlink/internal/repository"
	"stitchlink/pkg/logger"
)

// Sweeper periodically scans for conversations whose order carries a review
// but whose lock has not landed, and applies the reconcile repair. It closes
// the window left open when the inline best-effort lock write fails and
// neither party reopens the thread.
type Sweeper struct {
	conversations repository.ConversationRepository
	reconciler    *Reconciler
	log           *logger.Logger
	batchSize     int
	interval      time.Duration
}

func NewSweeper(conversations repository.ConversationRepository, reconciler *Reconciler, log *logger.Logger, batchSize int, interval time.Duration) *Sweeper {
	return &Sweeper{
		conversations: conversations,
		reconciler:    reconciler,
		log:           log,
		batchSize:     batchSize,
		interval:      interval,
	}
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	stale, err := s.conversations.FindReviewedUnlocked(ctx, s.batchSize)
	if err != nil {
		s.log.Errorf("sweep: scan conversations: %s", err)
		return
	}
	if len(stale) == 0 {
		return
	}

	for _, c := range stale {
		if c.OrderID == nil {
			continue
		}
		if err := s.reconciler.ReconcileOrder(ctx, *c.OrderID); err != nil {
			s.log.Errorf("sweep: reconcile order %d: %s", *c.OrderID, err)
		}
	}
}

type Runner struct {
	sweeper *Sweeper
}

func NewRunner(sweeper *Sweeper) *Runner {
	return &Runner{sweeper: sweeper}
}

func (r *Runner) Start(ctx context.Context) {
	go r.sweeper.Run(ctx)
}
