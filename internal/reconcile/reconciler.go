package reconcile

import (
	"context"
	"errors"
	"time"

	"stitchlink/internal/repository"
	stitch_errors "stitchlink/pkg/errors"
	"stitchlink/pkg/logger"
)

// LockNotice is the system preview stamped on a conversation when the
// review lock lands.
const LockNotice = "Review submitted. This conversation is closed."

// Reconciler repairs the review/order/conversation triple so all three agree
// that a review exists: order.review_id is backfilled and the conversation is
// locked. The operation is idempotent and is invoked both inline after a
// review write and lazily by the background sweep and the conversation
// ensure path.
type Reconciler struct {
	orders        repository.OrderRepository
	reviews       repository.ReviewRepository
	conversations repository.ConversationRepository
	log           *logger.Logger
	clock         func() time.Time
}

func NewReconciler(
	orders repository.OrderRepository,
	reviews repository.ReviewRepository,
	conversations repository.ConversationRepository,
	log *logger.Logger,
) *Reconciler {
	return &Reconciler{
		orders:        orders,
		reviews:       reviews,
		conversations: conversations,
		log:           log,
		clock:         time.Now,
	}
}

// ReconcileOrder brings the order and its conversation in line with the
// review ledger. No review means nothing to repair.
func (r *Reconciler) ReconcileOrder(ctx context.Context, orderID uint) error {
	rev, err := r.reviews.GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, stitch_errors.ErrNotFound) {
			return nil
		}
		return err
	}

	o, err := r.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o.ReviewID == nil {
		if err := r.orders.SetReviewID(ctx, orderID, rev.ID); err != nil {
			return err
		}
	}

	c, err := r.conversations.GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, stitch_errors.ErrNotFound) {
			// No thread yet; ensure will create it locked.
			return nil
		}
		return err
	}
	if c.Locked {
		return nil
	}

	if err := r.conversations.Lock(ctx, c.ID, rev.ID, LockNotice, r.clock()); err != nil {
		return err
	}
	r.log.InfofCtx(ctx, "conversation %s locked for order %d review %d", c.ID, orderID, rev.ID)
	return nil
}
