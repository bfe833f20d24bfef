package services

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"stitchlink/internal/domain/chat"
	"stitchlink/internal/domain/order"
	"stitchlink/internal/domain/review"
	"stitchlink/internal/reconcile"
	"stitchlink/internal/repository"
	stitch_errors "stitchlink/pkg/errors"
	"stitchlink/pkg/logger"
)

// ReviewService owns review submission: the one operation that writes three
// entities as a single logical unit. The review row is the primary write;
// order backfill and the conversation lock ride behind it via the reconciler
// and are never allowed to fail the request.
type ReviewService struct {
	reviews    repository.ReviewRepository
	orders     repository.OrderRepository
	reconciler *reconcile.Reconciler
	log        *logger.Logger
	clock      func() time.Time
}

func NewReviewService(
	reviews repository.ReviewRepository,
	orders repository.OrderRepository,
	reconciler *reconcile.Reconciler,
	log *logger.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:    reviews,
		orders:     orders,
		reconciler: reconciler,
		log:        log,
		clock:      time.Now,
	}
}

type SubmitReviewInput struct {
	Rating int
	Text   string
}

type SubmitReviewResult struct {
	Review review.Review
	// AlreadySubmitted is set when a review for the order existed before
	// this call, including when a concurrent submission won the race.
	AlreadySubmitted bool
}

func (s *ReviewService) Submit(ctx context.Context, actor Identity, orderID uint, in SubmitReviewInput) (SubmitReviewResult, error) {
	if actor.Role != chat.RoleCustomer {
		return SubmitReviewResult{}, stitch_errors.ErrForbidden
	}
	if in.Rating < review.MinRating || in.Rating > review.MaxRating {
		return SubmitReviewResult{}, stitch_errors.NewFieldError("rating", "must be between 1 and 5")
	}
	if n := utf8.RuneCountInString(in.Text); n < review.MinTextLen || n > review.MaxTextLen {
		return SubmitReviewResult{}, stitch_errors.NewFieldError("text", "must be between 2 and 800 characters")
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return SubmitReviewResult{}, err
	}
	if o.CustomerID != actor.UserID {
		return SubmitReviewResult{}, stitch_errors.ErrForbidden
	}
	if o.Status != order.StatusDelivered {
		return SubmitReviewResult{}, stitch_errors.ErrInvalidTransition
	}
	if o.ReviewID != nil {
		existing, err := s.reviews.GetByID(ctx, *o.ReviewID)
		if err != nil {
			return SubmitReviewResult{}, err
		}
		return SubmitReviewResult{Review: existing, AlreadySubmitted: true}, nil
	}

	// A concurrent submission may have created the row while the order's
	// back-reference was still unset; prefer the ledger over the order.
	if existing, err := s.reviews.GetByOrderID(ctx, orderID); err == nil {
		return s.settleExisting(ctx, orderID, existing)
	} else if !errors.Is(err, stitch_errors.ErrNotFound) {
		return SubmitReviewResult{}, err
	}

	rev := review.Review{
		OrderID:    orderID,
		TailorID:   o.TailorID,
		CustomerID: actor.UserID,
		Rating:     in.Rating,
		Text:       in.Text,
		CreatedAt:  s.clock(),
	}
	if err := s.reviews.Create(ctx, &rev); err != nil {
		if errors.Is(err, stitch_errors.ErrAlreadyExists) {
			// Lost the unique-key race on order_id; the winner's row stands.
			winner, ferr := s.reviews.GetByOrderID(ctx, orderID)
			if ferr != nil {
				return SubmitReviewResult{}, ferr
			}
			return s.settleExisting(ctx, orderID, winner)
		}
		return SubmitReviewResult{}, err
	}

	if err := s.orders.SetReviewID(ctx, orderID, rev.ID); err != nil {
		// Review creation is never rolled back for a secondary write; the
		// reconciler closes the gap.
		s.log.ErrorfCtx(ctx, "backfill review id on order %d: %s", orderID, err)
	}

	if err := s.reconciler.ReconcileOrder(ctx, orderID); err != nil {
		s.log.ErrorfCtx(ctx, "lock cascade for order %d: %s", orderID, err)
	}

	s.log.InfofCtx(ctx, "review %d submitted for order %d", rev.ID, orderID)
	return SubmitReviewResult{Review: rev}, nil
}

func (s *ReviewService) settleExisting(ctx context.Context, orderID uint, existing review.Review) (SubmitReviewResult, error) {
	if err := s.orders.SetReviewID(ctx, orderID, existing.ID); err != nil {
		s.log.ErrorfCtx(ctx, "backfill review id on order %d: %s", orderID, err)
	}
	if err := s.reconciler.ReconcileOrder(ctx, orderID); err != nil {
		s.log.ErrorfCtx(ctx, "lock cascade for order %d: %s", orderID, err)
	}
	return SubmitReviewResult{Review: existing, AlreadySubmitted: true}, nil
}

func (s *ReviewService) ListForTailor(ctx context.Context, tailorID uint, page, limit int) ([]review.Review, int64, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.reviews.ListForTailor(ctx, tailorID, page, limit)
}
