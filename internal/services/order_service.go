package services

import (
	"context"
	"database/sql"
	"time"

	"stitchlink/internal/domain/chat"
	"stitchlink/internal/domain/order"
	"stitchlink/internal/repository"
	stitch_errors "stitchlink/pkg/errors"
	"stitchlink/pkg/logger"
)

// OrderService drives the order lifecycle. Every successful transition
// appends one history event; creation seeds the first one.
type OrderService struct {
	orders    repository.OrderRepository
	directory Directory
	log       *logger.Logger
	clock     func() time.Time
}

func NewOrderService(orders repository.OrderRepository, directory Directory, log *logger.Logger) *OrderService {
	return &OrderService{
		orders:    orders,
		directory: directory,
		log:       log,
		clock:     time.Now,
	}
}

type RequestOrderInput struct {
	TailorID          uint
	GarmentType       string
	FabricOption      string
	MeasurementMethod string
	Measurements      map[string]string
	Address           string
}

type QuoteInput struct {
	Price                float64
	DeliveryDays         int
	ExpectedDeliveryDate time.Time
	Note                 string
}

func (s *OrderService) Request(ctx context.Context, actor Identity, in RequestOrderInput) (order.Order, error) {
	if actor.Role != chat.RoleCustomer {
		return order.Order{}, stitch_errors.ErrForbidden
	}
	if in.TailorID == 0 {
		return order.Order{}, stitch_errors.NewFieldError("tailor_id", "is required")
	}
	if in.GarmentType == "" {
		return order.Order{}, stitch_errors.NewFieldError("garment_type", "is required")
	}
	if in.Address == "" {
		return order.Order{}, stitch_errors.NewFieldError("address", "is required")
	}

	if _, err := s.directory.Resolve(ctx, in.TailorID); err != nil {
		return order.Order{}, err
	}

	o := order.Order{
		CustomerID:        actor.UserID,
		TailorID:          in.TailorID,
		GarmentType:       in.GarmentType,
		FabricOption:      in.FabricOption,
		MeasurementMethod: in.MeasurementMethod,
		Measurements:      in.Measurements,
		Address:           in.Address,
		Status:            order.StatusRequested,
	}
	if err := s.orders.Create(ctx, &o); err != nil {
		return order.Order{}, err
	}

	s.log.InfofCtx(ctx, "order %d requested by customer %d for tailor %d", o.ID, actor.UserID, in.TailorID)
	return o, nil
}

func (s *OrderService) Quote(ctx context.Context, actor Identity, orderID uint, in QuoteInput) (order.Order, error) {
	if actor.Role != chat.RoleTailor {
		return order.Order{}, stitch_errors.ErrForbidden
	}
	if in.Price <= 0 {
		return order.Order{}, stitch_errors.NewFieldError("price", "must be greater than zero")
	}

	t, err := s.directory.ResolveByUserID(ctx, actor.UserID)
	if err != nil {
		return order.Order{}, err
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return order.Order{}, err
	}
	if o.TailorID != t.ID {
		return order.Order{}, stitch_errors.ErrForbidden
	}
	if !o.Status.CanQuote() {
		return order.Order{}, stitch_errors.ErrInvalidTransition
	}

	now := s.clock()
	o.QuotePrice = in.Price
	o.QuoteDeliveryDays = in.DeliveryDays
	o.QuoteNote = in.Note
	o.QuotedAt = sql.NullTime{Time: now, Valid: true}
	if !in.ExpectedDeliveryDate.IsZero() {
		o.QuoteExpectedDelivery = sql.NullTime{Time: in.ExpectedDeliveryDate, Valid: true}
	} else if in.DeliveryDays > 0 {
		o.QuoteExpectedDelivery = sql.NullTime{Time: now.AddDate(0, 0, in.DeliveryDays), Valid: true}
	}
	o.Status = order.StatusQuoted

	event := order.Event{Status: order.StatusQuoted, Note: in.Note, CreatedAt: now}
	if err := s.orders.Update(ctx, o, event); err != nil {
		return order.Order{}, err
	}
	return s.orders.GetByID(ctx, orderID)
}

func (s *OrderService) Accept(ctx context.Context, actor Identity, orderID uint) (order.Order, error) {
	if actor.Role != chat.RoleCustomer {
		return order.Order{}, stitch_errors.ErrForbidden
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return order.Order{}, err
	}
	if o.CustomerID != actor.UserID {
		return order.Order{}, stitch_errors.ErrForbidden
	}
	if !o.Status.CanAccept() {
		return order.Order{}, stitch_errors.ErrInvalidTransition
	}

	o.Status = order.StatusAccepted
	event := order.Event{Status: order.StatusAccepted, CreatedAt: s.clock()}
	if err := s.orders.Update(ctx, o, event); err != nil {
		return order.Order{}, err
	}
	return s.orders.GetByID(ctx, orderID)
}

// Advance moves an order to one of the progress targets or cancels it.
// Cancellation is open to either party; progress updates are the tailor's.
func (s *OrderService) Advance(ctx context.Context, actor Identity, orderID uint, target order.Status, note string) (order.Order, error) {
	if !order.AdvanceTargets[target] {
		return order.Order{}, stitch_errors.NewFieldError("status", "is not a valid target")
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return order.Order{}, err
	}

	switch actor.Role {
	case chat.RoleCustomer:
		if o.CustomerID != actor.UserID {
			return order.Order{}, stitch_errors.ErrForbidden
		}
		if target != order.StatusCancelled {
			return order.Order{}, stitch_errors.ErrForbidden
		}
	case chat.RoleTailor:
		t, err := s.directory.ResolveByUserID(ctx, actor.UserID)
		if err != nil {
			return order.Order{}, err
		}
		if o.TailorID != t.ID {
			return order.Order{}, stitch_errors.ErrForbidden
		}
	default:
		return order.Order{}, stitch_errors.ErrForbidden
	}

	if !o.Status.CanAdvance(target) {
		return order.Order{}, stitch_errors.ErrInvalidTransition
	}

	o.Status = target
	event := order.Event{Status: target, Note: note, CreatedAt: s.clock()}
	if err := s.orders.Update(ctx, o, event); err != nil {
		return order.Order{}, err
	}
	s.log.InfofCtx(ctx, "order %d moved to %s", orderID, target)
	return s.orders.GetByID(ctx, orderID)
}

func (s *OrderService) GetByID(ctx context.Context, actor Identity, orderID uint) (order.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return order.Order{}, err
	}
	if err := s.authorize(ctx, actor, o); err != nil {
		return order.Order{}, err
	}
	return o, nil
}

func (s *OrderService) ListForActor(ctx context.Context, actor Identity, page, limit int) ([]order.Order, int64, error) {
	if limit <= 0 {
		limit = 50
	}
	switch actor.Role {
	case chat.RoleCustomer:
		return s.orders.ListForUser(ctx, actor.UserID, chat.RoleCustomer, page, limit)
	case chat.RoleTailor:
		t, err := s.directory.ResolveByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, 0, err
		}
		return s.orders.ListForUser(ctx, t.ID, chat.RoleTailor, page, limit)
	}
	return nil, 0, stitch_errors.ErrForbidden
}

func (s *OrderService) authorize(ctx context.Context, actor Identity, o order.Order) error {
	switch actor.Role {
	case chat.RoleCustomer:
		if o.CustomerID != actor.UserID {
			return stitch_errors.ErrForbidden
		}
	case chat.RoleTailor:
		t, err := s.directory.ResolveByUserID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if o.TailorID != t.ID {
			return stitch_errors.ErrForbidden
		}
	default:
		return stitch_errors.ErrForbidden
	}
	return nil
}
