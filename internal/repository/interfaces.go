package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"stitchlink/internal/domain/chat"
	"stitchlink/internal/domain/order"
	"stitchlink/internal/domain/review"
	"stitchlink/internal/domain/tailor"
)

type OrderRepository interface {
	// Create inserts the order and seeds its first history event in one
	// transaction.
	Create(ctx context.Context, o *order.Order) error
	GetByID(ctx context.Context, id uint) (order.Order, error)
	// Update saves the order and appends a history event atomically.
	Update(ctx context.Context, o order.Order, event order.Event) error
	SetReviewID(ctx context.Context, orderID, reviewID uint) error
	ListEvents(ctx context.Context, orderID uint) ([]order.Event, error)
	ListForUser(ctx context.Context, userID uint, role chat.Role, page, limit int) ([]order.Order, int64, error)
}

type ConversationRepository interface {
	Create(ctx context.Context, c *chat.Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (chat.Conversation, error)
	GetByThreadKey(ctx context.Context, key string) (chat.Conversation, error)
	GetByOrderID(ctx context.Context, orderID uint) (chat.Conversation, error)
	Update(ctx context.Context, c chat.Conversation) error
	// Lock flips the one-way locked flag and stamps the closing preview.
	Lock(ctx context.Context, id uuid.UUID, reviewID uint, preview string, at time.Time) error
	// RecordMessage refreshes the preview cache and increments the
	// recipient's unread counter in a single row write.
	RecordMessage(ctx context.Context, id uuid.UUID, recipient chat.Role, preview string, at time.Time) error
	MarkRead(ctx context.Context, id uuid.UUID, reader chat.Role, at time.Time) error
	ListForUser(ctx context.Context, userID uint, role chat.Role, page, limit int) ([]chat.Conversation, int64, error)
	// FindReviewedUnlocked returns conversations whose order already carries
	// a review but whose locked flag has not caught up yet.
	FindReviewedUnlocked(ctx context.Context, limit int) ([]chat.Conversation, error)
}

type MessageRepository interface {
	Create(ctx context.Context, m *chat.Message) error
	ListSince(ctx context.Context, conversationID uuid.UUID, after time.Time, limit int) ([]chat.Message, error)
	ListBefore(ctx context.Context, conversationID uuid.UUID, before time.Time, limit int) ([]chat.Message, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, r *review.Review) error
	GetByID(ctx context.Context, id uint) (review.Review, error)
	GetByOrderID(ctx context.Context, orderID uint) (review.Review, error)
	ListForTailor(ctx context.Context, tailorID uint, page, limit int) ([]review.Review, int64, error)
}

type TailorRepository interface {
	Create(ctx context.Context, t *tailor.Tailor) error
	GetByID(ctx context.Context, id uint) (tailor.Tailor, error)
	GetByUserID(ctx context.Context, userID uint) (tailor.Tailor, error)
}
