package services

import (
	"context"
	"database/sql"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"stitchlink/internal/domain/chat"
	"stitchlink/internal/domain/order"
	"stitchlink/internal/domain/tailor"
	"stitchlink/internal/reconcile"
	"stitchlink/internal/repository"
	stitch_errors "stitchlink/pkg/errors"
	"stitchlink/pkg/logger"
)

const previewMaxLen = 120

// ChatService coordinates conversations and their message log. The thread_key
// uniqueness constraint is the real lock for concurrent ensures; everything
// here is best-effort lookup plus a constraint-violation fallback.
type ChatService struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	orders        repository.OrderRepository
	directory     Directory
	log           *logger.Logger
	clock         func() time.Time
}

func NewChatService(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	orders repository.OrderRepository,
	directory Directory,
	log *logger.Logger,
) *ChatService {
	return &ChatService{
		conversations: conversations,
		messages:      messages,
		orders:        orders,
		directory:     directory,
		log:           log,
		clock:         time.Now,
	}
}

type EnsureInput struct {
	CustomerID   uint
	CustomerName string
	// One of TailorID / TailorUserID / OrderID must identify the tailor.
	TailorID     uint
	TailorUserID uint
	OrderID      *uint
}

type SendMessageInput struct {
	Text           string
	AttachmentURL  string
	AttachmentKind string
}

// Ensure is the idempotent get-or-create for a conversation keyed on
// (customer, tailor, order). An existing thread gets the repair pass; a
// create that loses the uniqueness race is converted into a re-fetch.
func (s *ChatService) Ensure(ctx context.Context, in EnsureInput) (chat.Conversation, error) {
	if in.CustomerID == 0 {
		return chat.Conversation{}, stitch_errors.NewFieldError("customer_id", "is required")
	}

	var o *order.Order
	if in.OrderID != nil {
		loaded, err := s.orders.GetByID(ctx, *in.OrderID)
		if err != nil {
			return chat.Conversation{}, err
		}
		if loaded.CustomerID != in.CustomerID {
			return chat.Conversation{}, stitch_errors.ErrForbidden
		}
		o = &loaded
	}

	t, err := s.resolveTailor(ctx, in, o)
	if err != nil {
		return chat.Conversation{}, err
	}
	if o != nil && o.TailorID != t.ID {
		return chat.Conversation{}, stitch_errors.NewFieldError("tailor_id", "does not match the order")
	}

	key := chat.ThreadKey(in.CustomerID, t.ID, in.OrderID)

	existing, err := s.conversations.GetByThreadKey(ctx, key)
	if err == nil {
		return s.repair(ctx, existing, t, o)
	}
	if !errors.Is(err, stitch_errors.ErrNotFound) {
		return chat.Conversation{}, err
	}

	now := s.clock()
	c := chat.Conversation{
		ID:              uuid.New(),
		CustomerID:      in.CustomerID,
		TailorID:        t.ID,
		OrderID:         in.OrderID,
		ThreadKey:       key,
		CustomerName:    in.CustomerName,
		TailorName:      t.Name,
		TailorAvatarURL: t.AvatarURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if o != nil && o.ReviewID != nil {
		// The order was already reviewed, so the thread is born closed.
		c.Locked = true
		c.ReviewID = o.ReviewID
		c.LastMessageText = reconcile.LockNotice
		c.LastMessageAt = sql.NullTime{Time: now, Valid: true}
	}

	if err := s.conversations.Create(ctx, &c); err != nil {
		if errors.Is(err, stitch_errors.ErrAlreadyExists) {
			// Lost the unique-key race; the other party's row is canonical.
			won, ferr := s.conversations.GetByThreadKey(ctx, key)
			if ferr != nil {
				return chat.Conversation{}, ferr
			}
			return s.repair(ctx, won, t, o)
		}
		return chat.Conversation{}, err
	}

	s.log.InfofCtx(ctx, "conversation %s created for thread %s", c.ID, key)
	return c, nil
}

// repair is the self-healing pass run on every ensure of an existing thread:
// it backfills missing display snapshots and upgrades the conversation to
// locked when the order's review landed without the cascade write.
func (s *ChatService) repair(ctx context.Context, c chat.Conversation, t tailor.Tailor, o *order.Order) (chat.Conversation, error) {
	changed := false
	if c.TailorName == "" && t.Name != "" {
		c.TailorName = t.Name
		changed = true
	}
	if c.TailorAvatarURL == "" && t.AvatarURL != "" {
		c.TailorAvatarURL = t.AvatarURL
		changed = true
	}
	if changed {
		if err := s.conversations.Update(ctx, c); err != nil {
			return chat.Conversation{}, err
		}
	}

	if o != nil && o.ReviewID != nil && !c.Locked {
		now := s.clock()
		if err := s.conversations.Lock(ctx, c.ID, *o.ReviewID, reconcile.LockNotice, now); err != nil {
			return chat.Conversation{}, err
		}
		c.Locked = true
		c.ReviewID = o.ReviewID
		c.LastMessageText = reconcile.LockNotice
		c.LastMessageAt = sql.NullTime{Time: now, Valid: true}
	}

	return c, nil
}

func (s *ChatService) resolveTailor(ctx context.Context, in EnsureInput, o *order.Order) (tailor.Tailor, error) {
	switch {
	case in.TailorID != 0:
		return s.directory.Resolve(ctx, in.TailorID)
	case in.TailorUserID != 0:
		return s.directory.ResolveByUserID(ctx, in.TailorUserID)
	case o != nil:
		return s.directory.Resolve(ctx, o.TailorID)
	}
	return tailor.Tailor{}, stitch_errors.NewFieldError("tailor_id", "is required")
}

// SendMessage appends to the log, refreshes the preview cache and bumps the
// recipient's unread counter. A locked conversation rejects the send outright.
func (s *ChatService) SendMessage(ctx context.Context, actor Identity, conversationID uuid.UUID, in SendMessageInput) (chat.Message, error) {
	c, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return chat.Message{}, err
	}
	if err := s.authorize(ctx, actor, c); err != nil {
		return chat.Message{}, err
	}
	if c.Locked {
		return chat.Message{}, stitch_errors.ErrChatClosed
	}
	if in.Text == "" && in.AttachmentURL == "" {
		return chat.Message{}, stitch_errors.NewFieldError("text", "is required")
	}

	now := s.clock()
	m := chat.Message{
		ID:             uuid.New(),
		ConversationID: c.ID,
		SenderID:       actor.UserID,
		SenderRole:     actor.Role,
		Text:           in.Text,
		CreatedAt:      now,
	}
	if in.AttachmentURL != "" {
		m.AttachmentURL = sql.NullString{String: in.AttachmentURL, Valid: true}
		m.AttachmentKind = sql.NullString{String: in.AttachmentKind, Valid: true}
	}

	if err := s.messages.Create(ctx, &m); err != nil {
		return chat.Message{}, err
	}

	preview := in.Text
	if preview == "" {
		preview = "[attachment]"
	}
	if utf8.RuneCountInString(preview) > previewMaxLen {
		// Slice on rune boundaries so a multibyte character at the cut
		// point is dropped whole instead of being split.
		preview = string([]rune(preview)[:previewMaxLen])
	}
	if err := s.conversations.RecordMessage(ctx, c.ID, actor.Role.Peer(), preview, now); err != nil {
		// The message row is already durable; a lost preview or counter
		// update is cosmetic and the next send overwrites it.
		s.log.ErrorfCtx(ctx, "record message on conversation %s: %s", c.ID, err)
	}

	return m, nil
}

// MarkRead resets the caller's own unread counter and stamps their
// last-read time. The counterpart's counter is untouched.
func (s *ChatService) MarkRead(ctx context.Context, actor Identity, conversationID uuid.UUID) error {
	c, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, actor, c); err != nil {
		return err
	}
	return s.conversations.MarkRead(ctx, c.ID, actor.Role, s.clock())
}

// ListMessagesSince is the polling read: everything created strictly after
// the cursor, oldest first.
func (s *ChatService) ListMessagesSince(ctx context.Context, actor Identity, conversationID uuid.UUID, after time.Time, limit int) ([]chat.Message, error) {
	c, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, c); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}
	return s.messages.ListSince(ctx, c.ID, after, limit)
}

// ListMessagesBefore pages backwards through history, newest first, for
// scroll-back reads.
func (s *ChatService) ListMessagesBefore(ctx context.Context, actor Identity, conversationID uuid.UUID, before time.Time, limit int) ([]chat.Message, error) {
	c, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, c); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}
	return s.messages.ListBefore(ctx, c.ID, before, limit)
}

func (s *ChatService) ListConversations(ctx context.Context, actor Identity, page, limit int) ([]chat.Conversation, int64, error) {
	if limit <= 0 {
		limit = 50
	}
	switch actor.Role {
	case chat.RoleCustomer:
		return s.conversations.ListForUser(ctx, actor.UserID, chat.RoleCustomer, page, limit)
	case chat.RoleTailor:
		t, err := s.directory.ResolveByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, 0, err
		}
		return s.conversations.ListForUser(ctx, t.ID, chat.RoleTailor, page, limit)
	}
	return nil, 0, stitch_errors.ErrForbidden
}

func (s *ChatService) GetByID(ctx context.Context, actor Identity, conversationID uuid.UUID) (chat.Conversation, error) {
	c, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return chat.Conversation{}, err
	}
	if err := s.authorize(ctx, actor, c); err != nil {
		return chat.Conversation{}, err
	}
	return c, nil
}

func (s *ChatService) authorize(ctx context.Context, actor Identity, c chat.Conversation) error {
	switch actor.Role {
	case chat.RoleCustomer:
		if c.CustomerID != actor.UserID {
			return stitch_errors.ErrForbidden
		}
	case chat.RoleTailor:
		t, err := s.directory.ResolveByUserID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if c.TailorID != t.ID {
			return stitch_errors.ErrForbidden
		}
	default:
		return stitch_errors.ErrForbidden
	}
	return nil
}
