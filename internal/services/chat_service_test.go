package services

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stitchlink/internal/domain/chat"
	"stitchlink/internal/domain/order"
	"stitchlink/internal/reconcile"
	"stitchlink/internal/repository"
	stitch_errors "stitchlink/pkg/errors"
	"stitchlink/pkg/logger"
)

func (f *serviceFixture) chatService() *ChatService {
	return NewChatService(f.conversations, f.messages, f.orders, f.directory, logger.NewNop())
}

func (f *serviceFixture) seedOrder(t *testing.T, customerID, tailorID uint, status order.Status) order.Order {
	o := order.Order{CustomerID: customerID, TailorID: tailorID, GarmentType: "suit", Status: status}
	require.NoError(t, f.orders.Create(context.Background(), &o))
	return o
}

func TestEnsureCreatesConversation(t *testing.T) {
	f := setupServiceTest(t)
	svc := f.chatService()
	tl := f.seedTailor(t, 20, "Amara")
	o := f.seedOrder(t, 10, tl.ID, order.StatusAccepted)
	ctx := context.Background()

	c, err := svc.Ensure(ctx, EnsureInput{
		CustomerID:   10,
		CustomerName: "Femi",
		TailorID:     tl.ID,
		OrderID:      &o.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, uint(10), c.CustomerID)
	assert.Equal(t, tl.ID, c.TailorID)
	require.NotNil(t, c.OrderID)
	assert.Equal(t, o.ID, *c.OrderID)
	assert.Equal(t, "Amara", c.TailorName)
	assert.NotEmpty(t, c.TailorAvatarURL)
	assert.Equal(t, "Femi", c.CustomerName)
	assert.False(t, c.Locked)
	assert.Zero(t, c.UnreadCustomer)
	assert.Zero(t, c.UnreadTailor)
}

func TestEnsureIsIdempotent(t *testing.T) {
	f := setupServiceTest(t)
	svc := f.chatService()
	tl := f.seedTailor(t, 20, "Amara")
	o := f.seedOrder(t, 10, tl.ID, order.StatusAccepted)
	ctx := context.Background()

	in := EnsureInput{CustomerID: 10, TailorID: tl.ID, OrderID: &o.ID}
	first, err := svc.Ensure(ctx, in)
	require.NoError(t, err)

	second, err := svc.Ensure(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// Resolving the tailor by user id lands on the same thread.
	third, err := svc.Ensure(ctx, EnsureInput{CustomerID: 10, TailorUserID: 20, OrderID: &o.ID})
	require.NoError(t, err)
	assert.Equal(t, first.ID, third.ID)

	all, total, err := svc.ListConversations(ctx, Identity{UserID: 10, Role: chat.RoleCustomer}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, all, 1)
}

func TestEnsureInquiryThreadIsSeparate(t *testing.T) {
	f := setupServiceTest(t)
	svc := f.chatService()
	tl := f.seedTailor(t, 20, "Amara")
	o := f.seedOrder(t, 10, tl.ID, order.StatusAccepted)
	ctx := context.Background()

	withOrder, err := svc.Ensure(ctx, EnsureInput{CustomerID: 10, TailorID: tl.ID, OrderID: &o.ID})
	require.NoError(t, err)

	inquiry, err := svc.Ensure(ctx, EnsureInput{CustomerID: 10, TailorID: tl.ID})
	require.NoError(t, err)
	assert.NotEqual(t, withOrder.ID, inquiry.ID)
	assert.Nil(t, inquiry.OrderID)

	again, err := svc.Ensure(ctx, EnsureInput{CustomerID: 10, TailorID: tl.ID})
	require.NoError(t, err)
	assert.Equal(t, inquiry.ID, again.ID, "order-less ensures converge on one thread")
}

func TestEnsureGuards(t *testing.T) {
	f := setupServiceTest(t)
	svc := f.chatService()
	tl := f.seedTailor(t, 20, "Amara")
	stranger := f.seedTailor(t, 21, "Bode")
	o := f.seedOrder(t, 10, tl.ID, order.StatusAccepted)
	ctx := context.Background()

	_, err := svc.Ensure(ctx, EnsureInput{TailorID: tl.ID})
	assert.ErrorIs(t, err, stitch_errors.ErrInvalidInput, "customer id is required")

	_, err = svc.Ensure(ctx, EnsureInput{CustomerID: 10})
	assert.ErrorIs(t, err, stitch_errors.ErrInvalidInput, "some tailor reference is required")

	_, err = svc.Ensure(ctx, EnsureInput{CustomerID: 99, OrderID: &o.ID})
	assert.ErrorIs(t, err, stitch_errors.ErrForbidden, "order belongs to another customer")

	_, err = svc.Ensure(ctx, EnsureInput{CustomerID: 10, TailorID: stranger.ID, OrderID: &o.ID})
	assert.ErrorIs(t, err, stitch_errors.ErrInvalidInput, "tailor does not match the order")

	missing := uint(999)
	_, err = svc.Ensure(ctx, EnsureInput{CustomerID: 10, OrderID: &missing})
	assert.ErrorIs(t, err, stitch_errors.ErrNotFound)
}

func TestEnsureBornLockedForReviewedOrder(t *testing.T) {
	f := setupServiceTest(t)
	svc := f.chatService()
	tl := f.seedTailor(t, 20, "Amara")
	o := f.seedOrder(t, 10, tl.ID, order.StatusDelivered)
	require.NoError(t, f.orders.SetReviewID(context.Background(), o.ID, 42))
	ctx := context.Background()

	c, err := svc.Ensure(ctx, EnsureInput{CustomerID: 10, OrderID: &o.ID})
	require.NoError(t, err)
	assert.True(t, c.Locked)
	require.NotNil(t, c.ReviewID)
	assert.Equal(t, uint(42), *c.ReviewID)
	assert.Equal(t, reconcile.LockNotice, c.LastMessageText)
}

func TestEnsureRepairsStaleLock(t *testing.T) {
	f := setupServiceTest(t)
	svc := f.chatService()
	tl := f.seedTailor(t, 20, "Amara")
	o := f.seedOrder(t, 10, tl.ID, order.StatusDelivered)
	ctx := context.Background()

	c, err := svc.Ensure(ctx, EnsureInput{CustomerID: 10, OrderID: &o.ID})
	require.NoError(t, err)
	require.False(t, c.Locked)

	// The review lands but the cascade write is assumed lost.
	require.NoError(t, f.orders.SetReviewID(ctx, o.ID, 42))

	repaired, err := svc.Ensure(ctx, EnsureInput{CustomerID: 10, OrderID: &o.ID})
	require.NoError(t, err)
	assert.Equal(t, c.ID, repaired.ID)
	assert.True(t, repaired.Locked)
	require.NotNil(t, repaired.ReviewID)
	assert.Equal(t, uint(42), *repaired.ReviewID)

	stored, err := f.conversations.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, stored.Locked)
}

func TestSendMessageBumpsPeerUnread(t *testing.T) {
	f := setupServiceTest(t)
	svc := f.chatService()
	tl := f.seedTailor(t, 20, "Amara")
	ctx := context.Background()

	c, err := svc.Ensure(ctx, EnsureInput{CustomerID: 10, TailorID: tl.ID})
	require.NoError(t, err)

	customerActor := Identity{UserID: 10, Role: chat.RoleCustomer}
	tailorActor := Identity{UserID: 20, Role: chat.RoleTailor}

	m, err := svc.SendMessage(ctx, customerActor, c.ID, SendMessageInput{Text: "Is the jacket ready?"})
	require.NoError(t, err)
	assert.Equal(t, chat.RoleCustomer, m.SenderRole)

	got, err := f.conversations.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.UnreadTailor, "recipient counter bumps")
	assert.Equal(t, 0, got.UnreadCustomer, "sender counter untouched")
	assert.Equal(t, "Is the jacket ready?", got.LastMessageText)

	_, err = svc.SendMessage(ctx, tailorActor, c.ID, SendMessageInput{Text: "Almost."})
	require.NoError(t, err)

	got, err = f.conversations.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.UnreadTailor)
	assert.Equal(t, 1, got.UnreadCustomer)

	require.NoError(t, svc.MarkRead(ctx, customerActor, c.ID))
	got, err = f.conversations.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.UnreadCustomer)
	assert.Equal(t, 1, got.UnreadTailor, "the peer's counter is untouched by read")
	assert.True(t, got.CustomerLastReadAt.Valid)
}

func TestSendMessageGuards(t *testing.T) {
	f := setupServiceTest(t)
	svc := f.chatService()
	tl := f.seedTailor(t, 20, "Amara")
	ctx := context.Background()

	c, err := svc.Ensure(ctx, EnsureInput{CustomerID: 10, TailorID: tl.ID})
	require.NoError(t, err)

	customerActor := Identity{UserID: 10, Role: chat.RoleCustomer}

	_, err = svc.SendMessage(ctx, customerActor, c.ID, SendMessageInput{})
	assert.ErrorIs(t, err, stitch_errors.ErrInvalidInput, "text or attachment required")

	_, err = svc.SendMessage(ctx, Identity{UserID: 99, Role: chat.RoleCustomer}, c.ID, SendMessageInput{Text: "hi"})
	assert.ErrorIs(t, err, stitch_errors.ErrForbidden)

	// Attachment-only sends are fine and preview falls back to a marker.
	_, err = svc.SendMessage(ctx, customerActor, c.ID, SendMessageInput{
		AttachmentURL:  "https://cdn.example.com/fit.jpg",
		AttachmentKind: "image",
	})
	require.NoError(t, err)
	got, err := f.conversations.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "[attachment]", got.LastMessageText)
}

func TestSendMessageOnLockedConversation(t *testing.T) {
	f := setupServiceTest(t)
	svc := f.chatService()
	tl := f.seedTailor(t, 20, "Amara")
	ctx := context.Background()

	c, err := svc.Ensure(ctx, EnsureInput{CustomerID: 10, TailorID: tl.ID})
	require.NoError(t, err)
	require.NoError(t, f.conversations.Lock(ctx, c.ID, 5, reconcile.LockNotice, time.Now().UTC()))

	_, err = svc.SendMessage(ctx, Identity{UserID: 10, Role: chat.RoleCustomer}, c.ID, SendMessageInput{Text: "hi"})
	assert.ErrorIs(t, err, stitch_errors.ErrChatClosed)

	_, err = svc.SendMessage(ctx, Identity{UserID: 20, Role: chat.RoleTailor}, c.ID, SendMessageInput{Text: "hi"})
	assert.ErrorIs(t, err, stitch_errors.ErrChatClosed, "lock applies to both sides")

	// Reads still work on a locked thread.
	_, err = svc.ListMessagesSince(ctx, Identity{UserID: 10, Role: chat.RoleCustomer}, c.ID, time.Time{}, 0)
	assert.NoError(t, err)
	assert.NoError(t, svc.MarkRead(ctx, Identity{UserID: 10, Role: chat.RoleCustomer}, c.ID))
}

func TestListMessagesSinceCursor(t *testing.T) {
	f := setupServiceTest(t)
	svc := f.chatService()
	tl := f.seedTailor(t, 20, "Amara")
	ctx := context.Background()

	c, err := svc.Ensure(ctx, EnsureInput{CustomerID: 10, TailorID: tl.ID})
	require.NoError(t, err)

	customerActor := Identity{UserID: 10, Role: chat.RoleCustomer}

	first, err := svc.SendMessage(ctx, customerActor, c.ID, SendMessageInput{Text: "one"})
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = svc.SendMessage(ctx, customerActor, c.ID, SendMessageInput{Text: "two"})
	require.NoError(t, err)

	all, err := svc.ListMessagesSince(ctx, customerActor, c.ID, time.Time{}, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "one", all[0].Text)
	assert.Equal(t, "two", all[1].Text)

	newer, err := svc.ListMessagesSince(ctx, customerActor, c.ID, first.CreatedAt, 0)
	require.NoError(t, err)
	require.Len(t, newer, 1)
	assert.Equal(t, "two", newer[0].Text)
}

// racingConversations simulates a concurrent ensure: the thread-key lookup
// misses once, and the competing row lands just before this caller's insert.
type racingConversations struct {
	repository.ConversationRepository
	winner *chat.Conversation
	missed bool
}

func (r *racingConversations) GetByThreadKey(ctx context.Context, key string) (chat.Conversation, error) {
	if !r.missed {
		r.missed = true
		return chat.Conversation{}, stitch_errors.ErrNotFound
	}
	return r.ConversationRepository.GetByThreadKey(ctx, key)
}

func (r *racingConversations) Create(ctx context.Context, c *chat.Conversation) error {
	if r.winner != nil {
		w := r.winner
		r.winner = nil
		if err := r.ConversationRepository.Create(ctx, w); err != nil {
			return err
		}
	}
	return r.ConversationRepository.Create(ctx, c)
}

func TestEnsureRecoversFromCreateRace(t *testing.T) {
	f := setupServiceTest(t)
	tl := f.seedTailor(t, 20, "Amara")
	o := f.seedOrder(t, 10, tl.ID, order.StatusAccepted)
	ctx := context.Background()

	now := time.Now().UTC()
	winner := &chat.Conversation{
		ID:           uuid.New(),
		CustomerID:   10,
		TailorID:     tl.ID,
		OrderID:      &o.ID,
		ThreadKey:    chat.ThreadKey(10, tl.ID, &o.ID),
		CustomerName: "Femi",
		TailorName:   "Amara",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	racing := &racingConversations{ConversationRepository: f.conversations, winner: winner}
	svc := NewChatService(racing, f.messages, f.orders, f.directory, logger.NewNop())

	got, err := svc.Ensure(ctx, EnsureInput{CustomerID: 10, CustomerName: "Femi", TailorID: tl.ID, OrderID: &o.ID})
	require.NoError(t, err)
	assert.Equal(t, winner.ID, got.ID, "loser adopts the competing row")

	var count int64
	require.NoError(t, f.db.Model(&chat.Conversation{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "no duplicate thread survives the race")
}

func TestSendMessagePreviewTruncatesOnRuneBoundary(t *testing.T) {
	f := setupServiceTest(t)
	svc := f.chatService()
	tl := f.seedTailor(t, 20, "Amara")
	ctx := context.Background()

	c, err := svc.Ensure(ctx, EnsureInput{CustomerID: 10, TailorID: tl.ID})
	require.NoError(t, err)

	long := strings.Repeat("é", 200)
	_, err = svc.SendMessage(ctx, Identity{UserID: 10, Role: chat.RoleCustomer}, c.ID, SendMessageInput{Text: long})
	require.NoError(t, err)

	got, err := f.conversations.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(got.LastMessageText), "cut never splits a character")
	assert.Equal(t, 120, utf8.RuneCountInString(got.LastMessageText))
}

func TestListConversationsByRole(t *testing.T) {
	f := setupServiceTest(t)
	svc := f.chatService()
	tl := f.seedTailor(t, 20, "Amara")
	ctx := context.Background()

	_, err := svc.Ensure(ctx, EnsureInput{CustomerID: 10, TailorID: tl.ID})
	require.NoError(t, err)
	_, err = svc.Ensure(ctx, EnsureInput{CustomerID: 11, TailorID: tl.ID})
	require.NoError(t, err)

	mine, total, err := svc.ListConversations(ctx, Identity{UserID: 10, Role: chat.RoleCustomer}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, mine, 1)

	theirs, total, err := svc.ListConversations(ctx, Identity{UserID: 20, Role: chat.RoleTailor}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, theirs, 2)
}
