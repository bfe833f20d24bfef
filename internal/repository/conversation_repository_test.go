package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"stitchlink/internal/domain/chat"
	"stitchlink/internal/domain/order"
	"stitchlink/internal/domain/review"
	"stitchlink/internal/domain/tailor"
	stitch_errors "stitchlink/pkg/errors"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(
		&tailor.Tailor{},
		&order.Order{},
		&order.Event{},
		&chat.Conversation{},
		&chat.Message{},
		&review.Review{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func newConversation(customerID, tailorID uint, orderID *uint) chat.Conversation {
	return chat.Conversation{
		ID:         uuid.New(),
		CustomerID: customerID,
		TailorID:   tailorID,
		OrderID:    orderID,
		ThreadKey:  chat.ThreadKey(customerID, tailorID, orderID),
	}
}

func TestConversationCreateDuplicateThreadKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConversationRepository(db)
	ctx := context.Background()

	orderID := uint(7)
	first := newConversation(1, 2, &orderID)
	require.NoError(t, repo.Create(ctx, &first))

	dup := newConversation(1, 2, &orderID)
	err := repo.Create(ctx, &dup)
	assert.ErrorIs(t, err, stitch_errors.ErrAlreadyExists)

	// A different order for the same pair is a different thread.
	otherOrder := uint(8)
	other := newConversation(1, 2, &otherOrder)
	assert.NoError(t, repo.Create(ctx, &other))
}

func TestConversationDuplicateInquiryThread(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConversationRepository(db)
	ctx := context.Background()

	// Two order-less threads for the same pair must collide even though
	// their order id column is NULL in both rows.
	first := newConversation(1, 2, nil)
	require.NoError(t, repo.Create(ctx, &first))

	dup := newConversation(1, 2, nil)
	assert.ErrorIs(t, repo.Create(ctx, &dup), stitch_errors.ErrAlreadyExists)
}

func TestConversationGetByThreadKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConversationRepository(db)
	ctx := context.Background()

	c := newConversation(3, 4, nil)
	require.NoError(t, repo.Create(ctx, &c))

	got, err := repo.GetByThreadKey(ctx, chat.ThreadKey(3, 4, nil))
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = repo.GetByThreadKey(ctx, chat.ThreadKey(3, 5, nil))
	assert.ErrorIs(t, err, stitch_errors.ErrNotFound)
}

func TestConversationRecordMessageIncrementsRecipient(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConversationRepository(db)
	ctx := context.Background()

	c := newConversation(1, 2, nil)
	require.NoError(t, repo.Create(ctx, &c))

	now := time.Now().UTC()
	require.NoError(t, repo.RecordMessage(ctx, c.ID, chat.RoleTailor, "hello there", now))
	require.NoError(t, repo.RecordMessage(ctx, c.ID, chat.RoleTailor, "second", now))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.UnreadTailor)
	assert.Equal(t, 0, got.UnreadCustomer)
	assert.Equal(t, "second", got.LastMessageText)
	assert.True(t, got.LastMessageAt.Valid)
}

func TestConversationMarkReadResetsOnlyReader(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConversationRepository(db)
	ctx := context.Background()

	c := newConversation(1, 2, nil)
	require.NoError(t, repo.Create(ctx, &c))

	now := time.Now().UTC()
	require.NoError(t, repo.RecordMessage(ctx, c.ID, chat.RoleTailor, "a", now))
	require.NoError(t, repo.RecordMessage(ctx, c.ID, chat.RoleCustomer, "b", now))

	require.NoError(t, repo.MarkRead(ctx, c.ID, chat.RoleTailor, now))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.UnreadTailor)
	assert.Equal(t, 1, got.UnreadCustomer)
	assert.True(t, got.TailorLastReadAt.Valid)
	assert.False(t, got.CustomerLastReadAt.Valid)
}

func TestConversationLock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConversationRepository(db)
	ctx := context.Background()

	orderID := uint(9)
	c := newConversation(1, 2, &orderID)
	require.NoError(t, repo.Create(ctx, &c))

	now := time.Now().UTC()
	require.NoError(t, repo.Lock(ctx, c.ID, 11, "closed", now))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.Locked)
	require.NotNil(t, got.ReviewID)
	assert.Equal(t, uint(11), *got.ReviewID)
	assert.Equal(t, "closed", got.LastMessageText)

	assert.ErrorIs(t, repo.Lock(ctx, uuid.New(), 11, "closed", now), stitch_errors.ErrNotFound)
}

func TestFindReviewedUnlocked(t *testing.T) {
	db := setupTestDB(t)
	conversations := NewConversationRepository(db)
	orders := NewOrderRepository(db)
	ctx := context.Background()

	reviewed := order.Order{CustomerID: 1, TailorID: 2, Status: order.StatusDelivered}
	require.NoError(t, orders.Create(ctx, &reviewed))
	require.NoError(t, orders.SetReviewID(ctx, reviewed.ID, 5))

	unreviewed := order.Order{CustomerID: 1, TailorID: 2, Status: order.StatusDelivered}
	require.NoError(t, orders.Create(ctx, &unreviewed))

	stale := newConversation(1, 2, &reviewed.ID)
	require.NoError(t, conversations.Create(ctx, &stale))

	fine := newConversation(1, 2, &unreviewed.ID)
	require.NoError(t, conversations.Create(ctx, &fine))

	found, err := conversations.FindReviewedUnlocked(ctx, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, stale.ID, found[0].ID)

	// Once locked it drops out of the scan.
	require.NoError(t, conversations.Lock(ctx, stale.ID, 5, "closed", time.Now().UTC()))
	found, err = conversations.FindReviewedUnlocked(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, found)
}
