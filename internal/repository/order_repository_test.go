package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stitchlink/internal/domain/chat"
	"stitchlink/internal/domain/order"
	"stitchlink/internal/domain/review"
	stitch_errors "stitchlink/pkg/errors"
)

func TestOrderCreateSeedsHistory(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	o := order.Order{CustomerID: 1, TailorID: 2, GarmentType: "suit", Status: order.StatusRequested}
	require.NoError(t, repo.Create(ctx, &o))
	require.NotZero(t, o.ID)

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got.History, 1)
	assert.Equal(t, order.StatusRequested, got.History[0].Status)
}

func TestOrderUpdateAppendsEvent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	o := order.Order{CustomerID: 1, TailorID: 2, Status: order.StatusRequested}
	require.NoError(t, repo.Create(ctx, &o))

	o.Status = order.StatusQuoted
	o.QuotePrice = 120
	event := order.Event{Status: order.StatusQuoted, Note: "quoted", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.Update(ctx, o, event))

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusQuoted, got.Status)
	assert.Equal(t, 120.0, got.QuotePrice)
	require.Len(t, got.History, 2)
	assert.Equal(t, order.StatusQuoted, got.History[1].Status)

	events, err := repo.ListEvents(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestOrderGetByIDNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)

	_, err := repo.GetByID(context.Background(), 999)
	assert.ErrorIs(t, err, stitch_errors.ErrNotFound)
}

func TestOrderSetReviewID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	o := order.Order{CustomerID: 1, TailorID: 2, Status: order.StatusDelivered}
	require.NoError(t, repo.Create(ctx, &o))

	require.NoError(t, repo.SetReviewID(ctx, o.ID, 42))

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ReviewID)
	assert.Equal(t, uint(42), *got.ReviewID)

	assert.ErrorIs(t, repo.SetReviewID(ctx, 999, 42), stitch_errors.ErrNotFound)
}

func TestOrderListForUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		o := order.Order{CustomerID: 1, TailorID: 2, Status: order.StatusRequested}
		require.NoError(t, repo.Create(ctx, &o))
	}
	other := order.Order{CustomerID: 9, TailorID: 2, Status: order.StatusRequested}
	require.NoError(t, repo.Create(ctx, &other))

	mine, total, err := repo.ListForUser(ctx, 1, chat.RoleCustomer, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, mine, 3)

	all, total, err := repo.ListForUser(ctx, 2, chat.RoleTailor, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, all, 2)
}

func TestReviewCreateDuplicateOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReviewRepository(db)
	ctx := context.Background()

	first := review.Review{OrderID: 7, TailorID: 2, CustomerID: 1, Rating: 5, Text: "great"}
	require.NoError(t, repo.Create(ctx, &first))

	second := review.Review{OrderID: 7, TailorID: 2, CustomerID: 1, Rating: 1, Text: "changed my mind"}
	assert.ErrorIs(t, repo.Create(ctx, &second), stitch_errors.ErrAlreadyExists)

	got, err := repo.GetByOrderID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, 5, got.Rating)
}
