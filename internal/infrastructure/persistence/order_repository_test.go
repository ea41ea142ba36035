package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/commerce/backend/internal/domain/order"
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/commerce/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.OrderModel{},
		&models.OrderItemModel{},
		&models.OrderStatusHistoryModel{},
		&models.TransactionModel{},
		&models.RefundModel{},
	)
	require.NoError(t, err)

	return db
}

func createTestOrder(t *testing.T) *order.Order {
	t.Helper()

	o, err := order.NewOrder("ORD-2026-00042", uuid.New())
	require.NoError(t, err)

	_, err = o.AddItem(uuid.New(), 2, decimal.NewFromInt(500))
	require.NoError(t, err)

	return o
}

func TestGormOrderRepository_SaveAndFindByID(t *testing.T) {
	repo := NewGormOrderRepository(setupTestDB(t))
	ctx := context.Background()

	o := createTestOrder(t)
	require.NoError(t, repo.Save(ctx, o))

	found, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)

	assert.Equal(t, o.OrderNumber, found.OrderNumber)
	assert.Equal(t, o.CustomerID, found.CustomerID)
	assert.Equal(t, order.OrderStatusPlaced, found.Status)
	assert.Equal(t, order.PaymentStatusPending, found.PaymentStatus)
	assert.Len(t, found.Items, 1)
	assert.True(t, found.TotalAmount.Equal(decimal.NewFromInt(1000)))
	require.Len(t, found.StatusHistory, 1)
	assert.Equal(t, order.OrderStatusPlaced, found.StatusHistory[0].Status)
}

func TestGormOrderRepository_FindByID_NotFound(t *testing.T) {
	repo := NewGormOrderRepository(setupTestDB(t))

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_FindByOrderNumber(t *testing.T) {
	repo := NewGormOrderRepository(setupTestDB(t))
	ctx := context.Background()

	o := createTestOrder(t)
	require.NoError(t, repo.Save(ctx, o))

	found, err := repo.FindByOrderNumber(ctx, o.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, o.ID, found.ID)

	_, err = repo.FindByOrderNumber(ctx, "ORD-2026-99999")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_FindByStatus(t *testing.T) {
	repo := NewGormOrderRepository(setupTestDB(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		o, err := order.NewOrder(uuid.NewString()[:20], uuid.New())
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, o))
	}

	confirmed, err := order.NewOrder("ORD-CONFIRMED", uuid.New())
	require.NoError(t, err)
	require.NoError(t, confirmed.Transition(order.OrderStatusConfirmed, order.TransitionMetadata{}))
	require.NoError(t, repo.Save(ctx, confirmed))

	placed, err := repo.FindByStatus(ctx, order.OrderStatusPlaced, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Len(t, placed, 3)

	page, err := repo.FindByStatus(ctx, order.OrderStatusPlaced, shared.Filter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	count, err := repo.CountByStatus(ctx, order.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormOrderRepository_FindStaleUnpaid(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	stale := createTestOrder(t)
	require.NoError(t, repo.Save(ctx, stale))

	fresh, err := order.NewOrder("ORD-FRESH", uuid.New())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, fresh))

	paid, err := order.NewOrder("ORD-PAID", uuid.New())
	require.NoError(t, err)
	require.NoError(t, paid.MarkPaid())
	require.NoError(t, repo.Save(ctx, paid))

	// Backdate the stale order past the cutoff
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, db.Model(&models.OrderModel{}).
		Where("id = ?", stale.ID).
		Update("created_at", old).Error)

	found, err := repo.FindStaleUnpaid(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, stale.ID, found[0].ID)
}

func TestGormOrderRepository_SaveWithLock(t *testing.T) {
	t.Run("saves and increments version", func(t *testing.T) {
		repo := NewGormOrderRepository(setupTestDB(t))
		ctx := context.Background()

		o := createTestOrder(t)
		require.NoError(t, repo.Save(ctx, o))

		require.NoError(t, o.Transition(order.OrderStatusConfirmed, order.TransitionMetadata{}))
		require.NoError(t, repo.SaveWithLock(ctx, o))
		assert.Equal(t, 2, o.Version)

		found, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.OrderStatusConfirmed, found.Status)
		assert.Equal(t, 2, found.Version)
	})

	t.Run("returns conflict on stale version", func(t *testing.T) {
		repo := NewGormOrderRepository(setupTestDB(t))
		ctx := context.Background()

		o := createTestOrder(t)
		require.NoError(t, repo.Save(ctx, o))

		first, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		second, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)

		require.NoError(t, first.Transition(order.OrderStatusConfirmed, order.TransitionMetadata{}))
		require.NoError(t, repo.SaveWithLock(ctx, first))

		require.NoError(t, second.Transition(order.OrderStatusCancelled, order.TransitionMetadata{}))
		err = repo.SaveWithLock(ctx, second)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

		found, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.OrderStatusConfirmed, found.Status)
	})
}

func TestGormOrderRepository_HistoryAppendOnly(t *testing.T) {
	repo := NewGormOrderRepository(setupTestDB(t))
	ctx := context.Background()

	o := createTestOrder(t)
	require.NoError(t, repo.Save(ctx, o))

	require.NoError(t, o.Transition(order.OrderStatusConfirmed, order.TransitionMetadata{}))
	require.NoError(t, repo.SaveWithLock(ctx, o))

	require.NoError(t, o.Transition(order.OrderStatusProcessing, order.TransitionMetadata{Note: "Picking started"}))
	require.NoError(t, repo.SaveWithLock(ctx, o))

	found, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, found.StatusHistory, 3)

	assert.Equal(t, order.OrderStatusPlaced, found.StatusHistory[0].Status)
	assert.Equal(t, order.OrderStatusConfirmed, found.StatusHistory[1].Status)
	assert.Equal(t, order.OrderStatusProcessing, found.StatusHistory[2].Status)
	assert.Equal(t, "Picking started", found.StatusHistory[2].Note)
	assert.Equal(t, found.Status, found.LastHistoryEntry().Status)
}

func TestGormOrderRepository_GenerateOrderNumber(t *testing.T) {
	repo := NewGormOrderRepository(setupTestDB(t))
	ctx := context.Background()

	first, err := repo.GenerateOrderNumber(ctx)
	require.NoError(t, err)
	expectedPrefix := fmt.Sprintf("ORD-%d-", time.Now().Year())
	assert.Equal(t, expectedPrefix+"00001", first)

	o, err := order.NewOrder(first, uuid.New())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, o))

	second, err := repo.GenerateOrderNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, expectedPrefix+"00002", second)
}
