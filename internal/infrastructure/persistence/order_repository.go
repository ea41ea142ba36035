package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/commerce/backend/internal/domain/order"
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/commerce/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

var _ order.Repository = (*GormOrderRepository)(nil)

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.preloaded(r.db.WithContext(ctx)).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderNumber finds an order by its order number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	var model models.OrderModel
	if err := r.preloaded(r.db.WithContext(ctx)).
		Where("order_number = ?", orderNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByStatus finds orders by status with pagination
func (r *GormOrderRepository) FindByStatus(ctx context.Context, status order.OrderStatus, filter shared.Filter) ([]order.Order, error) {
	var orderModels []models.OrderModel
	query := r.applyFilter(
		r.preloaded(r.db.WithContext(ctx)).Model(&models.OrderModel{}).
			Where("status = ?", status),
		filter,
	)

	if err := query.Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]order.Order, len(orderModels))
	for i, model := range orderModels {
		orders[i] = *model.ToDomain()
	}
	return orders, nil
}

// CountByStatus counts orders in the given status
func (r *GormOrderRepository) CountByStatus(ctx context.Context, status order.OrderStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindStaleUnpaid finds orders still placed with payment pending that were
// created before the cutoff
func (r *GormOrderRepository) FindStaleUnpaid(ctx context.Context, before time.Time) ([]order.Order, error) {
	var orderModels []models.OrderModel
	if err := r.preloaded(r.db.WithContext(ctx)).
		Where("status = ? AND payment_status = ? AND created_at < ?",
			order.OrderStatusPlaced, order.PaymentStatusPending, before).
		Order("created_at ASC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]order.Order, len(orderModels))
	for i, model := range orderModels {
		orders[i] = *model.ToDomain()
	}
	return orders, nil
}

// Save creates or updates an order together with its items and history
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	model := models.OrderModelFromDomain(o)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items", "StatusHistory").Save(model).Error; err != nil {
			return err
		}
		if err := r.saveItems(tx, model); err != nil {
			return err
		}
		return r.appendHistory(tx, model)
	})
}

// SaveWithLock saves with optimistic locking (version check).
// Returns shared.ErrConcurrencyConflict when the stored version differs.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	model := models.OrderModelFromDomain(o)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentVersion := model.Version
		model.Version++
		model.UpdatedAt = time.Now()

		result := tx.Model(&models.OrderModel{}).
			Where("id = ? AND version = ?", model.ID, currentVersion).
			Updates(map[string]interface{}{
				"total_amount":       model.TotalAmount,
				"status":             model.Status,
				"payment_status":     model.PaymentStatus,
				"tracking_number":    model.TrackingNumber,
				"courier_service":    model.CourierService,
				"estimated_delivery": model.EstimatedDelivery,
				"shipped_at":         model.ShippedAt,
				"delivered_at":       model.DeliveredAt,
				"cancelled_at":       model.CancelledAt,
				"cancel_reason":      model.CancelReason,
				"version":            model.Version,
				"updated_at":         model.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		o.Version = model.Version
		o.UpdatedAt = model.UpdatedAt

		if err := r.saveItems(tx, model); err != nil {
			return err
		}
		return r.appendHistory(tx, model)
	})
}

// GenerateOrderNumber generates a unique order number.
// Format: ORD-YYYY-NNNNN (e.g., ORD-2026-00001)
func (r *GormOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("ORD-%d-", year)

	var lastOrder models.OrderModel
	err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("order_number LIKE ?", prefix+"%").
		Order("order_number DESC").
		First(&lastOrder).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastOrder.OrderNumber != "" {
		parts := strings.Split(lastOrder.OrderNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	return fmt.Sprintf("%s%05d", prefix, nextNum), nil
}

func (r *GormOrderRepository) preloaded(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
}

// saveItems replaces the order's line items with the current list
func (r *GormOrderRepository) saveItems(tx *gorm.DB, model *models.OrderModel) error {
	currentItemIDs := make([]uuid.UUID, len(model.Items))
	for i, item := range model.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("order_id = ? AND id NOT IN ?", model.ID, currentItemIDs).
			Delete(&models.OrderItemModel{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("order_id = ?", model.ID).
			Delete(&models.OrderItemModel{}).Error; err != nil {
			return err
		}
	}

	for i := range model.Items {
		model.Items[i].OrderID = model.ID
		if err := tx.Save(&model.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// appendHistory inserts history entries that are not yet stored.
// Existing rows are never touched; the history table is append-only.
func (r *GormOrderRepository) appendHistory(tx *gorm.DB, model *models.OrderModel) error {
	for i := range model.StatusHistory {
		model.StatusHistory[i].OrderID = model.ID
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.StatusHistory[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}
