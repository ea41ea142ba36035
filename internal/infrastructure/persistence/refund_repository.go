package persistence

import (
	"context"
	"errors"

	"github.com/commerce/backend/internal/domain/payment"
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/commerce/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRefundRepository implements payment.RefundRepository using GORM
type GormRefundRepository struct {
	db *gorm.DB
}

// NewGormRefundRepository creates a new GormRefundRepository
func NewGormRefundRepository(db *gorm.DB) *GormRefundRepository {
	return &GormRefundRepository{db: db}
}

var _ payment.RefundRepository = (*GormRefundRepository)(nil)

// FindByID finds a refund by its ID
func (r *GormRefundRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Refund, error) {
	var model models.RefundModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTransactionID finds refunds issued against a transaction
func (r *GormRefundRepository) FindByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]payment.Refund, error) {
	var refundModels []models.RefundModel
	if err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("created_at ASC").
		Find(&refundModels).Error; err != nil {
		return nil, err
	}

	refunds := make([]payment.Refund, len(refundModels))
	for i, model := range refundModels {
		refunds[i] = *model.ToDomain()
	}
	return refunds, nil
}

// Save creates or updates a refund
func (r *GormRefundRepository) Save(ctx context.Context, refund *payment.Refund) error {
	model := models.RefundModelFromDomain(refund)
	return r.db.WithContext(ctx).Save(model).Error
}
