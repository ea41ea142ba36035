package models

import (
	"time"

	"github.com/commerce/backend/internal/domain/payment"
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionModel is the persistence model for gateway payment transactions.
type TransactionModel struct {
	BaseModel
	OrderID              uuid.UUID                 `gorm:"type:uuid;not null;index"`
	GatewayOrderID       string                    `gorm:"type:varchar(100);not null;uniqueIndex"`
	GatewayTransactionID string                    `gorm:"type:varchar(100);index"`
	GatewayType          payment.GatewayType       `gorm:"type:varchar(20);not null"`
	Amount               decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	Currency             string                    `gorm:"type:varchar(10);not null;default:'INR'"`
	Status               payment.TransactionStatus `gorm:"type:varchar(20);not null;default:'created';index"`
	Checksum             string                    `gorm:"type:varchar(128)"`
	IsMock               bool                      `gorm:"not null;default:false"`
	CompletedAt          *time.Time
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "payment_transactions"
}

// ToDomain converts the persistence model to a domain Transaction
func (m *TransactionModel) ToDomain() *payment.Transaction {
	return &payment.Transaction{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		OrderID:              m.OrderID,
		GatewayOrderID:       m.GatewayOrderID,
		GatewayTransactionID: m.GatewayTransactionID,
		GatewayType:          m.GatewayType,
		Amount:               m.Amount,
		Currency:             m.Currency,
		Status:               m.Status,
		Checksum:             m.Checksum,
		IsMock:               m.IsMock,
		CompletedAt:          m.CompletedAt,
	}
}

// TransactionModelFromDomain converts a domain Transaction to its persistence model
func TransactionModelFromDomain(tx *payment.Transaction) *TransactionModel {
	return &TransactionModel{
		BaseModel: BaseModel{
			ID:        tx.ID,
			CreatedAt: tx.CreatedAt,
			UpdatedAt: tx.UpdatedAt,
		},
		OrderID:              tx.OrderID,
		GatewayOrderID:       tx.GatewayOrderID,
		GatewayTransactionID: tx.GatewayTransactionID,
		GatewayType:          tx.GatewayType,
		Amount:               tx.Amount,
		Currency:             tx.Currency,
		Status:               tx.Status,
		Checksum:             tx.Checksum,
		IsMock:               tx.IsMock,
		CompletedAt:          tx.CompletedAt,
	}
}

// RefundModel is the persistence model for refunds issued against transactions.
type RefundModel struct {
	BaseModel
	TransactionID   uuid.UUID            `gorm:"type:uuid;not null;index"`
	OrderID         uuid.UUID            `gorm:"type:uuid;not null;index"`
	GatewayRefundID string               `gorm:"type:varchar(100)"`
	Amount          decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Reason          string               `gorm:"type:varchar(500)"`
	Status          payment.RefundStatus `gorm:"type:varchar(20);not null;default:'pending'"`
}

// TableName returns the table name for GORM
func (RefundModel) TableName() string {
	return "payment_refunds"
}

// ToDomain converts the persistence model to a domain Refund
func (m *RefundModel) ToDomain() *payment.Refund {
	return &payment.Refund{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TransactionID:   m.TransactionID,
		OrderID:         m.OrderID,
		GatewayRefundID: m.GatewayRefundID,
		Amount:          m.Amount,
		Reason:          m.Reason,
		Status:          m.Status,
	}
}

// RefundModelFromDomain converts a domain Refund to its persistence model
func RefundModelFromDomain(r *payment.Refund) *RefundModel {
	return &RefundModel{
		BaseModel: BaseModel{
			ID:        r.ID,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		},
		TransactionID:   r.TransactionID,
		OrderID:         r.OrderID,
		GatewayRefundID: r.GatewayRefundID,
		Amount:          r.Amount,
		Reason:          r.Reason,
		Status:          r.Status,
	}
}
