package models

import (
	"time"

	"github.com/commerce/backend/internal/domain/order"
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	OrderNumber       string                    `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID        uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Items             []OrderItemModel          `gorm:"foreignKey:OrderID;references:ID"`
	StatusHistory     []OrderStatusHistoryModel `gorm:"foreignKey:OrderID;references:ID"`
	TotalAmount       decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	Status            order.OrderStatus         `gorm:"type:varchar(20);not null;default:'placed';index:idx_orders_status_payment"`
	PaymentStatus     order.PaymentStatus       `gorm:"type:varchar(20);not null;default:'pending';index:idx_orders_status_payment"`
	TrackingNumber    string                    `gorm:"type:varchar(100)"`
	CourierService    string                    `gorm:"type:varchar(100)"`
	EstimatedDelivery *time.Time
	ShippedAt         *time.Time `gorm:"index"`
	DeliveredAt       *time.Time
	CancelledAt       *time.Time
	CancelReason      string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order aggregate.
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		OrderNumber:       m.OrderNumber,
		CustomerID:        m.CustomerID,
		TotalAmount:       m.TotalAmount,
		Status:            m.Status,
		PaymentStatus:     m.PaymentStatus,
		TrackingNumber:    m.TrackingNumber,
		CourierService:    m.CourierService,
		EstimatedDelivery: m.EstimatedDelivery,
		ShippedAt:         m.ShippedAt,
		DeliveredAt:       m.DeliveredAt,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
	}

	o.Items = make([]order.OrderItem, len(m.Items))
	for i, item := range m.Items {
		o.Items[i] = *item.ToDomain()
	}

	o.StatusHistory = make([]order.StatusHistoryEntry, len(m.StatusHistory))
	for i, entry := range m.StatusHistory {
		o.StatusHistory[i] = *entry.ToDomain()
	}

	return o
}

// OrderModelFromDomain converts a domain Order to its persistence model.
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{
		AggregateModel: AggregateModel{
			BaseModel: BaseModel{
				ID:        o.ID,
				CreatedAt: o.CreatedAt,
				UpdatedAt: o.UpdatedAt,
			},
			Version: o.Version,
		},
		OrderNumber:       o.OrderNumber,
		CustomerID:        o.CustomerID,
		TotalAmount:       o.TotalAmount,
		Status:            o.Status,
		PaymentStatus:     o.PaymentStatus,
		TrackingNumber:    o.TrackingNumber,
		CourierService:    o.CourierService,
		EstimatedDelivery: o.EstimatedDelivery,
		ShippedAt:         o.ShippedAt,
		DeliveredAt:       o.DeliveredAt,
		CancelledAt:       o.CancelledAt,
		CancelReason:      o.CancelReason,
	}

	m.Items = make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		m.Items[i] = *OrderItemModelFromDomain(&item)
	}

	m.StatusHistory = make([]OrderStatusHistoryModel, len(o.StatusHistory))
	for i, entry := range o.StatusHistory {
		m.StatusHistory[i] = *OrderStatusHistoryModelFromDomain(&entry)
	}

	return m
}

// OrderItemModel is the persistence model for order line items.
type OrderItemModel struct {
	BaseModel
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem
func (m *OrderItemModel) ToDomain() *order.OrderItem {
	return &order.OrderItem{
		ID:        m.ID,
		OrderID:   m.OrderID,
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
		UnitPrice: m.UnitPrice,
		Amount:    m.Amount,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// OrderItemModelFromDomain converts a domain OrderItem to its persistence model
func OrderItemModelFromDomain(item *order.OrderItem) *OrderItemModel {
	return &OrderItemModel{
		BaseModel: BaseModel{
			ID:        item.ID,
			CreatedAt: item.CreatedAt,
			UpdatedAt: item.UpdatedAt,
		},
		OrderID:   item.OrderID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
		Amount:    item.Amount,
	}
}

// OrderStatusHistoryModel is the persistence model for the append-only
// order status history. Rows are only ever inserted.
type OrderStatusHistoryModel struct {
	ID        uuid.UUID         `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID         `gorm:"type:uuid;not null;index"`
	Status    order.OrderStatus `gorm:"type:varchar(20);not null"`
	Note      string            `gorm:"type:varchar(500)"`
	CreatedAt time.Time         `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (OrderStatusHistoryModel) TableName() string {
	return "order_status_history"
}

// ToDomain converts the persistence model to a domain StatusHistoryEntry
func (m *OrderStatusHistoryModel) ToDomain() *order.StatusHistoryEntry {
	return &order.StatusHistoryEntry{
		ID:        m.ID,
		OrderID:   m.OrderID,
		Status:    m.Status,
		Note:      m.Note,
		CreatedAt: m.CreatedAt,
	}
}

// OrderStatusHistoryModelFromDomain converts a domain StatusHistoryEntry to its persistence model
func OrderStatusHistoryModelFromDomain(entry *order.StatusHistoryEntry) *OrderStatusHistoryModel {
	return &OrderStatusHistoryModel{
		ID:        entry.ID,
		OrderID:   entry.OrderID,
		Status:    entry.Status,
		Note:      entry.Note,
		CreatedAt: entry.CreatedAt,
	}
}
