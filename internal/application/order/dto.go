package order

import (
	"time"

	"github.com/commerce/backend/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateOrderItemRequest represents a line item at checkout
type CreateOrderItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

// CreateOrderRequest represents a checkout request
type CreateOrderRequest struct {
	CustomerID uuid.UUID                `json:"customer_id" binding:"required"`
	Items      []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// TransitionRequest represents a status transition request
type TransitionRequest struct {
	TargetStatus   order.OrderStatus `json:"target_status" binding:"required"`
	Note           string            `json:"note"`
	TrackingNumber string            `json:"tracking_number"`
	CourierService string            `json:"courier_service"`
	CancelReason   string            `json:"cancel_reason"`
}

// OrderItemResponse represents a line item in API responses
type OrderItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amount    decimal.Decimal `json:"amount"`
}

// StatusHistoryResponse represents one status history entry
type StatusHistoryResponse struct {
	Status    order.OrderStatus `json:"status"`
	Note      string            `json:"note"`
	CreatedAt time.Time         `json:"created_at"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                uuid.UUID           `json:"id"`
	OrderNumber       string              `json:"order_number"`
	CustomerID        uuid.UUID           `json:"customer_id"`
	Items             []OrderItemResponse `json:"items"`
	TotalAmount       decimal.Decimal     `json:"total_amount"`
	Status            order.OrderStatus   `json:"status"`
	PaymentStatus     order.PaymentStatus `json:"payment_status"`
	Progress          int                 `json:"progress"`
	TrackingNumber    string              `json:"tracking_number,omitempty"`
	CourierService    string              `json:"courier_service,omitempty"`
	EstimatedDelivery *time.Time          `json:"estimated_delivery,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// OrderTrackingResponse represents the tracking view of an order
type OrderTrackingResponse struct {
	OrderNumber       string                  `json:"order_number"`
	Status            order.OrderStatus       `json:"status"`
	Progress          int                     `json:"progress"`
	PaymentStatus     order.PaymentStatus     `json:"payment_status"`
	TrackingNumber    string                  `json:"tracking_number,omitempty"`
	CourierService    string                  `json:"courier_service,omitempty"`
	EstimatedDelivery *time.Time              `json:"estimated_delivery,omitempty"`
	History           []StatusHistoryResponse `json:"history"`
}

// OrderListResponse represents a paginated order listing
type OrderListResponse struct {
	Orders   []OrderResponse `json:"orders"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// ToOrderResponse converts a domain order to its API response
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Amount:    item.Amount,
		}
	}

	return OrderResponse{
		ID:                o.ID,
		OrderNumber:       o.OrderNumber,
		CustomerID:        o.CustomerID,
		Items:             items,
		TotalAmount:       o.TotalAmount,
		Status:            o.Status,
		PaymentStatus:     o.PaymentStatus,
		Progress:          o.Progress(),
		TrackingNumber:    o.TrackingNumber,
		CourierService:    o.CourierService,
		EstimatedDelivery: o.EstimatedDelivery,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

// ToOrderTrackingResponse converts a domain order to its tracking view
func ToOrderTrackingResponse(o *order.Order) OrderTrackingResponse {
	history := make([]StatusHistoryResponse, len(o.StatusHistory))
	for i, entry := range o.StatusHistory {
		history[i] = StatusHistoryResponse{
			Status:    entry.Status,
			Note:      entry.Note,
			CreatedAt: entry.CreatedAt,
		}
	}

	return OrderTrackingResponse{
		OrderNumber:       o.OrderNumber,
		Status:            o.Status,
		Progress:          o.Progress(),
		PaymentStatus:     o.PaymentStatus,
		TrackingNumber:    o.TrackingNumber,
		CourierService:    o.CourierService,
		EstimatedDelivery: o.EstimatedDelivery,
		History:           history,
	}
}
