package order

import (
	"fmt"
	"time"

	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of a customer order
type OrderStatus string

const (
	OrderStatusPlaced         OrderStatus = "placed"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusProcessing     OrderStatus = "processing"
	OrderStatusPacked         OrderStatus = "packed"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
	OrderStatusReturned       OrderStatus = "returned"
	OrderStatusRefunded       OrderStatus = "refunded"
)

// allowedTransitions maps each status to the set of statuses it may move to
var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPlaced:         {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:      {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing:     {OrderStatusPacked, OrderStatusCancelled},
	OrderStatusPacked:         {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:        {OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusReturned},
	OrderStatusOutForDelivery: {OrderStatusDelivered, OrderStatusReturned},
	OrderStatusDelivered:      {OrderStatusReturned},
	OrderStatusReturned:       {OrderStatusRefunded},
	OrderStatusCancelled:      {},
	OrderStatusRefunded:       {},
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transition is defined for the status
func (s OrderStatus) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0 && s.IsValid()
}

// ProgressPercentage returns the fulfillment progress for the status.
// Cancelled, returned and refunded orders report zero progress.
func (s OrderStatus) ProgressPercentage() int {
	switch s {
	case OrderStatusPlaced:
		return 10
	case OrderStatusConfirmed:
		return 25
	case OrderStatusProcessing:
		return 40
	case OrderStatusPacked:
		return 55
	case OrderStatusShipped:
		return 70
	case OrderStatusOutForDelivery:
		return 85
	case OrderStatusDelivered:
		return 100
	default:
		return 0
	}
}

// PaymentStatus represents the payment status of an order
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// InvalidTransitionError is returned when an order status edge is not allowed
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

// Error implements the error interface
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order: invalid transition from %s to %s", e.From, e.To)
}

// StatusHistoryEntry records a single status change on an order.
// The history is append-only; an order's current status always equals
// the status of its last entry.
type StatusHistoryEntry struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Status    OrderStatus
	Note      string
	CreatedAt time.Time
}

// OrderItem represents a line item in an order
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
	Amount    decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrderItem creates a new order line item
func NewOrderItem(orderID, productID uuid.UUID, quantity int, unitPrice decimal.Decimal) (*OrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	return &OrderItem{
		ID:        uuid.New(),
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Amount:    unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// TransitionMetadata carries optional data applied during a status transition
type TransitionMetadata struct {
	// Note overrides the default history note
	Note string
	// TrackingNumber is set when entering shipped
	TrackingNumber string
	// CourierService is set when entering shipped
	CourierService string
	// CancelReason is recorded when entering cancelled
	CancelReason string
}

// Order represents a customer order aggregate root.
// All status mutations go through Transition; the order is never deleted,
// only moved to a terminal status (cancelled/refunded).
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber       string
	CustomerID        uuid.UUID
	Items             []OrderItem
	TotalAmount       decimal.Decimal
	Status            OrderStatus
	PaymentStatus     PaymentStatus
	TrackingNumber    string
	CourierService    string
	EstimatedDelivery *time.Time
	ShippedAt         *time.Time
	DeliveredAt       *time.Time
	CancelledAt       *time.Time
	CancelReason      string
	StatusHistory     []StatusHistoryEntry
}

// NewOrder creates a new order in placed status with payment pending
func NewOrder(orderNumber string, customerID uuid.UUID) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		CustomerID:        customerID,
		Items:             make([]OrderItem, 0),
		TotalAmount:       decimal.Zero,
		Status:            OrderStatusPlaced,
		PaymentStatus:     PaymentStatusPending,
	}

	o.appendHistory(OrderStatusPlaced, "Order placed")
	o.AddDomainEvent(NewOrderPlacedEvent(o))

	return o, nil
}

// AddItem adds a new line item to the order.
// Only allowed while the order is still in placed status with payment pending.
func (o *Order) AddItem(productID uuid.UUID, quantity int, unitPrice decimal.Decimal) (*OrderItem, error) {
	if o.Status != OrderStatusPlaced || o.PaymentStatus != PaymentStatusPending {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items after the order left the placed state")
	}

	for _, item := range o.Items {
		if item.ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already exists in order")
		}
	}

	item, err := NewOrderItem(o.ID, productID, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotal()
	o.UpdatedAt = time.Now()

	return item, nil
}

// Transition moves the order to the target status.
// It validates the edge against the transition table, appends a history
// entry and updates the derived fields for the entered state.
func (o *Order) Transition(target OrderStatus, meta TransitionMetadata) error {
	if !o.Status.CanTransitionTo(target) {
		return &InvalidTransitionError{From: o.Status, To: target}
	}

	from := o.Status
	now := time.Now()

	note := meta.Note
	if note == "" {
		note = fmt.Sprintf("Status updated to %s", target)
	}

	switch target {
	case OrderStatusShipped:
		o.ShippedAt = &now
		if meta.TrackingNumber != "" {
			o.TrackingNumber = meta.TrackingNumber
		}
		if meta.CourierService != "" {
			o.CourierService = meta.CourierService
		}
	case OrderStatusDelivered:
		o.DeliveredAt = &now
	case OrderStatusCancelled:
		o.CancelledAt = &now
		o.CancelReason = meta.CancelReason
	}

	o.Status = target
	o.appendHistory(target, note)
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, target, note))

	return nil
}

// MarkPaid records a successful payment against the order
func (o *Order) MarkPaid() error {
	if o.PaymentStatus == PaymentStatusPaid {
		return nil
	}
	if o.PaymentStatus == PaymentStatusRefunded {
		return shared.NewDomainError("INVALID_STATE", "Cannot mark a refunded order as paid")
	}
	o.PaymentStatus = PaymentStatusPaid
	o.UpdatedAt = time.Now()
	return nil
}

// MarkPaymentFailed records a failed payment attempt
func (o *Order) MarkPaymentFailed() error {
	if o.PaymentStatus == PaymentStatusPaid || o.PaymentStatus == PaymentStatusRefunded {
		return shared.NewDomainError("INVALID_STATE", "Cannot fail payment in current payment status")
	}
	o.PaymentStatus = PaymentStatusFailed
	o.UpdatedAt = time.Now()
	return nil
}

// MarkRefunded records a completed refund against the order
func (o *Order) MarkRefunded() error {
	if o.PaymentStatus != PaymentStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Only a paid order can be refunded")
	}
	o.PaymentStatus = PaymentStatusRefunded
	o.UpdatedAt = time.Now()
	return nil
}

// SetEstimatedDelivery sets the estimated delivery date
func (o *Order) SetEstimatedDelivery(t time.Time) {
	o.EstimatedDelivery = &t
	o.UpdatedAt = time.Now()
}

// Progress returns the fulfillment progress percentage of the order
func (o *Order) Progress() int {
	return o.Status.ProgressPercentage()
}

// IsTerminal returns true if the order is in a terminal status
func (o *Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}

// ItemCount returns the number of line items in the order
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// LastHistoryEntry returns the most recent status history entry
func (o *Order) LastHistoryEntry() *StatusHistoryEntry {
	if len(o.StatusHistory) == 0 {
		return nil
	}
	return &o.StatusHistory[len(o.StatusHistory)-1]
}

func (o *Order) appendHistory(status OrderStatus, note string) {
	o.StatusHistory = append(o.StatusHistory, StatusHistoryEntry{
		ID:        uuid.New(),
		OrderID:   o.ID,
		Status:    status,
		Note:      note,
		CreatedAt: time.Now(),
	})
}

func (o *Order) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Amount)
	}
	o.TotalAmount = total
}
