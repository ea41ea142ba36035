package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/commerce/backend/internal/domain/order"
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// saveRetries bounds reload-and-retry attempts on optimistic lock conflicts
const saveRetries = 3

// Service handles order business operations
type Service struct {
	orderRepo      order.Repository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewService creates a new order Service
func NewService(orderRepo order.Repository, logger *zap.Logger) *Service {
	return &Service{
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for post-commit notification
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new order at checkout. The order starts in placed
// status with payment pending.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	o, err := order.NewOrder(orderNumber, req.CustomerID)
	if err != nil {
		return nil, err
	}

	for _, item := range req.Items {
		if _, err := o.AddItem(item.ProductID, item.Quantity, item.UnitPrice); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)

	response := ToOrderResponse(o)
	return &response, nil
}

// GetByID retrieves an order by ID
func (s *Service) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// GetTracking retrieves the tracking view of an order by order number
func (s *Service) GetTracking(ctx context.Context, orderNumber string) (*OrderTrackingResponse, error) {
	o, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	response := ToOrderTrackingResponse(o)
	return &response, nil
}

// ListByStatus retrieves orders in the given status with pagination
func (s *Service) ListByStatus(ctx context.Context, status order.OrderStatus, page, pageSize int) (*OrderListResponse, error) {
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	}
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	filter := shared.Filter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}

	orders, err := s.orderRepo.FindByStatus(ctx, status, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.orderRepo.CountByStatus(ctx, status)
	if err != nil {
		return nil, err
	}

	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderResponse(&orders[i])
	}

	return &OrderListResponse{
		Orders:   responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Transition moves an order to the target status. Concurrent saves retry
// against a freshly loaded order until the bounded attempts run out.
func (s *Service) Transition(ctx context.Context, orderID uuid.UUID, req TransitionRequest) (*OrderResponse, error) {
	meta := order.TransitionMetadata{
		Note:           req.Note,
		TrackingNumber: req.TrackingNumber,
		CourierService: req.CourierService,
		CancelReason:   req.CancelReason,
	}

	var o *order.Order
	var err error
	for attempt := 0; attempt < saveRetries; attempt++ {
		o, err = s.orderRepo.FindByID(ctx, orderID)
		if err != nil {
			return nil, err
		}

		if err = o.Transition(req.TargetStatus, meta); err != nil {
			return nil, err
		}

		err = s.orderRepo.SaveWithLock(ctx, o)
		if err == nil {
			break
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)

	response := ToOrderResponse(o)
	return &response, nil
}

// CancelStaleOrders cancels unpaid orders older than maxAge.
// At most batchSize orders are cancelled per call; orders that conflict
// with a concurrent update are skipped and picked up by a later sweep.
func (s *Service) CancelStaleOrders(ctx context.Context, maxAge time.Duration, batchSize int) (int, error) {
	before := time.Now().Add(-maxAge)
	stale, err := s.orderRepo.FindStaleUnpaid(ctx, before)
	if err != nil {
		return 0, err
	}

	reason := fmt.Sprintf("Auto-cancelled after %d hours of non-payment", int(maxAge.Hours()))
	cancelled := 0
	for i := range stale {
		if batchSize > 0 && cancelled >= batchSize {
			break
		}

		o := &stale[i]
		if err := o.Transition(order.OrderStatusCancelled, order.TransitionMetadata{
			CancelReason: reason,
		}); err != nil {
			s.logger.Warn("Skipping stale order with invalid state",
				zap.String("order_number", o.OrderNumber),
				zap.Error(err),
			)
			continue
		}

		if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				s.logger.Debug("Stale order modified concurrently, skipping",
					zap.String("order_number", o.OrderNumber),
				)
				continue
			}
			return cancelled, err
		}

		s.publishEvents(ctx, o)
		cancelled++
	}

	return cancelled, nil
}

// publishEvents publishes the order's pending domain events after the
// save committed. Publish failures are logged, never propagated.
func (s *Service) publishEvents(ctx context.Context, o *order.Order) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range o.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish order event",
				zap.String("event_type", event.EventType()),
				zap.String("order_id", o.ID.String()),
				zap.Error(err),
			)
		}
	}
	o.ClearDomainEvents()
}
