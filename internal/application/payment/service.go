package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/commerce/backend/internal/domain/order"
	"github.com/commerce/backend/internal/domain/payment"
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// webhookDedupeTTL bounds how long processed webhook keys are remembered
	webhookDedupeTTL = 24 * time.Hour

	// verifyAttempts bounds status polls against a flaky gateway
	verifyAttempts = 3
	// verifyBackoff is the initial wait between poll attempts, doubled each retry
	verifyBackoff = 200 * time.Millisecond

	// saveRetries bounds reload-and-retry attempts on optimistic lock conflicts
	saveRetries = 3
)

// ErrOrderNotPayable is returned when a payment is initiated for an order
// that already left the placed/pending state
var ErrOrderNotPayable = shared.NewDomainError("ORDER_NOT_PAYABLE", "Order is not awaiting payment")

// ErrTransactionNotRefundable is returned when a refund is requested
// against a transaction that never completed
var ErrTransactionNotRefundable = shared.NewDomainError("TRANSACTION_NOT_REFUNDABLE", "Only successful transactions can be refunded")

// GatewayProvider resolves the gateway adapter for a gateway type
type GatewayProvider interface {
	Get(gatewayType payment.GatewayType) (payment.Gateway, error)
}

// Service handles payment business operations
type Service struct {
	txRepo         payment.TransactionRepository
	refundRepo     payment.RefundRepository
	orderRepo      order.Repository
	gateways       GatewayProvider
	idempotency    shared.IdempotencyStore
	eventPublisher shared.EventPublisher
	callbackURL    string
	logger         *zap.Logger
}

// NewService creates a new payment Service
func NewService(
	txRepo payment.TransactionRepository,
	refundRepo payment.RefundRepository,
	orderRepo order.Repository,
	gateways GatewayProvider,
	idempotency shared.IdempotencyStore,
	callbackURL string,
	logger *zap.Logger,
) *Service {
	return &Service{
		txRepo:      txRepo,
		refundRepo:  refundRepo,
		orderRepo:   orderRepo,
		gateways:    gateways,
		idempotency: idempotency,
		callbackURL: callbackURL,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for post-commit notification
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// InitiatePayment opens a payment with the selected gateway and records
// the transaction in created status
func (s *Service) InitiatePayment(ctx context.Context, req InitiatePaymentRequest) (*InitiatePaymentResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if o.Status != order.OrderStatusPlaced || o.PaymentStatus != order.PaymentStatusPending {
		return nil, ErrOrderNotPayable
	}

	gateway, err := s.gateways.Get(req.GatewayType)
	if err != nil {
		return nil, err
	}

	createReq := &payment.CreatePaymentRequest{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Amount:      o.TotalAmount,
		Currency:    "INR",
		Customer: payment.CustomerInfo{
			CustomerID: o.CustomerID.String(),
			Name:       req.CustomerName,
			Email:      req.CustomerEmail,
			Mobile:     req.CustomerPhone,
		},
		CallbackURL: s.callbackURL,
	}

	resp, err := gateway.CreatePayment(ctx, createReq)
	if err != nil {
		return nil, err
	}

	tx, err := payment.NewTransaction(o.ID, resp.GatewayOrderID, resp.GatewayType, resp.Amount, resp.Currency)
	if err != nil {
		return nil, err
	}
	tx.Checksum = resp.Checksum
	tx.IsMock = resp.IsMock

	if err := s.txRepo.Save(ctx, tx); err != nil {
		return nil, err
	}

	s.logger.Info("Payment initiated",
		zap.String("order_number", o.OrderNumber),
		zap.String("gateway_order_id", tx.GatewayOrderID),
		zap.String("gateway_type", tx.GatewayType.String()),
		zap.Bool("is_mock", tx.IsMock),
	)

	return &InitiatePaymentResponse{
		TransactionID:  tx.ID,
		GatewayOrderID: tx.GatewayOrderID,
		GatewayType:    tx.GatewayType,
		PaymentURL:     resp.PaymentURL,
		Amount:         tx.Amount,
		Currency:       tx.Currency,
		IsMock:         tx.IsMock,
	}, nil
}

// HandleWebhook processes a gateway notification: field validation,
// signature verification, duplicate suppression, then settlement.
// Replayed notifications return Duplicate without touching the order.
func (s *Service) HandleWebhook(ctx context.Context, gatewayType payment.GatewayType, payload []byte, signature string) (*WebhookResult, error) {
	gateway, err := s.gateways.Get(gatewayType)
	if err != nil {
		return nil, err
	}

	evt, err := gateway.ValidateWebhook(payload)
	if err != nil {
		return nil, err
	}
	if err := gateway.VerifyWebhook(payload, signature); err != nil {
		return nil, err
	}

	tx, err := s.txRepo.FindByGatewayOrderID(ctx, evt.GatewayOrderID)
	if err != nil {
		return nil, err
	}

	dedupeKey := fmt.Sprintf("%s:%s:%s", gatewayType, evt.GatewayOrderID, evt.Status)
	processed, err := s.idempotency.IsProcessed(ctx, dedupeKey)
	if err != nil {
		// Dedupe store failures fall through to the terminal-status check
		s.logger.Warn("Webhook dedupe check failed", zap.Error(err))
		processed = false
	}

	if processed || tx.IsTerminal() {
		return &WebhookResult{
			TransactionID:  tx.ID,
			GatewayOrderID: tx.GatewayOrderID,
			Status:         tx.Status,
			Duplicate:      true,
		}, nil
	}

	if !evt.Status.IsTerminal() {
		// Gateway reported an intermediate state; nothing to settle yet
		return &WebhookResult{
			TransactionID:  tx.ID,
			GatewayOrderID: tx.GatewayOrderID,
			Status:         tx.Status,
		}, nil
	}

	if err := s.settle(ctx, tx, evt.Success, evt.GatewayTransactionID); err != nil {
		return nil, err
	}

	// Claimed only after a successful settle so a failed settle leaves the
	// gateway's retry able to reach it again
	if _, err := s.idempotency.MarkProcessed(ctx, dedupeKey, webhookDedupeTTL); err != nil {
		s.logger.Warn("Webhook dedupe mark failed", zap.Error(err))
	}

	return &WebhookResult{
		TransactionID:  tx.ID,
		GatewayOrderID: tx.GatewayOrderID,
		Status:         tx.Status,
	}, nil
}

// ReconcilePayment polls the gateway for the transaction's status and
// settles it if the gateway reports a terminal state. Transient gateway
// outages are retried with backoff before giving up.
func (s *Service) ReconcilePayment(ctx context.Context, gatewayOrderID string) (*TransactionResponse, error) {
	tx, err := s.txRepo.FindByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		return nil, err
	}
	if tx.IsTerminal() {
		response := ToTransactionResponse(tx)
		return &response, nil
	}

	gateway, err := s.gateways.Get(tx.GatewayType)
	if err != nil {
		return nil, err
	}

	var verify *payment.VerifyPaymentResponse
	backoff := verifyBackoff
	for attempt := 0; attempt < verifyAttempts; attempt++ {
		verify, err = gateway.VerifyPayment(ctx, gatewayOrderID)
		if err == nil {
			break
		}
		if !errors.Is(err, payment.ErrGatewayUnavailable) || attempt == verifyAttempts-1 {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	if verify.Status.IsTerminal() {
		if err := s.settle(ctx, tx, verify.Success, verify.GatewayTransactionID); err != nil {
			return nil, err
		}
	}

	response := ToTransactionResponse(tx)
	return &response, nil
}

// GetTransactionsByOrder lists all payment attempts recorded for an order
func (s *Service) GetTransactionsByOrder(ctx context.Context, orderID uuid.UUID) ([]TransactionResponse, error) {
	transactions, err := s.txRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	responses := make([]TransactionResponse, len(transactions))
	for i := range transactions {
		responses[i] = ToTransactionResponse(&transactions[i])
	}
	return responses, nil
}

// RequestRefund issues a refund against a successful transaction.
// A full refund moves the order's payment status to refunded; the order
// status follows only when the order was already returned.
func (s *Service) RequestRefund(ctx context.Context, req RefundOrderRequest) (*RefundResponse, error) {
	tx, err := s.txRepo.FindByID(ctx, req.TransactionID)
	if err != nil {
		return nil, err
	}
	if tx.Status != payment.TransactionStatusSuccess {
		return nil, ErrTransactionNotRefundable
	}

	refund, err := payment.NewRefund(tx, req.Amount, req.Reason)
	if err != nil {
		return nil, err
	}
	if err := s.refundRepo.Save(ctx, refund); err != nil {
		return nil, err
	}

	gateway, err := s.gateways.Get(tx.GatewayType)
	if err != nil {
		return nil, err
	}

	gatewayReq := &payment.RefundRequest{
		RefundID:             refund.ID,
		GatewayOrderID:       tx.GatewayOrderID,
		GatewayTransactionID: tx.GatewayTransactionID,
		TotalAmount:          tx.Amount,
		RefundAmount:         req.Amount,
		Reason:               req.Reason,
	}

	resp, err := gateway.CreateRefund(ctx, gatewayReq)
	if err != nil {
		refund.Settle("", payment.RefundStatusFailed)
		if saveErr := s.refundRepo.Save(ctx, refund); saveErr != nil {
			s.logger.Error("Failed to record refund failure", zap.Error(saveErr))
		}
		return nil, err
	}

	refund.Settle(resp.GatewayRefundID, resp.Status)
	if err := s.refundRepo.Save(ctx, refund); err != nil {
		return nil, err
	}

	if refund.Status == payment.RefundStatusSuccess && refund.Amount.Equal(tx.Amount) {
		if err := s.markOrderRefunded(ctx, tx.OrderID); err != nil {
			s.logger.Error("Refund settled but order update failed",
				zap.String("order_id", tx.OrderID.String()),
				zap.Error(err),
			)
		}
	}

	response := ToRefundResponse(refund)
	return &response, nil
}

// settle records the transaction's terminal status and moves the order
// forward: confirmed on success, payment failed otherwise
func (s *Service) settle(ctx context.Context, tx *payment.Transaction, success bool, gatewayTransactionID string) error {
	if success {
		if err := tx.MarkSuccess(gatewayTransactionID); err != nil {
			return err
		}
	} else {
		if err := tx.MarkFailed(); err != nil {
			return err
		}
	}
	if err := s.txRepo.Save(ctx, tx); err != nil {
		return err
	}

	return s.updateOrderPayment(ctx, tx.OrderID, success)
}

func (s *Service) updateOrderPayment(ctx context.Context, orderID uuid.UUID, success bool) error {
	var o *order.Order
	var err error
	for attempt := 0; attempt < saveRetries; attempt++ {
		o, err = s.orderRepo.FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		if success {
			if err = o.MarkPaid(); err != nil {
				return err
			}
			if o.Status == order.OrderStatusPlaced {
				if err = o.Transition(order.OrderStatusConfirmed, order.TransitionMetadata{
					Note: "Payment received",
				}); err != nil {
					return err
				}
			}
		} else {
			if err = o.MarkPaymentFailed(); err != nil {
				return err
			}
		}

		err = s.orderRepo.SaveWithLock(ctx, o)
		if err == nil {
			break
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return err
		}
	}
	if err != nil {
		return err
	}

	s.publishEvents(ctx, o)
	return nil
}

func (s *Service) markOrderRefunded(ctx context.Context, orderID uuid.UUID) error {
	var o *order.Order
	var err error
	for attempt := 0; attempt < saveRetries; attempt++ {
		o, err = s.orderRepo.FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		if err = o.MarkRefunded(); err != nil {
			return err
		}
		if o.Status == order.OrderStatusReturned {
			if err = o.Transition(order.OrderStatusRefunded, order.TransitionMetadata{
				Note: "Refund completed",
			}); err != nil {
				return err
			}
		}

		err = s.orderRepo.SaveWithLock(ctx, o)
		if err == nil {
			break
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return err
		}
	}
	if err != nil {
		return err
	}

	s.publishEvents(ctx, o)
	return nil
}

// publishEvents publishes pending order events after the save committed.
// Publish failures are logged, never propagated.
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
