package event

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/commerce/backend/internal/domain/shared"
)

// IdempotentHandler wraps an EventHandler so each event is processed at most
// once even when delivered repeatedly.
type IdempotentHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	config  shared.IdempotencyConfig
	logger  *zap.Logger
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)

// NewIdempotentHandler wraps the handler with dedupe checking
func NewIdempotentHandler(
	handler shared.EventHandler,
	store shared.IdempotencyStore,
	logger *zap.Logger,
) *IdempotentHandler {
	return &IdempotentHandler{
		handler: handler,
		store:   store,
		config:  shared.DefaultIdempotencyConfig(),
		logger:  logger,
	}
}

// Handle claims the event ID before delegating. A duplicate claim means the
// event was already handled and is skipped silently.
func (h *IdempotentHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	isNew, err := h.store.MarkProcessed(ctx, evt.EventID().String(), h.config.TTL)
	if err != nil {
		return fmt.Errorf("idempotency check failed: %w", err)
	}
	if !isNew {
		h.logger.Debug("duplicate event skipped",
			zap.String("event_type", evt.EventType()),
			zap.String("event_id", evt.EventID().String()),
		)
		return nil
	}

	return h.handler.Handle(ctx, evt)
}

// EventTypes delegates to the wrapped handler
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}
