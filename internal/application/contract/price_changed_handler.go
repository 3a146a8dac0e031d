package contract

import (
	"context"
	"fmt"

	"github.com/scg/portal/internal/domain/catalog"
	"github.com/scg/portal/internal/domain/contract"
	"github.com/scg/portal/internal/domain/shared"
	"go.uber.org/zap"
)

// ServicePriceChangedHandler recomputes the totals of every contract
// that carries a service whose list price changed
type ServicePriceChangedHandler struct {
	contractRepo contract.ContractRepository
	contracts    *ContractService
	logger       *zap.Logger
}

// NewServicePriceChangedHandler creates a new handler for price change events
func NewServicePriceChangedHandler(contractRepo contract.ContractRepository, contracts *ContractService, logger *zap.Logger) *ServicePriceChangedHandler {
	return &ServicePriceChangedHandler{
		contractRepo: contractRepo,
		contracts:    contracts,
		logger:       logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *ServicePriceChangedHandler) EventTypes() []string {
	return []string{catalog.EventTypeServicePriceChanged}
}

// Handle processes a ServicePriceChangedEvent.
// A failing contract is logged and skipped so the others still pick up the price.
func (h *ServicePriceChangedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	changed, ok := event.(*catalog.ServicePriceChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			catalog.EventTypeServicePriceChanged, event.EventType())
	}

	serviceID := changed.AggregateID()
	ids, err := h.contractRepo.FindIDsWithService(ctx, serviceID)
	if err != nil {
		return fmt.Errorf("failed to find contracts for service %s: %w", serviceID, err)
	}

	failed := 0
	for _, id := range ids {
		if err := h.contracts.Recalculate(ctx, id); err != nil {
			failed++
			h.logger.Error("Failed to recalculate contract after price change",
				zap.String("contract_id", id.String()),
				zap.String("service_id", serviceID.String()),
				zap.Error(err),
			)
		}
	}

	h.logger.Info("Contracts recalculated after price change",
		zap.String("service_id", serviceID.String()),
		zap.String("price", changed.Price.StringFixed(2)),
		zap.Int("contracts", len(ids)),
		zap.Int("failed", failed),
	)
	return nil
}

// Ensure ServicePriceChangedHandler implements shared.EventHandler
var _ shared.EventHandler = (*ServicePriceChangedHandler)(nil)
