package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/dreschagin/netpulse/internal/domain/repository"
	"github.com/dreschagin/netpulse/pkg/logger"
)

// ErrEmptyAlertID is returned when the caller omits the alert identifier.
var ErrEmptyAlertID = errors.New("alert id is required")

// ResolveAlertUseCase marks an alert as acknowledged by an operator.
type ResolveAlertUseCase struct {
	alerts repository.AlertRepository
	logger *logger.Logger
}

func NewResolveAlertUseCase(alerts repository.AlertRepository, logger *logger.Logger) *ResolveAlertUseCase {
	return &ResolveAlertUseCase{
		alerts: alerts,
		logger: logger,
	}
}

// Execute resolves the alert with the given id.
func (uc *ResolveAlertUseCase) Execute(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyAlertID
	}

	if err := uc.alerts.Resolve(ctx, id); err != nil {
		uc.logger.Error("Failed to resolve alert", err, "id", id)
		return fmt.Errorf("failed to resolve alert: %w", err)
	}

	uc.logger.Info("Alert resolved", "id", id)
	return nil
}
