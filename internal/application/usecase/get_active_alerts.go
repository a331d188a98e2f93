package usecase

import (
	"context"
	"fmt"

	"github.com/dreschagin/netpulse/internal/application/dto"
	"github.com/dreschagin/netpulse/internal/domain/repository"
	"github.com/dreschagin/netpulse/pkg/logger"
)

const defaultAlertLimit = 50

// GetActiveAlertsUseCase returns unresolved alerts for the alerts view.
type GetActiveAlertsUseCase struct {
	alerts repository.AlertRepository
	logger *logger.Logger
}

func NewGetActiveAlertsUseCase(alerts repository.AlertRepository, logger *logger.Logger) *GetActiveAlertsUseCase {
	return &GetActiveAlertsUseCase{
		alerts: alerts,
		logger: logger,
	}
}

// Execute returns up to limit unresolved alerts, newest first.
func (uc *GetActiveAlertsUseCase) Execute(ctx context.Context, limit int) ([]*dto.AlertDTO, error) {
	if limit <= 0 {
		limit = defaultAlertLimit
	}

	alerts, err := uc.alerts.FindActive(ctx, limit)
	if err != nil {
		uc.logger.Error("Failed to fetch active alerts", err)
		return nil, fmt.Errorf("failed to fetch active alerts: %w", err)
	}

	return dto.ToAlertDTOs(alerts), nil
}
