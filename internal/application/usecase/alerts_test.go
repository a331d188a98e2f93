package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/dreschagin/netpulse/internal/domain/entity"
	"github.com/dreschagin/netpulse/internal/domain/valueobject"
	"github.com/dreschagin/netpulse/pkg/logger"
)

func activeAlert(t *testing.T) *entity.Alert {
	t.Helper()
	alert, err := entity.NewAlert(valueobject.AlertWarning, valueobject.Bandwidth, "High download bandwidth usage: 120.0 Mbps", 120, 80)
	if err != nil {
		t.Fatalf("NewAlert() error = %v", err)
	}
	return alert
}

func TestGetActiveAlertsUseCase_ReturnsDTOs(t *testing.T) {
	repo := &mockAlertRepository{active: []*entity.Alert{activeAlert(t), activeAlert(t)}}
	uc := NewGetActiveAlertsUseCase(repo, logger.New("error"))

	dtos, err := uc.Execute(context.Background(), 10)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(dtos) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(dtos))
	}
	if dtos[0].Kind != "warning" || dtos[0].MetricType != "bandwidth" {
		t.Errorf("unexpected alert DTO: %+v", dtos[0])
	}
}

func TestGetActiveAlertsUseCase_DefaultsLimit(t *testing.T) {
	repo := &mockAlertRepository{active: []*entity.Alert{activeAlert(t)}}
	uc := NewGetActiveAlertsUseCase(repo, logger.New("error"))

	dtos, err := uc.Execute(context.Background(), 0)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(dtos) != 1 {
		t.Fatalf("expected 1 alert with default limit, got %d", len(dtos))
	}
}

func TestResolveAlertUseCase_RequiresID(t *testing.T) {
	uc := NewResolveAlertUseCase(&mockAlertRepository{}, logger.New("error"))

	if err := uc.Execute(context.Background(), ""); !errors.Is(err, ErrEmptyAlertID) {
		t.Fatalf("expected ErrEmptyAlertID, got %v", err)
	}
}

func TestResolveAlertUseCase_ResolvesByID(t *testing.T) {
	repo := &mockAlertRepository{}
	uc := NewResolveAlertUseCase(repo, logger.New("error"))

	if err := uc.Execute(context.Background(), "alert-1"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(repo.resolved) != 1 || repo.resolved[0] != "alert-1" {
		t.Errorf("expected alert-1 resolved, got %v", repo.resolved)
	}
}
