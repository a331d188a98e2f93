package usecase

import (
	"context"
	"fmt"

	"github.com/dreschagin/netpulse/internal/application/dto"
	"github.com/dreschagin/netpulse/internal/application/port"
	"github.com/dreschagin/netpulse/internal/domain/entity"
	"github.com/dreschagin/netpulse/internal/domain/repository"
	"github.com/dreschagin/netpulse/internal/domain/service"
	"github.com/dreschagin/netpulse/pkg/logger"
)

// NATS subjects for outbound events.
const (
	SubjectAlerts = "netpulse.alerts"
	SubjectRisk   = "netpulse.risk"
)

// CollectSampleUseCase coordinates one collection tick: sampling,
// threshold evaluation, anomaly detection, persistence of alerts and
// fan-out to subscribers. It owns the anomaly detector, so Execute must
// only be called from a single goroutine.
type CollectSampleUseCase struct {
	source     port.SampleSource
	evaluator  *service.ThresholdEvaluator
	thresholds service.Thresholds
	detector   *service.AnomalyDetector
	alerts     repository.AlertRepository
	notifier   port.NotificationService
	events     port.EventPublisher
	metrics    port.MetricsPublisher
	logger     *logger.Logger
}

// NewCollectSampleUseCase creates the tick pipeline. events and metrics
// are optional and may be nil when the broker or observability backend
// is not configured.
func NewCollectSampleUseCase(
	source port.SampleSource,
	evaluator *service.ThresholdEvaluator,
	thresholds service.Thresholds,
	detector *service.AnomalyDetector,
	alerts repository.AlertRepository,
	notifier port.NotificationService,
	events port.EventPublisher,
	metrics port.MetricsPublisher,
	logger *logger.Logger,
) *CollectSampleUseCase {
	return &CollectSampleUseCase{
		source:     source,
		evaluator:  evaluator,
		thresholds: thresholds,
		detector:   detector,
		alerts:     alerts,
		notifier:   notifier,
		events:     events,
		metrics:    metrics,
		logger:     logger,
	}
}

// Execute runs one tick and returns the produced sample together with the
// snapshot that was broadcast. An error means no sample could be produced;
// alert persistence and event publishing failures are logged and absorbed
// so the collection loop survives them.
func (uc *CollectSampleUseCase) Execute(ctx context.Context) (*entity.Sample, *dto.MonitorSnapshotDTO, error) {
	sample, err := uc.source.Tick(ctx)
	if err != nil {
		uc.logger.Error("Failed to collect network sample", err)
		return nil, nil, fmt.Errorf("failed to collect sample: %w", err)
	}

	if sample.Degraded() {
		uc.logger.Warn("Probe failed, sample degraded", "upload_mbps", sample.UploadMbps(), "download_mbps", sample.DownloadMbps())
	}

	alerts := uc.evaluator.Evaluate(sample, uc.thresholds)
	for _, alert := range alerts {
		if err := uc.alerts.Save(ctx, alert); err != nil {
			uc.logger.Error("Failed to persist alert", err, "metric_type", alert.MetricType())
		}
	}

	anomalies := uc.detector.Evaluate(sample)
	risk := uc.detector.AssessRisk(anomalies)

	snapshot := dto.NewMonitorSnapshotDTO(
		dto.FromSample(sample),
		dto.ToAlertDTOs(alerts),
		dto.FromRiskAssessment(risk, uc.detector.Learning(), uc.detector.Observations(), uc.detector.Baselines()),
	)

	uc.notifier.Broadcast(snapshot)

	for _, alertDTO := range snapshot.Alerts {
		uc.notifier.BroadcastAlert(alertDTO)
		uc.publishEvent(ctx, SubjectAlerts, alertDTO)
	}

	if len(anomalies) > 0 {
		uc.publishEvent(ctx, SubjectRisk, snapshot.Risk)
	}

	if uc.metrics != nil {
		if err := uc.metrics.PublishBatch(ctx, []*entity.Sample{sample}); err != nil {
			uc.logger.Warn("Failed to publish sample metrics", "error", err.Error())
		}
	}

	return sample, snapshot, nil
}

func (uc *CollectSampleUseCase) publishEvent(ctx context.Context, subject string, event interface{}) {
	if uc.events == nil {
		return
	}
	if err := uc.events.PublishEvent(ctx, subject, event); err != nil {
		uc.logger.Warn("Failed to publish event", "subject", subject, "error", err.Error())
	}
}
