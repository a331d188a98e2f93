package service

import (
	"fmt"

	"github.com/dreschagin/netpulse/internal/domain/entity"
	"github.com/dreschagin/netpulse/internal/domain/valueobject"
)

// Thresholds are the configured breach limits, read-only after startup.
type Thresholds struct {
	BandwidthMbps     float64
	LatencyMs         float64
	PacketLossPercent float64
}

// ThresholdEvaluator compares samples against configured thresholds
// (Domain Service). Stateless: every breaching sample re-emits an alert,
// with no deduplication across ticks.
type ThresholdEvaluator struct{}

func NewThresholdEvaluator() *ThresholdEvaluator {
	return &ThresholdEvaluator{}
}

// Evaluate returns zero to three alerts for the sample, one per breached
// threshold. The rules are independent of each other.
func (e *ThresholdEvaluator) Evaluate(sample *entity.Sample, thresholds Thresholds) []*entity.Alert {
	var alerts []*entity.Alert

	if sample.DownloadMbps() > thresholds.BandwidthMbps {
		alert, err := entity.NewAlert(
			valueobject.AlertWarning,
			valueobject.Bandwidth,
			fmt.Sprintf("High download bandwidth usage: %.1f Mbps", sample.DownloadMbps()),
			sample.DownloadMbps(),
			thresholds.BandwidthMbps,
		)
		if err == nil {
			alerts = append(alerts, alert)
		}
	}

	if sample.LatencyMs() > thresholds.LatencyMs {
		alert, err := entity.NewAlert(
			valueobject.AlertWarning,
			valueobject.Latency,
			fmt.Sprintf("High network latency: %.0f ms", sample.LatencyMs()),
			sample.LatencyMs(),
			thresholds.LatencyMs,
		)
		if err == nil {
			alerts = append(alerts, alert)
		}
	}

	if sample.PacketLossPct() > thresholds.PacketLossPercent {
		alert, err := entity.NewAlert(
			valueobject.AlertError,
			valueobject.PacketLoss,
			fmt.Sprintf("High packet loss detected: %.1f%%", sample.PacketLossPct()),
			sample.PacketLossPct(),
			thresholds.PacketLossPercent,
		)
		if err == nil {
			alerts = append(alerts, alert)
		}
	}

	return alerts
}
