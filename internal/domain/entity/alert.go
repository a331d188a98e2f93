package entity

import (
	"time"

	"github.com/dreschagin/netpulse/internal/domain/valueobject"
	"github.com/google/uuid"
)

// Alert records a single threshold breach. Created by the threshold
// evaluator, mutated only through Resolve.
type Alert struct {
	id         string
	kind       valueobject.AlertKind
	metricType valueobject.MetricType
	message    string
	value      float64
	threshold  float64
	createdAt  time.Time
	resolved   bool
}

// NewAlert creates an alert for a threshold breach. The breaching value
// and the threshold that triggered it are both carried for auditability.
func NewAlert(
	kind valueobject.AlertKind,
	metricType valueobject.MetricType,
	message string,
	value, threshold float64,
) (*Alert, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	if err := metricType.Validate(); err != nil {
		return nil, err
	}

	return &Alert{
		id:         uuid.New().String(),
		kind:       kind,
		metricType: metricType,
		message:    message,
		value:      value,
		threshold:  threshold,
		createdAt:  time.Now(),
		resolved:   false,
	}, nil
}

// ReconstructAlert restores an alert from storage (for Repository use).
func ReconstructAlert(
	id string,
	kind valueobject.AlertKind,
	metricType valueobject.MetricType,
	message string,
	value, threshold float64,
	createdAt time.Time,
	resolved bool,
) *Alert {
	return &Alert{
		id:         id,
		kind:       kind,
		metricType: metricType,
		message:    message,
		value:      value,
		threshold:  threshold,
		createdAt:  createdAt,
		resolved:   resolved,
	}
}

func (a *Alert) ID() string {
	return a.id
}

func (a *Alert) Kind() valueobject.AlertKind {
	return a.kind
}

func (a *Alert) MetricType() valueobject.MetricType {
	return a.metricType
}

func (a *Alert) Message() string {
	return a.message
}

func (a *Alert) Value() float64 {
	return a.value
}

func (a *Alert) Threshold() float64 {
	return a.threshold
}

func (a *Alert) CreatedAt() time.Time {
	return a.createdAt
}

func (a *Alert) Resolved() bool {
	return a.resolved
}

// Resolve marks the alert as acknowledged. Idempotent.
func (a *Alert) Resolve() {
	a.resolved = true
}
