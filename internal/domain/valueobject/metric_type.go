package valueobject

import "errors"

// MetricType identifies which network metric an alert or anomaly refers to.
type MetricType string

const (
	Bandwidth  MetricType = "bandwidth"
	Latency    MetricType = "latency"
	PacketLoss MetricType = "packet_loss"
)

// Validate checks that the metric type is one of the known values.
func (mt MetricType) Validate() error {
	switch mt {
	case Bandwidth, Latency, PacketLoss:
		return nil
	default:
		return errors.New("invalid metric type")
	}
}

func (mt MetricType) String() string {
	return string(mt)
}

// AllMetricTypes returns every valid metric type.
func AllMetricTypes() []MetricType {
	return []MetricType{Bandwidth, Latency, PacketLoss}
}

// AlertKind classifies the weight of a threshold alert.
type AlertKind string

const (
	AlertWarning AlertKind = "warning"
	AlertError   AlertKind = "error"
)

// Validate checks that the alert kind is one of the known values.
func (k AlertKind) Validate() error {
	switch k {
	case AlertWarning, AlertError:
		return nil
	default:
		return errors.New("invalid alert kind")
	}
}

func (k AlertKind) String() string {
	return string(k)
}
