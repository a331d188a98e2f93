package valueobject

// Severity classifies a single detected anomaly.
type Severity string

const (
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

func (s Severity) String() string {
	return string(s)
}

// RiskLevel is the aggregate classification of one detection cycle,
// derived from the counts of HIGH and MEDIUM anomalies.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

func (r RiskLevel) String() string {
	return string(r)
}
