package screening

// Severity is the risk band derived from the probability.
type Severity string

const (
	SeverityLow      Severity = "Low Risk"
	SeverityModerate Severity = "Moderate Risk"
	SeverityHigh     Severity = "High Risk"
)

// Band lower bounds on the 0-100 scale; each band includes its lower bound.
const (
	ModerateThreshold = 35.0
	HighThreshold     = 65.0
)

// ClassifySeverity buckets a probability expressed in percent.
func ClassifySeverity(probability float64) Severity {
	switch {
	case probability < ModerateThreshold:
		return SeverityLow
	case probability < HighThreshold:
		return SeverityModerate
	default:
		return SeverityHigh
	}
}
