package analytics

// RiskLevel classifies how soon a variant is expected to run out of stock.
type RiskLevel string

const (
	RiskCritical RiskLevel = "CRITICAL"
	RiskHigh     RiskLevel = "HIGH"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskLow      RiskLevel = "LOW"
)

// UnboundedRunwayDays stands in for "no projected stock-out": positive
// stock that has not sold in the window has effectively unlimited runway.
const UnboundedRunwayDays = 9999.0

// DaysOfStock estimates the remaining runway from on-hand quantity and the
// 30-day unit count. Zero velocity with positive stock yields the unbounded
// sentinel rather than a division error.
func DaysOfStock(onHand, units30 int) float64 {
	if onHand <= 0 {
		return 0
	}
	velocity := float64(units30) / 30.0
	if velocity == 0 {
		return UnboundedRunwayDays
	}
	return float64(onHand) / velocity
}

// ClassifyRisk buckets a variant by projected days of stock remaining.
// Negative on-hand counts are treated as already out.
func ClassifyRisk(onHand, units30 int) RiskLevel {
	if onHand < 0 {
		return RiskCritical
	}
	days := DaysOfStock(onHand, units30)
	switch {
	case days <= 3:
		return RiskCritical
	case days <= 7:
		return RiskHigh
	case days <= 14:
		return RiskMedium
	default:
		return RiskLow
	}
}
