package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/our-cpg/planogram-backend/internal/analytics"
)

func TestDaysOfStock(t *testing.T) {
	t.Run("zero velocity with stock is unbounded, not a division error", func(t *testing.T) {
		assert.Equal(t, analytics.UnboundedRunwayDays, analytics.DaysOfStock(10, 0))
	})

	t.Run("zero stock is zero runway", func(t *testing.T) {
		assert.Equal(t, 0.0, analytics.DaysOfStock(0, 30))
	})

	t.Run("runway is stock over daily velocity", func(t *testing.T) {
		// 30 units in 30 days is 1/day
		assert.InDelta(t, 12.0, analytics.DaysOfStock(12, 30), 0.001)
		assert.InDelta(t, 5.0, analytics.DaysOfStock(30, 180), 0.001)
	})
}

func TestClassifyRisk(t *testing.T) {
	cases := []struct {
		name    string
		onHand  int
		units30 int
		want    analytics.RiskLevel
	}{
		{"negative stock is critical", -2, 0, analytics.RiskCritical},
		{"sold out is critical", 0, 30, analytics.RiskCritical},
		{"three days left is critical", 3, 30, analytics.RiskCritical},
		{"a week left is high", 7, 30, analytics.RiskHigh},
		{"two weeks left is medium", 14, 30, analytics.RiskMedium},
		{"slow mover is low", 100, 30, analytics.RiskLow},
		{"zero velocity with stock is low", 10, 0, analytics.RiskLow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, analytics.ClassifyRisk(tc.onHand, tc.units30))
		})
	}
}
