package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/our-cpg/planogram-backend/internal/analytics"
)

func TestComputeWindows(t *testing.T) {
	// 23:30 UTC on a Wednesday is already Thursday in a UTC+10 storefront.
	now := time.Date(2026, 8, 26, 23, 30, 0, 0, time.UTC)
	windows := analytics.ComputeWindows(now, 10)

	zone := time.FixedZone("store", 10*3600)

	assert.Equal(t, time.Date(2026, 8, 27, 0, 0, 0, 0, zone).UTC(), windows.Today.UTC(),
		"today must start at the storefront's midnight, not UTC midnight")
	assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, zone).UTC(), windows.ThisWeek.UTC(),
		"weeks start on Monday in store time")
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, zone).UTC(), windows.ThisMonth.UTC())
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, zone).UTC(), windows.ThisYear.UTC())
}

func TestComputeWindowsSundayBelongsToCurrentWeek(t *testing.T) {
	// Sunday in store time: the week still starts the previous Monday.
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	windows := analytics.ComputeWindows(now, 0)

	assert.Equal(t, time.Monday, windows.ThisWeek.Weekday())
	assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), windows.ThisWeek.UTC())
}
