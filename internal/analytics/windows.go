package analytics

import (
	"time"
)

// WindowStarts are calendar-window boundaries used by the revenue rollups.
type WindowStarts struct {
	Today     time.Time
	ThisWeek  time.Time
	ThisMonth time.Time
	ThisYear  time.Time
}

// ComputeWindows derives the boundaries against the storefront's operating
// time zone, given as a UTC offset in hours, so "today" matches the shop's
// trading day rather than UTC midnight. Weeks start on Monday.
func ComputeWindows(now time.Time, utcOffsetHours int) WindowStarts {
	zone := time.FixedZone("store", utcOffsetHours*3600)
	local := now.In(zone)

	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, zone)

	weekday := int(local.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	week := today.AddDate(0, 0, -(weekday - 1))

	month := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, zone)
	year := time.Date(local.Year(), 1, 1, 0, 0, 0, 0, zone)

	return WindowStarts{Today: today, ThisWeek: week, ThisMonth: month, ThisYear: year}
}
