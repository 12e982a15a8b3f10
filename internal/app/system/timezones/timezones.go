// Package timezones holds the application clock conventions.
//
// Challenge days and wake-up alarms are both evaluated in one fixed zone,
// UTC+9, regardless of where the server runs.
package timezones

import "time"

// AppOffset is the fixed offset of the application timezone.
const AppOffset = 9 * time.Hour

// App is the application location (UTC+9, no DST).
var App = time.FixedZone("KST", int(AppOffset/time.Second))

// DayLayout formats a calendar day.
const DayLayout = "2006-01-02"

// ClockLayout formats a wake-up time.
const ClockLayout = "15:04"

// AppDay returns the calendar day of t in the application timezone.
func AppDay(t time.Time) string {
	return t.In(App).Format(DayLayout)
}

// AppClock returns the HH:MM wall-clock time of t in the application timezone.
func AppClock(t time.Time) string {
	return t.In(App).Format(ClockLayout)
}
