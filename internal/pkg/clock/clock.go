package clock

import "time"

// Clock supplies "now" to everything that depends on the current date:
// current-loan filtering, recent-activity scoring and loan date arithmetic.
// Production code uses System; tests inject a fixed instant.
type Clock func() time.Time

func System() time.Time { return time.Now() }

// Today returns the clock's current day truncated to UTC midnight. All
// end-date comparisons use this so a loan ending "today" still counts as
// current.
func (c Clock) Today() time.Time {
	t := c().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
