package authz

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TemporallyValid reports whether now falls inside the restriction's validity
// window, weekday set and time-of-day range. Nil restrictions are always
// valid. Malformed clock strings fail closed.
func TemporallyValid(tr *TimeRestrictions, now time.Time) bool {
	if tr == nil {
		return true
	}
	if tr.ValidFrom != nil && now.Before(*tr.ValidFrom) {
		return false
	}
	if tr.ValidUntil != nil && now.After(*tr.ValidUntil) {
		return false
	}
	if len(tr.DaysOfWeek) > 0 && !weekdayIn(tr.DaysOfWeek, now.Weekday()) {
		return false
	}
	if tr.TimeOfDay != nil && !withinClockWindow(tr.TimeOfDay, now) {
		return false
	}
	return true
}

// Expired reports whether the capability's own absolute deadline has passed.
// This is independent of any valid_until inside TimeRestrictions.
func (c *Capability) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

func weekdayIn(days []time.Weekday, day time.Weekday) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

// withinClockWindow checks the wall-clock minute of now against [start, end].
// End before start means the window wraps midnight and is treated as
// [start, 24:00) plus [00:00, end].
func withinClockWindow(window *TimeOfDayWindow, now time.Time) bool {
	start, err := parseClock(window.Start)
	if err != nil {
		return false
	}
	end, err := parseClock(window.End)
	if err != nil {
		return false
	}
	minute := now.Hour()*60 + now.Minute()
	if end < start {
		return minute >= start || minute <= end
	}
	return minute >= start && minute <= end
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("clock %q is not HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("clock %q has invalid hour", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("clock %q has invalid minute", s)
	}
	return hour*60 + minute, nil
}
