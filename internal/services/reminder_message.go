package services

import (
	"fmt"
	"time"

	"eventrio/internal/domain"
)

// calendarDay returns midnight UTC of t's calendar date in loc.
// Differences between two such values are whole days regardless of DST.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysUntil returns the number of calendar days from now to the event date, both taken in loc.
// The event date is a plain date and is read as-is.
func DaysUntil(eventDate, now time.Time, loc *time.Location) int {
	y, m, d := eventDate.Date()
	event := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(event.Sub(calendarDay(now, loc)).Hours() / 24)
}

// FormatReminderMessage renders the reminder text for an event that is days away.
func FormatReminderMessage(e *domain.Event, days int) string {
	if days <= 1 {
		return fmt.Sprintf("REMINDER: The event '%s' is TOMORROW at %s in %s.", e.Title, e.Time, e.Location)
	}
	return fmt.Sprintf("REMINDER: The event '%s' is coming up in %d days at %s in %s.", e.Title, days, e.Time, e.Location)
}
