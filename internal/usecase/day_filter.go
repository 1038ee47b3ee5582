package usecase

import (
	"strings"
	"time"

	"clinic-booking/internal/domain/entity"
)

// dayLayouts are tried in order; DD-MM-YYYY comes first.
var dayLayouts = []string{
	"02-01-2006",
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// ParseDayFilter returns local midnight of the requested day. An empty value
// means no filter and returns ok=false.
func ParseDayFilter(raw string, loc *time.Location) (time.Time, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false, nil
	}
	if loc == nil {
		loc = time.Local
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return startOfDay(t.In(loc)), true, nil
	}
	for _, layout := range dayLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return startOfDay(t), true, nil
		}
	}
	return time.Time{}, false, ErrInvalidDayFilter
}

// FilterBookingsForDay keeps bookings whose start and end both fall within
// [00:00:00.000, 23:59:59.999] of the day starting at dayStart.
func FilterBookingsForDay(bookings []entity.Booking, dayStart time.Time) []entity.Booking {
	dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Millisecond)

	filtered := make([]entity.Booking, 0, len(bookings))
	for _, booking := range bookings {
		if booking.StartTime.Before(dayStart) || booking.EndTime.After(dayEnd) {
			continue
		}
		filtered = append(filtered, booking)
	}
	return filtered
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
