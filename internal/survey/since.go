package survey

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// ParseSince converts a since filter into a Unix epoch at local midnight.
// Accepts "today", "yesterday" or a YYYY-MM-DD date.
func ParseSince(value string, now time.Time) (int64, error) {
	loc := now.Location()
	var day time.Time
	switch value {
	case "today":
		day = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	case "yesterday":
		day = time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, loc)
	default:
		d, err := time.ParseInLocation(dateLayout, value, loc)
		if err != nil {
			return 0, fmt.Errorf("invalid since %q: want today, yesterday or YYYY-MM-DD", value)
		}
		day = d
	}
	return day.Unix(), nil
}
