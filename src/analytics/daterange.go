package analytics

import (
	"errors"
	"fmt"
	"time"
)

// Date-range presets accepted by the analytics endpoints.
const (
	RangeCurrentMonth = "current-month"
	RangeLast3Months  = "last-3-months"
	RangeLast6Months  = "last-6-months"
	RangeThisYear     = "this-year"
	RangeCustom       = "custom"
)

// ErrIncompleteRange is returned when a custom range is missing a bound.
// The bucketizer must not run until both bounds are present.
var ErrIncompleteRange = errors.New("custom date range requires both start and end dates")

const dateLayout = "2006-01-02"

// DateRange is an inclusive [Start, End] reporting window, both YYYY-MM-DD.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Contains reports whether a YYYY-MM-DD date falls inside the range.
// Lexicographic comparison is chronological for this format.
func (r DateRange) Contains(date string) bool {
	return date >= r.Start && date <= r.End
}

// ResolveRange turns a preset name (plus optional custom bounds) into a
// concrete inclusive range ending today. Rolling presets count back from
// "now"; calendar presets snap to the 1st of the month or Jan 1.
func ResolveRange(preset, customStart, customEnd string, now time.Time) (DateRange, error) {
	today := now.Format(dateLayout)
	switch preset {
	case RangeCurrentMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return DateRange{Start: first.Format(dateLayout), End: today}, nil
	case RangeLast3Months:
		return DateRange{Start: now.AddDate(0, -3, 0).Format(dateLayout), End: today}, nil
	case RangeLast6Months:
		return DateRange{Start: now.AddDate(0, -6, 0).Format(dateLayout), End: today}, nil
	case RangeThisYear:
		jan1 := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return DateRange{Start: jan1.Format(dateLayout), End: today}, nil
	case RangeCustom:
		if customStart == "" || customEnd == "" {
			return DateRange{}, ErrIncompleteRange
		}
		if _, err := time.Parse(dateLayout, customStart); err != nil {
			return DateRange{}, fmt.Errorf("invalid start date %q: %w", customStart, err)
		}
		if _, err := time.Parse(dateLayout, customEnd); err != nil {
			return DateRange{}, fmt.Errorf("invalid end date %q: %w", customEnd, err)
		}
		if customEnd < customStart {
			return DateRange{}, fmt.Errorf("end date %s is before start date %s", customEnd, customStart)
		}
		return DateRange{Start: customStart, End: customEnd}, nil
	default:
		return DateRange{}, fmt.Errorf("unknown date range preset %q", preset)
	}
}
