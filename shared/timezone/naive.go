package timezone

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrParseFailure = errors.New("unparseable date-time")
	ErrUnknownZone  = errors.New("unknown timezone")
)

const (
	NaiveLayout   = "2006-01-02T15:04"
	DateKeyLayout = "2006-01-02"
	ClockLayout   = "15:04"

	dateHeadingLayout = "Monday, Jan 2, 2006"
)

const (
	minutesPerHour = 60
	minutesPerDay  = 24 * minutesPerHour
)

// NaiveLocal is a wall-clock reading with no offset attached. Fields are kept exactly as parsed;
// calendar validity is not checked.
type NaiveLocal struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
}

// ParseNaiveLocal reads "YYYY-MM-DDTHH:MM" with optional trailing seconds, which are ignored.
func ParseNaiveLocal(text string) (NaiveLocal, error) {
	datePart, timePart, found := strings.Cut(strings.TrimSpace(text), "T")
	if !found {
		return NaiveLocal{}, fmt.Errorf("%w: %q", ErrParseFailure, text)
	}

	date := strings.Split(datePart, "-")
	clock := strings.Split(timePart, ":")

	if len(date) != 3 || len(clock) < 2 {
		return NaiveLocal{}, fmt.Errorf("%w: %q", ErrParseFailure, text)
	}

	parts := []string{date[0], date[1], date[2], clock[0], clock[1]}
	fields := make([]int, len(parts))

	for idx, part := range parts {
		value, ok := atoi(part)
		if !ok {
			return NaiveLocal{}, fmt.Errorf("%w: %q", ErrParseFailure, text)
		}

		fields[idx] = value
	}

	return NaiveLocal{
		Year:   fields[0],
		Month:  fields[1],
		Day:    fields[2],
		Hour:   fields[3],
		Minute: fields[4],
	}, nil
}

// ParseClockTime reads a zone-less "HH:MM" (or "HH:MM:SS") clock value.
func ParseClockTime(text string) (hour, minute int, err error) {
	clock := strings.Split(strings.TrimSpace(text), ":")
	if len(clock) < 2 || len(clock) > 3 {
		return 0, 0, fmt.Errorf("%w: %q", ErrParseFailure, text)
	}

	hour, okHour := atoi(clock[0])
	minute, okMinute := atoi(clock[1])

	if !okHour || !okMinute || hour > 23 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrParseFailure, text)
	}

	return hour, minute, nil
}

// IsCalendarDate reports whether the fields name a real day and time of day.
func (n NaiveLocal) IsCalendarDate() bool {
	t := n.wallClock()

	return t.Year() == n.Year && int(t.Month()) == n.Month && t.Day() == n.Day &&
		t.Hour() == n.Hour && t.Minute() == n.Minute
}

func (n NaiveLocal) String() string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d", n.Year, n.Month, n.Day, n.Hour, n.Minute)
}

func (n NaiveLocal) DateKey() string {
	return fmt.Sprintf("%04d-%02d-%02d", n.Year, n.Month, n.Day)
}

func (n NaiveLocal) ClockTime() string {
	return fmt.Sprintf("%02d:%02d", n.Hour, n.Minute)
}

// JoinDateClock combines a "YYYY-MM-DD" day and an "HH:MM" clock into a naive local string.
func JoinDateClock(dateKey, hhmm string) string {
	return dateKey + "T" + hhmm
}

// FormatDateKey renders a "YYYY-MM-DD" day as "Saturday, Jun 15, 2024".
func FormatDateKey(dateKey string) string {
	day, err := time.Parse(DateKeyLayout, dateKey)
	if err != nil {
		return Placeholder
	}

	return day.Format(dateHeadingLayout)
}

// wallClock reads the fields as if they were UTC. Out-of-range fields roll over the way
// time.Date normalizes them.
func (n NaiveLocal) wallClock() time.Time {
	return time.Date(n.Year, time.Month(n.Month), n.Day, n.Hour, n.Minute, 0, 0, time.UTC)
}

func atoi(text string) (int, bool) {
	if text == "" {
		return 0, false
	}

	value := 0

	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, false
		}

		value = value*10 + int(r-'0')
	}

	return value, true
}
