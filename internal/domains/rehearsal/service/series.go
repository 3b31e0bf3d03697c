package service

import (
	"fmt"
	"strings"
	"time"

	"stagehand/shared/timezone"

	"github.com/teambition/rrule-go"
)

// MaxSeriesOccurrences bounds a single series; rules without COUNT or UNTIL are cut off here.
const MaxSeriesOccurrences = 200

const rrulePrefix = "RRULE:"

// expandSeries walks rule from studio midnight of startDate and returns each occurrence's
// studio-local day as a DATE value. truncated reports that the rule had more occurrences.
func expandSeries(rule, startDate string, loc *time.Location) (dates []time.Time, truncated bool, err error) {
	day, err := time.Parse(timezone.DateKeyLayout, startDate)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %q", timezone.ErrParseFailure, startDate)
	}

	option, err := rrule.StrToROption(strings.TrimPrefix(strings.TrimSpace(rule), rrulePrefix))
	if err != nil {
		return nil, false, fmt.Errorf("invalid recurrence rule: %w", err)
	}

	option.Dtstart = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)

	recurrence, err := rrule.NewRRule(*option)
	if err != nil {
		return nil, false, fmt.Errorf("invalid recurrence rule: %w", err)
	}

	next := recurrence.Iterator()

	for occurrence, ok := next(); ok; occurrence, ok = next() {
		if len(dates) == MaxSeriesOccurrences {
			return dates, true, nil
		}

		local := occurrence.In(loc)
		dates = append(dates, time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC))
	}

	return dates, false, nil
}
