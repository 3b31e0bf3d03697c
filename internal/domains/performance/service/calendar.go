package service

import (
	"fmt"
	"strings"

	"stagehand/internal/domains/performance/model"
	rehearsalModel "stagehand/internal/domains/rehearsal/model"
	"stagehand/shared/timezone"

	ical "github.com/arran4/golang-ical"
)

const (
	calendarProductID = "-//stagehand//performance schedule//EN"
	calendarUIDDomain = "stagehand"
)

func eventUID(kind, id string) string {
	return fmt.Sprintf("%s-%s@%s", kind, id, calendarUIDDomain)
}

// renderCalendar builds a VCALENDAR holding the performance and every rehearsal that resolves to
// an instant in the studio zone.
func renderCalendar(perf model.Performance, rehearsals []rehearsalModel.Rehearsal, conv *timezone.Converter) string {
	now := conv.Now()

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName(perf.Title)
	cal.SetXWRTimezone(perf.Timezone)

	event := cal.AddEvent(eventUID(model.EntityName, perf.ID))
	event.SetDtStampTime(now)
	event.SetCreatedTime(perf.CreatedAt)
	event.SetModifiedAt(perf.ModifiedAt)
	event.SetStartAt(perf.StartsAt)
	event.SetSummary(perf.Title)
	event.SetLocation(venue(perf))
	event.SetDescription(describe(perf, conv))

	for _, rehearsal := range rehearsals {
		start, err := conv.Instant(rehearsal.StartLocal(), "")
		if err != nil {
			continue
		}

		end, err := conv.Instant(rehearsal.EndLocal(), "")
		if err != nil {
			continue
		}

		item := cal.AddEvent(eventUID(rehearsalModel.EntityName, rehearsal.ID))
		item.SetDtStampTime(now)
		item.SetCreatedTime(rehearsal.CreatedAt)
		item.SetModifiedAt(rehearsal.ModifiedAt)
		item.SetStartAt(start)
		item.SetEndAt(end)
		item.SetSummary("Rehearsal: " + perf.Title)
		item.SetLocation(rehearsal.Location)

		if rehearsal.Notes != nil {
			item.SetDescription(*rehearsal.Notes)
		}
	}

	return cal.Serialize()
}

func venue(perf model.Performance) string {
	if perf.VenueAddress == "" {
		return perf.VenueName
	}

	return perf.VenueName + ", " + perf.VenueAddress
}

func describe(perf model.Performance, conv *timezone.Converter) string {
	lines := []string{
		"Starts " + conv.FormatForDisplayWithWeekday(timezone.FormatInstant(perf.StartsAt), perf.Timezone),
		"Call time " + conv.FormatClockTime(perf.CallTime),
	}

	if perf.Description != "" {
		lines = append(lines, "", perf.Description)
	}

	return strings.Join(lines, "\n")
}
