package model

import (
	"time"

	"stagehand/shared/model"
	"stagehand/shared/timezone"
)

const (
	TableName  = "rehearsals"
	EntityName = "rehearsal"

	FieldID            = "id"
	FieldPerformanceID = "performance_id"
	FieldRehearsalDate = "rehearsal_date"
	FieldStartTime     = "start_time"
	FieldEndTime       = "end_time"
	FieldLocation      = "location"
	FieldSeriesID      = "series_id"
)

// Rehearsal happens on a studio-local calendar day between two zone-less clock times.
type Rehearsal struct {
	ID            string    `db:"id"`
	PerformanceID string    `db:"performance_id"`
	RehearsalDate time.Time `db:"rehearsal_date"`
	StartTime     string    `db:"start_time"`
	EndTime       string    `db:"end_time"`
	Location      string    `db:"location"`
	Notes         *string   `db:"notes"`
	SeriesID      *string   `db:"series_id"`
	model.Metadata
}

func (r Rehearsal) DateKey() string {
	return r.RehearsalDate.UTC().Format(timezone.DateKeyLayout)
}

// StartLocal is the naive local start, e.g. "2024-06-15T18:30".
func (r Rehearsal) StartLocal() string {
	return timezone.JoinDateClock(r.DateKey(), r.StartTime)
}

func (r Rehearsal) EndLocal() string {
	return timezone.JoinDateClock(r.DateKey(), r.EndTime)
}

// DateFromKey maps a "YYYY-MM-DD" day onto the value stored in the DATE column.
func DateFromKey(dateKey string) (time.Time, error) {
	day, err := time.Parse(timezone.DateKeyLayout, dateKey)
	if err != nil {
		return time.Time{}, timezone.ErrParseFailure
	}

	return day, nil
}
