package dto

import (
	"time"

	"stagehand/internal/domains/rehearsal/model"
	"stagehand/shared"
	gDto "stagehand/shared/dto"
	gModel "stagehand/shared/model"
	"stagehand/shared/timezone"

	"github.com/google/uuid"
)

type CreateRehearsalRequest struct {
	PerformanceID string  `json:"performance_id" validate:"required,uuid"`
	Date          string  `json:"date"           validate:"required,datekey"`
	StartTime     string  `json:"start_time"     validate:"required,clocktime"`
	EndTime       string  `json:"end_time"       validate:"required,clocktime"`
	Location      string  `json:"location"       validate:"required,max=255"`
	Notes         *string `json:"notes"          validate:"omitempty,max=2000"`
}

func (c *CreateRehearsalRequest) ToModel(user string, date, now time.Time) model.Rehearsal {
	return model.Rehearsal{
		ID:            uuid.NewString(),
		PerformanceID: c.PerformanceID,
		RehearsalDate: date,
		StartTime:     c.StartTime,
		EndTime:       c.EndTime,
		Location:      c.Location,
		Notes:         c.Notes,
		Metadata:      gModel.NewMetadata(user, now),
	}
}

// CreateSeriesRequest expands RRule from StartDate into one rehearsal per occurrence, e.g.
// "FREQ=WEEKLY;BYDAY=TU,TH;COUNT=8".
type CreateSeriesRequest struct {
	PerformanceID string  `json:"performance_id" validate:"required,uuid"`
	StartDate     string  `json:"start_date"     validate:"required,datekey"`
	RRule         string  `json:"rrule"          validate:"required,rrule"`
	StartTime     string  `json:"start_time"     validate:"required,clocktime"`
	EndTime       string  `json:"end_time"       validate:"required,clocktime"`
	Location      string  `json:"location"       validate:"required,max=255"`
	Notes         *string `json:"notes"          validate:"omitempty,max=2000"`
}

func (c *CreateSeriesRequest) ToModels(user, seriesID string, dates []time.Time, now time.Time) []model.Rehearsal {
	rehearsals := make([]model.Rehearsal, len(dates))

	for i, date := range dates {
		rehearsals[i] = model.Rehearsal{
			ID:            uuid.NewString(),
			PerformanceID: c.PerformanceID,
			RehearsalDate: date,
			StartTime:     c.StartTime,
			EndTime:       c.EndTime,
			Location:      c.Location,
			Notes:         c.Notes,
			SeriesID:      &seriesID,
			Metadata:      gModel.NewMetadata(user, now),
		}
	}

	return rehearsals
}

type CreateSeriesResponse struct {
	SeriesID  string `json:"series_id"`
	Created   int    `json:"created"`
	Truncated bool   `json:"truncated"`
}

type UpdateRehearsalRequest struct {
	Date      string  `db:"-"          json:"date"       validate:"omitempty,datekey"`
	StartTime string  `db:"start_time" json:"start_time" validate:"omitempty,clocktime"`
	EndTime   string  `db:"end_time"   json:"end_time"   validate:"omitempty,clocktime"`
	Location  string  `db:"location"   json:"location"   validate:"omitempty,max=255"`
	Notes     *string `db:"notes"      json:"notes"      validate:"omitempty,max=2000"`
}

func (u *UpdateRehearsalRequest) IsEmpty() bool {
	return *u == UpdateRehearsalRequest{}
}

func (u *UpdateRehearsalRequest) TouchesSchedule() bool {
	return u.Date != "" || u.StartTime != "" || u.EndTime != ""
}

type RehearsalResponse struct {
	ID            string  `json:"id"`
	PerformanceID string  `json:"performance_id"`
	Date          string  `json:"date"`
	DateHeading   string  `json:"date_heading"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	StartDisplay  string  `json:"start_display"`
	EndDisplay    string  `json:"end_display"`
	StartsAt      string  `json:"starts_at"`
	EndsAt        string  `json:"ends_at"`
	Location      string  `json:"location"`
	Notes         *string `json:"notes,omitempty"`
	SeriesID      *string `json:"series_id,omitempty"`
	Locked        bool    `json:"locked"`
	gDto.Metadata
}

func (r *RehearsalResponse) FromModel(mod model.Rehearsal, conv *timezone.Converter) {
	r.ID = mod.ID
	r.PerformanceID = mod.PerformanceID
	r.Date = mod.DateKey()
	r.DateHeading = timezone.FormatDateKey(r.Date)
	r.StartTime = mod.StartTime
	r.EndTime = mod.EndTime
	r.StartDisplay = conv.FormatClockTime(mod.StartTime)
	r.EndDisplay = conv.FormatClockTime(mod.EndTime)
	r.StartsAt = conv.LocalToUTCInstant(mod.StartLocal(), "")
	r.EndsAt = conv.LocalToUTCInstant(mod.EndLocal(), "")
	r.Location = mod.Location
	r.Notes = mod.Notes
	r.SeriesID = mod.SeriesID
	r.Locked = conv.IsPastLockBoundary(mod.StartLocal(), "")
	r.Metadata.FromModel(mod.Metadata)
}

func (r *RehearsalResponse) RefreshLock(conv *timezone.Converter) {
	r.Locked = conv.IsPastLockBoundary(timezone.JoinDateClock(r.Date, r.StartTime), "")
}

type GetRehearsalsResponse struct {
	Rehearsals []RehearsalResponse `json:"rehearsals"`
	TotalPage  int                 `json:"total_page"`
	TotalData  int                 `json:"total_data"`
}

func (r *GetRehearsalsResponse) FromModels(models []model.Rehearsal, totalData, limit int, conv *timezone.Converter) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rehearsals = make([]RehearsalResponse, len(models))
	for i, mod := range models {
		r.Rehearsals[i].FromModel(mod, conv)
	}
}

func (r *GetRehearsalsResponse) RefreshLocks(conv *timezone.Converter) {
	for i := range r.Rehearsals {
		r.Rehearsals[i].RefreshLock(conv)
	}
}
