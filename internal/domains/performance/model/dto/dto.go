package dto

import (
	"slices"
	"strings"
	"time"

	"stagehand/internal/domains/performance/model"
	rehearsalModel "stagehand/internal/domains/rehearsal/model"
	"stagehand/shared"
	gDto "stagehand/shared/dto"
	gModel "stagehand/shared/model"
	"stagehand/shared/timezone"

	"github.com/google/uuid"
)

type CreatePerformanceRequest struct {
	Title        string  `json:"title"          validate:"required,max=255"`
	Description  string  `json:"description"    validate:"omitempty,max=2000"`
	VenueName    string  `json:"venue_name"     validate:"required,max=255"`
	VenueAddress string  `json:"venue_address"  validate:"omitempty,max=500"`
	VenuePlaceID *string `json:"venue_place_id" validate:"omitempty,max=255"`
	StartsAt     string  `json:"starts_at"      validate:"required,naivelocal"`
	Timezone     string  `json:"timezone"       validate:"omitempty,timezone"`
	CallTime     string  `json:"call_time"      validate:"omitempty,clocktime"`
	SignupOpen   bool    `json:"signup_open"`
}

func (c *CreatePerformanceRequest) ToModel(user string, startsAt time.Time, zone, callTime string, now time.Time) model.Performance {
	return model.Performance{
		ID:           uuid.NewString(),
		Title:        c.Title,
		Description:  c.Description,
		VenueName:    c.VenueName,
		VenueAddress: c.VenueAddress,
		VenuePlaceID: c.VenuePlaceID,
		StartsAt:     startsAt.UTC(),
		Timezone:     zone,
		CallTime:     callTime,
		SignupOpen:   c.SignupOpen,
		Metadata:     gModel.NewMetadata(user, now),
	}
}

type UpdatePerformanceRequest struct {
	Title        string  `db:"title"          json:"title"          validate:"omitempty,max=255"`
	Description  *string `db:"description"    json:"description"    validate:"omitempty,max=2000"`
	VenueName    string  `db:"venue_name"     json:"venue_name"     validate:"omitempty,max=255"`
	VenueAddress *string `db:"venue_address"  json:"venue_address"  validate:"omitempty,max=500"`
	VenuePlaceID *string `db:"venue_place_id" json:"venue_place_id" validate:"omitempty,max=255"`
	StartsAt     string  `db:"-"              json:"starts_at"      validate:"omitempty,naivelocal"`
	Timezone     string  `db:"timezone"       json:"timezone"       validate:"omitempty,timezone"`
	CallTime     string  `db:"call_time"      json:"call_time"      validate:"omitempty,clocktime"`
	SignupOpen   *bool   `db:"signup_open"    json:"signup_open"`
}

func (u *UpdatePerformanceRequest) IsEmpty() bool {
	return *u == UpdatePerformanceRequest{}
}

// TouchesSchedule reports whether the update moves the performance in time, which is refused once
// the performance is locked.
func (u *UpdatePerformanceRequest) TouchesSchedule() bool {
	return u.StartsAt != "" || u.Timezone != "" || u.CallTime != ""
}

type PerformanceResponse struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	VenueName        string  `json:"venue_name"`
	VenueAddress     string  `json:"venue_address"`
	VenuePlaceID     *string `json:"venue_place_id,omitempty"`
	StartsAt         string  `json:"starts_at"`
	StartsAtLocal    string  `json:"starts_at_local"`
	StartsAtDisplay  string  `json:"starts_at_display"`
	StartTimeDisplay string  `json:"start_time_display"`
	DateKey          string  `json:"date_key"`
	Timezone         string  `json:"timezone"`
	CallTime         string  `json:"call_time"`
	CallTimeDisplay  string  `json:"call_time_display"`
	SignupOpen       bool    `json:"signup_open"`
	Locked           bool    `json:"locked"`
	gDto.Metadata
}

func (r *PerformanceResponse) FromModel(mod model.Performance, conv *timezone.Converter) {
	startsAt := timezone.FormatInstant(mod.StartsAt)

	r.ID = mod.ID
	r.Title = mod.Title
	r.Description = mod.Description
	r.VenueName = mod.VenueName
	r.VenueAddress = mod.VenueAddress
	r.VenuePlaceID = mod.VenuePlaceID
	r.StartsAt = startsAt
	r.StartsAtLocal = conv.FormatForEditing(startsAt, mod.Timezone)
	r.StartsAtDisplay = conv.FormatForDisplayWithWeekday(startsAt, mod.Timezone)
	r.StartTimeDisplay = conv.FormatTimeOnly(startsAt, mod.Timezone)
	r.DateKey = conv.DateKey(startsAt, mod.Timezone)
	r.Timezone = mod.Timezone
	r.CallTime = mod.CallTime
	r.CallTimeDisplay = conv.FormatClockTime(mod.CallTime)
	r.SignupOpen = mod.SignupOpen
	r.Locked = conv.IsInstantPastLockBoundary(mod.StartsAt)
	r.Metadata.FromModel(mod.Metadata)
}

// RefreshLock recomputes Locked, which depends on the current time and so is never served from
// cache.
func (r *PerformanceResponse) RefreshLock(conv *timezone.Converter) {
	instant, err := timezone.ParseInstant(r.StartsAt)
	if err != nil {
		r.Locked = false

		return
	}

	r.Locked = conv.IsInstantPastLockBoundary(instant)
}

type GetPerformancesResponse struct {
	Performances []PerformanceResponse `json:"performances"`
	TotalPage    int                   `json:"total_page"`
	TotalData    int                   `json:"total_data"`
}

func (r *GetPerformancesResponse) FromModels(models []model.Performance, totalData, limit int, conv *timezone.Converter) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Performances = make([]PerformanceResponse, len(models))
	for i, mod := range models {
		r.Performances[i].FromModel(mod, conv)
	}
}

func (r *GetPerformancesResponse) RefreshLocks(conv *timezone.Converter) {
	for i := range r.Performances {
		r.Performances[i].RefreshLock(conv)
	}
}

const (
	ScheduleKindPerformance = "performance"
	ScheduleKindRehearsal   = "rehearsal"
)

type ScheduleItem struct {
	Kind         string `json:"kind"`
	ID           string `json:"id"`
	Title        string `json:"title"`
	StartsAt     string `json:"starts_at"`
	StartDisplay string `json:"start_display"`
	EndDisplay   string `json:"end_display,omitempty"`
	CallTime     string `json:"call_time_display,omitempty"`
	Location     string `json:"location"`
}

type ScheduleDay struct {
	DateKey string         `json:"date_key"`
	Heading string         `json:"heading"`
	Items   []ScheduleItem `json:"items"`
}

type ScheduleResponse struct {
	Performance PerformanceResponse `json:"performance"`
	Days        []ScheduleDay       `json:"days"`
}

// FromModels groups the performance and its rehearsals into studio-local days, earliest first.
func (r *ScheduleResponse) FromModels(perf model.Performance, rehearsals []rehearsalModel.Rehearsal, conv *timezone.Converter) {
	r.Performance.FromModel(perf, conv)

	items := make(map[string][]ScheduleItem)

	for _, rehearsal := range rehearsals {
		key := rehearsal.DateKey()
		items[key] = append(items[key], ScheduleItem{
			Kind:         ScheduleKindRehearsal,
			ID:           rehearsal.ID,
			Title:        "Rehearsal",
			StartsAt:     conv.LocalToUTCInstant(rehearsal.StartLocal(), ""),
			StartDisplay: conv.FormatClockTime(rehearsal.StartTime),
			EndDisplay:   conv.FormatClockTime(rehearsal.EndTime),
			Location:     rehearsal.Location,
		})
	}

	items[r.Performance.DateKey] = append(items[r.Performance.DateKey], ScheduleItem{
		Kind:         ScheduleKindPerformance,
		ID:           perf.ID,
		Title:        perf.Title,
		StartsAt:     r.Performance.StartsAt,
		StartDisplay: r.Performance.StartTimeDisplay,
		CallTime:     r.Performance.CallTimeDisplay,
		Location:     perf.VenueName,
	})

	r.Days = make([]ScheduleDay, 0, len(items))
	for key, dayItems := range items {
		sortScheduleItems(dayItems)

		r.Days = append(r.Days, ScheduleDay{
			DateKey: key,
			Heading: timezone.FormatDateKey(key),
			Items:   dayItems,
		})
	}

	sortScheduleDays(r.Days)
}

func sortScheduleItems(items []ScheduleItem) {
	slices.SortStableFunc(items, func(a, b ScheduleItem) int {
		return strings.Compare(a.StartsAt, b.StartsAt)
	})
}

func sortScheduleDays(days []ScheduleDay) {
	slices.SortFunc(days, func(a, b ScheduleDay) int {
		return strings.Compare(a.DateKey, b.DateKey)
	})
}

// DateWindow limits a listing to performances starting between two studio-local days, inclusive.
type DateWindow struct {
	From string `json:"from" validate:"omitempty,datekey"`
	To   string `json:"to"   validate:"omitempty,datekey"`
}

// Filters returns starts_at bounds at studio midnight; To is extended to the end of its day.
func (w *DateWindow) Filters(conv *timezone.Converter) []any {
	filters := []any{}

	if w.From != "" {
		if from, err := conv.Instant(timezone.JoinDateClock(w.From, midnight), ""); err == nil {
			filters = append(filters, gDto.Filter{
				ArgName:  "starts_from",
				Field:    model.FieldStartsAt,
				Operator: gDto.FilterOperatorGreaterEq,
				Value:    from.UTC(),
				Table:    model.TableName,
			})
		}
	}

	if w.To != "" {
		if day, err := time.Parse(timezone.DateKeyLayout, w.To); err == nil {
			next := day.AddDate(0, 0, 1).Format(timezone.DateKeyLayout)

			if to, err := conv.Instant(timezone.JoinDateClock(next, midnight), ""); err == nil {
				filters = append(filters, gDto.Filter{
					ArgName:  "starts_to",
					Field:    model.FieldStartsAt,
					Operator: gDto.FilterOperatorLessEq,
					Value:    to.Add(-time.Microsecond).UTC(),
					Table:    model.TableName,
				})
			}
		}
	}

	return filters
}

const midnight = "00:00"
