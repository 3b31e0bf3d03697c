package model

import (
	"time"

	"stagehand/shared/model"
)

const (
	TableName  = "performances"
	EntityName = "performance"

	FieldID         = "id"
	FieldTitle      = "title"
	FieldVenueName  = "venue_name"
	FieldStartsAt   = "starts_at"
	FieldTimezone   = "timezone"
	FieldCallTime   = "call_time"
	FieldSignupOpen = "signup_open"
)

const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// Performance starts at an absolute instant; Timezone is the zone its wall-clock start was entered
// in and CallTime is a zone-less "HH:MM".
type Performance struct {
	ID           string    `db:"id"`
	Title        string    `db:"title"`
	Description  string    `db:"description"`
	VenueName    string    `db:"venue_name"`
	VenueAddress string    `db:"venue_address"`
	VenuePlaceID *string   `db:"venue_place_id"`
	StartsAt     time.Time `db:"starts_at"`
	Timezone     string    `db:"timezone"`
	CallTime     string    `db:"call_time"`
	SignupOpen   bool      `db:"signup_open"`
	model.Metadata
}

// Changed is published to the performance topic whenever a performance is written.
type Changed struct {
	ID         string `json:"id"`
	Action     string `json:"action"`
	Title      string `json:"title,omitempty"`
	StartsAt   string `json:"starts_at,omitempty"`
	Timezone   string `json:"timezone,omitempty"`
	OccurredAt string `json:"occurred_at"`
	Actor      string `json:"actor"`
}
