package timezone

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"stagehand/config"

	"github.com/rs/zerolog/log"
)

const (
	// LockWindow is how long before an event its time-sensitive fields freeze.
	LockWindow = time.Hour
	// CallTimeLead is how far ahead of the start performers are called.
	CallTimeLead = time.Hour

	// Placeholder is rendered in place of display text that could not be produced.
	Placeholder = "—"

	instantLayout          = "2006-01-02T15:04:05.000Z07:00"
	displayLayout          = "Jan 2, 2006, 3:04 PM"
	displayWeekdayLayout   = "Monday, Jan 2, 2006, 3:04 PM"
	timeOnlyLayout         = "3:04 PM"
	zoneAbbreviationLayout = " MST"

	transitionWindow = 24 * time.Hour
)

var explicitLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05Z07",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02 15:04:05Z07",
}

// Converter resolves naive wall-clock strings against IANA zones. An empty zone argument on any
// method means the converter's default zone.
type Converter struct {
	zone      string
	location  *time.Location
	label     string
	clock     Clock
	locations sync.Map
}

// New builds the studio converter from configuration.
func New(cfg *config.Config) (*Converter, error) {
	conv, err := NewConverter(cfg.App.Timezone, cfg.App.ZoneLabel, SystemClock{})
	if err != nil {
		log.Error().Err(err).Str("timezone", cfg.App.Timezone).Msg("failed to initialize timezone converter")

		return nil, err
	}

	log.Info().Str("timezone", conv.zone).Str("label", conv.label).Msg("Timezone converter initialized")

	return conv, nil
}

// NewConverter returns a converter defaulting to zone. label is appended when displaying naive
// values, which carry no zone of their own.
func NewConverter(zone, label string, clock Clock) (*Converter, error) {
	if zone == "" {
		return nil, fmt.Errorf("%w: default zone is required", ErrUnknownZone)
	}

	loc, err := loadLocation(zone)
	if err != nil {
		return nil, err
	}

	if clock == nil {
		clock = SystemClock{}
	}

	return &Converter{
		zone:     zone,
		location: loc,
		label:    label,
		clock:    clock,
	}, nil
}

func (c *Converter) DefaultZone() string {
	return c.zone
}

// Now returns the clock's current time in UTC.
func (c *Converter) Now() time.Time {
	return c.clock.Now().UTC()
}

// Location returns the location for zone, falling back to the default zone when zone is empty.
func (c *Converter) Location(zone string) (*time.Location, error) {
	if zone == "" || zone == c.zone {
		return c.location, nil
	}

	if cached, ok := c.locations.Load(zone); ok {
		return cached.(*time.Location), nil //nolint:forcetypeassert
	}

	loc, err := loadLocation(zone)
	if err != nil {
		return nil, err
	}

	c.locations.Store(zone, loc)

	return loc, nil
}

func (c *Converter) IsValidZone(zone string) bool {
	_, err := c.Location(zone)

	return err == nil
}

// OffsetAt returns the UTC offset loc applies at instant t.
func OffsetAt(loc *time.Location, t time.Time) time.Duration {
	_, seconds := t.In(loc).Zone()

	return time.Duration(seconds) * time.Second
}

// ResolveOffset returns the offset zone applies at the approximate instant.
func (c *Converter) ResolveOffset(zone string, approx time.Time) (time.Duration, error) {
	loc, err := c.Location(zone)
	if err != nil {
		return 0, err
	}

	return OffsetAt(loc, approx), nil
}

// Instant resolves a naive local string in zone to an absolute instant.
func (c *Converter) Instant(text, zone string) (time.Time, error) {
	naive, err := ParseNaiveLocal(text)
	if err != nil {
		return time.Time{}, err
	}

	loc, err := c.Location(zone)
	if err != nil {
		return time.Time{}, err
	}

	return resolve(naive, loc), nil
}

// LocalToUTCInstant is Instant rendered as an ISO-8601 UTC string, or "" when text does not parse.
func (c *Converter) LocalToUTCInstant(text, zone string) string {
	instant, err := c.Instant(text, zone)
	if err != nil {
		return ""
	}

	return FormatInstant(instant)
}

// FormatInstant renders t as "2006-01-02T15:04:05.000Z".
func FormatInstant(t time.Time) string {
	return t.UTC().Format(instantLayout)
}

// FormatForEditing returns the "YYYY-MM-DDTHH:MM" value a form field should show. Inputs with an
// explicit offset are converted into zone; naive inputs are truncated to the minute and otherwise
// left alone.
func (c *Converter) FormatForEditing(input, zone string) string {
	if instant, ok := parseExplicit(input); ok {
		loc, err := c.Location(zone)
		if err != nil {
			return ""
		}

		return instant.In(loc).Format(NaiveLayout)
	}

	naive, err := ParseNaiveLocal(input)
	if err != nil {
		return ""
	}

	return naive.String()
}

func (c *Converter) FormatForDisplay(input, zone string) string {
	return c.display(input, zone, displayLayout)
}

func (c *Converter) FormatForDisplayWithWeekday(input, zone string) string {
	return c.display(input, zone, displayWeekdayLayout)
}

func (c *Converter) FormatTimeOnly(input, zone string) string {
	return c.display(input, zone, timeOnlyLayout)
}

// DateKey returns the "YYYY-MM-DD" calendar day input falls on in zone, used to group events.
func (c *Converter) DateKey(input, zone string) string {
	if instant, ok := parseExplicit(input); ok {
		loc, err := c.Location(zone)
		if err != nil {
			return ""
		}

		return instant.In(loc).Format(DateKeyLayout)
	}

	naive, err := ParseNaiveLocal(input)
	if err != nil {
		return ""
	}

	return naive.DateKey()
}

// FormatClockTime renders a zone-less "HH:MM" as "3:04 PM".
func (c *Converter) FormatClockTime(hhmm string) string {
	hour, minute, err := ParseClockTime(hhmm)
	if err != nil {
		return Placeholder
	}

	return time.Date(0, time.January, 1, hour, minute, 0, 0, time.UTC).Format(timeOnlyLayout)
}

// DeriveCallTimeOffset returns the "HH:MM" one hour before the naive start, wrapping past midnight.
func (c *Converter) DeriveCallTimeOffset(text string) string {
	naive, err := ParseNaiveLocal(text)
	if err != nil {
		return ""
	}

	total := naive.Hour*minutesPerHour + naive.Minute - int(CallTimeLead/time.Minute)
	total = ((total % minutesPerDay) + minutesPerDay) % minutesPerDay

	return fmt.Sprintf("%02d:%02d", total/minutesPerHour, total%minutesPerHour)
}

// IsPastLockBoundary reports whether now is at or after one hour before the event. Unparseable
// input is never locked.
func (c *Converter) IsPastLockBoundary(text, zone string) bool {
	instant, err := c.Instant(text, zone)
	if err != nil {
		return false
	}

	return c.IsInstantPastLockBoundary(instant)
}

func (c *Converter) IsInstantPastLockBoundary(instant time.Time) bool {
	return !c.clock.Now().Before(instant.Add(-LockWindow))
}

func (c *Converter) display(input, zone, layout string) string {
	if instant, ok := parseExplicit(input); ok {
		loc, err := c.Location(zone)
		if err != nil {
			return Placeholder
		}

		return instant.In(loc).Format(layout + zoneAbbreviationLayout)
	}

	naive, err := ParseNaiveLocal(input)
	if err != nil {
		return Placeholder
	}

	text := naive.wallClock().Format(layout)
	if c.label == "" {
		return text
	}

	return text + " " + c.label
}

// resolve guesses the instant by reading the wall clock as UTC and correcting by the zone offset.
// Offsets from a day either side catch guesses that landed across a transition.
func resolve(naive NaiveLocal, loc *time.Location) time.Time {
	guess := naive.wallClock()
	before := OffsetAt(loc, guess.Add(-transitionWindow))
	offsets := []time.Duration{before, OffsetAt(loc, guess), OffsetAt(loc, guess.Add(transitionWindow))}

	var (
		resolved time.Time
		found    bool
	)

	for _, offset := range offsets {
		candidate := guess.Add(-offset)
		if OffsetAt(loc, candidate) != offset {
			continue
		}

		if !found || candidate.Before(resolved) {
			resolved = candidate
			found = true
		}
	}

	if !found {
		// skipped wall time
		return guess.Add(-before)
	}

	return resolved
}

// ParseInstant reads a string carrying an explicit offset, such as one produced by FormatInstant.
func ParseInstant(text string) (time.Time, error) {
	instant, ok := parseExplicit(text)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrParseFailure, text)
	}

	return instant, nil
}

func parseExplicit(input string) (time.Time, bool) {
	input = strings.TrimSpace(input)

	for _, layout := range explicitLayouts {
		if instant, err := time.Parse(layout, input); err == nil {
			return instant, true
		}
	}

	return time.Time{}, false
}

func loadLocation(zone string) (*time.Location, error) {
	if strings.EqualFold(zone, "local") {
		return nil, fmt.Errorf("%w: %s", ErrUnknownZone, zone)
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownZone, zone)
	}

	return loc, nil
}
