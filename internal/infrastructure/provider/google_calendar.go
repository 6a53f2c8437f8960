package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/vesi/backend/internal/domain/connect"
	"github.com/vesi/backend/internal/domain/wellness"
)

// googleEventTime is the start/end shape of a Google Calendar event;
// all-day events carry Date, timed events carry DateTime
type googleEventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
}

// googleEvent is one entry in the Calendar events list response
type googleEvent struct {
	Summary     string          `json:"summary"`
	Description string          `json:"description,omitempty"`
	Start       googleEventTime `json:"start"`
	End         googleEventTime `json:"end"`
}

// googleEventsResponse is the Calendar /events list envelope
type googleEventsResponse struct {
	Items []googleEvent `json:"items"`
}

// GoogleCalendarAdapter normalizes Google Calendar events
type GoogleCalendarAdapter struct{}

// NewGoogleCalendarAdapter creates a new Google Calendar adapter
func NewGoogleCalendarAdapter() *GoogleCalendarAdapter {
	return &GoogleCalendarAdapter{}
}

// Provider returns the provider code this adapter handles
func (a *GoogleCalendarAdapter) Provider() connect.ProviderCode {
	return connect.ProviderGoogleCalendar
}

// Kind returns the record kind this adapter produces
func (a *GoogleCalendarAdapter) Kind() connect.RecordKind {
	return connect.KindCalendarEvent
}

// Fetch retrieves upcoming events from the primary calendar
func (a *GoogleCalendarAdapter) Fetch(ctx context.Context, gw *Gateway) ([]wellness.Record, error) {
	query := url.Values{}
	query.Set("singleEvents", "true")
	query.Set("orderBy", "startTime")
	query.Set("maxResults", "50")
	query.Set("timeMin", time.Now().Format(time.RFC3339))

	body, err := gw.AuthorizedRequest(ctx, connect.ProviderGoogleCalendar, "GET", "/calendars/primary/events", query)
	if err != nil {
		return nil, err
	}

	var resp googleEventsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("google_calendar: failed to parse events: %w", err)
	}

	records := make([]wellness.Record, 0, len(resp.Items))
	for _, ev := range resp.Items {
		start, ok := parseGoogleTime(ev.Start)
		if !ok {
			continue
		}
		end, ok := parseGoogleTime(ev.End)
		if !ok {
			end = start
		}
		records = append(records, wellness.Record{
			Kind:      connect.KindCalendarEvent,
			Source:    connect.ProviderGoogleCalendar,
			Timestamp: start,
			CalendarEvent: &wellness.CalendarEvent{
				Summary:     ev.Summary,
				Description: ev.Description,
				Start:       start,
				End:         end,
			},
		})
	}
	return records, nil
}

// parseGoogleTime handles both timed (dateTime) and all-day (date) values
func parseGoogleTime(t googleEventTime) (time.Time, bool) {
	if t.DateTime != "" {
		ts, err := time.Parse(time.RFC3339, t.DateTime)
		return ts, err == nil
	}
	if t.Date != "" {
		ts, err := time.Parse("2006-01-02", t.Date)
		return ts, err == nil
	}
	return time.Time{}, false
}

// Fallback returns the static sample events
func (a *GoogleCalendarAdapter) Fallback() []wellness.Record {
	samples := []struct {
		summary     string
		description string
		hoursAhead  int
		durationMin int
	}{
		{"Morning Prayer", "Daily quiet time", 2, 30},
		{"Team Standup", "Weekly sync", 4, 15},
		{"Bible Study Group", "Romans chapter 8", 20, 60},
		{"Dentist Appointment", "", 30, 45},
		{"Sunday Worship", "Main service", 70, 90},
	}

	base := time.Now().Truncate(time.Hour)
	records := make([]wellness.Record, 0, len(samples))
	for _, s := range samples {
		start := base.Add(time.Duration(s.hoursAhead) * time.Hour)
		records = append(records, wellness.Record{
			Kind:      connect.KindCalendarEvent,
			Source:    connect.ProviderGoogleCalendar,
			Timestamp: start,
			CalendarEvent: &wellness.CalendarEvent{
				Summary:     s.summary,
				Description: s.description,
				Start:       start,
				End:         start.Add(time.Duration(s.durationMin) * time.Minute),
			},
		})
	}
	return records
}

// Ensure GoogleCalendarAdapter implements Adapter
var _ Adapter = (*GoogleCalendarAdapter)(nil)
