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

// stravaActivity is the raw shape of one entry in the Strava
// /athlete/activities response
type stravaActivity struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Distance   float64 `json:"distance"`    // meters
	MovingTime int64   `json:"moving_time"` // seconds
	Calories   float64 `json:"calories"`
	StartDate  string  `json:"start_date"` // RFC3339
}

// StravaAdapter normalizes Strava activities
type StravaAdapter struct{}

// NewStravaAdapter creates a new Strava adapter
func NewStravaAdapter() *StravaAdapter {
	return &StravaAdapter{}
}

// Provider returns the provider code this adapter handles
func (a *StravaAdapter) Provider() connect.ProviderCode {
	return connect.ProviderStrava
}

// Kind returns the record kind this adapter produces
func (a *StravaAdapter) Kind() connect.RecordKind {
	return connect.KindActivity
}

// Fetch retrieves recent activities and normalizes them
func (a *StravaAdapter) Fetch(ctx context.Context, gw *Gateway) ([]wellness.Record, error) {
	query := url.Values{}
	query.Set("per_page", "50")

	body, err := gw.AuthorizedRequest(ctx, connect.ProviderStrava, "GET", "/athlete/activities", query)
	if err != nil {
		return nil, err
	}

	var raw []stravaActivity
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("strava: failed to parse activities: %w", err)
	}

	records := make([]wellness.Record, 0, len(raw))
	for _, act := range raw {
		ts, err := time.Parse(time.RFC3339, act.StartDate)
		if err != nil {
			continue
		}
		records = append(records, wellness.Record{
			Kind:      connect.KindActivity,
			Source:    connect.ProviderStrava,
			Timestamp: ts,
			Activity: &wellness.Activity{
				Name:        act.Name,
				Type:        act.Type,
				DistanceKm:  wellness.MetersToKm(act.Distance),
				DurationMin: wellness.SecondsToMinutes(act.MovingTime),
				Calories:    int64(act.Calories),
			},
		})
	}
	return records, nil
}

// Fallback returns the static sample activities. Offsets are relative to the
// current day so panels render recent-looking data; names, counts, and
// measures are fixed.
func (a *StravaAdapter) Fallback() []wellness.Record {
	samples := []struct {
		name     string
		actType  string
		meters   float64
		seconds  int64
		calories int64
		daysAgo  int
	}{
		{"Morning Run", "Run", 5230, 1860, 420, 1},
		{"Evening Ride", "Ride", 15400, 2700, 510, 2},
		{"Trail Run", "Run", 8120, 2940, 640, 4},
		{"Recovery Walk", "Walk", 3050, 2100, 180, 5},
		{"Long Ride", "Ride", 42300, 6480, 1250, 6},
	}

	base := time.Now().Truncate(24 * time.Hour)
	records := make([]wellness.Record, 0, len(samples))
	for _, s := range samples {
		records = append(records, wellness.Record{
			Kind:      connect.KindActivity,
			Source:    connect.ProviderStrava,
			Timestamp: base.AddDate(0, 0, -s.daysAgo),
			Activity: &wellness.Activity{
				Name:        s.name,
				Type:        s.actType,
				DistanceKm:  wellness.MetersToKm(s.meters),
				DurationMin: wellness.SecondsToMinutes(s.seconds),
				Calories:    s.calories,
			},
		})
	}
	return records
}

// Ensure StravaAdapter implements Adapter
var _ Adapter = (*StravaAdapter)(nil)
