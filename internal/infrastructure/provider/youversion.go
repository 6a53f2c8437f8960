package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vesi/backend/internal/domain/connect"
	"github.com/vesi/backend/internal/domain/wellness"
)

// yvProgressDay is one day entry in a YouVersion reading plan
type yvProgressDay struct {
	PlanName  string `json:"plan_name"`
	Reference string `json:"reference"`
	Completed bool   `json:"completed"`
	Date      string `json:"date"` // 2006-01-02
}

// yvProgressResponse is the plan progress envelope
type yvProgressResponse struct {
	Days []yvProgressDay `json:"days"`
}

// YouVersionAdapter normalizes YouVersion reading plan progress
type YouVersionAdapter struct{}

// NewYouVersionAdapter creates a new YouVersion adapter
func NewYouVersionAdapter() *YouVersionAdapter {
	return &YouVersionAdapter{}
}

// Provider returns the provider code this adapter handles
func (a *YouVersionAdapter) Provider() connect.ProviderCode {
	return connect.ProviderYouVersion
}

// Kind returns the record kind this adapter produces
func (a *YouVersionAdapter) Kind() connect.RecordKind {
	return connect.KindReadingProgress
}

// Fetch retrieves current reading plan progress
func (a *YouVersionAdapter) Fetch(ctx context.Context, gw *Gateway) ([]wellness.Record, error) {
	body, err := gw.AuthorizedRequest(ctx, connect.ProviderYouVersion, "GET", "/plans/progress", nil)
	if err != nil {
		return nil, err
	}

	var resp yvProgressResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("youversion: failed to parse progress: %w", err)
	}

	records := make([]wellness.Record, 0, len(resp.Days))
	for _, day := range resp.Days {
		ts, err := time.Parse("2006-01-02", day.Date)
		if err != nil {
			continue
		}
		records = append(records, wellness.Record{
			Kind:      connect.KindReadingProgress,
			Source:    connect.ProviderYouVersion,
			Timestamp: ts,
			ReadingProgress: &wellness.ReadingProgress{
				Plan:      day.PlanName,
				Chapter:   day.Reference,
				Completed: day.Completed,
			},
		})
	}
	return records, nil
}

// Fallback returns the static sample reading progress
func (a *YouVersionAdapter) Fallback() []wellness.Record {
	samples := []struct {
		plan      string
		chapter   string
		completed bool
		daysAgo   int
	}{
		{"Bible in One Year", "Genesis 1-3", true, 4},
		{"Bible in One Year", "Genesis 4-6", true, 3},
		{"Bible in One Year", "Genesis 7-9", true, 2},
		{"Bible in One Year", "Genesis 10-12", true, 1},
		{"Bible in One Year", "Genesis 13-15", false, 0},
	}

	base := time.Now().Truncate(24 * time.Hour)
	records := make([]wellness.Record, 0, len(samples))
	for _, s := range samples {
		records = append(records, wellness.Record{
			Kind:      connect.KindReadingProgress,
			Source:    connect.ProviderYouVersion,
			Timestamp: base.AddDate(0, 0, -s.daysAgo),
			ReadingProgress: &wellness.ReadingProgress{
				Plan:      s.plan,
				Chapter:   s.chapter,
				Completed: s.completed,
			},
		})
	}
	return records
}

// Ensure YouVersionAdapter implements Adapter
var _ Adapter = (*YouVersionAdapter)(nil)
