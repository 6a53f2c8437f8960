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

// mfpDiaryEntry is one entry in the MyFitnessPal diary response
type mfpDiaryEntry struct {
	MealName string `json:"meal_name"`
	Date     string `json:"date"` // 2006-01-02
	Energy   struct {
		Value float64 `json:"value"`
		Unit  string  `json:"unit"`
	} `json:"energy"`
}

// mfpDiaryResponse is the diary envelope
type mfpDiaryResponse struct {
	Items []mfpDiaryEntry `json:"items"`
}

// MyFitnessPalAdapter normalizes MyFitnessPal diary entries
type MyFitnessPalAdapter struct{}

// NewMyFitnessPalAdapter creates a new MyFitnessPal adapter
func NewMyFitnessPalAdapter() *MyFitnessPalAdapter {
	return &MyFitnessPalAdapter{}
}

// Provider returns the provider code this adapter handles
func (a *MyFitnessPalAdapter) Provider() connect.ProviderCode {
	return connect.ProviderMyFitnessPal
}

// Kind returns the record kind this adapter produces
func (a *MyFitnessPalAdapter) Kind() connect.RecordKind {
	return connect.KindNutritionLog
}

// Fetch retrieves the last week of diary entries
func (a *MyFitnessPalAdapter) Fetch(ctx context.Context, gw *Gateway) ([]wellness.Record, error) {
	now := time.Now()
	query := url.Values{}
	query.Set("start_date", now.AddDate(0, 0, -7).Format("2006-01-02"))
	query.Set("end_date", now.Format("2006-01-02"))

	body, err := gw.AuthorizedRequest(ctx, connect.ProviderMyFitnessPal, "GET", "/diary", query)
	if err != nil {
		return nil, err
	}

	var resp mfpDiaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("myfitnesspal: failed to parse diary: %w", err)
	}

	records := make([]wellness.Record, 0, len(resp.Items))
	for _, item := range resp.Items {
		ts, err := time.Parse("2006-01-02", item.Date)
		if err != nil {
			continue
		}
		records = append(records, wellness.Record{
			Kind:      connect.KindNutritionLog,
			Source:    connect.ProviderMyFitnessPal,
			Timestamp: ts,
			NutritionLog: &wellness.NutritionLog{
				Meal:     item.MealName,
				Calories: int64(item.Energy.Value),
			},
		})
	}
	return records, nil
}

// Fallback returns the static sample nutrition logs
func (a *MyFitnessPalAdapter) Fallback() []wellness.Record {
	samples := []struct {
		meal     string
		calories int64
		daysAgo  int
	}{
		{"Breakfast", 420, 0},
		{"Lunch", 680, 0},
		{"Dinner", 750, 1},
		{"Breakfast", 390, 1},
		{"Lunch", 615, 2},
		{"Dinner", 820, 2},
	}

	base := time.Now().Truncate(24 * time.Hour)
	records := make([]wellness.Record, 0, len(samples))
	for _, s := range samples {
		records = append(records, wellness.Record{
			Kind:      connect.KindNutritionLog,
			Source:    connect.ProviderMyFitnessPal,
			Timestamp: base.AddDate(0, 0, -s.daysAgo),
			NutritionLog: &wellness.NutritionLog{
				Meal:     s.meal,
				Calories: s.calories,
			},
		})
	}
	return records
}

// Ensure MyFitnessPalAdapter implements Adapter
var _ Adapter = (*MyFitnessPalAdapter)(nil)
