// Package wellness contains the Wellness bounded context: canonical records
// normalized from provider payloads and the insights derived from them.
// Records are pure, derived values; they are never persisted and are
// recomputed on every fetch.
package wellness

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vesi/backend/internal/domain/connect"
)

// Record is the canonical shape every provider payload is normalized into.
// Kind selects which variant fields are populated.
type Record struct {
	Kind      connect.RecordKind   `json:"kind"`
	Source    connect.ProviderCode `json:"source"`
	Timestamp time.Time            `json:"timestamp"`

	Activity         *Activity         `json:"activity,omitempty"`
	CalendarEvent    *CalendarEvent    `json:"calendar_event,omitempty"`
	ListeningSession *ListeningSession `json:"listening_session,omitempty"`
	NutritionLog     *NutritionLog     `json:"nutrition_log,omitempty"`
	ReadingProgress  *ReadingProgress  `json:"reading_progress,omitempty"`
}

// Activity is a fitness activity in canonical units: kilometers and minutes
type Activity struct {
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	DistanceKm  decimal.Decimal `json:"distance_km"`
	DurationMin int64           `json:"duration_min"`
	Calories    int64           `json:"calories"`
}

// CalendarEvent is a calendar entry
type CalendarEvent struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

// ListeningSession is a music or mindfulness listening session
type ListeningSession struct {
	Title       string `json:"title"`
	Artist      string `json:"artist,omitempty"`
	DurationMin int64  `json:"duration_min"`
}

// NutritionLog is one logged meal
type NutritionLog struct {
	Meal     string `json:"meal"`
	Calories int64  `json:"calories"`
}

// ReadingProgress is progress within a reading plan
type ReadingProgress struct {
	Plan      string `json:"plan"`
	Chapter   string `json:"chapter"`
	Completed bool   `json:"completed"`
}

// MetersToKm converts meters into kilometers rounded to 2 decimal places,
// matching the canonical unit rule distance_km = distance_m / 1000
func MetersToKm(meters float64) decimal.Decimal {
	return decimal.NewFromFloat(meters).Div(decimal.NewFromInt(1000)).Round(2)
}

// SecondsToMinutes converts seconds into whole minutes,
// duration_min = duration_s / 60 rounded to 0 decimal places
func SecondsToMinutes(seconds int64) int64 {
	return decimal.NewFromInt(seconds).
		Div(decimal.NewFromInt(60)).
		Round(0).
		IntPart()
}
