package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vesi/backend/internal/domain/connect"
	"github.com/vesi/backend/internal/infrastructure/credstore"
)

func TestAdapterSet(t *testing.T) {
	set := DefaultAdapterSet()

	t.Run("every provider has exactly one adapter", func(t *testing.T) {
		wantKinds := map[connect.ProviderCode]connect.RecordKind{
			connect.ProviderStrava:         connect.KindActivity,
			connect.ProviderGoogleCalendar: connect.KindCalendarEvent,
			connect.ProviderSpotify:        connect.KindListeningSession,
			connect.ProviderMyFitnessPal:   connect.KindNutritionLog,
			connect.ProviderYouVersion:     connect.KindReadingProgress,
		}

		for providerCode, kind := range wantKinds {
			adapter, ok := set.Get(providerCode, kind)
			require.True(t, ok, providerCode.String())
			assert.Equal(t, providerCode, adapter.Provider())
			assert.Equal(t, kind, adapter.Kind())
			assert.Equal(t, []connect.RecordKind{kind}, set.Kinds(providerCode))
		}
	})

	t.Run("unsupported combination", func(t *testing.T) {
		_, ok := set.Get(connect.ProviderStrava, connect.KindNutritionLog)
		assert.False(t, ok)
	})

	t.Run("fallback datasets are deterministic", func(t *testing.T) {
		for _, providerCode := range connect.AllProviders() {
			for _, kind := range set.Kinds(providerCode) {
				adapter, _ := set.Get(providerCode, kind)

				first := adapter.Fallback()
				second := adapter.Fallback()

				require.NotEmpty(t, first, providerCode.String())
				require.Len(t, second, len(first))
				for i := range first {
					assert.Equal(t, first[i].Kind, second[i].Kind)
					assert.Equal(t, first[i].Source, second[i].Source)
				}
			}
		}
	})

	t.Run("fallback records carry the adapter kind and source", func(t *testing.T) {
		for _, providerCode := range connect.AllProviders() {
			for _, kind := range set.Kinds(providerCode) {
				adapter, _ := set.Get(providerCode, kind)
				for _, record := range adapter.Fallback() {
					assert.Equal(t, kind, record.Kind)
					assert.Equal(t, providerCode, record.Source)
				}
			}
		}
	})
}

// connectedGateway builds a gateway pointed at the given API server with a
// valid credential for every provider
func connectedGateway(t *testing.T, apiURL string) *Gateway {
	t.Helper()

	configs := make([]*connect.ProviderConfig, 0, len(connect.AllProviders()))
	for _, code := range connect.AllProviders() {
		configs = append(configs, &connect.ProviderConfig{
			ID:         code,
			APIBaseURL: apiURL,
			ClientID:   "client-id",
		})
	}

	store := credstore.NewMemoryStore()
	for _, code := range connect.AllProviders() {
		require.NoError(t, store.Put(context.Background(), &connect.TokenRecord{
			ProviderID:  code,
			AccessToken: "at",
			ExpiresAt:   time.Now().Add(time.Hour),
		}))
	}

	return NewGateway(connect.NewRegistry(configs), store)
}

func TestStravaAdapterFetch(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/athlete/activities", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"name":"Morning Run","type":"Run","distance":5230,"moving_time":1860,"calories":420,"start_date":"2026-08-30T06:30:00Z"},
			{"name":"Bad Date","type":"Run","distance":1000,"moving_time":600,"calories":100,"start_date":"not-a-date"}
		]`))
	}))
	defer api.Close()

	adapter := NewStravaAdapter()
	records, err := adapter.Fetch(context.Background(), connectedGateway(t, api.URL))
	require.NoError(t, err)

	// The unparseable entry is skipped, not fatal
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, connect.KindActivity, rec.Kind)
	assert.Equal(t, "Morning Run", rec.Activity.Name)
	assert.Equal(t, "5.23", rec.Activity.DistanceKm.String())
	assert.Equal(t, int64(31), rec.Activity.DurationMin)
	assert.Equal(t, int64(420), rec.Activity.Calories)
}

func TestGoogleCalendarAdapterFetch(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendars/primary/events", r.URL.Path)
		_, _ = w.Write([]byte(`{"items":[
			{"summary":"Morning Prayer","description":"","start":{"dateTime":"2026-09-01T07:00:00Z"},"end":{"dateTime":"2026-09-01T07:30:00Z"}},
			{"summary":"Conference","start":{"date":"2026-09-03"},"end":{"date":"2026-09-04"}}
		]}`))
	}))
	defer api.Close()

	adapter := NewGoogleCalendarAdapter()
	records, err := adapter.Fetch(context.Background(), connectedGateway(t, api.URL))
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "Morning Prayer", records[0].CalendarEvent.Summary)
	assert.Equal(t, time.Date(2026, 9, 1, 7, 0, 0, 0, time.UTC), records[0].CalendarEvent.Start)
	// All-day events parse from the date form
	assert.Equal(t, time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC), records[1].CalendarEvent.Start)
}

func TestSpotifyAdapterFetch(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me/player/recently-played", r.URL.Path)
		_, _ = w.Write([]byte(`{"items":[
			{"track":{"name":"Oceans","artists":[{"name":"Hillsong United"}],"duration_ms":540000},"played_at":"2026-08-30T21:04:00Z"}
		]}`))
	}))
	defer api.Close()

	adapter := NewSpotifyAdapter()
	records, err := adapter.Fetch(context.Background(), connectedGateway(t, api.URL))
	require.NoError(t, err)

	require.Len(t, records, 1)
	session := records[0].ListeningSession
	assert.Equal(t, "Oceans", session.Title)
	assert.Equal(t, "Hillsong United", session.Artist)
	assert.Equal(t, int64(9), session.DurationMin)
}

func TestMyFitnessPalAdapterFetch(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/diary", r.URL.Path)
		_, _ = w.Write([]byte(`{"items":[
			{"meal_name":"Breakfast","date":"2026-08-30","energy":{"value":420,"unit":"calories"}}
		]}`))
	}))
	defer api.Close()

	adapter := NewMyFitnessPalAdapter()
	records, err := adapter.Fetch(context.Background(), connectedGateway(t, api.URL))
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "Breakfast", records[0].NutritionLog.Meal)
	assert.Equal(t, int64(420), records[0].NutritionLog.Calories)
}

func TestYouVersionAdapterFetch(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/plans/progress", r.URL.Path)
		_, _ = w.Write([]byte(`{"days":[
			{"plan_name":"Bible in One Year","reference":"Genesis 1-3","completed":true,"date":"2026-08-29"}
		]}`))
	}))
	defer api.Close()

	adapter := NewYouVersionAdapter()
	records, err := adapter.Fetch(context.Background(), connectedGateway(t, api.URL))
	require.NoError(t, err)

	require.Len(t, records, 1)
	progress := records[0].ReadingProgress
	assert.Equal(t, "Bible in One Year", progress.Plan)
	assert.Equal(t, "Genesis 1-3", progress.Chapter)
	assert.True(t, progress.Completed)
}
