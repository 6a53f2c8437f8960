package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appwellness "github.com/vesi/backend/internal/application/wellness"
	"github.com/vesi/backend/internal/domain/connect"
	"github.com/vesi/backend/internal/domain/wellness"
	"github.com/vesi/backend/internal/interfaces/http/dto"
	"github.com/vesi/backend/internal/interfaces/http/router"
)

// fakeSyncer stubs the sync service for handler tests
type fakeSyncer struct {
	result *appwellness.SyncResult
	err    error
}

func (f *fakeSyncer) FetchAndNormalize(ctx context.Context, provider connect.ProviderCode, kind connect.RecordKind) (*appwellness.SyncResult, error) {
	return f.result, f.err
}

// fakeAggregator stubs the insight service for handler tests
type fakeAggregator struct {
	set    *wellness.InsightSet
	panels []appwellness.PanelDescriptor
	err    error
	gotAs  time.Time
}

func (f *fakeAggregator) Insights(ctx context.Context, asOf time.Time) (*wellness.InsightSet, error) {
	f.gotAs = asOf
	return f.set, f.err
}

func (f *fakeAggregator) Panels(ctx context.Context) ([]appwellness.PanelDescriptor, error) {
	return f.panels, f.err
}

func newWellnessTestServer(sync *fakeSyncer, agg *fakeAggregator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	r := router.NewRouter(engine)
	r.Register(NewWellnessHandler(sync, agg))
	r.Setup()
	return engine
}

func TestWellnessHandlerGetData(t *testing.T) {
	t.Run("returns the sync result", func(t *testing.T) {
		sync := &fakeSyncer{result: &appwellness.SyncResult{
			Provider: connect.ProviderStrava,
			Kind:     connect.KindActivity,
			Source:   appwellness.SourceFallback,
		}}
		engine := newWellnessTestServer(sync, &fakeAggregator{})

		w, resp := doRequest(t, engine, http.MethodGet, "/api/v1/data/strava/activity")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, resp.Success)
	})

	t.Run("invalid kind maps to 400", func(t *testing.T) {
		engine := newWellnessTestServer(&fakeSyncer{}, &fakeAggregator{})

		w, _ := doRequest(t, engine, http.MethodGet, "/api/v1/data/strava/steps")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown provider maps to 404", func(t *testing.T) {
		engine := newWellnessTestServer(&fakeSyncer{err: connect.ErrUnknownProvider}, &fakeAggregator{})

		w, resp := doRequest(t, engine, http.MethodGet, "/api/v1/data/fitbit/activity")
		assert.Equal(t, http.StatusNotFound, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeUnknownProvider, resp.Error.Code)
	})

	t.Run("reauthorization maps to 401", func(t *testing.T) {
		engine := newWellnessTestServer(&fakeSyncer{err: connect.ErrReauthorizationRequired}, &fakeAggregator{})

		w, _ := doRequest(t, engine, http.MethodGet, "/api/v1/data/strava/activity")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestWellnessHandlerGetInsights(t *testing.T) {
	t.Run("default as_of is now", func(t *testing.T) {
		agg := &fakeAggregator{set: &wellness.InsightSet{}}
		engine := newWellnessTestServer(&fakeSyncer{}, agg)

		before := time.Now()
		w, resp := doRequest(t, engine, http.MethodGet, "/api/v1/insights")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, resp.Success)
		assert.False(t, agg.gotAs.Before(before))
	})

	t.Run("explicit as_of is parsed", func(t *testing.T) {
		agg := &fakeAggregator{set: &wellness.InsightSet{}}
		engine := newWellnessTestServer(&fakeSyncer{}, agg)

		w, _ := doRequest(t, engine, http.MethodGet, "/api/v1/insights?as_of=2026-08-31T12:00:00Z")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, agg.gotAs.Equal(time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)))
	})

	t.Run("malformed as_of maps to 400", func(t *testing.T) {
		engine := newWellnessTestServer(&fakeSyncer{}, &fakeAggregator{})

		w, _ := doRequest(t, engine, http.MethodGet, "/api/v1/insights?as_of=yesterday")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestWellnessHandlerGetPanels(t *testing.T) {
	agg := &fakeAggregator{panels: []appwellness.PanelDescriptor{
		{Provider: connect.ProviderStrava, Kind: connect.KindActivity, Source: appwellness.SourceFallback, RecordCount: 5},
	}}
	engine := newWellnessTestServer(&fakeSyncer{}, agg)

	w, resp := doRequest(t, engine, http.MethodGet, "/api/v1/panels")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
}
