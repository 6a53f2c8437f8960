package wellness

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vesi/backend/internal/domain/connect"
	"github.com/vesi/backend/internal/domain/wellness"
)

// InsightService derives the dashboard insight payload from synced records.
// Insights are pure and recomputed per request; nothing here is persisted.
type InsightService struct {
	sync   *SyncService
	logger *zap.Logger
	now    func() time.Time
}

// InsightOption is a functional option for configuring the insight service
type InsightOption func(*InsightService)

// WithInsightLogger sets the insight service logger
func WithInsightLogger(logger *zap.Logger) InsightOption {
	return func(s *InsightService) {
		s.logger = logger
	}
}

// WithInsightClock overrides the time source used for daily commitment counts
func WithInsightClock(now func() time.Time) InsightOption {
	return func(s *InsightService) {
		s.now = now
	}
}

// NewInsightService creates a new InsightService
func NewInsightService(sync *SyncService, opts ...InsightOption) *InsightService {
	s := &InsightService{
		sync:   sync,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Insights gathers records across every provider and computes the derived
// aggregate as of the given instant. A provider that cannot be fetched
// contributes its fallback dataset, so the payload always renders.
func (s *InsightService) Insights(ctx context.Context, asOf time.Time) (*wellness.InsightSet, error) {
	records, err := s.gather(ctx)
	if err != nil {
		return nil, err
	}

	weekly := wellness.ComputeWeeklyStats(records, asOf)
	achievements := wellness.ComputeAchievements(records)
	suggestions := wellness.ComputeGoalSuggestions(wellness.SuggestionInput{
		Weekly:           weekly,
		SpiritualBlocks:  wellness.CountSpiritualBlocks(records),
		DailyCommitments: wellness.CountDailyCommitments(records, s.now()),
	})

	return &wellness.InsightSet{
		AsOf:         asOf,
		Weekly:       weekly,
		Achievements: achievements,
		Suggestions:  suggestions,
	}, nil
}

// Panels returns the per-kind panel descriptors across every provider
func (s *InsightService) Panels(ctx context.Context) ([]PanelDescriptor, error) {
	var all []*SyncResult
	for _, providerCode := range connect.AllProviders() {
		results, err := s.sync.FetchAll(ctx, providerCode)
		if err != nil {
			return nil, err
		}
		all = append(all, results...)
	}
	return ProcessForPanel(all), nil
}

// gather collects the records of every provider and kind
func (s *InsightService) gather(ctx context.Context) ([]wellness.Record, error) {
	var all []*SyncResult
	for _, providerCode := range connect.AllProviders() {
		results, err := s.sync.FetchAll(ctx, providerCode)
		if err != nil {
			return nil, err
		}
		all = append(all, results...)
	}
	return Records(all), nil
}
