package wellness

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vesi/backend/internal/domain/connect"
)

// Achievement thresholds
const (
	distanceMasterKm      = 1000
	consistencyWeekCount  = 5
	centuryClubActivities = 100
)

// Weekly goal targets
const (
	weeklyDistanceTargetKm = 20
	weeklyActivityTarget   = 3
	weeklyCaloriesTarget   = 2000
	weeklySpiritualTarget  = 3
	dailyCommitmentCeiling = 8
)

// spiritualKeywords classify calendar events as spiritual time blocks.
// Matching is a case-insensitive substring test over summary and description.
var spiritualKeywords = []string{
	"prayer", "bible", "church", "worship", "devotion",
	"meditation", "scripture", "small group", "quiet time",
}

// WeeklyStats summarizes activities within a trailing 7-day window
type WeeklyStats struct {
	TotalDistanceKm  decimal.Decimal `json:"total_distance_km"`
	TotalCalories    int64           `json:"total_calories"`
	TotalDurationMin int64           `json:"total_duration_min"`
	ActivityCount    int             `json:"activity_count"`
	// AveragePaceMin is total duration over activity count; 0 when there
	// are no activities
	AveragePaceMin decimal.Decimal `json:"average_pace_min"`
}

// Achievement is a threshold-based badge
type Achievement struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GoalSuggestion is emitted when a current value falls short of a fixed target
type GoalSuggestion struct {
	Category  string          `json:"category"`
	Frequency string          `json:"frequency"`
	Target    decimal.Decimal `json:"target"`
	Current   decimal.Decimal `json:"current"`
}

// InsightSet is the derived aggregate handed to the UI. It has no identity or
// lifecycle beyond the request that produced it.
type InsightSet struct {
	AsOf         time.Time        `json:"as_of"`
	Weekly       WeeklyStats      `json:"weekly"`
	Achievements []Achievement    `json:"achievements"`
	Suggestions  []GoalSuggestion `json:"suggestions"`
}

// ComputeWeeklyStats sums activity records whose timestamp falls within
// [asOf - 7 days, asOf]. The lower bound is implemented as ts >= asOf-7d,
// so a record exactly 7 days old is included.
func ComputeWeeklyStats(records []Record, asOf time.Time) WeeklyStats {
	windowStart := asOf.Add(-7 * 24 * time.Hour)

	stats := WeeklyStats{
		TotalDistanceKm: decimal.Zero,
		AveragePaceMin:  decimal.Zero,
	}

	for _, r := range records {
		if r.Kind != connect.KindActivity || r.Activity == nil {
			continue
		}
		if r.Timestamp.Before(windowStart) || r.Timestamp.After(asOf) {
			continue
		}
		stats.TotalDistanceKm = stats.TotalDistanceKm.Add(r.Activity.DistanceKm)
		stats.TotalCalories += r.Activity.Calories
		stats.TotalDurationMin += r.Activity.DurationMin
		stats.ActivityCount++
	}

	if stats.ActivityCount > 0 {
		stats.AveragePaceMin = decimal.NewFromInt(stats.TotalDurationMin).
			Div(decimal.NewFromInt(int64(stats.ActivityCount))).
			Round(2)
	}

	return stats
}

// ComputeAchievements applies the fixed badge rules over all activity records.
// Week bucketing uses (year, ceil(dayOfYear/7)) keys. This is deliberately not
// ISO-8601 week numbering: buckets are uneven across year transitions, and the
// behavior is preserved from the original product.
func ComputeAchievements(records []Record) []Achievement {
	var (
		totalDistance = decimal.Zero
		count         int
		weekBuckets   = make(map[string]int)
	)

	for _, r := range records {
		if r.Kind != connect.KindActivity || r.Activity == nil {
			continue
		}
		totalDistance = totalDistance.Add(r.Activity.DistanceKm)
		count++
		weekBuckets[weekBucketKey(r.Timestamp)]++
	}

	achievements := make([]Achievement, 0, 3)

	if totalDistance.GreaterThanOrEqual(decimal.NewFromInt(distanceMasterKm)) {
		achievements = append(achievements, Achievement{
			Name:        "Distance Master",
			Description: fmt.Sprintf("Covered %d km or more in total", distanceMasterKm),
		})
	}

	for _, n := range weekBuckets {
		if n >= consistencyWeekCount {
			achievements = append(achievements, Achievement{
				Name:        "Consistency Champion",
				Description: fmt.Sprintf("Logged %d or more activities in a single week", consistencyWeekCount),
			})
			break
		}
	}

	if count >= centuryClubActivities {
		achievements = append(achievements, Achievement{
			Name:        "Century Club",
			Description: fmt.Sprintf("Completed %d activities", centuryClubActivities),
		})
	}

	return achievements
}

// weekBucketKey returns the (year, ceil(dayOfYear/7)) bucket for a timestamp
func weekBucketKey(ts time.Time) string {
	week := (ts.YearDay() + 6) / 7
	return fmt.Sprintf("%d-%d", ts.Year(), week)
}

// SuggestionInput carries the current values the goal rules compare against
type SuggestionInput struct {
	Weekly           WeeklyStats
	SpiritualBlocks  int
	DailyCommitments int
}

// ComputeGoalSuggestions emits a suggestion for each fixed target the current
// value falls short of. No suggestion is produced when the target is already
// met or exceeded.
func ComputeGoalSuggestions(in SuggestionInput) []GoalSuggestion {
	suggestions := make([]GoalSuggestion, 0, 5)

	if in.Weekly.TotalDistanceKm.LessThan(decimal.NewFromInt(weeklyDistanceTargetKm)) {
		suggestions = append(suggestions, GoalSuggestion{
			Category:  "health",
			Frequency: "weekly",
			Target:    decimal.NewFromInt(weeklyDistanceTargetKm),
			Current:   in.Weekly.TotalDistanceKm,
		})
	}

	if in.Weekly.ActivityCount < weeklyActivityTarget {
		suggestions = append(suggestions, GoalSuggestion{
			Category:  "fitness",
			Frequency: "weekly",
			Target:    decimal.NewFromInt(weeklyActivityTarget),
			Current:   decimal.NewFromInt(int64(in.Weekly.ActivityCount)),
		})
	}

	if in.Weekly.TotalCalories < weeklyCaloriesTarget {
		suggestions = append(suggestions, GoalSuggestion{
			Category:  "nutrition",
			Frequency: "weekly",
			Target:    decimal.NewFromInt(weeklyCaloriesTarget),
			Current:   decimal.NewFromInt(in.Weekly.TotalCalories),
		})
	}

	if in.SpiritualBlocks < weeklySpiritualTarget {
		suggestions = append(suggestions, GoalSuggestion{
			Category:  "spiritual",
			Frequency: "weekly",
			Target:    decimal.NewFromInt(weeklySpiritualTarget),
			Current:   decimal.NewFromInt(int64(in.SpiritualBlocks)),
		})
	}

	if in.DailyCommitments > dailyCommitmentCeiling {
		suggestions = append(suggestions, GoalSuggestion{
			Category:  "balance",
			Frequency: "daily",
			Target:    decimal.NewFromInt(dailyCommitmentCeiling),
			Current:   decimal.NewFromInt(int64(in.DailyCommitments)),
		})
	}

	return suggestions
}

// IsSpiritualEvent reports whether a calendar event is a spiritual time block
func IsSpiritualEvent(ev *CalendarEvent) bool {
	if ev == nil {
		return false
	}
	haystack := strings.ToLower(ev.Summary + " " + ev.Description)
	for _, kw := range spiritualKeywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

// IsBusySoon reports whether the event starts within the next 24 hours
func IsBusySoon(ev *CalendarEvent, now time.Time) bool {
	if ev == nil {
		return false
	}
	return !ev.Start.Before(now) && ev.Start.Before(now.Add(24*time.Hour))
}

// CountSpiritualBlocks counts spiritual calendar events among the records
func CountSpiritualBlocks(records []Record) int {
	n := 0
	for _, r := range records {
		if r.Kind == connect.KindCalendarEvent && IsSpiritualEvent(r.CalendarEvent) {
			n++
		}
	}
	return n
}

// CountDailyCommitments counts calendar events starting within 24h of now
func CountDailyCommitments(records []Record, now time.Time) int {
	n := 0
	for _, r := range records {
		if r.Kind == connect.KindCalendarEvent && IsBusySoon(r.CalendarEvent, now) {
			n++
		}
	}
	return n
}

// SortByTimestamp orders records oldest first; stable for equal timestamps
func SortByTimestamp(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
}
