package core

import (
	"fmt"
	"time"

	"greensteps.app/greensteps/internal/store"
)

const (
	streakWindowDays     = 30 // how far back the streak walk checks
	monthlyBuckets       = 30
	weeklyBuckets        = 7
	completionTargetDays = 30 // one habit per day over the last month = 100%
)

// ProgressStats is the aggregate the dashboard renders from.
type ProgressStats struct {
	TotalHabits          int     `json:"total_habits"`
	ThisWeek             int     `json:"this_week"`
	ThisMonth            int     `json:"this_month"`
	CurrentStreak        int     `json:"current_streak"`
	CompletionPercentage float64 `json:"completion_percentage"`
	WeeklyProgress       []int   `json:"weekly_progress"`  // Last 7 days, oldest first
	MonthlyProgress      []int   `json:"monthly_progress"` // Last 30 days, oldest first
}

type ProgressService struct {
	habits HabitRepository
}

func NewProgressService(habits HabitRepository) *ProgressService {
	return &ProgressService{habits: habits}
}

// Stats aggregates all of a user's habits relative to now.
func (s *ProgressService) Stats(userID string, now time.Time) (*ProgressStats, error) {
	habits, err := s.habits.GetHabitsByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load habits for stats: %w", err)
	}
	return ComputeStats(habits, now), nil
}

// ComputeStats derives the aggregate from an in-memory habit list. Split out
// from Stats so the insight prompt builder can reuse already-fetched habits.
func ComputeStats(habits []store.Habit, now time.Time) *ProgressStats {
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, 0, -30)

	stats := ProgressStats{
		TotalHabits:     len(habits),
		WeeklyProgress:  make([]int, weeklyBuckets),
		MonthlyProgress: make([]int, monthlyBuckets),
	}

	// Per-day counts keyed by calendar date, for streak and bucket fills.
	perDay := make(map[string]int)
	for _, h := range habits {
		if h.Date.After(weekAgo) || h.Date.Equal(weekAgo) {
			stats.ThisWeek++
		}
		if h.Date.After(monthAgo) || h.Date.Equal(monthAgo) {
			stats.ThisMonth++
		}
		perDay[dayKey(h.Date)]++
	}

	// Current streak: consecutive calendar days ending today with at
	// least one logged habit. A gap ends the streak.
	for i := 0; i < streakWindowDays; i++ {
		day := now.AddDate(0, 0, -i)
		if perDay[dayKey(day)] == 0 {
			break
		}
		stats.CurrentStreak++
	}

	// Daily buckets, oldest first, today last.
	for i := 0; i < monthlyBuckets; i++ {
		day := now.AddDate(0, 0, -i)
		count := perDay[dayKey(day)]
		stats.MonthlyProgress[monthlyBuckets-1-i] = count
		if i < weeklyBuckets {
			stats.WeeklyProgress[weeklyBuckets-1-i] = count
		}
	}

	pct := float64(stats.ThisMonth) / float64(completionTargetDays) * 100
	if pct > 100 {
		pct = 100
	}
	stats.CompletionPercentage = pct

	return &stats
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
