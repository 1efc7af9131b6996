package cli

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"greensteps.app/greensteps/internal/core"
	"greensteps.app/greensteps/internal/store"
)

const (
	progressBarWidth = 30
	weeklyBarWidth   = 20
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	valueStyle = lipgloss.NewStyle().
			Bold(true)

	streakHotStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	streakWarmStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178")).
			Bold(true)

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	insightTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true)
)

// RenderStats renders the dashboard stat cards.
func RenderStats(stats *core.ProgressStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s   %s %s   %s %s   %s %s\n\n",
		labelStyle.Render("Streak:"), renderStreak(stats.CurrentStreak),
		labelStyle.Render("This week:"), valueStyle.Render(fmt.Sprintf("%d", stats.ThisWeek)),
		labelStyle.Render("This month:"), valueStyle.Render(fmt.Sprintf("%d", stats.ThisMonth)),
		labelStyle.Render("Total:"), valueStyle.Render(fmt.Sprintf("%d", stats.TotalHabits)))
	return b.String()
}

// renderStreak colors the streak count by how established it is.
func renderStreak(days int) string {
	text := fmt.Sprintf("%d days", days)
	switch {
	case days >= 7:
		return streakHotStyle.Render(text)
	case days >= 3:
		return streakWarmStyle.Render(text)
	default:
		return valueStyle.Render(text)
	}
}

// RenderProgressBar renders the monthly completion bar. The filled width
// is clamped at 100% but the label keeps the true value, rounded.
func RenderProgressBar(pct float64, width int) string {
	filled := progressFill(pct, width)
	bar := barStyle.Render(strings.Repeat("█", filled)) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %s %d%%\n\n", labelStyle.Render("Monthly goal"), bar, int(math.Round(pct)))
}

func progressFill(pct float64, width int) int {
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return int(math.Round(pct / 100 * float64(width)))
}

// RenderWeeklyChart renders the last seven days as horizontal bars scaled
// to the busiest day, oldest day first.
func RenderWeeklyChart(weekly []int) string {
	if len(weekly) == 0 {
		return ""
	}

	widths := barWidths(weekly, weeklyBarWidth)
	today := time.Now()

	var b strings.Builder
	b.WriteString(labelStyle.Render("Last 7 days") + "\n")
	for i, count := range weekly {
		day := today.AddDate(0, 0, i-(len(weekly)-1))
		fmt.Fprintf(&b, "  %s %s %d\n",
			labelStyle.Render(day.Format("Mon")),
			barStyle.Render(strings.Repeat("▇", widths[i])),
			count)
	}
	b.WriteString("\n")
	return b.String()
}

// barWidths scales counts to at most maxWidth columns. A day with at least
// one habit always gets a visible bar; an all-zero week stays empty.
func barWidths(counts []int, maxWidth int) []int {
	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}

	widths := make([]int, len(counts))
	if maxCount == 0 {
		return widths
	}
	for i, c := range counts {
		w := int(math.Round(float64(c) / float64(maxCount) * float64(maxWidth)))
		if c > 0 && w == 0 {
			w = 1
		}
		widths[i] = w
	}
	return widths
}

// RenderInsights renders the coaching cards. An empty list renders
// nothing: insight failures are never an error surface.
func RenderInsights(insights []core.Insight) string {
	if len(insights) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Coaching insights") + "\n")
	for _, in := range insights {
		fmt.Fprintf(&b, "  %s %s\n    %s\n", in.Emoji, insightTitleStyle.Render(in.Title), in.Content)
	}
	b.WriteString("\n")
	return b.String()
}

// RenderHabits renders the habit list, newest first as served.
func RenderHabits(habits []store.Habit) string {
	if len(habits) == 0 {
		return "No habits logged yet. Try 'greensteps habits add'.\n"
	}

	var b strings.Builder
	for _, h := range habits {
		desc := ""
		if h.Description != nil && *h.Description != "" {
			desc = " - " + *h.Description
		}
		fmt.Fprintf(&b, "%s  %s %s%s\n    %s\n",
			labelStyle.Render(h.Date.Format("Jan 2, 2006")),
			valueStyle.Render(h.HabitName),
			labelStyle.Render("("+h.HabitType+")"),
			desc,
			labelStyle.Render("id: "+h.ID))
	}
	return b.String()
}
