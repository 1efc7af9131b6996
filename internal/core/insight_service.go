package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"greensteps.app/greensteps/internal/config"
	"greensteps.app/greensteps/internal/store"
)

const (
	insightModelName = "gemini-2.0-flash"
	insightMaxTokens = 1000

	insightSystemInstruction = "You are a sustainability coach for GreenSteps app. " +
		"Generate personalized insights, tips, and motivation for users based on their habit tracking data. " +
		"Always be encouraging and provide actionable advice."
)

// Insight is a single AI-generated coaching card.
type Insight struct {
	InsightType string `json:"insight_type"` // 'tip', 'motivation', 'suggestion', 'impact'
	Title       string `json:"title"`
	Content     string `json:"content"`
	Emoji       string `json:"emoji"`
}

// InsightService generates coaching insights from a user's habit history.
// Every failure path degrades to deterministic fallback content: the
// insights surface must never error out user-visibly.
type InsightService struct {
	client *genai.Client
}

func NewInsightService() *InsightService {
	if config.AppConfig.GeminiAPIKey == "" {
		return &InsightService{}
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(config.AppConfig.GeminiAPIKey))
	if err != nil {
		log.Printf("Failed to create GenAI client, falling back to canned insights: %v", err)
		return &InsightService{}
	}

	return &InsightService{client: client}
}

func (s *InsightService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			log.Printf("Error closing GenAI client: %v", err)
		}
	}
}

// Insights returns exactly three coaching cards for the user.
func (s *InsightService) Insights(ctx context.Context, user *store.User, habits []store.Habit) []Insight {
	stats := ComputeStats(habits, time.Now().UTC())

	if s.client == nil {
		return fallbackInsights(stats)
	}

	prompt := buildInsightPrompt(user, habits, stats)

	model := s.client.GenerativeModel(insightModelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(insightSystemInstruction)},
	}
	maxTokens := int32(insightMaxTokens)
	model.GenerationConfig = genai.GenerationConfig{MaxOutputTokens: &maxTokens}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		log.Printf("AI insights error for user %s: %v", user.ID, err)
		return fallbackInsights(stats)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		log.Printf("AI insights for user %s: empty response", user.ID)
		return fallbackInsights(stats)
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}

	insights, err := parseInsights(responseText.String())
	if err != nil {
		log.Printf("AI insights for user %s: %v", user.ID, err)
		return fallbackInsights(stats)
	}
	return insights
}

// parseInsights decodes the model's JSON array, stripping the markdown code
// fences Gemini tends to wrap its output in.
func parseInsights(text string) ([]Insight, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	var insights []Insight
	if err := json.Unmarshal([]byte(text), &insights); err != nil {
		return nil, fmt.Errorf("failed to parse insight response: %w", err)
	}
	if len(insights) == 0 {
		return nil, fmt.Errorf("insight response contained no entries")
	}
	return insights, nil
}

func buildInsightPrompt(user *store.User, habits []store.Habit, stats *ProgressStats) string {
	var recentNames []string
	for _, h := range habits {
		recentNames = append(recentNames, h.HabitName)
		if len(recentNames) == 5 {
			break
		}
	}

	seen := make(map[string]bool)
	var distinctNames []string
	for _, h := range habits {
		if seen[h.HabitName] {
			continue
		}
		seen[h.HabitName] = true
		distinctNames = append(distinctNames, h.HabitName)
		if len(distinctNames) == 8 {
			break
		}
	}

	userContext := fmt.Sprintf(`User: %s
Total habits logged: %d
Habits this week: %d
Habits this month: %d
Current streak: %d days
Recent habits: %s
Habit types tried: %s`,
		user.Name, stats.TotalHabits, stats.ThisWeek, stats.ThisMonth, stats.CurrentStreak,
		strings.Join(recentNames, ", "), strings.Join(distinctNames, ", "))

	return fmt.Sprintf(`Based on this user's sustainability habit data:

%s

Generate exactly 3 different types of insights in this JSON format:
[
  {
    "insight_type": "tip",
    "title": "Sustainability Tip",
    "content": "A specific, actionable tip based on their habits",
    "emoji": "💡"
  },
  {
    "insight_type": "motivation",
    "title": "Motivational Message",
    "content": "Encouraging message about their progress",
    "emoji": "🌟"
  },
  {
    "insight_type": "suggestion",
    "title": "New Habit Suggestion",
    "content": "Suggest a new habit they haven't tried yet",
    "emoji": "🌱"
  }
]

Rules:
- Keep content under 150 characters each
- Be specific to their habit patterns
- Use encouraging, positive tone
- Make suggestions actionable
- Return only valid JSON array`, userContext)
}

func fallbackInsights(stats *ProgressStats) []Insight {
	return []Insight{
		{
			InsightType: "tip",
			Title:       "Great Progress!",
			Content:     fmt.Sprintf("You've logged %d habits this week! Keep building that momentum.", stats.ThisWeek),
			Emoji:       "💡",
		},
		{
			InsightType: "motivation",
			Title:       "Streak Power",
			Content:     fmt.Sprintf("Your %d-day streak shows real commitment to sustainability!", stats.CurrentStreak),
			Emoji:       "🌟",
		},
		{
			InsightType: "suggestion",
			Title:       "Try Something New",
			Content:     "Consider starting a small herb garden - it's sustainable and rewarding!",
			Emoji:       "🌱",
		},
	}
}
