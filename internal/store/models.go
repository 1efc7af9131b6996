package store

import "time"

type User struct {
	ID           string    `json:"id"` // UUID
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // Do not expose this in JSON responses
	CreatedAt    time.Time `json:"created_at"`
}

type Habit struct {
	ID          string    `json:"id"` // UUID
	UserID      string    `json:"user_id"`
	HabitType   string    `json:"habit_type"` // "preset" or "custom"
	HabitName   string    `json:"habit_name"`
	Description *string   `json:"description"` // Nullable
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}
