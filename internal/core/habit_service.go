package core

import (
	"errors"
	"fmt"
	"time"

	"greensteps.app/greensteps/internal/store"
)

var (
	// ErrHabitNotFound indicates the habit does not exist or is owned by another user.
	ErrHabitNotFound = errors.New("habit not found")
	// ErrInvalidHabit indicates the submitted habit failed validation.
	ErrInvalidHabit = errors.New("invalid habit")
)

const (
	HabitTypePreset = "preset"
	HabitTypeCustom = "custom"
)

// PresetHabit is an entry of the fixed sustainability action catalog.
type PresetHabit struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// presetCatalog is static; it is served without authentication.
var presetCatalog = []PresetHabit{
	{Name: "Recycled items", Description: "Recycled paper, plastic, or other materials"},
	{Name: "Used public transport", Description: "Took bus, train, or other public transportation"},
	{Name: "Saved water", Description: "Recycled paper, plastic, or other materials"},
	{Name: "Ate plant-based meal", Description: "Had a vegetarian or vegan meal"},
	{Name: "Walked or biked", Description: "Chose walking or cycling over driving"},
	{Name: "Reduced energy usage", Description: "Turned off lights, unplugged devices, or used less AC"},
	{Name: "Bought local/organic", Description: "Purchased locally sourced or organic products"},
	{Name: "Avoided single-use plastic", Description: "Used reusable bags, bottles, or containers"},
	{Name: "Composted", Description: "Composted food scraps or organic waste"},
	{Name: "Planted something", Description: "Planted trees, flowers, or started a garden"},
}

// HabitRepository is the subset of the store the habit service needs.
type HabitRepository interface {
	CreateHabit(habit *store.Habit) error
	GetHabitByID(habitID, userID string) (*store.Habit, error)
	GetHabitsByUserID(userID string) ([]store.Habit, error)
	UpdateHabit(habitID, userID string, habitName, description *string) error
	DeleteHabit(habitID, userID string) (bool, error)
}

type HabitService struct {
	habits HabitRepository
}

func NewHabitService(habits HabitRepository) *HabitService {
	return &HabitService{habits: habits}
}

// PresetHabits returns the static catalog.
func (s *HabitService) PresetHabits() []PresetHabit {
	return presetCatalog
}

// CreateHabit validates and stores a new habit log entry. A zero date
// defaults to the current time so backdated logging stays possible.
func (s *HabitService) CreateHabit(userID, habitType, habitName string, description *string, date time.Time) (*store.Habit, error) {
	if habitType != HabitTypePreset && habitType != HabitTypeCustom {
		return nil, fmt.Errorf("%w: habit_type must be 'preset' or 'custom'", ErrInvalidHabit)
	}
	if habitName == "" {
		return nil, fmt.Errorf("%w: habit_name is required", ErrInvalidHabit)
	}

	habit := store.Habit{
		UserID:      userID,
		HabitType:   habitType,
		HabitName:   habitName,
		Description: description,
		Date:        date,
	}
	if err := s.habits.CreateHabit(&habit); err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}
	return &habit, nil
}

func (s *HabitService) ListHabits(userID string) ([]store.Habit, error) {
	return s.habits.GetHabitsByUserID(userID)
}

func (s *HabitService) GetHabit(habitID, userID string) (*store.Habit, error) {
	habit, err := s.habits.GetHabitByID(habitID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}
	if habit == nil {
		return nil, ErrHabitNotFound
	}
	return habit, nil
}

// UpdateHabit patches name and/or description and returns the updated habit.
func (s *HabitService) UpdateHabit(habitID, userID string, habitName, description *string) (*store.Habit, error) {
	habit, err := s.habits.GetHabitByID(habitID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}
	if habit == nil {
		return nil, ErrHabitNotFound
	}

	if habitName != nil || description != nil {
		if err := s.habits.UpdateHabit(habitID, userID, habitName, description); err != nil {
			return nil, fmt.Errorf("failed to update habit: %w", err)
		}
		if habitName != nil {
			habit.HabitName = *habitName
		}
		if description != nil {
			habit.Description = description
		}
	}
	return habit, nil
}

func (s *HabitService) DeleteHabit(habitID, userID string) error {
	deleted, err := s.habits.DeleteHabit(habitID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	if !deleted {
		return ErrHabitNotFound
	}
	return nil
}
