package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id TEXT PRIMARY KEY, -- UUID
        email TEXT UNIQUE NOT NULL,
        name TEXT NOT NULL,
        password_hash TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS habits (
        id TEXT PRIMARY KEY, -- UUID
        user_id TEXT NOT NULL,
        habit_type TEXT NOT NULL CHECK (habit_type IN ('preset', 'custom')),
        habit_name TEXT NOT NULL,
        description TEXT,
        date DATETIME NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (user_id) REFERENCES users (id)
    );

    CREATE INDEX IF NOT EXISTS idx_habits_user_date ON habits (user_id, date);
    `
	_, err := s.db.Exec(schema)
	return err
}

// User methods
func (s *SQLiteStore) CreateUser(email, name, passwordHash string) (*User, error) {
	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := s.db.Exec("INSERT INTO users (id, email, name, password_hash, created_at) VALUES (?, ?, ?, ?, ?)",
		user.ID, user.Email, user.Name, user.PasswordHash, user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return &user, nil
}

func (s *SQLiteStore) GetUserByEmail(email string) (*User, error) {
	var user User
	err := s.db.QueryRow("SELECT id, email, name, password_hash, created_at FROM users WHERE email = ?", email).
		Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

func (s *SQLiteStore) GetUserByID(id string) (*User, error) {
	var user User
	err := s.db.QueryRow("SELECT id, email, name, password_hash, created_at FROM users WHERE id = ?", id).
		Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

// Habit methods
func (s *SQLiteStore) CreateHabit(habit *Habit) error {
	habit.ID = uuid.NewString()
	habit.CreatedAt = time.Now().UTC()
	if habit.Date.IsZero() {
		habit.Date = habit.CreatedAt
	}

	stmt, err := s.db.Prepare("INSERT INTO habits (id, user_id, habit_type, habit_name, description, date, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare habit insert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(habit.ID, habit.UserID, habit.HabitType, habit.HabitName, habit.Description, habit.Date, habit.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to execute habit insert: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetHabitByID(habitID, userID string) (*Habit, error) {
	var habit Habit
	var description sql.NullString
	err := s.db.QueryRow("SELECT id, user_id, habit_type, habit_name, description, date, created_at FROM habits WHERE id = ? AND user_id = ?", habitID, userID).
		Scan(&habit.ID, &habit.UserID, &habit.HabitType, &habit.HabitName, &description, &habit.Date, &habit.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}
	if description.Valid {
		habit.Description = &description.String
	}
	return &habit, nil
}

func (s *SQLiteStore) GetHabitsByUserID(userID string) ([]Habit, error) {
	rows, err := s.db.Query("SELECT id, user_id, habit_type, habit_name, description, date, created_at FROM habits WHERE user_id = ? ORDER BY date DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query habits: %w", err)
	}
	defer rows.Close()

	var habits []Habit
	for rows.Next() {
		var habit Habit
		var description sql.NullString
		if err := rows.Scan(&habit.ID, &habit.UserID, &habit.HabitType, &habit.HabitName, &description, &habit.Date, &habit.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan habit row: %w", err)
		}
		if description.Valid {
			habit.Description = &description.String
		}
		habits = append(habits, habit)
	}
	return habits, nil
}

func (s *SQLiteStore) UpdateHabit(habitID, userID string, habitName, description *string) error {
	if habitName == nil && description == nil {
		return nil // Nothing to update
	}

	query := "UPDATE habits SET "
	args := []any{}
	if habitName != nil {
		query += "habit_name = ?"
		args = append(args, *habitName)
	}
	if description != nil {
		if habitName != nil {
			query += ", "
		}
		query += "description = ?"
		args = append(args, *description)
	}
	query += " WHERE id = ? AND user_id = ?"
	args = append(args, habitID, userID)

	res, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to execute habit update: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("habit not found or not owned by user, not updated")
	}
	return nil
}

func (s *SQLiteStore) DeleteHabit(habitID, userID string) (bool, error) {
	res, err := s.db.Exec("DELETE FROM habits WHERE id = ? AND user_id = ?", habitID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete habit: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

func (s *SQLiteStore) CountHabits(userID string) (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM habits WHERE user_id = ?", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count habits: %w", err)
	}
	return count, nil
}
