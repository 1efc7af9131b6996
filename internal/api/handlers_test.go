package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"greensteps.app/greensteps/internal/api"
	"greensteps.app/greensteps/internal/config"
	"greensteps.app/greensteps/internal/core"
	"greensteps.app/greensteps/internal/store"
)

// memStore is an in-memory stand-in for the sqlite store.
type memStore struct {
	mu     sync.Mutex
	users  map[string]*store.User
	habits map[string]*store.Habit
}

func newMemStore() *memStore {
	return &memStore{
		users:  make(map[string]*store.User),
		habits: make(map[string]*store.Habit),
	}
}

func (m *memStore) CreateUser(email, name, passwordHash string) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := &store.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	m.users[user.ID] = user
	return user, nil
}

func (m *memStore) GetUserByEmail(email string) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetUserByID(id string) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (m *memStore) CreateHabit(habit *store.Habit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	habit.ID = uuid.NewString()
	habit.CreatedAt = time.Now().UTC()
	if habit.Date.IsZero() {
		habit.Date = habit.CreatedAt
	}
	copied := *habit
	m.habits[habit.ID] = &copied
	return nil
}

func (m *memStore) GetHabitByID(habitID, userID string) (*store.Habit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.habits[habitID]; ok && h.UserID == userID {
		copied := *h
		return &copied, nil
	}
	return nil, nil
}

func (m *memStore) GetHabitsByUserID(userID string) ([]store.Habit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var habits []store.Habit
	for _, h := range m.habits {
		if h.UserID == userID {
			habits = append(habits, *h)
		}
	}
	return habits, nil
}

func (m *memStore) UpdateHabit(habitID, userID string, habitName, description *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.habits[habitID]
	if !ok || h.UserID != userID {
		return fmt.Errorf("habit not found or not owned by user, not updated")
	}
	if habitName != nil {
		h.HabitName = *habitName
	}
	if description != nil {
		h.Description = description
	}
	return nil
}

func (m *memStore) DeleteHabit(habitID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.habits[habitID]
	if !ok || h.UserID != userID {
		return false, nil
	}
	delete(m.habits, habitID)
	return true, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	config.AppConfig.JWTSecret = "test-secret"
	config.AppConfig.GeminiAPIKey = ""

	db := newMemStore()
	handler := api.NewAPIHandler(
		core.NewAuthService(db),
		core.NewHabitService(db),
		core.NewProgressService(db),
		core.NewInsightService(),
	)
	srv := httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func signup(t *testing.T, srv *httptest.Server, name, email string) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/auth/signup", "", map[string]string{
		"name": name, "email": email, "password": "TestPassword123!",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("signup returned %d: %v", resp.StatusCode, body)
	}
	token, _ := body["access_token"].(string)
	if token == "" {
		t.Fatal("signup returned no access_token")
	}
	return token
}

func TestSignupLoginMe(t *testing.T) {
	srv := newTestServer(t)
	token := signup(t, srv, "Robin", "robin@example.com")

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/auth/me", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me returned %d: %v", resp.StatusCode, body)
	}
	if body["name"] != "Robin" || body["email"] != "robin@example.com" {
		t.Errorf("unexpected user: %v", body)
	}
	if _, ok := body["password_hash"]; ok {
		t.Error("password hash must not be exposed")
	}

	// Wrong password leaves the caller unauthenticated with a detail string.
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"email": "robin@example.com", "password": "WrongPassword!",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong password, got %d", resp.StatusCode)
	}
	if detail, _ := body["detail"].(string); detail == "" {
		t.Error("expected non-empty error detail")
	}

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"email": "robin@example.com", "password": "TestPassword123!",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login returned %d: %v", resp.StatusCode, body)
	}
	if tok, _ := body["access_token"].(string); tok == "" {
		t.Error("login returned no access_token")
	}
	if body["token_type"] != "bearer" {
		t.Errorf("expected token_type bearer, got %v", body["token_type"])
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	srv := newTestServer(t)
	signup(t, srv, "Robin", "robin@example.com")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/auth/signup", "", map[string]string{
		"name": "Other", "email": "robin@example.com", "password": "AnotherPassword123!",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for duplicate email, got %d", resp.StatusCode)
	}
	if body["detail"] != "Email already registered" {
		t.Errorf("unexpected detail: %v", body["detail"])
	}
}

func TestHabitLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := signup(t, srv, "Robin", "robin@example.com")

	resp, created := doJSON(t, http.MethodPost, srv.URL+"/api/habits", token, map[string]string{
		"habit_type": "preset", "habit_name": "Recycled today", "description": "",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create habit returned %d: %v", resp.StatusCode, created)
	}
	habitID, _ := created["id"].(string)
	if habitID == "" {
		t.Fatal("created habit has no id")
	}

	listHas := func(id string) bool {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/habits", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("list request failed: %v", err)
		}
		defer resp.Body.Close()
		var habits []store.Habit
		if err := json.NewDecoder(resp.Body).Decode(&habits); err != nil {
			t.Fatalf("failed to decode habit list: %v", err)
		}
		for _, h := range habits {
			if h.ID == id {
				return true
			}
		}
		return false
	}

	if !listHas(habitID) {
		t.Error("created habit missing from list")
	}

	resp, body := doJSON(t, http.MethodDelete, srv.URL+"/api/habits/"+habitID, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete returned %d: %v", resp.StatusCode, body)
	}
	if body["message"] != "Habit deleted successfully" {
		t.Errorf("unexpected delete message: %v", body["message"])
	}

	if listHas(habitID) {
		t.Error("deleted habit still present in list")
	}

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/habits/"+habitID, token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 deleting twice, got %d", resp.StatusCode)
	}
}

func TestCreateHabit_InvalidType(t *testing.T) {
	srv := newTestServer(t)
	token := signup(t, srv, "Robin", "robin@example.com")

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/habits", token, map[string]string{
		"habit_type": "weekly", "habit_name": "Recycled today",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid habit_type, got %d", resp.StatusCode)
	}
}

func TestHabitsAreUserScoped(t *testing.T) {
	srv := newTestServer(t)
	tokenA := signup(t, srv, "Alice", "alice@example.com")
	tokenB := signup(t, srv, "Bob", "bob@example.com")

	_, created := doJSON(t, http.MethodPost, srv.URL+"/api/habits", tokenA, map[string]string{
		"habit_type": "custom", "habit_name": "Fixed my bike",
	})
	habitID, _ := created["id"].(string)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/habits/"+habitID, tokenB, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for another user's habit, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/habits/"+habitID, tokenB, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 deleting another user's habit, got %d", resp.StatusCode)
	}
}

func TestUnauthorizedAccess(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/api/auth/me", "/api/habits", "/api/progress"} {
		resp, _ := doJSON(t, http.MethodGet, srv.URL+path, "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401 for %s without token, got %d", path, resp.StatusCode)
		}
	}

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/habits", "garbage-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad token, got %d", resp.StatusCode)
	}
}

func TestPresetHabitsPublic(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/preset-habits")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var presets []core.PresetHabit
	if err := json.NewDecoder(resp.Body).Decode(&presets); err != nil {
		t.Fatalf("failed to decode presets: %v", err)
	}
	if len(presets) != 10 {
		t.Errorf("expected 10 presets, got %d", len(presets))
	}
	for _, p := range presets {
		if p.Name == "" || p.Description == "" {
			t.Errorf("preset %+v has empty fields", p)
		}
	}
}

func TestProgressStats(t *testing.T) {
	srv := newTestServer(t)
	token := signup(t, srv, "Robin", "robin@example.com")

	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	for _, habit := range []map[string]any{
		{"habit_type": "preset", "habit_name": "Recycled items"},
		{"habit_type": "preset", "habit_name": "Composted", "date": yesterday.Format(time.RFC3339)},
	} {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/habits", token, habit)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("create habit returned %d: %v", resp.StatusCode, body)
		}
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/progress", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("progress request failed: %v", err)
	}
	defer resp.Body.Close()

	var stats core.ProgressStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("failed to decode stats: %v", err)
	}
	if stats.TotalHabits != 2 {
		t.Errorf("expected 2 total habits, got %d", stats.TotalHabits)
	}
	if stats.CurrentStreak != 2 {
		t.Errorf("expected 2-day streak, got %d", stats.CurrentStreak)
	}
	if len(stats.WeeklyProgress) != 7 || len(stats.MonthlyProgress) != 30 {
		t.Errorf("unexpected bucket lengths: %d weekly, %d monthly",
			len(stats.WeeklyProgress), len(stats.MonthlyProgress))
	}
	if stats.WeeklyProgress[6] != 1 {
		t.Errorf("expected 1 habit in today's bucket, got %d", stats.WeeklyProgress[6])
	}
}

func TestInsightsAlwaysSucceed(t *testing.T) {
	srv := newTestServer(t)
	token := signup(t, srv, "Robin", "robin@example.com")

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/ai/insights", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("insights request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 even without an AI key, got %d", resp.StatusCode)
	}

	var insights []core.Insight
	if err := json.NewDecoder(resp.Body).Decode(&insights); err != nil {
		t.Fatalf("failed to decode insights: %v", err)
	}
	if len(insights) != 3 {
		t.Errorf("expected 3 insights, got %d", len(insights))
	}
}
