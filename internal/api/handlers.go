package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"greensteps.app/greensteps/internal/auth"
	"greensteps.app/greensteps/internal/core"
	"greensteps.app/greensteps/internal/store"
)

type contextKey string

const userContextKey contextKey = "user"

type APIHandler struct {
	authService     *core.AuthService
	habitService    *core.HabitService
	progressService *core.ProgressService
	insightService  *core.InsightService
}

func NewAPIHandler(as *core.AuthService, hs *core.HabitService, ps *core.ProgressService, is *core.InsightService) *APIHandler {
	return &APIHandler{
		authService:     as,
		habitService:    hs,
		progressService: ps,
		insightService:  is,
	}
}

// Error bodies carry a {"detail": ...} payload so clients can surface a
// single human-readable message regardless of the failure cause.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func userFromContext(r *http.Request) *store.User {
	user, _ := r.Context().Value(userContextKey).(*store.User)
	return user
}

func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeDetail(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		userID, err := auth.ValidateJWT(tokenString)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		user, err := h.authService.GetUser(userID)
		if err != nil {
			log.Printf("Error in JWTAuthMiddleware for user %s: %v", userID, err)
			writeDetail(w, http.StatusInternalServerError, "Failed to process user identity")
			return
		}
		if user == nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *APIHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Email == "" || req.Password == "" || req.Name == "" {
		writeDetail(w, http.StatusBadRequest, "Email, password and name are required")
		return
	}

	token, err := h.authService.Signup(req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, core.ErrEmailTaken) {
			writeDetail(w, http.StatusBadRequest, "Email already registered")
			return
		}
		log.Printf("Error creating user %s: %v", req.Email, err)
		writeDetail(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Email == "" || req.Password == "" {
		writeDetail(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, core.ErrInvalidCredentials) {
			writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
			return
		}
		log.Printf("Error logging in user %s: %v", req.Email, err)
		writeDetail(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *APIHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFromContext(r))
}

func (h *APIHandler) PresetHabitsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.habitService.PresetHabits())
}

type CreateHabitRequest struct {
	HabitType   string     `json:"habit_type"`
	HabitName   string     `json:"habit_name"`
	Description *string    `json:"description,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
}

func (h *APIHandler) CreateHabitHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)

	var req CreateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	var date time.Time
	if req.Date != nil {
		date = *req.Date
	}

	habit, err := h.habitService.CreateHabit(user.ID, req.HabitType, req.HabitName, req.Description, date)
	if err != nil {
		if errors.Is(err, core.ErrInvalidHabit) {
			writeDetail(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("Error creating habit for user %s: %v", user.ID, err)
		writeDetail(w, http.StatusInternalServerError, "Failed to create habit")
		return
	}

	writeJSON(w, http.StatusOK, habit)
}

func (h *APIHandler) ListHabitsHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)

	habits, err := h.habitService.ListHabits(user.ID)
	if err != nil {
		log.Printf("Error listing habits for user %s: %v", user.ID, err)
		writeDetail(w, http.StatusInternalServerError, "Failed to list habits")
		return
	}
	if habits == nil {
		habits = []store.Habit{}
	}
	writeJSON(w, http.StatusOK, habits)
}

func (h *APIHandler) GetHabitHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	habitID := chi.URLParam(r, "habitID")

	habit, err := h.habitService.GetHabit(habitID, user.ID)
	if err != nil {
		if errors.Is(err, core.ErrHabitNotFound) {
			writeDetail(w, http.StatusNotFound, "Habit not found")
			return
		}
		log.Printf("Error getting habit %s for user %s: %v", habitID, user.ID, err)
		writeDetail(w, http.StatusInternalServerError, "Failed to get habit")
		return
	}
	writeJSON(w, http.StatusOK, habit)
}

type UpdateHabitRequest struct {
	HabitName   *string `json:"habit_name,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (h *APIHandler) UpdateHabitHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	habitID := chi.URLParam(r, "habitID")

	var req UpdateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	habit, err := h.habitService.UpdateHabit(habitID, user.ID, req.HabitName, req.Description)
	if err != nil {
		if errors.Is(err, core.ErrHabitNotFound) {
			writeDetail(w, http.StatusNotFound, "Habit not found")
			return
		}
		log.Printf("Error updating habit %s for user %s: %v", habitID, user.ID, err)
		writeDetail(w, http.StatusInternalServerError, "Failed to update habit")
		return
	}
	writeJSON(w, http.StatusOK, habit)
}

func (h *APIHandler) DeleteHabitHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	habitID := chi.URLParam(r, "habitID")

	if err := h.habitService.DeleteHabit(habitID, user.ID); err != nil {
		if errors.Is(err, core.ErrHabitNotFound) {
			writeDetail(w, http.StatusNotFound, "Habit not found")
			return
		}
		log.Printf("Error deleting habit %s for user %s: %v", habitID, user.ID, err)
		writeDetail(w, http.StatusInternalServerError, "Failed to delete habit")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Habit deleted successfully"})
}

func (h *APIHandler) ProgressHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)

	stats, err := h.progressService.Stats(user.ID, time.Now().UTC())
	if err != nil {
		log.Printf("Error computing progress for user %s: %v", user.ID, err)
		writeDetail(w, http.StatusInternalServerError, "Failed to compute progress")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type InsightsRequest struct {
	Context *string `json:"context,omitempty"`
}

func (h *APIHandler) InsightsHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)

	// The request body is accepted for forward compatibility but the
	// prompt is built from stored habit data.
	if r.Body != http.NoBody {
		var req InsightsRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	habits, err := h.habitService.ListHabits(user.ID)
	if err != nil {
		log.Printf("Error loading habits for insights, user %s: %v", user.ID, err)
		habits = nil // Insights degrade to fallback content
	}

	insights := h.insightService.Insights(r.Context(), user, habits)
	writeJSON(w, http.StatusOK, insights)
}
