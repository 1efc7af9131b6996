// Package client is a typed HTTP client for the GreenSteps API. It is the
// programmatic counterpart of the web dashboard's fetch layer: every method
// is a single request whose failure collapses into one human-readable
// detail string.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"greensteps.app/greensteps/internal/core"
	"greensteps.app/greensteps/internal/store"
)

// errRequestFailed is the fixed fallback when the server gives no detail.
const errRequestFailed = "request failed"

// APIError is a non-2xx response reduced to its status and detail message.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return e.Detail
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// SetToken attaches a bearer token to all subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// do issues one request and decodes the response into out (if non-nil).
// Non-2xx responses become an *APIError carrying the body's detail field,
// or a fixed fallback string when none is present.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := errRequestFailed
		var errBody struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil && errBody.Detail != "" {
			detail = errBody.Detail
		}
		return &APIError{Status: resp.StatusCode, Detail: detail}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Signup registers a new account and returns the issued access token.
func (c *Client) Signup(ctx context.Context, name, email, password string) (string, error) {
	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/signup", signupRequest{Email: email, Password: password, Name: name}, &resp)
	if err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// Me is the identity check used at session bootstrap.
func (c *Client) Me(ctx context.Context) (*store.User, error) {
	var user store.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) PresetHabits(ctx context.Context) ([]core.PresetHabit, error) {
	var presets []core.PresetHabit
	if err := c.do(ctx, http.MethodGet, "/api/preset-habits", nil, &presets); err != nil {
		return nil, err
	}
	return presets, nil
}

func (c *Client) Habits(ctx context.Context) ([]store.Habit, error) {
	var habits []store.Habit
	if err := c.do(ctx, http.MethodGet, "/api/habits", nil, &habits); err != nil {
		return nil, err
	}
	return habits, nil
}

type createHabitRequest struct {
	HabitType   string  `json:"habit_type"`
	HabitName   string  `json:"habit_name"`
	Description *string `json:"description,omitempty"`
}

func (c *Client) CreateHabit(ctx context.Context, habitType, habitName string, description *string) (*store.Habit, error) {
	var habit store.Habit
	req := createHabitRequest{HabitType: habitType, HabitName: habitName, Description: description}
	if err := c.do(ctx, http.MethodPost, "/api/habits", req, &habit); err != nil {
		return nil, err
	}
	return &habit, nil
}

func (c *Client) DeleteHabit(ctx context.Context, habitID string) error {
	return c.do(ctx, http.MethodDelete, "/api/habits/"+habitID, nil, nil)
}

func (c *Client) Progress(ctx context.Context) (*core.ProgressStats, error) {
	var stats core.ProgressStats
	if err := c.do(ctx, http.MethodGet, "/api/progress", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Insights regenerates coaching insights. Callers are expected to treat a
// failure as an empty list rather than an error surface.
func (c *Client) Insights(ctx context.Context) ([]core.Insight, error) {
	var insights []core.Insight
	if err := c.do(ctx, http.MethodPost, "/api/ai/insights", struct{}{}, &insights); err != nil {
		return nil, err
	}
	return insights, nil
}
