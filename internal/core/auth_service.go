package core

import (
	"errors"
	"fmt"

	"greensteps.app/greensteps/internal/auth"
	"greensteps.app/greensteps/internal/store"
)

var (
	// ErrEmailTaken indicates signup with an already registered email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials indicates a failed login attempt.
	ErrInvalidCredentials = errors.New("incorrect email or password")
)

// UserRepository is the subset of the store the auth service needs.
type UserRepository interface {
	CreateUser(email, name, passwordHash string) (*store.User, error)
	GetUserByEmail(email string) (*store.User, error)
	GetUserByID(id string) (*store.User, error)
}

type AuthService struct {
	users UserRepository
}

func NewAuthService(users UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Signup registers a new user and returns an access token.
func (s *AuthService) Signup(email, password, name string) (string, error) {
	existing, err := s.users.GetUserByEmail(email)
	if err != nil {
		return "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return "", ErrEmailTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(email, name, hash)
	if err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	return auth.GenerateJWT(user.ID)
}

// Login verifies credentials and returns an access token.
func (s *AuthService) Login(email, password string) (string, error) {
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !auth.CheckPasswordHash(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	return auth.GenerateJWT(user.ID)
}

// GetUser resolves a token subject to a user record. Returns (nil, nil)
// when the user no longer exists.
func (s *AuthService) GetUser(userID string) (*store.User, error) {
	return s.users.GetUserByID(userID)
}
