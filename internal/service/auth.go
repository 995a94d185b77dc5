package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gatherpoint/gatherpoint/internal/model"
	"github.com/gatherpoint/gatherpoint/internal/repository"
	"github.com/gatherpoint/gatherpoint/pkg/token"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles account creation and credential verification. It is
// the identity provider the reservation engine consumes: the engine itself
// never authenticates, it only sees the resolved user id.
type AuthService struct {
	users  repository.UserStore
	tokens *token.Service
}

// NewAuthService constructs an AuthService.
func NewAuthService(users repository.UserStore, tokens *token.Service) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register creates an account and returns a signed token for it.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" {
		return nil, ErrNameRequired
	}
	if !isValidEmail(req.Email) {
		return nil, ErrInvalidEmail
	}
	if len(req.Password) < 8 {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.respond(user)
}

// Login verifies credentials and returns a signed token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return s.respond(user)
}

// Me returns the account behind a resolved identity.
func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// VerifyToken resolves a bearer token to its claims. Used by the auth
// middleware.
func (s *AuthService) VerifyToken(tokenString string) (*token.Claims, error) {
	return s.tokens.Verify(tokenString)
}

func (s *AuthService) respond(user *model.User) (*model.AuthResponse, error) {
	signed, err := s.tokens.Sign(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{Token: signed, User: user}, nil
}

// isValidEmail does a basic structural check (no external deps).
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
