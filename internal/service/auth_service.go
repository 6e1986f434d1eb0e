package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/events"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// RegisterCommand carries a self-service sign-up.
type RegisterCommand struct {
	Name     string `json:"name" validate:"required,max=100"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"omitempty,email,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	IsCoach  bool   `json:"isCoach"`
}

// LoginCommand carries credentials.
type LoginCommand struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string
	User  *domain.User
}

// AuthService handles sign-up and sign-in.
type AuthService interface {
	Register(ctx context.Context, cmd RegisterCommand) (*AuthResult, error)
	Login(ctx context.Context, cmd LoginCommand) (*AuthResult, error)
}

// authService implements the AuthService interface.
type authService struct {
	userRepo  repository.UserRepository
	tokens    TokenService
	bus       *events.Bus
	validator *validation.Validator
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, tokens TokenService, bus *events.Bus, v *validation.Validator) AuthService {
	return &authService{
		userRepo:  userRepo,
		tokens:    tokens,
		bus:       bus,
		validator: v,
	}
}

// Register creates an account and signs the new user in. Username
// uniqueness is decided by the store, not by a prior lookup.
func (s *authService) Register(ctx context.Context, cmd RegisterCommand) (*AuthResult, error) {
	if err := validate(s.validator, cmd); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := domain.RoleUser
	if cmd.IsCoach {
		role = domain.RoleCoach
	}

	user := &domain.User{
		Name:         cmd.Name,
		Username:     cmd.Username,
		Email:        cmd.Email,
		PasswordHash: string(hashedPassword),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}

	if _, err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	s.bus.UserCreated.Publish(ctx, events.UserCreated{
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Login verifies credentials and issues a token.
func (s *authService) Login(ctx context.Context, cmd LoginCommand) (*AuthResult, error) {
	if err := validate(s.validator, cmd); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByUsername(ctx, cmd.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// Accounts created by a coach have no password and cannot sign in.
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(cmd.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}
