package service

import (
	"context"
	"errors"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/events"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/validation"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateUserCommand is used by coaches to add an athlete profile. The
// account has no password until its owner registers credentials.
type CreateUserCommand struct {
	Name     string `json:"name" validate:"required,max=100"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"omitempty,email,max=100"`
}

// UpdateUserCommand changes profile fields.
type UpdateUserCommand struct {
	ID    primitive.ObjectID `json:"-"`
	Name  string             `json:"name" validate:"required,max=100"`
	Email string             `json:"email" validate:"omitempty,email,max=100"`
}

// UserService manages user profiles.
type UserService interface {
	CreateUser(ctx context.Context, cmd CreateUserCommand) (primitive.ObjectID, error)
	GetUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	ListAthletes(ctx context.Context) ([]domain.User, error)
	ListCoaches(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, cmd UpdateUserCommand) error
	// DeleteUser removes the user together with the workouts they hold as
	// athlete, and forgets them as the assigning coach elsewhere.
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
}

type userService struct {
	userRepo    repository.UserRepository
	workoutRepo repository.WorkoutRepository
	bus         *events.Bus
	validator   *validation.Validator
}

// NewUserService creates a new instance of userService.
func NewUserService(userRepo repository.UserRepository, workoutRepo repository.WorkoutRepository, bus *events.Bus, v *validation.Validator) UserService {
	return &userService{
		userRepo:    userRepo,
		workoutRepo: workoutRepo,
		bus:         bus,
		validator:   v,
	}
}

func (s *userService) CreateUser(ctx context.Context, cmd CreateUserCommand) (primitive.ObjectID, error) {
	if err := validate(s.validator, cmd); err != nil {
		return primitive.NilObjectID, err
	}

	user := &domain.User{
		Name:      cmd.Name,
		Username:  cmd.Username,
		Email:     cmd.Email,
		Role:      domain.RoleUser,
		CreatedAt: time.Now().UTC(),
	}

	id, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return primitive.NilObjectID, ErrUsernameTaken
		}
		return primitive.NilObjectID, err
	}

	s.bus.UserCreated.Publish(ctx, events.UserCreated{
		UserID:    id,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
	return id, nil
}

func (s *userService) GetUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.GetAll(ctx)
}

// ListAthletes returns the coach's roster: every user with the User role.
func (s *userService) ListAthletes(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.GetByRole(ctx, domain.RoleUser)
}

func (s *userService) ListCoaches(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.GetByRole(ctx, domain.RoleCoach)
}

func (s *userService) UpdateUser(ctx context.Context, cmd UpdateUserCommand) error {
	if err := validate(s.validator, cmd); err != nil {
		return err
	}

	user, err := s.GetUser(ctx, cmd.ID)
	if err != nil {
		return err
	}

	user.Name = cmd.Name
	user.Email = cmd.Email
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *userService) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	ok, err := s.userRepo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserNotFound
	}

	// Dependents first, so a failed call can simply be repeated.
	if _, err := s.workoutRepo.DeleteByAthleteID(ctx, id); err != nil {
		return err
	}
	if err := s.workoutRepo.ClearCoach(ctx, id); err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
