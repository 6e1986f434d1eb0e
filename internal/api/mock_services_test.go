package api

import (
	"context"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/service"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ── Mock TokenService ──

type mockTokens struct {
	ids map[string]primitive.ObjectID
}

func (m *mockTokens) Issue(user *domain.User) (string, error) {
	token := "token-" + user.ID.Hex()
	m.ids[token] = user.ID
	return token, nil
}

func (m *mockTokens) ParseUserID(token string) (primitive.ObjectID, bool) {
	id, ok := m.ids[token]
	return id, ok
}

// ── Mock AuthService ──

type mockAuthService struct {
	registerResult *service.AuthResult
	registerErr    error
	lastRegister   service.RegisterCommand
	loginResult    *service.AuthResult
	loginErr       error
}

func (m *mockAuthService) Register(_ context.Context, cmd service.RegisterCommand) (*service.AuthResult, error) {
	m.lastRegister = cmd
	return m.registerResult, m.registerErr
}

func (m *mockAuthService) Login(_ context.Context, _ service.LoginCommand) (*service.AuthResult, error) {
	return m.loginResult, m.loginErr
}

// ── Mock UserService ──

type mockUserService struct {
	users map[primitive.ObjectID]*domain.User

	createID   primitive.ObjectID
	createErr  error
	updateErr  error
	lastUpdate service.UpdateUserCommand
	deleteErr  error
	listErr    error
}

func (m *mockUserService) CreateUser(_ context.Context, _ service.CreateUserCommand) (primitive.ObjectID, error) {
	return m.createID, m.createErr
}

func (m *mockUserService) GetUser(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, service.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserService) ListUsers(_ context.Context) ([]domain.User, error) {
	return m.byRole(""), m.listErr
}

func (m *mockUserService) ListAthletes(_ context.Context) ([]domain.User, error) {
	return m.byRole(domain.RoleUser), m.listErr
}

func (m *mockUserService) ListCoaches(_ context.Context) ([]domain.User, error) {
	return m.byRole(domain.RoleCoach), m.listErr
}

func (m *mockUserService) byRole(role domain.Role) []domain.User {
	out := []domain.User{}
	for _, u := range m.users {
		if role == "" || u.Role == role {
			out = append(out, *u)
		}
	}
	return out
}

func (m *mockUserService) UpdateUser(_ context.Context, cmd service.UpdateUserCommand) error {
	m.lastUpdate = cmd
	return m.updateErr
}

func (m *mockUserService) DeleteUser(_ context.Context, _ primitive.ObjectID) error {
	return m.deleteErr
}

// ── Mock ExerciseService ──

type mockExerciseService struct {
	exercise   *domain.Exercise
	exercises  []domain.Exercise
	createID   primitive.ObjectID
	lastCreate service.CreateExerciseCommand
	err        error
	upload     *service.MediaUpload
	mediaURL   string
}

func (m *mockExerciseService) CreateExercise(_ context.Context, cmd service.CreateExerciseCommand) (primitive.ObjectID, error) {
	m.lastCreate = cmd
	return m.createID, m.err
}

func (m *mockExerciseService) GetExercise(_ context.Context, _ primitive.ObjectID) (*domain.Exercise, error) {
	return m.exercise, m.err
}

func (m *mockExerciseService) ListExercises(_ context.Context) ([]domain.Exercise, error) {
	return m.exercises, m.err
}

func (m *mockExerciseService) UpdateExercise(_ context.Context, _ service.UpdateExerciseCommand) error {
	return m.err
}

func (m *mockExerciseService) DeleteExercise(_ context.Context, _ primitive.ObjectID) error {
	return m.err
}

func (m *mockExerciseService) RequestMediaUpload(_ context.Context, _ primitive.ObjectID, _ string) (*service.MediaUpload, error) {
	return m.upload, m.err
}

func (m *mockExerciseService) ConfirmMedia(_ context.Context, _ primitive.ObjectID, _ string) error {
	return m.err
}

func (m *mockExerciseService) GetMediaURL(_ context.Context, _ primitive.ObjectID) (string, error) {
	return m.mediaURL, m.err
}

// ── Mock WorkoutService ──

type mockWorkoutService struct {
	workout  *domain.Workout
	workouts []domain.Workout
	id       primitive.ObjectID
	err      error

	lastCreate service.CreateWorkoutCommand
	lastAssign service.AssignWorkoutCommand
	lastAdd    service.AddExerciseCommand
	completed  int
}

func (m *mockWorkoutService) CreateWorkout(_ context.Context, cmd service.CreateWorkoutCommand) (primitive.ObjectID, error) {
	m.lastCreate = cmd
	return m.id, m.err
}

func (m *mockWorkoutService) AssignWorkout(_ context.Context, cmd service.AssignWorkoutCommand) error {
	m.lastAssign = cmd
	return m.err
}

func (m *mockWorkoutService) GetWorkout(_ context.Context, _ primitive.ObjectID) (*domain.Workout, error) {
	if m.workout == nil {
		return nil, service.ErrWorkoutNotFound
	}
	return m.workout, nil
}

func (m *mockWorkoutService) ListAthleteWorkouts(_ context.Context, _ primitive.ObjectID) ([]domain.Workout, error) {
	return m.workouts, m.err
}

func (m *mockWorkoutService) ListUnassigned(_ context.Context) ([]domain.Workout, error) {
	return m.workouts, m.err
}

func (m *mockWorkoutService) UpdateWorkout(_ context.Context, _ service.UpdateWorkoutCommand) error {
	return m.err
}

func (m *mockWorkoutService) DeleteWorkout(_ context.Context, _ primitive.ObjectID) error {
	return m.err
}

func (m *mockWorkoutService) AddExercise(_ context.Context, cmd service.AddExerciseCommand) (primitive.ObjectID, error) {
	m.lastAdd = cmd
	return m.id, m.err
}

func (m *mockWorkoutService) UpdateWorkoutExercise(_ context.Context, _ service.UpdateWorkoutExerciseCommand) error {
	return m.err
}

func (m *mockWorkoutService) RemoveWorkoutExercise(_ context.Context, _ primitive.ObjectID) error {
	return m.err
}

func (m *mockWorkoutService) StartWorkout(_ context.Context, _ primitive.ObjectID) error {
	return m.err
}

func (m *mockWorkoutService) CompleteWorkout(_ context.Context, _ primitive.ObjectID) error {
	if m.err == nil {
		m.completed++
	}
	return m.err
}
