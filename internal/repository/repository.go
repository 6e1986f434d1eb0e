package repository

import (
	"alcyxob/workout-tracker/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	// Create returns ErrDuplicate when the username is already taken.
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetAll(ctx context.Context) ([]domain.User, error)
	GetByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// ExerciseRepository defines the interface for interacting with exercise data.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetAll(ctx context.Context) ([]domain.Exercise, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	SetMediaKey(ctx context.Context, id primitive.ObjectID, key string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	// IsReferenced reports whether any workout line points at the exercise.
	IsReferenced(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// WorkoutRepository defines the interface for interacting with workout data.
// Reads return workouts with every line's Exercise populated.
type WorkoutRepository interface {
	// Create persists the workout together with its lines in a single write.
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.Workout, error)
	GetUnassigned(ctx context.Context) ([]domain.Workout, error)
	Update(ctx context.Context, workout *domain.Workout) error
	SetCompleted(ctx context.Context, id primitive.ObjectID, completed bool) error
	// AssignIfUnassigned sets the athlete only when none is set yet. It
	// returns false when no unassigned workout with that id matched.
	AssignIfUnassigned(ctx context.Context, id, athleteID primitive.ObjectID, coachID *primitive.ObjectID, date time.Time) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByAthleteID(ctx context.Context, athleteID primitive.ObjectID) (int64, error)
	ClearCoach(ctx context.Context, coachID primitive.ObjectID) error
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// WorkoutExerciseRepository manages the lines of a workout.
type WorkoutExerciseRepository interface {
	Add(ctx context.Context, line *domain.WorkoutExercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutExercise, error)
	Update(ctx context.Context, line *domain.WorkoutExercise) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}
