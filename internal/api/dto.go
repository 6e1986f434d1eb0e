package api

import (
	"time"

	"alcyxob/workout-tracker/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserResponse excludes sensitive info like password hash
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
func MapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:        user.ID.Hex(),
		Name:      user.Name,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

func MapUsersToResponse(users []domain.User) []UserResponse {
	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = MapUserToResponse(&users[i])
	}
	return responses
}

// ExerciseResponse is the DTO for returning exercise details.
type ExerciseResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	MuscleGroup domain.MuscleGroup `json:"muscleGroup"`
	HasMedia    bool               `json:"hasMedia"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse DTO.
func MapExerciseToResponse(ex *domain.Exercise) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	return ExerciseResponse{
		ID:          ex.ID.Hex(),
		Name:        ex.Name,
		Description: ex.Description,
		MuscleGroup: ex.MuscleGroup,
		HasMedia:    ex.HasMedia(),
		CreatedAt:   ex.CreatedAt,
		UpdatedAt:   ex.UpdatedAt,
	}
}

// MapExercisesToResponse converts a slice of domain.Exercise to a slice of ExerciseResponse DTO.
func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = MapExerciseToResponse(&exercises[i])
	}
	return responses
}

// WorkoutExerciseResponse is one line of a workout, flattened with the
// referenced exercise's details.
type WorkoutExerciseResponse struct {
	ID          string             `json:"id"`
	WorkoutID   string             `json:"workoutId"`
	ExerciseID  string             `json:"exerciseId"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	MuscleGroup domain.MuscleGroup `json:"muscleGroup"`
	Sets        int                `json:"sets"`
	Reps        int                `json:"reps"`
	Weight      *domain.Weight     `json:"weight"`
	Notes       string             `json:"notes"`
}

type WorkoutResponse struct {
	ID                string                    `json:"id"`
	Name              string                    `json:"name"`
	Date              time.Time                 `json:"date"`
	IsCompleted       bool                      `json:"isCompleted"`
	AthleteID         *string                   `json:"athleteId"`
	AssignedByCoachID *string                   `json:"assignedByCoachId,omitempty"`
	Exercises         []WorkoutExerciseResponse `json:"exercises"`
	CreatedAt         time.Time                 `json:"createdAt"`
	UpdatedAt         time.Time                 `json:"updatedAt"`
}

func hexOrNil(id *primitive.ObjectID) *string {
	if id == nil || *id == primitive.NilObjectID {
		return nil
	}
	s := id.Hex()
	return &s
}

// MapWorkoutToResponse converts a populated domain.Workout to its DTO.
func MapWorkoutToResponse(w *domain.Workout) WorkoutResponse {
	if w == nil {
		return WorkoutResponse{}
	}

	lines := make([]WorkoutExerciseResponse, len(w.Exercises))
	for i, we := range w.Exercises {
		line := WorkoutExerciseResponse{
			ID:         we.ID.Hex(),
			WorkoutID:  w.ID.Hex(),
			ExerciseID: we.ExerciseID.Hex(),
			Sets:       we.Sets,
			Reps:       we.Reps,
			Weight:     we.Weight,
			Notes:      we.Notes,
		}
		if we.Exercise != nil {
			line.Name = we.Exercise.Name
			line.Description = we.Exercise.Description
			line.MuscleGroup = we.Exercise.MuscleGroup
		}
		lines[i] = line
	}

	return WorkoutResponse{
		ID:                w.ID.Hex(),
		Name:              w.Name,
		Date:              w.Date,
		IsCompleted:       w.IsCompleted,
		AthleteID:         hexOrNil(w.AthleteID),
		AssignedByCoachID: hexOrNil(w.AssignedByCoachID),
		Exercises:         lines,
		CreatedAt:         w.CreatedAt,
		UpdatedAt:         w.UpdatedAt,
	}
}

func MapWorkoutsToResponse(workouts []domain.Workout) []WorkoutResponse {
	responses := make([]WorkoutResponse, len(workouts))
	for i := range workouts {
		responses[i] = MapWorkoutToResponse(&workouts[i])
	}
	return responses
}
