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

// WorkoutLineInput prescribes one exercise inside a workout.
type WorkoutLineInput struct {
	ExerciseID primitive.ObjectID `json:"exerciseId" validate:"required"`
	Sets       int                `json:"sets" validate:"gte=1,lte=20"`
	Reps       int                `json:"reps" validate:"gte=1,lte=500"`
	Weight     *domain.Weight     `json:"weight" validate:"omitempty,gte=0"`
	Notes      string             `json:"notes" validate:"max=500"`
}

// CreateWorkoutCommand creates a workout with its lines. AthleteID may be
// nil, which leaves the workout unassigned.
type CreateWorkoutCommand struct {
	Name      string              `json:"name" validate:"required,max=100"`
	Date      time.Time           `json:"date" validate:"required,notpast30d"`
	AthleteID *primitive.ObjectID `json:"athleteId"`
	CoachID   primitive.ObjectID  `json:"-"`
	Exercises []WorkoutLineInput  `json:"exercises" validate:"dive"`
}

// AssignWorkoutCommand hands an unassigned workout to an athlete.
type AssignWorkoutCommand struct {
	WorkoutID      primitive.ObjectID  `json:"-"`
	AthleteID      primitive.ObjectID  `json:"athleteId" validate:"required"`
	CoachID        *primitive.ObjectID `json:"-"`
	AssignmentDate *time.Time          `json:"assignmentDate"` // now when nil
}

// UpdateWorkoutCommand replaces the editable fields of a workout.
type UpdateWorkoutCommand struct {
	ID          primitive.ObjectID `json:"-"`
	Name        string             `json:"name" validate:"required,max=100"`
	Date        time.Time          `json:"date" validate:"required"`
	IsCompleted bool               `json:"isCompleted"`
}

// AddExerciseCommand appends a line to an existing workout.
type AddExerciseCommand struct {
	WorkoutID  primitive.ObjectID `json:"-"`
	ExerciseID primitive.ObjectID `json:"exerciseId" validate:"required"`
	Sets       int                `json:"sets" validate:"gte=1,lte=20"`
	Reps       int                `json:"reps" validate:"gte=1,lte=500"`
	Weight     *domain.Weight     `json:"weight" validate:"omitempty,gte=0"`
	Notes      string             `json:"notes" validate:"max=500"`
}

// UpdateWorkoutExerciseCommand replaces a line's prescription. A nil weight
// clears it.
type UpdateWorkoutExerciseCommand struct {
	ID     primitive.ObjectID `json:"-"`
	Sets   int                `json:"sets" validate:"gte=1,lte=20"`
	Reps   int                `json:"reps" validate:"gte=1,lte=500"`
	Weight *domain.Weight     `json:"weight" validate:"omitempty,gte=0"`
	Notes  string             `json:"notes" validate:"max=500"`
}

// WorkoutService covers the workout life cycle: planning by a coach,
// assignment, and execution by the athlete.
type WorkoutService interface {
	CreateWorkout(ctx context.Context, cmd CreateWorkoutCommand) (primitive.ObjectID, error)
	AssignWorkout(ctx context.Context, cmd AssignWorkoutCommand) error
	GetWorkout(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	ListAthleteWorkouts(ctx context.Context, athleteID primitive.ObjectID) ([]domain.Workout, error)
	ListUnassigned(ctx context.Context) ([]domain.Workout, error)
	UpdateWorkout(ctx context.Context, cmd UpdateWorkoutCommand) error
	DeleteWorkout(ctx context.Context, id primitive.ObjectID) error

	AddExercise(ctx context.Context, cmd AddExerciseCommand) (primitive.ObjectID, error)
	UpdateWorkoutExercise(ctx context.Context, cmd UpdateWorkoutExerciseCommand) error
	RemoveWorkoutExercise(ctx context.Context, id primitive.ObjectID) error

	StartWorkout(ctx context.Context, id primitive.ObjectID) error
	CompleteWorkout(ctx context.Context, id primitive.ObjectID) error
}

// workoutService implements the WorkoutService interface.
type workoutService struct {
	userRepo     repository.UserRepository
	exerciseRepo repository.ExerciseRepository
	workoutRepo  repository.WorkoutRepository
	lineRepo     repository.WorkoutExerciseRepository
	bus          *events.Bus
	validator    *validation.Validator
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(
	userRepo repository.UserRepository,
	exerciseRepo repository.ExerciseRepository,
	workoutRepo repository.WorkoutRepository,
	lineRepo repository.WorkoutExerciseRepository,
	bus *events.Bus,
	v *validation.Validator,
) WorkoutService {
	return &workoutService{
		userRepo:     userRepo,
		exerciseRepo: exerciseRepo,
		workoutRepo:  workoutRepo,
		lineRepo:     lineRepo,
		bus:          bus,
		validator:    v,
	}
}

// === Planning ===

// CreateWorkout persists the workout and all of its lines in one write.
func (s *workoutService) CreateWorkout(ctx context.Context, cmd CreateWorkoutCommand) (primitive.ObjectID, error) {
	if err := validate(s.validator, cmd); err != nil {
		return primitive.NilObjectID, err
	}

	if err := s.requireCoach(ctx, cmd.CoachID); err != nil {
		return primitive.NilObjectID, err
	}

	if cmd.AthleteID != nil {
		if err := s.requireUser(ctx, *cmd.AthleteID, ErrAthleteNotFound); err != nil {
			return primitive.NilObjectID, err
		}
	}

	if err := s.requireExercises(ctx, cmd.Exercises); err != nil {
		return primitive.NilObjectID, err
	}

	workout := &domain.Workout{
		Name:      cmd.Name,
		Date:      cmd.Date.UTC(),
		AthleteID: cmd.AthleteID,
		Exercises: make([]domain.WorkoutExercise, 0, len(cmd.Exercises)),
	}
	if cmd.AthleteID != nil {
		coachID := cmd.CoachID
		workout.AssignedByCoachID = &coachID
	}
	for _, in := range cmd.Exercises {
		workout.Exercises = append(workout.Exercises, domain.WorkoutExercise{
			ExerciseID: in.ExerciseID,
			Sets:       in.Sets,
			Reps:       in.Reps,
			Weight:     in.Weight,
			Notes:      in.Notes,
		})
	}

	return s.workoutRepo.Create(ctx, workout)
}

// AssignWorkout gives a still unassigned workout to an athlete. The final
// write only succeeds while the workout has no athlete, so of two
// concurrent calls exactly one wins.
func (s *workoutService) AssignWorkout(ctx context.Context, cmd AssignWorkoutCommand) error {
	if err := validate(s.validator, cmd); err != nil {
		return err
	}

	workout, err := s.GetWorkout(ctx, cmd.WorkoutID)
	if err != nil {
		return err
	}
	if workout.IsAssigned() {
		return ErrWorkoutAlreadyAssigned
	}

	if err := s.requireUser(ctx, cmd.AthleteID, ErrAthleteNotFound); err != nil {
		return err
	}

	date := time.Now().UTC()
	if cmd.AssignmentDate != nil && !cmd.AssignmentDate.IsZero() {
		date = cmd.AssignmentDate.UTC()
	}

	assigned, err := s.workoutRepo.AssignIfUnassigned(ctx, cmd.WorkoutID, cmd.AthleteID, cmd.CoachID, date)
	if err != nil {
		return err
	}
	if !assigned {
		// Lost a race, or the workout was deleted in between.
		ok, err := s.workoutRepo.Exists(ctx, cmd.WorkoutID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrWorkoutNotFound
		}
		return ErrWorkoutAlreadyAssigned
	}
	return nil
}

// === Reads ===

// GetWorkout returns the workout with every line's exercise populated.
func (s *workoutService) GetWorkout(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return workout, nil
}

// ListAthleteWorkouts returns the athlete's workouts, newest first.
func (s *workoutService) ListAthleteWorkouts(ctx context.Context, athleteID primitive.ObjectID) ([]domain.Workout, error) {
	if err := s.requireUser(ctx, athleteID, ErrUserNotFound); err != nil {
		return nil, err
	}
	return s.workoutRepo.GetByAthleteID(ctx, athleteID)
}

func (s *workoutService) ListUnassigned(ctx context.Context) ([]domain.Workout, error) {
	return s.workoutRepo.GetUnassigned(ctx)
}

// === Edits ===

func (s *workoutService) UpdateWorkout(ctx context.Context, cmd UpdateWorkoutCommand) error {
	if err := validate(s.validator, cmd); err != nil {
		return err
	}

	workout := &domain.Workout{
		ID:          cmd.ID,
		Name:        cmd.Name,
		Date:        cmd.Date.UTC(),
		IsCompleted: cmd.IsCompleted,
	}
	if err := s.workoutRepo.Update(ctx, workout); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutNotFound
		}
		return err
	}
	return nil
}

// DeleteWorkout removes the workout; its lines are embedded and go with it.
func (s *workoutService) DeleteWorkout(ctx context.Context, id primitive.ObjectID) error {
	if err := s.workoutRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutNotFound
		}
		return err
	}
	return nil
}

func (s *workoutService) AddExercise(ctx context.Context, cmd AddExerciseCommand) (primitive.ObjectID, error) {
	if err := validate(s.validator, cmd); err != nil {
		return primitive.NilObjectID, err
	}

	ok, err := s.workoutRepo.Exists(ctx, cmd.WorkoutID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if !ok {
		return primitive.NilObjectID, ErrWorkoutNotFound
	}

	ok, err = s.exerciseRepo.Exists(ctx, cmd.ExerciseID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if !ok {
		return primitive.NilObjectID, ErrExerciseNotFound
	}

	line := &domain.WorkoutExercise{
		WorkoutID:  cmd.WorkoutID,
		ExerciseID: cmd.ExerciseID,
		Sets:       cmd.Sets,
		Reps:       cmd.Reps,
		Weight:     cmd.Weight,
		Notes:      cmd.Notes,
	}
	id, err := s.lineRepo.Add(ctx, line)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return primitive.NilObjectID, ErrWorkoutNotFound
		}
		return primitive.NilObjectID, err
	}
	return id, nil
}

func (s *workoutService) UpdateWorkoutExercise(ctx context.Context, cmd UpdateWorkoutExerciseCommand) error {
	if err := validate(s.validator, cmd); err != nil {
		return err
	}

	line, err := s.lineRepo.GetByID(ctx, cmd.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutExerciseNotFound
		}
		return err
	}

	line.Sets = cmd.Sets
	line.Reps = cmd.Reps
	line.Weight = cmd.Weight
	line.Notes = cmd.Notes
	if err := s.lineRepo.Update(ctx, line); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutExerciseNotFound
		}
		return err
	}
	return nil
}

func (s *workoutService) RemoveWorkoutExercise(ctx context.Context, id primitive.ObjectID) error {
	if err := s.lineRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutExerciseNotFound
		}
		return err
	}
	return nil
}

// === Execution ===

// StartWorkout only announces the start; nothing is stored.
func (s *workoutService) StartWorkout(ctx context.Context, id primitive.ObjectID) error {
	workout, err := s.assignedWorkout(ctx, id)
	if err != nil {
		return err
	}

	s.bus.WorkoutStarted.Publish(ctx, events.WorkoutStarted{
		WorkoutID:   workout.ID,
		AthleteID:   *workout.AthleteID,
		WorkoutName: workout.Name,
		StartedAt:   time.Now().UTC(),
	})
	return nil
}

// CompleteWorkout marks the workout done and announces it.
func (s *workoutService) CompleteWorkout(ctx context.Context, id primitive.ObjectID) error {
	workout, err := s.assignedWorkout(ctx, id)
	if err != nil {
		return err
	}

	if err := s.workoutRepo.SetCompleted(ctx, id, true); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutNotFound
		}
		return err
	}

	s.bus.WorkoutCompleted.Publish(ctx, events.WorkoutCompleted{
		WorkoutID:   workout.ID,
		AthleteID:   *workout.AthleteID,
		WorkoutName: workout.Name,
		CompletedAt: time.Now().UTC(),
	})
	return nil
}

// === Helpers ===

func (s *workoutService) assignedWorkout(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.GetWorkout(ctx, id)
	if err != nil {
		return nil, err
	}
	if !workout.IsAssigned() {
		return nil, ErrWorkoutNotAssigned
	}
	return workout, nil
}

// requireCoach fails with ErrNotCoach unless id names a user with the Coach role.
func (s *workoutService) requireCoach(ctx context.Context, id primitive.ObjectID) error {
	coach, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotCoach
		}
		return err
	}
	if !coach.IsCoach() {
		return ErrNotCoach
	}
	return nil
}

func (s *workoutService) requireUser(ctx context.Context, id primitive.ObjectID, notFound error) error {
	ok, err := s.userRepo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound
	}
	return nil
}

// requireExercises fails with a NotFound naming the first listed exercise
// id that does not exist.
func (s *workoutService) requireExercises(ctx context.Context, lines []WorkoutLineInput) error {
	if len(lines) == 0 {
		return nil
	}

	ids := make([]primitive.ObjectID, 0, len(lines))
	seen := make(map[primitive.ObjectID]bool, len(lines))
	for _, l := range lines {
		if !seen[l.ExerciseID] {
			seen[l.ExerciseID] = true
			ids = append(ids, l.ExerciseID)
		}
	}

	found, err := s.exerciseRepo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	present := make(map[primitive.ObjectID]bool, len(found))
	for _, e := range found {
		present[e.ID] = true
	}
	for _, id := range ids {
		if !present[id] {
			return notFoundf("exercise %s not found", id.Hex())
		}
	}
	return nil
}
