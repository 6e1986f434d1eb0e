package api

import (
	"net/http"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// WorkoutHandler serves workout planning, assignment and execution.
type WorkoutHandler struct {
	workoutService service.WorkoutService
	logger         *zap.Logger
}

func NewWorkoutHandler(workoutService service.WorkoutService, logger *zap.Logger) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService, logger: logger}
}

// --- Request DTOs ---

// WorkoutLineRequest prescribes one exercise. Weight is optional.
type WorkoutLineRequest struct {
	ExerciseID string         `json:"exerciseId"`
	Sets       int            `json:"sets"`
	Reps       int            `json:"reps"`
	Weight     *domain.Weight `json:"weight"`
	Notes      string         `json:"notes"`
}

type CreateWorkoutRequest struct {
	Name      string               `json:"name"`
	Date      time.Time            `json:"date"`
	AthleteID string               `json:"athleteId"` // empty leaves the workout unassigned
	Exercises []WorkoutLineRequest `json:"exercises"`
}

type AssignWorkoutRequest struct {
	AthleteID      string     `json:"athleteId"`
	AssignmentDate *time.Time `json:"assignmentDate"`
}

type UpdateWorkoutRequest struct {
	Name        string    `json:"name"`
	Date        time.Time `json:"date"`
	IsCompleted bool      `json:"isCompleted"`
}

type UpdateWorkoutExerciseRequest struct {
	Sets   int            `json:"sets"`
	Reps   int            `json:"reps"`
	Weight *domain.Weight `json:"weight"`
	Notes  string         `json:"notes"`
}

func (r WorkoutLineRequest) toInput() (service.WorkoutLineInput, error) {
	exerciseID, err := parseObjectIDOrNil(r.ExerciseID)
	if err != nil {
		return service.WorkoutLineInput{}, err
	}
	return service.WorkoutLineInput{
		ExerciseID: exerciseID,
		Sets:       r.Sets,
		Reps:       r.Reps,
		Weight:     r.Weight,
		Notes:      r.Notes,
	}, nil
}

// toCommand builds the create command; the caller is recorded as the coach.
func (r CreateWorkoutRequest) toCommand(coachID primitive.ObjectID) (service.CreateWorkoutCommand, error) {
	athleteID, err := parseOptionalObjectID(r.AthleteID)
	if err != nil {
		return service.CreateWorkoutCommand{}, err
	}

	lines := make([]service.WorkoutLineInput, 0, len(r.Exercises))
	for _, l := range r.Exercises {
		in, err := l.toInput()
		if err != nil {
			return service.CreateWorkoutCommand{}, err
		}
		lines = append(lines, in)
	}

	return service.CreateWorkoutCommand{
		Name:      r.Name,
		Date:      r.Date,
		AthleteID: athleteID,
		CoachID:   coachID,
		Exercises: lines,
	}, nil
}

// --- Planning ---

// CreateWorkout godoc
// @Summary Create a workout
// @Description Creates a workout with its exercise lines. With athleteId it is assigned straight away.
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workout body CreateWorkoutRequest true "Workout details"
// @Success 201 {object} gin.H "id of the new workout"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 403 {object} gin.H "Forbidden (not a coach)"
// @Failure 404 {object} gin.H "Athlete or exercise not found"
// @Router /workouts [post]
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	h.createWorkout(c, false)
}

// CreateAndAssignWorkout godoc
// @Summary Create a workout and assign it to an athlete
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workout body CreateWorkoutRequest true "Workout details, athleteId required"
// @Success 201 {object} gin.H "id of the new workout"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 403 {object} gin.H "Forbidden (not a coach)"
// @Failure 404 {object} gin.H "Athlete or exercise not found"
// @Router /workouts/create-and-assign [post]
func (h *WorkoutHandler) CreateAndAssignWorkout(c *gin.Context) {
	h.createWorkout(c, true)
}

func (h *WorkoutHandler) createWorkout(c *gin.Context, requireAthlete bool) {
	coachID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	var req CreateWorkoutRequest
	if !bindJSON(c, &req) {
		return
	}
	if requireAthlete && req.AthleteID == "" {
		abortWithError(c, http.StatusBadRequest, "athleteId is required")
		return
	}

	cmd, err := req.toCommand(coachID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid ID format in request body")
		return
	}

	id, err := h.workoutService.CreateWorkout(c.Request.Context(), cmd)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id.Hex()})
}

// AssignWorkout godoc
// @Summary Assign an unassigned workout to an athlete
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Param assignment body AssignWorkoutRequest true "Athlete and optional date"
// @Success 200 {object} gin.H
// @Failure 400 {object} gin.H "Invalid input or workout already assigned"
// @Failure 404 {object} gin.H "Workout or athlete not found"
// @Router /workouts/{id}/assign [post]
func (h *WorkoutHandler) AssignWorkout(c *gin.Context) {
	workoutID, ok := paramObjectID(c, "id")
	if !ok {
		return
	}
	coachID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	var req AssignWorkoutRequest
	if !bindJSON(c, &req) {
		return
	}
	athleteID, err := parseObjectIDOrNil(req.AthleteID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid athleteId format")
		return
	}

	err = h.workoutService.AssignWorkout(c.Request.Context(), service.AssignWorkoutCommand{
		WorkoutID:      workoutID,
		AthleteID:      athleteID,
		CoachID:        &coachID,
		AssignmentDate: req.AssignmentDate,
	})
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Workout assigned successfully"})
}

// --- Reads ---

// ListUnassigned godoc
// @Summary List workouts not yet given to an athlete
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} WorkoutResponse
// @Failure 403 {object} gin.H "Forbidden (not a coach)"
// @Router /workouts/unassigned [get]
func (h *WorkoutHandler) ListUnassigned(c *gin.Context) {
	workouts, err := h.workoutService.ListUnassigned(c.Request.Context())
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutsToResponse(workouts))
}

// ListUserWorkouts godoc
// @Summary List an athlete's workouts, newest first
// @Description Athletes may only list their own workouts.
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Athlete ID"
// @Success 200 {array} WorkoutResponse
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 404 {object} gin.H "User not found"
// @Router /workouts/user/{userId} [get]
func (h *WorkoutHandler) ListUserWorkouts(c *gin.Context) {
	athleteID, ok := paramObjectID(c, "userId")
	if !ok {
		return
	}
	if !canActFor(c, athleteID) {
		abortWithError(c, http.StatusForbidden, "Access denied: cannot view another user's workouts")
		return
	}

	workouts, err := h.workoutService.ListAthleteWorkouts(c.Request.Context(), athleteID)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutsToResponse(workouts))
}

// GetWorkout godoc
// @Summary Get a workout with its exercises
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Success 200 {object} WorkoutResponse
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 404 {object} gin.H "Workout not found"
// @Router /workouts/{id} [get]
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	workout, ok := h.accessibleWorkout(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// --- Edits ---

// UpdateWorkout godoc
// @Summary Update a workout
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Param workout body UpdateWorkoutRequest true "Workout fields"
// @Success 200 {object} gin.H
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Workout not found"
// @Router /workouts/{id} [put]
func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	id, ok := paramObjectID(c, "id")
	if !ok {
		return
	}
	var req UpdateWorkoutRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.workoutService.UpdateWorkout(c.Request.Context(), service.UpdateWorkoutCommand{
		ID:          id,
		Name:        req.Name,
		Date:        req.Date,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Workout updated successfully"})
}

// DeleteWorkout godoc
// @Summary Delete a workout and its exercise lines
// @Tags Workouts
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Success 204 "No Content"
// @Failure 404 {object} gin.H "Workout not found"
// @Router /workouts/{id} [delete]
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	id, ok := paramObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.workoutService.DeleteWorkout(c.Request.Context(), id); err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddExercise godoc
// @Summary Add an exercise line to a workout
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Param line body WorkoutLineRequest true "Prescription"
// @Success 201 {object} gin.H "id of the new line"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 404 {object} gin.H "Workout or exercise not found"
// @Router /workouts/{id}/exercises [post]
func (h *WorkoutHandler) AddExercise(c *gin.Context) {
	workoutID, ok := paramObjectID(c, "id")
	if !ok {
		return
	}
	var req WorkoutLineRequest
	if !bindJSON(c, &req) {
		return
	}
	in, err := req.toInput()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exerciseId format")
		return
	}

	id, err := h.workoutService.AddExercise(c.Request.Context(), service.AddExerciseCommand{
		WorkoutID:  workoutID,
		ExerciseID: in.ExerciseID,
		Sets:       in.Sets,
		Reps:       in.Reps,
		Weight:     in.Weight,
		Notes:      in.Notes,
	})
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id.Hex()})
}

// UpdateWorkoutExercise godoc
// @Summary Change the prescription of a workout line
// @Description Omitting weight clears it.
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param weId path string true "Workout exercise ID"
// @Param line body UpdateWorkoutExerciseRequest true "Prescription"
// @Success 200 {object} gin.H
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 404 {object} gin.H "Workout exercise not found"
// @Router /workouts/exercises/{weId} [put]
func (h *WorkoutHandler) UpdateWorkoutExercise(c *gin.Context) {
	id, ok := paramObjectID(c, "weId")
	if !ok {
		return
	}
	var req UpdateWorkoutExerciseRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.workoutService.UpdateWorkoutExercise(c.Request.Context(), service.UpdateWorkoutExerciseCommand{
		ID:     id,
		Sets:   req.Sets,
		Reps:   req.Reps,
		Weight: req.Weight,
		Notes:  req.Notes,
	})
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Workout exercise updated successfully"})
}

// RemoveWorkoutExercise godoc
// @Summary Remove a line from its workout
// @Tags Workouts
// @Security BearerAuth
// @Param weId path string true "Workout exercise ID"
// @Success 204 "No Content"
// @Failure 404 {object} gin.H "Workout exercise not found"
// @Router /workouts/exercises/{weId} [delete]
func (h *WorkoutHandler) RemoveWorkoutExercise(c *gin.Context) {
	id, ok := paramObjectID(c, "weId")
	if !ok {
		return
	}

	if err := h.workoutService.RemoveWorkoutExercise(c.Request.Context(), id); err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Execution ---

// StartWorkout godoc
// @Summary Announce that the athlete started the workout
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Success 200 {object} gin.H
// @Failure 400 {object} gin.H "Workout not assigned"
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 404 {object} gin.H "Workout not found"
// @Router /workouts/{id}/start [post]
func (h *WorkoutHandler) StartWorkout(c *gin.Context) {
	workout, ok := h.accessibleWorkout(c)
	if !ok {
		return
	}

	if err := h.workoutService.StartWorkout(c.Request.Context(), workout.ID); err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Workout started"})
}

// CompleteWorkout godoc
// @Summary Mark the workout completed
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Success 200 {object} gin.H
// @Failure 400 {object} gin.H "Workout not assigned"
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 404 {object} gin.H "Workout not found"
// @Router /workouts/{id}/complete [post]
func (h *WorkoutHandler) CompleteWorkout(c *gin.Context) {
	workout, ok := h.accessibleWorkout(c)
	if !ok {
		return
	}

	if err := h.workoutService.CompleteWorkout(c.Request.Context(), workout.ID); err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Workout completed"})
}

// accessibleWorkout loads the workout named by the :id parameter and checks
// the caller may see it. Coaches see everything, athletes only their own.
func (h *WorkoutHandler) accessibleWorkout(c *gin.Context) (*domain.Workout, bool) {
	id, ok := paramObjectID(c, "id")
	if !ok {
		return nil, false
	}

	workout, err := h.workoutService.GetWorkout(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, h.logger, err)
		return nil, false
	}

	role, _ := getUserRoleFromContext(c)
	if role == domain.RoleCoach {
		return workout, true
	}
	if !workout.IsAssigned() || !canActFor(c, *workout.AthleteID) {
		abortWithError(c, http.StatusForbidden, "Access denied: workout belongs to another user")
		return nil, false
	}
	return workout, true
}
