package api

import (
	"net/http"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
	logger          *zap.Logger
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService, logger *zap.Logger) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService, logger: logger}
}

// --- DTOs for API (Data Transfer Objects) ---

// ExerciseRequest is the body for creating and updating an exercise.
type ExerciseRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	MuscleGroup string `json:"muscleGroup"` // e.g. "Chest", case-insensitive
}

func (r ExerciseRequest) muscleGroup() domain.MuscleGroup {
	if g, ok := domain.ParseMuscleGroup(r.MuscleGroup); ok {
		return g
	}
	// Left as sent so the validation message names the bad value's field.
	return domain.MuscleGroup(r.MuscleGroup)
}

type MediaUploadRequest struct {
	ContentType string `json:"contentType"`
}

type MediaUploadResponse struct {
	UploadURL string    `json:"uploadUrl"`
	ObjectKey string    `json:"objectKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ConfirmMediaRequest struct {
	ObjectKey string `json:"objectKey"`
}

// --- Handler Methods ---

// CreateExercise godoc
// @Summary Create a new exercise
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body ExerciseRequest true "Exercise details"
// @Success 201 {object} gin.H "id of the new exercise"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden (not a coach)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req ExerciseRequest
	if !bindJSON(c, &req) {
		return
	}

	id, err := h.exerciseService.CreateExercise(c.Request.Context(), service.CreateExerciseCommand{
		Name:        req.Name,
		Description: req.Description,
		MuscleGroup: req.muscleGroup(),
	})
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id.Hex()})
}

// ListExercises godoc
// @Summary List the exercise library
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ExerciseResponse
// @Router /exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	exercises, err := h.exerciseService.ListExercises(c.Request.Context())
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// GetExercise godoc
// @Summary Get an exercise
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Success 200 {object} ExerciseResponse
// @Failure 404 {object} gin.H "Exercise not found"
// @Router /exercises/{id} [get]
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	id, ok := paramObjectID(c, "id")
	if !ok {
		return
	}

	exercise, err := h.exerciseService.GetExercise(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// UpdateExercise godoc
// @Summary Update an exercise
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Param exercise body ExerciseRequest true "Exercise details"
// @Success 200 {object} gin.H
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Forbidden (not a coach)"
// @Failure 404 {object} gin.H "Exercise not found"
// @Router /exercises/{id} [put]
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	id, ok := paramObjectID(c, "id")
	if !ok {
		return
	}
	var req ExerciseRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.exerciseService.UpdateExercise(c.Request.Context(), service.UpdateExerciseCommand{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		MuscleGroup: req.muscleGroup(),
	})
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Exercise updated successfully"})
}

// DeleteExercise godoc
// @Summary Delete an exercise
// @Description Fails while any workout still uses the exercise.
// @Tags Exercises
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Success 204 "No Content"
// @Failure 400 {object} gin.H "Exercise is in use"
// @Failure 404 {object} gin.H "Exercise not found"
// @Router /exercises/{id} [delete]
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	id, ok := paramObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.exerciseService.DeleteExercise(c.Request.Context(), id); err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RequestMediaUpload godoc
// @Summary Get a presigned URL to upload a demonstration clip
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Param media body MediaUploadRequest true "Clip content type"
// @Success 200 {object} MediaUploadResponse
// @Failure 400 {object} gin.H "Unsupported content type"
// @Failure 404 {object} gin.H "Exercise not found"
// @Router /exercises/{id}/media [post]
func (h *ExerciseHandler) RequestMediaUpload(c *gin.Context) {
	id, ok := paramObjectID(c, "id")
	if !ok {
		return
	}
	var req MediaUploadRequest
	if !bindJSON(c, &req) {
		return
	}

	upload, err := h.exerciseService.RequestMediaUpload(c.Request.Context(), id, req.ContentType)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MediaUploadResponse{
		UploadURL: upload.UploadURL,
		ObjectKey: upload.ObjectKey,
		ExpiresAt: upload.ExpiresAt,
	})
}

// ConfirmMedia godoc
// @Summary Attach an uploaded clip to the exercise
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Param media body ConfirmMediaRequest true "Object key returned by the upload request"
// @Success 200 {object} gin.H
// @Failure 400 {object} gin.H "Key does not belong to this exercise"
// @Failure 404 {object} gin.H "Exercise not found"
// @Router /exercises/{id}/media [put]
func (h *ExerciseHandler) ConfirmMedia(c *gin.Context) {
	id, ok := paramObjectID(c, "id")
	if !ok {
		return
	}
	var req ConfirmMediaRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.exerciseService.ConfirmMedia(c.Request.Context(), id, req.ObjectKey); err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Media attached successfully"})
}

// GetMedia godoc
// @Summary Get a presigned URL to view the demonstration clip
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Success 200 {object} gin.H "url"
// @Failure 404 {object} gin.H "Exercise not found or has no clip"
// @Router /exercises/{id}/media [get]
func (h *ExerciseHandler) GetMedia(c *gin.Context) {
	id, ok := paramObjectID(c, "id")
	if !ok {
		return
	}

	url, err := h.exerciseService.GetMediaURL(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
