package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/storage"
	"alcyxob/workout-tracker/internal/validation"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CreateExerciseCommand adds an entry to the exercise library.
type CreateExerciseCommand struct {
	Name        string             `json:"name" validate:"required,max=100"`
	Description string             `json:"description" validate:"max=500"`
	MuscleGroup domain.MuscleGroup `json:"muscleGroup" validate:"musclegroup"`
}

// UpdateExerciseCommand replaces the editable fields of an exercise.
type UpdateExerciseCommand struct {
	ID          primitive.ObjectID `json:"-"`
	Name        string             `json:"name" validate:"required,max=100"`
	Description string             `json:"description" validate:"max=500"`
	MuscleGroup domain.MuscleGroup `json:"muscleGroup" validate:"musclegroup"`
}

// MediaUpload tells the client where to PUT a clip and which key to confirm.
type MediaUpload struct {
	UploadURL string
	ObjectKey string
	ExpiresAt time.Time
}

// ExerciseService manages the exercise library and its demonstration clips.
type ExerciseService interface {
	CreateExercise(ctx context.Context, cmd CreateExerciseCommand) (primitive.ObjectID, error)
	GetExercise(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	ListExercises(ctx context.Context) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, cmd UpdateExerciseCommand) error
	DeleteExercise(ctx context.Context, id primitive.ObjectID) error

	RequestMediaUpload(ctx context.Context, id primitive.ObjectID, contentType string) (*MediaUpload, error)
	ConfirmMedia(ctx context.Context, id primitive.ObjectID, objectKey string) error
	GetMediaURL(ctx context.Context, id primitive.ObjectID) (string, error)
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	fileStorage  storage.FileStorage // nil when no bucket is configured
	validator    *validation.Validator
	logger       *zap.Logger
}

// NewExerciseService creates a new instance of exerciseService. fileStorage
// may be nil; media operations then fail with ErrStorageNotConfigured.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, fileStorage storage.FileStorage, v *validation.Validator, logger *zap.Logger) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		fileStorage:  fileStorage,
		validator:    v,
		logger:       logger,
	}
}

func (s *exerciseService) CreateExercise(ctx context.Context, cmd CreateExerciseCommand) (primitive.ObjectID, error) {
	if err := validate(s.validator, cmd); err != nil {
		return primitive.NilObjectID, err
	}

	exercise := &domain.Exercise{
		Name:        cmd.Name,
		Description: cmd.Description,
		MuscleGroup: cmd.MuscleGroup,
	}
	return s.exerciseRepo.Create(ctx, exercise)
}

// GetExercise retrieves a single exercise.
func (s *exerciseService) GetExercise(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

func (s *exerciseService) ListExercises(ctx context.Context) ([]domain.Exercise, error) {
	return s.exerciseRepo.GetAll(ctx)
}

func (s *exerciseService) UpdateExercise(ctx context.Context, cmd UpdateExerciseCommand) error {
	if err := validate(s.validator, cmd); err != nil {
		return err
	}

	existingExercise, err := s.GetExercise(ctx, cmd.ID)
	if err != nil {
		return err
	}

	existingExercise.Name = cmd.Name
	existingExercise.Description = cmd.Description
	existingExercise.MuscleGroup = cmd.MuscleGroup

	if err := s.exerciseRepo.Update(ctx, existingExercise); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	return nil
}

// DeleteExercise refuses to remove an exercise still used by a workout.
func (s *exerciseService) DeleteExercise(ctx context.Context, id primitive.ObjectID) error {
	exercise, err := s.GetExercise(ctx, id)
	if err != nil {
		return err
	}

	used, err := s.exerciseRepo.IsReferenced(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return ErrExerciseInUse
	}

	if err := s.exerciseRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}

	if exercise.HasMedia() && s.fileStorage != nil {
		s.removeClip(ctx, exercise.MediaKey)
	}
	return nil
}

// RequestMediaUpload returns a presigned PUT URL for a new clip. The clip is
// attached only once ConfirmMedia is called with the returned key.
func (s *exerciseService) RequestMediaUpload(ctx context.Context, id primitive.ObjectID, contentType string) (*MediaUpload, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageNotConfigured
	}
	if !storage.IsMediaContentType(contentType) {
		return nil, ErrInvalidMediaType
	}

	ok, err := s.exerciseRepo.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrExerciseNotFound
	}

	key := storage.NewExerciseMediaKey(id.Hex(), contentType)
	url, err := s.fileStorage.GeneratePresignedUploadURL(ctx, key, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}
	return &MediaUpload{
		UploadURL: url,
		ObjectKey: key,
		ExpiresAt: time.Now().UTC().Add(storage.DefaultPresignedURLExpiry),
	}, nil
}

// ConfirmMedia attaches an uploaded clip, replacing any previous one.
func (s *exerciseService) ConfirmMedia(ctx context.Context, id primitive.ObjectID, objectKey string) error {
	if s.fileStorage == nil {
		return ErrStorageNotConfigured
	}
	if !strings.HasPrefix(objectKey, storage.ExerciseMediaPrefix(id.Hex())) {
		return ErrInvalidMediaKey
	}

	exercise, err := s.GetExercise(ctx, id)
	if err != nil {
		return err
	}

	if err := s.exerciseRepo.SetMediaKey(ctx, id, objectKey); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}

	if exercise.HasMedia() && exercise.MediaKey != objectKey {
		s.removeClip(ctx, exercise.MediaKey)
	}
	return nil
}

// GetMediaURL returns a presigned GET URL for the exercise's clip.
func (s *exerciseService) GetMediaURL(ctx context.Context, id primitive.ObjectID) (string, error) {
	if s.fileStorage == nil {
		return "", ErrStorageNotConfigured
	}

	exercise, err := s.GetExercise(ctx, id)
	if err != nil {
		return "", err
	}
	if !exercise.HasMedia() {
		return "", ErrMediaNotFound
	}
	return s.fileStorage.GeneratePresignedDownloadURL(ctx, exercise.MediaKey, storage.DefaultPresignedURLExpiry)
}

// removeClip deletes a clip no document points at any more. Failures only
// leave an orphaned object behind, so they are logged and not returned.
func (s *exerciseService) removeClip(ctx context.Context, key string) {
	if err := s.fileStorage.DeleteObject(ctx, key); err != nil {
		s.logger.Warn("failed to delete orphaned exercise media", zap.String("key", key), zap.Error(err))
	}
}
