package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newExerciseService(f *fixture, fs storage.FileStorage) ExerciseService {
	return NewExerciseService(f.exercises, fs, f.validator, zap.NewNop())
}

func TestExerciseCRUD(t *testing.T) {
	f := newFixture()
	svc := newExerciseService(f, nil)
	ctx := context.Background()

	id, err := svc.CreateExercise(ctx, CreateExerciseCommand{
		Name: "Bench Press", Description: "Flat barbell", MuscleGroup: domain.MuscleGroupChest,
	})
	require.NoError(t, err)

	_, err = svc.CreateExercise(ctx, CreateExerciseCommand{Name: "Curl", MuscleGroup: domain.MuscleGroupBiceps})
	require.NoError(t, err)

	list, err := svc.ListExercises(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Bench Press", list[0].Name)

	require.NoError(t, svc.UpdateExercise(ctx, UpdateExerciseCommand{
		ID: id, Name: "Incline Bench", MuscleGroup: domain.MuscleGroupChest,
	}))
	got, err := svc.GetExercise(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Incline Bench", got.Name)
	assert.Empty(t, got.Description)

	require.NoError(t, svc.DeleteExercise(ctx, id))
	_, err = svc.GetExercise(ctx, id)
	assert.ErrorIs(t, err, ErrExerciseNotFound)

	err = svc.DeleteExercise(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateExercise_RejectsUnknownMuscleGroup(t *testing.T) {
	f := newFixture()
	svc := newExerciseService(f, nil)

	_, err := svc.CreateExercise(context.Background(), CreateExerciseCommand{Name: "Wiggle", MuscleGroup: "Ears"})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Details.Fields, 1)
	assert.Equal(t, "muscleGroup", verr.Details.Fields[0].Field)
}

func TestDeleteExercise_InUseConflicts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	coach := f.seedUser("bob", domain.RoleCoach)
	squat := f.seedExercise("Squat", domain.MuscleGroupLegs)

	_, err := f.workoutService().CreateWorkout(ctx, CreateWorkoutCommand{
		Name: "Legs", Date: time.Now(), CoachID: coach,
		Exercises: []WorkoutLineInput{{ExerciseID: squat, Sets: 3, Reps: 8}},
	})
	require.NoError(t, err)

	err = newExerciseService(f, nil).DeleteExercise(ctx, squat)
	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, ErrExerciseInUse)

	ok, _ := f.exercises.Exists(ctx, squat)
	assert.True(t, ok)
}

func TestExerciseMedia(t *testing.T) {
	f := newFixture()
	fs := &fakeStorage{}
	svc := newExerciseService(f, fs)
	ctx := context.Background()
	id := f.seedExercise("Deadlift", domain.MuscleGroupBack)

	_, err := svc.GetMediaURL(ctx, id)
	assert.ErrorIs(t, err, ErrMediaNotFound)

	_, err = svc.RequestMediaUpload(ctx, id, "application/pdf")
	assert.ErrorIs(t, err, ErrInvalidMediaType)

	_, err = svc.RequestMediaUpload(ctx, primitive.NewObjectID(), "video/mp4")
	assert.ErrorIs(t, err, ErrExerciseNotFound)

	first, err := svc.RequestMediaUpload(ctx, id, "video/mp4")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.ObjectKey, "exercises/"+id.Hex()+"/"))
	assert.True(t, strings.HasSuffix(first.ObjectKey, ".mp4"))
	assert.Contains(t, first.UploadURL, first.ObjectKey)
	assert.True(t, first.ExpiresAt.After(time.Now()))

	err = svc.ConfirmMedia(ctx, id, "exercises/"+primitive.NewObjectID().Hex()+"/x.mp4")
	assert.ErrorIs(t, err, ErrInvalidMediaKey)

	require.NoError(t, svc.ConfirmMedia(ctx, id, first.ObjectKey))
	url, err := svc.GetMediaURL(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "https://media.test/download/"+first.ObjectKey, url)

	// Replacing the clip removes the old object.
	second, err := svc.RequestMediaUpload(ctx, id, "video/webm")
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmMedia(ctx, id, second.ObjectKey))
	assert.Equal(t, []string{first.ObjectKey}, fs.deleted)

	// Deleting the exercise removes the current one.
	require.NoError(t, svc.DeleteExercise(ctx, id))
	assert.Equal(t, []string{first.ObjectKey, second.ObjectKey}, fs.deleted)
}

func TestExerciseMedia_DeleteFailureIsLogged(t *testing.T) {
	f := newFixture()
	core, logs := observer.New(zap.WarnLevel)
	fs := &fakeStorage{}
	svc := NewExerciseService(f.exercises, fs, f.validator, zap.New(core))
	ctx := context.Background()
	id := f.seedExercise("Row", domain.MuscleGroupBack)
	require.NoError(t, f.exercises.SetMediaKey(ctx, id, storage.ExerciseMediaPrefix(id.Hex())+"old.mp4"))

	fs.failAll = errors.New("bucket unavailable")
	require.NoError(t, svc.DeleteExercise(ctx, id))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "failed to delete orphaned exercise media", logs.All()[0].Message)
}

func TestExerciseMedia_NoStorageConfigured(t *testing.T) {
	f := newFixture()
	svc := newExerciseService(f, nil)
	ctx := context.Background()
	id := f.seedExercise("Plank", domain.MuscleGroupCore)

	_, err := svc.RequestMediaUpload(ctx, id, "video/mp4")
	assert.ErrorIs(t, err, ErrStorageNotConfigured)
	assert.ErrorIs(t, svc.ConfirmMedia(ctx, id, "exercises/"+id.Hex()+"/a.mp4"), ErrStorageNotConfigured)
	_, err = svc.GetMediaURL(ctx, id)
	assert.ErrorIs(t, err, ErrStorageNotConfigured)
}
