package mongo

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// testDB connects to MONGO_TEST_URI and returns a throwaway database with
// indexes in place. Tests are skipped when the variable is unset.
func testDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx := context.Background()
	client, err := ConnectDB(ctx, uri)
	require.NoError(t, err)

	db := client.Database("workout_tracker_test_" + primitive.NewObjectID().Hex())
	require.NoError(t, EnsureIndexes(ctx, db))

	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = DisconnectDB(client)
	})
	return db
}

type repos struct {
	users     repository.UserRepository
	exercises repository.ExerciseRepository
	workouts  repository.WorkoutRepository
	lines     repository.WorkoutExerciseRepository
}

func newRepos(db *mongo.Database) repos {
	return repos{
		users:     NewMongoUserRepository(db),
		exercises: NewMongoExerciseRepository(db),
		workouts:  NewMongoWorkoutRepository(db),
		lines:     NewMongoWorkoutExerciseRepository(db),
	}
}

func TestUserRepository_UniqueUsername(t *testing.T) {
	r := newRepos(testDB(t))
	ctx := context.Background()

	id, err := r.users.Create(ctx, &domain.User{Name: "Alice", Username: "alice", Role: domain.RoleUser})
	require.NoError(t, err)

	_, err = r.users.Create(ctx, &domain.User{Name: "Imposter", Username: "alice", Role: domain.RoleCoach})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	u, err := r.users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "Alice", u.Name)

	_, err = r.users.GetByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestWorkoutRepository_LookupPopulatesLines(t *testing.T) {
	r := newRepos(testDB(t))
	ctx := context.Background()

	benchID, err := r.exercises.Create(ctx, &domain.Exercise{Name: "Bench Press", MuscleGroup: domain.MuscleGroupChest})
	require.NoError(t, err)
	rowID, err := r.exercises.Create(ctx, &domain.Exercise{Name: "Row", MuscleGroup: domain.MuscleGroupBack})
	require.NoError(t, err)

	workoutID, err := r.workouts.Create(ctx, &domain.Workout{
		Name: "Upper",
		Date: time.Now().UTC().Truncate(time.Millisecond),
		Exercises: []domain.WorkoutExercise{
			{ExerciseID: benchID, Sets: 5, Reps: 5, Weight: domain.NewWeight(decimal.RequireFromString("82.5"))},
			{ExerciseID: rowID, Sets: 4, Reps: 8},
			{ExerciseID: benchID, Sets: 2, Reps: 12, Notes: "back-off"},
		},
	})
	require.NoError(t, err)

	w, err := r.workouts.GetByID(ctx, workoutID)
	require.NoError(t, err)
	assert.Nil(t, w.AthleteID)
	require.Len(t, w.Exercises, 3)
	for _, line := range w.Exercises {
		assert.Equal(t, workoutID, line.WorkoutID)
		require.NotNil(t, line.Exercise)
		assert.Equal(t, line.ExerciseID, line.Exercise.ID)
	}
	assert.Equal(t, "Bench Press", w.Exercises[2].Exercise.Name)
	assert.True(t, w.Exercises[0].Weight.Equal(decimal.RequireFromString("82.5")))
	assert.Nil(t, w.Exercises[1].Weight)

	referenced, err := r.exercises.IsReferenced(ctx, rowID)
	require.NoError(t, err)
	assert.True(t, referenced)

	unassigned, err := r.workouts.GetUnassigned(ctx)
	require.NoError(t, err)
	require.Len(t, unassigned, 1)
}

func TestWorkoutRepository_AssignIfUnassignedHasOneWinner(t *testing.T) {
	r := newRepos(testDB(t))
	ctx := context.Background()

	workoutID, err := r.workouts.Create(ctx, &domain.Workout{Name: "Race", Date: time.Now().UTC()})
	require.NoError(t, err)

	const contenders = 10
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := r.workouts.AssignIfUnassigned(ctx, workoutID, primitive.NewObjectID(), nil, time.Now().UTC())
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)

	ok, err := r.workouts.AssignIfUnassigned(ctx, primitive.NewObjectID(), primitive.NewObjectID(), nil, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWorkoutRepository_LinesAndCascade(t *testing.T) {
	r := newRepos(testDB(t))
	ctx := context.Background()

	squatID, err := r.exercises.Create(ctx, &domain.Exercise{Name: "Squat", MuscleGroup: domain.MuscleGroupLegs})
	require.NoError(t, err)
	athleteID := primitive.NewObjectID()
	coachID := primitive.NewObjectID()

	workoutID, err := r.workouts.Create(ctx, &domain.Workout{
		Name: "Legs", Date: time.Now().UTC(), AthleteID: &athleteID, AssignedByCoachID: &coachID,
	})
	require.NoError(t, err)

	lineID, err := r.lines.Add(ctx, &domain.WorkoutExercise{
		WorkoutID: workoutID, ExerciseID: squatID, Sets: 5, Reps: 5, Weight: domain.WeightFromFloat(100),
	})
	require.NoError(t, err)

	line, err := r.lines.GetByID(ctx, lineID)
	require.NoError(t, err)
	assert.Equal(t, workoutID, line.WorkoutID)
	assert.Equal(t, 5, line.Sets)

	line.Sets = 3
	line.Weight = nil
	require.NoError(t, r.lines.Update(ctx, line))
	line, err = r.lines.GetByID(ctx, lineID)
	require.NoError(t, err)
	assert.Equal(t, 3, line.Sets)
	assert.Nil(t, line.Weight)

	_, err = r.lines.Add(ctx, &domain.WorkoutExercise{WorkoutID: primitive.NewObjectID(), ExerciseID: squatID, Sets: 1, Reps: 1})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, r.workouts.ClearCoach(ctx, coachID))
	w, err := r.workouts.GetByID(ctx, workoutID)
	require.NoError(t, err)
	assert.Nil(t, w.AssignedByCoachID)

	n, err := r.workouts.DeleteByAthleteID(ctx, athleteID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ok, err := r.lines.Exists(ctx, lineID)
	require.NoError(t, err)
	assert.False(t, ok)
	referenced, err := r.exercises.IsReferenced(ctx, squatID)
	require.NoError(t, err)
	assert.False(t, referenced)

	assert.ErrorIs(t, r.workouts.Delete(ctx, workoutID), repository.ErrNotFound)
}
