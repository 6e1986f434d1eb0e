package mongo

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const workoutCollectionName = "workouts"

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// workoutDocument is the shape produced by the enrichment pipeline: the
// stored workout plus the exercise documents its lines reference.
type workoutDocument struct {
	domain.Workout `bson:",inline"`
	ExerciseDocs   []domain.Exercise `bson:"exerciseDocs"`
}

// Create inserts a new workout together with its lines.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.Name == "" {
		return primitive.NilObjectID, errors.New("workout name is required")
	}
	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now
	if workout.Exercises == nil {
		workout.Exercises = []domain.WorkoutExercise{}
	}
	for i := range workout.Exercises {
		if workout.Exercises[i].ID.IsZero() {
			workout.Exercises[i].ID = primitive.NewObjectID()
		}
		workout.Exercises[i].WorkoutID = workout.ID
	}

	result, err := r.collection.InsertOne(ctx, workout)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single workout with every line's exercise populated.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	workouts, err := r.aggregate(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	if len(workouts) == 0 {
		return nil, repository.ErrNotFound
	}
	return &workouts[0], nil
}

// GetByAthleteID retrieves the athlete's workouts, newest first.
func (r *mongoWorkoutRepository) GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.Workout, error) {
	return r.aggregate(ctx, bson.M{"athleteId": athleteID})
}

// GetUnassigned retrieves workouts that no athlete holds yet.
func (r *mongoWorkoutRepository) GetUnassigned(ctx context.Context) ([]domain.Workout, error) {
	return r.aggregate(ctx, bson.M{"athleteId": nil})
}

// aggregate runs match, sort and a $lookup against the exercises collection,
// then stitches each looked-up exercise onto the lines referencing it.
func (r *mongoWorkoutRepository) aggregate(ctx context.Context, match bson.M) ([]domain.Workout, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: exerciseCollectionName},
			{Key: "localField", Value: "exercises.exerciseId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "exerciseDocs"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	docs, err := decodeAll[workoutDocument](ctx, cursor)
	if err != nil {
		return nil, err
	}

	workouts := make([]domain.Workout, 0, len(docs))
	for _, doc := range docs {
		workouts = append(workouts, doc.enrich())
	}
	return workouts, nil
}

func (d workoutDocument) enrich() domain.Workout {
	byID := make(map[primitive.ObjectID]*domain.Exercise, len(d.ExerciseDocs))
	for i := range d.ExerciseDocs {
		byID[d.ExerciseDocs[i].ID] = &d.ExerciseDocs[i]
	}

	w := d.Workout
	if w.Exercises == nil {
		w.Exercises = []domain.WorkoutExercise{}
	}
	for i := range w.Exercises {
		w.Exercises[i].WorkoutID = w.ID
		w.Exercises[i].Exercise = byID[w.Exercises[i].ExerciseID]
	}
	return w
}

// Update changes the editable fields of a workout. Lines and assignment are
// managed by their own operations.
func (r *mongoWorkoutRepository) Update(ctx context.Context, workout *domain.Workout) error {
	if workout.ID == primitive.NilObjectID {
		return errors.New("workout ID is required for update")
	}

	now := time.Now().UTC()
	updateDoc := bson.M{
		"$set": bson.M{
			"name":        workout.Name,
			"date":        workout.Date,
			"isCompleted": workout.IsCompleted,
			"updatedAt":   now,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": workout.ID}, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	workout.UpdatedAt = now
	return nil
}

// SetCompleted flips the completion flag.
func (r *mongoWorkoutRepository) SetCompleted(ctx context.Context, id primitive.ObjectID, completed bool) error {
	updateDoc := bson.M{
		"$set": bson.M{
			"isCompleted": completed,
			"updatedAt":   time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AssignIfUnassigned sets the athlete in one conditional update. The filter
// only matches while athleteId is still null, so of two racing calls at most
// one can match.
func (r *mongoWorkoutRepository) AssignIfUnassigned(ctx context.Context, id, athleteID primitive.ObjectID, coachID *primitive.ObjectID, date time.Time) (bool, error) {
	filter := bson.M{
		"_id":       id,
		"athleteId": nil,
	}
	set := bson.M{
		"athleteId": athleteID,
		"date":      date,
		"updatedAt": time.Now().UTC(),
	}
	if coachID != nil {
		set["assignedByCoachId"] = *coachID
	}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return result.MatchedCount == 1, nil
}

// Delete removes a workout; its embedded lines go with it.
func (r *mongoWorkoutRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByAthleteID removes every workout held by the athlete.
func (r *mongoWorkoutRepository) DeleteByAthleteID(ctx context.Context, athleteID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"athleteId": athleteID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// ClearCoach drops the assigning-coach reference wherever it points at coachID.
func (r *mongoWorkoutRepository) ClearCoach(ctx context.Context, coachID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"assignedByCoachId": coachID},
		bson.M{
			"$unset": bson.M{"assignedByCoachId": ""},
			"$set":   bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	return err
}

// Exists reports whether a workout with the id exists.
func (r *mongoWorkoutRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return exists(ctx, r.collection, bson.M{"_id": id})
}

// EnsureWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// Athlete listing, newest first
			Keys:    bson.D{{Key: "athleteId", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "assignedByCoachId", Value: 1}},
			Options: options.Index(),
		},
		{
			// Line lookups by id
			Keys:    bson.D{{Key: "exercises._id", Value: 1}},
			Options: options.Index(),
		},
		{
			// Referenced-exercise checks
			Keys:    bson.D{{Key: "exercises.exerciseId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
