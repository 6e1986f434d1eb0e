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

// mongoWorkoutExerciseRepository implements repository.WorkoutExerciseRepository
// on the exercises array embedded in each workout document.
type mongoWorkoutExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutExerciseRepository creates a new line repository backed by
// the workouts collection.
func NewMongoWorkoutExerciseRepository(db *mongo.Database) repository.WorkoutExerciseRepository {
	return &mongoWorkoutExerciseRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// Add appends a line to its workout.
func (r *mongoWorkoutExerciseRepository) Add(ctx context.Context, line *domain.WorkoutExercise) (primitive.ObjectID, error) {
	if line.WorkoutID == primitive.NilObjectID || line.ExerciseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout exercise requires workoutId and exerciseId")
	}

	line.ID = primitive.NewObjectID()
	update := bson.M{
		"$push": bson.M{"exercises": line},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": line.WorkoutID}, update)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if result.MatchedCount == 0 {
		return primitive.NilObjectID, repository.ErrNotFound
	}
	return line.ID, nil
}

// GetByID retrieves a single line and the id of the workout holding it.
func (r *mongoWorkoutExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutExercise, error) {
	var doc struct {
		ID        primitive.ObjectID       `bson:"_id"`
		Exercises []domain.WorkoutExercise `bson:"exercises"`
	}

	filter := bson.M{"exercises._id": id}
	findOptions := options.FindOne().SetProjection(bson.M{"exercises.$": 1})

	err := r.collection.FindOne(ctx, filter, findOptions).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if len(doc.Exercises) == 0 {
		return nil, repository.ErrNotFound
	}

	line := doc.Exercises[0]
	line.WorkoutID = doc.ID
	return &line, nil
}

// Update replaces the prescription of a line. A nil weight removes any
// previously stored weight.
func (r *mongoWorkoutExerciseRepository) Update(ctx context.Context, line *domain.WorkoutExercise) error {
	if line.ID == primitive.NilObjectID {
		return errors.New("workout exercise ID is required for update")
	}

	set := bson.M{
		"exercises.$.sets":  line.Sets,
		"exercises.$.reps":  line.Reps,
		"exercises.$.notes": line.Notes,
		"updatedAt":         time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	if line.Weight != nil {
		set["exercises.$.weight"] = line.Weight
	} else {
		update["$unset"] = bson.M{"exercises.$.weight": ""}
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"exercises._id": line.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete pulls the line out of its workout.
func (r *mongoWorkoutExerciseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{
		"$pull": bson.M{"exercises": bson.M{"_id": id}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"exercises._id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Exists reports whether any workout holds a line with the id.
func (r *mongoWorkoutExerciseRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return exists(ctx, r.collection, bson.M{"exercises._id": id})
}
