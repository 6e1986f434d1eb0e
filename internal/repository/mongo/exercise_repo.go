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

const exerciseCollectionName = "exercises"

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
	workouts   *mongo.Collection // Consulted by IsReferenced
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
		workouts:   db.Collection(workoutCollectionName),
	}
}

// Create inserts a new exercise into the database.
func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name == "" {
		return primitive.NilObjectID, errors.New("exercise name is required")
	}

	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, exercise)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves an exercise by its ID.
func (r *mongoExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	var exercise domain.Exercise
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

// GetAll retrieves the whole exercise library sorted by name.
func (r *mongoExerciseRepository) GetAll(ctx context.Context) ([]domain.Exercise, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Exercise](ctx, cursor)
}

// GetByIDs returns the exercises among ids that exist. Missing ids are
// simply absent from the result.
func (r *mongoExerciseRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	if len(ids) == 0 {
		return []domain.Exercise{}, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Exercise](ctx, cursor)
}

// Update modifies an existing exercise and bumps UpdatedAt.
func (r *mongoExerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	if exercise.ID == primitive.NilObjectID {
		return errors.New("exercise ID is required for update")
	}

	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":        exercise.Name,
			"description": exercise.Description,
			"muscleGroup": exercise.MuscleGroup,
			"updatedAt":   now,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": exercise.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	exercise.UpdatedAt = now
	return nil
}

// SetMediaKey records the object key of the exercise's demonstration clip.
func (r *mongoExerciseRepository) SetMediaKey(ctx context.Context, id primitive.ObjectID, key string) error {
	update := bson.M{
		"$set": bson.M{
			"mediaKey":  key,
			"updatedAt": time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes an exercise.
func (r *mongoExerciseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Exists reports whether an exercise with the id exists.
func (r *mongoExerciseRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return exists(ctx, r.collection, bson.M{"_id": id})
}

// IsReferenced reports whether any workout line points at the exercise.
func (r *mongoExerciseRepository) IsReferenced(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return exists(ctx, r.workouts, bson.M{"exercises.exerciseId": id})
}

// EnsureExerciseIndexes creates necessary indexes for the exercises collection.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "muscleGroup", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}},
			Options: options.Index().SetName("exercise_text_search"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
