package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI and
// verifies it with a ping against the primary.
func ConnectDB(ctx context.Context, uri string) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	// The connect call can succeed against an unresponsive server.
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes every repository relies on. The unique
// username index is what enforces username uniqueness, so failures here are
// returned rather than ignored.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := EnsureUserIndexes(ctx, db.Collection(userCollectionName)); err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}
	if err := EnsureExerciseIndexes(ctx, db.Collection(exerciseCollectionName)); err != nil {
		return fmt.Errorf("exercises indexes: %w", err)
	}
	if err := EnsureWorkoutIndexes(ctx, db.Collection(workoutCollectionName)); err != nil {
		return fmt.Errorf("workouts indexes: %w", err)
	}
	return nil
}

// decodeAll drains a cursor into a slice, returning an empty (non-nil)
// slice when nothing matched.
func decodeAll[T any](ctx context.Context, cursor *mongo.Cursor) ([]T, error) {
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
