package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestPublish_DeliversInOrder(t *testing.T) {
	bus := NewBus(nil)
	var got []string

	bus.UserCreated.Subscribe(func(_ context.Context, e UserCreated) error {
		got = append(got, "first:"+e.Name)
		return nil
	})
	bus.UserCreated.Subscribe(func(_ context.Context, e UserCreated) error {
		got = append(got, "second:"+e.Name)
		return nil
	})

	bus.UserCreated.Publish(context.Background(), UserCreated{UserID: primitive.NewObjectID(), Name: "alice"})

	assert.Equal(t, []string{"first:alice", "second:alice"}, got)
}

func TestPublish_IsolatesFailingSubscribers(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := NewBus(zap.New(core))

	delivered := 0
	bus.WorkoutCompleted.Subscribe(func(context.Context, WorkoutCompleted) error {
		return errors.New("mail server down")
	})
	bus.WorkoutCompleted.Subscribe(func(context.Context, WorkoutCompleted) error {
		panic("boom")
	})
	bus.WorkoutCompleted.Subscribe(func(context.Context, WorkoutCompleted) error {
		delivered++
		return nil
	})

	require.NotPanics(t, func() {
		bus.WorkoutCompleted.Publish(context.Background(), WorkoutCompleted{WorkoutID: primitive.NewObjectID()})
	})

	assert.Equal(t, 1, delivered)
	assert.Equal(t, 2, logs.FilterMessage("event subscriber failed").Len())
}

func TestRegisterLoggers(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)
	bus := NewBus(logger)
	RegisterLoggers(bus, logger)

	ctx := context.Background()
	now := time.Now()
	bus.UserCreated.Publish(ctx, UserCreated{UserID: primitive.NewObjectID(), Name: "alice", CreatedAt: now})
	bus.WorkoutStarted.Publish(ctx, WorkoutStarted{WorkoutID: primitive.NewObjectID(), WorkoutName: "Push Day", StartedAt: now})
	bus.WorkoutCompleted.Publish(ctx, WorkoutCompleted{WorkoutID: primitive.NewObjectID(), WorkoutName: "Push Day", CompletedAt: now})

	assert.Equal(t, 1, logs.FilterMessage("user created").Len())
	assert.Equal(t, 1, logs.FilterMessage("workout started").Len())
	completed := logs.FilterMessage("workout completed").All()
	require.Len(t, completed, 1)
	assert.Equal(t, "Push Day", completed[0].ContextMap()["workout_name"])
}
