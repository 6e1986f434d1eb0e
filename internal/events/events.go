// Package events delivers in-process notifications after a mutation has been
// persisted. Subscribers run synchronously and in registration order; a
// failing or panicking subscriber is logged and never affects the publisher.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// UserCreated is published after a user account has been stored.
type UserCreated struct {
	UserID    primitive.ObjectID
	Name      string
	Email     string
	CreatedAt time.Time
}

// WorkoutStarted is published when an athlete starts a workout.
type WorkoutStarted struct {
	WorkoutID   primitive.ObjectID
	AthleteID   primitive.ObjectID
	WorkoutName string
	StartedAt   time.Time
}

// WorkoutCompleted is published after a workout has been marked complete.
type WorkoutCompleted struct {
	WorkoutID   primitive.ObjectID
	AthleteID   primitive.ObjectID
	WorkoutName string
	CompletedAt time.Time
}

// Handler consumes one event.
type Handler[E any] func(ctx context.Context, event E) error

// Topic is an ordered list of handlers for one event type.
type Topic[E any] struct {
	name   string
	logger *zap.Logger

	mu       sync.RWMutex
	handlers []Handler[E]
}

func newTopic[E any](name string, logger *zap.Logger) *Topic[E] {
	return &Topic[E]{name: name, logger: logger}
}

// Subscribe appends h to the topic.
func (t *Topic[E]) Subscribe(h Handler[E]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers = append(t.handlers, h)
}

// Publish invokes every handler with event.
func (t *Topic[E]) Publish(ctx context.Context, event E) {
	t.mu.RLock()
	handlers := make([]Handler[E], len(t.handlers))
	copy(handlers, t.handlers)
	t.mu.RUnlock()

	for i, h := range handlers {
		if err := t.invoke(ctx, h, event); err != nil {
			t.logger.Error("event subscriber failed",
				zap.String("event", t.name),
				zap.Int("subscriber", i),
				zap.Error(err),
			)
		}
	}
}

func (t *Topic[E]) invoke(ctx context.Context, h Handler[E], event E) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h(ctx, event)
}

// Bus groups the topics the services publish to.
type Bus struct {
	UserCreated      *Topic[UserCreated]
	WorkoutStarted   *Topic[WorkoutStarted]
	WorkoutCompleted *Topic[WorkoutCompleted]
}

// NewBus creates a bus with empty topics. Subscriber failures are reported
// to logger; a nil logger discards them.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		UserCreated:      newTopic[UserCreated]("user_created", logger),
		WorkoutStarted:   newTopic[WorkoutStarted]("workout_started", logger),
		WorkoutCompleted: newTopic[WorkoutCompleted]("workout_completed", logger),
	}
}
