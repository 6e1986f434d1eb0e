package events

import (
	"context"

	"go.uber.org/zap"
)

// RegisterLoggers attaches one structured-logging consumer per event.
func RegisterLoggers(bus *Bus, logger *zap.Logger) {
	bus.UserCreated.Subscribe(func(_ context.Context, e UserCreated) error {
		logger.Info("user created",
			zap.String("user_id", e.UserID.Hex()),
			zap.String("name", e.Name),
			zap.String("email", e.Email),
			zap.Time("created_at", e.CreatedAt),
		)
		return nil
	})

	bus.WorkoutStarted.Subscribe(func(_ context.Context, e WorkoutStarted) error {
		logger.Info("workout started",
			zap.String("workout_id", e.WorkoutID.Hex()),
			zap.String("athlete_id", e.AthleteID.Hex()),
			zap.String("workout_name", e.WorkoutName),
			zap.Time("started_at", e.StartedAt),
		)
		return nil
	})

	bus.WorkoutCompleted.Subscribe(func(_ context.Context, e WorkoutCompleted) error {
		logger.Info("workout completed",
			zap.String("workout_id", e.WorkoutID.Hex()),
			zap.String("athlete_id", e.AthleteID.Hex()),
			zap.String("workout_name", e.WorkoutName),
			zap.Time("completed_at", e.CompletedAt),
		)
		return nil
	})
}
