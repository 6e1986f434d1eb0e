package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutExercise is one prescribed exercise inside a workout. Lines are
// embedded in their workout document, so they share its lifecycle.
type WorkoutExercise struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	WorkoutID  primitive.ObjectID `bson:"-" json:"workoutId"` // Filled from the parent document on read
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Sets       int                `bson:"sets" json:"sets"`
	Reps       int                `bson:"reps" json:"reps"`
	Weight     *Weight            `bson:"weight,omitempty" json:"weight,omitempty"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`

	// Exercise is the referenced library entry, populated by workout reads.
	Exercise *Exercise `bson:"-" json:"exercise,omitempty"`
}

// Workout is a named, dated collection of prescribed exercises, optionally
// assigned to one athlete.
type Workout struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name              string              `bson:"name" json:"name"`
	Date              time.Time           `bson:"date" json:"date"`
	IsCompleted       bool                `bson:"isCompleted" json:"isCompleted"`
	AthleteID         *primitive.ObjectID `bson:"athleteId" json:"athleteId,omitempty"` // nil while unassigned
	AssignedByCoachID *primitive.ObjectID `bson:"assignedByCoachId,omitempty" json:"assignedByCoachId,omitempty"`
	Exercises         []WorkoutExercise   `bson:"exercises" json:"exercises"`
	CreatedAt         time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time           `bson:"updatedAt" json:"updatedAt"`
}

func (w *Workout) IsAssigned() bool {
	return w.AthleteID != nil && *w.AthleteID != primitive.NilObjectID
}

// Line returns the embedded line with the given id, or nil.
func (w *Workout) Line(id primitive.ObjectID) *WorkoutExercise {
	for i := range w.Exercises {
		if w.Exercises[i].ID == id {
			return &w.Exercises[i]
		}
	}
	return nil
}
