// internal/domain/exercise.go
package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MuscleGroup classifies an exercise. Stored and transmitted by name.
type MuscleGroup string

const (
	MuscleGroupChest     MuscleGroup = "Chest"
	MuscleGroupBack      MuscleGroup = "Back"
	MuscleGroupShoulders MuscleGroup = "Shoulders"
	MuscleGroupBiceps    MuscleGroup = "Biceps"
	MuscleGroupTriceps   MuscleGroup = "Triceps"
	MuscleGroupLegs      MuscleGroup = "Legs"
	MuscleGroupGlutes    MuscleGroup = "Glutes"
	MuscleGroupCore      MuscleGroup = "Core"
	MuscleGroupCardio    MuscleGroup = "Cardio"
	MuscleGroupFullBody  MuscleGroup = "FullBody"
)

var muscleGroups = []MuscleGroup{
	MuscleGroupChest,
	MuscleGroupBack,
	MuscleGroupShoulders,
	MuscleGroupBiceps,
	MuscleGroupTriceps,
	MuscleGroupLegs,
	MuscleGroupGlutes,
	MuscleGroupCore,
	MuscleGroupCardio,
	MuscleGroupFullBody,
}

// MuscleGroups returns every known muscle group in display order.
func MuscleGroups() []MuscleGroup {
	out := make([]MuscleGroup, len(muscleGroups))
	copy(out, muscleGroups)
	return out
}

// Valid reports whether g is one of the fixed muscle groups.
func (g MuscleGroup) Valid() bool {
	for _, known := range muscleGroups {
		if g == known {
			return true
		}
	}
	return false
}

// ParseMuscleGroup matches s case-insensitively against the known groups.
func ParseMuscleGroup(s string) (MuscleGroup, bool) {
	for _, known := range muscleGroups {
		if strings.EqualFold(string(known), s) {
			return known, true
		}
	}
	return "", false
}

// Exercise represents a single exercise definition in the shared library.
type Exercise struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	MuscleGroup MuscleGroup        `bson:"muscleGroup" json:"muscleGroup"`
	MediaKey    string             `bson:"mediaKey,omitempty" json:"-"` // S3 object key of the demonstration clip
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (e *Exercise) HasMedia() bool {
	return e.MediaKey != ""
}
