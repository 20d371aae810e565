package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise represents a single exercise definition in a coach's library.
type Exercise struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID     primitive.ObjectID `bson:"coachId" json:"coachId"` // Coach who created/owns this exercise
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	// ExerciseType is the secondary classification used when template items
	// are grouped and moved as a block, e.g. "Cardio", "Strength", "Mobility".
	ExerciseType string `bson:"exerciseType,omitempty" json:"exerciseType,omitempty"`

	MuscleGroup string `bson:"muscleGroup,omitempty" json:"muscleGroup,omitempty"` // e.g., "Chest", "Legs", "Back"
	Difficulty  string `bson:"difficulty,omitempty" json:"difficulty,omitempty"`   // e.g., "Novice", "Medium", "Advanced"
	VideoURL    string `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
