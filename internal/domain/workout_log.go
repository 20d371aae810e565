package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutLog is a client's record of a performed workout, usually against a
// template the coach assigned.
type WorkoutLog struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ClientID   primitive.ObjectID  `bson:"clientId" json:"clientId"`
	CoachID    primitive.ObjectID  `bson:"coachId" json:"coachId"` // Denormalized
	TemplateID *primitive.ObjectID `bson:"templateId,omitempty" json:"templateId,omitempty"`
	PerformedAt time.Time          `bson:"performedAt" json:"performedAt"`
	Entries    []WorkoutLogEntry   `bson:"entries" json:"entries"`
	Notes      string              `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
}

// WorkoutLogEntry is one exercise performed within a logged workout.
type WorkoutLogEntry struct {
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	SetsDone   string             `bson:"setsDone" json:"setsDone"` // same "NxM[@kg]" shape as the prescription
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
}
