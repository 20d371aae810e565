package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutTemplate is a reusable ordered list of exercises built by a coach.
type WorkoutTemplate struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID     primitive.ObjectID `bson:"coachId" json:"coachId"`
	Name        string             `bson:"name" json:"name"` // e.g., "Push Day A"
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TemplateItem is one exercise entry inside a WorkoutTemplate.
// Order is 1-based and unique within the owning template.
type TemplateItem struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TemplateID primitive.ObjectID `bson:"templateId" json:"templateId"`
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Order      int                `bson:"order" json:"order"`

	// SetScheme holds the prescription, e.g. "3x10" or "5x5@102.5".
	SetScheme string `bson:"setScheme" json:"setScheme"`
	RestSec   int    `bson:"restSec,omitempty" json:"restSec,omitempty"`
	Notes     string `bson:"notes,omitempty" json:"notes,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
