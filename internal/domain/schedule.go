package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduleSlot is a bookable session window published by a coach.
type ScheduleSlot struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID   primitive.ObjectID `bson:"coachId" json:"coachId"`
	Title     string             `bson:"title" json:"title"` // e.g., "1:1 Coaching Call"
	StartsAt  time.Time          `bson:"startsAt" json:"startsAt"`
	EndsAt    time.Time          `bson:"endsAt" json:"endsAt"`
	Capacity  int                `bson:"capacity" json:"capacity"` // max bookings, >= 1
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Booking records a client's reservation of a schedule slot.
type Booking struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SlotID    primitive.ObjectID `bson:"slotId" json:"slotId"`
	ClientID  primitive.ObjectID `bson:"clientId" json:"clientId"`
	CoachID   primitive.ObjectID `bson:"coachId" json:"coachId"` // Denormalized for coach-side queries
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
