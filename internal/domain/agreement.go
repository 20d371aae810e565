package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Agreement is a document a coach asks clients to sign, e.g. a liability
// waiver. Body holds the agreement text; DocumentKey optionally points at a
// PDF stored in object storage.
type Agreement struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID     primitive.ObjectID `bson:"coachId" json:"coachId"`
	Title       string             `bson:"title" json:"title"`
	Body        string             `bson:"body" json:"body"`
	DocumentKey string             `bson:"documentKey,omitempty" json:"-"` // S3 object key, internal use
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AgreementSignature records a client's acceptance of an agreement.
// One signature per (agreement, client).
type AgreementSignature struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AgreementID primitive.ObjectID `bson:"agreementId" json:"agreementId"`
	ClientID    primitive.ObjectID `bson:"clientId" json:"clientId"`
	CoachID     primitive.ObjectID `bson:"coachId" json:"coachId"` // Denormalized
	SignedName  string             `bson:"signedName" json:"signedName"`
	SignedAt    time.Time          `bson:"signedAt" json:"signedAt"`
}
