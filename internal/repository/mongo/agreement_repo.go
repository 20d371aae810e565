package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/slankgy89/fitness-coach-portal-sub000/internal/domain"
	"github.com/slankgy89/fitness-coach-portal-sub000/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	agreementCollectionName = "agreements"
	signatureCollectionName = "agreement_signatures"
)

// --- Agreements ---

// mongoAgreementRepository implements repository.AgreementRepository
type mongoAgreementRepository struct {
	collection *mongo.Collection
}

// NewMongoAgreementRepository creates a new Agreement repository.
func NewMongoAgreementRepository(db *mongo.Database) repository.AgreementRepository {
	return &mongoAgreementRepository{
		collection: db.Collection(agreementCollectionName),
	}
}

// Create inserts a new agreement.
func (r *mongoAgreementRepository) Create(ctx context.Context, agreement *domain.Agreement) (primitive.ObjectID, error) {
	if agreement.CoachID == primitive.NilObjectID || agreement.Title == "" {
		return primitive.NilObjectID, errors.New("agreement requires coachId and title")
	}

	agreement.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	agreement.CreatedAt = now
	agreement.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, agreement)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted agreement ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single agreement.
func (r *mongoAgreementRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Agreement, error) {
	var agreement domain.Agreement
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&agreement)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &agreement, nil
}

// GetByCoachID retrieves all agreements created by a coach.
func (r *mongoAgreementRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Agreement, error) {
	var agreements []domain.Agreement
	filter := bson.M{"coachId": coachID}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &agreements); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return agreements, nil
}

// Update modifies an agreement's title, body and document key.
func (r *mongoAgreementRepository) Update(ctx context.Context, agreement *domain.Agreement) error {
	if agreement.ID == primitive.NilObjectID {
		return errors.New("agreement ID is required for update")
	}
	if agreement.Title == "" {
		return errors.New("agreement title cannot be empty")
	}

	filter := bson.M{"_id": agreement.ID}
	update := bson.M{
		"$set": bson.M{
			"title":       agreement.Title,
			"body":        agreement.Body,
			"documentKey": agreement.DocumentKey,
			"updatedAt":   time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes an agreement, ensuring it belongs to the specified coach.
func (r *mongoAgreementRepository) Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error {
	filter := bson.M{"_id": id, "coachId": coachID}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureAgreementIndexes creates necessary indexes. Call during startup.
func EnsureAgreementIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}

// --- Signatures ---

// mongoSignatureRepository implements repository.SignatureRepository
type mongoSignatureRepository struct {
	collection *mongo.Collection
}

// NewMongoSignatureRepository creates a new AgreementSignature repository.
func NewMongoSignatureRepository(db *mongo.Database) repository.SignatureRepository {
	return &mongoSignatureRepository{
		collection: db.Collection(signatureCollectionName),
	}
}

// Create records a client's signature. The unique (agreementId, clientId)
// index rejects double signing.
func (r *mongoSignatureRepository) Create(ctx context.Context, sig *domain.AgreementSignature) (primitive.ObjectID, error) {
	if sig.AgreementID == primitive.NilObjectID || sig.ClientID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("signature requires agreementId and clientId")
	}
	if sig.SignedName == "" {
		return primitive.NilObjectID, errors.New("signature requires a signed name")
	}

	sig.ID = primitive.NewObjectID()
	sig.SignedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, sig)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted signature ID")
	}
	return insertedID, nil
}

// GetByAgreementID retrieves all signatures on an agreement.
func (r *mongoSignatureRepository) GetByAgreementID(ctx context.Context, agreementID primitive.ObjectID) ([]domain.AgreementSignature, error) {
	var sigs []domain.AgreementSignature
	findOptions := options.Find().SetSort(bson.D{{Key: "signedAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"agreementId": agreementID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &sigs); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return sigs, nil
}

// ExistsForAgreementAndClient reports whether the client already signed.
func (r *mongoSignatureRepository) ExistsForAgreementAndClient(ctx context.Context, agreementID, clientID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"agreementId": agreementID, "clientId": clientID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// EnsureSignatureIndexes creates necessary indexes. Call during startup.
func EnsureSignatureIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "agreementId", Value: 1}, {Key: "clientId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
