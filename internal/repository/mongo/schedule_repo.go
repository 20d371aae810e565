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
	slotCollectionName    = "schedule_slots"
	bookingCollectionName = "bookings"
)

// --- Slots ---

// mongoSlotRepository implements repository.SlotRepository
type mongoSlotRepository struct {
	collection *mongo.Collection
}

// NewMongoSlotRepository creates a new ScheduleSlot repository.
func NewMongoSlotRepository(db *mongo.Database) repository.SlotRepository {
	return &mongoSlotRepository{
		collection: db.Collection(slotCollectionName),
	}
}

// Create inserts a new schedule slot.
func (r *mongoSlotRepository) Create(ctx context.Context, slot *domain.ScheduleSlot) (primitive.ObjectID, error) {
	if slot.CoachID == primitive.NilObjectID || slot.Title == "" {
		return primitive.NilObjectID, errors.New("slot requires coachId and title")
	}
	if !slot.EndsAt.After(slot.StartsAt) {
		return primitive.NilObjectID, errors.New("slot must end after it starts")
	}
	if slot.Capacity < 1 {
		return primitive.NilObjectID, errors.New("slot capacity must be >= 1")
	}

	slot.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	slot.CreatedAt = now
	slot.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, slot)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted slot ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single slot.
func (r *mongoSlotRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ScheduleSlot, error) {
	var slot domain.ScheduleSlot
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&slot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &slot, nil
}

// GetByCoachID retrieves all slots published by a coach, soonest first.
func (r *mongoSlotRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.ScheduleSlot, error) {
	var slots []domain.ScheduleSlot
	filter := bson.M{"coachId": coachID}
	findOptions := options.Find().SetSort(bson.D{{Key: "startsAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &slots); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

// Delete removes a slot, ensuring it belongs to the specified coach.
func (r *mongoSlotRepository) Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error {
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

// EnsureSlotIndexes creates necessary indexes. Call during startup.
func EnsureSlotIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}, {Key: "startsAt", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}

// --- Bookings ---

// mongoBookingRepository implements repository.BookingRepository
type mongoBookingRepository struct {
	collection *mongo.Collection
}

// NewMongoBookingRepository creates a new Booking repository.
func NewMongoBookingRepository(db *mongo.Database) repository.BookingRepository {
	return &mongoBookingRepository{
		collection: db.Collection(bookingCollectionName),
	}
}

// Create inserts a new booking. The unique (slotId, clientId) index backstops
// the service-level double-booking check.
func (r *mongoBookingRepository) Create(ctx context.Context, booking *domain.Booking) (primitive.ObjectID, error) {
	if booking.SlotID == primitive.NilObjectID || booking.ClientID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("booking requires slotId and clientId")
	}

	booking.ID = primitive.NewObjectID()
	booking.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted booking ID")
	}
	return insertedID, nil
}

// GetBySlotID retrieves all bookings for a slot.
func (r *mongoBookingRepository) GetBySlotID(ctx context.Context, slotID primitive.ObjectID) ([]domain.Booking, error) {
	var bookings []domain.Booking
	cursor, err := r.collection.Find(ctx, bson.M{"slotId": slotID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

// GetByClientID retrieves all of a client's bookings, newest first.
func (r *mongoBookingRepository) GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.Booking, error) {
	var bookings []domain.Booking
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"clientId": clientID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

// CountBySlotID returns the number of bookings held against a slot.
func (r *mongoBookingRepository) CountBySlotID(ctx context.Context, slotID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"slotId": slotID})
}

// ExistsForSlotAndClient reports whether the client already booked the slot.
func (r *mongoBookingRepository) ExistsForSlotAndClient(ctx context.Context, slotID, clientID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"slotId": slotID, "clientId": clientID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete removes a booking, scoped to the owning client.
func (r *mongoBookingRepository) Delete(ctx context.Context, id, clientID primitive.ObjectID) error {
	filter := bson.M{"_id": id, "clientId": clientID}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureBookingIndexes creates necessary indexes. Call during startup.
func EnsureBookingIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slotId", Value: 1}, {Key: "clientId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
