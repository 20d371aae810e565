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

const workoutLogCollectionName = "workout_logs"

// mongoWorkoutLogRepository implements repository.WorkoutLogRepository
type mongoWorkoutLogRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutLogRepository creates a new WorkoutLog repository.
func NewMongoWorkoutLogRepository(db *mongo.Database) repository.WorkoutLogRepository {
	return &mongoWorkoutLogRepository{
		collection: db.Collection(workoutLogCollectionName),
	}
}

// Create inserts a new workout log.
func (r *mongoWorkoutLogRepository) Create(ctx context.Context, log *domain.WorkoutLog) (primitive.ObjectID, error) {
	if log.ClientID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout log requires clientId")
	}
	if len(log.Entries) == 0 {
		return primitive.NilObjectID, errors.New("workout log requires at least one entry")
	}

	log.ID = primitive.NewObjectID()
	log.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, log)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted log ID")
	}
	return insertedID, nil
}

// GetByClientID retrieves a client's workout logs, most recent first.
func (r *mongoWorkoutLogRepository) GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.WorkoutLog, error) {
	return r.find(ctx, bson.M{"clientId": clientID})
}

// GetByCoachID retrieves the workout logs of all clients a coach manages.
func (r *mongoWorkoutLogRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.WorkoutLog, error) {
	return r.find(ctx, bson.M{"coachId": coachID})
}

func (r *mongoWorkoutLogRepository) find(ctx context.Context, filter bson.M) ([]domain.WorkoutLog, error) {
	var logs []domain.WorkoutLog
	findOptions := options.Find().SetSort(bson.D{{Key: "performedAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

// EnsureWorkoutLogIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutLogIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "performedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
