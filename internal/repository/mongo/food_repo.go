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

const foodCollectionName = "foods"

// mongoFoodRepository implements repository.FoodRepository
type mongoFoodRepository struct {
	collection *mongo.Collection
}

// NewMongoFoodRepository creates a new Food repository backed by MongoDB.
func NewMongoFoodRepository(db *mongo.Database) repository.FoodRepository {
	return &mongoFoodRepository{
		collection: db.Collection(foodCollectionName),
	}
}

// Create inserts a new food into the coach's library.
func (r *mongoFoodRepository) Create(ctx context.Context, food *domain.Food) (primitive.ObjectID, error) {
	if food.Name == "" || food.CoachID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("food name and coach ID are required")
	}

	food.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	food.CreatedAt = now
	food.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, food)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted food ID")
	}
	return insertedID, nil
}

// GetByID retrieves a food by its ID.
func (r *mongoFoodRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Food, error) {
	var food domain.Food
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&food)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &food, nil
}

// GetByCoachID retrieves all foods in a coach's library.
func (r *mongoFoodRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Food, error) {
	var foods []domain.Food
	filter := bson.M{"coachId": coachID}
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &foods); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return foods, nil
}

// Update modifies an existing food. CoachID and Source are never changed here.
func (r *mongoFoodRepository) Update(ctx context.Context, food *domain.Food) error {
	if food.ID == primitive.NilObjectID {
		return errors.New("food ID is required for update")
	}
	if food.Name == "" {
		return errors.New("food name cannot be empty")
	}

	filter := bson.M{"_id": food.ID}
	update := bson.M{
		"$set": bson.M{
			"name":            food.Name,
			"brand":           food.Brand,
			"caloriesPer100g": food.CaloriesPer100g,
			"proteinPer100g":  food.ProteinPer100g,
			"carbsPer100g":    food.CarbsPer100g,
			"fatPer100g":      food.FatPer100g,
			"updatedAt":       time.Now().UTC(),
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

// Delete removes a food, ensuring it belongs to the specified coach.
func (r *mongoFoodRepository) Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error {
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

// EnsureFoodIndexes creates necessary indexes for the foods collection.
func EnsureFoodIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
