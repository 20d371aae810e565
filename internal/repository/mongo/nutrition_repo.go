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
	programCollectionName  = "nutrition_programs"
	mealCollectionName     = "meals"
	mealItemCollectionName = "meal_items"
)

// --- Programs ---

// mongoProgramRepository implements repository.ProgramRepository
type mongoProgramRepository struct {
	collection *mongo.Collection
}

// NewMongoProgramRepository creates a new NutritionProgram repository.
func NewMongoProgramRepository(db *mongo.Database) repository.ProgramRepository {
	return &mongoProgramRepository{
		collection: db.Collection(programCollectionName),
	}
}

// Create inserts a new nutrition program.
func (r *mongoProgramRepository) Create(ctx context.Context, program *domain.NutritionProgram) (primitive.ObjectID, error) {
	if program.Name == "" || program.CoachID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("program name and coach ID are required")
	}

	program.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	program.CreatedAt = now
	program.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, program)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted program ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single program by its ID.
func (r *mongoProgramRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.NutritionProgram, error) {
	var program domain.NutritionProgram
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&program)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &program, nil
}

// GetByCoachID retrieves all programs owned by a coach.
func (r *mongoProgramRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.NutritionProgram, error) {
	var programs []domain.NutritionProgram
	filter := bson.M{"coachId": coachID}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &programs); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return programs, nil
}

// Update modifies program metadata, duration and macro targets.
func (r *mongoProgramRepository) Update(ctx context.Context, program *domain.NutritionProgram) error {
	if program.ID == primitive.NilObjectID {
		return errors.New("program ID is required for update")
	}
	if program.Name == "" {
		return errors.New("program name cannot be empty")
	}

	filter := bson.M{"_id": program.ID}
	update := bson.M{
		"$set": bson.M{
			"name":          program.Name,
			"description":   program.Description,
			"durationValue": program.DurationValue,
			"durationUnit":  program.DurationUnit,
			"calories":      program.Calories,
			"protein":       program.Protein,
			"carbs":         program.Carbs,
			"fat":           program.Fat,
			"updatedAt":     time.Now().UTC(),
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

// Delete removes a program, ensuring it belongs to the specified coach.
func (r *mongoProgramRepository) Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error {
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

// EnsureProgramIndexes creates necessary indexes. Call during startup.
func EnsureProgramIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}

// --- Meals ---

// mongoMealRepository implements repository.MealRepository. Meal order is
// unique within the (programId, dayNumber) scope; mutating filters carry the
// programId so meals of other programs cannot be touched.
type mongoMealRepository struct {
	collection *mongo.Collection
}

// NewMongoMealRepository creates a new Meal repository.
func NewMongoMealRepository(db *mongo.Database) repository.MealRepository {
	return &mongoMealRepository{
		collection: db.Collection(mealCollectionName),
	}
}

// Create inserts a new meal. Caller supplies dayNumber and order.
func (r *mongoMealRepository) Create(ctx context.Context, meal *domain.Meal) (primitive.ObjectID, error) {
	if meal.ProgramID == primitive.NilObjectID || meal.Name == "" {
		return primitive.NilObjectID, errors.New("meal requires programId and name")
	}
	if meal.DayNumber < 1 || meal.Order < 1 {
		return primitive.NilObjectID, errors.New("meal dayNumber and order must be >= 1")
	}

	meal.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	meal.CreatedAt = now
	meal.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, meal)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted meal ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single meal.
func (r *mongoMealRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Meal, error) {
	var meal domain.Meal
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&meal)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &meal, nil
}

// ListByProgram retrieves all meals for a program across all days.
func (r *mongoMealRepository) ListByProgram(ctx context.Context, programID primitive.ObjectID) ([]domain.Meal, error) {
	var meals []domain.Meal
	filter := bson.M{"programId": programID}
	findOptions := options.Find().SetSort(bson.D{{Key: "dayNumber", Value: 1}, {Key: "order", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &meals); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return meals, nil
}

// ListByProgramDay retrieves the meals of one day, sorted by order.
func (r *mongoMealRepository) ListByProgramDay(ctx context.Context, programID primitive.ObjectID, dayNumber int) ([]domain.Meal, error) {
	var meals []domain.Meal
	filter := bson.M{"programId": programID, "dayNumber": dayNumber}
	findOptions := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &meals); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return meals, nil
}

// SetOrder updates a single meal's order, scoped to the owning program.
func (r *mongoMealRepository) SetOrder(ctx context.Context, id, programID primitive.ObjectID, order int) error {
	if order < 1 {
		return errors.New("order must be >= 1")
	}
	filter := bson.M{"_id": id, "programId": programID}
	update := bson.M{
		"$set": bson.M{"order": order, "updatedAt": time.Now().UTC()},
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

// Delete removes a meal, scoped to the owning program.
func (r *mongoMealRepository) Delete(ctx context.Context, id, programID primitive.ObjectID) error {
	filter := bson.M{"_id": id, "programId": programID}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByProgram removes all meals of a program.
func (r *mongoMealRepository) DeleteByProgram(ctx context.Context, programID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"programId": programID})
	return err
}

// EnsureMealIndexes creates necessary indexes. Call during startup.
func EnsureMealIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "programId", Value: 1}, {Key: "dayNumber", Value: 1}, {Key: "order", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}

// --- Meal items ---

// mongoMealItemRepository implements repository.MealItemRepository.
type mongoMealItemRepository struct {
	collection *mongo.Collection
}

// NewMongoMealItemRepository creates a new MealItem repository.
func NewMongoMealItemRepository(db *mongo.Database) repository.MealItemRepository {
	return &mongoMealItemRepository{
		collection: db.Collection(mealItemCollectionName),
	}
}

// Create inserts a new meal item. Caller supplies the order.
func (r *mongoMealItemRepository) Create(ctx context.Context, item *domain.MealItem) (primitive.ObjectID, error) {
	if item.MealID == primitive.NilObjectID || item.FoodID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("meal item requires mealId and foodId")
	}
	if item.Order < 1 {
		return primitive.NilObjectID, errors.New("meal item order must be >= 1")
	}
	if item.AmountG <= 0 {
		return primitive.NilObjectID, errors.New("meal item amount must be positive")
	}

	item.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, item)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted meal item ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single meal item.
func (r *mongoMealItemRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MealItem, error) {
	var item domain.MealItem
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// ListByMeal retrieves all items of a meal, sorted by order.
func (r *mongoMealItemRepository) ListByMeal(ctx context.Context, mealID primitive.ObjectID) ([]domain.MealItem, error) {
	var items []domain.MealItem
	filter := bson.M{"mealId": mealID}
	findOptions := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// SetOrder updates a single item's order, scoped to the owning meal.
func (r *mongoMealItemRepository) SetOrder(ctx context.Context, id, mealID primitive.ObjectID, order int) error {
	if order < 1 {
		return errors.New("order must be >= 1")
	}
	filter := bson.M{"_id": id, "mealId": mealID}
	update := bson.M{
		"$set": bson.M{"order": order, "updatedAt": time.Now().UTC()},
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

// Delete removes a meal item, scoped to the owning meal.
func (r *mongoMealItemRepository) Delete(ctx context.Context, id, mealID primitive.ObjectID) error {
	filter := bson.M{"_id": id, "mealId": mealID}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByMeal removes all items of a meal.
func (r *mongoMealItemRepository) DeleteByMeal(ctx context.Context, mealID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"mealId": mealID})
	return err
}

// EnsureMealItemIndexes creates necessary indexes. Call during startup.
func EnsureMealItemIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "mealId", Value: 1}, {Key: "order", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
