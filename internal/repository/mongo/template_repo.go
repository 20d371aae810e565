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
	templateCollectionName     = "workout_templates"
	templateItemCollectionName = "template_items"
)

// mongoTemplateRepository implements repository.TemplateRepository
type mongoTemplateRepository struct {
	collection *mongo.Collection
}

// NewMongoTemplateRepository creates a new WorkoutTemplate repository.
func NewMongoTemplateRepository(db *mongo.Database) repository.TemplateRepository {
	return &mongoTemplateRepository{
		collection: db.Collection(templateCollectionName),
	}
}

// Create inserts a new workout template.
func (r *mongoTemplateRepository) Create(ctx context.Context, tpl *domain.WorkoutTemplate) (primitive.ObjectID, error) {
	if tpl.Name == "" || tpl.CoachID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("template name and coach ID are required")
	}

	tpl.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, tpl)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted template ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single template by its ID.
func (r *mongoTemplateRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	var tpl domain.WorkoutTemplate
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tpl)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

// GetByCoachID retrieves all templates owned by a coach.
func (r *mongoTemplateRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.WorkoutTemplate, error) {
	var templates []domain.WorkoutTemplate
	filter := bson.M{"coachId": coachID}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return templates, nil
}

// Update modifies template name/description. CoachID is never changed here.
func (r *mongoTemplateRepository) Update(ctx context.Context, tpl *domain.WorkoutTemplate) error {
	if tpl.ID == primitive.NilObjectID {
		return errors.New("template ID is required for update")
	}
	if tpl.Name == "" {
		return errors.New("template name cannot be empty")
	}

	filter := bson.M{"_id": tpl.ID}
	update := bson.M{
		"$set": bson.M{
			"name":        tpl.Name,
			"description": tpl.Description,
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

// Delete removes a template, ensuring it belongs to the specified coach.
func (r *mongoTemplateRepository) Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error {
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

// EnsureTemplateIndexes creates necessary indexes. Call during startup.
func EnsureTemplateIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}

// --- Template items ---

// mongoTemplateItemRepository implements repository.TemplateItemRepository.
// It is the durable side of the item-order store: every mutating filter is
// scoped by templateId so an id from another template cannot be touched.
type mongoTemplateItemRepository struct {
	collection *mongo.Collection
}

// NewMongoTemplateItemRepository creates a new TemplateItem repository.
func NewMongoTemplateItemRepository(db *mongo.Database) repository.TemplateItemRepository {
	return &mongoTemplateItemRepository{
		collection: db.Collection(templateItemCollectionName),
	}
}

// Create inserts a new template item. The caller supplies the order (append
// position math lives in the ordering package).
func (r *mongoTemplateItemRepository) Create(ctx context.Context, item *domain.TemplateItem) (primitive.ObjectID, error) {
	if item.TemplateID == primitive.NilObjectID || item.ExerciseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("template item requires templateId and exerciseId")
	}
	if item.Order < 1 {
		return primitive.NilObjectID, errors.New("template item order must be >= 1")
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
		return primitive.NilObjectID, errors.New("failed to convert inserted item ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single template item.
func (r *mongoTemplateItemRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TemplateItem, error) {
	var item domain.TemplateItem
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// ListByTemplate retrieves all items for a template, sorted by order.
func (r *mongoTemplateItemRepository) ListByTemplate(ctx context.Context, templateID primitive.ObjectID) ([]domain.TemplateItem, error) {
	var items []domain.TemplateItem
	filter := bson.M{"templateId": templateID}
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

// SetOrder updates a single item's order, scoped to the owning template.
func (r *mongoTemplateItemRepository) SetOrder(ctx context.Context, id, templateID primitive.ObjectID, order int) error {
	if order < 1 {
		return errors.New("order must be >= 1")
	}
	filter := bson.M{"_id": id, "templateId": templateID}
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

// Delete removes an item, scoped to the owning template.
func (r *mongoTemplateItemRepository) Delete(ctx context.Context, id, templateID primitive.ObjectID) error {
	filter := bson.M{"_id": id, "templateId": templateID}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByTemplate removes all items belonging to a template. Used when the
// template itself is deleted so no orphan rows remain.
func (r *mongoTemplateItemRepository) DeleteByTemplate(ctx context.Context, templateID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"templateId": templateID})
	return err
}

// EnsureTemplateItemIndexes creates necessary indexes. Call during startup.
func EnsureTemplateItemIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "templateId", Value: 1}, {Key: "order", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
