package repository

import (
	"context"

	"github.com/slankgy89/fitness-coach-portal-sub000/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
	ErrDuplicate    = RepositoryError("duplicate record")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	AddClientIDToCoach(ctx context.Context, coachID, clientID primitive.ObjectID) error
	GetClientsByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)
	SetCoachForClient(ctx context.Context, clientID, coachID primitive.ObjectID) error
}

// ExerciseRepository defines the interface for interacting with exercise data.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	// GetByIDs fetches a batch in one query; the group partitioner uses it to
	// resolve exercise types for a whole template without N lookups.
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error // Ensure coach owns the exercise
}

// TemplateRepository defines the interface for workout template data.
type TemplateRepository interface {
	Create(ctx context.Context, tpl *domain.WorkoutTemplate) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutTemplate, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.WorkoutTemplate, error)
	Update(ctx context.Context, tpl *domain.WorkoutTemplate) error
	Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error
}

// TemplateItemRepository is the item-order store for template items.
// SetOrder is scoped by the owning template: an item id that does not belong
// to that template yields ErrNotFound and no write.
type TemplateItemRepository interface {
	Create(ctx context.Context, item *domain.TemplateItem) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TemplateItem, error)
	ListByTemplate(ctx context.Context, templateID primitive.ObjectID) ([]domain.TemplateItem, error)
	SetOrder(ctx context.Context, id, templateID primitive.ObjectID, order int) error
	Delete(ctx context.Context, id, templateID primitive.ObjectID) error
	DeleteByTemplate(ctx context.Context, templateID primitive.ObjectID) error
}

// ProgramRepository defines the interface for nutrition program data.
type ProgramRepository interface {
	Create(ctx context.Context, program *domain.NutritionProgram) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.NutritionProgram, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.NutritionProgram, error)
	Update(ctx context.Context, program *domain.NutritionProgram) error
	Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error
}

// MealRepository is the item-order store for meals. Meals order within a
// (program, day) scope; ListByProgram serves day-number derivations.
type MealRepository interface {
	Create(ctx context.Context, meal *domain.Meal) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Meal, error)
	ListByProgram(ctx context.Context, programID primitive.ObjectID) ([]domain.Meal, error)
	ListByProgramDay(ctx context.Context, programID primitive.ObjectID, dayNumber int) ([]domain.Meal, error)
	SetOrder(ctx context.Context, id, programID primitive.ObjectID, order int) error
	Delete(ctx context.Context, id, programID primitive.ObjectID) error
	DeleteByProgram(ctx context.Context, programID primitive.ObjectID) error
}

// MealItemRepository is the item-order store for meal items.
type MealItemRepository interface {
	Create(ctx context.Context, item *domain.MealItem) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MealItem, error)
	ListByMeal(ctx context.Context, mealID primitive.ObjectID) ([]domain.MealItem, error)
	SetOrder(ctx context.Context, id, mealID primitive.ObjectID, order int) error
	Delete(ctx context.Context, id, mealID primitive.ObjectID) error
	DeleteByMeal(ctx context.Context, mealID primitive.ObjectID) error
}

// FoodRepository defines the interface for food library data.
type FoodRepository interface {
	Create(ctx context.Context, food *domain.Food) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Food, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Food, error)
	Update(ctx context.Context, food *domain.Food) error
	Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error
}

// SlotRepository defines the interface for schedule slot data.
type SlotRepository interface {
	Create(ctx context.Context, slot *domain.ScheduleSlot) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ScheduleSlot, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.ScheduleSlot, error)
	Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error
}

// BookingRepository defines the interface for booking data.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (primitive.ObjectID, error)
	GetBySlotID(ctx context.Context, slotID primitive.ObjectID) ([]domain.Booking, error)
	GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.Booking, error)
	CountBySlotID(ctx context.Context, slotID primitive.ObjectID) (int64, error)
	ExistsForSlotAndClient(ctx context.Context, slotID, clientID primitive.ObjectID) (bool, error)
	Delete(ctx context.Context, id, clientID primitive.ObjectID) error
}

// AgreementRepository defines the interface for agreement documents.
type AgreementRepository interface {
	Create(ctx context.Context, agreement *domain.Agreement) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Agreement, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Agreement, error)
	Update(ctx context.Context, agreement *domain.Agreement) error
	Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error
}

// SignatureRepository defines the interface for agreement signatures.
type SignatureRepository interface {
	Create(ctx context.Context, sig *domain.AgreementSignature) (primitive.ObjectID, error)
	GetByAgreementID(ctx context.Context, agreementID primitive.ObjectID) ([]domain.AgreementSignature, error)
	ExistsForAgreementAndClient(ctx context.Context, agreementID, clientID primitive.ObjectID) (bool, error)
}

// WorkoutLogRepository defines the interface for client workout logs.
type WorkoutLogRepository interface {
	Create(ctx context.Context, log *domain.WorkoutLog) (primitive.ObjectID, error)
	GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.WorkoutLog, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.WorkoutLog, error)
}
