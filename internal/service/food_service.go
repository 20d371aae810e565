package service

import (
	"context"
	"errors"

	"github.com/slankgy89/fitness-coach-portal-sub000/internal/domain"
	"github.com/slankgy89/fitness-coach-portal-sub000/internal/repository"
	"github.com/slankgy89/fitness-coach-portal-sub000/internal/usda"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrFoodNotFound     = errors.New("food not found")
	ErrFoodAccessDenied = errors.New("access denied to modify or delete this food")
)

// Food sources.
const (
	FoodSourceManual = "manual"
	FoodSourceUSDA   = "usda"
)

// --- Service Interface ---
type FoodService interface {
	CreateFood(ctx context.Context, coachID primitive.ObjectID, food domain.Food) (*domain.Food, error)
	GetFoodsByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.Food, error)
	GetFoodByID(ctx context.Context, coachID, foodID primitive.ObjectID) (*domain.Food, error)
	UpdateFood(ctx context.Context, coachID primitive.ObjectID, food domain.Food) (*domain.Food, error)
	DeleteFood(ctx context.Context, coachID, foodID primitive.ObjectID) error
	ImportUSDAFood(ctx context.Context, coachID primitive.ObjectID, payload []byte) (*domain.Food, error)
}

// foodService implements the FoodService interface.
type foodService struct {
	foodRepo repository.FoodRepository
}

// NewFoodService creates a new instance of foodService.
func NewFoodService(foodRepo repository.FoodRepository) FoodService {
	return &foodService{foodRepo: foodRepo}
}

// CreateFood adds a manually entered food to the coach's library.
func (s *foodService) CreateFood(ctx context.Context, coachID primitive.ObjectID, food domain.Food) (*domain.Food, error) {
	if food.Name == "" || coachID == primitive.NilObjectID {
		return nil, ErrValidationFailed
	}
	if food.CaloriesPer100g < 0 || food.ProteinPer100g < 0 || food.CarbsPer100g < 0 || food.FatPer100g < 0 {
		return nil, ErrValidationFailed
	}

	food.CoachID = coachID
	food.Source = FoodSourceManual
	food.FdcID = 0

	foodID, err := s.foodRepo.Create(ctx, &food)
	if err != nil {
		return nil, err
	}
	return s.foodRepo.GetByID(ctx, foodID)
}

// GetFoodsByCoach lists the coach's food library.
func (s *foodService) GetFoodsByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.Food, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	return s.foodRepo.GetByCoachID(ctx, coachID)
}

// GetFoodByID fetches one food, enforcing ownership.
func (s *foodService) GetFoodByID(ctx context.Context, coachID, foodID primitive.ObjectID) (*domain.Food, error) {
	food, err := s.foodRepo.GetByID(ctx, foodID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFoodNotFound
		}
		return nil, err
	}
	if food.CoachID != coachID {
		return nil, ErrFoodAccessDenied
	}
	return food, nil
}

// UpdateFood updates a food's name and nutrient values, enforcing ownership.
// Source and FdcID are immutable after creation.
func (s *foodService) UpdateFood(ctx context.Context, coachID primitive.ObjectID, food domain.Food) (*domain.Food, error) {
	if food.Name == "" {
		return nil, ErrValidationFailed
	}
	existing, err := s.GetFoodByID(ctx, coachID, food.ID)
	if err != nil {
		return nil, err
	}

	existing.Name = food.Name
	existing.Brand = food.Brand
	existing.CaloriesPer100g = food.CaloriesPer100g
	existing.ProteinPer100g = food.ProteinPer100g
	existing.CarbsPer100g = food.CarbsPer100g
	existing.FatPer100g = food.FatPer100g

	if err := s.foodRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFoodNotFound
		}
		return nil, err
	}
	return existing, nil
}

// DeleteFood removes a food from the library. Meal items referencing the food
// keep their snapshot of the ID; rendering handles the dangling reference.
func (s *foodService) DeleteFood(ctx context.Context, coachID, foodID primitive.ObjectID) error {
	if coachID == primitive.NilObjectID || foodID == primitive.NilObjectID {
		return errors.New("coach ID and food ID are required")
	}
	err := s.foodRepo.Delete(ctx, foodID, coachID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrFoodNotFound
		}
		return err
	}
	return nil
}

// ImportUSDAFood parses a FoodData Central payload and stores the result as a
// library food owned by the coach.
func (s *foodService) ImportUSDAFood(ctx context.Context, coachID primitive.ObjectID, payload []byte) (*domain.Food, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}

	imported, err := usda.ParseFood(payload)
	if err != nil {
		return nil, err
	}

	food := &domain.Food{
		CoachID:         coachID,
		Name:            imported.Name,
		Brand:           imported.Brand,
		CaloriesPer100g: imported.CaloriesPer100g,
		ProteinPer100g:  imported.ProteinPer100g,
		CarbsPer100g:    imported.CarbsPer100g,
		FatPer100g:      imported.FatPer100g,
		FdcID:           imported.FdcID,
		Source:          FoodSourceUSDA,
	}

	foodID, err := s.foodRepo.Create(ctx, food)
	if err != nil {
		return nil, err
	}
	return s.foodRepo.GetByID(ctx, foodID)
}
