package service

import (
	"context"
	"errors"

	"github.com/slankgy89/fitness-coach-portal-sub000/internal/cache"
	"github.com/slankgy89/fitness-coach-portal-sub000/internal/domain"
	"github.com/slankgy89/fitness-coach-portal-sub000/internal/ordering"
	"github.com/slankgy89/fitness-coach-portal-sub000/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrProgramNotFound     = errors.New("nutrition program not found")
	ErrProgramAccessDenied = errors.New("access denied to modify this program")
	ErrMealNotFound        = errors.New("meal not found")
	ErrMealItemNotFound    = errors.New("meal item not found")
	ErrInvalidMacroTarget  = errors.New("macro target min must be non-negative and not exceed max")
	ErrInvalidDuration     = errors.New("duration unit must be days, weeks or months")
)

// DayView is one day of a program with its meals in order.
type DayView struct {
	DayNumber int
	Meals     []domain.Meal
}

// WeekBucket groups days into display weeks of seven. Weeks are derived at
// read time; nothing about them is stored.
type WeekBucket struct {
	Week int
	Days []DayView
}

// ProgramSchedule is the week-paced read view of a program.
type ProgramSchedule struct {
	Program   *domain.NutritionProgram
	WeekCount int
	Weeks     []WeekBucket
}

// --- Service Interface ---
type NutritionService interface {
	CreateProgram(ctx context.Context, coachID primitive.ObjectID, program domain.NutritionProgram) (*domain.NutritionProgram, error)
	GetProgramsByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.NutritionProgram, error)
	GetProgram(ctx context.Context, coachID, programID primitive.ObjectID) (*domain.NutritionProgram, error)
	UpdateProgram(ctx context.Context, coachID primitive.ObjectID, program domain.NutritionProgram) (*domain.NutritionProgram, error)
	DeleteProgram(ctx context.Context, coachID, programID primitive.ObjectID) error

	GetSchedule(ctx context.Context, coachID, programID primitive.ObjectID) (*ProgramSchedule, error)

	AddDay(ctx context.Context, coachID, programID primitive.ObjectID) (*domain.Meal, error)
	AddMeal(ctx context.Context, coachID, programID primitive.ObjectID, dayNumber int, name string) (*domain.Meal, error)
	RemoveMeal(ctx context.Context, coachID, programID, mealID primitive.ObjectID) error
	MoveMeal(ctx context.Context, coachID, programID, mealID primitive.ObjectID, dir ordering.Direction) (ReorderResult, error)
	ReorderMeals(ctx context.Context, coachID, programID primitive.ObjectID, dayNumber int, orderedIDs []string) (ReorderResult, error)

	GetMealItems(ctx context.Context, coachID, mealID primitive.ObjectID) ([]domain.MealItem, error)
	AddMealItem(ctx context.Context, coachID, mealID, foodID primitive.ObjectID, amountG float64, notes string) (*domain.MealItem, error)
	RemoveMealItem(ctx context.Context, coachID, mealID, itemID primitive.ObjectID) error
	MoveMealItem(ctx context.Context, coachID, mealID, itemID primitive.ObjectID, dir ordering.Direction) (ReorderResult, error)
	ReorderMealItems(ctx context.Context, coachID, mealID primitive.ObjectID, orderedIDs []string) (ReorderResult, error)
}

// nutritionService implements the NutritionService interface.
type nutritionService struct {
	programRepo  repository.ProgramRepository
	mealRepo     repository.MealRepository
	mealItemRepo repository.MealItemRepository
	foodRepo     repository.FoodRepository
	invalidator  cache.Invalidator
}

// NewNutritionService creates a new instance of nutritionService.
func NewNutritionService(
	programRepo repository.ProgramRepository,
	mealRepo repository.MealRepository,
	mealItemRepo repository.MealItemRepository,
	foodRepo repository.FoodRepository,
	invalidator cache.Invalidator,
) NutritionService {
	if invalidator == nil {
		invalidator = cache.NoopInvalidator{}
	}
	return &nutritionService{
		programRepo:  programRepo,
		mealRepo:     mealRepo,
		mealItemRepo: mealItemRepo,
		foodRepo:     foodRepo,
		invalidator:  invalidator,
	}
}

// === Program CRUD ===

func (s *nutritionService) CreateProgram(ctx context.Context, coachID primitive.ObjectID, program domain.NutritionProgram) (*domain.NutritionProgram, error) {
	if program.Name == "" || coachID == primitive.NilObjectID {
		return nil, ErrValidationFailed
	}
	if err := validateProgram(&program); err != nil {
		return nil, err
	}

	program.CoachID = coachID
	programID, err := s.programRepo.Create(ctx, &program)
	if err != nil {
		return nil, err
	}
	return s.programRepo.GetByID(ctx, programID)
}

func (s *nutritionService) GetProgramsByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.NutritionProgram, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	return s.programRepo.GetByCoachID(ctx, coachID)
}

func (s *nutritionService) GetProgram(ctx context.Context, coachID, programID primitive.ObjectID) (*domain.NutritionProgram, error) {
	return s.ownedProgram(ctx, coachID, programID)
}

func (s *nutritionService) UpdateProgram(ctx context.Context, coachID primitive.ObjectID, program domain.NutritionProgram) (*domain.NutritionProgram, error) {
	if program.Name == "" {
		return nil, ErrValidationFailed
	}
	if err := validateProgram(&program); err != nil {
		return nil, err
	}
	existing, err := s.ownedProgram(ctx, coachID, program.ID)
	if err != nil {
		return nil, err
	}

	existing.Name = program.Name
	existing.Description = program.Description
	existing.DurationValue = program.DurationValue
	existing.DurationUnit = program.DurationUnit
	existing.Calories = program.Calories
	existing.Protein = program.Protein
	existing.Carbs = program.Carbs
	existing.Fat = program.Fat

	if err := s.programRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	s.invalidator.Invalidate(ctx, cache.ProgramTag(existing.ID.Hex()))
	return existing, nil
}

func (s *nutritionService) DeleteProgram(ctx context.Context, coachID, programID primitive.ObjectID) error {
	if _, err := s.ownedProgram(ctx, coachID, programID); err != nil {
		return err
	}

	// Remove meal items meal by meal before dropping the meals themselves.
	meals, err := s.mealRepo.ListByProgram(ctx, programID)
	if err != nil {
		return err
	}
	for _, meal := range meals {
		if err := s.mealItemRepo.DeleteByMeal(ctx, meal.ID); err != nil {
			return err
		}
	}
	if err := s.mealRepo.DeleteByProgram(ctx, programID); err != nil {
		return err
	}
	if err := s.programRepo.Delete(ctx, programID, coachID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProgramNotFound
		}
		return err
	}
	s.invalidator.Invalidate(ctx, cache.ProgramTag(programID.Hex()))
	return nil
}

// === Week view ===

// GetSchedule derives the week-paced view: every day present lands in
// week ceil(day/7), and the week count comes from the explicit duration when
// set, else from the highest day number. An empty program still shows week 1.
func (s *nutritionService) GetSchedule(ctx context.Context, coachID, programID primitive.ObjectID) (*ProgramSchedule, error) {
	program, err := s.ownedProgram(ctx, coachID, programID)
	if err != nil {
		return nil, err
	}
	meals, err := s.mealRepo.ListByProgram(ctx, programID)
	if err != nil {
		return nil, err
	}

	mealsByDay := make(map[int][]domain.Meal)
	maxDay := 0
	for _, meal := range meals {
		mealsByDay[meal.DayNumber] = append(mealsByDay[meal.DayNumber], meal)
		if meal.DayNumber > maxDay {
			maxDay = meal.DayNumber
		}
	}

	durationDays := ordering.DurationInDays(program.DurationValue, program.DurationUnit)
	weekCount := ordering.WeekCount(durationDays, maxDay)

	weeks := make([]WeekBucket, weekCount)
	for i := range weeks {
		weeks[i].Week = i + 1
	}
	for day := 1; day <= maxDay; day++ {
		dayMeals, ok := mealsByDay[day]
		if !ok {
			continue
		}
		w := ordering.Week(day)
		if w > weekCount {
			// Days past the explicit duration still render rather than vanish.
			for week := weekCount + 1; week <= w; week++ {
				weeks = append(weeks, WeekBucket{Week: week})
			}
			weekCount = w
		}
		weeks[w-1].Days = append(weeks[w-1].Days, DayView{DayNumber: day, Meals: dayMeals})
	}

	return &ProgramSchedule{Program: program, WeekCount: weekCount, Weeks: weeks}, nil
}

// === Meals ===

// AddDay materializes the next day by creating its first meal. There is no
// standalone day record; the day exists because the meal does.
func (s *nutritionService) AddDay(ctx context.Context, coachID, programID primitive.ObjectID) (*domain.Meal, error) {
	if _, err := s.ownedProgram(ctx, coachID, programID); err != nil {
		return nil, err
	}

	meals, err := s.mealRepo.ListByProgram(ctx, programID)
	if err != nil {
		return nil, err
	}
	dayNumbers := make([]int, len(meals))
	for i, meal := range meals {
		dayNumbers[i] = meal.DayNumber
	}
	nextDay := ordering.NextDayNumber(dayNumbers)

	meal := &domain.Meal{
		ProgramID: programID,
		DayNumber: nextDay,
		Order:     1,
		Name:      "Meal 1",
	}
	mealID, err := s.mealRepo.Create(ctx, meal)
	if err != nil {
		return nil, err
	}
	meal.ID = mealID

	s.invalidator.Invalidate(ctx,
		cache.ProgramTag(programID.Hex()),
		cache.ProgramMealsTag(programID.Hex(), nextDay),
	)
	return meal, nil
}

// AddMeal appends a meal to an existing day.
func (s *nutritionService) AddMeal(ctx context.Context, coachID, programID primitive.ObjectID, dayNumber int, name string) (*domain.Meal, error) {
	if name == "" || dayNumber < 1 {
		return nil, ErrValidationFailed
	}
	if _, err := s.ownedProgram(ctx, coachID, programID); err != nil {
		return nil, err
	}

	dayMeals, err := s.mealRepo.ListByProgramDay(ctx, programID, dayNumber)
	if err != nil {
		return nil, err
	}

	meal := &domain.Meal{
		ProgramID: programID,
		DayNumber: dayNumber,
		Order:     ordering.NextOrder(mealElems(dayMeals)),
		Name:      name,
	}
	mealID, err := s.mealRepo.Create(ctx, meal)
	if err != nil {
		return nil, err
	}
	meal.ID = mealID

	s.invalidator.Invalidate(ctx, cache.ProgramMealsTag(programID.Hex(), dayNumber))
	return meal, nil
}

// RemoveMeal deletes a meal with its items and renumbers the day's survivors.
func (s *nutritionService) RemoveMeal(ctx context.Context, coachID, programID, mealID primitive.ObjectID) error {
	if _, err := s.ownedProgram(ctx, coachID, programID); err != nil {
		return err
	}
	meal, err := s.programMeal(ctx, programID, mealID)
	if err != nil {
		return err
	}

	if err := s.mealItemRepo.DeleteByMeal(ctx, mealID); err != nil {
		return err
	}
	if err := s.mealRepo.Delete(ctx, mealID, programID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMealNotFound
		}
		return err
	}

	remaining, err := s.mealRepo.ListByProgramDay(ctx, programID, meal.DayNumber)
	if err != nil {
		return err
	}
	changes := ordering.Renumber(mealElems(remaining))
	if err := s.applyMealChanges(ctx, programID, changes); err != nil {
		return err
	}

	s.invalidator.Invalidate(ctx,
		cache.ProgramMealsTag(programID.Hex(), meal.DayNumber),
		cache.MealItemsTag(mealID.Hex()),
	)
	return nil
}

// MoveMeal shifts a meal one step within its day.
func (s *nutritionService) MoveMeal(ctx context.Context, coachID, programID, mealID primitive.ObjectID, dir ordering.Direction) (ReorderResult, error) {
	if _, err := s.ownedProgram(ctx, coachID, programID); err != nil {
		return ReorderResult{}, err
	}
	meal, err := s.programMeal(ctx, programID, mealID)
	if err != nil {
		return ReorderResult{}, err
	}

	dayMeals, err := s.mealRepo.ListByProgramDay(ctx, programID, meal.DayNumber)
	if err != nil {
		return ReorderResult{}, err
	}

	changes, err := ordering.MoveItem(mealElems(dayMeals), mealID.Hex(), dir)
	if err != nil {
		if errors.Is(err, ordering.ErrUnknownItem) {
			return ReorderResult{}, ErrMealNotFound
		}
		return ReorderResult{}, err
	}
	if len(changes) == 0 {
		return boundaryResult(dir), nil
	}

	if err := s.applyMealChanges(ctx, programID, changes); err != nil {
		return ReorderResult{}, err
	}
	s.invalidator.Invalidate(ctx, cache.ProgramMealsTag(programID.Hex(), meal.DayNumber))
	return resultReordered, nil
}

// ReorderMeals commits an explicit meal ordering for one day.
func (s *nutritionService) ReorderMeals(ctx context.Context, coachID, programID primitive.ObjectID, dayNumber int, orderedIDs []string) (ReorderResult, error) {
	if len(orderedIDs) == 0 || dayNumber < 1 {
		return ReorderResult{}, ErrValidationFailed
	}
	if _, err := s.ownedProgram(ctx, coachID, programID); err != nil {
		return ReorderResult{}, err
	}

	dayMeals, err := s.mealRepo.ListByProgramDay(ctx, programID, dayNumber)
	if err != nil {
		return ReorderResult{}, err
	}

	changes, err := ordering.CommitOrder(mealElems(dayMeals), orderedIDs)
	if err != nil {
		return ReorderResult{}, err
	}

	if err := s.applyMealChanges(ctx, programID, changes); err != nil {
		return ReorderResult{}, err
	}
	s.invalidator.Invalidate(ctx, cache.ProgramMealsTag(programID.Hex(), dayNumber))
	return resultReordered, nil
}

// === Meal items ===

func (s *nutritionService) GetMealItems(ctx context.Context, coachID, mealID primitive.ObjectID) ([]domain.MealItem, error) {
	if _, _, err := s.ownedMeal(ctx, coachID, mealID); err != nil {
		return nil, err
	}
	return s.mealItemRepo.ListByMeal(ctx, mealID)
}

// AddMealItem appends a food to a meal at max(existing)+1.
func (s *nutritionService) AddMealItem(ctx context.Context, coachID, mealID, foodID primitive.ObjectID, amountG float64, notes string) (*domain.MealItem, error) {
	if amountG <= 0 {
		return nil, ErrValidationFailed
	}
	if _, _, err := s.ownedMeal(ctx, coachID, mealID); err != nil {
		return nil, err
	}

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

	items, err := s.mealItemRepo.ListByMeal(ctx, mealID)
	if err != nil {
		return nil, err
	}

	item := &domain.MealItem{
		MealID:  mealID,
		FoodID:  foodID,
		Order:   ordering.NextOrder(mealItemElems(items)),
		AmountG: amountG,
		Notes:   notes,
	}
	itemID, err := s.mealItemRepo.Create(ctx, item)
	if err != nil {
		return nil, err
	}
	item.ID = itemID

	s.invalidator.Invalidate(ctx, cache.MealItemsTag(mealID.Hex()))
	return item, nil
}

// RemoveMealItem deletes an item and renumbers the meal's survivors.
func (s *nutritionService) RemoveMealItem(ctx context.Context, coachID, mealID, itemID primitive.ObjectID) error {
	if _, _, err := s.ownedMeal(ctx, coachID, mealID); err != nil {
		return err
	}
	if err := s.mealItemRepo.Delete(ctx, itemID, mealID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMealItemNotFound
		}
		return err
	}

	remaining, err := s.mealItemRepo.ListByMeal(ctx, mealID)
	if err != nil {
		return err
	}
	changes := ordering.Renumber(mealItemElems(remaining))
	if err := s.applyMealItemChanges(ctx, mealID, changes); err != nil {
		return err
	}

	s.invalidator.Invalidate(ctx, cache.MealItemsTag(mealID.Hex()))
	return nil
}

// MoveMealItem shifts an item one step within its meal.
func (s *nutritionService) MoveMealItem(ctx context.Context, coachID, mealID, itemID primitive.ObjectID, dir ordering.Direction) (ReorderResult, error) {
	if _, _, err := s.ownedMeal(ctx, coachID, mealID); err != nil {
		return ReorderResult{}, err
	}

	items, err := s.mealItemRepo.ListByMeal(ctx, mealID)
	if err != nil {
		return ReorderResult{}, err
	}

	changes, err := ordering.MoveItem(mealItemElems(items), itemID.Hex(), dir)
	if err != nil {
		if errors.Is(err, ordering.ErrUnknownItem) {
			return ReorderResult{}, ErrMealItemNotFound
		}
		return ReorderResult{}, err
	}
	if len(changes) == 0 {
		return boundaryResult(dir), nil
	}

	if err := s.applyMealItemChanges(ctx, mealID, changes); err != nil {
		return ReorderResult{}, err
	}
	s.invalidator.Invalidate(ctx, cache.MealItemsTag(mealID.Hex()))
	return resultReordered, nil
}

// ReorderMealItems commits an explicit item ordering for one meal.
func (s *nutritionService) ReorderMealItems(ctx context.Context, coachID, mealID primitive.ObjectID, orderedIDs []string) (ReorderResult, error) {
	if len(orderedIDs) == 0 {
		return ReorderResult{}, ErrValidationFailed
	}
	if _, _, err := s.ownedMeal(ctx, coachID, mealID); err != nil {
		return ReorderResult{}, err
	}

	items, err := s.mealItemRepo.ListByMeal(ctx, mealID)
	if err != nil {
		return ReorderResult{}, err
	}

	changes, err := ordering.CommitOrder(mealItemElems(items), orderedIDs)
	if err != nil {
		return ReorderResult{}, err
	}

	if err := s.applyMealItemChanges(ctx, mealID, changes); err != nil {
		return ReorderResult{}, err
	}
	s.invalidator.Invalidate(ctx, cache.MealItemsTag(mealID.Hex()))
	return resultReordered, nil
}

// === Helpers ===

func validateProgram(program *domain.NutritionProgram) error {
	if program.DurationValue < 0 {
		return ErrInvalidDuration
	}
	if program.DurationValue > 0 {
		switch program.DurationUnit {
		case domain.DurationDays, domain.DurationWeeks, domain.DurationMonths:
		default:
			return ErrInvalidDuration
		}
	}
	for _, target := range []domain.MacroTarget{program.Calories, program.Protein, program.Carbs, program.Fat} {
		if target.Min < 0 || target.Max < 0 {
			return ErrInvalidMacroTarget
		}
		if target.Max > 0 && target.Min > target.Max {
			return ErrInvalidMacroTarget
		}
	}
	return nil
}

// ownedProgram authorizes the coach against the program before any order
// math runs. Failures mean zero writes.
func (s *nutritionService) ownedProgram(ctx context.Context, coachID, programID primitive.ObjectID) (*domain.NutritionProgram, error) {
	if coachID == primitive.NilObjectID || programID == primitive.NilObjectID {
		return nil, ErrValidationFailed
	}
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	if program.CoachID != coachID {
		return nil, ErrProgramAccessDenied
	}
	return program, nil
}

// programMeal resolves a meal and confirms it belongs to the program scope
// being mutated.
func (s *nutritionService) programMeal(ctx context.Context, programID, mealID primitive.ObjectID) (*domain.Meal, error) {
	meal, err := s.mealRepo.GetByID(ctx, mealID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMealNotFound
		}
		return nil, err
	}
	if meal.ProgramID != programID {
		return nil, ErrMealNotFound
	}
	return meal, nil
}

// ownedMeal walks the meal -> program -> coach ownership chain.
func (s *nutritionService) ownedMeal(ctx context.Context, coachID, mealID primitive.ObjectID) (*domain.Meal, *domain.NutritionProgram, error) {
	if coachID == primitive.NilObjectID || mealID == primitive.NilObjectID {
		return nil, nil, ErrValidationFailed
	}
	meal, err := s.mealRepo.GetByID(ctx, mealID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrMealNotFound
		}
		return nil, nil, err
	}
	program, err := s.ownedProgram(ctx, coachID, meal.ProgramID)
	if err != nil {
		return nil, nil, err
	}
	return meal, program, nil
}

func mealElems(meals []domain.Meal) []ordering.Elem {
	elems := make([]ordering.Elem, len(meals))
	for i, meal := range meals {
		elems[i] = ordering.Elem{ID: meal.ID.Hex(), Order: meal.Order}
	}
	return elems
}

func mealItemElems(items []domain.MealItem) []ordering.Elem {
	elems := make([]ordering.Elem, len(items))
	for i, it := range items {
		elems[i] = ordering.Elem{ID: it.ID.Hex(), Order: it.Order}
	}
	return elems
}

func (s *nutritionService) applyMealChanges(ctx context.Context, programID primitive.ObjectID, changes []ordering.Change) error {
	return applyOrderChanges(ctx, changes, func(ctx context.Context, id string, order int) error {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return err
		}
		return s.mealRepo.SetOrder(ctx, oid, programID, order)
	})
}

func (s *nutritionService) applyMealItemChanges(ctx context.Context, mealID primitive.ObjectID, changes []ordering.Change) error {
	return applyOrderChanges(ctx, changes, func(ctx context.Context, id string, order int) error {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return err
		}
		return s.mealItemRepo.SetOrder(ctx, oid, mealID, order)
	})
}
