package service

import (
	"context"
	"sort"
	"testing"

	"github.com/slankgy89/fitness-coach-portal-sub000/internal/domain"
	"github.com/slankgy89/fitness-coach-portal-sub000/internal/ordering"
	"github.com/slankgy89/fitness-coach-portal-sub000/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- In-memory fakes ---

type fakeProgramRepo struct {
	programs map[primitive.ObjectID]*domain.NutritionProgram
}

func newFakeProgramRepo() *fakeProgramRepo {
	return &fakeProgramRepo{programs: make(map[primitive.ObjectID]*domain.NutritionProgram)}
}

func (r *fakeProgramRepo) Create(_ context.Context, p *domain.NutritionProgram) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	cp := *p
	cp.ID = id
	r.programs[id] = &cp
	return id, nil
}

func (r *fakeProgramRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.NutritionProgram, error) {
	p, ok := r.programs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProgramRepo) GetByCoachID(_ context.Context, coachID primitive.ObjectID) ([]domain.NutritionProgram, error) {
	var out []domain.NutritionProgram
	for _, p := range r.programs {
		if p.CoachID == coachID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProgramRepo) Update(_ context.Context, p *domain.NutritionProgram) error {
	if _, ok := r.programs[p.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *p
	r.programs[p.ID] = &cp
	return nil
}

func (r *fakeProgramRepo) Delete(_ context.Context, id, coachID primitive.ObjectID) error {
	p, ok := r.programs[id]
	if !ok || p.CoachID != coachID {
		return repository.ErrNotFound
	}
	delete(r.programs, id)
	return nil
}

type fakeMealRepo struct {
	meals map[primitive.ObjectID]*domain.Meal
}

func newFakeMealRepo() *fakeMealRepo {
	return &fakeMealRepo{meals: make(map[primitive.ObjectID]*domain.Meal)}
}

func (r *fakeMealRepo) Create(_ context.Context, m *domain.Meal) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	cp := *m
	cp.ID = id
	r.meals[id] = &cp
	return id, nil
}

func (r *fakeMealRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Meal, error) {
	m, ok := r.meals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMealRepo) ListByProgram(_ context.Context, programID primitive.ObjectID) ([]domain.Meal, error) {
	var out []domain.Meal
	for _, m := range r.meals {
		if m.ProgramID == programID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayNumber != out[j].DayNumber {
			return out[i].DayNumber < out[j].DayNumber
		}
		return out[i].Order < out[j].Order
	})
	return out, nil
}

func (r *fakeMealRepo) ListByProgramDay(_ context.Context, programID primitive.ObjectID, dayNumber int) ([]domain.Meal, error) {
	var out []domain.Meal
	for _, m := range r.meals {
		if m.ProgramID == programID && m.DayNumber == dayNumber {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *fakeMealRepo) SetOrder(_ context.Context, id, programID primitive.ObjectID, order int) error {
	m, ok := r.meals[id]
	if !ok || m.ProgramID != programID {
		return repository.ErrNotFound
	}
	m.Order = order
	return nil
}

func (r *fakeMealRepo) Delete(_ context.Context, id, programID primitive.ObjectID) error {
	m, ok := r.meals[id]
	if !ok || m.ProgramID != programID {
		return repository.ErrNotFound
	}
	delete(r.meals, id)
	return nil
}

func (r *fakeMealRepo) DeleteByProgram(_ context.Context, programID primitive.ObjectID) error {
	for id, m := range r.meals {
		if m.ProgramID == programID {
			delete(r.meals, id)
		}
	}
	return nil
}

type fakeMealItemRepo struct {
	items map[primitive.ObjectID]*domain.MealItem
}

func newFakeMealItemRepo() *fakeMealItemRepo {
	return &fakeMealItemRepo{items: make(map[primitive.ObjectID]*domain.MealItem)}
}

func (r *fakeMealItemRepo) Create(_ context.Context, item *domain.MealItem) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	cp := *item
	cp.ID = id
	r.items[id] = &cp
	return id, nil
}

func (r *fakeMealItemRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.MealItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *fakeMealItemRepo) ListByMeal(_ context.Context, mealID primitive.ObjectID) ([]domain.MealItem, error) {
	var out []domain.MealItem
	for _, item := range r.items {
		if item.MealID == mealID {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *fakeMealItemRepo) SetOrder(_ context.Context, id, mealID primitive.ObjectID, order int) error {
	item, ok := r.items[id]
	if !ok || item.MealID != mealID {
		return repository.ErrNotFound
	}
	item.Order = order
	return nil
}

func (r *fakeMealItemRepo) Delete(_ context.Context, id, mealID primitive.ObjectID) error {
	item, ok := r.items[id]
	if !ok || item.MealID != mealID {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeMealItemRepo) DeleteByMeal(_ context.Context, mealID primitive.ObjectID) error {
	for id, item := range r.items {
		if item.MealID == mealID {
			delete(r.items, id)
		}
	}
	return nil
}

type fakeFoodRepo struct {
	foods map[primitive.ObjectID]*domain.Food
}

func newFakeFoodRepo() *fakeFoodRepo {
	return &fakeFoodRepo{foods: make(map[primitive.ObjectID]*domain.Food)}
}

func (r *fakeFoodRepo) Create(_ context.Context, food *domain.Food) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	cp := *food
	cp.ID = id
	r.foods[id] = &cp
	return id, nil
}

func (r *fakeFoodRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Food, error) {
	food, ok := r.foods[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *food
	return &cp, nil
}

func (r *fakeFoodRepo) GetByCoachID(_ context.Context, coachID primitive.ObjectID) ([]domain.Food, error) {
	var out []domain.Food
	for _, food := range r.foods {
		if food.CoachID == coachID {
			out = append(out, *food)
		}
	}
	return out, nil
}

func (r *fakeFoodRepo) Update(_ context.Context, food *domain.Food) error {
	if _, ok := r.foods[food.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *food
	r.foods[food.ID] = &cp
	return nil
}

func (r *fakeFoodRepo) Delete(_ context.Context, id, coachID primitive.ObjectID) error {
	food, ok := r.foods[id]
	if !ok || food.CoachID != coachID {
		return repository.ErrNotFound
	}
	delete(r.foods, id)
	return nil
}

// --- Fixture ---

type nutritionFixture struct {
	svc       NutritionService
	mealRepo  *fakeMealRepo
	itemRepo  *fakeMealItemRepo
	foodRepo  *fakeFoodRepo
	coachID   primitive.ObjectID
	programID primitive.ObjectID
}

func newNutritionFixture(t *testing.T, program domain.NutritionProgram) *nutritionFixture {
	t.Helper()
	programRepo := newFakeProgramRepo()
	mealRepo := newFakeMealRepo()
	itemRepo := newFakeMealItemRepo()
	foodRepo := newFakeFoodRepo()

	coachID := primitive.NewObjectID()
	program.CoachID = coachID
	if program.Name == "" {
		program.Name = "Cut Phase"
	}
	programID, err := programRepo.Create(context.Background(), &program)
	require.NoError(t, err)

	return &nutritionFixture{
		svc:       NewNutritionService(programRepo, mealRepo, itemRepo, foodRepo, nil),
		mealRepo:  mealRepo,
		itemRepo:  itemRepo,
		foodRepo:  foodRepo,
		coachID:   coachID,
		programID: programID,
	}
}

func (f *nutritionFixture) addMeal(t *testing.T, day int, name string) *domain.Meal {
	t.Helper()
	meal, err := f.svc.AddMeal(context.Background(), f.coachID, f.programID, day, name)
	require.NoError(t, err)
	return meal
}

// --- Tests ---

func TestAddDayUsesNextDayNumber(t *testing.T) {
	f := newNutritionFixture(t, domain.NutritionProgram{})

	first, err := f.svc.AddDay(context.Background(), f.coachID, f.programID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.DayNumber)
	assert.Equal(t, 1, first.Order)
	assert.Equal(t, "Meal 1", first.Name)

	second, err := f.svc.AddDay(context.Background(), f.coachID, f.programID)
	require.NoError(t, err)
	assert.Equal(t, 2, second.DayNumber)
}

func TestAddMealAppendsWithinDay(t *testing.T) {
	f := newNutritionFixture(t, domain.NutritionProgram{})

	breakfast := f.addMeal(t, 1, "Breakfast")
	lunch := f.addMeal(t, 1, "Lunch")
	otherDay := f.addMeal(t, 2, "Breakfast")

	assert.Equal(t, 1, breakfast.Order)
	assert.Equal(t, 2, lunch.Order)
	assert.Equal(t, 1, otherDay.Order, "order scope is the (program, day) pair")
}

func TestMoveMealStaysWithinItsDay(t *testing.T) {
	f := newNutritionFixture(t, domain.NutritionProgram{})

	breakfast := f.addMeal(t, 1, "Breakfast")
	lunch := f.addMeal(t, 1, "Lunch")
	day2 := f.addMeal(t, 2, "Breakfast")

	res, err := f.svc.MoveMeal(context.Background(), f.coachID, f.programID, lunch.ID, ordering.DirectionUp)
	require.NoError(t, err)
	assert.True(t, res.Changed)

	b, _ := f.mealRepo.GetByID(context.Background(), breakfast.ID)
	l, _ := f.mealRepo.GetByID(context.Background(), lunch.ID)
	d2, _ := f.mealRepo.GetByID(context.Background(), day2.ID)
	assert.Equal(t, 2, b.Order)
	assert.Equal(t, 1, l.Order)
	assert.Equal(t, 1, d2.Order, "meals on other days are untouched")
}

func TestMoveMealBoundaryNoOp(t *testing.T) {
	f := newNutritionFixture(t, domain.NutritionProgram{})
	breakfast := f.addMeal(t, 1, "Breakfast")

	res, err := f.svc.MoveMeal(context.Background(), f.coachID, f.programID, breakfast.ID, ordering.DirectionDown)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, "already at the bottom", res.Message)
}

func TestRemoveMealRenumbersDay(t *testing.T) {
	f := newNutritionFixture(t, domain.NutritionProgram{})
	breakfast := f.addMeal(t, 1, "Breakfast")
	lunch := f.addMeal(t, 1, "Lunch")
	dinner := f.addMeal(t, 1, "Dinner")

	require.NoError(t, f.svc.RemoveMeal(context.Background(), f.coachID, f.programID, lunch.ID))

	b, _ := f.mealRepo.GetByID(context.Background(), breakfast.ID)
	d, _ := f.mealRepo.GetByID(context.Background(), dinner.ID)
	assert.Equal(t, 1, b.Order)
	assert.Equal(t, 2, d.Order)
}

func TestReorderMealsWithinDay(t *testing.T) {
	f := newNutritionFixture(t, domain.NutritionProgram{})
	a := f.addMeal(t, 1, "Breakfast")
	b := f.addMeal(t, 1, "Lunch")
	c := f.addMeal(t, 1, "Dinner")

	res, err := f.svc.ReorderMeals(context.Background(), f.coachID, f.programID, 1, []string{c.ID.Hex(), b.ID.Hex(), a.ID.Hex()})
	require.NoError(t, err)
	assert.True(t, res.Changed)

	ma, _ := f.mealRepo.GetByID(context.Background(), a.ID)
	mb, _ := f.mealRepo.GetByID(context.Background(), b.ID)
	mc, _ := f.mealRepo.GetByID(context.Background(), c.ID)
	assert.Equal(t, 3, ma.Order)
	assert.Equal(t, 2, mb.Order)
	assert.Equal(t, 1, mc.Order)
}

func TestMealItemsAppendAndRenumber(t *testing.T) {
	f := newNutritionFixture(t, domain.NutritionProgram{})
	meal := f.addMeal(t, 1, "Breakfast")

	foodID, err := f.foodRepo.Create(context.Background(), &domain.Food{
		CoachID: f.coachID,
		Name:    "Oats",
	})
	require.NoError(t, err)

	first, err := f.svc.AddMealItem(context.Background(), f.coachID, meal.ID, foodID, 80, "")
	require.NoError(t, err)
	second, err := f.svc.AddMealItem(context.Background(), f.coachID, meal.ID, foodID, 30, "")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Order)
	assert.Equal(t, 2, second.Order)

	require.NoError(t, f.svc.RemoveMealItem(context.Background(), f.coachID, meal.ID, first.ID))

	remaining, err := f.itemRepo.ListByMeal(context.Background(), meal.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, 1, remaining[0].Order)
}

func TestAddMealItemEnforcesFoodOwnership(t *testing.T) {
	f := newNutritionFixture(t, domain.NutritionProgram{})
	meal := f.addMeal(t, 1, "Breakfast")

	foreign, err := f.foodRepo.Create(context.Background(), &domain.Food{
		CoachID: primitive.NewObjectID(),
		Name:    "Not Yours",
	})
	require.NoError(t, err)

	_, err = f.svc.AddMealItem(context.Background(), f.coachID, meal.ID, foreign, 100, "")
	assert.ErrorIs(t, err, ErrFoodAccessDenied)
}

func TestScheduleBucketsDaysIntoWeeks(t *testing.T) {
	f := newNutritionFixture(t, domain.NutritionProgram{})
	f.addMeal(t, 1, "Breakfast")
	f.addMeal(t, 7, "Breakfast")
	f.addMeal(t, 8, "Breakfast")

	schedule, err := f.svc.GetSchedule(context.Background(), f.coachID, f.programID)
	require.NoError(t, err)
	require.Equal(t, 2, schedule.WeekCount)

	week1 := schedule.Weeks[0]
	require.Len(t, week1.Days, 2)
	assert.Equal(t, 1, week1.Days[0].DayNumber)
	assert.Equal(t, 7, week1.Days[1].DayNumber)

	week2 := schedule.Weeks[1]
	require.Len(t, week2.Days, 1)
	assert.Equal(t, 8, week2.Days[0].DayNumber)
}

func TestScheduleUsesExplicitDuration(t *testing.T) {
	f := newNutritionFixture(t, domain.NutritionProgram{
		DurationValue: 2,
		DurationUnit:  domain.DurationWeeks,
	})

	schedule, err := f.svc.GetSchedule(context.Background(), f.coachID, f.programID)
	require.NoError(t, err)
	assert.Equal(t, 2, schedule.WeekCount, "duration drives the count even with no days yet")
	require.Len(t, schedule.Weeks, 2)
	assert.Empty(t, schedule.Weeks[0].Days)
}

func TestScheduleMinimumOneWeek(t *testing.T) {
	f := newNutritionFixture(t, domain.NutritionProgram{})

	schedule, err := f.svc.GetSchedule(context.Background(), f.coachID, f.programID)
	require.NoError(t, err)
	assert.Equal(t, 1, schedule.WeekCount)
}

func TestCreateProgramValidatesMacroTargets(t *testing.T) {
	programRepo := newFakeProgramRepo()
	svc := NewNutritionService(programRepo, newFakeMealRepo(), newFakeMealItemRepo(), newFakeFoodRepo(), nil)
	coachID := primitive.NewObjectID()

	_, err := svc.CreateProgram(context.Background(), coachID, domain.NutritionProgram{
		Name:    "Bad Targets",
		Protein: domain.MacroTarget{Min: 180, Max: 150},
	})
	assert.ErrorIs(t, err, ErrInvalidMacroTarget)

	_, err = svc.CreateProgram(context.Background(), coachID, domain.NutritionProgram{
		Name:    "Open Ceiling",
		Protein: domain.MacroTarget{Min: 150},
	})
	assert.NoError(t, err, "zero max means no upper bound")
}

func TestProgramAccessDenied(t *testing.T) {
	f := newNutritionFixture(t, domain.NutritionProgram{})
	intruder := primitive.NewObjectID()

	_, err := f.svc.AddDay(context.Background(), intruder, f.programID)
	assert.ErrorIs(t, err, ErrProgramAccessDenied)
}
