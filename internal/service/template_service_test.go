package service

import (
	"context"
	"errors"
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

type fakeTemplateRepo struct {
	templates map[primitive.ObjectID]*domain.WorkoutTemplate
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: make(map[primitive.ObjectID]*domain.WorkoutTemplate)}
}

func (r *fakeTemplateRepo) Create(_ context.Context, tpl *domain.WorkoutTemplate) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	cp := *tpl
	cp.ID = id
	r.templates[id] = &cp
	return id, nil
}

func (r *fakeTemplateRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	tpl, ok := r.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *tpl
	return &cp, nil
}

func (r *fakeTemplateRepo) GetByCoachID(_ context.Context, coachID primitive.ObjectID) ([]domain.WorkoutTemplate, error) {
	var out []domain.WorkoutTemplate
	for _, tpl := range r.templates {
		if tpl.CoachID == coachID {
			out = append(out, *tpl)
		}
	}
	return out, nil
}

func (r *fakeTemplateRepo) Update(_ context.Context, tpl *domain.WorkoutTemplate) error {
	if _, ok := r.templates[tpl.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *tpl
	r.templates[tpl.ID] = &cp
	return nil
}

func (r *fakeTemplateRepo) Delete(_ context.Context, id, coachID primitive.ObjectID) error {
	tpl, ok := r.templates[id]
	if !ok || tpl.CoachID != coachID {
		return repository.ErrNotFound
	}
	delete(r.templates, id)
	return nil
}

type fakeItemRepo struct {
	items map[primitive.ObjectID]*domain.TemplateItem

	// failSetOrder makes SetOrder fail for the given item IDs, to exercise
	// partial-write reporting.
	failSetOrder map[primitive.ObjectID]error
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{
		items:        make(map[primitive.ObjectID]*domain.TemplateItem),
		failSetOrder: make(map[primitive.ObjectID]error),
	}
}

func (r *fakeItemRepo) Create(_ context.Context, item *domain.TemplateItem) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	cp := *item
	cp.ID = id
	r.items[id] = &cp
	return id, nil
}

func (r *fakeItemRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.TemplateItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *fakeItemRepo) ListByTemplate(_ context.Context, templateID primitive.ObjectID) ([]domain.TemplateItem, error) {
	var out []domain.TemplateItem
	for _, item := range r.items {
		if item.TemplateID == templateID {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *fakeItemRepo) SetOrder(_ context.Context, id, templateID primitive.ObjectID, order int) error {
	if err, ok := r.failSetOrder[id]; ok {
		return err
	}
	item, ok := r.items[id]
	if !ok || item.TemplateID != templateID {
		return repository.ErrNotFound
	}
	item.Order = order
	return nil
}

func (r *fakeItemRepo) Delete(_ context.Context, id, templateID primitive.ObjectID) error {
	item, ok := r.items[id]
	if !ok || item.TemplateID != templateID {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeItemRepo) DeleteByTemplate(_ context.Context, templateID primitive.ObjectID) error {
	for id, item := range r.items {
		if item.TemplateID == templateID {
			delete(r.items, id)
		}
	}
	return nil
}

type fakeExerciseRepo struct {
	exercises map[primitive.ObjectID]*domain.Exercise
}

func newFakeExerciseRepo() *fakeExerciseRepo {
	return &fakeExerciseRepo{exercises: make(map[primitive.ObjectID]*domain.Exercise)}
}

func (r *fakeExerciseRepo) Create(_ context.Context, ex *domain.Exercise) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	cp := *ex
	cp.ID = id
	r.exercises[id] = &cp
	return id, nil
}

func (r *fakeExerciseRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	ex, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *ex
	return &cp, nil
}

func (r *fakeExerciseRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	var out []domain.Exercise
	for _, id := range ids {
		if ex, ok := r.exercises[id]; ok {
			out = append(out, *ex)
		}
	}
	return out, nil
}

func (r *fakeExerciseRepo) GetByCoachID(_ context.Context, coachID primitive.ObjectID) ([]domain.Exercise, error) {
	var out []domain.Exercise
	for _, ex := range r.exercises {
		if ex.CoachID == coachID {
			out = append(out, *ex)
		}
	}
	return out, nil
}

func (r *fakeExerciseRepo) Update(_ context.Context, ex *domain.Exercise) error {
	if _, ok := r.exercises[ex.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *ex
	r.exercises[ex.ID] = &cp
	return nil
}

func (r *fakeExerciseRepo) Delete(_ context.Context, id, coachID primitive.ObjectID) error {
	ex, ok := r.exercises[id]
	if !ok || ex.CoachID != coachID {
		return repository.ErrNotFound
	}
	delete(r.exercises, id)
	return nil
}

// --- Fixture ---

type templateFixture struct {
	svc          TemplateService
	itemRepo     *fakeItemRepo
	coachID      primitive.ObjectID
	templateID   primitive.ObjectID
	exerciseRepo *fakeExerciseRepo
}

func newTemplateFixture(t *testing.T) *templateFixture {
	t.Helper()
	templateRepo := newFakeTemplateRepo()
	itemRepo := newFakeItemRepo()
	exerciseRepo := newFakeExerciseRepo()

	coachID := primitive.NewObjectID()
	templateID, err := templateRepo.Create(context.Background(), &domain.WorkoutTemplate{
		CoachID: coachID,
		Name:    "Push Day",
	})
	require.NoError(t, err)

	return &templateFixture{
		svc:          NewTemplateService(templateRepo, itemRepo, exerciseRepo, nil),
		itemRepo:     itemRepo,
		coachID:      coachID,
		templateID:   templateID,
		exerciseRepo: exerciseRepo,
	}
}

// addExercise seeds an exercise of the given type and returns its ID.
func (f *templateFixture) addExercise(t *testing.T, name, exerciseType string) primitive.ObjectID {
	t.Helper()
	id, err := f.exerciseRepo.Create(context.Background(), &domain.Exercise{
		CoachID:      f.coachID,
		Name:         name,
		ExerciseType: exerciseType,
	})
	require.NoError(t, err)
	return id
}

// addItem appends an item via the service so orders follow the append rule.
func (f *templateFixture) addItem(t *testing.T, exerciseID primitive.ObjectID) primitive.ObjectID {
	t.Helper()
	item, err := f.svc.AddItem(context.Background(), f.coachID, f.templateID, exerciseID, "3x10", 60, "")
	require.NoError(t, err)
	return item.ID
}

func (f *templateFixture) orders(t *testing.T) map[primitive.ObjectID]int {
	t.Helper()
	items, err := f.itemRepo.ListByTemplate(context.Background(), f.templateID)
	require.NoError(t, err)
	out := make(map[primitive.ObjectID]int, len(items))
	for _, item := range items {
		out[item.ID] = item.Order
	}
	return out
}

// --- Tests ---

func TestAddItemAppendsAfterGap(t *testing.T) {
	f := newTemplateFixture(t)
	ex := f.addExercise(t, "Bench Press", "Strength")

	a := f.addItem(t, ex)
	b := f.addItem(t, ex)
	c := f.addItem(t, ex)

	// Delete the middle item directly, leaving a gap {1, 3}.
	require.NoError(t, f.itemRepo.Delete(context.Background(), b, f.templateID))

	d := f.addItem(t, ex)
	got := f.orders(t)
	assert.Equal(t, 1, got[a])
	assert.Equal(t, 3, got[c])
	assert.Equal(t, 4, got[d], "append must use max+1, not fill the gap")
}

func TestAddItemRejectsBadSetScheme(t *testing.T) {
	f := newTemplateFixture(t)
	ex := f.addExercise(t, "Squat", "Strength")

	for _, scheme := range []string{"", "3x", "x10", "3x10@", "three sets"} {
		_, err := f.svc.AddItem(context.Background(), f.coachID, f.templateID, ex, scheme, 60, "")
		assert.ErrorIs(t, err, ErrInvalidSetScheme, "scheme %q", scheme)
	}

	for _, scheme := range []string{"3x10", "5x5@102.5", "1x20@40"} {
		_, err := f.svc.AddItem(context.Background(), f.coachID, f.templateID, ex, scheme, 60, "")
		assert.NoError(t, err, "scheme %q", scheme)
	}
}

func TestAddItemEnforcesExerciseOwnership(t *testing.T) {
	f := newTemplateFixture(t)
	otherCoach := primitive.NewObjectID()
	foreign, err := f.exerciseRepo.Create(context.Background(), &domain.Exercise{
		CoachID: otherCoach,
		Name:    "Foreign",
	})
	require.NoError(t, err)

	_, err = f.svc.AddItem(context.Background(), f.coachID, f.templateID, foreign, "3x10", 60, "")
	assert.ErrorIs(t, err, ErrExerciseAccessDenied)
}

func TestMoveItemSwapsNeighbours(t *testing.T) {
	f := newTemplateFixture(t)
	ex := f.addExercise(t, "Row", "Strength")
	a := f.addItem(t, ex)
	b := f.addItem(t, ex)
	c := f.addItem(t, ex)

	res, err := f.svc.MoveItem(context.Background(), f.coachID, f.templateID, b, ordering.DirectionUp)
	require.NoError(t, err)
	assert.True(t, res.Changed)

	got := f.orders(t)
	assert.Equal(t, 2, got[a])
	assert.Equal(t, 1, got[b])
	assert.Equal(t, 3, got[c])
}

func TestMoveItemBoundaryIsSuccessNoOp(t *testing.T) {
	f := newTemplateFixture(t)
	ex := f.addExercise(t, "Row", "Strength")
	a := f.addItem(t, ex)
	b := f.addItem(t, ex)

	res, err := f.svc.MoveItem(context.Background(), f.coachID, f.templateID, a, ordering.DirectionUp)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, "already at the top", res.Message)

	res, err = f.svc.MoveItem(context.Background(), f.coachID, f.templateID, b, ordering.DirectionDown)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, "already at the bottom", res.Message)

	got := f.orders(t)
	assert.Equal(t, 1, got[a])
	assert.Equal(t, 2, got[b])
}

func TestMoveItemAuthorizationBeforeOrderMath(t *testing.T) {
	f := newTemplateFixture(t)
	ex := f.addExercise(t, "Row", "Strength")
	a := f.addItem(t, ex)
	f.addItem(t, ex)

	intruder := primitive.NewObjectID()
	_, err := f.svc.MoveItem(context.Background(), intruder, f.templateID, a, ordering.DirectionDown)
	assert.ErrorIs(t, err, ErrTemplateAccessDenied)

	got := f.orders(t)
	assert.Equal(t, 1, got[a], "denied move must not write")
}

func TestMoveItemPartialWriteReported(t *testing.T) {
	f := newTemplateFixture(t)
	ex := f.addExercise(t, "Row", "Strength")
	a := f.addItem(t, ex)
	b := f.addItem(t, ex)

	// First write (the neighbour) succeeds, second fails.
	f.itemRepo.failSetOrder[b] = errors.New("connection reset")

	_, err := f.svc.MoveItem(context.Background(), f.coachID, f.templateID, b, ordering.DirectionUp)
	require.Error(t, err)

	var pw *ordering.PartialWriteError
	require.ErrorAs(t, err, &pw)
	assert.Len(t, pw.Applied, 1)
	assert.Len(t, pw.Failed, 1)
	assert.Equal(t, b.Hex(), pw.Failed[0].Change.ID)

	// The neighbour's write landed; the scope is intermediate, not rolled back.
	got := f.orders(t)
	assert.Equal(t, 2, got[a])
	assert.Equal(t, 2, got[b])
}

func TestRemoveItemRenumbersSurvivors(t *testing.T) {
	f := newTemplateFixture(t)
	ex := f.addExercise(t, "Row", "Strength")
	a := f.addItem(t, ex)
	b := f.addItem(t, ex)
	c := f.addItem(t, ex)

	require.NoError(t, f.svc.RemoveItem(context.Background(), f.coachID, f.templateID, b))

	got := f.orders(t)
	assert.Equal(t, 1, got[a])
	assert.Equal(t, 2, got[c], "survivors renumber to dense 1..N")
}

func TestReorderItemsCommitsFullOrder(t *testing.T) {
	f := newTemplateFixture(t)
	ex := f.addExercise(t, "Row", "Strength")
	a := f.addItem(t, ex)
	b := f.addItem(t, ex)
	c := f.addItem(t, ex)

	res, err := f.svc.ReorderItems(context.Background(), f.coachID, f.templateID, []string{c.Hex(), a.Hex(), b.Hex()})
	require.NoError(t, err)
	assert.True(t, res.Changed)

	got := f.orders(t)
	assert.Equal(t, 2, got[a])
	assert.Equal(t, 3, got[b])
	assert.Equal(t, 1, got[c])
}

func TestReorderItemsRejectsIncompleteList(t *testing.T) {
	f := newTemplateFixture(t)
	ex := f.addExercise(t, "Row", "Strength")
	a := f.addItem(t, ex)
	b := f.addItem(t, ex)

	_, err := f.svc.ReorderItems(context.Background(), f.coachID, f.templateID, []string{a.Hex()})
	assert.ErrorIs(t, err, ordering.ErrIncompleteOrder)

	got := f.orders(t)
	assert.Equal(t, 1, got[a])
	assert.Equal(t, 2, got[b], "rejected commit must not write")
}

func TestMoveGroupReordersWholeBlock(t *testing.T) {
	f := newTemplateFixture(t)
	cardio := f.addExercise(t, "Treadmill", "Cardio")
	strength := f.addExercise(t, "Bench Press", "Strength")

	a := f.addItem(t, cardio)   // order 1
	b := f.addItem(t, strength) // order 2
	c := f.addItem(t, strength) // order 3

	res, err := f.svc.MoveGroup(context.Background(), f.coachID, f.templateID, "Strength", ordering.DirectionUp)
	require.NoError(t, err)
	assert.True(t, res.Changed)

	got := f.orders(t)
	assert.Equal(t, 1, got[b])
	assert.Equal(t, 2, got[c])
	assert.Equal(t, 3, got[a])
}

func TestMoveGroupBoundaryIsSuccessNoOp(t *testing.T) {
	f := newTemplateFixture(t)
	cardio := f.addExercise(t, "Treadmill", "Cardio")
	strength := f.addExercise(t, "Bench Press", "Strength")
	a := f.addItem(t, cardio)
	b := f.addItem(t, strength)

	res, err := f.svc.MoveGroup(context.Background(), f.coachID, f.templateID, "Cardio", ordering.DirectionUp)
	require.NoError(t, err)
	assert.False(t, res.Changed)

	got := f.orders(t)
	assert.Equal(t, 1, got[a])
	assert.Equal(t, 2, got[b])
}

func TestGetGroupedItemsUsesFallbackKey(t *testing.T) {
	f := newTemplateFixture(t)
	typed := f.addExercise(t, "Treadmill", "Cardio")
	untyped := f.addExercise(t, "Stretch", "")

	f.addItem(t, typed)
	f.addItem(t, untyped)

	groups, err := f.svc.GetGroupedItems(context.Background(), f.coachID, f.templateID)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Cardio", groups[0].Key)
	assert.Equal(t, ordering.DefaultGroupKey, groups[1].Key)
}

func TestDeleteTemplateRemovesItems(t *testing.T) {
	f := newTemplateFixture(t)
	ex := f.addExercise(t, "Row", "Strength")
	f.addItem(t, ex)
	f.addItem(t, ex)

	require.NoError(t, f.svc.DeleteTemplate(context.Background(), f.coachID, f.templateID))

	items, err := f.itemRepo.ListByTemplate(context.Background(), f.templateID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
