package service

import (
	"context"
	"errors"
	"regexp"

	"github.com/slankgy89/fitness-coach-portal-sub000/internal/cache"
	"github.com/slankgy89/fitness-coach-portal-sub000/internal/domain"
	"github.com/slankgy89/fitness-coach-portal-sub000/internal/ordering"
	"github.com/slankgy89/fitness-coach-portal-sub000/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrTemplateNotFound     = errors.New("workout template not found")
	ErrTemplateAccessDenied = errors.New("access denied to modify this template")
	ErrItemNotFound         = errors.New("template item not found")
	ErrInvalidSetScheme     = errors.New("set scheme must look like 3x10 or 5x5@102.5")
)

// setSchemeRe matches "SETSxREPS" with an optional "@load" suffix.
var setSchemeRe = regexp.MustCompile(`^\d+x\d+(@\d+(\.\d+)?)?$`)

// ItemGroup is the grouped read view of a template: items bucketed by
// exercise type, buckets ordered the same way whole-group moves step over
// them (by lowest member order).
type ItemGroup struct {
	Key   string
	Items []domain.TemplateItem
}

// --- Service Interface ---
type TemplateService interface {
	CreateTemplate(ctx context.Context, coachID primitive.ObjectID, name, description string) (*domain.WorkoutTemplate, error)
	GetTemplatesByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.WorkoutTemplate, error)
	GetTemplate(ctx context.Context, coachID, templateID primitive.ObjectID) (*domain.WorkoutTemplate, error)
	UpdateTemplate(ctx context.Context, coachID, templateID primitive.ObjectID, name, description string) (*domain.WorkoutTemplate, error)
	DeleteTemplate(ctx context.Context, coachID, templateID primitive.ObjectID) error

	GetItems(ctx context.Context, coachID, templateID primitive.ObjectID) ([]domain.TemplateItem, error)
	GetGroupedItems(ctx context.Context, coachID, templateID primitive.ObjectID) ([]ItemGroup, error)
	AddItem(ctx context.Context, coachID, templateID, exerciseID primitive.ObjectID, setScheme string, restSec int, notes string) (*domain.TemplateItem, error)
	RemoveItem(ctx context.Context, coachID, templateID, itemID primitive.ObjectID) error

	MoveItem(ctx context.Context, coachID, templateID, itemID primitive.ObjectID, dir ordering.Direction) (ReorderResult, error)
	MoveGroup(ctx context.Context, coachID, templateID primitive.ObjectID, groupKey string, dir ordering.Direction) (ReorderResult, error)
	ReorderItems(ctx context.Context, coachID, templateID primitive.ObjectID, orderedIDs []string) (ReorderResult, error)
}

// templateService implements the TemplateService interface.
type templateService struct {
	templateRepo repository.TemplateRepository
	itemRepo     repository.TemplateItemRepository
	exerciseRepo repository.ExerciseRepository
	invalidator  cache.Invalidator
}

// NewTemplateService creates a new instance of templateService.
func NewTemplateService(
	templateRepo repository.TemplateRepository,
	itemRepo repository.TemplateItemRepository,
	exerciseRepo repository.ExerciseRepository,
	invalidator cache.Invalidator,
) TemplateService {
	if invalidator == nil {
		invalidator = cache.NoopInvalidator{}
	}
	return &templateService{
		templateRepo: templateRepo,
		itemRepo:     itemRepo,
		exerciseRepo: exerciseRepo,
		invalidator:  invalidator,
	}
}

// === Template CRUD ===

func (s *templateService) CreateTemplate(ctx context.Context, coachID primitive.ObjectID, name, description string) (*domain.WorkoutTemplate, error) {
	if name == "" {
		return nil, ErrValidationFailed
	}
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required to create a template")
	}

	tpl := &domain.WorkoutTemplate{
		CoachID:     coachID,
		Name:        name,
		Description: description,
	}
	tplID, err := s.templateRepo.Create(ctx, tpl)
	if err != nil {
		return nil, err
	}
	s.invalidator.Invalidate(ctx, cache.TemplateListTag(coachID.Hex()))
	return s.templateRepo.GetByID(ctx, tplID)
}

func (s *templateService) GetTemplatesByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.WorkoutTemplate, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	return s.templateRepo.GetByCoachID(ctx, coachID)
}

func (s *templateService) GetTemplate(ctx context.Context, coachID, templateID primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	return s.ownedTemplate(ctx, coachID, templateID)
}

func (s *templateService) UpdateTemplate(ctx context.Context, coachID, templateID primitive.ObjectID, name, description string) (*domain.WorkoutTemplate, error) {
	if name == "" {
		return nil, ErrValidationFailed
	}
	tpl, err := s.ownedTemplate(ctx, coachID, templateID)
	if err != nil {
		return nil, err
	}

	tpl.Name = name
	tpl.Description = description
	if err := s.templateRepo.Update(ctx, tpl); err != nil {
		return nil, err
	}
	s.invalidator.Invalidate(ctx, cache.TemplateListTag(coachID.Hex()))
	return tpl, nil
}

func (s *templateService) DeleteTemplate(ctx context.Context, coachID, templateID primitive.ObjectID) error {
	if _, err := s.ownedTemplate(ctx, coachID, templateID); err != nil {
		return err
	}
	if err := s.templateRepo.Delete(ctx, templateID, coachID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}
	// Items go with the template so no orphan rows remain.
	if err := s.itemRepo.DeleteByTemplate(ctx, templateID); err != nil {
		return err
	}
	s.invalidator.Invalidate(ctx,
		cache.TemplateListTag(coachID.Hex()),
		cache.TemplateItemsTag(templateID.Hex()),
	)
	return nil
}

// === Items ===

func (s *templateService) GetItems(ctx context.Context, coachID, templateID primitive.ObjectID) ([]domain.TemplateItem, error) {
	if _, err := s.ownedTemplate(ctx, coachID, templateID); err != nil {
		return nil, err
	}
	return s.itemRepo.ListByTemplate(ctx, templateID)
}

// GetGroupedItems returns the template's items bucketed by exercise type.
func (s *templateService) GetGroupedItems(ctx context.Context, coachID, templateID primitive.ObjectID) ([]ItemGroup, error) {
	items, err := s.GetItems(ctx, coachID, templateID)
	if err != nil {
		return nil, err
	}

	elems, byID, err := s.snapshot(ctx, templateID, items)
	if err != nil {
		return nil, err
	}

	var groups []ItemGroup
	for _, g := range ordering.Partition(elems) {
		ig := ItemGroup{Key: g.Key, Items: make([]domain.TemplateItem, 0, len(g.Items))}
		for _, el := range g.Items {
			ig.Items = append(ig.Items, byID[el.ID])
		}
		groups = append(groups, ig)
	}
	return groups, nil
}

// AddItem appends an exercise to the template. The new item's order is
// max(existing)+1, which tolerates gaps left by past deletes and never
// collides with an existing value. No other item is renumbered.
func (s *templateService) AddItem(ctx context.Context, coachID, templateID, exerciseID primitive.ObjectID, setScheme string, restSec int, notes string) (*domain.TemplateItem, error) {
	if !setSchemeRe.MatchString(setScheme) {
		return nil, ErrInvalidSetScheme
	}
	if _, err := s.ownedTemplate(ctx, coachID, templateID); err != nil {
		return nil, err
	}

	// The exercise must exist and belong to the same coach.
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if exercise.CoachID != coachID {
		return nil, ErrExerciseAccessDenied
	}

	items, err := s.itemRepo.ListByTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	item := &domain.TemplateItem{
		TemplateID: templateID,
		ExerciseID: exerciseID,
		Order:      ordering.NextOrder(itemElems(items)),
		SetScheme:  setScheme,
		RestSec:    restSec,
		Notes:      notes,
	}
	itemID, err := s.itemRepo.Create(ctx, item)
	if err != nil {
		return nil, err
	}
	item.ID = itemID

	s.invalidator.Invalidate(ctx, cache.TemplateItemsTag(templateID.Hex()))
	return item, nil
}

// RemoveItem deletes an item and renumbers the survivors back to a dense
// 1..N so later moves and appends see a clean scope.
func (s *templateService) RemoveItem(ctx context.Context, coachID, templateID, itemID primitive.ObjectID) error {
	if _, err := s.ownedTemplate(ctx, coachID, templateID); err != nil {
		return err
	}
	if err := s.itemRepo.Delete(ctx, itemID, templateID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrItemNotFound
		}
		return err
	}

	remaining, err := s.itemRepo.ListByTemplate(ctx, templateID)
	if err != nil {
		return err
	}
	changes := ordering.Renumber(itemElems(remaining))
	if err := s.applyItemChanges(ctx, templateID, changes); err != nil {
		return err
	}

	s.invalidator.Invalidate(ctx, cache.TemplateItemsTag(templateID.Hex()))
	return nil
}

// === Reorder operations ===

// MoveItem shifts one item a single step up or down, swapping orders with its
// neighbour. Moving past the boundary succeeds without changes.
func (s *templateService) MoveItem(ctx context.Context, coachID, templateID, itemID primitive.ObjectID, dir ordering.Direction) (ReorderResult, error) {
	if _, err := s.ownedTemplate(ctx, coachID, templateID); err != nil {
		return ReorderResult{}, err
	}

	items, err := s.itemRepo.ListByTemplate(ctx, templateID)
	if err != nil {
		return ReorderResult{}, err
	}

	changes, err := ordering.MoveItem(itemElems(items), itemID.Hex(), dir)
	if err != nil {
		if errors.Is(err, ordering.ErrUnknownItem) {
			return ReorderResult{}, ErrItemNotFound
		}
		return ReorderResult{}, err
	}
	if len(changes) == 0 {
		return boundaryResult(dir), nil
	}

	if err := s.applyItemChanges(ctx, templateID, changes); err != nil {
		return ReorderResult{}, err
	}
	s.invalidator.Invalidate(ctx, cache.TemplateItemsTag(templateID.Hex()))
	return resultReordered, nil
}

// MoveGroup shifts a whole exercise-type block past its neighbouring block.
func (s *templateService) MoveGroup(ctx context.Context, coachID, templateID primitive.ObjectID, groupKey string, dir ordering.Direction) (ReorderResult, error) {
	if groupKey == "" {
		return ReorderResult{}, ErrValidationFailed
	}
	if _, err := s.ownedTemplate(ctx, coachID, templateID); err != nil {
		return ReorderResult{}, err
	}

	items, err := s.itemRepo.ListByTemplate(ctx, templateID)
	if err != nil {
		return ReorderResult{}, err
	}
	elems, _, err := s.snapshot(ctx, templateID, items)
	if err != nil {
		return ReorderResult{}, err
	}

	changes, err := ordering.MoveGroup(elems, groupKey, dir)
	if err != nil {
		if errors.Is(err, ordering.ErrUnknownGroup) {
			return ReorderResult{}, ErrItemNotFound
		}
		return ReorderResult{}, err
	}
	if len(changes) == 0 {
		return boundaryResult(dir), nil
	}

	if err := s.applyItemChanges(ctx, templateID, changes); err != nil {
		return ReorderResult{}, err
	}
	s.invalidator.Invalidate(ctx, cache.TemplateItemsTag(templateID.Hex()))
	return resultReordered, nil
}

// ReorderItems commits an explicit full ordering from a drag-drop. The list
// must cover the scope exactly; omissions are the caller's error to fix.
func (s *templateService) ReorderItems(ctx context.Context, coachID, templateID primitive.ObjectID, orderedIDs []string) (ReorderResult, error) {
	if len(orderedIDs) == 0 {
		return ReorderResult{}, ErrValidationFailed
	}
	if _, err := s.ownedTemplate(ctx, coachID, templateID); err != nil {
		return ReorderResult{}, err
	}

	items, err := s.itemRepo.ListByTemplate(ctx, templateID)
	if err != nil {
		return ReorderResult{}, err
	}

	changes, err := ordering.CommitOrder(itemElems(items), orderedIDs)
	if err != nil {
		return ReorderResult{}, err
	}

	if err := s.applyItemChanges(ctx, templateID, changes); err != nil {
		return ReorderResult{}, err
	}
	s.invalidator.Invalidate(ctx, cache.TemplateItemsTag(templateID.Hex()))
	return resultReordered, nil
}

// === Helpers ===

// ownedTemplate authorizes the coach against the template before any order
// math runs. Failures mean zero writes.
func (s *templateService) ownedTemplate(ctx context.Context, coachID, templateID primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	if coachID == primitive.NilObjectID || templateID == primitive.NilObjectID {
		return nil, ErrValidationFailed
	}
	tpl, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if tpl.CoachID != coachID {
		return nil, ErrTemplateAccessDenied
	}
	return tpl, nil
}

func itemElems(items []domain.TemplateItem) []ordering.Elem {
	elems := make([]ordering.Elem, len(items))
	for i, it := range items {
		elems[i] = ordering.Elem{ID: it.ID.Hex(), Order: it.Order}
	}
	return elems
}

// snapshot builds the engine's view of the template with group keys resolved
// in one bulk exercise lookup. A miss falls back to the default key.
func (s *templateService) snapshot(ctx context.Context, templateID primitive.ObjectID, items []domain.TemplateItem) ([]ordering.Elem, map[string]domain.TemplateItem, error) {
	exerciseIDs := make([]primitive.ObjectID, 0, len(items))
	seen := make(map[primitive.ObjectID]bool, len(items))
	for _, it := range items {
		if !seen[it.ExerciseID] {
			seen[it.ExerciseID] = true
			exerciseIDs = append(exerciseIDs, it.ExerciseID)
		}
	}

	exercises, err := s.exerciseRepo.GetByIDs(ctx, exerciseIDs)
	if err != nil {
		return nil, nil, err
	}
	typeByExercise := make(map[primitive.ObjectID]string, len(exercises))
	for _, ex := range exercises {
		typeByExercise[ex.ID] = ex.ExerciseType
	}

	elems := make([]ordering.Elem, len(items))
	byID := make(map[string]domain.TemplateItem, len(items))
	for i, it := range items {
		key := typeByExercise[it.ExerciseID]
		if key == "" {
			key = ordering.DefaultGroupKey
		}
		elems[i] = ordering.Elem{ID: it.ID.Hex(), Order: it.Order, GroupKey: key}
		byID[it.ID.Hex()] = it
	}
	return elems, byID, nil
}

func (s *templateService) applyItemChanges(ctx context.Context, templateID primitive.ObjectID, changes []ordering.Change) error {
	return applyOrderChanges(ctx, changes, func(ctx context.Context, id string, order int) error {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return err
		}
		return s.itemRepo.SetOrder(ctx, oid, templateID, order)
	})
}
