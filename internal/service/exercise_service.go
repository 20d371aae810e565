package service

import (
	"context"
	"errors"

	"github.com/slankgy89/fitness-coach-portal-sub000/internal/domain"
	"github.com/slankgy89/fitness-coach-portal-sub000/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound     = errors.New("exercise not found")
	ErrExerciseAccessDenied = errors.New("access denied to modify or delete this exercise")
	ErrValidationFailed     = errors.New("validation failed")
)

// --- Service Interface ---
type ExerciseService interface {
	CreateExercise(ctx context.Context, coachID primitive.ObjectID, name, description, exerciseType, muscleGroup, difficulty, videoURL string) (*domain.Exercise, error)
	GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	GetExercisesByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID, name, description, exerciseType, muscleGroup, difficulty, videoURL string) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID) error
}

// --- Service Implementation ---

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
	}
}

// CreateExercise handles the creation of a new exercise by a coach.
// ExerciseType is optional; items whose exercise has no type fall into the
// catch-all group when a template is viewed grouped.
func (s *exerciseService) CreateExercise(ctx context.Context, coachID primitive.ObjectID, name, description, exerciseType, muscleGroup, difficulty, videoURL string) (*domain.Exercise, error) {
	if name == "" {
		return nil, ErrValidationFailed
	}
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required to create an exercise")
	}

	exercise := &domain.Exercise{
		CoachID:      coachID,
		Name:         name,
		Description:  description,
		ExerciseType: exerciseType,
		MuscleGroup:  muscleGroup,
		Difficulty:   difficulty,
		VideoURL:     videoURL,
	}

	exerciseID, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	// Fetch again so CreatedAt/UpdatedAt set by the repository come back.
	return s.exerciseRepo.GetByID(ctx, exerciseID)
}

// GetExerciseByID retrieves a single exercise.
func (s *exerciseService) GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// GetExercisesByCoach retrieves all exercises for a specific coach.
func (s *exerciseService) GetExercisesByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.Exercise, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID cannot be nil")
	}
	return s.exerciseRepo.GetByCoachID(ctx, coachID)
}

// UpdateExercise handles updating an existing exercise, ensuring ownership.
func (s *exerciseService) UpdateExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID, name, description, exerciseType, muscleGroup, difficulty, videoURL string) (*domain.Exercise, error) {
	if name == "" {
		return nil, ErrValidationFailed
	}
	if coachID == primitive.NilObjectID || exerciseID == primitive.NilObjectID {
		return nil, errors.New("coach ID and exercise ID are required")
	}

	existing, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if existing.CoachID != coachID {
		return nil, ErrExerciseAccessDenied
	}

	existing.Name = name
	existing.Description = description
	existing.ExerciseType = exerciseType
	existing.MuscleGroup = muscleGroup
	existing.Difficulty = difficulty
	existing.VideoURL = videoURL

	if err := s.exerciseRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return existing, nil
}

// DeleteExercise handles deleting an exercise, ensuring ownership.
// The repository's Delete filter already includes the coach ID, so ownership
// is enforced at the DB level.
func (s *exerciseService) DeleteExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID) error {
	if coachID == primitive.NilObjectID || exerciseID == primitive.NilObjectID {
		return errors.New("coach ID and exercise ID are required")
	}

	err := s.exerciseRepo.Delete(ctx, exerciseID, coachID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	return nil
}
