package service

import (
	"context"
	"errors"
	"time"

	"github.com/slankgy89/fitness-coach-portal-sub000/internal/domain"
	"github.com/slankgy89/fitness-coach-portal-sub000/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrNoCoachAssigned = errors.New("client has no coach assigned")
	ErrEmptyWorkoutLog = errors.New("workout log must contain at least one entry")
)

// --- Service Interface ---
type ClientService interface {
	LogWorkout(ctx context.Context, clientID primitive.ObjectID, templateID *primitive.ObjectID, performedAt time.Time, entries []domain.WorkoutLogEntry, notes string) (*domain.WorkoutLog, error)
	GetMyLogs(ctx context.Context, clientID primitive.ObjectID) ([]domain.WorkoutLog, error)
	GetClientLogs(ctx context.Context, coachID primitive.ObjectID) ([]domain.WorkoutLog, error)
}

// clientService implements the ClientService interface.
type clientService struct {
	logRepo      repository.WorkoutLogRepository
	userRepo     repository.UserRepository
	templateRepo repository.TemplateRepository
	exerciseRepo repository.ExerciseRepository
}

// NewClientService creates a new instance of clientService.
func NewClientService(
	logRepo repository.WorkoutLogRepository,
	userRepo repository.UserRepository,
	templateRepo repository.TemplateRepository,
	exerciseRepo repository.ExerciseRepository,
) ClientService {
	return &clientService{
		logRepo:      logRepo,
		userRepo:     userRepo,
		templateRepo: templateRepo,
		exerciseRepo: exerciseRepo,
	}
}

// LogWorkout records a performed workout for a client. Entries reuse the
// "SETSxREPS[@load]" shape the coach prescribes, so a logged set line can be
// compared against its prescription one to one.
func (s *clientService) LogWorkout(ctx context.Context, clientID primitive.ObjectID, templateID *primitive.ObjectID, performedAt time.Time, entries []domain.WorkoutLogEntry, notes string) (*domain.WorkoutLog, error) {
	if clientID == primitive.NilObjectID {
		return nil, ErrValidationFailed
	}
	if len(entries) == 0 {
		return nil, ErrEmptyWorkoutLog
	}
	for _, entry := range entries {
		if entry.ExerciseID == primitive.NilObjectID {
			return nil, ErrValidationFailed
		}
		if !setSchemeRe.MatchString(entry.SetsDone) {
			return nil, ErrInvalidSetScheme
		}
	}

	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if client.CoachID == nil || *client.CoachID == primitive.NilObjectID {
		return nil, ErrNoCoachAssigned
	}
	coachID := *client.CoachID

	// When the log claims a template, it must be one of the coach's.
	if templateID != nil && *templateID != primitive.NilObjectID {
		tpl, err := s.templateRepo.GetByID(ctx, *templateID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrTemplateNotFound
			}
			return nil, err
		}
		if tpl.CoachID != coachID {
			return nil, ErrTemplateNotFound
		}
	}

	if performedAt.IsZero() {
		performedAt = time.Now().UTC()
	}

	log := &domain.WorkoutLog{
		ClientID:    clientID,
		CoachID:     coachID,
		TemplateID:  templateID,
		PerformedAt: performedAt,
		Entries:     entries,
		Notes:       notes,
	}
	logID, err := s.logRepo.Create(ctx, log)
	if err != nil {
		return nil, err
	}
	log.ID = logID
	return log, nil
}

// GetMyLogs lists a client's own workout logs.
func (s *clientService) GetMyLogs(ctx context.Context, clientID primitive.ObjectID) ([]domain.WorkoutLog, error) {
	if clientID == primitive.NilObjectID {
		return nil, errors.New("client ID is required")
	}
	return s.logRepo.GetByClientID(ctx, clientID)
}

// GetClientLogs lists the workout logs of all clients managed by the coach.
func (s *clientService) GetClientLogs(ctx context.Context, coachID primitive.ObjectID) ([]domain.WorkoutLog, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	return s.logRepo.GetByCoachID(ctx, coachID)
}
