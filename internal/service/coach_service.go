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
	ErrClientNotFound        = errors.New("client user not found")
	ErrClientNotRole         = errors.New("user found but is not a client")
	ErrClientAlreadyAssigned = errors.New("client is already assigned to a coach")
	ErrClientNotManaged      = errors.New("client is not managed by this coach")
)

// --- Service Interface ---
type CoachService interface {
	AddClientByEmail(ctx context.Context, coachID primitive.ObjectID, clientEmail string) (*domain.User, error)
	GetManagedClients(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)
	GetManagedClient(ctx context.Context, coachID, clientID primitive.ObjectID) (*domain.User, error)
}

// --- Service Implementation ---

// coachService implements the CoachService interface.
type coachService struct {
	userRepo repository.UserRepository
}

// NewCoachService creates a new instance of coachService.
func NewCoachService(userRepo repository.UserRepository) CoachService {
	return &coachService{userRepo: userRepo}
}

// AddClientByEmail finds a client by email and assigns them to the coach.
func (s *coachService) AddClientByEmail(ctx context.Context, coachID primitive.ObjectID, clientEmail string) (*domain.User, error) {
	if coachID == primitive.NilObjectID || clientEmail == "" {
		return nil, errors.New("coach ID and client email are required")
	}

	client, err := s.userRepo.GetByEmail(ctx, clientEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	if client.Role != domain.RoleClient {
		return nil, ErrClientNotRole
	}

	if client.CoachID != nil && *client.CoachID != primitive.NilObjectID {
		if *client.CoachID == coachID {
			// Already managed by this coach; treat as success.
			client.PasswordHash = ""
			return client, nil
		}
		return nil, ErrClientAlreadyAssigned
	}

	// Both sides of the relation are updated; no transaction, so a failure
	// between the two writes leaves the coach list ahead of the client record.
	if err := s.userRepo.AddClientIDToCoach(ctx, coachID, client.ID); err != nil {
		return nil, err
	}
	if err := s.userRepo.SetCoachForClient(ctx, client.ID, coachID); err != nil {
		return nil, err
	}

	client.CoachID = &coachID
	client.PasswordHash = ""
	return client, nil
}

// GetManagedClients retrieves the list of clients managed by the coach.
func (s *coachService) GetManagedClients(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	clients, err := s.userRepo.GetClientsByCoachID(ctx, coachID)
	if err != nil {
		return nil, err
	}
	for i := range clients {
		clients[i].PasswordHash = ""
	}
	return clients, nil
}

// GetManagedClient fetches one client and verifies the coach relation.
func (s *coachService) GetManagedClient(ctx context.Context, coachID, clientID primitive.ObjectID) (*domain.User, error) {
	if coachID == primitive.NilObjectID || clientID == primitive.NilObjectID {
		return nil, errors.New("coach ID and client ID are required")
	}
	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if client.Role != domain.RoleClient {
		return nil, ErrClientNotRole
	}
	if client.CoachID == nil || *client.CoachID != coachID {
		return nil, ErrClientNotManaged
	}
	client.PasswordHash = ""
	return client, nil
}
