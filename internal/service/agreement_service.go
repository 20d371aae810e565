package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slankgy89/fitness-coach-portal-sub000/internal/domain"
	"github.com/slankgy89/fitness-coach-portal-sub000/internal/repository"
	"github.com/slankgy89/fitness-coach-portal-sub000/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrAgreementNotFound     = errors.New("agreement not found")
	ErrAgreementAccessDenied = errors.New("access denied to modify this agreement")
	ErrAlreadySigned         = errors.New("agreement already signed by this client")
	ErrNoDocument            = errors.New("agreement has no uploaded document")
)

// --- Service Interface ---
type AgreementService interface {
	CreateAgreement(ctx context.Context, coachID primitive.ObjectID, title, body string, withDocument bool, contentType string) (*domain.Agreement, string, error)
	GetAgreementsByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.Agreement, error)
	GetAgreementForClient(ctx context.Context, clientID, agreementID primitive.ObjectID) (*domain.Agreement, error)
	DeleteAgreement(ctx context.Context, coachID, agreementID primitive.ObjectID) error

	SignAgreement(ctx context.Context, clientID, agreementID primitive.ObjectID, signedName string) (*domain.AgreementSignature, error)
	GetSignatures(ctx context.Context, coachID, agreementID primitive.ObjectID) ([]domain.AgreementSignature, error)
	GetDocumentURL(ctx context.Context, userID, agreementID primitive.ObjectID) (string, error)
}

// agreementService implements the AgreementService interface.
type agreementService struct {
	agreementRepo repository.AgreementRepository
	signatureRepo repository.SignatureRepository
	userRepo      repository.UserRepository
	fileStorage   storage.FileStorage
}

// NewAgreementService creates a new instance of agreementService.
func NewAgreementService(
	agreementRepo repository.AgreementRepository,
	signatureRepo repository.SignatureRepository,
	userRepo repository.UserRepository,
	fileStorage storage.FileStorage,
) AgreementService {
	return &agreementService{
		agreementRepo: agreementRepo,
		signatureRepo: signatureRepo,
		userRepo:      userRepo,
		fileStorage:   fileStorage,
	}
}

// CreateAgreement stores the agreement and, when withDocument is set, returns
// a presigned upload URL for the backing PDF alongside it.
func (s *agreementService) CreateAgreement(ctx context.Context, coachID primitive.ObjectID, title, body string, withDocument bool, contentType string) (*domain.Agreement, string, error) {
	if coachID == primitive.NilObjectID || title == "" || body == "" {
		return nil, "", ErrValidationFailed
	}

	agreement := &domain.Agreement{
		CoachID: coachID,
		Title:   title,
		Body:    body,
	}

	uploadURL := ""
	if withDocument {
		if s.fileStorage == nil {
			return nil, "", ErrNoDocument
		}
		if contentType == "" {
			contentType = "application/pdf"
		}
		agreement.DocumentKey = fmt.Sprintf("agreements/%s/%s", coachID.Hex(), uuid.NewString())

		var err error
		uploadURL, err = s.fileStorage.GeneratePresignedUploadURL(ctx, agreement.DocumentKey, contentType, storage.DefaultPresignedURLExpiry)
		if err != nil {
			return nil, "", fmt.Errorf("generate upload url: %w", err)
		}
	}

	agreementID, err := s.agreementRepo.Create(ctx, agreement)
	if err != nil {
		return nil, "", err
	}
	agreement.ID = agreementID
	return agreement, uploadURL, nil
}

// GetAgreementsByCoach lists a coach's agreements.
func (s *agreementService) GetAgreementsByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.Agreement, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	return s.agreementRepo.GetByCoachID(ctx, coachID)
}

// GetAgreementForClient fetches an agreement a managed client is asked to
// sign. The client must belong to the agreement's coach.
func (s *agreementService) GetAgreementForClient(ctx context.Context, clientID, agreementID primitive.ObjectID) (*domain.Agreement, error) {
	agreement, err := s.agreementRepo.GetByID(ctx, agreementID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAgreementNotFound
		}
		return nil, err
	}

	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if client.CoachID == nil || *client.CoachID != agreement.CoachID {
		return nil, ErrAgreementNotFound
	}
	return agreement, nil
}

// DeleteAgreement removes the agreement and its stored document, if any.
func (s *agreementService) DeleteAgreement(ctx context.Context, coachID, agreementID primitive.ObjectID) error {
	agreement, err := s.agreementRepo.GetByID(ctx, agreementID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAgreementNotFound
		}
		return err
	}
	if agreement.CoachID != coachID {
		return ErrAgreementAccessDenied
	}

	if err := s.agreementRepo.Delete(ctx, agreementID, coachID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAgreementNotFound
		}
		return err
	}

	if agreement.DocumentKey != "" && s.fileStorage != nil {
		// The record is gone either way; an orphaned object is tolerable.
		_ = s.fileStorage.DeleteObject(ctx, agreement.DocumentKey)
	}
	return nil
}

// SignAgreement records a client's acceptance. One signature per client per
// agreement; the unique index backs the check under concurrency.
func (s *agreementService) SignAgreement(ctx context.Context, clientID, agreementID primitive.ObjectID, signedName string) (*domain.AgreementSignature, error) {
	if signedName == "" {
		return nil, ErrValidationFailed
	}
	agreement, err := s.GetAgreementForClient(ctx, clientID, agreementID)
	if err != nil {
		return nil, err
	}

	exists, err := s.signatureRepo.ExistsForAgreementAndClient(ctx, agreementID, clientID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadySigned
	}

	sig := &domain.AgreementSignature{
		AgreementID: agreementID,
		ClientID:    clientID,
		CoachID:     agreement.CoachID,
		SignedName:  signedName,
		SignedAt:    time.Now().UTC(),
	}
	sigID, err := s.signatureRepo.Create(ctx, sig)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadySigned
		}
		return nil, err
	}
	sig.ID = sigID
	return sig, nil
}

// GetSignatures lists who signed one of the coach's agreements.
func (s *agreementService) GetSignatures(ctx context.Context, coachID, agreementID primitive.ObjectID) ([]domain.AgreementSignature, error) {
	agreement, err := s.agreementRepo.GetByID(ctx, agreementID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAgreementNotFound
		}
		return nil, err
	}
	if agreement.CoachID != coachID {
		return nil, ErrAgreementAccessDenied
	}
	return s.signatureRepo.GetByAgreementID(ctx, agreementID)
}

// GetDocumentURL returns a presigned download URL for the agreement's
// document. Both the owning coach and their managed clients may view it.
func (s *agreementService) GetDocumentURL(ctx context.Context, userID, agreementID primitive.ObjectID) (string, error) {
	agreement, err := s.agreementRepo.GetByID(ctx, agreementID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrAgreementNotFound
		}
		return "", err
	}
	if agreement.DocumentKey == "" {
		return "", ErrNoDocument
	}

	if agreement.CoachID != userID {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return "", ErrAgreementNotFound
			}
			return "", err
		}
		if user.CoachID == nil || *user.CoachID != agreement.CoachID {
			return "", ErrAgreementNotFound
		}
	}

	if s.fileStorage == nil {
		return "", ErrNoDocument
	}
	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, agreement.DocumentKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", fmt.Errorf("generate download url: %w", err)
	}
	return url, nil
}
