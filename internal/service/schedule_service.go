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
	ErrSlotNotFound      = errors.New("schedule slot not found")
	ErrSlotFull          = errors.New("schedule slot is fully booked")
	ErrAlreadyBooked     = errors.New("client already booked this slot")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrInvalidSlotWindow = errors.New("slot must end after it starts")
)

// --- Service Interface ---
type ScheduleService interface {
	PublishSlot(ctx context.Context, coachID primitive.ObjectID, title string, startsAt, endsAt time.Time, capacity int) (*domain.ScheduleSlot, error)
	GetSlotsByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.ScheduleSlot, error)
	DeleteSlot(ctx context.Context, coachID, slotID primitive.ObjectID) error

	BookSlot(ctx context.Context, clientID, slotID primitive.ObjectID, notes string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, clientID, bookingID primitive.ObjectID) error
	GetBookingsByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.Booking, error)
	GetSlotBookings(ctx context.Context, coachID, slotID primitive.ObjectID) ([]domain.Booking, error)
}

// scheduleService implements the ScheduleService interface.
type scheduleService struct {
	slotRepo    repository.SlotRepository
	bookingRepo repository.BookingRepository
}

// NewScheduleService creates a new instance of scheduleService.
func NewScheduleService(slotRepo repository.SlotRepository, bookingRepo repository.BookingRepository) ScheduleService {
	return &scheduleService{
		slotRepo:    slotRepo,
		bookingRepo: bookingRepo,
	}
}

// PublishSlot creates a bookable session window.
func (s *scheduleService) PublishSlot(ctx context.Context, coachID primitive.ObjectID, title string, startsAt, endsAt time.Time, capacity int) (*domain.ScheduleSlot, error) {
	if coachID == primitive.NilObjectID || title == "" {
		return nil, ErrValidationFailed
	}
	if !endsAt.After(startsAt) {
		return nil, ErrInvalidSlotWindow
	}
	if capacity < 1 {
		capacity = 1
	}

	slot := &domain.ScheduleSlot{
		CoachID:  coachID,
		Title:    title,
		StartsAt: startsAt,
		EndsAt:   endsAt,
		Capacity: capacity,
	}
	slotID, err := s.slotRepo.Create(ctx, slot)
	if err != nil {
		return nil, err
	}
	return s.slotRepo.GetByID(ctx, slotID)
}

// GetSlotsByCoach lists all slots a coach has published.
func (s *scheduleService) GetSlotsByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.ScheduleSlot, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	return s.slotRepo.GetByCoachID(ctx, coachID)
}

// DeleteSlot removes a slot, enforcing ownership at the repository filter.
func (s *scheduleService) DeleteSlot(ctx context.Context, coachID, slotID primitive.ObjectID) error {
	if coachID == primitive.NilObjectID || slotID == primitive.NilObjectID {
		return errors.New("coach ID and slot ID are required")
	}
	err := s.slotRepo.Delete(ctx, slotID, coachID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSlotNotFound
		}
		return err
	}
	return nil
}

// BookSlot reserves a place on a slot for a client. Capacity is checked
// before the insert; the unique (slot, client) index backs the double-booking
// check under concurrency.
func (s *scheduleService) BookSlot(ctx context.Context, clientID, slotID primitive.ObjectID, notes string) (*domain.Booking, error) {
	if clientID == primitive.NilObjectID || slotID == primitive.NilObjectID {
		return nil, ErrValidationFailed
	}

	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	exists, err := s.bookingRepo.ExistsForSlotAndClient(ctx, slotID, clientID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyBooked
	}

	count, err := s.bookingRepo.CountBySlotID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if count >= int64(slot.Capacity) {
		return nil, ErrSlotFull
	}

	booking := &domain.Booking{
		SlotID:   slotID,
		ClientID: clientID,
		CoachID:  slot.CoachID,
		Notes:    notes,
	}
	bookingID, err := s.bookingRepo.Create(ctx, booking)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyBooked
		}
		return nil, err
	}
	booking.ID = bookingID
	return booking, nil
}

// CancelBooking removes a client's own booking.
func (s *scheduleService) CancelBooking(ctx context.Context, clientID, bookingID primitive.ObjectID) error {
	if clientID == primitive.NilObjectID || bookingID == primitive.NilObjectID {
		return errors.New("client ID and booking ID are required")
	}
	err := s.bookingRepo.Delete(ctx, bookingID, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBookingNotFound
		}
		return err
	}
	return nil
}

// GetBookingsByClient lists a client's bookings.
func (s *scheduleService) GetBookingsByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.Booking, error) {
	if clientID == primitive.NilObjectID {
		return nil, errors.New("client ID is required")
	}
	return s.bookingRepo.GetByClientID(ctx, clientID)
}

// GetSlotBookings lists the bookings on one of the coach's slots.
func (s *scheduleService) GetSlotBookings(ctx context.Context, coachID, slotID primitive.ObjectID) ([]domain.Booking, error) {
	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	if slot.CoachID != coachID {
		return nil, ErrSlotNotFound
	}
	return s.bookingRepo.GetBySlotID(ctx, slotID)
}
