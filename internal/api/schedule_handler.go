package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/slankgy89/fitness-coach-portal-sub000/internal/domain"
	"github.com/slankgy89/fitness-coach-portal-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// ScheduleHandler holds the schedule service dependency.
type ScheduleHandler struct {
	scheduleService service.ScheduleService
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(scheduleService service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

// --- DTOs ---

type SlotRequest struct {
	Title    string    `json:"title" binding:"required"`
	StartsAt time.Time `json:"startsAt" binding:"required"`
	EndsAt   time.Time `json:"endsAt" binding:"required"`
	Capacity int       `json:"capacity" binding:"omitempty,min=1"`
}

type SlotResponse struct {
	ID       string    `json:"id"`
	CoachID  string    `json:"coachId"`
	Title    string    `json:"title"`
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
	Capacity int       `json:"capacity"`
}

type BookingResponse struct {
	ID       string `json:"id"`
	SlotID   string `json:"slotId"`
	ClientID string `json:"clientId"`
	Notes    string `json:"notes,omitempty"`
}

func mapSlotToResponse(slot *domain.ScheduleSlot) SlotResponse {
	return SlotResponse{
		ID:       slot.ID.Hex(),
		CoachID:  slot.CoachID.Hex(),
		Title:    slot.Title,
		StartsAt: slot.StartsAt,
		EndsAt:   slot.EndsAt,
		Capacity: slot.Capacity,
	}
}

func mapBookingToResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:       b.ID.Hex(),
		SlotID:   b.SlotID.Hex(),
		ClientID: b.ClientID.Hex(),
		Notes:    b.Notes,
	}
}

// --- Coach Handlers ---

func (h *ScheduleHandler) PublishSlot(c *gin.Context) {
	var req SlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}

	slot, err := h.scheduleService.PublishSlot(c.Request.Context(), coachID, req.Title, req.StartsAt, req.EndsAt, req.Capacity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSlotWindow), errors.Is(err, service.ErrValidationFailed):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to publish slot.")
		}
		return
	}
	c.JSON(http.StatusCreated, mapSlotToResponse(slot))
}

func (h *ScheduleHandler) GetSlots(c *gin.Context) {
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	slots, err := h.scheduleService.GetSlotsByCoach(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve slots.")
		return
	}
	responses := make([]SlotResponse, len(slots))
	for i := range slots {
		responses[i] = mapSlotToResponse(&slots[i])
	}
	c.JSON(http.StatusOK, responses)
}

func (h *ScheduleHandler) DeleteSlot(c *gin.Context) {
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	slotID, ok := objectIDParam(c, "slotId")
	if !ok {
		return
	}
	if err := h.scheduleService.DeleteSlot(c.Request.Context(), coachID, slotID); err != nil {
		if errors.Is(err, service.ErrSlotNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete slot.")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ScheduleHandler) GetSlotBookings(c *gin.Context) {
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	slotID, ok := objectIDParam(c, "slotId")
	if !ok {
		return
	}
	bookings, err := h.scheduleService.GetSlotBookings(c.Request.Context(), coachID, slotID)
	if err != nil {
		if errors.Is(err, service.ErrSlotNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve bookings.")
		}
		return
	}
	responses := make([]BookingResponse, len(bookings))
	for i := range bookings {
		responses[i] = mapBookingToResponse(&bookings[i])
	}
	c.JSON(http.StatusOK, responses)
}

// --- Client Handlers ---

func (h *ScheduleHandler) BookSlot(c *gin.Context) {
	var req struct {
		Notes string `json:"notes"`
	}
	_ = c.ShouldBindJSON(&req) // body is optional

	clientID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	slotID, ok := objectIDParam(c, "slotId")
	if !ok {
		return
	}

	booking, err := h.scheduleService.BookSlot(c.Request.Context(), clientID, slotID, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSlotNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrSlotFull), errors.Is(err, service.ErrAlreadyBooked):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to book slot.")
		}
		return
	}
	c.JSON(http.StatusCreated, mapBookingToResponse(booking))
}

func (h *ScheduleHandler) CancelBooking(c *gin.Context) {
	clientID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	bookingID, ok := objectIDParam(c, "bookingId")
	if !ok {
		return
	}
	if err := h.scheduleService.CancelBooking(c.Request.Context(), clientID, bookingID); err != nil {
		if errors.Is(err, service.ErrBookingNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to cancel booking.")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ScheduleHandler) GetMyBookings(c *gin.Context) {
	clientID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	bookings, err := h.scheduleService.GetBookingsByClient(c.Request.Context(), clientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve bookings.")
		return
	}
	responses := make([]BookingResponse, len(bookings))
	for i := range bookings {
		responses[i] = mapBookingToResponse(&bookings[i])
	}
	c.JSON(http.StatusOK, responses)
}
