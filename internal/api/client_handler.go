package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/slankgy89/fitness-coach-portal-sub000/internal/domain"
	"github.com/slankgy89/fitness-coach-portal-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClientHandler covers coach-side client management and client-side workout
// logging.
type ClientHandler struct {
	coachService  service.CoachService
	clientService service.ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(coachService service.CoachService, clientService service.ClientService) *ClientHandler {
	return &ClientHandler{
		coachService:  coachService,
		clientService: clientService,
	}
}

// --- DTOs ---

type AddClientRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type LogEntryDTO struct {
	ExerciseID string `json:"exerciseId" binding:"required"`
	SetsDone   string `json:"setsDone" binding:"required"`
	Notes      string `json:"notes"`
}

type LogWorkoutRequest struct {
	TemplateID  string        `json:"templateId"`
	PerformedAt time.Time     `json:"performedAt"`
	Entries     []LogEntryDTO `json:"entries" binding:"required,min=1"`
	Notes       string        `json:"notes"`
}

type WorkoutLogResponse struct {
	ID          string        `json:"id"`
	ClientID    string        `json:"clientId"`
	TemplateID  string        `json:"templateId,omitempty"`
	PerformedAt time.Time     `json:"performedAt"`
	Entries     []LogEntryDTO `json:"entries"`
	Notes       string        `json:"notes,omitempty"`
}

func mapWorkoutLogToResponse(log *domain.WorkoutLog) WorkoutLogResponse {
	resp := WorkoutLogResponse{
		ID:          log.ID.Hex(),
		ClientID:    log.ClientID.Hex(),
		PerformedAt: log.PerformedAt,
		Notes:       log.Notes,
		Entries:     make([]LogEntryDTO, len(log.Entries)),
	}
	if log.TemplateID != nil {
		resp.TemplateID = log.TemplateID.Hex()
	}
	for i, entry := range log.Entries {
		resp.Entries[i] = LogEntryDTO{
			ExerciseID: entry.ExerciseID.Hex(),
			SetsDone:   entry.SetsDone,
			Notes:      entry.Notes,
		}
	}
	return resp
}

func mapWorkoutLogsToResponse(logs []domain.WorkoutLog) []WorkoutLogResponse {
	responses := make([]WorkoutLogResponse, len(logs))
	for i := range logs {
		responses[i] = mapWorkoutLogToResponse(&logs[i])
	}
	return responses
}

// --- Coach Handlers ---

// AddClient assigns an existing client account to the coach by email.
func (h *ClientHandler) AddClient(c *gin.Context) {
	var req AddClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}

	client, err := h.coachService.AddClientByEmail(c.Request.Context(), coachID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrClientNotRole), errors.Is(err, service.ErrClientAlreadyAssigned):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to add client.")
		}
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(client))
}

// GetClients lists the coach's managed clients.
func (h *ClientHandler) GetClients(c *gin.Context) {
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	clients, err := h.coachService.GetManagedClients(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve clients.")
		return
	}
	responses := make([]UserResponse, len(clients))
	for i := range clients {
		responses[i] = MapUserToResponse(&clients[i])
	}
	c.JSON(http.StatusOK, responses)
}

// GetClientLogs lists workout logs across the coach's clients.
func (h *ClientHandler) GetClientLogs(c *gin.Context) {
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	logs, err := h.clientService.GetClientLogs(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve workout logs.")
		return
	}
	c.JSON(http.StatusOK, mapWorkoutLogsToResponse(logs))
}

// --- Client Handlers ---

// LogWorkout records a performed workout for the authenticated client.
func (h *ClientHandler) LogWorkout(c *gin.Context) {
	var req LogWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	clientID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}

	var templateID *primitive.ObjectID
	if req.TemplateID != "" {
		id, err := objectIDFromHex(req.TemplateID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid templateId format.")
			return
		}
		templateID = &id
	}

	entries := make([]domain.WorkoutLogEntry, len(req.Entries))
	for i, dto := range req.Entries {
		exerciseID, err := objectIDFromHex(dto.ExerciseID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid exerciseId format in entries.")
			return
		}
		entries[i] = domain.WorkoutLogEntry{
			ExerciseID: exerciseID,
			SetsDone:   dto.SetsDone,
			Notes:      dto.Notes,
		}
	}

	log, err := h.clientService.LogWorkout(c.Request.Context(), clientID, templateID, req.PerformedAt, entries, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSetScheme),
			errors.Is(err, service.ErrEmptyWorkoutLog),
			errors.Is(err, service.ErrValidationFailed):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNoCoachAssigned):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrTemplateNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to log workout.")
		}
		return
	}
	c.JSON(http.StatusCreated, mapWorkoutLogToResponse(log))
}

// GetMyLogs lists the authenticated client's workout logs.
func (h *ClientHandler) GetMyLogs(c *gin.Context) {
	clientID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	logs, err := h.clientService.GetMyLogs(c.Request.Context(), clientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve workout logs.")
		return
	}
	c.JSON(http.StatusOK, mapWorkoutLogsToResponse(logs))
}
