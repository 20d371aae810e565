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

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- DTOs ---

// ExerciseRequest defines the expected JSON for creating or updating an exercise.
type ExerciseRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	ExerciseType string `json:"exerciseType" binding:"omitempty"` // e.g., "Cardio", "Strength"
	MuscleGroup  string `json:"muscleGroup" binding:"omitempty"`
	Difficulty   string `json:"difficulty" binding:"omitempty"`
	VideoURL     string `json:"videoUrl" binding:"omitempty,url"`
}

// ExerciseResponse is the DTO for returning exercise details.
type ExerciseResponse struct {
	ID           string    `json:"id"`
	CoachID      string    `json:"coachId"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	ExerciseType string    `json:"exerciseType,omitempty"`
	MuscleGroup  string    `json:"muscleGroup,omitempty"`
	Difficulty   string    `json:"difficulty,omitempty"`
	VideoURL     string    `json:"videoUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse DTO.
func MapExerciseToResponse(ex *domain.Exercise) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	return ExerciseResponse{
		ID:           ex.ID.Hex(),
		CoachID:      ex.CoachID.Hex(),
		Name:         ex.Name,
		Description:  ex.Description,
		ExerciseType: ex.ExerciseType,
		MuscleGroup:  ex.MuscleGroup,
		Difficulty:   ex.Difficulty,
		VideoURL:     ex.VideoURL,
		CreatedAt:    ex.CreatedAt,
		UpdatedAt:    ex.UpdatedAt,
	}
}

// MapExercisesToResponse converts a slice of domain.Exercise to response DTOs.
func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i, ex := range exercises {
		responses[i] = MapExerciseToResponse(&ex)
	}
	return responses
}

// --- Handler Methods ---

// CreateExercise creates a new exercise for the authenticated coach.
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}

	exercise, err := h.exerciseService.CreateExercise(
		c.Request.Context(),
		coachID,
		req.Name,
		req.Description,
		req.ExerciseType,
		req.MuscleGroup,
		req.Difficulty,
		req.VideoURL,
	)
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create exercise.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}

// GetCoachExercises lists the authenticated coach's exercise library.
func (h *ExerciseHandler) GetCoachExercises(c *gin.Context) {
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}

	exercises, err := h.exerciseService.GetExercisesByCoach(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve exercises.")
		return
	}

	if exercises == nil {
		c.JSON(http.StatusOK, []ExerciseResponse{})
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// UpdateExercise updates one of the coach's exercises.
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	exerciseID, ok := objectIDParam(c, "exerciseId")
	if !ok {
		return
	}

	exercise, err := h.exerciseService.UpdateExercise(
		c.Request.Context(),
		coachID,
		exerciseID,
		req.Name,
		req.Description,
		req.ExerciseType,
		req.MuscleGroup,
		req.Difficulty,
		req.VideoURL,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrExerciseAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrValidationFailed):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update exercise.")
		}
		return
	}

	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// DeleteExercise removes one of the coach's exercises.
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	exerciseID, ok := objectIDParam(c, "exerciseId")
	if !ok {
		return
	}

	if err := h.exerciseService.DeleteExercise(c.Request.Context(), coachID, exerciseID); err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete exercise.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// --- Shared param helpers ---

// userObjectIDFromContext resolves the authenticated user's ID as an ObjectID.
// On failure the request is aborted with an appropriate status.
func userObjectIDFromContext(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// objectIDParam parses a path parameter as an ObjectID, aborting on failure.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// objectIDFromHex parses a body field as an ObjectID.
func objectIDFromHex(hex string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(hex)
}
