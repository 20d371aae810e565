package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/slankgy89/fitness-coach-portal-sub000/internal/domain"
	"github.com/slankgy89/fitness-coach-portal-sub000/internal/service"
	"github.com/slankgy89/fitness-coach-portal-sub000/internal/usda"

	"github.com/gin-gonic/gin"
)

// FoodHandler holds the food service dependency.
type FoodHandler struct {
	foodService service.FoodService
}

// NewFoodHandler creates a new FoodHandler.
func NewFoodHandler(foodService service.FoodService) *FoodHandler {
	return &FoodHandler{foodService: foodService}
}

// --- DTOs ---

type FoodRequest struct {
	Name            string  `json:"name" binding:"required"`
	Brand           string  `json:"brand"`
	CaloriesPer100g float64 `json:"caloriesPer100g" binding:"omitempty,min=0"`
	ProteinPer100g  float64 `json:"proteinPer100g" binding:"omitempty,min=0"`
	CarbsPer100g    float64 `json:"carbsPer100g" binding:"omitempty,min=0"`
	FatPer100g      float64 `json:"fatPer100g" binding:"omitempty,min=0"`
}

type FoodResponse struct {
	ID              string    `json:"id"`
	CoachID         string    `json:"coachId"`
	Name            string    `json:"name"`
	Brand           string    `json:"brand,omitempty"`
	CaloriesPer100g float64   `json:"caloriesPer100g"`
	ProteinPer100g  float64   `json:"proteinPer100g"`
	CarbsPer100g    float64   `json:"carbsPer100g"`
	FatPer100g      float64   `json:"fatPer100g"`
	FdcID           int       `json:"fdcId,omitempty"`
	Source          string    `json:"source"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func mapFoodToResponse(food *domain.Food) FoodResponse {
	if food == nil {
		return FoodResponse{}
	}
	return FoodResponse{
		ID:              food.ID.Hex(),
		CoachID:         food.CoachID.Hex(),
		Name:            food.Name,
		Brand:           food.Brand,
		CaloriesPer100g: food.CaloriesPer100g,
		ProteinPer100g:  food.ProteinPer100g,
		CarbsPer100g:    food.CarbsPer100g,
		FatPer100g:      food.FatPer100g,
		FdcID:           food.FdcID,
		Source:          food.Source,
		CreatedAt:       food.CreatedAt,
		UpdatedAt:       food.UpdatedAt,
	}
}

// --- Handler Methods ---

func (h *FoodHandler) CreateFood(c *gin.Context) {
	var req FoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}

	food, err := h.foodService.CreateFood(c.Request.Context(), coachID, domain.Food{
		Name:            req.Name,
		Brand:           req.Brand,
		CaloriesPer100g: req.CaloriesPer100g,
		ProteinPer100g:  req.ProteinPer100g,
		CarbsPer100g:    req.CarbsPer100g,
		FatPer100g:      req.FatPer100g,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create food.")
		}
		return
	}
	c.JSON(http.StatusCreated, mapFoodToResponse(food))
}

func (h *FoodHandler) GetFoods(c *gin.Context) {
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	foods, err := h.foodService.GetFoodsByCoach(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve foods.")
		return
	}
	responses := make([]FoodResponse, len(foods))
	for i := range foods {
		responses[i] = mapFoodToResponse(&foods[i])
	}
	c.JSON(http.StatusOK, responses)
}

func (h *FoodHandler) UpdateFood(c *gin.Context) {
	var req FoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	foodID, ok := objectIDParam(c, "foodId")
	if !ok {
		return
	}

	food := domain.Food{
		Name:            req.Name,
		Brand:           req.Brand,
		CaloriesPer100g: req.CaloriesPer100g,
		ProteinPer100g:  req.ProteinPer100g,
		CarbsPer100g:    req.CarbsPer100g,
		FatPer100g:      req.FatPer100g,
	}
	food.ID = foodID

	updated, err := h.foodService.UpdateFood(c.Request.Context(), coachID, food)
	if err != nil {
		h.foodError(c, err, "Failed to update food.")
		return
	}
	c.JSON(http.StatusOK, mapFoodToResponse(updated))
}

func (h *FoodHandler) DeleteFood(c *gin.Context) {
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	foodID, ok := objectIDParam(c, "foodId")
	if !ok {
		return
	}
	if err := h.foodService.DeleteFood(c.Request.Context(), coachID, foodID); err != nil {
		h.foodError(c, err, "Failed to delete food.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ImportUSDAFood accepts a raw FoodData Central food item as the request body
// and adds the parsed food to the coach's library.
func (h *FoodHandler) ImportUSDAFood(c *gin.Context) {
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil || len(payload) == 0 {
		abortWithError(c, http.StatusBadRequest, "Request body must be a FoodData Central food item.")
		return
	}

	food, err := h.foodService.ImportUSDAFood(c.Request.Context(), coachID, payload)
	if err != nil {
		if errors.Is(err, usda.ErrMissingDescription) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		abortWithError(c, http.StatusBadRequest, "Could not parse USDA payload: "+err.Error())
		return
	}
	c.JSON(http.StatusCreated, mapFoodToResponse(food))
}

func (h *FoodHandler) foodError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrFoodNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrFoodAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrValidationFailed):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}
