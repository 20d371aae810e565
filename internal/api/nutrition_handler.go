package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/slankgy89/fitness-coach-portal-sub000/internal/domain"
	"github.com/slankgy89/fitness-coach-portal-sub000/internal/ordering"
	"github.com/slankgy89/fitness-coach-portal-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// NutritionHandler holds the nutrition service dependency.
type NutritionHandler struct {
	nutritionService service.NutritionService
}

// NewNutritionHandler creates a new NutritionHandler.
func NewNutritionHandler(nutritionService service.NutritionService) *NutritionHandler {
	return &NutritionHandler{nutritionService: nutritionService}
}

// --- DTOs ---

type MacroTargetDTO struct {
	Min float64 `json:"min" binding:"omitempty,min=0"`
	Max float64 `json:"max" binding:"omitempty,min=0"`
}

type ProgramRequest struct {
	Name          string         `json:"name" binding:"required"`
	Description   string         `json:"description"`
	DurationValue int            `json:"durationValue" binding:"omitempty,min=0"`
	DurationUnit  string         `json:"durationUnit" binding:"omitempty,oneof=days weeks months"`
	Calories      MacroTargetDTO `json:"calories"`
	Protein       MacroTargetDTO `json:"protein"`
	Carbs         MacroTargetDTO `json:"carbs"`
	Fat           MacroTargetDTO `json:"fat"`
}

type ProgramResponse struct {
	ID            string         `json:"id"`
	CoachID       string         `json:"coachId"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	DurationValue int            `json:"durationValue,omitempty"`
	DurationUnit  string         `json:"durationUnit,omitempty"`
	Calories      MacroTargetDTO `json:"calories"`
	Protein       MacroTargetDTO `json:"protein"`
	Carbs         MacroTargetDTO `json:"carbs"`
	Fat           MacroTargetDTO `json:"fat"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

type MealResponse struct {
	ID        string `json:"id"`
	ProgramID string `json:"programId"`
	DayNumber int    `json:"dayNumber"`
	Order     int    `json:"order"`
	Name      string `json:"name"`
}

type MealItemResponse struct {
	ID      string  `json:"id"`
	MealID  string  `json:"mealId"`
	FoodID  string  `json:"foodId"`
	Order   int     `json:"order"`
	AmountG float64 `json:"amountG"`
	Notes   string  `json:"notes,omitempty"`
}

type DayViewResponse struct {
	DayNumber int            `json:"dayNumber"`
	Meals     []MealResponse `json:"meals"`
}

type WeekResponse struct {
	Week int               `json:"week"`
	Days []DayViewResponse `json:"days"`
}

type ScheduleResponse struct {
	Program   ProgramResponse `json:"program"`
	WeekCount int             `json:"weekCount"`
	Weeks     []WeekResponse  `json:"weeks"`
}

func mapProgramToResponse(p *domain.NutritionProgram) ProgramResponse {
	if p == nil {
		return ProgramResponse{}
	}
	return ProgramResponse{
		ID:            p.ID.Hex(),
		CoachID:       p.CoachID.Hex(),
		Name:          p.Name,
		Description:   p.Description,
		DurationValue: p.DurationValue,
		DurationUnit:  string(p.DurationUnit),
		Calories:      MacroTargetDTO{Min: p.Calories.Min, Max: p.Calories.Max},
		Protein:       MacroTargetDTO{Min: p.Protein.Min, Max: p.Protein.Max},
		Carbs:         MacroTargetDTO{Min: p.Carbs.Min, Max: p.Carbs.Max},
		Fat:           MacroTargetDTO{Min: p.Fat.Min, Max: p.Fat.Max},
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func mapMealToResponse(m *domain.Meal) MealResponse {
	return MealResponse{
		ID:        m.ID.Hex(),
		ProgramID: m.ProgramID.Hex(),
		DayNumber: m.DayNumber,
		Order:     m.Order,
		Name:      m.Name,
	}
}

func mapMealsToResponse(meals []domain.Meal) []MealResponse {
	out := make([]MealResponse, len(meals))
	for i := range meals {
		out[i] = mapMealToResponse(&meals[i])
	}
	return out
}

func mapMealItemToResponse(item *domain.MealItem) MealItemResponse {
	return MealItemResponse{
		ID:      item.ID.Hex(),
		MealID:  item.MealID.Hex(),
		FoodID:  item.FoodID.Hex(),
		Order:   item.Order,
		AmountG: item.AmountG,
		Notes:   item.Notes,
	}
}

func programFromRequest(req ProgramRequest) domain.NutritionProgram {
	return domain.NutritionProgram{
		Name:          req.Name,
		Description:   req.Description,
		DurationValue: req.DurationValue,
		DurationUnit:  domain.DurationUnit(req.DurationUnit),
		Calories:      domain.MacroTarget{Min: req.Calories.Min, Max: req.Calories.Max},
		Protein:       domain.MacroTarget{Min: req.Protein.Min, Max: req.Protein.Max},
		Carbs:         domain.MacroTarget{Min: req.Carbs.Min, Max: req.Carbs.Max},
		Fat:           domain.MacroTarget{Min: req.Fat.Min, Max: req.Fat.Max},
	}
}

// --- Program Handlers ---

func (h *NutritionHandler) CreateProgram(c *gin.Context) {
	var req ProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}

	program, err := h.nutritionService.CreateProgram(c.Request.Context(), coachID, programFromRequest(req))
	if err != nil {
		h.nutritionError(c, err, "Failed to create program.")
		return
	}
	c.JSON(http.StatusCreated, mapProgramToResponse(program))
}

func (h *NutritionHandler) GetPrograms(c *gin.Context) {
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	programs, err := h.nutritionService.GetProgramsByCoach(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve programs.")
		return
	}
	responses := make([]ProgramResponse, len(programs))
	for i := range programs {
		responses[i] = mapProgramToResponse(&programs[i])
	}
	c.JSON(http.StatusOK, responses)
}

func (h *NutritionHandler) UpdateProgram(c *gin.Context) {
	var req ProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	programID, ok := objectIDParam(c, "programId")
	if !ok {
		return
	}

	program := programFromRequest(req)
	program.ID = programID
	updated, err := h.nutritionService.UpdateProgram(c.Request.Context(), coachID, program)
	if err != nil {
		h.nutritionError(c, err, "Failed to update program.")
		return
	}
	c.JSON(http.StatusOK, mapProgramToResponse(updated))
}

func (h *NutritionHandler) DeleteProgram(c *gin.Context) {
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	programID, ok := objectIDParam(c, "programId")
	if !ok {
		return
	}
	if err := h.nutritionService.DeleteProgram(c.Request.Context(), coachID, programID); err != nil {
		h.nutritionError(c, err, "Failed to delete program.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetSchedule returns the week-paced view of a program.
func (h *NutritionHandler) GetSchedule(c *gin.Context) {
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	programID, ok := objectIDParam(c, "programId")
	if !ok {
		return
	}

	schedule, err := h.nutritionService.GetSchedule(c.Request.Context(), coachID, programID)
	if err != nil {
		h.nutritionError(c, err, "Failed to build schedule.")
		return
	}

	resp := ScheduleResponse{
		Program:   mapProgramToResponse(schedule.Program),
		WeekCount: schedule.WeekCount,
		Weeks:     make([]WeekResponse, len(schedule.Weeks)),
	}
	for i, week := range schedule.Weeks {
		wr := WeekResponse{Week: week.Week, Days: make([]DayViewResponse, len(week.Days))}
		for j, day := range week.Days {
			wr.Days[j] = DayViewResponse{DayNumber: day.DayNumber, Meals: mapMealsToResponse(day.Meals)}
		}
		resp.Weeks[i] = wr
	}
	c.JSON(http.StatusOK, resp)
}

// --- Meal Handlers ---

// AddDay materializes the next day of the program with its first meal.
func (h *NutritionHandler) AddDay(c *gin.Context) {
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	programID, ok := objectIDParam(c, "programId")
	if !ok {
		return
	}

	meal, err := h.nutritionService.AddDay(c.Request.Context(), coachID, programID)
	if err != nil {
		h.nutritionError(c, err, "Failed to add day.")
		return
	}
	c.JSON(http.StatusCreated, mapMealToResponse(meal))
}

func (h *NutritionHandler) AddMeal(c *gin.Context) {
	var req struct {
		DayNumber int    `json:"dayNumber" binding:"required,min=1"`
		Name      string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	programID, ok := objectIDParam(c, "programId")
	if !ok {
		return
	}

	meal, err := h.nutritionService.AddMeal(c.Request.Context(), coachID, programID, req.DayNumber, req.Name)
	if err != nil {
		h.nutritionError(c, err, "Failed to add meal.")
		return
	}
	c.JSON(http.StatusCreated, mapMealToResponse(meal))
}

func (h *NutritionHandler) RemoveMeal(c *gin.Context) {
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	programID, ok := objectIDParam(c, "programId")
	if !ok {
		return
	}
	mealID, ok := objectIDParam(c, "mealId")
	if !ok {
		return
	}

	if err := h.nutritionService.RemoveMeal(c.Request.Context(), coachID, programID, mealID); err != nil {
		h.nutritionError(c, err, "Failed to remove meal.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *NutritionHandler) MoveMeal(c *gin.Context) {
	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	dir, err := ordering.ParseDirection(req.Direction)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	programID, ok := objectIDParam(c, "programId")
	if !ok {
		return
	}
	mealID, ok := objectIDParam(c, "mealId")
	if !ok {
		return
	}

	res, err := h.nutritionService.MoveMeal(c.Request.Context(), coachID, programID, mealID, dir)
	if err != nil {
		h.nutritionReorderError(c, err)
		return
	}
	respondReorder(c, res)
}

func (h *NutritionHandler) ReorderMeals(c *gin.Context) {
	var req struct {
		DayNumber  int      `json:"dayNumber" binding:"required,min=1"`
		OrderedIDs []string `json:"orderedIds" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	programID, ok := objectIDParam(c, "programId")
	if !ok {
		return
	}

	res, err := h.nutritionService.ReorderMeals(c.Request.Context(), coachID, programID, req.DayNumber, req.OrderedIDs)
	if err != nil {
		h.nutritionReorderError(c, err)
		return
	}
	respondReorder(c, res)
}

// --- Meal Item Handlers ---

func (h *NutritionHandler) GetMealItems(c *gin.Context) {
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	mealID, ok := objectIDParam(c, "mealId")
	if !ok {
		return
	}

	items, err := h.nutritionService.GetMealItems(c.Request.Context(), coachID, mealID)
	if err != nil {
		h.nutritionError(c, err, "Failed to retrieve meal items.")
		return
	}
	responses := make([]MealItemResponse, len(items))
	for i := range items {
		responses[i] = mapMealItemToResponse(&items[i])
	}
	c.JSON(http.StatusOK, responses)
}

func (h *NutritionHandler) AddMealItem(c *gin.Context) {
	var req struct {
		FoodID  string  `json:"foodId" binding:"required"`
		AmountG float64 `json:"amountG" binding:"required,gt=0"`
		Notes   string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	mealID, ok := objectIDParam(c, "mealId")
	if !ok {
		return
	}
	foodID, err := objectIDFromHex(req.FoodID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid foodId format.")
		return
	}

	item, err := h.nutritionService.AddMealItem(c.Request.Context(), coachID, mealID, foodID, req.AmountG, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFoodNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrFoodAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			h.nutritionError(c, err, "Failed to add meal item.")
		}
		return
	}
	c.JSON(http.StatusCreated, mapMealItemToResponse(item))
}

func (h *NutritionHandler) RemoveMealItem(c *gin.Context) {
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	mealID, ok := objectIDParam(c, "mealId")
	if !ok {
		return
	}
	itemID, ok := objectIDParam(c, "itemId")
	if !ok {
		return
	}

	if err := h.nutritionService.RemoveMealItem(c.Request.Context(), coachID, mealID, itemID); err != nil {
		if errors.Is(err, service.ErrMealItemNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		h.nutritionError(c, err, "Failed to remove meal item.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *NutritionHandler) MoveMealItem(c *gin.Context) {
	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	dir, err := ordering.ParseDirection(req.Direction)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	mealID, ok := objectIDParam(c, "mealId")
	if !ok {
		return
	}
	itemID, ok := objectIDParam(c, "itemId")
	if !ok {
		return
	}

	res, err := h.nutritionService.MoveMealItem(c.Request.Context(), coachID, mealID, itemID, dir)
	if err != nil {
		h.nutritionReorderError(c, err)
		return
	}
	respondReorder(c, res)
}

func (h *NutritionHandler) ReorderMealItems(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	mealID, ok := objectIDParam(c, "mealId")
	if !ok {
		return
	}

	res, err := h.nutritionService.ReorderMealItems(c.Request.Context(), coachID, mealID, req.OrderedIDs)
	if err != nil {
		h.nutritionReorderError(c, err)
		return
	}
	respondReorder(c, res)
}

// --- Error mapping ---

func (h *NutritionHandler) nutritionError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrProgramNotFound),
		errors.Is(err, service.ErrMealNotFound),
		errors.Is(err, service.ErrMealItemNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrProgramAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrValidationFailed),
		errors.Is(err, service.ErrInvalidMacroTarget),
		errors.Is(err, service.ErrInvalidDuration):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}

func (h *NutritionHandler) nutritionReorderError(c *gin.Context, err error) {
	var pw *ordering.PartialWriteError
	switch {
	case errors.As(err, &pw):
		abortWithError(c, http.StatusInternalServerError, pw.Error())
	case errors.Is(err, ordering.ErrIncompleteOrder),
		errors.Is(err, ordering.ErrUnknownItem),
		errors.Is(err, ordering.ErrInvalidDirection),
		errors.Is(err, service.ErrValidationFailed):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrMealNotFound),
		errors.Is(err, service.ErrMealItemNotFound),
		errors.Is(err, service.ErrProgramNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrProgramAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to reorder.")
	}
}
