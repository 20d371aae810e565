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

// TemplateHandler holds the template service dependency.
type TemplateHandler struct {
	templateService service.TemplateService
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// --- DTOs ---

type TemplateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type TemplateResponse struct {
	ID          string    `json:"id"`
	CoachID     string    `json:"coachId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type AddItemRequest struct {
	ExerciseID string `json:"exerciseId" binding:"required"`
	SetScheme  string `json:"setScheme" binding:"required"`
	RestSec    int    `json:"restSec" binding:"omitempty,min=0"`
	Notes      string `json:"notes"`
}

type TemplateItemResponse struct {
	ID         string `json:"id"`
	TemplateID string `json:"templateId"`
	ExerciseID string `json:"exerciseId"`
	Order      int    `json:"order"`
	SetScheme  string `json:"setScheme"`
	RestSec    int    `json:"restSec,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

type ItemGroupResponse struct {
	Key   string                 `json:"key"`
	Items []TemplateItemResponse `json:"items"`
}

// MoveRequest carries the direction of a single-step move.
type MoveRequest struct {
	Direction string `json:"direction" binding:"required"`
}

// ReorderRequest carries the full explicit ordering from a drag-drop.
type ReorderRequest struct {
	OrderedIDs []string `json:"orderedIds" binding:"required"`
}

func MapTemplateToResponse(tpl *domain.WorkoutTemplate) TemplateResponse {
	if tpl == nil {
		return TemplateResponse{}
	}
	return TemplateResponse{
		ID:          tpl.ID.Hex(),
		CoachID:     tpl.CoachID.Hex(),
		Name:        tpl.Name,
		Description: tpl.Description,
		CreatedAt:   tpl.CreatedAt,
		UpdatedAt:   tpl.UpdatedAt,
	}
}

func MapTemplateItemToResponse(item *domain.TemplateItem) TemplateItemResponse {
	if item == nil {
		return TemplateItemResponse{}
	}
	return TemplateItemResponse{
		ID:         item.ID.Hex(),
		TemplateID: item.TemplateID.Hex(),
		ExerciseID: item.ExerciseID.Hex(),
		Order:      item.Order,
		SetScheme:  item.SetScheme,
		RestSec:    item.RestSec,
		Notes:      item.Notes,
	}
}

func MapTemplateItemsToResponse(items []domain.TemplateItem) []TemplateItemResponse {
	responses := make([]TemplateItemResponse, len(items))
	for i, item := range items {
		responses[i] = MapTemplateItemToResponse(&item)
	}
	return responses
}

// --- Handler Methods ---

func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}

	tpl, err := h.templateService.CreateTemplate(c.Request.Context(), coachID, req.Name, req.Description)
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create template.")
		}
		return
	}
	c.JSON(http.StatusCreated, MapTemplateToResponse(tpl))
}

func (h *TemplateHandler) GetTemplates(c *gin.Context) {
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}

	templates, err := h.templateService.GetTemplatesByCoach(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve templates.")
		return
	}
	responses := make([]TemplateResponse, len(templates))
	for i, tpl := range templates {
		responses[i] = MapTemplateToResponse(&tpl)
	}
	c.JSON(http.StatusOK, responses)
}

func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	templateID, ok := objectIDParam(c, "templateId")
	if !ok {
		return
	}

	tpl, err := h.templateService.UpdateTemplate(c.Request.Context(), coachID, templateID, req.Name, req.Description)
	if err != nil {
		h.templateError(c, err, "Failed to update template.")
		return
	}
	c.JSON(http.StatusOK, MapTemplateToResponse(tpl))
}

func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	templateID, ok := objectIDParam(c, "templateId")
	if !ok {
		return
	}

	if err := h.templateService.DeleteTemplate(c.Request.Context(), coachID, templateID); err != nil {
		h.templateError(c, err, "Failed to delete template.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetItems returns the template's items in order. With ?grouped=true the
// items come back bucketed by exercise type instead.
func (h *TemplateHandler) GetItems(c *gin.Context) {
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	templateID, ok := objectIDParam(c, "templateId")
	if !ok {
		return
	}

	if c.Query("grouped") == "true" {
		groups, err := h.templateService.GetGroupedItems(c.Request.Context(), coachID, templateID)
		if err != nil {
			h.templateError(c, err, "Failed to retrieve items.")
			return
		}
		responses := make([]ItemGroupResponse, len(groups))
		for i, g := range groups {
			responses[i] = ItemGroupResponse{Key: g.Key, Items: MapTemplateItemsToResponse(g.Items)}
		}
		c.JSON(http.StatusOK, responses)
		return
	}

	items, err := h.templateService.GetItems(c.Request.Context(), coachID, templateID)
	if err != nil {
		h.templateError(c, err, "Failed to retrieve items.")
		return
	}
	c.JSON(http.StatusOK, MapTemplateItemsToResponse(items))
}

func (h *TemplateHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	templateID, ok := objectIDParam(c, "templateId")
	if !ok {
		return
	}
	exerciseID, err := objectIDFromHex(req.ExerciseID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exerciseId format.")
		return
	}

	item, err := h.templateService.AddItem(c.Request.Context(), coachID, templateID, exerciseID, req.SetScheme, req.RestSec, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSetScheme):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrExerciseAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			h.templateError(c, err, "Failed to add item.")
		}
		return
	}
	c.JSON(http.StatusCreated, MapTemplateItemToResponse(item))
}

func (h *TemplateHandler) RemoveItem(c *gin.Context) {
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	templateID, ok := objectIDParam(c, "templateId")
	if !ok {
		return
	}
	itemID, ok := objectIDParam(c, "itemId")
	if !ok {
		return
	}

	if err := h.templateService.RemoveItem(c.Request.Context(), coachID, templateID, itemID); err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		h.templateError(c, err, "Failed to remove item.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MoveItem shifts one item a single step up or down.
func (h *TemplateHandler) MoveItem(c *gin.Context) {
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
	templateID, ok := objectIDParam(c, "templateId")
	if !ok {
		return
	}
	itemID, ok := objectIDParam(c, "itemId")
	if !ok {
		return
	}

	res, err := h.templateService.MoveItem(c.Request.Context(), coachID, templateID, itemID, dir)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		h.reorderError(c, err)
		return
	}
	respondReorder(c, res)
}

// MoveGroup shifts a whole exercise-type block up or down.
func (h *TemplateHandler) MoveGroup(c *gin.Context) {
	var req struct {
		GroupKey  string `json:"groupKey" binding:"required"`
		Direction string `json:"direction" binding:"required"`
	}
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
	templateID, ok := objectIDParam(c, "templateId")
	if !ok {
		return
	}

	res, err := h.templateService.MoveGroup(c.Request.Context(), coachID, templateID, req.GroupKey, dir)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			abortWithError(c, http.StatusNotFound, "group not found in template")
			return
		}
		h.reorderError(c, err)
		return
	}
	respondReorder(c, res)
}

// ReorderItems commits a full explicit ordering.
func (h *TemplateHandler) ReorderItems(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	templateID, ok := objectIDParam(c, "templateId")
	if !ok {
		return
	}

	res, err := h.templateService.ReorderItems(c.Request.Context(), coachID, templateID, req.OrderedIDs)
	if err != nil {
		h.reorderError(c, err)
		return
	}
	respondReorder(c, res)
}

// --- Error mapping ---

func (h *TemplateHandler) templateError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrTemplateNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrTemplateAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrValidationFailed):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}

// reorderError maps reorder failures. A partial write reports 500 with the
// error text so the caller knows the scope may be intermediate; engine
// validation errors map to 400.
func (h *TemplateHandler) reorderError(c *gin.Context, err error) {
	var pw *ordering.PartialWriteError
	switch {
	case errors.As(err, &pw):
		abortWithError(c, http.StatusInternalServerError, pw.Error())
	case errors.Is(err, ordering.ErrIncompleteOrder),
		errors.Is(err, ordering.ErrUnknownItem),
		errors.Is(err, ordering.ErrInvalidDirection),
		errors.Is(err, service.ErrValidationFailed):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrTemplateNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrTemplateAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to reorder.")
	}
}

// respondReorder emits the uniform reorder payload. Boundary no-ops are
// successes with an informational message.
func respondReorder(c *gin.Context, res service.ReorderResult) {
	body := gin.H{"success": true}
	if res.Message != "" {
		body["message"] = res.Message
	}
	c.JSON(http.StatusOK, body)
}
