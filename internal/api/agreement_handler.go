package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/slankgy89/fitness-coach-portal-sub000/internal/domain"
	"github.com/slankgy89/fitness-coach-portal-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// AgreementHandler holds the agreement service dependency.
type AgreementHandler struct {
	agreementService service.AgreementService
}

// NewAgreementHandler creates a new AgreementHandler.
func NewAgreementHandler(agreementService service.AgreementService) *AgreementHandler {
	return &AgreementHandler{agreementService: agreementService}
}

// --- DTOs ---

type CreateAgreementRequest struct {
	Title        string `json:"title" binding:"required"`
	Body         string `json:"body" binding:"required"`
	WithDocument bool   `json:"withDocument"`
	ContentType  string `json:"contentType"`
}

type AgreementResponse struct {
	ID        string    `json:"id"`
	CoachID   string    `json:"coachId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`

	// UploadURL is only present right after creation with a document.
	UploadURL string `json:"uploadUrl,omitempty"`
}

type SignRequest struct {
	SignedName string `json:"signedName" binding:"required"`
}

type SignatureResponse struct {
	ID          string    `json:"id"`
	AgreementID string    `json:"agreementId"`
	ClientID    string    `json:"clientId"`
	SignedName  string    `json:"signedName"`
	SignedAt    time.Time `json:"signedAt"`
}

func mapAgreementToResponse(a *domain.Agreement, uploadURL string) AgreementResponse {
	return AgreementResponse{
		ID:        a.ID.Hex(),
		CoachID:   a.CoachID.Hex(),
		Title:     a.Title,
		Body:      a.Body,
		CreatedAt: a.CreatedAt,
		UploadURL: uploadURL,
	}
}

func mapSignatureToResponse(s *domain.AgreementSignature) SignatureResponse {
	return SignatureResponse{
		ID:          s.ID.Hex(),
		AgreementID: s.AgreementID.Hex(),
		ClientID:    s.ClientID.Hex(),
		SignedName:  s.SignedName,
		SignedAt:    s.SignedAt,
	}
}

// --- Coach Handlers ---

func (h *AgreementHandler) CreateAgreement(c *gin.Context) {
	var req CreateAgreementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}

	agreement, uploadURL, err := h.agreementService.CreateAgreement(c.Request.Context(), coachID, req.Title, req.Body, req.WithDocument, req.ContentType)
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create agreement.")
		}
		return
	}
	c.JSON(http.StatusCreated, mapAgreementToResponse(agreement, uploadURL))
}

func (h *AgreementHandler) GetAgreements(c *gin.Context) {
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	agreements, err := h.agreementService.GetAgreementsByCoach(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve agreements.")
		return
	}
	responses := make([]AgreementResponse, len(agreements))
	for i := range agreements {
		responses[i] = mapAgreementToResponse(&agreements[i], "")
	}
	c.JSON(http.StatusOK, responses)
}

func (h *AgreementHandler) DeleteAgreement(c *gin.Context) {
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	agreementID, ok := objectIDParam(c, "agreementId")
	if !ok {
		return
	}
	if err := h.agreementService.DeleteAgreement(c.Request.Context(), coachID, agreementID); err != nil {
		h.agreementError(c, err, "Failed to delete agreement.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AgreementHandler) GetSignatures(c *gin.Context) {
	coachID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	agreementID, ok := objectIDParam(c, "agreementId")
	if !ok {
		return
	}
	signatures, err := h.agreementService.GetSignatures(c.Request.Context(), coachID, agreementID)
	if err != nil {
		h.agreementError(c, err, "Failed to retrieve signatures.")
		return
	}
	responses := make([]SignatureResponse, len(signatures))
	for i := range signatures {
		responses[i] = mapSignatureToResponse(&signatures[i])
	}
	c.JSON(http.StatusOK, responses)
}

// --- Client Handlers ---

func (h *AgreementHandler) GetAgreementForClient(c *gin.Context) {
	clientID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	agreementID, ok := objectIDParam(c, "agreementId")
	if !ok {
		return
	}
	agreement, err := h.agreementService.GetAgreementForClient(c.Request.Context(), clientID, agreementID)
	if err != nil {
		h.agreementError(c, err, "Failed to retrieve agreement.")
		return
	}
	c.JSON(http.StatusOK, mapAgreementToResponse(agreement, ""))
}

func (h *AgreementHandler) SignAgreement(c *gin.Context) {
	var req SignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	clientID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	agreementID, ok := objectIDParam(c, "agreementId")
	if !ok {
		return
	}

	sig, err := h.agreementService.SignAgreement(c.Request.Context(), clientID, agreementID, req.SignedName)
	if err != nil {
		if errors.Is(err, service.ErrAlreadySigned) {
			abortWithError(c, http.StatusConflict, err.Error())
			return
		}
		h.agreementError(c, err, "Failed to sign agreement.")
		return
	}
	c.JSON(http.StatusCreated, mapSignatureToResponse(sig))
}

// GetDocumentURL returns a presigned download link for the agreement's PDF.
func (h *AgreementHandler) GetDocumentURL(c *gin.Context) {
	userID, ok := userObjectIDFromContext(c)
	if !ok {
		return
	}
	agreementID, ok := objectIDParam(c, "agreementId")
	if !ok {
		return
	}

	url, err := h.agreementService.GetDocumentURL(c.Request.Context(), userID, agreementID)
	if err != nil {
		if errors.Is(err, service.ErrNoDocument) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		h.agreementError(c, err, "Failed to generate document URL.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *AgreementHandler) agreementError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrAgreementNotFound), errors.Is(err, service.ErrClientNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAgreementAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrValidationFailed):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}
