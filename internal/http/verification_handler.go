package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wagy-backend/internal/verification"
)

// VerificationClient expone las consultas de identidad del upstream.
type VerificationClient interface {
	ShahkarMatch(ctx context.Context, mobile, nationalCode string) (verification.MatchResult, error)
	PostalLookup(ctx context.Context, postalCode string) (verification.PostalResult, error)
}

// VerificationHandler mantiene dependencias para endpoints de verificacion.
type VerificationHandler struct {
	logger *zap.Logger
	client VerificationClient
}

func NewVerificationHandler(logger *zap.Logger, client VerificationClient) *VerificationHandler {
	return &VerificationHandler{logger: logger, client: client}
}

// Shahkar maneja POST /verification/shahkar.
func (h *VerificationHandler) Shahkar(c *gin.Context) {
	var req struct {
		Mobile       string `json:"mobile" binding:"required"`
		NationalCode string `json:"national_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mobile and national_code are required"})
		return
	}

	result, err := h.client.ShahkarMatch(c.Request.Context(), req.Mobile, req.NationalCode)
	if err != nil {
		h.respondVerificationError(c, err, "shahkar inquiry failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Raw,
		"message": "Verification request processed",
	})
}

// PostalCode maneja POST /verification/postal-code.
func (h *VerificationHandler) PostalCode(c *gin.Context) {
	var req struct {
		PostalCode string `json:"postal_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "postal_code is required"})
		return
	}

	result, err := h.client.PostalLookup(c.Request.Context(), req.PostalCode)
	if err != nil {
		h.respondVerificationError(c, err, "postal code inquiry failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"address":  result.Address,
		"raw_data": result.Raw,
		"message":  "Postal code inquiry processed",
	})
}

func (h *VerificationHandler) respondVerificationError(c *gin.Context, err error, msg string) {
	var upstream *verification.UpstreamError
	switch {
	case errors.Is(err, verification.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
	case errors.As(err, &upstream):
		c.JSON(upstream.StatusCode, gin.H{"error": upstream.Body})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "verification unavailable"})
	}
}
