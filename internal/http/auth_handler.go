package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"wagy-backend/internal/domain"
	"wagy-backend/internal/service"
	"wagy-backend/internal/sms"
)

// AuthHandler mantiene dependencias para endpoints de autenticacion.
type AuthHandler struct {
	logger   *zap.Logger
	authServ *service.AuthService
	tokenSrv *service.TokenService
	oauthCfg *oauth2.Config
}

func NewAuthHandler(logger *zap.Logger, authServ *service.AuthService, tokenSrv *service.TokenService, oauthCfg *oauth2.Config) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		authServ: authServ,
		tokenSrv: tokenSrv,
		oauthCfg: oauthCfg,
	}
}

type userResponse struct {
	ID              string `json:"id"`
	Email           string `json:"email,omitempty"`
	PhoneNumber     string `json:"phone_number,omitempty"`
	FullName        string `json:"full_name,omitempty"`
	AvatarURL       string `json:"avatar_url,omitempty"`
	IsEmailVerified bool   `json:"is_email_verified"`
	IsPhoneVerified bool   `json:"is_phone_verified"`
}

func authResponse(user domain.User, tokens service.TokenPair) gin.H {
	return gin.H{
		"success": true,
		"data": gin.H{
			"user": userResponse{
				ID:              user.ID,
				Email:           user.Email,
				PhoneNumber:     user.PhoneNumber,
				FullName:        user.FullName,
				AvatarURL:       user.AvatarURL,
				IsEmailVerified: user.IsEmailVerified,
				IsPhoneVerified: user.IsPhoneVerified,
			},
			"tokens": tokens,
		},
	}
}

// GoogleLogin maneja GET /auth/login/google.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	if h.oauthCfg == nil || h.oauthCfg.ClientID == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "google oauth not configured"})
		return
	}
	c.Redirect(http.StatusFound, h.oauthCfg.AuthCodeURL(uuid.NewString()))
}

// GoogleAuth maneja POST /auth/google.
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	var req struct {
		IDToken string `json:"id_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid google auth request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, tokens, err := h.authServ.LoginWithGoogle(c.Request.Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredential) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid google token"})
			return
		}
		h.logger.Error("google login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not complete login"})
		return
	}
	c.JSON(http.StatusOK, authResponse(user, tokens))
}

// EmailLogin maneja POST /auth/email/login.
func (h *AuthHandler) EmailLogin(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid email login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.authServ.RequestEmailOTP(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		case errors.Is(err, service.ErrEmailSendFailure):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "email delivery unavailable"})
		case errors.Is(err, service.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
		default:
			h.logger.Error("request email otp failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not request otp"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP sent to email"})
}

// EmailVerify maneja POST /auth/email/verify.
func (h *AuthHandler) EmailVerify(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		OTP   string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid email verify request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, tokens, err := h.authServ.VerifyEmailOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOTPNotRequested),
			errors.Is(err, service.ErrOTPExpired),
			errors.Is(err, service.ErrOTPMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("verify email otp failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not verify otp"})
		}
		return
	}
	c.JSON(http.StatusOK, authResponse(user, tokens))
}

// MobileLogin maneja POST /auth/mobile/login.
func (h *AuthHandler) MobileLogin(c *gin.Context) {
	var req struct {
		PhoneNumber string `json:"phone_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid mobile login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.authServ.RequestMobileOTP(c.Request.Context(), req.PhoneNumber); err != nil {
		switch {
		case errors.Is(err, service.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		case errors.Is(err, service.ErrInvalidPhone):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phone number"})
		case errors.Is(err, sms.ErrUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{"error": "sms provider unavailable"})
		default:
			h.logger.Error("request mobile otp failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not request otp"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP sent to phone"})
}

// MobileVerify maneja POST /auth/mobile/verify.
func (h *AuthHandler) MobileVerify(c *gin.Context) {
	var req struct {
		PhoneNumber string `json:"phone_number" binding:"required"`
		OTP         string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid mobile verify request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, tokens, err := h.authServ.VerifyMobileOTP(c.Request.Context(), req.PhoneNumber, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOTPMismatch), errors.Is(err, service.ErrInvalidPhone):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, sms.ErrUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{"error": "sms provider unavailable"})
		default:
			h.logger.Error("verify mobile otp failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not verify otp"})
		}
		return
	}
	c.JSON(http.StatusOK, authResponse(user, tokens))
}

// Logout maneja POST /auth/logout. Requiere el middleware de autenticacion.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := GetAuthToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	if err := h.tokenSrv.Logout(c.Request.Context(), token); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not logout"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
