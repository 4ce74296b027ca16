package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wagy-backend/internal/domain"
	"wagy-backend/internal/service"
)

// FileStore guarda y borra archivos subidos.
type FileStore interface {
	Save(prefix, originalName string, r io.Reader) (string, error)
	Remove(rel string) error
}

// SitterHandler mantiene dependencias para endpoints del wizard de onboarding.
type SitterHandler struct {
	logger        *zap.Logger
	sitterServ    *service.SitterService
	files         FileStore
	publicBaseURL string
}

func NewSitterHandler(logger *zap.Logger, sitterServ *service.SitterService, files FileStore, publicBaseURL string) *SitterHandler {
	return &SitterHandler{
		logger:        logger,
		sitterServ:    sitterServ,
		files:         files,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Me maneja GET /sitters/me.
func (h *SitterHandler) Me(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	profile, err := h.sitterServ.GetProfile(c.Request.Context(), claims.Subject)
	if err != nil {
		h.logger.Error("get profile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load profile"})
		return
	}
	c.JSON(http.StatusOK, h.profileResponse(profile))
}

// UpdatePersonalInfo maneja PATCH /sitters/personal-info.
func (h *SitterHandler) UpdatePersonalInfo(c *gin.Context) {
	var upd service.PersonalInfoUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		h.logger.Warn("invalid personal info request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	h.respondUpdate(c, func(userID string) (domain.SitterProfile, error) {
		return h.sitterServ.UpdatePersonalInfo(c.Request.Context(), userID, upd)
	})
}

// UpdateLocation maneja PATCH /sitters/location.
func (h *SitterHandler) UpdateLocation(c *gin.Context) {
	var upd service.LocationUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		h.logger.Warn("invalid location request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	h.respondUpdate(c, func(userID string) (domain.SitterProfile, error) {
		return h.sitterServ.UpdateLocation(c.Request.Context(), userID, upd)
	})
}

// UpdateBoarding maneja PATCH /sitters/services/boarding.
func (h *SitterHandler) UpdateBoarding(c *gin.Context) {
	var upd service.BoardingUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		h.logger.Warn("invalid boarding request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	h.respondUpdate(c, func(userID string) (domain.SitterProfile, error) {
		return h.sitterServ.UpdateBoarding(c.Request.Context(), userID, upd)
	})
}

// UpdateWalking maneja PATCH /sitters/services/walking.
func (h *SitterHandler) UpdateWalking(c *gin.Context) {
	var upd service.WalkingUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		h.logger.Warn("invalid walking request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	h.respondUpdate(c, func(userID string) (domain.SitterProfile, error) {
		return h.sitterServ.UpdateWalking(c.Request.Context(), userID, upd)
	})
}

// UpdateExperience maneja PATCH /sitters/experience.
func (h *SitterHandler) UpdateExperience(c *gin.Context) {
	var upd service.ExperienceUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		h.logger.Warn("invalid experience request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	h.respondUpdate(c, func(userID string) (domain.SitterProfile, error) {
		return h.sitterServ.UpdateExperience(c.Request.Context(), userID, upd)
	})
}

// UpdateHome maneja PATCH /sitters/home.
func (h *SitterHandler) UpdateHome(c *gin.Context) {
	var upd service.HomeUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		h.logger.Warn("invalid home request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	h.respondUpdate(c, func(userID string) (domain.SitterProfile, error) {
		return h.sitterServ.UpdateHome(c.Request.Context(), userID, upd)
	})
}

// UpdateContent maneja PATCH /sitters/content.
func (h *SitterHandler) UpdateContent(c *gin.Context) {
	var upd service.ContentUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		h.logger.Warn("invalid content request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	h.respondUpdate(c, func(userID string) (domain.SitterProfile, error) {
		return h.sitterServ.UpdateContent(c.Request.Context(), userID, upd)
	})
}

// UpdatePricing maneja PATCH /sitters/pricing.
func (h *SitterHandler) UpdatePricing(c *gin.Context) {
	var upd service.PricingUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		h.logger.Warn("invalid pricing request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	h.respondUpdate(c, func(userID string) (domain.SitterProfile, error) {
		return h.sitterServ.UpdatePricing(c.Request.Context(), userID, upd)
	})
}

// UploadProfilePhoto maneja POST /sitters/upload-profile-photo.
func (h *SitterHandler) UploadProfilePhoto(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	rel, err := h.saveUpload("profile_photos", fileHeader)
	if err != nil {
		h.logger.Error("save profile photo failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save photo"})
		return
	}

	profile, err := h.sitterServ.UpdateProfilePhoto(c.Request.Context(), claims.Subject, rel)
	if err != nil {
		_ = h.files.Remove(rel)
		h.logger.Error("update profile photo failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update photo"})
		return
	}
	c.JSON(http.StatusOK, h.profileResponse(profile))
}

// UploadGalleryPhotos maneja POST /sitters/upload-gallery-photos. Si la
// galeria quedaria por encima del tope, los archivos recien guardados se
// descartan.
func (h *SitterHandler) UploadGalleryPhotos(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "files are required"})
		return
	}

	saved := make([]string, 0, len(form.File["files"]))
	for _, fileHeader := range form.File["files"] {
		rel, err := h.saveUpload("gallery", fileHeader)
		if err != nil {
			h.cleanupFiles(saved)
			h.logger.Error("save gallery photo failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save photos"})
			return
		}
		saved = append(saved, rel)
	}

	profile, err := h.sitterServ.AddGalleryPhotos(c.Request.Context(), claims.Subject, saved)
	if err != nil {
		h.cleanupFiles(saved)
		if errors.Is(err, service.ErrGalleryLimit) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("add gallery photos failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update gallery"})
		return
	}
	c.JSON(http.StatusOK, h.profileResponse(profile))
}

// DeleteGalleryPhotos maneja POST /sitters/delete-gallery-photos.
func (h *SitterHandler) DeleteGalleryPhotos(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Photos []string `json:"photos" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	profile, err := h.sitterServ.DeleteGalleryPhotos(c.Request.Context(), claims.Subject, req.Photos)
	if err != nil {
		h.logger.Error("delete gallery photos failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update gallery"})
		return
	}
	c.JSON(http.StatusOK, h.profileResponse(profile))
}

func (h *SitterHandler) respondUpdate(c *gin.Context, update func(userID string) (domain.SitterProfile, error)) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	profile, err := update(claims.Subject)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPhoneVerificationRequired):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrMissingPhone),
			errors.Is(err, service.ErrVerificationMismatch),
			errors.Is(err, service.ErrGalleryLimit):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrVerificationUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			h.logger.Error("profile update failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update profile"})
		}
		return
	}
	c.JSON(http.StatusOK, h.profileResponse(profile))
}

func (h *SitterHandler) saveUpload(prefix string, fileHeader *multipart.FileHeader) (string, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return h.files.Save(prefix, fileHeader.Filename, f)
}

func (h *SitterHandler) cleanupFiles(paths []string) {
	for _, p := range paths {
		if err := h.files.Remove(p); err != nil {
			h.logger.Warn("cleanup upload failed", zap.Error(err), zap.String("path", p))
		}
	}
}

// profileResponse reescribe los campos de foto a URLs absolutas.
func (h *SitterHandler) profileResponse(profile domain.SitterProfile) domain.SitterProfile {
	profile.ProfilePhoto = h.absolutePhotoURL(profile.ProfilePhoto)
	gallery := make([]string, len(profile.PhotoGallery))
	for i, p := range profile.PhotoGallery {
		gallery[i] = h.absolutePhotoURL(p)
	}
	profile.PhotoGallery = gallery
	return profile
}

func (h *SitterHandler) absolutePhotoURL(photo string) string {
	if photo == "" || strings.HasPrefix(photo, "http://") || strings.HasPrefix(photo, "https://") {
		return photo
	}
	return h.publicBaseURL + "/uploads/" + strings.TrimPrefix(photo, "/")
}
