package http

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wagy-backend/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	tokenSvc *service.TokenService,
	authH *AuthHandler,
	sitterH *SitterHandler,
	verificationH *VerificationHandler,
	uploadDir string,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.Static("/uploads", uploadDir)

	authRequired := JWTAuthMiddleware(tokenSvc)

	auth := r.Group("/auth")
	auth.GET("/login/google", authH.GoogleLogin)
	auth.POST("/google", authH.GoogleAuth)
	auth.POST("/email/login", authH.EmailLogin)
	auth.POST("/email/verify", authH.EmailVerify)
	auth.POST("/mobile/login", authH.MobileLogin)
	auth.POST("/mobile/verify", authH.MobileVerify)
	auth.POST("/logout", authRequired, authH.Logout)

	sitters := r.Group("/sitters", authRequired)
	sitters.GET("/me", sitterH.Me)
	sitters.PATCH("/personal-info", sitterH.UpdatePersonalInfo)
	sitters.PATCH("/location", sitterH.UpdateLocation)
	sitters.PATCH("/services/boarding", sitterH.UpdateBoarding)
	sitters.PATCH("/services/walking", sitterH.UpdateWalking)
	sitters.PATCH("/experience", sitterH.UpdateExperience)
	sitters.PATCH("/home", sitterH.UpdateHome)
	sitters.PATCH("/content", sitterH.UpdateContent)
	sitters.PATCH("/pricing", sitterH.UpdatePricing)
	sitters.POST("/upload-profile-photo", sitterH.UploadProfilePhoto)
	sitters.POST("/upload-gallery-photos", sitterH.UploadGalleryPhotos)
	sitters.POST("/delete-gallery-photos", sitterH.DeleteGalleryPhotos)

	verificationGroup := r.Group("/verification", authRequired)
	verificationGroup.POST("/shahkar", verificationH.Shahkar)
	verificationGroup.POST("/postal-code", verificationH.PostalCode)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses,
// salvo los archivos estaticos de /uploads.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.Request.URL.Path, "/uploads/") {
			c.Writer.Header().Set("Content-Type", "application/json")
		}
		c.Next()
	}
}
