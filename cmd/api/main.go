package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"wagy-backend/internal/config"
	"wagy-backend/internal/db"
	"wagy-backend/internal/email"
	apihttp "wagy-backend/internal/http"
	"wagy-backend/internal/identity"
	"wagy-backend/internal/repository"
	"wagy-backend/internal/service"
	"wagy-backend/internal/sms"
	"wagy-backend/internal/storage"
	"wagy-backend/internal/verification"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	sitterRepo := repository.NewPgSitterProfileRepository(pool)

	var (
		otpStore   service.OTPStore
		otpLimiter service.OTPRateLimiter
		blacklist  service.TokenBlacklist
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			otpStore = service.NewRedisOTPStore(redisClient)
			otpLimiter = service.NewRedisOTPRateLimiter(redisClient, 10*time.Minute, 3)
			blacklist = service.NewRedisTokenBlacklist(redisClient)
		}
		cancel()
	}

	tokenSvc := service.NewTokenService(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		blacklist,
	)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewGomailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	smsProvider := sms.NewDisabledProvider()
	if cfg.SMSProviderURL != "" {
		smsProvider = sms.NewHTTPProvider(cfg.SMSProviderURL, cfg.SMSAPIKey)
	}

	var googleVerifier identity.GoogleVerifier
	if cfg.GoogleClientID != "" {
		verifier, err := identity.NewOIDCGoogleVerifier(ctx, cfg.GoogleClientID)
		if err != nil {
			logger.Warn("google verifier init failed", zap.Error(err))
		} else {
			googleVerifier = verifier
		}
	}
	oauthCfg := identity.NewGoogleOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)

	fileStore, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		logger.Fatal("upload dir init", zap.Error(err))
	}

	verifyClient := verification.NewClient(cfg.ZohalShahkarURL, cfg.ZohalPostalURL, cfg.ZohalToken)

	authSvc := service.NewAuthService(logger, userRepo, otpStore, otpLimiter, emailSender, smsProvider, googleVerifier, tokenSvc)
	sitterSvc := service.NewSitterService(logger, userRepo, sitterRepo, verifyClient, smsProvider, fileStore)

	authHandler := apihttp.NewAuthHandler(logger, authSvc, tokenSvc, oauthCfg)
	sitterHandler := apihttp.NewSitterHandler(logger, sitterSvc, fileStore, cfg.PublicBaseURL)
	verificationHandler := apihttp.NewVerificationHandler(logger, verifyClient)
	router := apihttp.NewRouter(logger, tokenSvc, authHandler, sitterHandler, verificationHandler, cfg.UploadDir)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
