package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"wagy-backend/internal/domain"
	"wagy-backend/internal/email"
	"wagy-backend/internal/identity"
	"wagy-backend/internal/repository"
	"wagy-backend/internal/sms"
)

// AuthService coordina login y registro por los tres canales de identidad:
// Google, OTP por email y OTP por telefono.
type AuthService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	otpStore    OTPStore
	otpLimiter  OTPRateLimiter
	emailSender email.Sender
	smsProvider sms.Provider
	google      identity.GoogleVerifier
	tokens      *TokenService
}

var (
	ErrInvalidCredential = errors.New("invalid credential")
	ErrOTPNotRequested   = errors.New("otp not requested")
	ErrOTPExpired        = errors.New("otp expired")
	ErrOTPMismatch       = errors.New("otp mismatch")
	ErrEmailSendFailure  = errors.New("email send failed")
	ErrRateLimited       = errors.New("rate limited")
	ErrInvalidEmail      = errors.New("invalid email")
	ErrInvalidPhone      = errors.New("invalid phone")
)

const otpTTL = 5 * time.Minute

func NewAuthService(
	logger *zap.Logger,
	users repository.UserRepository,
	otpStore OTPStore,
	otpLimiter OTPRateLimiter,
	emailSender email.Sender,
	smsProvider sms.Provider,
	google identity.GoogleVerifier,
	tokens *TokenService,
) *AuthService {
	if otpStore == nil {
		otpStore = NewMemoryOTPStore()
	}
	if otpLimiter == nil {
		otpLimiter = NewOTPRateLimiter(otpTTL, 3)
	}
	return &AuthService{
		logger:      logger,
		users:       users,
		otpStore:    otpStore,
		otpLimiter:  otpLimiter,
		emailSender: emailSender,
		smsProvider: smsProvider,
		google:      google,
		tokens:      tokens,
	}
}

// LoginWithGoogle verifica el ID token contra el client id configurado y
// resuelve el usuario: vinculo existente, cuenta con el mismo email, o alta.
func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (domain.User, TokenPair, error) {
	if s.google == nil {
		return domain.User{}, TokenPair{}, ErrInvalidCredential
	}

	ident, err := s.google.Verify(ctx, idToken)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("google token verify failed", zap.Error(err))
		}
		return domain.User{}, TokenPair{}, ErrInvalidCredential
	}

	user, err := s.resolveIdentity(ctx, identityInput{
		Provider:      domain.ProviderGoogle,
		ProviderUID:   ident.Subject,
		Email:         normalizeEmail(ident.Email),
		FullName:      ident.Name,
		AvatarURL:     ident.Picture,
		EmailVerified: true,
	})
	if err != nil {
		return domain.User{}, TokenPair{}, err
	}
	return s.issueTokens(user)
}

// RequestEmailOTP genera un codigo de 6 digitos, lo guarda con TTL de 5
// minutos y lo despacha por correo. No revela si la cuenta existe.
func (s *AuthService) RequestEmailOTP(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrInvalidEmail
	}
	if s.otpLimiter != nil && !s.otpLimiter.Allow(emailAddr) {
		return ErrRateLimited
	}

	code, hash, err := generateOTP()
	if err != nil {
		return err
	}
	if err := s.otpStore.Save(ctx, emailAddr, hash, otpTTL); err != nil {
		return err
	}

	if s.emailSender == nil {
		return ErrEmailSendFailure
	}
	if err := s.emailSender.SendLoginOTP(ctx, emailAddr, code); err != nil {
		if s.logger != nil {
			s.logger.Warn("send login otp failed", zap.Error(err), zap.String("email", emailAddr))
		}
		return ErrEmailSendFailure
	}
	return nil
}

// VerifyEmailOTP consume el codigo: un verify exitoso borra la entrada, por
// lo que un replay del mismo codigo falla como no solicitado.
func (s *AuthService) VerifyEmailOTP(ctx context.Context, emailAddr, code string) (domain.User, TokenPair, error) {
	emailAddr = normalizeEmail(emailAddr)
	code = strings.TrimSpace(code)
	if emailAddr == "" {
		return domain.User{}, TokenPair{}, ErrInvalidEmail
	}

	hash, err := s.otpStore.Lookup(ctx, emailAddr)
	if err != nil {
		return domain.User{}, TokenPair{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) != nil {
		return domain.User{}, TokenPair{}, ErrOTPMismatch
	}
	if err := s.otpStore.Delete(ctx, emailAddr); err != nil {
		return domain.User{}, TokenPair{}, err
	}

	user, err := s.resolveIdentity(ctx, identityInput{
		Provider:      domain.ProviderEmail,
		ProviderUID:   emailAddr,
		Email:         emailAddr,
		EmailVerified: true,
	})
	if err != nil {
		return domain.User{}, TokenPair{}, err
	}
	return s.issueTokens(user)
}

// RequestMobileOTP delega la emision del codigo al proveedor externo.
func (s *AuthService) RequestMobileOTP(ctx context.Context, phone string) error {
	phone = normalizePhone(phone)
	if phone == "" {
		return ErrInvalidPhone
	}
	if s.otpLimiter != nil && !s.otpLimiter.Allow(phone) {
		return ErrRateLimited
	}
	if s.smsProvider == nil {
		return sms.ErrUnavailable
	}
	return s.smsProvider.SendOTP(ctx, phone)
}

// VerifyMobileOTP delega la validacion al proveedor externo. El proveedor es
// quien garantiza expiracion y un solo uso del codigo.
func (s *AuthService) VerifyMobileOTP(ctx context.Context, phone, code string) (domain.User, TokenPair, error) {
	phone = normalizePhone(phone)
	code = strings.TrimSpace(code)
	if phone == "" {
		return domain.User{}, TokenPair{}, ErrInvalidPhone
	}
	if s.smsProvider == nil {
		return domain.User{}, TokenPair{}, sms.ErrUnavailable
	}

	if err := s.smsProvider.VerifyOTP(ctx, phone, code); err != nil {
		if errors.Is(err, sms.ErrCodeRejected) {
			return domain.User{}, TokenPair{}, ErrOTPMismatch
		}
		return domain.User{}, TokenPair{}, err
	}

	user, err := s.resolveIdentity(ctx, identityInput{
		Provider:      domain.ProviderOTP,
		ProviderUID:   phone,
		Phone:         phone,
		PhoneVerified: true,
	})
	if err != nil {
		return domain.User{}, TokenPair{}, err
	}
	return s.issueTokens(user)
}

type identityInput struct {
	Provider      domain.AuthProviderKind
	ProviderUID   string
	Email         string
	Phone         string
	FullName      string
	AvatarURL     string
	EmailVerified bool
	PhoneVerified bool
}

// resolveIdentity es la resolucion compartida por los tres canales:
// (a) vinculo de proveedor existente, (b) usuario existente por email o
// telefono al que se le crea el vinculo, (c) alta de usuario nuevo.
func (s *AuthService) resolveIdentity(ctx context.Context, in identityInput) (domain.User, error) {
	if in.Provider == "" || strings.TrimSpace(in.ProviderUID) == "" {
		return domain.User{}, ErrInvalidCredential
	}

	user, err := s.users.GetByProvider(ctx, in.Provider, in.ProviderUID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	if in.Email != "" {
		existing, err := s.users.GetByEmail(ctx, in.Email)
		if err == nil {
			return existing, s.linkProvider(ctx, existing.ID, in)
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, err
		}
	}
	if in.Phone != "" {
		existing, err := s.users.GetByPhone(ctx, in.Phone)
		if err == nil {
			return existing, s.linkProvider(ctx, existing.ID, in)
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, err
		}
	}

	now := time.Now().UTC()
	user = domain.User{
		ID:              uuid.NewString(),
		Email:           in.Email,
		PhoneNumber:     in.Phone,
		FullName:        strings.TrimSpace(in.FullName),
		AvatarURL:       in.AvatarURL,
		Role:            domain.RoleUser,
		IsEmailVerified: in.EmailVerified && in.Email != "",
		IsPhoneVerified: in.PhoneVerified && in.Phone != "",
		Status:          domain.StatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, s.linkProvider(ctx, user.ID, in)
}

func (s *AuthService) linkProvider(ctx context.Context, userID string, in identityInput) error {
	return s.users.LinkProvider(ctx, domain.AuthProviderLink{
		ID:          uuid.NewString(),
		UserID:      userID,
		Provider:    in.Provider,
		ProviderUID: in.ProviderUID,
		CreatedAt:   time.Now().UTC(),
	})
}

func (s *AuthService) issueTokens(user domain.User) (domain.User, TokenPair, error) {
	if s.tokens == nil {
		return domain.User{}, TokenPair{}, errors.New("token service not configured")
	}
	pair, err := s.tokens.GeneratePair(user)
	if err != nil {
		return domain.User{}, TokenPair{}, err
	}
	return user, pair, nil
}

func generateOTP() (string, string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", "", err
	}
	return code, string(hashBytes), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizePhone(phone string) string {
	return strings.TrimSpace(phone)
}
