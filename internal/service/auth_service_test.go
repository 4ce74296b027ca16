package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"wagy-backend/internal/domain"
	"wagy-backend/internal/identity"
	"wagy-backend/internal/sms"
)

type mockUserRepo struct {
	usersByID       map[string]domain.User
	usersByEmail    map[string]string
	usersByPhone    map[string]string
	usersByProvider map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:       make(map[string]domain.User),
		usersByEmail:    make(map[string]string),
		usersByPhone:    make(map[string]string),
		usersByProvider: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.usersByID[user.ID] = user
	if user.Email != "" {
		m.usersByEmail[user.Email] = user.ID
	}
	if user.PhoneNumber != "" {
		m.usersByPhone[user.PhoneNumber] = user.ID
	}
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	id, ok := m.usersByEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func (m *mockUserRepo) GetByPhone(_ context.Context, phone string) (domain.User, error) {
	id, ok := m.usersByPhone[phone]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func (m *mockUserRepo) GetByProvider(_ context.Context, provider domain.AuthProviderKind, providerUID string) (domain.User, error) {
	id, ok := m.usersByProvider[string(provider)+"|"+providerUID]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func (m *mockUserRepo) LinkProvider(_ context.Context, link domain.AuthProviderLink) error {
	m.usersByProvider[string(link.Provider)+"|"+link.ProviderUID] = link.UserID
	return nil
}

type mockEmailSender struct {
	lastTo   string
	lastCode string
	err      error
}

func (m *mockEmailSender) SendLoginOTP(_ context.Context, toEmail, code string) error {
	m.lastTo = toEmail
	m.lastCode = code
	return m.err
}

type mockSMSProvider struct {
	sentTo    []string
	sendErr   error
	verifyErr error
}

func (m *mockSMSProvider) SendOTP(_ context.Context, phone string) error {
	m.sentTo = append(m.sentTo, phone)
	return m.sendErr
}

func (m *mockSMSProvider) VerifyOTP(_ context.Context, _, _ string) error {
	return m.verifyErr
}

type mockGoogleVerifier struct {
	ident identity.GoogleIdentity
	err   error
}

func (m *mockGoogleVerifier) Verify(_ context.Context, _ string) (identity.GoogleIdentity, error) {
	return m.ident, m.err
}

type mockLimiter struct {
	allow bool
}

func (m *mockLimiter) Allow(_ string) bool {
	return m.allow
}

func newTestAuthService(repo *mockUserRepo, sender *mockEmailSender, smsP *mockSMSProvider, google *mockGoogleVerifier) *AuthService {
	tokens := NewTokenService("test-secret", time.Minute, time.Hour, nil)
	return NewAuthService(zap.NewNop(), repo, nil, nil, sender, smsP, google, tokens)
}

func TestRequestEmailOTP_SendsCode(t *testing.T) {
	repo := newMockUserRepo()
	sender := &mockEmailSender{}
	svc := newTestAuthService(repo, sender, &mockSMSProvider{}, &mockGoogleVerifier{})

	if err := svc.RequestEmailOTP(context.Background(), "User@Example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sender.lastTo != "user@example.com" {
		t.Fatalf("expected normalized recipient, got %q", sender.lastTo)
	}
	if len(sender.lastCode) != 6 {
		t.Fatalf("expected 6 digit code, got %q", sender.lastCode)
	}
}

func TestRequestEmailOTP_SendFailure(t *testing.T) {
	repo := newMockUserRepo()
	sender := &mockEmailSender{err: errors.New("smtp down")}
	svc := newTestAuthService(repo, sender, &mockSMSProvider{}, &mockGoogleVerifier{})

	err := svc.RequestEmailOTP(context.Background(), "user@example.com")
	if !errors.Is(err, ErrEmailSendFailure) {
		t.Fatalf("expected ErrEmailSendFailure, got %v", err)
	}
}

func TestRequestEmailOTP_RateLimited(t *testing.T) {
	repo := newMockUserRepo()
	sender := &mockEmailSender{}
	tokens := NewTokenService("test-secret", time.Minute, time.Hour, nil)
	svc := NewAuthService(zap.NewNop(), repo, nil, &mockLimiter{allow: false}, sender, &mockSMSProvider{}, &mockGoogleVerifier{}, tokens)

	err := svc.RequestEmailOTP(context.Background(), "user@example.com")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestVerifyEmailOTP_CreatesUser(t *testing.T) {
	repo := newMockUserRepo()
	sender := &mockEmailSender{}
	svc := newTestAuthService(repo, sender, &mockSMSProvider{}, &mockGoogleVerifier{})

	if err := svc.RequestEmailOTP(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("request otp: %v", err)
	}

	user, pair, err := svc.VerifyEmailOTP(context.Background(), "user@example.com", sender.lastCode)
	if err != nil {
		t.Fatalf("verify otp: %v", err)
	}
	if user.Email != "user@example.com" || !user.IsEmailVerified {
		t.Fatalf("expected verified user, got %+v", user)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" || pair.ExpiresIn <= 0 {
		t.Fatalf("expected token pair, got %+v", pair)
	}
	if _, err := repo.GetByProvider(context.Background(), domain.ProviderEmail, "user@example.com"); err != nil {
		t.Fatalf("expected provider link: %v", err)
	}
}

func TestVerifyEmailOTP_ReplayFails(t *testing.T) {
	repo := newMockUserRepo()
	sender := &mockEmailSender{}
	svc := newTestAuthService(repo, sender, &mockSMSProvider{}, &mockGoogleVerifier{})

	if err := svc.RequestEmailOTP(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("request otp: %v", err)
	}
	if _, _, err := svc.VerifyEmailOTP(context.Background(), "user@example.com", sender.lastCode); err != nil {
		t.Fatalf("first verify: %v", err)
	}

	_, _, err := svc.VerifyEmailOTP(context.Background(), "user@example.com", sender.lastCode)
	if !errors.Is(err, ErrOTPNotRequested) {
		t.Fatalf("expected ErrOTPNotRequested on replay, got %v", err)
	}
}

func TestVerifyEmailOTP_MismatchKeepsCode(t *testing.T) {
	repo := newMockUserRepo()
	sender := &mockEmailSender{}
	svc := newTestAuthService(repo, sender, &mockSMSProvider{}, &mockGoogleVerifier{})

	if err := svc.RequestEmailOTP(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("request otp: %v", err)
	}

	_, _, err := svc.VerifyEmailOTP(context.Background(), "user@example.com", "000000")
	if !errors.Is(err, ErrOTPMismatch) {
		t.Fatalf("expected ErrOTPMismatch, got %v", err)
	}
	if _, _, err := svc.VerifyEmailOTP(context.Background(), "user@example.com", sender.lastCode); err != nil {
		t.Fatalf("correct code after mismatch: %v", err)
	}
}

func TestVerifyEmailOTP_NotRequested(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestAuthService(repo, &mockEmailSender{}, &mockSMSProvider{}, &mockGoogleVerifier{})

	_, _, err := svc.VerifyEmailOTP(context.Background(), "user@example.com", "123456")
	if !errors.Is(err, ErrOTPNotRequested) {
		t.Fatalf("expected ErrOTPNotRequested, got %v", err)
	}
}

func TestVerifyEmailOTP_Expired(t *testing.T) {
	repo := newMockUserRepo()
	sender := &mockEmailSender{}
	store := NewMemoryOTPStore()
	tokens := NewTokenService("test-secret", time.Minute, time.Hour, nil)
	svc := NewAuthService(zap.NewNop(), repo, store, nil, sender, &mockSMSProvider{}, &mockGoogleVerifier{}, tokens)

	if err := svc.RequestEmailOTP(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("request otp: %v", err)
	}
	// Pisar la entrada con una ya vencida.
	if err := store.Save(context.Background(), "user@example.com", "hash", -time.Minute); err != nil {
		t.Fatalf("save expired: %v", err)
	}

	_, _, err := svc.VerifyEmailOTP(context.Background(), "user@example.com", sender.lastCode)
	if !errors.Is(err, ErrOTPExpired) {
		t.Fatalf("expected ErrOTPExpired, got %v", err)
	}
}

func TestLoginWithGoogle_CreatesUser(t *testing.T) {
	repo := newMockUserRepo()
	google := &mockGoogleVerifier{ident: identity.GoogleIdentity{
		Subject: "sub-1",
		Email:   "user@example.com",
		Name:    "Test User",
		Picture: "https://example.com/p.png",
	}}
	svc := newTestAuthService(repo, &mockEmailSender{}, &mockSMSProvider{}, google)

	user, pair, err := svc.LoginWithGoogle(context.Background(), "raw-token")
	if err != nil {
		t.Fatalf("google login: %v", err)
	}
	if user.Email != "user@example.com" || user.FullName != "Test User" || !user.IsEmailVerified {
		t.Fatalf("unexpected user: %+v", user)
	}
	if pair.AccessToken == "" {
		t.Fatalf("expected access token")
	}
}

func TestLoginWithGoogle_LinksExistingEmailAccount(t *testing.T) {
	repo := newMockUserRepo()
	existing := domain.User{ID: "u-1", Email: "user@example.com", Role: domain.RoleUser, Status: domain.StatusActive}
	if err := repo.Create(context.Background(), existing); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	google := &mockGoogleVerifier{ident: identity.GoogleIdentity{Subject: "sub-1", Email: "user@example.com"}}
	svc := newTestAuthService(repo, &mockEmailSender{}, &mockSMSProvider{}, google)

	user, _, err := svc.LoginWithGoogle(context.Background(), "raw-token")
	if err != nil {
		t.Fatalf("google login: %v", err)
	}
	if user.ID != "u-1" {
		t.Fatalf("expected existing account, got %q", user.ID)
	}
	if linked, err := repo.GetByProvider(context.Background(), domain.ProviderGoogle, "sub-1"); err != nil || linked.ID != "u-1" {
		t.Fatalf("expected google link on existing account, got %+v err=%v", linked, err)
	}
}

func TestLoginWithGoogle_InvalidToken(t *testing.T) {
	repo := newMockUserRepo()
	google := &mockGoogleVerifier{err: errors.New("bad signature")}
	svc := newTestAuthService(repo, &mockEmailSender{}, &mockSMSProvider{}, google)

	_, _, err := svc.LoginWithGoogle(context.Background(), "raw-token")
	if !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
}

func TestVerifyMobileOTP_CreatesUser(t *testing.T) {
	repo := newMockUserRepo()
	smsP := &mockSMSProvider{}
	svc := newTestAuthService(repo, &mockEmailSender{}, smsP, &mockGoogleVerifier{})

	if err := svc.RequestMobileOTP(context.Background(), "+989123456789"); err != nil {
		t.Fatalf("request otp: %v", err)
	}
	if len(smsP.sentTo) != 1 || smsP.sentTo[0] != "+989123456789" {
		t.Fatalf("expected otp dispatched to phone, got %v", smsP.sentTo)
	}

	user, pair, err := svc.VerifyMobileOTP(context.Background(), "+989123456789", "123456")
	if err != nil {
		t.Fatalf("verify otp: %v", err)
	}
	if user.PhoneNumber != "+989123456789" || !user.IsPhoneVerified {
		t.Fatalf("expected verified phone user, got %+v", user)
	}
	if pair.AccessToken == "" {
		t.Fatalf("expected access token")
	}
}

func TestVerifyMobileOTP_Rejected(t *testing.T) {
	repo := newMockUserRepo()
	smsP := &mockSMSProvider{verifyErr: sms.ErrCodeRejected}
	svc := newTestAuthService(repo, &mockEmailSender{}, smsP, &mockGoogleVerifier{})

	_, _, err := svc.VerifyMobileOTP(context.Background(), "+989123456789", "000000")
	if !errors.Is(err, ErrOTPMismatch) {
		t.Fatalf("expected ErrOTPMismatch, got %v", err)
	}
}

func TestVerifyMobileOTP_SameUserOnRepeatLogin(t *testing.T) {
	repo := newMockUserRepo()
	smsP := &mockSMSProvider{}
	svc := newTestAuthService(repo, &mockEmailSender{}, smsP, &mockGoogleVerifier{})

	first, _, err := svc.VerifyMobileOTP(context.Background(), "+989123456789", "123456")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, _, err := svc.VerifyMobileOTP(context.Background(), "+989123456789", "654321")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same account, got %q and %q", first.ID, second.ID)
	}
}
