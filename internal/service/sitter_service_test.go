package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"wagy-backend/internal/domain"
	"wagy-backend/internal/verification"
)

type mockSitterRepo struct {
	profiles map[string]domain.SitterProfile
}

func newMockSitterRepo() *mockSitterRepo {
	return &mockSitterRepo{profiles: make(map[string]domain.SitterProfile)}
}

func (m *mockSitterRepo) GetByUserID(_ context.Context, userID string) (domain.SitterProfile, error) {
	profile, ok := m.profiles[userID]
	if !ok {
		return domain.SitterProfile{}, pgx.ErrNoRows
	}
	return profile, nil
}

func (m *mockSitterRepo) Create(_ context.Context, profile domain.SitterProfile) error {
	m.profiles[profile.UserID] = profile
	return nil
}

func (m *mockSitterRepo) Update(_ context.Context, profile domain.SitterProfile) error {
	if _, ok := m.profiles[profile.UserID]; !ok {
		return pgx.ErrNoRows
	}
	m.profiles[profile.UserID] = profile
	return nil
}

type mockMatcher struct {
	matched bool
	err     error
	calls   int
}

func (m *mockMatcher) ShahkarMatch(_ context.Context, _, _ string) (verification.MatchResult, error) {
	m.calls++
	if m.err != nil {
		return verification.MatchResult{}, m.err
	}
	return verification.MatchResult{Matched: m.matched}, nil
}

type mockRemover struct {
	removed []string
}

func (m *mockRemover) Remove(rel string) error {
	m.removed = append(m.removed, rel)
	return nil
}

func newTestSitterService(users *mockUserRepo, profiles *mockSitterRepo, matcher *mockMatcher, smsP *mockSMSProvider, files *mockRemover) *SitterService {
	return NewSitterService(zap.NewNop(), users, profiles, matcher, smsP, files)
}

func seedUser(t *testing.T, repo *mockUserRepo, user domain.User) {
	t.Helper()
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func strPtr(s string) *string { return &s }

func TestGetProfile_CreatesOnFirstAccess(t *testing.T) {
	users := newMockUserRepo()
	profiles := newMockSitterRepo()
	seedUser(t, users, domain.User{ID: "u-1", Email: "user@example.com", FullName: "Test User"})
	svc := newTestSitterService(users, profiles, &mockMatcher{}, &mockSMSProvider{}, &mockRemover{})

	profile, err := svc.GetProfile(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.OnboardingStep != domain.StepStart {
		t.Fatalf("expected step %d, got %d", domain.StepStart, profile.OnboardingStep)
	}
	if profile.Email != "user@example.com" || profile.FullName != "Test User" {
		t.Fatalf("expected profile prefilled from account, got %+v", profile)
	}

	again, err := svc.GetProfile(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if again.ID != profile.ID {
		t.Fatalf("expected same profile, got %q and %q", profile.ID, again.ID)
	}
}

func TestUpdateSections_StepNeverGoesBack(t *testing.T) {
	users := newMockUserRepo()
	profiles := newMockSitterRepo()
	seedUser(t, users, domain.User{ID: "u-1"})
	svc := newTestSitterService(users, profiles, &mockMatcher{}, &mockSMSProvider{}, &mockRemover{})

	price := 25.0
	profile, err := svc.UpdatePricing(context.Background(), "u-1", PricingUpdate{BasePrice: &price})
	if err != nil {
		t.Fatalf("update pricing: %v", err)
	}
	if profile.OnboardingStep != domain.StepPricing {
		t.Fatalf("expected step %d, got %d", domain.StepPricing, profile.OnboardingStep)
	}

	city := "Tehran"
	profile, err = svc.UpdateLocation(context.Background(), "u-1", LocationUpdate{City: &city})
	if err != nil {
		t.Fatalf("update location: %v", err)
	}
	if profile.OnboardingStep != domain.StepPricing {
		t.Fatalf("expected step to stay at %d, got %d", domain.StepPricing, profile.OnboardingStep)
	}
	if profile.City != "Tehran" || !profile.IsLocationCompleted {
		t.Fatalf("expected location applied, got %+v", profile)
	}
}

func TestUpdatePersonalInfo_AppliesAndSyncsPhone(t *testing.T) {
	users := newMockUserRepo()
	profiles := newMockSitterRepo()
	seedUser(t, users, domain.User{ID: "u-1", PhoneNumber: "+989123456789", IsPhoneVerified: true})
	svc := newTestSitterService(users, profiles, &mockMatcher{}, &mockSMSProvider{}, &mockRemover{})

	profile, err := svc.UpdatePersonalInfo(context.Background(), "u-1", PersonalInfoUpdate{
		FullName: strPtr("Test Sitter"),
	})
	if err != nil {
		t.Fatalf("update personal info: %v", err)
	}
	if profile.FullName != "Test Sitter" {
		t.Fatalf("expected full name applied, got %q", profile.FullName)
	}
	if profile.Phone != "+989123456789" || !profile.IsPhoneVerified {
		t.Fatalf("expected phone synced from account, got %+v", profile)
	}
	if profile.OnboardingStep != domain.StepPersonalInfo || !profile.IsPersonalInfoCompleted {
		t.Fatalf("expected step advanced, got %+v", profile)
	}
}

func TestUpdatePersonalInfo_PhoneChangeRequiresVerification(t *testing.T) {
	users := newMockUserRepo()
	profiles := newMockSitterRepo()
	seedUser(t, users, domain.User{ID: "u-1", PhoneNumber: "+989123456789"})
	smsP := &mockSMSProvider{}
	svc := newTestSitterService(users, profiles, &mockMatcher{}, smsP, &mockRemover{})

	_, err := svc.UpdatePersonalInfo(context.Background(), "u-1", PersonalInfoUpdate{
		FullName: strPtr("Should Not Persist"),
		Phone:    strPtr("+989999999999"),
	})
	if !errors.Is(err, ErrPhoneVerificationRequired) {
		t.Fatalf("expected ErrPhoneVerificationRequired, got %v", err)
	}
	if len(smsP.sentTo) != 1 || smsP.sentTo[0] != "+989999999999" {
		t.Fatalf("expected otp dispatched to new phone, got %v", smsP.sentTo)
	}

	profile, err := svc.GetProfile(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.FullName != "" {
		t.Fatalf("expected no fields persisted on rejection, got %q", profile.FullName)
	}
}

func TestUpdatePersonalInfo_ShahkarMatch(t *testing.T) {
	users := newMockUserRepo()
	profiles := newMockSitterRepo()
	seedUser(t, users, domain.User{ID: "u-1", PhoneNumber: "+989123456789"})
	matcher := &mockMatcher{matched: true}
	svc := newTestSitterService(users, profiles, matcher, &mockSMSProvider{}, &mockRemover{})

	profile, err := svc.UpdatePersonalInfo(context.Background(), "u-1", PersonalInfoUpdate{
		GovernmentIdNumber: strPtr("0012345678"),
	})
	if err != nil {
		t.Fatalf("update personal info: %v", err)
	}
	if !profile.IsShahkarVerified {
		t.Fatalf("expected shahkar flag set")
	}
	if matcher.calls != 1 {
		t.Fatalf("expected one shahkar call, got %d", matcher.calls)
	}
}

func TestUpdatePersonalInfo_ShahkarMismatchRejectsAll(t *testing.T) {
	users := newMockUserRepo()
	profiles := newMockSitterRepo()
	seedUser(t, users, domain.User{ID: "u-1", PhoneNumber: "+989123456789"})
	svc := newTestSitterService(users, profiles, &mockMatcher{matched: false}, &mockSMSProvider{}, &mockRemover{})

	_, err := svc.UpdatePersonalInfo(context.Background(), "u-1", PersonalInfoUpdate{
		FullName:           strPtr("Should Not Persist"),
		GovernmentIdNumber: strPtr("0012345678"),
	})
	if !errors.Is(err, ErrVerificationMismatch) {
		t.Fatalf("expected ErrVerificationMismatch, got %v", err)
	}

	profile, err := svc.GetProfile(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.FullName != "" || profile.GovernmentIdNumber != "" || profile.IsShahkarVerified {
		t.Fatalf("expected nothing persisted on mismatch, got %+v", profile)
	}
}

func TestUpdatePersonalInfo_MissingPhone(t *testing.T) {
	users := newMockUserRepo()
	profiles := newMockSitterRepo()
	seedUser(t, users, domain.User{ID: "u-1"})
	svc := newTestSitterService(users, profiles, &mockMatcher{matched: true}, &mockSMSProvider{}, &mockRemover{})

	_, err := svc.UpdatePersonalInfo(context.Background(), "u-1", PersonalInfoUpdate{
		GovernmentIdNumber: strPtr("0012345678"),
	})
	if !errors.Is(err, ErrMissingPhone) {
		t.Fatalf("expected ErrMissingPhone, got %v", err)
	}
}

func TestUpdatePersonalInfo_VerificationUnavailable(t *testing.T) {
	users := newMockUserRepo()
	profiles := newMockSitterRepo()
	seedUser(t, users, domain.User{ID: "u-1", PhoneNumber: "+989123456789"})
	matcher := &mockMatcher{err: errors.New("upstream timeout")}
	svc := newTestSitterService(users, profiles, matcher, &mockSMSProvider{}, &mockRemover{})

	_, err := svc.UpdatePersonalInfo(context.Background(), "u-1", PersonalInfoUpdate{
		GovernmentIdNumber: strPtr("0012345678"),
	})
	if !errors.Is(err, ErrVerificationUnavailable) {
		t.Fatalf("expected ErrVerificationUnavailable, got %v", err)
	}
}

func TestAddGalleryPhotos_Limit(t *testing.T) {
	users := newMockUserRepo()
	profiles := newMockSitterRepo()
	seedUser(t, users, domain.User{ID: "u-1"})
	svc := newTestSitterService(users, profiles, &mockMatcher{}, &mockSMSProvider{}, &mockRemover{})

	first := make([]string, 9)
	for i := range first {
		first[i] = "gallery/a.jpg"
	}
	if _, err := svc.AddGalleryPhotos(context.Background(), "u-1", first); err != nil {
		t.Fatalf("seed gallery: %v", err)
	}

	_, err := svc.AddGalleryPhotos(context.Background(), "u-1", []string{"gallery/b.jpg", "gallery/c.jpg"})
	if !errors.Is(err, ErrGalleryLimit) {
		t.Fatalf("expected ErrGalleryLimit, got %v", err)
	}

	profile, err := svc.GetProfile(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if len(profile.PhotoGallery) != 9 {
		t.Fatalf("expected gallery unchanged at 9, got %d", len(profile.PhotoGallery))
	}

	if _, err := svc.AddGalleryPhotos(context.Background(), "u-1", []string{"gallery/b.jpg"}); err != nil {
		t.Fatalf("expected tenth photo accepted: %v", err)
	}
}

func TestDeleteGalleryPhotos_ByAbsoluteURL(t *testing.T) {
	users := newMockUserRepo()
	profiles := newMockSitterRepo()
	seedUser(t, users, domain.User{ID: "u-1"})
	remover := &mockRemover{}
	svc := newTestSitterService(users, profiles, &mockMatcher{}, &mockSMSProvider{}, remover)

	if _, err := svc.AddGalleryPhotos(context.Background(), "u-1", []string{"gallery/a.jpg", "gallery/b.jpg"}); err != nil {
		t.Fatalf("seed gallery: %v", err)
	}

	profile, err := svc.DeleteGalleryPhotos(context.Background(), "u-1", []string{
		"http://localhost:8080/uploads/gallery/a.jpg",
	})
	if err != nil {
		t.Fatalf("delete photos: %v", err)
	}
	if len(profile.PhotoGallery) != 1 || profile.PhotoGallery[0] != "gallery/b.jpg" {
		t.Fatalf("expected only b.jpg left, got %v", profile.PhotoGallery)
	}
	if len(remover.removed) != 1 || remover.removed[0] != "gallery/a.jpg" {
		t.Fatalf("expected backing file removed, got %v", remover.removed)
	}
}

func TestDeleteGalleryPhotos_UnknownIgnored(t *testing.T) {
	users := newMockUserRepo()
	profiles := newMockSitterRepo()
	seedUser(t, users, domain.User{ID: "u-1"})
	svc := newTestSitterService(users, profiles, &mockMatcher{}, &mockSMSProvider{}, &mockRemover{})

	if _, err := svc.AddGalleryPhotos(context.Background(), "u-1", []string{"gallery/a.jpg"}); err != nil {
		t.Fatalf("seed gallery: %v", err)
	}

	profile, err := svc.DeleteGalleryPhotos(context.Background(), "u-1", []string{"gallery/missing.jpg"})
	if err != nil {
		t.Fatalf("delete photos: %v", err)
	}
	if len(profile.PhotoGallery) != 1 {
		t.Fatalf("expected gallery untouched, got %v", profile.PhotoGallery)
	}
}

func TestUpdateProfilePhoto_RemovesOldFile(t *testing.T) {
	users := newMockUserRepo()
	profiles := newMockSitterRepo()
	seedUser(t, users, domain.User{ID: "u-1"})
	remover := &mockRemover{}
	svc := newTestSitterService(users, profiles, &mockMatcher{}, &mockSMSProvider{}, remover)

	if _, err := svc.UpdateProfilePhoto(context.Background(), "u-1", "profile_photos/old.jpg"); err != nil {
		t.Fatalf("first photo: %v", err)
	}
	profile, err := svc.UpdateProfilePhoto(context.Background(), "u-1", "profile_photos/new.jpg")
	if err != nil {
		t.Fatalf("second photo: %v", err)
	}
	if profile.ProfilePhoto != "profile_photos/new.jpg" {
		t.Fatalf("expected new photo, got %q", profile.ProfilePhoto)
	}
	if len(remover.removed) != 1 || remover.removed[0] != "profile_photos/old.jpg" {
		t.Fatalf("expected old photo removed, got %v", remover.removed)
	}
}
