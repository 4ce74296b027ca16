package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"wagy-backend/internal/domain"
	"wagy-backend/internal/repository"
	"wagy-backend/internal/sms"
	"wagy-backend/internal/verification"
)

// FileRemover borra archivos de respaldo de fotos; un archivo inexistente no
// es error.
type FileRemover interface {
	Remove(rel string) error
}

// SitterService implementa la maquina de estados del wizard de onboarding.
// Cada actualizacion de seccion mergea solo los campos presentes y sube
// onboarding_step a su paso objetivo sin permitir retrocesos.
type SitterService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	profiles    repository.SitterProfileRepository
	verifier    verification.Matcher
	smsProvider sms.Provider
	files       FileRemover
}

var (
	ErrMissingPhone              = errors.New("no phone number available for verification")
	ErrVerificationMismatch      = errors.New("phone number and national ID do not match")
	ErrVerificationUnavailable   = errors.New("identity verification unavailable")
	ErrPhoneVerificationRequired = errors.New("phone verification required")
	ErrGalleryLimit              = errors.New("gallery cannot exceed 10 photos")
)

func NewSitterService(
	logger *zap.Logger,
	users repository.UserRepository,
	profiles repository.SitterProfileRepository,
	verifier verification.Matcher,
	smsProvider sms.Provider,
	files FileRemover,
) *SitterService {
	return &SitterService{
		logger:      logger,
		users:       users,
		profiles:    profiles,
		verifier:    verifier,
		smsProvider: smsProvider,
		files:       files,
	}
}

// GetProfile devuelve el perfil del usuario, creandolo en el primer acceso
// pre-cargado con los datos de la cuenta.
func (s *SitterService) GetProfile(ctx context.Context, userID string) (domain.SitterProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.SitterProfile{}, err
	}
	return s.getOrCreate(ctx, user)
}

func (s *SitterService) getOrCreate(ctx context.Context, user domain.User) (domain.SitterProfile, error) {
	profile, err := s.profiles.GetByUserID(ctx, user.ID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.SitterProfile{}, err
	}

	now := time.Now().UTC()
	profile = domain.SitterProfile{
		ID:                    uuid.NewString(),
		UserID:                user.ID,
		FullName:              user.FullName,
		Phone:                 user.PhoneNumber,
		Email:                 user.Email,
		ProfilePhoto:          user.AvatarURL,
		IsPhoneVerified:       user.IsPhoneVerified,
		BackgroundCheckStatus: domain.BackgroundPending,
		OnboardingStep:        domain.StepStart,
		AvailableDays:         []string{},
		AvailableTimeSlots:    map[string]any{},
		BlackoutDates:         []string{},
		PetExperienceTypes:    []string{},
		BreedsExperience:      []string{},
		SizeExperience:        []string{},
		BehavioralExperience:  []string{},
		OwnPetsDetails:        map[string]any{},
		PhotoGallery:          []string{},
		BoardingAllowedPetTypes: []string{},
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return domain.SitterProfile{}, err
	}
	return profile, nil
}

// PersonalInfoUpdate lleva solo los campos presentes en el request; un campo
// nil deja el valor previo intacto.
type PersonalInfoUpdate struct {
	FullName              *string                  `json:"full_name"`
	DateOfBirth           *string                  `json:"date_of_birth"`
	ProfilePhoto          *string                  `json:"profile_photo"`
	Phone                 *string                  `json:"phone"`
	GovernmentIdType      *domain.GovernmentIdType `json:"government_id_type"`
	GovernmentIdNumber    *string                  `json:"government_id_number"`
	Address               *string                  `json:"address"`
	PostalCode            *string                  `json:"postal_code"`
	EmergencyContactName  *string                  `json:"emergency_contact_name"`
	EmergencyContactPhone *string                  `json:"emergency_contact_phone"`
}

func (u PersonalInfoUpdate) apply(p *domain.SitterProfile) {
	setString(&p.FullName, u.FullName)
	setString(&p.DateOfBirth, u.DateOfBirth)
	setString(&p.ProfilePhoto, u.ProfilePhoto)
	setString(&p.Phone, u.Phone)
	if u.GovernmentIdType != nil {
		p.GovernmentIdType = *u.GovernmentIdType
	}
	setString(&p.GovernmentIdNumber, u.GovernmentIdNumber)
	setString(&p.Address, u.Address)
	setString(&p.PostalCode, u.PostalCode)
	setString(&p.EmergencyContactName, u.EmergencyContactName)
	setString(&p.EmergencyContactPhone, u.EmergencyContactPhone)
}

// UpdatePersonalInfo aplica la seccion de datos personales con dos puertas
// previas: cambio de telefono (dispara OTP y rechaza la operacion completa) y
// cruce shahkar cuando viene un numero de documento. Ante cualquier rechazo
// no se persiste ningun campo.
func (s *SitterService) UpdatePersonalInfo(ctx context.Context, userID string, upd PersonalInfoUpdate) (domain.SitterProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.SitterProfile{}, err
	}
	profile, err := s.getOrCreate(ctx, user)
	if err != nil {
		return domain.SitterProfile{}, err
	}

	if upd.Phone != nil {
		newPhone := strings.TrimSpace(*upd.Phone)
		if newPhone != "" && newPhone != user.PhoneNumber {
			if s.smsProvider != nil {
				if err := s.smsProvider.SendOTP(ctx, newPhone); err != nil && s.logger != nil {
					s.logger.Warn("phone change otp send failed", zap.Error(err), zap.String("user_id", userID))
				}
			}
			return domain.SitterProfile{}, ErrPhoneVerificationRequired
		}
	}

	if upd.GovernmentIdNumber != nil && strings.TrimSpace(*upd.GovernmentIdNumber) != "" {
		checkPhone := profile.Phone
		if upd.Phone != nil && strings.TrimSpace(*upd.Phone) != "" {
			checkPhone = strings.TrimSpace(*upd.Phone)
		}
		if checkPhone == "" {
			checkPhone = user.PhoneNumber
		}
		if checkPhone == "" {
			return domain.SitterProfile{}, ErrMissingPhone
		}

		if err := s.checkShahkar(ctx, checkPhone, *upd.GovernmentIdNumber); err != nil {
			return domain.SitterProfile{}, err
		}
		// Una vez verificado no hay camino de bajada para el flag.
		profile.IsShahkarVerified = true
	}

	upd.apply(&profile)
	if user.PhoneNumber != "" {
		profile.Phone = user.PhoneNumber
		profile.IsPhoneVerified = true
	}
	profile.IsPersonalInfoCompleted = true
	return s.save(ctx, &profile, domain.StepPersonalInfo)
}

func (s *SitterService) checkShahkar(ctx context.Context, phone, nationalCode string) error {
	if s.verifier == nil {
		return ErrVerificationUnavailable
	}
	res, err := s.verifier.ShahkarMatch(ctx, phone, nationalCode)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("shahkar check failed", zap.Error(err))
		}
		return fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}
	if !res.Matched {
		return ErrVerificationMismatch
	}
	return nil
}

type LocationUpdate struct {
	Country            *string                  `json:"country"`
	City               *string                  `json:"city"`
	Latitude           *float64                 `json:"latitude"`
	Longitude          *float64                 `json:"longitude"`
	ServiceRadiusKm    *int                     `json:"service_radius_km"`
	AvailabilityType   *domain.AvailabilityType `json:"availability_type"`
	AvailableDays      []string                 `json:"available_days"`
	AvailableTimeSlots map[string]any           `json:"available_time_slots"`
	BlackoutDates      []string                 `json:"blackout_dates"`
}

func (u LocationUpdate) apply(p *domain.SitterProfile) {
	setString(&p.Country, u.Country)
	setString(&p.City, u.City)
	if u.Latitude != nil {
		p.Latitude = *u.Latitude
	}
	if u.Longitude != nil {
		p.Longitude = *u.Longitude
	}
	if u.ServiceRadiusKm != nil {
		p.ServiceRadiusKm = *u.ServiceRadiusKm
	}
	if u.AvailabilityType != nil {
		p.AvailabilityType = *u.AvailabilityType
	}
	if u.AvailableDays != nil {
		p.AvailableDays = u.AvailableDays
	}
	if u.AvailableTimeSlots != nil {
		p.AvailableTimeSlots = u.AvailableTimeSlots
	}
	if u.BlackoutDates != nil {
		p.BlackoutDates = u.BlackoutDates
	}
}

func (s *SitterService) UpdateLocation(ctx context.Context, userID string, upd LocationUpdate) (domain.SitterProfile, error) {
	return s.updateSection(ctx, userID, domain.StepLocation, func(p *domain.SitterProfile) {
		upd.apply(p)
		p.IsLocationCompleted = true
	})
}

type BoardingUpdate struct {
	BasePrice                    *float64                    `json:"base_price"`
	BoardingMaxPets              *int                        `json:"boarding_max_pets"`
	BoardingOvernightSupervision *bool                       `json:"boarding_overnight_supervision"`
	BoardingAllowedPetTypes      []string                    `json:"boarding_allowed_pet_types"`
	BoardingDailyWalks           *int                        `json:"boarding_daily_walks"`
	BoardingPottyBreakFreq       *domain.PottyBreakFrequency `json:"boarding_potty_break_freq"`
	BoardingSleepingArrangement  *domain.SleepingArrangement `json:"boarding_sleeping_arrangement"`
	BoardingSeparationPolicy     *bool                       `json:"boarding_separation_policy"`
}

func (u BoardingUpdate) apply(p *domain.SitterProfile) {
	if u.BasePrice != nil {
		p.BasePrice = *u.BasePrice
	}
	if u.BoardingMaxPets != nil {
		p.BoardingMaxPets = *u.BoardingMaxPets
	}
	setBool(&p.BoardingOvernightSupervision, u.BoardingOvernightSupervision)
	if u.BoardingAllowedPetTypes != nil {
		p.BoardingAllowedPetTypes = u.BoardingAllowedPetTypes
	}
	if u.BoardingDailyWalks != nil {
		p.BoardingDailyWalks = *u.BoardingDailyWalks
	}
	if u.BoardingPottyBreakFreq != nil {
		p.BoardingPottyBreakFreq = *u.BoardingPottyBreakFreq
	}
	if u.BoardingSleepingArrangement != nil {
		p.BoardingSleepingArrangement = *u.BoardingSleepingArrangement
	}
	setBool(&p.BoardingSeparationPolicy, u.BoardingSeparationPolicy)
}

func (s *SitterService) UpdateBoarding(ctx context.Context, userID string, upd BoardingUpdate) (domain.SitterProfile, error) {
	return s.updateSection(ctx, userID, domain.StepServices, func(p *domain.SitterProfile) {
		upd.apply(p)
		p.IsBoardingSupported = true
		p.IsBoardingCompleted = true
	})
}

type WalkingUpdate struct {
	WalkingDuration      *domain.WalkDuration  `json:"walking_duration"`
	WalkingType          *domain.WalkType      `json:"walking_type"`
	WalkingMaxDogs       *int                  `json:"walking_max_dogs"`
	WalkingLeashType     *domain.LeashType     `json:"walking_leash_type"`
	WalkingGpsTracking   *bool                 `json:"walking_gps_tracking"`
	WalkingWeatherPolicy *domain.WeatherPolicy `json:"walking_weather_policy"`
}

func (u WalkingUpdate) apply(p *domain.SitterProfile) {
	if u.WalkingDuration != nil {
		p.WalkingDuration = *u.WalkingDuration
	}
	if u.WalkingType != nil {
		p.WalkingType = *u.WalkingType
	}
	if u.WalkingMaxDogs != nil {
		p.WalkingMaxDogs = *u.WalkingMaxDogs
	}
	if u.WalkingLeashType != nil {
		p.WalkingLeashType = *u.WalkingLeashType
	}
	setBool(&p.WalkingGpsTracking, u.WalkingGpsTracking)
	if u.WalkingWeatherPolicy != nil {
		p.WalkingWeatherPolicy = *u.WalkingWeatherPolicy
	}
}

func (s *SitterService) UpdateWalking(ctx context.Context, userID string, upd WalkingUpdate) (domain.SitterProfile, error) {
	return s.updateSection(ctx, userID, domain.StepServices, func(p *domain.SitterProfile) {
		upd.apply(p)
		p.IsDogWalkingSupported = true
		p.IsDogWalkingCompleted = true
	})
}

type ExperienceUpdate struct {
	YearsOfExperience    *int     `json:"years_of_experience"`
	PetExperienceTypes   []string `json:"pet_experience_types"`
	BreedsExperience     []string `json:"breeds_experience"`
	SizeExperience       []string `json:"size_experience"`
	PuppyExperience      *bool    `json:"puppy_experience"`
	SeniorPetExperience  *bool    `json:"senior_pet_experience"`
	MedicationExperience *bool    `json:"medication_experience"`
	BehavioralExperience []string `json:"behavioral_experience"`
	FirstAidCertified    *bool    `json:"first_aid_certified"`
	VetClinicReference   *string  `json:"vet_clinic_reference"`
}

func (u ExperienceUpdate) apply(p *domain.SitterProfile) {
	if u.YearsOfExperience != nil {
		p.YearsOfExperience = *u.YearsOfExperience
	}
	if u.PetExperienceTypes != nil {
		p.PetExperienceTypes = u.PetExperienceTypes
	}
	if u.BreedsExperience != nil {
		p.BreedsExperience = u.BreedsExperience
	}
	if u.SizeExperience != nil {
		p.SizeExperience = u.SizeExperience
	}
	setBool(&p.PuppyExperience, u.PuppyExperience)
	setBool(&p.SeniorPetExperience, u.SeniorPetExperience)
	setBool(&p.MedicationExperience, u.MedicationExperience)
	if u.BehavioralExperience != nil {
		p.BehavioralExperience = u.BehavioralExperience
	}
	setBool(&p.FirstAidCertified, u.FirstAidCertified)
	setString(&p.VetClinicReference, u.VetClinicReference)
}

func (s *SitterService) UpdateExperience(ctx context.Context, userID string, upd ExperienceUpdate) (domain.SitterProfile, error) {
	return s.updateSection(ctx, userID, domain.StepExperience, func(p *domain.SitterProfile) {
		upd.apply(p)
		p.IsExperienceCompleted = true
	})
}

type HomeUpdate struct {
	HomeType       *domain.HomeType      `json:"home_type"`
	HomeOwnership  *domain.HomeOwnership `json:"home_ownership"`
	FencedYard     *bool                 `json:"fenced_yard"`
	YardSize       *domain.YardSize      `json:"yard_size"`
	PetsInHome     *bool                 `json:"pets_in_home"`
	OwnPetsDetails map[string]any        `json:"own_pets_details"`
	ChildrenInHome *bool                 `json:"children_in_home"`
	SmokingHome    *bool                 `json:"smoking_home"`
	CrateAvailable *bool                 `json:"crate_available"`
	CamerasInHome  *bool                 `json:"cameras_in_home"`
}

func (u HomeUpdate) apply(p *domain.SitterProfile) {
	if u.HomeType != nil {
		p.HomeType = *u.HomeType
	}
	if u.HomeOwnership != nil {
		p.HomeOwnership = *u.HomeOwnership
	}
	setBool(&p.FencedYard, u.FencedYard)
	if u.YardSize != nil {
		p.YardSize = *u.YardSize
	}
	setBool(&p.PetsInHome, u.PetsInHome)
	if u.OwnPetsDetails != nil {
		p.OwnPetsDetails = u.OwnPetsDetails
	}
	setBool(&p.ChildrenInHome, u.ChildrenInHome)
	setBool(&p.SmokingHome, u.SmokingHome)
	setBool(&p.CrateAvailable, u.CrateAvailable)
	setBool(&p.CamerasInHome, u.CamerasInHome)
}

func (s *SitterService) UpdateHome(ctx context.Context, userID string, upd HomeUpdate) (domain.SitterProfile, error) {
	return s.updateSection(ctx, userID, domain.StepHome, func(p *domain.SitterProfile) {
		upd.apply(p)
		p.IsHomeCompleted = true
	})
}

type ContentUpdate struct {
	Headline               *string `json:"headline"`
	Bio                    *string `json:"bio"`
	CareRoutineDescription *string `json:"care_routine_description"`
	TrainingPhilosophy     *string `json:"training_philosophy"`
	IntroVideo             *string `json:"intro_video"`
}

func (u ContentUpdate) apply(p *domain.SitterProfile) {
	setString(&p.Headline, u.Headline)
	setString(&p.Bio, u.Bio)
	setString(&p.CareRoutineDescription, u.CareRoutineDescription)
	setString(&p.TrainingPhilosophy, u.TrainingPhilosophy)
	setString(&p.IntroVideo, u.IntroVideo)
}

func (s *SitterService) UpdateContent(ctx context.Context, userID string, upd ContentUpdate) (domain.SitterProfile, error) {
	return s.updateSection(ctx, userID, domain.StepContent, func(p *domain.SitterProfile) {
		upd.apply(p)
		p.IsContentCompleted = true
	})
}

type PricingUpdate struct {
	BasePrice          *float64                   `json:"base_price"`
	AdditionalPetPrice *float64                   `json:"additional_pet_price"`
	PuppyRate          *float64                   `json:"puppy_rate"`
	HolidayRate        *float64                   `json:"holiday_rate"`
	LongStayDiscount   *float64                   `json:"long_stay_discount"`
	CancellationPolicy *domain.CancellationPolicy `json:"cancellation_policy"`
	PayoutMethod       *domain.PayoutMethod       `json:"payout_method"`
}

func (u PricingUpdate) apply(p *domain.SitterProfile) {
	if u.BasePrice != nil {
		p.BasePrice = *u.BasePrice
	}
	if u.AdditionalPetPrice != nil {
		p.AdditionalPetPrice = *u.AdditionalPetPrice
	}
	if u.PuppyRate != nil {
		p.PuppyRate = *u.PuppyRate
	}
	if u.HolidayRate != nil {
		p.HolidayRate = *u.HolidayRate
	}
	if u.LongStayDiscount != nil {
		p.LongStayDiscount = *u.LongStayDiscount
	}
	if u.CancellationPolicy != nil {
		p.CancellationPolicy = *u.CancellationPolicy
	}
	if u.PayoutMethod != nil {
		p.PayoutMethod = *u.PayoutMethod
	}
}

func (s *SitterService) UpdatePricing(ctx context.Context, userID string, upd PricingUpdate) (domain.SitterProfile, error) {
	return s.updateSection(ctx, userID, domain.StepPricing, func(p *domain.SitterProfile) {
		upd.apply(p)
		p.IsPricingCompleted = true
	})
}

// UpdateProfilePhoto reemplaza la foto de perfil; el archivo anterior se borra
// best-effort.
func (s *SitterService) UpdateProfilePhoto(ctx context.Context, userID, photoPath string) (domain.SitterProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.SitterProfile{}, err
	}
	profile, err := s.getOrCreate(ctx, user)
	if err != nil {
		return domain.SitterProfile{}, err
	}

	old := profile.ProfilePhoto
	profile.ProfilePhoto = photoPath
	profile.UpdatedAt = time.Now().UTC()
	if err := s.profiles.Update(ctx, profile); err != nil {
		return domain.SitterProfile{}, err
	}
	if old != "" && old != photoPath && s.files != nil {
		if err := s.files.Remove(old); err != nil && s.logger != nil {
			s.logger.Warn("remove old profile photo failed", zap.Error(err))
		}
	}
	return profile, nil
}

// AddGalleryPhotos agrega fotos a la galeria respetando el tope de 10. Ante
// rechazo el caller debe descartar los archivos ya subidos.
func (s *SitterService) AddGalleryPhotos(ctx context.Context, userID string, photoPaths []string) (domain.SitterProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.SitterProfile{}, err
	}
	profile, err := s.getOrCreate(ctx, user)
	if err != nil {
		return domain.SitterProfile{}, err
	}

	if len(profile.PhotoGallery)+len(photoPaths) > domain.MaxGalleryPhotos {
		return domain.SitterProfile{}, ErrGalleryLimit
	}
	profile.PhotoGallery = append(profile.PhotoGallery, photoPaths...)
	profile.UpdatedAt = time.Now().UTC()
	if err := s.profiles.Update(ctx, profile); err != nil {
		return domain.SitterProfile{}, err
	}
	return profile, nil
}

// DeleteGalleryPhotos quita de la galeria las entradas que matcheen con los
// identificadores dados, en forma absoluta o relativa. Entradas sin match y
// archivos de respaldo ausentes se ignoran en silencio.
func (s *SitterService) DeleteGalleryPhotos(ctx context.Context, userID string, photos []string) (domain.SitterProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.SitterProfile{}, err
	}
	profile, err := s.getOrCreate(ctx, user)
	if err != nil {
		return domain.SitterProfile{}, err
	}

	toDelete := make(map[string]bool, len(photos))
	for _, p := range photos {
		if rel := relativePhotoPath(p); rel != "" {
			toDelete[rel] = true
		}
	}

	kept := make([]string, 0, len(profile.PhotoGallery))
	for _, entry := range profile.PhotoGallery {
		if !toDelete[entry] {
			kept = append(kept, entry)
			continue
		}
		if s.files != nil {
			if err := s.files.Remove(entry); err != nil && s.logger != nil {
				s.logger.Warn("remove gallery photo failed", zap.Error(err), zap.String("photo", entry))
			}
		}
	}
	profile.PhotoGallery = kept
	profile.UpdatedAt = time.Now().UTC()
	if err := s.profiles.Update(ctx, profile); err != nil {
		return domain.SitterProfile{}, err
	}
	return profile, nil
}

func (s *SitterService) updateSection(ctx context.Context, userID string, targetStep int, apply func(*domain.SitterProfile)) (domain.SitterProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.SitterProfile{}, err
	}
	profile, err := s.getOrCreate(ctx, user)
	if err != nil {
		return domain.SitterProfile{}, err
	}
	apply(&profile)
	return s.save(ctx, &profile, targetStep)
}

func (s *SitterService) save(ctx context.Context, profile *domain.SitterProfile, targetStep int) (domain.SitterProfile, error) {
	profile.AdvanceStep(targetStep)
	profile.UpdatedAt = time.Now().UTC()
	if err := s.profiles.Update(ctx, *profile); err != nil {
		return domain.SitterProfile{}, err
	}
	return *profile, nil
}

// relativePhotoPath normaliza un identificador de foto a la forma relativa
// almacenada: acepta URLs absolutas y rutas con el prefijo /uploads/.
func relativePhotoPath(photo string) string {
	photo = strings.TrimSpace(photo)
	if photo == "" {
		return ""
	}
	if strings.HasPrefix(photo, "http://") || strings.HasPrefix(photo, "https://") {
		if parsed, err := url.Parse(photo); err == nil {
			photo = parsed.Path
		}
	}
	photo = strings.TrimPrefix(photo, "/")
	photo = strings.TrimPrefix(photo, "uploads/")
	return photo
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
