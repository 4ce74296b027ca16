package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"wagy-backend/internal/domain"
)

// SitterProfileRepository define el contrato de persistencia para perfiles de
// cuidadores. Update escribe la fila completa; escrituras concurrentes al mismo
// perfil resuelven como last-write-wins.
type SitterProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (domain.SitterProfile, error)
	Create(ctx context.Context, profile domain.SitterProfile) error
	Update(ctx context.Context, profile domain.SitterProfile) error
}

// PgSitterProfileRepository implementa SitterProfileRepository usando pgxpool.
type PgSitterProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgSitterProfileRepository(pool *pgxpool.Pool) *PgSitterProfileRepository {
	return &PgSitterProfileRepository{pool: pool}
}

const sitterColumns = `
	id, user_id, full_name, profile_photo, date_of_birth, phone, email,
	government_id_type, government_id_number, address, postal_code,
	id_verified, is_phone_verified, is_shahkar_verified, background_check_status,
	emergency_contact_name, emergency_contact_phone,
	is_personal_info_completed, is_location_completed, is_boarding_completed,
	is_dog_walking_completed, is_experience_completed, is_home_completed,
	is_content_completed, is_pricing_completed, onboarding_step,
	country, city, latitude, longitude, service_radius_km, availability_type,
	available_days, available_time_slots, blackout_dates,
	years_of_experience, pet_experience_types, breeds_experience, size_experience,
	puppy_experience, senior_pet_experience, medication_experience,
	behavioral_experience, first_aid_certified, vet_clinic_reference,
	home_type, home_ownership, fenced_yard, yard_size, pets_in_home,
	own_pets_details, children_in_home, smoking_home, crate_available, cameras_in_home,
	base_price, additional_pet_price, puppy_rate, holiday_rate, long_stay_discount,
	cancellation_policy, payout_method, payout_verified,
	headline, bio, care_routine_description, training_philosophy, photo_gallery, intro_video,
	is_boarding_supported, is_house_sitting_supported, is_drop_in_supported,
	is_dog_walking_supported, is_day_care_supported,
	boarding_max_pets, boarding_overnight_supervision, boarding_allowed_pet_types,
	boarding_daily_walks, boarding_potty_break_freq, boarding_sleeping_arrangement,
	boarding_separation_policy,
	walking_duration, walking_type, walking_max_dogs, walking_leash_type,
	walking_gps_tracking, walking_weather_policy,
	rating, completed_bookings, repeat_clients, response_time_minutes, cancellation_rate,
	created_at, updated_at
`

func (r *PgSitterProfileRepository) GetByUserID(ctx context.Context, userID string) (domain.SitterProfile, error) {
	const query = `SELECT ` + sitterColumns + ` FROM sitter_profiles WHERE user_id = $1`

	var p domain.SitterProfile
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &p.FullName, &p.ProfilePhoto, &p.DateOfBirth, &p.Phone, &p.Email,
		&p.GovernmentIdType, &p.GovernmentIdNumber, &p.Address, &p.PostalCode,
		&p.IdVerified, &p.IsPhoneVerified, &p.IsShahkarVerified, &p.BackgroundCheckStatus,
		&p.EmergencyContactName, &p.EmergencyContactPhone,
		&p.IsPersonalInfoCompleted, &p.IsLocationCompleted, &p.IsBoardingCompleted,
		&p.IsDogWalkingCompleted, &p.IsExperienceCompleted, &p.IsHomeCompleted,
		&p.IsContentCompleted, &p.IsPricingCompleted, &p.OnboardingStep,
		&p.Country, &p.City, &p.Latitude, &p.Longitude, &p.ServiceRadiusKm, &p.AvailabilityType,
		&p.AvailableDays, &p.AvailableTimeSlots, &p.BlackoutDates,
		&p.YearsOfExperience, &p.PetExperienceTypes, &p.BreedsExperience, &p.SizeExperience,
		&p.PuppyExperience, &p.SeniorPetExperience, &p.MedicationExperience,
		&p.BehavioralExperience, &p.FirstAidCertified, &p.VetClinicReference,
		&p.HomeType, &p.HomeOwnership, &p.FencedYard, &p.YardSize, &p.PetsInHome,
		&p.OwnPetsDetails, &p.ChildrenInHome, &p.SmokingHome, &p.CrateAvailable, &p.CamerasInHome,
		&p.BasePrice, &p.AdditionalPetPrice, &p.PuppyRate, &p.HolidayRate, &p.LongStayDiscount,
		&p.CancellationPolicy, &p.PayoutMethod, &p.PayoutVerified,
		&p.Headline, &p.Bio, &p.CareRoutineDescription, &p.TrainingPhilosophy, &p.PhotoGallery, &p.IntroVideo,
		&p.IsBoardingSupported, &p.IsHouseSittingSupported, &p.IsDropInSupported,
		&p.IsDogWalkingSupported, &p.IsDayCareSupported,
		&p.BoardingMaxPets, &p.BoardingOvernightSupervision, &p.BoardingAllowedPetTypes,
		&p.BoardingDailyWalks, &p.BoardingPottyBreakFreq, &p.BoardingSleepingArrangement,
		&p.BoardingSeparationPolicy,
		&p.WalkingDuration, &p.WalkingType, &p.WalkingMaxDogs, &p.WalkingLeashType,
		&p.WalkingGpsTracking, &p.WalkingWeatherPolicy,
		&p.Rating, &p.CompletedBookings, &p.RepeatClients, &p.ResponseTimeMinutes, &p.CancellationRate,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.SitterProfile{}, err
	}
	return p, nil
}

func (r *PgSitterProfileRepository) Create(ctx context.Context, p domain.SitterProfile) error {
	const query = `
		INSERT INTO sitter_profiles (` + sitterColumns + `)
		VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
			$31, $32, $33, $34, $35, $36, $37, $38, $39, $40,
			$41, $42, $43, $44, $45, $46, $47, $48, $49, $50,
			$51, $52, $53, $54, $55, $56, $57, $58, $59, $60,
			$61, $62, $63, $64, $65, $66, $67, $68, $69, $70,
			$71, $72, $73, $74, $75, $76, $77, $78, $79, $80,
			$81, $82, $83, $84, $85, $86, $87, $88, $89, $90,
			$91, $92, $93, $94
		)
	`
	_, err := r.pool.Exec(ctx, query, profileArgs(p)...)
	return err
}

func (r *PgSitterProfileRepository) Update(ctx context.Context, p domain.SitterProfile) error {
	const query = `
		UPDATE sitter_profiles SET
			full_name = $3, profile_photo = $4, date_of_birth = $5, phone = $6, email = $7,
			government_id_type = $8, government_id_number = $9, address = $10, postal_code = $11,
			id_verified = $12, is_phone_verified = $13, is_shahkar_verified = $14,
			background_check_status = $15, emergency_contact_name = $16, emergency_contact_phone = $17,
			is_personal_info_completed = $18, is_location_completed = $19, is_boarding_completed = $20,
			is_dog_walking_completed = $21, is_experience_completed = $22, is_home_completed = $23,
			is_content_completed = $24, is_pricing_completed = $25, onboarding_step = $26,
			country = $27, city = $28, latitude = $29, longitude = $30, service_radius_km = $31,
			availability_type = $32, available_days = $33, available_time_slots = $34, blackout_dates = $35,
			years_of_experience = $36, pet_experience_types = $37, breeds_experience = $38,
			size_experience = $39, puppy_experience = $40, senior_pet_experience = $41,
			medication_experience = $42, behavioral_experience = $43, first_aid_certified = $44,
			vet_clinic_reference = $45,
			home_type = $46, home_ownership = $47, fenced_yard = $48, yard_size = $49, pets_in_home = $50,
			own_pets_details = $51, children_in_home = $52, smoking_home = $53, crate_available = $54,
			cameras_in_home = $55,
			base_price = $56, additional_pet_price = $57, puppy_rate = $58, holiday_rate = $59,
			long_stay_discount = $60, cancellation_policy = $61, payout_method = $62, payout_verified = $63,
			headline = $64, bio = $65, care_routine_description = $66, training_philosophy = $67,
			photo_gallery = $68, intro_video = $69,
			is_boarding_supported = $70, is_house_sitting_supported = $71, is_drop_in_supported = $72,
			is_dog_walking_supported = $73, is_day_care_supported = $74,
			boarding_max_pets = $75, boarding_overnight_supervision = $76, boarding_allowed_pet_types = $77,
			boarding_daily_walks = $78, boarding_potty_break_freq = $79, boarding_sleeping_arrangement = $80,
			boarding_separation_policy = $81,
			walking_duration = $82, walking_type = $83, walking_max_dogs = $84, walking_leash_type = $85,
			walking_gps_tracking = $86, walking_weather_policy = $87,
			rating = $88, completed_bookings = $89, repeat_clients = $90, response_time_minutes = $91,
			cancellation_rate = $92, created_at = $93, updated_at = $94
		WHERE id = $1 AND user_id = $2
	`
	_, err := r.pool.Exec(ctx, query, profileArgs(p)...)
	return err
}

func profileArgs(p domain.SitterProfile) []any {
	return []any{
		p.ID, p.UserID, p.FullName, p.ProfilePhoto, p.DateOfBirth, p.Phone, p.Email,
		p.GovernmentIdType, p.GovernmentIdNumber, p.Address, p.PostalCode,
		p.IdVerified, p.IsPhoneVerified, p.IsShahkarVerified, p.BackgroundCheckStatus,
		p.EmergencyContactName, p.EmergencyContactPhone,
		p.IsPersonalInfoCompleted, p.IsLocationCompleted, p.IsBoardingCompleted,
		p.IsDogWalkingCompleted, p.IsExperienceCompleted, p.IsHomeCompleted,
		p.IsContentCompleted, p.IsPricingCompleted, p.OnboardingStep,
		p.Country, p.City, p.Latitude, p.Longitude, p.ServiceRadiusKm, p.AvailabilityType,
		p.AvailableDays, p.AvailableTimeSlots, p.BlackoutDates,
		p.YearsOfExperience, p.PetExperienceTypes, p.BreedsExperience, p.SizeExperience,
		p.PuppyExperience, p.SeniorPetExperience, p.MedicationExperience,
		p.BehavioralExperience, p.FirstAidCertified, p.VetClinicReference,
		p.HomeType, p.HomeOwnership, p.FencedYard, p.YardSize, p.PetsInHome,
		p.OwnPetsDetails, p.ChildrenInHome, p.SmokingHome, p.CrateAvailable, p.CamerasInHome,
		p.BasePrice, p.AdditionalPetPrice, p.PuppyRate, p.HolidayRate, p.LongStayDiscount,
		p.CancellationPolicy, p.PayoutMethod, p.PayoutVerified,
		p.Headline, p.Bio, p.CareRoutineDescription, p.TrainingPhilosophy, p.PhotoGallery, p.IntroVideo,
		p.IsBoardingSupported, p.IsHouseSittingSupported, p.IsDropInSupported,
		p.IsDogWalkingSupported, p.IsDayCareSupported,
		p.BoardingMaxPets, p.BoardingOvernightSupervision, p.BoardingAllowedPetTypes,
		p.BoardingDailyWalks, p.BoardingPottyBreakFreq, p.BoardingSleepingArrangement,
		p.BoardingSeparationPolicy,
		p.WalkingDuration, p.WalkingType, p.WalkingMaxDogs, p.WalkingLeashType,
		p.WalkingGpsTracking, p.WalkingWeatherPolicy,
		p.Rating, p.CompletedBookings, p.RepeatClients, p.ResponseTimeMinutes, p.CancellationRate,
		p.CreatedAt, p.UpdatedAt,
	}
}
