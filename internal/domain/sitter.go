package domain

import "time"

type GovernmentIdType string

const (
	IdTypePassport   GovernmentIdType = "passport"
	IdTypeNationalID GovernmentIdType = "national_id"
)

type BackgroundCheckStatus string

const (
	BackgroundPending  BackgroundCheckStatus = "pending"
	BackgroundApproved BackgroundCheckStatus = "approved"
	BackgroundRejected BackgroundCheckStatus = "rejected"
)

type AvailabilityType string

const (
	AvailabilityFullTime AvailabilityType = "full_time"
	AvailabilityPartTime AvailabilityType = "part_time"
)

type HomeType string

const (
	HomeHouse     HomeType = "house"
	HomeApartment HomeType = "apartment"
	HomeCondo     HomeType = "condo"
	HomeFarm      HomeType = "farm"
)

type HomeOwnership string

const (
	OwnershipOwn  HomeOwnership = "own"
	OwnershipRent HomeOwnership = "rent"
)

type YardSize string

const (
	YardNone   YardSize = "none"
	YardSmall  YardSize = "small"
	YardMedium YardSize = "medium"
	YardLarge  YardSize = "large"
)

type CancellationPolicy string

const (
	CancellationFlexible CancellationPolicy = "flexible"
	CancellationModerate CancellationPolicy = "moderate"
	CancellationStrict   CancellationPolicy = "strict"
)

type PayoutMethod string

const (
	PayoutBankTransfer PayoutMethod = "bank_transfer"
	PayoutPaypal       PayoutMethod = "paypal"
	PayoutStripe       PayoutMethod = "stripe"
)

type PottyBreakFrequency string

const (
	PottyEveryHour   PottyBreakFrequency = "every_hour"
	PottyEvery2Hours PottyBreakFrequency = "every_2_hours"
	PottyEvery4Hours PottyBreakFrequency = "every_4_hours"
	PottyEvery8Hours PottyBreakFrequency = "every_8_hours"
)

type SleepingArrangement string

const (
	SleepInBed    SleepingArrangement = "in_bed"
	SleepInCrate  SleepingArrangement = "in_crate"
	SleepInOwnBed SleepingArrangement = "in_own_bed"
	SleepAnywhere SleepingArrangement = "anywhere"
)

type WalkDuration string

const (
	Walk30Min WalkDuration = "30_min"
	Walk60Min WalkDuration = "60_min"
)

type WalkType string

const (
	WalkPrivate WalkType = "private"
	WalkGroup   WalkType = "group"
)

type LeashType string

const (
	LeashStandard    LeashType = "standard"
	LeashRetractable LeashType = "retractable"
	LeashLongLine    LeashType = "long_line"
)

type WeatherPolicy string

const (
	WeatherRainOrShine      WeatherPolicy = "rain_or_shine"
	WeatherNoExtremeWeather WeatherPolicy = "no_extreme_weather"
)

// Pasos del wizard de onboarding. 4 y 8 quedan reservados para secciones
// que el frontend maneja sin llamada propia; no renumerar.
const (
	StepStart        = 1
	StepPersonalInfo = 2
	StepLocation     = 3
	StepServices     = 5
	StepExperience   = 6
	StepHome         = 7
	StepContent      = 9
	StepPricing      = 10
)

const MaxGalleryPhotos = 10

// SitterProfile agrupa todas las respuestas del wizard de onboarding.
// Relación uno a uno con User.
type SitterProfile struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	// Identidad y verificación
	FullName              string                `json:"full_name"`
	ProfilePhoto          string                `json:"profile_photo,omitempty"`
	DateOfBirth           string                `json:"date_of_birth,omitempty"`
	Phone                 string                `json:"phone,omitempty"`
	Email                 string                `json:"email,omitempty"`
	GovernmentIdType      GovernmentIdType      `json:"government_id_type,omitempty"`
	GovernmentIdNumber    string                `json:"government_id_number,omitempty"`
	Address               string                `json:"address,omitempty"`
	PostalCode            string                `json:"postal_code,omitempty"`
	IdVerified            bool                  `json:"id_verified"`
	IsPhoneVerified       bool                  `json:"is_phone_verified"`
	IsShahkarVerified     bool                  `json:"is_shahkar_verified"`
	BackgroundCheckStatus BackgroundCheckStatus `json:"background_check_status"`
	EmergencyContactName  string                `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string                `json:"emergency_contact_phone,omitempty"`

	// Flags de completitud por sección
	IsPersonalInfoCompleted bool `json:"is_personal_info_completed"`
	IsLocationCompleted     bool `json:"is_location_completed"`
	IsBoardingCompleted     bool `json:"is_boarding_completed"`
	IsDogWalkingCompleted   bool `json:"is_dog_walking_completed"`
	IsExperienceCompleted   bool `json:"is_experience_completed"`
	IsHomeCompleted         bool `json:"is_home_completed"`
	IsContentCompleted      bool `json:"is_content_completed"`
	IsPricingCompleted      bool `json:"is_pricing_completed"`

	OnboardingStep int `json:"onboarding_step"`

	// Ubicación y disponibilidad
	Country            string           `json:"country,omitempty"`
	City               string           `json:"city,omitempty"`
	Latitude           float64          `json:"latitude,omitempty"`
	Longitude          float64          `json:"longitude,omitempty"`
	ServiceRadiusKm    int              `json:"service_radius_km,omitempty"`
	AvailabilityType   AvailabilityType `json:"availability_type,omitempty"`
	AvailableDays      []string         `json:"available_days"`
	AvailableTimeSlots map[string]any   `json:"available_time_slots"`
	BlackoutDates      []string         `json:"blackout_dates"`

	// Experiencia
	YearsOfExperience    int      `json:"years_of_experience"`
	PetExperienceTypes   []string `json:"pet_experience_types"`
	BreedsExperience     []string `json:"breeds_experience"`
	SizeExperience       []string `json:"size_experience"`
	PuppyExperience      bool     `json:"puppy_experience"`
	SeniorPetExperience  bool     `json:"senior_pet_experience"`
	MedicationExperience bool     `json:"medication_experience"`
	BehavioralExperience []string `json:"behavioral_experience"`
	FirstAidCertified    bool     `json:"first_aid_certified"`
	VetClinicReference   string   `json:"vet_clinic_reference,omitempty"`

	// Hogar
	HomeType       HomeType       `json:"home_type,omitempty"`
	HomeOwnership  HomeOwnership  `json:"home_ownership,omitempty"`
	FencedYard     bool           `json:"fenced_yard"`
	YardSize       YardSize       `json:"yard_size,omitempty"`
	PetsInHome     bool           `json:"pets_in_home"`
	OwnPetsDetails map[string]any `json:"own_pets_details"`
	ChildrenInHome bool           `json:"children_in_home"`
	SmokingHome    bool           `json:"smoking_home"`
	CrateAvailable bool           `json:"crate_available"`
	CamerasInHome  bool           `json:"cameras_in_home"`

	// Precios y pagos
	BasePrice          float64            `json:"base_price"`
	AdditionalPetPrice float64            `json:"additional_pet_price"`
	PuppyRate          float64            `json:"puppy_rate"`
	HolidayRate        float64            `json:"holiday_rate"`
	LongStayDiscount   float64            `json:"long_stay_discount"`
	CancellationPolicy CancellationPolicy `json:"cancellation_policy,omitempty"`
	PayoutMethod       PayoutMethod       `json:"payout_method,omitempty"`
	PayoutVerified     bool               `json:"payout_verified"`

	// Contenido del perfil
	Headline               string   `json:"headline,omitempty"`
	Bio                    string   `json:"bio,omitempty"`
	CareRoutineDescription string   `json:"care_routine_description,omitempty"`
	TrainingPhilosophy     string   `json:"training_philosophy,omitempty"`
	PhotoGallery           []string `json:"photo_gallery"`
	IntroVideo             string   `json:"intro_video,omitempty"`

	// Servicios soportados
	IsBoardingSupported     bool `json:"is_boarding_supported"`
	IsHouseSittingSupported bool `json:"is_house_sitting_supported"`
	IsDropInSupported       bool `json:"is_drop_in_supported"`
	IsDogWalkingSupported   bool `json:"is_dog_walking_supported"`
	IsDayCareSupported      bool `json:"is_day_care_supported"`

	// Criterios de boarding
	BoardingMaxPets              int                 `json:"boarding_max_pets,omitempty"`
	BoardingOvernightSupervision bool                `json:"boarding_overnight_supervision"`
	BoardingAllowedPetTypes      []string            `json:"boarding_allowed_pet_types"`
	BoardingDailyWalks           int                 `json:"boarding_daily_walks,omitempty"`
	BoardingPottyBreakFreq       PottyBreakFrequency `json:"boarding_potty_break_freq,omitempty"`
	BoardingSleepingArrangement  SleepingArrangement `json:"boarding_sleeping_arrangement,omitempty"`
	BoardingSeparationPolicy     bool                `json:"boarding_separation_policy"`

	// Criterios de paseo
	WalkingDuration      WalkDuration  `json:"walking_duration,omitempty"`
	WalkingType          WalkType      `json:"walking_type,omitempty"`
	WalkingMaxDogs       int           `json:"walking_max_dogs,omitempty"`
	WalkingLeashType     LeashType     `json:"walking_leash_type,omitempty"`
	WalkingGpsTracking   bool          `json:"walking_gps_tracking"`
	WalkingWeatherPolicy WeatherPolicy `json:"walking_weather_policy,omitempty"`

	// Señales de confianza
	Rating              float64 `json:"rating"`
	CompletedBookings   int     `json:"completed_bookings"`
	RepeatClients       int     `json:"repeat_clients"`
	ResponseTimeMinutes int     `json:"response_time_minutes,omitempty"`
	CancellationRate    float64 `json:"cancellation_rate"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AdvanceStep sube el paso de onboarding sin permitir retrocesos.
func (p *SitterProfile) AdvanceStep(target int) {
	if target > p.OnboardingStep {
		p.OnboardingStep = target
	}
}
