package domain

import "time"

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type UserStatus string

const (
	StatusActive  UserStatus = "active"
	StatusBlocked UserStatus = "blocked"
	StatusDeleted UserStatus = "deleted"
)

type AuthProviderKind string

const (
	ProviderGoogle AuthProviderKind = "google"
	ProviderOTP    AuthProviderKind = "otp"
	ProviderEmail  AuthProviderKind = "email"
)

type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email,omitempty"`
	PhoneNumber     string     `json:"phone_number,omitempty"`
	FullName        string     `json:"full_name,omitempty"`
	AvatarURL       string     `json:"avatar_url,omitempty"`
	Role            UserRole   `json:"role"`
	IsEmailVerified bool       `json:"is_email_verified"`
	IsPhoneVerified bool       `json:"is_phone_verified"`
	Status          UserStatus `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// AuthProviderLink vincula un usuario con un canal de identidad externo.
type AuthProviderLink struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	Provider    AuthProviderKind `json:"provider"`
	ProviderUID string           `json:"provider_uid"`
	CreatedAt   time.Time        `json:"created_at"`
}
