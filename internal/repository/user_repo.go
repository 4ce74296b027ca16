package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"wagy-backend/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios y sus
// vinculos de proveedor de identidad.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByPhone(ctx context.Context, phone string) (domain.User, error)
	GetByProvider(ctx context.Context, provider domain.AuthProviderKind, providerUID string) (domain.User, error)
	LinkProvider(ctx context.Context, link domain.AuthProviderLink) error
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

const userColumns = `
	id, email, phone_number, full_name, avatar_url, role,
	is_email_verified, is_phone_verified, status, created_at, updated_at
`

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (
			id, email, phone_number, full_name, avatar_url, role,
			is_email_verified, is_phone_verified, status, created_at, updated_at
		)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PhoneNumber,
		user.FullName,
		user.AvatarURL,
		user.Role,
		user.IsEmailVerified,
		user.IsPhoneVerified,
		user.Status,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *PgUserRepository) GetByPhone(ctx context.Context, phone string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE phone_number = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, phone))
}

func (r *PgUserRepository) GetByProvider(ctx context.Context, provider domain.AuthProviderKind, providerUID string) (domain.User, error) {
	const query = `
		SELECT u.id, u.email, u.phone_number, u.full_name, u.avatar_url, u.role,
			u.is_email_verified, u.is_phone_verified, u.status, u.created_at, u.updated_at
		FROM users u
		JOIN auth_providers ap ON ap.user_id = u.id
		WHERE ap.provider = $1 AND ap.provider_uid = $2
	`
	return r.scanUser(r.pool.QueryRow(ctx, query, provider, providerUID))
}

func (r *PgUserRepository) LinkProvider(ctx context.Context, link domain.AuthProviderLink) error {
	const query = `
		INSERT INTO auth_providers (id, user_id, provider, provider_uid, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		link.ID,
		link.UserID,
		link.Provider,
		link.ProviderUID,
		link.CreatedAt,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PgUserRepository) scanUser(row rowScanner) (domain.User, error) {
	var (
		u     domain.User
		email *string
		phone *string
	)
	err := row.Scan(
		&u.ID,
		&email,
		&phone,
		&u.FullName,
		&u.AvatarURL,
		&u.Role,
		&u.IsEmailVerified,
		&u.IsPhoneVerified,
		&u.Status,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	if email != nil {
		u.Email = *email
	}
	if phone != nil {
		u.PhoneNumber = *phone
	}
	return u, nil
}
