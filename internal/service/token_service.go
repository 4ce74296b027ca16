package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"wagy-backend/internal/domain"
)

// TokenService emite y valida tokens de sesion, y mantiene la lista de
// revocados para logout.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	blacklist  TokenBlacklist
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type Claims struct {
	Email     string          `json:"email,omitempty"`
	Role      domain.UserRole `json:"role,omitempty"`
	TokenType string          `json:"typ"`
	jwt.RegisteredClaims
}

var (
	ErrJWTInvalid   = errors.New("jwt invalid")
	ErrJWTExpired   = errors.New("jwt expired")
	ErrTokenRevoked = errors.New("token revoked")
)

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration, blacklist TokenBlacklist) *TokenService {
	if accessTTL <= 0 {
		accessTTL = 30 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	if blacklist == nil {
		blacklist = NewMemoryTokenBlacklist()
	}
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		issuer:     "wagy-backend",
		blacklist:  blacklist,
	}
}

// GeneratePair emite un access y refresh token con sub=user id, email y rol.
// ExpiresIn reporta la vida del access token en segundos.
func (s *TokenService) GeneratePair(user domain.User) (TokenPair, error) {
	if len(s.secret) == 0 {
		return TokenPair{}, ErrJWTInvalid
	}
	now := time.Now().UTC()
	access, err := s.signToken(user, now, s.accessTTL, "access")
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.signToken(user, now, s.refreshTTL, "refresh")
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// ParseAccessToken valida firma, tipo y claims, y rechaza tokens en la lista
// de revocados aunque la firma siga siendo valida.
func (s *TokenService) ParseAccessToken(ctx context.Context, accessToken string) (Claims, error) {
	if len(s.secret) == 0 {
		return Claims{}, ErrJWTInvalid
	}
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return Claims{}, ErrJWTInvalid
	}

	revoked, err := s.blacklist.Contains(ctx, accessToken)
	if err != nil {
		return Claims{}, err
	}
	if revoked {
		return Claims{}, ErrTokenRevoked
	}

	claims, err := s.parseToken(accessToken)
	if err != nil {
		return Claims{}, err
	}
	if claims.TokenType != "access" {
		return Claims{}, ErrJWTInvalid
	}
	if !s.isValidClaims(claims) {
		return Claims{}, ErrJWTInvalid
	}
	return claims, nil
}

// Logout agrega el token presentado a la lista de revocados. El TTL de la
// entrada es la vida restante del token, asi la lista no crece sin limite.
func (s *TokenService) Logout(ctx context.Context, accessToken string) error {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return ErrJWTInvalid
	}
	claims, err := s.parseToken(accessToken)
	if err != nil {
		return err
	}
	if claims.TokenType != "access" || !s.isValidClaims(claims) {
		return ErrJWTInvalid
	}

	ttl := s.accessTTL
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	return s.blacklist.Add(ctx, accessToken, ttl)
}

func (s *TokenService) signToken(user domain.User, now time.Time, ttl time.Duration, tokenType string) (string, error) {
	claims := Claims{
		Email:     user.Email,
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *TokenService) parseToken(tokenString string) (Claims, error) {
	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrJWTExpired
		}
		return Claims{}, ErrJWTInvalid
	}
	return claims, nil
}

func (s *TokenService) isValidClaims(claims Claims) bool {
	if strings.TrimSpace(claims.Subject) == "" {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}
