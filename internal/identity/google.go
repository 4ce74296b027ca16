package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	oidc "github.com/coreos/go-oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var ErrTokenInvalid = errors.New("google token invalid")

// GoogleIdentity es la identidad extraida de un ID token verificado.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// GoogleVerifier verifica ID tokens de Google contra un client id conocido.
type GoogleVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (GoogleIdentity, error)
}

// OIDCGoogleVerifier implementa GoogleVerifier usando el issuer de Google.
type OIDCGoogleVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func NewOIDCGoogleVerifier(ctx context.Context, clientID string) (*OIDCGoogleVerifier, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, fmt.Errorf("google client id is required")
	}
	provider, err := oidc.NewProvider(ctx, "https://accounts.google.com")
	if err != nil {
		return nil, err
	}
	return &OIDCGoogleVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

func (v *OIDCGoogleVerifier) Verify(ctx context.Context, rawIDToken string) (GoogleIdentity, error) {
	if strings.TrimSpace(rawIDToken) == "" {
		return GoogleIdentity{}, ErrTokenInvalid
	}

	idToken, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return GoogleIdentity{}, ErrTokenInvalid
	}

	var claims struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return GoogleIdentity{}, ErrTokenInvalid
	}
	if idToken.Subject == "" {
		return GoogleIdentity{}, ErrTokenInvalid
	}

	return GoogleIdentity{
		Subject: idToken.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}

// NewGoogleOAuthConfig arma la configuracion oauth2 para el redirect de consentimiento.
func NewGoogleOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}
