package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrCodeRejected = errors.New("sms otp code rejected")
	ErrUnavailable  = errors.New("sms provider unavailable")
)

// Provider define la interfaz del proveedor externo de OTP por SMS.
// El proveedor es dueño del ciclo de vida del codigo: emision, expiracion
// y consumo ocurren de su lado.
type Provider interface {
	SendOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone, code string) error
}

// HTTPProvider implementa Provider contra la API HTTP del proveedor.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPProvider(baseURL, apiKey string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// SendOTP pide al proveedor emitir y despachar un codigo al numero dado.
func (p *HTTPProvider) SendOTP(ctx context.Context, phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ErrUnavailable
	}

	resp, err := p.do(ctx, http.MethodPost, map[string]string{"phone_number": phone})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status=%d body=%s", ErrUnavailable, resp.StatusCode, string(body))
	}
	return nil
}

// VerifyOTP valida el codigo contra el proveedor; solo 200 cuenta como valido.
func (p *HTTPProvider) VerifyOTP(ctx context.Context, phone, code string) error {
	phone = strings.TrimSpace(phone)
	code = strings.TrimSpace(code)
	if phone == "" || code == "" {
		return ErrCodeRejected
	}

	resp, err := p.do(ctx, http.MethodPut, map[string]string{"phone_number": phone, "otp": code})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ErrCodeRejected
	}
	return nil
}

func (p *HTTPProvider) do(ctx context.Context, method string, payload any) (*http.Response, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+"/otp", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-Key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

type disabledProvider struct{}

func NewDisabledProvider() Provider {
	return disabledProvider{}
}

func (disabledProvider) SendOTP(_ context.Context, _ string) error {
	return fmt.Errorf("%w: provider not configured", ErrUnavailable)
}

func (disabledProvider) VerifyOTP(_ context.Context, _, _ string) error {
	return fmt.Errorf("%w: provider not configured", ErrUnavailable)
}
