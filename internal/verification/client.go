package verification

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

// ErrInvalidInput indica parametros vacios que el upstream no puede procesar.
var ErrInvalidInput = errors.New("verification input invalid")

// UpstreamError preserva el estado y cuerpo de una respuesta no-2xx del upstream.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("verification upstream error: status=%d body=%s", e.StatusCode, e.Body)
}

// Matcher es la operacion de cruce shahkar telefono/codigo nacional.
type Matcher interface {
	ShahkarMatch(ctx context.Context, mobile, nationalCode string) (MatchResult, error)
}

type MatchResult struct {
	Matched bool
	Raw     map[string]any
}

type PostalAddress struct {
	BuildingName string `json:"building_name,omitempty"`
	Description  string `json:"description,omitempty"`
	District     string `json:"district,omitempty"`
	Floor        string `json:"floor,omitempty"`
	Number       int    `json:"number,omitempty"`
	Province     string `json:"province,omitempty"`
	SideFloor    string `json:"side_floor,omitempty"`
	Street       string `json:"street,omitempty"`
	Street2      string `json:"street2,omitempty"`
	Town         string `json:"town,omitempty"`
}

type PostalResult struct {
	Address *PostalAddress
	Raw     map[string]any
}

// Client llama a los servicios de consulta de Zohal (shahkar y codigo postal).
type Client struct {
	shahkarURL string
	postalURL  string
	token      string
	client     *http.Client
}

func NewClient(shahkarURL, postalURL, token string) *Client {
	return &Client{
		shahkarURL: strings.TrimRight(shahkarURL, "/"),
		postalURL:  strings.TrimRight(postalURL, "/"),
		token:      token,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

// ShahkarMatch consulta si el telefono y el codigo nacional pertenecen a la
// misma persona. Matched es true solo cuando el resultado superior indica
// exito y el payload anidado lo marca explicitamente.
func (c *Client) ShahkarMatch(ctx context.Context, mobile, nationalCode string) (MatchResult, error) {
	mobile = strings.TrimSpace(mobile)
	nationalCode = strings.TrimSpace(nationalCode)
	if mobile == "" || nationalCode == "" {
		return MatchResult{}, ErrInvalidInput
	}

	raw, err := c.post(ctx, c.shahkarURL, map[string]string{
		"mobile":        mobile,
		"national_code": nationalCode,
	})
	if err != nil {
		return MatchResult{}, err
	}

	return MatchResult{Matched: shahkarMatched(raw), Raw: raw}, nil
}

// PostalLookup resuelve un codigo postal a su direccion registrada.
func (c *Client) PostalLookup(ctx context.Context, postalCode string) (PostalResult, error) {
	postalCode = strings.TrimSpace(postalCode)
	if postalCode == "" {
		return PostalResult{}, ErrInvalidInput
	}

	raw, err := c.post(ctx, c.postalURL, map[string]string{
		"postal_code": postalCode,
	})
	if err != nil {
		return PostalResult{}, err
	}

	return PostalResult{Address: extractAddress(raw), Raw: raw}, nil
}

func (c *Client) post(ctx context.Context, url string, payload any) (map[string]any, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var raw map[string]any
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return raw, nil
}

func shahkarMatched(raw map[string]any) bool {
	if !resultOK(raw) {
		return false
	}
	data := nestedMap(raw, "response_body", "data")
	if data == nil {
		return false
	}
	matched, ok := data["matched"].(bool)
	return ok && matched
}

func extractAddress(raw map[string]any) *PostalAddress {
	if !resultOK(raw) {
		return nil
	}
	data := nestedMap(raw, "response_body", "data")
	if data == nil {
		return nil
	}
	addrRaw, ok := data["address"].(map[string]any)
	if !ok {
		return nil
	}

	addrBytes, err := json.Marshal(addrRaw)
	if err != nil {
		return nil
	}
	var addr PostalAddress
	if err := json.Unmarshal(addrBytes, &addr); err != nil {
		return nil
	}
	return &addr
}

func resultOK(raw map[string]any) bool {
	// El upstream reporta exito como result == 1.
	n, ok := raw["result"].(float64)
	return ok && n == 1
}

func nestedMap(raw map[string]any, keys ...string) map[string]any {
	current := raw
	for _, key := range keys {
		next, ok := current[key].(map[string]any)
		if !ok {
			return nil
		}
		current = next
	}
	return current
}
