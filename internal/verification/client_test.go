package verification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestShahkarMatch_Matched(t *testing.T) {
	var gotAuth string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": 1,
			"response_body": map[string]any{
				"data": map[string]any{"matched": true},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL, "test-token")
	res, err := client.ShahkarMatch(context.Background(), "+989123456789", "0012345678")
	if err != nil {
		t.Fatalf("shahkar match: %v", err)
	}
	if !res.Matched {
		t.Fatalf("expected matched result")
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("expected bearer token, got %q", gotAuth)
	}
	if gotBody["mobile"] != "+989123456789" || gotBody["national_code"] != "0012345678" {
		t.Fatalf("unexpected request body: %v", gotBody)
	}
}

func TestShahkarMatch_NotMatched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": 1,
			"response_body": map[string]any{
				"data": map[string]any{"matched": false},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL, "test-token")
	res, err := client.ShahkarMatch(context.Background(), "+989123456789", "0012345678")
	if err != nil {
		t.Fatalf("shahkar match: %v", err)
	}
	if res.Matched {
		t.Fatalf("expected not matched")
	}
}

func TestShahkarMatch_FailedResultIsNotMatched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": 0,
			"response_body": map[string]any{
				"data": map[string]any{"matched": true},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL, "test-token")
	res, err := client.ShahkarMatch(context.Background(), "+989123456789", "0012345678")
	if err != nil {
		t.Fatalf("shahkar match: %v", err)
	}
	if res.Matched {
		t.Fatalf("expected not matched when top-level result is not 1")
	}
}

func TestShahkarMatch_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"upstream down"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL, "test-token")
	_, err := client.ShahkarMatch(context.Background(), "+989123456789", "0012345678")

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", upstream.StatusCode)
	}
	if upstream.Body != `{"error":"upstream down"}` {
		t.Fatalf("expected body preserved, got %q", upstream.Body)
	}
}

func TestShahkarMatch_EmptyInput(t *testing.T) {
	client := NewClient("http://unused", "http://unused", "test-token")

	if _, err := client.ShahkarMatch(context.Background(), "", "0012345678"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := client.ShahkarMatch(context.Background(), "+989123456789", "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPostalLookup_Address(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["postal_code"] != "1234567890" {
			t.Errorf("unexpected request body: %v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": 1,
			"response_body": map[string]any{
				"data": map[string]any{
					"address": map[string]any{
						"province": "Tehran",
						"town":     "Tehran",
						"street":   "Valiasr",
						"number":   12,
					},
				},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL, "test-token")
	res, err := client.PostalLookup(context.Background(), "1234567890")
	if err != nil {
		t.Fatalf("postal lookup: %v", err)
	}
	if res.Address == nil {
		t.Fatalf("expected parsed address")
	}
	if res.Address.Province != "Tehran" || res.Address.Street != "Valiasr" || res.Address.Number != 12 {
		t.Fatalf("unexpected address: %+v", res.Address)
	}
}

func TestPostalLookup_NoAddressInResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"result": 1})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL, "test-token")
	res, err := client.PostalLookup(context.Background(), "1234567890")
	if err != nil {
		t.Fatalf("postal lookup: %v", err)
	}
	if res.Address != nil {
		t.Fatalf("expected nil address, got %+v", res.Address)
	}
	if res.Raw == nil {
		t.Fatalf("expected raw payload preserved")
	}
}
