package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestValidateConfig(t *testing.T) {
	cfg := &Config{
		SecretKey:   "sk_test_abc",
		CallbackURL: "https://example.com/api/v1/public/checkout/gateway/callback",
	}
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("ValidateConfig should pass, got: %v", err)
	}

	if err := ValidateConfig(nil); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("nil config want ErrConfigInvalid, got: %v", err)
	}
	if err := ValidateConfig(&Config{CallbackURL: "https://example.com/cb"}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("missing secret want ErrConfigInvalid, got: %v", err)
	}
	if err := ValidateConfig(&Config{SecretKey: "sk_test_abc"}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("missing callback want ErrConfigInvalid, got: %v", err)
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(&Config{
		SecretKey:   "sk_test_abc",
		BaseURL:     server.URL,
		CallbackURL: "https://example.com/cb",
	})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	return client, server
}

func TestClientInitialize(t *testing.T) {
	var gotAuth string
	var gotBody initializeRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/transaction/initialize" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request failed: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{
			"status": true,
			"message": "Authorization URL created",
			"data": {
				"authorization_url": "https://checkout.paystack.com/abc123",
				"access_code": "abc123",
				"reference": "ref-1"
			}
		}`)); err != nil {
			t.Fatalf("write response failed: %v", err)
		}
	})

	result, err := client.Initialize(context.Background(), InitializeInput{
		Reference:   "ref-1",
		AmountMinor: 13000,
		Email:       "guest@example.com",
		Metadata: Metadata{
			Cart: []CartLine{{ProductID: 1, Title: "Smart Watch", Quantity: 2, UnitPrice: "65"}},
		},
	})
	if err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	if result.AuthorizationURL != "https://checkout.paystack.com/abc123" {
		t.Fatalf("unexpected authorization url: %s", result.AuthorizationURL)
	}
	if gotAuth != "Bearer sk_test_abc" {
		t.Fatalf("authorization header want bearer secret, got %s", gotAuth)
	}
	if gotBody.Amount != 13000 || gotBody.Reference != "ref-1" {
		t.Fatalf("unexpected request payload: %+v", gotBody)
	}
	if gotBody.CallbackURL != "https://example.com/cb" {
		t.Fatalf("callback url should fall back to config, got %s", gotBody.CallbackURL)
	}
}

func TestClientInitializeValidation(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("no request expected")
	})

	if _, err := client.Initialize(context.Background(), InitializeInput{AmountMinor: 100}); !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("missing reference want ErrRequestFailed, got: %v", err)
	}
	if _, err := client.Initialize(context.Background(), InitializeInput{Reference: "r"}); !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("non-positive amount want ErrRequestFailed, got: %v", err)
	}
}

func TestClientVerify(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/transaction/verify/ref-2" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{
			"status": true,
			"message": "Verification successful",
			"data": {
				"status": "success",
				"amount": 13000,
				"currency": "GHS",
				"customer": {"email": "guest@example.com"},
				"metadata": {"name": "Guest", "cart": [{"product_id": 1, "title": "Smart Watch", "quantity": 2, "unit_price": "65"}]}
			}
		}`)); err != nil {
			t.Fatalf("write response failed: %v", err)
		}
	})

	result, err := client.Verify(context.Background(), "ref-2")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("verify should report success")
	}
	if result.AmountMinor != 13000 || result.Currency != "GHS" {
		t.Fatalf("unexpected verify result: %+v", result)
	}
	if result.CustomerEmail != "guest@example.com" {
		t.Fatalf("unexpected customer email: %s", result.CustomerEmail)
	}
	if len(result.Metadata.Cart) != 1 || result.Metadata.Cart[0].Quantity != 2 {
		t.Fatalf("metadata cart not parsed: %+v", result.Metadata)
	}
}

func TestClientVerifyNonSuccessStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{
			"status": true,
			"data": {"status": "abandoned", "amount": 13000, "metadata": ""}
		}`)); err != nil {
			t.Fatalf("write response failed: %v", err)
		}
	})

	result, err := client.Verify(context.Background(), "ref-3")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if result.Success {
		t.Fatalf("abandoned transaction should not report success")
	}
}

func TestClientVerifyHTTPError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	// 非 2xx 是网关的明确拒绝，不能与传输失败混为一谈
	_, err := client.Verify(context.Background(), "ref-4")
	if !errors.Is(err, ErrGatewayRejected) {
		t.Fatalf("http error want ErrGatewayRejected, got: %v", err)
	}
	if errors.Is(err, ErrRequestFailed) {
		t.Fatalf("http error must not read as a transport failure: %v", err)
	}
}

func TestClientVerifyTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client, err := NewClient(&Config{
		SecretKey:   "sk_test_abc",
		BaseURL:     server.URL,
		CallbackURL: "https://store.example.com/callback",
	})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}

	if _, err := client.Verify(context.Background(), "ref-5"); !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("transport error want ErrRequestFailed, got: %v", err)
	}
}
