package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/devphaseX/voltvista-payments/internal/payment"
	"github.com/devphaseX/voltvista-payments/internal/ratelimiter"
	"github.com/devphaseX/voltvista-payments/internal/settings"
	"github.com/devphaseX/voltvista-payments/internal/store"
	"github.com/go-playground/form/v4"
	"github.com/ulule/limiter/v3"
	"go.uber.org/zap"
)

const testWebhookSecret = "whsec_api_test"

func testSettings() settings.Settings {
	return settings.Settings{
		Env:             "test",
		AppName:         "Voltvista Electric",
		BaseURL:         "https://pay.example.com",
		ProviderTimeout: time.Second,
		Stripe: settings.Stripe{
			SecretKey:        "sk_test_123",
			WebhookSecret:    testWebhookSecret,
			Currency:         "usd",
			DepositAmount:    99,
			WebhookTolerance: 5 * time.Minute,
		},
		PayPal: settings.PayPal{
			ClientID:      "client-id",
			ClientSecret:  "client-secret",
			Currency:      "USD",
			DepositAmount: 99,
		},
	}
}

type stubCard struct {
	mu       sync.Mutex
	sessions []payment.SessionRequest
	err      error
}

func (s *stubCard) CreateSession(_ context.Context, req payment.SessionRequest) (*payment.SessionHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	s.sessions = append(s.sessions, req)
	return &payment.SessionHandle{URL: "https://checkout.stripe.com/c/pay/cs_test_1", SessionID: "cs_test_1"}, nil
}

func (s *stubCard) VerifyEvent(_ []byte, _ string) (*payment.CardEvent, error) {
	return nil, payment.ErrInvalidSignature
}

type stubWallet struct {
	mu      sync.Mutex
	orders  []payment.OrderRequest
	capture *payment.WalletCapture
	err     error
}

func (s *stubWallet) CreateOrder(_ context.Context, req payment.OrderRequest) (*payment.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	s.orders = append(s.orders, req)
	return &payment.Order{ID: "ORDER-1", ApproveLink: "https://www.sandbox.paypal.com/checkoutnow?token=ORDER-1"}, nil
}

func (s *stubWallet) CaptureOrder(_ context.Context, orderID string) (*payment.WalletCapture, error) {
	if s.err != nil {
		return nil, s.err
	}
	c := *s.capture
	c.OrderID = orderID
	return &c, nil
}

func newTestApplication(t *testing.T, cfg settings.Settings, card payment.CardGateway, wallet payment.WalletGateway) *application {
	t.Helper()

	limiterStore, err := ratelimiter.NewStore(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger := zap.NewNop().Sugar()
	storage := store.NewMemoryStorage()

	return &application{
		cfg:          cfg,
		logger:       logger,
		store:        storage,
		payments:     payment.NewOrchestrator(cfg, card, wallet, storage.Payments, logger),
		formDecoder:  form.NewDecoder(),
		pages:        mustParsePages(),
		limiterStore: limiterStore,
		rate:         limiter.Rate{Period: time.Minute, Limit: 100},
	}
}

func postForm(t *testing.T, h http.Handler, path string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v: %s", err, rec.Body.String())
	}
	return body
}

func TestHealthcheck(t *testing.T) {
	app := newTestApplication(t, testSettings(), &stubCard{}, nil)

	rec := get(t, app.routes(), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	data := decodeBody(t, rec)["data"].(map[string]any)
	providers := data["providers"].(map[string]any)
	if providers["card"] != true || providers["wallet"] != false {
		t.Fatalf("unexpected providers %v", providers)
	}
}

func TestNotFound(t *testing.T) {
	app := newTestApplication(t, testSettings(), &stubCard{}, &stubWallet{})

	rec := get(t, app.routes(), "/v1/products")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	errBody := decodeBody(t, rec)["error"].(map[string]any)
	if errBody["code"] != string(ErrorCodeNotFound) {
		t.Fatalf("unexpected error body %v", errBody)
	}
}
