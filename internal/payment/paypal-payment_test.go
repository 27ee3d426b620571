package payment

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/devphaseX/voltvista-payments/internal/settings"
	"github.com/devphaseX/voltvista-payments/internal/store"
	"github.com/plutov/paypal/v4"
)

func newTestPayPal(t *testing.T, timeout time.Duration) (*PayPalPayment, *fakePayPal) {
	t.Helper()

	srv := newFakePayPal(t)
	cfg := testSettings("", srv.URL)

	gw, err := NewPayPalPayment(cfg.AppName, cfg.PayPal, &http.Client{Timeout: timeout}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return gw, srv
}

func TestNewPayPalPayment_RequiresCredentials(t *testing.T) {
	cfg := testSettings("", "")
	cfg.PayPal.ClientSecret = ""

	if _, err := NewPayPalPayment(cfg.AppName, cfg.PayPal, http.DefaultClient, testLogger()); err == nil {
		t.Fatalf("expected an error without a client secret")
	}
}

func TestPayPalBaseURL(t *testing.T) {
	if got := paypalBaseURL(settings.PayPal{Environment: "sandbox"}); got != paypal.APIBaseSandBox {
		t.Fatalf("expected sandbox base, got %q", got)
	}
	if got := paypalBaseURL(settings.PayPal{Environment: "live"}); got != paypal.APIBaseLive {
		t.Fatalf("expected live base, got %q", got)
	}
	if got := paypalBaseURL(settings.PayPal{APIBase: "http://localhost:9000/"}); got != "http://localhost:9000" {
		t.Fatalf("expected override, got %q", got)
	}
}

func TestPayPalPayment_CreateOrder(t *testing.T) {
	gw, srv := newTestPayPal(t, time.Second)

	order, err := gw.CreateOrder(context.Background(), OrderRequest{
		Purpose:   store.InvoicePurpose,
		Amount:    50,
		Currency:  "USD",
		ReturnURL: "https://pay.example.com/payments/wallet/return",
		CancelURL: "https://pay.example.com/payments/result?status=cancel&provider=wallet",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if order.ID != "5O190127TN364715T" {
		t.Fatalf("unexpected order id %q", order.ID)
	}
	if order.ApproveLink != "https://www.sandbox.paypal.com/checkoutnow?token=5O190127TN364715T" {
		t.Fatalf("unexpected approve link %q", order.ApproveLink)
	}

	body := srv.order()
	if body["intent"] != "CAPTURE" {
		t.Fatalf("expected CAPTURE intent, got %v", body["intent"])
	}

	units, _ := body["purchase_units"].([]any)
	if len(units) != 1 {
		t.Fatalf("expected one purchase unit, got %v", body["purchase_units"])
	}
	unit := units[0].(map[string]any)
	if unit["custom_id"] != "invoice" {
		t.Fatalf("expected custom_id invoice, got %v", unit["custom_id"])
	}
	amount := unit["amount"].(map[string]any)
	if amount["value"] != "50.00" || amount["currency_code"] != "USD" {
		t.Fatalf("unexpected amount %v", amount)
	}

	appCtx := body["application_context"].(map[string]any)
	if appCtx["return_url"] != "https://pay.example.com/payments/wallet/return" {
		t.Fatalf("unexpected return_url %v", appCtx["return_url"])
	}
}

func TestPayPalPayment_TokenIsReused(t *testing.T) {
	gw, srv := newTestPayPal(t, time.Second)
	srv.respondCapture(http.StatusCreated, completedCaptureBody("CAP-1", "50.00", "USD", "invoice"))

	for i := 0; i < 3; i++ {
		if _, err := gw.CaptureOrder(context.Background(), "5O190127TN364715T"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.tokenRequests != 1 {
		t.Fatalf("expected a single token exchange while the token is valid, got %d", srv.tokenRequests)
	}
}

func TestPayPalPayment_CaptureOrder(t *testing.T) {
	t.Run("completed", func(t *testing.T) {
		gw, srv := newTestPayPal(t, time.Second)
		srv.respondCapture(http.StatusCreated, completedCaptureBody("CAP-1", "50.00", "USD", "deposit"))

		capture, err := gw.CaptureOrder(context.Background(), "5O190127TN364715T")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := WalletCapture{
			OrderID:   "5O190127TN364715T",
			Status:    "COMPLETED",
			CaptureID: "CAP-1",
			Amount:    "50.00",
			Currency:  "USD",
			CustomID:  "deposit",
		}
		if *capture != want {
			t.Fatalf("got %+v, want %+v", *capture, want)
		}
	})

	t.Run("missing nested fields default", func(t *testing.T) {
		gw, srv := newTestPayPal(t, time.Second)
		srv.respondCapture(http.StatusCreated, `{"id":"ORDER-2","status":"COMPLETED","purchase_units":[{}]}`)

		capture, err := gw.CaptureOrder(context.Background(), "ORDER-2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if capture.CaptureID != "" || capture.Amount != "" || capture.Currency != "" || !capture.Completed() {
			t.Fatalf("unexpected capture %+v", capture)
		}
	})

	t.Run("no purchase units", func(t *testing.T) {
		gw, srv := newTestPayPal(t, time.Second)
		srv.respondCapture(http.StatusCreated, `{"id":"ORDER-3","status":"COMPLETED"}`)

		capture, err := gw.CaptureOrder(context.Background(), "ORDER-3")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if capture.OrderID != "ORDER-3" || capture.CaptureID != "" {
			t.Fatalf("unexpected capture %+v", capture)
		}
	})

	t.Run("declined", func(t *testing.T) {
		gw, srv := newTestPayPal(t, time.Second)
		srv.respondCapture(http.StatusOK, `{"id":"ORDER-4","status":"DECLINED"}`)

		capture, err := gw.CaptureOrder(context.Background(), "ORDER-4")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if capture.Completed() {
			t.Fatalf("declined capture must not be completed")
		}
	})

	t.Run("http failure", func(t *testing.T) {
		gw, srv := newTestPayPal(t, time.Second)
		srv.respondCapture(http.StatusUnprocessableEntity, `{"name":"UNPROCESSABLE_ENTITY","details":[{"issue":"ORDER_NOT_APPROVED"}]}`)

		_, err := gw.CaptureOrder(context.Background(), "ORDER-5")
		if !errors.Is(err, ErrGatewayUnavailable) {
			t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
		}
	})

	t.Run("already captured reads the order back", func(t *testing.T) {
		gw, srv := newTestPayPal(t, time.Second)
		srv.respondCapture(http.StatusUnprocessableEntity, alreadyCapturedBody)
		srv.respondOrder(completedCaptureBody("CAP-7", "50.00", "USD", "invoice"))

		capture, err := gw.CaptureOrder(context.Background(), "5O190127TN364715T")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := WalletCapture{
			OrderID:   "5O190127TN364715T",
			Status:    "COMPLETED",
			CaptureID: "CAP-7",
			Amount:    "50.00",
			Currency:  "USD",
			CustomID:  "invoice",
		}
		if *capture != want {
			t.Fatalf("got %+v, want %+v", *capture, want)
		}
	})

	t.Run("already captured but order unreadable", func(t *testing.T) {
		gw, srv := newTestPayPal(t, time.Second)
		srv.respondCapture(http.StatusUnprocessableEntity, alreadyCapturedBody)

		_, err := gw.CaptureOrder(context.Background(), "ORDER-8")
		if !errors.Is(err, ErrGatewayUnavailable) {
			t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		gw, srv := newTestPayPal(t, 100*time.Millisecond)
		srv.respondCapture(http.StatusCreated, completedCaptureBody("CAP-6", "1.00", "USD", "invoice"))
		srv.mu.Lock()
		srv.captureDelay = 500 * time.Millisecond
		srv.mu.Unlock()

		_, err := gw.CaptureOrder(context.Background(), "ORDER-6")
		if !errors.Is(err, ErrGatewayTimeout) {
			t.Fatalf("expected ErrGatewayTimeout, got %v", err)
		}
	})
}

func TestPayPalPayment_BadCredentials(t *testing.T) {
	// The token endpoint rejects the secret, so the order call never runs.
	srv := newFakePayPal(t)
	cfg := testSettings("", srv.URL)
	cfg.PayPal.ClientSecret = "wrong"

	gw, err := NewPayPalPayment(cfg.AppName, cfg.PayPal, &http.Client{Timeout: time.Second}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = gw.CreateOrder(context.Background(), OrderRequest{Purpose: store.DepositPurpose, Amount: 75, Currency: "USD"})
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
}
