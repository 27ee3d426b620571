package payment

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/devphaseX/voltvista-payments/internal/settings"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

const testWebhookSecret = "whsec_test_secret"

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func testSettings(stripeBase, paypalBase string) settings.Settings {
	return settings.Settings{
		AppName:         "Voltvista Electric",
		BaseURL:         "https://pay.example.com",
		ProviderTimeout: 2 * time.Second,
		Stripe: settings.Stripe{
			SecretKey:        "sk_test_123",
			WebhookSecret:    testWebhookSecret,
			Currency:         "usd",
			DepositAmount:    99.00,
			APIBase:          stripeBase,
			WebhookTolerance: 5 * time.Minute,
		},
		PayPal: settings.PayPal{
			ClientID:      "client-id",
			ClientSecret:  "client-secret",
			Environment:   "sandbox",
			APIBase:       paypalBase,
			Currency:      "USD",
			DepositAmount: 75.00,
		},
	}
}

// fakeStripe imitates the Checkout Sessions endpoint.
type fakeStripe struct {
	*httptest.Server

	mu    sync.Mutex
	forms []map[string]string
}

func newFakeStripe(t *testing.T) *fakeStripe {
	t.Helper()

	f := &fakeStripe{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/checkout/sessions" {
			http.Error(w, `{"error":{"message":"not found"}}`, http.StatusNotFound)
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		form := make(map[string]string, len(r.PostForm))
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}

		f.mu.Lock()
		f.forms = append(f.forms, form)
		id := fmt.Sprintf("cs_test_%d", len(f.forms))
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     id,
			"object": "checkout.session",
			"url":    "https://checkout.stripe.com/c/pay/" + id,
		})
	}))
	t.Cleanup(f.Close)

	return f
}

func (f *fakeStripe) lastForm(t *testing.T) map[string]string {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.forms) == 0 {
		t.Fatalf("no checkout session was created")
	}
	return f.forms[len(f.forms)-1]
}

func (f *fakeStripe) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.forms)
}

// fakePayPal imitates the OAuth2 token endpoint and the Orders v2 API.
type fakePayPal struct {
	*httptest.Server

	mu            sync.Mutex
	tokenRequests int
	lastOrder     map[string]any
	// captureStatus and captureBody drive the capture endpoint.
	captureStatus int
	captureBody   string
	captureDelay  time.Duration
	// orderBody is served when an order is read back.
	orderBody string
}

func newFakePayPal(t *testing.T) *fakePayPal {
	t.Helper()

	f := &fakePayPal{captureStatus: http.StatusCreated}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		id, secret, ok := r.BasicAuth()
		if !ok || id != "client-id" || secret != "client-secret" {
			http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
			return
		}
		_ = r.ParseForm()
		if r.PostForm.Get("grant_type") != "client_credentials" {
			http.Error(w, `{"error":"unsupported_grant_type"}`, http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		f.tokenRequests++
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"A21AA-test-token","token_type":"Bearer","expires_in":32400}`))
	})

	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer A21AA-test-token" {
			http.Error(w, `{"name":"AUTHENTICATION_FAILURE"}`, http.StatusUnauthorized)
			return
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		f.lastOrder = body
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"id": "5O190127TN364715T",
			"status": "CREATED",
			"links": [
				{"href": "https://api.sandbox.paypal.com/v2/checkout/orders/5O190127TN364715T", "rel": "self", "method": "GET"},
				{"href": "https://www.sandbox.paypal.com/checkoutnow?token=5O190127TN364715T", "rel": "approve", "method": "GET"}
			]
		}`))
	})

	mux.HandleFunc("GET /v2/checkout/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer A21AA-test-token" {
			http.Error(w, `{"name":"AUTHENTICATION_FAILURE"}`, http.StatusUnauthorized)
			return
		}

		f.mu.Lock()
		body := f.orderBody
		f.mu.Unlock()

		if body == "" {
			http.Error(w, `{"name":"RESOURCE_NOT_FOUND","details":[{"issue":"INVALID_RESOURCE_ID"}]}`, http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})

	mux.HandleFunc("/v2/checkout/orders/{id}/capture", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer A21AA-test-token" {
			http.Error(w, `{"name":"AUTHENTICATION_FAILURE"}`, http.StatusUnauthorized)
			return
		}

		f.mu.Lock()
		status, body, delay := f.captureStatus, f.captureBody, f.captureDelay
		f.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)

	return f
}

func (f *fakePayPal) respondCapture(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.captureStatus = status
	f.captureBody = body
}

func (f *fakePayPal) respondOrder(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orderBody = body
}

func (f *fakePayPal) order() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOrder
}

func completedCaptureBody(captureID, value, currency, customID string) string {
	return fmt.Sprintf(`{
		"id": "5O190127TN364715T",
		"status": "COMPLETED",
		"purchase_units": [{
			"reference_id": "default",
			"custom_id": %q,
			"payments": {
				"captures": [{
					"id": %q,
					"status": "COMPLETED",
					"custom_id": %q,
					"amount": {"currency_code": %q, "value": %q}
				}]
			}
		}]
	}`, customID, captureID, customID, currency, value)
}

const alreadyCapturedBody = `{"name":"UNPROCESSABLE_ENTITY","message":"The requested action could not be performed.","details":[{"issue":"ORDER_ALREADY_CAPTURED","description":"Order already captured."}]}`

func checkoutCompletedPayload(eventID, sessionID, paymentIntent string, amountTotal int64, currency, purpose, email string) []byte {
	object := map[string]any{
		"id":           sessionID,
		"object":       "checkout.session",
		"amount_total": amountTotal,
		"currency":     currency,
		"metadata":     map[string]string{"purpose": purpose},
	}
	if paymentIntent != "" {
		object["payment_intent"] = paymentIntent
	}
	if email != "" {
		object["customer_details"] = map[string]any{"email": email}
	}

	payload, _ := json.Marshal(map[string]any{
		"id":     eventID,
		"object": "event",
		"type":   "checkout.session.completed",
		"data":   map[string]any{"object": object},
	})
	return payload
}

func eventPayload(eventID, eventType string) []byte {
	payload, _ := json.Marshal(map[string]any{
		"id":     eventID,
		"object": "event",
		"type":   eventType,
		"data":   map[string]any{"object": map[string]any{"id": "pi_other", "object": "payment_intent"}},
	})
	return payload
}

func sign(payload []byte, secret string, ts time.Time) string {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: ts,
	})
	return signed.Header
}
