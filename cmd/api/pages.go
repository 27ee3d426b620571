package main

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/devphaseX/voltvista-payments/internal/payment"
	"github.com/devphaseX/voltvista-payments/internal/store"
)

//go:embed "templates"
var templateFS embed.FS

func mustParsePages() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))
}

var resultMessages = map[string]string{
	"success": "Thank you, your payment was received.",
	"cancel":  "The payment was cancelled. No charge was made.",
	"error":   "We could not confirm your payment. If you were charged, please contact us.",
}

var checkoutErrorMessages = map[string]string{
	"card_disabled":        "Card payments are currently unavailable.",
	"wallet_disabled":      "Wallet payments are currently unavailable.",
	"invalid_amount":       "Please enter an amount greater than zero.",
	"invalid_purpose":      "Please choose a deposit or an invoice payment.",
	"invalid_request":      "Please check the form and try again.",
	"provider_unavailable": "The payment provider did not respond. Please try again.",
}

type providerOption struct {
	Enabled       bool
	DepositAmount string
}

// paymentOptionsHandler renders the checkout form with the providers that are
// currently configured.
func (app *application) paymentOptionsHandler(w http.ResponseWriter, r *http.Request) {
	errorMessage := ""
	if code := r.URL.Query().Get("error"); code != "" {
		errorMessage = checkoutErrorMessages[code]
		if errorMessage == "" {
			errorMessage = "Something went wrong. Please try again."
		}
	}

	app.render(w, r, http.StatusOK, "payments", map[string]any{
		"AppName": app.cfg.AppName,
		"Error":   errorMessage,
		"Card": providerOption{
			Enabled:       app.payments.Enabled(store.CardProvider),
			DepositAmount: payment.FormatAmount(app.payments.DepositAmount(store.CardProvider)) + " " + app.cfg.Stripe.Currency,
		},
		"Wallet": providerOption{
			Enabled:       app.payments.Enabled(store.WalletProvider),
			DepositAmount: payment.FormatAmount(app.payments.DepositAmount(store.WalletProvider)) + " " + app.cfg.PayPal.Currency,
		},
	})
}

// paymentResultHandler has no side effects. Only known status and provider
// values are echoed back.
func (app *application) paymentResultHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	status := query.Get("status")
	message, ok := resultMessages[status]
	if !ok {
		status = "unknown"
		message = "We could not determine the state of your payment."
	}

	provider := ""
	switch p := store.Provider(query.Get("provider")); p {
	case store.CardProvider, store.WalletProvider:
		provider = string(p)
	}

	app.render(w, r, http.StatusOK, "result", map[string]any{
		"AppName":  app.cfg.AppName,
		"Status":   status,
		"Provider": provider,
		"Message":  message,
	})
}

func (app *application) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	buf := new(bytes.Buffer)

	if err := app.pages.ExecuteTemplate(buf, page, data); err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
