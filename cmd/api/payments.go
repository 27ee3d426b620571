package main

import (
	"errors"
	"io"
	"net/http"

	"github.com/devphaseX/voltvista-payments/internal/payment"
	"github.com/devphaseX/voltvista-payments/internal/store"
)

const maxWebhookBytes = int64(65536)

type checkoutForm struct {
	Purpose string `form:"purpose" validate:"omitempty,payment_purpose"`
	// Amount is ignored for deposits.
	Amount string `form:"amount"`
	Email  string `form:"email" validate:"omitempty,email"`
}

func (f checkoutForm) request(provider store.Provider) payment.InitiateRequest {
	purpose := store.Purpose(f.Purpose)
	if purpose == "" {
		purpose = store.DepositPurpose
	}

	return payment.InitiateRequest{
		Provider:      provider,
		Purpose:       purpose,
		Amount:        payment.ParseAmount(f.Amount),
		CustomerEmail: f.Email,
	}
}

// initiationErrorCode maps an initiation failure onto the opaque code shown
// to the payer.
func initiationErrorCode(provider store.Provider, err error) string {
	switch {
	case errors.Is(err, payment.ErrProviderDisabled):
		return string(provider) + "_disabled"
	case errors.Is(err, payment.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, payment.ErrInvalidPurpose):
		return "invalid_purpose"
	case errors.Is(err, payment.ErrGatewayTimeout), errors.Is(err, payment.ErrGatewayUnavailable):
		return "provider_unavailable"
	default:
		return "unexpected_error"
	}
}

func (app *application) createCardCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	var form checkoutForm

	if err := app.readForm(w, r, &form); err != nil {
		app.logger.Warnw("malformed checkout form", "error", err)
		http.Redirect(w, r, "/payments?error=invalid_request", http.StatusSeeOther)
		return
	}

	if errs := validate.Struct(form); errs != nil {
		app.logger.Warnw("invalid checkout form", "errors", errs.FieldErrors())
		http.Redirect(w, r, "/payments?error=invalid_request", http.StatusSeeOther)
		return
	}

	started, err := app.payments.Initiate(r.Context(), form.request(store.CardProvider))
	if err != nil {
		code := initiationErrorCode(store.CardProvider, err)
		if code == "provider_unavailable" || code == "unexpected_error" {
			app.logger.Errorw("card checkout failed", "error", err)
		} else {
			app.logger.Infow("card checkout rejected", "reason", code, "error", err)
		}

		http.Redirect(w, r, "/payments?error="+code, http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, started.RedirectURL, http.StatusSeeOther)
}

func (app *application) cardWebhookHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		app.logger.Warnw("failed to read webhook payload", "error", err)
		app.writeAck(w, http.StatusBadRequest, envelope{"ok": false})
		return
	}

	outcome, err := app.payments.Confirm(r.Context(), payment.Evidence{
		Provider:  store.CardProvider,
		RawBody:   payload,
		Signature: r.Header.Get("Stripe-Signature"),
	})

	switch {
	case err == nil:
		app.writeAck(w, http.StatusOK, envelope{"ok": true, "duplicate": outcome.Duplicate})

	case errors.Is(err, payment.ErrProviderDisabled):
		app.writeAck(w, http.StatusBadRequest, envelope{"ok": false, "reason": "card provider disabled"})

	case errors.Is(err, payment.ErrInvalidSignature):
		app.logger.Warnw("rejected card webhook", "remote_addr", r.RemoteAddr, "error", err)
		app.writeAck(w, http.StatusBadRequest, envelope{"ok": false})

	case errors.Is(err, payment.ErrInvalidAmount):
		// Redelivery would carry the same amount, so the event is acknowledged.
		app.writeAck(w, http.StatusOK, envelope{"ok": false})

	default:
		app.logger.Errorw("failed to confirm card payment", "error", err)
		app.writeAck(w, http.StatusInternalServerError, envelope{"ok": false})
	}
}

func (app *application) createWalletOrderHandler(w http.ResponseWriter, r *http.Request) {
	var form checkoutForm

	if err := app.readForm(w, r, &form); err != nil {
		app.writeAck(w, http.StatusBadRequest, envelope{"ok": false, "reason": "invalid request"})
		return
	}

	if errs := validate.Struct(form); errs != nil {
		app.writeAck(w, http.StatusBadRequest, envelope{"ok": false, "reason": "invalid request", "errors": errs.FieldErrors()})
		return
	}

	req := form.request(store.WalletProvider)
	req.CustomerEmail = ""

	started, err := app.payments.Initiate(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrProviderDisabled):
			app.writeAck(w, http.StatusBadRequest, envelope{"ok": false, "reason": "wallet disabled"})
		case errors.Is(err, payment.ErrInvalidAmount):
			app.writeAck(w, http.StatusBadRequest, envelope{"ok": false, "reason": "invalid amount"})
		case errors.Is(err, payment.ErrInvalidPurpose):
			app.writeAck(w, http.StatusBadRequest, envelope{"ok": false, "reason": "invalid purpose"})
		case errors.Is(err, payment.ErrGatewayTimeout):
			app.logger.Errorw("wallet order timed out", "error", err)
			app.writeAck(w, http.StatusGatewayTimeout, envelope{"ok": false, "reason": "provider unavailable"})
		default:
			app.logger.Errorw("wallet order failed", "error", err)
			app.writeAck(w, http.StatusBadGateway, envelope{"ok": false, "reason": "provider unavailable"})
		}
		return
	}

	app.writeAck(w, http.StatusOK, envelope{
		"ok":          true,
		"approve_url": started.RedirectURL,
		"order_id":    started.OrderID,
	})
}

func (app *application) walletReturnHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	if !app.payments.Enabled(store.WalletProvider) || token == "" {
		http.Redirect(w, r, resultPath("cancel", store.WalletProvider), http.StatusSeeOther)
		return
	}

	outcome, err := app.payments.Confirm(r.Context(), payment.Evidence{
		Provider:   store.WalletProvider,
		OrderToken: token,
	})
	if err != nil {
		app.logger.Errorw("failed to confirm wallet payment", "order_id", token, "error", err)
		http.Redirect(w, r, resultPath("error", store.WalletProvider), http.StatusSeeOther)
		return
	}

	status := "cancel"
	if outcome.Status == payment.OutcomeSuccess {
		status = "success"
	}

	http.Redirect(w, r, resultPath(status, store.WalletProvider), http.StatusSeeOther)
}

// writeAck writes a bare JSON body, as provider callbacks and client-side
// scripts expect, instead of the status envelope.
func (app *application) writeAck(w http.ResponseWriter, status int, body envelope) {
	if err := app.writeJSON(w, status, body, nil); err != nil {
		app.logger.Errorw("failed to write JSON response", "error", err)
	}
}
