package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/devphaseX/voltvista-payments/internal/settings"
	"github.com/devphaseX/voltvista-payments/internal/store"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

const cardCheckoutCompleted = string(stripe.EventTypeCheckoutSessionCompleted)

type StripePayment struct {
	appName  string
	sessions session.Client
	cfg      settings.Stripe
}

// NewStripePayment builds a card gateway with its own backend so that the
// timeout and base URL never leak into stripe-go's package globals.
func NewStripePayment(appName string, cfg settings.Stripe, httpClient *http.Client, logger *zap.SugaredLogger) *StripePayment {
	backendCfg := &stripe.BackendConfig{
		HTTPClient:        httpClient,
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     logger,
	}

	if cfg.APIBase != "" {
		backendCfg.URL = stripe.String(cfg.APIBase)
	}

	return &StripePayment{
		appName: appName,
		cfg:     cfg,
		sessions: session.Client{
			B:   stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
			Key: cfg.SecretKey,
		},
	}
}

func (s *StripePayment) CreateSession(ctx context.Context, req SessionRequest) (*SessionHandle, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(lineItemName(s.appName, req.Purpose)),
					},
					UnitAmount: stripe.Int64(ToMinorUnits(req.Amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata("purpose", string(req.Purpose))

	if email := strings.TrimSpace(req.CustomerEmail); email != "" {
		params.CustomerEmail = stripe.String(email)
	}

	sess, err := s.sessions.New(params)
	if err != nil {
		return nil, gatewayError("failed to create Stripe Checkout Session", err)
	}

	return &SessionHandle{URL: sess.URL, SessionID: sess.ID}, nil
}

// VerifyEvent authenticates a webhook delivery. Nothing from rawBody is
// returned unless the signature and timestamp check out.
func (s *StripePayment) VerifyEvent(rawBody []byte, signatureHeader string) (*CardEvent, error) {
	event, err := webhook.ConstructEventWithOptions(rawBody, signatureHeader, s.cfg.WebhookSecret, webhook.ConstructEventOptions{
		Tolerance:                s.cfg.WebhookTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &CardEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}

	if !out.Completed() {
		return out, nil
	}

	if event.Data == nil {
		return nil, fmt.Errorf("%w: event carries no data", ErrInvalidSignature)
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("%w: failed to parse checkout session: %v", ErrInvalidSignature, err)
	}

	out.SessionID = sess.ID
	out.AmountTotal = sess.AmountTotal
	out.Currency = string(sess.Currency)
	out.Metadata = sess.Metadata

	if sess.PaymentIntent != nil {
		out.PaymentIntentID = sess.PaymentIntent.ID
	}

	if sess.CustomerDetails != nil {
		out.Email = sess.CustomerDetails.Email
	}

	return out, nil
}

func lineItemName(appName string, purpose store.Purpose) string {
	description := "Invoice Payment"
	if purpose == store.DepositPurpose {
		description = "Deposit"
	}

	return fmt.Sprintf("%s - %s", appName, description)
}

// gatewayError classifies a failed outbound call as a timeout or a generic
// provider failure, keeping the cause in the chain.
func gatewayError(msg string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%s: %w: %w", msg, ErrGatewayTimeout, err)
	}

	return fmt.Errorf("%s: %w: %w", msg, ErrGatewayUnavailable, err)
}
