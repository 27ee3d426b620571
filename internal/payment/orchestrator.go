package payment

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/devphaseX/voltvista-payments/internal/settings"
	"github.com/devphaseX/voltvista-payments/internal/store"
	"go.uber.org/zap"
)

type OutcomeStatus string

var (
	OutcomeSuccess   OutcomeStatus = "success"
	OutcomeCancelled OutcomeStatus = "cancelled"
	// OutcomeIgnored acknowledges a verified event that records nothing.
	OutcomeIgnored OutcomeStatus = "ignored"
)

type InitiateRequest struct {
	Provider      store.Provider
	Purpose       store.Purpose
	Amount        float64
	CustomerEmail string
}

type Initiation struct {
	Provider store.Provider
	// RedirectURL is the hosted checkout page (card) or approval link (wallet).
	RedirectURL string
	SessionID   string
	OrderID     string
	Amount      float64
	Currency    string
}

// Evidence is what a provider hands back. Card callbacks fill RawBody and
// Signature, wallet returns fill OrderToken.
type Evidence struct {
	Provider   store.Provider
	RawBody    []byte
	Signature  string
	OrderToken string
}

type Outcome struct {
	Status            OutcomeStatus
	ProviderPaymentID string
	Record            *store.PaymentRecord
	// Duplicate is set when the transaction had already been recorded.
	Duplicate bool
}

type Orchestrator struct {
	cfg      settings.Settings
	card     CardGateway
	wallet   WalletGateway
	payments store.PaymentRecordStore
	notifier Notifier
	logger   *zap.SugaredLogger
}

type Option func(*Orchestrator)

func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) {
		o.notifier = n
	}
}

func NewOrchestrator(cfg settings.Settings, card CardGateway, wallet WalletGateway, payments store.PaymentRecordStore, logger *zap.SugaredLogger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		card:     card,
		wallet:   wallet,
		payments: payments,
		logger:   logger,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Enabled reports whether provider is configured and has a gateway.
func (o *Orchestrator) Enabled(provider store.Provider) bool {
	switch provider {
	case store.CardProvider:
		return o.card != nil && o.cfg.Stripe.Enabled()
	case store.WalletProvider:
		return o.wallet != nil && o.cfg.PayPal.Enabled()
	default:
		return false
	}
}

func (o *Orchestrator) checkProvider(provider store.Provider) error {
	if provider != store.CardProvider && provider != store.WalletProvider {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}

	if !o.Enabled(provider) {
		return fmt.Errorf("%w: %s", ErrProviderDisabled, provider)
	}

	return nil
}

// DepositAmount is the fixed deposit quoted for provider.
func (o *Orchestrator) DepositAmount(provider store.Provider) float64 {
	if provider == store.WalletProvider {
		return o.cfg.PayPal.DepositAmount
	}
	return o.cfg.Stripe.DepositAmount
}

// Initiate creates a hosted checkout or order. Nothing is persisted.
func (o *Orchestrator) Initiate(ctx context.Context, req InitiateRequest) (*Initiation, error) {
	if err := o.checkProvider(req.Provider); err != nil {
		return nil, err
	}

	amount, err := o.quote(req.Provider, req.Purpose, req.Amount)
	if err != nil {
		return nil, err
	}

	switch req.Provider {
	case store.CardProvider:
		currency := o.cfg.Stripe.Currency
		handle, err := o.card.CreateSession(ctx, SessionRequest{
			Purpose:       req.Purpose,
			Amount:        amount,
			Currency:      currency,
			CustomerEmail: req.CustomerEmail,
			SuccessURL:    o.resultURL("success", store.CardProvider),
			CancelURL:     o.resultURL("cancel", store.CardProvider),
		})
		if err != nil {
			return nil, err
		}

		o.logger.Infow("card checkout session created", "session_id", handle.SessionID, "purpose", req.Purpose, "amount", amount)

		return &Initiation{
			Provider:    store.CardProvider,
			RedirectURL: handle.URL,
			SessionID:   handle.SessionID,
			Amount:      amount,
			Currency:    currency,
		}, nil

	default:
		currency := o.cfg.PayPal.Currency
		order, err := o.wallet.CreateOrder(ctx, OrderRequest{
			Purpose:   req.Purpose,
			Amount:    amount,
			Currency:  currency,
			ReturnURL: o.cfg.BaseURL + "/payments/wallet/return",
			CancelURL: o.resultURL("cancel", store.WalletProvider),
		})
		if err != nil {
			return nil, err
		}

		o.logger.Infow("wallet order created", "order_id", order.ID, "purpose", req.Purpose, "amount", amount)

		return &Initiation{
			Provider:    store.WalletProvider,
			RedirectURL: order.ApproveLink,
			OrderID:     order.ID,
			Amount:      amount,
			Currency:    currency,
		}, nil
	}
}

// quote resolves the amount to charge. Deposits ignore the client amount.
func (o *Orchestrator) quote(provider store.Provider, purpose store.Purpose, requested float64) (float64, error) {
	switch purpose {
	case store.DepositPurpose:
		return o.DepositAmount(provider), nil
	case store.InvoicePurpose:
		// Anything that rounds to zero minor units would be charged as nothing.
		if math.IsNaN(requested) || math.IsInf(requested, 0) || ToMinorUnits(requested) <= 0 {
			return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, requested)
		}
		return requested, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidPurpose, purpose)
	}
}

func (o *Orchestrator) resultURL(status string, provider store.Provider) string {
	return fmt.Sprintf("%s/payments/result?status=%s&provider=%s", o.cfg.BaseURL, status, provider)
}

// Confirm verifies provider evidence and records a completed transaction
// at most once. Redelivering the same evidence is safe.
func (o *Orchestrator) Confirm(ctx context.Context, ev Evidence) (*Outcome, error) {
	if err := o.checkProvider(ev.Provider); err != nil {
		return nil, err
	}

	var confirmation Confirmation

	switch ev.Provider {
	case store.CardProvider:
		event, err := o.card.VerifyEvent(ev.RawBody, ev.Signature)
		if err != nil {
			return nil, err
		}

		if !event.Completed() {
			o.logger.Infow("unhandled card event type", "type", event.Type, "event_id", event.ID)
			return &Outcome{Status: OutcomeIgnored}, nil
		}
		confirmation = event

	default:
		token := strings.TrimSpace(ev.OrderToken)
		if token == "" {
			return &Outcome{Status: OutcomeCancelled}, nil
		}

		capture, err := o.wallet.CaptureOrder(ctx, token)
		if err != nil {
			return nil, err
		}

		if !capture.Completed() {
			o.logger.Infow("wallet capture not completed", "order_id", token, "status", capture.Status)
			return &Outcome{Status: OutcomeCancelled}, nil
		}
		confirmation = capture
	}

	record := o.normalize(confirmation)

	if record.Amount <= 0 {
		if capture, ok := confirmation.(*WalletCapture); ok && capture.Completed() {
			// Money moved but nothing is recorded; needs manual reconciliation.
			o.logger.Errorw("completed wallet capture has no usable amount",
				"order_id", capture.OrderID, "capture_id", capture.CaptureID, "amount", capture.Amount, "currency", capture.Currency)
		} else {
			o.logger.Warnw("refusing to record non-positive amount",
				"provider", record.Provider, "provider_payment_id", record.ProviderPaymentID, "amount", record.Amount)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, record.Amount)
	}

	stored, wasNew, err := o.payments.Upsert(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	if !wasNew {
		o.logger.Infow("payment already recorded", "provider", stored.Provider, "provider_payment_id", stored.ProviderPaymentID, "id", stored.ID)
	} else {
		o.logger.Infow("payment recorded", "provider", stored.Provider, "provider_payment_id", stored.ProviderPaymentID, "id", stored.ID, "amount", stored.Amount, "currency", stored.Currency)
		o.notify(ctx, stored)
	}

	return &Outcome{
		Status:            OutcomeSuccess,
		ProviderPaymentID: stored.ProviderPaymentID,
		Record:            stored,
		Duplicate:         !wasNew,
	}, nil
}

func (o *Orchestrator) notify(ctx context.Context, record *store.PaymentRecord) {
	if o.notifier == nil {
		return
	}

	if err := o.notifier.PaymentRecorded(ctx, record); err != nil {
		o.logger.Errorw("failed to notify payment recorded", "id", record.ID, "error", err)
	}
}

// normalize maps verified provider evidence onto a record. Card currency is
// lowercased, wallet currency is kept as the provider sent it.
func (o *Orchestrator) normalize(c Confirmation) *store.PaymentRecord {
	switch c := c.(type) {
	case *CardEvent:
		currency := c.Currency
		if currency == "" {
			currency = o.cfg.Stripe.Currency
		}

		paymentID := c.PaymentIntentID
		if paymentID == "" {
			paymentID = c.SessionID
		}

		return &store.PaymentRecord{
			Provider:          store.CardProvider,
			Purpose:           purposeOrInvoice(c.Metadata["purpose"]),
			Amount:            FromMinorUnits(c.AmountTotal),
			Currency:          strings.ToLower(currency),
			ProviderPaymentID: paymentID,
			Email:             c.Email,
			Notes:             "recorded via stripe webhook",
		}

	case *WalletCapture:
		currency := c.Currency
		if currency == "" {
			currency = o.cfg.PayPal.Currency
		}

		paymentID := c.CaptureID
		if paymentID == "" {
			paymentID = c.OrderID
		}

		return &store.PaymentRecord{
			Provider:          store.WalletProvider,
			Purpose:           purposeOrInvoice(c.CustomID),
			Amount:            ParseAmount(c.Amount),
			Currency:          currency,
			ProviderPaymentID: paymentID,
			Notes:             "recorded via paypal capture",
		}
	}

	panic(fmt.Sprintf("payment: unexpected confirmation %T", c))
}

func purposeOrInvoice(raw string) store.Purpose {
	if store.Purpose(raw) == store.DepositPurpose {
		return store.DepositPurpose
	}
	return store.InvoicePurpose
}
