package payment

import (
	"context"
	"errors"

	"github.com/devphaseX/voltvista-payments/internal/store"
)

var (
	ErrProviderDisabled   = errors.New("payment provider disabled")
	ErrUnknownProvider    = errors.New("unknown payment provider")
	ErrInvalidPurpose     = errors.New("invalid payment purpose")
	ErrInvalidAmount      = errors.New("invalid payment amount")
	ErrInvalidSignature   = errors.New("invalid webhook signature")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrGatewayTimeout     = errors.New("payment gateway timed out")
)

// CardGateway is a hosted-checkout provider that reports completion through
// signed webhooks.
type CardGateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (*SessionHandle, error)
	VerifyEvent(rawBody []byte, signatureHeader string) (*CardEvent, error)
}

// WalletGateway is an order provider that the payer approves off-site and the
// server captures on return.
type WalletGateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	CaptureOrder(ctx context.Context, orderID string) (*WalletCapture, error)
}

// Notifier is told about records that were stored for the first time.
type Notifier interface {
	PaymentRecorded(ctx context.Context, record *store.PaymentRecord) error
}

type SessionRequest struct {
	Purpose       store.Purpose
	Amount        float64
	Currency      string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

type SessionHandle struct {
	URL       string
	SessionID string
}

type OrderRequest struct {
	Purpose   store.Purpose
	Amount    float64
	Currency  string
	ReturnURL string
	CancelURL string
}

type Order struct {
	ID          string
	ApproveLink string
}

// Confirmation is the verified provider evidence handed to normalization.
// It is implemented by *CardEvent and *WalletCapture only.
type Confirmation interface {
	provider() store.Provider
}

type CardEvent struct {
	ID   string
	Type string

	SessionID       string
	PaymentIntentID string
	// AmountTotal is in minor units.
	AmountTotal int64
	Currency    string
	Metadata    map[string]string
	Email       string
}

func (*CardEvent) provider() store.Provider { return store.CardProvider }

// Completed reports whether the event is a finished checkout.
func (e *CardEvent) Completed() bool {
	return e.Type == cardCheckoutCompleted
}

type WalletCapture struct {
	OrderID   string
	Status    string
	CaptureID string
	// Amount is the decimal string returned by the provider, "" when absent.
	Amount   string
	Currency string
	CustomID string
}

func (*WalletCapture) provider() store.Provider { return store.WalletProvider }

func (c *WalletCapture) Completed() bool {
	return c.Status == walletCaptureCompleted
}
