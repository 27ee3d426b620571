package payment

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/devphaseX/voltvista-payments/internal/settings"
	"github.com/plutov/paypal/v4"
	"go.uber.org/zap"
)

const (
	walletCaptureCompleted = "COMPLETED"
	walletAlreadyCaptured  = "ORDER_ALREADY_CAPTURED"
)

type PayPalPayment struct {
	appName string
	client  *paypal.Client
	logger  *zap.SugaredLogger
}

// NewPayPalPayment builds a wallet gateway. The client fetches a bearer
// token on first use and refreshes it shortly before it expires.
func NewPayPalPayment(appName string, cfg settings.PayPal, httpClient *http.Client, logger *zap.SugaredLogger) (*PayPalPayment, error) {
	client, err := paypal.NewClient(cfg.ClientID, cfg.ClientSecret, paypalBaseURL(cfg))
	if err != nil {
		return nil, err
	}
	client.SetHTTPClient(httpClient)
	client.SetReturnRepresentation()

	return &PayPalPayment{
		appName: appName,
		client:  client,
		logger:  logger,
	}, nil
}

func paypalBaseURL(cfg settings.PayPal) string {
	switch {
	case cfg.APIBase != "":
		return strings.TrimRight(cfg.APIBase, "/")
	case cfg.Live():
		return paypal.APIBaseLive
	default:
		return paypal.APIBaseSandBox
	}
}

func (p *PayPalPayment) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	units := []paypal.PurchaseUnitRequest{
		{
			Description: lineItemName(p.appName, req.Purpose),
			CustomID:    string(req.Purpose),
			Amount: &paypal.PurchaseUnitAmount{
				Currency: req.Currency,
				Value:    FormatAmount(req.Amount),
			},
		},
	}

	order, err := p.client.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, &paypal.ApplicationContext{
		ReturnURL: req.ReturnURL,
		CancelURL: req.CancelURL,
	})
	if err != nil {
		p.logFailure("create order", "", err)
		return nil, gatewayError("failed to create PayPal order", err)
	}

	out := &Order{ID: order.ID}
	for _, link := range order.Links {
		if link.Rel == "approve" {
			out.ApproveLink = link.Href
			break
		}
	}

	return out, nil
}

// CaptureOrder captures an approved order. An order captured by an earlier
// visit is read back instead so the caller sees the same capture again.
func (p *PayPalPayment) CaptureOrder(ctx context.Context, orderID string) (*WalletCapture, error) {
	resp, err := p.client.CaptureOrder(ctx, orderID, paypal.CaptureOrderRequest{})
	if err != nil {
		if alreadyCaptured(err) {
			p.logger.Infow("paypal order already captured, reading it back", "order_id", orderID)
			return p.capturedOrder(ctx, orderID)
		}
		p.logFailure("capture order", orderID, err)
		return nil, gatewayError("failed to capture PayPal order", err)
	}

	capture := &WalletCapture{
		OrderID: orderID,
		Status:  resp.Status,
	}

	if len(resp.PurchaseUnits) == 0 {
		return capture, nil
	}

	unit := resp.PurchaseUnits[0]
	if unit.Payments != nil {
		fillCapture(capture, unit.Payments.Captures)
	}

	return capture, nil
}

func (p *PayPalPayment) capturedOrder(ctx context.Context, orderID string) (*WalletCapture, error) {
	order, err := p.client.GetOrder(ctx, orderID)
	if err != nil {
		p.logFailure("get order", orderID, err)
		return nil, gatewayError("failed to read PayPal order", err)
	}

	capture := &WalletCapture{
		OrderID: orderID,
		Status:  order.Status,
	}

	if len(order.PurchaseUnits) == 0 {
		return capture, nil
	}

	unit := order.PurchaseUnits[0]
	capture.CustomID = unit.CustomID
	if unit.Payments != nil {
		fillCapture(capture, unit.Payments.Captures)
	}

	return capture, nil
}

// fillCapture copies the first capture onto c. Fields already set win.
func fillCapture(c *WalletCapture, captures []paypal.CaptureAmount) {
	if len(captures) == 0 {
		return
	}

	first := captures[0]
	c.CaptureID = first.ID
	if c.CustomID == "" {
		c.CustomID = first.CustomID
	}
	if first.Amount != nil {
		c.Amount = first.Amount.Value
		c.Currency = first.Amount.Currency
	}
}

func alreadyCaptured(err error) bool {
	var errResp *paypal.ErrorResponse
	if !errors.As(err, &errResp) {
		return false
	}

	for _, detail := range errResp.Details {
		if detail.Issue == walletAlreadyCaptured {
			return true
		}
	}
	return false
}

func (p *PayPalPayment) logFailure(op, orderID string, err error) {
	var errResp *paypal.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		p.logger.Warnw("paypal request failed",
			"op", op, "order_id", orderID, "status", errResp.Response.StatusCode, "name", errResp.Name, "debug_id", errResp.DebugID)
		return
	}

	p.logger.Warnw("paypal request failed", "op", op, "order_id", orderID, "error", err)
}
