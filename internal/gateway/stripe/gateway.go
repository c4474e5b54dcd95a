// Package stripe implements payment.Gateway against the Stripe API.
package stripe

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	stripego "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/payment"
)

var _ payment.Gateway = (*Gateway)(nil)

// Config holds the Stripe credentials.
type Config struct {
	SecretKey     string
	WebhookSecret string
}

// Gateway is the Stripe implementation of payment.Gateway.
type Gateway struct {
	api           *client.API
	webhookSecret string
}

// New creates a Stripe Gateway.
func New(cfg Config) *Gateway {
	return &Gateway{
		api:           client.New(cfg.SecretKey, nil),
		webhookSecret: cfg.WebhookSecret,
	}
}

// CreateIntent creates a payment intent for the given amount. Amounts are
// converted to the currency's minor unit (stotinki for BGN) exactly; a
// non-positive amount is rejected before any network call.
func (g *Gateway) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*payment.Intent, error) {
	if !amount.IsPositive() {
		return nil, errors.New("amount must be greater than 0")
	}

	params := &stripego.PaymentIntentParams{
		Params:   stripego.Params{Context: ctx},
		Amount:   stripego.Int64(amount.Shift(2).Round(0).IntPart()),
		Currency: stripego.String(currency),
		AutomaticPaymentMethods: &stripego.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripego.Bool(true),
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, errors.Wrap(err, "create payment intent")
	}

	return &payment.Intent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

// VerifyIntent reads the intent's current status directly from Stripe. This
// is the authoritative check the order workflow performs before persisting a
// paid order.
func (g *Gateway) VerifyIntent(ctx context.Context, intentID string) (*payment.Verification, error) {
	params := &stripego.PaymentIntentParams{
		Params: stripego.Params{Context: ctx},
	}
	intent, err := g.api.PaymentIntents.Get(intentID, params)
	if err != nil {
		return nil, errors.Wrapf(err, "retrieve payment intent %s", intentID)
	}

	return &payment.Verification{
		Status: mapStatus(intent.Status),
		Raw:    string(intent.Status),
	}, nil
}

// ParseWebhookEvent verifies the webhook signature and extracts the intent
// fields from the event payload. A failed verification yields
// payment.ErrBadSignature and the payload must not be processed.
func (g *Gateway) ParseWebhookEvent(payload []byte, signatureHeader string) (*payment.Event, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, g.webhookSecret)
	if err != nil {
		return nil, errors.Wrap(payment.ErrBadSignature, err.Error())
	}

	intentID, intentStatus, err := extractIntentFields(event.Data.Raw)
	if err != nil {
		return nil, errors.Wrap(err, "parse event object")
	}

	return &payment.Event{
		Type:         string(event.Type),
		IntentID:     intentID,
		IntentStatus: intentStatus,
	}, nil
}

// mapStatus folds Stripe's intent statuses into the processor-independent
// enum. Everything between creation and a terminal state still requires
// customer or processor action.
func mapStatus(s stripego.PaymentIntentStatus) payment.Status {
	switch s {
	case stripego.PaymentIntentStatusSucceeded:
		return payment.StatusSucceeded
	case stripego.PaymentIntentStatusCanceled:
		return payment.StatusFailed
	case stripego.PaymentIntentStatusProcessing,
		stripego.PaymentIntentStatusRequiresAction,
		stripego.PaymentIntentStatusRequiresCapture,
		stripego.PaymentIntentStatusRequiresConfirmation,
		stripego.PaymentIntentStatusRequiresPaymentMethod:
		return payment.StatusRequiresAction
	default:
		return payment.StatusOther
	}
}
