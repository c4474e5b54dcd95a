// Package payment defines the contract between the order workflow and the
// hosted payment processor. The concrete Stripe implementation lives in
// internal/gateway/stripe.
package payment

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrBadSignature is returned by ParseWebhookEvent when the payload fails
// authenticity verification. Callers must reject the request without
// processing any part of the payload.
var ErrBadSignature = errors.New("webhook signature verification failed")

// Status is the processor-independent state of a payment intent.
type Status string

const (
	StatusSucceeded      Status = "succeeded"
	StatusRequiresAction Status = "requires_action"
	StatusFailed         Status = "failed"
	StatusOther          Status = "other"
)

// Intent is a processor-side object representing an in-progress charge
// attempt. The client secret is handed to the browser so the customer can
// submit card details directly to the processor.
type Intent struct {
	ID           string
	ClientSecret string
}

// Verification is the result of an authoritative status read for an intent.
// Raw carries the processor's own status string for persistence.
type Verification struct {
	Status Status
	Raw    string
}

// Event is an out-of-band processor notification that passed signature
// verification.
type Event struct {
	Type         string
	IntentID     string
	IntentStatus string
}

// Gateway wraps the hosted payment processor.
//
// CreateIntent fails when amount is not positive or the upstream call fails;
// it is never retried automatically. VerifyIntent is a pure read against the
// processor and is the only source of truth the order workflow may trust
// before persisting a paid order.
type Gateway interface {
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*Intent, error)
	VerifyIntent(ctx context.Context, intentID string) (*Verification, error)
	ParseWebhookEvent(payload []byte, signatureHeader string) (*Event, error)
}
