package stripe

import (
	"testing"

	stripego "github.com/stripe/stripe-go/v79"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/payment"
)

func TestExtractIntentFields(t *testing.T) {
	raw := []byte(`{
		"id": "pi_3MtwBwLkdIwHu7ix28a3tqPa",
		"object": "payment_intent",
		"amount": 5980,
		"currency": "bgn",
		"metadata": {"customer_email": "ivan@example.com"},
		"status": "succeeded"
	}`)

	id, status, err := extractIntentFields(raw)
	require.NoError(t, err)
	assert.Equal(t, "pi_3MtwBwLkdIwHu7ix28a3tqPa", id)
	assert.Equal(t, "succeeded", status)
}

func TestExtractIntentFields_Malformed(t *testing.T) {
	_, _, err := extractIntentFields([]byte(`{"id": 42`))
	require.Error(t, err)
}

func TestParseWebhookEvent_BadSignature(t *testing.T) {
	g := New(Config{SecretKey: "sk_test_x", WebhookSecret: "whsec_x"})

	_, err := g.ParseWebhookEvent([]byte(`{"type":"payment_intent.succeeded"}`), "t=1,v1=deadbeef")
	require.ErrorIs(t, err, payment.ErrBadSignature)
}

func TestMapStatus(t *testing.T) {
	tests := []struct {
		in   stripego.PaymentIntentStatus
		want payment.Status
	}{
		{stripego.PaymentIntentStatusSucceeded, payment.StatusSucceeded},
		{stripego.PaymentIntentStatusCanceled, payment.StatusFailed},
		{stripego.PaymentIntentStatusProcessing, payment.StatusRequiresAction},
		{stripego.PaymentIntentStatusRequiresAction, payment.StatusRequiresAction},
		{stripego.PaymentIntentStatusRequiresPaymentMethod, payment.StatusRequiresAction},
		{stripego.PaymentIntentStatus("weird_future_state"), payment.StatusOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mapStatus(tt.in), "status %s", tt.in)
	}
}
