package order

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/payment"
	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/product"
)

// --- Mock implementations ---

type mockProductRepo struct {
	byID   map[int64]*product.Product
	getErr error
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) { return nil, nil }

func (m *mockProductRepo) GetByID(_ context.Context, id int64) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []int64) ([]product.Product, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var out []product.Product
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) Create(_ context.Context, _ *product.Product) error { return nil }

type mockOrderRepo struct {
	lastOrder *Order
	lastItems []Item
	created   int
	intents   map[string]bool
	err       error
}

func (m *mockOrderRepo) CreateWithItems(_ context.Context, o *Order, items []Item) error {
	if m.err != nil {
		return m.err
	}
	if o.PaymentIntentID != "" {
		if m.intents == nil {
			m.intents = make(map[string]bool)
		}
		if m.intents[o.PaymentIntentID] {
			return ErrDuplicatePayment
		}
		m.intents[o.PaymentIntentID] = true
	}
	m.created++
	o.ID = int64(m.created)
	m.lastOrder = o
	m.lastItems = items
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id int64) (*Order, []Item, error) {
	if m.lastOrder == nil || m.lastOrder.ID != id {
		return nil, nil, ErrNotFound
	}
	return m.lastOrder, m.lastItems, nil
}

func (m *mockOrderRepo) FindByPaymentIntent(_ context.Context, intentID string) (*Order, error) {
	if m.lastOrder != nil && m.lastOrder.PaymentIntentID == intentID {
		return m.lastOrder, nil
	}
	return nil, ErrNotFound
}

func (m *mockOrderRepo) UpdateShipment(_ context.Context, _ int64, tracking string, status DeliveryStatus) error {
	if m.lastOrder != nil {
		m.lastOrder.TrackingNumber = tracking
		m.lastOrder.DeliveryStatus = status
	}
	return m.err
}

func (m *mockOrderRepo) UpdatePaymentStatus(_ context.Context, intentID string, status Status, paymentStatus string) error {
	if m.err != nil {
		return m.err
	}
	if m.lastOrder == nil || m.lastOrder.PaymentIntentID != intentID {
		return ErrNotFound
	}
	m.lastOrder.Status = status
	m.lastOrder.PaymentStatus = paymentStatus
	return nil
}

type mockGateway struct {
	intent       *payment.Intent
	verification *payment.Verification
	createErr    error
	verifyErr    error

	createCalls int
	verifyCalls int
	lastIntent  string
}

func (m *mockGateway) CreateIntent(_ context.Context, _ decimal.Decimal, _ string, _ map[string]string) (*payment.Intent, error) {
	m.createCalls++
	return m.intent, m.createErr
}

func (m *mockGateway) VerifyIntent(_ context.Context, intentID string) (*payment.Verification, error) {
	m.verifyCalls++
	m.lastIntent = intentID
	return m.verification, m.verifyErr
}

func (m *mockGateway) ParseWebhookEvent(_ []byte, _ string) (*payment.Event, error) {
	return nil, payment.ErrBadSignature
}

// --- Helpers ---

func newProductRepo(ids ...int64) *mockProductRepo {
	byID := make(map[int64]*product.Product, len(ids))
	for _, id := range ids {
		byID[id] = &product.Product{
			ID:      id,
			Name:    "Имунофан",
			Price:   decimal.RequireFromString("89.99"),
			Type:    product.TypeInjection,
			InStock: true,
		}
	}
	return &mockProductRepo{byID: byID}
}

func testDraft(method PaymentMethod) Draft {
	return Draft{
		CustomerName:  "Иван Иванов",
		CustomerEmail: "ivan@example.com",
		CustomerPhone: "+359888123456",
		Address:       "ул. Раковска 10",
		City:          "София",
		PostalCode:    "1000",
		PaymentMethod: method,
	}
}

// --- Tests ---

func TestCreateOrder_CashOnDelivery(t *testing.T) {
	repo := &mockOrderRepo{}
	gw := &mockGateway{}
	svc := NewService(newProductRepo(1, 2), repo, gw)

	result, err := svc.CreateOrder(context.Background(), testDraft(PaymentCashOnDelivery), []ItemInput{
		{ProductID: 1, Quantity: 1, Price: decimal.RequireFromString("89.99")},
		{ProductID: 2, Quantity: 2, Price: decimal.RequireFromString("30.00")},
	})

	require.NoError(t, err)
	assert.Equal(t, StatusPendingCashOnDelivery, result.Order.Status)
	assert.Equal(t, PaymentCashOnDelivery, result.Order.PaymentMethod)
	assert.Empty(t, result.Order.PaymentIntentID)
	assert.True(t, decimal.RequireFromString("149.99").Equal(result.Order.Total))
	assert.Zero(t, gw.createCalls, "cash-on-delivery must not touch the payment gateway")
	assert.Zero(t, gw.verifyCalls)
}

func TestCreateOrder_TotalMatchesItemSum(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := NewService(newProductRepo(1, 2, 3), repo, &mockGateway{})

	items := []ItemInput{
		{ProductID: 1, Quantity: 3, Price: decimal.RequireFromString("10.10")},
		{ProductID: 2, Quantity: 1, Price: decimal.RequireFromString("0.01")},
		{ProductID: 3, Quantity: 2, Price: decimal.RequireFromString("59.94")},
	}
	result, err := svc.CreateOrder(context.Background(), testDraft(PaymentCashOnDelivery), items)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, it := range result.Items {
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	assert.True(t, sum.Equal(result.Order.Total), "total %s != item sum %s", result.Order.Total, sum)
}

func TestCreateOrder_RejectsCardMethod(t *testing.T) {
	svc := NewService(newProductRepo(1), &mockOrderRepo{}, &mockGateway{})

	_, err := svc.CreateOrder(context.Background(), testDraft(PaymentCard), []ItemInput{
		{ProductID: 1, Quantity: 1, Price: decimal.NewFromInt(10)},
	})
	require.ErrorIs(t, err, ErrCardNotConfirmed)
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	svc := NewService(newProductRepo(), &mockOrderRepo{}, &mockGateway{})

	_, err := svc.CreateOrder(context.Background(), testDraft(PaymentCashOnDelivery), nil)
	require.ErrorIs(t, err, ErrEmptyItems)
}

func TestCreateOrder_InvalidQuantity(t *testing.T) {
	svc := NewService(newProductRepo(1), &mockOrderRepo{}, &mockGateway{})

	_, err := svc.CreateOrder(context.Background(), testDraft(PaymentCashOnDelivery), []ItemInput{
		{ProductID: 1, Quantity: 0, Price: decimal.NewFromInt(10)},
	})

	var iqErr *InvalidQuantityError
	require.ErrorAs(t, err, &iqErr)
	assert.Equal(t, int64(1), iqErr.ProductID)
}

func TestCreateOrder_ProductNotFound(t *testing.T) {
	svc := NewService(newProductRepo(1), &mockOrderRepo{}, &mockGateway{})

	_, err := svc.CreateOrder(context.Background(), testDraft(PaymentCashOnDelivery), []ItemInput{
		{ProductID: 999, Quantity: 1, Price: decimal.NewFromInt(10)},
	})

	var pnfErr *ProductNotFoundError
	require.ErrorAs(t, err, &pnfErr)
	assert.Equal(t, int64(999), pnfErr.ProductID)
}

func TestCreateOrder_MissingContactField(t *testing.T) {
	svc := NewService(newProductRepo(1), &mockOrderRepo{}, &mockGateway{})

	draft := testDraft(PaymentCashOnDelivery)
	draft.CustomerEmail = ""
	_, err := svc.CreateOrder(context.Background(), draft, []ItemInput{
		{ProductID: 1, Quantity: 1, Price: decimal.NewFromInt(10)},
	})

	var idErr *InvalidDraftError
	require.ErrorAs(t, err, &idErr)
	assert.Equal(t, "customerEmail", idErr.Field)
}

func TestCreateIntent_InvalidAmount(t *testing.T) {
	svc := NewService(newProductRepo(), &mockOrderRepo{}, &mockGateway{})

	_, err := svc.CreateIntent(context.Background(), decimal.Zero, "bgn", nil)
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestCreateIntent_GatewayError(t *testing.T) {
	gw := &mockGateway{createErr: errors.New("stripe unavailable")}
	svc := NewService(newProductRepo(), &mockOrderRepo{}, gw)

	_, err := svc.CreateIntent(context.Background(), decimal.RequireFromString("150.00"), "bgn", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create payment intent")
}

func TestConfirmPayment_Succeeded(t *testing.T) {
	repo := &mockOrderRepo{}
	gw := &mockGateway{verification: &payment.Verification{Status: payment.StatusSucceeded, Raw: "succeeded"}}
	svc := NewService(newProductRepo(1), repo, gw)

	result, err := svc.ConfirmPayment(context.Background(), "pi_123", testDraft(PaymentCard), []ItemInput{
		{ProductID: 1, Quantity: 1, Price: decimal.RequireFromString("150.00")},
	})

	require.NoError(t, err)
	assert.Equal(t, StatusPaid, result.Order.Status)
	assert.Equal(t, PaymentCard, result.Order.PaymentMethod)
	assert.Equal(t, "pi_123", result.Order.PaymentIntentID)
	assert.Equal(t, "succeeded", result.Order.PaymentStatus)
	assert.Equal(t, 1, gw.verifyCalls, "gateway must be re-verified before persisting")
	assert.Equal(t, "pi_123", gw.lastIntent)
}

func TestConfirmPayment_NotSucceeded(t *testing.T) {
	repo := &mockOrderRepo{}
	gw := &mockGateway{verification: &payment.Verification{Status: payment.StatusFailed, Raw: "canceled"}}
	svc := NewService(newProductRepo(1), repo, gw)

	_, err := svc.ConfirmPayment(context.Background(), "pi_bad", testDraft(PaymentCard), []ItemInput{
		{ProductID: 1, Quantity: 1, Price: decimal.NewFromInt(10)},
	})

	var pnsErr *PaymentNotSucceededError
	require.ErrorAs(t, err, &pnsErr)
	assert.Equal(t, "pi_bad", pnsErr.IntentID)
	assert.Zero(t, repo.created, "no order may be persisted for an unverified payment")
}

func TestConfirmPayment_VerifyError(t *testing.T) {
	repo := &mockOrderRepo{}
	gw := &mockGateway{verifyErr: errors.New("timeout")}
	svc := NewService(newProductRepo(1), repo, gw)

	_, err := svc.ConfirmPayment(context.Background(), "pi_123", testDraft(PaymentCard), []ItemInput{
		{ProductID: 1, Quantity: 1, Price: decimal.NewFromInt(10)},
	})

	require.Error(t, err)
	assert.Zero(t, repo.created, "verification timeout must be treated as failure")
}

func TestConfirmPayment_DuplicateIntent(t *testing.T) {
	repo := &mockOrderRepo{}
	gw := &mockGateway{verification: &payment.Verification{Status: payment.StatusSucceeded, Raw: "succeeded"}}
	svc := NewService(newProductRepo(1), repo, gw)

	items := []ItemInput{{ProductID: 1, Quantity: 1, Price: decimal.NewFromInt(10)}}

	_, err := svc.ConfirmPayment(context.Background(), "pi_once", testDraft(PaymentCard), items)
	require.NoError(t, err)

	_, err = svc.ConfirmPayment(context.Background(), "pi_once", testDraft(PaymentCard), items)
	require.ErrorIs(t, err, ErrDuplicatePayment)
	assert.Equal(t, 1, repo.created)
}

func TestRecordPaymentEvent_Failed(t *testing.T) {
	repo := &mockOrderRepo{}
	gw := &mockGateway{verification: &payment.Verification{Status: payment.StatusSucceeded, Raw: "succeeded"}}
	svc := NewService(newProductRepo(1), repo, gw)

	_, err := svc.ConfirmPayment(context.Background(), "pi_hook", testDraft(PaymentCard), []ItemInput{
		{ProductID: 1, Quantity: 1, Price: decimal.NewFromInt(10)},
	})
	require.NoError(t, err)

	err = svc.RecordPaymentEvent(context.Background(), &payment.Event{
		Type:         "payment_intent.payment_failed",
		IntentID:     "pi_hook",
		IntentStatus: "requires_payment_method",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, repo.lastOrder.Status)
	assert.Equal(t, "requires_payment_method", repo.lastOrder.PaymentStatus)
}

func TestRecordPaymentEvent_UnknownIntentIgnored(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := NewService(newProductRepo(1), repo, &mockGateway{})

	err := svc.RecordPaymentEvent(context.Background(), &payment.Event{
		Type:     "payment_intent.succeeded",
		IntentID: "pi_never_seen",
	})
	require.NoError(t, err, "events may arrive before the confirm path persists the order")
}

func TestAttachShipment(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := NewService(newProductRepo(1), repo, &mockGateway{})

	result, err := svc.CreateOrder(context.Background(), testDraft(PaymentCashOnDelivery), []ItemInput{
		{ProductID: 1, Quantity: 1, Price: decimal.NewFromInt(10)},
	})
	require.NoError(t, err)

	require.NoError(t, svc.AttachShipment(context.Background(), result.Order.ID, "EC1234"))
	assert.Equal(t, "EC1234", repo.lastOrder.TrackingNumber)
	assert.Equal(t, DeliveryShipped, repo.lastOrder.DeliveryStatus)
}
