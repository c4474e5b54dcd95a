package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/payment"
	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/product"
	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/shipping"
)

// Sentinel errors for checkout validation.
var (
	ErrEmptyItems    = errors.New("items required")
	ErrInvalidAmount = errors.New("amount must be greater than 0")

	// ErrCardNotConfirmed rejects direct creation of card orders: a card order
	// only comes into existence through ConfirmPayment, after the gateway has
	// verified the charge.
	ErrCardNotConfirmed = errors.New("card orders are created via payment confirmation")
)

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %d", e.ProductID)
}

// ProductNotFoundError indicates a requested product does not exist.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// InvalidDraftError indicates a missing or malformed customer field.
type InvalidDraftError struct {
	Field string
}

func (e *InvalidDraftError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// PaymentNotSucceededError indicates the gateway reported a non-succeeded
// state for an intent the client claimed was paid. No order is persisted.
type PaymentNotSucceededError struct {
	IntentID string
	Status   payment.Status
	Raw      string
}

func (e *PaymentNotSucceededError) Error() string {
	return fmt.Sprintf("payment intent %s is not succeeded (status %s)", e.IntentID, e.Raw)
}

// Draft holds the customer-entered checkout fields for an order about to be
// created.
type Draft struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Address       string
	City          string
	PostalCode    string

	PaymentMethod PaymentMethod

	DeliveryType    shipping.DeliveryType
	DeliveryPrice   decimal.Decimal
	PickupPointID   string
	PickupPointName string
}

// ItemInput is one cart line submitted at checkout. Price is the unit price
// the cart captured; it is stored as-is on the order item.
type ItemInput struct {
	ProductID int64
	Quantity  int32
	Price     decimal.Decimal
}

// Result is a created order together with its persisted items.
type Result struct {
	Order *Order
	Items []Item
}

// Service drives a shopping cart to a durably persisted order, coordinating
// with the payment gateway for card payments. It guarantees the persisted
// record never claims a payment succeeded unless the gateway independently
// confirmed it.
type Service struct {
	products product.Repository
	orders   Repository
	payments payment.Gateway
}

// NewService creates an order Service with the required dependencies.
func NewService(products product.Repository, orders Repository, payments payment.Gateway) *Service {
	return &Service{
		products: products,
		orders:   orders,
		payments: payments,
	}
}

// CreateOrder is the cash-on-delivery path: it validates the draft and items,
// computes the total, and persists the order directly in
// StatusPendingCashOnDelivery without any payment gateway interaction.
func (s *Service) CreateOrder(ctx context.Context, draft Draft, items []ItemInput) (*Result, error) {
	if draft.PaymentMethod == PaymentCard {
		return nil, ErrCardNotConfirmed
	}
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	total, orderItems, err := s.buildItems(ctx, items)
	if err != nil {
		return nil, err
	}

	o := draftToOrder(draft)
	o.Total = total
	o.Status = StatusPendingCashOnDelivery
	o.PaymentMethod = PaymentCashOnDelivery

	if err := s.orders.CreateWithItems(ctx, o, orderItems); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	return &Result{Order: o, Items: orderItems}, nil
}

// CreateIntent requests a payment intent from the gateway for the given cart
// total. Nothing is persisted; the order row only appears once ConfirmPayment
// verifies the charge.
func (s *Service) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*payment.Intent, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	intent, err := s.payments.CreateIntent(ctx, amount, currency, metadata)
	if err != nil {
		return nil, errors.Wrap(err, "create payment intent")
	}
	return intent, nil
}

// ConfirmPayment re-verifies the intent with the gateway and, only on a
// confirmed succeeded status, persists the order as paid. The client's claim
// of success is never trusted on its own; on any non-succeeded status no
// order row is created and the cart survives on the client.
func (s *Service) ConfirmPayment(ctx context.Context, intentID string, draft Draft, items []ItemInput) (*Result, error) {
	if intentID == "" {
		return nil, &InvalidDraftError{Field: "paymentIntentId"}
	}
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	total, orderItems, err := s.buildItems(ctx, items)
	if err != nil {
		return nil, err
	}

	verification, err := s.payments.VerifyIntent(ctx, intentID)
	if err != nil {
		return nil, errors.Wrapf(err, "verify payment intent %s", intentID)
	}
	if verification.Status != payment.StatusSucceeded {
		return nil, &PaymentNotSucceededError{
			IntentID: intentID,
			Status:   verification.Status,
			Raw:      verification.Raw,
		}
	}

	o := draftToOrder(draft)
	o.Total = total
	o.Status = StatusPaid
	o.PaymentMethod = PaymentCard
	o.PaymentIntentID = intentID
	o.PaymentStatus = verification.Raw

	if err := s.orders.CreateWithItems(ctx, o, orderItems); err != nil {
		if errors.Is(err, ErrDuplicatePayment) {
			return nil, err
		}
		return nil, errors.Wrap(err, "create order")
	}

	return &Result{Order: o, Items: orderItems}, nil
}

// RecordPaymentEvent applies an out-of-band processor notification to the
// order referencing the intent. Events for unknown intents are ignored: the
// synchronous confirm path may not have persisted the order yet, and the
// processor retries delivery.
func (s *Service) RecordPaymentEvent(ctx context.Context, ev *payment.Event) error {
	if ev.IntentID == "" {
		return nil
	}

	var status Status
	switch ev.Type {
	case "payment_intent.succeeded":
		status = StatusPaid
	case "payment_intent.payment_failed":
		status = StatusFailed
	default:
		return nil
	}

	err := s.orders.UpdatePaymentStatus(ctx, ev.IntentID, status, ev.IntentStatus)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return errors.Wrapf(err, "record payment event for intent %s", ev.IntentID)
	}
	return nil
}

// Get returns an order with its items.
func (s *Service) Get(ctx context.Context, id int64) (*Result, error) {
	o, items, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Result{Order: o, Items: items}, nil
}

// AttachShipment records the carrier tracking number on an already-persisted
// order. It is a post-success enrichment step: callers treat failures as
// retryable out of band, never as a reason to invalidate the order.
func (s *Service) AttachShipment(ctx context.Context, orderID int64, trackingNumber string) error {
	if err := s.orders.UpdateShipment(ctx, orderID, trackingNumber, DeliveryShipped); err != nil {
		return errors.Wrapf(err, "attach shipment to order %d", orderID)
	}
	return nil
}

// buildItems validates cart lines, checks the referenced products exist in a
// single batch query, and returns the order items plus the exact decimal
// total (sum of price x quantity).
func (s *Service) buildItems(ctx context.Context, items []ItemInput) (decimal.Decimal, []Item, error) {
	if len(items) == 0 {
		return decimal.Zero, nil, ErrEmptyItems
	}

	ids := make([]int64, len(items))
	for i, item := range items {
		if item.Quantity <= 0 {
			return decimal.Zero, nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
		if item.Price.IsNegative() {
			return decimal.Zero, nil, &InvalidDraftError{Field: "items.price"}
		}
		ids[i] = item.ProductID
	}

	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return decimal.Zero, nil, errors.Wrap(err, "get products")
	}
	known := make(map[int64]struct{}, len(fetched))
	for _, p := range fetched {
		known[p.ID] = struct{}{}
	}

	total := decimal.Zero
	orderItems := make([]Item, len(items))
	for i, item := range items {
		if _, ok := known[item.ProductID]; !ok {
			return decimal.Zero, nil, &ProductNotFoundError{ProductID: item.ProductID}
		}
		orderItems[i] = Item{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	return total, orderItems, nil
}

func validateDraft(draft Draft) error {
	switch {
	case draft.CustomerName == "":
		return &InvalidDraftError{Field: "customerName"}
	case draft.CustomerEmail == "":
		return &InvalidDraftError{Field: "customerEmail"}
	case draft.CustomerPhone == "":
		return &InvalidDraftError{Field: "customerPhone"}
	case draft.Address == "":
		return &InvalidDraftError{Field: "address"}
	case draft.City == "":
		return &InvalidDraftError{Field: "city"}
	case draft.PostalCode == "":
		return &InvalidDraftError{Field: "postalCode"}
	}
	return nil
}

func draftToOrder(draft Draft) *Order {
	return &Order{
		CustomerName:    draft.CustomerName,
		CustomerEmail:   draft.CustomerEmail,
		CustomerPhone:   draft.CustomerPhone,
		Address:         draft.Address,
		City:            draft.City,
		PostalCode:      draft.PostalCode,
		DeliveryType:    draft.DeliveryType,
		DeliveryPrice:   draft.DeliveryPrice,
		PickupPointID:   draft.PickupPointID,
		PickupPointName: draft.PickupPointName,
		DeliveryStatus:  DeliveryPending,
	}
}
