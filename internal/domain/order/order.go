package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/shipping"
)

// Sentinel errors for order persistence.
var (
	ErrNotFound = errors.New("order not found")

	// ErrDuplicatePayment is returned when an order referencing the same
	// payment intent already exists. Enforced by a unique index, so a replayed
	// confirm call cannot create a second order for one charge.
	ErrDuplicatePayment = errors.New("order for this payment intent already exists")
)

// Status is the server-side order state.
type Status string

const (
	StatusPending               Status = "pending"
	StatusPaid                  Status = "paid"
	StatusFailed                Status = "failed"
	StatusShipped               Status = "shipped"
	StatusDelivered             Status = "delivered"
	StatusCancelled             Status = "cancelled"
	StatusPendingCashOnDelivery Status = "pending_cash_on_delivery"
)

// PaymentMethod is how the customer chose to pay.
type PaymentMethod string

const (
	PaymentCard           PaymentMethod = "card"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
)

// DeliveryStatus tracks the carrier side of an order independently of the
// payment status.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryShipped   DeliveryStatus = "shipped"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
)

// Order is a durably persisted customer order.
//
// Invariant: Status and PaymentMethod are jointly consistent. A card order
// never reaches StatusPaid without a verified PaymentIntentID; a
// cash-on-delivery order is created directly in StatusPendingCashOnDelivery
// and never touches the payment gateway.
type Order struct {
	ID            int64
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Address       string
	City          string
	PostalCode    string

	// Total is the merchandise total: the exact decimal sum of item
	// price x quantity. The delivery charge is tracked separately.
	Total decimal.Decimal

	Status          Status
	PaymentMethod   PaymentMethod
	PaymentIntentID string
	PaymentStatus   string

	DeliveryType    shipping.DeliveryType
	DeliveryPrice   decimal.Decimal
	PickupPointID   string
	PickupPointName string
	TrackingNumber  string
	DeliveryStatus  DeliveryStatus

	CreatedAt time.Time
}

// Item is a single order line. Price is the unit price copied at order time,
// so historical orders are immune to later catalog changes.
type Item struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int32
	Price     decimal.Decimal
}

// Repository defines persistence operations for orders.
//
// CreateWithItems persists the order and all of its items atomically; a
// partial write must never become visible. It returns ErrDuplicatePayment
// when the order's payment intent reference is already taken.
type Repository interface {
	CreateWithItems(ctx context.Context, o *Order, items []Item) error
	GetByID(ctx context.Context, id int64) (*Order, []Item, error)
	FindByPaymentIntent(ctx context.Context, intentID string) (*Order, error)
	UpdateShipment(ctx context.Context, id int64, trackingNumber string, status DeliveryStatus) error
	UpdatePaymentStatus(ctx context.Context, intentID string, status Status, paymentStatus string) error
}
