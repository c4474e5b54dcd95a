package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (
			customer_name, customer_email, customer_phone, address, city, postal_code,
			total, status, payment_method, payment_intent_id, payment_status,
			delivery_type, delivery_price, pickup_point_id, pickup_point_name, delivery_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at`

	createOrderItemSQL = `INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	getOrderByIDSQL = `SELECT id, customer_name, customer_email, customer_phone, address, city, postal_code,
			total, status, payment_method, payment_intent_id, payment_status,
			delivery_type, delivery_price, pickup_point_id, pickup_point_name,
			tracking_number, delivery_status, created_at
		FROM orders WHERE id = $1`

	getOrderItemsSQL = `SELECT id, order_id, product_id, quantity, price
		FROM order_items WHERE order_id = $1 ORDER BY id`

	findOrderByIntentSQL = `SELECT id, customer_name, customer_email, customer_phone, address, city, postal_code,
			total, status, payment_method, payment_intent_id, payment_status,
			delivery_type, delivery_price, pickup_point_id, pickup_point_name,
			tracking_number, delivery_status, created_at
		FROM orders WHERE payment_intent_id = $1`

	updateOrderShipmentSQL = `UPDATE orders
		SET tracking_number = $2, delivery_status = $3
		WHERE id = $1`

	updateOrderPaymentSQL = `UPDATE orders
		SET status = $2, payment_status = $3
		WHERE payment_intent_id = $1`
)

// paymentIntentUniqueConstraint guards one-order-per-charge at the database
// level; a violation surfaces as order.ErrDuplicatePayment.
const paymentIntentUniqueConstraint = "orders_payment_intent_id_key"

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// CreateWithItems persists the order and its items in one transaction, so a
// failure at any point leaves no partial order behind. The order and item IDs
// are filled in on success.
func (r *OrderRepository) CreateWithItems(ctx context.Context, o *order.Order, items []order.Item) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	err = tx.QueryRow(ctx, createOrderSQL,
		o.CustomerName, o.CustomerEmail, o.CustomerPhone, o.Address, o.City, o.PostalCode,
		o.Total, o.Status, o.PaymentMethod, nullIfEmpty(o.PaymentIntentID), o.PaymentStatus,
		o.DeliveryType, o.DeliveryPrice, o.PickupPointID, o.PickupPointName, o.DeliveryStatus,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, paymentIntentUniqueConstraint) {
			return order.ErrDuplicatePayment
		}
		return fmt.Errorf("creating order: %w", err)
	}

	for i := range items {
		items[i].OrderID = o.ID
		err = tx.QueryRow(ctx, createOrderItemSQL,
			items[i].OrderID, items[i].ProductID, items[i].Quantity, items[i].Price,
		).Scan(&items[i].ID)
		if err != nil {
			return fmt.Errorf("creating order item for product %d: %w", items[i].ProductID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order: %w", err)
	}
	return nil
}

// GetByID returns an order together with its items.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, []order.Item, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, order.ErrNotFound
		}
		return nil, nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	itemRows, err := r.pool.Query(ctx, getOrderItemsSQL, id)
	if err != nil {
		return nil, nil, fmt.Errorf("getting items for order %d: %w", id, err)
	}
	items, err := pgx.CollectRows(itemRows, scanOrderItem)
	if err != nil {
		return nil, nil, fmt.Errorf("getting items for order %d: %w", id, err)
	}

	return &o, items, nil
}

// FindByPaymentIntent returns the order referencing the given payment intent.
func (r *OrderRepository) FindByPaymentIntent(ctx context.Context, intentID string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, findOrderByIntentSQL, intentID)
	if err != nil {
		return nil, fmt.Errorf("finding order by intent %q: %w", intentID, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("finding order by intent %q: %w", intentID, err)
	}
	return &o, nil
}

// UpdateShipment records the carrier tracking number and delivery state.
func (r *OrderRepository) UpdateShipment(ctx context.Context, id int64, trackingNumber string, status order.DeliveryStatus) error {
	tag, err := r.pool.Exec(ctx, updateOrderShipmentSQL, id, trackingNumber, status)
	if err != nil {
		return fmt.Errorf("updating shipment for order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// UpdatePaymentStatus moves the order referencing the intent to a new status,
// keeping the raw processor status alongside for diagnostics.
func (r *OrderRepository) UpdatePaymentStatus(ctx context.Context, intentID string, status order.Status, paymentStatus string) error {
	tag, err := r.pool.Exec(ctx, updateOrderPaymentSQL, intentID, status, paymentStatus)
	if err != nil {
		return fmt.Errorf("updating payment status for intent %q: %w", intentID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o        order.Order
		intentID *string
	)
	err := row.Scan(
		&o.ID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.Address, &o.City, &o.PostalCode,
		&o.Total, &o.Status, &o.PaymentMethod, &intentID, &o.PaymentStatus,
		&o.DeliveryType, &o.DeliveryPrice, &o.PickupPointID, &o.PickupPointName,
		&o.TrackingNumber, &o.DeliveryStatus, &o.CreatedAt,
	)
	if intentID != nil {
		o.PaymentIntentID = *intentID
	}
	return o, err
}

func scanOrderItem(row pgx.CollectableRow) (order.Item, error) {
	var it order.Item
	err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price)
	return it, err
}

// nullIfEmpty maps an absent intent reference to NULL so the unique index
// only constrains real references.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}
