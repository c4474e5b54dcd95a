package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a product does not exist.
var ErrNotFound = errors.New("product not found")

// Type identifies the pharmaceutical form of a product.
type Type string

const (
	TypeInjection   Type = "injection"
	TypeNasalSpray  Type = "nasal"
	TypeSuppository Type = "suppository"
	TypeTablet      Type = "tablet"
	TypeGel         Type = "gel"
	TypeDrops       Type = "drops"
	TypeKit         Type = "kit"
)

// Product is a catalog entry. Products are seeded by an administrator and
// immutable afterwards; there is no inventory decrement, only the InStock flag.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Type        Type
	Image       string
	Features    []string
	InStock     bool
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Product, error)
	Create(ctx context.Context, p *Product) error
}
