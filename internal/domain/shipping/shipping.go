// Package shipping defines the carrier contract used at checkout and after
// order creation. The current Econt implementation in internal/gateway/econt
// computes everything locally; the interface is the durable part.
package shipping

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryType distinguishes the tiered delivery options.
type DeliveryType string

const (
	DeliveryOffice  DeliveryType = "office"
	DeliveryHome    DeliveryType = "home"
	DeliveryExpress DeliveryType = "fast"
)

// PickupPoint is a carrier-operated location where a parcel can be collected.
type PickupPoint struct {
	ID          string
	Name        string
	Address     string
	City        string
	PostCode    string
	Phone       string
	WorkingTime string
}

// DeliveryOption is a priced delivery tier produced per quote request.
// Options are transient and never persisted.
type DeliveryOption struct {
	ID           string
	Name         string
	Price        decimal.Decimal
	DeliveryDays string
	Type         DeliveryType
	Description  string
}

// QuoteRequest carries the inputs for a shipping price calculation.
// CashOnDelivery is the amount the courier collects; zero means prepaid.
type QuoteRequest struct {
	City           string
	WeightKg       float64
	CashOnDelivery decimal.Decimal
}

// Party identifies one side of a shipment.
type Party struct {
	Name    string
	Phone   string
	City    string
	Address string
}

// ShipmentRequest carries everything needed to create a shipment label.
type ShipmentRequest struct {
	Sender          Party
	Receiver        Party
	WeightKg        float64
	Description     string
	CashOnDelivery  decimal.Decimal
	PickupPointCode string
}

// Shipment is the carrier's record of a created shipment.
type Shipment struct {
	Number   string
	LabelURL string
}

// TrackingEvent is one entry in a shipment's movement history.
type TrackingEvent struct {
	Date     time.Time
	Status   string
	Location string
}

// TrackingInfo is the current state of a shipment.
type TrackingInfo struct {
	ShipmentNumber string
	Status         string
	LastUpdate     time.Time
	Events         []TrackingEvent
}

// AddressCheck is the advisory result of address validation. It never blocks
// order creation on its own.
type AddressCheck struct {
	Valid       bool
	Suggestions []string
}

// Carrier wraps the shipping provider.
//
// PickupPoints returns an empty slice, not an error, for cities with no
// offices. Quote is deterministic for identical inputs. CreateShipment is
// called only after an order exists in a success state; its failure must not
// invalidate the order.
type Carrier interface {
	PickupPoints(ctx context.Context, city string) ([]PickupPoint, error)
	Quote(ctx context.Context, req QuoteRequest) ([]DeliveryOption, error)
	CreateShipment(ctx context.Context, req ShipmentRequest) (*Shipment, error)
	Track(ctx context.Context, shipmentNumber string) (*TrackingInfo, error)
	ValidateAddress(ctx context.Context, city, street string) (*AddressCheck, error)
}
