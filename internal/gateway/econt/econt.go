// Package econt implements shipping.Carrier against the Econt courier
// service. Price quotes, office lists, and tracking are currently computed
// locally from the published tariff so the rest of the system can be built
// against the real contract.
//
// TODO: replace the local computations with live Econt API calls once
// production credentials are provisioned.
package econt

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/shipping"
)

var _ shipping.Carrier = (*Carrier)(nil)

// Tariff constants in BGN, matching the published Econt price list.
var (
	basePrice       = decimal.RequireFromString("8.90")
	perExtraKg      = decimal.RequireFromString("2.00")
	homeSurcharge   = decimal.RequireFromString("3.00")
	expressSurcharg = decimal.RequireFromString("8.00")

	// Cash-on-delivery fee: 1.5% of the collected amount, 3 BGN minimum.
	codRate  = decimal.RequireFromString("0.015")
	codFloor = decimal.RequireFromString("3.00")
)

// Config holds the carrier API connection settings. The demo endpoint and
// credentials are development fallbacks and must not be used in production.
type Config struct {
	APIURL   string
	Username string
	Password string
}

// Carrier is the Econt implementation of shipping.Carrier.
type Carrier struct {
	cfg Config
	now func() time.Time
}

// New creates an Econt Carrier.
func New(cfg Config) *Carrier {
	return &Carrier{
		cfg: cfg,
		now: time.Now,
	}
}

var offices = []shipping.PickupPoint{
	{
		ID:          "SOF001",
		Name:        "Еконт офис София Център",
		Address:     "бул. Витоша 15",
		City:        "София",
		PostCode:    "1000",
		Phone:       "0700 10 500",
		WorkingTime: "Пон-Пет: 8:00-18:00, Съб: 9:00-17:00",
	},
	{
		ID:          "SOF002",
		Name:        "Еконт офис София Люлин",
		Address:     "бул. Царица Йоана 47",
		City:        "София",
		PostCode:    "1336",
		Phone:       "0700 10 500",
		WorkingTime: "Пон-Пет: 8:00-18:00, Съб: 9:00-17:00",
	},
	{
		ID:          "PLV001",
		Name:        "Еконт офис Пловдив Център",
		Address:     "бул. Съединение 2",
		City:        "Пловдив",
		PostCode:    "4000",
		Phone:       "0700 10 500",
		WorkingTime: "Пон-Пет: 8:00-18:00, Съб: 9:00-17:00",
	},
	{
		ID:          "VAR001",
		Name:        "Еконт офис Варна Център",
		Address:     "бул. Христо Ботев 12",
		City:        "Варна",
		PostCode:    "9000",
		Phone:       "0700 10 500",
		WorkingTime: "Пон-Пет: 8:00-18:00, Съб: 9:00-17:00",
	},
}

var serviceCities = []string{
	"София", "Пловдив", "Варна", "Бургас", "Русе", "Стара Загора", "Плевен", "Благоевград",
}

// PickupPoints returns the offices in the given city. A city without offices
// yields an empty slice, not an error.
func (c *Carrier) PickupPoints(_ context.Context, city string) ([]shipping.PickupPoint, error) {
	matched := make([]shipping.PickupPoint, 0, 2)
	for _, o := range offices {
		if strings.EqualFold(o.City, city) {
			matched = append(matched, o)
		}
	}
	return matched, nil
}

// Quote computes the tiered delivery options for a destination. The result is
// deterministic for identical inputs.
func (c *Carrier) Quote(_ context.Context, req shipping.QuoteRequest) ([]shipping.DeliveryOption, error) {
	base := basePrice
	if req.WeightKg > 1 {
		extra := decimal.NewFromFloat(req.WeightKg - 1).Mul(perExtraKg)
		base = base.Add(extra)
	}

	options := []shipping.DeliveryOption{
		{
			ID:           "office",
			Name:         "До офис на Еконт",
			Price:        base,
			DeliveryDays: "1-2 работни дни",
			Type:         shipping.DeliveryOffice,
			Description:  "Получаване от офис на Еконт във вашия град",
		},
		{
			ID:           "home",
			Name:         "До адрес",
			Price:        base.Add(homeSurcharge),
			DeliveryDays: "1-3 работни дни",
			Type:         shipping.DeliveryHome,
			Description:  "Доставка директно до вашия адрес",
		},
		{
			ID:           "fast",
			Name:         "Бърза доставка",
			Price:        base.Add(expressSurcharg),
			DeliveryDays: "до края на работния ден",
			Type:         shipping.DeliveryExpress,
			Description:  "Експресна доставка до адрес до края на деня",
		},
	}

	if req.CashOnDelivery.IsPositive() {
		fee := req.CashOnDelivery.Mul(codRate)
		if fee.LessThan(codFloor) {
			fee = codFloor
		}
		fee = fee.Round(2)
		for i := range options {
			options[i].Price = options[i].Price.Add(fee)
			options[i].Description += fmt.Sprintf(" (вкл. такса наложен платеж: %s лв.)", fee.StringFixed(2))
		}
	}

	for i := range options {
		options[i].Price = options[i].Price.Round(2)
	}
	return options, nil
}

// CreateShipment registers a shipment and returns its number and label
// reference. Failure here never invalidates an already-persisted order.
func (c *Carrier) CreateShipment(_ context.Context, req shipping.ShipmentRequest) (*shipping.Shipment, error) {
	if req.Receiver.Name == "" || req.Receiver.City == "" {
		return nil, fmt.Errorf("receiver name and city are required")
	}

	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:4])
	number := fmt.Sprintf("EC%d%s", c.now().UnixMilli(), suffix)

	return &shipping.Shipment{
		Number:   number,
		LabelURL: "/api/shipping/label/" + number,
	}, nil
}

// trackingStages is the ordered lifecycle a parcel moves through.
var trackingStages = []string{
	"Приета за обработка",
	"В транзит",
	"В офис за получаване",
	"Доставена",
}

// Track reports the current state of a shipment. The stage is derived from a
// hash of the shipment number so repeated reads agree.
func (c *Carrier) Track(_ context.Context, shipmentNumber string) (*shipping.TrackingInfo, error) {
	if shipmentNumber == "" {
		return nil, fmt.Errorf("shipment number is required")
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(shipmentNumber))
	stage := int(h.Sum32() % uint32(len(trackingStages)))

	now := c.now()
	events := make([]shipping.TrackingEvent, 0, stage+1)
	for i := 0; i <= stage; i++ {
		events = append(events, shipping.TrackingEvent{
			Date:     now.Add(-time.Duration(stage-i) * 24 * time.Hour),
			Status:   trackingStages[i],
			Location: "София",
		})
	}

	return &shipping.TrackingInfo{
		ShipmentNumber: shipmentNumber,
		Status:         trackingStages[stage],
		LastUpdate:     now,
		Events:         events,
	}, nil
}

// ValidateAddress is an advisory check against the serviced cities. It never
// blocks order creation.
func (c *Carrier) ValidateAddress(_ context.Context, city, street string) (*shipping.AddressCheck, error) {
	cityLower := strings.ToLower(city)

	valid := false
	for _, known := range serviceCities {
		knownLower := strings.ToLower(known)
		if strings.Contains(knownLower, cityLower) || strings.Contains(cityLower, knownLower) {
			valid = true
			break
		}
	}

	check := &shipping.AddressCheck{Valid: valid && len(street) > 5}
	if !valid {
		// Prefix match on runes, not bytes: city names are Cyrillic.
		runes := []rune(cityLower)
		if len(runes) >= 3 {
			prefix := string(runes[:3])
			for _, known := range serviceCities {
				if strings.Contains(strings.ToLower(known), prefix) {
					check.Suggestions = append(check.Suggestions, known)
				}
			}
		}
	}
	return check, nil
}
