package econt

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/shipping"
)

func newCarrier() *Carrier {
	return New(Config{APIURL: "https://demo.econt.com", Username: "demo", Password: "demo"})
}

func TestPickupPoints_FiltersByCity(t *testing.T) {
	c := newCarrier()

	points, err := c.PickupPoints(context.Background(), "София")
	require.NoError(t, err)
	require.Len(t, points, 2)
	for _, p := range points {
		assert.Equal(t, "София", p.City)
	}
}

func TestPickupPoints_UnknownCityIsEmptyNotError(t *testing.T) {
	c := newCarrier()

	points, err := c.PickupPoints(context.Background(), "Брюксел")
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestQuote_Tiers(t *testing.T) {
	c := newCarrier()

	options, err := c.Quote(context.Background(), shipping.QuoteRequest{City: "София", WeightKg: 0.5})
	require.NoError(t, err)
	require.Len(t, options, 3)

	byType := map[shipping.DeliveryType]shipping.DeliveryOption{}
	for _, o := range options {
		byType[o.Type] = o
	}

	assert.True(t, decimal.RequireFromString("8.90").Equal(byType[shipping.DeliveryOffice].Price))
	assert.True(t, decimal.RequireFromString("11.90").Equal(byType[shipping.DeliveryHome].Price))
	assert.True(t, decimal.RequireFromString("16.90").Equal(byType[shipping.DeliveryExpress].Price))
}

func TestQuote_WeightSurcharge(t *testing.T) {
	c := newCarrier()

	options, err := c.Quote(context.Background(), shipping.QuoteRequest{City: "София", WeightKg: 3})
	require.NoError(t, err)

	// 8.90 base + 2 BGN per kg over the first.
	assert.True(t, decimal.RequireFromString("12.90").Equal(options[0].Price), "got %s", options[0].Price)
}

func TestQuote_CashOnDeliveryFee(t *testing.T) {
	c := newCarrier()

	// 1.5% of 400.00 = 6.00, above the floor.
	options, err := c.Quote(context.Background(), shipping.QuoteRequest{
		City:           "София",
		WeightKg:       0.5,
		CashOnDelivery: decimal.RequireFromString("400.00"),
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("14.90").Equal(options[0].Price), "got %s", options[0].Price)

	// 1.5% of 50.00 = 0.75, floored to 3.00.
	options, err = c.Quote(context.Background(), shipping.QuoteRequest{
		City:           "София",
		WeightKg:       0.5,
		CashOnDelivery: decimal.RequireFromString("50.00"),
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("11.90").Equal(options[0].Price), "got %s", options[0].Price)
}

func TestQuote_Deterministic(t *testing.T) {
	c := newCarrier()
	req := shipping.QuoteRequest{
		City:           "Пловдив",
		WeightKg:       2.5,
		CashOnDelivery: decimal.RequireFromString("150.00"),
	}

	first, err := c.Quote(context.Background(), req)
	require.NoError(t, err)
	second, err := c.Quote(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.True(t, first[i].Price.Equal(second[i].Price))
		assert.Equal(t, first[i].Description, second[i].Description)
	}
}

func TestCreateShipment(t *testing.T) {
	c := newCarrier()

	shipment, err := c.CreateShipment(context.Background(), shipping.ShipmentRequest{
		Sender:   shipping.Party{Name: "Имунофан ЕООД", City: "София", Address: "ул. Раковска 1"},
		Receiver: shipping.Party{Name: "Иван Иванов", City: "Пловдив", Address: "бул. Съединение 2"},
		WeightKg: 0.5,
	})
	require.NoError(t, err)
	assert.Regexp(t, `^EC\d+[0-9A-F]{4}$`, shipment.Number)
	assert.Contains(t, shipment.LabelURL, shipment.Number)
}

func TestCreateShipment_MissingReceiver(t *testing.T) {
	c := newCarrier()

	_, err := c.CreateShipment(context.Background(), shipping.ShipmentRequest{
		Sender: shipping.Party{Name: "Имунофан ЕООД", City: "София"},
	})
	require.Error(t, err)
}

func TestTrack_Deterministic(t *testing.T) {
	c := newCarrier()

	first, err := c.Track(context.Background(), "EC1700000000000ABCD")
	require.NoError(t, err)
	second, err := c.Track(context.Background(), "EC1700000000000ABCD")
	require.NoError(t, err)

	assert.Equal(t, first.Status, second.Status)
	assert.Len(t, second.Events, len(first.Events))
	assert.Equal(t, first.Status, first.Events[len(first.Events)-1].Status)
}

func TestValidateAddress(t *testing.T) {
	c := newCarrier()

	check, err := c.ValidateAddress(context.Background(), "София", "бул. Витоша 15")
	require.NoError(t, err)
	assert.True(t, check.Valid)

	check, err = c.ValidateAddress(context.Background(), "София", "кр.")
	require.NoError(t, err)
	assert.False(t, check.Valid, "too-short street is advisory-invalid")

	check, err = c.ValidateAddress(context.Background(), "Софиямол", "бул. Витоша 15")
	require.NoError(t, err)
	assert.True(t, check.Valid, "fuzzy containment match accepts close variants")
}
