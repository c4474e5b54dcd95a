package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/order"
	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/shipping"
)

// orderFields mirrors the checkout form. Amounts come in as JSON numbers and
// are parsed to decimal from their literal text, never through float64.
type orderFields struct {
	CustomerName    string      `json:"customerName"`
	CustomerEmail   string      `json:"customerEmail"`
	CustomerPhone   string      `json:"customerPhone"`
	Address         string      `json:"address"`
	City            string      `json:"city"`
	PostalCode      string      `json:"postalCode"`
	PaymentMethod   string      `json:"paymentMethod"`
	DeliveryType    string      `json:"deliveryType"`
	DeliveryPrice   json.Number `json:"deliveryPrice"`
	PickupPointID   string      `json:"pickupPointId"`
	PickupPointName string      `json:"pickupPointName"`
}

type itemFields struct {
	ProductID int64       `json:"productId"`
	Quantity  int32       `json:"quantity"`
	Price     json.Number `json:"price"`
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	return dec.Decode(v)
}

func parseAmount(n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(n.String())
}

func (f orderFields) toDraft() (order.Draft, error) {
	deliveryPrice, err := parseAmount(f.DeliveryPrice)
	if err != nil {
		return order.Draft{}, err
	}
	return order.Draft{
		CustomerName:    f.CustomerName,
		CustomerEmail:   f.CustomerEmail,
		CustomerPhone:   f.CustomerPhone,
		Address:         f.Address,
		City:            f.City,
		PostalCode:      f.PostalCode,
		PaymentMethod:   order.PaymentMethod(f.PaymentMethod),
		DeliveryType:    shipping.DeliveryType(f.DeliveryType),
		DeliveryPrice:   deliveryPrice,
		PickupPointID:   f.PickupPointID,
		PickupPointName: f.PickupPointName,
	}, nil
}

func toItemInputs(items []itemFields) ([]order.ItemInput, error) {
	out := make([]order.ItemInput, len(items))
	for i, it := range items {
		price, err := parseAmount(it.Price)
		if err != nil {
			return nil, err
		}
		out[i] = order.ItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     price,
		}
	}
	return out, nil
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Order orderFields  `json:"order"`
		Items []itemFields `json:"items"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft, err := req.Order.toDraft()
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	items, err := toItemInputs(req.Items)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid item price")
		return
	}

	result, err := h.orders.CreateOrder(r.Context(), draft, items)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toOrderResult(result))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	result, err := h.orders.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResult(result))
}
