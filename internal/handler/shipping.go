package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/shipping"
)

type pickupPointView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PostCode    string `json:"postCode"`
	Phone       string `json:"phone"`
	WorkingTime string `json:"workingTime"`
}

type deliveryOptionView struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	DeliveryDays string  `json:"deliveryDays"`
	Type         string  `json:"type"`
	Description  string  `json:"description"`
}

func (h *Handler) pickupPoints(w http.ResponseWriter, r *http.Request) {
	points, err := h.carrier.PickupPoints(r.Context(), mux.Vars(r)["city"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "carrier unavailable, please try again")
		return
	}

	views := make([]pickupPointView, len(points))
	for i, p := range points {
		views[i] = pickupPointView{
			ID:          p.ID,
			Name:        p.Name,
			Address:     p.Address,
			City:        p.City,
			PostCode:    p.PostCode,
			Phone:       p.Phone,
			WorkingTime: p.WorkingTime,
		}
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *Handler) shippingQuote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		City           string      `json:"city"`
		WeightKg       float64     `json:"weightKg"`
		CashOnDelivery json.Number `json:"cashOnDelivery"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cod, err := parseAmount(req.CashOnDelivery)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	options, err := h.carrier.Quote(r.Context(), shipping.QuoteRequest{
		City:           req.City,
		WeightKg:       req.WeightKg,
		CashOnDelivery: cod,
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, "carrier unavailable, please try again")
		return
	}

	views := make([]deliveryOptionView, len(options))
	for i, o := range options {
		views[i] = deliveryOptionView{
			ID:           o.ID,
			Name:         o.Name,
			Price:        o.Price.InexactFloat64(),
			DeliveryDays: o.DeliveryDays,
			Type:         string(o.Type),
			Description:  o.Description,
		}
	}
	respondJSON(w, http.StatusOK, views)
}

// createShipment registers the parcel with the carrier and, when an order id
// is supplied, attaches the tracking number to it. Attachment is best-effort:
// the order already exists in a success state and a failed update only logs.
func (h *Handler) createShipment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID         int64       `json:"orderId"`
		Receiver        partyFields `json:"receiver"`
		WeightKg        float64     `json:"weightKg"`
		Description     string      `json:"description"`
		CashOnDelivery  json.Number `json:"cashOnDelivery"`
		PickupPointCode string      `json:"pickupPointCode"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cod, err := parseAmount(req.CashOnDelivery)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	shipment, err := h.carrier.CreateShipment(r.Context(), shipping.ShipmentRequest{
		Sender: shipping.Party{
			Name:    h.cfg.SenderName,
			Phone:   h.cfg.SenderPhone,
			City:    h.cfg.SenderCity,
			Address: h.cfg.SenderAddress,
		},
		Receiver:        req.Receiver.toParty(),
		WeightKg:        req.WeightKg,
		Description:     req.Description,
		CashOnDelivery:  cod,
		PickupPointCode: req.PickupPointCode,
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, "carrier unavailable, please try again")
		return
	}

	if req.OrderID > 0 {
		if err := h.orders.AttachShipment(r.Context(), req.OrderID, shipment.Number); err != nil {
			zctx.From(r.Context()).Warn("Attaching shipment to order failed",
				zap.Int64("order_id", req.OrderID),
				zap.String("shipment_number", shipment.Number),
				zap.Error(err),
			)
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"shipmentNumber": shipment.Number,
		"labelUrl":       shipment.LabelURL,
	})
}

func (h *Handler) trackShipment(w http.ResponseWriter, r *http.Request) {
	info, err := h.carrier.Track(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "carrier unavailable, please try again")
		return
	}

	type eventView struct {
		Date     time.Time `json:"date"`
		Status   string    `json:"status"`
		Location string    `json:"location"`
	}
	events := make([]eventView, len(info.Events))
	for i, e := range info.Events {
		events[i] = eventView{Date: e.Date, Status: e.Status, Location: e.Location}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"shipmentNumber": info.ShipmentNumber,
		"status":         info.Status,
		"lastUpdate":     info.LastUpdate,
		"events":         events,
	})
}

func (h *Handler) validateAddress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		City   string `json:"city"`
		Street string `json:"street"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	check, err := h.carrier.ValidateAddress(r.Context(), req.City, req.Street)
	if err != nil {
		respondError(w, http.StatusBadRequest, "carrier unavailable, please try again")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"valid":       check.Valid,
		"suggestions": check.Suggestions,
	})
}

type partyFields struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
	Address string `json:"address"`
}

func (f partyFields) toParty() shipping.Party {
	return shipping.Party{Name: f.Name, Phone: f.Phone, City: f.City, Address: f.Address}
}
