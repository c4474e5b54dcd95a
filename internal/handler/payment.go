package handler

import (
	"encoding/json"
	"io"
	"net/http"
)

// maxWebhookBody bounds how much of a webhook payload is read before
// signature verification.
const maxWebhookBody = 1 << 20

func (h *Handler) createPaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount   json.Number       `json:"amount"`
		Currency string            `json:"currency"`
		Metadata map[string]string `json:"orderMetadata"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = "bgn"
	}

	intent, err := h.orders.CreateIntent(r.Context(), amount, currency, req.Metadata)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"intentId":     intent.ID,
		"clientSecret": intent.ClientSecret,
	})
}

func (h *Handler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IntentID string       `json:"intentId"`
		Order    orderFields  `json:"orderData"`
		Items    []itemFields `json:"items"`
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

	result, err := h.orders.ConfirmPayment(r.Context(), req.IntentID, draft, items)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toOrderResult(result))
}

// paymentWebhook verifies the processor's signature over the raw body before
// anything in the payload is trusted. A bad signature rejects the request
// with no side effects.
func (h *Handler) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	event, err := h.payments.ParseWebhookEvent(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	if err := h.orders.RecordPaymentEvent(r.Context(), event); err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"received": true})
}
