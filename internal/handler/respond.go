package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/auth"
	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/order"
	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/payment"
	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/product"
	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/seo"
)

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Code: status, Message: message})
}

// respondDomainError maps domain errors onto the API's status codes. Anything
// unmapped is a storage or programming failure: logged and surfaced as an
// opaque 500 so no internal detail leaks.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, order.ErrEmptyItems),
		errors.Is(err, order.ErrInvalidAmount),
		errors.Is(err, order.ErrCardNotConfirmed):
		respondError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, order.ErrDuplicatePayment):
		respondError(w, http.StatusConflict, err.Error())

	case errors.Is(err, payment.ErrBadSignature):
		respondError(w, http.StatusBadRequest, "invalid signature")

	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, seo.ErrNotFound),
		errors.Is(err, auth.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")

	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, "unauthorized")

	case errors.Is(err, seo.ErrDuplicateKeyword):
		respondError(w, http.StatusConflict, err.Error())

	case errors.Is(err, seo.ErrDailyLimitReached):
		respondError(w, http.StatusTooManyRequests, err.Error())

	default:
		var (
			iqErr  *order.InvalidQuantityError
			pnfErr *order.ProductNotFoundError
			idErr  *order.InvalidDraftError
			pnsErr *order.PaymentNotSucceededError
		)
		switch {
		case errors.As(err, &iqErr), errors.As(err, &pnfErr), errors.As(err, &idErr):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &pnsErr):
			respondError(w, http.StatusBadRequest, pnsErr.Error())
		default:
			zctx.From(r.Context()).Error("Request failed", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "internal error")
		}
	}
}
