// Package handler exposes the HTTP API. Handlers decode requests, delegate to
// the domain services, and map domain errors to status codes in respond.go.
package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/auth"
	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/order"
	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/payment"
	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/product"
	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/seo"
	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/shipping"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// SenderName and SenderCity identify the shop as the shipment sender.
	SenderName    string
	SenderCity    string
	SenderAddress string
	SenderPhone   string
}

// Handler wires the HTTP surface to the domain services.
type Handler struct {
	cfg      Config
	products product.Repository
	orders   *order.Service
	payments payment.Gateway
	auth     *auth.Service
	carrier  shipping.Carrier
	seo      *seo.Service
}

// New constructs a Handler with the required domain dependencies.
func New(
	cfg Config,
	products product.Repository,
	orders *order.Service,
	payments payment.Gateway,
	authService *auth.Service,
	carrier shipping.Carrier,
	seoService *seo.Service,
) *Handler {
	return &Handler{
		cfg:      cfg,
		products: products,
		orders:   orders,
		payments: payments,
		auth:     authService,
		carrier:  carrier,
		seo:      seoService,
	}
}

// Routes registers all API routes on the router.
func (h *Handler) Routes(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/products", h.listProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", h.getProduct).Methods(http.MethodGet)

	api.HandleFunc("/orders", h.createOrder).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}", h.getOrder).Methods(http.MethodGet)

	api.HandleFunc("/payments/intent", h.createPaymentIntent).Methods(http.MethodPost)
	api.HandleFunc("/payments/confirm", h.confirmPayment).Methods(http.MethodPost)
	api.HandleFunc("/payments/webhook", h.paymentWebhook).Methods(http.MethodPost)

	api.HandleFunc("/shipping/pickup-points/{city}", h.pickupPoints).Methods(http.MethodGet)
	api.HandleFunc("/shipping/quote", h.shippingQuote).Methods(http.MethodPost)
	api.HandleFunc("/shipping/shipment", h.createShipment).Methods(http.MethodPost)
	api.HandleFunc("/shipping/track/{id}", h.trackShipment).Methods(http.MethodGet)
	api.HandleFunc("/shipping/validate-address", h.validateAddress).Methods(http.MethodPost)

	api.HandleFunc("/admin/login", h.adminLogin).Methods(http.MethodPost)
	api.HandleFunc("/admin/logout", h.adminLogout).Methods(http.MethodPost)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(h.requireAdmin)
	admin.HandleFunc("/me", h.adminMe).Methods(http.MethodGet)
	admin.HandleFunc("/seo/keywords", h.listKeywords).Methods(http.MethodGet)
	admin.HandleFunc("/seo/keywords", h.uploadKeywords).Methods(http.MethodPost)
	admin.HandleFunc("/seo/pages", h.listPages).Methods(http.MethodGet)
	admin.HandleFunc("/seo/generate", h.generatePage).Methods(http.MethodPost)
	admin.HandleFunc("/seo/pages/{id}/publish", h.publishPage).Methods(http.MethodPost)
	admin.HandleFunc("/seo/settings", h.getSettings).Methods(http.MethodGet)
	admin.HandleFunc("/seo/settings", h.updateSettings).Methods(http.MethodPut)

	api.HandleFunc("/seo/pages/{slug}", h.publicPage).Methods(http.MethodGet)
}
