package api

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/fuuti/storefront-api/internal/api/middleware"
	"github.com/fuuti/storefront-api/internal/api/shared"
	"github.com/fuuti/storefront-api/internal/service"
	"github.com/fuuti/storefront-api/internal/store"
)

// OrderHandler serves the order endpoints.
type OrderHandler struct {
	db        *sql.DB
	txTimeout time.Duration
	validate  *validator.Validate
	orders    *service.OrderService
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(db *sql.DB, txTimeout time.Duration, orders *service.OrderService) *OrderHandler {
	return &OrderHandler{
		db:        db,
		txTimeout: txTimeout,
		validate:  validator.New(),
		orders:    orders,
	}
}

// Create handles POST /api/orders. The whole placement runs in one
// transaction; any failure leaves stock untouched.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateOrderRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	// Duplicate lines for the same product collapse into one quantity.
	quantities := make(map[int64]int64, len(req.Items))
	for _, item := range req.Items {
		quantities[item.Product] += item.Quantity
	}

	tx, err := store.Begin(r.Context(), h.db, h.txTimeout)
	if err != nil {
		shared.FinalizeError(w, r, nil, http.StatusServiceUnavailable, "Service temporarily unavailable", err)
		return
	}

	order, err := h.orders.PlaceOrder(r.Context(), user, quantities, tx)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInsufficientStock):
			shared.FinalizeError(w, r, tx, http.StatusBadRequest, "Insufficient stock for one or more products", err)
		case errors.Is(err, service.ErrUnknownProduct):
			shared.FinalizeError(w, r, tx, http.StatusBadRequest, "One or more products do not exist", err)
		default:
			shared.FinalizeError(w, r, tx, http.StatusInternalServerError, "Unable to place order", err)
		}
		return
	}

	shared.FinalizeSuccess(w, r, tx, http.StatusCreated, order)
}

// List handles GET /api/orders. Query parameters: startAmount and
// endAmount (both required for the range filter to apply), sort (asc or
// desc by amount) and page.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r); !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var startAmount, endAmount *decimal.Decimal
	if raw := r.URL.Query().Get("startAmount"); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid startAmount")
			return
		}
		startAmount = &amount
	}
	if raw := r.URL.Query().Get("endAmount"); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid endAmount")
			return
		}
		endAmount = &amount
	}

	ascending := r.URL.Query().Get("sort") == "asc"
	page := queryInt(r, "page", 1)

	orders, err := h.orders.List(r.Context(), startAmount, endAmount, ascending, page)
	if err != nil {
		shared.FinalizeError(w, r, nil, http.StatusInternalServerError, "Unable to list orders", err)
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, orders)
}
