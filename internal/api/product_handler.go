package api

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/fuuti/storefront-api/internal/api/middleware"
	"github.com/fuuti/storefront-api/internal/api/shared"
	"github.com/fuuti/storefront-api/internal/service"
)

// ProductHandler serves the catalog endpoints.
type ProductHandler struct {
	validate *validator.Validate
	products *service.ProductService
}

// NewProductHandler creates a ProductHandler.
func NewProductHandler(products *service.ProductService) *ProductHandler {
	return &ProductHandler{
		validate: validator.New(),
		products: products,
	}
}

// List handles GET /api/products. Query parameters: name (exact match),
// size and page.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	size := queryInt(r, "size", 0)
	page := queryInt(r, "page", 1)

	products, err := h.products.List(r.Context(), name, size, page)
	if err != nil {
		shared.FinalizeError(w, r, nil, http.StatusInternalServerError, "Unable to list products", err)
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, products)
}

// Create handles POST /api/products. Admin only.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	if !user.IsAdmin {
		shared.RespondWithError(w, r, http.StatusForbidden, "Admin access required")
		return
	}

	var req CreateProductRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	product, err := h.products.Create(r.Context(), req.Name, req.Price, req.Description, req.AvailableQuantity, user.ID)
	if err != nil {
		shared.FinalizeError(w, r, nil, http.StatusInternalServerError, "Unable to create product", err)
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusCreated, product)
}

// queryInt parses an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
