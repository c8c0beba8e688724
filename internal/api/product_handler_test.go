package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuuti/storefront-api/internal/api/shared"
	"github.com/fuuti/storefront-api/internal/domain"
	"github.com/fuuti/storefront-api/internal/service"
)

func newProductHandlerWithMock(t *testing.T) (sqlmock.Sqlmock, *ProductHandler) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return mock, NewProductHandler(service.NewProductService(db))
}

func adminRequest(method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := context.WithValue(r.Context(), shared.UserContextKey, domain.User{
		ID:      1,
		IsAdmin: true,
		Status:  domain.UserStatusActive,
	})
	return r.WithContext(ctx)
}

func TestProductListDefaultPage(t *testing.T) {
	mock, h := newProductHandlerWithMock(t)

	mock.ExpectQuery("SELECT * FROM products ORDER BY created_at DESC LIMIT 5 OFFSET 0").
		WillReturnRows(productListingRows())

	r := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	w := httptest.NewRecorder()
	h.List(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Keyboard")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductListByName(t *testing.T) {
	mock, h := newProductHandlerWithMock(t)

	mock.ExpectQuery("SELECT * FROM products WHERE name = $1 ORDER BY created_at DESC LIMIT 10 OFFSET 10").
		WithArgs("Keyboard").
		WillReturnRows(productListingRows())

	r := httptest.NewRequest(http.MethodGet, "/api/v1/products?name=Keyboard&size=10&page=2", nil)
	w := httptest.NewRecorder()
	h.List(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductCreateRequiresAdmin(t *testing.T) {
	_, h := newProductHandlerWithMock(t)

	r := authenticatedRequest(http.MethodPost, "/api/v1/products",
		`{"name":"Keyboard","price":"45.00","description":"A keyboard","available_quantity":2}`)
	w := httptest.NewRecorder()
	h.Create(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProductCreate(t *testing.T) {
	mock, h := newProductHandlerWithMock(t)

	mock.ExpectQuery("INSERT INTO products (available_quantity, created_by, description, name, price) VALUES ($1, $2, $3, $4, $5) RETURNING *").
		WillReturnRows(productListingRows())

	r := adminRequest(http.MethodPost, "/api/v1/products",
		`{"name":"Keyboard","price":"45.00","description":"A keyboard","available_quantity":2}`)
	w := httptest.NewRecorder()
	h.Create(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
