package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuuti/storefront-api/internal/domain"
	"github.com/fuuti/storefront-api/internal/store"
)

func newOrderServiceWithMock(t *testing.T) (sqlmock.Sqlmock, *OrderService, *store.Tx) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := NewOrderService(db)

	mock.ExpectBegin()
	tx, err := store.Begin(context.Background(), db, time.Minute)
	require.NoError(t, err)
	return mock, svc, tx
}

func testProduct(id int64, price string, available int64) domain.Product {
	return domain.Product{
		ID:                id,
		Name:              "Product " + decimal.NewFromInt(id).String(),
		Price:             decimal.RequireFromString(price),
		AvailableQuantity: available,
	}
}

func TestProcessOrderRequiresTransaction(t *testing.T) {
	_, svc, tx := newOrderServiceWithMock(t)
	defer func() { _ = tx.Rollback() }()

	_, err := svc.ProcessOrder(context.Background(),
		[]domain.Product{testProduct(1, "10.00", 5)},
		map[int64]int64{1: 1}, 7, nil)
	assert.Error(t, err)
}

func TestProcessOrderBatchedStockUpdate(t *testing.T) {
	mock, svc, tx := newOrderServiceWithMock(t)

	mock.ExpectExec("UPDATE products SET available_quantity = CASE id WHEN $1 THEN $2 WHEN $3 THEN $4 END WHERE id IN ($1, $3)").
		WithArgs(int64(1), int64(3), int64(2), int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectRollback()

	products := []domain.Product{
		testProduct(1, "10.00", 5),
		testProduct(2, "2.50", 4),
	}
	processed, err := svc.ProcessOrder(context.Background(), products,
		map[int64]int64{1: 2, 2: 4}, 7, tx)
	require.NoError(t, err)

	assert.True(t, processed.Amount.Equal(decimal.RequireFromString("30.00")),
		"amount was %s", processed.Amount)
	assert.Len(t, processed.Items, 2)
	assert.NotEmpty(t, processed.Code)

	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessOrderInsufficientStock(t *testing.T) {
	mock, svc, tx := newOrderServiceWithMock(t)
	mock.ExpectRollback()

	_, err := svc.ProcessOrder(context.Background(),
		[]domain.Product{testProduct(1, "10.00", 1)},
		map[int64]int64{1: 2}, 7, tx)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// Nothing was written before the failure.
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessOrderZeroQuantity(t *testing.T) {
	mock, svc, tx := newOrderServiceWithMock(t)
	mock.ExpectRollback()

	_, err := svc.ProcessOrder(context.Background(),
		[]domain.Product{testProduct(1, "10.00", 5)},
		map[int64]int64{}, 7, tx)
	assert.ErrorIs(t, err, ErrUnknownProduct)

	require.NoError(t, tx.Rollback())
}

func TestProcessOrderRowCountMismatch(t *testing.T) {
	mock, svc, tx := newOrderServiceWithMock(t)

	mock.ExpectExec("UPDATE products SET available_quantity = CASE id WHEN $1 THEN $2 END WHERE id IN ($1)").
		WithArgs(int64(1), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.ProcessOrder(context.Background(),
		[]domain.Product{testProduct(1, "10.00", 5)},
		map[int64]int64{1: 2}, 7, tx)
	assert.ErrorIs(t, err, store.ErrQueryFailed)

	require.NoError(t, tx.Rollback())
}

func productRows(products ...domain.Product) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "name", "price", "description", "available_quantity",
		"status", "created_by", "created_at",
	})
	for _, p := range products {
		rows.AddRow(p.ID, p.Name, p.Price.String(), p.Description,
			p.AvailableQuantity, domain.ProductStatusActive, int64(1), time.Now())
	}
	return rows
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	mock, svc, tx := newOrderServiceWithMock(t)

	mock.ExpectQuery("SELECT * FROM products WHERE id IN ($1, $2) ORDER BY created_at DESC").
		WithArgs(int64(1), int64(2)).
		WillReturnRows(productRows(testProduct(1, "10.00", 5)))
	mock.ExpectRollback()

	customer := domain.User{ID: 7, FirstName: "Ada", LastName: "Obi"}
	_, err := svc.PlaceOrder(context.Background(), customer,
		map[int64]int64{1: 1, 2: 1}, tx)
	assert.ErrorIs(t, err, ErrUnknownProduct)

	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderFullWorkflow(t *testing.T) {
	mock, svc, tx := newOrderServiceWithMock(t)

	mock.ExpectQuery("SELECT * FROM products WHERE id IN ($1, $2) ORDER BY created_at DESC").
		WithArgs(int64(1), int64(2)).
		WillReturnRows(productRows(
			testProduct(1, "10.00", 5),
			testProduct(2, "2.50", 4),
		))
	mock.ExpectExec("UPDATE products SET available_quantity = CASE id WHEN $1 THEN $2 WHEN $3 THEN $4 END WHERE id IN ($1, $3)").
		WithArgs(int64(1), int64(4), int64(2), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery("INSERT INTO orders (amount, code, customer_id, customer_name) VALUES ($1, $2, $3, $4) RETURNING *").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "code", "customer_name", "customer_id", "amount", "status", "created_at",
		}).AddRow(int64(1), "a-code", "Ada Obi", int64(7), "15.00", domain.OrderStatusCreated, time.Now()))
	mock.ExpectQuery("INSERT INTO order_products (customer_id, name, order_code, price, product_id, quantity) VALUES ($1, $2, $3, $4, $5, $6), ($7, $8, $9, $10, $11, $12) RETURNING *").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "price", "quantity", "order_code", "product_id", "customer_id", "created_at",
		}).
			AddRow(int64(1), "Product 1", "10.00", int64(1), "a-code", int64(1), int64(7), time.Now()).
			AddRow(int64(2), "Product 2", "2.50", int64(2), "a-code", int64(2), int64(7), time.Now()))
	mock.ExpectCommit()

	customer := domain.User{ID: 7, FirstName: "Ada", LastName: "Obi"}
	order, err := svc.PlaceOrder(context.Background(), customer,
		map[int64]int64{1: 1, 2: 2}, tx)
	require.NoError(t, err)
	assert.Equal(t, "Ada Obi", order.CustomerName)

	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderFailureAfterStockUpdateSurfacesError(t *testing.T) {
	mock, svc, tx := newOrderServiceWithMock(t)

	mock.ExpectQuery("SELECT * FROM products WHERE id IN ($1) ORDER BY created_at DESC").
		WithArgs(int64(1)).
		WillReturnRows(productRows(testProduct(1, "10.00", 5)))
	mock.ExpectExec("UPDATE products SET available_quantity = CASE id WHEN $1 THEN $2 END WHERE id IN ($1)").
		WithArgs(int64(1), int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO orders (amount, code, customer_id, customer_name) VALUES ($1, $2, $3, $4) RETURNING *").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	customer := domain.User{ID: 7, FirstName: "Ada", LastName: "Obi"}
	_, err := svc.PlaceOrder(context.Background(), customer, map[int64]int64{1: 1}, tx)
	require.Error(t, err)

	// The caller rolls back; the stock decrement never becomes visible.
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}
