package service

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fuuti/storefront-api/internal/domain"
	"github.com/fuuti/storefront-api/internal/platform/postgres"
	"github.com/fuuti/storefront-api/internal/store"
)

// OrderService runs the order placement workflow. The whole sequence —
// stock decrement, order header, line items — shares one transaction handle
// so a failure at any step leaves stock untouched.
type OrderService struct {
	orders    *postgres.Repository[domain.Order]
	lineItems *postgres.Repository[domain.OrderProduct]
	products  *postgres.Repository[domain.Product]
}

// NewOrderService creates an OrderService over the given pool.
func NewOrderService(db *sql.DB) *OrderService {
	return &OrderService{
		orders:    postgres.NewRepository[domain.Order](db, domain.OrderTable),
		lineItems: postgres.NewRepository[domain.OrderProduct](db, domain.OrderProductTable),
		products:  postgres.NewRepository[domain.Product](db, domain.ProductTable),
	}
}

// ProcessedOrder is the result of the stock-decrement step: the generated
// order code, the accumulated total, and the line-item payloads the caller
// still has to insert (together with the order header) before committing.
type ProcessedOrder struct {
	Code   string
	Amount decimal.Decimal
	Items  []store.Payload
}

// ProcessOrder computes line amounts and remaining stock for every ordered
// product and applies one batched stock update through the caller's open
// transaction handle. A line requesting more units than available fails with
// ErrInsufficientStock before anything is written.
func (s *OrderService) ProcessOrder(
	ctx context.Context,
	products []domain.Product,
	quantities map[int64]int64,
	customerID int64,
	tx *store.Tx,
) (*ProcessedOrder, error) {
	if tx == nil {
		return nil, fmt.Errorf("order processing requires an open transaction")
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("%w: no products to order", ErrUnknownProduct)
	}

	orderCode := uuid.NewString()
	amount := decimal.Zero
	items := make([]store.Payload, 0, len(products))

	// One CASE expression updates every affected row in a single statement.
	// Ids and remaining quantities travel through the argument list; the id
	// placeholders are reused by the IN clause.
	var whens []string
	var inParams []string
	args := make([]any, 0, 2*len(products))

	for _, product := range products {
		qty := quantities[product.ID]
		if qty <= 0 {
			return nil, fmt.Errorf("%w: product %d has no requested quantity", ErrUnknownProduct, product.ID)
		}

		remaining := product.AvailableQuantity - qty
		if remaining < 0 {
			return nil, fmt.Errorf(
				"%w: product %d has %d available, %d requested",
				ErrInsufficientStock, product.ID, product.AvailableQuantity, qty,
			)
		}

		lineAmount := product.Price.Mul(decimal.NewFromInt(qty))
		amount = amount.Add(lineAmount)
		items = append(items, store.Payload{
			"name":        product.Name,
			"price":       product.Price,
			"quantity":    qty,
			"order_code":  orderCode,
			"product_id":  product.ID,
			"customer_id": customerID,
		})

		idParam := "$" + strconv.Itoa(len(args)+1)
		qtyParam := "$" + strconv.Itoa(len(args)+2)
		whens = append(whens, "WHEN "+idParam+" THEN "+qtyParam)
		inParams = append(inParams, idParam)
		args = append(args, product.ID, remaining)
	}

	query := fmt.Sprintf(
		"UPDATE %s SET available_quantity = CASE id %s END WHERE id IN (%s)",
		domain.ProductTable,
		strings.Join(whens, " "),
		strings.Join(inParams, ", "),
	)

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected != int64(len(products)) {
		return nil, fmt.Errorf("%w: stock update touched %d of %d products",
			store.ErrQueryFailed, affected, len(products))
	}

	return &ProcessedOrder{Code: orderCode, Amount: amount, Items: items}, nil
}

// PlaceOrder runs the full placement workflow inside the caller's
// transaction: load the ordered products, decrement stock, insert the order
// header and bulk-insert the line items. The caller finalizes the handle.
func (s *OrderService) PlaceOrder(
	ctx context.Context,
	customer domain.User,
	quantities map[int64]int64,
	tx *store.Tx,
) (*domain.Order, error) {
	ids := make([]int64, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: empty order", ErrUnknownProduct)
	}

	params := make([]string, 0, len(ids))
	values := make([]any, 0, len(ids))
	for i, id := range ids {
		params = append(params, "$"+strconv.Itoa(i+1))
		values = append(values, id)
	}

	products, err := s.products.Find(ctx, postgres.FindOptions{
		Filter: &store.Query{
			Condition: "id IN (" + strings.Join(params, ", ") + ")",
			Values:    values,
		},
		Unpaged: true,
	}, tx)
	if err != nil {
		return nil, err
	}
	if len(products) != len(ids) {
		return nil, fmt.Errorf("%w: %d of %d products found", ErrUnknownProduct, len(products), len(ids))
	}

	processed, err := s.ProcessOrder(ctx, products, quantities, customer.ID, tx)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.Save(ctx, store.Payload{
		"code":          processed.Code,
		"customer_name": customer.FullName(),
		"customer_id":   customer.ID,
		"amount":        processed.Amount,
	}, tx)
	if err != nil {
		return nil, fmt.Errorf("saving order header: %w", err)
	}

	if _, err := s.lineItems.SaveMany(ctx, processed.Items, tx); err != nil {
		return nil, fmt.Errorf("saving order line items: %w", err)
	}

	return &order, nil
}

// List returns orders matching the optional amount range, sorted by amount.
func (s *OrderService) List(ctx context.Context, startAmount, endAmount *decimal.Decimal, ascending bool, page int) ([]domain.Order, error) {
	opts := postgres.FindOptions{Page: page}
	if startAmount != nil && endAmount != nil {
		opts.Filter = &store.Query{
			Condition: "amount BETWEEN $1 AND $2",
			Values:    []any{*startAmount, *endAmount},
		}
	}
	opts.OrderBy = "amount DESC"
	if ascending {
		opts.OrderBy = "amount ASC"
	}
	return s.orders.Find(ctx, opts, nil)
}
