package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order and order line item table names.
const (
	OrderTable        = "orders"
	OrderProductTable = "order_products"
)

// Order statuses.
const (
	OrderStatusCreated = "created"
	OrderStatusClosed  = "closed"
)

// Order is an order header row. Line items reference it by code.
type Order struct {
	ID           int64           `db:"id"            json:"id"`
	Code         string          `db:"code"          json:"code"`
	CustomerName string          `db:"customer_name" json:"customer_name"`
	CustomerID   int64           `db:"customer_id"   json:"customer_id"`
	Amount       decimal.Decimal `db:"amount"        json:"amount"`
	Status       string          `db:"status"        json:"status"`
	CreatedAt    time.Time       `db:"created_at"    json:"created_at"`
}

// OrderProduct is an order line item row, a snapshot of the product's name
// and price at purchase time.
type OrderProduct struct {
	ID         int64           `db:"id"          json:"id"`
	Name       string          `db:"name"        json:"name"`
	Price      decimal.Decimal `db:"price"       json:"price"`
	Quantity   int64           `db:"quantity"    json:"quantity"`
	OrderCode  string          `db:"order_code"  json:"order_code"`
	ProductID  int64           `db:"product_id"  json:"product_id"`
	CustomerID int64           `db:"customer_id" json:"customer_id"`
	CreatedAt  time.Time       `db:"created_at"  json:"created_at"`
}
