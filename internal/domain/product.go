package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductTable is the products table name.
const ProductTable = "products"

// Product statuses.
const (
	ProductStatusActive      = "active"
	ProductStatusDeactivated = "deactivated"
	ProductStatusSuspended   = "suspended"
	ProductStatusBanned      = "banned"
	ProductStatusDeleted     = "deleted"
)

// Product is a catalog row.
type Product struct {
	ID                int64           `db:"id"                 json:"id"`
	Name              string          `db:"name"               json:"name"`
	Price             decimal.Decimal `db:"price"              json:"price"`
	Description       string          `db:"description"        json:"description"`
	AvailableQuantity int64           `db:"available_quantity" json:"available_quantity"`
	Status            string          `db:"status"             json:"status"`
	CreatedBy         int64           `db:"created_by"         json:"created_by"`
	CreatedAt         time.Time       `db:"created_at"         json:"created_at"`
}
