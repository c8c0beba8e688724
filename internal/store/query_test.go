package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInsert(t *testing.T) {
	t.Run("orders columns and placeholders deterministically", func(t *testing.T) {
		sql, args, err := BuildInsert("products", Payload{
			"name":  "Keyboard",
			"price": 45,
		})
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO products (name, price) VALUES ($1, $2) RETURNING *", sql)
		assert.Equal(t, []any{"Keyboard", 45}, args)
	})

	t.Run("empty payload is rejected", func(t *testing.T) {
		_, _, err := BuildInsert("products", Payload{})
		assert.ErrorIs(t, err, ErrEmptyPayload)
	})
}

func TestBuildBulkInsert(t *testing.T) {
	t.Run("placeholder numbering is monotonic across rows", func(t *testing.T) {
		sql, args, err := BuildBulkInsert("order_products", []Payload{
			{"name": "A", "quantity": 1},
			{"name": "B", "quantity": 2},
			{"name": "C", "quantity": 3},
		})
		require.NoError(t, err)
		assert.Equal(t,
			"INSERT INTO order_products (name, quantity) VALUES ($1, $2), ($3, $4), ($5, $6) RETURNING *",
			sql)
		assert.Equal(t, []any{"A", 1, "B", 2, "C", 3}, args)
	})

	t.Run("rows with different columns are rejected", func(t *testing.T) {
		_, _, err := BuildBulkInsert("order_products", []Payload{
			{"name": "A", "quantity": 1},
			{"name": "B", "price": 2},
		})
		assert.ErrorIs(t, err, ErrSchemaMismatch)
	})

	t.Run("no rows is rejected", func(t *testing.T) {
		_, _, err := BuildBulkInsert("order_products", nil)
		assert.ErrorIs(t, err, ErrEmptyPayload)
	})
}

func TestBuildSelect(t *testing.T) {
	t.Run("defaults to all columns ordered by created_at", func(t *testing.T) {
		sql, args := BuildSelect("products", SelectOptions{})
		assert.Equal(t, "SELECT * FROM products ORDER BY created_at DESC", sql)
		assert.Nil(t, args)
	})

	t.Run("filter values become the argument list", func(t *testing.T) {
		sql, args := BuildSelect("products", SelectOptions{
			Filter: &Query{Condition: "name = $1", Values: []any{"Keyboard"}},
		})
		assert.Equal(t, "SELECT * FROM products WHERE name = $1 ORDER BY created_at DESC", sql)
		assert.Equal(t, []any{"Keyboard"}, args)
	})

	t.Run("first page starts at offset zero", func(t *testing.T) {
		sql, _ := BuildSelect("products", SelectOptions{PageSize: 10, Page: 1})
		assert.Equal(t, "SELECT * FROM products ORDER BY created_at DESC LIMIT 10 OFFSET 0", sql)
	})

	t.Run("offset grows with the page number", func(t *testing.T) {
		sql, _ := BuildSelect("products", SelectOptions{PageSize: 10, Page: 3})
		assert.Equal(t, "SELECT * FROM products ORDER BY created_at DESC LIMIT 10 OFFSET 20", sql)
	})

	t.Run("limit is omitted when page or size is zero", func(t *testing.T) {
		sql, _ := BuildSelect("products", SelectOptions{PageSize: 10})
		assert.NotContains(t, sql, "LIMIT")

		sql, _ = BuildSelect("products", SelectOptions{Page: 2})
		assert.NotContains(t, sql, "LIMIT")
	})

	t.Run("group by and having come before order by", func(t *testing.T) {
		sql, _ := BuildSelect("orders", SelectOptions{
			Fields:  "customer_id, SUM(amount) AS total",
			GroupBy: "customer_id",
			Having:  "SUM(amount) > 100",
			OrderBy: "total DESC",
		})
		assert.Equal(t,
			"SELECT customer_id, SUM(amount) AS total FROM orders GROUP BY customer_id HAVING SUM(amount) > 100 ORDER BY total DESC",
			sql)
	})
}

func TestBuildCount(t *testing.T) {
	t.Run("counts all rows by default", func(t *testing.T) {
		sql, args := BuildCount("orders", nil, "", "", "")
		assert.Equal(t, "SELECT COUNT(*) FROM orders", sql)
		assert.Nil(t, args)
	})

	t.Run("counts a named column with a filter", func(t *testing.T) {
		sql, args := BuildCount("orders",
			&Query{Condition: "customer_id = $1", Values: []any{int64(7)}},
			"id", "", "")
		assert.Equal(t, "SELECT COUNT(id) FROM orders WHERE customer_id = $1", sql)
		assert.Equal(t, []any{int64(7)}, args)
	})
}

func TestBuildUpdate(t *testing.T) {
	t.Run("patch placeholders continue after the filter values", func(t *testing.T) {
		sql, args, err := BuildUpdate("otps",
			&Query{Condition: "user_id = $1 AND status = $2", Values: []any{int64(7), "active"}},
			Payload{"status": "deactivated"})
		require.NoError(t, err)
		assert.Equal(t,
			"UPDATE otps SET status = $3 WHERE user_id = $1 AND status = $2 RETURNING *",
			sql)
		assert.Equal(t, []any{int64(7), "active", "deactivated"}, args)
	})

	t.Run("multiple patch columns number in sorted order", func(t *testing.T) {
		sql, args, err := BuildUpdate("login_sessions",
			&Query{Condition: "id = $1", Values: []any{int64(3)}},
			Payload{"status": int16(0), "logged_out": true})
		require.NoError(t, err)
		assert.Equal(t,
			"UPDATE login_sessions SET logged_out = $2, status = $3 WHERE id = $1 RETURNING *",
			sql)
		assert.Equal(t, []any{int64(3), true, int16(0)}, args)
	})

	t.Run("nil filter updates every row", func(t *testing.T) {
		sql, args, err := BuildUpdate("products", nil, Payload{"status": "active"})
		require.NoError(t, err)
		assert.Equal(t, "UPDATE products SET status = $1 RETURNING *", sql)
		assert.Equal(t, []any{"active"}, args)
	})

	t.Run("empty patch is rejected", func(t *testing.T) {
		_, _, err := BuildUpdate("products",
			&Query{Condition: "id = $1", Values: []any{int64(1)}},
			Payload{})
		assert.ErrorIs(t, err, ErrEmptyPayload)
	})
}
