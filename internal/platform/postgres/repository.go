// Package postgres implements the data-access layer against PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/georgysavva/scany/v2/sqlscan"

	"github.com/fuuti/storefront-api/internal/store"
)

// DefaultPageSize is applied to paged reads when the caller does not choose
// a size; it mirrors the product and order listing defaults.
const DefaultPageSize = 5

// Repository is the generic per-table data-access object. It is bound to one
// table, generic over the row type T, and stateless apart from the table name
// and the pool it borrows connections from. Every method accepts an optional
// transaction handle; when one is supplied the statement executes through it
// and the repository never commits, rolls back or releases it — ownership
// stays with the caller. Without a handle, the pooled connection borrow and
// release is scoped to the call.
type Repository[T any] struct {
	db    *sql.DB
	table string
}

// NewRepository creates a repository bound to the given table.
func NewRepository[T any](db *sql.DB, table string) *Repository[T] {
	if db == nil {
		panic("db cannot be nil")
	}
	return &Repository[T]{db: db, table: table}
}

// Table returns the table this repository is bound to.
func (r *Repository[T]) Table() string {
	return r.table
}

// querier selects the executor: the caller's transaction handle when one is
// supplied, the pool otherwise.
func (r *Repository[T]) querier(tx *store.Tx) store.Querier {
	if tx != nil {
		return tx
	}
	return r.db
}

// Save inserts one row and returns it.
func (r *Repository[T]) Save(ctx context.Context, fields store.Payload, tx *store.Tx) (T, error) {
	var zero T
	query, args, err := store.BuildInsert(r.table, fields)
	if err != nil {
		return zero, err
	}

	rows, err := r.selectRows(ctx, tx, query, args)
	if err != nil {
		return zero, err
	}
	if len(rows) == 0 {
		return zero, fmt.Errorf("%w: insert into %s returned no row", store.ErrQueryFailed, r.table)
	}
	return rows[0], nil
}

// SaveMany inserts all rows in a single multi-row statement and returns the
// inserted rows. All rows must share the same column set.
func (r *Repository[T]) SaveMany(ctx context.Context, payloads []store.Payload, tx *store.Tx) ([]T, error) {
	query, args, err := store.BuildBulkInsert(r.table, payloads)
	if err != nil {
		return nil, err
	}
	return r.selectRows(ctx, tx, query, args)
}

// Find returns the rows matching the options. Unless the caller sets an
// explicit page or size, results are paged with DefaultPageSize; an
// unbounded fetch requires opting out via Unpaged. A query matching nothing
// returns an empty slice, not an error.
func (r *Repository[T]) Find(ctx context.Context, opts FindOptions, tx *store.Tx) ([]T, error) {
	sel := opts.selectOptions()
	if !opts.Unpaged {
		if sel.PageSize <= 0 {
			sel.PageSize = DefaultPageSize
		}
		if sel.Page <= 0 {
			sel.Page = 1
		}
	} else {
		sel.PageSize = 0
		sel.Page = 0
	}

	query, args := store.BuildSelect(r.table, sel)
	return r.selectRows(ctx, tx, query, args)
}

// FindOne returns the first row matching the options, or nil when nothing
// matches. A miss is not an error.
func (r *Repository[T]) FindOne(ctx context.Context, opts FindOptions, tx *store.Tx) (*T, error) {
	sel := opts.selectOptions()
	query, args := store.BuildSelect(r.table, sel)
	rows, err := r.selectRows(ctx, tx, query, args)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// FindByID returns the row with the given primary key, or nil when absent.
func (r *Repository[T]) FindByID(ctx context.Context, id int64, tx *store.Tx) (*T, error) {
	return r.FindOne(ctx, FindOptions{
		Filter: &store.Query{Condition: "id = $1", Values: []any{id}},
	}, tx)
}

// Count returns the number of rows matching the filter. With a GROUP BY the
// count of the first group is returned, matching the single-value contract.
func (r *Repository[T]) Count(ctx context.Context, opts CountOptions, tx *store.Tx) (int64, error) {
	query, args := store.BuildCount(r.table, opts.Filter, opts.Column, opts.GroupBy, opts.Having)

	var counts []int64
	if err := sqlscan.Select(ctx, r.querier(tx), &counts, query, args...); err != nil {
		return 0, MapError(err)
	}
	if len(counts) == 0 {
		return 0, nil
	}
	return counts[0], nil
}

// Update applies the patch to every row matching the filter and returns the
// updated rows.
func (r *Repository[T]) Update(ctx context.Context, filter *store.Query, patch store.Payload, tx *store.Tx) ([]T, error) {
	query, args, err := store.BuildUpdate(r.table, filter, patch)
	if err != nil {
		return nil, err
	}
	return r.selectRows(ctx, tx, query, args)
}

// UpdateOne applies the patch and returns the first updated row, or nil when
// the filter matched nothing. The filter must be precise enough to target a
// single logical row; uniqueness is not enforced here.
func (r *Repository[T]) UpdateOne(ctx context.Context, filter *store.Query, patch store.Payload, tx *store.Tx) (*T, error) {
	rows, err := r.Update(ctx, filter, patch, tx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *Repository[T]) selectRows(ctx context.Context, tx *store.Tx, query string, args []any) ([]T, error) {
	var rows []T
	if err := sqlscan.Select(ctx, r.querier(tx), &rows, query, args...); err != nil {
		return nil, MapError(err)
	}
	return rows, nil
}

// FindOptions shape a read. Zero values mean: no filter, all columns,
// created_at DESC ordering, first page of DefaultPageSize rows.
type FindOptions struct {
	Filter  *store.Query
	Fields  string
	GroupBy string
	Having  string
	OrderBy string
	// PageSize and Page control pagination; Page is 1-indexed.
	PageSize int
	Page     int
	// Unpaged requests the full result set. Unbounded fetches must be
	// deliberate, so this is an explicit flag rather than a zero default.
	Unpaged bool
}

func (o FindOptions) selectOptions() store.SelectOptions {
	return store.SelectOptions{
		Filter:   o.Filter,
		Fields:   o.Fields,
		GroupBy:  o.GroupBy,
		Having:   o.Having,
		OrderBy:  o.OrderBy,
		PageSize: o.PageSize,
		Page:     o.Page,
	}
}

// CountOptions shape a count. An empty Column counts all rows.
type CountOptions struct {
	Filter  *store.Query
	Column  string
	GroupBy string
	Having  string
}
