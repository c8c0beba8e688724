// Package store provides the persistence primitives shared by every entity:
// parameterized query building, transaction handles and the executor
// abstraction repositories run against.
package store

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Query is a parameterized boolean SQL condition plus its ordered argument
// list. The Nth positional placeholder in Condition corresponds to the Nth
// entry in Values. Conditions are trusted literals written by callers;
// values always travel through the argument list, never the SQL text.
type Query struct {
	Condition string
	Values    []any
}

// Payload maps column names to values for inserts and update SET clauses.
// Column names are trusted internal constants, not user input.
type Payload map[string]any

// columns returns the payload's column names in sorted order so generated
// SQL is deterministic regardless of map iteration order.
func (p Payload) columns() []string {
	cols := make([]string, 0, len(p))
	for col := range p {
		cols = append(cols, col)
	}
	slices.Sort(cols)
	return cols
}

// BuildInsert produces an INSERT ... RETURNING * statement for the given
// payload. Placeholders are numbered $1..$n in column order.
func BuildInsert(table string, fields Payload) (string, []any, error) {
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("%w: insert into %s", ErrEmptyPayload, table)
	}

	cols := fields.columns()
	args := make([]any, 0, len(cols))
	params := make([]string, 0, len(cols))
	for i, col := range cols {
		params = append(params, "$"+strconv.Itoa(i+1))
		args = append(args, fields[col])
	}

	sql := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		table,
		strings.Join(cols, ", "),
		strings.Join(params, ", "),
	)
	return sql, args, nil
}

// BuildBulkInsert produces a single multi-row INSERT ... RETURNING *
// statement. All rows must share the same column set. Placeholder numbering
// is global and monotonically increasing across rows: row 2's first
// placeholder continues from row 1's last.
func BuildBulkInsert(table string, rows []Payload) (string, []any, error) {
	if len(rows) == 0 {
		return "", nil, fmt.Errorf("%w: bulk insert into %s", ErrEmptyPayload, table)
	}

	cols := rows[0].columns()
	if len(cols) == 0 {
		return "", nil, fmt.Errorf("%w: bulk insert into %s", ErrEmptyPayload, table)
	}

	args := make([]any, 0, len(rows)*len(cols))
	groups := make([]string, 0, len(rows))
	n := 0
	for _, row := range rows {
		if !slices.Equal(cols, row.columns()) {
			return "", nil, fmt.Errorf(
				"%w: expected columns %v, got %v",
				ErrSchemaMismatch, cols, row.columns(),
			)
		}
		params := make([]string, 0, len(cols))
		for _, col := range cols {
			n++
			params = append(params, "$"+strconv.Itoa(n))
			args = append(args, row[col])
		}
		groups = append(groups, "("+strings.Join(params, ", ")+")")
	}

	sql := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s RETURNING *",
		table,
		strings.Join(cols, ", "),
		strings.Join(groups, ", "),
	)
	return sql, args, nil
}

// SelectOptions shape the non-filter parts of a SELECT statement.
type SelectOptions struct {
	// Filter is the optional WHERE condition with its values.
	Filter *Query
	// Fields is the column list to select; defaults to *.
	Fields string
	// GroupBy and Having are trusted literal clauses, without their keywords.
	GroupBy string
	Having  string
	// OrderBy is the sort expression without the ORDER BY keyword;
	// defaults to created_at DESC.
	OrderBy string
	// PageSize and Page control LIMIT/OFFSET. Page is 1-indexed. When either
	// is zero the LIMIT clause is omitted entirely, so unbounded fetches are
	// a deliberate choice, never an accident of defaulting.
	PageSize int
	Page     int
}

// BuildSelect produces a SELECT statement from the given options. The
// argument list is the filter's values, if any.
func BuildSelect(table string, opts SelectOptions) (string, []any) {
	fields := opts.Fields
	if fields == "" {
		fields = "*"
	}
	orderBy := opts.OrderBy
	if orderBy == "" {
		orderBy = "created_at DESC"
	}

	var b strings.Builder
	b.WriteString("SELECT " + fields + " FROM " + table)
	args := appendFilter(&b, opts.Filter)
	appendClause(&b, "GROUP BY", opts.GroupBy)
	appendClause(&b, "HAVING", opts.Having)
	b.WriteString(" ORDER BY " + orderBy)
	if opts.Page > 0 && opts.PageSize > 0 {
		b.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", opts.PageSize, (opts.Page-1)*opts.PageSize))
	}
	return b.String(), args
}

// BuildCount produces a SELECT COUNT statement. When column is empty the
// count is over *.
func BuildCount(table string, filter *Query, column, groupBy, having string) (string, []any) {
	count := "COUNT(*)"
	if column != "" {
		count = "COUNT(" + column + ")"
	}

	var b strings.Builder
	b.WriteString("SELECT " + count + " FROM " + table)
	args := appendFilter(&b, filter)
	appendClause(&b, "GROUP BY", groupBy)
	appendClause(&b, "HAVING", having)
	return b.String(), args
}

// BuildUpdate produces an UPDATE ... RETURNING * statement. Placeholder
// numbering for the patch columns continues from the filter's value count:
// with k filter values and m patch columns, patch placeholders are numbered
// $(k+1)..$(k+m) and the argument list is filter values followed by patch
// values.
func BuildUpdate(table string, filter *Query, patch Payload) (string, []any, error) {
	if len(patch) == 0 {
		return "", nil, fmt.Errorf("%w: update of %s", ErrEmptyPayload, table)
	}

	var args []any
	if filter != nil {
		args = append(args, filter.Values...)
	}

	cols := patch.columns()
	assignments := make([]string, 0, len(cols))
	n := len(args)
	for _, col := range cols {
		n++
		assignments = append(assignments, col+" = $"+strconv.Itoa(n))
		args = append(args, patch[col])
	}

	var b strings.Builder
	b.WriteString("UPDATE " + table + " SET " + strings.Join(assignments, ", "))
	if filter != nil && filter.Condition != "" {
		b.WriteString(" WHERE " + filter.Condition)
	}
	b.WriteString(" RETURNING *")
	return b.String(), args, nil
}

func appendFilter(b *strings.Builder, filter *Query) []any {
	if filter == nil || filter.Condition == "" {
		return nil
	}
	b.WriteString(" WHERE " + filter.Condition)
	return filter.Values
}

func appendClause(b *strings.Builder, keyword, clause string) {
	if clause != "" {
		b.WriteString(" " + keyword + " " + clause)
	}
}
