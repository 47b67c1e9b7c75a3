package predicate

import (
	"fmt"
	"strings"
)

// Query builds a single SELECT statement with positional parameters. Select
// expressions, WHERE terms, HAVING terms and paging share one argument list,
// so the statement and Args always line up regardless of build order.
type Query struct {
	table   string
	cols    Columns
	selects []string
	where   []string
	groupBy []string
	having  []string
	orderBy []string
	page    string
	args    []any
	idx     int
}

// NewQuery creates a Query over table whose fields resolve through cols.
func NewQuery(table string, cols Columns) *Query {
	return &Query{table: table, cols: cols, idx: 1}
}

// Idx returns the next available parameter index.
func (q *Query) Idx() int { return q.idx }

// Column resolves a field to its SQL expression.
func (q *Query) Column(f Field) (string, error) {
	return q.cols.Column(f)
}

// Select appends literal select-list entries.
func (q *Query) Select(exprs ...string) {
	q.selects = append(q.selects, exprs...)
}

// SelectExpr renders e and substitutes it for the single %s in format, e.g.
// "COUNT(*) FILTER (WHERE %s) AS eligible".
func (q *Query) SelectExpr(format string, e Expr) error {
	clause, err := q.render(e)
	if err != nil {
		return err
	}
	q.selects = append(q.selects, fmt.Sprintf(format, clause))
	return nil
}

// SelectCase appends a CASE expression that yields results[i] for the first
// whenExprs[i] that matches, otherwise elseValue. results and elseValue are
// SQL literals chosen by the caller, never user input.
func (q *Query) SelectCase(alias string, whenExprs []Expr, results []string, elseValue string) error {
	if len(whenExprs) != len(results) {
		return fmt.Errorf("predicate: %d conditions for %d results", len(whenExprs), len(results))
	}
	var b strings.Builder
	b.WriteString("CASE")
	for i, e := range whenExprs {
		clause, err := q.render(e)
		if err != nil {
			return err
		}
		fmt.Fprintf(&b, " WHEN %s THEN %s", clause, results[i])
	}
	fmt.Fprintf(&b, " ELSE %s END AS %s", elseValue, alias)
	q.selects = append(q.selects, b.String())
	return nil
}

// Where adds every term of s to the WHERE clause.
func (q *Query) Where(s Set) error {
	for _, t := range s.Terms() {
		clause, err := q.render(t)
		if err != nil {
			return err
		}
		q.where = append(q.where, clause)
	}
	return nil
}

// GroupBy sets the GROUP BY list. Entries are trusted SQL (column names or
// output ordinals).
func (q *Query) GroupBy(exprs ...string) {
	q.groupBy = exprs
}

// Having adds a HAVING term. format must contain exactly one %d, which is
// replaced with the parameter index bound to arg.
func (q *Query) Having(format string, arg any) {
	q.having = append(q.having, fmt.Sprintf(format, q.idx))
	q.args = append(q.args, arg)
	q.idx++
}

// OrderBy sets the ORDER BY list. Entries are trusted SQL.
func (q *Query) OrderBy(exprs ...string) {
	q.orderBy = exprs
}

// Page binds LIMIT and OFFSET. A non-positive limit leaves the result
// unbounded; offset is still applied.
func (q *Query) Page(limit, offset int) {
	if limit > 0 {
		q.page = fmt.Sprintf(" LIMIT $%d OFFSET $%d", q.idx, q.idx+1)
		q.args = append(q.args, limit, offset)
		q.idx += 2
		return
	}
	if offset > 0 {
		q.page = fmt.Sprintf(" OFFSET $%d", q.idx)
		q.args = append(q.args, offset)
		q.idx++
	}
}

// SQL returns the statement text.
func (q *Query) SQL() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	if len(q.selects) == 0 {
		b.WriteString("*")
	} else {
		b.WriteString(strings.Join(q.selects, ", "))
	}
	b.WriteString(" FROM ")
	b.WriteString(q.table)
	if len(q.where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(q.where, " AND "))
	}
	if len(q.groupBy) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(q.groupBy, ", "))
	}
	if len(q.having) > 0 {
		b.WriteString(" HAVING ")
		b.WriteString(strings.Join(q.having, " AND "))
	}
	if len(q.orderBy) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(q.orderBy, ", "))
	}
	b.WriteString(q.page)
	return b.String()
}

// Args returns the bound values in parameter order.
func (q *Query) Args() []any {
	return q.args
}

func (q *Query) render(e Expr) (string, error) {
	clause, args, next, err := Render(e, q.cols, q.idx)
	if err != nil {
		return "", err
	}
	q.args = append(q.args, args...)
	q.idx = next
	return clause, nil
}
