package predicate

import (
	"fmt"
	"strings"
)

// Columns maps fields to the SQL expression that produces them. Derived
// fields map to an expression over stored columns rather than a column name.
type Columns map[Field]string

// Column returns the SQL expression for f.
func (c Columns) Column(f Field) (string, error) {
	col, ok := c[f]
	if !ok {
		return "", fmt.Errorf("predicate: unknown field %q", f)
	}
	return col, nil
}

var sqlOps = map[Op]string{
	OpEq: "=",
	OpNe: "<>",
	OpLt: "<",
	OpLe: "<=",
	OpGt: ">",
	OpGe: ">=",
}

// Render writes e as a Postgres boolean expression. Bound values are returned
// in args and referenced as $argIdx, $argIdx+1, ... The next free index is
// returned alongside.
func Render(e Expr, cols Columns, argIdx int) (string, []any, int, error) {
	switch n := e.(type) {
	case Cond:
		col, err := cols.Column(n.Field)
		if err != nil {
			return "", nil, argIdx, err
		}
		if n.Op == OpContains {
			str, ok := n.Value.(string)
			if !ok {
				return "", nil, argIdx, fmt.Errorf("predicate: %s on %q needs a string value", n.Op, n.Field)
			}
			return fmt.Sprintf("%s ILIKE $%d", col, argIdx), []any{containsPattern(str)}, argIdx + 1, nil
		}
		op, ok := sqlOps[n.Op]
		if !ok {
			return "", nil, argIdx, fmt.Errorf("predicate: unsupported operator %q", n.Op)
		}
		return fmt.Sprintf("%s %s $%d", col, op, argIdx), []any{n.Value}, argIdx + 1, nil

	case FieldCmp:
		left, err := cols.Column(n.Left)
		if err != nil {
			return "", nil, argIdx, err
		}
		right, err := cols.Column(n.Right)
		if err != nil {
			return "", nil, argIdx, err
		}
		op, ok := sqlOps[n.Op]
		if !ok {
			return "", nil, argIdx, fmt.Errorf("predicate: unsupported operator %q", n.Op)
		}
		return fmt.Sprintf("%s %s %s", left, op, right), nil, argIdx, nil

	case IsNull:
		col, err := cols.Column(n.Field)
		if err != nil {
			return "", nil, argIdx, err
		}
		return col + " IS NULL", nil, argIdx, nil

	case And:
		return renderJoin([]Expr(n), " AND ", "TRUE", cols, argIdx)

	case Or:
		return renderJoin([]Expr(n), " OR ", "FALSE", cols, argIdx)
	}
	return "", nil, argIdx, fmt.Errorf("predicate: unsupported expression %T", e)
}

func renderJoin(children []Expr, sep, empty string, cols Columns, argIdx int) (string, []any, int, error) {
	if len(children) == 0 {
		return empty, nil, argIdx, nil
	}
	parts := make([]string, 0, len(children))
	var args []any
	for _, child := range children {
		clause, childArgs, next, err := Render(child, cols, argIdx)
		if err != nil {
			return "", nil, argIdx, err
		}
		parts = append(parts, clause)
		args = append(args, childArgs...)
		argIdx = next
	}
	if len(parts) == 1 {
		return parts[0], args, argIdx, nil
	}
	return "(" + strings.Join(parts, sep) + ")", args, argIdx, nil
}

// RenderSet renders every term of s joined by AND. An empty set renders to
// the empty string so the caller can omit the WHERE keyword entirely.
func RenderSet(s Set, cols Columns, argIdx int) (string, []any, int, error) {
	terms := s.Terms()
	if len(terms) == 0 {
		return "", nil, argIdx, nil
	}
	parts := make([]string, 0, len(terms))
	var args []any
	for _, t := range terms {
		clause, termArgs, next, err := Render(t, cols, argIdx)
		if err != nil {
			return "", nil, argIdx, err
		}
		parts = append(parts, clause)
		args = append(args, termArgs...)
		argIdx = next
	}
	return strings.Join(parts, " AND "), args, argIdx, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns a literal substring into an ILIKE pattern. LIKE
// metacharacters in the input match literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
