package predicate

import (
	"strings"
	"time"
)

// Row exposes field values to the in-memory evaluator. A false second return
// means the value is NULL.
type Row interface {
	Lookup(f Field) (any, bool)
}

// Eval reports whether row satisfies e. NULL handling follows SQL: any
// comparison involving NULL is not satisfied; only IsNull matches it.
func Eval(e Expr, row Row) bool {
	switch n := e.(type) {
	case Cond:
		v, ok := row.Lookup(n.Field)
		if !ok {
			return false
		}
		if n.Op == OpContains {
			s, ok1 := v.(string)
			sub, ok2 := n.Value.(string)
			return ok1 && ok2 && strings.Contains(strings.ToLower(s), strings.ToLower(sub))
		}
		return compareOp(v, n.Value, n.Op)

	case FieldCmp:
		l, ok := row.Lookup(n.Left)
		if !ok {
			return false
		}
		r, ok := row.Lookup(n.Right)
		if !ok {
			return false
		}
		return compareOp(l, r, n.Op)

	case IsNull:
		_, ok := row.Lookup(n.Field)
		return !ok

	case And:
		for _, c := range n {
			if !Eval(c, row) {
				return false
			}
		}
		return true

	case Or:
		for _, c := range n {
			if Eval(c, row) {
				return true
			}
		}
		return false
	}
	return false
}

// Match reports whether row satisfies every term of s.
func (s Set) Match(row Row) bool {
	for _, t := range s.Terms() {
		if !Eval(t, row) {
			return false
		}
	}
	return true
}

func compareOp(a, b any, op Op) bool {
	c, ok := compare(a, b)
	if !ok {
		return false
	}
	switch op {
	case OpEq:
		return c == 0
	case OpNe:
		return c != 0
	case OpLt:
		return c < 0
	case OpLe:
		return c <= 0
	case OpGt:
		return c > 0
	case OpGe:
		return c >= 0
	}
	return false
}

// compare orders two values of the same kind. Mismatched kinds are not
// comparable.
func compare(a, b any) (int, bool) {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case float64:
		bv, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		return compareFloat(av, bv), true
	case int:
		bv, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		return compareFloat(float64(av), bv), true
	case int64:
		bv, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		return compareFloat(float64(av), bv), true
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return av.Compare(bv), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
