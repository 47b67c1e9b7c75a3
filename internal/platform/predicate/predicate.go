// Package predicate holds a small boolean expression tree over named fields.
// Expressions are built from user input by domain compilers and rendered to
// positional SQL parameters only at the store boundary, or evaluated directly
// against in-memory rows. Values never become part of the SQL text.
package predicate

// Field names an attribute a condition can reference. The mapping from a
// field to its SQL expression lives in a Columns table supplied at render time.
type Field string

// Op is a comparison operator.
type Op string

const (
	OpEq       Op = "="
	OpNe       Op = "<>"
	OpLt       Op = "<"
	OpLe       Op = "<="
	OpGt       Op = ">"
	OpGe       Op = ">="
	OpContains Op = "contains" // case-insensitive substring match
)

// Expr is a node of the expression tree.
type Expr interface {
	expr()
}

// Cond compares a field against a bound value.
type Cond struct {
	Field Field
	Op    Op
	Value any
}

// FieldCmp compares two fields of the same row.
type FieldCmp struct {
	Left  Field
	Op    Op
	Right Field
}

// IsNull matches rows where Field has no value.
type IsNull struct {
	Field Field
}

// And matches when every child matches. An empty And matches everything.
type And []Expr

// Or matches when any child matches. An empty Or matches nothing.
type Or []Expr

func (Cond) expr()     {}
func (FieldCmp) expr() {}
func (IsNull) expr()   {}
func (And) expr()      {}
func (Or) expr()       {}

// Set is an ordered conjunction of conditions plus at most one derived
// classification condition. The zero Set matches every row.
type Set struct {
	Conds []Expr
	// Derived is the optional compiled classification condition. It is kept
	// apart from Conds so callers can tell whether one was requested.
	Derived Expr
}

// Empty reports whether the set has no conditions at all.
func (s Set) Empty() bool {
	return len(s.Conds) == 0 && s.Derived == nil
}

// Terms returns the conjuncts in evaluation order: Conds, then Derived.
func (s Set) Terms() []Expr {
	terms := make([]Expr, 0, len(s.Conds)+1)
	terms = append(terms, s.Conds...)
	if s.Derived != nil {
		terms = append(terms, s.Derived)
	}
	return terms
}

// Prepend returns a copy of s with base as its first condition.
func (s Set) Prepend(base Expr) Set {
	conds := make([]Expr, 0, len(s.Conds)+1)
	conds = append(conds, base)
	conds = append(conds, s.Conds...)
	return Set{Conds: conds, Derived: s.Derived}
}

// And returns a copy of s with extra appended after its existing conditions.
func (s Set) And(extra ...Expr) Set {
	conds := make([]Expr, 0, len(s.Conds)+len(extra))
	conds = append(conds, s.Conds...)
	conds = append(conds, extra...)
	return Set{Conds: conds, Derived: s.Derived}
}

// Values returns every bound value in the order a renderer binds them.
// A contains condition with a non-string value binds nothing; Render rejects
// such a set, so it never reaches a store.
func (s Set) Values() []any {
	var out []any
	for _, t := range s.Terms() {
		out = appendValues(out, t)
	}
	return out
}

func appendValues(out []any, e Expr) []any {
	switch n := e.(type) {
	case Cond:
		if n.Op == OpContains {
			if str, ok := n.Value.(string); ok {
				return append(out, containsPattern(str))
			}
			return out
		}
		return append(out, n.Value)
	case And:
		for _, c := range n {
			out = appendValues(out, c)
		}
	case Or:
		for _, c := range n {
			out = appendValues(out, c)
		}
	}
	return out
}
