package claims

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/revcycle/recovery/internal/platform/predicate"
)

// Recognized filter options.
const (
	OptClaimID        = "claim_id"
	OptStartDate      = "start_date"
	OptEndDate        = "end_date"
	OptPayerType      = "payer_type"
	OptPayerPlan      = "payer_plan"
	OptCPT            = "cpt"
	OptAppealEligible = "appeal_eligible"
	OptMinAllowed     = "min_allowed"
	OptMaxAllowed     = "max_allowed"
	OptMinPaid        = "min_paid"
	OptMaxPaid        = "max_paid"
	OptMinMissing     = "min_missing"
	OptMaxMissing     = "max_missing"
)

const dateLayout = "2006-01-02"

type numericBound struct {
	option string
	field  predicate.Field
	op     predicate.Op
}

// Compilation order of the numeric bounds. Fixed so the bound value list is
// deterministic for a given input.
var numericBounds = []numericBound{
	{OptMinAllowed, FieldAllowed, predicate.OpGe},
	{OptMaxAllowed, FieldAllowed, predicate.OpLe},
	{OptMinPaid, FieldPaid, predicate.OpGe},
	{OptMaxPaid, FieldPaid, predicate.OpLe},
	{OptMinMissing, FieldMissing, predicate.OpGe},
	{OptMaxMissing, FieldMissing, predicate.OpLe},
}

// Compile turns loosely typed filter options into a predicate set. Options
// that are absent, empty, or unparsable contribute nothing; Compile never
// fails. An empty options map yields the empty set, which matches all claims.
func Compile(opts map[string]string) predicate.Set {
	var set predicate.Set

	if v := option(opts, OptClaimID); v != "" {
		set.Conds = append(set.Conds, predicate.Cond{Field: FieldClaimID, Op: predicate.OpEq, Value: v})
	}
	if t, ok := parseDate(option(opts, OptStartDate)); ok {
		set.Conds = append(set.Conds, predicate.Cond{Field: FieldServiceDate, Op: predicate.OpGe, Value: t})
	}
	if t, ok := parseDate(option(opts, OptEndDate)); ok {
		set.Conds = append(set.Conds, predicate.Cond{Field: FieldServiceDate, Op: predicate.OpLe, Value: t})
	}
	if v := option(opts, OptPayerType); v != "" {
		set.Conds = append(set.Conds, predicate.Cond{Field: FieldPayerType, Op: predicate.OpEq, Value: v})
	}
	if v := option(opts, OptPayerPlan); v != "" {
		set.Conds = append(set.Conds, predicate.Cond{Field: FieldPayerPlan, Op: predicate.OpContains, Value: v})
	}
	if v := option(opts, OptCPT); v != "" {
		set.Conds = append(set.Conds, predicate.Cond{Field: FieldCPT, Op: predicate.OpEq, Value: v})
	}
	for _, b := range numericBounds {
		if n, ok := parseAmount(option(opts, b.option)); ok {
			set.Conds = append(set.Conds, predicate.Cond{Field: b.field, Op: b.op, Value: n})
		}
	}
	if state, ok := ParseEligibilityLabel(option(opts, OptAppealEligible)); ok {
		set.Derived = EligibilityPredicate(state)
	}

	return set
}

// CompileWithBase compiles opts and puts base in front of the result as a
// mandatory condition. The result is well formed even when opts is empty.
func CompileWithBase(opts map[string]string, base predicate.Expr) predicate.Set {
	return Compile(opts).Prepend(base)
}

// OptionsFromValues flattens query parameters to their first value.
func OptionsFromValues(values url.Values) map[string]string {
	opts := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) == 0 {
			continue
		}
		opts[k] = v[0]
	}
	return opts
}

func option(opts map[string]string, key string) string {
	return strings.TrimSpace(opts[key])
}

func parseDate(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseAmount(v string) (float64, bool) {
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
