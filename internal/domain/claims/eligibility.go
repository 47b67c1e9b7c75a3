package claims

import "github.com/revcycle/recovery/internal/platform/predicate"

// EligibilityState is the derived appeal classification of a claim.
type EligibilityState int

const (
	// NotApplicable: the payer paid at least the allowed amount.
	NotApplicable EligibilityState = iota
	// AppealEligible: underpaid with no disqualifying denial reason.
	AppealEligible
	// NonRecoverable: underpaid and denied for a reason that cannot be appealed.
	NonRecoverable
)

// NonRecoverableDenial is the one denial reason that rules out an appeal.
const NonRecoverableDenial = "Timely Filing"

func (s EligibilityState) String() string {
	switch s {
	case AppealEligible:
		return "AppealEligible"
	case NonRecoverable:
		return "NonRecoverable"
	}
	return "NotApplicable"
}

// Label is the Yes/No form used by filters and API rows.
func (s EligibilityState) Label() string {
	switch s {
	case AppealEligible:
		return "Yes"
	case NonRecoverable:
		return "No"
	}
	return "N/A"
}

// ParseEligibilityLabel maps a filter value to its state. Only the exact
// tokens "Yes" and "No" are recognized.
func ParseEligibilityLabel(v string) (EligibilityState, bool) {
	switch v {
	case "Yes":
		return AppealEligible, true
	case "No":
		return NonRecoverable, true
	}
	return NotApplicable, false
}

// Underpaid selects claims where the payer paid less than allowed.
func Underpaid() predicate.Expr {
	return predicate.FieldCmp{Left: FieldPaid, Op: predicate.OpLt, Right: FieldAllowed}
}

// EligibilityPredicate returns the condition selecting exactly the claims in
// state s. Classify is defined in terms of these conditions, so a claim is
// selected by EligibilityPredicate(s) if and only if Classify returns s.
func EligibilityPredicate(s EligibilityState) predicate.Expr {
	switch s {
	case AppealEligible:
		return predicate.And{
			Underpaid(),
			predicate.Or{
				predicate.IsNull{Field: FieldDenialReason},
				predicate.Cond{Field: FieldDenialReason, Op: predicate.OpNe, Value: NonRecoverableDenial},
			},
		}
	case NonRecoverable:
		return predicate.And{
			Underpaid(),
			predicate.Cond{Field: FieldDenialReason, Op: predicate.OpEq, Value: NonRecoverableDenial},
		}
	}
	return predicate.FieldCmp{Left: FieldPaid, Op: predicate.OpGe, Right: FieldAllowed}
}

// Classify labels a claim from its paid and allowed amounts and denial reason.
// A nil denial reason never disqualifies an underpaid claim.
func Classify(paid, allowed float64, denialReason *string) EligibilityState {
	in := eligibilityInput{paid: paid, allowed: allowed, denial: denialReason}
	for _, s := range []EligibilityState{AppealEligible, NonRecoverable} {
		if predicate.Eval(EligibilityPredicate(s), in) {
			return s
		}
	}
	return NotApplicable
}

type eligibilityInput struct {
	paid, allowed float64
	denial        *string
}

func (in eligibilityInput) Lookup(f predicate.Field) (any, bool) {
	switch f {
	case FieldPaid:
		return in.paid, true
	case FieldAllowed:
		return in.allowed, true
	case FieldDenialReason:
		if in.denial == nil {
			return nil, false
		}
		return *in.denial, true
	}
	return nil, false
}
