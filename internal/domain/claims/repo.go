package claims

import (
	"context"
	"errors"
	"strings"

	"github.com/revcycle/recovery/internal/platform/predicate"
	"github.com/revcycle/recovery/pkg/pagination"
)

// ErrRetrieval marks any failure to read from the claims store. Callers see
// it through errors.Is; the wrapped driver error stays available for logs.
var ErrRetrieval = errors.New("failed to retrieve claims data")

// Grouping selects the aggregation key.
type Grouping int

const (
	GroupNone Grouping = iota
	GroupPayer
	GroupCPT
	GroupMonth
	GroupEligibility
	GroupCohort
)

func (g Grouping) String() string {
	switch g {
	case GroupPayer:
		return "payer"
	case GroupCPT:
		return "cpt"
	case GroupMonth:
		return "month"
	case GroupEligibility:
		return "eligibility"
	case GroupCohort:
		return "cohort"
	}
	return "none"
}

// AggregateOrder selects how grouped rows are ordered. Every ordering breaks
// ties by the grouping key ascending.
type AggregateOrder int

const (
	// OrderMissingDesc sorts by summed missing amount, largest first.
	OrderMissingDesc AggregateOrder = iota
	// OrderKeyAsc sorts by the grouping key only.
	OrderKeyAsc
)

// SearchRequest asks the store for individual claims.
type SearchRequest struct {
	Predicates predicate.Set
	Sort       Sort
	Page       pagination.Params
}

// AggregateRequest asks the store for summed rows.
type AggregateRequest struct {
	Predicates predicate.Set
	GroupBy    Grouping
	Order      AggregateOrder
	// MinClaims drops groups with fewer claims. Zero keeps every group.
	MinClaims int
	// Page limits grouped output. A zero limit returns every group.
	Page pagination.Params
}

// GroupKey identifies one aggregate row. Only the components of the
// requested grouping are set.
type GroupKey struct {
	PayerType   string
	PayerPlan   string
	CPT         string
	Period      string
	Eligibility EligibilityState
}

// Compare orders keys component by component.
func (k GroupKey) Compare(o GroupKey) int {
	if c := strings.Compare(k.PayerType, o.PayerType); c != 0 {
		return c
	}
	if c := strings.Compare(k.PayerPlan, o.PayerPlan); c != 0 {
		return c
	}
	if c := strings.Compare(k.CPT, o.CPT); c != 0 {
		return c
	}
	if c := strings.Compare(k.Period, o.Period); c != 0 {
		return c
	}
	return int(k.Eligibility) - int(o.Eligibility)
}

// Aggregate is one summed row. Sums over no claims are zero.
type Aggregate struct {
	Key           GroupKey
	ClaimCount    int64
	Billed        float64
	Allowed       float64
	Paid          float64
	Missing       float64
	EligibleCount int64
}

// Store is the read-only claims collection. Implementations must not
// return partial results: on error the rows are nil.
type Store interface {
	Search(ctx context.Context, req SearchRequest) ([]Claim, error)
	Aggregate(ctx context.Context, req AggregateRequest) ([]Aggregate, error)
}

// Months are bucketed with this layout in both stores.
const periodLayout = "2006-01"
