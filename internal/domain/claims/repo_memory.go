package claims

import (
	"cmp"
	"context"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/revcycle/recovery/internal/platform/predicate"
	"github.com/revcycle/recovery/pkg/pagination"
)

// MemoryStore is a Store over a fixed slice of claims. It evaluates predicate
// sets directly and sums money with decimal arithmetic, so it answers every
// request the way the Postgres store does for the same rows.
type MemoryStore struct {
	claims []Claim
}

// NewMemoryStore copies claims into a new store.
func NewMemoryStore(claims []Claim) *MemoryStore {
	return &MemoryStore{claims: slices.Clone(claims)}
}

// Len returns the number of stored claims.
func (s *MemoryStore) Len() int { return len(s.claims) }

func (s *MemoryStore) match(ctx context.Context, req func(*Claim) bool) ([]Claim, error) {
	var out []Claim
	for i := range s.claims {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if req(&s.claims[i]) {
			out = append(out, s.claims[i])
		}
	}
	return out, nil
}

func (s *MemoryStore) Search(ctx context.Context, req SearchRequest) ([]Claim, error) {
	items, err := s.match(ctx, func(c *Claim) bool { return req.Predicates.Match(c) })
	if err != nil {
		return nil, err
	}
	field := req.Sort.Field
	if field == "" {
		field = DefaultSortField
	}
	slices.SortStableFunc(items, func(a, b Claim) int {
		c := compareByField(&a, &b, field)
		if !req.Sort.Ascending {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ClaimID, b.ClaimID)
	})
	return pagination.Window(items, req.Page), nil
}

func compareByField(a, b *Claim, f predicate.Field) int {
	switch f {
	case FieldAllowed:
		return cmp.Compare(a.AllowedAmount, b.AllowedAmount)
	case FieldPaid:
		return cmp.Compare(a.PaidAmount, b.PaidAmount)
	case FieldMissing:
		return cmp.Compare(a.MissingAmount(), b.MissingAmount())
	}
	return a.ServiceDate.Compare(b.ServiceDate)
}

type accumulator struct {
	count    int64
	eligible int64
	billed   decimal.Decimal
	allowed  decimal.Decimal
	paid     decimal.Decimal
}

func (acc *accumulator) add(c *Claim) {
	acc.count++
	if c.Eligibility() == AppealEligible {
		acc.eligible++
	}
	acc.billed = acc.billed.Add(decimal.NewFromFloat(c.BilledAmount))
	acc.allowed = acc.allowed.Add(decimal.NewFromFloat(c.AllowedAmount))
	acc.paid = acc.paid.Add(decimal.NewFromFloat(c.PaidAmount))
}

func (acc *accumulator) aggregate(k GroupKey) Aggregate {
	return Aggregate{
		Key:           k,
		ClaimCount:    acc.count,
		Billed:        acc.billed.InexactFloat64(),
		Allowed:       acc.allowed.InexactFloat64(),
		Paid:          acc.paid.InexactFloat64(),
		Missing:       acc.allowed.Sub(acc.paid).InexactFloat64(),
		EligibleCount: acc.eligible,
	}
}

func groupKeyOf(c *Claim, g Grouping) GroupKey {
	switch g {
	case GroupPayer:
		return GroupKey{PayerType: c.PayerType, PayerPlan: c.PayerPlan}
	case GroupCPT:
		return GroupKey{CPT: c.CPTHCPCSCode}
	case GroupMonth:
		return GroupKey{Period: c.ServiceDate.Format(periodLayout)}
	case GroupEligibility:
		return GroupKey{Eligibility: c.Eligibility()}
	case GroupCohort:
		return GroupKey{PayerType: c.PayerType, PayerPlan: c.PayerPlan, CPT: c.CPTHCPCSCode}
	}
	return GroupKey{}
}

func (s *MemoryStore) Aggregate(ctx context.Context, req AggregateRequest) ([]Aggregate, error) {
	items, err := s.match(ctx, func(c *Claim) bool { return req.Predicates.Match(c) })
	if err != nil {
		return nil, err
	}

	groups := make(map[GroupKey]*accumulator)
	if req.GroupBy == GroupNone {
		groups[GroupKey{}] = &accumulator{}
	}
	for i := range items {
		k := groupKeyOf(&items[i], req.GroupBy)
		acc, ok := groups[k]
		if !ok {
			acc = &accumulator{}
			groups[k] = acc
		}
		acc.add(&items[i])
	}

	out := make([]Aggregate, 0, len(groups))
	for k, acc := range groups {
		if req.MinClaims > 0 && acc.count < int64(req.MinClaims) {
			continue
		}
		out = append(out, acc.aggregate(k))
	}
	slices.SortFunc(out, func(a, b Aggregate) int {
		if req.Order == OrderMissingDesc {
			if c := cmp.Compare(b.Missing, a.Missing); c != 0 {
				return c
			}
		}
		return a.Key.Compare(b.Key)
	})
	return pagination.Window(out, req.Page), nil
}
var _ Store = (*MemoryStore)(nil)
