package opportunity

import (
	"context"
	"fmt"

	"github.com/revcycle/recovery/internal/domain/claims"
	"github.com/revcycle/recovery/internal/platform/predicate"
	"github.com/revcycle/recovery/pkg/pagination"
)

// RankRequest selects and pages ranked opportunities.
type RankRequest struct {
	// Predicates narrows the claims that form cohorts. The underpaid
	// condition is always added in front.
	Predicates predicate.Set
	// Bucket keeps only opportunities in one bucket. Empty keeps all.
	Bucket Bucket
	Page   pagination.Params
}

// Service ranks cohorts of underpaid claims by recovery value.
type Service struct {
	store     claims.Store
	weights   Weights
	minClaims int
}

// NewService returns a ranker. A non-positive minClaims means
// DefaultMinClaims.
func NewService(store claims.Store, weights Weights, minClaims int) *Service {
	if minClaims <= 0 {
		minClaims = DefaultMinClaims
	}
	return &Service{store: store, weights: weights, minClaims: minClaims}
}

// Rank returns opportunities ordered by total missing amount, largest first,
// ties broken by payer type, plan and code. Cohorts smaller than the minimum
// claim count never appear.
func (s *Service) Rank(ctx context.Context, req RankRequest) ([]Opportunity, error) {
	agg := claims.AggregateRequest{
		Predicates: req.Predicates.Prepend(claims.Underpaid()),
		GroupBy:    claims.GroupCohort,
		Order:      claims.OrderMissingDesc,
		MinClaims:  s.minClaims,
	}
	// Without a bucket filter the store can page directly. Buckets are only
	// known after scoring, so filtered requests page in memory.
	if req.Bucket == "" {
		agg.Page = req.Page
	}

	rows, err := s.store.Aggregate(ctx, agg)
	if err != nil {
		return nil, fmt.Errorf("%w: rank cohorts: %w", claims.ErrRetrieval, err)
	}

	out := make([]Opportunity, 0, len(rows))
	for _, r := range rows {
		if r.ClaimCount < int64(s.minClaims) {
			continue
		}
		o := s.weights.Opportunity(CohortFrom(r))
		if req.Bucket != "" && o.ConfidenceBucket != req.Bucket {
			continue
		}
		out = append(out, o)
	}
	if req.Bucket != "" {
		out = pagination.Window(out, req.Page)
	}
	return out, nil
}
