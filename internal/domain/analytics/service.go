package analytics

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/revcycle/recovery/internal/domain/claims"
	"github.com/revcycle/recovery/internal/platform/predicate"
	"github.com/revcycle/recovery/pkg/pagination"
)

// Service is the aggregation engine. It holds no state beyond the store and
// is safe for concurrent use.
type Service struct {
	store claims.Store
}

func NewService(store claims.Store) *Service {
	return &Service{store: store}
}

func retrievalError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", claims.ErrRetrieval, op, err)
}

func (s *Service) aggregate(ctx context.Context, op string, req claims.AggregateRequest) ([]claims.Aggregate, error) {
	rows, err := s.store.Aggregate(ctx, req)
	if err != nil {
		return nil, retrievalError(op, err)
	}
	return rows, nil
}

// Summary totals billed, allowed, paid and missing amounts. An empty match
// yields zeros.
func (s *Service) Summary(ctx context.Context, set predicate.Set) (*Summary, error) {
	rows, err := s.aggregate(ctx, "summary", claims.AggregateRequest{Predicates: set})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &Summary{}, nil
	}
	sum := summaryFrom(rows[0])
	return &sum, nil
}

// Recoverable splits missing money into appeal-eligible and non-recoverable
// claims. Claims paid in full belong to neither side and are dropped.
func (s *Service) Recoverable(ctx context.Context, set predicate.Set) ([]RecoverableRow, error) {
	rows, err := s.aggregate(ctx, "recoverable", claims.AggregateRequest{
		Predicates: set,
		GroupBy:    claims.GroupEligibility,
		Order:      claims.OrderKeyAsc,
	})
	if err != nil {
		return nil, err
	}
	out := make([]RecoverableRow, 0, len(rows))
	for _, r := range rows {
		if r.Key.Eligibility == claims.NotApplicable {
			continue
		}
		out = append(out, RecoverableRow{
			AppealEligible: r.Key.Eligibility.Label(),
			ClaimCount:     r.ClaimCount,
			MissingAmount:  r.Missing,
		})
	}
	return out, nil
}

// ByPayer breaks missing money down by payer type and plan, largest first.
func (s *Service) ByPayer(ctx context.Context, set predicate.Set) ([]PayerRow, error) {
	rows, err := s.aggregate(ctx, "breakdown by payer", claims.AggregateRequest{
		Predicates: set,
		GroupBy:    claims.GroupPayer,
	})
	if err != nil {
		return nil, err
	}
	out := make([]PayerRow, len(rows))
	for i, r := range rows {
		out[i] = PayerRow{
			PayerType:     r.Key.PayerType,
			PayerPlan:     r.Key.PayerPlan,
			ClaimCount:    r.ClaimCount,
			MissingAmount: r.Missing,
		}
	}
	return out, nil
}

// ByCPT breaks missing money down by procedure code, largest first.
func (s *Service) ByCPT(ctx context.Context, set predicate.Set) ([]CPTRow, error) {
	rows, err := s.aggregate(ctx, "breakdown by cpt", claims.AggregateRequest{
		Predicates: set,
		GroupBy:    claims.GroupCPT,
	})
	if err != nil {
		return nil, err
	}
	out := make([]CPTRow, len(rows))
	for i, r := range rows {
		out[i] = CPTRow{
			CPTHCPCSCode:  r.Key.CPT,
			ClaimCount:    r.ClaimCount,
			MissingAmount: r.Missing,
		}
	}
	return out, nil
}

// MonthlyTrend returns missing money per service month in ascending order.
// Months without claims are absent.
func (s *Service) MonthlyTrend(ctx context.Context, set predicate.Set) ([]TrendRow, error) {
	rows, err := s.aggregate(ctx, "monthly trend", claims.AggregateRequest{
		Predicates: set,
		GroupBy:    claims.GroupMonth,
		Order:      claims.OrderKeyAsc,
	})
	if err != nil {
		return nil, err
	}
	out := make([]TrendRow, len(rows))
	for i, r := range rows {
		out[i] = TrendRow{Period: r.Key.Period, MissingAmount: r.Missing}
	}
	return out, nil
}

// Search lists individual claims with their derived columns.
func (s *Service) Search(ctx context.Context, set predicate.Set, sort claims.Sort, page pagination.Params) ([]claims.SearchRow, error) {
	items, err := s.store.Search(ctx, claims.SearchRequest{Predicates: set, Sort: sort, Page: page})
	if err != nil {
		return nil, retrievalError("search", err)
	}
	out := make([]claims.SearchRow, len(items))
	for i, c := range items {
		out[i] = claims.NewSearchRow(c)
	}
	return out, nil
}

// Dashboard computes the summary and the three breakdowns concurrently. If
// any of them fails the whole dashboard fails.
func (s *Service) Dashboard(ctx context.Context, set predicate.Set) (*Dashboard, error) {
	var d Dashboard
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sum, err := s.Summary(ctx, set)
		if err != nil {
			return err
		}
		d.Summary = *sum
		return nil
	})
	g.Go(func() error {
		rows, err := s.Recoverable(ctx, set)
		d.Recoverable = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.ByPayer(ctx, set)
		d.ByPayer = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.ByCPT(ctx, set)
		d.ByCPT = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}
