package opportunity

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/revcycle/recovery/internal/domain/claims"
	"github.com/revcycle/recovery/pkg/pagination"
)

type failingStore struct{ err error }

func (f failingStore) Search(context.Context, claims.SearchRequest) ([]claims.Claim, error) {
	return nil, f.err
}

func (f failingStore) Aggregate(context.Context, claims.AggregateRequest) ([]claims.Aggregate, error) {
	return nil, f.err
}

// recordingStore captures the aggregate request it receives.
type recordingStore struct {
	claims.Store
	last claims.AggregateRequest
}

func (r *recordingStore) Aggregate(ctx context.Context, req claims.AggregateRequest) ([]claims.Aggregate, error) {
	r.last = req
	return r.Store.Aggregate(ctx, req)
}

var serviceDay = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func cohortClaims(prefix, payer, plan, cpt string, n int, allowed, paid float64, denial *string) []claims.Claim {
	out := make([]claims.Claim, n)
	for i := range out {
		out[i] = claims.Claim{
			ClaimID:       fmt.Sprintf("%s%03d", prefix, i),
			PayerType:     payer,
			PayerPlan:     plan,
			CPTHCPCSCode:  cpt,
			ServiceDate:   serviceDay,
			BilledAmount:  allowed,
			AllowedAmount: allowed,
			PaidAmount:    paid,
			DenialReason:  denial,
		}
	}
	return out
}

func testStore() *claims.MemoryStore {
	timely := claims.NonRecoverableDenial
	var all []claims.Claim
	all = append(all, cohortClaims("A", "Medicare", "Medicare FFS", "99214", 6, 200, 80, nil)...)
	all = append(all, cohortClaims("B", "Medicaid", "Medicaid FFS", "99213", 4, 500, 0, nil)...)
	all = append(all, cohortClaims("C", "Other", "Commercial PPO", "E0601", 10, 500, 100, nil)...)
	all = append(all, cohortClaims("D", "Medicaid", "Medicaid FFS", "94760", 5, 50, 0, &timely)...)
	// Paid in full: never part of a cohort.
	all = append(all, cohortClaims("E", "Medicare", "Medicare FFS", "93000", 20, 95, 95, nil)...)
	return claims.NewMemoryStore(all)
}

func TestRank(t *testing.T) {
	svc := NewService(testStore(), DefaultWeights(), DefaultMinClaims)
	got, err := svc.Rank(context.Background(), RankRequest{Page: pagination.Params{Limit: 50}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Opportunity{
		{
			Cohort: Cohort{PayerType: "Other", PayerPlan: "Commercial PPO", CPTHCPCSCode: "E0601",
				ClaimCount: 10, TotalMissingAmount: 4000, AvgMissingPerClaim: 400, AppealEligibleRate: 100},
			ConfidenceScore: 82, ConfidenceBucket: BucketHigh,
		},
		{
			Cohort: Cohort{PayerType: "Medicare", PayerPlan: "Medicare FFS", CPTHCPCSCode: "99214",
				ClaimCount: 6, TotalMissingAmount: 720, AvgMissingPerClaim: 120, AppealEligibleRate: 100},
			ConfidenceScore: 63, ConfidenceBucket: BucketMedium,
		},
		{
			Cohort: Cohort{PayerType: "Medicaid", PayerPlan: "Medicaid FFS", CPTHCPCSCode: "94760",
				ClaimCount: 5, TotalMissingAmount: 250, AvgMissingPerClaim: 50, AppealEligibleRate: 0},
			ConfidenceScore: 6, ConfidenceBucket: BucketLow,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ranked (-want +got):\n%s", diff)
	}
}

func TestRank_BucketFilterPagesAfterScoring(t *testing.T) {
	rec := &recordingStore{Store: testStore()}
	svc := NewService(rec, DefaultWeights(), DefaultMinClaims)

	got, err := svc.Rank(context.Background(), RankRequest{Bucket: BucketMedium, Page: pagination.Params{Limit: 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].CPTHCPCSCode != "99214" {
		t.Errorf("expected only the Medium cohort, got %+v", got)
	}
	if rec.last.Page != (pagination.Params{}) {
		t.Errorf("bucket filter should fetch every cohort, store saw page %+v", rec.last.Page)
	}

	got, err = svc.Rank(context.Background(), RankRequest{Bucket: BucketHigh, Page: pagination.Params{Limit: 5, Offset: 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("offset past the only High cohort should be empty, got %+v", got)
	}
}

func TestRank_PushesPagingToStore(t *testing.T) {
	rec := &recordingStore{Store: testStore()}
	svc := NewService(rec, DefaultWeights(), DefaultMinClaims)

	got, err := svc.Rank(context.Background(), RankRequest{Page: pagination.Params{Limit: 1, Offset: 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].CPTHCPCSCode != "99214" {
		t.Errorf("unexpected page %+v", got)
	}
	if rec.last.MinClaims != DefaultMinClaims || rec.last.GroupBy != claims.GroupCohort {
		t.Errorf("unexpected store request %+v", rec.last)
	}
	if len(rec.last.Predicates.Conds) == 0 {
		t.Error("underpaid condition missing from store request")
	}
}

func TestRank_FiltersNarrowCohorts(t *testing.T) {
	svc := NewService(testStore(), DefaultWeights(), 0)
	got, err := svc.Rank(context.Background(), RankRequest{
		Predicates: claims.Compile(map[string]string{"payer_type": "Medicaid"}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].CPTHCPCSCode != "94760" {
		t.Errorf("expected only the Medicaid 94760 cohort, got %+v", got)
	}
}

func TestRank_NoSmallCohorts(t *testing.T) {
	gen := claims.NewGenerator(5, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	store := claims.NewMemoryStore(gen.Generate(1500))
	for _, minClaims := range []int{5, 20, 60} {
		svc := NewService(store, DefaultWeights(), minClaims)
		got, err := svc.Rank(context.Background(), RankRequest{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, o := range got {
			if o.ClaimCount < int64(minClaims) {
				t.Errorf("min %d: cohort %+v too small", minClaims, o.Cohort)
			}
			if i > 0 && o.TotalMissingAmount > got[i-1].TotalMissingAmount {
				t.Errorf("min %d: not ordered by total missing at %d", minClaims, i)
			}
			if o.ConfidenceScore < 0 || o.ConfidenceScore > 100 {
				t.Errorf("score %d out of range", o.ConfidenceScore)
			}
		}
	}
}

func TestRank_StoreFailure(t *testing.T) {
	boom := errors.New("timeout")
	svc := NewService(failingStore{err: boom}, DefaultWeights(), DefaultMinClaims)
	got, err := svc.Rank(context.Background(), RankRequest{})
	if !errors.Is(err, claims.ErrRetrieval) || !errors.Is(err, boom) {
		t.Errorf("expected wrapped retrieval error, got %v", err)
	}
	if got != nil {
		t.Errorf("expected no partial results, got %+v", got)
	}
}
