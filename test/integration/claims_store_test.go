//go:build integration

package integration

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/revcycle/recovery/internal/domain/analytics"
	"github.com/revcycle/recovery/internal/domain/claims"
	"github.com/revcycle/recovery/internal/domain/opportunity"
	"github.com/revcycle/recovery/pkg/pagination"
)

var asOf = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

// loadGenerated copies n generated claims into Postgres and returns them.
func loadGenerated(t *testing.T, ctx context.Context, seed int64, n int) []claims.Claim {
	t.Helper()
	resetClaims(t, ctx)
	rows := claims.NewGenerator(seed, asOf).Generate(n)
	copied, err := claims.CopyClaims(ctx, globalPool, rows)
	if err != nil {
		t.Fatalf("copy claims: %v", err)
	}
	if copied != int64(n) {
		t.Fatalf("expected %d rows copied, got %d", n, copied)
	}
	return rows
}

var money = cmpopts.EquateApprox(0, 0.005)

func TestPGStore_MatchesMemoryStore(t *testing.T) {
	ctx := context.Background()
	rows := loadGenerated(t, ctx, 21, 3000)

	pg := analytics.NewService(claims.NewPGStore(globalPool))
	mem := analytics.NewService(claims.NewMemoryStore(rows))

	for _, opts := range []map[string]string{
		{},
		{"payer_type": "Medicare"},
		{"payer_plan": "ppo", "min_missing_amount": "25"},
		{"start_date": "2024-01-01", "end_date": "2024-01-31"},
		{"appeal_eligible": "No"},
	} {
		set := claims.CompileWithBase(opts, claims.Underpaid())

		pgDash, err := pg.Dashboard(ctx, set)
		if err != nil {
			t.Fatalf("%v: postgres dashboard: %v", opts, err)
		}
		memDash, err := mem.Dashboard(ctx, set)
		if err != nil {
			t.Fatalf("%v: memory dashboard: %v", opts, err)
		}
		if diff := cmp.Diff(memDash, pgDash, money); diff != "" {
			t.Errorf("%v: dashboard (-memory +postgres):\n%s", opts, diff)
		}

		pgTrend, err := pg.MonthlyTrend(ctx, set)
		if err != nil {
			t.Fatalf("%v: postgres trend: %v", opts, err)
		}
		memTrend, err := mem.MonthlyTrend(ctx, set)
		if err != nil {
			t.Fatalf("%v: memory trend: %v", opts, err)
		}
		if diff := cmp.Diff(memTrend, pgTrend, money); diff != "" {
			t.Errorf("%v: trend (-memory +postgres):\n%s", opts, diff)
		}
	}
}

func TestPGStore_BreakdownsSumToSummary(t *testing.T) {
	ctx := context.Background()
	loadGenerated(t, ctx, 22, 2000)
	svc := analytics.NewService(claims.NewPGStore(globalPool))
	set := claims.CompileWithBase(nil, claims.Underpaid())

	sum, err := svc.Summary(ctx, set)
	if err != nil {
		t.Fatal(err)
	}
	payers, err := svc.ByPayer(ctx, set)
	if err != nil {
		t.Fatal(err)
	}
	cpts, err := svc.ByCPT(ctx, set)
	if err != nil {
		t.Fatal(err)
	}
	trend, err := svc.MonthlyTrend(ctx, set)
	if err != nil {
		t.Fatal(err)
	}

	var p, c, m float64
	for _, r := range payers {
		p += r.MissingAmount
	}
	for _, r := range cpts {
		c += r.MissingAmount
	}
	for _, r := range trend {
		m += r.MissingAmount
	}
	for name, total := range map[string]float64{"payer": p, "cpt": c, "month": m} {
		if math.Abs(total-sum.TotalMissing) > 0.01 {
			t.Errorf("%s breakdown sums to %.2f, summary is %.2f", name, total, sum.TotalMissing)
		}
	}
	for i := 1; i < len(payers); i++ {
		if payers[i].MissingAmount > payers[i-1].MissingAmount {
			t.Errorf("payer breakdown not ordered at %d", i)
		}
	}
}

func TestPGStore_SearchPaging(t *testing.T) {
	ctx := context.Background()
	loadGenerated(t, ctx, 23, 500)
	svc := analytics.NewService(claims.NewPGStore(globalPool))
	set := claims.Compile(map[string]string{"payer_type": "Medicaid"})
	sort := claims.ParseSort("missing_amount", "desc")

	all, err := svc.Search(ctx, set, sort, pagination.Params{Limit: 500})
	if err != nil {
		t.Fatal(err)
	}
	var paged []claims.SearchRow
	for off := 0; off < len(all); off += 7 {
		page, err := svc.Search(ctx, set, sort, pagination.Params{Limit: 7, Offset: off})
		if err != nil {
			t.Fatal(err)
		}
		paged = append(paged, page...)
	}
	if diff := cmp.Diff(all, paged); diff != "" {
		t.Errorf("paging is not stable (-all +paged):\n%s", diff)
	}
	for i := 1; i < len(all); i++ {
		if all[i].MissingAmount > all[i-1].MissingAmount {
			t.Errorf("search not ordered by missing amount at %d", i)
		}
	}
}

func TestPGStore_RankingMatchesMemory(t *testing.T) {
	ctx := context.Background()
	rows := loadGenerated(t, ctx, 24, 3000)

	pg := opportunity.NewService(claims.NewPGStore(globalPool), opportunity.DefaultWeights(), 5)
	mem := opportunity.NewService(claims.NewMemoryStore(rows), opportunity.DefaultWeights(), 5)

	for _, req := range []opportunity.RankRequest{
		{Page: pagination.Params{Limit: 20}},
		{Page: pagination.Params{Limit: 5, Offset: 5}},
		{Bucket: opportunity.BucketMedium, Page: pagination.Params{Limit: 10}},
	} {
		want, err := mem.Rank(ctx, req)
		if err != nil {
			t.Fatal(err)
		}
		got, err := pg.Rank(ctx, req)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(want, got, money); diff != "" {
			t.Errorf("%+v: ranking (-memory +postgres):\n%s", req, diff)
		}
	}
}

func TestPGStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := analytics.NewService(claims.NewPGStore(globalPool))
	_, err := svc.Summary(ctx, claims.CompileWithBase(nil, claims.Underpaid()))
	if !errors.Is(err, claims.ErrRetrieval) {
		t.Errorf("expected retrieval error, got %v", err)
	}
}
