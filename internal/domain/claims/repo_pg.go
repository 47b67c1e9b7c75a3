package claims

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/revcycle/recovery/internal/platform/predicate"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

const claimsTable = "claims"

type pgStore struct{ db queryable }

// NewPGStore returns a Store backed by the claims table. db is usually a
// *pgxpool.Pool; a pgx.Tx works as well.
func NewPGStore(db queryable) Store { return &pgStore{db: db} }

var claimCols = []string{
	"claim_id", "patient_id", "payer_type", "payer_plan", "provider_npi",
	"service_date", "claim_received_date", "claim_processed_date",
	"cpt_hcpcs_code", "icd10_code",
	"billed_amount::float8", "allowed_amount::float8", "paid_amount::float8",
	"claim_status", "denial_reason", "adjustment_code",
}

func scanClaim(row pgx.Row) (Claim, error) {
	var c Claim
	err := row.Scan(&c.ClaimID, &c.PatientID, &c.PayerType, &c.PayerPlan, &c.ProviderNPI,
		&c.ServiceDate, &c.ClaimReceivedDate, &c.ClaimProcessedDate,
		&c.CPTHCPCSCode, &c.ICD10Code,
		&c.BilledAmount, &c.AllowedAmount, &c.PaidAmount,
		&c.ClaimStatus, &c.DenialReason, &c.AdjustmentCode)
	return c, err
}

func (s *pgStore) Search(ctx context.Context, req SearchRequest) ([]Claim, error) {
	q := predicate.NewQuery(claimsTable, Columns)
	q.Select(claimCols...)
	if err := q.Where(req.Predicates); err != nil {
		return nil, err
	}
	field := req.Sort.Field
	if field == "" {
		field = DefaultSortField
	}
	col, err := q.Column(field)
	if err != nil {
		return nil, err
	}
	q.OrderBy(col+" "+req.Sort.Direction(), "claim_id ASC")
	q.Page(req.Page.Limit, req.Page.Offset)

	rows, err := s.db.Query(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, fmt.Errorf("search claims: %w", err)
	}
	defer rows.Close()

	var items []Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search claims: %w", err)
	}
	return items, nil
}

var aggregateCols = []string{
	"COUNT(*) AS claim_count",
	"COALESCE(SUM(billed_amount), 0)::float8 AS billed_amount",
	"COALESCE(SUM(allowed_amount), 0)::float8 AS allowed_amount",
	"COALESCE(SUM(paid_amount), 0)::float8 AS paid_amount",
	"COALESCE(SUM" + missingAmountSQL + ", 0)::float8 AS missing_amount",
}

// groupSpec describes the key columns of one grouping: the select-list
// entries, how to order by them, and where to scan them.
type groupSpec struct {
	selects []string
	order   []string
	dest    func(k *GroupKey) []any
}

var groupSpecs = map[Grouping]groupSpec{
	GroupNone: {dest: func(*GroupKey) []any { return nil }},
	GroupPayer: {
		selects: []string{"payer_type", "payer_plan"},
		order:   []string{`payer_type COLLATE "C" ASC`, `payer_plan COLLATE "C" ASC`},
		dest:    func(k *GroupKey) []any { return []any{&k.PayerType, &k.PayerPlan} },
	},
	GroupCPT: {
		selects: []string{"cpt_hcpcs_code"},
		order:   []string{`cpt_hcpcs_code COLLATE "C" ASC`},
		dest:    func(k *GroupKey) []any { return []any{&k.CPT} },
	},
	GroupMonth: {
		selects: []string{"to_char(service_date, 'YYYY-MM') AS period"},
		order:   []string{"period ASC"},
		dest:    func(k *GroupKey) []any { return []any{&k.Period} },
	},
	GroupCohort: {
		selects: []string{"payer_type", "payer_plan", "cpt_hcpcs_code"},
		order: []string{
			`payer_type COLLATE "C" ASC`, `payer_plan COLLATE "C" ASC`, `cpt_hcpcs_code COLLATE "C" ASC`,
		},
		dest: func(k *GroupKey) []any { return []any{&k.PayerType, &k.PayerPlan, &k.CPT} },
	},
}

func (s *pgStore) Aggregate(ctx context.Context, req AggregateRequest) ([]Aggregate, error) {
	q := predicate.NewQuery(claimsTable, Columns)

	var (
		nkeys int
		order []string
		dest  func(k *GroupKey) []any
	)
	if req.GroupBy == GroupEligibility {
		states := []EligibilityState{AppealEligible, NonRecoverable}
		err := q.SelectCase("eligibility",
			[]predicate.Expr{EligibilityPredicate(states[0]), EligibilityPredicate(states[1])},
			[]string{strconv.Itoa(int(states[0])), strconv.Itoa(int(states[1]))},
			strconv.Itoa(int(NotApplicable)))
		if err != nil {
			return nil, err
		}
		nkeys = 1
		order = []string{"eligibility ASC"}
		dest = func(*GroupKey) []any { return nil }
	} else {
		spec, ok := groupSpecs[req.GroupBy]
		if !ok {
			return nil, fmt.Errorf("unsupported grouping %d", req.GroupBy)
		}
		q.Select(spec.selects...)
		nkeys = len(spec.selects)
		order = spec.order
		dest = spec.dest
	}

	q.Select(aggregateCols...)
	if err := q.SelectExpr("COUNT(*) FILTER (WHERE %s) AS eligible_count", EligibilityPredicate(AppealEligible)); err != nil {
		return nil, err
	}
	if err := q.Where(req.Predicates); err != nil {
		return nil, err
	}

	if nkeys > 0 {
		ordinals := make([]string, nkeys)
		for i := range ordinals {
			ordinals[i] = strconv.Itoa(i + 1)
		}
		q.GroupBy(ordinals...)
		if req.Order == OrderMissingDesc {
			order = append([]string{"missing_amount DESC"}, order...)
		}
		q.OrderBy(order...)
	}
	if req.MinClaims > 0 {
		q.Having("COUNT(*) >= $%d", req.MinClaims)
	}
	q.Page(req.Page.Limit, req.Page.Offset)

	rows, err := s.db.Query(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, fmt.Errorf("aggregate claims by %s: %w", req.GroupBy, err)
	}
	defer rows.Close()

	var out []Aggregate
	for rows.Next() {
		var a Aggregate
		var eligibility int
		targets := dest(&a.Key)
		if req.GroupBy == GroupEligibility {
			targets = append(targets, &eligibility)
		}
		targets = append(targets, &a.ClaimCount, &a.Billed, &a.Allowed, &a.Paid, &a.Missing, &a.EligibleCount)
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("scan aggregate: %w", err)
		}
		if req.GroupBy == GroupEligibility {
			a.Key.Eligibility = EligibilityState(eligibility)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("aggregate claims by %s: %w", req.GroupBy, err)
	}
	return out, nil
}
