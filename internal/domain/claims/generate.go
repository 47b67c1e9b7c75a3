package claims

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

type weighted struct {
	value  string
	weight float64
}

var payerMix = []weighted{
	{"Medicare", 0.55},
	{"Medicaid", 0.30},
	{"Other", 0.15},
}

var planMix = map[string][]weighted{
	"Medicare": {
		{"Medicare FFS", 0.70},
		{"Medicare Advantage", 0.30},
	},
	"Medicaid": {
		{"Medicaid Managed Care", 0.65},
		{"Medicaid FFS", 0.35},
	},
	"Other": {
		{"Commercial PPO", 0.50},
		{"Commercial HMO", 0.30},
		{"Workers Compensation", 0.10},
		{"Auto No-Fault", 0.10},
	},
}

type cptProfile struct {
	code  string
	price float64
	icd10 []string
}

var cptProfiles = []cptProfile{
	{"99213", 125.00, []string{"I10", "E11.9", "Z00.00", "Z79.899", "R06.02", "J44.9", "J45.909"}},
	{"99214", 185.00, []string{"I10", "E11.9", "R06.02", "J44.9", "J45.909"}},
	{"93000", 95.00, []string{"R07.9", "I10", "R06.02"}},
	{"71046", 145.00, []string{"R06.02", "R07.9", "J44.9", "J45.909"}},
	{"94640", 80.00, []string{"J45.909", "J44.9", "R06.02"}},
	{"94010", 110.00, []string{"J44.9", "J45.909", "R06.02"}},
	{"94760", 35.00, []string{"R09.02", "R06.02", "J44.9", "J45.909", "Z99.81"}},
	{"36415", 25.00, []string{"E11.9", "I10", "Z79.899", "Z00.00"}},
	{"80053", 120.00, []string{"E11.9", "I10", "Z79.899"}},
	{"85025", 85.00, []string{"E11.9", "I10", "Z79.899"}},
	{"A7030", 210.00, []string{"G47.33"}},
	{"A7037", 55.00, []string{"G47.33"}},
	{"E0601", 880.00, []string{"G47.33"}},
	{"E0470", 1650.00, []string{"J96.10", "J44.9"}},
	{"E1390", 1050.00, []string{"Z99.81", "R09.02", "J96.10", "J44.9"}},
}

// Codes that payers quietly short-pay even on clean claims.
var underpaidCodes = map[string]bool{"99214": true, "E0601": true, "E1390": true, "A7030": true}

var denialReasons = []string{
	"Medical Necessity",
	"Prior Authorization Required",
	NonRecoverableDenial,
	"Documentation Incomplete",
}

// Generator produces synthetic claims with realistic payer, CPT and denial
// mixes. Output is deterministic for a given seed and reference date.
type Generator struct {
	rng   *rand.Rand
	today time.Time
	// HistoryDays bounds how far before today service dates fall.
	HistoryDays int
	n           int
}

// NewGenerator returns a generator seeded with seed whose service dates fall
// within two years before today.
func NewGenerator(seed int64, today time.Time) *Generator {
	y, m, d := today.Date()
	return &Generator{
		rng:         rand.New(rand.NewSource(seed)),
		today:       time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		HistoryDays: 730,
	}
}

func (g *Generator) pick(options []weighted) string {
	r := g.rng.Float64()
	var cumulative float64
	for _, o := range options {
		cumulative += o.weight
		if r <= cumulative {
			return o.value
		}
	}
	return options[len(options)-1].value
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

// intn returns an int in [lo, hi].
func (g *Generator) intn(lo, hi int) int {
	return lo + g.rng.Intn(hi-lo+1)
}

func strPtr(s string) *string { return &s }

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Next returns the next claim. Claim ids are sequential.
func (g *Generator) Next() Claim {
	g.n++
	payer := g.pick(payerMix)
	plan := g.pick(planMix[payer])
	cpt := cptProfiles[g.rng.Intn(len(cptProfiles))]
	icd := cpt.icd10[g.rng.Intn(len(cpt.icd10))]
	billed := cpt.price

	var allowed float64
	switch payer {
	case "Medicare":
		allowed = billed * g.uniform(0.70, 0.78)
	case "Medicaid":
		allowed = billed * g.uniform(0.50, 0.65)
	default:
		allowed = billed * g.uniform(0.75, 0.95)
	}

	paid := allowed
	status := "Paid"
	var denial, adjustment *string

	switch roll := g.rng.Float64(); {
	case roll < 0.15:
		paid = 0
		status = "Denied"
		denial = strPtr(denialReasons[g.rng.Intn(len(denialReasons))])
		adjustment = strPtr([]string{"CO-50", "CO-97"}[g.rng.Intn(2)])
	case roll < 0.30:
		paid = allowed * g.uniform(0.50, 0.80)
		status = "Partially Paid"
		denial = strPtr("Underpayment")
		adjustment = strPtr("CO-45")
	case underpaidCodes[cpt.code] && g.rng.Float64() < 0.20:
		paid = allowed * g.uniform(0.85, 0.90)
		adjustment = strPtr("CO-45")
	}

	service := g.today.AddDate(0, 0, -g.intn(0, g.HistoryDays))
	received := service.AddDate(0, 0, g.intn(1, 7))
	processed := received.AddDate(0, 0, g.intn(14, 60))

	return Claim{
		ClaimID:            fmt.Sprintf("C%07d", g.n),
		PatientID:          strPtr(fmt.Sprintf("P%06d", g.intn(1, 30000))),
		PayerType:          payer,
		PayerPlan:          plan,
		ProviderNPI:        strPtr(fmt.Sprintf("%d", g.intn(1000000000, 1999999999))),
		ServiceDate:        service,
		ClaimReceivedDate:  &received,
		ClaimProcessedDate: &processed,
		CPTHCPCSCode:       cpt.code,
		ICD10Code:          strPtr(icd),
		BilledAmount:       round2(billed),
		AllowedAmount:      round2(allowed),
		PaidAmount:         round2(paid),
		ClaimStatus:        strPtr(status),
		DenialReason:       denial,
		AdjustmentCode:     adjustment,
	}
}

// Generate returns n claims.
func (g *Generator) Generate(n int) []Claim {
	out := make([]Claim, n)
	for i := range out {
		out[i] = g.Next()
	}
	return out
}
