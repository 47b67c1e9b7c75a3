package analytics

import "github.com/revcycle/recovery/internal/domain/claims"

// Summary totals every claim matched by a predicate set.
type Summary struct {
	TotalBilled  float64 `json:"total_billed" yaml:"total_billed"`
	TotalAllowed float64 `json:"total_allowed" yaml:"total_allowed"`
	TotalPaid    float64 `json:"total_paid" yaml:"total_paid"`
	TotalMissing float64 `json:"total_missing" yaml:"total_missing"`
}

// RecoverableRow splits missing money by appeal eligibility.
type RecoverableRow struct {
	AppealEligible string  `json:"appeal_eligible" yaml:"appeal_eligible"`
	ClaimCount     int64   `json:"claim_count" yaml:"claim_count"`
	MissingAmount  float64 `json:"missing_amount" yaml:"missing_amount"`
}

type PayerRow struct {
	PayerType     string  `json:"payer_type" yaml:"payer_type"`
	PayerPlan     string  `json:"payer_plan" yaml:"payer_plan"`
	ClaimCount    int64   `json:"claim_count" yaml:"claim_count"`
	MissingAmount float64 `json:"missing_amount" yaml:"missing_amount"`
}

type CPTRow struct {
	CPTHCPCSCode  string  `json:"cpt_hcpcs_code" yaml:"cpt_hcpcs_code"`
	ClaimCount    int64   `json:"claim_count" yaml:"claim_count"`
	MissingAmount float64 `json:"missing_amount" yaml:"missing_amount"`
}

// TrendRow is one month of a time series. Period is "YYYY-MM".
type TrendRow struct {
	Period        string  `json:"period" yaml:"period"`
	MissingAmount float64 `json:"missing_amount" yaml:"missing_amount"`
}

// Dashboard bundles the summary panels computed under one predicate set.
type Dashboard struct {
	Summary     Summary          `json:"summary" yaml:"summary"`
	Recoverable []RecoverableRow `json:"recoverable" yaml:"recoverable"`
	ByPayer     []PayerRow       `json:"by_payer" yaml:"by_payer"`
	ByCPT       []CPTRow         `json:"by_cpt" yaml:"by_cpt"`
}

func summaryFrom(a claims.Aggregate) Summary {
	return Summary{
		TotalBilled:  a.Billed,
		TotalAllowed: a.Allowed,
		TotalPaid:    a.Paid,
		TotalMissing: a.Missing,
	}
}
