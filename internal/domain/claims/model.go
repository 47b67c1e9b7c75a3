package claims

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/revcycle/recovery/internal/platform/predicate"
)

// Claim maps to the claims table. Rows are read-only to this service.
type Claim struct {
	ClaimID            string     `db:"claim_id" json:"claim_id"`
	PatientID          *string    `db:"patient_id" json:"patient_id,omitempty"`
	PayerType          string     `db:"payer_type" json:"payer_type"`
	PayerPlan          string     `db:"payer_plan" json:"payer_plan"`
	ProviderNPI        *string    `db:"provider_npi" json:"provider_npi,omitempty"`
	ServiceDate        time.Time  `db:"service_date" json:"service_date"`
	ClaimReceivedDate  *time.Time `db:"claim_received_date" json:"claim_received_date,omitempty"`
	ClaimProcessedDate *time.Time `db:"claim_processed_date" json:"claim_processed_date,omitempty"`
	CPTHCPCSCode       string     `db:"cpt_hcpcs_code" json:"cpt_hcpcs_code"`
	ICD10Code          *string    `db:"icd10_code" json:"icd10_code,omitempty"`
	BilledAmount       float64    `db:"billed_amount" json:"billed_amount"`
	AllowedAmount      float64    `db:"allowed_amount" json:"allowed_amount"`
	PaidAmount         float64    `db:"paid_amount" json:"paid_amount"`
	ClaimStatus        *string    `db:"claim_status" json:"claim_status,omitempty"`
	DenialReason       *string    `db:"denial_reason" json:"denial_reason"`
	AdjustmentCode     *string    `db:"adjustment_code" json:"adjustment_code,omitempty"`
}

// MissingAmount is the derived allowed-minus-paid gap.
func (c *Claim) MissingAmount() float64 {
	return MissingAmount(c.AllowedAmount, c.PaidAmount)
}

// Eligibility classifies the claim. The result is computed on every call.
func (c *Claim) Eligibility() EligibilityState {
	return Classify(c.PaidAmount, c.AllowedAmount, c.DenialReason)
}

// Lookup implements predicate.Row.
func (c *Claim) Lookup(f predicate.Field) (any, bool) {
	switch f {
	case FieldClaimID:
		return c.ClaimID, true
	case FieldPayerType:
		return c.PayerType, true
	case FieldPayerPlan:
		return c.PayerPlan, true
	case FieldCPT:
		return c.CPTHCPCSCode, true
	case FieldServiceDate:
		return c.ServiceDate, true
	case FieldBilled:
		return c.BilledAmount, true
	case FieldAllowed:
		return c.AllowedAmount, true
	case FieldPaid:
		return c.PaidAmount, true
	case FieldMissing:
		return c.MissingAmount(), true
	case FieldDenialReason:
		if c.DenialReason == nil {
			return nil, false
		}
		return *c.DenialReason, true
	}
	return nil, false
}

// SearchRow is a claim as returned by search, with its derived values.
type SearchRow struct {
	Claim
	MissingAmount  float64 `json:"missing_amount"`
	AppealEligible string  `json:"appeal_eligible"`
}

// NewSearchRow derives the computed columns for c.
func NewSearchRow(c Claim) SearchRow {
	return SearchRow{
		Claim:          c,
		MissingAmount:  c.MissingAmount(),
		AppealEligible: c.Eligibility().Label(),
	}
}

// MissingAmount computes allowed minus paid with decimal arithmetic so the
// result matches what Postgres numeric produces for the same cents.
func MissingAmount(allowed, paid float64) float64 {
	return decimal.NewFromFloat(allowed).Sub(decimal.NewFromFloat(paid)).InexactFloat64()
}
