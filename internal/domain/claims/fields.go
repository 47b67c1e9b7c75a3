package claims

import "github.com/revcycle/recovery/internal/platform/predicate"

const (
	FieldClaimID      predicate.Field = "claim_id"
	FieldPayerType    predicate.Field = "payer_type"
	FieldPayerPlan    predicate.Field = "payer_plan"
	FieldCPT          predicate.Field = "cpt_hcpcs_code"
	FieldServiceDate  predicate.Field = "service_date"
	FieldBilled       predicate.Field = "billed_amount"
	FieldAllowed      predicate.Field = "allowed_amount"
	FieldPaid         predicate.Field = "paid_amount"
	FieldMissing      predicate.Field = "missing_amount"
	FieldDenialReason predicate.Field = "denial_reason"
)

// missingAmountSQL is the SQL form of MissingAmount. It is the only place the
// derived column is spelled out for the database.
const missingAmountSQL = "(allowed_amount - paid_amount)"

// Columns resolves claim fields for the Postgres renderer.
var Columns = predicate.Columns{
	FieldClaimID:      "claim_id",
	FieldPayerType:    "payer_type",
	FieldPayerPlan:    "payer_plan",
	FieldCPT:          "cpt_hcpcs_code",
	FieldServiceDate:  "service_date",
	FieldBilled:       "billed_amount",
	FieldAllowed:      "allowed_amount",
	FieldPaid:         "paid_amount",
	FieldMissing:      missingAmountSQL,
	FieldDenialReason: "denial_reason",
}
