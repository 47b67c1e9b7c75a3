package claims

import "github.com/revcycle/recovery/internal/platform/predicate"

// DefaultSortField orders search results when the caller asks for nothing
// usable.
const DefaultSortField = FieldServiceDate

var sortableFields = map[string]predicate.Field{
	"service_date":   FieldServiceDate,
	"allowed_amount": FieldAllowed,
	"paid_amount":    FieldPaid,
	"missing_amount": FieldMissing,
}

// Sort is a validated search ordering.
type Sort struct {
	Field     predicate.Field
	Ascending bool
}

// ParseSort validates raw sort_by and sort_dir values. Unknown or empty
// sort_by falls back to service_date. Only the exact token "asc" sorts
// ascending; every other sort_dir sorts descending.
func ParseSort(sortBy, sortDir string) Sort {
	field, ok := sortableFields[sortBy]
	if !ok {
		field = DefaultSortField
	}
	return Sort{Field: field, Ascending: sortDir == "asc"}
}

// Direction returns the SQL direction keyword.
func (s Sort) Direction() string {
	if s.Ascending {
		return "ASC"
	}
	return "DESC"
}
