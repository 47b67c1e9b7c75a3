package claims

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CSVHeader is the column order written by CSVEncoder. Readers locate columns
// by name, so files may order them differently or carry extra columns.
var CSVHeader = []string{
	"claim_id", "patient_id", "payer_type", "payer_plan", "provider_npi",
	"service_date", "claim_received_date", "claim_processed_date",
	"cpt_hcpcs_code", "icd10_code",
	"billed_amount", "allowed_amount", "paid_amount",
	"claim_status", "denial_reason", "adjustment_code",
}

var requiredCSVColumns = []string{
	"claim_id", "payer_type", "payer_plan", "service_date", "cpt_hcpcs_code",
	"billed_amount", "allowed_amount", "paid_amount",
}

// Absent optional values are written as "None". Both it and the empty string
// decode to NULL.
const csvNull = "None"

// CSVDecoder reads claims one record at a time.
type CSVDecoder struct {
	r    *csv.Reader
	cols map[string]int
	line int
}

// NewCSVDecoder reads the header row from r and checks that every required
// column is present.
func NewCSVDecoder(r io.Reader) (*CSVDecoder, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range requiredCSVColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("csv header is missing column %q", name)
		}
	}
	return &CSVDecoder{r: cr, cols: cols, line: 1}, nil
}

// Next decodes the next claim. It returns io.EOF after the last record.
func (d *CSVDecoder) Next() (Claim, error) {
	rec, err := d.r.Read()
	if err != nil {
		return Claim{}, err
	}
	d.line++

	var c Claim
	get := func(name string) string {
		i, ok := d.cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	opt := func(name string) *string {
		v := get(name)
		if v == "" || v == csvNull {
			return nil
		}
		return &v
	}
	fail := func(name string, err error) (Claim, error) {
		return Claim{}, fmt.Errorf("line %d: column %s: %w", d.line, name, err)
	}

	c.ClaimID = get("claim_id")
	if c.ClaimID == "" {
		return fail("claim_id", errors.New("empty"))
	}
	c.PatientID = opt("patient_id")
	c.PayerType = get("payer_type")
	c.PayerPlan = get("payer_plan")
	c.ProviderNPI = opt("provider_npi")
	c.CPTHCPCSCode = get("cpt_hcpcs_code")
	c.ICD10Code = opt("icd10_code")
	c.ClaimStatus = opt("claim_status")
	c.DenialReason = opt("denial_reason")
	c.AdjustmentCode = opt("adjustment_code")

	if c.ServiceDate, err = time.Parse(dateLayout, get("service_date")); err != nil {
		return fail("service_date", err)
	}
	if c.ClaimReceivedDate, err = optDate(get("claim_received_date")); err != nil {
		return fail("claim_received_date", err)
	}
	if c.ClaimProcessedDate, err = optDate(get("claim_processed_date")); err != nil {
		return fail("claim_processed_date", err)
	}

	amounts := []struct {
		name string
		dst  *float64
	}{
		{"billed_amount", &c.BilledAmount},
		{"allowed_amount", &c.AllowedAmount},
		{"paid_amount", &c.PaidAmount},
	}
	for _, a := range amounts {
		d, err := decimal.NewFromString(get(a.name))
		if err != nil {
			return fail(a.name, err)
		}
		*a.dst = d.Round(2).InexactFloat64()
	}
	return c, nil
}

func optDate(v string) (*time.Time, error) {
	if v == "" || v == csvNull {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ReadCSV decodes every claim in r.
func ReadCSV(r io.Reader) ([]Claim, error) {
	dec, err := NewCSVDecoder(r)
	if err != nil {
		return nil, err
	}
	var out []Claim
	for {
		c, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
}

// CSVEncoder writes claims under CSVHeader.
type CSVEncoder struct {
	w *csv.Writer
}

// NewCSVEncoder writes the header row to w.
func NewCSVEncoder(w io.Writer) (*CSVEncoder, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	return &CSVEncoder{w: cw}, nil
}

// Encode writes one claim.
func (e *CSVEncoder) Encode(c Claim) error {
	return e.w.Write([]string{
		c.ClaimID, optString(c.PatientID), c.PayerType, c.PayerPlan, optString(c.ProviderNPI),
		c.ServiceDate.Format(dateLayout), optTime(c.ClaimReceivedDate), optTime(c.ClaimProcessedDate),
		c.CPTHCPCSCode, optString(c.ICD10Code),
		money(c.BilledAmount), money(c.AllowedAmount), money(c.PaidAmount),
		optString(c.ClaimStatus), optString(c.DenialReason), optString(c.AdjustmentCode),
	})
}

// Close flushes buffered records.
func (e *CSVEncoder) Close() error {
	e.w.Flush()
	return e.w.Error()
}

func optString(v *string) string {
	if v == nil {
		return csvNull
	}
	return *v
}

func optTime(v *time.Time) string {
	if v == nil {
		return csvNull
	}
	return v.Format(dateLayout)
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
