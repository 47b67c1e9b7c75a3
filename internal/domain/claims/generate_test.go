package claims

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestGenerator_Deterministic(t *testing.T) {
	today := time.Date(2024, 12, 31, 15, 4, 5, 0, time.UTC)
	a := NewGenerator(99, today).Generate(50)
	b := NewGenerator(99, today).Generate(50)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed produced different claims (-a +b):\n%s", diff)
	}
	c := NewGenerator(100, today).Generate(50)
	if cmp.Equal(a, c) {
		t.Error("different seeds produced identical claims")
	}
}

func TestGenerator_Shape(t *testing.T) {
	today := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	claims := NewGenerator(1, today).Generate(5000)

	var underpaid, timely int
	for i, c := range claims {
		if c.PaidAmount > c.AllowedAmount {
			t.Fatalf("claim %s paid more than allowed", c.ClaimID)
		}
		if c.ServiceDate.After(today) || c.ServiceDate.Before(today.AddDate(0, 0, -730)) {
			t.Fatalf("claim %s service date %v out of range", c.ClaimID, c.ServiceDate)
		}
		if !c.ClaimReceivedDate.After(c.ServiceDate) || !c.ClaimProcessedDate.After(*c.ClaimReceivedDate) {
			t.Fatalf("claim %s has out-of-order dates", c.ClaimID)
		}
		if i == 0 && c.ClaimID != "C0000001" {
			t.Errorf("first claim id = %s", c.ClaimID)
		}
		if c.PaidAmount < c.AllowedAmount {
			underpaid++
		}
		if c.Eligibility() == NonRecoverable {
			timely++
		}
	}
	// Roughly a third of claims are short-paid or denied.
	if underpaid < 1200 || underpaid > 2200 {
		t.Errorf("underpaid count %d outside expected range", underpaid)
	}
	if timely == 0 {
		t.Error("expected some timely filing denials")
	}
}
