package claims

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func seriesCount(t *testing.T, reg *prometheus.Registry) int {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var n int
	for _, f := range families {
		n += len(f.GetMetric())
	}
	return n
}

type failingStore struct{ err error }

func (f failingStore) Search(context.Context, SearchRequest) ([]Claim, error) { return nil, f.err }

func (f failingStore) Aggregate(context.Context, AggregateRequest) ([]Aggregate, error) {
	return nil, f.err
}

func TestInstrument(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := Instrument(NewMemoryStore(sampleClaims()), reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Aggregate(context.Background(), AggregateRequest{GroupBy: GroupCPT}); err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if _, err := s.Search(context.Background(), SearchRequest{}); err != nil {
		t.Fatalf("search: %v", err)
	}
	if n := seriesCount(t, reg); n != 2 {
		t.Errorf("expected 2 series, got %d", n)
	}

	if _, err := Instrument(failingStore{}, reg); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestInstrument_RecordsErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	boom := errors.New("connection refused")
	s, err := Instrument(failingStore{err: boom}, reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Search(context.Background(), SearchRequest{}); !errors.Is(err, boom) {
		t.Fatalf("expected store error to pass through, got %v", err)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var sawError bool
	for _, f := range families {
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "status" && l.GetValue() == "error" {
					sawError = true
				}
			}
		}
	}
	if !sawError {
		t.Error("expected an error-labelled observation")
	}
}
