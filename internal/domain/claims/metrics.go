package claims

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// instrumentedStore records the duration and outcome of every store call.
type instrumentedStore struct {
	next     Store
	duration *prometheus.HistogramVec
}

// Instrument wraps next so each Search and Aggregate is observed in the
// claims_store_query_duration_seconds histogram registered on reg.
func Instrument(next Store, reg prometheus.Registerer) (Store, error) {
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "claims_store_query_duration_seconds",
			Help:    "Duration of claims store queries in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0},
		},
		[]string{"operation", "status"},
	)
	if err := reg.Register(duration); err != nil {
		return nil, err
	}
	return &instrumentedStore{next: next, duration: duration}, nil
}

func (s *instrumentedStore) observe(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.duration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
}

func (s *instrumentedStore) Search(ctx context.Context, req SearchRequest) ([]Claim, error) {
	start := time.Now()
	items, err := s.next.Search(ctx, req)
	s.observe("search", start, err)
	return items, err
}

func (s *instrumentedStore) Aggregate(ctx context.Context, req AggregateRequest) ([]Aggregate, error) {
	start := time.Now()
	rows, err := s.next.Aggregate(ctx, req)
	s.observe("aggregate_"+req.GroupBy.String(), start, err)
	return rows, err
}
