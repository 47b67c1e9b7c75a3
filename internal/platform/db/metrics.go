package db

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// RegisterPoolMetrics exports connection pool gauges read from stats at
// scrape time.
func RegisterPoolMetrics(reg prometheus.Registerer, stats func() *PoolStats) error {
	gauges := []struct {
		name, help string
		value      func(*PoolStats) float64
	}{
		{"db_pool_total_conns", "Connections currently open", func(s *PoolStats) float64 { return float64(s.TotalConns) }},
		{"db_pool_idle_conns", "Idle connections", func(s *PoolStats) float64 { return float64(s.IdleConns) }},
		{"db_pool_acquired_conns", "Connections checked out by queries", func(s *PoolStats) float64 { return float64(s.AcquiredConns) }},
		{"db_pool_max_conns", "Configured pool size", func(s *PoolStats) float64 { return float64(s.MaxConns) }},
	}
	for _, g := range gauges {
		value := g.value
		gf := prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: g.name, Help: g.help}, func() float64 {
			return value(stats())
		})
		if err := reg.Register(gf); err != nil {
			return err
		}
	}
	return nil
}

// PoolStatsFunc adapts a pool for RegisterPoolMetrics.
func PoolStatsFunc(pool *pgxpool.Pool) func() *PoolStats {
	return func() *PoolStats { return GetPoolStats(pool) }
}
