package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, reg *prometheus.Registry, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != "http_requests_total" {
			continue
		}
	next:
		for _, m := range f.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue next
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestHTTPMetrics_CountsByRouteAndStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewHTTPMetrics(reg, reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/breakdown/payer", okHandler)
	e.GET("/api/claims/search", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to retrieve claims data")
	})

	for _, path := range []string{"/api/breakdown/payer", "/api/breakdown/payer?payer_type=Medicare", "/api/claims/search"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := counterValue(t, reg, map[string]string{"route": "/api/breakdown/payer", "status": "200"}); got != 2 {
		t.Errorf("expected 2 payer requests, got %v", got)
	}
	if got := counterValue(t, reg, map[string]string{"route": "/api/claims/search", "status": "500"}); got != 1 {
		t.Errorf("expected 1 failed search, got %v", got)
	}
}

func TestHTTPMetrics_Handler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewHTTPMetrics(reg, reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/health", okHandler)
	e.GET("/metrics", m.Handler())

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `http_requests_total{method="GET",route="/health",status="200"} 1`) {
		t.Errorf("health request not exported:\n%s", rec.Body.String())
	}
}

func TestHTTPMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewHTTPMetrics(reg, reg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := NewHTTPMetrics(reg, reg); err == nil {
		t.Error("expected error registering twice")
	}
}
